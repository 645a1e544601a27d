package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/cardroomlabs/holdem/internal/game"
	"github.com/cardroomlabs/holdem/internal/server"
)

// version is set by ldflags during build
var version = "dev"

var CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Config   string           `short:"c" default:"holdemd.hcl" help:"Path to HCL configuration file"`
	Addr     string           `short:"a" help:"Listen address (overrides config)"`
	LogLevel string           `short:"l" help:"Log level (overrides config)"`
	Seed     int64            `help:"Fixed RNG seed for reproducible shuffles (0 uses entropy)"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("holdemd"),
		kong.Description("Multi-table Texas Hold'em cash game server"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	// Optional .env for local development; a missing file is fine.
	_ = godotenv.Load()

	cfg, err := server.LoadConfig(CLI.Config)
	if err != nil {
		ctx.Errorf("loading config: %v", err)
		ctx.Exit(1)
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	addr := cfg.ListenAddr()
	if CLI.Addr != "" {
		addr = CLI.Addr
	}

	seed := func() int64 { return time.Now().UnixNano() }
	if CLI.Seed != 0 {
		fixed := CLI.Seed
		seed = func() int64 { fixed++; return fixed }
	}

	srv := server.New(addr, logger)
	registry := game.NewRegistry(cfg.GameConfig(), quartz.NewReal(), srv, logger, seed)
	srv.SetRegistry(registry)

	logger.Info("Starting holdemd",
		"version", version,
		"addr", addr,
		"smallBlind", cfg.Game.SmallBlind,
		"bigBlind", cfg.Game.BigBlind)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down")
		return srv.Stop()
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server exited with error", "error", err)
		ctx.Exit(1)
	}
}

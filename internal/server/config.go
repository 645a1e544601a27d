package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/cardroomlabs/holdem/internal/game"
)

// Config represents the complete server configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings contains the table rules applied to every room
type GameSettings struct {
	StartingChips       int `hcl:"starting_chips,optional"`
	SmallBlind          int `hcl:"small_blind,optional"`
	BigBlind            int `hcl:"big_blind,optional"`
	MinPlayers          int `hcl:"min_players,optional"`
	MaxSeats            int `hcl:"max_seats,optional"`
	RebuyChips          int `hcl:"rebuy_chips,optional"`
	TurnTimeoutSeconds  int `hcl:"turn_timeout_seconds,optional"`
	ResultsDelaySeconds int `hcl:"results_delay_seconds,optional"`
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: GameSettings{
			StartingChips:       200,
			SmallBlind:          1,
			BigBlind:            2,
			MinPlayers:          2,
			MaxSeats:            9,
			RebuyChips:          200,
			TurnTimeoutSeconds:  30,
			ResultsDelaySeconds: 5,
		},
	}
}

// LoadConfig loads configuration from an HCL file. A missing file yields
// the defaults; a present but invalid file is an error.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	defaults := DefaultConfig()
	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}

	if config.Game.StartingChips == 0 {
		config.Game.StartingChips = defaults.Game.StartingChips
	}
	if config.Game.SmallBlind == 0 {
		config.Game.SmallBlind = defaults.Game.SmallBlind
	}
	if config.Game.BigBlind == 0 {
		config.Game.BigBlind = defaults.Game.BigBlind
	}
	if config.Game.MinPlayers == 0 {
		config.Game.MinPlayers = defaults.Game.MinPlayers
	}
	if config.Game.MaxSeats == 0 {
		config.Game.MaxSeats = defaults.Game.MaxSeats
	}
	if config.Game.RebuyChips == 0 {
		config.Game.RebuyChips = defaults.Game.RebuyChips
	}
	if config.Game.TurnTimeoutSeconds == 0 {
		config.Game.TurnTimeoutSeconds = defaults.Game.TurnTimeoutSeconds
	}
	if config.Game.ResultsDelaySeconds == 0 {
		config.Game.ResultsDelaySeconds = defaults.Game.ResultsDelaySeconds
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Game.SmallBlind < 1 || c.Game.BigBlind < c.Game.SmallBlind {
		return fmt.Errorf("blinds must satisfy 1 <= small_blind <= big_blind, got %d/%d",
			c.Game.SmallBlind, c.Game.BigBlind)
	}
	if c.Game.MinPlayers < 2 {
		return fmt.Errorf("min_players must be at least 2, got %d", c.Game.MinPlayers)
	}
	if c.Game.MaxSeats < c.Game.MinPlayers || c.Game.MaxSeats > 9 {
		return fmt.Errorf("max_seats must be between min_players and 9, got %d", c.Game.MaxSeats)
	}
	if c.Game.StartingChips < c.Game.BigBlind {
		return fmt.Errorf("starting_chips %d cannot cover the big blind %d",
			c.Game.StartingChips, c.Game.BigBlind)
	}
	return nil
}

// ListenAddr returns the address:port string to bind.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GameConfig converts the game settings into the engine's configuration.
func (c *Config) GameConfig() game.Config {
	return game.Config{
		StartingChips: c.Game.StartingChips,
		SmallBlind:    c.Game.SmallBlind,
		BigBlind:      c.Game.BigBlind,
		MinPlayers:    c.Game.MinPlayers,
		MaxSeats:      c.Game.MaxSeats,
		RebuyChips:    c.Game.RebuyChips,
		TurnTimeout:   time.Duration(c.Game.TurnTimeoutSeconds) * time.Second,
		ResultsDelay:  time.Duration(c.Game.ResultsDelaySeconds) * time.Second,
	}
}

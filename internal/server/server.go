package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/cardroomlabs/holdem/internal/game"
)

// Server owns the WebSocket endpoint and the connection set. Game state
// lives in the registry's tables; the server routes inbound frames to
// them and fans their notifications back out.
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	registry    *game.Registry
	httpServer  *http.Server
}

// New creates a server without a registry. The caller constructs the
// registry with this server as its Notifier and wires it via SetRegistry
// before calling Start.
func New(addr string, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// For development, allow all origins
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetRegistry wires the table registry. Must be called before Start.
func (s *Server) SetRegistry(registry *game.Registry) {
	s.registry = registry
}

// Start runs the HTTP listener until Stop is called or the listener fails.
func (s *Server) Start() error {
	go s.run()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/healthz", s.handleHealth)
	r.Get("/tables", s.handleTables)

	s.httpServer = &http.Server{Addr: s.addr, Handler: r}

	s.logger.Info("Starting WebSocket server", "addr", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the listener down and closes every connection.
func (s *Server) Stop() error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(context.Background())
	}
	return nil
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			_, known := s.connections[conn]
			if known {
				delete(s.connections, conn)
			}
			total := len(s.connections)
			s.mu.Unlock()

			if known {
				// A dropped client mid-hand is folded and unseated by
				// the table itself.
				playerID := conn.GetPlayer()
				tableID := conn.GetTable()
				if playerID != "" && tableID != "" && s.registry != nil {
					if table, ok := s.registry.Lookup(tableID); ok {
						s.logger.Info("Cleaning up disconnected player", "player", playerID, "table", tableID)
						table.Leave(playerID)
					}
				}
				_ = conn.Close()
			}
			s.logger.Info("Client disconnected", "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s.registry)
	select {
	case s.register <- client:
	case <-s.ctx.Done():
		// A late upgrade racing shutdown has no run loop to receive it.
		_ = client.Close()
		return
	}
	client.Start()

	go func() {
		<-client.ctx.Done()
		select {
		case s.unregister <- client:
		case <-s.ctx.Done():
		}
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleTables lists the known tables as JSON.
func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	tables := make([]TableInfo, 0)
	if s.registry != nil {
		for _, room := range s.registry.List() {
			table, ok := s.registry.Lookup(room)
			if !ok {
				continue
			}
			snapshot := table.Snapshot()
			tables = append(tables, TableInfo{
				ID:      room,
				Players: len(snapshot.Seats),
				Status:  snapshot.Status,
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(TableListData{Tables: tables}); err != nil {
		s.logger.Error("Failed to encode table list", "error", err)
	}
}

// BroadcastToTable sends a message to all connections at a specific table
func (s *Server) BroadcastToTable(tableID string, msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		if conn.GetTable() == tableID {
			if err := conn.SendMessage(msg); err != nil {
				s.logger.Error("Failed to send message to client", "error", err, "player", conn.GetPlayer())
			}
		}
	}
}

// SendToPlayer sends a message to a specific player's connection.
func (s *Server) SendToPlayer(playerID string, msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		if conn.GetPlayer() == playerID {
			if err := conn.SendMessage(msg); err != nil {
				s.logger.Error("Failed to send message to player", "error", err, "player", playerID)
			}
			return
		}
	}
}

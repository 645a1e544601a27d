package game

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// Registry maps room names to tables, creating a table on first
// reference. All tables share the clock, notifier and config; each gets
// its own seeded RNG so decks shuffle independently.
type Registry struct {
	mu     sync.Mutex
	tables map[string]*Table

	cfg      Config
	clock    quartz.Clock
	notifier Notifier
	logger   *log.Logger
	seed     func() int64
}

// NewRegistry creates an empty registry. The seed function supplies the
// RNG seed for each new table; tests pass a fixed seed for deterministic
// decks.
func NewRegistry(cfg Config, clock quartz.Clock, notifier Notifier, logger *log.Logger, seed func() int64) *Registry {
	return &Registry{
		tables:   make(map[string]*Table),
		cfg:      cfg,
		clock:    clock,
		notifier: notifier,
		logger:   logger,
		seed:     seed,
	}
}

// Table returns the table for the given room, creating it on first use.
func (r *Registry) Table(room string) *Table {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tables[room]; ok {
		return t
	}

	rng := rand.New(rand.NewSource(r.seed()))
	t := NewTable(room, r.cfg, r.clock, r.notifier, r.logger, rng)
	r.tables[room] = t

	r.logger.Info("Table created", "room", room)
	return t
}

// Lookup returns the table for the given room without creating one.
func (r *Registry) Lookup(room string) (*Table, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[room]
	return t, ok
}

// List returns the known room names in sorted order.
func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	rooms := make([]string, 0, len(r.tables))
	for room := range r.tables {
		rooms = append(rooms, room)
	}
	sort.Strings(rooms)
	return rooms
}

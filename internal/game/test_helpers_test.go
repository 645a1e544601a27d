package game

import (
	"io"
	"math/rand"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/cardroomlabs/holdem/internal/deck"
)

// recorder captures everything a table notifies so tests can assert on
// broadcasts, prompts and results.
type recorder struct {
	mu        sync.Mutex
	snapshots []TableSnapshot
	holes     map[string][]deck.Card
	prompts   []promptRecord
	notices   []string
	results   []HandResult
}

type promptRecord struct {
	PlayerID string
	Prompt   ActionPrompt
}

func newRecorder() *recorder {
	return &recorder{holes: make(map[string][]deck.Card)}
}

func (r *recorder) BroadcastState(s TableSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, s)
}

func (r *recorder) SendHoleCards(tableID, playerID string, cards []deck.Card) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.holes[playerID] = cards
}

func (r *recorder) PromptAction(tableID, playerID string, prompt ActionPrompt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, promptRecord{PlayerID: playerID, Prompt: prompt})
}

func (r *recorder) Announce(tableID, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, text)
}

func (r *recorder) AnnounceResult(tableID string, result HandResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func (r *recorder) lastPrompt() (promptRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.prompts) == 0 {
		return promptRecord{}, false
	}
	return r.prompts[len(r.prompts)-1], true
}

func (r *recorder) lastSnapshot() (TableSnapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snapshots) == 0 {
		return TableSnapshot{}, false
	}
	return r.snapshots[len(r.snapshots)-1], true
}

func (r *recorder) lastResult() (HandResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.results) == 0 {
		return HandResult{}, false
	}
	return r.results[len(r.results)-1], true
}

func (r *recorder) resultCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results)
}

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// newTestTable builds a table with a mock clock, a recorder and a fixed
// RNG seed.
func newTestTable(t *testing.T, cfg Config) (*Table, *recorder, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	rec := newRecorder()
	rng := rand.New(rand.NewSource(42))
	table := NewTable("table1", cfg, clock, rec, testLogger(), rng)
	return table, rec, clock
}

// stackDeck makes every hand start with a known deck layout. Cards are
// dealt from the front of the given string.
func stackDeck(table *Table, cards string) {
	stacked := deck.MustParseCards(cards)
	table.newDeck = func() *deck.Deck { return deck.NewStacked(stacked) }
}

// seatPlayers joins n players named p0..p(n-1) with matching IDs.
func seatPlayers(t *testing.T, table *Table, n int) {
	t.Helper()
	names := []string{"alice", "bob", "carol", "dave", "erin", "frank", "grace", "heidi", "ivan"}
	for i := 0; i < n; i++ {
		if _, err := table.Join(names[i], names[i]); err != nil {
			t.Fatalf("Join(%s) failed: %v", names[i], err)
		}
	}
}

func mustAct(t *testing.T, table *Table, playerID string, action Action, amount int) {
	t.Helper()
	if err := table.Act(playerID, action, amount); err != nil {
		t.Fatalf("Act(%s, %s, %d) failed: %v", playerID, action, amount, err)
	}
}

// chipSum totals every chip visible in a snapshot plus the pot.
func chipSum(s TableSnapshot) int {
	total := s.Pot
	for _, seat := range s.Seats {
		total += seat.Chips + seat.Bet
	}
	return total
}

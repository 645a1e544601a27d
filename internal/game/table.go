package game

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/cardroomlabs/holdem/internal/deck"
)

// Table owns all mutable state for one room: seats, pot, community cards,
// positions, the current street and actor. Every inbound operation takes
// the table lock and runs to completion, so actions and the broadcasts
// they produce are totally ordered per table. Different tables interleave
// freely; no state is shared between them.
type Table struct {
	mu       sync.Mutex
	id       string
	cfg      Config
	logger   *log.Logger
	clock    quartz.Clock
	rng      *rand.Rand
	notifier Notifier

	seats      []*Player
	status     Status
	street     Street
	dealerSeat int
	sbSeat     int
	bbSeat     int
	turnSeat   int
	pot        int
	highestBet int
	lastRaise  int
	community  []deck.Card
	deck       *deck.Deck

	// Generation counters make the scheduled callbacks safe: a callback
	// tagged with a stale generation is discarded under the lock, so a
	// timeout can never fold the wrong actor and a results delay can
	// never reset the wrong hand.
	turnGen   uint64
	handGen   uint64
	turnTimer *quartz.Timer

	// Chip total at hand start, for conservation checking. Adjusted when
	// a player departs mid-hand with their stack.
	handChips int

	newDeck func() *deck.Deck
}

// NewTable creates an empty table for the given room.
func NewTable(id string, cfg Config, clock quartz.Clock, notifier Notifier, logger *log.Logger, rng *rand.Rand) *Table {
	t := &Table{
		id:         id,
		cfg:        cfg,
		logger:     logger.WithPrefix("table").With("id", id),
		clock:      clock,
		rng:        rng,
		notifier:   notifier,
		seats:      make([]*Player, cfg.MaxSeats),
		status:     TableWaiting,
		dealerSeat: cfg.MaxSeats - 1, // first rotation lands on seat 0
	}
	t.newDeck = func() *deck.Deck { return deck.New(t.rng) }
	return t
}

// ID returns the room name the table was created for.
func (t *Table) ID() string {
	return t.id
}

// Join seats a player at the lowest free seat index and grants the
// starting stack. Joining mid-hand is allowed; the player waits for the
// next deal.
func (t *Table) Join(playerID, name string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.findPlayer(playerID) != nil {
		return 0, fmt.Errorf("already seated at this table")
	}

	seat := -1
	for i, p := range t.seats {
		if p == nil {
			seat = i
			break
		}
	}
	if seat == -1 {
		return 0, fmt.Errorf("table is full")
	}

	player := &Player{
		ID:     playerID,
		Name:   name,
		Seat:   seat,
		Chips:  t.cfg.StartingChips,
		Status: StatusWaiting,
	}
	t.seats[seat] = player

	t.logger.Info("Player joined", "player", name, "seat", seat, "chips", player.Chips)
	t.notifier.Announce(t.id, fmt.Sprintf("%s joined seat %d", name, seat))
	t.broadcast()
	return seat, nil
}

// Leave removes a player. Mid-hand the player is folded first so the
// betting round resolves, then the seat is freed; otherwise removal is
// immediate. Their chips leave the table with them, their committed bets
// stay in the pot as dead money.
func (t *Table) Leave(playerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.findPlayer(playerID)
	if p == nil {
		return
	}

	t.logger.Info("Player leaving", "player", p.Name, "seat", p.Seat)

	if t.status == TablePlaying && p.InHand() {
		wasTurn := p.Seat == t.turnSeat
		if wasTurn {
			t.stopTurnTimer()
		}
		p.Status = StatusFolded
		p.Acted = true
		t.pot += p.Bet
		p.Bet = 0
		t.handChips -= p.Chips
		t.seats[p.Seat] = nil
		t.notifier.Announce(t.id, fmt.Sprintf("%s left the table (hand folded)", p.Name))

		t.broadcast()
		if wasTurn {
			t.resolveAfterAction(p.Seat)
		} else if t.inHandCount() <= 1 {
			t.finishUncontested()
		}
		return
	}

	t.seats[p.Seat] = nil
	t.notifier.Announce(t.id, fmt.Sprintf("%s left the table", p.Name))
	t.broadcast()
}

// RequestStart attempts the waiting → playing transition.
func (t *Table) RequestStart() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status != TableWaiting {
		return fmt.Errorf("hand already in progress")
	}
	if ready := t.readyCount(); ready < t.cfg.MinPlayers {
		return fmt.Errorf("need %d players to start, have %d", t.cfg.MinPlayers, ready)
	}

	t.startHand()
	return nil
}

// RequestRebuy tops up a busted player. Rebuying is refused while the
// player is dealt into a live hand.
func (t *Table) RequestRebuy(playerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p := t.findPlayer(playerID)
	if p == nil {
		return fmt.Errorf("not seated at this table")
	}
	if len(p.HoleCards) == 2 && t.status != TableWaiting {
		return fmt.Errorf("cannot rebuy during a hand")
	}
	if p.Chips > 0 {
		return fmt.Errorf("rebuy is only available with an empty stack")
	}

	p.Chips += t.cfg.RebuyChips
	if p.Status == StatusBusted {
		p.Status = StatusWaiting
	}

	t.logger.Info("Player rebought", "player", p.Name, "chips", p.Chips)
	t.notifier.Announce(t.id, fmt.Sprintf("%s rebought for %d chips", p.Name, t.cfg.RebuyChips))
	t.broadcast()
	return nil
}

// Snapshot returns the public table state.
func (t *Table) Snapshot() TableSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// startHand deals a new hand: fresh deck, hole cards, dealer rotation,
// blinds, first actor. Callers hold the lock.
func (t *Table) startHand() {
	t.status = TablePlaying
	t.street = Preflop
	t.pot = 0
	t.highestBet = 0
	t.lastRaise = t.cfg.BigBlind
	t.community = nil
	t.deck = t.newDeck()
	t.handGen++

	dealt := 0
	for _, p := range t.seats {
		if p == nil {
			continue
		}
		p.resetForHand()
		if p.Status == StatusSittingOut {
			continue
		}
		if p.Chips == 0 {
			p.Status = StatusBusted
			continue
		}
		p.Status = StatusActive
		p.HoleCards = t.dealCards(2)
		dealt++
	}
	t.handChips = t.chipTotal()

	t.rotatePositions(dealt)
	t.postBlinds()

	t.logger.Info("Hand started",
		"players", dealt,
		"dealer", t.dealerSeat,
		"smallBlind", t.sbSeat,
		"bigBlind", t.bbSeat)
	t.notifier.Announce(t.id, "New hand dealt")

	for _, p := range t.seats {
		if p != nil && len(p.HoleCards) == 2 {
			t.notifier.SendHoleCards(t.id, p.ID, p.HoleCards)
		}
	}

	t.broadcast()
	t.advanceTurnFrom(t.bbSeat + 1)
}

// rotatePositions advances the button and assigns the blinds. Heads-up
// the dealer posts the small blind.
func (t *Table) rotatePositions(dealt int) {
	t.dealerSeat = t.nextInHandSeat(t.dealerSeat + 1)
	if dealt == 2 {
		t.sbSeat = t.dealerSeat
		t.bbSeat = t.nextInHandSeat(t.sbSeat + 1)
		return
	}
	t.sbSeat = t.nextInHandSeat(t.dealerSeat + 1)
	t.bbSeat = t.nextInHandSeat(t.sbSeat + 1)
}

// postBlinds posts forced bets capped by the available stack, which can
// put a tiny stack all-in before any action.
func (t *Table) postBlinds() {
	post := func(seat, amount int) {
		p := t.seats[seat]
		if p == nil {
			return
		}
		pay := min(amount, p.Chips)
		p.Chips -= pay
		p.Bet += pay
		p.TotalBet += pay
		if p.Chips == 0 {
			p.Status = StatusAllIn
		}
	}
	post(t.sbSeat, t.cfg.SmallBlind)
	post(t.bbSeat, t.cfg.BigBlind)
	t.highestBet = t.cfg.BigBlind
}

func (t *Table) dealCards(n int) []deck.Card {
	cards := t.deck.DealN(n)
	if len(cards) != n {
		// 52 cards cover 9 seats plus the board, so this is a defect.
		t.logger.Error("Deck exhausted mid-hand", "wanted", n, "got", len(cards))
	}
	return cards
}

// resetAfterShowdown is the showdown → waiting transition, scheduled
// after the results-display delay.
func (t *Table) resetAfterShowdown(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status != TableShowdown || gen != t.handGen {
		return
	}

	for _, p := range t.seats {
		if p == nil {
			continue
		}
		p.resetForHand()
		if p.Status == StatusSittingOut {
			continue
		}
		if p.Chips == 0 {
			p.Status = StatusBusted
		} else {
			p.Status = StatusWaiting
		}
	}

	t.pot = 0
	t.community = nil
	t.highestBet = 0
	t.lastRaise = 0
	t.status = TableWaiting
	t.broadcast()

	if t.readyCount() >= t.cfg.MinPlayers {
		t.startHand()
	}
}

// findPlayer returns the seated player with the given identity.
func (t *Table) findPlayer(playerID string) *Player {
	for _, p := range t.seats {
		if p != nil && p.ID == playerID {
			return p
		}
	}
	return nil
}

// nextInHandSeat scans seats circularly from the given index for a
// player dealt into the current hand.
func (t *Table) nextInHandSeat(from int) int {
	n := len(t.seats)
	for i := 0; i < n; i++ {
		seat := (from + i) % n
		if p := t.seats[seat]; p != nil && p.InHand() {
			return seat
		}
	}
	return from % n
}

// seatsFromDealer returns all seat indices in clockwise order starting
// left of the dealer. Used for deterministic remainder awarding.
func (t *Table) seatsFromDealer() []int {
	n := len(t.seats)
	order := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		order = append(order, (t.dealerSeat+i)%n)
	}
	return order
}

func (t *Table) readyCount() int {
	count := 0
	for _, p := range t.seats {
		if p != nil && p.Chips > 0 && p.Status != StatusSittingOut {
			count++
		}
	}
	return count
}

func (t *Table) inHandCount() int {
	count := 0
	for _, p := range t.seats {
		if p != nil && p.InHand() {
			count++
		}
	}
	return count
}

func (t *Table) actableCount() int {
	count := 0
	for _, p := range t.seats {
		if p != nil && p.CanAct() {
			count++
		}
	}
	return count
}

// chipTotal sums every chip the table is responsible for: stacks,
// street bets and the pot.
func (t *Table) chipTotal() int {
	total := t.pot
	for _, p := range t.seats {
		if p != nil {
			total += p.Chips + p.Bet
		}
	}
	return total
}

// checkConservation reports a chip leak to the operator log. Violations
// are programming defects; they are reported, never silently repaired.
func (t *Table) checkConservation() {
	if total := t.chipTotal(); total != t.handChips {
		t.logger.Error("Chip conservation violated",
			"expected", t.handChips,
			"actual", total)
	}
}

func (t *Table) broadcast() {
	t.notifier.BroadcastState(t.snapshotLocked())
}

func (t *Table) snapshotLocked() TableSnapshot {
	snapshot := TableSnapshot{
		TableID:        t.id,
		Status:         t.status.String(),
		Street:         t.street.String(),
		Pot:            t.pot,
		HighestBet:     t.highestBet,
		CommunityCards: t.community,
		Seats:          make([]SeatSnapshot, 0, len(t.seats)),
	}

	for _, p := range t.seats {
		if p == nil {
			continue
		}
		seat := SeatSnapshot{
			Name:     p.Name,
			Seat:     p.Seat,
			Chips:    p.Chips,
			Status:   p.Status.String(),
			Bet:      p.Bet,
			IsDealer: p.Seat == t.dealerSeat,
			IsSB:     p.Seat == t.sbSeat,
			IsBB:     p.Seat == t.bbSeat,
			IsTurn:   t.status == TablePlaying && p.Seat == t.turnSeat,
		}
		// Hole cards are public only at showdown, and only for players
		// still contesting the pot.
		if t.status == TableShowdown && p.InHand() {
			seat.HoleCards = p.HoleCards
		}
		snapshot.Seats = append(snapshot.Seats, seat)
	}

	return snapshot
}

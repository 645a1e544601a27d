package game

import "github.com/cardroomlabs/holdem/internal/deck"

// PlayerStatus represents a seat occupant's state within the table cycle.
type PlayerStatus int

const (
	StatusWaiting PlayerStatus = iota
	StatusActive
	StatusFolded
	StatusAllIn
	StatusSittingOut
	StatusBusted
)

func (ps PlayerStatus) String() string {
	switch ps {
	case StatusWaiting:
		return "waiting"
	case StatusActive:
		return "active"
	case StatusFolded:
		return "folded"
	case StatusAllIn:
		return "all-in"
	case StatusSittingOut:
		return "sitting-out"
	case StatusBusted:
		return "busted"
	default:
		return "unknown"
	}
}

// Player is a seat occupant. A Player is owned exclusively by its Table
// and only mutated under the table lock.
type Player struct {
	ID        string
	Name      string
	Seat      int
	Chips     int
	Status    PlayerStatus
	HoleCards []deck.Card
	Bet       int // commitment in the current betting round
	TotalBet  int // commitment across the whole hand, drives side pots
	Acted     bool
}

// CanAct reports whether the player is eligible to take the turn.
func (p *Player) CanAct() bool {
	return p.Status == StatusActive && p.Chips > 0
}

// InHand reports whether the player was dealt into the current hand and
// has not folded or sat out. These are the showdown candidates.
func (p *Player) InHand() bool {
	return len(p.HoleCards) == 2 && p.Status != StatusFolded && p.Status != StatusSittingOut
}

func (p *Player) resetForHand() {
	p.HoleCards = nil
	p.Bet = 0
	p.TotalBet = 0
	p.Acted = false
}

package game

import "fmt"

// Status represents the lifecycle state of a table. Tables cycle
// waiting → playing → showdown → waiting for the process lifetime.
type Status int

const (
	TableWaiting Status = iota
	TablePlaying
	TableShowdown
)

func (s Status) String() string {
	switch s {
	case TableWaiting:
		return "waiting"
	case TablePlaying:
		return "playing"
	case TableShowdown:
		return "showdown"
	default:
		return "unknown"
	}
}

// Street represents the betting round bounded by the visible community cards.
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
)

func (s Street) String() string {
	return [...]string{"preflop", "flop", "turn", "river"}[s]
}

// Action represents a player action
type Action int

const (
	Fold Action = iota
	Check
	Call
	Raise
	AllIn
)

func (a Action) String() string {
	return [...]string{"fold", "check", "call", "raise", "allin"}[a]
}

// ParseAction converts a wire action name into an Action.
func ParseAction(s string) (Action, error) {
	switch s {
	case "fold":
		return Fold, nil
	case "check":
		return Check, nil
	case "call":
		return Call, nil
	case "bet", "raise":
		return Raise, nil
	case "allin", "all-in":
		return AllIn, nil
	default:
		return 0, fmt.Errorf("invalid action: %s", s)
	}
}

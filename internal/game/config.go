package game

import "time"

// Config holds the tunables for a table. Every value has a sensible
// default so tests and the server can start from DefaultConfig and
// override selectively.
type Config struct {
	StartingChips int
	SmallBlind    int
	BigBlind      int
	MinPlayers    int
	MaxSeats      int
	RebuyChips    int
	TurnTimeout   time.Duration
	ResultsDelay  time.Duration
}

// DefaultConfig returns the standard cash-game configuration.
func DefaultConfig() Config {
	return Config{
		StartingChips: 200,
		SmallBlind:    1,
		BigBlind:      2,
		MinPlayers:    2,
		MaxSeats:      9,
		RebuyChips:    200,
		TurnTimeout:   30 * time.Second,
		ResultsDelay:  5 * time.Second,
	}
}

package game

import "github.com/cardroomlabs/holdem/internal/deck"

// Notifier is the outbound half of the transport collaborator. The table
// calls it after every mutation; implementations must not call back into
// the table synchronously.
type Notifier interface {
	// BroadcastState sends the full table snapshot to every client at the table.
	BroadcastState(snapshot TableSnapshot)
	// SendHoleCards privately delivers hole cards to a single player at deal time.
	SendHoleCards(tableID, playerID string, cards []deck.Card)
	// PromptAction tells the current actor what they owe and may do.
	PromptAction(tableID, playerID string, prompt ActionPrompt)
	// Announce sends a free-text notice to every client at the table.
	Announce(tableID, text string)
	// AnnounceResult reports the winners and amounts of a finished hand.
	AnnounceResult(tableID string, result HandResult)
}

// SeatSnapshot is one seat's public view within a table snapshot.
// HoleCards is populated only for showdown candidates once the hand
// reaches showdown.
type SeatSnapshot struct {
	Name      string      `json:"name"`
	Seat      int         `json:"seat"`
	Chips     int         `json:"chips"`
	Status    string      `json:"status"`
	Bet       int         `json:"bet"`
	IsDealer  bool        `json:"isDealer"`
	IsSB      bool        `json:"isSmallBlind"`
	IsBB      bool        `json:"isBigBlind"`
	IsTurn    bool        `json:"isTurn"`
	HoleCards []deck.Card `json:"holeCards,omitempty"`
}

// TableSnapshot is the full public state broadcast after every mutation.
type TableSnapshot struct {
	TableID        string         `json:"tableId"`
	Status         string         `json:"status"`
	Street         string         `json:"street"`
	Pot            int            `json:"pot"`
	HighestBet     int            `json:"highestBet"`
	CommunityCards []deck.Card    `json:"communityCards"`
	Seats          []SeatSnapshot `json:"seats"`
}

// ActionPrompt is the turn-specific prompt sent to the current actor.
type ActionPrompt struct {
	ToCall         int  `json:"toCall"`
	MinRaiseTo     int  `json:"minRaiseTo"`
	CanCheck       bool `json:"canCheck"`
	TimeoutSeconds int  `json:"timeoutSeconds"`
}

// WinnerInfo names one winner of a pot share.
type WinnerInfo struct {
	Name      string `json:"name"`
	Seat      int    `json:"seat"`
	Amount    int    `json:"amount"`
	HandLabel string `json:"handLabel"`
}

// HandResult summarises a finished hand.
type HandResult struct {
	Winners  []WinnerInfo `json:"winners"`
	Pot      int          `json:"pot"`
	Showdown bool         `json:"showdown"`
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) BroadcastState(TableSnapshot)              {}
func (NopNotifier) SendHoleCards(string, string, []deck.Card) {}
func (NopNotifier) PromptAction(string, string, ActionPrompt) {}
func (NopNotifier) Announce(string, string)                   {}
func (NopNotifier) AnnounceResult(string, HandResult)         {}

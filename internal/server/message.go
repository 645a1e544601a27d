package server

import (
	"encoding/json"
	"time"

	"github.com/cardroomlabs/holdem/internal/deck"
	"github.com/cardroomlabs/holdem/internal/game"
)

// Message is the envelope for every WebSocket frame in both directions.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type AuthData struct {
	PlayerName string `json:"playerName"`
}

type JoinTableData struct {
	TableID string `json:"tableId"`
}

type LeaveTableData struct {
	TableID string `json:"tableId"`
}

type StartHandData struct {
	TableID string `json:"tableId"`
}

// ActionData carries one betting decision. Amount is the total the
// player wants their bet raised to; it is ignored for everything but a
// raise.
type ActionData struct {
	TableID string `json:"tableId"`
	Action  string `json:"action"`
	Amount  int    `json:"amount,omitempty"`
}

type RebuyData struct {
	TableID string `json:"tableId"`
}

// Server → Client Messages

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TableJoinedData struct {
	TableID string `json:"tableId"`
	Seat    int    `json:"seat"`
}

type TableLeftData struct {
	TableID string `json:"tableId"`
}

type TableInfo struct {
	ID      string `json:"id"`
	Players int    `json:"players"`
	Status  string `json:"status"`
}

type TableListData struct {
	Tables []TableInfo `json:"tables"`
}

// HoleCardsData privately delivers a player's two cards at deal time.
type HoleCardsData struct {
	TableID string      `json:"tableId"`
	Cards   []deck.Card `json:"cards"`
}

// ActionRequiredData tells the current actor what they owe and may do.
type ActionRequiredData struct {
	TableID string            `json:"tableId"`
	Prompt  game.ActionPrompt `json:"prompt"`
}

type NoticeData struct {
	TableID string `json:"tableId"`
	Text    string `json:"text"`
}

type HandResultData struct {
	TableID string          `json:"tableId"`
	Result  game.HandResult `json:"result"`
}

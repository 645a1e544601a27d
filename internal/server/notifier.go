package server

import (
	"github.com/cardroomlabs/holdem/internal/deck"
	"github.com/cardroomlabs/holdem/internal/game"
)

// The server is the tables' Notifier: every table mutation fans out here.
// Delivery goes through each connection's buffered send channel, so a
// table never blocks on a slow client.

// BroadcastState sends the public table snapshot to everyone at the table.
func (s *Server) BroadcastState(snapshot game.TableSnapshot) {
	msg, err := NewMessage(MessageTypeTableState, snapshot)
	if err != nil {
		s.logger.Error("Failed to encode table state", "error", err)
		return
	}
	s.BroadcastToTable(snapshot.TableID, msg)
}

// SendHoleCards privately delivers a player's cards.
func (s *Server) SendHoleCards(tableID, playerID string, cards []deck.Card) {
	msg, err := NewMessage(MessageTypeHoleCards, HoleCardsData{
		TableID: tableID,
		Cards:   cards,
	})
	if err != nil {
		s.logger.Error("Failed to encode hole cards", "error", err)
		return
	}
	s.SendToPlayer(playerID, msg)
}

// PromptAction tells the current actor it is their turn.
func (s *Server) PromptAction(tableID, playerID string, prompt game.ActionPrompt) {
	msg, err := NewMessage(MessageTypeActionRequired, ActionRequiredData{
		TableID: tableID,
		Prompt:  prompt,
	})
	if err != nil {
		s.logger.Error("Failed to encode action prompt", "error", err)
		return
	}
	s.SendToPlayer(playerID, msg)
}

// Announce sends a free-text notice to everyone at the table.
func (s *Server) Announce(tableID, text string) {
	msg, err := NewMessage(MessageTypeNotice, NoticeData{
		TableID: tableID,
		Text:    text,
	})
	if err != nil {
		s.logger.Error("Failed to encode notice", "error", err)
		return
	}
	s.BroadcastToTable(tableID, msg)
}

// AnnounceResult reports a finished hand to everyone at the table.
func (s *Server) AnnounceResult(tableID string, result game.HandResult) {
	msg, err := NewMessage(MessageTypeHandResult, HandResultData{
		TableID: tableID,
		Result:  result,
	})
	if err != nil {
		s.logger.Error("Failed to encode hand result", "error", err)
		return
	}
	s.BroadcastToTable(tableID, msg)
}

package proto

import (
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"ctchen222/Tic-Tac-Toe-Solo/internal/session"
)

// Client message types
const (
	TypeMove  = "move"
	TypeReset = "reset"
	TypeSync  = "sync"
)

// Server message types
const (
	TypeUpdate = "update"
	TypeError  = "error"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type string `json:"type" validate:"required,oneof=move reset sync"`
	Cell *int   `json:"cell" validate:"required_if=Type move,omitempty,min=0,max=8"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type      string          `json:"type"`
	Reason    string          `json:"reason,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
	Seq       uint64          `json:"seq,omitempty"`
	Board     *game.Board     `json:"board,omitempty"`
	Turn      session.Turn    `json:"turn,omitempty"`
	State     session.State   `json:"state,omitempty"`
	Outcome   *game.Outcome   `json:"outcome,omitempty"`
	Stats     *session.Stats  `json:"stats,omitempty"`
	LastMove  *int            `json:"last_move,omitempty"`
	Marks     *MarkAssignment `json:"marks,omitempty"`
}

// MarkAssignment tells the client which mark each side plays.
type MarkAssignment struct {
	Player   game.PlayerMark `json:"player"`
	Computer game.PlayerMark `json:"computer"`
}

// NewUpdate builds the state message rendered by clients.
func NewUpdate(snap session.Snapshot) *ServerToClientMessage {
	board := snap.Board
	outcome := snap.Outcome
	stats := snap.Stats
	lastMove := snap.LastMove
	return &ServerToClientMessage{
		Type:      TypeUpdate,
		SessionID: snap.ID,
		Seq:       snap.Seq,
		Board:     &board,
		Turn:      snap.Turn,
		State:     snap.State,
		Outcome:   &outcome,
		Stats:     &stats,
		LastMove:  &lastMove,
		Marks: &MarkAssignment{
			Player:   session.PlayerMark,
			Computer: session.ComputerMark,
		},
	}
}

// NewError builds an error message for a single client.
func NewError(reason string) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeError, Reason: reason}
}

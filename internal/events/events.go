package events

import (
	"encoding/json"
	"fmt"

	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"ctchen222/Tic-Tac-Toe-Solo/internal/session"
)

// Pub/Sub channel constants
const (
	EventsChannel = "channel:events"
)

// Event types
const (
	TypeGameFinished  = "game_finished"
	TypeSessionClosed = "session_closed"
)

// SessionChannel is the per-session channel carrying state updates for viewers.
func SessionChannel(sessionID string) string {
	return fmt.Sprintf("channel:session:%s", sessionID)
}

// Event represents a global message published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// GameFinishedPayload is the payload for the "game_finished" event.
type GameFinishedPayload struct {
	SessionID string        `json:"session_id"`
	Outcome   game.Outcome  `json:"outcome"`
	Stats     session.Stats `json:"stats"`
}

// SessionClosedPayload is the payload for the "session_closed" event.
type SessionClosedPayload struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
}

// NewEvent marshals payload into an Event of the given type.
func NewEvent(eventType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	data, err := json.Marshal(Event{Type: eventType, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	return data, nil
}

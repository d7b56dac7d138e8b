package types

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/player"
)

// RegistrationRequest attaches a websocket viewer to one of the owner's sessions.
type RegistrationRequest struct {
	Player    *player.Player
	OwnerID   string
	SessionID string // empty starts a new session
	Ctx       context.Context
}

// Departure is sent by a room's read pump when its viewer goes away.
type Departure struct {
	SessionID string
	Player    *player.Player
}

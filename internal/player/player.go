package player

import (
	"sync"
	"time"
)

// PlayerStatus is the connection state of a viewer.
type PlayerStatus string

const (
	StatusConnected    PlayerStatus = "connected"
	StatusDisconnected PlayerStatus = "disconnected"
)

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// Player is one websocket attached to a session. The same human may hold several.
type Player struct {
	ID   string
	Conn Connection

	mu       sync.Mutex
	status   PlayerStatus
	lastSeen time.Time

	// writeMu serialises writes; gorilla connections allow one concurrent writer.
	writeMu sync.Mutex
}

// NewPlayer creates a connected player.
func NewPlayer(id string, conn Connection) *Player {
	return &Player{
		ID:       id,
		Conn:     conn,
		status:   StatusConnected,
		lastSeen: time.Now(),
	}
}

func (p *Player) Status() PlayerStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Player) SetStatus(status PlayerStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = status
	p.lastSeen = time.Now()
}

func (p *Player) LastSeen() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}

// Send writes one message to the player's connection.
func (p *Player) Send(messageType int, data []byte) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.Conn.WriteMessage(messageType, data)
}

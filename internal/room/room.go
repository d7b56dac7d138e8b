package room

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/events"
	"ctchen222/Tic-Tac-Toe-Solo/internal/player"
	"ctchen222/Tic-Tac-Toe-Solo/internal/session"
	"ctchen222/Tic-Tac-Toe-Solo/internal/telemetry"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("room")

// Room binds one game session to the websocket viewers watching it.
type Room struct {
	ID      string
	OwnerID string
	Session *session.Session

	bus     events.Bus
	metrics *telemetry.Metrics

	mu         sync.Mutex
	Players    []*player.Player
	lastActive time.Time

	unsubscribe func()
	closeOnce   sync.Once
	Done        chan struct{}
}

// NewRoom creates a room around s and starts publishing its changes on bus.
func NewRoom(ownerID string, s *session.Session, bus events.Bus, metrics *telemetry.Metrics) *Room {
	r := &Room{
		ID:         s.ID(),
		OwnerID:    ownerID,
		Session:    s,
		bus:        bus,
		metrics:    metrics,
		Players:    make([]*player.Player, 0, 1),
		lastActive: time.Now(),
		Done:       make(chan struct{}),
	}
	r.unsubscribe = s.Subscribe(r.onSessionChange)
	return r
}

// AddPlayer adds a viewer to the room.
func (r *Room) AddPlayer(p *player.Player) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Players = append(r.Players, p)
	r.lastActive = time.Now()
}

// RemovePlayer detaches a viewer and returns how many remain.
func (r *Room) RemovePlayer(p *player.Player) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, other := range r.Players {
		if other == p {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			break
		}
	}
	r.lastActive = time.Now()
	return len(r.Players)
}

// PlayerCount returns the number of attached viewers.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Players)
}

// IdleFor reports how long the room has had no viewer and no activity.
func (r *Room) IdleFor(now time.Time) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Players) > 0 {
		return 0
	}
	return now.Sub(r.lastActive)
}

func (r *Room) touch() {
	r.mu.Lock()
	r.lastActive = time.Now()
	r.mu.Unlock()
}

// Close stops the session and signals Done. Viewers still attached are disconnected.
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		r.unsubscribe()
		r.Session.Close()

		r.mu.Lock()
		players := r.Players
		r.Players = nil
		r.mu.Unlock()

		for _, p := range players {
			if err := p.Conn.Close(); err != nil {
				slog.Warn("failed to close player connection", "player.id", p.ID, "session.id", r.ID, "error", err)
			}
		}
		close(r.Done)
	})
}

// snapshotPlayers copies the viewer list so writes happen without holding r.mu.
func (r *Room) snapshotPlayers() []*player.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	players := make([]*player.Player, len(r.Players))
	copy(players, r.Players)
	return players
}

func outcomeLabel(snap session.Snapshot) string {
	if snap.Outcome.Winner == session.PlayerMark {
		return "player"
	}
	if snap.Outcome.Winner == session.ComputerMark {
		return "computer"
	}
	return "tie"
}

func sideLabel(snap session.Snapshot) string {
	if snap.LastMove >= 0 && snap.Board[snap.LastMove] == session.ComputerMark {
		return "computer"
	}
	return "player"
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

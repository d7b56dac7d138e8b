package hub

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/events"
	"ctchen222/Tic-Tac-Toe-Solo/internal/hub/types"
	"ctchen222/Tic-Tac-Toe-Solo/internal/room"
	"ctchen222/Tic-Tac-Toe-Solo/internal/session"
	"ctchen222/Tic-Tac-Toe-Solo/internal/telemetry"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("hub")

// ErrSessionNotFound is returned for unknown sessions and for sessions owned by someone else.
var ErrSessionNotFound = errors.New("session not found")

const defaultJanitorInterval = time.Minute

// Options tune the sessions a hub creates.
type Options struct {
	ComputerDelay   time.Duration
	IdleTTL         time.Duration // zero keeps idle rooms forever
	JanitorInterval time.Duration
	Scheduler       session.Scheduler
}

// Hub manages all the rooms and their viewers.
type Hub struct {
	bus      events.Bus
	metrics  *telemetry.Metrics
	selector session.MoveSelector
	opts     Options

	mu    sync.RWMutex
	rooms map[string]*room.Room

	register   chan *types.RegistrationRequest
	unregister chan *types.Departure
}

// NewHub creates a new hub.
func NewHub(bus events.Bus, metrics *telemetry.Metrics, selector session.MoveSelector, opts Options) *Hub {
	if opts.JanitorInterval <= 0 {
		opts.JanitorInterval = defaultJanitorInterval
	}
	return &Hub{
		bus:        bus,
		metrics:    metrics,
		selector:   selector,
		opts:       opts,
		rooms:      make(map[string]*room.Room),
		register:   make(chan *types.RegistrationRequest),
		unregister: make(chan *types.Departure),
	}
}

// Run processes registrations until ctx is cancelled, then closes every room.
func (h *Hub) Run(ctx context.Context) {
	go h.runEventSubscriber(ctx)
	go h.runJanitor(ctx)

	for {
		select {
		case req := <-h.register:
			h.handleRegistration(req)
		case departure := <-h.unregister:
			h.handleDeparture(ctx, departure)
		case <-ctx.Done():
			slog.Info("Hub stopping, closing rooms", "rooms.count", h.RoomCount())
			h.closeAll(context.Background())
			return
		}
	}
}

// CreateRoom starts a new session owned by ownerID.
func (h *Hub) CreateRoom(ctx context.Context, ownerID string) (*room.Room, error) {
	ctx, span := tracer.Start(ctx, "hub.CreateRoom", trace.WithAttributes(
		attribute.String("owner.id", ownerID),
	))
	defer span.End()

	id := uuid.New().String()
	span.SetAttributes(attribute.String("session.id", id))

	s := session.New(id, h.selector, session.Options{
		ComputerDelay: h.opts.ComputerDelay,
		Scheduler:     h.opts.Scheduler,
	})

	sub, err := h.bus.Subscribe(ctx, events.SessionChannel(id))
	if err != nil {
		s.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to subscribe to session channel")
		return nil, fmt.Errorf("failed to subscribe to session %s: %w", id, err)
	}

	r := room.NewRoom(ownerID, s, h.bus, h.metrics)

	h.mu.Lock()
	h.rooms[id] = r
	h.mu.Unlock()

	go h.runRoomUpdateSubscriber(context.WithoutCancel(ctx), r, sub)

	slog.InfoContext(ctx, "Session created", "session.id", id, "owner.id", ownerID)
	return r, nil
}

// Room looks up a room by session ID.
func (h *Hub) Room(id string) (*room.Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	r, ok := h.rooms[id]
	return r, ok
}

// OwnedRoom returns the room only when ownerID created it.
func (h *Hub) OwnedRoom(id, ownerID string) (*room.Room, error) {
	r, ok := h.Room(id)
	if !ok || r.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return r, nil
}

// RoomCount returns the number of live rooms.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// CloseRoom removes a room, stops its session and announces it on the events channel.
func (h *Hub) CloseRoom(ctx context.Context, id, reason string) bool {
	ctx, span := tracer.Start(ctx, "hub.CloseRoom", trace.WithAttributes(
		attribute.String("session.id", id),
		attribute.String("close.reason", reason),
	))
	defer span.End()

	h.mu.Lock()
	r, ok := h.rooms[id]
	delete(h.rooms, id)
	h.mu.Unlock()
	if !ok {
		return false
	}

	r.Close()
	slog.InfoContext(ctx, "Session closed", "session.id", id, "close.reason", reason)

	event, err := events.NewEvent(events.TypeSessionClosed, events.SessionClosedPayload{SessionID: id, Reason: reason})
	if err != nil {
		span.RecordError(err)
		return true
	}
	if err := h.bus.Publish(ctx, events.EventsChannel, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish session_closed event", "session.id", id, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish session_closed event")
	}
	return true
}

func (h *Hub) closeAll(ctx context.Context) {
	h.mu.RLock()
	ids := make([]string, 0, len(h.rooms))
	for id := range h.rooms {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	for _, id := range ids {
		h.CloseRoom(ctx, id, "shutdown")
	}
}

// Register returns the register channel.
func (h *Hub) Register() chan<- *types.RegistrationRequest {
	return h.register
}

// Unregister returns the unregister channel.
func (h *Hub) Unregister() chan<- *types.Departure {
	return h.unregister
}

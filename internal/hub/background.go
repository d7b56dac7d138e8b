package hub

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/events"
	"ctchen222/Tic-Tac-Toe-Solo/internal/room"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// runRoomUpdateSubscriber relays the session channel to the room's viewers until
// the room closes.
func (h *Hub) runRoomUpdateSubscriber(ctx context.Context, r *room.Room, sub events.Subscription) {
	slog.DebugContext(ctx, "Starting subscriber for session", "session.id", r.ID, "channel", events.SessionChannel(r.ID))

	go func() {
		<-r.Done
		if err := sub.Close(); err != nil {
			slog.WarnContext(ctx, "Error closing session subscription", "session.id", r.ID, "error", err)
		}
	}()

	for msg := range sub.Messages() {
		r.Broadcast(ctx, msg)
	}
	slog.DebugContext(ctx, "Stopping subscriber for session", "session.id", r.ID)
}

// runJanitor closes rooms nobody has watched or played for longer than IdleTTL.
func (h *Hub) runJanitor(ctx context.Context) {
	if h.opts.IdleTTL <= 0 {
		return
	}
	ticker := time.NewTicker(h.opts.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			h.sweepIdleRooms(ctx, now)
		case <-ctx.Done():
			return
		}
	}
}

// sweepIdleRooms returns how many rooms it closed.
func (h *Hub) sweepIdleRooms(ctx context.Context, now time.Time) int {
	ctx, span := tracer.Start(ctx, "hub.sweepIdleRooms")
	defer span.End()

	h.mu.RLock()
	var idle []string
	for id, r := range h.rooms {
		if r.IdleFor(now) > h.opts.IdleTTL {
			idle = append(idle, id)
		}
	}
	h.mu.RUnlock()

	closed := 0
	for _, id := range idle {
		if h.CloseRoom(ctx, id, "idle") {
			closed++
		}
	}
	span.SetAttributes(attribute.Int("rooms.closed", closed))
	return closed
}

// runEventSubscriber logs the global events published by every instance.
func (h *Hub) runEventSubscriber(ctx context.Context) {
	sub, err := h.bus.Subscribe(ctx, events.EventsChannel)
	if err != nil {
		slog.ErrorContext(ctx, "Event subscriber failed to start", "channel", events.EventsChannel, "error", err)
		return
	}
	slog.InfoContext(ctx, "Event subscriber started", "channel", events.EventsChannel)

	go func() {
		<-ctx.Done()
		sub.Close()
	}()

	for msg := range sub.Messages() {
		h.handleEvent(ctx, msg)
	}
}

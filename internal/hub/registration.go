package hub

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/hub/types"
	"ctchen222/Tic-Tac-Toe-Solo/internal/room"
	"ctchen222/Tic-Tac-Toe-Solo/pkg/proto"
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// handleRegistration attaches a new viewer to an existing session or to a fresh one.
func (h *Hub) handleRegistration(req *types.RegistrationRequest) {
	ctx := req.Ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := tracer.Start(ctx, "hub.handleRegistration", trace.WithAttributes(
		attribute.String("player.id", req.Player.ID),
		attribute.String("session.id", req.SessionID),
	))
	defer span.End()

	var (
		r   *room.Room
		err error
	)
	if req.SessionID == "" {
		r, err = h.CreateRoom(ctx, req.OwnerID)
	} else {
		r, err = h.OwnedRoom(req.SessionID, req.OwnerID)
	}
	if err != nil {
		slog.WarnContext(ctx, "Rejecting websocket registration", "player.id", req.Player.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Registration rejected")
		h.rejectPlayer(ctx, req, err.Error())
		return
	}

	r.AddPlayer(req.Player)
	slog.InfoContext(ctx, "Player attached to session", "player.id", req.Player.ID, "session.id", r.ID)

	// The viewer's first frame is the current state; later ones come from the bus.
	r.Send(ctx, req.Player, proto.NewUpdate(r.Session.Snapshot()))
	go r.ReadPump(req.Player, h.unregister)
}

func (h *Hub) rejectPlayer(ctx context.Context, req *types.RegistrationRequest, reason string) {
	data, err := json.Marshal(proto.NewError(reason))
	if err == nil {
		if err := req.Player.Send(websocket.TextMessage, data); err != nil {
			slog.WarnContext(ctx, "Error sending rejection to player", "player.id", req.Player.ID, "error", err)
		}
	}
	if err := req.Player.Conn.Close(); err != nil {
		slog.WarnContext(ctx, "Error closing rejected connection", "player.id", req.Player.ID, "error", err)
	}
}

// handleDeparture detaches a viewer. The session stays alive until the janitor
// finds it idle.
func (h *Hub) handleDeparture(ctx context.Context, d *types.Departure) {
	ctx, span := tracer.Start(ctx, "hub.handleDeparture", trace.WithAttributes(
		attribute.String("player.id", d.Player.ID),
		attribute.String("session.id", d.SessionID),
	))
	defer span.End()

	r, ok := h.Room(d.SessionID)
	if !ok {
		return
	}
	remaining := r.RemovePlayer(d.Player)
	slog.InfoContext(ctx, "Player detached from session", "player.id", d.Player.ID, "session.id", d.SessionID, "players.remaining", remaining)
}

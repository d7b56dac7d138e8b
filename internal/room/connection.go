package room

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/hub/types"
	"ctchen222/Tic-Tac-Toe-Solo/internal/player"
	"ctchen222/Tic-Tac-Toe-Solo/pkg/proto"
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Broadcast writes an already encoded message to every connected viewer.
func (r *Room) Broadcast(ctx context.Context, data []byte) {
	ctx, span := tracer.Start(contextOrBackground(ctx), "room.Broadcast", trace.WithAttributes(
		attribute.String("session.id", r.ID),
	))
	defer span.End()

	for _, p := range r.snapshotPlayers() {
		if p.Status() != player.StatusConnected {
			continue
		}
		if err := p.Send(websocket.TextMessage, data); err != nil {
			slog.ErrorContext(ctx, "error writing message to player", "player.id", p.ID, "session.id", r.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Error writing message to player")
		}
	}
}

// Send writes a message to a single viewer.
func (r *Room) Send(ctx context.Context, p *player.Player, message *proto.ServerToClientMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		return
	}
	if err := p.Send(websocket.TextMessage, data); err != nil {
		slog.ErrorContext(ctx, "error writing message to player", "player.id", p.ID, "session.id", r.ID, "error", err)
	}
}

// ReadPump feeds the viewer's messages into HandleMessage until the connection
// fails, then hands the viewer to unregister.
func (r *Room) ReadPump(p *player.Player, unregister chan<- *types.Departure) {
	ctx, span := tracer.Start(context.Background(), "room.ReadPump", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("session.id", r.ID),
	))
	defer span.End()

	defer func() {
		p.SetStatus(player.StatusDisconnected)
		p.Conn.Close()
		slog.InfoContext(ctx, "Player disconnected", "player.id", p.ID, "session.id", r.ID)
		select {
		case unregister <- &types.Departure{SessionID: r.ID, Player: p}:
		case <-r.Done:
		}
	}()

	for {
		_, msg, err := p.Conn.ReadMessage()
		if err != nil {
			slog.WarnContext(ctx, "Player connection error", "player.id", p.ID, "session.id", r.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Player connection error")
			return
		}
		r.HandleMessage(ctx, p, msg)
	}
}

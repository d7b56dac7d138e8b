package room

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/player"
	"ctchen222/Tic-Tac-Toe-Solo/internal/session"
	"ctchen222/Tic-Tac-Toe-Solo/internal/validator"
	"ctchen222/Tic-Tac-Toe-Solo/pkg/proto"
	"encoding/json"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HandleMessage handles a message from a viewer. It acts as a dispatcher.
func (r *Room) HandleMessage(ctx context.Context, p *player.Player, rawMessage []byte) {
	ctx, span := tracer.Start(contextOrBackground(ctx), "room.HandleMessage", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("session.id", r.ID),
	))
	defer span.End()

	if p.Status() == player.StatusDisconnected {
		slog.WarnContext(ctx, "ignoring message from disconnected player", "player.id", p.ID)
		span.SetStatus(codes.Error, "Message from disconnected player")
		return
	}
	r.touch()

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		slog.WarnContext(ctx, "error unmarshalling message", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		r.Send(ctx, p, proto.NewError("malformed message"))
		return
	}

	if err := validator.GetValidator().Struct(message); err != nil {
		slog.WarnContext(ctx, "invalid message from player", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		if message.Type == proto.TypeMove {
			r.metrics.RecordRejectedMove(ctx)
		}
		r.Send(ctx, p, proto.NewError("invalid message"))
		return
	}

	span.SetAttributes(attribute.String("message.type", message.Type))

	switch message.Type {
	case proto.TypeMove:
		r.handleMove(ctx, p, *message.Cell)
	case proto.TypeReset:
		slog.InfoContext(ctx, "Player reset the board", "player.id", p.ID, "session.id", r.ID)
		r.Session.Reset()
	case proto.TypeSync:
		r.Send(ctx, p, proto.NewUpdate(r.Session.Snapshot()))
	}
}

// handleMove plays the human's mark. A rejected move is reported to the sender only.
func (r *Room) handleMove(ctx context.Context, p *player.Player, cell int) {
	ctx, span := tracer.Start(ctx, "room.handleMove", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("session.id", r.ID),
		attribute.Int("move.cell", cell),
	))
	defer span.End()

	err := r.Session.PlayerMove(cell)
	if err == nil {
		span.SetAttributes(attribute.Bool("move.valid", true))
		return
	}

	span.SetAttributes(attribute.Bool("move.valid", false))
	span.RecordError(err)
	if !errors.Is(err, session.ErrInvalidMove) {
		slog.ErrorContext(ctx, "unexpected error applying move", "player.id", p.ID, "error", err)
		span.SetStatus(codes.Error, "Unexpected move error")
		return
	}

	slog.WarnContext(ctx, "invalid move from player", "player.id", p.ID, "move.cell", cell, "error", err)
	span.SetStatus(codes.Error, "Invalid move")
	r.metrics.RecordRejectedMove(ctx)
	r.Send(ctx, p, proto.NewError(err.Error()))
}

package room

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/events"
	"ctchen222/Tic-Tac-Toe-Solo/internal/session"
	"ctchen222/Tic-Tac-Toe-Solo/pkg/proto"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// onSessionChange runs after every session mutation, including the
// computer's replies fired from the session scheduler.
func (r *Room) onSessionChange(change session.Change) {
	ctx, span := tracer.Start(context.Background(), "room.publishChange", trace.WithAttributes(
		attribute.String("session.id", r.ID),
		attribute.String("change.kind", string(change.Kind)),
		attribute.Int64("session.seq", int64(change.Snapshot.Seq)),
	))
	defer span.End()

	r.touch()

	data, err := json.Marshal(proto.NewUpdate(change.Snapshot))
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling update", "session.id", r.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error marshalling update")
		return
	}
	if err := r.bus.Publish(ctx, events.SessionChannel(r.ID), data); err != nil {
		slog.ErrorContext(ctx, "failed to publish session update", "session.id", r.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish session update")
	}

	if change.Kind != session.ChangeMove {
		return
	}
	r.metrics.RecordMove(ctx, sideLabel(change.Snapshot))

	if change.Snapshot.State != session.Terminal {
		return
	}
	outcome := outcomeLabel(change.Snapshot)
	r.metrics.RecordGameFinished(ctx, outcome)
	slog.InfoContext(ctx, "Game finished", "session.id", r.ID, "game.outcome", outcome)

	event, err := events.NewEvent(events.TypeGameFinished, events.GameFinishedPayload{
		SessionID: r.ID,
		Outcome:   change.Snapshot.Outcome,
		Stats:     change.Snapshot.Stats,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal game_finished event", "session.id", r.ID, "error", err)
		span.RecordError(err)
		return
	}
	if err := r.bus.Publish(ctx, events.EventsChannel, event); err != nil {
		slog.ErrorContext(ctx, "failed to publish game_finished event", "session.id", r.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish game_finished event")
	}
}

package hub

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/events"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// handleEvent decodes one message from the events channel and reports whether it
// was understood.
func (h *Hub) handleEvent(ctx context.Context, msg []byte) bool {
	eventCtx, eventSpan := tracer.Start(ctx, "hub.handleEvent", trace.WithAttributes(
		attribute.String("event.channel", events.EventsChannel),
	))
	defer eventSpan.End()

	var event events.Event
	if err := json.Unmarshal(msg, &event); err != nil {
		slog.ErrorContext(eventCtx, "Could not unmarshal global event", "error", err)
		eventSpan.RecordError(err)
		eventSpan.SetStatus(codes.Error, "Could not unmarshal global event")
		return false
	}
	eventSpan.SetAttributes(attribute.String("event.type", event.Type))

	switch event.Type {
	case events.TypeGameFinished:
		var payload events.GameFinishedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			slog.ErrorContext(eventCtx, "Could not unmarshal game_finished payload", "error", err)
			eventSpan.RecordError(err)
			eventSpan.SetStatus(codes.Error, "Could not unmarshal game_finished payload")
			return false
		}
		h.handleGameFinished(eventCtx, &payload)

	case events.TypeSessionClosed:
		var payload events.SessionClosedPayload
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			slog.ErrorContext(eventCtx, "Could not unmarshal session_closed payload", "error", err)
			eventSpan.RecordError(err)
			eventSpan.SetStatus(codes.Error, "Could not unmarshal session_closed payload")
			return false
		}
		slog.InfoContext(eventCtx, "Received session_closed event", "session.id", payload.SessionID, "close.reason", payload.Reason)

	default:
		slog.WarnContext(eventCtx, "Unknown global event", "event.type", event.Type)
		return false
	}
	return true
}

func (h *Hub) handleGameFinished(ctx context.Context, payload *events.GameFinishedPayload) {
	_, span := tracer.Start(ctx, "hub.handleGameFinished", trace.WithAttributes(
		attribute.String("session.id", payload.SessionID),
		attribute.String("game.status", string(payload.Outcome.Status)),
	))
	defer span.End()

	slog.InfoContext(ctx, "Received game_finished event",
		"session.id", payload.SessionID,
		"game.status", payload.Outcome.Status,
		"game.winner", payload.Outcome.Winner,
		"stats.player_wins", payload.Stats.PlayerWins,
		"stats.computer_wins", payload.Stats.ComputerWins,
		"stats.ties", payload.Stats.Ties,
	)
}

package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the game counters. A nil *Metrics records nothing.
type Metrics struct {
	moves         metric.Int64Counter
	rejectedMoves metric.Int64Counter
	gamesFinished metric.Int64Counter
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	moves, err := meter.Int64Counter("tictactoe.moves",
		metric.WithDescription("Moves applied to a board"),
		metric.WithUnit("{move}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create moves counter: %w", err)
	}

	rejected, err := meter.Int64Counter("tictactoe.moves.rejected",
		metric.WithDescription("Moves rejected by the session controller"),
		metric.WithUnit("{move}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rejected moves counter: %w", err)
	}

	finished, err := meter.Int64Counter("tictactoe.games.finished",
		metric.WithDescription("Games that reached a win or a tie"),
		metric.WithUnit("{game}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create games finished counter: %w", err)
	}

	return &Metrics{
		moves:         moves,
		rejectedMoves: rejected,
		gamesFinished: finished,
	}, nil
}

// RecordMove counts an applied move by the side that played it.
func (m *Metrics) RecordMove(ctx context.Context, side string) {
	if m == nil {
		return
	}
	m.moves.Add(ctx, 1, metric.WithAttributes(attribute.String("side", side)))
}

// RecordRejectedMove counts a move the controller refused.
func (m *Metrics) RecordRejectedMove(ctx context.Context) {
	if m == nil {
		return
	}
	m.rejectedMoves.Add(ctx, 1)
}

// RecordGameFinished counts a terminal outcome: "player", "computer" or "tie".
func (m *Metrics) RecordGameFinished(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.gamesFinished.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

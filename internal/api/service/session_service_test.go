package service

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/bot"
	"ctchen222/Tic-Tac-Toe-Solo/internal/events"
	"ctchen222/Tic-Tac-Toe-Solo/internal/game"
	"ctchen222/Tic-Tac-Toe-Solo/internal/hub"
	"ctchen222/Tic-Tac-Toe-Solo/internal/session"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionService(t *testing.T) SessionService {
	t.Helper()
	// The computer never gets to reply within a test.
	h := hub.NewHub(events.NewMemoryBus(), nil, bot.Selector{}, hub.Options{ComputerDelay: time.Hour})
	return NewSessionService(h, nil)
}

func TestSessionService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	svc := newTestSessionService(t)

	created, err := svc.Create(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, session.AwaitingPlayerMove, created.State)

	moved, err := svc.Move(ctx, "owner", created.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, game.PlayerX, moved.Board[4])
	assert.Equal(t, session.ComputerTurn, moved.Turn)

	got, err := svc.Get(ctx, "owner", created.ID)
	require.NoError(t, err)
	assert.Equal(t, moved, got)

	reset, err := svc.Reset(ctx, "owner", created.ID)
	require.NoError(t, err)
	assert.Equal(t, game.Board{}, reset.Board)
	assert.Equal(t, session.PlayerTurn, reset.Turn)

	require.NoError(t, svc.Close(ctx, "owner", created.ID))
	_, err = svc.Get(ctx, "owner", created.ID)
	assert.ErrorIs(t, err, hub.ErrSessionNotFound)
}

func TestSessionService_InvalidMove(t *testing.T) {
	ctx := context.Background()
	svc := newTestSessionService(t)

	created, err := svc.Create(ctx, "owner")
	require.NoError(t, err)

	snap, err := svc.Move(ctx, "owner", created.ID, 9)
	require.ErrorIs(t, err, session.ErrInvalidMove)
	require.ErrorIs(t, err, session.ErrOutOfRange)
	assert.Equal(t, game.Board{}, snap.Board, "state is unchanged")

	_, err = svc.Move(ctx, "owner", created.ID, 0)
	require.NoError(t, err)
	_, err = svc.Move(ctx, "owner", created.ID, 1)
	assert.ErrorIs(t, err, session.ErrNotYourTurn)
}

func TestSessionService_OtherOwnersSeeNothing(t *testing.T) {
	ctx := context.Background()
	svc := newTestSessionService(t)

	created, err := svc.Create(ctx, "owner")
	require.NoError(t, err)

	_, err = svc.Get(ctx, "intruder", created.ID)
	assert.ErrorIs(t, err, hub.ErrSessionNotFound)
	_, err = svc.Move(ctx, "intruder", created.ID, 0)
	assert.ErrorIs(t, err, hub.ErrSessionNotFound)
	_, err = svc.Reset(ctx, "intruder", created.ID)
	assert.ErrorIs(t, err, hub.ErrSessionNotFound)
	assert.ErrorIs(t, svc.Close(ctx, "intruder", created.ID), hub.ErrSessionNotFound)

	still, err := svc.Get(ctx, "owner", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, still.ID)
}

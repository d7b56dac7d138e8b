package service

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/auth"
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/models"
	"ctchen222/Tic-Tac-Toe-Solo/internal/api/repository"
	"ctchen222/Tic-Tac-Toe-Solo/internal/db"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService(t *testing.T) (UserService, *auth.TokenManager) {
	t.Helper()
	conn, err := db.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewUserService(repository.NewUserRepository(conn), tokens), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, tokens := newTestUserService(t)

	require.NoError(t, svc.Register(ctx, &models.RegisterRequest{Username: "alice", Password: "wonderland"}))

	token, err := svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "wonderland"})
	require.NoError(t, err)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.NotEmpty(t, claims.Subject)
}

func TestRegister_UsernameTaken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestUserService(t)

	require.NoError(t, svc.Register(ctx, &models.RegisterRequest{Username: "alice", Password: "wonderland"}))
	err := svc.Register(ctx, &models.RegisterRequest{Username: "alice", Password: "another1"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestUserService(t)
	require.NoError(t, svc.Register(ctx, &models.RegisterRequest{Username: "alice", Password: "wonderland"}))

	tests := []struct {
		name string
		req  models.LoginRequest
	}{
		{name: "wrong password", req: models.LoginRequest{Username: "alice", Password: "nope"}},
		{name: "unknown user", req: models.LoginRequest{Username: "bob", Password: "wonderland"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, &tt.req)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestGuestLogin(t *testing.T) {
	svc, tokens := newTestUserService(t)

	first, err := svc.GuestLogin(context.Background())
	require.NoError(t, err)
	second, err := svc.GuestLogin(context.Background())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first.PlayerID, "guest-"))
	assert.NotEqual(t, first.PlayerID, second.PlayerID)

	claims, err := tokens.Verify(first.Token)
	require.NoError(t, err)
	assert.Equal(t, first.PlayerID, claims.Subject)
}

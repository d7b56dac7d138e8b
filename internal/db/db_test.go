package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_InMemory(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer conn.Close()

	var tables []string
	require.NoError(t, conn.SelectContext(ctx, &tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'users'`))
	assert.Equal(t, []string{"users"}, tables)

	require.NoError(t, Migrate(ctx, conn), "migrations are idempotent")
}

func TestOpen_File(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir() + "/master.db"

	conn, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, `INSERT INTO users (username, password_hash) VALUES (?, ?)`, "alice", "hash")
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	var count int
	require.NoError(t, reopened.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`))
	assert.Equal(t, 1, count)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, "127.0.0.1:1")
	assert.Error(t, err)
}

package database

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestIsPostgresDSN(t *testing.T) {
	require.True(t, isPostgresDSN("postgres://u:p@localhost/turmas"))
	require.True(t, isPostgresDSN("PostgreSQL://localhost/turmas"))
	require.False(t, isPostgresDSN("turmas.db"))
	require.False(t, isPostgresDSN("file::memory:?cache=shared"))
}

func TestOpenSQLRejectsEmptyDSN(t *testing.T) {
	_, err := OpenSQL("")
	require.Error(t, err)
}

func TestOpenSQLSQLite(t *testing.T) {
	db, err := OpenSQL("file::memory:")
	require.NoError(t, err)
	require.NoError(t, db.Exec("SELECT 1").Error)
}

func TestConnectRedis(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client, err := ConnectRedis(context.Background(), "redis://"+server.Addr()+"/0")
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = ConnectRedis(context.Background(), "")
	require.Error(t, err)
}

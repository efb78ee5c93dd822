package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDBUnreachableHostReturnsHandle(t *testing.T) {
	// The pgx driver defers DSN handling to the first connection, so an
	// unreachable host surfaces as a ping error with a usable handle.
	// Startup wiring depends on this: a non-nil handle means the server
	// can come up degraded and recover.
	db, err := NewDB("postgres://u:p@127.0.0.1:1/x?sslmode=disable&connect_timeout=1", 4, 2)
	require.Error(t, err)
	require.NotNil(t, db)
	require.NotNil(t, db.Client)
	assert.NoError(t, db.Close())
}

func TestCloseNilSafe(t *testing.T) {
	var db *DB
	assert.NoError(t, db.Close())
}

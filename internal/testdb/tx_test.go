//go:build integration

package testdb_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/Ketaiwk/10xcards/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTxRollsBack(t *testing.T) {
	db := testdb.GetTestDB(t)
	email := "rollback-check@example.com"

	testdb.WithTx(t, db, func(ctx context.Context, tx *sql.Tx) {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, email, hashed_password, created_at, updated_at)
			 VALUES (gen_random_uuid(), $1, 'x', NOW(), NOW())`, email)
		require.NoError(t, err)
	})

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM users WHERE email = $1`, email).Scan(&n))
	assert.Zero(t, n)
}

func TestMigrationsApplied(t *testing.T) {
	db := testdb.GetTestDB(t)

	for _, table := range []string{"users", "flashcard_sets", "flashcards"} {
		var exists bool
		err := db.QueryRow(
			`SELECT EXISTS (SELECT FROM pg_tables WHERE schemaname = 'public' AND tablename = $1)`,
			table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, table)
	}
}

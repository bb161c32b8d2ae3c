package postgres_test

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/Ketaiwk/10xcards/internal/platform/postgres"
	"github.com/Ketaiwk/10xcards/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func newPgError(code string) *pgconn.PgError {
	return &pgconn.PgError{
		Code:           code,
		Message:        "error message",
		TableName:      "flashcards",
		ColumnName:     "question",
		ConstraintName: "flashcards_question_length",
	}
}

type mockResult struct {
	rowsAffected int64
	err          error
}

func (m mockResult) LastInsertId() (int64, error) { return 0, m.err }
func (m mockResult) RowsAffected() (int64, error) { return m.rowsAffected, m.err }

func TestMapError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"no rows", sql.ErrNoRows, store.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", sql.ErrNoRows), store.ErrNotFound},
		{"unique", newPgError("23505"), store.ErrDuplicate},
		{"foreign key", newPgError("23503"), store.ErrInvalidEntity},
		{"check", newPgError("23514"), store.ErrInvalidEntity},
		{"not null", newPgError("23502"), store.ErrInvalidEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, postgres.MapError(tt.err), tt.want)
		})
	}

	assert.NoError(t, postgres.MapError(nil))
	other := errors.New("connection refused")
	assert.Same(t, other, postgres.MapError(other))
	deadlock := newPgError("40P01")
	assert.Equal(t, error(deadlock), postgres.MapError(deadlock))
}

func TestCheckRowsAffected(t *testing.T) {
	t.Parallel()

	assert.NoError(t, postgres.CheckRowsAffected(mockResult{rowsAffected: 1}, store.ErrFlashcardNotFound))
	assert.ErrorIs(t, postgres.CheckRowsAffected(mockResult{}, store.ErrFlashcardNotFound), store.ErrFlashcardNotFound)

	resultErr := errors.New("driver does not support RowsAffected")
	assert.ErrorIs(t, postgres.CheckRowsAffected(mockResult{err: resultErr}, store.ErrNotFound), resultErr)
	assert.Error(t, postgres.CheckRowsAffected(nil, store.ErrNotFound))
}

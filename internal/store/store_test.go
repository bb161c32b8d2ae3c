package store_test

import (
	"database/sql"
	"testing"

	"github.com/Ketaiwk/10xcards/internal/store"
	"github.com/stretchr/testify/assert"
)

// Both *sql.DB and *sql.Tx must satisfy DBTX so stores can run inside and
// outside of transactions.
var (
	_ store.DBTX = (*sql.DB)(nil)
	_ store.DBTX = (*sql.Tx)(nil)
)

func TestListOptionsOffset(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, store.SetListOptions{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 20, store.SetListOptions{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, 30, store.FlashcardListOptions{Page: 2, Limit: 30}.Offset())
}

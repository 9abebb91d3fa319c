package products

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecer struct {
	tag  string
	sql  string
	args []any
}

func (f *fakeExecer) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.sql = sql
	f.args = args
	return pgconn.NewCommandTag(f.tag), nil
}

func TestDecrementStock(t *testing.T) {
	ex := &fakeExecer{tag: "UPDATE 1"}

	ok, err := Ledger{}.DecrementStock(context.Background(), ex, 3, 2)

	require.NoError(t, err)
	assert.True(t, ok)
	// decrement harus satu statement kondisional, bukan baca-lalu-tulis
	assert.Contains(t, ex.sql, "stock >= $2")
	assert.Equal(t, []any{int64(3), 2}, ex.args)
}

func TestDecrementStockInsufficient(t *testing.T) {
	ex := &fakeExecer{tag: "UPDATE 0"}

	ok, err := Ledger{}.DecrementStock(context.Background(), ex, 3, 99)

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIncrementStock(t *testing.T) {
	ex := &fakeExecer{tag: "UPDATE 1"}

	err := Ledger{}.IncrementStock(context.Background(), ex, 3, 2)

	require.NoError(t, err)
	assert.NotContains(t, ex.sql, "stock >=")
}

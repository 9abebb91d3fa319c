package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	err  error
	vals []any
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.vals[i].(string)
		case *int64:
			*p = r.vals[i].(int64)
		case *[]byte:
			*p = r.vals[i].([]byte)
		case *time.Time:
			*p = r.vals[i].(time.Time)
		}
	}
	return nil
}

type fakeDB struct {
	row fakeRow
	tag string

	querySQL string
	execSQL  string
	execArgs []any
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	f.querySQL = sql
	return f.row
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execSQL = sql
	f.execArgs = args
	return pgconn.NewCommandTag(f.tag), nil
}

// Check hanya boleh mencocokkan row yang belum expired; filternya
// dievaluasi Postgres, bukan aplikasi.
func TestCheckFiltersExpiredRows(t *testing.T) {
	db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}
	s := &Store{DB: db}

	rec, err := s.Check(context.Background(), "key-1")

	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Contains(t, db.querySQL, "expires_at > now()")
}

func TestCheckReturnsLiveRecord(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	db := &fakeDB{row: fakeRow{vals: []any{
		"key-1", TargetOrderConfirm, int64(42), StatusCompleted, []byte(`{"id":42}`), now, now.Add(TTL),
	}}}
	s := &Store{DB: db}

	rec, err := s.Check(context.Background(), "key-1")

	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "key-1", rec.Key)
	assert.Equal(t, TargetOrderConfirm, rec.TargetType)
	assert.Equal(t, int64(42), rec.TargetID)
	assert.Equal(t, []byte(`{"id":42}`), rec.ResponseBody)
	assert.Equal(t, now.Add(TTL), rec.ExpiresAt)
}

func TestSaveNewKey(t *testing.T) {
	db := &fakeDB{tag: "INSERT 0 1"}
	s := &Store{DB: db}

	err := s.Save(context.Background(), "key-1", TargetOrderCreate, 42, StatusCompleted, []byte(`{"id":42}`))

	require.NoError(t, err)
	assert.Equal(t, "key-1", db.execArgs[0])
	// expires_at = created_at + TTL
	created := db.execArgs[5].(time.Time)
	expires := db.execArgs[6].(time.Time)
	assert.Equal(t, TTL, expires.Sub(created))
}

// Row hidup tidak boleh ditimpa: upsert-nya dijaga kondisi expired,
// nol row berarti key masih dipakai respons lain.
func TestSaveRejectsLiveKey(t *testing.T) {
	db := &fakeDB{tag: "INSERT 0 0"}
	s := &Store{DB: db}

	err := s.Save(context.Background(), "key-1", TargetOrderCreate, 42, StatusCompleted, []byte(`{"id":43}`))

	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, db.execSQL, "ON CONFLICT (key) DO UPDATE")
	assert.Contains(t, db.execSQL, "idempotency_keys.expires_at <= now()")
}

// Package idempotency menyimpan hasil operasi non-idempotent per key klien,
// supaya retry dengan key yang sama aman: eksekusi pertama disimpan, retry
// berikutnya membaca ulang respons yang sama sampai record kedaluwarsa.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// TTL: retry dalam 24 jam membaca respons tersimpan; setelah itu key dianggap baru.
const TTL = 24 * time.Hour

const (
	TargetOrderCreate  = "order_create"
	TargetOrderConfirm = "order_confirm"

	StatusCompleted = "completed"
)

// ErrDuplicate: insert kedua untuk key yang belum expired. Caller diasumsikan
// Check dulu sebelum operasi; duplikat di sini berarti ada race di hulu dan
// harus kelihatan, bukan ditimpa diam-diam.
var ErrDuplicate = errors.New("idempotency key already exists")

type Record struct {
	Key          string
	TargetType   string
	TargetID     int64
	Status       string
	ResponseBody []byte
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Querier dipenuhi oleh *pgxpool.Pool maupun pgx.Tx.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Store struct{ DB Querier }

// Check mengembalikan record hanya jika ada dan belum expired.
// nil berarti "pertama kali lihat" atau "sudah expired, perlakukan sebagai baru".
func (s *Store) Check(ctx context.Context, key string) (*Record, error) {
	var rec Record
	err := s.DB.QueryRow(ctx, `
		SELECT key, target_type, target_id, status, response_body, created_at, expires_at
		FROM idempotency_keys
		WHERE key = $1 AND expires_at > now()`, key,
	).Scan(&rec.Key, &rec.TargetType, &rec.TargetID, &rec.Status, &rec.ResponseBody, &rec.CreatedAt, &rec.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Save menyimpan record baru dengan expires_at = now + 24h. Row lama yang
// sudah expired boleh ditimpa (key-nya dianggap baru lagi); row yang masih
// hidup tidak pernah ditimpa dan menghasilkan ErrDuplicate.
func (s *Store) Save(ctx context.Context, key, targetType string, targetID int64, status string, responseBody []byte) error {
	now := time.Now().UTC()
	ct, err := s.DB.Exec(ctx, `
		INSERT INTO idempotency_keys(key, target_type, target_id, status, response_body, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (key) DO UPDATE
		SET target_type = EXCLUDED.target_type,
		    target_id = EXCLUDED.target_id,
		    status = EXCLUDED.status,
		    response_body = EXCLUDED.response_body,
		    created_at = EXCLUDED.created_at,
		    expires_at = EXCLUDED.expires_at
		WHERE idempotency_keys.expires_at <= now()`,
		key, targetType, targetID, status, responseBody, now, now.Add(TTL),
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrDuplicate
	}
	return nil
}

package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ariefcatur/go-order-pipeline.git/internal/products"
)

// Repo memegang siklus hidup order. Semua operasi yang menyentuh stok
// berjalan dalam satu transaksi bersama tulis order/order_items, jadi
// kegagalan di tengah selalu rollback total, tidak pernah hasil parsial.
type Repo struct {
	DB     DB
	Ledger products.Ledger
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB adalah subset *pgxpool.Pool yang dipakai repo.
type DB interface {
	querier
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// Create: satu unit atomik -> cek produk, decrement stok kondisional,
// snapshot harga, insert order + items. Gagal di item manapun membatalkan
// seluruh decrement sebelumnya dalam panggilan ini (rollback via defer).
func (r *Repo) Create(ctx context.Context, customerID int64, items []ItemInput) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	type line struct {
		productID int64
		qty       int
		unitPrice int
		subtotal  int
	}
	lines := make([]line, 0, len(items))
	total := 0

	for _, it := range items {
		var price int
		err := tx.QueryRow(ctx, `SELECT price_cents FROM products WHERE id = $1`, it.ProductID).Scan(&price)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ProductNotFoundError{ProductID: it.ProductID}
		}
		if err != nil {
			return nil, err
		}

		ok, err := r.Ledger.DecrementStock(ctx, tx, it.ProductID, it.Qty)
		if err != nil {
			return nil, err
		}
		if !ok {
			var avail int
			if err := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, it.ProductID).Scan(&avail); err != nil {
				return nil, err
			}
			return nil, &InsufficientStockError{ProductID: it.ProductID, Required: it.Qty, Available: avail}
		}

		sub := price * it.Qty
		total += sub
		lines = append(lines, line{productID: it.ProductID, qty: it.Qty, unitPrice: price, subtotal: sub})
	}

	var orderID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO orders(customer_id, status, total_cents)
		VALUES ($1, $2, $3)
		RETURNING id`,
		customerID, StatusCreated, total,
	).Scan(&orderID)
	if err != nil {
		return nil, err
	}

	for _, l := range lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items(order_id, product_id, qty, unit_price_cents, subtotal_cents)
			VALUES ($1, $2, $3, $4, $5)`,
			orderID, l.productID, l.qty, l.unitPrice, l.subtotal,
		)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	// baca ulang setelah commit supaya respons persis isi database
	return r.GetByID(ctx, orderID)
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Order, error) {
	return r.getOrder(ctx, r.DB, id)
}

func (r *Repo) getOrder(ctx context.Context, q querier, id int64) (*Order, error) {
	var o Order
	err := q.QueryRow(ctx, `
		SELECT id, customer_id, status, total_cents, created_at, confirmed_at, canceled_at
		FROM orders WHERE id = $1`, id,
	).Scan(&o.ID, &o.CustomerID, &o.Status, &o.TotalCents, &o.CreatedAt, &o.ConfirmedAt, &o.CanceledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := q.Query(ctx, `
		SELECT id, order_id, product_id, qty, unit_price_cents, subtotal_cents
		FROM order_items WHERE order_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Qty, &it.UnitPriceCents, &it.SubtotalCents); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &o, nil
}

// Confirm: CREATED -> CONFIRMED. Sudah CONFIRMED adalah no-op idempotent;
// CANCELED ditolak. Update-nya kondisional pada status supaya race dua
// confirm konkuren cuma menghasilkan satu stamp confirmed_at.
func (r *Repo) Confirm(ctx context.Context, id int64) (*Order, error) {
	o, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch o.Status {
	case StatusConfirmed:
		return o, nil
	case StatusCreated:
	default:
		return nil, &InvalidTransitionError{From: o.Status, To: StatusConfirmed}
	}

	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status = $2, confirmed_at = now()
		WHERE id = $1 AND status = $3`,
		id, StatusConfirmed, StatusCreated,
	)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		// keduluan transisi lain; baca ulang dan nilai ulang
		o, err = r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if o.Status == StatusConfirmed {
			return o, nil
		}
		return nil, &InvalidTransitionError{From: o.Status, To: StatusConfirmed}
	}
	return r.GetByID(ctx, id)
}

// Cancel mengembalikan stok setiap item lalu menandai CANCELED, semuanya
// dalam satu transaksi: gagal di tengah membatalkan seluruh pembatalan.
func (r *Repo) Cancel(ctx context.Context, id int64) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	o, err := r.getOrder(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if o.Status == StatusCanceled {
		return o, nil
	}
	if err := cancelable(o, time.Now().UTC()); err != nil {
		return nil, err
	}

	for _, it := range o.Items {
		if err := r.Ledger.IncrementStock(ctx, tx, it.ProductID, it.Qty); err != nil {
			return nil, err
		}
	}

	// kondisional pada status yang tadi dibaca; dua cancel konkuren
	// cuma satu yang lolos, sisanya rollback tanpa restore stok kedua
	ct, err := tx.Exec(ctx, `
		UPDATE orders SET status = $2, canceled_at = now()
		WHERE id = $1 AND status = $3`,
		id, StatusCanceled, o.Status,
	)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		_ = tx.Rollback(ctx)
		o, err = r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if o.Status == StatusCanceled {
			return o, nil
		}
		return nil, &InvalidTransitionError{From: o.Status, To: StatusCanceled}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// cancelable menilai reversal window untuk order CONFIRMED.
// Order CREATED lolos tanpa cek window.
func cancelable(o *Order, now time.Time) error {
	if o.Status != StatusConfirmed {
		return nil
	}
	if o.ConfirmedAt == nil || now.Sub(*o.ConfirmedAt) > CancelWindow {
		return ErrCancelWindowExpired
	}
	return nil
}

// Search tanpa items, urut id naik; ambil limit+1 supaya handler bisa
// menentukan hasMore.
func (r *Repo) Search(ctx context.Context, q SearchQuery) ([]Order, error) {
	sql := `SELECT id, customer_id, status, total_cents, created_at, confirmed_at, canceled_at
		FROM orders WHERE id > $1`
	args := []any{q.Cursor}
	if q.Status != "" {
		args = append(args, q.Status)
		sql += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if q.From != nil {
		args = append(args, *q.From)
		sql += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if q.To != nil {
		args = append(args, *q.To)
		sql += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}
	args = append(args, q.Limit+1)
	sql += fmt.Sprintf(" ORDER BY id ASC LIMIT $%d", len(args))

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Status, &o.TotalCents, &o.CreatedAt, &o.ConfirmedAt, &o.CanceledAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

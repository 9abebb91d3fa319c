package products

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer dipenuhi oleh *pgxpool.Pool maupun pgx.Tx, jadi operasi ledger
// bisa ikut transaksi pemanggil tanpa state global.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Ledger memegang counter stok. Mutasi stok HANYA lewat dua operasi ini.
type Ledger struct{}

// DecrementStock mengurangi stok qty unit hanya jika stok cukup, sebagai satu
// statement kondisional yang dievaluasi Postgres. Tidak pernah baca-lalu-tulis
// dari aplikasi, sehingga decrement konkuren tidak bisa bikin stok negatif.
// Return false (tanpa efek samping) kalau stok kurang atau produk tidak ada.
func (Ledger) DecrementStock(ctx context.Context, q Execer, productID int64, qty int) (bool, error) {
	ct, err := q.Exec(ctx, `
		UPDATE products
		SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2`,
		productID, qty,
	)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

// IncrementStock mengembalikan qty unit tanpa syarat. Dipakai hanya sebagai
// aksi kompensasi saat pembatalan order; pemanggil yang menjamin sekali panggil
// per pembatalan.
func (Ledger) IncrementStock(ctx context.Context, q Execer, productID int64, qty int) error {
	_, err := q.Exec(ctx, `
		UPDATE products
		SET stock = stock + $2, updated_at = now()
		WHERE id = $1`,
		productID, qty,
	)
	return err
}

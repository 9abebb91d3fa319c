package products

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("product not found")
	ErrSKUTaken = errors.New("sku already exists")
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, p CreateParams) (*Product, error) {
	out := Product{SKU: p.SKU, Name: p.Name, PriceCents: p.PriceCents, Stock: p.Stock}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO products(sku, name, price_cents, stock)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		p.SKU, p.Name, p.PriceCents, p.Stock,
	).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, ErrSKUTaken
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, sku, name, price_cents, stock, created_at, updated_at
		FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.SKU, &p.Name, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repo) Search(ctx context.Context, search string, cursor int64, limit int) ([]Product, error) {
	sql := `SELECT id, sku, name, price_cents, stock, created_at, updated_at FROM products WHERE id > $1`
	args := []any{cursor}
	if search != "" {
		args = append(args, "%"+search+"%")
		sql += fmt.Sprintf(" AND (sku ILIKE $%d OR name ILIKE $%d)", len(args), len(args))
	}
	args = append(args, limit+1)
	sql += fmt.Sprintf(" ORDER BY id ASC LIMIT $%d", len(args))

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &p.PriceCents, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Update(ctx context.Context, id int64, p UpdateParams) (*Product, error) {
	cur, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		cur.Name = *p.Name
	}
	if p.PriceCents != nil {
		cur.PriceCents = *p.PriceCents
	}
	if p.Stock != nil {
		cur.Stock = *p.Stock
	}

	_, err = r.DB.Exec(ctx, `
		UPDATE products SET name = $2, price_cents = $3, stock = $4, updated_at = now()
		WHERE id = $1`,
		id, cur.Name, cur.PriceCents, cur.Stock,
	)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

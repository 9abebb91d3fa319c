package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound   = errors.New("customer not found")
	ErrEmailTaken = errors.New("email already exists")
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, p CreateParams) (*Customer, error) {
	c := Customer{Name: p.Name, Email: p.Email, Phone: p.Phone}
	err := r.DB.QueryRow(ctx, `
		INSERT INTO customers(name, email, phone)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		p.Name, p.Email, p.Phone,
	).Scan(&c.ID, &c.CreatedAt)
	if isUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) GetByID(ctx context.Context, id int64) (*Customer, error) {
	var c Customer
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, email, phone, created_at
		FROM customers WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Search: cursor pagination by id ascending; ambil limit+1 baris
// supaya caller bisa menentukan hasMore.
func (r *Repo) Search(ctx context.Context, search string, cursor int64, limit int) ([]Customer, error) {
	sql := `SELECT id, name, email, phone, created_at FROM customers WHERE id > $1`
	args := []any{cursor}
	if search != "" {
		args = append(args, "%"+search+"%")
		sql += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)", len(args), len(args), len(args))
	}
	args = append(args, limit+1)
	sql += fmt.Sprintf(" ORDER BY id ASC LIMIT $%d", len(args))

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) Update(ctx context.Context, id int64, p UpdateParams) (*Customer, error) {
	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = p.Phone
	}

	_, err = r.DB.Exec(ctx, `
		UPDATE customers SET name = $2, email = $3, phone = $4 WHERE id = $1`,
		id, c.Name, c.Email, c.Phone,
	)
	if isUniqueViolation(err) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *Repo) Delete(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

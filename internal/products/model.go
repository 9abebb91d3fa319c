package products

import "time"

type Product struct {
	ID         int64     `json:"id"`
	SKU        string    `json:"sku"`
	Name       string    `json:"name"`
	PriceCents int       `json:"price_cents"`
	Stock      int       `json:"stock"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreateParams struct {
	SKU        string
	Name       string
	PriceCents int
	Stock      int
}

// UpdateParams: field nil berarti tidak diubah. SKU immutable, tidak ada di sini.
type UpdateParams struct {
	Name       *string
	PriceCents *int
	Stock      *int
}

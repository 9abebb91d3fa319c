package orders

import "time"

type Order struct {
	ID          int64       `json:"id"`
	CustomerID  int64       `json:"customer_id"`
	Status      Status      `json:"status"`
	TotalCents  int         `json:"total_cents"`
	CreatedAt   time.Time   `json:"created_at"`
	ConfirmedAt *time.Time  `json:"confirmed_at"`
	CanceledAt  *time.Time  `json:"canceled_at"`
	Items       []OrderItem `json:"items,omitempty"`
}

// OrderItem menyimpan snapshot harga produk saat order dibuat;
// perubahan harga belakangan tidak pernah menyentuh order yang sudah ada.
type OrderItem struct {
	ID             int64 `json:"id"`
	OrderID        int64 `json:"order_id"`
	ProductID      int64 `json:"product_id"`
	Qty            int   `json:"qty"`
	UnitPriceCents int   `json:"unit_price_cents"`
	SubtotalCents  int   `json:"subtotal_cents"`
}

type ItemInput struct {
	ProductID int64 `json:"product_id"`
	Qty       int   `json:"qty"`
}

type SearchQuery struct {
	Status Status
	From   *time.Time
	To     *time.Time
	Cursor int64
	Limit  int
}

package customers

import "time"

type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateParams struct {
	Name  string
	Email string
	Phone *string
}

// UpdateParams: field nil berarti tidak diubah.
type UpdateParams struct {
	Name  *string
	Email *string
	Phone *string
}

package orders

import (
	"errors"
	"fmt"
	"time"
)

// CancelWindow: order CONFIRMED masih boleh dibatalkan selama 10 menit
// sejak confirmed_at; lewat itu CONFIRMED jadi terminal.
const CancelWindow = 10 * time.Minute

var (
	ErrNotFound            = errors.New("order not found")
	ErrCancelWindowExpired = errors.New("cannot cancel confirmed order after 10 minutes")
)

type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product %d not found", e.ProductID)
}

type InsufficientStockError struct {
	ProductID int64
	Required  int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: available %d, required %d",
		e.ProductID, e.Available, e.Required)
}

type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

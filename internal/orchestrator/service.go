// Package orchestrator menjalankan saga validate customer -> create order ->
// confirm order sebagai satu operasi komposit per request eksternal.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-order-pipeline.git/internal/gateway"
)

type Request struct {
	CustomerID     int64                    `json:"customer_id"`
	Items          []gateway.OrderItemInput `json:"items"`
	IdempotencyKey string                   `json:"idempotency_key"`
	CorrelationID  string                   `json:"correlation_id,omitempty"`
}

type Result struct {
	Customer *gateway.Customer `json:"customer"`
	Order    *gateway.Order    `json:"order"`
}

// StepError membawa step yang gagal plus terjemahan HTTP-nya untuk envelope respons.
type StepError struct {
	Step    string
	Status  int
	Code    string
	Message string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s", e.Step, e.Message)
}

type CustomersAPI interface {
	Customer(ctx context.Context, id int64) (*gateway.Customer, error)
}

type OrdersAPI interface {
	CreateOrder(ctx context.Context, customerID int64, items []gateway.OrderItemInput) (*gateway.Order, error)
	ConfirmOrder(ctx context.Context, orderID int64, idempotencyKey string) (*gateway.Order, error)
}

type Service struct {
	Customers CustomersAPI
	Orders    OrdersAPI
	Log       *logrus.Logger
}

// CreateAndConfirm menjalankan step berurutan; kegagalan pertama menghentikan
// sisa step. Tidak ada kompensasi: order yang sudah dibuat tapi gagal
// confirm dibiarkan CREATED dengan stok ter-reserve, untuk rekonsiliasi
// manual (lihat DESIGN.md).
func (s *Service) CreateAndConfirm(ctx context.Context, req Request) (*Result, *StepError) {
	customer, err := s.Customers.Customer(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, gateway.ErrCustomerNotFound) {
			return nil, &StepError{
				Step:    "validate_customer",
				Status:  http.StatusBadRequest,
				Code:    "Invalid customer",
				Message: fmt.Sprintf("Customer %d not found", req.CustomerID),
			}
		}
		return nil, upstream("validate_customer", err)
	}

	order, err := s.Orders.CreateOrder(ctx, customer.ID, req.Items)
	if err != nil {
		return nil, upstream("create_order", err)
	}

	confirmed, err := s.Orders.ConfirmOrder(ctx, order.ID, req.IdempotencyKey)
	if err != nil {
		s.Log.WithError(err).WithField("order_id", order.ID).
			Error("confirm failed after create; order left CREATED with reserved stock")
		return nil, upstream("confirm_order", err)
	}

	return &Result{Customer: customer, Order: confirmed}, nil
}

func upstream(step string, err error) *StepError {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		// error bisnis downstream diteruskan apa adanya (status + pesan)
		return &StepError{Step: step, Status: apiErr.Status, Code: apiErr.Code, Message: apiErr.Message}
	}
	return &StepError{
		Step:    step,
		Status:  http.StatusBadGateway,
		Code:    "Upstream failure",
		Message: err.Error(),
	}
}

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type OrderItemInput struct {
	ProductID int64 `json:"product_id"`
	Qty       int   `json:"qty"`
}

type OrderItem struct {
	ID             int64 `json:"id"`
	OrderID        int64 `json:"order_id"`
	ProductID      int64 `json:"product_id"`
	Qty            int   `json:"qty"`
	UnitPriceCents int   `json:"unit_price_cents"`
	SubtotalCents  int   `json:"subtotal_cents"`
}

type Order struct {
	ID          int64       `json:"id"`
	CustomerID  int64       `json:"customer_id"`
	Status      string      `json:"status"`
	TotalCents  int         `json:"total_cents"`
	CreatedAt   time.Time   `json:"created_at"`
	ConfirmedAt *time.Time  `json:"confirmed_at"`
	CanceledAt  *time.Time  `json:"canceled_at"`
	Items       []OrderItem `json:"items,omitempty"`
}

// APIError adalah body error {error, message} dari orders API plus status HTTP-nya.
type APIError struct {
	Status  int
	Code    string `json:"error"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

type OrdersClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewOrdersClient(baseURL string, timeout time.Duration) *OrdersClient {
	return &OrdersClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *OrdersClient) CreateOrder(ctx context.Context, customerID int64, items []OrderItemInput) (*Order, error) {
	payload := map[string]any{"customer_id": customerID, "items": items}
	return c.do(ctx, http.MethodPost, "/orders", payload, "")
}

func (c *OrdersClient) ConfirmOrder(ctx context.Context, orderID int64, idempotencyKey string) (*Order, error) {
	path := fmt.Sprintf("/orders/%d/confirm", orderID)
	return c.do(ctx, http.MethodPost, path, nil, idempotencyKey)
}

func (c *OrdersClient) do(ctx context.Context, method, path string, payload any, idempotencyKey string) (*Order, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("X-Idempotency-Key", idempotencyKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("orders api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Code == "" {
			apiErr.Code = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		return nil, &apiErr
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("orders api: decode response: %w", err)
	}
	return &order, nil
}

// Package gateway berisi klien HTTP antar-service. Tipe di sini adalah DTO
// sisi pemanggil, sengaja terpisah dari model internal service tujuan.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
)

type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// CustomersClient membaca customer lewat route internal ber-bearer token.
// Timeout dibatasi; gagal = gagal, tidak ada retry internal. Retry adalah
// urusan pemanggil luar lewat idempotency key.
type CustomersClient struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewCustomersClient(baseURL, token string, timeout time.Duration) *CustomersClient {
	return &CustomersClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *CustomersClient) Customer(ctx context.Context, id int64) (*Customer, error) {
	url := fmt.Sprintf("%s/internal/customers/%d", c.BaseURL, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("customers api: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrCustomerNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("customers api: unexpected status %d", resp.StatusCode)
	}

	var cust Customer
	if err := json.NewDecoder(resp.Body).Decode(&cust); err != nil {
		return nil, fmt.Errorf("customers api: decode response: %w", err)
	}
	return &cust, nil
}

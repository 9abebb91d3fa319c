package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdersClientCreate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		// create dari orchestrator jalan tanpa idempotency key
		assert.Empty(t, r.Header.Get("X-Idempotency-Key"))

		var body struct {
			CustomerID int64            `json:"customer_id"`
			Items      []OrderItemInput `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(7), body.CustomerID)
		assert.Equal(t, []OrderItemInput{{ProductID: 3, Qty: 2}}, body.Items)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":42,"customer_id":7,"status":"CREATED","total_cents":2500,"created_at":"2025-06-01T12:00:00Z","confirmed_at":null,"canceled_at":null}`))
	}))
	defer srv.Close()

	c := NewOrdersClient(srv.URL, time.Second)
	order, err := c.CreateOrder(context.Background(), 7, []OrderItemInput{{ProductID: 3, Qty: 2}})

	require.NoError(t, err)
	assert.Equal(t, int64(42), order.ID)
	assert.Equal(t, "CREATED", order.Status)
}

func TestOrdersClientConfirm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/42/confirm", r.URL.Path)
		assert.Equal(t, "key-1", r.Header.Get("X-Idempotency-Key"))
		_, _ = w.Write([]byte(`{"id":42,"customer_id":7,"status":"CONFIRMED","total_cents":2500,"created_at":"2025-06-01T12:00:00Z","confirmed_at":"2025-06-01T12:01:00Z","canceled_at":null}`))
	}))
	defer srv.Close()

	c := NewOrdersClient(srv.URL, time.Second)
	order, err := c.ConfirmOrder(context.Background(), 42, "key-1")

	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", order.Status)
	require.NotNil(t, order.ConfirmedAt)
}

func TestOrdersClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Insufficient stock","message":"product 3 has 2 in stock, 5 requested"}`))
	}))
	defer srv.Close()

	c := NewOrdersClient(srv.URL, time.Second)
	_, err := c.CreateOrder(context.Background(), 7, []OrderItemInput{{ProductID: 3, Qty: 5}})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Insufficient stock", apiErr.Code)
	assert.Contains(t, apiErr.Message, "5 requested")
}

func TestOrdersClientErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewOrdersClient(srv.URL, time.Second)
	_, err := c.ConfirmOrder(context.Background(), 42, "key-1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "unexpected status 502", apiErr.Code)
}

package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-order-pipeline.git/internal/gateway"
	"github.com/ariefcatur/go-order-pipeline.git/internal/httpx"
	"github.com/ariefcatur/go-order-pipeline.git/internal/idempotency"
	kafkax "github.com/ariefcatur/go-order-pipeline.git/internal/kafka"
	"github.com/ariefcatur/go-order-pipeline.git/internal/redisx"
)

type Store interface {
	Create(ctx context.Context, customerID int64, items []ItemInput) (*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)
	Search(ctx context.Context, q SearchQuery) ([]Order, error)
	Confirm(ctx context.Context, id int64) (*Order, error)
	Cancel(ctx context.Context, id int64) (*Order, error)
}

type IdemStore interface {
	Check(ctx context.Context, key string) (*idempotency.Record, error)
	Save(ctx context.Context, key, targetType string, targetID int64, status string, responseBody []byte) error
}

type CustomerDirectory interface {
	Customer(ctx context.Context, id int64) (*gateway.Customer, error)
}

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Handler struct {
	Store     Store
	Idem      IdemStore
	Customers CustomerDirectory
	Cache     Cache
	Events    Publisher
	Log       *logrus.Logger
	Service   string
}

func (h *Handler) Register(r *chi.Mux) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Post("/{id}/confirm", h.confirm)
		r.Post("/{id}/cancel", h.cancel)
	})
}

type createReq struct {
	CustomerID int64       `json:"customer_id"`
	Items      []ItemInput `json:"items"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteErrorMsg(w, http.StatusBadRequest, "Validation error", "invalid JSON body")
		return
	}
	if details := validateCreateOrder(req); len(details) > 0 {
		httpx.WriteValidation(w, details)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	key := r.Header.Get("X-Idempotency-Key")
	if key != "" {
		body, hit, err := h.replay(ctx, idempotency.TargetOrderCreate, key)
		if err != nil {
			h.Log.WithError(err).Error("idempotency check failed")
			httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if hit {
			h.Log.WithField("idempotency_key", key).Info("returning cached response for idempotency key")
			httpx.WriteRaw(w, http.StatusOK, body)
			return
		}
	}

	// validasi customer sekali, saat pembuatan; setelah itu customer_id
	// cuma referensi
	if _, err := h.Customers.Customer(ctx, req.CustomerID); err != nil {
		if errors.Is(err, gateway.ErrCustomerNotFound) {
			httpx.WriteErrorMsg(w, http.StatusBadRequest, "Invalid customer",
				fmt.Sprintf("Customer %d not found", req.CustomerID))
			return
		}
		h.Log.WithError(err).WithField("customer_id", req.CustomerID).Error("customer validation failed")
		httpx.WriteErrorMsg(w, http.StatusBadGateway, "Upstream failure", "failed to validate customer")
		return
	}

	order, err := h.Store.Create(ctx, req.CustomerID, req.Items)
	if err != nil {
		h.writeError(w, err)
		return
	}

	body, err := json.Marshal(order)
	if err != nil {
		h.Log.WithError(err).Error("marshal order")
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if key != "" {
		if err := h.Idem.Save(ctx, key, idempotency.TargetOrderCreate, order.ID, idempotency.StatusCompleted, body); err != nil {
			// ErrDuplicate di sini berarti dua request konkuren lolos Check
			// dengan key sama; race yang diterima, cukup kelihatan di log
			h.Log.WithError(err).WithField("idempotency_key", key).Warn("idempotency save failed")
		}
		h.Cache.Set(ctx, fmt.Sprintf(redisx.KeyIdemResponse, idempotency.TargetOrderCreate, key), body, redisx.TTLIdempotency)
	}
	h.Cache.Set(ctx, fmt.Sprintf(redisx.KeyOrderBody, order.ID), body, redisx.TTLOrderCache)
	h.publish(EventOrderCreated, order)

	h.Log.WithField("order_id", order.ID).Info("order created")
	httpx.WriteRaw(w, http.StatusCreated, body)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.ParseID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	cacheKey := fmt.Sprintf(redisx.KeyOrderBody, id)
	if body, hit := h.Cache.Get(ctx, cacheKey); hit {
		httpx.WriteRaw(w, http.StatusOK, body)
		return
	}

	order, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	body, err := json.Marshal(order)
	if err != nil {
		h.Log.WithError(err).Error("marshal order")
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.Cache.Set(ctx, cacheKey, body, redisx.TTLOrderCache)
	httpx.WriteRaw(w, http.StatusOK, body)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := SearchQuery{
		Cursor: httpx.ParseCursor(r),
		Limit:  httpx.ParseLimit(r),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := Status(raw)
		if !s.Valid() {
			httpx.WriteValidation(w, []httpx.FieldError{{Path: "status", Message: "must be CREATED, CONFIRMED or CANCELED"}})
			return
		}
		q.Status = s
	}
	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"from", &q.From}, {"to", &q.To}} {
		if raw := r.URL.Query().Get(p.name); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				httpx.WriteValidation(w, []httpx.FieldError{{Path: p.name, Message: "must be an RFC3339 timestamp"}})
				return
			}
			*p.dst = &t
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rows, err := h.Store.Search(ctx, q)
	if err != nil {
		h.writeError(w, err)
		return
	}

	hasMore := len(rows) > q.Limit
	if hasMore {
		rows = rows[:q.Limit]
	}
	var next *string
	if hasMore {
		s := strconv.FormatInt(rows[len(rows)-1].ID, 10)
		next = &s
	}
	if rows == nil {
		rows = []Order{}
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Page{
		Data:       rows,
		Pagination: httpx.Pagination{NextCursor: next, HasMore: hasMore, Limit: q.Limit},
	})
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.ParseID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}
	key := r.Header.Get("X-Idempotency-Key")
	if key == "" {
		httpx.WriteError(w, http.StatusBadRequest, "X-Idempotency-Key header is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	body, hit, err := h.replay(ctx, idempotency.TargetOrderConfirm, key)
	if err != nil {
		h.Log.WithError(err).Error("idempotency check failed")
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if hit {
		h.Log.WithField("idempotency_key", key).Info("returning cached response for idempotency key")
		httpx.WriteRaw(w, http.StatusOK, body)
		return
	}

	order, err := h.Store.Confirm(ctx, id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	body, err = json.Marshal(order)
	if err != nil {
		h.Log.WithError(err).Error("marshal order")
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := h.Idem.Save(ctx, key, idempotency.TargetOrderConfirm, id, idempotency.StatusCompleted, body); err != nil {
		h.Log.WithError(err).WithField("idempotency_key", key).Warn("idempotency save failed")
	}
	h.Cache.Set(ctx, fmt.Sprintf(redisx.KeyIdemResponse, idempotency.TargetOrderConfirm, key), body, redisx.TTLIdempotency)
	h.Cache.Set(ctx, fmt.Sprintf(redisx.KeyOrderBody, id), body, redisx.TTLOrderCache)
	h.publish(EventOrderConfirmed, order)

	h.Log.WithField("order_id", id).Info("order confirmed")
	httpx.WriteRaw(w, http.StatusOK, body)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.ParseID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	order, err := h.Store.Cancel(ctx, id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	body, err := json.Marshal(order)
	if err != nil {
		h.Log.WithError(err).Error("marshal order")
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	h.Cache.Set(ctx, fmt.Sprintf(redisx.KeyOrderBody, id), body, redisx.TTLOrderCache)
	h.publish(EventOrderCanceled, order)

	h.Log.WithField("order_id", id).Info("order canceled and stock restored")
	httpx.WriteRaw(w, http.StatusOK, body)
}

// replay mencari respons tersimpan untuk key: Redis dulu (fast path),
// lalu store. Redis tidak pernah meng-override store, cuma mempercepat.
func (h *Handler) replay(ctx context.Context, targetType, key string) ([]byte, bool, error) {
	cacheKey := fmt.Sprintf(redisx.KeyIdemResponse, targetType, key)
	if body, hit := h.Cache.Get(ctx, cacheKey); hit {
		return body, true, nil
	}
	rec, err := h.Idem.Check(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if rec == nil {
		return nil, false, nil
	}
	h.Cache.Set(ctx, cacheKey, rec.ResponseBody, time.Until(rec.ExpiresAt))
	return rec.ResponseBody, true, nil
}

func (h *Handler) publish(eventType string, o *Order) {
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		CorrelationID: strconv.FormatInt(o.ID, 10),
		Payload: kafkax.MustMarshal(OrderEventPayload{
			OrderID:    o.ID,
			CustomerID: o.CustomerID,
			Status:     o.Status,
			TotalCents: o.TotalCents,
		}),
	}
	h.Events.Publish(PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var (
		notFound      *ProductNotFoundError
		noStock       *InsufficientStockError
		badTransition *InvalidTransitionError
	)
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Order not found")
	case errors.As(err, &notFound):
		httpx.WriteErrorMsg(w, http.StatusBadRequest, "Product not found", notFound.Error())
	case errors.As(err, &noStock):
		httpx.WriteErrorMsg(w, http.StatusBadRequest, "Insufficient stock", noStock.Error())
	case errors.As(err, &badTransition):
		httpx.WriteErrorMsg(w, http.StatusConflict, "Cannot confirm order in current status", badTransition.Error())
	case errors.Is(err, ErrCancelWindowExpired):
		httpx.WriteError(w, http.StatusConflict, "Cannot cancel confirmed order after 10 minutes")
	default:
		h.Log.WithError(err).Error("orders storage error")
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func validateCreateOrder(req createReq) []httpx.FieldError {
	var details []httpx.FieldError
	if req.CustomerID <= 0 {
		details = append(details, httpx.FieldError{Path: "customer_id", Message: "must be a positive integer"})
	}
	if len(req.Items) == 0 {
		details = append(details, httpx.FieldError{Path: "items", Message: "must contain at least one item"})
	}
	for i, it := range req.Items {
		if it.ProductID <= 0 {
			details = append(details, httpx.FieldError{Path: fmt.Sprintf("items.%d.product_id", i), Message: "must be a positive integer"})
		}
		if it.Qty <= 0 {
			details = append(details, httpx.FieldError{Path: fmt.Sprintf("items.%d.qty", i), Message: "must be a positive integer"})
		}
	}
	return details
}

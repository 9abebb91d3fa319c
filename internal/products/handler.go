package products

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-order-pipeline.git/internal/httpx"
)

type Store interface {
	Create(ctx context.Context, p CreateParams) (*Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	Search(ctx context.Context, search string, cursor int64, limit int) ([]Product, error)
	Update(ctx context.Context, id int64, p UpdateParams) (*Product, error)
}

type Handler struct {
	Store Store
	Log   *logrus.Logger
}

func (h *Handler) Register(r *chi.Mux) {
	r.Route("/products", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
	})
}

type createReq struct {
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
	Stock      int    `json:"stock"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteErrorMsg(w, http.StatusBadRequest, "Validation error", "invalid JSON body")
		return
	}
	var details []httpx.FieldError
	if strings.TrimSpace(req.SKU) == "" || len(req.SKU) > 255 {
		details = append(details, httpx.FieldError{Path: "sku", Message: "must be 1-255 characters"})
	}
	if strings.TrimSpace(req.Name) == "" || len(req.Name) > 255 {
		details = append(details, httpx.FieldError{Path: "name", Message: "must be 1-255 characters"})
	}
	if req.PriceCents < 0 {
		details = append(details, httpx.FieldError{Path: "price_cents", Message: "must be >= 0"})
	}
	if req.Stock < 0 {
		details = append(details, httpx.FieldError{Path: "stock", Message: "must be >= 0"})
	}
	if len(details) > 0 {
		httpx.WriteValidation(w, details)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Store.Create(ctx, CreateParams{SKU: req.SKU, Name: req.Name, PriceCents: req.PriceCents, Stock: req.Stock})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.Log.WithField("product_id", p.ID).Info("product created")
	httpx.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.ParseID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit := httpx.ParseLimit(r)
	cursor := httpx.ParseCursor(r)
	search := r.URL.Query().Get("search")

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rows, err := h.Store.Search(ctx, search, cursor, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	var next *string
	if hasMore {
		s := strconv.FormatInt(rows[len(rows)-1].ID, 10)
		next = &s
	}
	if rows == nil {
		rows = []Product{}
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Page{
		Data:       rows,
		Pagination: httpx.Pagination{NextCursor: next, HasMore: hasMore, Limit: limit},
	})
}

type updateReq struct {
	Name       *string `json:"name"`
	PriceCents *int    `json:"price_cents"`
	Stock      *int    `json:"stock"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.ParseID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	var req updateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteErrorMsg(w, http.StatusBadRequest, "Validation error", "invalid JSON body")
		return
	}
	if req.Name == nil && req.PriceCents == nil && req.Stock == nil {
		httpx.WriteValidation(w, []httpx.FieldError{{Path: "", Message: "at least one field must be provided"}})
		return
	}
	var details []httpx.FieldError
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		details = append(details, httpx.FieldError{Path: "name", Message: "must not be empty"})
	}
	if req.PriceCents != nil && *req.PriceCents < 0 {
		details = append(details, httpx.FieldError{Path: "price_cents", Message: "must be >= 0"})
	}
	if req.Stock != nil && *req.Stock < 0 {
		details = append(details, httpx.FieldError{Path: "stock", Message: "must be >= 0"})
	}
	if len(details) > 0 {
		httpx.WriteValidation(w, details)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	p, err := h.Store.Update(ctx, id, UpdateParams{Name: req.Name, PriceCents: req.PriceCents, Stock: req.Stock})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.Log.WithField("product_id", id).Info("product updated")
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, ErrSKUTaken):
		httpx.WriteError(w, http.StatusBadRequest, "SKU already exists")
	default:
		h.Log.WithError(err).Error("products storage error")
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

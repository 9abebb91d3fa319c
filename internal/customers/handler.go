package customers

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
	Create(ctx context.Context, p CreateParams) (*Customer, error)
	GetByID(ctx context.Context, id int64) (*Customer, error)
	Search(ctx context.Context, search string, cursor int64, limit int) ([]Customer, error)
	Update(ctx context.Context, id int64, p UpdateParams) (*Customer, error)
	Delete(ctx context.Context, id int64) error
}

type Handler struct {
	Store Store
	Log   *logrus.Logger
}

func (h *Handler) Register(r *chi.Mux, serviceToken string) {
	r.Route("/customers", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
	r.Route("/internal", func(r chi.Router) {
		r.Use(ServiceAuth(serviceToken))
		r.Get("/customers/{id}", h.get)
	})
}

type createReq struct {
	Name  string  `json:"name"`
	Email string  `json:"email"`
	Phone *string `json:"phone"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteErrorMsg(w, http.StatusBadRequest, "Validation error", "invalid JSON body")
		return
	}
	if details := validateCustomer(req.Name, req.Email, true); len(details) > 0 {
		httpx.WriteValidation(w, details)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Store.Create(ctx, CreateParams{Name: req.Name, Email: req.Email, Phone: req.Phone})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.Log.WithField("customer_id", c.ID).Info("customer created")
	httpx.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.ParseID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
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
		rows = []Customer{}
	}
	httpx.WriteJSON(w, http.StatusOK, httpx.Page{
		Data:       rows,
		Pagination: httpx.Pagination{NextCursor: next, HasMore: hasMore, Limit: limit},
	})
}

type updateReq struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.ParseID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid customer ID")
		return
	}
	var req updateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteErrorMsg(w, http.StatusBadRequest, "Validation error", "invalid JSON body")
		return
	}
	if req.Name == nil && req.Email == nil && req.Phone == nil {
		httpx.WriteValidation(w, []httpx.FieldError{{Path: "", Message: "at least one field must be provided"}})
		return
	}
	var details []httpx.FieldError
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		details = append(details, httpx.FieldError{Path: "name", Message: "must not be empty"})
	}
	if req.Email != nil && !strings.Contains(*req.Email, "@") {
		details = append(details, httpx.FieldError{Path: "email", Message: "must be a valid email"})
	}
	if len(details) > 0 {
		httpx.WriteValidation(w, details)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	c, err := h.Store.Update(ctx, id, UpdateParams{Name: req.Name, Email: req.Email, Phone: req.Phone})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.Log.WithField("customer_id", id).Info("customer updated")
	httpx.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.ParseID(r, "id")
	if !ok {
		httpx.WriteError(w, http.StatusBadRequest, "Invalid customer ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Store.Delete(ctx, id); err != nil {
		h.writeError(w, err)
		return
	}
	h.Log.WithField("customer_id", id).Info("customer deleted")
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"message": "Customer deleted"})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "Customer not found")
	case errors.Is(err, ErrEmailTaken):
		httpx.WriteError(w, http.StatusBadRequest, "Email already exists")
	default:
		h.Log.WithError(err).Error("customers storage error")
		httpx.WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func validateCustomer(name, email string, required bool) []httpx.FieldError {
	var details []httpx.FieldError
	if required && strings.TrimSpace(name) == "" {
		details = append(details, httpx.FieldError{Path: "name", Message: "is required"})
	}
	if required && strings.TrimSpace(email) == "" {
		details = append(details, httpx.FieldError{Path: "email", Message: "is required"})
	} else if email != "" && !strings.Contains(email, "@") {
		details = append(details, httpx.FieldError{Path: "email", Message: "must be a valid email"})
	}
	return details
}

package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/ariefcatur/go-order-pipeline.git/internal/httpx"
)

// Response adalah satu-satunya bentuk envelope keluar, sukses maupun gagal.
// correlation_id dari request di-echo balik di kedua jalur.
type Response struct {
	Success       bool    `json:"success"`
	CorrelationID string  `json:"correlationId,omitempty"`
	Data          *Result `json:"data,omitempty"`
	Error         string  `json:"error,omitempty"`
	Message       string  `json:"message,omitempty"`
}

type Handler struct {
	Service *Service
	Log     *logrus.Logger
}

func (h *Handler) Register(r *chi.Mux) {
	r.Post("/orders", h.createAndConfirm)
}

func (h *Handler) createAndConfirm(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "Validation error",
			Message: "Invalid JSON in request body",
		})
		return
	}

	if problems := validate(req); len(problems) > 0 {
		httpx.WriteJSON(w, http.StatusBadRequest, Response{
			Success:       false,
			CorrelationID: req.CorrelationID,
			Error:         "Validation error",
			Message:       strings.Join(problems, ", "),
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, stepErr := h.Service.CreateAndConfirm(ctx, req)
	if stepErr != nil {
		h.Log.WithFields(logrus.Fields{
			"step":           stepErr.Step,
			"correlation_id": req.CorrelationID,
		}).Warn("orchestration failed")
		httpx.WriteJSON(w, stepErr.Status, Response{
			Success:       false,
			CorrelationID: req.CorrelationID,
			Error:         stepErr.Code,
			Message:       stepErr.Message,
		})
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, Response{
		Success:       true,
		CorrelationID: req.CorrelationID,
		Data:          result,
	})
}

func validate(req Request) []string {
	var problems []string
	if req.CustomerID <= 0 {
		problems = append(problems, "customer_id: must be a positive integer")
	}
	if len(req.Items) == 0 {
		problems = append(problems, "items: must contain at least one item")
	}
	for i, it := range req.Items {
		if it.ProductID <= 0 {
			problems = append(problems, fmt.Sprintf("items.%d.product_id: must be a positive integer", i))
		}
		if it.Qty <= 0 {
			problems = append(problems, fmt.Sprintf("items.%d.qty: must be a positive integer", i))
		}
	}
	if req.IdempotencyKey == "" {
		problems = append(problems, "idempotency_key: is required")
	}
	return problems
}

package httpx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ParseID membaca path param sebagai id numerik positif.
func ParseID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ParseLimit: default 20, maksimum 100; nilai rusak fallback ke default.
func ParseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return DefaultLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

// ParseCursor membaca cursor sebagai id numerik terakhir yang sudah dilihat.
func ParseCursor(r *http.Request) int64 {
	raw := r.URL.Query().Get("cursor")
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

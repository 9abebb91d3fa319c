package httpx

import (
	"encoding/json"
	"net/http"
)

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteRaw menulis body yang sudah ter-serialize apa adanya.
// Dipakai jalur replay idempotency supaya byte respons identik dengan eksekusi pertama.
func WriteRaw(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

func WriteError(w http.ResponseWriter, code int, errCode string) {
	WriteJSON(w, code, map[string]string{"error": errCode})
}

func WriteErrorMsg(w http.ResponseWriter, code int, errCode, message string) {
	WriteJSON(w, code, map[string]string{"error": errCode, "message": message})
}

type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func WriteValidation(w http.ResponseWriter, details []FieldError) {
	WriteJSON(w, http.StatusBadRequest, map[string]any{
		"error":   "Validation error",
		"details": details,
	})
}

// Pagination adalah envelope standar endpoint list ber-cursor.
type Pagination struct {
	NextCursor *string `json:"nextCursor"`
	HasMore    bool    `json:"hasMore"`
	Limit      int     `json:"limit"`
}

type Page struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

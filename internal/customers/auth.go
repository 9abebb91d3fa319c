package customers

import (
	"net/http"
	"strings"

	"github.com/ariefcatur/go-order-pipeline.git/internal/httpx"
)

// ServiceAuth melindungi route internal dengan bearer service token statis.
// Kontrak buat service lain: 401 kalau header absen, 403 kalau token salah.
func ServiceAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				httpx.WriteError(w, http.StatusUnauthorized, "Missing authorization header")
				return
			}
			if strings.TrimPrefix(h, "Bearer ") != token {
				httpx.WriteError(w, http.StatusForbidden, "Invalid service token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package middlewares

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"
)

var (
	corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	corsHeaders = []string{"Accept", "Accept-Language", "Authorization", "Content-Type", "X-CSRFToken", "X-Requested-With"}
	corsMaxAge  = 24 * time.Hour
)

// CORS sets the cross origin headers on every response and answers preflight
// requests itself. The first origin is the default; any other listed origin
// is echoed back when the request comes from it.
func CORS(origins ...string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		panic("at least one allowed origin is required")
	}
	methods := strings.Join(corsMethods, ", ")
	headers := strings.Join(corsHeaders, ", ")
	maxAge := strconv.Itoa(int(corsMaxAge.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := origins[0]
			if reqOrigin := r.Header.Get("Origin"); reqOrigin != "" && slices.Contains(origins, reqOrigin) {
				origin = reqOrigin
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")

			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", methods)
				h.Set("Access-Control-Allow-Headers", headers)
				h.Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

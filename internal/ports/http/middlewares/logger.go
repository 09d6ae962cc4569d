package middlewares

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Logger writes one access log line per request, at warn level for 4xx and
// error level for 5xx responses.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		t1 := time.Now()
		defer func() {
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			msg := fmt.Sprintf("%s %s - %d %dB in %s", r.Method, route, ww.Status(), ww.BytesWritten(), time.Since(t1))
			attrs := []any{
				slog.String("method", r.Method),
				slog.String("route", route),
				slog.String("proto", r.Proto),
				slog.String("remote_addr", PeerIP(r)),
				slog.Int("status", ww.Status()),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(t1)),
			}
			if reqID := middleware.GetReqID(r.Context()); reqID != "" {
				attrs = append(attrs, slog.String("request_id", reqID))
			}

			switch {
			case ww.Status() >= 500:
				slog.ErrorContext(r.Context(), msg, attrs...)
			case ww.Status() >= 400:
				slog.WarnContext(r.Context(), msg, attrs...)
			default:
				slog.InfoContext(r.Context(), msg, attrs...)
			}
		}()

		next.ServeHTTP(ww, r)
	})
}

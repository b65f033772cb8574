package http

import (
	"net/http"
	"time"

	"github.com/MKhiriev/go-note-sync/internal/logger"
)

func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		start := time.Now()

		uri := redactedRequestURI(r)
		method := r.Method

		lw := &responseWriter{
			ResponseWriter: w,
		}

		next.ServeHTTP(lw, r)

		duration := time.Since(start)

		log.Info().
			Str("uri", uri).
			Str("method", method).
			Int("status", lw.status).
			Dur("duration", duration).
			Int("size", lw.size).
			Send()
	})
}

// redactedRequestURI returns the request URI with the "token" query value
// masked. WebSocket clients pass their JWT as a query parameter, and bearer
// credentials must never land in the access log.
func redactedRequestURI(r *http.Request) string {
	query := r.URL.Query()
	if _, ok := query["token"]; !ok {
		return r.RequestURI
	}

	query.Set("token", "REDACTED")
	redacted := *r.URL
	redacted.RawQuery = query.Encode()

	return redacted.RequestURI()
}

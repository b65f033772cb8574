package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MKhiriev/go-note-sync/internal/logger"
	"github.com/MKhiriev/go-note-sync/internal/service"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─────────────────────────────────────────────
// redactedRequestURI
// ─────────────────────────────────────────────

func TestRedactedRequestURI(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want string
	}{
		{
			name: "no query",
			uri:  "/api/notes",
			want: "/api/notes",
		},
		{
			name: "query without token",
			uri:  "/api/notes?limit=10",
			want: "/api/notes?limit=10",
		},
		{
			name: "token is masked",
			uri:  "/api/notes/42/ws?token=eyJhbGciOiJIUzI1NiJ9.secret",
			want: "/api/notes/42/ws?token=REDACTED",
		},
		{
			name: "other parameters survive masking",
			uri:  "/api/notes/42/ws?a=1&token=secret",
			want: "/api/notes/42/ws?a=1&token=REDACTED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.uri, nil)
			assert.Equal(t, tt.want, redactedRequestURI(r))
		})
	}
}

// ─────────────────────────────────────────────
// withLogging
// ─────────────────────────────────────────────

// TestWithLogging_DoesNotLogBearerToken verifies that a JWT passed as a
// query parameter never reaches the access log.
func TestWithLogging_DoesNotLogBearerToken(t *testing.T) {
	h := newTestHandler(t, &service.Services{}, nil)

	var buf bytes.Buffer
	log := &logger.Logger{Logger: zerolog.New(&buf)}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	const token = "eyJhbGciOiJIUzI1NiJ9.supersecret"
	r := httptest.NewRequest(http.MethodGet, "/api/notes/42/ws?token="+token, nil)
	r = r.WithContext(log.WithContext(r.Context()))
	w := httptest.NewRecorder()

	h.withLogging(next).ServeHTTP(w, r)

	logged := buf.String()
	require.NotEmpty(t, logged)
	assert.NotContains(t, logged, token, "bearer credentials must not land in the access log")
	assert.Contains(t, logged, "token=REDACTED")
}

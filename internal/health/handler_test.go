// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func healthy() Checker {
	return pingFunc(func(context.Context) error { return nil })
}

func failing() Checker {
	return pingFunc(func(context.Context) error { return errors.New("down") })
}

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth_OK(t *testing.T) {
	rec := serve(NewHandler(nil), "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name     string
		checkers map[string]Checker
		status   int
		body     string
	}{
		{
			name:     "all healthy",
			checkers: map[string]Checker{"database": healthy(), "redis": healthy()},
			status:   http.StatusOK,
			body:     "ok",
		},
		{
			name:     "redis down",
			checkers: map[string]Checker{"database": healthy(), "redis": failing()},
			status:   http.StatusServiceUnavailable,
			body:     "degraded",
		},
		{
			name:     "unconfigured checker",
			checkers: map[string]Checker{"database": nil},
			status:   http.StatusServiceUnavailable,
			body:     "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(NewHandler(tt.checkers), "/readyz")
			require.Equal(t, tt.status, rec.Code)

			var resp ReadinessResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.body, resp.Status)
			assert.Len(t, resp.Checks, len(tt.checkers))
		})
	}
}

func TestShutdownFlipsProbes(t *testing.T) {
	h := NewHandler(map[string]Checker{"database": healthy()})
	h.SetShutdown(true)

	assert.Equal(t, http.StatusServiceUnavailable, serve(h, "/livez").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(h, "/readyz").Code)
}

func TestNotReady(t *testing.T) {
	h := NewHandler(map[string]Checker{"database": healthy()})
	h.SetReady(false)

	rec := serve(h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_ready")
}

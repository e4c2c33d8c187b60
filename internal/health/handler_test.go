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

var (
	healthy   = pingFunc(func(context.Context) error { return nil })
	unhealthy = pingFunc(func(context.Context) error { return errors.New("connection refused") })
)

func get(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLiveness(t *testing.T) {
	h := NewHandler()

	for _, path := range []string{"/healthz", "/livez"} {
		rec := get(h, path)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	}

	h.SetShutdown(true)
	assert.Equal(t, http.StatusServiceUnavailable, get(h, "/healthz").Code)
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     []Check
		wantCode   int
		wantStatus string
	}{
		{
			name: "all healthy",
			checks: []Check{
				{Name: "database", Checker: healthy, Critical: true},
				{Name: "redis", Checker: healthy},
			},
			wantCode:   http.StatusOK,
			wantStatus: "ok",
		},
		{
			name: "redis down is degraded",
			checks: []Check{
				{Name: "database", Checker: healthy, Critical: true},
				{Name: "redis", Checker: unhealthy},
			},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
		},
		{
			name: "database down",
			checks: []Check{
				{Name: "database", Checker: unhealthy, Critical: true},
				{Name: "redis", Checker: healthy},
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unavailable",
		},
		{
			name: "missing checker",
			checks: []Check{
				{Name: "database", Critical: true},
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(NewHandler(tt.checks...), "/readyz")
			assert.Equal(t, tt.wantCode, rec.Code)

			var body ReadinessResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantStatus, body.Status)
			require.Len(t, body.Checks, len(tt.checks))
			for i, c := range tt.checks {
				assert.Equal(t, c.Name, body.Checks[i].Name)
			}
		})
	}
}

func TestReadiness_NotReadyAndShutdown(t *testing.T) {
	h := NewHandler(Check{Name: "database", Checker: healthy, Critical: true})

	h.SetReady(false)
	assert.Equal(t, http.StatusServiceUnavailable, get(h, "/readyz").Code)

	h.SetReady(true)
	assert.Equal(t, http.StatusOK, get(h, "/readyz").Code)

	h.SetShutdown(true)
	assert.Equal(t, http.StatusServiceUnavailable, get(h, "/readyz").Code)
}

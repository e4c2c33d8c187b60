// AngelaMos | 2026
// server_test.go

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/movie-catalog/internal/config"
	"github.com/carterperez-dev/templates/movie-catalog/internal/core"
	"github.com/carterperez-dev/templates/movie-catalog/internal/health"
)

func newTestServer(h *health.Handler) *Server {
	return New(Config{
		ServerConfig: config.ServerConfig{
			Host:         "127.0.0.1",
			Port:         0,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
			IdleTimeout:  time.Second,
		},
		HealthHandler: h,
	})
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestServer_NotFoundIsJSON(t *testing.T) {
	s := newTestServer(nil)

	rec := serve(s, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body core.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND", body.Code)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	s := newTestServer(nil)
	s.Router().Get("/only-get", func(w http.ResponseWriter, r *http.Request) {})

	rec := serve(s, http.MethodPost, "/only-get")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_RecoversPanics(t *testing.T) {
	s := newTestServer(nil)
	s.Router().Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := serve(s, http.MethodGet, "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_ShutdownFailsHealth(t *testing.T) {
	h := health.NewHandler()
	s := newTestServer(h)
	h.RegisterRoutes(s.Router())

	require.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/healthz").Code)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx, 10*time.Millisecond))

	assert.Equal(t, http.StatusServiceUnavailable, serve(s, http.MethodGet, "/healthz").Code)
}

func TestServer_StartAndShutdown(t *testing.T) {
	s := newTestServer(nil)
	assert.Equal(t, "127.0.0.1:0", s.Addr())

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown(ctx, 0))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

// AngelaMos | 2026
// handler_test.go

package user

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/movie-catalog/internal/core"
	"github.com/carterperez-dev/templates/movie-catalog/internal/middleware"
)

// injectIdentity stands in for the authenticator in handler tests.
func injectIdentity(id *middleware.Identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id != nil {
				r = r.WithContext(middleware.WithIdentity(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newRouter(repo *fakeRepo, id *middleware.Identity) http.Handler {
	h := NewHandler(NewService(repo))

	r := chi.NewRouter()
	r.Route("/users", func(r chi.Router) {
		r.Use(injectIdentity(id))
		h.RegisterRoutes(r)
	})
	h.RegisterAdminRoutes(r, injectIdentity(id), middleware.RequireAdmin)
	return r
}

func request(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

var (
	adminIdentity = &middleware.Identity{UserID: 1, Role: middleware.RoleAdmin}
	aliceIdentity = &middleware.Identity{UserID: 3, Role: middleware.RoleUser}
)

func TestHandler_GetMe(t *testing.T) {
	h := newRouter(newFakeRepo(seedUsers()...), aliceIdentity)

	rec := request(h, http.MethodGet, "/users/me", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var raw map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	assert.Equal(t, "alice", raw["username"])
	assert.NotContains(t, raw, "password_hash")
}

func TestHandler_UpdateMe(t *testing.T) {
	h := newRouter(newFakeRepo(seedUsers()...), aliceIdentity)

	rec := request(h, http.MethodPut, "/users/me", `{"username":"alice2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = request(h, http.MethodPut, "/users/me", `{"username":"bob"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body core.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "username already exists", body.Detail)
}

func TestHandler_DeleteMe(t *testing.T) {
	repo := newFakeRepo(seedUsers()...)
	h := newRouter(repo, aliceIdentity)

	assert.Equal(t, http.StatusNoContent, request(h, http.MethodDelete, "/users/me", "").Code)
	assert.Equal(t, http.StatusNotFound, request(h, http.MethodGet, "/users/me", "").Code)
}

func TestHandler_AdminRequiresAdminRole(t *testing.T) {
	h := newRouter(newFakeRepo(seedUsers()...), aliceIdentity)

	assert.Equal(t, http.StatusForbidden, request(h, http.MethodGet, "/admin/users", "").Code)
}

func TestHandler_ListUsers(t *testing.T) {
	h := newRouter(newFakeRepo(seedUsers()...), adminIdentity)

	rec := request(h, http.MethodGet, "/admin/users?page=1&page_size=2&role=user", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Items      []UserResponse `json:"items"`
		Total      int            `json:"total"`
		TotalPages int            `json:"total_pages"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&page))
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	assert.Len(t, page.Items, 2)
}

func TestHandler_AdminUserEndpoints(t *testing.T) {
	h := newRouter(newFakeRepo(seedUsers()...), adminIdentity)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"get user", http.MethodGet, "/admin/users/3", "", http.StatusOK},
		{"get missing", http.MethodGet, "/admin/users/99", "", http.StatusNotFound},
		{"bad id", http.MethodGet, "/admin/users/abc", "", http.StatusBadRequest},
		{"set role", http.MethodPut, "/admin/users/4/role", `{"role":"admin"}`, http.StatusOK},
		{"bad role", http.MethodPut, "/admin/users/4/role", `{"role":"owner"}`, http.StatusBadRequest},
		{"suspend", http.MethodPut, "/admin/users/3/status", `{"status":"suspended"}`, http.StatusOK},
		{"bad status", http.MethodPut, "/admin/users/3/status", `{"status":"gone"}`, http.StatusBadRequest},
		{"delete admin", http.MethodDelete, "/admin/users/2", "", http.StatusForbidden},
		{"delete user", http.MethodDelete, "/admin/users/3", "", http.StatusNoContent},
		{"delete missing", http.MethodDelete, "/admin/users/99", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := request(h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

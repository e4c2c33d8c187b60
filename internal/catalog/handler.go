// AngelaMos | 2026
// handler.go

package catalog

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/movie-catalog/internal/core"
	"github.com/carterperez-dev/templates/movie-catalog/internal/middleware"
)

type Handler struct {
	activity ActivityRepository
}

func NewHandler(activity ActivityRepository) *Handler {
	return &Handler{activity: activity}
}

// RegisterRoutes mounts under an already authenticated /users router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/me/activity", h.ListMyActivity)
}

type ActivityResponse struct {
	ID          int64     `json:"id"`
	ActionType  string    `json:"action_type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

type ActivityListResponse struct {
	Items []ActivityResponse `json:"items"`
}

func (h *Handler) ListMyActivity(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == 0 {
		core.Unauthorized(w, "")
		return
	}

	limit := DefaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			core.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	entries, err := h.activity.ListForUser(r.Context(), userID, limit)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	items := make([]ActivityResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, ActivityResponse{
			ID:          e.ID,
			ActionType:  e.ActionType,
			Description: e.Description,
			CreatedAt:   e.CreatedAt,
		})
	}

	core.OK(w, ActivityListResponse{Items: items})
}

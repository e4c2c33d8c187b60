// AngelaMos | 2026
// handler.go

package auth

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/movie-catalog/internal/core"
	"github.com/carterperez-dev/templates/movie-catalog/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: core.NewValidator(),
	}
}

// RegisterRoutes mounts /auth. publicLimiter wraps the unauthenticated
// credential endpoints and may be nil.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	publicLimiter func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if publicLimiter != nil {
				r.Use(publicLimiter)
			}
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/me", h.GetMe)
			r.Post("/logout", h.Logout)
			r.Get("/sessions", h.GetSessions)
			r.Delete("/sessions/{sessionID}", h.RevokeSession)
			r.Post("/change-password", h.ChangePassword)
		})
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := core.DecodeValid[RegisterRequest](w, r, h.validator)
	if !ok {
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeCredentialError(w, err)
		return
	}

	core.OK(w, user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := core.DecodeValid[LoginRequest](w, r, h.validator)
	if !ok {
		return
	}

	resp, err := h.service.Login(
		r.Context(),
		req,
		r.UserAgent(),
		middleware.ClientIP(r),
	)
	if err != nil {
		writeCredentialError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetCurrentUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, user)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.service.Logout(ctx, middleware.GetUserID(ctx), middleware.GetSessionID(ctx)); err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) GetSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessions, err := h.service.ListSessions(
		ctx,
		middleware.GetUserID(ctx),
		middleware.GetSessionID(ctx),
	)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, SessionsResponse{Sessions: sessions})
}

func (h *Handler) RevokeSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(chi.URLParam(r, "sessionID"), 10, 64)
	if err != nil || sessionID < 1 {
		core.BadRequest(w, "invalid session ID")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := h.service.RevokeSession(r.Context(), userID, sessionID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "session")
			return
		}
		if errors.Is(err, core.ErrForbidden) {
			core.Forbidden(w, "cannot revoke another user's session")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	req, ok := core.DecodeValid[ChangePasswordRequest](w, r, h.validator)
	if !ok {
		return
	}

	userID := middleware.GetUserID(r.Context())
	err := h.service.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			core.JSONError(w, core.UnauthorizedError("current password is incorrect"))
			return
		}
		writeCredentialError(w, err)
		return
	}

	core.NoContent(w)
}

// writeCredentialError renders the fixed, non-leaky messages of the
// credential flow.
func writeCredentialError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		core.JSONError(w, core.NewAppError(
			ErrInvalidCredentials,
			"Invalid credentials",
			http.StatusUnauthorized,
			"INVALID_CREDENTIALS",
		))
	case errors.Is(err, ErrEmailExists):
		core.JSONError(w, core.DuplicateError("email"))
	case errors.Is(err, ErrUsernameExists):
		core.JSONError(w, core.DuplicateError("username"))
	case errors.Is(err, core.ErrWeakPassword):
		core.JSONError(w, core.WeakPasswordError())
	case errors.Is(err, ErrRoleNotAllowed):
		core.JSONError(w, core.NewAppError(
			ErrRoleNotAllowed,
			"role cannot be self-assigned",
			http.StatusForbidden,
			"ROLE_NOT_ALLOWED",
		))
	default:
		core.InternalServerError(w, err)
	}
}

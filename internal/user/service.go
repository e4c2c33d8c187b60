// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/carterperez-dev/templates/movie-catalog/internal/auth"
	"github.com/carterperez-dev/templates/movie-catalog/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByID(
	ctx context.Context,
	id int64,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) EmailExists(
	ctx context.Context,
	email string,
) (bool, error) {
	return s.repo.ExistsByEmail(ctx, normalizeEmail(email))
}

func (s *Service) Create(
	ctx context.Context,
	nu auth.NewUser,
) (*auth.UserInfo, error) {
	role := nu.Role
	if role == "" {
		role = RoleUser
	}

	user := &User{
		Username:     nu.Username,
		Email:        normalizeEmail(nu.Email),
		PasswordHash: nu.PasswordHash,
		Role:         role,
		Status:       StatusActive,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, credentialError(err)
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID int64,
	passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateUser(
	ctx context.Context,
	id int64,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.modify(ctx, id, func(u *User) error {
		if req.Username != nil {
			u.Username = strings.TrimSpace(*req.Username)
		}
		return nil
	})
	if err != nil {
		return nil, credentialError(err)
	}
	return user, nil
}

func (s *Service) UpdateUserRole(
	ctx context.Context,
	id int64,
	role string,
) (*User, error) {
	user, err := s.modify(ctx, id, func(u *User) error {
		if role != RoleUser && role != RoleAdmin {
			return fmt.Errorf("invalid role %q: %w", role, core.ErrInvalidInput)
		}
		u.Role = role
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	slog.InfoContext(ctx, "user role changed", "user_id", id, "role", role)
	return user, nil
}

// UpdateUserStatus suspends or reactivates an account. A suspended user
// cannot log in and existing tokens stop resolving.
func (s *Service) UpdateUserStatus(
	ctx context.Context,
	id int64,
	status string,
) (*User, error) {
	user, err := s.modify(ctx, id, func(u *User) error {
		if status != StatusActive && status != StatusSuspended {
			return fmt.Errorf("invalid status %q: %w", status, core.ErrInvalidInput)
		}
		u.Status = status
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	slog.InfoContext(ctx, "user status changed", "user_id", id, "status", status)
	return user, nil
}

// modify loads the user, applies change and writes the row back.
func (s *Service) modify(
	ctx context.Context,
	id int64,
	change func(*User) error,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := change(user); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "user deleted", "user_id", id)
	return nil
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

func (s *Service) GetMe(ctx context.Context, userID int64) (*User, error) {
	if userID == 0 {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID int64,
	req UpdateUserRequest,
) (*User, error) {
	if userID == 0 {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	return s.UpdateUser(ctx, userID, req)
}

func (s *Service) DeleteMe(ctx context.Context, userID int64) error {
	if userID == 0 {
		return fmt.Errorf("delete me: %w", core.ErrUnauthorized)
	}

	return s.DeleteUser(ctx, userID)
}

// CanDeleteUser allows self-deletion and admin deletion of non-admin users.
func (s *Service) CanDeleteUser(
	ctx context.Context,
	requesterID, targetID int64,
) error {
	if requesterID == targetID {
		return nil
	}

	requester, err := s.repo.GetByID(ctx, requesterID)
	if err != nil {
		return err
	}

	if !requester.IsAdmin() {
		return fmt.Errorf("delete user: %w", core.ErrForbidden)
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if target.IsAdmin() {
		return fmt.Errorf("cannot delete admin users: %w", core.ErrForbidden)
	}

	return nil
}

func credentialError(err error) error {
	switch {
	case errors.Is(err, ErrEmailTaken):
		return fmt.Errorf("%w: %w", auth.ErrEmailExists, err)
	case errors.Is(err, ErrUsernameTaken):
		return fmt.Errorf("%w: %w", auth.ErrUsernameExists, err)
	default:
		return err
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Status:       u.Status,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

var _ auth.UserProvider = (*Service)(nil)

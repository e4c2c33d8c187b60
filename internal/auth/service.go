// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/movie-catalog/internal/catalog"
	"github.com/carterperez-dev/templates/movie-catalog/internal/config"
	"github.com/carterperez-dev/templates/movie-catalog/internal/core"
	"github.com/carterperez-dev/templates/movie-catalog/internal/middleware"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrDuplicateCredential = errors.New("duplicate credential")
	ErrEmailExists         = fmt.Errorf("email already exists: %w", ErrDuplicateCredential)
	ErrUsernameExists      = fmt.Errorf("username already exists: %w", ErrDuplicateCredential)
	ErrInvalidToken        = fmt.Errorf("invalid token: %w", core.ErrTokenInvalid)
	ErrRoleNotAllowed      = errors.New("role not allowed")
)

const (
	userStatusSuspended = "suspended"

	// expiredLoginRetention is how long an expired login row is kept before
	// PurgeExpiredLogins removes it.
	expiredLoginRetention = 24 * time.Hour
)

type UserInfo struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	Role         string
}

// UserProvider is the slice of the user store the auth flow depends on.
// Create returns an error wrapping ErrEmailExists or ErrUsernameExists when
// a uniqueness constraint rejects the row.
type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id int64) (*UserInfo, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, u NewUser) (*UserInfo, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type ActivityRecorder interface {
	Record(ctx context.Context, entry *catalog.ActivityLog) error
}

// Principal is the caller resolved from a bearer token.
type Principal struct {
	User      UserInfo
	SessionID int64
	TokenID   string
}

type Service struct {
	repo                  Repository
	tokens                *TokenService
	users                 UserProvider
	activity              ActivityRecorder
	allowSelfAssignedRole bool
	now                   func() time.Time
}

func NewService(
	repo Repository,
	tokens *TokenService,
	users UserProvider,
	activity ActivityRecorder,
	cfg config.AuthConfig,
) *Service {
	return &Service{
		repo:                  repo,
		tokens:                tokens,
		users:                 users,
		activity:              activity,
		allowSelfAssignedRole: cfg.AllowSelfAssignedRole,
		now:                   time.Now,
	}
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*UserResponse, error) {
	ctx, span := core.StartSpan(ctx, "auth.register")
	defer span.End()

	role := middleware.RoleUser
	if req.Role != "" && req.Role != middleware.RoleUser {
		if !s.allowSelfAssignedRole {
			return nil, ErrRoleNotAllowed
		}
		role = req.Role
	}

	exists, err := s.users.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, NewUser{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         role,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	core.AddSpanEvent(ctx, "user.registered", attribute.Int64("user.id", user.ID))

	s.recordActivity(ctx, &catalog.ActivityLog{
		UserID:      user.ID,
		ActionType:  catalog.ActionRegister,
		Description: "account created",
	})

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*TokenResponse, error) {
	ctx, span := core.StartSpan(ctx, "auth.login")
	defer span.End()

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			slog.InfoContext(ctx, "login failed", "reason", "unknown_email", "ip", ipAddress)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		slog.InfoContext(ctx, "login failed",
			"reason", "bad_password",
			"user_id", user.ID,
			"ip", ipAddress,
		)
		return nil, ErrInvalidCredentials
	}

	if user.Status == userStatusSuspended {
		slog.WarnContext(ctx, "login failed",
			"reason", "account_suspended",
			"user_id", user.ID,
			"ip", ipAddress,
		)
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.users.UpdatePassword(ctx, user.ID, newHash)
	}

	issued, err := s.tokens.Issue(TokenClaims{
		UserID: user.ID,
		Role:   user.Role,
	}, s.tokens.TTL())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	record := &LoginRecord{
		UserID:         user.ID,
		Token:          core.HashToken(issued.Token),
		Status:         SessionActive,
		ExpirationDate: issued.ExpiresAt,
	}
	activity := &catalog.ActivityLog{
		ActionType:  catalog.ActionLogin,
		Description: loginDescription(userAgent, ipAddress),
	}

	if err := s.repo.RecordLogin(ctx, record, activity); err != nil {
		core.SetSpanError(ctx, err)
		return nil, fmt.Errorf("record login: %w", err)
	}

	core.AddSpanEvent(ctx, "user.logged_in",
		attribute.Int64("user.id", user.ID),
		attribute.Int64("session.id", record.ID),
	)

	return &TokenResponse{
		AccessToken: issued.Token,
		TokenType:   "bearer",
		ExpiresIn:   int(issued.ExpiresAt.Sub(issued.IssuedAt) / time.Second),
		ExpiresAt:   issued.ExpiresAt,
	}, nil
}

func loginDescription(userAgent, ipAddress string) string {
	switch {
	case ipAddress != "" && userAgent != "":
		return fmt.Sprintf("login from %s (%s)", ipAddress, userAgent)
	case ipAddress != "":
		return "login from " + ipAddress
	default:
		return "login"
	}
}

// Authenticate resolves a bearer token to its principal. The login record
// is consulted on every call so a suspended session stops working at once.
func (s *Service) Authenticate(
	ctx context.Context,
	token string,
) (*Principal, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w: %w", ErrInvalidToken, err)
	}

	record, err := s.repo.FindByToken(ctx, core.HashToken(token))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("authenticate: no login record: %w", ErrInvalidToken)
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if !record.IsActiveAt(s.now()) || record.UserID != claims.UserID {
		return nil, fmt.Errorf("authenticate: session inactive: %w", ErrInvalidToken)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("authenticate: user gone: %w", ErrInvalidToken)
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if user.Status == userStatusSuspended {
		return nil, fmt.Errorf("authenticate: user suspended: %w", ErrInvalidToken)
	}

	return &Principal{
		User:      *user,
		SessionID: record.ID,
		TokenID:   claims.ID,
	}, nil
}

// ResolveIdentity adapts Authenticate to middleware.IdentityResolver.
func (s *Service) ResolveIdentity(
	ctx context.Context,
	token string,
) (*middleware.Identity, error) {
	p, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	return &middleware.Identity{
		UserID:    p.User.ID,
		Username:  p.User.Username,
		Email:     p.User.Email,
		Role:      p.User.Role,
		SessionID: p.SessionID,
	}, nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID int64,
) (*UserResponse, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) Logout(ctx context.Context, userID, sessionID int64) error {
	if err := s.repo.Suspend(ctx, sessionID); err != nil &&
		!errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("suspend session: %w", err)
	}

	s.recordActivity(ctx, &catalog.ActivityLog{
		UserID:      userID,
		ActionType:  catalog.ActionLogout,
		Description: "logged out",
	})

	return nil
}

func (s *Service) ListSessions(
	ctx context.Context,
	userID, currentSessionID int64,
) ([]SessionInfo, error) {
	records, err := s.repo.ListForUser(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions := make([]SessionInfo, 0, len(records))
	for _, rec := range records {
		sessions = append(sessions, SessionInfo{
			ID:        rec.ID,
			Status:    rec.Status,
			CreatedAt: rec.CreatedAt,
			ExpiresAt: rec.ExpirationDate,
			Current:   rec.ID == currentSessionID,
		})
	}

	return sessions, nil
}

func (s *Service) RevokeSession(
	ctx context.Context,
	userID, sessionID int64,
) error {
	record, err := s.repo.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("find session: %w", err)
	}

	if record.UserID != userID {
		slog.WarnContext(ctx, "session revoke denied",
			"user_id", userID,
			"session_id", sessionID,
		)
		return fmt.Errorf("revoke session: %w", core.ErrForbidden)
	}

	if err := s.repo.Suspend(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	slog.InfoContext(ctx, "session revoked", "user_id", userID, "session_id", sessionID)
	s.recordActivity(ctx, &catalog.ActivityLog{
		UserID:      userID,
		ActionType:  catalog.ActionSessionRevoke,
		Description: fmt.Sprintf("revoked session %d", sessionID),
	})

	return nil
}

// ChangePassword replaces the password and suspends every session of the
// user, including the one that made the request.
func (s *Service) ChangePassword(
	ctx context.Context,
	userID int64,
	currentPassword, newPassword string,
) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, err := core.VerifyPassword(currentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := core.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	suspended, err := s.repo.ReplacePassword(ctx, userID, newHash)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	slog.InfoContext(ctx, "password changed",
		"user_id", userID,
		"sessions_suspended", suspended,
	)
	s.recordActivity(ctx, &catalog.ActivityLog{
		UserID:      userID,
		ActionType:  catalog.ActionPasswordChange,
		Description: "password changed",
	})

	return nil
}

// PurgeExpiredLogins deletes login rows that expired more than a day ago.
func (s *Service) PurgeExpiredLogins(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteExpired(ctx, s.now().Add(-expiredLoginRetention))
	if err != nil {
		return 0, fmt.Errorf("purge logins: %w", err)
	}

	slog.InfoContext(ctx, "expired logins purged", "deleted", deleted)
	return deleted, nil
}

func (s *Service) recordActivity(ctx context.Context, entry *catalog.ActivityLog) {
	if s.activity == nil {
		return
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		slog.WarnContext(ctx, "record activity",
			"action", entry.ActionType,
			"user_id", entry.UserID,
			"error", err,
		)
	}
}

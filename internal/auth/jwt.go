// AngelaMos | 2026
// jwt.go

package auth

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/carterperez-dev/templates/movie-catalog/internal/config"
	"github.com/carterperez-dev/templates/movie-catalog/internal/core"
)

const (
	claimUserID = "user_id"
	claimRole   = "role"
)

// TokenService signs and verifies HMAC access tokens. It is built once from
// config and is safe for concurrent use.
type TokenService struct {
	key    jwk.Key
	alg    jwa.SignatureAlgorithm
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now for issuing and validating tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

func NewTokenService(
	cfg config.JWTConfig,
	opts ...TokenOption,
) (*TokenService, error) {
	alg, err := signatureAlgorithm(cfg.Algorithm)
	if err != nil {
		return nil, err
	}

	if len(cfg.SecretKey) < config.MinSecretKeyLength {
		return nil, fmt.Errorf(
			"secret key must be at least %d bytes",
			config.MinSecretKeyLength,
		)
	}

	key, err := jwk.Import([]byte(cfg.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("import secret key: %w", err)
	}

	s := &TokenService{
		key:    key,
		alg:    alg,
		issuer: cfg.Issuer,
		ttl:    cfg.AccessTokenTTL(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func signatureAlgorithm(name string) (jwa.SignatureAlgorithm, error) {
	switch name {
	case "HS256":
		return jwa.HS256(), nil
	case "HS384":
		return jwa.HS384(), nil
	case "HS512":
		return jwa.HS512(), nil
	default:
		var none jwa.SignatureAlgorithm
		return none, fmt.Errorf(
			"unsupported signing algorithm %q",
			name,
		)
	}
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

func (s *TokenService) Algorithm() string {
	return s.alg.String()
}

type TokenClaims struct {
	UserID int64
	Role   string
}

type IssuedToken struct {
	Token     string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issue signs a token for claims that expires ttl from now. The random jti
// keeps two tokens minted in the same second distinct.
func (s *TokenService) Issue(
	claims TokenClaims,
	ttl time.Duration,
) (*IssuedToken, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("issue token: ttl must be positive")
	}

	now := s.now().UTC().Truncate(time.Second)
	expiresAt := now.Add(ttl)
	jti := uuid.NewString()

	token, err := jwt.NewBuilder().
		JwtID(jti).
		Issuer(s.issuer).
		IssuedAt(now).
		NotBefore(now).
		Expiration(expiresAt).
		Claim(claimUserID, claims.UserID).
		Claim(claimRole, claims.Role).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(s.alg, s.key))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &IssuedToken{
		Token:     string(signed),
		ID:        jti,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

type Claims struct {
	UserID    int64
	Role      string
	ID        string
	ExpiresAt time.Time
}

// Verify checks signature, issuer, exp and nbf. Every failure wraps
// core.ErrTokenInvalid; expiry is not reported separately.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(s.alg, s.key),
		jwt.WithValidate(true),
		jwt.WithIssuer(s.issuer),
		jwt.WithClock(jwt.ClockFunc(s.now)),
	)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w: %w", core.ErrTokenInvalid, err)
	}

	expiresAt, ok := token.Expiration()
	if !ok {
		return nil, fmt.Errorf("verify token: missing exp: %w", core.ErrTokenInvalid)
	}

	var rawUserID float64
	if err := token.Get(claimUserID, &rawUserID); err != nil {
		return nil, fmt.Errorf("verify token: missing user_id: %w", core.ErrTokenInvalid)
	}
	if rawUserID < 1 || rawUserID != math.Trunc(rawUserID) || rawUserID >= 1<<63 {
		return nil, fmt.Errorf("verify token: bad user_id: %w", core.ErrTokenInvalid)
	}

	var role string
	if err := token.Get(claimRole, &role); err != nil {
		return nil, fmt.Errorf("verify token: missing role: %w", core.ErrTokenInvalid)
	}

	jti, _ := token.JwtID()

	return &Claims{
		UserID:    int64(rawUserID),
		Role:      role,
		ID:        jti,
		ExpiresAt: expiresAt,
	}, nil
}

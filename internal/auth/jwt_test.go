// AngelaMos | 2026
// jwt_test.go

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/movie-catalog/internal/config"
	"github.com/carterperez-dev/templates/movie-catalog/internal/core"
)

const testSecret = "test-secret-key-that-is-at-least-32-bytes"

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey:                testSecret,
		Algorithm:                "HS256",
		AccessTokenExpireMinutes: 30,
		Issuer:                   "movie-catalog",
	}
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTokens(t *testing.T, cfg config.JWTConfig, clock *fakeClock) *TokenService {
	t.Helper()
	svc, err := NewTokenService(cfg, WithClock(clock.Now))
	require.NoError(t, err)
	return svc
}

func TestNewTokenService_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.JWTConfig)
		errMsg string
	}{
		{"RS256", func(c *config.JWTConfig) { c.Algorithm = "RS256" }, "unsupported signing algorithm"},
		{"none", func(c *config.JWTConfig) { c.Algorithm = "none" }, "unsupported signing algorithm"},
		{"short secret", func(c *config.JWTConfig) { c.SecretKey = "short" }, "secret key must be at least"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testJWTConfig()
			tt.mutate(&cfg)

			_, err := NewTokenService(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestTokenService_IssueVerify(t *testing.T) {
	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		t.Run(alg, func(t *testing.T) {
			cfg := testJWTConfig()
			cfg.Algorithm = alg
			clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
			svc := newTestTokens(t, cfg, clock)

			issued, err := svc.Issue(TokenClaims{UserID: 42, Role: "admin"}, time.Hour)
			require.NoError(t, err)
			assert.Equal(t, clock.t.Add(time.Hour), issued.ExpiresAt)
			assert.NotEmpty(t, issued.ID)
			assert.Equal(t, alg, svc.Algorithm())

			claims, err := svc.Verify(issued.Token)
			require.NoError(t, err)
			assert.Equal(t, int64(42), claims.UserID)
			assert.Equal(t, "admin", claims.Role)
			assert.Equal(t, issued.ID, claims.ID)
			assert.True(t, issued.ExpiresAt.Equal(claims.ExpiresAt))
		})
	}
}

func TestTokenService_SameSecondTokensDiffer(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestTokens(t, testJWTConfig(), clock)

	a, err := svc.Issue(TokenClaims{UserID: 1, Role: "user"}, time.Minute)
	require.NoError(t, err)
	b, err := svc.Issue(TokenClaims{UserID: 1, Role: "user"}, time.Minute)
	require.NoError(t, err)

	assert.NotEqual(t, a.Token, b.Token)
	assert.NotEqual(t, core.HashToken(a.Token), core.HashToken(b.Token))
}

func TestTokenService_IssueRejectsNonPositiveTTL(t *testing.T) {
	svc := newTestTokens(t, testJWTConfig(), &fakeClock{t: time.Now()})

	_, err := svc.Issue(TokenClaims{UserID: 1, Role: "user"}, 0)
	assert.Error(t, err)
}

func TestTokenService_VerifyExpired(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc := newTestTokens(t, testJWTConfig(), clock)

	issued, err := svc.Issue(TokenClaims{UserID: 7, Role: "user"}, time.Minute)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)

	_, err = svc.Verify(issued.Token)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

func TestTokenService_VerifyRejectsForeignTokens(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	svc := newTestTokens(t, testJWTConfig(), clock)

	otherSecret := testJWTConfig()
	otherSecret.SecretKey = "another-secret-key-that-is-32-bytes-long"
	otherSecretSvc := newTestTokens(t, otherSecret, clock)

	otherAlg := testJWTConfig()
	otherAlg.Algorithm = "HS512"
	otherAlgSvc := newTestTokens(t, otherAlg, clock)

	otherIssuer := testJWTConfig()
	otherIssuer.Issuer = "someone-else"
	otherIssuerSvc := newTestTokens(t, otherIssuer, clock)

	claims := TokenClaims{UserID: 7, Role: "user"}

	tests := []struct {
		name   string
		issuer *TokenService
	}{
		{"other secret", otherSecretSvc},
		{"other algorithm", otherAlgSvc},
		{"other issuer", otherIssuerSvc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issued, err := tt.issuer.Issue(claims, time.Hour)
			require.NoError(t, err)

			_, err = svc.Verify(issued.Token)
			assert.ErrorIs(t, err, core.ErrTokenInvalid)
		})
	}
}

func TestTokenService_VerifyRejectsMalformed(t *testing.T) {
	svc := newTestTokens(t, testJWTConfig(), &fakeClock{t: time.Now()})

	issued, err := svc.Issue(TokenClaims{UserID: 7, Role: "user"}, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(issued.Token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	for name, token := range map[string]string{
		"empty":    "",
		"garbage":  "not-a-jwt",
		"tampered": tampered,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify(token)
			assert.ErrorIs(t, err, core.ErrTokenInvalid)
		})
	}
}

func TestTokenService_VerifyRequiresUserID(t *testing.T) {
	clock := &fakeClock{t: time.Now().UTC().Truncate(time.Second)}
	svc := newTestTokens(t, testJWTConfig(), clock)

	sign := func(t *testing.T, b *jwt.Builder) string {
		t.Helper()
		tok, err := b.Issuer("movie-catalog").
			Expiration(clock.t.Add(time.Hour)).
			Claim(claimRole, "user").
			Build()
		require.NoError(t, err)
		signed, err := jwt.Sign(tok, jwt.WithKey(svc.alg, svc.key))
		require.NoError(t, err)
		return string(signed)
	}

	tests := map[string]*jwt.Builder{
		"missing":  jwt.NewBuilder(),
		"string":   jwt.NewBuilder().Claim(claimUserID, "42"),
		"zero":     jwt.NewBuilder().Claim(claimUserID, 0),
		"negative": jwt.NewBuilder().Claim(claimUserID, -3),
		"fraction": jwt.NewBuilder().Claim(claimUserID, 1.5),
		"two^63":   jwt.NewBuilder().Claim(claimUserID, float64(1<<63)),
		"huge":     jwt.NewBuilder().Claim(claimUserID, 1e300),
	}

	for name, builder := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Verify(sign(t, builder))
			assert.ErrorIs(t, err, core.ErrTokenInvalid)
		})
	}

	t.Run("largest exact id", func(t *testing.T) {
		claims, err := svc.Verify(sign(t, jwt.NewBuilder().Claim(claimUserID, float64(1<<53))))
		require.NoError(t, err)
		assert.Equal(t, int64(1<<53), claims.UserID)
	})
}

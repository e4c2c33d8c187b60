// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLength   = 16

	MinPasswordLength = 8
)

// PasswordSpecialChars is the set a strong password must draw at least one
// character from.
const PasswordSpecialChars = `!@#$%^&*(),.?":{}|<>`

// ValidatePasswordStrength reports whether password is at least
// MinPasswordLength bytes and mixes ASCII upper, lower, digit and one of
// PasswordSpecialChars. There is no upper bound here.
func ValidatePasswordStrength(password string) bool {
	if len(password) < MinPasswordLength {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, c := range password {
		switch {
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case strings.ContainsRune(PasswordSpecialChars, c):
			hasSpecial = true
		}
	}

	return hasUpper && hasLower && hasDigit && hasSpecial
}

// HashPassword enforces the strength policy and returns an argon2id PHC string.
func HashPassword(password string) (string, error) {
	if !ValidatePasswordStrength(password) {
		return "", fmt.Errorf("hash password: %w", ErrWeakPassword)
	}
	return hashArgon2(password)
}

// ErrMalformedHash covers any stored hash that is not an argon2id PHC
// string this package can verify.
var ErrMalformedHash = errors.New("malformed password hash")

// maxArgonMemory bounds the cost a stored hash can demand, in KiB.
const maxArgonMemory = 1024 * 1024

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
}

var currentParams = argonParams{
	memory:  argonMemory,
	time:    argonTime,
	threads: argonThreads,
}

// phcHash is a decoded $argon2id$v=..$m=..,t=..,p=..$salt$key string.
type phcHash struct {
	params argonParams
	salt   []byte
	key    []byte
}

func (h phcHash) String() string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.memory, h.params.time, h.params.threads,
		base64.RawStdEncoding.EncodeToString(h.salt),
		base64.RawStdEncoding.EncodeToString(h.key),
	)
}

func (h phcHash) derive(password string) []byte {
	//nolint:gosec // G115: key length is bounded by parsePHC
	return argon2.IDKey([]byte(password), h.salt,
		h.params.time, h.params.memory, h.params.threads, uint32(len(h.key)))
}

func (h phcHash) outdated() bool {
	return h.params != currentParams || len(h.key) != argonKeyLen
}

func hashArgon2(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	h := phcHash{params: currentParams, salt: salt, key: make([]byte, argonKeyLen)}
	h.key = h.derive(password)

	return h.String(), nil
}

func parsePHC(encoded string) (phcHash, error) {
	var h phcHash

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return h, fmt.Errorf("%w: expected 6 fields", ErrMalformedHash)
	}
	if parts[1] != "argon2id" {
		return h, fmt.Errorf("%w: unsupported algorithm %s", ErrMalformedHash, parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return h, fmt.Errorf("%w: incompatible version %q", ErrMalformedHash, parts[2])
	}

	p := &h.params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return h, fmt.Errorf("%w: params: %w", ErrMalformedHash, err)
	}
	if p.memory == 0 || p.memory > maxArgonMemory || p.time == 0 || p.threads == 0 {
		return h, fmt.Errorf("%w: params out of range", ErrMalformedHash)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return h, fmt.Errorf("%w: salt: %w", ErrMalformedHash, err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return h, fmt.Errorf("%w: key: %w", ErrMalformedHash, err)
	}
	if len(h.key) == 0 || len(h.key) > 64 {
		return h, fmt.Errorf("%w: key length %d", ErrMalformedHash, len(h.key))
	}

	return h, nil
}

func VerifyPassword(password, encodedHash string) (bool, error) {
	h, err := parsePHC(encodedHash)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(h.key, h.derive(password)) == 1, nil
}

// VerifyPasswordWithRehash also returns a replacement hash when the stored one
// was produced with outdated argon2 parameters. The policy is not re-applied:
// the password was accepted when it was first stored.
func VerifyPasswordWithRehash(
	password, encodedHash string,
) (bool, string, error) {
	h, err := parsePHC(encodedHash)
	if err != nil {
		return false, "", err
	}

	if subtle.ConstantTimeCompare(h.key, h.derive(password)) != 1 {
		return false, "", nil
	}

	if !h.outdated() {
		return true, "", nil
	}

	newHash, err := hashArgon2(password)
	if err != nil {
		//nolint:nilerr // the password matched; a failed rehash only delays the upgrade
		return true, "", nil
	}
	return true, newHash, nil
}

var dummyHash = sync.OnceValue(func() string {
	hash, err := hashArgon2("dummy_password_for_timing_attack_prevention")
	if err != nil {
		panic(fmt.Sprintf("security: generate dummy hash: %v", err))
	}
	return hash
})

// VerifyPasswordTimingSafe always runs one argon2 derivation, against the
// dummy hash when encodedHash is nil or empty, and then reports false.
func VerifyPasswordTimingSafe(
	password string,
	encodedHash *string,
) (bool, string, error) {
	if encodedHash == nil || *encodedHash == "" {
		_, _ = VerifyPassword(password, dummyHash()) //nolint:errcheck // equalises timing only
		return false, "", nil
	}

	return VerifyPasswordWithRehash(password, *encodedHash)
}

// HashToken is the digest stored in user_logins.token in place of the bearer value.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

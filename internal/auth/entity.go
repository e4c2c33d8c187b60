// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

const (
	SessionActive    = "active"
	SessionSuspended = "suspended"
)

// LoginRecord is one row of user_logins. Token holds core.HashToken of the
// issued JWT, never the bearer value itself.
type LoginRecord struct {
	ID             int64     `db:"id"`
	UserID         int64     `db:"user_id"`
	Token          string    `db:"token"`
	Status         string    `db:"status"`
	CreatedAt      time.Time `db:"created_at"`
	ExpirationDate time.Time `db:"expiration_date"`
}

func (l *LoginRecord) IsExpiredAt(now time.Time) bool {
	return !now.Before(l.ExpirationDate)
}

func (l *LoginRecord) IsSuspended() bool {
	return l.Status == SessionSuspended
}

func (l *LoginRecord) IsActiveAt(now time.Time) bool {
	return l.Status == SessionActive && !l.IsExpiredAt(now)
}

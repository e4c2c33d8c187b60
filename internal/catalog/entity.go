// AngelaMos | 2026
// entity.go

package catalog

import (
	"time"
)

// Catalog rows reference their owners by id only. Deleting a user or a movie
// removes dependent rows through ON DELETE CASCADE.

type Movie struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Description *string   `db:"description"`
	Genre       *string   `db:"genre"`
	Language    *string   `db:"language"`
	Director    *string   `db:"director"`
	Cast        *string   `db:"cast"`
	ReleaseYear *int      `db:"release_year"`
	PosterURL   *string   `db:"poster_url"`
	Rating      float64   `db:"rating"`
	Approved    bool      `db:"approved"`
	CreatedBy   int64     `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type Review struct {
	ID        int64     `db:"id"`
	MovieID   int64     `db:"movie_id"`
	UserID    int64     `db:"user_id"`
	Rating    *float64  `db:"rating"`
	Comment   *string   `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type WatchlistEntry struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	MovieID   int64     `db:"movie_id"`
	CreatedAt time.Time `db:"created_at"`
}

type Platform struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Type      *string   `db:"type"`
	Website   *string   `db:"website"`
	CreatedAt time.Time `db:"created_at"`
}

type Region struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Code      *string   `db:"code"`
	CreatedAt time.Time `db:"created_at"`
}

type MovieAvailability struct {
	ID               int64      `db:"id"`
	MovieID          int64      `db:"movie_id"`
	PlatformID       int64      `db:"platform_id"`
	RegionID         int64      `db:"region_id"`
	AvailabilityType *string    `db:"availability_type"`
	StartDate        *time.Time `db:"start_date"`
	EndDate          *time.Time `db:"end_date"`
	URL              *string    `db:"url"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at"`
}

type Recommendation struct {
	ID                 int64     `db:"id"`
	UserID             int64     `db:"user_id"`
	RecommendedMovieID int64     `db:"recommended_movie_id"`
	Reason             *string   `db:"reason"`
	CreatedAt          time.Time `db:"created_at"`
}

type ActivityLog struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	ActionType  string    `db:"action_type"`
	Description string    `db:"description"`
	CreatedAt   time.Time `db:"created_at"`
}

const (
	ActionRegister       = "register"
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionSessionRevoke  = "session_revoke"
	ActionPasswordChange = "password_change"
)

// AngelaMos | 2026
// repository.go

package admin

import (
	"context"

	"github.com/carterperez-dev/templates/movie-catalog/internal/core"
)

type EntityCounts struct {
	Users          int64 `db:"users" json:"users"`
	SuspendedUsers int64 `db:"suspended_users" json:"suspended_users"`
	ActiveSessions int64 `db:"active_sessions" json:"active_sessions"`
	ExpiredLogins  int64 `db:"expired_logins" json:"expired_logins"`
	ActivityLogs   int64 `db:"activity_logs" json:"activity_logs"`
	Movies         int64 `db:"movies" json:"movies"`
}

type StatsRepository interface {
	Counts(ctx context.Context) (*EntityCounts, error)
}

type statsRepository struct {
	db core.DBTX
}

func NewStatsRepository(db core.DBTX) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Counts(ctx context.Context) (*EntityCounts, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users) AS users,
			(SELECT COUNT(*) FROM users WHERE status = 'suspended') AS suspended_users,
			(SELECT COUNT(*) FROM user_logins
			  WHERE status = 'active' AND expiration_date > NOW()) AS active_sessions,
			(SELECT COUNT(*) FROM user_logins WHERE expiration_date <= NOW()) AS expired_logins,
			(SELECT COUNT(*) FROM user_activity_logs) AS activity_logs,
			(SELECT COUNT(*) FROM movies) AS movies`

	var counts EntityCounts
	if err := r.db.GetContext(ctx, &counts, query); err != nil {
		return nil, core.StoreError("count entities", err)
	}

	return &counts, nil
}

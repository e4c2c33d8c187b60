// AngelaMos | 2026
// repository.go

package catalog

import (
	"context"

	"github.com/carterperez-dev/templates/movie-catalog/internal/core"
)

const (
	DefaultActivityLimit = 50
	MaxActivityLimit     = 200
)

type ActivityRepository interface {
	Record(ctx context.Context, entry *ActivityLog) error
	ListForUser(ctx context.Context, userID int64, limit int) ([]ActivityLog, error)
}

type activityRepository struct {
	db core.DBTX
}

func NewActivityRepository(db core.DBTX) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Record(ctx context.Context, entry *ActivityLog) error {
	return InsertActivity(ctx, r.db, entry)
}

// InsertActivity writes entry through q, which may be an open transaction.
func InsertActivity(ctx context.Context, q core.DBTX, entry *ActivityLog) error {
	query := `
		INSERT INTO user_activity_logs (user_id, action_type, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := q.GetContext(ctx, entry, query,
		entry.UserID,
		entry.ActionType,
		entry.Description,
	)
	if err != nil {
		return core.StoreError("insert activity", err)
	}

	return nil
}

func (r *activityRepository) ListForUser(
	ctx context.Context,
	userID int64,
	limit int,
) ([]ActivityLog, error) {
	if limit < 1 {
		limit = DefaultActivityLimit
	}
	if limit > MaxActivityLimit {
		limit = MaxActivityLimit
	}

	query := `
		SELECT id, user_id, COALESCE(action_type, '') AS action_type,
		       COALESCE(description, '') AS description, created_at
		FROM user_activity_logs
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	entries := make([]ActivityLog, 0)
	if err := r.db.SelectContext(ctx, &entries, query, userID, limit); err != nil {
		return nil, core.StoreError("list activity", err)
	}

	return entries, nil
}

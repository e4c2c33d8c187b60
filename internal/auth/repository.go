// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/templates/movie-catalog/internal/catalog"
	"github.com/carterperez-dev/templates/movie-catalog/internal/core"
)

const loginTokenConstraint = "user_logins_token_key"

var ErrDuplicateToken = errors.New("login token already recorded")

type Repository interface {
	RecordLogin(
		ctx context.Context,
		record *LoginRecord,
		activity *catalog.ActivityLog,
	) error
	FindByToken(ctx context.Context, tokenHash string) (*LoginRecord, error)
	FindByID(ctx context.Context, id int64) (*LoginRecord, error)
	ListForUser(
		ctx context.Context,
		userID int64,
		activeOnly bool,
	) ([]LoginRecord, error)
	Suspend(ctx context.Context, id int64) error
	ReplacePassword(
		ctx context.Context,
		userID int64,
		passwordHash string,
	) (int64, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// RecordLogin inserts the login row and, when activity is set, its activity
// log entry in a single transaction.
func (r *repository) RecordLogin(
	ctx context.Context,
	record *LoginRecord,
	activity *catalog.ActivityLog,
) error {
	if record.Status == "" {
		record.Status = SessionActive
	}

	return core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO user_logins (user_id, token, status, expiration_date)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at`

		err := tx.GetContext(ctx, record, query,
			record.UserID,
			record.Token,
			record.Status,
			record.ExpirationDate,
		)
		if err != nil {
			if name, ok := core.IsUniqueViolation(err); ok &&
				name == loginTokenConstraint {
				return fmt.Errorf("record login: %w", ErrDuplicateToken)
			}
			return core.StoreError("record login", err)
		}

		if activity == nil {
			return nil
		}

		activity.UserID = record.UserID
		return catalog.InsertActivity(ctx, tx, activity)
	})
}

const loginColumns = `id, user_id, token, status, created_at, expiration_date`

func (r *repository) FindByToken(
	ctx context.Context,
	tokenHash string,
) (*LoginRecord, error) {
	query := `SELECT ` + loginColumns + ` FROM user_logins WHERE token = $1`

	var record LoginRecord
	err := r.db.GetContext(ctx, &record, query, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find login: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, core.StoreError("find login", err)
	}

	return &record, nil
}

func (r *repository) FindByID(
	ctx context.Context,
	id int64,
) (*LoginRecord, error) {
	query := `SELECT ` + loginColumns + ` FROM user_logins WHERE id = $1`

	var record LoginRecord
	err := r.db.GetContext(ctx, &record, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find login: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, core.StoreError("find login", err)
	}

	return &record, nil
}

func (r *repository) ListForUser(
	ctx context.Context,
	userID int64,
	activeOnly bool,
) ([]LoginRecord, error) {
	query := `SELECT ` + loginColumns + ` FROM user_logins WHERE user_id = $1`
	if activeOnly {
		query += ` AND status = 'active' AND expiration_date > NOW()`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	records := make([]LoginRecord, 0)
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, core.StoreError("list logins", err)
	}

	return records, nil
}

func (r *repository) Suspend(ctx context.Context, id int64) error {
	query := `UPDATE user_logins SET status = 'suspended' WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return core.StoreError("suspend login", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return core.StoreError("suspend login", err)
	}

	if rows == 0 {
		return fmt.Errorf("suspend login: %w", core.ErrNotFound)
	}

	return nil
}

// ReplacePassword stores the new hash and suspends every active login of
// the user in one transaction. It returns the number of suspended logins.
func (r *repository) ReplacePassword(
	ctx context.Context,
	userID int64,
	passwordHash string,
) (int64, error) {
	var suspended int64

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE users
			SET password_hash = $2, updated_at = NOW()
			WHERE id = $1`,
			userID, passwordHash,
		)
		if err != nil {
			return core.StoreError("replace password", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return core.StoreError("replace password", err)
		}
		if rows == 0 {
			return fmt.Errorf("replace password: %w", core.ErrNotFound)
		}

		suspended, err = suspendAll(ctx, tx, userID)
		return err
	})
	if err != nil {
		return 0, err
	}

	return suspended, nil
}

func suspendAll(
	ctx context.Context,
	tx *sqlx.Tx,
	userID int64,
) (int64, error) {
	query := `
		UPDATE user_logins
		SET status = 'suspended'
		WHERE user_id = $1 AND status = 'active'`

	result, err := tx.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, core.StoreError("suspend logins", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, core.StoreError("suspend logins", err)
	}

	return rows, nil
}

func (r *repository) DeleteExpired(
	ctx context.Context,
	before time.Time,
) (int64, error) {
	query := `DELETE FROM user_logins WHERE expiration_date < $1`

	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, core.StoreError("delete expired logins", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, core.StoreError("delete expired logins", err)
	}

	return rows, nil
}

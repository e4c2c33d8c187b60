//go:build integration

// AngelaMos | 2026
// integration_test.go

package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/carterperez-dev/templates/movie-catalog/internal/auth"
	"github.com/carterperez-dev/templates/movie-catalog/internal/catalog"
	"github.com/carterperez-dev/templates/movie-catalog/internal/core"
	"github.com/carterperez-dev/templates/movie-catalog/internal/user"
)

func startPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("movies"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrator, err := core.NewMigrator(connStr)
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	require.NoError(t, migrator.Close())

	db, err := sqlx.ConnectContext(ctx, "pgx", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func countRows(t *testing.T, db *sqlx.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, query, args...))
	return n
}

func TestPostgres_DeleteUserCascades(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	users := user.NewRepository(db)
	logins := auth.NewRepository(db)

	u := &user.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$argon2id$placeholder",
	}
	require.NoError(t, users.Create(ctx, u))
	assert.Equal(t, user.RoleUser, u.Role)

	for i, token := range []string{"hash-one", "hash-two"} {
		err := logins.RecordLogin(ctx, &auth.LoginRecord{
			UserID:         u.ID,
			Token:          token,
			Status:         auth.SessionActive,
			ExpirationDate: time.Now().Add(time.Duration(i+1) * time.Hour),
		}, &catalog.ActivityLog{ActionType: catalog.ActionLogin, Description: "login"})
		require.NoError(t, err)
	}

	var movieID int64
	require.NoError(t, db.Get(&movieID,
		`INSERT INTO movies (title, created_by) VALUES ('Heat', $1) RETURNING id`, u.ID))
	_, err := db.Exec(`INSERT INTO reviews (movie_id, user_id, rating) VALUES ($1, $2, 4.5)`, movieID, u.ID)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO watchlist (user_id, movie_id) VALUES ($1, $2)`, u.ID, movieID)
	require.NoError(t, err)

	assert.Equal(t, 2, countRows(t, db, `SELECT COUNT(*) FROM user_logins WHERE user_id = $1`, u.ID))
	assert.Equal(t, 2, countRows(t, db, `SELECT COUNT(*) FROM user_activity_logs WHERE user_id = $1`, u.ID))

	require.NoError(t, users.Delete(ctx, u.ID))

	for _, table := range []string{"user_logins", "user_activity_logs", "reviews", "watchlist"} {
		assert.Zero(t, countRows(t, db, `SELECT COUNT(*) FROM `+table+` WHERE user_id = $1`, u.ID), table)
	}
	assert.Zero(t, countRows(t, db, `SELECT COUNT(*) FROM movies WHERE created_by = $1`, u.ID))

	_, err = users.GetByID(ctx, u.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestPostgres_UniqueConstraints(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	users := user.NewRepository(db)

	require.NoError(t, users.Create(ctx, &user.User{
		Username: "bob", Email: "bob@example.com", PasswordHash: "h",
	}))

	err := users.Create(ctx, &user.User{Username: "bobby", Email: "bob@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	err = users.Create(ctx, &user.User{Username: "bob", Email: "other@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, user.ErrUsernameTaken)
}

func TestPostgres_LoginTokensUniqueAndPurge(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	u := &user.User{Username: "carol", Email: "carol@example.com", PasswordHash: "h"}
	require.NoError(t, user.NewRepository(db).Create(ctx, u))

	logins := auth.NewRepository(db)
	expired := &auth.LoginRecord{
		UserID: u.ID, Token: "old", Status: auth.SessionActive,
		ExpirationDate: time.Now().Add(-2 * time.Hour),
	}
	require.NoError(t, logins.RecordLogin(ctx, expired,
		&catalog.ActivityLog{ActionType: catalog.ActionLogin}))

	err := logins.RecordLogin(ctx, &auth.LoginRecord{
		UserID: u.ID, Token: "old", Status: auth.SessionActive,
		ExpirationDate: time.Now().Add(time.Hour),
	}, &catalog.ActivityLog{ActionType: catalog.ActionLogin})
	assert.ErrorIs(t, err, auth.ErrDuplicateToken)
	assert.Equal(t, 1, countRows(t, db, `SELECT COUNT(*) FROM user_activity_logs WHERE user_id = $1`, u.ID))

	deleted, err := logins.DeleteExpired(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = logins.FindByToken(ctx, "old")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

// AngelaMos | 2026
// migrate_test.go

package core

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	upErr      error
	downErr    error
	version    uint
	dirty      bool
	versionErr error
	closed     bool
}

func (f *fakeRunner) Up() error   { return f.upErr }
func (f *fakeRunner) Down() error { return f.downErr }

func (f *fakeRunner) Version() (uint, bool, error) {
	return f.version, f.dirty, f.versionErr
}

func (f *fakeRunner) Close() (error, error) {
	f.closed = true
	return nil, nil
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@db:5432/movies", MigrateURL("postgres://u:p@db:5432/movies"))
	assert.Equal(t, "pgx5://u:p@db/movies", MigrateURL("postgresql://u:p@db/movies"))
	assert.Equal(t, "pgx5://already", MigrateURL("pgx5://already"))
}

func TestMigrator_NoChangeIsNotAnError(t *testing.T) {
	m := &Migrator{m: &fakeRunner{upErr: migrate.ErrNoChange, downErr: migrate.ErrNoChange}}

	assert.NoError(t, m.Up())
	assert.NoError(t, m.Down())
}

func TestMigrator_UpFailure(t *testing.T) {
	m := &Migrator{m: &fakeRunner{upErr: errors.New("syntax error")}}

	err := m.Up()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate up")
}

func TestMigrator_Version(t *testing.T) {
	m := &Migrator{m: &fakeRunner{versionErr: migrate.ErrNilVersion}}
	v, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.False(t, dirty)

	m = &Migrator{m: &fakeRunner{version: 1, dirty: true}}
	v, dirty, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.True(t, dirty)
}

func TestMigrator_Close(t *testing.T) {
	runner := &fakeRunner{}
	m := &Migrator{m: runner}

	require.NoError(t, m.Close())
	assert.True(t, runner.closed)
}

func TestEmbeddedMigrations(t *testing.T) {
	up, err := fs.ReadFile(migrationsFS, "migrations/000001_init_schema.up.sql")
	require.NoError(t, err)

	for _, want := range []string{
		"CONSTRAINT users_email_key UNIQUE (email)",
		"CONSTRAINT users_username_key UNIQUE (username)",
		"CONSTRAINT user_logins_token_key UNIQUE (token)",
		"REFERENCES users (id) ON DELETE CASCADE",
	} {
		assert.Contains(t, string(up), want)
	}

	_, err = fs.ReadFile(migrationsFS, "migrations/000001_init_schema.down.sql")
	require.NoError(t, err)
}

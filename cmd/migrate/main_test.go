package main

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/dental-ai-assistant/migrations"
)

type fakeMigrator struct {
	calls   []string
	upErr   error
	version uint
	verErr  error
	forced  int
}

func (f *fakeMigrator) Up() error {
	f.calls = append(f.calls, "up")
	return f.upErr
}

func (f *fakeMigrator) Down() error {
	f.calls = append(f.calls, "down")
	return nil
}

func (f *fakeMigrator) Force(v int) error {
	f.calls = append(f.calls, "force")
	f.forced = v
	return nil
}

func (f *fakeMigrator) Version() (uint, bool, error) {
	f.calls = append(f.calls, "version")
	return f.version, false, f.verErr
}

func TestRunDefaultsToUp(t *testing.T) {
	m := &fakeMigrator{upErr: migrate.ErrNoChange}
	require.NoError(t, run(m, nil))
	assert.Equal(t, []string{"up"}, m.calls)
}

func TestRunUpError(t *testing.T) {
	m := &fakeMigrator{upErr: errors.New("boom")}
	err := run(m, []string{"up"})
	assert.ErrorContains(t, err, "migrate up")
}

func TestRunForce(t *testing.T) {
	m := &fakeMigrator{}
	require.NoError(t, run(m, []string{"force", "1"}))
	assert.Equal(t, 1, m.forced)

	assert.Error(t, run(m, []string{"force"}))
	assert.Error(t, run(m, []string{"force", "x"}))
}

func TestRunVersionWithoutMigrations(t *testing.T) {
	m := &fakeMigrator{verErr: migrate.ErrNilVersion}
	assert.NoError(t, run(m, []string{"version"}))
}

func TestRunUnknownCommand(t *testing.T) {
	err := run(&fakeMigrator{}, []string{"sideways"})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "usage:"))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrations.FS, "*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrations.FS, "*.down.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}

package db

import (
	"io/fs"
	"strings"
	"testing"

	"userauth/pkg/db/migrations"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
)

func TestOpenRejectsBadDSN(t *testing.T) {
	_, _, err := Open(Config{DSN: "postgres://%zz"})
	require.Error(t, err)
}

func TestOpenGormTranslatesErrors(t *testing.T) {
	gdb, err := OpenGorm(sqlite.Open("file::memory:"), false)
	require.NoError(t, err)
	require.True(t, gdb.Config.TranslateError)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	body, err := fs.ReadFile(migrations.FS, "00001_create_users.sql")
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), "-- +goose Up"))
	require.True(t, strings.Contains(string(body), "-- +goose Down"))
}

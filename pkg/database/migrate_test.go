package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedRunsScriptInTransaction(t *testing.T) {
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()
	db := sqlx.NewDb(raw, "sqlmock")

	path := filepath.Join(t.TempDir(), "insert_data.sql")
	require.NoError(t, os.WriteFile(path, []byte("INSERT INTO movies (title) VALUES ('Alien')"), 0o600))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO movies").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, Seed(context.Background(), db, path))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeedMissingFile(t *testing.T) {
	raw, _, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	err = Seed(context.Background(), sqlx.NewDb(raw, "sqlmock"), filepath.Join(t.TempDir(), "absent.sql"))
	assert.ErrorContains(t, err, "read seed file")
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "00001_create_movies.sql", entries[0].Name())
}

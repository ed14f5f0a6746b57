package main

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMigrationPart(t *testing.T) {
	content := `
-- +migrate Up
CREATE TABLE gateway_configurations (gateway_id text);
ALTER TABLE gateway_configurations ADD COLUMN pspid text;

-- +migrate Down
DROP TABLE gateway_configurations;
`
	t.Run("Extract Up", func(t *testing.T) {
		up := extractMigrationPart(content, "Up")
		assert.Contains(t, up, "CREATE TABLE gateway_configurations")
		assert.Contains(t, up, "ALTER TABLE gateway_configurations")
		assert.NotContains(t, up, "DROP TABLE gateway_configurations")
		assert.NotContains(t, up, "-- +migrate Up") // Should not contain the marker itself
	})

	t.Run("Extract Down", func(t *testing.T) {
		down := extractMigrationPart(content, "Down")
		assert.Contains(t, down, "DROP TABLE gateway_configurations")
		assert.NotContains(t, down, "CREATE TABLE gateway_configurations")
	})
}

func TestRunMigrationsUp(t *testing.T) {
	// 1. Mock Database
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// 2. Create a temporary migration file
	tmpDir := t.TempDir()
	fileName := "20230101_init.sql"
	filePath := filepath.Join(tmpDir, fileName)

	content := "-- +migrate Up\nCREATE TABLE test (id int);"
	err = os.WriteFile(filePath, []byte(content), 0644)
	require.NoError(t, err)

	files := []string{filePath}

	// 3. Define Expectations
	// Check if migration exists (return false so it runs)
	mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
		WithArgs(fileName).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	// Execute the SQL from the file
	mock.ExpectExec("CREATE TABLE test").
		WillReturnResult(sqlmock.NewResult(0, 0))

	// Record the migration version
	mock.ExpectExec("INSERT INTO schema_migrations").
		WithArgs(fileName).
		WillReturnResult(sqlmock.NewResult(1, 1))

	// 4. Run the function
	require.NoError(t, runMigrationsUp(db, files))

	// 5. Verify
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsUp_SkipsApplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS.*schema_migrations").
		WithArgs("001_init.sql").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	require.NoError(t, runMigrationsUp(db, []string{"/nowhere/001_init.sql"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsDown(t *testing.T) {
	t.Run("Rolls back latest", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		tmpDir := t.TempDir()
		filePath := filepath.Join(tmpDir, "002_callbacks.sql")
		content := "-- +migrate Up\nCREATE TABLE payment_callbacks (id int);\n-- +migrate Down\nDROP TABLE payment_callbacks;\n"
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))

		mock.ExpectQuery("SELECT version FROM schema_migrations").
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("002_callbacks.sql"))
		mock.ExpectExec("DROP TABLE payment_callbacks").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM schema_migrations").
			WithArgs("002_callbacks.sql").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, runMigrationsDown(db, []string{filePath}))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Nothing applied", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT version FROM schema_migrations").
			WillReturnError(sql.ErrNoRows)

		require.NoError(t, runMigrationsDown(db, nil))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRun_UnknownMode(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = run(db, "sideways", t.TempDir())
	assert.ErrorContains(t, err, "unknown mode")
}

func TestMigrationFiles(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("..", "..", "migrations", "*.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		content, err := os.ReadFile(f)
		require.NoError(t, err)
		assert.NotEmpty(t, extractMigrationPart(string(content), "Up"), f)
		assert.NotEmpty(t, extractMigrationPart(string(content), "Down"), f)
	}
}

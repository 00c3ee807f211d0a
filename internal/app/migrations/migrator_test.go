package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionOf(t *testing.T) {
	assert.Equal(t, "001", VersionOf("migrations/001_init.sql"))
	assert.Equal(t, "010", VersionOf("/abs/010_add_sessions_index.sql"))
	assert.Equal(t, "noversion.sql", VersionOf("noversion.sql"))
}

func TestSQLFiles_SortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"002_b.sql", "001_a.sql", "README.md", "010_c.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o700))

	files, err := SQLFiles(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "001_a.sql"),
		filepath.Join(dir, "002_b.sql"),
		filepath.Join(dir, "010_c.sql"),
	}, files)
}

func TestSQLFiles_MissingDirectory(t *testing.T) {
	_, err := SQLFiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestInitMigration_DeclaresRequiredConstraints(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "001_init.sql"))
	require.NoError(t, err)

	sql := string(content)
	for _, fragment := range []string{
		"CONSTRAINT users_email_key UNIQUE",
		"CONSTRAINT users_faculty_id_key UNIQUE",
		"CONSTRAINT faculty_status_faculty_id_key UNIQUE",
		"consultations_scheduled_slot_key",
		"WHERE status = 'Scheduled'",
		"ON DELETE CASCADE",
	} {
		assert.Contains(t, sql, fragment)
	}
}

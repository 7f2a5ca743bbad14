package migrations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionOf(t *testing.T) {
	assert.Equal(t, "001", VersionOf("001_users.sql"))
	assert.Equal(t, "002", VersionOf("/srv/migrations/002_news_items.sql"))
	assert.Equal(t, "init.sql", VersionOf("init.sql"))
}

func TestSortedSQLFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"003_teachers.sql", "001_users.sql", "README.md", "002_news_items.sql"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "004_dir.sql"), 0o700))

	files, err := SortedSQLFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"001_users.sql", "002_news_items.sql", "003_teachers.sql"}, files)
}

func TestSortedSQLFiles_MissingDir(t *testing.T) {
	_, err := SortedSQLFiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestRepositoryMigrationsAreOrdered(t *testing.T) {
	files, err := SortedSQLFiles(filepath.Join("..", "..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	seen := map[string]bool{}
	for _, f := range files {
		v := VersionOf(f)
		assert.False(t, seen[v], "duplicate migration version %s", v)
		seen[v] = true
	}
}

package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLatestVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000001_create_relationships.up.sql",
		"000001_create_relationships.down.sql",
		"000003_add_index.up.sql",
		"000002_create_log.up.sql",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644))
	}

	latest, err := getLatestVersion(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, latest)
}

func TestGetLatestVersion_Empty(t *testing.T) {
	_, err := getLatestVersion(t.TempDir())
	assert.Error(t, err)
}

func TestGetLatestVersion_ShippedMigrations(t *testing.T) {
	latest, err := getLatestVersion(filepath.Join("..", "..", "db", "pg"))
	require.NoError(t, err)
	assert.Equal(t, 2, latest)
}

package api_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epodak/grule/api"
)

func TestGetConfigPath(t *testing.T) {
	t.Run("xdg config home", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

		path := api.GetConfigPath("catalog.yaml")
		assert.Equal(t, filepath.Join("/tmp/xdg", "grule", "catalog.yaml"), path)
	})

	t.Run("home fallback", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("HOME", "/tmp/home")

		path := api.GetConfigPath("catalog.yaml")
		assert.Equal(t, filepath.Join("/tmp/home", ".config", "grule", "catalog.yaml"), path)
	})
}

func TestGetRuleLibraryPath(t *testing.T) {
	t.Setenv("HOME", "/tmp/home")

	assert.Equal(t, filepath.Join("/tmp/home", ".agent-rules"), api.GetRuleLibraryPath())
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	t.Run("regular file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "file.yaml")
		require.NoError(t, os.WriteFile(path, []byte("key: value\n"), 0o644))

		data, err := api.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "key: value\n", string(data))
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()

		_, err := api.ReadFile(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "path is a directory")
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := api.ReadFile(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})
}

func TestWriteIfNotExists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "file.yaml")

	require.NoError(t, api.WriteIfNotExists(path, []byte("first\n")))

	// A second write is a no-op.
	require.NoError(t, api.WriteIfNotExists(path, []byte("second\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(data))
}

func TestBackupFile(t *testing.T) {
	t.Parallel()

	t.Run("existing file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "CLAUDE.md")
		require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

		backupPath, err := api.BackupFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(backupPath, ".old"))

		// The original is gone, the backup holds its content.
		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))

		data, err := os.ReadFile(backupPath)
		require.NoError(t, err)
		assert.Equal(t, "old\n", string(data))
	})

	t.Run("missing file is a no-op", func(t *testing.T) {
		t.Parallel()

		backupPath, err := api.BackupFile(filepath.Join(t.TempDir(), "missing"))
		require.NoError(t, err)
		assert.Empty(t, backupPath)
	})
}

func TestWriteDefaultFile(t *testing.T) {
	t.Parallel()

	t.Run("creates file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "nested", "catalog.yaml")
		require.NoError(t, api.WriteDefaultFile(path, []byte("rules: {}\n"), false, "catalog"))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "rules: {}\n", string(data))
	})

	t.Run("keeps existing file without force", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "catalog.yaml")
		require.NoError(t, os.WriteFile(path, []byte("custom\n"), 0o644))

		require.NoError(t, api.WriteDefaultFile(path, []byte("default\n"), false, "catalog"))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "custom\n", string(data))
	})

	t.Run("force backs up and replaces", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "catalog.yaml")
		require.NoError(t, os.WriteFile(path, []byte("custom\n"), 0o644))

		require.NoError(t, api.WriteDefaultFile(path, []byte("default\n"), true, "catalog"))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "default\n", string(data))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})
}

func TestMarshalYAML(t *testing.T) {
	t.Parallel()

	data, err := api.MarshalYAML(map[string]string{"key": "value"})
	require.NoError(t, err)
	assert.Equal(t, "key: value\n", string(data))
}

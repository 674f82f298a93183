package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epodak/grule/pkg/store"
)

// newLibrary creates a populated rule library on disk.
func newLibrary(t *testing.T, projectRules, globalRules map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "project-rules"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "global-rules"), 0o755))

	for name, content := range projectRules {
		require.NoError(t, os.WriteFile(
			filepath.Join(dir, "project-rules", name+store.RuleExt), []byte(content), 0o644,
		))
	}

	for name, content := range globalRules {
		require.NoError(t, os.WriteFile(
			filepath.Join(dir, "global-rules", name+store.RuleExt), []byte(content), 0o644,
		))
	}

	return dir
}

func TestStore_Content(t *testing.T) {
	t.Parallel()

	dir := newLibrary(t, map[string]string{
		"bug-fix": "# Bug Fix\n",
		"shared":  "# Project Shared\n",
	}, map[string]string{
		"gissue-workflow": "# Issue Workflow\n",
		"shared":          "# Global Shared\n",
	})

	s := store.New(dir)

	t.Run("existing rule", func(t *testing.T) {
		t.Parallel()

		content, err := s.Content("bug-fix")
		require.NoError(t, err)
		assert.Equal(t, "# Bug Fix\n", string(content))
	})

	t.Run("global rule", func(t *testing.T) {
		t.Parallel()

		content, err := s.Content("gissue-workflow")
		require.NoError(t, err)
		assert.Equal(t, "# Issue Workflow\n", string(content))
	})

	t.Run("project rule wins over a global with the same name", func(t *testing.T) {
		t.Parallel()

		content, err := s.Content("shared")
		require.NoError(t, err)
		assert.Equal(t, "# Project Shared\n", string(content))
	})

	t.Run("missing rule", func(t *testing.T) {
		t.Parallel()

		_, err := s.Content("nonexistent")
		require.ErrorIs(t, err, store.ErrRuleNotFound)
	})
}

func TestStore_Names(t *testing.T) {
	t.Parallel()

	dir := newLibrary(t, map[string]string{
		"quick-wins":     "# Quick Wins\n",
		"bug-fix":        "# Bug Fix\n",
		"implement-task": "# Implement Task\n",
	}, map[string]string{
		"general": "# General\n",
	})

	// A non-rule file is ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "project-rules", "README.md"), []byte("x"), 0o644))

	s := store.New(dir)

	names, err := s.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"bug-fix", "implement-task", "quick-wins"}, names)

	globals, err := s.GlobalNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"general"}, globals)
}

func TestStore_Names_NotDeployed(t *testing.T) {
	t.Parallel()

	s := store.New(filepath.Join(t.TempDir(), "missing"))

	names, err := s.Names()
	require.NoError(t, err)
	assert.Nil(t, names)
}

func TestStore_Deploy_FromPath(t *testing.T) {
	t.Parallel()

	source := newLibrary(t, map[string]string{
		"commit": "# Commit\n",
	}, nil)

	target := filepath.Join(t.TempDir(), "library")
	s := store.New(target)
	assert.False(t, s.Exists())

	require.NoError(t, s.Deploy(t.Context(), source, false))
	assert.True(t, s.Exists())

	content, err := s.Content("commit")
	require.NoError(t, err)
	assert.Equal(t, "# Commit\n", string(content))
}

func TestStore_Deploy_AlreadyDeployed(t *testing.T) {
	t.Parallel()

	source := newLibrary(t, map[string]string{"a": "old\n"}, nil)
	target := filepath.Join(t.TempDir(), "library")

	s := store.New(target)
	require.NoError(t, s.Deploy(t.Context(), source, false))

	err := s.Deploy(t.Context(), source, false)
	require.ErrorIs(t, err, store.ErrAlreadyDeployed)

	// Force replaces the existing library.
	replacement := newLibrary(t, map[string]string{"b": "new\n"}, nil)
	require.NoError(t, s.Deploy(t.Context(), replacement, true))

	names, err := s.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)
}

func TestStore_Deploy_InvalidSource(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	s := store.New(filepath.Join(t.TempDir(), "library"))

	err := s.Deploy(t.Context(), file, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestStore_Update_NotDeployed(t *testing.T) {
	t.Parallel()

	s := store.New(filepath.Join(t.TempDir(), "missing"))

	err := s.Update(t.Context())
	require.ErrorIs(t, err, store.ErrNotDeployed)
}

func TestStore_Status(t *testing.T) {
	t.Parallel()

	t.Run("deployed", func(t *testing.T) {
		t.Parallel()

		dir := newLibrary(t, map[string]string{
			"a": "a\n",
			"b": "b\n",
		}, map[string]string{
			"g": "g\n",
		})

		st := store.New(dir).Status()
		assert.True(t, st.Deployed)
		assert.Equal(t, 2, st.RuleCount)
		assert.Equal(t, 1, st.GlobalCount)
		assert.False(t, st.ModTime.IsZero())
	})

	t.Run("not deployed", func(t *testing.T) {
		t.Parallel()

		st := store.New(filepath.Join(t.TempDir(), "missing")).Status()
		assert.False(t, st.Deployed)
		assert.Zero(t, st.RuleCount)
	})
}

func TestStripFrontmatter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "frontmatter stripped",
			content: "---\ndescription: test\nglobs: *.swift\n---\n\n# Body\n",
			want:    "# Body\n",
		},
		{
			name:    "no frontmatter",
			content: "# Body\n",
			want:    "# Body\n",
		},
		{
			name:    "unterminated frontmatter kept as-is",
			content: "---\ndescription: test\n",
			want:    "---\ndescription: test\n",
		},
		{
			name:    "empty document",
			content: "",
			want:    "",
		},
		{
			name:    "delimiter with trailing spaces",
			content: "--- \nkey: value\n---  \nbody\n",
			want:    "body\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, string(store.StripFrontmatter([]byte(tt.content))))
		})
	}
}

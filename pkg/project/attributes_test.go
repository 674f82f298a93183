package project_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/epodak/grule/pkg/project"
)

func TestAttributes(t *testing.T) {
	t.Parallel()

	attrs := project.NewAttributes(
		project.Feature{Key: "languages", Value: "go"},
		project.Feature{Key: "languages", Value: "python"},
		project.Feature{Key: "languages", Value: "go"}, // Duplicate.
		project.Feature{Key: "has_git", Value: "true"},
	)

	assert.Equal(t, 3, attrs.Len())
	assert.Equal(t, []string{"go", "python"}, attrs.Values("languages"))
	assert.True(t, attrs.Has("languages", "go"))
	assert.False(t, attrs.Has("languages", "rust"))
	assert.True(t, attrs.Flag("has_git"))
	assert.False(t, attrs.Flag("has_docker"))
}

func TestAttributes_Map(t *testing.T) {
	t.Parallel()

	attrs := project.NewAttributes(
		project.Feature{Key: "languages", Value: "go"},
		project.Feature{Key: "project_size", Value: "small"},
	)

	m := attrs.Map()
	assert.Equal(t, map[string][]string{
		"languages":    {"go"},
		"project_size": {"small"},
	}, m)

	// Mutating the map must not affect the receiver.
	m["languages"] = append(m["languages"], "rust")
	assert.Equal(t, []string{"go"}, attrs.Values("languages"))
}

func TestAttributes_Features(t *testing.T) {
	t.Parallel()

	attrs := project.NewAttributes(
		project.Feature{Key: "languages", Value: "swift", Description: "detected language: swift"},
	)

	features := attrs.Features()
	assert.Len(t, features, 1)
	assert.Equal(t, "detected language: swift", features[0].Description)

	// The returned slice is a copy.
	features[0].Value = "mutated"
	assert.Equal(t, []string{"swift"}, attrs.Values("languages"))
}

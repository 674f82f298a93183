package project

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/epodak/grule/pkg/execs"
)

// Git inspects a repository's history using the git CLI.
type Git struct{}

// NewGit creates a new [Git].
func NewGit() *Git {
	return &Git{}
}

// Contributors returns the number of distinct author emails in the log.
func (g *Git) Contributors(ctx context.Context, dir string) (int, error) {
	e := execs.NewExecutor(execs.Command{
		Command: "git",
		Args:    []string{"log", "--format=%ae"},
	})

	result, err := e.Exec(ctx, dir)
	if err != nil {
		return 0, fmt.Errorf("git log: %w", err)
	}

	authors := map[string]struct{}{}

	for line := range strings.Lines(result.Stdout) {
		author := strings.TrimSpace(line)
		if author != "" {
			authors[author] = struct{}{}
		}
	}

	return len(authors), nil
}

// CommitCount returns the number of commits reachable from HEAD.
func (g *Git) CommitCount(ctx context.Context, dir string) (int, error) {
	e := execs.NewExecutor(execs.Command{
		Command: "git",
		Args:    []string{"rev-list", "--count", "HEAD"},
	})

	result, err := e.Exec(ctx, dir)
	if err != nil {
		return 0, fmt.Errorf("git rev-list: %w", err)
	}

	count, err := strconv.Atoi(strings.TrimSpace(result.Stdout))
	if err != nil {
		return 0, fmt.Errorf("parse commit count: %w", err)
	}

	return count, nil
}

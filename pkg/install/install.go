// Package install writes recommended rule documents into a project, either
// as individual files under .cursor/rules or aggregated into CLAUDE.md.
package install

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/epodak/grule/api"
	"github.com/epodak/grule/pkg/log"
	"github.com/epodak/grule/pkg/store"
)

// Target selects the installation destination format.
type Target string

const (
	// TargetCursor installs individual rule files under .cursor/rules.
	TargetCursor Target = "cursor"
	// TargetClaude aggregates rules into a single CLAUDE.md document.
	TargetClaude Target = "claude"
	// TargetBoth installs to both destinations.
	TargetBoth Target = "both"

	cursorRulesDir = ".cursor/rules"
	claudeFile     = "CLAUDE.md"
)

// AllTargets contains the valid target values.
var AllTargets = []string{
	string(TargetCursor),
	string(TargetClaude),
	string(TargetBoth),
}

// ErrUnknownTarget is returned for an unrecognized target value.
var ErrUnknownTarget = errors.New("unknown install target")

// ParseTarget validates a target string.
func ParseTarget(s string) (Target, error) {
	t := Target(strings.ToLower(s))
	if slices.Contains([]Target{TargetCursor, TargetClaude, TargetBoth}, t) {
		return t, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownTarget, s)
}

// Summary reports the outcome of an installation.
type Summary struct {
	Installed []string
	Missing   []string
}

// Installer copies rule documents from a [store.Store] into a project
// directory. It deals only in rule identifiers; a rule referenced by the
// recommendation but missing from the store is a per-rule miss, never a
// fatal error.
type Installer struct {
	store      *store.Store
	projectDir string
}

// New creates an [Installer] for the given store and project directory.
func New(st *store.Store, projectDir string) *Installer {
	return &Installer{
		store:      st,
		projectDir: projectDir,
	}
}

// InstallCursor copies each named rule into .cursor/rules. The library's
// global rules are included on every run, ahead of the recommendation.
func (i *Installer) InstallCursor(ctx context.Context, names []string) (*Summary, error) {
	logger := log.WithContext(ctx)

	destDir := filepath.Join(i.projectDir, cursorRulesDir)

	err := os.MkdirAll(destDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("create rules directory: %w", err)
	}

	summary := &Summary{}

	for _, name := range i.withGlobals(ctx, names) {
		content, err := i.store.Content(name)
		if err != nil {
			logger.Warn("rule missing from library",
				slog.String("rule", name),
				slog.Any("error", err),
			)

			summary.Missing = append(summary.Missing, name)

			continue
		}

		destFile := filepath.Join(destDir, name+store.RuleExt)

		err = os.WriteFile(destFile, content, 0o644)
		if err != nil {
			return summary, fmt.Errorf("write rule %q: %w", name, err)
		}

		summary.Installed = append(summary.Installed, name)
	}

	logger.Info("installed cursor rules",
		slog.Int("installed", len(summary.Installed)),
		slog.Int("missing", len(summary.Missing)),
		slog.String("dir", destDir),
	)

	return summary, nil
}

// InstallClaude aggregates the named rules into a single CLAUDE.md in the
// project root, stripping YAML frontmatter from each document. The library's
// global rules open the aggregate, followed by the recommendation. An
// existing CLAUDE.md is backed up first.
func (i *Installer) InstallClaude(ctx context.Context, names []string) (*Summary, error) {
	logger := log.WithContext(ctx)

	destFile := filepath.Join(i.projectDir, claudeFile)

	backupPath, err := api.BackupFile(destFile)
	if err != nil {
		return nil, fmt.Errorf("back up %s: %w", claudeFile, err)
	}

	if backupPath != "" {
		logger.Info("backed up existing file",
			slog.String("path", backupPath),
		)
	}

	summary := &Summary{}

	var b strings.Builder

	b.WriteString("# Claude Code Rules\n\n")

	for _, name := range i.withGlobals(ctx, names) {
		content, err := i.store.Content(name)
		if err != nil {
			logger.Warn("rule missing from library",
				slog.String("rule", name),
				slog.Any("error", err),
			)

			summary.Missing = append(summary.Missing, name)

			continue
		}

		b.WriteString(fmt.Sprintf("## %s\n\n", name))
		b.Write(store.StripFrontmatter(content))
		b.WriteString("\n\n")

		summary.Installed = append(summary.Installed, name)
	}

	err = os.WriteFile(destFile, []byte(b.String()), 0o644)
	if err != nil {
		return summary, fmt.Errorf("write %s: %w", claudeFile, err)
	}

	logger.Info("installed claude rules",
		slog.Int("installed", len(summary.Installed)),
		slog.Int("missing", len(summary.Missing)),
		slog.String("file", destFile),
	)

	return summary, nil
}

// withGlobals prepends the library's global rules, which are foundational
// and apply to every project regardless of its attributes.
func (i *Installer) withGlobals(ctx context.Context, names []string) []string {
	globals, err := i.store.GlobalNames()
	if err != nil {
		log.WithContext(ctx).Warn("could not list global rules", slog.Any("error", err))

		return names
	}

	out := slices.Clone(globals)
	for _, name := range names {
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}

	return out
}

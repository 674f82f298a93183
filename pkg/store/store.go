// Package store manages the on-disk rule library: a git clone (or local
// copy) of the agent-rules repository, holding one markdown document per
// rule identifier.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/epodak/grule/pkg/execs"
	"github.com/epodak/grule/pkg/log"
)

const (
	// DefaultRepoURL is the upstream rule repository cloned on deploy.
	DefaultRepoURL = "https://github.com/epodak/agent-rules.git"

	// RuleExt is the file extension of rule documents.
	RuleExt = ".mdc"

	projectRulesDir = "project-rules"
	globalRulesDir  = "global-rules"
)

var (
	// ErrNotDeployed is returned when the rule library directory is missing.
	ErrNotDeployed = errors.New("rule library not deployed")

	// ErrAlreadyDeployed is returned when deploying over an existing library
	// without force.
	ErrAlreadyDeployed = errors.New("rule library already deployed")

	// ErrRuleNotFound is returned when a rule document is missing from the
	// library.
	ErrRuleNotFound = errors.New("rule not found in library")
)

// Store provides access to the rule library rooted at Dir.
type Store struct {
	repoURL string

	// Dir is the library root, typically ~/.agent-rules.
	Dir string
}

// Opt is a functional option for configuring a [Store].
type Opt func(*Store)

// WithRepoURL overrides the upstream repository used by [Store.Deploy].
func WithRepoURL(url string) Opt {
	return func(s *Store) {
		s.repoURL = url
	}
}

// New creates a [Store] rooted at dir.
func New(dir string, opts ...Opt) *Store {
	s := &Store{
		Dir:     dir,
		repoURL: DefaultRepoURL,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Exists reports whether the library directory is present.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.Dir)

	return err == nil && info.IsDir()
}

// Deploy populates the library, either by copying sourcePath or by cloning
// the upstream repository. An existing library is only replaced with force.
func (s *Store) Deploy(ctx context.Context, sourcePath string, force bool) error {
	logger := log.WithContext(ctx).With(slog.String("dir", s.Dir))

	if s.Exists() {
		if !force {
			return fmt.Errorf("%w: %s", ErrAlreadyDeployed, s.Dir)
		}

		logger.Info("removing existing rule library")

		err := os.RemoveAll(s.Dir)
		if err != nil {
			return fmt.Errorf("remove existing library: %w", err)
		}
	}

	if sourcePath != "" {
		return s.deployFromPath(logger, sourcePath)
	}

	return s.clone(ctx, logger)
}

func (s *Store) deployFromPath(logger *slog.Logger, sourcePath string) error {
	info, err := os.Stat(sourcePath)
	if err != nil {
		return fmt.Errorf("stat source path: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s: source path is not a directory", sourcePath)
	}

	err = os.CopyFS(s.Dir, os.DirFS(sourcePath))
	if err != nil {
		return fmt.Errorf("copy rule library: %w", err)
	}

	logger.Info("deployed rule library from local path",
		slog.String("source", sourcePath),
	)

	return nil
}

func (s *Store) clone(ctx context.Context, logger *slog.Logger) error {
	e := execs.NewExecutor(execs.Command{
		Command: "git",
		Args:    []string{"clone", s.repoURL, s.Dir},
	})

	_, err := e.Exec(ctx, "")
	if err != nil {
		return fmt.Errorf("clone rule repository: %w", err)
	}

	logger.Info("cloned rule repository",
		slog.String("url", s.repoURL),
	)

	return nil
}

// Update pulls the latest rules from the upstream repository.
func (s *Store) Update(ctx context.Context) error {
	if !s.Exists() {
		return fmt.Errorf("%w: %s", ErrNotDeployed, s.Dir)
	}

	e := execs.NewExecutor(execs.Command{
		Command: "git",
		Args:    []string{"pull", "--ff-only"},
	})

	_, err := e.Exec(ctx, s.Dir)
	if err != nil {
		return fmt.Errorf("pull rule repository: %w", err)
	}

	log.WithContext(ctx).Info("updated rule library",
		slog.String("dir", s.Dir),
	)

	return nil
}

// Path returns the location of a project rule document, without checking for
// its existence.
func (s *Store) Path(name string) string {
	return filepath.Join(s.Dir, projectRulesDir, name+RuleExt)
}

// GlobalPath returns the location of a global rule document.
func (s *Store) GlobalPath(name string) string {
	return filepath.Join(s.Dir, globalRulesDir, name+RuleExt)
}

// Content returns a rule document by identifier. Project rules take
// precedence over a global rule sharing the same name.
func (s *Store) Content(name string) ([]byte, error) {
	for _, path := range []string{s.Path(name), s.GlobalPath(name)} {
		content, err := os.ReadFile(path)
		if err == nil {
			return content, nil
		}

		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read rule %q: %w", name, err)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrRuleNotFound, name)
}

// Names lists the identifiers of all project rule documents, sorted.
func (s *Store) Names() ([]string, error) {
	return s.listRules(projectRulesDir)
}

// GlobalNames lists the identifiers of all global rule documents, sorted.
// These are foundational rules installed regardless of project attributes.
func (s *Store) GlobalNames() ([]string, error) {
	return s.listRules(globalRulesDir)
}

func (s *Store) listRules(subDir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.Dir, subDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("read rules directory: %w", err)
	}

	var names []string

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), RuleExt) {
			continue
		}

		names = append(names, strings.TrimSuffix(entry.Name(), RuleExt))
	}

	slices.Sort(names)

	return names, nil
}

// Status summarizes the state of the rule library.
type Status struct {
	ModTime     time.Time
	Dir         string
	RuleCount   int
	GlobalCount int
	Deployed    bool
}

// Status inspects the library directory.
func (s *Store) Status() Status {
	st := Status{Dir: s.Dir}

	info, err := os.Stat(s.Dir)
	if err != nil || !info.IsDir() {
		return st
	}

	st.Deployed = true
	st.ModTime = info.ModTime()

	names, err := s.Names()
	if err == nil {
		st.RuleCount = len(names)
	}

	globals, err := s.GlobalNames()
	if err == nil {
		st.GlobalCount = len(globals)
	}

	return st
}

// StripFrontmatter removes a leading YAML frontmatter block (delimited by
// `---` lines) from a rule document, returning the body unchanged otherwise.
func StripFrontmatter(content []byte) []byte {
	const delim = "---"

	lines := bytes.Split(content, []byte("\n"))
	if len(lines) == 0 || strings.TrimSpace(string(lines[0])) != delim {
		return content
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(string(lines[i])) == delim {
			body := bytes.Join(lines[i+1:], []byte("\n"))

			return bytes.TrimLeft(body, "\n")
		}
	}

	// Unterminated frontmatter; return the document as-is.
	return content
}

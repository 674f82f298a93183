package project

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/epodak/grule/pkg/log"
)

const defaultMaxDepth = 10

// Size thresholds, in code files and lines of code.
const (
	largeFileCount  = 50
	largeLineCount  = 10000
	mediumFileCount = 10
	mediumLineCount = 1000
)

// Team size thresholds, in distinct contributors.
const (
	largeTeam  = 10
	mediumTeam = 3
)

// Maturity thresholds, in commits.
const (
	matureCommits     = 100
	developingCommits = 10
)

var codeExtensions = []string{
	".py", ".js", ".jsx", ".ts", ".tsx", ".go", ".rs", ".swift", ".java", ".cs",
}

// languageMarkers maps a language to the marker file names that prove its use.
var languageMarkers = map[string][]string{
	"javascript": {"package.json"},
	"typescript": {"tsconfig.json"},
	"python":     {"requirements.txt", "pyproject.toml", "setup.py"},
	"rust":       {"Cargo.toml"},
	"go":         {"go.mod"},
	"swift":      {"Package.swift"},
	"java":       {"pom.xml", "build.gradle"},
	"csharp":     {},
}

// languageExtensions maps a language to the file extensions that prove its use.
var languageExtensions = map[string][]string{
	"javascript": {".js", ".jsx"},
	"typescript": {".ts", ".tsx"},
	"python":     {".py"},
	"rust":       {".rs"},
	"go":         {".go"},
	"swift":      {".swift"},
	"java":       {".java"},
	"csharp":     {".cs", ".csproj", ".sln"},
}

// nodeFrameworks maps a framework to the package.json dependency keys that
// indicate its use.
var nodeFrameworks = map[string][]string{
	"react":   {"react", "next"},
	"vue":     {"vue", "@vue/cli"},
	"express": {"express"},
	"angular": {"@angular/core"},
}

// pythonFrameworks maps a framework to substrings searched for in Python
// dependency manifests.
var pythonFrameworks = map[string][]string{
	"django":  {"django"},
	"fastapi": {"fastapi"},
	"flask":   {"flask"},
}

var skipDirs = []string{".git", "node_modules", "vendor", ".venv", "dist", "build"}

// HistoryInspector reads team information from version control history.
type HistoryInspector interface {
	Contributors(ctx context.Context, dir string) (int, error)
	CommitCount(ctx context.Context, dir string) (int, error)
}

// Analyzer scans a project directory and derives its [Attributes].
type Analyzer struct {
	history  HistoryInspector
	dir      string
	maxDepth int
}

// AnalyzerOpt is a functional option for configuring an [Analyzer].
type AnalyzerOpt func(*Analyzer)

// WithHistory sets the version control history inspector.
func WithHistory(h HistoryInspector) AnalyzerOpt {
	return func(a *Analyzer) {
		a.history = h
	}
}

// WithMaxDepth limits directory traversal depth. 0 means the default.
func WithMaxDepth(depth int) AnalyzerOpt {
	return func(a *Analyzer) {
		a.maxDepth = depth
	}
}

// NewAnalyzer creates an [Analyzer] for the given project directory.
func NewAnalyzer(dir string, opts ...AnalyzerOpt) *Analyzer {
	a := &Analyzer{
		dir:      dir,
		history:  NewGit(),
		maxDepth: defaultMaxDepth,
	}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Analyze scans the project and returns its detected attributes.
func (a *Analyzer) Analyze(ctx context.Context) *Attributes {
	logger := log.WithContext(ctx).With(slog.String("path", a.dir))

	files := a.listFiles(logger)

	attrs := NewAttributes()

	a.analyzeSize(attrs, files)
	a.analyzeLanguages(attrs, files)
	a.analyzeFrameworks(attrs, logger)
	a.analyzeTeam(ctx, attrs, logger)
	a.analyzeToolchain(attrs, files, logger)

	logger.Debug("project analysis complete",
		slog.Int("features", attrs.Len()),
	)

	return attrs
}

// listFiles walks the project tree, returning file paths relative to the
// project root. Dependency and VCS directories are skipped, as is anything
// deeper than maxDepth.
func (a *Analyzer) listFiles(logger *slog.Logger) []string {
	var files []string

	err := filepath.WalkDir(a.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries don't fail the analysis.
			return nil //nolint:nilerr // Best-effort traversal.
		}

		rel, relErr := filepath.Rel(a.dir, path)
		if relErr != nil {
			return nil //nolint:nilerr // Best-effort traversal.
		}

		if d.IsDir() {
			if rel != "." && slices.Contains(skipDirs, d.Name()) {
				return filepath.SkipDir
			}
			if a.maxDepth > 0 && strings.Count(rel, string(filepath.Separator)) >= a.maxDepth {
				return filepath.SkipDir
			}

			return nil
		}

		files = append(files, rel)

		return nil
	})
	if err != nil {
		logger.Warn("project walk aborted", slog.Any("error", err))
	}

	return files
}

func (a *Analyzer) analyzeSize(attrs *Attributes, files []string) {
	fileCount := 0
	lineCount := 0

	for _, f := range files {
		if !slices.Contains(codeExtensions, filepath.Ext(f)) {
			continue
		}

		fileCount++

		content, err := os.ReadFile(filepath.Join(a.dir, f))
		if err != nil {
			continue
		}

		lineCount += bytes.Count(content, []byte("\n"))
	}

	var size string

	switch {
	case fileCount > largeFileCount || lineCount > largeLineCount:
		size = "large"
	case fileCount > mediumFileCount || lineCount > mediumLineCount:
		size = "medium"
	default:
		size = "small"
	}

	attrs.add(Feature{
		Key:         "project_size",
		Value:       size,
		Description: fmt.Sprintf("%s project (%d code files, ~%d lines)", size, fileCount, lineCount),
	})
}

func (a *Analyzer) analyzeLanguages(attrs *Attributes, files []string) {
	bases := make(map[string]bool, len(files))
	exts := make(map[string]bool, len(files))

	for _, f := range files {
		bases[filepath.Base(f)] = true
		exts[filepath.Ext(f)] = true
	}

	// Iterate in a fixed order so detection output is deterministic.
	languages := make([]string, 0, len(languageMarkers))
	for lang := range languageMarkers {
		languages = append(languages, lang)
	}

	slices.Sort(languages)

	for _, lang := range languages {
		found := false

		for _, marker := range languageMarkers[lang] {
			if bases[marker] {
				found = true

				break
			}
		}

		if !found {
			for _, ext := range languageExtensions[lang] {
				if exts[ext] {
					found = true

					break
				}
			}
		}

		if found {
			attrs.add(Feature{
				Key:         "languages",
				Value:       lang,
				Description: fmt.Sprintf("detected language: %s", lang),
			})
		}
	}
}

func (a *Analyzer) analyzeFrameworks(attrs *Attributes, logger *slog.Logger) {
	a.analyzeNodeFrameworks(attrs, logger)
	a.analyzePythonFrameworks(attrs)
}

func (a *Analyzer) analyzeNodeFrameworks(attrs *Attributes, logger *slog.Logger) {
	content, err := os.ReadFile(filepath.Join(a.dir, "package.json"))
	if err != nil {
		return
	}

	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}

	err = json.Unmarshal(content, &pkg)
	if err != nil {
		logger.Debug("skipping malformed package.json", slog.Any("error", err))

		return
	}

	deps := make(map[string]bool, len(pkg.Dependencies)+len(pkg.DevDependencies))
	for name := range pkg.Dependencies {
		deps[name] = true
	}

	for name := range pkg.DevDependencies {
		deps[name] = true
	}

	for _, framework := range sortedKeys(nodeFrameworks) {
		for _, dep := range nodeFrameworks[framework] {
			if deps[dep] {
				attrs.add(Feature{
					Key:         "frameworks",
					Value:       framework,
					Description: fmt.Sprintf("detected framework: %s", framework),
				})

				break
			}
		}
	}
}

func (a *Analyzer) analyzePythonFrameworks(attrs *Attributes) {
	for _, manifest := range []string{"requirements.txt", "pyproject.toml"} {
		content, err := os.ReadFile(filepath.Join(a.dir, manifest))
		if err != nil {
			continue
		}

		lower := strings.ToLower(string(content))

		for _, framework := range sortedKeys(pythonFrameworks) {
			for _, indicator := range pythonFrameworks[framework] {
				if strings.Contains(lower, indicator) {
					attrs.add(Feature{
						Key:         "frameworks",
						Value:       framework,
						Description: fmt.Sprintf("detected framework: %s", framework),
					})

					break
				}
			}
		}
	}
}

func (a *Analyzer) analyzeTeam(ctx context.Context, attrs *Attributes, logger *slog.Logger) {
	// Worktrees and submodules carry a .git file instead of a directory.
	_, err := os.Stat(filepath.Join(a.dir, ".git"))
	if err != nil {
		return
	}

	attrs.add(Feature{
		Key:         "has_git",
		Value:       "true",
		Description: "git repository",
	})

	contributors, err := a.history.Contributors(ctx, a.dir)
	if err != nil {
		logger.Debug("could not determine contributors", slog.Any("error", err))
	} else {
		var teamSize string

		switch {
		case contributors > largeTeam:
			teamSize = "large"
		case contributors > mediumTeam:
			teamSize = "medium"
		case contributors > 1:
			teamSize = "small"
		default:
			teamSize = "solo"
		}

		attrs.add(Feature{
			Key:         "team_size",
			Value:       teamSize,
			Description: fmt.Sprintf("%s team (%d contributors)", teamSize, contributors),
		})
	}

	commits, err := a.history.CommitCount(ctx, a.dir)
	if err != nil {
		logger.Debug("could not determine commit count", slog.Any("error", err))

		return
	}

	var maturity string

	switch {
	case commits > matureCommits:
		maturity = "mature"
	case commits > developingCommits:
		maturity = "developing"
	default:
		maturity = "new"
	}

	attrs.add(Feature{
		Key:         "project_maturity",
		Value:       maturity,
		Description: fmt.Sprintf("%s project (%d commits)", maturity, commits),
	})
}

func (a *Analyzer) analyzeToolchain(attrs *Attributes, files []string, logger *slog.Logger) {
	if a.hasTesting(files) {
		attrs.add(Feature{
			Key:         "has_testing",
			Value:       "true",
			Description: "test suite present",
		})
	}

	ciMarkers := []string{
		filepath.Join(".github", "workflows"),
		".gitlab-ci.yml",
		"Jenkinsfile",
	}
	for _, marker := range ciMarkers {
		_, err := os.Stat(filepath.Join(a.dir, marker))
		if err == nil {
			attrs.add(Feature{
				Key:         "has_cicd",
				Value:       "true",
				Description: "CI/CD configured",
			})

			break
		}
	}

	_, err := os.Stat(filepath.Join(a.dir, "Dockerfile"))
	if err == nil {
		attrs.add(Feature{
			Key:         "has_docker",
			Value:       "true",
			Description: "containerized project",
		})
	}

	readme, err := os.ReadFile(filepath.Join(a.dir, "README.md"))
	if err == nil && bytes.Count(readme, []byte("\n")) > 20 {
		attrs.add(Feature{
			Key:         "has_documentation",
			Value:       "true",
			Description: "substantial README",
		})
	}

	logger.Debug("toolchain analysis complete")
}

func (a *Analyzer) hasTesting(files []string) bool {
	testDirs := []string{"test", "tests", "spec", "__tests__"}
	for _, dir := range testDirs {
		info, err := os.Stat(filepath.Join(a.dir, dir))
		if err == nil && info.IsDir() {
			return true
		}
	}

	for _, f := range files {
		base := filepath.Base(f)
		if strings.Contains(base, ".test.") || strings.Contains(base, ".spec.") ||
			strings.HasSuffix(base, "_test.go") {
			return true
		}
	}

	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/epodak/grule/api/v1beta1/catalogs"
	"github.com/epodak/grule/pkg/engine"
	"github.com/epodak/grule/pkg/install"
	"github.com/epodak/grule/pkg/project"
	"github.com/epodak/grule/pkg/store"
)

const (
	cmdExamples = `  # Analyze the current directory and install recommended rules:
  grule

  # Analyze a specific project:
  grule install ./my-project

  # Install for Claude only, without prompting:
  grule install --target claude --yes

  # Use a custom rule catalog:
  grule install --catalog ./catalog.yaml

  # Deploy the rule library before the first install:
  grule deploy`
)

type InstallArgs struct {
	*RootArgs

	Path        string
	CatalogPath string
	Target      string
	Force       bool
	Yes         bool
}

func NewInstallArgs(rootArgs *RootArgs) *InstallArgs {
	return &InstallArgs{
		RootArgs: rootArgs,
	}
}

func (ra *InstallArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ra.CatalogPath, "catalog", "", "Path to the rule catalog file")
	cmd.Flags().StringVarP(&ra.Target, "target", "t", string(install.TargetBoth),
		fmt.Sprintf("Install target, one of: %v", install.AllTargets))
	cmd.Flags().BoolVar(&ra.Force, "force", false, "Back up and replace an existing default catalog file")
	cmd.Flags().BoolVarP(&ra.Yes, "yes", "y", false, "Skip the confirmation prompt")

	err := cmd.MarkFlagFilename("catalog", "yaml", "yml")
	if err != nil {
		panic(fmt.Errorf("mark catalog flag: %w", err))
	}

	err = cmd.RegisterFlagCompletionFunc("target",
		cobra.FixedCompletions(install.AllTargets, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}
}

func NewInstallCmd(ra *InstallArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install [path]",
		Short: "Analyze a project and install the recommended rules",
		Args:  cobra.MaximumNArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return nil, cobra.ShellCompDirectiveFilterDirs
			}

			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ra.Path = "."
			if len(args) > 0 {
				ra.Path = args[0]
			}

			return runInstall(cmd, ra)
		},
	}
	ra.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}

func runInstall(cmd *cobra.Command, ra *InstallArgs) error {
	ctx := cmd.Context()

	target, err := install.ParseTarget(ra.Target)
	if err != nil {
		return err
	}

	path, err := filepath.Abs(ra.Path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat project path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", path)
	}

	cat, err := loadCatalog(ra.CatalogPath, ra.Force)
	if err != nil {
		return err
	}

	analyzer := project.NewAnalyzer(path, project.WithHistory(project.NewGit()))
	attrs := analyzer.Analyze(ctx)

	result, err := engine.Recommend(ctx, attrs.Map(), cat.List())
	if err != nil {
		return fmt.Errorf("recommend rules: %w", err)
	}

	out := cmd.OutOrStdout()
	mustN(fmt.Fprintln(out, renderAnalysis(path, attrs)))
	mustN(fmt.Fprintln(out, renderRecommendations(result)))

	ok, err := confirmInstall(ra, len(result.Recommendations), target)
	if err != nil {
		return err
	}
	if !ok {
		mustN(fmt.Fprintln(out, "Aborted, nothing installed."))

		return nil
	}

	st := store.New(ra.libraryPath())
	if !st.Exists() {
		return fmt.Errorf("%w: run %q first", store.ErrNotDeployed, cmdName+" deploy")
	}

	installer := install.New(st, path)
	names := result.Names()

	summary := &install.Summary{}

	if target == install.TargetCursor || target == install.TargetBoth {
		s, err := installer.InstallCursor(ctx, names)
		if err != nil {
			return fmt.Errorf("install cursor rules: %w", err)
		}

		mergeSummary(summary, s)
	}

	if target == install.TargetClaude || target == install.TargetBoth {
		s, err := installer.InstallClaude(ctx, names)
		if err != nil {
			return fmt.Errorf("install claude rules: %w", err)
		}

		mergeSummary(summary, s)
	}

	err = installer.WriteRecord(install.Record{
		Target:     target,
		Attributes: attrs.Map(),
		Rules:      names,
	})
	if err != nil {
		return err
	}

	mustN(fmt.Fprintln(out, renderSummary(summary)))

	return nil
}

// loadCatalog loads the catalog from the given path, or from the default
// location. A missing or unreadable file falls back to the embedded default
// catalog, but a file that exists and fails validation is a hard error.
// With force, an existing default catalog file is backed up and replaced.
func loadCatalog(catalogPath string, force bool) (*catalogs.Catalog, error) {
	if catalogPath == "" {
		catalogPath = catalogs.GetPath()

		err := catalogs.WriteDefault(catalogPath, force)
		if err != nil {
			slog.Error("write default catalog", slog.Any("err", err))
		}
	}

	cl, err := catalogs.NewLoaderFromFile(catalogPath)
	if err != nil {
		slog.Warn("could not read catalog, using embedded default",
			slog.String("path", catalogPath),
			slog.Any("err", err),
		)

		return catalogs.Default(), nil
	}

	err = cl.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %q: %w", catalogPath, err)
	}

	cat, err := cl.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %q: %w", catalogPath, err)
	}

	return cat, nil
}

// confirmInstall prompts before writing anything into the project. The prompt
// is skipped with --yes, or when stdin is not a terminal.
func confirmInstall(ra *InstallArgs, count int, target install.Target) (bool, error) {
	if ra.Yes || !term.IsTerminal(int(os.Stdin.Fd())) {
		return true, nil
	}

	confirmed := true

	err := huh.NewConfirm().
		Title(fmt.Sprintf("Install %d rules for target %q?", count, target)).
		Value(&confirmed).
		Run()
	if err != nil {
		return false, fmt.Errorf("confirm install: %w", err)
	}

	return confirmed, nil
}

func mergeSummary(dst, src *install.Summary) {
	for _, name := range src.Installed {
		if !slices.Contains(dst.Installed, name) {
			dst.Installed = append(dst.Installed, name)
		}
	}
	for _, name := range src.Missing {
		if !slices.Contains(dst.Missing, name) {
			dst.Missing = append(dst.Missing, name)
		}
	}
}

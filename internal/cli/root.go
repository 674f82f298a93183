package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/epodak/grule/api"
	"github.com/epodak/grule/pkg/log"
)

const (
	cmdName = "grule"
	cmdDesc = `Detects project attributes and installs matching AI assistant rules.`
)

type RootArgs struct {
	LogLevel    string
	LogFormat   string
	LibraryPath string
}

func NewRootArgs() *RootArgs {
	return &RootArgs{}
}

func (ra *RootArgs) AddFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVar(&ra.LogLevel, "log-level", "info", fmt.Sprintf("Log level, one of: %s", log.AllLevels))
	cmd.PersistentFlags().
		StringVar(&ra.LogFormat, "log-format", "text", fmt.Sprintf("Log format, one of: %s", log.AllFormats))
	cmd.PersistentFlags().
		StringVarP(&ra.LibraryPath, "path", "p", "", "Rule library directory (default ~/.agent-rules)")

	var err error

	err = cmd.MarkPersistentFlagDirname("path")
	if err != nil {
		panic(fmt.Errorf("mark path flag: %w", err))
	}

	err = cmd.RegisterFlagCompletionFunc("log-format",
		cobra.FixedCompletions(log.AllFormats, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}

	err = cmd.RegisterFlagCompletionFunc("log-level",
		cobra.FixedCompletions(log.AllLevels, cobra.ShellCompDirectiveNoFileComp),
	)
	if err != nil {
		panic(err)
	}
}

// libraryPath returns the rule library directory, honoring the --path
// override.
func (ra *RootArgs) libraryPath() string {
	if ra.LibraryPath != "" {
		return ra.LibraryPath
	}

	return api.GetRuleLibraryPath()
}

func NewRootCmd() *cobra.Command {
	args := NewRootArgs()
	installArgs := NewInstallArgs(args)

	installCmd := NewInstallCmd(installArgs)
	cmd := &cobra.Command{
		Use:               cmdName,
		Short:             cmdDesc,
		Example:           cmdExamples,
		PersistentPreRunE: setupLogging(args),
		Args:              installCmd.Args,
		RunE:              installCmd.RunE,
	}

	args.AddFlags(cmd)
	installArgs.AddFlags(cmd)
	cmd.AddCommand(
		installCmd,
		NewDeployCmd(NewDeployArgs(args)),
		NewUpdateCmd(args),
		NewStatusCmd(args),
		NewListCmd(NewListArgs(args)),
		NewInfoCmd(NewInfoArgs(args)),
	)

	bindEnvVars(cmd)

	return cmd
}

func setupLogging(rc *RootArgs) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		logHandler, err := log.CreateHandlerWithStrings(cmd.ErrOrStderr(), rc.LogLevel, rc.LogFormat)
		if err != nil {
			return fmt.Errorf("create log handler: %w", err)
		}

		slog.SetDefault(slog.New(logHandler))

		return nil
	}
}

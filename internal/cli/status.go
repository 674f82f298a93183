package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/epodak/grule/pkg/install"
	"github.com/epodak/grule/pkg/store"
)

func NewStatusCmd(ra *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [path]",
		Short: "Show the rule library and the current project's installation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir := "."
			if len(args) > 0 {
				projectDir = args[0]
			}

			st := store.New(ra.libraryPath())

			rec, err := install.ReadRecord(projectDir)
			if err != nil {
				slog.Warn("could not read installation record", slog.Any("err", err))
			}

			mustN(fmt.Fprintln(cmd.OutOrStdout(), renderStatus(st.Status(), rec)))

			return nil
		},
	}

	bindEnvVars(cmd)

	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/epodak/grule/pkg/store"
)

func NewUpdateCmd(ra *RootArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Pull the latest rules into the local library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := store.New(ra.libraryPath())

			err := st.Update(cmd.Context())
			if err != nil {
				return fmt.Errorf("update rule library: %w", err)
			}

			mustN(fmt.Fprintf(cmd.OutOrStdout(), "Rule library updated in %s\n", st.Dir))

			return nil
		},
	}

	bindEnvVars(cmd)

	return cmd
}

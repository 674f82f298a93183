package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/epodak/grule/pkg/store"
)

type DeployArgs struct {
	*RootArgs

	Source  string
	RepoURL string
	Force   bool
}

func NewDeployArgs(rootArgs *RootArgs) *DeployArgs {
	return &DeployArgs{
		RootArgs: rootArgs,
	}
}

func (ra *DeployArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ra.Source, "source", "", "Copy the rule library from a local directory instead of cloning")
	cmd.Flags().StringVar(&ra.RepoURL, "repo", store.DefaultRepoURL, "Rule repository to clone")
	cmd.Flags().BoolVar(&ra.Force, "force", false, "Replace an existing rule library")

	err := cmd.MarkFlagDirname("source")
	if err != nil {
		panic(fmt.Errorf("mark source flag: %w", err))
	}
}

func NewDeployCmd(ra *DeployArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Set up the local rule library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := store.New(ra.libraryPath(), store.WithRepoURL(ra.RepoURL))

			err := st.Deploy(cmd.Context(), ra.Source, ra.Force)
			if err != nil {
				return fmt.Errorf("deploy rule library: %w", err)
			}

			mustN(fmt.Fprintf(cmd.OutOrStdout(), "Rule library deployed to %s\n", st.Dir))

			return nil
		},
	}
	ra.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

type ListArgs struct {
	*RootArgs

	CatalogPath string
}

func NewListArgs(rootArgs *RootArgs) *ListArgs {
	return &ListArgs{
		RootArgs: rootArgs,
	}
}

func (ra *ListArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ra.CatalogPath, "catalog", "", "Path to the rule catalog file")

	err := cmd.MarkFlagFilename("catalog", "yaml", "yml")
	if err != nil {
		panic(fmt.Errorf("mark catalog flag: %w", err))
	}
}

func NewListCmd(ra *ListArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all rules in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cat, err := loadCatalog(ra.CatalogPath, false)
			if err != nil {
				return err
			}

			mustN(fmt.Fprintln(cmd.OutOrStdout(), renderCatalog(cat.List())))

			return nil
		},
	}
	ra.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}

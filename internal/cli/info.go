package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/epodak/grule/pkg/store"
)

type InfoArgs struct {
	*RootArgs

	CatalogPath string
	Content     bool
}

func NewInfoArgs(rootArgs *RootArgs) *InfoArgs {
	return &InfoArgs{
		RootArgs: rootArgs,
	}
}

func (ra *InfoArgs) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ra.CatalogPath, "catalog", "", "Path to the rule catalog file")
	cmd.Flags().BoolVar(&ra.Content, "content", false, "Print the rule document from the library")

	err := cmd.MarkFlagFilename("catalog", "yaml", "yml")
	if err != nil {
		panic(fmt.Errorf("mark catalog flag: %w", err))
	}
}

func NewInfoCmd(ra *InfoArgs) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <rule>",
		Short: "Show a rule's catalog entry",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}

			return tryGetRuleNames(ra.CatalogPath), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			cat, err := loadCatalog(ra.CatalogPath, false)
			if err != nil {
				return err
			}

			r := cat.Get(name)
			if r == nil {
				return fmt.Errorf("rule %q is not in the catalog", name)
			}

			out := cmd.OutOrStdout()
			mustN(fmt.Fprintln(out, renderRule(r)))

			if ra.Content {
				st := store.New(ra.libraryPath())

				content, err := st.Content(name)
				if err != nil {
					return fmt.Errorf("read rule document: %w", err)
				}

				mustN(fmt.Fprintln(out, string(content)))
			}

			return nil
		},
	}
	ra.AddFlags(cmd)

	bindEnvVars(cmd)

	return cmd
}

// Try to load the catalog to get available rule names.
func tryGetRuleNames(catalogPath string) []cobra.Completion {
	cat, err := loadCatalog(catalogPath, false)
	if err != nil {
		return nil
	}

	completions := make([]cobra.Completion, 0, len(cat.Rules))
	for _, r := range cat.List() {
		completions = append(completions, cobra.CompletionWithDesc(r.Name, r.Description))
	}

	return completions
}

package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func addCompletions(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "completion",
		Short: "Generates bash completion scripts",
		Long: `To load completion run

. <(dashtab completion)

To configure your bash shell to load completions for each session add to your bashrc

# ~/.bashrc or ~/.profile
. <(dashtab completion)
`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = topLevel.GenBashCompletion(os.Stdout)
		},
	}

	topLevel.AddCommand(cmd)
}

func dashboardCompletions(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	_, svc, closer, err := loadService()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer closer()

	dashes, err := svc.Dashboards(context.Background())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	out := make([]string, 0, len(dashes))
	for _, d := range dashes {
		out = append(out, fmt.Sprintf("%d\t%s", d.ID, d.Name))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

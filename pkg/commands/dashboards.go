package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/dashtab/pkg/commands/options"
	"tableflip.dev/dashtab/pkg/runner/dashboards"
)

func addDashboards(topLevel *cobra.Command) {
	list := func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true
		_, svc, closer, err := loadService()
		if err != nil {
			return output.HandleError(err)
		}
		defer closer()

		r := dashboards.List{Service: svc, JSON: output.JSON}
		return output.HandleError(r.Do(cmd.Context()))
	}

	cmd := &cobra.Command{
		Use:     "dashboards",
		Aliases: []string{"dash"},
		Short:   "List and create dashboards",
		Example: `
dashtab dashboards
dashtab dashboards create Sales overview
`,
		Args: cobra.NoArgs,
		RunE: list,
	}
	options.AddOutputArg(cmd, output)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved dashboards",
		Args:  cobra.NoArgs,
		RunE:  list,
	}
	options.AddOutputArg(listCmd, output)

	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty dashboard",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			_, svc, closer, err := loadService()
			if err != nil {
				return output.HandleError(err)
			}
			defer closer()

			r := dashboards.Create{Service: svc, Name: strings.Join(args, " "), JSON: output.JSON}
			return output.HandleError(r.Do(cmd.Context()))
		},
	}
	options.AddOutputArg(createCmd, output)

	cmd.AddCommand(listCmd, createCmd)
	topLevel.AddCommand(cmd)
}

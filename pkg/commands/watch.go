package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/dashtab/pkg/commands/options"
	"tableflip.dev/dashtab/pkg/dashboard"
	"tableflip.dev/dashtab/pkg/runner/watch"
)

func addWatch(topLevel *cobra.Command) {
	do := &options.DashboardOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream changes to stored dashboards and drafts",
		Example: `
dashtab watch
dashtab watch -d 1
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			_, svc, closer, err := loadService()
			if err != nil {
				return output.HandleError(err)
			}
			defer closer()

			w := watch.Watch{
				Service:   svc,
				Dashboard: dashboard.DashboardID(do.ID),
				JSON:      output.JSON,
			}
			return output.HandleError(w.Do(cmd.Context()))
		},
	}
	addTargetArgs(cmd, do)
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

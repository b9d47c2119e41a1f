package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/dashtab/pkg/commands/options"
	"tableflip.dev/dashtab/pkg/runner/edit"
	"tableflip.dev/dashtab/pkg/runner/save"
)

func addSave(topLevel *cobra.Command) {
	do := &options.DashboardOptions{}
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Store the draft of a dashboard",
		Example: `
dashtab save -d 1
`,
		Args: cobra.NoArgs,
		RunE: editRunE(do, func(t edit.Target, _ []string) (runner, error) {
			return &save.Save{Target: t}, nil
		}),
	}
	addTargetArgs(cmd, do)
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

func addDiscard(topLevel *cobra.Command) {
	do := &options.DashboardOptions{}
	cmd := &cobra.Command{
		Use:   "discard",
		Short: "Drop the draft of a dashboard",
		Example: `
dashtab discard -d 1
`,
		Args: cobra.NoArgs,
		RunE: editRunE(do, func(t edit.Target, _ []string) (runner, error) {
			return &save.Discard{Target: t}, nil
		}),
	}
	addTargetArgs(cmd, do)
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}

package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/dashtab/pkg/commands/options"
	"tableflip.dev/dashtab/pkg/runner/edit"
	"tableflip.dev/dashtab/pkg/runner/undo"
)

func addUndo(topLevel *cobra.Command) {
	do := &options.DashboardOptions{}
	list := false
	dismiss := false

	cmd := &cobra.Command{
		Use:   "undo [undo-id]",
		Short: "Undo a tab deletion or card move",
		Long: `Undo applies the entry with the given id, or the latest one when no id
is given. Each entry can be used once. Saving drops all entries. With
--dismiss the entry is dropped without being applied.`,
		Example: `
dashtab undo -d 1
dashtab undo -d 1 --list
dashtab undo -d 1 3f1c2a9e-5d61-4c1b-9a8e-0f3d7c2b1e44
dashtab undo -d 1 --dismiss 3f1c2a9e-5d61-4c1b-9a8e-0f3d7c2b1e44
`,
		Args: cobra.MaximumNArgs(1),
		RunE: editRunE(do, func(t edit.Target, args []string) (runner, error) {
			r := &undo.Undo{Target: t, List: list, Dismiss: dismiss}
			if len(args) == 1 {
				r.ID = args[0]
			}
			return r, nil
		}),
	}
	addTargetArgs(cmd, do)
	cmd.Flags().BoolVar(&list, "list", false, "List pending undo entries.")
	cmd.Flags().BoolVar(&dismiss, "dismiss", false, "Drop the given undo entry without applying it.")
	options.AddOutputArg(cmd, output)

	topLevel.AddCommand(cmd)
}

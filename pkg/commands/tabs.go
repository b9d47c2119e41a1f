package commands

import (
	"errors"
	"strings"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/dashtab/pkg/commands/options"
	"tableflip.dev/dashtab/pkg/runner/edit"
	"tableflip.dev/dashtab/pkg/runner/tabs"
)

func addTabs(topLevel *cobra.Command) {
	do := &options.DashboardOptions{}

	list := editRunE(do, func(t edit.Target, _ []string) (runner, error) {
		return &tabs.List{Target: t}, nil
	})

	cmd := &cobra.Command{
		Use:   "tabs",
		Short: "List and edit the tabs of a dashboard",
		Long:  base.Wrap80(`Tabs are edited in a draft that survives between invocations. Tabs that were never saved have negative ids; pass them after -- so they are not read as flags. Run 'dashtab save' to store the draft or 'dashtab discard' to drop it.`),
		Example: `
dashtab tabs -d 1
dashtab tabs add -d 1 Revenue
dashtab tabs rename -d 1 -- -2 Costs
dashtab tabs move -d 1 -- -4 -2
dashtab tabs select -d 1 12-revenue
dashtab tabs rm -d 1 -- -2
`,
		Args: cobra.NoArgs,
		RunE: list,
	}
	addTargetArgs(cmd, do)
	options.AddOutputArg(cmd, output)

	sub := []*cobra.Command{
		{
			Use:   "list",
			Short: "List the tabs",
			Args:  cobra.NoArgs,
			RunE:  list,
		},
		{
			Use:   "add [name]",
			Short: "Add a tab and select it",
			RunE: editRunE(do, func(t edit.Target, args []string) (runner, error) {
				return &tabs.Add{Target: t, Name: strings.Join(args, " ")}, nil
			}),
		},
		{
			Use:     "rm <tab>",
			Aliases: []string{"delete"},
			Short:   "Delete a tab and its cards",
			Args:    cobra.ExactArgs(1),
			RunE: editRunE(do, func(t edit.Target, args []string) (runner, error) {
				id, err := options.ParseTab(args[0])
				if err != nil {
					return nil, err
				}
				return &tabs.Remove{Target: t, TabID: id}, nil
			}),
		},
		{
			Use:   "rename <tab> <name>",
			Short: "Rename a tab",
			Args:  cobra.MinimumNArgs(2),
			RunE: editRunE(do, func(t edit.Target, args []string) (runner, error) {
				id, err := options.ParseTab(args[0])
				if err != nil {
					return nil, err
				}
				name := strings.TrimSpace(strings.Join(args[1:], " "))
				if name == "" {
					return nil, errors.New("a tab name is required")
				}
				return &tabs.Rename{Target: t, TabID: id, Name: name}, nil
			}),
		},
		{
			Use:   "move <tab> <destination>",
			Short: "Move a tab to the position of another tab",
			Args:  cobra.ExactArgs(2),
			RunE: editRunE(do, func(t edit.Target, args []string) (runner, error) {
				src, err := options.ParseTab(args[0])
				if err != nil {
					return nil, err
				}
				dst, err := options.ParseTab(args[1])
				if err != nil {
					return nil, err
				}
				return &tabs.Move{Target: t, Source: src, Destination: dst}, nil
			}),
		},
		{
			Use:   "select <tab>",
			Short: "Select a tab by id or slug",
			Args:  cobra.ExactArgs(1),
			RunE: editRunE(do, func(t edit.Target, args []string) (runner, error) {
				id, err := options.ParseTab(args[0])
				if err != nil {
					return nil, err
				}
				return &tabs.Select{Target: t, TabID: id}, nil
			}),
		},
	}
	for _, c := range sub {
		options.AddOutputArg(c, output)
		cmd.AddCommand(c)
	}

	topLevel.AddCommand(cmd)
}

package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"tableflip.dev/dashtab/pkg/commands/options"
	"tableflip.dev/dashtab/pkg/dashboard"
	"tableflip.dev/dashtab/pkg/runner/cards"
	"tableflip.dev/dashtab/pkg/runner/edit"
)

func addCards(topLevel *cobra.Command) {
	do := &options.DashboardOptions{}

	list := editRunE(do, func(t edit.Target, _ []string) (runner, error) {
		return &cards.List{Target: t}, nil
	})

	cmd := &cobra.Command{
		Use:   "cards",
		Short: "List and place the cards of a dashboard",
		Example: `
dashtab cards -d 1
dashtab cards add -d 1 --card 7 --size 6x4
dashtab cards add -d 1 --card 7 --tab 12-revenue
dashtab cards move -d 1 -- -1 12
`,
		Args: cobra.NoArgs,
		RunE: list,
	}
	addTargetArgs(cmd, do)
	options.AddOutputArg(cmd, output)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List cards grouped by tab",
		Args:  cobra.NoArgs,
		RunE:  list,
	}

	var (
		cardID int
		size   string
		tab    string
	)
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Place a card on the first free spot of a tab",
		Args:  cobra.NoArgs,
		RunE: editRunE(do, func(t edit.Target, _ []string) (runner, error) {
			x, y, err := options.ParseSize(size)
			if err != nil {
				return nil, err
			}
			r := &cards.Add{Target: t, CardID: dashboard.CardID(cardID), SizeX: x, SizeY: y}
			if tab != "" {
				id, err := options.ParseTab(tab)
				if err != nil {
					return nil, err
				}
				r.TabID = dashboard.TabRef(id)
			}
			return r, nil
		}),
	}
	addCmd.Flags().IntVar(&cardID, "card", 0, "Specify the id of the saved card.")
	addCmd.Flags().StringVar(&size, "size", "4x4", "Card size as WxH grid cells.")
	addCmd.Flags().StringVarP(&tab, "tab", "t", "", "Tab id or slug, defaults to the selected tab.")

	moveCmd := &cobra.Command{
		Use:   "move <dashcard> <tab>",
		Short: "Move a card to another tab",
		Args:  cobra.ExactArgs(2),
		RunE: editRunE(do, func(t edit.Target, args []string) (runner, error) {
			dc, err := strconv.Atoi(args[0])
			if err != nil {
				return nil, err
			}
			tab, err := options.ParseTab(args[1])
			if err != nil {
				return nil, err
			}
			return &cards.Move{Target: t, DashCardID: dashboard.DashCardID(dc), TabID: tab}, nil
		}),
	}

	for _, c := range []*cobra.Command{listCmd, addCmd, moveCmd} {
		options.AddOutputArg(c, output)
		cmd.AddCommand(c)
	}
	topLevel.AddCommand(cmd)
}

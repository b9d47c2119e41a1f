package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/dashtab/pkg/commands/options"
	"tableflip.dev/dashtab/pkg/filter"
	rf "tableflip.dev/dashtab/pkg/runner/filter"
)

func addFilter(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Encode and decode filter clauses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	stringOps := make([]string, 0)
	for _, op := range filter.StringOperators() {
		stringOps = append(stringOps, string(op))
	}
	numberOps := make([]string, 0)
	for _, op := range filter.NumberOperators() {
		numberOps = append(numberOps, string(op))
	}

	cmd.AddCommand(
		newFilterBuildCmd(rf.DomainString, stringOps, `
dashtab filter string --op contains --column 4:PRODUCTS.CATEGORY:Text gadget
dashtab filter string --op = --column 4:CATEGORY:Text Gadget Widget
`),
		newFilterBuildCmd(rf.DomainNumber, numberOps, `
dashtab filter number --op between --column 7:PRICE:Float 10 20
`),
		newFilterBuildCmd(rf.DomainBoolean, []string{"=", "is-null", "not-null"}, `
dashtab filter boolean --op = --column 9:ACTIVE:Boolean true
`),
		newFilterParseCmd(),
	)
	topLevel.AddCommand(cmd)
}

func newFilterBuildCmd(domain string, ops []string, example string) *cobra.Command {
	b := &rf.Build{Domain: domain}
	caseSensitive := false

	cmd := &cobra.Command{
		Use:     fmt.Sprintf("%s [values...]", domain),
		Short:   fmt.Sprintf("Build a %s filter clause", domain),
		Long:    fmt.Sprintf("Build a %s filter clause.\n\nOperators: %s", domain, strings.Join(ops, ", ")),
		Example: example,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			b.Values = args
			b.JSON = output.JSON
			if domain == rf.DomainString && cmd.Flags().Changed("case-sensitive") {
				b.CaseSensitive = &caseSensitive
			}
			return output.HandleError(b.Do(cmd.Context()))
		},
	}
	cmd.Flags().StringVar(&b.Operator, "op", "=", "Filter operator.")
	cmd.Flags().StringVar(&b.Column, "column", "", "Column as ID:NAME:TYPE, for example 4:PRODUCTS.CATEGORY:Text.")
	_ = cmd.MarkFlagRequired("column")
	if domain == rf.DomainString {
		cmd.Flags().BoolVar(&caseSensitive, "case-sensitive", false, "Match case for text-match operators.")
	}
	options.AddOutputArg(cmd, output)
	return cmd
}

func newFilterParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <clause-json>",
		Short: "Destructure a filter clause",
		Example: `
dashtab filter parse '["contains",{"case-sensitive":false},["field",4,{"base-type":"type/Text"}],"gadget"]'
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			p := rf.Parse{Raw: strings.Join(args, " "), JSON: output.JSON}
			return output.HandleError(p.Do(cmd.Context()))
		},
	}
	options.AddOutputArg(cmd, output)
	return cmd
}

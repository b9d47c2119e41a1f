package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/dashtab/pkg/commands/options"
	"tableflip.dev/dashtab/pkg/runner/edit"
)

type runner interface {
	Do(ctx context.Context) error
}

// editRunE resolves the --dashboard target, lets build turn the arguments into
// a runner and runs it.
func editRunE(do *options.DashboardOptions, build func(t edit.Target, args []string) (runner, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		id, err := do.DashboardID()
		if err != nil {
			return output.HandleError(err)
		}
		_, svc, closer, err := loadService()
		if err != nil {
			return output.HandleEditError(id, err)
		}
		defer closer()

		r, err := build(edit.Target{Service: svc, Dashboard: id, JSON: output.JSON}, args)
		if err != nil {
			return output.HandleEditError(id, err)
		}
		return output.HandleEditError(id, r.Do(cmd.Context()))
	}
}

// addTargetArgs registers the flags shared by commands that edit a dashboard.
func addTargetArgs(cmd *cobra.Command, do *options.DashboardOptions) {
	options.AddDashboardArgs(cmd, do)
	_ = cmd.RegisterFlagCompletionFunc("dashboard", dashboardCompletions)
}

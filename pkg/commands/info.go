package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/dashtab/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Details about the config and the stored dashboards.",
		Example: `
dashtab info
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			cfg, svc, closer, err := loadService()
			if err != nil {
				return output.HandleError(err)
			}
			defer closer()

			s := info.Info{
				Config:  cfg,
				Service: svc,
			}
			err = s.Do(cmd.Context())
			return output.HandleError(err)
		},
	}

	topLevel.AddCommand(cmd)
}

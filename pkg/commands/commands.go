package commands

import (
	"fmt"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tableflip.dev/dashtab/pkg/app"
	"tableflip.dev/dashtab/pkg/commands/options"
	"tableflip.dev/dashtab/pkg/config"
)

var (
	output   = &options.OutputOptions{}
	logLevel string
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "dashtab",
		Short: base.Wrap80("Edit dashboard tabs and cards from the command line."),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel == "" {
				return nil
			}
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
			log.SetLevel(level)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level, overrides log_level from the config.")

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addDashboards(topLevel)
	addTabs(topLevel)
	addCards(topLevel)
	addUndo(topLevel)
	addSave(topLevel)
	addDiscard(topLevel)
	addFilter(topLevel)
	addWatch(topLevel)
	addInfo(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}

// loadService resolves the config and builds the service on top of it. The
// returned func releases the draft backend.
func loadService() (*config.Config, *app.Service, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if logLevel == "" {
		log.SetLevel(cfg.LogLevel)
	}
	svc, closer, err := app.FromConfig(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, svc, closer, nil
}

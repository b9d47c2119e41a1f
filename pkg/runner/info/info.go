package info

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/dashtab/pkg/app"
	"tableflip.dev/dashtab/pkg/config"
)

type Info struct {
	Config  *config.Config
	Service *app.Service
}

func (n *Info) Do(ctx context.Context) error {
	out := color.Output

	if override := os.Getenv("DASHTAB_CONFIG_PATH"); override != "" {
		_, _ = fmt.Fprintln(out, "DASHTAB_CONFIG_PATH found on env, using", override)
	} else {
		_, _ = fmt.Fprintln(out, "DASHTAB_CONFIG_PATH env var not set")
	}

	if n.Config == nil {
		var err error
		n.Config, err = config.Load()
		if err != nil {
			return err
		}
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("Config.path:", n.Config.BasePath())
	tbl.AddRow("Config.drafts:", n.Config.Drafts)
	if n.Config.Drafts == config.DraftsRedis {
		tbl.AddRow("Config.redis_addr:", n.Config.RedisAddr)
		tbl.AddRow("Config.redis_ttl:", n.Config.RedisTTL)
	}
	tbl.AddRow("Config.grid_width:", n.Config.GridWidth)
	tbl.AddRow("Config.log_level:", n.Config.LogLevel)
	_, _ = fmt.Fprintln(out, tbl)

	if n.Service == nil {
		return errors.New("failed to create persistence object")
	}

	dashes, err := n.Service.Dashboards(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(out, "Dashboards:")
	if len(dashes) == 0 {
		_, _ = fmt.Fprintf(out, "  %s\n", "no dashboards")
		return nil
	}
	faint := color.New(color.Faint)
	for _, d := range dashes {
		line := fmt.Sprintf("  %d %s", d.ID, d.Name)
		has, err := n.Service.HasDraft(ctx, d.ID)
		if err != nil {
			return err
		}
		if has {
			line += faint.Sprint(" (unsaved draft)")
		}
		_, _ = fmt.Fprintln(out, line)
	}
	return nil
}

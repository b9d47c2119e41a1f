// Package dashboards lists and creates saved dashboards.
package dashboards

import (
	"context"
	"errors"
	"strings"

	"tableflip.dev/dashtab/pkg/app"
	"tableflip.dev/dashtab/pkg/dashboard"
	"tableflip.dev/dashtab/pkg/printers"
)

type List struct {
	Service *app.Service
	JSON    bool
}

func (l *List) Do(ctx context.Context) error {
	if l.Service == nil {
		return errors.New("can not list, no service")
	}
	dashes, err := l.Service.Dashboards(ctx)
	if err != nil {
		return err
	}
	if l.JSON {
		return printers.JSON(dashes)
	}
	pp := printers.PrettyPrint{}
	pp.Dashboards(dashes)
	return nil
}

type Create struct {
	Service *app.Service
	Name    string
	JSON    bool
}

func (c *Create) Do(ctx context.Context) error {
	if c.Service == nil {
		return errors.New("can not create, no service")
	}
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return errors.New("a dashboard name is required")
	}
	dash, err := c.Service.CreateDashboard(ctx, name)
	if err != nil {
		return err
	}
	if c.JSON {
		return printers.JSON(dash)
	}
	pp := printers.PrettyPrint{}
	pp.Dashboards([]dashboard.Dashboard{dash})
	return nil
}

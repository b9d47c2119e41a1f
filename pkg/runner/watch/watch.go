// Package watch streams store change events to the terminal.
package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"

	"tableflip.dev/dashtab/pkg/app"
	"tableflip.dev/dashtab/pkg/dashboard"
	"tableflip.dev/dashtab/pkg/printers"
	"tableflip.dev/dashtab/pkg/store"
)

type Watch struct {
	Service *app.Service
	// Dashboard limits output to one dashboard and reprints its report on
	// each change. Zero watches everything.
	Dashboard dashboard.DashboardID
	JSON      bool
}

type eventJSON struct {
	Time        time.Time             `json:"time"`
	Type        string                `json:"type"`
	DashboardID dashboard.DashboardID `json:"dashboard_id,omitempty"`
}

func (w *Watch) Do(ctx context.Context) error {
	if w.Service == nil {
		return errors.New("can not watch, no service")
	}
	ch, err := w.Service.Watch(ctx)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{}
	y := color.New(color.FgHiYellow)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			if w.Dashboard != 0 && ev.Type != store.EventDashboardsInvalidated && ev.DashboardID != w.Dashboard {
				continue
			}
			if w.JSON {
				if err := printers.JSON(eventJSON{Time: time.Now(), Type: ev.Type.String(), DashboardID: ev.DashboardID}); err != nil {
					return err
				}
				continue
			}
			_, _ = fmt.Fprintf(color.Output, "%s %s %d\n", time.Now().Format("15:04:05"), y.Sprint(ev.Type), ev.DashboardID)
			if w.Dashboard == 0 {
				continue
			}
			sess, err := w.Service.Open(ctx, w.Dashboard, "")
			if err != nil {
				log.WithError(err).WithField("dashboard", w.Dashboard).Warn("reload failed")
				continue
			}
			pp.Report(app.Report(sess.Snapshot()))
		}
	}
}

// Package edit holds the plumbing shared by runners that change a dashboard.
package edit

import (
	"context"
	"errors"

	"tableflip.dev/dashtab/pkg/app"
	"tableflip.dev/dashtab/pkg/dashboard"
	"tableflip.dev/dashtab/pkg/printers"
	"tableflip.dev/dashtab/pkg/session"
)

// Target is the dashboard a runner edits.
type Target struct {
	Service   *app.Service
	Dashboard dashboard.DashboardID
	JSON      bool
}

func (t *Target) check() error {
	if t.Service == nil {
		return errors.New("no service configured")
	}
	if t.Dashboard <= 0 {
		return errors.New("no dashboard selected")
	}
	return nil
}

// Open returns a session on the dashboard's draft or saved state.
func (t *Target) Open(ctx context.Context) (*session.Session, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	return t.Service.Open(ctx, t.Dashboard, "")
}

// Edit applies fn and commits the draft. Change events are printed unless
// JSON output is requested.
func (t *Target) Edit(ctx context.Context, fn func(*session.Session) error) (*session.Session, error) {
	if err := t.check(); err != nil {
		return nil, err
	}
	sess, err := t.Service.Edit(ctx, t.Dashboard, fn)
	if err != nil {
		return nil, err
	}
	if !t.JSON {
		pp := printers.PrettyPrint{}
		pp.Events(sess.Pending())
	}
	return sess, nil
}

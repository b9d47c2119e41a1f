// Package cards implements the dashcard commands.
package cards

import (
	"context"
	"errors"

	"tableflip.dev/dashtab/pkg/app"
	"tableflip.dev/dashtab/pkg/dashboard"
	"tableflip.dev/dashtab/pkg/printers"
	"tableflip.dev/dashtab/pkg/runner/edit"
	"tableflip.dev/dashtab/pkg/session"
	"tableflip.dev/dashtab/pkg/undo"
)

func show(t *edit.Target, sess *session.Session) error {
	r := app.Report(sess.Snapshot())
	if t.JSON {
		return printers.JSON(r)
	}
	pp := printers.PrettyPrint{}
	pp.Report(r)
	return nil
}

// List prints the dashboard's dashcards grouped by tab.
type List struct {
	edit.Target
}

func (l *List) Do(ctx context.Context) error {
	sess, err := l.Open(ctx)
	if err != nil {
		return err
	}
	return show(&l.Target, sess)
}

// Add places a card on a tab, the selected tab when TabID is nil.
type Add struct {
	edit.Target
	CardID dashboard.CardID
	TabID  *dashboard.TabID
	SizeX  int
	SizeY  int
}

func (a *Add) Do(ctx context.Context) error {
	if a.CardID <= 0 {
		return errors.New("a card id is required")
	}
	sess, err := a.Edit(ctx, func(sess *session.Session) error {
		_, err := sess.AddDashCard(a.CardID, a.TabID, a.SizeX, a.SizeY)
		return err
	})
	if err != nil {
		return err
	}
	return show(&a.Target, sess)
}

// Move moves a dashcard to another tab.
type Move struct {
	edit.Target
	DashCardID dashboard.DashCardID
	TabID      dashboard.TabID
}

func (m *Move) Do(ctx context.Context) error {
	var entry undo.Entry
	sess, err := m.Edit(ctx, func(sess *session.Session) error {
		var err error
		entry, err = sess.MoveDashCardToTab(m.DashCardID, m.TabID)
		return err
	})
	if err != nil {
		return err
	}
	if !m.JSON {
		pp := printers.PrettyPrint{}
		pp.Undo(entry)
	}
	return show(&m.Target, sess)
}

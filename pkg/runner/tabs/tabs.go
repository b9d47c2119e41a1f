// Package tabs implements the tab editing commands.
package tabs

import (
	"context"
	"fmt"
	"strings"

	"tableflip.dev/dashtab/pkg/dashboard"
	"tableflip.dev/dashtab/pkg/printers"
	"tableflip.dev/dashtab/pkg/runner/edit"
	"tableflip.dev/dashtab/pkg/session"
	"tableflip.dev/dashtab/pkg/undo"
)

// Listing is the JSON form of the tab list.
type Listing struct {
	Tabs     []dashboard.Tab   `json:"tabs"`
	Selected *dashboard.TabID  `json:"selected"`
	Slugs    map[string]string `json:"slugs,omitempty"`
	Undo     int               `json:"undo"`
	Deleted  []dashboard.TabID `json:"deleted,omitempty"`
}

func listing(sess *session.Session) Listing {
	state := sess.Snapshot()
	l := Listing{
		Tabs:     state.Tabs(false),
		Selected: state.SelectedTabID,
		Slugs:    make(map[string]string),
		Undo:     len(sess.UndoEntries()),
	}
	for _, tab := range l.Tabs {
		l.Slugs[fmt.Sprint(tab.ID)] = dashboard.TabSlug(tab)
	}
	for _, tab := range state.Tabs(true) {
		if tab.IsRemoved {
			l.Deleted = append(l.Deleted, tab.ID)
		}
	}
	return l
}

func show(t *edit.Target, sess *session.Session) error {
	if t.JSON {
		return printers.JSON(listing(sess))
	}
	pp := printers.PrettyPrint{}
	pp.Tabs(sess.Snapshot())
	return nil
}

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

// Add creates a tab and optionally names it.
type Add struct {
	edit.Target
	Name string
}

func (a *Add) Do(ctx context.Context) error {
	name := strings.TrimSpace(a.Name)
	sess, err := a.Edit(ctx, func(sess *session.Session) error {
		id, err := sess.CreateNewTab()
		if err != nil {
			return err
		}
		if name == "" {
			return nil
		}
		return sess.RenameTab(id, name)
	})
	if err != nil {
		return err
	}
	return show(&a.Target, sess)
}

type Remove struct {
	edit.Target
	TabID dashboard.TabID
}

func (r *Remove) Do(ctx context.Context) error {
	var entry undo.Entry
	sess, err := r.Edit(ctx, func(sess *session.Session) error {
		var err error
		entry, err = sess.DeleteTab(r.TabID)
		return err
	})
	if err != nil {
		return err
	}
	if !r.JSON {
		pp := printers.PrettyPrint{}
		pp.Undo(entry)
	}
	return show(&r.Target, sess)
}

type Rename struct {
	edit.Target
	TabID dashboard.TabID
	Name  string
}

func (r *Rename) Do(ctx context.Context) error {
	sess, err := r.Edit(ctx, func(sess *session.Session) error {
		return sess.RenameTab(r.TabID, r.Name)
	})
	if err != nil {
		return err
	}
	return show(&r.Target, sess)
}

// Move puts Source at Destination's position.
type Move struct {
	edit.Target
	Source      dashboard.TabID
	Destination dashboard.TabID
}

func (m *Move) Do(ctx context.Context) error {
	sess, err := m.Edit(ctx, func(sess *session.Session) error {
		return sess.MoveTab(m.Source, m.Destination)
	})
	if err != nil {
		return err
	}
	return show(&m.Target, sess)
}

// Select changes the selected tab.
type Select struct {
	edit.Target
	TabID dashboard.TabID
}

func (s *Select) Do(ctx context.Context) error {
	sess, err := s.Edit(ctx, func(sess *session.Session) error {
		for _, tab := range sess.Snapshot().Tabs(false) {
			if tab.ID == s.TabID {
				return sess.SelectTab(dashboard.TabRef(tab.ID))
			}
		}
		return fmt.Errorf("tab %d not found", s.TabID)
	})
	if err != nil {
		return err
	}
	return show(&s.Target, sess)
}

// Package undo applies or lists the undo entries of a dashboard draft.
package undo

import (
	"context"
	"errors"

	"tableflip.dev/dashtab/pkg/printers"
	"tableflip.dev/dashtab/pkg/runner/edit"
	"tableflip.dev/dashtab/pkg/session"
	coord "tableflip.dev/dashtab/pkg/undo"
)

type Undo struct {
	edit.Target
	// ID selects the entry; empty means the latest one.
	ID   string
	List bool
	// Dismiss drops the entry named by ID without applying it.
	Dismiss bool
}

func (u *Undo) Do(ctx context.Context) error {
	pp := printers.PrettyPrint{}
	if u.List {
		sess, err := u.Open(ctx)
		if err != nil {
			return err
		}
		entries := sess.UndoEntries()
		if u.JSON {
			if entries == nil {
				entries = []coord.Entry{}
			}
			return printers.JSON(entries)
		}
		pp.UndoEntries(entries)
		return nil
	}

	if u.Dismiss {
		if u.ID == "" {
			return errors.New("an undo id is required to dismiss an entry")
		}
		if _, err := u.Edit(ctx, func(sess *session.Session) error {
			return sess.DismissUndo(u.ID)
		}); err != nil {
			return err
		}
		if u.JSON {
			return printers.JSON(map[string]string{"dismissed": u.ID})
		}
		pp.Title("Dismissed " + u.ID)
		return nil
	}

	var entry coord.Entry
	_, err := u.Edit(ctx, func(sess *session.Session) error {
		var err error
		if u.ID == "" {
			entry, err = sess.UndoLatest()
		} else {
			entry, err = sess.Undo(u.ID)
		}
		return err
	})
	if err != nil {
		return err
	}
	if u.JSON {
		return printers.JSON(entry)
	}
	pp.Title("Undone: " + entry.Message)
	return nil
}

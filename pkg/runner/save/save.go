// Package save stores or drops the pending draft of a dashboard.
package save

import (
	"context"
	"errors"

	"tableflip.dev/dashtab/pkg/app"
	"tableflip.dev/dashtab/pkg/printers"
	"tableflip.dev/dashtab/pkg/runner/edit"
)

type Save struct {
	edit.Target
}

func (s *Save) Do(ctx context.Context) error {
	sess, err := s.Open(ctx)
	if err != nil {
		return err
	}
	has, err := s.Service.HasDraft(ctx, s.Dashboard)
	if err != nil {
		return err
	}
	if !has {
		return errors.New("nothing to save")
	}
	if err := s.Service.Save(ctx, sess); err != nil {
		return err
	}

	r := app.Report(sess.Snapshot())
	if s.JSON {
		return printers.JSON(r)
	}
	pp := printers.PrettyPrint{}
	pp.Events(sess.Pending())
	pp.Report(r)
	return nil
}

type Discard struct {
	edit.Target
}

func (d *Discard) Do(ctx context.Context) error {
	if d.Service == nil {
		return errors.New("can not discard, no service")
	}
	if err := d.Service.Discard(ctx, d.Dashboard); err != nil {
		return err
	}
	if d.JSON {
		return printers.JSON(map[string]any{"discarded": d.Dashboard})
	}
	pp := printers.PrettyPrint{}
	pp.Title("Draft discarded")
	return nil
}

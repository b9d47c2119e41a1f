package app

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"tableflip.dev/dashtab/pkg/dashboard"
	"tableflip.dev/dashtab/pkg/session"
	"tableflip.dev/dashtab/pkg/store"
)

// Service provides high-level operations over saved dashboards and their
// drafts. Edits happen on a session that is written back as a draft, so an
// editing session can span several CLI invocations.
type Service struct {
	Persistence store.Persistence
	Placer      dashboard.Placer
}

var errNoPersistence = errors.New("app: no persistence configured")

// Dashboards lists saved dashboards by id.
func (s *Service) Dashboards(ctx context.Context) ([]dashboard.Dashboard, error) {
	if s.Persistence == nil {
		return nil, errNoPersistence
	}
	return s.Persistence.Dashboards(ctx)
}

// CreateDashboard stores an empty dashboard.
func (s *Service) CreateDashboard(ctx context.Context, name string) (dashboard.Dashboard, error) {
	if s.Persistence == nil {
		return dashboard.Dashboard{}, errNoPersistence
	}
	return s.Persistence.CreateDashboard(ctx, name)
}

// HasDraft reports whether the dashboard has unsaved edits.
func (s *Service) HasDraft(ctx context.Context, id dashboard.DashboardID) (bool, error) {
	if s.Persistence == nil {
		return false, errNoPersistence
	}
	_, err := s.Persistence.LoadDraft(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	}
	return false, err
}

// Open returns a session for the dashboard. A pending draft is resumed;
// otherwise the saved dashboard is loaded and the tab named by slug selected.
func (s *Service) Open(ctx context.Context, id dashboard.DashboardID, slug string) (*session.Session, error) {
	if s.Persistence == nil {
		return nil, errNoPersistence
	}
	sess := session.New(session.WithPlacer(s.Placer))
	d, err := s.Persistence.LoadDraft(ctx, id)
	switch {
	case err == nil:
		if err := sess.Resume(d); err != nil {
			return nil, fmt.Errorf("app: resume draft %d: %w", id, err)
		}
		if slug != "" {
			if err := sess.InitTabs(slug); err != nil {
				return nil, err
			}
		}
		return sess, nil
	case !errors.Is(err, store.ErrNotFound):
		// An unreadable draft is reported rather than silently replaced.
		return nil, err
	}

	dash, cards, err := s.Persistence.Dashboard(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := sess.Load(dash, cards, slug); err != nil {
		return nil, err
	}
	return sess, nil
}

// Commit writes the session back as the dashboard's draft.
func (s *Service) Commit(ctx context.Context, sess *session.Session) error {
	if s.Persistence == nil {
		return errNoPersistence
	}
	d, err := sess.Draft()
	if err != nil {
		return err
	}
	return s.Persistence.SaveDraft(ctx, d)
}

// Edit opens the dashboard, applies fn and commits the draft if fn succeeds.
func (s *Service) Edit(ctx context.Context, id dashboard.DashboardID, fn func(*session.Session) error) (*session.Session, error) {
	sess, err := s.Open(ctx, id, "")
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := s.Commit(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Save persists the session's dashboard and drops its draft.
func (s *Service) Save(ctx context.Context, sess *session.Session) error {
	if s.Persistence == nil {
		return errNoPersistence
	}
	if err := sess.Save(ctx, s.Persistence); err != nil {
		return err
	}
	d, err := sess.Draft()
	if err != nil {
		return err
	}
	if err := s.Persistence.DeleteDraft(ctx, d.DashboardID); err != nil {
		log.WithField("dashboard", d.DashboardID).WithError(err).Warn("saved but draft not removed")
	}
	return nil
}

// Discard drops unsaved edits of a dashboard.
func (s *Service) Discard(ctx context.Context, id dashboard.DashboardID) error {
	if s.Persistence == nil {
		return errNoPersistence
	}
	return s.Persistence.DeleteDraft(ctx, id)
}

// Watch subscribes to persistence change events.
func (s *Service) Watch(ctx context.Context) (<-chan store.Event, error) {
	if s.Persistence == nil {
		return nil, errNoPersistence
	}
	return s.Persistence.Watch(ctx)
}

package session

import (
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"tableflip.dev/dashtab/pkg/dashboard"
	"tableflip.dev/dashtab/pkg/undo"
)

// Draft is everything needed to continue an editing session later: the
// state, the pending undo entries and the positions of both id sequences.
type Draft struct {
	DashboardID    dashboard.DashboardID `json:"dashboardId"`
	State          *dashboard.State      `json:"state"`
	Undo           []undo.Entry          `json:"undo,omitempty"`
	NextTabID      dashboard.TabID       `json:"nextTabId"`
	NextDashCardID dashboard.DashCardID  `json:"nextDashCardId"`
	UpdatedAt      time.Time             `json:"updatedAt"`
}

// Draft captures the session.
func (s *Session) Draft() (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.DashboardID == nil {
		return Draft{}, ErrNoDashboard
	}
	return Draft{
		DashboardID:    *s.state.DashboardID,
		State:          s.state.Clone(),
		Undo:           s.undo.List(),
		NextTabID:      s.tabIDs.Peek(),
		NextDashCardID: s.dashCardIDs.Peek(),
		UpdatedAt:      time.Now().UTC(),
	}, nil
}

// Resume replaces the session with a previously captured draft.
func (s *Session) Resume(d Draft) error {
	if d.State == nil || d.State.DashboardID == nil {
		return errors.New("session: draft has no dashboard")
	}
	if *d.State.DashboardID != d.DashboardID {
		return errors.New("session: draft state belongs to another dashboard")
	}
	tabIDs := dashboard.NewTabIDAllocator()
	if err := tabIDs.Restore(d.NextTabID); err != nil {
		return err
	}
	dashCardIDs := dashboard.NewDashCardIDAllocator()
	if err := dashCardIDs.Restore(d.NextDashCardID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = d.State.Clone()
	s.tabIDs = tabIDs
	s.dashCardIDs = dashCardIDs
	s.undo.Restore(d.Undo)
	log.WithFields(log.Fields{
		"dashboard": d.DashboardID,
		"undo":      len(d.Undo),
		"updated":   d.UpdatedAt,
	}).Debug("draft resumed")
	return nil
}

// Package session edits one dashboard at a time. A Session is the single
// writer of the dashboard state: it owns the temporary id allocators and the
// undo entries, applies actions in call order and emits change events.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"tableflip.dev/dashtab/pkg/dashboard"
	"tableflip.dev/dashtab/pkg/events"
	"tableflip.dev/dashtab/pkg/undo"
)

// ErrNoDashboard is returned by operations that need a loaded dashboard.
var ErrNoDashboard = errors.New("session: no dashboard loaded")

// Saver persists a dashboard. The returned tabs and dashcards are the
// non-removed input tabs and dashcards, in input order, with their stored
// ids.
type Saver interface {
	SaveDashboard(ctx context.Context, dash dashboard.Dashboard, cards []dashboard.DashCard) (dashboard.Dashboard, []dashboard.DashCard, error)
}

// Session wraps the dashboard reducer with id allocation, undo and events.
type Session struct {
	mu sync.Mutex

	state   *dashboard.State
	reducer dashboard.Reducer

	tabIDs      *dashboard.TempIDAllocator[dashboard.TabID]
	dashCardIDs *dashboard.TempIDAllocator[dashboard.DashCardID]
	undo        *undo.Coordinator

	eventCh chan events.Msg
}

// Option configures a Session.
type Option func(*Session)

// WithPlacer sets the placement service used for moved and added dashcards.
func WithPlacer(p dashboard.Placer) Option {
	return func(s *Session) { s.reducer.Placer = p }
}

// WithEventBuffer sets the capacity of the event channel. Events are dropped
// when the buffer is full.
func WithEventBuffer(n int) Option {
	return func(s *Session) { s.eventCh = make(chan events.Msg, n) }
}

// New returns a session with no dashboard loaded.
func New(opts ...Option) *Session {
	s := &Session{
		state:       dashboard.NewState(),
		tabIDs:      dashboard.NewTabIDAllocator(),
		dashCardIDs: dashboard.NewDashCardIDAllocator(),
		undo:        undo.New(),
		eventCh:     make(chan events.Msg, 64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events exposes the change event channel.
func (s *Session) Events() <-chan events.Msg {
	return s.eventCh
}

// Pending drains the events emitted so far without blocking.
func (s *Session) Pending() []events.Msg {
	var out []events.Msg
	for {
		select {
		case msg := <-s.eventCh:
			out = append(out, msg)
		default:
			return out
		}
	}
}

// Snapshot returns the current state. Callers must treat it as read-only.
func (s *Session) Snapshot() *dashboard.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies a single action.
func (s *Session) Dispatch(a dashboard.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatchLocked(a)
}

func (s *Session) dispatchLocked(a dashboard.Action) error {
	return s.applyLocked(a, true)
}

// applyLocked reduces a against the current state and, on success, swaps the
// state and optionally emits the diff as events.
func (s *Session) applyLocked(a dashboard.Action, emitDiff bool) error {
	if a == nil {
		return errors.New("session: nil action")
	}
	fields := log.Fields{"action": a.Type()}
	if s.state.DashboardID != nil {
		fields["dashboard"] = *s.state.DashboardID
	}
	next, err := s.reducer.Reduce(s.state, a)
	if err != nil {
		log.WithFields(fields).WithError(err).Error("transition failed")
		return err
	}
	prev := s.state
	s.state = next
	log.WithFields(fields).Debug("transition applied")
	if log.IsLevelEnabled(log.DebugLevel) {
		if verr := next.Validate(); verr != nil {
			log.WithFields(fields).WithError(verr).Warn("state does not validate")
		}
	}
	if emitDiff {
		for _, msg := range events.Diff(prev, next) {
			s.emit(msg)
		}
	}
	return nil
}

func (s *Session) emit(msg events.Msg) {
	select {
	case s.eventCh <- msg:
	default:
		log.WithField("event", msg.Describe()).Debug("event dropped")
	}
}

// Load starts editing dash. It clears pending deletions, undo entries and
// the temporary id sequences, then selects the tab named by slug (or the
// first tab).
func (s *Session) Load(dash dashboard.Dashboard, cards []dashboard.DashCard, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range []dashboard.Action{
		dashboard.Initialize{},
		dashboard.FetchDashboard{Dashboard: dash, DashCards: cards},
		dashboard.InitTabs{Slug: slug},
	} {
		if err := s.dispatchLocked(a); err != nil {
			return err
		}
	}
	s.tabIDs.Reset()
	s.dashCardIDs.Reset()
	s.undo.Clear()
	return nil
}

// CreateNewTab adds a tab with a fresh temporary id and selects it.
func (s *Session) CreateNewTab() (dashboard.TabID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.tabIDs.Peek()
	if err := s.dispatchLocked(dashboard.CreateNewTab{TabID: id}); err != nil {
		return 0, err
	}
	s.tabIDs.Next()
	return id, nil
}

// DeleteTab removes a tab and its dashcards and registers an undo entry that
// restores them.
func (s *Session) DeleteTab(id dashboard.TabID) (undo.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := fmt.Sprintf("#%d", id)
	for _, tab := range s.state.Tabs(false) {
		if tab.ID == id {
			name = tab.Name
		}
	}
	deletion := dashboard.TabDeletionID(uuid.NewString())
	if err := s.dispatchLocked(dashboard.DeleteTab{TabID: id, TabDeletionID: deletion}); err != nil {
		return undo.Entry{}, err
	}
	return s.offerLocked(fmt.Sprintf("Deleted %q", name), dashboard.UndoDeleteTab{TabDeletionID: deletion})
}

// RenameTab renames a tab.
func (s *Session) RenameTab(id dashboard.TabID, name string) error {
	return s.Dispatch(dashboard.RenameTab{TabID: id, Name: name})
}

// MoveTab moves src to dst's position.
func (s *Session) MoveTab(src, dst dashboard.TabID) error {
	return s.Dispatch(dashboard.MoveTab{SourceTabID: src, DestinationTabID: dst})
}

// SelectTab changes the selection; nil clears it.
func (s *Session) SelectTab(id *dashboard.TabID) error {
	return s.Dispatch(dashboard.SelectTab{TabID: id})
}

// InitTabs selects the tab named by a URL slug.
func (s *Session) InitTabs(slug string) error {
	return s.Dispatch(dashboard.InitTabs{Slug: slug})
}

// MoveDashCardToTab moves a dashcard to another tab and registers an undo
// entry that puts it back.
func (s *Session) MoveDashCardToTab(id dashboard.DashCardID, dst dashboard.TabID) (undo.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dc, ok := s.state.DashCard(id)
	if !ok {
		return undo.Entry{}, fmt.Errorf("%w: dashcard %d not found", dashboard.ErrInvariantViolation, id)
	}
	if dc.DashboardTabID == nil {
		return undo.Entry{}, fmt.Errorf("session: dashcard %d is not on a tab", id)
	}
	if err := s.dispatchLocked(dashboard.MoveDashCardToTab{DashCardID: id, DestinationTabID: dst}); err != nil {
		return undo.Entry{}, err
	}
	return s.offerLocked("Card moved", dashboard.UndoMoveDashCardToTab{
		DashCardID:    id,
		OriginalRow:   dc.Row,
		OriginalCol:   dc.Col,
		OriginalTabID: *dc.DashboardTabID,
	})
}

// AddDashCard places a card on a tab. A nil tab means the selected tab.
func (s *Session) AddDashCard(card dashboard.CardID, tab *dashboard.TabID, sizeX, sizeY int) (dashboard.DashCardID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tab == nil && s.state.SelectedTabID != nil {
		tab = dashboard.TabRef(*s.state.SelectedTabID)
	}
	id := s.dashCardIDs.Peek()
	err := s.dispatchLocked(dashboard.AddDashCard{DashCardID: id, CardID: card, TabID: tab, SizeX: sizeX, SizeY: sizeY})
	if err != nil {
		return 0, err
	}
	s.dashCardIDs.Next()
	return id, nil
}

// SetDashCardData caches query results for a dashcard; nil clears them.
func (s *Session) SetDashCardData(id dashboard.DashCardID, data dashboard.CardData) error {
	return s.Dispatch(dashboard.SetDashCardData{DashCardID: id, Data: data})
}

func (s *Session) offerLocked(message string, a dashboard.Action) (undo.Entry, error) {
	e, err := s.undo.Register(message, a)
	if err != nil {
		return undo.Entry{}, err
	}
	s.emit(events.UndoOfferMsg{UndoID: e.ID, Message: e.Message})
	return e, nil
}

// Undo applies the undo entry with the given id. Each entry can be used once.
func (s *Session) Undo(id string) (undo.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.undo.Take(id)
	if err != nil {
		return undo.Entry{}, err
	}
	return e, s.dispatchLocked(e.Action)
}

// UndoLatest applies the most recent undo entry.
func (s *Session) UndoLatest() (undo.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.undo.TakeLatest()
	if err != nil {
		return undo.Entry{}, err
	}
	return e, s.dispatchLocked(e.Action)
}

// DismissUndo drops a pending undo entry without applying it.
func (s *Session) DismissUndo(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.undo.Forget(id) {
		return fmt.Errorf("%w: %s", undo.ErrNotFound, id)
	}
	log.WithField("undo", id).Debug("undo dismissed")
	return nil
}

// UndoEntries lists pending undo entries, oldest first.
func (s *Session) UndoEntries() []undo.Entry {
	return s.undo.List()
}

// Save persists the dashboard through saver, reconciles temporary ids with
// the stored ones and reloads the stored dashboard. Pending undo entries are
// dropped since the records they refer to no longer exist.
func (s *Session) Save(ctx context.Context, saver Saver) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	dash, ok := s.state.Dashboard()
	if !ok {
		return ErrNoDashboard
	}
	cards := make([]dashboard.DashCard, 0, len(dash.DashCards))
	for _, id := range dash.DashCards {
		if dc, ok := s.state.DashCard(id); ok {
			cards = append(cards, dc)
		}
	}
	input := *dash
	input.Tabs = append([]dashboard.Tab(nil), dash.Tabs...)

	saved, savedCards, err := saver.SaveDashboard(ctx, input, cards)
	if err != nil {
		log.WithField("dashboard", dash.ID).WithError(err).Error("save failed")
		return err
	}
	if err := s.applyLocked(dashboard.SaveCardsAndTabs{Cards: savedCards, Tabs: saved.Tabs}, false); err != nil {
		return err
	}
	if err := s.applyLocked(dashboard.FetchDashboard{Dashboard: saved, DashCards: savedCards}, false); err != nil {
		return err
	}
	s.undo.Clear()
	s.emit(events.SavedMsg{DashboardID: saved.ID, Tabs: len(saved.Tabs), DashCards: len(savedCards)})
	log.WithFields(log.Fields{
		"dashboard": saved.ID,
		"tabs":      len(saved.Tabs),
		"dashcards": len(savedCards),
	}).Info("dashboard saved")
	return nil
}

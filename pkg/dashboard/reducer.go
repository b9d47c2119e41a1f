package dashboard

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvariantViolation marks a transition that cannot be applied without
// corrupting the store: a dashboard, tab, dashcard, deletion record or index
// could not be resolved. The store is left unchanged.
var ErrInvariantViolation = errors.New("dashboard: invariant violation")

func violation(a Action, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvariantViolation, a.Type(), fmt.Sprintf(format, args...))
}

// Reducer applies actions to snapshots. Placer positions dashcards that move
// to another tab or are added.
type Reducer struct {
	Placer Placer
}

// Reduce returns the snapshot that results from applying a to prev. prev is
// not modified. On error the returned snapshot is nil and prev stays current.
func (r Reducer) Reduce(prev *State, a Action) (*State, error) {
	s := prev.Clone()
	var err error
	switch a := a.(type) {
	case CreateNewTab:
		err = r.createNewTab(s, a)
	case DeleteTab:
		err = r.deleteTab(s, a)
	case UndoDeleteTab:
		err = r.undoDeleteTab(s, a)
	case RenameTab:
		err = r.renameTab(s, a)
	case MoveTab:
		err = r.moveTab(s, a)
	case SelectTab:
		s.SelectedTabID = nil
		if a.TabID != nil {
			s.SelectedTabID = TabRef(*a.TabID)
		}
	case InitTabs:
		r.initTabs(s, a)
	case MoveDashCardToTab:
		err = r.moveDashCardToTab(s, a)
	case UndoMoveDashCardToTab:
		err = r.undoMoveDashCardToTab(s, a)
	case AddDashCard:
		err = r.addDashCard(s, a)
	case SetDashCardData:
		err = r.setDashCardData(s, a)
	case SaveCardsAndTabs:
		err = r.saveCardsAndTabs(s, a)
	case Initialize:
		if a.ClearCache == nil || *a.ClearCache {
			s.SelectedTabID = nil
			s.TabDeletions = map[TabDeletionID]TabDeletion{}
		}
	case FetchDashboard:
		r.fetchDashboard(s, a)
	case nil:
		err = errors.New("dashboard: nil action")
	default:
		err = fmt.Errorf("dashboard: unhandled action %s", a.Type())
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r Reducer) createNewTab(s *State, a CreateNewTab) error {
	dash, ok := s.Dashboard()
	if !ok {
		return violation(a, "no dashboard loaded")
	}
	if a.TabID >= 0 {
		return violation(a, "tab id %d is not client-local", a.TabID)
	}

	// Dashboard already has tabs: append one and select it.
	if len(dash.Tabs) > 0 {
		if tabIndex(dash.Tabs, a.TabID) >= 0 {
			return violation(a, "tab id %d already exists", a.TabID)
		}
		name := fmt.Sprintf("Tab %d", len(filterTabs(dash.Tabs, false))+1)
		dash.Tabs = append(dash.Tabs, Tab{ID: a.TabID, DashboardID: dash.ID, Name: name})
		s.SelectedTabID = TabRef(a.TabID)
		return nil
	}

	// No tabs yet: a single tab would look the same as none, so create two,
	// select the second and move every existing dashcard onto the first.
	first, second := a.TabID+1, a.TabID
	if first >= 0 {
		return violation(a, "tab id %d leaves no room for a first tab", a.TabID)
	}
	dash.Tabs = []Tab{
		{ID: first, DashboardID: dash.ID, Name: "Tab 1"},
		{ID: second, DashboardID: dash.ID, Name: "Tab 2"},
	}
	s.SelectedTabID = TabRef(second)
	for _, id := range dash.DashCards {
		dc, ok := s.DashCards[id]
		if !ok || dc == nil {
			return violation(a, "dashcard %d is listed but missing", id)
		}
		dc.DashboardTabID = TabRef(first)
		dc.IsDirty = true
	}
	return nil
}

func (r Reducer) deleteTab(s *State, a DeleteTab) error {
	dash, ok := s.Dashboard()
	if !ok {
		return violation(a, "no dashboard loaded")
	}
	if a.TabDeletionID == "" {
		return violation(a, "empty deletion id")
	}
	if _, exists := s.TabDeletions[a.TabDeletionID]; exists {
		return violation(a, "deletion %s already recorded", a.TabDeletionID)
	}
	visible := filterTabs(dash.Tabs, false)
	pos := tabIndex(visible, a.TabID)
	if pos < 0 {
		return violation(a, "tab %d not found", a.TabID)
	}

	if s.SelectedTabID != nil && *s.SelectedTabID == a.TabID {
		target := pos - 1
		if pos == 0 {
			target = 1
		}
		if target < len(visible) {
			s.SelectedTabID = TabRef(visible[target].ID)
		} else {
			s.SelectedTabID = nil
		}
	}

	dash.Tabs[tabIndex(dash.Tabs, a.TabID)].IsRemoved = true

	removed := []DashCardID{}
	for _, id := range dash.DashCards {
		dc, ok := s.DashCards[id]
		if !ok || dc == nil || dc.IsRemoved {
			continue
		}
		if dc.DashboardTabID != nil && *dc.DashboardTabID == a.TabID {
			dc.IsRemoved = true
			removed = append(removed, id)
		}
	}

	s.TabDeletions[a.TabDeletionID] = TabDeletion{
		ID:                 a.TabDeletionID,
		TabID:              a.TabID,
		RemovedDashCardIDs: removed,
	}
	return nil
}

func (r Reducer) undoDeleteTab(s *State, a UndoDeleteTab) error {
	del, ok := s.TabDeletions[a.TabDeletionID]
	if !ok {
		return violation(a, "no deletion %s", a.TabDeletionID)
	}
	dash, ok := s.Dashboard()
	if !ok {
		return violation(a, "no dashboard loaded")
	}
	idx := tabIndex(dash.Tabs, del.TabID)
	if idx < 0 {
		return violation(a, "tab %d was not found", del.TabID)
	}
	for _, id := range del.RemovedDashCardIDs {
		if dc, ok := s.DashCards[id]; !ok || dc == nil {
			return violation(a, "dashcard %d was not found", id)
		}
	}

	dash.Tabs[idx].IsRemoved = false
	for _, id := range del.RemovedDashCardIDs {
		s.DashCards[id].IsRemoved = false
	}
	delete(s.TabDeletions, a.TabDeletionID)
	return nil
}

func (r Reducer) renameTab(s *State, a RenameTab) error {
	dash, ok := s.Dashboard()
	if !ok {
		return violation(a, "no dashboard loaded")
	}
	idx := tabIndex(dash.Tabs, a.TabID)
	if idx < 0 || dash.Tabs[idx].IsRemoved {
		return violation(a, "tab %d not found", a.TabID)
	}
	dash.Tabs[idx].Name = a.Name
	return nil
}

func (r Reducer) moveTab(s *State, a MoveTab) error {
	dash, ok := s.Dashboard()
	if !ok {
		return violation(a, "no dashboard loaded")
	}
	src := tabIndex(dash.Tabs, a.SourceTabID)
	dst := tabIndex(dash.Tabs, a.DestinationTabID)
	if src < 0 || dash.Tabs[src].IsRemoved || dst < 0 || dash.Tabs[dst].IsRemoved {
		return violation(a, "source index %d or destination index %d is invalid", src, dst)
	}
	// Moving within the full list keeps removed tabs where they are while the
	// visible tabs get array-move order.
	dash.Tabs = arrayMove(dash.Tabs, src, dst)
	return nil
}

func (r Reducer) initTabs(s *State, a InitTabs) {
	visible := s.Tabs(false)
	if id, ok := IDFromSlug(a.Slug); ok && tabIndex(visible, id) >= 0 {
		s.SelectedTabID = TabRef(id)
		return
	}
	if len(visible) == 0 {
		s.SelectedTabID = nil
		return
	}
	s.SelectedTabID = TabRef(visible[0].ID)
}

func (r Reducer) moveDashCardToTab(s *State, a MoveDashCardToTab) error {
	dc, ok := s.DashCards[a.DashCardID]
	if !ok || dc == nil {
		return violation(a, "dashcard %d not found", a.DashCardID)
	}
	dash, ok := s.Dashboard()
	if !ok {
		return violation(a, "no dashboard loaded")
	}
	if tabIndex(filterTabs(dash.Tabs, false), a.DestinationTabID) < 0 {
		return violation(a, "tab %d not found", a.DestinationTabID)
	}
	if r.Placer == nil {
		return violation(a, "no placement service")
	}
	dest := TabRef(a.DestinationTabID)
	pos := r.Placer.Place(s.ExistingDashCards(dash.ID, dest), dc.SizeX, dc.SizeY)
	dc.Row = pos.Row
	dc.Col = pos.Col
	dc.DashboardTabID = dest
	dc.IsDirty = true
	return nil
}

func (r Reducer) undoMoveDashCardToTab(s *State, a UndoMoveDashCardToTab) error {
	dc, ok := s.DashCards[a.DashCardID]
	if !ok || dc == nil {
		return violation(a, "dashcard %d not found", a.DashCardID)
	}
	dc.Row = a.OriginalRow
	dc.Col = a.OriginalCol
	dc.DashboardTabID = TabRef(a.OriginalTabID)
	// The card stays dirty: its position changed twice since the last save.
	dc.IsDirty = true
	return nil
}

func (r Reducer) addDashCard(s *State, a AddDashCard) error {
	dash, ok := s.Dashboard()
	if !ok {
		return violation(a, "no dashboard loaded")
	}
	if _, exists := s.DashCards[a.DashCardID]; exists {
		return violation(a, "dashcard %d already exists", a.DashCardID)
	}
	if a.SizeX <= 0 || a.SizeY <= 0 {
		return violation(a, "size %dx%d must be positive", a.SizeX, a.SizeY)
	}
	visible := filterTabs(dash.Tabs, false)
	switch {
	case len(visible) == 0 && a.TabID != nil:
		return violation(a, "dashboard has no tabs but tab %d was given", *a.TabID)
	case len(visible) > 0 && (a.TabID == nil || tabIndex(visible, *a.TabID) < 0):
		return violation(a, "a tab of the dashboard is required")
	}
	if r.Placer == nil {
		return violation(a, "no placement service")
	}
	pos := r.Placer.Place(s.ExistingDashCards(dash.ID, a.TabID), a.SizeX, a.SizeY)
	dc := &DashCard{
		ID:          a.DashCardID,
		DashboardID: dash.ID,
		CardID:      a.CardID,
		Row:         pos.Row,
		Col:         pos.Col,
		SizeX:       a.SizeX,
		SizeY:       a.SizeY,
		IsDirty:     true,
	}
	if a.TabID != nil {
		dc.DashboardTabID = TabRef(*a.TabID)
	}
	s.DashCards[dc.ID] = dc
	dash.DashCards = append(dash.DashCards, dc.ID)
	return nil
}

func (r Reducer) setDashCardData(s *State, a SetDashCardData) error {
	if _, ok := s.DashCards[a.DashCardID]; !ok {
		return violation(a, "dashcard %d not found", a.DashCardID)
	}
	if a.Data == nil {
		delete(s.DashCardData, a.DashCardID)
		return nil
	}
	s.DashCardData[a.DashCardID] = append(CardData(nil), a.Data...)
	return nil
}

func (r Reducer) saveCardsAndTabs(s *State, a SaveCardsAndTabs) error {
	dash, ok := s.Dashboard()
	if !ok {
		return violation(a, "no dashboard loaded")
	}
	var prevCards []DashCardID
	for _, id := range dash.DashCards {
		if dc, ok := s.DashCards[id]; ok && dc != nil && !dc.IsRemoved {
			prevCards = append(prevCards, id)
		}
	}
	if len(a.Cards) < len(prevCards) {
		return violation(a, "%d saved cards for %d local dashcards", len(a.Cards), len(prevCards))
	}

	// Carry cached results over to the ids the store assigned.
	for i, oldID := range prevCards {
		if data, ok := s.DashCardData[oldID]; ok {
			s.DashCardData[a.Cards[i].ID] = data
		}
	}

	// Reselect the same tab position under its saved id.
	visible := filterTabs(dash.Tabs, false)
	selected := -1
	if s.SelectedTabID != nil {
		selected = tabIndex(visible, *s.SelectedTabID)
	}
	if selected >= 0 && selected < len(a.Tabs) {
		s.SelectedTabID = TabRef(a.Tabs[selected].ID)
	} else {
		s.SelectedTabID = nil
	}
	return nil
}

func (r Reducer) fetchDashboard(s *State, a FetchDashboard) {
	id := a.Dashboard.ID
	if prev, ok := s.Dashboards[id]; ok && prev != nil {
		for _, dcID := range prev.DashCards {
			delete(s.DashCards, dcID)
		}
	}
	dash := a.Dashboard
	dash.Tabs = append([]Tab(nil), a.Dashboard.Tabs...)
	for i := range dash.Tabs {
		dash.Tabs[i].DashboardID = id
	}
	dash.DashCards = make([]DashCardID, 0, len(a.DashCards))
	for _, dc := range a.DashCards {
		cp := cloneDashCard(&dc)
		cp.DashboardID = id
		s.DashCards[cp.ID] = cp
		dash.DashCards = append(dash.DashCards, cp.ID)
	}
	s.Dashboards[id] = &dash
	s.DashboardID = &id
}

func tabIndex(tabs []Tab, id TabID) int {
	return slices.IndexFunc(tabs, func(t Tab) bool { return t.ID == id })
}

// arrayMove removes the element at from and inserts it at to; elements in
// between shift by one.
func arrayMove[T any](list []T, from, to int) []T {
	out := slices.Clone(list)
	item := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, item)
}

package dashboard

import (
	"errors"
	"fmt"
)

// State is a snapshot of the dashboard editing store. The reducer never
// mutates a State it receives; it returns a new one.
type State struct {
	DashboardID   *DashboardID                  `json:"dashboardId"`
	Dashboards    map[DashboardID]*Dashboard    `json:"dashboards"`
	DashCards     map[DashCardID]*DashCard      `json:"dashcards"`
	DashCardData  map[DashCardID]CardData       `json:"dashcardData"`
	SelectedTabID *TabID                        `json:"selectedTabId"`
	TabDeletions  map[TabDeletionID]TabDeletion `json:"tabDeletions"`
}

// NewState returns an empty store.
func NewState() *State {
	return &State{
		Dashboards:   map[DashboardID]*Dashboard{},
		DashCards:    map[DashCardID]*DashCard{},
		DashCardData: map[DashCardID]CardData{},
		TabDeletions: map[TabDeletionID]TabDeletion{},
	}
}

// Clone deep copies the snapshot. Cached card data is shared since it is
// never written in place.
func (s *State) Clone() *State {
	out := NewState()
	if s == nil {
		return out
	}
	if s.DashboardID != nil {
		id := *s.DashboardID
		out.DashboardID = &id
	}
	if s.SelectedTabID != nil {
		out.SelectedTabID = TabRef(*s.SelectedTabID)
	}
	for id, dash := range s.Dashboards {
		if dash == nil {
			continue
		}
		cp := *dash
		cp.Tabs = append([]Tab(nil), dash.Tabs...)
		cp.DashCards = append([]DashCardID(nil), dash.DashCards...)
		out.Dashboards[id] = &cp
	}
	for id, dc := range s.DashCards {
		if dc == nil {
			continue
		}
		out.DashCards[id] = cloneDashCard(dc)
	}
	for id, data := range s.DashCardData {
		out.DashCardData[id] = data
	}
	for id, del := range s.TabDeletions {
		del.RemovedDashCardIDs = append([]DashCardID(nil), del.RemovedDashCardIDs...)
		out.TabDeletions[id] = del
	}
	return out
}

func cloneDashCard(dc *DashCard) *DashCard {
	cp := *dc
	if dc.DashboardTabID != nil {
		cp.DashboardTabID = TabRef(*dc.DashboardTabID)
	}
	return &cp
}

// Dashboard returns the dashboard currently being edited.
func (s *State) Dashboard() (*Dashboard, bool) {
	if s == nil || s.DashboardID == nil {
		return nil, false
	}
	dash, ok := s.Dashboards[*s.DashboardID]
	return dash, ok && dash != nil
}

// Tabs lists the current dashboard's tabs in order.
func (s *State) Tabs(includeRemoved bool) []Tab {
	dash, ok := s.Dashboard()
	if !ok {
		return nil
	}
	return filterTabs(dash.Tabs, includeRemoved)
}

func filterTabs(tabs []Tab, includeRemoved bool) []Tab {
	out := make([]Tab, 0, len(tabs))
	for _, tab := range tabs {
		if includeRemoved || !tab.IsRemoved {
			out = append(out, tab)
		}
	}
	return out
}

// SelectedTab returns the selected tab, if any.
func (s *State) SelectedTab() (Tab, bool) {
	if s == nil || s.SelectedTabID == nil {
		return Tab{}, false
	}
	for _, tab := range s.Tabs(true) {
		if tab.ID == *s.SelectedTabID {
			return tab, true
		}
	}
	return Tab{}, false
}

// DashCard returns a copy of the dashcard with the given id.
func (s *State) DashCard(id DashCardID) (DashCard, bool) {
	if s == nil {
		return DashCard{}, false
	}
	dc, ok := s.DashCards[id]
	if !ok || dc == nil {
		return DashCard{}, false
	}
	return *cloneDashCard(dc), true
}

// ActiveDashCards lists the current dashboard's non-removed dashcards in
// dashboard order.
func (s *State) ActiveDashCards() []DashCard {
	dash, ok := s.Dashboard()
	if !ok {
		return nil
	}
	out := make([]DashCard, 0, len(dash.DashCards))
	for _, id := range dash.DashCards {
		if dc, ok := s.DashCards[id]; ok && dc != nil && !dc.IsRemoved {
			out = append(out, *cloneDashCard(dc))
		}
	}
	return out
}

// ExistingDashCards lists the non-removed dashcards of dashboard dashID that
// sit on tab tabID.
func (s *State) ExistingDashCards(dashID DashboardID, tabID *TabID) []DashCard {
	dash, ok := s.Dashboards[dashID]
	if !ok || dash == nil {
		return nil
	}
	out := make([]DashCard, 0, len(dash.DashCards))
	for _, id := range dash.DashCards {
		dc, ok := s.DashCards[id]
		if !ok || dc == nil || dc.IsRemoved || !dc.OnTab(tabID) {
			continue
		}
		out = append(out, *cloneDashCard(dc))
	}
	return out
}

// Validate checks the structural invariants of the snapshot: the selection
// names a tab of the current dashboard, every non-removed dashcard points at
// an existing tab, and every pending deletion points at a removed tab whose
// recorded dashcards are removed.
func (s *State) Validate() error {
	dash, ok := s.Dashboard()
	if !ok {
		if s != nil && s.SelectedTabID != nil {
			return errors.New("dashboard: tab selected without a dashboard")
		}
		return nil
	}
	tabs := make(map[TabID]Tab, len(dash.Tabs))
	for _, tab := range dash.Tabs {
		if _, dup := tabs[tab.ID]; dup {
			return fmt.Errorf("dashboard: duplicate tab id %d", tab.ID)
		}
		tabs[tab.ID] = tab
	}
	if s.SelectedTabID != nil {
		if _, ok := tabs[*s.SelectedTabID]; !ok {
			return fmt.Errorf("dashboard: selected tab %d does not exist", *s.SelectedTabID)
		}
	}
	for _, id := range dash.DashCards {
		dc, ok := s.DashCards[id]
		if !ok || dc == nil {
			return fmt.Errorf("dashboard: dashcard %d is listed but missing", id)
		}
		if dc.IsRemoved || dc.DashboardTabID == nil {
			continue
		}
		if _, ok := tabs[*dc.DashboardTabID]; !ok {
			return fmt.Errorf("dashboard: dashcard %d references missing tab %d", id, *dc.DashboardTabID)
		}
	}
	for id, del := range s.TabDeletions {
		tab, ok := tabs[del.TabID]
		if !ok {
			continue
		}
		if !tab.IsRemoved {
			return fmt.Errorf("dashboard: deletion %s references tab %d which is not removed", id, del.TabID)
		}
		for _, dcID := range del.RemovedDashCardIDs {
			if dc, ok := s.DashCards[dcID]; ok && dc != nil && !dc.IsRemoved {
				return fmt.Errorf("dashboard: deletion %s lists dashcard %d which is not removed", id, dcID)
			}
		}
	}
	return nil
}

// Package dashboard holds the normalized in-memory state of a dashboard
// being edited (tabs, dashcards, cached card data, pending tab deletions and
// the tab selection) and the reducer that applies tab/card actions to it.
//
// Tab and dashcard ids below zero are client-local: they were minted by a
// TempIDAllocator and have not been persisted yet. Positive ids are assigned
// by the store on save.
package dashboard

import "encoding/json"

type (
	DashboardID   int
	TabID         int
	DashCardID    int
	CardID        int
	TabDeletionID string
)

// Dashboard owns the ordered tab list and the ordered dashcard id list.
type Dashboard struct {
	ID        DashboardID  `json:"id"`
	Name      string       `json:"name"`
	Tabs      []Tab        `json:"tabs,omitempty"`
	DashCards []DashCardID `json:"dashcards,omitempty"`
}

// Tab is a page of a dashboard. Deleted tabs stay in the list with
// IsRemoved set until the dashboard is saved.
type Tab struct {
	ID          TabID       `json:"id"`
	DashboardID DashboardID `json:"dashboard_id"`
	Name        string      `json:"name"`
	IsRemoved   bool        `json:"isRemoved,omitempty"`
}

// DashCard places a saved question (card) on a dashboard grid. A nil
// DashboardTabID means the dashboard has no tabs.
type DashCard struct {
	ID             DashCardID  `json:"id"`
	DashboardID    DashboardID `json:"dashboard_id"`
	CardID         CardID      `json:"card_id"`
	DashboardTabID *TabID      `json:"dashboard_tab_id"`
	Row            int         `json:"row"`
	Col            int         `json:"col"`
	SizeX          int         `json:"size_x"`
	SizeY          int         `json:"size_y"`
	IsDirty        bool        `json:"isDirty,omitempty"`
	IsRemoved      bool        `json:"isRemoved,omitempty"`
}

// OnTab reports whether the dashcard is assigned to tab id (nil matches
// dashcards without a tab).
func (d DashCard) OnTab(id *TabID) bool {
	switch {
	case id == nil && d.DashboardTabID == nil:
		return true
	case id == nil || d.DashboardTabID == nil:
		return false
	}
	return *id == *d.DashboardTabID
}

// TabDeletion records a pending tab removal that can still be undone.
type TabDeletion struct {
	ID                 TabDeletionID `json:"id"`
	TabID              TabID         `json:"tabId"`
	RemovedDashCardIDs []DashCardID  `json:"removedDashCardIds"`
}

// Position is a grid cell.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Placer finds a free grid position for a card of the given size among the
// cards already on a tab.
type Placer interface {
	Place(existing []DashCard, sizeX, sizeY int) Position
}

// PlacerFunc adapts a function to Placer.
type PlacerFunc func(existing []DashCard, sizeX, sizeY int) Position

func (f PlacerFunc) Place(existing []DashCard, sizeX, sizeY int) Position {
	return f(existing, sizeX, sizeY)
}

// CardData is the cached query result of a dashcard, kept opaque.
type CardData = json.RawMessage

// TabRef returns a pointer to id, for optional tab fields.
func TabRef(id TabID) *TabID {
	return &id
}

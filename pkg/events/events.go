// Package events defines the change messages a session emits after each
// applied transition. Every message implements Describe for logging.
package events

import (
	"fmt"
	"strings"

	"tableflip.dev/dashtab/pkg/dashboard"
)

// Msg is any change message.
type Msg interface {
	Describe() string
}

// ChangeType enumerates supported change actions.
type ChangeType string

const (
	// ChangeCreate indicates a new resource was created (or restored).
	ChangeCreate ChangeType = "create"
	// ChangeUpdate indicates an existing resource changed.
	ChangeUpdate ChangeType = "update"
	// ChangeDelete indicates a resource was removed.
	ChangeDelete ChangeType = "delete"
)

// TabRef identifies a tab in change messages.
type TabRef struct {
	ID   dashboard.TabID
	Name string
}

// Label returns a human-friendly identifier for the tab.
func (r TabRef) Label() string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("#%d", r.ID)
}

// DashboardLoadedMsg is emitted when the session switches to (or reloads) a
// dashboard.
type DashboardLoadedMsg struct {
	DashboardID dashboard.DashboardID
	Name        string
	Tabs        int
	DashCards   int
}

// Describe renders the load in a human-friendly format for logs.
func (m DashboardLoadedMsg) Describe() string {
	return fmt.Sprintf(`dashboard:%d name:%q tabs:%d dashcards:%d`, m.DashboardID, m.Name, m.Tabs, m.DashCards)
}

// TabChangeMsg announces created, renamed, removed or restored tabs.
type TabChangeMsg struct {
	DashboardID dashboard.DashboardID
	Action      ChangeType
	Current     TabRef
	Previous    *TabRef
}

// Describe implements the logging helper.
func (m TabChangeMsg) Describe() string {
	prev := ""
	if m.Previous != nil {
		prev = m.Previous.Label()
	}
	return fmt.Sprintf(`action:%q tab:%q prev:%q`, m.Action, m.Current.Label(), prev)
}

// TabOrderMsg carries the visible tab order after it changed.
type TabOrderMsg struct {
	DashboardID dashboard.DashboardID
	Order       []dashboard.TabID
}

func (m TabOrderMsg) Describe() string {
	ids := make([]string, 0, len(m.Order))
	for _, id := range m.Order {
		ids = append(ids, fmt.Sprint(id))
	}
	return fmt.Sprintf(`order:[%s]`, strings.Join(ids, " "))
}

// SelectionMsg announces a new tab selection. A nil TabID means nothing is
// selected.
type SelectionMsg struct {
	DashboardID dashboard.DashboardID
	TabID       *dashboard.TabID
}

func (m SelectionMsg) Describe() string {
	if m.TabID == nil {
		return `selected:none`
	}
	return fmt.Sprintf(`selected:%d`, *m.TabID)
}

// DashCardChangeMsg announces dashcard lifecycle changes.
type DashCardChangeMsg struct {
	DashboardID dashboard.DashboardID
	Action      ChangeType
	DashCardID  dashboard.DashCardID
	TabID       *dashboard.TabID
	Row, Col    int
}

// Describe renders the change in a human-friendly format for logs.
func (m DashCardChangeMsg) Describe() string {
	tab := "none"
	if m.TabID != nil {
		tab = fmt.Sprint(*m.TabID)
	}
	return fmt.Sprintf(`action:%q dashcard:%d tab:%s pos:%d,%d`, m.Action, m.DashCardID, tab, m.Row, m.Col)
}

// SavedMsg is emitted after client-local ids were reconciled with stored ids.
type SavedMsg struct {
	DashboardID dashboard.DashboardID
	Tabs        int
	DashCards   int
}

func (m SavedMsg) Describe() string {
	return fmt.Sprintf(`dashboard:%d tabs:%d dashcards:%d`, m.DashboardID, m.Tabs, m.DashCards)
}

// UndoOfferMsg tells listeners that a change can be undone with UndoID.
type UndoOfferMsg struct {
	UndoID  string
	Message string
}

func (m UndoOfferMsg) Describe() string {
	return fmt.Sprintf(`undo:%q message:%q`, m.UndoID, m.Message)
}

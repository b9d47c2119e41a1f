package events

import (
	"slices"

	"tableflip.dev/dashtab/pkg/dashboard"
)

// Diff compares two snapshots and returns the change messages that lead from
// prev to next, tabs first, then order, selection and dashcards.
func Diff(prev, next *dashboard.State) []Msg {
	nextDash, ok := next.Dashboard()
	if !ok {
		return nil
	}
	prevDash, ok := prev.Dashboard()
	if !ok || prevDash.ID != nextDash.ID {
		return []Msg{DashboardLoadedMsg{
			DashboardID: nextDash.ID,
			Name:        nextDash.Name,
			Tabs:        len(next.Tabs(false)),
			DashCards:   len(next.ActiveDashCards()),
		}}
	}

	var out []Msg
	id := nextDash.ID

	before := map[dashboard.TabID]dashboard.Tab{}
	for _, tab := range prevDash.Tabs {
		before[tab.ID] = tab
	}
	for _, tab := range nextDash.Tabs {
		old, existed := before[tab.ID]
		ref := TabRef{ID: tab.ID, Name: tab.Name}
		switch {
		case tab.IsRemoved && (!existed || old.IsRemoved):
		case !existed || (old.IsRemoved && !tab.IsRemoved):
			out = append(out, TabChangeMsg{DashboardID: id, Action: ChangeCreate, Current: ref})
		case tab.IsRemoved:
			out = append(out, TabChangeMsg{DashboardID: id, Action: ChangeDelete, Current: ref})
		case old.Name != tab.Name:
			out = append(out, TabChangeMsg{
				DashboardID: id,
				Action:      ChangeUpdate,
				Current:     ref,
				Previous:    &TabRef{ID: old.ID, Name: old.Name},
			})
		}
	}

	prevOrder, nextOrder := visibleOrder(prevDash.Tabs), visibleOrder(nextDash.Tabs)
	if sameMembers(prevOrder, nextOrder) && !slices.Equal(prevOrder, nextOrder) {
		out = append(out, TabOrderMsg{DashboardID: id, Order: nextOrder})
	}

	if !sameTab(prev.SelectedTabID, next.SelectedTabID) {
		msg := SelectionMsg{DashboardID: id}
		if next.SelectedTabID != nil {
			msg.TabID = dashboard.TabRef(*next.SelectedTabID)
		}
		out = append(out, msg)
	}

	for _, dcID := range nextDash.DashCards {
		dc, ok := next.DashCard(dcID)
		if !ok {
			continue
		}
		old, existed := prev.DashCard(dcID)
		var action ChangeType
		switch {
		case dc.IsRemoved && (!existed || old.IsRemoved):
			continue
		case !existed || (old.IsRemoved && !dc.IsRemoved):
			action = ChangeCreate
		case dc.IsRemoved:
			action = ChangeDelete
		case !sameTab(old.DashboardTabID, dc.DashboardTabID) || old.Row != dc.Row || old.Col != dc.Col:
			action = ChangeUpdate
		default:
			continue
		}
		out = append(out, DashCardChangeMsg{
			DashboardID: id,
			Action:      action,
			DashCardID:  dc.ID,
			TabID:       dc.DashboardTabID,
			Row:         dc.Row,
			Col:         dc.Col,
		})
	}
	return out
}

func visibleOrder(tabs []dashboard.Tab) []dashboard.TabID {
	out := make([]dashboard.TabID, 0, len(tabs))
	for _, tab := range tabs {
		if !tab.IsRemoved {
			out = append(out, tab.ID)
		}
	}
	return out
}

func sameMembers(a, b []dashboard.TabID) bool {
	if len(a) != len(b) {
		return false
	}
	as, bs := slices.Clone(a), slices.Clone(b)
	slices.Sort(as)
	slices.Sort(bs)
	return slices.Equal(as, bs)
}

func sameTab(a, b *dashboard.TabID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

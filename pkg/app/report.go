package app

import (
	"sort"

	"tableflip.dev/dashtab/pkg/dashboard"
)

// ReportSection groups the dashcards of one tab in grid order.
type ReportSection struct {
	Tab       *dashboard.Tab
	Selected  bool
	DashCards []dashboard.DashCard
}

// ReportResult summarizes a dashboard being edited.
type ReportResult struct {
	Dashboard        dashboard.Dashboard
	Sections         []ReportSection
	Total            int
	Dirty            int
	PendingDeletions int
}

// Report groups the active dashcards of the current dashboard by tab. A
// dashboard without tabs yields one section with a nil Tab.
func Report(state *dashboard.State) ReportResult {
	dash, ok := state.Dashboard()
	if !ok {
		return ReportResult{}
	}
	result := ReportResult{
		Dashboard:        *dash,
		PendingDeletions: len(state.TabDeletions),
	}

	cards := state.ActiveDashCards()
	for _, dc := range cards {
		result.Total++
		if dc.IsDirty {
			result.Dirty++
		}
	}

	tabs := state.Tabs(false)
	if len(tabs) == 0 {
		result.Sections = []ReportSection{{DashCards: inGridOrder(cards, nil)}}
		return result
	}
	for i := range tabs {
		tab := tabs[i]
		section := ReportSection{
			Tab:       &tab,
			DashCards: inGridOrder(cards, dashboard.TabRef(tab.ID)),
		}
		if state.SelectedTabID != nil && *state.SelectedTabID == tab.ID {
			section.Selected = true
		}
		result.Sections = append(result.Sections, section)
	}
	return result
}

func inGridOrder(cards []dashboard.DashCard, tab *dashboard.TabID) []dashboard.DashCard {
	out := make([]dashboard.DashCard, 0, len(cards))
	for _, dc := range cards {
		if dc.OnTab(tab) {
			out = append(out, dc)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

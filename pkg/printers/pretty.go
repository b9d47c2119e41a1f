package printers

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/dashtab/pkg/app"
	"tableflip.dev/dashtab/pkg/dashboard"
	"tableflip.dev/dashtab/pkg/events"
	"tableflip.dev/dashtab/pkg/undo"
)

type PrettyPrint struct {
	ShowID bool
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(color.Output, "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(color.Output, title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int, noun string) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(color.Output, title)
	_, _ = c.Fprintf(color.Output, " - %d %s", count, noun)
	if count != 1 {
		_, _ = c.Fprint(color.Output, "s")
	}
	_, _ = fmt.Fprintln(color.Output, "")
}

func (pp *PrettyPrint) none() {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(color.Output, " none\n\n")
}

// Dashboards lists saved dashboards.
func (pp *PrettyPrint) Dashboards(dashes []dashboard.Dashboard) {
	pp.TitleWithCount("Dashboards", len(dashes), "dashboard")
	if len(dashes) == 0 {
		pp.none()
		return
	}
	tbl := newTable()
	tbl.AddRow(bold("ID"), bold("Name"), bold("Tabs"), bold("Cards"))
	for _, d := range dashes {
		tbl.AddRow(d.ID, d.Name, len(d.Tabs), len(d.DashCards))
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
	pp.NewLine()
}

// Tabs lists the visible tabs, marking the selected one.
func (pp *PrettyPrint) Tabs(state *dashboard.State) {
	tabs := state.Tabs(false)
	pp.TitleWithCount("Tabs", len(tabs), "tab")
	if len(tabs) == 0 {
		pp.none()
		return
	}
	sel := color.New(color.FgHiGreen, color.Bold)
	tmp := color.New(color.FgHiYellow, color.Italic, color.Faint)

	tbl := newTable()
	tbl.AddRow("", bold("ID"), bold("Name"), bold("Slug"))
	for _, tab := range tabs {
		marker := " "
		if state.SelectedTabID != nil && *state.SelectedTabID == tab.ID {
			marker = sel.Sprint("*")
		}
		id := fmt.Sprint(tab.ID)
		if tab.ID < 0 {
			id = tmp.Sprint(id)
		}
		tbl.AddRow(marker, id, tab.Name, dashboard.TabSlug(tab))
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
	pp.NewLine()
}

// Report prints dashcards grouped by tab.
func (pp *PrettyPrint) Report(r app.ReportResult) {
	pp.Title(r.Dashboard.Name)
	c := color.New(color.Faint)
	_, _ = c.Fprintf(color.Output, "%d cards, %d unsaved, %d pending tab deletions\n\n",
		r.Total, r.Dirty, r.PendingDeletions)

	for _, s := range r.Sections {
		if s.Tab != nil {
			title := s.Tab.Name
			if s.Selected {
				title += " *"
			}
			pp.TitleWithCount(title, len(s.DashCards), "card")
		}
		if len(s.DashCards) == 0 {
			pp.none()
			continue
		}
		dirty := color.New(color.FgHiYellow)
		tbl := newTable()
		tbl.AddRow(bold("ID"), bold("Card"), bold("Pos"), bold("Size"), "")
		for _, dc := range s.DashCards {
			mark := ""
			if dc.IsDirty {
				mark = dirty.Sprint("unsaved")
			}
			tbl.AddRow(dc.ID, dc.CardID,
				fmt.Sprintf("%d,%d", dc.Row, dc.Col),
				fmt.Sprintf("%dx%d", dc.SizeX, dc.SizeY),
				mark)
		}
		_, _ = fmt.Fprintln(color.Output, tbl)
		pp.NewLine()
	}
}

// UndoEntries lists undo entries, newest last.
func (pp *PrettyPrint) UndoEntries(entries []undo.Entry) {
	pp.TitleWithCount("Undo", len(entries), "entry")
	if len(entries) == 0 {
		pp.none()
		return
	}
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	tbl := newTable()
	for _, e := range entries {
		tbl.AddRow(y.Sprint(e.ID), e.Message, e.CreatedAt.Format("15:04:05"))
	}
	_, _ = fmt.Fprintln(color.Output, tbl)
	pp.NewLine()
}

// Events prints change messages, one per line. Load messages are skipped
// since every command starts by loading the dashboard.
func (pp *PrettyPrint) Events(msgs []events.Msg) {
	f := color.New(color.Faint)
	for _, m := range msgs {
		if _, ok := m.(events.DashboardLoadedMsg); ok {
			continue
		}
		_, _ = f.Fprintln(color.Output, strings.TrimSpace(m.Describe()))
	}
}

// Undo announces an undo entry the user can apply.
func (pp *PrettyPrint) Undo(e undo.Entry) {
	y := color.New(color.FgHiYellow)
	_, _ = fmt.Fprintf(color.Output, "%s  undo with: dashtab undo %s\n", e.Message, y.Sprint(e.ID))
}

func newTable() *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	return tbl
}

func bold(s string) string {
	return color.New(color.Bold).Sprint(s)
}

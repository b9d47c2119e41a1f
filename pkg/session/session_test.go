package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"tableflip.dev/dashtab/pkg/dashboard"
	"tableflip.dev/dashtab/pkg/events"
	"tableflip.dev/dashtab/pkg/undo"
)

var rowPlacer = dashboard.PlacerFunc(func(existing []dashboard.DashCard, sizeX, sizeY int) dashboard.Position {
	row := 0
	for _, dc := range existing {
		if b := dc.Row + dc.SizeY; b > row {
			row = b
		}
	}
	return dashboard.Position{Row: row}
})

// memorySaver mimics the store contract: removed items are dropped and
// negative ids are replaced by increasing positive ids.
type memorySaver struct {
	next  int
	calls int
	err   error
}

func (m *memorySaver) SaveDashboard(_ context.Context, dash dashboard.Dashboard, cards []dashboard.DashCard) (dashboard.Dashboard, []dashboard.DashCard, error) {
	m.calls++
	if m.err != nil {
		return dashboard.Dashboard{}, nil, m.err
	}
	alloc := func(id int) int {
		if id > 0 {
			return id
		}
		m.next++
		return m.next
	}
	tabMap := map[dashboard.TabID]dashboard.TabID{}
	out := dashboard.Dashboard{ID: dash.ID, Name: dash.Name}
	for _, tab := range dash.Tabs {
		if tab.IsRemoved {
			continue
		}
		id := dashboard.TabID(alloc(int(tab.ID)))
		tabMap[tab.ID] = id
		tab.ID = id
		out.Tabs = append(out.Tabs, tab)
	}
	var outCards []dashboard.DashCard
	for _, dc := range cards {
		if dc.IsRemoved {
			continue
		}
		dc.ID = dashboard.DashCardID(alloc(int(dc.ID)))
		if dc.DashboardTabID != nil {
			dc.DashboardTabID = dashboard.TabRef(tabMap[*dc.DashboardTabID])
		}
		dc.IsDirty = false
		outCards = append(outCards, dc)
		out.DashCards = append(out.DashCards, dc.ID)
	}
	return out, outCards, nil
}

func loadedSession(t *testing.T) *Session {
	t.Helper()
	s := New(WithPlacer(rowPlacer))
	err := s.Load(dashboard.Dashboard{ID: 7, Name: "Sales"}, []dashboard.DashCard{
		{ID: 100, CardID: 1, SizeX: 4, SizeY: 4},
		{ID: 101, CardID: 2, SizeX: 4, SizeY: 4, Row: 4},
	}, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func drain(s *Session) []events.Msg {
	return s.Pending()
}

func TestCreateNewTabAllocatesIDs(t *testing.T) {
	s := loadedSession(t)
	first, err := s.CreateNewTab()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := s.CreateNewTab()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first != -2 || second != -4 {
		t.Fatalf("unexpected ids %d, %d", first, second)
	}
	var ids []dashboard.TabID
	for _, tab := range s.Snapshot().Tabs(false) {
		ids = append(ids, tab.ID)
	}
	if len(ids) != 3 || ids[0] != -1 || ids[1] != -2 || ids[2] != -4 {
		t.Fatalf("unexpected tabs %v", ids)
	}
	if sel := s.Snapshot().SelectedTabID; sel == nil || *sel != -4 {
		t.Fatalf("newest tab should be selected, got %v", sel)
	}
}

func TestCreateNewTabFailureKeepsSequence(t *testing.T) {
	s := New()
	if _, err := s.CreateNewTab(); !errors.Is(err, dashboard.ErrInvariantViolation) {
		t.Fatalf("expected invariant violation without dashboard, got %v", err)
	}
	if got := s.tabIDs.Peek(); got != -2 {
		t.Fatalf("failed create should not consume an id, next is %d", got)
	}
}

func TestDeleteTabUndo(t *testing.T) {
	s := loadedSession(t)
	tab, _ := s.CreateNewTab()
	if _, err := s.MoveDashCardToTab(101, tab); err != nil {
		t.Fatalf("move: %v", err)
	}
	drain(s)

	entry, err := s.DeleteTab(tab)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if entry.Message != `Deleted "Tab 2"` {
		t.Fatalf("unexpected undo message %q", entry.Message)
	}
	if dc, _ := s.Snapshot().DashCard(101); !dc.IsRemoved {
		t.Fatal("dashcard on deleted tab should be removed")
	}
	var offered bool
	for _, msg := range drain(s) {
		if m, ok := msg.(events.UndoOfferMsg); ok && m.UndoID == entry.ID {
			offered = true
		}
	}
	if !offered {
		t.Fatal("expected an undo offer event")
	}

	if _, err := s.Undo(entry.ID); err != nil {
		t.Fatalf("undo: %v", err)
	}
	if dc, _ := s.Snapshot().DashCard(101); dc.IsRemoved {
		t.Fatal("undo should restore the dashcard")
	}
	if _, err := s.Undo(entry.ID); !errors.Is(err, undo.ErrNotFound) {
		t.Fatalf("second undo should fail with ErrNotFound, got %v", err)
	}
}

func TestMoveDashCardUndoLatest(t *testing.T) {
	s := loadedSession(t)
	tab, _ := s.CreateNewTab()
	before, _ := s.Snapshot().DashCard(100)

	if _, err := s.MoveDashCardToTab(100, tab); err != nil {
		t.Fatalf("move: %v", err)
	}
	if dc, _ := s.Snapshot().DashCard(100); !dc.OnTab(dashboard.TabRef(tab)) {
		t.Fatalf("dashcard should be on tab %d, got %+v", tab, dc)
	}
	if _, err := s.UndoLatest(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	after, _ := s.Snapshot().DashCard(100)
	if !after.OnTab(before.DashboardTabID) || after.Row != before.Row || after.Col != before.Col {
		t.Fatalf("dashcard not restored: before %+v after %+v", before, after)
	}
}

func TestUndoMoveAfterOtherEdits(t *testing.T) {
	s := loadedSession(t)
	first, _ := s.CreateNewTab()
	before, _ := s.Snapshot().DashCard(101)

	entry, err := s.MoveDashCardToTab(101, first)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	other, err := s.CreateNewTab()
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.RenameTab(first, "Moved here"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if err := s.MoveTab(other, first+1); err != nil {
		t.Fatalf("move tab: %v", err)
	}
	deleted, err := s.DeleteTab(other)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Undo(deleted.ID); err != nil {
		t.Fatalf("undo delete: %v", err)
	}

	if _, err := s.Undo(entry.ID); err != nil {
		t.Fatalf("undo move: %v", err)
	}
	after, _ := s.Snapshot().DashCard(101)
	if !after.OnTab(before.DashboardTabID) || after.Row != before.Row || after.Col != before.Col {
		t.Fatalf("dashcard not restored: before %+v after %+v", before, after)
	}
	if !after.IsDirty {
		t.Fatal("restored dashcard should stay dirty")
	}
	if err := s.Snapshot().Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestMoveDashCardToDeletedTab(t *testing.T) {
	s := loadedSession(t)
	tab, _ := s.CreateNewTab()
	if _, err := s.DeleteTab(tab); err != nil {
		t.Fatalf("delete: %v", err)
	}
	entries := len(s.UndoEntries())
	if _, err := s.MoveDashCardToTab(100, tab); !errors.Is(err, dashboard.ErrInvariantViolation) {
		t.Fatalf("expected invariant violation, got %v", err)
	}
	if got := len(s.UndoEntries()); got != entries {
		t.Fatalf("failed move registered an undo entry: %d entries, want %d", got, entries)
	}
	if err := s.Snapshot().Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestDismissUndo(t *testing.T) {
	s := loadedSession(t)
	tab, _ := s.CreateNewTab()
	entry, err := s.DeleteTab(tab)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DismissUndo(entry.ID); err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	if len(s.UndoEntries()) != 0 {
		t.Fatal("dismissed entry should be gone")
	}
	if _, err := s.Undo(entry.ID); !errors.Is(err, undo.ErrNotFound) {
		t.Fatalf("undo after dismiss should fail with ErrNotFound, got %v", err)
	}
	if err := s.DismissUndo(entry.ID); !errors.Is(err, undo.ErrNotFound) {
		t.Fatalf("second dismiss should fail with ErrNotFound, got %v", err)
	}
	if tabs := s.Snapshot().Tabs(false); len(tabs) != 1 {
		t.Fatalf("dismiss should leave the tab deleted, got %+v", tabs)
	}
}

func TestMoveDashCardWithoutTabs(t *testing.T) {
	s := loadedSession(t)
	if _, err := s.MoveDashCardToTab(100, 1); err == nil {
		t.Fatal("expected error moving a dashcard of a dashboard without tabs")
	}
	if len(s.UndoEntries()) != 0 {
		t.Fatal("failed move should not register an undo entry")
	}
}

func TestAddDashCardDefaultsToSelectedTab(t *testing.T) {
	s := loadedSession(t)
	tab, _ := s.CreateNewTab()
	id, err := s.AddDashCard(9, nil, 6, 3)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	dc, ok := s.Snapshot().DashCard(id)
	if !ok || id != -1 || !dc.OnTab(dashboard.TabRef(tab)) {
		t.Fatalf("unexpected dashcard %d %+v", id, dc)
	}
}

func TestSaveReconciles(t *testing.T) {
	s := loadedSession(t)
	tab, _ := s.CreateNewTab()
	added, _ := s.AddDashCard(9, dashboard.TabRef(tab), 6, 3)
	if err := s.SetDashCardData(added, dashboard.CardData(`{"rows":[]}`)); err != nil {
		t.Fatalf("set data: %v", err)
	}
	if _, err := s.MoveDashCardToTab(101, tab); err != nil {
		t.Fatalf("move: %v", err)
	}

	saver := &memorySaver{next: 200}
	if err := s.Save(context.Background(), saver); err != nil {
		t.Fatalf("save: %v", err)
	}
	snap := s.Snapshot()
	if err := snap.Validate(); err != nil {
		t.Fatalf("validate after save: %v", err)
	}
	for _, tab := range snap.Tabs(true) {
		if tab.ID < 0 {
			t.Fatalf("tab %d kept its temporary id", tab.ID)
		}
	}
	tabs := snap.Tabs(false)
	if sel := snap.SelectedTabID; sel == nil || *sel != tabs[1].ID {
		t.Fatalf("selection should stay on the second tab, got %v", sel)
	}
	var newID dashboard.DashCardID
	for _, dc := range snap.ActiveDashCards() {
		if dc.CardID == 9 {
			newID = dc.ID
		}
	}
	if newID <= 0 || string(snap.DashCardData[newID]) != `{"rows":[]}` {
		t.Fatalf("card data should follow the saved dashcard, id %d data %v", newID, snap.DashCardData)
	}
	if len(s.UndoEntries()) != 0 {
		t.Fatal("save should drop undo entries")
	}
	var saved bool
	for _, msg := range drain(s) {
		if _, ok := msg.(events.SavedMsg); ok {
			saved = true
		}
	}
	if !saved {
		t.Fatal("expected a saved event")
	}
}

func TestSaveFailureKeepsState(t *testing.T) {
	s := loadedSession(t)
	_, _ = s.CreateNewTab()
	before := s.Snapshot()
	if err := s.Save(context.Background(), &memorySaver{err: errors.New("disk full")}); err == nil {
		t.Fatal("expected save error")
	}
	if s.Snapshot() != before {
		t.Fatal("failed save should leave the state untouched")
	}
}

func TestSaveWithoutDashboard(t *testing.T) {
	if err := New().Save(context.Background(), &memorySaver{}); !errors.Is(err, ErrNoDashboard) {
		t.Fatalf("expected ErrNoDashboard, got %v", err)
	}
}

func TestDraftResume(t *testing.T) {
	s := loadedSession(t)
	tab, _ := s.CreateNewTab()
	_, _ = s.AddDashCard(3, dashboard.TabRef(tab), 2, 2)
	entry, err := s.DeleteTab(tab)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	d, err := s.Draft()
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Draft
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	resumed := New(WithPlacer(rowPlacer))
	if err := resumed.Resume(decoded); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if _, err := resumed.Undo(entry.ID); err != nil {
		t.Fatalf("undo after resume: %v", err)
	}
	if got := len(resumed.Snapshot().Tabs(false)); got != 2 {
		t.Fatalf("expected restored tab, got %d tabs", got)
	}
	next, _ := resumed.CreateNewTab()
	if next != -4 {
		t.Fatalf("tab ids should continue after resume, got %d", next)
	}
	id, _ := resumed.AddDashCard(4, nil, 1, 1)
	if id != -2 {
		t.Fatalf("dashcard ids should continue after resume, got %d", id)
	}
}

func TestResumeRejectsEmptyDraft(t *testing.T) {
	if err := New().Resume(Draft{}); err == nil {
		t.Fatal("expected error for an empty draft")
	}
}

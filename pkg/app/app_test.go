package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"tableflip.dev/dashtab/pkg/dashboard"
	"tableflip.dev/dashtab/pkg/session"
	"tableflip.dev/dashtab/pkg/store"
)

type memoryPersistence struct {
	mu         sync.Mutex
	counter    int
	dashboards map[dashboard.DashboardID]savedDashboard
	drafts     map[dashboard.DashboardID][]byte
}

type savedDashboard struct {
	dash  dashboard.Dashboard
	cards []dashboard.DashCard
}

func newMemoryPersistence() *memoryPersistence {
	return &memoryPersistence{
		dashboards: make(map[dashboard.DashboardID]savedDashboard),
		drafts:     make(map[dashboard.DashboardID][]byte),
	}
}

func (m *memoryPersistence) newID() int {
	m.counter++
	return m.counter
}

func (m *memoryPersistence) Dashboards(_ context.Context) ([]dashboard.Dashboard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]dashboard.Dashboard, 0, len(m.dashboards))
	for _, d := range m.dashboards {
		out = append(out, d.dash)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryPersistence) Dashboard(_ context.Context, id dashboard.DashboardID) (dashboard.Dashboard, []dashboard.DashCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dashboards[id]
	if !ok {
		return dashboard.Dashboard{}, nil, fmt.Errorf("%w: dashboard %d", store.ErrNotFound, id)
	}
	return d.dash, append([]dashboard.DashCard(nil), d.cards...), nil
}

func (m *memoryPersistence) CreateDashboard(_ context.Context, name string) (dashboard.Dashboard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dash := dashboard.Dashboard{ID: dashboard.DashboardID(m.newID()), Name: name}
	m.dashboards[dash.ID] = savedDashboard{dash: dash}
	return dash, nil
}

func (m *memoryPersistence) SaveDashboard(_ context.Context, dash dashboard.Dashboard, cards []dashboard.DashCard) (dashboard.Dashboard, []dashboard.DashCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.dashboards[dash.ID]; !ok {
		return dashboard.Dashboard{}, nil, store.ErrNotFound
	}
	out := dashboard.Dashboard{ID: dash.ID, Name: dash.Name}
	tabIDs := map[dashboard.TabID]dashboard.TabID{}
	for _, tab := range dash.Tabs {
		if tab.IsRemoved {
			continue
		}
		id := tab.ID
		if id <= 0 {
			id = dashboard.TabID(m.newID())
		}
		tabIDs[tab.ID] = id
		tab.ID = id
		out.Tabs = append(out.Tabs, tab)
	}
	var saved []dashboard.DashCard
	for _, dc := range cards {
		if dc.IsRemoved {
			continue
		}
		if dc.ID <= 0 {
			dc.ID = dashboard.DashCardID(m.newID())
		}
		if dc.DashboardTabID != nil {
			dc.DashboardTabID = dashboard.TabRef(tabIDs[*dc.DashboardTabID])
		}
		dc.IsDirty = false
		saved = append(saved, dc)
		out.DashCards = append(out.DashCards, dc.ID)
	}
	m.dashboards[dash.ID] = savedDashboard{dash: out, cards: saved}
	return out, saved, nil
}

func (m *memoryPersistence) LoadDraft(_ context.Context, id dashboard.DashboardID) (session.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.drafts[id]
	if !ok {
		return session.Draft{}, store.ErrNotFound
	}
	var d session.Draft
	err := json.Unmarshal(data, &d)
	return d, err
}

func (m *memoryPersistence) SaveDraft(_ context.Context, d session.Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[d.DashboardID] = data
	return nil
}

func (m *memoryPersistence) DeleteDraft(_ context.Context, id dashboard.DashboardID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, id)
	return nil
}

func (m *memoryPersistence) Watch(_ context.Context) (<-chan store.Event, error) {
	return nil, errors.New("watch not supported")
}

var firstFree = dashboard.PlacerFunc(func(existing []dashboard.DashCard, sizeX, sizeY int) dashboard.Position {
	return dashboard.Position{Row: len(existing) * 10}
})

func newService(t *testing.T) (*Service, dashboard.Dashboard) {
	t.Helper()
	svc := &Service{Persistence: newMemoryPersistence(), Placer: firstFree}
	dash, err := svc.CreateDashboard(context.Background(), "Sales")
	if err != nil {
		t.Fatalf("create dashboard: %v", err)
	}
	return svc, dash
}

func TestServiceRequiresPersistence(t *testing.T) {
	svc := &Service{}
	if _, err := svc.Dashboards(context.Background()); err == nil {
		t.Fatal("expected error without persistence")
	}
	if _, err := svc.Open(context.Background(), 1, ""); err == nil {
		t.Fatal("expected error without persistence")
	}
}

func TestEditPersistsDraftAcrossOpens(t *testing.T) {
	ctx := context.Background()
	svc, dash := newService(t)

	_, err := svc.Edit(ctx, dash.ID, func(sess *session.Session) error {
		_, err := sess.CreateNewTab()
		return err
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if has, _ := svc.HasDraft(ctx, dash.ID); !has {
		t.Fatal("edit should leave a draft")
	}

	sess, err := svc.Edit(ctx, dash.ID, func(sess *session.Session) error {
		id, err := sess.CreateNewTab()
		if err != nil {
			return err
		}
		if id != -4 {
			return fmt.Errorf("expected tab id -4 after reopening, got %d", id)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("second edit: %v", err)
	}
	if got := len(sess.Snapshot().Tabs(false)); got != 3 {
		t.Fatalf("expected 3 tabs, got %d", got)
	}
}

func TestEditFailureDoesNotCommit(t *testing.T) {
	ctx := context.Background()
	svc, dash := newService(t)
	_, err := svc.Edit(ctx, dash.ID, func(sess *session.Session) error {
		_, _ = sess.CreateNewTab()
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if has, _ := svc.HasDraft(ctx, dash.ID); has {
		t.Fatal("failed edit should not write a draft")
	}
}

func TestSaveDropsDraftAndReloads(t *testing.T) {
	ctx := context.Background()
	svc, dash := newService(t)

	sess, err := svc.Edit(ctx, dash.ID, func(sess *session.Session) error {
		if _, err := sess.CreateNewTab(); err != nil {
			return err
		}
		_, err := sess.AddDashCard(42, nil, 4, 4)
		return err
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := svc.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	if has, _ := svc.HasDraft(ctx, dash.ID); has {
		t.Fatal("save should drop the draft")
	}

	reopened, err := svc.Open(ctx, dash.ID, "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	snap := reopened.Snapshot()
	tabs := snap.Tabs(false)
	if len(tabs) != 2 || tabs[0].ID <= 0 || tabs[1].ID <= 0 {
		t.Fatalf("expected two stored tabs, got %+v", tabs)
	}
	cards := snap.ActiveDashCards()
	if len(cards) != 1 || cards[0].ID <= 0 || !cards[0].OnTab(dashboard.TabRef(tabs[1].ID)) {
		t.Fatalf("unexpected cards %+v", cards)
	}
}

func TestOpenWithSlug(t *testing.T) {
	ctx := context.Background()
	svc, dash := newService(t)
	sess, _ := svc.Edit(ctx, dash.ID, func(sess *session.Session) error {
		_, err := sess.CreateNewTab()
		return err
	})
	if err := svc.Save(ctx, sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	second := sess.Snapshot().Tabs(false)[1]

	reopened, err := svc.Open(ctx, dash.ID, dashboard.TabSlug(second))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if sel := reopened.Snapshot().SelectedTabID; sel == nil || *sel != second.ID {
		t.Fatalf("slug should select tab %d, got %v", second.ID, sel)
	}
}

func TestDiscard(t *testing.T) {
	ctx := context.Background()
	svc, dash := newService(t)
	_, _ = svc.Edit(ctx, dash.ID, func(sess *session.Session) error {
		_, err := sess.CreateNewTab()
		return err
	})
	if err := svc.Discard(ctx, dash.ID); err != nil {
		t.Fatalf("discard: %v", err)
	}
	sess, err := svc.Open(ctx, dash.ID, "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if got := len(sess.Snapshot().Tabs(false)); got != 0 {
		t.Fatalf("discard should drop unsaved tabs, got %d", got)
	}
}

func TestReport(t *testing.T) {
	ctx := context.Background()
	svc, dash := newService(t)
	sess, err := svc.Edit(ctx, dash.ID, func(sess *session.Session) error {
		if _, err := sess.AddDashCard(1, nil, 4, 4); err != nil {
			return err
		}
		if _, err := sess.AddDashCard(2, nil, 4, 4); err != nil {
			return err
		}
		tab, err := sess.CreateNewTab()
		if err != nil {
			return err
		}
		_, err = sess.DeleteTab(tab)
		return err
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	r := Report(sess.Snapshot())
	if r.Total != 2 || r.Dirty != 2 || r.PendingDeletions != 1 {
		t.Fatalf("unexpected totals %+v", r)
	}
	if len(r.Sections) != 1 || r.Sections[0].Tab == nil || !r.Sections[0].Selected {
		t.Fatalf("expected one selected section, got %+v", r.Sections)
	}
	cards := r.Sections[0].DashCards
	if len(cards) != 2 || cards[0].Row > cards[1].Row {
		t.Fatalf("cards should be in grid order, got %+v", cards)
	}

	if empty := Report(dashboard.NewState()); len(empty.Sections) != 0 {
		t.Fatalf("expected empty report, got %+v", empty)
	}
}

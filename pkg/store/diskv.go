package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/peterbourgon/diskv/v3"
	log "github.com/sirupsen/logrus"

	"tableflip.dev/dashtab/pkg/dashboard"
	"tableflip.dev/dashtab/pkg/session"
)

// ErrNotFound is returned when a dashboard or draft does not exist.
var ErrNotFound = errors.New("store: not found")

// Config locates the on-disk store.
type Config interface {
	BasePath() string
}

// DraftStore keeps unsaved editing sessions, one per dashboard.
type DraftStore interface {
	LoadDraft(ctx context.Context, id dashboard.DashboardID) (session.Draft, error)
	SaveDraft(ctx context.Context, d session.Draft) error
	DeleteDraft(ctx context.Context, id dashboard.DashboardID) error
}

// Persistence defines the persistence contract for saved dashboards.
type Persistence interface {
	DraftStore
	Dashboards(ctx context.Context) ([]dashboard.Dashboard, error)
	Dashboard(ctx context.Context, id dashboard.DashboardID) (dashboard.Dashboard, []dashboard.DashCard, error)
	CreateDashboard(ctx context.Context, name string) (dashboard.Dashboard, error)
	SaveDashboard(ctx context.Context, dash dashboard.Dashboard, cards []dashboard.DashCard) (dashboard.Dashboard, []dashboard.DashCard, error)
	Watch(ctx context.Context) (<-chan Event, error)
}

const (
	dashboardsBucket = "dashboards"
	draftsBucket     = "drafts"
	sequenceFile     = ".sequence.json"
)

// Load creates a Persistence backed by diskv using the provided config.
func Load(cfg Config) (Persistence, error) {
	if cfg == nil || cfg.BasePath() == "" {
		return nil, errors.New("store: base path required")
	}
	basePath := cfg.BasePath()
	return &persistence{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	}), basePath: basePath}, nil
}

type persistence struct {
	mu       sync.Mutex
	d        *diskv.Diskv
	basePath string
}

// record is the stored form of a saved dashboard.
type record struct {
	Dashboard dashboard.Dashboard  `json:"dashboard"`
	DashCards []dashboard.DashCard `json:"dashcards"`
	SavedAt   time.Time            `json:"savedAt"`
}

func (p *persistence) readRecord(key string) (record, error) {
	val, err := p.d.Read(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return record{}, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return record{}, err
	}
	var r record
	if err := json.Unmarshal(val, &r); err != nil {
		return record{}, fmt.Errorf("store: decode %s: %w", key, err)
	}
	return r, nil
}

func (p *persistence) writeJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.d.Write(key, data)
}

func (p *persistence) Dashboards(ctx context.Context) ([]dashboard.Dashboard, error) {
	var all []dashboard.Dashboard
	for key := range p.d.KeysPrefix(dashboardsBucket+"-", ctx.Done()) {
		r, err := p.readRecord(key)
		if err != nil {
			log.WithField("key", key).WithError(err).Warn("skipping unreadable dashboard")
			continue
		}
		all = append(all, r.Dashboard)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].ID < all[j].ID
	})
	return all, nil
}

func (p *persistence) Dashboard(_ context.Context, id dashboard.DashboardID) (dashboard.Dashboard, []dashboard.DashCard, error) {
	r, err := p.readRecord(dashboardKey(id))
	if err != nil {
		return dashboard.Dashboard{}, nil, err
	}
	return r.Dashboard, r.DashCards, nil
}

func (p *persistence) CreateDashboard(_ context.Context, name string) (dashboard.Dashboard, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return dashboard.Dashboard{}, errors.New("store: dashboard name required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	seq, err := p.loadSequence()
	if err != nil {
		return dashboard.Dashboard{}, fmt.Errorf("store: load sequence: %w", err)
	}
	seq.Dashboard++
	dash := dashboard.Dashboard{ID: dashboard.DashboardID(seq.Dashboard), Name: name}
	if err := p.saveSequence(seq); err != nil {
		return dashboard.Dashboard{}, fmt.Errorf("store: save sequence: %w", err)
	}
	if err := p.writeJSON(dashboardKey(dash.ID), record{Dashboard: dash, SavedAt: time.Now().UTC()}); err != nil {
		return dashboard.Dashboard{}, err
	}
	return dash, nil
}

// SaveDashboard writes dash and cards. Removed tabs and dashcards are
// dropped, temporary ids are replaced with stored ids and dashcard tab
// references follow their tab. The returned tabs and dashcards line up with
// the non-removed input ones.
func (p *persistence) SaveDashboard(_ context.Context, dash dashboard.Dashboard, cards []dashboard.DashCard) (dashboard.Dashboard, []dashboard.DashCard, error) {
	if dash.ID <= 0 {
		return dashboard.Dashboard{}, nil, fmt.Errorf("store: dashboard id %d is not stored", dash.ID)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.d.Has(dashboardKey(dash.ID)) {
		return dashboard.Dashboard{}, nil, fmt.Errorf("%w: dashboard %d", ErrNotFound, dash.ID)
	}
	seq, err := p.loadSequence()
	if err != nil {
		return dashboard.Dashboard{}, nil, fmt.Errorf("store: load sequence: %w", err)
	}

	out := dashboard.Dashboard{ID: dash.ID, Name: dash.Name}
	tabIDs := make(map[dashboard.TabID]dashboard.TabID, len(dash.Tabs))
	for _, tab := range dash.Tabs {
		if tab.IsRemoved {
			continue
		}
		id := tab.ID
		if id <= 0 {
			seq.Tab++
			id = dashboard.TabID(seq.Tab)
		}
		tabIDs[tab.ID] = id
		out.Tabs = append(out.Tabs, dashboard.Tab{ID: id, DashboardID: dash.ID, Name: tab.Name})
	}

	saved := make([]dashboard.DashCard, 0, len(cards))
	for _, dc := range cards {
		if dc.IsRemoved {
			continue
		}
		if dc.DashboardTabID != nil {
			id, ok := tabIDs[*dc.DashboardTabID]
			if !ok {
				return dashboard.Dashboard{}, nil, fmt.Errorf("store: dashcard %d references unsaved tab %d", dc.ID, *dc.DashboardTabID)
			}
			dc.DashboardTabID = dashboard.TabRef(id)
		}
		if dc.ID <= 0 {
			seq.DashCard++
			dc.ID = dashboard.DashCardID(seq.DashCard)
		}
		dc.DashboardID = dash.ID
		dc.IsDirty = false
		saved = append(saved, dc)
		out.DashCards = append(out.DashCards, dc.ID)
	}

	if err := p.saveSequence(seq); err != nil {
		return dashboard.Dashboard{}, nil, fmt.Errorf("store: save sequence: %w", err)
	}
	if err := p.writeJSON(dashboardKey(dash.ID), record{Dashboard: out, DashCards: saved, SavedAt: time.Now().UTC()}); err != nil {
		return dashboard.Dashboard{}, nil, err
	}
	log.WithFields(log.Fields{
		"dashboard": dash.ID,
		"tabs":      len(out.Tabs),
		"dashcards": len(saved),
	}).Debug("dashboard written")
	return out, saved, nil
}

func (p *persistence) LoadDraft(_ context.Context, id dashboard.DashboardID) (session.Draft, error) {
	val, err := p.d.Read(draftKey(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return session.Draft{}, fmt.Errorf("%w: draft %d", ErrNotFound, id)
		}
		return session.Draft{}, err
	}
	var d session.Draft
	if err := json.Unmarshal(val, &d); err != nil {
		return session.Draft{}, fmt.Errorf("store: decode draft %d: %w", id, err)
	}
	return d, nil
}

func (p *persistence) SaveDraft(_ context.Context, d session.Draft) error {
	if d.DashboardID <= 0 {
		return fmt.Errorf("store: draft for dashboard %d", d.DashboardID)
	}
	return p.writeJSON(draftKey(d.DashboardID), d)
}

func (p *persistence) DeleteDraft(_ context.Context, id dashboard.DashboardID) error {
	if err := p.d.Erase(draftKey(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// sequence holds the last stored id of each kind.
type sequence struct {
	Dashboard int `json:"dashboard"`
	Tab       int `json:"tab"`
	DashCard  int `json:"dashcard"`
}

func (p *persistence) sequencePath() string {
	return filepath.Join(p.basePath, sequenceFile)
}

func (p *persistence) loadSequence() (sequence, error) {
	if err := os.MkdirAll(p.basePath, 0o755); err != nil {
		return sequence{}, err
	}
	data, err := os.ReadFile(p.sequencePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return sequence{}, nil
		}
		return sequence{}, err
	}
	var seq sequence
	if len(data) == 0 {
		return seq, nil
	}
	if err := json.Unmarshal(data, &seq); err != nil {
		return sequence{}, err
	}
	return seq, nil
}

func (p *persistence) saveSequence(seq sequence) error {
	if err := os.MkdirAll(p.basePath, 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(seq)
	if err != nil {
		return err
	}
	path := p.sequencePath()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

// dashboardKey makes `dashboards-<id>`.
func dashboardKey(id dashboard.DashboardID) string {
	return fmt.Sprintf("%s-%d", dashboardsBucket, id)
}

// draftKey makes `drafts-<id>`.
func draftKey(id dashboard.DashboardID) string {
	return fmt.Sprintf("%s-%d", draftsBucket, id)
}

// idFromFile parses the dashboard id diskv stores as the file name.
func idFromFile(name string) (dashboard.DashboardID, bool) {
	id, err := strconv.Atoi(name)
	if err != nil || id <= 0 {
		return 0, false
	}
	return dashboard.DashboardID(id), true
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tableflip.dev/dashtab/pkg/dashboard"
	"tableflip.dev/dashtab/pkg/session"
)

// RedisDrafts keeps drafts in redis so several machines can continue the
// same editing session. Drafts expire after ttl without writes.
type RedisDrafts struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisDrafts creates a draft store on client. A ttl <= 0 keeps drafts
// until they are deleted.
func NewRedisDrafts(client *redis.Client, ttl time.Duration) *RedisDrafts {
	if client == nil {
		panic("store.NewRedisDrafts: client is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisDrafts{redis: client, ttl: ttl}
}

func (r *RedisDrafts) LoadDraft(ctx context.Context, id dashboard.DashboardID) (session.Draft, error) {
	data, err := r.redis.Get(ctx, draftRedisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.Draft{}, fmt.Errorf("%w: draft %d", ErrNotFound, id)
		}
		return session.Draft{}, err
	}
	var d session.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		// A draft we cannot read is worthless; drop it.
		_ = r.redis.Del(ctx, draftRedisKey(id)).Err()
		return session.Draft{}, fmt.Errorf("store: decode draft %d: %w", id, err)
	}
	return d, nil
}

func (r *RedisDrafts) SaveDraft(ctx context.Context, d session.Draft) error {
	if d.DashboardID <= 0 {
		return fmt.Errorf("store: draft for dashboard %d", d.DashboardID)
	}
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return r.redis.Set(ctx, draftRedisKey(d.DashboardID), data, r.ttl).Err()
}

func (r *RedisDrafts) DeleteDraft(ctx context.Context, id dashboard.DashboardID) error {
	return r.redis.Del(ctx, draftRedisKey(id)).Err()
}

func draftRedisKey(id dashboard.DashboardID) string {
	return fmt.Sprintf("dashtab:draft:%d", id)
}

// WithDrafts returns p with its drafts served by drafts instead.
func WithDrafts(p Persistence, drafts DraftStore) Persistence {
	return &splitPersistence{Persistence: p, drafts: drafts}
}

type splitPersistence struct {
	Persistence
	drafts DraftStore
}

func (s *splitPersistence) LoadDraft(ctx context.Context, id dashboard.DashboardID) (session.Draft, error) {
	return s.drafts.LoadDraft(ctx, id)
}

func (s *splitPersistence) SaveDraft(ctx context.Context, d session.Draft) error {
	return s.drafts.SaveDraft(ctx, d)
}

func (s *splitPersistence) DeleteDraft(ctx context.Context, id dashboard.DashboardID) error {
	return s.drafts.DeleteDraft(ctx, id)
}

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"tableflip.dev/dashtab/pkg/dashboard"
	"tableflip.dev/dashtab/pkg/session"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisDrafts(t *testing.T) {
	_, client := newRedis(t)
	testDraftStore(t, NewRedisDrafts(client, time.Hour), dashboard.Dashboard{ID: 3, Name: "Ops"})
}

func TestRedisDraftsExpire(t *testing.T) {
	mr, client := newRedis(t)
	drafts := NewRedisDrafts(client, time.Minute)
	ctx := context.Background()

	s := session.New()
	if err := s.Load(dashboard.Dashboard{ID: 5}, nil, ""); err != nil {
		t.Fatalf("load: %v", err)
	}
	d, _ := s.Draft()
	if err := drafts.SaveDraft(ctx, d); err != nil {
		t.Fatalf("save draft: %v", err)
	}
	if ttl := mr.TTL(draftRedisKey(5)); ttl != time.Minute {
		t.Fatalf("expected ttl of a minute, got %s", ttl)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := drafts.LoadDraft(ctx, 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired draft, got %v", err)
	}
}

func TestRedisDraftsDropsCorrupt(t *testing.T) {
	mr, client := newRedis(t)
	drafts := NewRedisDrafts(client, 0)
	if err := mr.Set(draftRedisKey(8), "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := drafts.LoadDraft(context.Background(), 8); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if mr.Exists(draftRedisKey(8)) {
		t.Fatal("corrupt draft should be deleted")
	}
}

func TestWithDrafts(t *testing.T) {
	_, client := newRedis(t)
	ctx := context.Background()
	disk := newPersistence(t)
	dash, _ := disk.CreateDashboard(ctx, "Sales")

	p := WithDrafts(disk, NewRedisDrafts(client, 0))
	testDraftStore(t, p, dash)

	s := session.New()
	_ = s.Load(dash, nil, "")
	d, _ := s.Draft()
	if err := p.SaveDraft(ctx, d); err != nil {
		t.Fatalf("save draft: %v", err)
	}
	if _, err := disk.LoadDraft(ctx, dash.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("drafts should not reach the disk store, got %v", err)
	}
}

package app

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"tableflip.dev/dashtab/pkg/config"
	"tableflip.dev/dashtab/pkg/grid"
	"tableflip.dev/dashtab/pkg/store"
)

// FromConfig builds a Service on the disk store at cfg.Path. With redis
// drafts the returned close func releases the redis client.
func FromConfig(cfg *config.Config) (*Service, func() error, error) {
	p, err := store.Load(cfg)
	if err != nil {
		return nil, nil, err
	}
	closer := func() error { return nil }

	switch cfg.Drafts {
	case config.DraftsRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		p = store.WithDrafts(p, store.NewRedisDrafts(client, cfg.RedisTTL))
		closer = client.Close
		log.WithFields(log.Fields{"addr": cfg.RedisAddr, "ttl": cfg.RedisTTL}).Debug("drafts in redis")
	case config.DraftsDisk:
	default:
		return nil, nil, fmt.Errorf("app: unknown drafts backend %q", cfg.Drafts)
	}

	return &Service{
		Persistence: p,
		Placer:      grid.New(cfg.GridWidth),
	}, closer, nil
}

package memcached

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/google/uuid"

	types "github.com/yungbote/dwitter-backend/internal/domain"
	"github.com/yungbote/dwitter-backend/internal/pkg/logger"
)

type Config struct {
	Servers    []string `yaml:"servers"`
	TTLSeconds int      `yaml:"ttl_seconds"`
}

// StatsCache keeps follower/following counts for a short TTL.
type StatsCache struct {
	mc  *memcache.Client
	ttl time.Duration
	log *logger.Logger
}

// NewStatsCache returns nil when no servers are configured.
func NewStatsCache(log *logger.Logger, cfg Config) (*StatsCache, error) {
	servers := make([]string, 0, len(cfg.Servers))
	for _, s := range cfg.Servers {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	if len(servers) == 0 {
		return nil, nil
	}
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 300 * time.Second
	}

	mc := memcache.New(servers...)
	mc.Timeout = 500 * time.Millisecond
	if err := mc.Ping(); err != nil {
		return nil, fmt.Errorf("memcached ping: %w", err)
	}

	if log == nil {
		log = logger.Nop()
	}
	return &StatsCache{mc: mc, ttl: ttl, log: log.With("client", "MemcachedStatsCache")}, nil
}

func statsKey(profileID uuid.UUID) string {
	return "dwitter:follow_stats:" + profileID.String()
}

func (c *StatsCache) Get(ctx context.Context, profileID uuid.UUID) (*types.FollowStats, bool) {
	if c == nil || c.mc == nil {
		return nil, false
	}
	item, err := c.mc.Get(statsKey(profileID))
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			c.log.Warn("stats cache get failed", "error", err)
		}
		return nil, false
	}
	var stats types.FollowStats
	if err := json.Unmarshal(item.Value, &stats); err != nil {
		c.log.Warn("stats cache payload invalid", "error", err)
		return nil, false
	}
	return &stats, true
}

func (c *StatsCache) Set(ctx context.Context, stats *types.FollowStats) {
	if c == nil || c.mc == nil || stats == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.mc.Set(&memcache.Item{
		Key:        statsKey(stats.ProfileID),
		Value:      raw,
		Expiration: int32(c.ttl / time.Second),
	}); err != nil {
		c.log.Warn("stats cache set failed", "error", err)
	}
}

func (c *StatsCache) Invalidate(ctx context.Context, profileIDs ...uuid.UUID) {
	if c == nil || c.mc == nil {
		return
	}
	for _, id := range profileIDs {
		if id == uuid.Nil {
			continue
		}
		if err := c.mc.Delete(statsKey(id)); err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
			c.log.Warn("stats cache invalidate failed", "error", err)
		}
	}
}

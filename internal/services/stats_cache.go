package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	types "github.com/yungbote/dwitter-backend/internal/domain"
)

// FollowStatsCache is satisfied by the memcached stats cache.
type FollowStatsCache interface {
	Get(ctx context.Context, profileID uuid.UUID) (*types.FollowStats, bool)
	Set(ctx context.Context, stats *types.FollowStats)
	Invalidate(ctx context.Context, profileIDs ...uuid.UUID)
}

type noopStatsCache struct{}

func (noopStatsCache) Get(context.Context, uuid.UUID) (*types.FollowStats, bool) { return nil, false }
func (noopStatsCache) Set(context.Context, *types.FollowStats)                   {}
func (noopStatsCache) Invalidate(context.Context, ...uuid.UUID)                  {}

func NoopStatsCache() FollowStatsCache { return noopStatsCache{} }

// GuardedStatsCache drops refills that raced an invalidation of the same profile.
// Every service sharing a cache must share one guard.
type GuardedStatsCache struct {
	inner FollowStatsCache

	mu     sync.Mutex
	guards map[uuid.UUID]*statsGuard
}

type statsGuard struct {
	gen   uint64
	loads int
}

// statsLoad is handed out by beginLoad and consumed by finishLoad.
type statsLoad struct {
	profileID uuid.UUID
	gen       uint64
}

func GuardStatsCache(c FollowStatsCache) *GuardedStatsCache {
	if g, ok := c.(*GuardedStatsCache); ok {
		return g
	}
	if c == nil {
		c = NoopStatsCache()
	}
	return &GuardedStatsCache{inner: c, guards: map[uuid.UUID]*statsGuard{}}
}

func (g *GuardedStatsCache) Get(ctx context.Context, profileID uuid.UUID) (*types.FollowStats, bool) {
	return g.inner.Get(ctx, profileID)
}

// Set stores unconditionally. Loads use beginLoad and finishLoad instead.
func (g *GuardedStatsCache) Set(ctx context.Context, stats *types.FollowStats) {
	g.inner.Set(ctx, stats)
}

func (g *GuardedStatsCache) Invalidate(ctx context.Context, profileIDs ...uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range profileIDs {
		if guard := g.guards[id]; guard != nil {
			guard.gen++
		}
	}
	g.inner.Invalidate(ctx, profileIDs...)
}

func (g *GuardedStatsCache) beginLoad(profileID uuid.UUID) statsLoad {
	g.mu.Lock()
	defer g.mu.Unlock()
	guard := g.guards[profileID]
	if guard == nil {
		guard = &statsGuard{}
		g.guards[profileID] = guard
	}
	guard.loads++
	return statsLoad{profileID: profileID, gen: guard.gen}
}

// finishLoad stores stats only if no invalidation of the profile happened since
// beginLoad. A nil stats ends the load without storing.
func (g *GuardedStatsCache) finishLoad(ctx context.Context, load statsLoad, stats *types.FollowStats) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	guard := g.guards[load.profileID]
	if guard == nil {
		return false
	}
	stored := false
	if stats != nil && guard.gen == load.gen {
		g.inner.Set(ctx, stats)
		stored = true
	}
	guard.loads--
	if guard.loads <= 0 {
		delete(g.guards, load.profileID)
	}
	return stored
}

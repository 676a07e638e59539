package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/dwitter-backend/internal/data/repos"
	"github.com/yungbote/dwitter-backend/internal/data/repos/testutil"
	types "github.com/yungbote/dwitter-backend/internal/domain"
	"github.com/yungbote/dwitter-backend/internal/observability"
	"github.com/yungbote/dwitter-backend/internal/realtime"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []realtime.SocialEvent
}

func (n *recordingNotifier) add(evt realtime.SocialEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, evt)
}

func (n *recordingNotifier) AccountCreated(_ context.Context, a *types.Account, p *types.Profile) {
	n.add(realtime.SocialEvent{Type: realtime.EventAccountCreated, AccountID: a.ID, ProfileID: p.ID, Username: a.Username})
}

func (n *recordingNotifier) AccountRenamed(_ context.Context, a *types.Account, profileID uuid.UUID) {
	n.add(realtime.SocialEvent{Type: realtime.EventAccountRenamed, AccountID: a.ID, ProfileID: profileID, Username: a.Username})
}

func (n *recordingNotifier) AccountDeleted(_ context.Context, accountID, profileID uuid.UUID) {
	n.add(realtime.SocialEvent{Type: realtime.EventAccountDeleted, AccountID: accountID, ProfileID: profileID})
}

func (n *recordingNotifier) Followed(_ context.Context, profileID, targetID uuid.UUID) {
	n.add(realtime.SocialEvent{Type: realtime.EventProfileFollowed, ProfileID: profileID, TargetProfileID: targetID})
}

func (n *recordingNotifier) Unfollowed(_ context.Context, profileID, targetID uuid.UUID) {
	n.add(realtime.SocialEvent{Type: realtime.EventProfileUnfollowed, ProfileID: profileID, TargetProfileID: targetID})
}

func (n *recordingNotifier) types() []realtime.EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]realtime.EventType, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

func (n *recordingNotifier) last() realtime.SocialEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.events) == 0 {
		return realtime.SocialEvent{}
	}
	return n.events[len(n.events)-1]
}

type mapStatsCache struct {
	mu          sync.Mutex
	entries     map[uuid.UUID]types.FollowStats
	sets        int
	invalidated []uuid.UUID
}

func newMapStatsCache() *mapStatsCache {
	return &mapStatsCache{entries: map[uuid.UUID]types.FollowStats{}}
}

func (c *mapStatsCache) Get(_ context.Context, id uuid.UUID) (*types.FollowStats, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	return &s, true
}

func (c *mapStatsCache) Set(_ context.Context, s *types.FollowStats) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[s.ProfileID] = *s
	c.sets++
}

func (c *mapStatsCache) Invalidate(_ context.Context, ids ...uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.entries, id)
		c.invalidated = append(c.invalidated, id)
	}
}

type testEnv struct {
	db       *gorm.DB
	accounts AccountService
	follows  FollowService
	profiles repos.ProfileRepo
	follow   repos.FollowRepo
	notifier *recordingNotifier
	cache    *mapStatsCache
	guard    *GuardedStatsCache
	metrics  *observability.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	env := &testEnv{
		db:       db,
		profiles: repos.NewProfileRepo(db, log),
		follow:   repos.NewFollowRepo(db, log),
		notifier: &recordingNotifier{},
		cache:    newMapStatsCache(),
		metrics:  observability.NewMetrics(),
	}
	env.guard = GuardStatsCache(env.cache)
	env.accounts = NewAccountService(db, log, AccountServiceDeps{
		AccountRepo: repos.NewAccountRepo(db, log),
		ProfileRepo: env.profiles,
		FollowRepo:  env.follow,
		Notifier:    env.notifier,
		StatsCache:  env.guard,
		Metrics:     env.metrics,
	})
	env.follows = NewFollowService(db, log, FollowServiceDeps{
		ProfileRepo: env.profiles,
		FollowRepo:  env.follow,
		Notifier:    env.notifier,
		StatsCache:  env.guard,
		Metrics:     env.metrics,
	})
	return env
}

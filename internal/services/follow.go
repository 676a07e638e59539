package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/yungbote/dwitter-backend/internal/data/repos"
	types "github.com/yungbote/dwitter-backend/internal/domain"
	"github.com/yungbote/dwitter-backend/internal/observability"
	"github.com/yungbote/dwitter-backend/internal/pkg/dbctx"
	"github.com/yungbote/dwitter-backend/internal/pkg/errors"
	"github.com/yungbote/dwitter-backend/internal/pkg/logger"
	"github.com/yungbote/dwitter-backend/internal/utils"
)

// FollowService manages the directed follow relation between profiles. Follow and
// Unfollow are idempotent: a self-follow, a repeated follow and an absent unfollow
// all succeed without writing.
type FollowService interface {
	Follow(dbc dbctx.Context, selfID, targetID uuid.UUID) error
	FollowUsername(dbc dbctx.Context, selfID uuid.UUID, username string) error
	Unfollow(dbc dbctx.Context, selfID, targetID uuid.UUID) error
	IsFollowing(dbc dbctx.Context, selfID, targetID uuid.UUID) (bool, error)
	ListFollowed(dbc dbctx.Context, selfID uuid.UUID) ([]*types.Profile, error)
	ListFollowers(dbc dbctx.Context, profileID uuid.UUID) ([]*types.Profile, error)
	Stats(dbc dbctx.Context, profileID uuid.UUID) (types.FollowStats, error)
}

type followService struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.ProfileRepo
	followRepo  repos.FollowRepo
	notifier    SocialNotifier
	statsCache  *GuardedStatsCache
	metrics     *observability.Metrics
	statsGroup  singleflight.Group
}

type FollowServiceDeps struct {
	ProfileRepo repos.ProfileRepo
	FollowRepo  repos.FollowRepo
	Notifier    SocialNotifier
	StatsCache  FollowStatsCache
	Metrics     *observability.Metrics
}

func NewFollowService(db *gorm.DB, log *logger.Logger, deps FollowServiceDeps) FollowService {
	fs := &followService{
		db:          db,
		log:         log.With("service", "FollowService"),
		profileRepo: deps.ProfileRepo,
		followRepo:  deps.FollowRepo,
		notifier:    deps.Notifier,
		statsCache:  GuardStatsCache(deps.StatsCache),
		metrics:     deps.Metrics,
	}
	if fs.notifier == nil {
		fs.notifier = NewSocialNotifier(nil, log)
	}
	return fs
}

func (fs *followService) Follow(dbc dbctx.Context, selfID, targetID uuid.UUID) (err error) {
	dbc, op := startOp(dbc, fs.metrics, "follow", edgeAttrs(selfID, targetID)...)
	changed := false
	defer func() { op.end(err, !changed) }()

	if selfID == targetID {
		return nil
	}
	err = runInTx(fs.db, dbc, func(inner dbctx.Context) error {
		var err error
		changed, err = fs.follow(inner, selfID, targetID)
		return err
	})
	if err != nil {
		return err
	}
	if changed {
		fs.afterEdgeChange(dbc, selfID, targetID, true)
	}
	return nil
}

func (fs *followService) FollowUsername(dbc dbctx.Context, selfID uuid.UUID, username string) (err error) {
	dbc, op := startOp(dbc, fs.metrics, "follow", attribute.String("profile.id", selfID.String()))
	changed := false
	defer func() { op.end(err, !changed) }()

	username = utils.NormalizeUsername(username)
	if username == "" {
		return fmt.Errorf("a username is required: %w", errors.ErrInvalidArgument)
	}

	var targetID uuid.UUID
	err = runInTx(fs.db, dbc, func(inner dbctx.Context) error {
		found, err := fs.profileRepo.GetByUsernames(inner, []string{username})
		if err != nil {
			return fmt.Errorf("resolve username: %w", err)
		}
		if len(found) == 0 || found[0] == nil {
			return fmt.Errorf("profile %q: %w", username, errors.ErrNotFound)
		}
		targetID = found[0].ID
		if targetID == selfID {
			return nil
		}
		changed, err = fs.follow(inner, selfID, targetID)
		return err
	})
	if err != nil {
		return err
	}
	if changed {
		fs.afterEdgeChange(dbc, selfID, targetID, true)
	}
	return nil
}

// follow inserts self -> target unless the edge exists. Both profiles must exist.
func (fs *followService) follow(dbc dbctx.Context, selfID, targetID uuid.UUID) (bool, error) {
	exists, err := fs.followRepo.Exists(dbc, selfID, targetID)
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	if exists {
		return false, nil
	}
	if err := fs.requireProfiles(dbc, selfID, targetID); err != nil {
		return false, err
	}
	n, err := fs.followRepo.CreateIgnoreDuplicates(dbc, []*types.Follow{{ProfileID: selfID, FollowedID: targetID}})
	if err != nil {
		return false, fmt.Errorf("create follow: %w", err)
	}
	return n > 0, nil
}

func (fs *followService) Unfollow(dbc dbctx.Context, selfID, targetID uuid.UUID) (err error) {
	dbc, op := startOp(dbc, fs.metrics, "unfollow", edgeAttrs(selfID, targetID)...)
	changed := false
	defer func() { op.end(err, !changed) }()

	err = runInTx(fs.db, dbc, func(inner dbctx.Context) error {
		if err := fs.requireProfiles(inner, selfID, targetID); err != nil {
			return err
		}
		if selfID == targetID {
			return nil
		}
		n, err := fs.followRepo.DeletePairs(inner, selfID, []uuid.UUID{targetID})
		if err != nil {
			return fmt.Errorf("delete follow: %w", err)
		}
		changed = n > 0
		return nil
	})
	if err != nil {
		return err
	}
	if changed {
		fs.afterEdgeChange(dbc, selfID, targetID, false)
	}
	return nil
}

func (fs *followService) IsFollowing(dbc dbctx.Context, selfID, targetID uuid.UUID) (bool, error) {
	if selfID == targetID {
		return false, nil
	}
	ok, err := fs.followRepo.Exists(dbc, selfID, targetID)
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return ok, nil
}

func (fs *followService) ListFollowed(dbc dbctx.Context, selfID uuid.UUID) ([]*types.Profile, error) {
	if err := fs.requireProfiles(dbc, selfID); err != nil {
		return nil, err
	}
	out, err := fs.followRepo.GetFollowed(dbc, selfID)
	if err != nil {
		return nil, fmt.Errorf("list followed: %w", err)
	}
	return out, nil
}

func (fs *followService) ListFollowers(dbc dbctx.Context, profileID uuid.UUID) ([]*types.Profile, error) {
	if err := fs.requireProfiles(dbc, profileID); err != nil {
		return nil, err
	}
	out, err := fs.followRepo.GetFollowers(dbc, profileID)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	return out, nil
}

// Stats reads through the cache only outside a caller transaction, so uncommitted
// counts never reach it. Concurrent misses for one profile share a single load.
func (fs *followService) Stats(dbc dbctx.Context, profileID uuid.UUID) (types.FollowStats, error) {
	if dbc.Tx != nil {
		return fs.loadStats(dbc, profileID)
	}
	if cached, ok := fs.statsCache.Get(dbc.Context(), profileID); ok && cached != nil {
		return *cached, nil
	}
	v, err, _ := fs.statsGroup.Do(profileID.String(), func() (any, error) {
		// The load is shared, so one caller giving up must not fail the others.
		loadCtx := context.WithoutCancel(dbc.Context())
		load := fs.statsCache.beginLoad(profileID)
		stats, err := fs.loadStats(dbctx.Context{Ctx: loadCtx}, profileID)
		if err != nil {
			fs.statsCache.finishLoad(loadCtx, load, nil)
			return nil, err
		}
		fs.statsCache.finishLoad(loadCtx, load, &stats)
		return stats, nil
	})
	if err != nil {
		return types.FollowStats{}, err
	}
	return v.(types.FollowStats), nil
}

func (fs *followService) loadStats(dbc dbctx.Context, profileID uuid.UUID) (types.FollowStats, error) {
	if err := fs.requireProfiles(dbc, profileID); err != nil {
		return types.FollowStats{}, err
	}
	following, err := fs.followRepo.CountFollowing(dbc, profileID)
	if err != nil {
		return types.FollowStats{}, fmt.Errorf("count following: %w", err)
	}
	followers, err := fs.followRepo.CountFollowers(dbc, profileID)
	if err != nil {
		return types.FollowStats{}, fmt.Errorf("count followers: %w", err)
	}
	return types.FollowStats{ProfileID: profileID, Followers: followers, Following: following}, nil
}

func (fs *followService) requireProfiles(dbc dbctx.Context, ids ...uuid.UUID) error {
	found, err := fs.profileRepo.ExistingIDs(dbc, ids)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	for _, id := range ids {
		if !found[id] {
			return fmt.Errorf("profile %s: %w", id, errors.ErrNotFound)
		}
	}
	return nil
}

// afterEdgeChange invalidates and publishes once the edge change is committed.
func (fs *followService) afterEdgeChange(dbc dbctx.Context, selfID, targetID uuid.UUID, followed bool) {
	ctx := dbc.Context()
	dbc.AfterCommit(func() {
		fs.statsCache.Invalidate(ctx, selfID, targetID)
		if followed {
			fs.log.Debug("profile followed", "profile_id", selfID, "target_profile_id", targetID)
			fs.notifier.Followed(ctx, selfID, targetID)
			return
		}
		fs.log.Debug("profile unfollowed", "profile_id", selfID, "target_profile_id", targetID)
		fs.notifier.Unfollowed(ctx, selfID, targetID)
	})
}

func edgeAttrs(selfID, targetID uuid.UUID) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("profile.id", selfID.String()),
		attribute.String("target_profile.id", targetID.String()),
	}
}

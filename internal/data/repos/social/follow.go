package social

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/dwitter-backend/internal/domain"
	"github.com/yungbote/dwitter-backend/internal/pkg/dbctx"
	"github.com/yungbote/dwitter-backend/internal/pkg/logger"
)

type FollowRepo interface {
	// CreateIgnoreDuplicates inserts edges, skipping pairs that already exist, and
	// reports how many rows were actually written.
	CreateIgnoreDuplicates(dbc dbctx.Context, rows []*types.Follow) (int64, error)
	Exists(dbc dbctx.Context, profileID, followedID uuid.UUID) (bool, error)
	DeletePairs(dbc dbctx.Context, profileID uuid.UUID, followedIDs []uuid.UUID) (int64, error)
	GetFollowed(dbc dbctx.Context, profileID uuid.UUID) ([]*types.Profile, error)
	GetFollowers(dbc dbctx.Context, profileID uuid.UUID) ([]*types.Profile, error)
	CountFollowing(dbc dbctx.Context, profileID uuid.UUID) (int64, error)
	CountFollowers(dbc dbctx.Context, profileID uuid.UUID) (int64, error)
	// FullDeleteByProfileIDs removes every edge touching the given profiles, in either direction.
	FullDeleteByProfileIDs(dbc dbctx.Context, profileIDs []uuid.UUID) (int64, error)
}

type followRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFollowRepo(db *gorm.DB, baseLog *logger.Logger) FollowRepo {
	return &followRepo{
		db:  db,
		log: baseLog.With("repo", "FollowRepo"),
	}
}

func (r *followRepo) CreateIgnoreDuplicates(dbc dbctx.Context, rows []*types.Follow) (int64, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if len(rows) == 0 {
		return 0, nil
	}
	res := tx.WithContext(dbc.Context()).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows)
	return res.RowsAffected, res.Error
}

func (r *followRepo) Exists(dbc dbctx.Context, profileID, followedID uuid.UUID) (bool, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var count int64
	if err := tx.WithContext(dbc.Context()).
		Model(&types.Follow{}).
		Where("profile_id = ? AND followed_id = ?", profileID, followedID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *followRepo) DeletePairs(dbc dbctx.Context, profileID uuid.UUID, followedIDs []uuid.UUID) (int64, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if profileID == uuid.Nil || len(followedIDs) == 0 {
		return 0, nil
	}
	res := tx.WithContext(dbc.Context()).
		Where("profile_id = ? AND followed_id IN ?", profileID, followedIDs).
		Delete(&types.Follow{})
	return res.RowsAffected, res.Error
}

func (r *followRepo) GetFollowed(dbc dbctx.Context, profileID uuid.UUID) ([]*types.Profile, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	out := []*types.Profile{}
	if err := tx.WithContext(dbc.Context()).
		Preload("Account").
		Joins("JOIN profile_follow ON profile_follow.followed_id = profile.id").
		Joins("JOIN account ON account.id = profile.account_id").
		Where("profile_follow.profile_id = ?", profileID).
		Order("account.username ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *followRepo) GetFollowers(dbc dbctx.Context, profileID uuid.UUID) ([]*types.Profile, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	out := []*types.Profile{}
	if err := tx.WithContext(dbc.Context()).
		Preload("Account").
		Joins("JOIN profile_follow ON profile_follow.profile_id = profile.id").
		Joins("JOIN account ON account.id = profile.account_id").
		Where("profile_follow.followed_id = ?", profileID).
		Order("account.username ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *followRepo) CountFollowing(dbc dbctx.Context, profileID uuid.UUID) (int64, error) {
	return r.count(dbc, "profile_id = ?", profileID)
}

func (r *followRepo) CountFollowers(dbc dbctx.Context, profileID uuid.UUID) (int64, error) {
	return r.count(dbc, "followed_id = ?", profileID)
}

func (r *followRepo) count(dbc dbctx.Context, where string, profileID uuid.UUID) (int64, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	var count int64
	if err := tx.WithContext(dbc.Context()).
		Model(&types.Follow{}).
		Where(where, profileID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *followRepo) FullDeleteByProfileIDs(dbc dbctx.Context, profileIDs []uuid.UUID) (int64, error) {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	if len(profileIDs) == 0 {
		return 0, nil
	}
	res := tx.WithContext(dbc.Context()).
		Where("profile_id IN ? OR followed_id IN ?", profileIDs, profileIDs).
		Delete(&types.Follow{})
	return res.RowsAffected, res.Error
}

package social

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/dwitter-backend/internal/domain"
	"github.com/yungbote/dwitter-backend/internal/pkg/dbctx"
	"github.com/yungbote/dwitter-backend/internal/pkg/logger"
)

// ProfileRepo reads always preload the owning account so display names are never stale.
type ProfileRepo interface {
	Create(dbc dbctx.Context, profiles []*types.Profile) ([]*types.Profile, error)
	GetByIDs(dbc dbctx.Context, profileIDs []uuid.UUID) ([]*types.Profile, error)
	GetByAccountIDs(dbc dbctx.Context, accountIDs []uuid.UUID) ([]*types.Profile, error)
	GetByUsernames(dbc dbctx.Context, usernames []string) ([]*types.Profile, error)
	ExistingIDs(dbc dbctx.Context, profileIDs []uuid.UUID) (map[uuid.UUID]bool, error)
	List(dbc dbctx.Context, limit, offset int) ([]*types.Profile, error)
	Count(dbc dbctx.Context) (int64, error)
	FullDeleteByAccountIDs(dbc dbctx.Context, accountIDs []uuid.UUID) (int64, error)
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	repoLog := baseLog.With("repo", "ProfileRepo")
	return &profileRepo{db: db, log: repoLog}
}

func (pr *profileRepo) Create(dbc dbctx.Context, profiles []*types.Profile) ([]*types.Profile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	if len(profiles) == 0 {
		return []*types.Profile{}, nil
	}

	if err := transaction.WithContext(dbc.Context()).
		Omit("Account").
		Create(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (pr *profileRepo) GetByIDs(dbc dbctx.Context, profileIDs []uuid.UUID) ([]*types.Profile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	results := []*types.Profile{}
	if len(profileIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Context()).
		Preload("Account").
		Where("id IN ?", profileIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *profileRepo) GetByAccountIDs(dbc dbctx.Context, accountIDs []uuid.UUID) ([]*types.Profile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	results := []*types.Profile{}
	if len(accountIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Context()).
		Preload("Account").
		Where("account_id IN ?", accountIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *profileRepo) GetByUsernames(dbc dbctx.Context, usernames []string) ([]*types.Profile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	results := []*types.Profile{}
	if len(usernames) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Context()).
		Preload("Account").
		Joins("JOIN account ON account.id = profile.account_id").
		Where("account.username IN ?", usernames).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *profileRepo) ExistingIDs(dbc dbctx.Context, profileIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	out := map[uuid.UUID]bool{}
	if len(profileIDs) == 0 {
		return out, nil
	}

	var rows []*types.Profile
	if err := transaction.WithContext(dbc.Context()).
		Select("id").
		Where("id IN ?", profileIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.ID] = true
	}
	return out, nil
}

func (pr *profileRepo) List(dbc dbctx.Context, limit, offset int) ([]*types.Profile, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}

	q := transaction.WithContext(dbc.Context()).
		Preload("Account").
		Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	results := []*types.Profile{}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *profileRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Context()).
		Model(&types.Profile{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (pr *profileRepo) FullDeleteByAccountIDs(dbc dbctx.Context, accountIDs []uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = pr.db
	}
	if len(accountIDs) == 0 {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Context()).
		Where("account_id IN ?", accountIDs).
		Delete(&types.Profile{})
	return res.RowsAffected, res.Error
}

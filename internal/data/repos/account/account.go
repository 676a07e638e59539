package account

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/dwitter-backend/internal/domain"
	"github.com/yungbote/dwitter-backend/internal/pkg/dbctx"
	"github.com/yungbote/dwitter-backend/internal/pkg/logger"
)

type AccountRepo interface {
	Create(dbc dbctx.Context, accounts []*types.Account) ([]*types.Account, error)
	GetByIDs(dbc dbctx.Context, accountIDs []uuid.UUID) ([]*types.Account, error)
	GetByUsernames(dbc dbctx.Context, usernames []string) ([]*types.Account, error)
	UsernameExists(dbc dbctx.Context, username string) (bool, error)
	UpdateUsername(dbc dbctx.Context, accountID uuid.UUID, username string) error
	FullDeleteByIDs(dbc dbctx.Context, accountIDs []uuid.UUID) (int64, error)
	Count(dbc dbctx.Context) (int64, error)
}

type accountRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAccountRepo(db *gorm.DB, baseLog *logger.Logger) AccountRepo {
	repoLog := baseLog.With("repo", "AccountRepo")
	return &accountRepo{db: db, log: repoLog}
}

func (ar *accountRepo) Create(dbc dbctx.Context, accounts []*types.Account) ([]*types.Account, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ar.db
	}

	if len(accounts) == 0 {
		return []*types.Account{}, nil
	}

	if err := transaction.WithContext(dbc.Context()).Create(&accounts).Error; err != nil {
		return nil, err
	}

	return accounts, nil
}

func (ar *accountRepo) GetByIDs(dbc dbctx.Context, accountIDs []uuid.UUID) ([]*types.Account, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.Account

	if len(accountIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Context()).
		Where("id IN ?", accountIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *accountRepo) GetByUsernames(dbc dbctx.Context, usernames []string) ([]*types.Account, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.Account
	if len(usernames) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Context()).
		Where("username IN ?", usernames).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *accountRepo) UsernameExists(dbc dbctx.Context, username string) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ar.db
	}

	var count int64

	if err := transaction.WithContext(dbc.Context()).
		Model(&types.Account{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ar *accountRepo) UpdateUsername(dbc dbctx.Context, accountID uuid.UUID, username string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ar.db
	}
	return transaction.WithContext(dbc.Context()).
		Model(&types.Account{}).
		Where("id = ?", accountID).
		Update("username", username).Error
}

func (ar *accountRepo) FullDeleteByIDs(dbc dbctx.Context, accountIDs []uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ar.db
	}
	if len(accountIDs) == 0 {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Context()).
		Where("id IN ?", accountIDs).
		Delete(&types.Account{})
	return res.RowsAffected, res.Error
}

func (ar *accountRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = ar.db
	}
	var count int64
	if err := transaction.WithContext(dbc.Context()).
		Model(&types.Account{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

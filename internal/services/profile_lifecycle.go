package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/dwitter-backend/internal/data/repos"
	types "github.com/yungbote/dwitter-backend/internal/domain"
	"github.com/yungbote/dwitter-backend/internal/pkg/dbctx"
	"github.com/yungbote/dwitter-backend/internal/pkg/errors"
	"github.com/yungbote/dwitter-backend/internal/pkg/logger"
)

// ProfileLifecycle keeps exactly one Profile per Account. Both hooks are meant to run
// inside the transaction that creates or deletes the account.
type ProfileLifecycle interface {
	OnAccountCreated(dbc dbctx.Context, account *types.Account) (*types.Profile, error)
	OnAccountDeleted(dbc dbctx.Context, account *types.Account) error
}

type profileLifecycle struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.ProfileRepo
	followRepo  repos.FollowRepo
}

func NewProfileLifecycle(db *gorm.DB, log *logger.Logger, profileRepo repos.ProfileRepo, followRepo repos.FollowRepo) ProfileLifecycle {
	return &profileLifecycle{
		db:          db,
		log:         log.With("service", "ProfileLifecycle"),
		profileRepo: profileRepo,
		followRepo:  followRepo,
	}
}

func (pl *profileLifecycle) OnAccountCreated(dbc dbctx.Context, account *types.Account) (*types.Profile, error) {
	if account == nil || account.ID == uuid.Nil {
		return nil, fmt.Errorf("profile for unsaved account: %w", errors.ErrInvalidArgument)
	}

	var created *types.Profile
	err := runInTx(pl.db, dbc, func(inner dbctx.Context) error {
		rows, err := pl.profileRepo.Create(inner, []*types.Profile{{AccountID: account.ID}})
		if err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		if len(rows) != 1 || rows[0] == nil {
			return fmt.Errorf("create profile: no row returned")
		}
		created = rows[0]
		return nil
	})
	if err != nil {
		pl.log.Warn("profile creation failed", "account_id", account.ID, "error", err)
		return nil, err
	}
	created.Account = account
	pl.log.Debug("profile created", "account_id", account.ID, "profile_id", created.ID)
	return created, nil
}

func (pl *profileLifecycle) OnAccountDeleted(dbc dbctx.Context, account *types.Account) error {
	if account == nil || account.ID == uuid.Nil {
		return fmt.Errorf("profile for unsaved account: %w", errors.ErrInvalidArgument)
	}

	return runInTx(pl.db, dbc, func(inner dbctx.Context) error {
		profiles, err := pl.profileRepo.GetByAccountIDs(inner, []uuid.UUID{account.ID})
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		if len(profiles) == 0 {
			return nil
		}
		profileIDs := make([]uuid.UUID, 0, len(profiles))
		for _, p := range profiles {
			profileIDs = append(profileIDs, p.ID)
		}
		edges, err := pl.followRepo.FullDeleteByProfileIDs(inner, profileIDs)
		if err != nil {
			return fmt.Errorf("delete follow edges: %w", err)
		}
		if _, err := pl.profileRepo.FullDeleteByAccountIDs(inner, []uuid.UUID{account.ID}); err != nil {
			return fmt.Errorf("delete profile: %w", err)
		}
		pl.log.Debug("profile deleted", "account_id", account.ID, "edges", edges)
		return nil
	})
}

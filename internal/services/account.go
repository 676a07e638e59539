package services

import (
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/dwitter-backend/internal/data/repos"
	types "github.com/yungbote/dwitter-backend/internal/domain"
	"github.com/yungbote/dwitter-backend/internal/observability"
	"github.com/yungbote/dwitter-backend/internal/pkg/dbctx"
	"github.com/yungbote/dwitter-backend/internal/pkg/errors"
	"github.com/yungbote/dwitter-backend/internal/pkg/logger"
	"github.com/yungbote/dwitter-backend/internal/utils"
)

type AccountService interface {
	// Create inserts the account and its profile in one transaction.
	Create(dbc dbctx.Context, username, password string) (*types.Account, *types.Profile, error)
	GetByUsername(dbc dbctx.Context, username string) (*types.Account, error)
	GetProfile(dbc dbctx.Context, accountID uuid.UUID) (*types.Profile, error)
	Rename(dbc dbctx.Context, accountID uuid.UUID, newUsername string) (*types.Account, error)
	// Delete removes the profile, every follow edge touching it, and the account.
	Delete(dbc dbctx.Context, accountID uuid.UUID) error
	CheckPassword(account *types.Account, password string) bool
}

type accountService struct {
	db          *gorm.DB
	log         *logger.Logger
	accountRepo repos.AccountRepo
	profileRepo repos.ProfileRepo
	followRepo  repos.FollowRepo
	lifecycle   ProfileLifecycle
	notifier    SocialNotifier
	statsCache  FollowStatsCache
	metrics     *observability.Metrics
}

type AccountServiceDeps struct {
	AccountRepo repos.AccountRepo
	ProfileRepo repos.ProfileRepo
	FollowRepo  repos.FollowRepo
	Lifecycle   ProfileLifecycle
	Notifier    SocialNotifier
	StatsCache  FollowStatsCache
	Metrics     *observability.Metrics
}

func NewAccountService(db *gorm.DB, log *logger.Logger, deps AccountServiceDeps) AccountService {
	as := &accountService{
		db:          db,
		log:         log.With("service", "AccountService"),
		accountRepo: deps.AccountRepo,
		profileRepo: deps.ProfileRepo,
		followRepo:  deps.FollowRepo,
		lifecycle:   deps.Lifecycle,
		notifier:    deps.Notifier,
		statsCache:  GuardStatsCache(deps.StatsCache),
		metrics:     deps.Metrics,
	}
	if as.lifecycle == nil {
		as.lifecycle = NewProfileLifecycle(db, log, deps.ProfileRepo, deps.FollowRepo)
	}
	if as.notifier == nil {
		as.notifier = NewSocialNotifier(nil, log)
	}
	return as
}

func (as *accountService) Create(dbc dbctx.Context, username, password string) (acct *types.Account, prof *types.Profile, err error) {
	dbc, op := startOp(dbc, as.metrics, "account.create")
	defer func() { op.end(err, false) }()

	username = utils.NormalizeUsername(username)
	if err := utils.ValidateUsername(username); err != nil {
		return nil, nil, err
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	err = runInTx(as.db, dbc, func(inner dbctx.Context) error {
		taken, err := as.accountRepo.UsernameExists(inner, username)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if taken {
			return fmt.Errorf("username %q is taken: %w", username, errors.ErrConflict)
		}
		created, err := as.accountRepo.Create(inner, []*types.Account{{Username: username, Password: hashed}})
		if err != nil {
			return translateAccountWriteErr("create account", username, err)
		}
		acct = created[0]
		prof, err = as.lifecycle.OnAccountCreated(inner, acct)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	as.log.Info("account created", "account_id", acct.ID, "username", acct.Username)
	created, createdProf := acct, prof
	dbc.AfterCommit(func() { as.notifier.AccountCreated(dbc.Context(), created, createdProf) })
	return acct, prof, nil
}

func (as *accountService) GetByUsername(dbc dbctx.Context, username string) (*types.Account, error) {
	username = utils.NormalizeUsername(username)
	if username == "" {
		return nil, fmt.Errorf("a username is required: %w", errors.ErrInvalidArgument)
	}
	found, err := as.accountRepo.GetByUsernames(dbc, []string{username})
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, fmt.Errorf("account %q: %w", username, errors.ErrNotFound)
	}
	return found[0], nil
}

func (as *accountService) GetProfile(dbc dbctx.Context, accountID uuid.UUID) (*types.Profile, error) {
	found, err := as.profileRepo.GetByAccountIDs(dbc, []uuid.UUID{accountID})
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, fmt.Errorf("profile for account %s: %w", accountID, errors.ErrNotFound)
	}
	return found[0], nil
}

func (as *accountService) Rename(dbc dbctx.Context, accountID uuid.UUID, newUsername string) (out *types.Account, err error) {
	dbc, op := startOp(dbc, as.metrics, "account.rename", attribute.String("account.id", accountID.String()))
	unchanged := false
	defer func() { op.end(err, unchanged) }()

	newUsername = utils.NormalizeUsername(newUsername)
	if err := utils.ValidateUsername(newUsername); err != nil {
		return nil, err
	}

	var profileID uuid.UUID
	err = runInTx(as.db, dbc, func(inner dbctx.Context) error {
		found, err := as.accountRepo.GetByIDs(inner, []uuid.UUID{accountID})
		if err != nil {
			return fmt.Errorf("load account: %w", err)
		}
		if len(found) == 0 || found[0] == nil {
			return fmt.Errorf("account %s: %w", accountID, errors.ErrNotFound)
		}
		out = found[0]
		if out.Username == newUsername {
			unchanged = true
			return nil
		}
		taken, err := as.accountRepo.UsernameExists(inner, newUsername)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if taken {
			return fmt.Errorf("username %q is taken: %w", newUsername, errors.ErrConflict)
		}
		if err := as.accountRepo.UpdateUsername(inner, accountID, newUsername); err != nil {
			return translateAccountWriteErr("rename account", newUsername, err)
		}
		out.Username = newUsername
		profiles, err := as.profileRepo.GetByAccountIDs(inner, []uuid.UUID{accountID})
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		if len(profiles) > 0 {
			profileID = profiles[0].ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !unchanged {
		as.log.Info("account renamed", "account_id", accountID, "username", newUsername)
		renamed := *out
		dbc.AfterCommit(func() { as.notifier.AccountRenamed(dbc.Context(), &renamed, profileID) })
	}
	return out, nil
}

func (as *accountService) Delete(dbc dbctx.Context, accountID uuid.UUID) (err error) {
	dbc, op := startOp(dbc, as.metrics, "account.delete", attribute.String("account.id", accountID.String()))
	defer func() { op.end(err, false) }()

	var (
		profileID uuid.UUID
		neighbors []uuid.UUID
	)
	err = runInTx(as.db, dbc, func(inner dbctx.Context) error {
		found, err := as.accountRepo.GetByIDs(inner, []uuid.UUID{accountID})
		if err != nil {
			return fmt.Errorf("load account: %w", err)
		}
		if len(found) == 0 || found[0] == nil {
			return fmt.Errorf("account %s: %w", accountID, errors.ErrNotFound)
		}
		acct := found[0]

		profiles, err := as.profileRepo.GetByAccountIDs(inner, []uuid.UUID{accountID})
		if err != nil {
			return fmt.Errorf("load profile: %w", err)
		}
		if len(profiles) > 0 {
			profileID = profiles[0].ID
			neighbors, err = as.neighborIDs(inner, profileID)
			if err != nil {
				return err
			}
		}

		if err := as.lifecycle.OnAccountDeleted(inner, acct); err != nil {
			return err
		}
		if _, err := as.accountRepo.FullDeleteByIDs(inner, []uuid.UUID{accountID}); err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	as.log.Info("account deleted", "account_id", accountID)
	dbc.AfterCommit(func() {
		ctx := dbc.Context()
		if profileID != uuid.Nil {
			as.statsCache.Invalidate(ctx, append(neighbors, profileID)...)
		}
		as.notifier.AccountDeleted(ctx, accountID, profileID)
	})
	return nil
}

func (as *accountService) CheckPassword(account *types.Account, password string) bool {
	if account == nil {
		return false
	}
	return utils.CheckPassword(account.Password, password)
}

// neighborIDs lists every profile on the other end of an edge touching profileID.
func (as *accountService) neighborIDs(dbc dbctx.Context, profileID uuid.UUID) ([]uuid.UUID, error) {
	followed, err := as.followRepo.GetFollowed(dbc, profileID)
	if err != nil {
		return nil, fmt.Errorf("load followed: %w", err)
	}
	followers, err := as.followRepo.GetFollowers(dbc, profileID)
	if err != nil {
		return nil, fmt.Errorf("load followers: %w", err)
	}
	out := make([]uuid.UUID, 0, len(followed)+len(followers))
	for _, p := range followed {
		out = append(out, p.ID)
	}
	for _, p := range followers {
		out = append(out, p.ID)
	}
	return out, nil
}

func translateAccountWriteErr(op, username string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: username %q is taken: %w", op, username, errors.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

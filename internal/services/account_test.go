package services

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yungbote/dwitter-backend/internal/data/repos"
	repotest "github.com/yungbote/dwitter-backend/internal/data/repos/testutil"
	types "github.com/yungbote/dwitter-backend/internal/domain"
	"github.com/yungbote/dwitter-backend/internal/observability"
	"github.com/yungbote/dwitter-backend/internal/pkg/dbctx"
	"github.com/yungbote/dwitter-backend/internal/pkg/errors"
	"github.com/yungbote/dwitter-backend/internal/realtime"
)

func TestAccountServiceCreate(t *testing.T) {
	env := newTestEnv(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: repotest.Tx(t, env.db)}

	before, _ := env.profiles.Count(dbc)
	acct, prof, err := env.accounts.Create(dbc, "  alice ", "s3cret")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if acct.Username != "alice" {
		t.Fatalf("Create: username not normalized, got %q", acct.Username)
	}
	if acct.Password == "s3cret" || !env.accounts.CheckPassword(acct, "s3cret") {
		t.Fatalf("Create: password must be stored hashed and verify")
	}
	if env.accounts.CheckPassword(acct, "wrong") {
		t.Fatalf("CheckPassword accepted a wrong password")
	}

	if prof.AccountID != acct.ID || prof.String() != "alice" {
		t.Fatalf("Create: profile not bound to account: %+v", prof)
	}
	after, _ := env.profiles.Count(dbc)
	if after != before+1 {
		t.Fatalf("profile count: got %d want %d", after, before+1)
	}

	loaded, err := env.accounts.GetProfile(dbc, acct.ID)
	if err != nil || loaded.ID != prof.ID || loaded.Account == nil || loaded.Account.ID != acct.ID {
		t.Fatalf("GetProfile: err=%v profile=%+v", err, loaded)
	}

	got := env.notifier.types()
	if len(got) != 1 || got[0] != realtime.EventAccountCreated {
		t.Fatalf("events: got %v", got)
	}
	if n := testutil.ToFloat64(env.metrics.SocialOps().WithLabelValues("account.create", observability.OutcomeOK)); n != 1 {
		t.Fatalf("account.create ok counter: got %v", n)
	}
}

func TestAccountServiceCreateRejects(t *testing.T) {
	env := newTestEnv(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: repotest.Tx(t, env.db)}

	if _, _, err := env.accounts.Create(dbc, "bob", "pw"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	cases := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"duplicate", "bob", "pw", errors.ErrConflict},
		{"duplicate after trim", " bob ", "pw", errors.ErrConflict},
		{"empty username", "   ", "pw", errors.ErrInvalidArgument},
		{"bad character", "bob smith", "pw", errors.ErrInvalidArgument},
		{"too long", strings.Repeat("a", 151), "pw", errors.ErrInvalidArgument},
		{"empty password", "carol", "", errors.ErrInvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := env.accounts.Create(dbc, tc.username, tc.password); !errors.Is(err, tc.want) {
				t.Fatalf("Create(%q): expected %v, got %v", tc.username, tc.want, err)
			}
		})
	}

	if n, _ := env.profiles.Count(dbc); n != 1 {
		t.Fatalf("rejected creates must not leave profiles behind, got %d", n)
	}
	if _, err := env.accounts.GetByUsername(dbc, "carol"); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("GetByUsername(carol): expected ErrNotFound, got %v", err)
	}
}

func TestAccountServiceRename(t *testing.T) {
	env := newTestEnv(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: repotest.Tx(t, env.db)}

	acct, prof, err := env.accounts.Create(dbc, "alice", "pw")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, _, err := env.accounts.Create(dbc, "bob", "pw"); err != nil {
		t.Fatalf("Create bob: %v", err)
	}

	renamed, err := env.accounts.Rename(dbc, acct.ID, "alicia")
	if err != nil || renamed.Username != "alicia" {
		t.Fatalf("Rename: err=%v account=%+v", err, renamed)
	}
	if evt := env.notifier.last(); evt.Type != realtime.EventAccountRenamed || evt.ProfileID != prof.ID {
		t.Fatalf("renamed event: %+v", evt)
	}

	// The profile's display name follows the account without any profile write.
	loaded, err := env.accounts.GetProfile(dbc, acct.ID)
	if err != nil || loaded.ID != prof.ID || loaded.String() != "alicia" {
		t.Fatalf("GetProfile after rename: err=%v name=%q", err, loaded.String())
	}
	if _, err := env.accounts.GetByUsername(dbc, "alice"); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("old username should not resolve, got %v", err)
	}

	if _, err := env.accounts.Rename(dbc, acct.ID, "bob"); !errors.Is(err, errors.ErrConflict) {
		t.Fatalf("Rename to taken name: expected ErrConflict, got %v", err)
	}
	if _, err := env.accounts.Rename(dbc, acct.ID, "no spaces"); !errors.Is(err, errors.ErrInvalidArgument) {
		t.Fatalf("Rename to invalid name: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := env.accounts.Rename(dbc, uuid.New(), "zed"); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("Rename unknown account: expected ErrNotFound, got %v", err)
	}

	events := len(env.notifier.types())
	if _, err := env.accounts.Rename(dbc, acct.ID, "alicia"); err != nil {
		t.Fatalf("Rename to same name: %v", err)
	}
	if len(env.notifier.types()) != events {
		t.Fatalf("Rename to same name should not publish")
	}
}

func TestAccountServiceDelete(t *testing.T) {
	env := newTestEnv(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: repotest.Tx(t, env.db)}

	alice, aliceProf, err := env.accounts.Create(dbc, "alice", "pw")
	if err != nil {
		t.Fatalf("Create alice: %v", err)
	}
	_, bobProf, err := env.accounts.Create(dbc, "bob", "pw")
	if err != nil {
		t.Fatalf("Create bob: %v", err)
	}
	if err := env.follows.Follow(dbc, aliceProf.ID, bobProf.ID); err != nil {
		t.Fatalf("Follow alice->bob: %v", err)
	}
	if err := env.follows.Follow(dbc, bobProf.ID, aliceProf.ID); err != nil {
		t.Fatalf("Follow bob->alice: %v", err)
	}

	before, _ := env.profiles.Count(dbc)
	if err := env.accounts.Delete(dbc, alice.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	after, _ := env.profiles.Count(dbc)
	if after != before-1 {
		t.Fatalf("profile count: got %d want %d", after, before-1)
	}
	if _, err := env.accounts.GetProfile(dbc, alice.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("GetProfile after delete: expected ErrNotFound, got %v", err)
	}
	if _, err := env.accounts.GetByUsername(dbc, "alice"); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("GetByUsername after delete: expected ErrNotFound, got %v", err)
	}

	followers, err := env.follows.ListFollowers(dbc, bobProf.ID)
	if err != nil || len(followers) != 0 {
		t.Fatalf("bob followers after delete: err=%v len=%d", err, len(followers))
	}
	followed, err := env.follows.ListFollowed(dbc, bobProf.ID)
	if err != nil || len(followed) != 0 {
		t.Fatalf("bob followed after delete: err=%v len=%d", err, len(followed))
	}

	invalidated := map[uuid.UUID]bool{}
	for _, id := range env.cache.invalidated {
		invalidated[id] = true
	}
	if !invalidated[aliceProf.ID] || !invalidated[bobProf.ID] {
		t.Fatalf("delete should invalidate both sides of every edge, got %v", env.cache.invalidated)
	}

	got := env.notifier.types()
	if got[len(got)-1] != realtime.EventAccountDeleted {
		t.Fatalf("last event: got %v", got[len(got)-1])
	}

	if err := env.accounts.Delete(dbc, alice.ID); !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("Delete twice: expected ErrNotFound, got %v", err)
	}
}

type failingProfileLookup struct {
	repos.ProfileRepo
	err error
}

func (r failingProfileLookup) GetByAccountIDs(dbctx.Context, []uuid.UUID) ([]*types.Profile, error) {
	return nil, r.err
}

func TestAccountServiceRenameFailsWhenProfileLookupFails(t *testing.T) {
	env := newTestEnv(t)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: repotest.Tx(t, env.db)}
	acct, _, err := env.accounts.Create(dbc, "alice", "pw")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	lookupErr := stderrors.New("profile lookup failed")
	accounts := NewAccountService(env.db, repotest.Logger(t), AccountServiceDeps{
		AccountRepo: repos.NewAccountRepo(env.db, repotest.Logger(t)),
		ProfileRepo: failingProfileLookup{ProfileRepo: env.profiles, err: lookupErr},
		FollowRepo:  env.follow,
		Notifier:    env.notifier,
		StatsCache:  env.guard,
	})
	events := len(env.notifier.types())
	if _, err := accounts.Rename(dbc, acct.ID, "alicia"); !stderrors.Is(err, lookupErr) {
		t.Fatalf("Rename: expected the lookup error, got %v", err)
	}
	if len(env.notifier.types()) != events {
		t.Fatalf("failed rename should not publish")
	}
	if _, err := env.accounts.GetByUsername(dbc, "alice"); err != nil {
		t.Fatalf("failed rename should roll back: %v", err)
	}
}

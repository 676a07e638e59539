package social

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/dwitter-backend/internal/data/repos/testutil"
	types "github.com/yungbote/dwitter-backend/internal/domain"
	"github.com/yungbote/dwitter-backend/internal/pkg/dbctx"
)

func TestProfileRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewProfileRepo(db, testutil.Logger(t))

	a := testutil.SeedAccount(t, ctx, tx, "profilerepo")
	created, err := repo.Create(dbc, []*types.Profile{{AccountID: a.ID}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: unexpected result: %+v", created)
	}

	byID, err := repo.GetByIDs(dbc, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(byID) != 1 || byID[0].Account == nil || byID[0].Account.ID != a.ID {
		t.Fatalf("GetByIDs: expected owner preloaded, got %+v", byID)
	}
	if byID[0].String() != "profilerepo" {
		t.Fatalf("String: got %q", byID[0].String())
	}

	byAccount, err := repo.GetByAccountIDs(dbc, []uuid.UUID{a.ID})
	if err != nil || len(byAccount) != 1 || byAccount[0].ID != created[0].ID {
		t.Fatalf("GetByAccountIDs: err=%v rows=%+v", err, byAccount)
	}

	byName, err := repo.GetByUsernames(dbc, []string{"profilerepo", "nobody"})
	if err != nil || len(byName) != 1 || byName[0].ID != created[0].ID {
		t.Fatalf("GetByUsernames: err=%v rows=%+v", err, byName)
	}

	missing := uuid.New()
	existing, err := repo.ExistingIDs(dbc, []uuid.UUID{created[0].ID, missing})
	if err != nil {
		t.Fatalf("ExistingIDs: %v", err)
	}
	if !existing[created[0].ID] || existing[missing] {
		t.Fatalf("ExistingIDs: unexpected result: %v", existing)
	}

	if _, err := repo.Create(dbc, []*types.Profile{{AccountID: a.ID}}); err == nil {
		t.Fatalf("Create second profile for the same account: expected unique violation")
	}
}

func TestProfileRepoListCountDelete(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewProfileRepo(db, testutil.Logger(t))

	p1 := testutil.SeedProfile(t, ctx, tx, "user1")
	testutil.SeedProfile(t, ctx, tx, "user2")

	count, err := repo.Count(dbc)
	if err != nil || count != 2 {
		t.Fatalf("Count: count=%d err=%v", count, err)
	}

	all, err := repo.List(dbc, 0, 0)
	if err != nil || len(all) != 2 {
		t.Fatalf("List: err=%v len=%d", err, len(all))
	}
	page, err := repo.List(dbc, 1, 1)
	if err != nil || len(page) != 1 {
		t.Fatalf("List page: err=%v len=%d", err, len(page))
	}

	deleted, err := repo.FullDeleteByAccountIDs(dbc, []uuid.UUID{p1.AccountID})
	if err != nil || deleted != 1 {
		t.Fatalf("FullDeleteByAccountIDs: deleted=%d err=%v", deleted, err)
	}
	count, err = repo.Count(dbc)
	if err != nil || count != 1 {
		t.Fatalf("Count after delete: count=%d err=%v", count, err)
	}
}

func TestProfileCascadesFromAccount(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewProfileRepo(db, testutil.Logger(t))

	p := testutil.SeedProfile(t, ctx, tx, "cascade")
	if err := tx.WithContext(ctx).Where("id = ?", p.AccountID).Delete(&types.Account{}).Error; err != nil {
		t.Fatalf("delete account: %v", err)
	}
	rows, err := repo.GetByAccountIDs(dbc, []uuid.UUID{p.AccountID})
	if err != nil {
		t.Fatalf("GetByAccountIDs: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected foreign key cascade to remove the profile, got %+v", rows)
	}
}

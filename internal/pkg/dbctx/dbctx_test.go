package dbctx_test

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/dwitter-backend/internal/data/repos/testutil"
	"github.com/yungbote/dwitter-backend/internal/pkg/dbctx"
)

func TestAfterCommitWithoutHooksRunsNow(t *testing.T) {
	db := testutil.DB(t)
	ran := 0
	dbctx.Background().AfterCommit(func() { ran++ })
	dbctx.Background().WithTx(db).AfterCommit(func() { ran++ })
	if ran != 2 {
		t.Fatalf("AfterCommit without hooks: ran %d of 2", ran)
	}
}

func TestAfterCommitDefersUntilRun(t *testing.T) {
	db := testutil.DB(t)
	dbc, hooks := dbctx.Background().WithTx(db).WithCommitHooks()

	var order []int
	dbc.AfterCommit(func() { order = append(order, 1) })
	dbc.WithTx(db).AfterCommit(func() { order = append(order, 2) })
	if len(order) != 0 {
		t.Fatalf("hooks ran before commit: %v", order)
	}
	hooks.Run()
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("hooks order: %v", order)
	}
	hooks.Run()
	if len(order) != 2 {
		t.Fatalf("hooks ran twice: %v", order)
	}
}

func TestTransactionRunsHooksOnlyOnCommit(t *testing.T) {
	db := testutil.DB(t)

	committed := false
	err := dbctx.Transaction(context.Background(), db, func(dbc dbctx.Context) error {
		return dbc.Tx.Transaction(func(tx *gorm.DB) error {
			dbc.WithTx(tx).AfterCommit(func() { committed = true })
			if committed {
				t.Errorf("hook ran inside the savepoint")
			}
			return nil
		})
	})
	if err != nil || !committed {
		t.Fatalf("commit: err=%v ran=%v", err, committed)
	}

	failed := errors.New("boom")
	rolledBack := false
	err = dbctx.Transaction(context.Background(), db, func(dbc dbctx.Context) error {
		dbc.AfterCommit(func() { rolledBack = true })
		return failed
	})
	if !errors.Is(err, failed) || rolledBack {
		t.Fatalf("rollback: err=%v ran=%v", err, rolledBack)
	}
}

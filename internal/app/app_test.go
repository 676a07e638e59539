package app

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/dwitter-backend/internal/data/db"
	"github.com/yungbote/dwitter-backend/internal/pkg/dbctx"
	"github.com/yungbote/dwitter-backend/internal/pkg/logger"
	"github.com/yungbote/dwitter-backend/internal/realtime"
)

func TestAppWiresSQLite(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DB = db.Config{
		Driver: db.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}

	a, err := NewWithLogger(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("NewWithLogger: %v", err)
	}
	defer a.Close()
	if err := a.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	dbc := dbctx.Context{Ctx: context.Background()}
	_, alice, err := a.Services.Accounts.Create(dbc, "alice", "pw")
	if err != nil {
		t.Fatalf("Create alice: %v", err)
	}
	_, bob, err := a.Services.Accounts.Create(dbc, "bob", "pw")
	if err != nil {
		t.Fatalf("Create bob: %v", err)
	}
	if err := a.Services.Follows.Follow(dbc, alice.ID, bob.ID); err != nil {
		t.Fatalf("Follow: %v", err)
	}
	stats, err := a.Services.Follows.Stats(dbc, bob.ID)
	if err != nil || stats.Followers != 1 {
		t.Fatalf("Stats: err=%v stats=%+v", err, stats)
	}
}

type recordingApplier struct {
	mu      sync.Mutex
	types   []realtime.EventType
	ctxErrs []error
}

func (r *recordingApplier) Enabled() bool { return true }

func (r *recordingApplier) Apply(ctx context.Context, evt realtime.SocialEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, evt.Type)
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
	return nil
}

func TestAppCloseDeliversEventsToProjector(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DB = db.Config{
		Driver: db.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}
	a, err := NewWithLogger(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("NewWithLogger: %v", err)
	}
	rec := &recordingApplier{}
	a.graph = rec
	if err := a.Start(); err != nil {
		a.Close()
		t.Fatalf("Start: %v", err)
	}

	dbc := dbctx.Background()
	if _, _, err := a.Services.Accounts.Create(dbc, "alice", "pw"); err != nil {
		a.Close()
		t.Fatalf("Create: %v", err)
	}
	a.Close()

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.types) != 1 || rec.types[0] != realtime.EventAccountCreated {
		t.Fatalf("projector events after Close: %v", rec.types)
	}
	if rec.ctxErrs[0] != nil {
		t.Fatalf("projector applied with a cancelled context: %v", rec.ctxErrs[0])
	}
}

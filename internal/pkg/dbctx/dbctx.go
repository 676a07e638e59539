package dbctx

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
// Hooks, when set, collects post-commit work for the outermost transaction.
type Context struct {
	Ctx   context.Context
	Tx    *gorm.DB
	Hooks *CommitHooks
}

// Background returns a Context with no transaction bound.
func Background() Context { return Context{Ctx: context.Background()} }

// WithTx returns a copy of c bound to tx.
func (c Context) WithTx(tx *gorm.DB) Context {
	return Context{Ctx: c.Context(), Tx: tx, Hooks: c.Hooks}
}

// WithCommitHooks returns a copy of c carrying a fresh hook list. The owner of the
// transaction runs or discards the list once it commits or rolls back.
func (c Context) WithCommitHooks() (Context, *CommitHooks) {
	h := &CommitHooks{}
	return Context{Ctx: c.Context(), Tx: c.Tx, Hooks: h}, h
}

// AfterCommit defers fn until the owning transaction commits when c carries both a
// transaction and hooks. Otherwise fn runs now.
func (c Context) AfterCommit(fn func()) {
	if fn == nil {
		return
	}
	if c.Tx != nil && c.Hooks != nil {
		c.Hooks.add(fn)
		return
	}
	fn()
}

// Context never returns nil.
func (c Context) Context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

type CommitHooks struct {
	mu  sync.Mutex
	fns []func()
}

func (h *CommitHooks) add(fn func()) {
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

func (h *CommitHooks) take() []func() {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	fns := h.fns
	h.fns = nil
	return fns
}

// Run executes the collected hooks in registration order and clears them.
func (h *CommitHooks) Run() {
	for _, fn := range h.take() {
		fn()
	}
}

// Discard drops the collected hooks without running them.
func (h *CommitHooks) Discard() {
	h.take()
}

// Transaction runs fn in a transaction on db. Work registered through AfterCommit
// runs only if the transaction commits.
func Transaction(ctx context.Context, db *gorm.DB, fn func(dbc Context) error) error {
	dbc, hooks := Context{Ctx: ctx}.WithCommitHooks()
	err := db.WithContext(dbc.Context()).Transaction(func(tx *gorm.DB) error {
		return fn(dbc.WithTx(tx))
	})
	if err != nil {
		hooks.Discard()
		return err
	}
	hooks.Run()
	return nil
}

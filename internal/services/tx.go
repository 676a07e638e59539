package services

import (
	"gorm.io/gorm"

	"github.com/yungbote/dwitter-backend/internal/pkg/dbctx"
)

// runInTx runs fn in a transaction. When the caller already holds one, fn runs in a
// savepoint on it so a failure rolls back only this unit of work. Commit hooks carried
// by dbc stay attached to the inner context.
func runInTx(db *gorm.DB, dbc dbctx.Context, fn func(inner dbctx.Context) error) error {
	ctx := dbc.Context()
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(dbc.WithTx(tx))
		})
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbc.WithTx(tx))
	})
}

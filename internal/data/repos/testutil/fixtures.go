package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/dwitter-backend/internal/domain"
)

func SeedAccount(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.Account {
	tb.Helper()
	a := &types.Account{
		ID:       uuid.New(),
		Username: username,
		Password: "pw",
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed account: %v", err)
	}
	return a
}

// SeedProfile seeds an account and its profile directly, bypassing the services.
func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.Profile {
	tb.Helper()
	a := SeedAccount(tb, ctx, tx, username)
	p := &types.Profile{
		ID:        uuid.New(),
		AccountID: a.ID,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	p.Account = a
	return p
}

func SeedFollow(tb testing.TB, ctx context.Context, tx *gorm.DB, profileID, followedID uuid.UUID) *types.Follow {
	tb.Helper()
	f := &types.Follow{
		ProfileID:  profileID,
		FollowedID: followedID,
	}
	if err := tx.WithContext(ctx).Create(f).Error; err != nil {
		tb.Fatalf("seed follow: %v", err)
	}
	return f
}

package db

import (
	"fmt"

	types "github.com/yungbote/dwitter-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Account{},
		&types.Profile{},
		&types.Follow{},
	)
}

func EnsureSocialIndexes(db *gorm.DB) error {
	// Follower lookups scan by the second primary key column.
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_profile_follow_followed_id ON profile_follow(followed_id);`).Error; err != nil {
		return fmt.Errorf("create idx_profile_follow_followed_id: %w", err)
	}
	return nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureSocialIndexes(s.db); err != nil {
		s.log.Error("Social index migration failed", "error", err)
		return err
	}
	return nil
}

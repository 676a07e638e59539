package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/dwitter-backend/internal/data/repos/account"
	"github.com/yungbote/dwitter-backend/internal/data/repos/social"
	"github.com/yungbote/dwitter-backend/internal/pkg/logger"
)

type AccountRepo = account.AccountRepo

type ProfileRepo = social.ProfileRepo
type FollowRepo = social.FollowRepo

func NewAccountRepo(db *gorm.DB, log *logger.Logger) AccountRepo {
	return account.NewAccountRepo(db, log)
}

func NewProfileRepo(db *gorm.DB, log *logger.Logger) ProfileRepo {
	return social.NewProfileRepo(db, log)
}

func NewFollowRepo(db *gorm.DB, log *logger.Logger) FollowRepo {
	return social.NewFollowRepo(db, log)
}

package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/dwitter-backend/internal/data/repos"
	"github.com/yungbote/dwitter-backend/internal/pkg/logger"
)

type Repos struct {
	Account repos.AccountRepo
	Profile repos.ProfileRepo
	Follow  repos.FollowRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Debug("Wiring repos...")
	return Repos{
		Account: repos.NewAccountRepo(db, log),
		Profile: repos.NewProfileRepo(db, log),
		Follow:  repos.NewFollowRepo(db, log),
	}
}

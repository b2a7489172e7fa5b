package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/cbl-backend/internal/data/repos"
	"github.com/yungbote/cbl-backend/internal/platform/logger"
)

type Repos struct {
	User        repos.UserRepo
	UserToken   repos.UserTokenRepo
	Project     repos.ProjectRepo
	EarnedBadge repos.EarnedBadgeRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:        repos.NewUserRepo(db, log),
		UserToken:   repos.NewUserTokenRepo(db, log),
		Project:     repos.NewProjectRepo(db, log),
		EarnedBadge: repos.NewEarnedBadgeRepo(db, log),
	}
}

package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/cbl-backend/internal/data/repos/auth"
	"github.com/yungbote/cbl-backend/internal/data/repos/cbl"
	"github.com/yungbote/cbl-backend/internal/data/repos/gamification"
	"github.com/yungbote/cbl-backend/internal/data/repos/user"
	"github.com/yungbote/cbl-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo
type ProjectRepo = cbl.ProjectRepo
type EarnedBadgeRepo = gamification.EarnedBadgeRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return user.NewUserRepo(db, baseLog)
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return cbl.NewProjectRepo(db, baseLog)
}

func NewEarnedBadgeRepo(db *gorm.DB, baseLog *logger.Logger) EarnedBadgeRepo {
	return gamification.NewEarnedBadgeRepo(db, baseLog)
}

package user

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/cbl-backend/internal/domain/user"
	"github.com/yungbote/cbl-backend/internal/platform/dbctx"
	"github.com/yungbote/cbl-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, users []*user.User) ([]*user.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*user.User, error)
	GetByEmails(dbc dbctx.Context, userEmails []string) ([]*user.User, error)
	EmailExists(dbc dbctx.Context, userEmail string) (bool, error)
	UpdateName(dbc dbctx.Context, userID uuid.UUID, firstName, lastName string) error
	UpdatePreferredTheme(dbc dbctx.Context, userID uuid.UUID, preferredTheme string) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(dbc dbctx.Context, users []*user.User) ([]*user.User, error) {
	if len(users) == 0 {
		return []*user.User{}, nil
	}
	for _, u := range users {
		u.Email = normalizeEmail(u.Email)
	}
	if err := dbc.Conn(ur.db).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*user.User, error) {
	var results []*user.User
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := dbc.Conn(ur.db).
		Where("id IN ?", userIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) GetByEmails(dbc dbctx.Context, userEmails []string) ([]*user.User, error) {
	var results []*user.User
	if len(userEmails) == 0 {
		return results, nil
	}
	emails := make([]string, 0, len(userEmails))
	for _, e := range userEmails {
		emails = append(emails, normalizeEmail(e))
	}
	if err := dbc.Conn(ur.db).
		Where("email IN ?", emails).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ur *userRepo) EmailExists(dbc dbctx.Context, userEmail string) (bool, error) {
	var count int64
	if err := dbc.Conn(ur.db).
		Model(&user.User{}).
		Where("email = ?", normalizeEmail(userEmail)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ur *userRepo) UpdateName(dbc dbctx.Context, userID uuid.UUID, firstName, lastName string) error {
	return dbc.Conn(ur.db).
		Model(&user.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"first_name": firstName,
			"last_name":  lastName,
		}).Error
}

func (ur *userRepo) UpdatePreferredTheme(dbc dbctx.Context, userID uuid.UUID, preferredTheme string) error {
	return dbc.Conn(ur.db).
		Model(&user.User{}).
		Where("id = ?", userID).
		Update("preferred_theme", preferredTheme).Error
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/cbl-backend/internal/data/repos"
	"github.com/yungbote/cbl-backend/internal/domain/errs"
	"github.com/yungbote/cbl-backend/internal/domain/user"
	"github.com/yungbote/cbl-backend/internal/platform/ctxutil"
	"github.com/yungbote/cbl-backend/internal/platform/dbctx"
	"github.com/yungbote/cbl-backend/internal/platform/logger"
	"github.com/yungbote/cbl-backend/internal/realtime"
)

type UserService interface {
	GetMe(dbc dbctx.Context) (*user.User, error)
	UpdateName(ctx context.Context, firstName, lastName string) (*user.User, error)
	UpdatePreferredTheme(ctx context.Context, preferredTheme string) (*user.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
	emit     SSEEmitter
}

var validThemePreferences = map[string]struct{}{
	"light":  {},
	"dark":   {},
	"system": {},
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, emit SSEEmitter) UserService {
	return &userService{
		db:       db,
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
		emit:     emit,
	}
}

func requireUser(ctx context.Context, op string) (uuid.UUID, error) {
	userID := ctxutil.CurrentUserID(ctx)
	if userID == uuid.Nil {
		return uuid.Nil, errs.New(errs.CodeUnauthorized, op, "request is not authenticated")
	}
	return userID, nil
}

func (us *userService) GetMe(dbc dbctx.Context) (*user.User, error) {
	const op = "user.me"
	userID, err := requireUser(dbc.Ctx, op)
	if err != nil {
		return nil, err
	}
	return us.load(dbc, op, userID)
}

func (us *userService) load(dbc dbctx.Context, op string, userID uuid.UUID) (*user.User, error) {
	found, err := us.userRepo.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return nil, repos.MapError(op, err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, errs.New(errs.CodeNotFound, op, "user does not exist")
	}
	return found[0], nil
}

func (us *userService) UpdateName(ctx context.Context, firstName, lastName string) (*user.User, error) {
	const op = "user.update_name"
	userID, err := requireUser(ctx, op)
	if err != nil {
		return nil, err
	}
	firstName, lastName = strings.TrimSpace(firstName), strings.TrimSpace(lastName)
	if firstName == "" {
		return nil, errs.WithDetails(errs.CodeValidation, op, "invalid input", []string{"first_name:required"})
	}

	var updated *user.User
	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := us.userRepo.UpdateName(dbc, userID, firstName, lastName); err != nil {
			return repos.MapError(op, err)
		}
		u, err := us.load(dbc, op, userID)
		updated = u
		return err
	})
	if err != nil {
		return nil, err
	}
	if us.emit != nil {
		us.emit.Emit(ctx, realtime.SSEMessage{
			Channel: realtime.UserChannel(userID),
			Event:   realtime.SSEEventUserNameChanged,
			Data:    map[string]any{"first_name": updated.FirstName, "last_name": updated.LastName},
		})
	}
	return updated, nil
}

func (us *userService) UpdatePreferredTheme(ctx context.Context, preferredTheme string) (*user.User, error) {
	const op = "user.update_theme"
	userID, err := requireUser(ctx, op)
	if err != nil {
		return nil, err
	}
	theme := strings.ToLower(strings.TrimSpace(preferredTheme))
	if _, ok := validThemePreferences[theme]; !ok {
		return nil, errs.WithDetails(errs.CodeValidation, op, "invalid input", []string{"preferred_theme:oneof"})
	}
	var updated *user.User
	err = us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := us.userRepo.UpdatePreferredTheme(dbc, userID, theme); err != nil {
			return repos.MapError(op, err)
		}
		u, err := us.load(dbc, op, userID)
		updated = u
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

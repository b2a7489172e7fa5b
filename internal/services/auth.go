package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/cbl-backend/internal/data/repos"
	"github.com/yungbote/cbl-backend/internal/domain/auth"
	"github.com/yungbote/cbl-backend/internal/domain/errs"
	"github.com/yungbote/cbl-backend/internal/domain/user"
	"github.com/yungbote/cbl-backend/internal/platform/ctxutil"
	"github.com/yungbote/cbl-backend/internal/platform/dbctx"
	"github.com/yungbote/cbl-backend/internal/platform/logger"
)

type JWTClaims struct {
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

type AuthService interface {
	RegisterUser(ctx context.Context, in RegisterInput) (*user.User, error)
	LoginUser(ctx context.Context, email, password string) (string, string, error)
	RefreshUser(ctx context.Context, refreshToken string) (string, string, error)
	LogoutUser(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, in RegisterInput) (*user.User, error) {
	const op = "auth.register"
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := validateInput(op, &in); err != nil {
		return nil, err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, op, err)
	}

	u := &user.User{
		ID:             uuid.New(),
		Email:          in.Email,
		Password:       string(hashed),
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		PreferredTheme: "system",
	}
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.userRepo.EmailExists(dbc, u.Email)
		if err != nil {
			return repos.MapError(op, err)
		}
		if exists {
			return errs.New(errs.CodeConflict, op, "email already registered")
		}
		if _, err := as.userRepo.Create(dbc, []*user.User{u}); err != nil {
			return repos.MapError(op, err)
		}
		return nil
	})
	if err != nil {
		as.log.Warn("Registration failed", "error", err)
		return nil, err
	}
	as.log.Info("User registered", "user_id", u.ID)
	return u, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	const op = "auth.login"
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", "", errs.New(errs.CodeValidation, op, "email and password are required")
	}
	invalid := errs.New(errs.CodeUnauthorized, op, "invalid email or password")

	var accessToken, refreshToken string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		users, err := as.userRepo.GetByEmails(dbc, []string{email})
		if err != nil {
			return repos.MapError(op, err)
		}
		if len(users) == 0 {
			return invalid
		}
		u := users[0]
		if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
			return invalid
		}
		accessToken, refreshToken, err = as.issueSession(dbc, u.ID)
		return err
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (string, string, error) {
	const op = "auth.refresh"
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		rd := ctxutil.GetRequestData(ctx)
		if rd != nil {
			refreshToken = rd.RefreshToken
		}
	}
	if refreshToken == "" {
		return "", "", errs.New(errs.CodeUnauthorized, op, "refresh token required")
	}

	var accessToken, newRefresh string
	expired := false
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		found, err := as.userTokenRepo.GetByRefreshTokens(dbc, []string{refreshToken})
		if err != nil {
			return repos.MapError(op, err)
		}
		if len(found) == 0 {
			return errs.New(errs.CodeUnauthorized, op, "unknown refresh token")
		}
		existing := found[0]
		if err := as.userTokenRepo.SoftDeleteByIDs(dbc, []uuid.UUID{existing.ID}); err != nil {
			return repos.MapError(op, err)
		}
		// the stale session is revoked either way
		if existing.ExpiresAt.Before(time.Now()) {
			expired = true
			return nil
		}
		accessToken, newRefresh, err = as.issueSession(dbc, existing.UserID)
		return err
	})
	if err != nil {
		return "", "", err
	}
	if expired {
		as.log.Warn("Refresh token expired")
		return "", "", errs.New(errs.CodeUnauthorized, op, "refresh token expired")
	}
	return accessToken, newRefresh, nil
}

func (as *authService) LogoutUser(ctx context.Context) error {
	const op = "auth.logout"
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.SessionID == uuid.Nil {
		return errs.New(errs.CodeUnauthorized, op, "no session in request")
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := as.userTokenRepo.SoftDeleteByIDs(dbc, []uuid.UUID{rd.SessionID}); err != nil {
		return repos.MapError(op, err)
	}
	as.log.Debug("Session closed", "session_id", rd.SessionID)
	return nil
}

// issueSession stores a new session row and returns its access and refresh tokens.
func (as *authService) issueSession(dbc dbctx.Context, userID uuid.UUID) (string, string, error) {
	sessionID := uuid.New()
	access, err := as.generateAccessToken(userID, sessionID)
	if err != nil {
		return "", "", errs.Wrap(errs.CodeInternal, "auth.session", err)
	}
	tok := &auth.UserToken{
		ID:           sessionID,
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: uuid.New().String(),
		ExpiresAt:    time.Now().Add(as.refreshTTL),
	}
	if _, err := as.userTokenRepo.Create(dbc, []*auth.UserToken{tok}); err != nil {
		as.log.Warn("Create User Token Error", "error", err)
		return "", "", repos.MapError("auth.session", err)
	}
	return tok.AccessToken, tok.RefreshToken, nil
}

func (as *authService) generateAccessToken(userID, sessionID uuid.UUID) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        sessionID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	const op = "auth.token"
	if tokenString == "" {
		return ctx, errs.New(errs.CodeUnauthorized, op, "missing token")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ctx, errs.New(errs.CodeUnauthorized, op, "token expired")
		}
		return ctx, errs.Wrap(errs.CodeUnauthorized, op, err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, errs.New(errs.CodeUnauthorized, op, "invalid or expired token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, errs.Wrap(errs.CodeUnauthorized, op, err)
	}

	found, err := as.userTokenRepo.GetByAccessTokens(dbctx.Context{Ctx: ctx}, []string{tokenString})
	if err != nil {
		as.log.Warn("Error fetching user token by access token", "error", err)
		return ctx, repos.MapError(op, err)
	}
	if len(found) == 0 {
		return ctx, errs.New(errs.CodeUnauthorized, op, "session revoked")
	}
	rd := &ctxutil.RequestData{
		TokenString:  tokenString,
		RefreshToken: found[0].RefreshToken,
		UserID:       userID,
		SessionID:    found[0].ID,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/cbl-backend/internal/data/repos"
	"github.com/yungbote/cbl-backend/internal/data/repos/testutil"
	"github.com/yungbote/cbl-backend/internal/modules/badges"
	"github.com/yungbote/cbl-backend/internal/realtime"
)

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (r *recordingEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingEmitter) count(event realtime.SSEEvent) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.msgs {
		if m.Event == event {
			n++
		}
	}
	return n
}

type fixture struct {
	db       *gorm.DB
	auth     AuthService
	users    UserService
	badges   BadgeService
	projects ProjectService
	center   *badges.Center
	emit     *recordingEmitter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	catalog, err := badges.Embedded()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	emit := &recordingEmitter{}
	center := badges.NewCenter(8, badges.DropOldest)

	userRepo := repos.NewUserRepo(db, log)
	tokenRepo := repos.NewUserTokenRepo(db, log)
	projectRepo := repos.NewProjectRepo(db, log)
	earnedRepo := repos.NewEarnedBadgeRepo(db, log)

	badgeSvc := NewBadgeService(db, log, catalog, earnedRepo, center, NewBadgeNotifier(emit))
	return &fixture{
		db:       db,
		auth:     NewAuthService(db, log, userRepo, tokenRepo, "test-secret", 15*time.Minute, 24*time.Hour),
		users:    NewUserService(db, log, userRepo, emit),
		badges:   badgeSvc,
		projects: NewProjectService(db, log, projectRepo, earnedRepo, badgeSvc, catalog, NewProjectNotifier(emit)),
		center:   center,
		emit:     emit,
	}
}

// signIn registers a fresh account and returns a context authenticated as it.
func (f *fixture) signIn(t *testing.T) context.Context {
	t.Helper()
	ctx := context.Background()
	email := "learner-" + uuid.NewString()[:8] + "@example.com"
	if _, err := f.auth.RegisterUser(ctx, RegisterInput{Email: email, FirstName: "Ana", LastName: "Lima", Password: "correct-horse"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	access, _, err := f.auth.LoginUser(ctx, email, "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	authed, err := f.auth.SetContextFromToken(ctx, access)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	return authed
}

func strPtr(s string) *string { return &s }

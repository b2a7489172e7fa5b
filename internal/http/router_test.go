package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/cbl-backend/internal/data/repos"
	"github.com/yungbote/cbl-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/cbl-backend/internal/http/handlers"
	httpMW "github.com/yungbote/cbl-backend/internal/http/middleware"
	"github.com/yungbote/cbl-backend/internal/modules/badges"
	"github.com/yungbote/cbl-backend/internal/realtime"
	"github.com/yungbote/cbl-backend/internal/services"
)

type captureEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (e *captureEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.msgs = append(e.msgs, msg)
}

func (e *captureEmitter) events() []realtime.SSEEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]realtime.SSEEvent, 0, len(e.msgs))
	for _, m := range e.msgs {
		out = append(out, m.Event)
	}
	return out
}

type testServer struct {
	engine *gin.Engine
	emit   *captureEmitter
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	catalog, err := badges.Embedded()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	emit := &captureEmitter{}
	buffered := &services.BufferedEmitter{Next: emit}
	hub := realtime.NewSSEHub(log)

	earned := repos.NewEarnedBadgeRepo(db, log)
	auth := services.NewAuthService(db, log, repos.NewUserRepo(db, log), repos.NewUserTokenRepo(db, log), "router-secret", time.Hour, 24*time.Hour)
	badgeSvc := services.NewBadgeService(db, log, catalog, earned, badges.NewCenter(4, badges.DropOldest), services.NewBadgeNotifier(buffered))
	projects := services.NewProjectService(db, log, repos.NewProjectRepo(db, log), earned, badgeSvc, catalog, services.NewProjectNotifier(buffered))
	art, err := services.NewBadgeArtService(log, nil)
	if err != nil {
		t.Fatalf("art: %v", err)
	}

	engine := NewRouter(RouterConfig{
		Log:             log,
		Emitter:         emit,
		HealthHandler:   httpH.NewHealthHandler(db),
		AuthHandler:     httpH.NewAuthHandler(auth),
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, auth),
		UserHandler:     httpH.NewUserHandler(services.NewUserService(db, log, repos.NewUserRepo(db, log), buffered)),
		RealtimeHandler: httpH.NewRealtimeHandler(log, hub, projects),
		ProjectHandler:  httpH.NewProjectHandler(projects),
		BadgeHandler:    httpH.NewBadgeHandler(badgeSvc, art),
	})
	return &testServer{engine: engine, emit: emit}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return out
}

func (s *testServer) login(t *testing.T) {
	t.Helper()
	email := "router-" + uuid.NewString()[:8] + "@example.com"
	if rec := s.do(t, http.MethodPost, "/api/register", gin.H{"email": email, "first_name": "Rui", "password": "long-enough"}); rec.Code != http.StatusCreated {
		t.Fatalf("register status=%d body=%s", rec.Code, rec.Body.String())
	}
	rec := s.do(t, http.MethodPost, "/api/login", gin.H{"email": email, "password": "long-enough"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", rec.Code, rec.Body.String())
	}
	s.token = decode[struct {
		AccessToken string `json:"access_token"`
	}](t, rec).AccessToken
}

type projectBody struct {
	Project struct {
		ID           uuid.UUID `json:"id"`
		CurrentPhase string    `json:"current_phase"`
	} `json:"project"`
	NewBadges []struct {
		BadgeID string `json:"id"`
	} `json:"new_badges"`
}

func TestRouterRejectsAnonymous(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/projects", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", rec.Code)
	}
	s.token = "not-a-jwt"
	if rec := s.do(t, http.MethodGet, "/api/me", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token status=%d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/healthcheck", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthcheck status=%d", rec.Code)
	}
}

func TestRouterProjectJourney(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	rec := s.do(t, http.MethodPost, "/api/projects", gin.H{"title": "Água limpa"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", rec.Code, rec.Body.String())
	}
	created := decode[projectBody](t, rec)
	base := "/api/projects/" + created.Project.ID.String()

	rec = s.do(t, http.MethodPut, base+"/fields/big_idea", gin.H{"value": "Water"})
	if rec.Code != http.StatusOK {
		t.Fatalf("save status=%d body=%s", rec.Code, rec.Body.String())
	}
	saved := decode[projectBody](t, rec)
	if len(saved.NewBadges) != 1 || saved.NewBadges[0].BadgeID != "primeiro_passo" {
		t.Fatalf("new badges=%+v", saved.NewBadges)
	}

	if rec := s.do(t, http.MethodPut, base+"/fields/mood", gin.H{"value": "x"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field status=%d", rec.Code)
	}

	rec = s.do(t, http.MethodPost, base+"/navigate", gin.H{"phase": "act"})
	nav := decode[struct {
		Decision struct {
			Granted bool   `json:"granted"`
			Phase   string `json:"phase"`
		} `json:"decision"`
	}](t, rec)
	if rec.Code != http.StatusOK || nav.Decision.Granted || nav.Decision.Phase != "engage" {
		t.Fatalf("navigate status=%d decision=%+v", rec.Code, nav.Decision)
	}

	rec = s.do(t, http.MethodPost, base+"/phases/engage/complete", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("complete status=%d body=%s", rec.Code, rec.Body.String())
	}
	env := decode[struct {
		Error struct {
			Code    string   `json:"code"`
			Details []string `json:"details"`
		} `json:"error"`
	}](t, rec)
	if env.Error.Code != "precondition_failed" || len(env.Error.Details) != 2 {
		t.Fatalf("error=%+v", env.Error)
	}

	rec = s.do(t, http.MethodGet, "/api/me/badges/stats", nil)
	stats := decode[struct {
		Stats badges.Stats `json:"stats"`
	}](t, rec)
	if stats.Stats.TotalXP != 50 || stats.Stats.EarnedCount != 1 {
		t.Fatalf("stats=%+v", stats.Stats)
	}

	var sawBadge bool
	for _, ev := range s.emit.events() {
		if ev == realtime.SSEEventBadgeEarned {
			sawBadge = true
		}
	}
	if !sawBadge {
		t.Fatalf("BadgeEarned not flushed: %v", s.emit.events())
	}

	if rec := s.do(t, http.MethodGet, "/api/projects/not-a-uuid", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status=%d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/api/projects/"+uuid.NewString(), nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing project status=%d", rec.Code)
	}
}

func TestRouterBadgeCatalogAndArt(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/badges?rarity=legendary", nil)
	list := decode[struct {
		Badges []struct {
			ID string `json:"id"`
		} `json:"badges"`
	}](t, rec)
	if len(list.Badges) != 1 || list.Badges[0].ID != "mestre_cbl" {
		t.Fatalf("legendary=%+v", list.Badges)
	}
	if rec := s.do(t, http.MethodGet, "/api/badges?rarity=mythic", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad rarity status=%d", rec.Code)
	}

	rec = s.do(t, http.MethodGet, "/api/badges/criador/art.png", nil)
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("art status=%d type=%q", rec.Code, rec.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Fatalf("art is not a png")
	}
	if rec := s.do(t, http.MethodGet, "/api/badges/unicorn/art.png", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown art status=%d", rec.Code)
	}
}

func TestRouterTriggersAndNotifications(t *testing.T) {
	s := newTestServer(t)
	s.login(t)

	rec := s.do(t, http.MethodPost, "/api/triggers", gin.H{"name": "questions_answered_5", "context": gin.H{"questions_answered": 5}})
	got := decode[projectBody](t, rec)
	if rec.Code != http.StatusOK || len(got.NewBadges) != 1 || got.NewBadges[0].BadgeID != "analista" {
		t.Fatalf("trigger status=%d badges=%+v", rec.Code, got.NewBadges)
	}
	rec = s.do(t, http.MethodPost, "/api/triggers", gin.H{"name": "teleported"})
	if got := decode[projectBody](t, rec); rec.Code != http.StatusOK || len(got.NewBadges) != 0 {
		t.Fatalf("unknown trigger status=%d badges=%+v", rec.Code, got.NewBadges)
	}

	rec = s.do(t, http.MethodGet, "/api/me/badges/analista/can-earn", nil)
	if can := decode[struct {
		CanEarn bool `json:"can_earn"`
	}](t, rec); can.CanEarn {
		t.Fatalf("analista still earnable")
	}
	rec = s.do(t, http.MethodPost, "/api/me/badges/unicorn/grant", nil)
	if g := decode[struct {
		Granted bool `json:"granted"`
	}](t, rec); rec.Code != http.StatusOK || g.Granted {
		t.Fatalf("unknown grant status=%d body=%s", rec.Code, rec.Body.String())
	}

	if rec := s.do(t, http.MethodPost, "/api/me/notifications/dismiss", nil); rec.Code != http.StatusOK {
		t.Fatalf("dismiss status=%d body=%s", rec.Code, rec.Body.String())
	}
	if rec := s.do(t, http.MethodPost, "/api/me/notifications/dismiss", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("empty dismiss status=%d", rec.Code)
	}
}

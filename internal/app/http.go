package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/cbl-backend/internal/http"
	httpH "github.com/yungbote/cbl-backend/internal/http/handlers"
	httpMW "github.com/yungbote/cbl-backend/internal/http/middleware"
	"github.com/yungbote/cbl-backend/internal/observability"
	"github.com/yungbote/cbl-backend/internal/platform/logger"
	"github.com/yungbote/cbl-backend/internal/realtime"
)

const serviceName = "cbl-api"

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Auth     *httpH.AuthHandler
	User     *httpH.UserHandler
	Realtime *httpH.RealtimeHandler
	Project  *httpH.ProjectHandler
	Badge    *httpH.BadgeHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services, sseHub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(db),
		Auth:     httpH.NewAuthHandler(services.Auth),
		User:     httpH.NewUserHandler(services.User),
		Realtime: httpH.NewRealtimeHandler(log, sseHub, services.Project),
		Project:  httpH.NewProjectHandler(services.Project),
		Badge:    httpH.NewBadgeHandler(services.Badge, services.BadgeArt),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, services Services, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:             log,
		ServiceName:     serviceName,
		Emitter:         services.Emitter,
		Metrics:         metrics,
		HealthHandler:   handlers.Health,
		AuthHandler:     handlers.Auth,
		AuthMiddleware:  middleware.Auth,
		UserHandler:     handlers.User,
		RealtimeHandler: handlers.Realtime,
		ProjectHandler:  handlers.Project,
		BadgeHandler:    handlers.Badge,
	})
}

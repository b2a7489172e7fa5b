package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/cbl-backend/internal/http/handlers"
	httpMW "github.com/yungbote/cbl-backend/internal/http/middleware"
	"github.com/yungbote/cbl-backend/internal/observability"
	"github.com/yungbote/cbl-backend/internal/platform/logger"
	"github.com/yungbote/cbl-backend/internal/services"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	Emitter     services.SSEEmitter
	Metrics     *observability.Metrics

	AuthHandler     *httpH.AuthHandler
	AuthMiddleware  *httpMW.AuthMiddleware
	UserHandler     *httpH.UserHandler
	RealtimeHandler *httpH.RealtimeHandler
	ProjectHandler  *httpH.ProjectHandler
	BadgeHandler    *httpH.BadgeHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS())
	r.Use(httpMW.AttachRequestContext(cfg.Emitter))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}

		// Badge catalog (public)
		if cfg.BadgeHandler != nil {
			api.GET("/badges", cfg.BadgeHandler.Catalog)
			api.GET("/badges/:id/art.png", cfg.BadgeHandler.Art)
			api.GET("/badges/:id/art-url", cfg.BadgeHandler.ArtURL)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
			protected.POST("/sse/subscribe", cfg.RealtimeHandler.SSESubscribe)
			protected.POST("/sse/unsubscribe", cfg.RealtimeHandler.SSEUnsubscribe)
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.PATCH("/me/name", cfg.UserHandler.ChangeName)
			protected.PATCH("/me/theme", cfg.UserHandler.ChangeTheme)
		}

		// Projects
		if cfg.ProjectHandler != nil {
			protected.POST("/projects", cfg.ProjectHandler.Create)
			protected.GET("/projects", cfg.ProjectHandler.List)
			protected.GET("/projects/:id", cfg.ProjectHandler.Get)
			protected.PATCH("/projects/:id", cfg.ProjectHandler.Update)
			protected.DELETE("/projects/:id", cfg.ProjectHandler.Delete)
			protected.PUT("/projects/:id/fields/:field", cfg.ProjectHandler.SaveField)
			protected.POST("/projects/:id/checklist", cfg.ProjectHandler.AddChecklistItem)
			protected.PATCH("/projects/:id/checklist/:itemId", cfg.ProjectHandler.ToggleChecklistItem)
			protected.GET("/projects/:id/progress", cfg.ProjectHandler.Progress)
			protected.POST("/projects/:id/navigate", cfg.ProjectHandler.Navigate)
			protected.POST("/projects/:id/phases/:phase/complete", cfg.ProjectHandler.CompletePhase)
			protected.POST("/projects/:id/badges/sync", cfg.ProjectHandler.SyncBadges)
			protected.POST("/projects/:id/nudges", cfg.ProjectHandler.Nudge)
			protected.GET("/projects/:id/dashboard", cfg.ProjectHandler.Dashboard)
		}

		// Badges (Me)
		if cfg.BadgeHandler != nil {
			protected.GET("/me/badges", cfg.BadgeHandler.ListEarned)
			protected.GET("/me/badges/stats", cfg.BadgeHandler.Stats)
			protected.GET("/me/badges/:id/can-earn", cfg.BadgeHandler.CanEarn)
			protected.POST("/me/badges/:id/grant", cfg.BadgeHandler.Grant)
			protected.POST("/triggers", cfg.BadgeHandler.CheckTrigger)
			protected.GET("/me/notifications", cfg.BadgeHandler.Notifications)
			protected.POST("/me/notifications/dismiss", cfg.BadgeHandler.Dismiss)
		}
	}

	return r
}

package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/cbl-backend/internal/modules/badges"
	"github.com/yungbote/cbl-backend/internal/platform/logger"
	"github.com/yungbote/cbl-backend/internal/realtime"
	"github.com/yungbote/cbl-backend/internal/services"
)

type Services struct {
	// Emitter delivers SSE messages: straight to the hub, or through the
	// redis bus when several replicas share clients.
	Emitter services.SSEEmitter

	Catalog  *badges.Catalog
	Center   *badges.Center
	Auth     services.AuthService
	User     services.UserService
	Badge    services.BadgeService
	BadgeArt services.BadgeArtService
	Project  services.ProjectService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients, hub *realtime.SSEHub) (Services, error) {
	log.Info("Wiring services...")

	var emit services.SSEEmitter = &services.HubEmitter{Hub: hub}
	if clients.SSEBus != nil {
		emit = &services.RedisEmitter{Bus: clients.SSEBus, Log: log}
	}
	// handlers emit into the request buffer; middleware flushes to emit
	buffered := &services.BufferedEmitter{Next: emit}

	catalog, err := badges.Load()
	if err != nil {
		return Services{}, fmt.Errorf("load badge catalog: %w", err)
	}
	log.Info("Badge catalog loaded", "badges", catalog.Size(), "total_xp", catalog.TotalXP())

	center := badges.NewCenter(cfg.NotificationCapacity, cfg.NotificationOverflow)

	badgeArt, err := services.NewBadgeArtService(log, clients.GcpBucket)
	if err != nil {
		return Services{}, fmt.Errorf("init badge art: %w", err)
	}

	badgeService := services.NewBadgeService(db, log, catalog, repos.EarnedBadge, center, services.NewBadgeNotifier(buffered))
	return Services{
		Emitter:  emit,
		Catalog:  catalog,
		Center:   center,
		Auth:     services.NewAuthService(db, log, repos.User, repos.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		User:     services.NewUserService(db, log, repos.User, buffered),
		Badge:    badgeService,
		BadgeArt: badgeArt,
		Project: services.NewProjectService(
			db,
			log,
			repos.Project,
			repos.EarnedBadge,
			badgeService,
			catalog,
			services.NewProjectNotifier(buffered),
		),
	}, nil
}

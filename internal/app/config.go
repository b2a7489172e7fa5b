package app

import (
	"strings"
	"time"

	"github.com/yungbote/cbl-backend/internal/modules/badges"
	"github.com/yungbote/cbl-backend/internal/platform/envutil"
	"github.com/yungbote/cbl-backend/internal/platform/logger"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	Port        string
	Environment string
	Version     string
	DBDriver    string

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	NotificationCapacity int
	NotificationOverflow badges.OverflowPolicy

	RedisEnabled     bool
	BadgeArtPublish  bool
	MetricsEnabled   bool
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
		DBDriver:    strings.ToLower(envutil.String("DB_DRIVER", "postgres")),

		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", defaultJWTSecret),
		AccessTokenTTL:  envutil.Seconds("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: envutil.Seconds("REFRESH_TOKEN_TTL", 24*time.Hour),

		NotificationCapacity: envutil.Int("NOTIFICATION_QUEUE_CAPACITY", badges.DefaultQueueCapacity),

		RedisEnabled:     envutil.String("REDIS_ADDR", "") != "",
		BadgeArtPublish:  envutil.String("BADGE_ART_GCS_BUCKET", "") != "",
		MetricsEnabled:   envutil.Bool("METRICS_ENABLED", false),
	}
	policy, ok := badges.ParseOverflowPolicy(envutil.String("NOTIFICATION_OVERFLOW", string(badges.DropOldest)))
	if !ok {
		log.Warn("Unknown NOTIFICATION_OVERFLOW, using drop_oldest")
		policy = badges.DropOldest
	}
	cfg.NotificationOverflow = policy
	if cfg.JWTSecretKey == defaultJWTSecret {
		log.Warn("JWT_SECRET_KEY not set, using the development default")
	}
	return cfg
}

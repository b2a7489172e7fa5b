package app

import (
	"fmt"

	"github.com/yungbote/cbl-backend/internal/platform/gcp"
	"github.com/yungbote/cbl-backend/internal/platform/logger"
	"github.com/yungbote/cbl-backend/internal/realtime/bus"
)

type Clients struct {
	SSEBus    bus.Bus
	GcpBucket gcp.BucketService
}

// wireClients connects the optional external clients. Each is nil when its
// environment is not configured.
func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis
	if cfg.RedisEnabled {
		b, err := bus.NewRedisBus(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis SSE bus: %w", err)
		}
		out.SSEBus = b
	}

	// Gcs
	if cfg.BadgeArtPublish {
		bucket, err := gcp.NewBucketService(log)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init bucket client: %w", err)
		}
		out.GcpBucket = bucket
	}
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.SSEBus != nil {
		_ = c.SSEBus.Close()
	}
	if c.GcpBucket != nil {
		_ = c.GcpBucket.Close()
	}
}

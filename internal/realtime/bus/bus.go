package bus

import (
	"context"

	"github.com/yungbote/cbl-backend/internal/realtime"
)

// Bus fans SSE messages out across API replicas.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Ping(ctx context.Context) error
	Close() error
}

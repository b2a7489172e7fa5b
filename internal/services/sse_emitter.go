package services

import (
	"context"

	"github.com/yungbote/cbl-backend/internal/platform/logger"
	"github.com/yungbote/cbl-backend/internal/realtime"
	"github.com/yungbote/cbl-backend/internal/realtime/bus"
)

type SSEEmitter interface {
	Emit(ctx context.Context, msg realtime.SSEMessage)
}

type HubEmitter struct{ Hub *realtime.SSEHub }

func (e *HubEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.Hub.Broadcast(msg)
}

// RedisEmitter publishes through the bus so every replica's hub sees the message.
type RedisEmitter struct {
	Bus bus.Bus
	Log *logger.Logger
}

func (e *RedisEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if err := e.Bus.Publish(context.WithoutCancel(ctx), msg); err != nil && e.Log != nil {
		e.Log.Warn("SSE publish failed", "event", msg.Event, "error", err)
	}
}

// BufferedEmitter holds messages in the request buffer when one is attached,
// so they go out only after the handler finished. Without a buffer it emits
// immediately.
type BufferedEmitter struct{ Next SSEEmitter }

func (e *BufferedEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if buf := realtime.BufferFrom(ctx); buf != nil {
		buf.Append(msg)
		return
	}
	e.Next.Emit(ctx, msg)
}

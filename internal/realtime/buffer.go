package realtime

import (
	"context"
	"sync"
)

type bufferKey struct{}

// Buffer holds messages produced while a request is in flight so they can be
// flushed only once the request's writes are committed.
type Buffer struct {
	mu       sync.Mutex
	messages []SSEMessage
}

func WithBuffer(ctx context.Context) (context.Context, *Buffer) {
	buf := &Buffer{}
	return context.WithValue(ctx, bufferKey{}, buf), buf
}

func BufferFrom(ctx context.Context) *Buffer {
	if ctx == nil {
		return nil
	}
	buf, _ := ctx.Value(bufferKey{}).(*Buffer)
	return buf
}

func (b *Buffer) Append(msg SSEMessage) {
	b.mu.Lock()
	b.messages = append(b.messages, msg)
	b.mu.Unlock()
}

// Drain returns the buffered messages in order and empties the buffer.
func (b *Buffer) Drain() []SSEMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.messages
	b.messages = nil
	return out
}

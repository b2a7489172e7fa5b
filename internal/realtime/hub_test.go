package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/cbl-backend/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubReconnectAndOrdering(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := UserChannel(uuid.New())

	clientA := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientA, channel)

	first := SSEMessage{Channel: channel, Event: SSEEventBadgeEarned, Data: map[string]any{"id": "primeiro_passo"}}
	second := SSEMessage{Channel: channel, Event: SSEEventBadgeEarned, Data: map[string]any{"id": "questionador"}}
	hub.Broadcast(first)
	hub.Broadcast(second)

	gotFirst := recvMessage(t, clientA.Outbound, time.Second)
	gotSecond := recvMessage(t, clientA.Outbound, time.Second)
	if gotFirst.Data.(map[string]any)["id"] != "primeiro_passo" || gotSecond.Data.(map[string]any)["id"] != "questionador" {
		t.Fatalf("out of order: %v then %v", gotFirst.Data, gotSecond.Data)
	}

	hub.CloseClient(clientA)
	hub.CloseClient(clientA)
	select {
	case _, ok := <-clientA.Outbound:
		if ok {
			t.Fatalf("clientA outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for clientA channel close")
	}
	if n := hub.Subscribers(channel); n != 0 {
		t.Fatalf("subscribers after close=%d", n)
	}

	if hub.Connected() != 0 {
		t.Fatalf("connected after close=%d", hub.Connected())
	}

	clientB := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientB, channel)
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventNotificationDismissed})
	if got := recvMessage(t, clientB.Outbound, time.Second); got.Event != SSEEventNotificationDismissed {
		t.Fatalf("reconnect event: got=%s", got.Event)
	}
}

func TestSSEHubBroadcastDropsWhenFull(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := ProjectChannel(uuid.New())
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, channel)

	for i := 0; i < clientBuffer+5; i++ {
		hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventProjectUpdated, Data: i})
	}
	if len(client.Outbound) != clientBuffer {
		t.Fatalf("buffered=%d want %d", len(client.Outbound), clientBuffer)
	}
	if got := recvMessage(t, client.Outbound, time.Second); got.Data != 0 {
		t.Fatalf("first buffered=%v want 0", got.Data)
	}
}

func TestSSEHubChannelIsolation(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	a, b := hub.NewSSEClient(uuid.New()), hub.NewSSEClient(uuid.New())
	hub.AddChannel(a, UserChannel(a.UserID))
	hub.AddChannel(b, UserChannel(b.UserID))
	hub.AddChannel(b, "  ")

	hub.Broadcast(SSEMessage{Channel: UserChannel(a.UserID), Event: SSEEventBadgeEarned})
	hub.Broadcast(SSEMessage{Event: SSEEventBadgeEarned})
	recvMessage(t, a.Outbound, time.Second)
	if len(b.Outbound) != 0 {
		t.Fatalf("b received a's message")
	}

	hub.RemoveChannel(a, UserChannel(a.UserID))
	hub.Broadcast(SSEMessage{Channel: UserChannel(a.UserID), Event: SSEEventBadgeEarned})
	if len(a.Outbound) != 0 {
		t.Fatalf("message delivered after unsubscribe")
	}
}

func TestSSEHubServeHTTPStreamsMessages(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	client := hub.NewSSEClient(uuid.New())
	hub.AddChannel(client, UserChannel(client.UserID))

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	hub.Broadcast(SSEMessage{Channel: UserChannel(client.UserID), Event: SSEEventBadgeEarned, Data: map[string]any{"id": "criador"}})
	done := make(chan struct{})
	go func() {
		hub.ServeHTTP(rec, req, client)
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	if rec.Header().Get("Content-Type") != "text/event-stream" {
		t.Fatalf("content-type=%q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(body, "event: message\ndata: ") || !strings.Contains(body, `"event":"BadgeEarned"`) {
		t.Fatalf("body=%q", body)
	}
}

func TestBufferDrain(t *testing.T) {
	ctx, buf := WithBuffer(context.Background())
	if BufferFrom(ctx) != buf {
		t.Fatalf("buffer not attached")
	}
	if BufferFrom(context.Background()) != nil {
		t.Fatalf("bare context has a buffer")
	}
	buf.Append(SSEMessage{Event: SSEEventBadgeEarned})
	buf.Append(SSEMessage{Event: SSEEventProjectUpdated})
	got := buf.Drain()
	if len(got) != 2 || got[1].Event != SSEEventProjectUpdated {
		t.Fatalf("drained=%v", got)
	}
	if len(buf.Drain()) != 0 {
		t.Fatalf("drain did not empty buffer")
	}
}

func TestSSEHubCloseAll(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	a := hub.NewSSEClient(uuid.New())
	b := hub.NewSSEClient(uuid.New())
	hub.AddChannel(a, UserChannel(a.UserID))
	hub.AddChannel(b, UserChannel(b.UserID))
	hub.AddChannel(b, ProjectChannel(uuid.New()))

	hub.CloseAll()
	for _, c := range []*SSEClient{a, b} {
		select {
		case <-c.Done():
		default:
			t.Fatalf("client %s still open", c.ID)
		}
	}
	if hub.Connected() != 0 {
		t.Fatalf("connected=%d", hub.Connected())
	}
}

func TestSSEHubSubscribeAfterCloseIsIgnored(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	c := hub.NewSSEClient(uuid.New())
	channel := ProjectChannel(uuid.New())
	hub.CloseClient(c)

	hub.AddChannel(c, channel)
	if n := hub.Subscribers(channel); n != 0 {
		t.Fatalf("closed client re-subscribed, subscribers=%d", n)
	}
	// Must not send on the closed Outbound.
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventProjectUpdated})
	hub.CloseClient(c)
}

func TestSSEHubConcurrentCloseAndBroadcast(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := ProjectChannel(uuid.New())
	for i := 0; i < 50; i++ {
		c := hub.NewSSEClient(uuid.New())
		hub.AddChannel(c, channel)
		var wg sync.WaitGroup
		wg.Add(3)
		go func() { defer wg.Done(); hub.CloseClient(c) }()
		go func() { defer wg.Done(); hub.AddChannel(c, channel) }()
		go func() { defer wg.Done(); hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventProjectUpdated}) }()
		wg.Wait()
		hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventProjectUpdated})
	}
	if n := hub.Subscribers(channel); n != 0 {
		t.Fatalf("subscribers=%d after all clients closed", n)
	}
}

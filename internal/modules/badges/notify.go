package badges

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/cbl-backend/internal/domain/gamification"
)

// OverflowPolicy decides what a full queue does with a new notification.
type OverflowPolicy string

const (
	DropOldest OverflowPolicy = "drop_oldest"
	DropNewest OverflowPolicy = "drop_newest"
)

// DefaultQueueCapacity keeps only the latest unseen grant per user.
const DefaultQueueCapacity = 1

func ParseOverflowPolicy(raw string) (OverflowPolicy, bool) {
	switch OverflowPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case DropOldest:
		return DropOldest, true
	case DropNewest:
		return DropNewest, true
	default:
		return "", false
	}
}

type Notification struct {
	ID        uuid.UUID                 `json:"id"`
	Badge     *gamification.EarnedBadge `json:"badge"`
	CreatedAt time.Time                 `json:"created_at"`
}

// NotificationQueue is a bounded FIFO of pending badge notifications.
// Capacity 1 with DropOldest keeps only the most recent grant.
type NotificationQueue struct {
	mu       sync.Mutex
	capacity int
	policy   OverflowPolicy
	items    []Notification
	dropped  int
}

func NewNotificationQueue(capacity int, policy OverflowPolicy) *NotificationQueue {
	if capacity < 1 {
		capacity = 1
	}
	if _, ok := ParseOverflowPolicy(string(policy)); !ok {
		policy = DropOldest
	}
	return &NotificationQueue{capacity: capacity, policy: policy}
}

// Push enqueues b. A badge already pending is not queued twice.
// It reports whether b was queued and the notification evicted to make room, if any.
func (q *NotificationQueue) Push(b *gamification.EarnedBadge) (bool, *Notification) {
	_, ok, displaced := q.push(b)
	return ok, displaced
}

func (q *NotificationQueue) push(b *gamification.EarnedBadge) (Notification, bool, *Notification) {
	if q == nil || b == nil {
		return Notification{}, false, nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, n := range q.items {
		if n.Badge != nil && n.Badge.BadgeID == b.BadgeID {
			return Notification{}, false, nil
		}
	}
	n := Notification{ID: uuid.New(), Badge: b, CreatedAt: time.Now().UTC()}
	if len(q.items) < q.capacity {
		q.items = append(q.items, n)
		return n, true, nil
	}
	q.dropped++
	if q.policy == DropNewest {
		return Notification{}, false, &n
	}
	evicted := q.items[0]
	q.items = append(q.items[1:], n)
	return n, true, &evicted
}

func (q *NotificationQueue) Peek() (Notification, bool) {
	if q == nil {
		return Notification{}, false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Notification{}, false
	}
	return q.items[0], true
}

// Pop dismisses the head of the queue.
func (q *NotificationQueue) Pop() (Notification, bool) {
	if q == nil {
		return Notification{}, false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return Notification{}, false
	}
	n := q.items[0]
	q.items = q.items[1:]
	return n, true
}

// Remove dismisses the notification with id, wherever it sits.
func (q *NotificationQueue) Remove(id uuid.UUID) (Notification, bool) {
	if q == nil {
		return Notification{}, false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i:i], q.items[i+1:]...)
			return n, true
		}
	}
	return Notification{}, false
}

func (q *NotificationQueue) Pending() []Notification {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notification, len(q.items))
	copy(out, q.items)
	return out
}

func (q *NotificationQueue) Len() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped counts notifications lost to overflow.
func (q *NotificationQueue) Dropped() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Center holds one queue per user.
type Center struct {
	mu       sync.Mutex
	capacity int
	policy   OverflowPolicy
	queues   map[uuid.UUID]*NotificationQueue
}

func NewCenter(capacity int, policy OverflowPolicy) *Center {
	return &Center{capacity: capacity, policy: policy, queues: map[uuid.UUID]*NotificationQueue{}}
}

func (c *Center) Queue(userID uuid.UUID) *NotificationQueue {
	c.mu.Lock()
	defer c.mu.Unlock()
	q, ok := c.queues[userID]
	if !ok {
		q = NewNotificationQueue(c.capacity, c.policy)
		c.queues[userID] = q
	}
	return q
}

// Push enqueues badges for userID in order and returns the notifications
// created for them. A notification may already have been evicted by a later
// badge of the same call.
func (c *Center) Push(userID uuid.UUID, badges ...*gamification.EarnedBadge) []Notification {
	q := c.Queue(userID)
	queued := make([]Notification, 0, len(badges))
	for _, b := range badges {
		if n, ok, _ := q.push(b); ok {
			queued = append(queued, n)
		}
	}
	return queued
}

func (c *Center) Pending(userID uuid.UUID) []Notification {
	return c.Queue(userID).Pending()
}

// Dismiss removes id from the user's queue, or the head when id is uuid.Nil.
func (c *Center) Dismiss(userID uuid.UUID, id uuid.UUID) (Notification, bool) {
	q := c.Queue(userID)
	if id == uuid.Nil {
		return q.Pop()
	}
	return q.Remove(id)
}

package badges

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/cbl-backend/internal/domain/gamification"
)

func badge(id string) *gamification.EarnedBadge {
	return &gamification.EarnedBadge{BadgeID: id}
}

func TestNotificationQueue_SingleSlotKeepsMostRecent(t *testing.T) {
	q := NewNotificationQueue(1, DropOldest)
	q.Push(badge("primeiro_passo"))
	ok, evicted := q.Push(badge("questionador"))
	if !ok || evicted == nil || evicted.Badge.BadgeID != "primeiro_passo" {
		t.Fatalf("ok=%v evicted=%+v", ok, evicted)
	}
	head, _ := q.Peek()
	if q.Len() != 1 || head.Badge.BadgeID != "questionador" {
		t.Fatalf("head=%+v len=%d", head, q.Len())
	}
	if q.Dropped() != 1 {
		t.Fatalf("dropped=%d want 1", q.Dropped())
	}
}

func TestNotificationQueue_DropNewestKeepsFirst(t *testing.T) {
	q := NewNotificationQueue(2, DropNewest)
	q.Push(badge("a"))
	q.Push(badge("b"))
	ok, rejected := q.Push(badge("c"))
	if ok || rejected == nil || rejected.Badge.BadgeID != "c" {
		t.Fatalf("ok=%v rejected=%+v", ok, rejected)
	}
	pending := q.Pending()
	if len(pending) != 2 || pending[0].Badge.BadgeID != "a" || pending[1].Badge.BadgeID != "b" {
		t.Fatalf("pending=%+v", pending)
	}
}

func TestNotificationQueue_FIFOAndNoDuplicates(t *testing.T) {
	q := NewNotificationQueue(4, DropOldest)
	q.Push(badge("a"))
	if ok, _ := q.Push(badge("a")); ok {
		t.Fatalf("duplicate pending badge queued")
	}
	q.Push(badge("b"))
	first, _ := q.Pop()
	second, _ := q.Pop()
	if first.Badge.BadgeID != "a" || second.Badge.BadgeID != "b" {
		t.Fatalf("order=%s,%s", first.Badge.BadgeID, second.Badge.BadgeID)
	}
	if _, ok := q.Pop(); ok {
		t.Fatalf("queue should be empty")
	}
}

func TestNotificationQueue_Defaults(t *testing.T) {
	q := NewNotificationQueue(0, OverflowPolicy("bogus"))
	q.Push(badge("a"))
	q.Push(badge("b"))
	if head, _ := q.Peek(); q.Len() != 1 || head.Badge.BadgeID != "b" {
		t.Fatalf("expected capacity 1 drop_oldest, got len=%d", q.Len())
	}
	if _, ok := ParseOverflowPolicy("DROP_NEWEST"); !ok {
		t.Fatalf("policy parse is case-insensitive")
	}
}

func TestCenter_PerUserQueues(t *testing.T) {
	c := NewCenter(3, DropOldest)
	alice, bob := uuid.New(), uuid.New()
	queued := c.Push(alice, badge("a"), badge("b"), badge("a"))
	if len(queued) != 2 {
		t.Fatalf("queued=%d want 2", len(queued))
	}
	if len(c.Pending(bob)) != 0 {
		t.Fatalf("bob sees alice's notifications")
	}
	pending := c.Pending(alice)
	n, ok := c.Dismiss(alice, pending[1].ID)
	if !ok || n.Badge.BadgeID != "b" {
		t.Fatalf("dismiss by id=%+v ok=%v", n, ok)
	}
	n, ok = c.Dismiss(alice, uuid.Nil)
	if !ok || n.Badge.BadgeID != "a" {
		t.Fatalf("dismiss head=%+v ok=%v", n, ok)
	}
	if _, ok := c.Dismiss(alice, uuid.Nil); ok {
		t.Fatalf("nothing left to dismiss")
	}
}

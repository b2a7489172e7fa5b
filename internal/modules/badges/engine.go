package badges

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/cbl-backend/internal/domain/gamification"
	"github.com/yungbote/cbl-backend/internal/platform/logger"
)

// Engine decides badge eligibility for one user. Badges only move from
// unearned to earned; a granted badge is never granted again or revoked.
type Engine struct {
	catalog *Catalog
	log     *logger.Logger
	userID  uuid.UUID
	now     func() time.Time
	queue   *NotificationQueue

	mu     sync.Mutex
	earned map[string]*gamification.EarnedBadge
	order  []*gamification.EarnedBadge
}

type Option func(*Engine)

// WithClock replaces time.Now for earnedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithQueue makes every new grant enqueue a notification on q.
func WithQueue(q *NotificationQueue) Option {
	return func(e *Engine) { e.queue = q }
}

// NewEngine seeds the earned set from already persisted badges.
func NewEngine(catalog *Catalog, baseLog *logger.Logger, userID uuid.UUID, earned []*gamification.EarnedBadge, opts ...Option) *Engine {
	if baseLog == nil {
		baseLog = logger.NewNop()
	}
	e := &Engine{
		catalog: catalog,
		log:     baseLog.With("component", "BadgeEngine", "user_id", userID),
		userID:  userID,
		now:     time.Now,
		earned:  make(map[string]*gamification.EarnedBadge, len(earned)),
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, b := range earned {
		if b == nil || b.BadgeID == "" {
			continue
		}
		if _, dup := e.earned[b.BadgeID]; dup {
			continue
		}
		e.earned[b.BadgeID] = b
		e.order = append(e.order, b)
	}
	return e
}

// CanEarn is true iff id is not already in the earned set.
func (e *Engine) CanEarn(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.earned[id]
	return !ok
}

// Grant earns id. It returns false when id is already earned or not in the catalog.
func (e *Engine) Grant(id string) (*gamification.EarnedBadge, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grantLocked(id)
}

func (e *Engine) grantLocked(id string) (*gamification.EarnedBadge, bool) {
	if _, ok := e.earned[id]; ok {
		return nil, false
	}
	def, ok := e.catalog.Lookup(id)
	if !ok {
		e.log.Warn("badge not found in catalog; ignoring grant", "badge_id", id)
		return nil, false
	}
	b := gamification.NewEarnedBadge(e.userID, def, e.now())
	e.earned[def.ID] = b
	e.order = append(e.order, b)
	if e.queue != nil {
		e.queue.Push(b)
	}
	e.log.Debug("badge granted", "badge_id", def.ID, "xp", def.XP)
	return b, true
}

// CheckTrigger grants every badge ev makes eligible and returns the new grants in catalog order.
func (e *Engine) CheckTrigger(ev Event) []*gamification.EarnedBadge {
	if ev == nil {
		return nil
	}
	rules := e.catalog.RulesFor(ev.Trigger())
	if len(rules) == 0 {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	var granted []*gamification.EarnedBadge
	for _, def := range rules {
		if _, ok := e.earned[def.ID]; ok {
			continue
		}
		if !eligible(ev, def) {
			continue
		}
		if b, ok := e.grantLocked(def.ID); ok {
			granted = append(granted, b)
		}
	}
	return granted
}

// Evaluate runs CheckTrigger for each event in order.
func (e *Engine) Evaluate(events ...Event) []*gamification.EarnedBadge {
	var granted []*gamification.EarnedBadge
	for _, ev := range events {
		granted = append(granted, e.CheckTrigger(ev)...)
	}
	return granted
}

func eligible(ev Event, def gamification.Definition) bool {
	switch v := ev.(type) {
	case Signal:
		return true
	case Count:
		threshold := def.Threshold
		if threshold < 1 {
			threshold = 1
		}
		return v.N >= threshold
	case EngageCompleted:
		return v.satisfied()
	case CycleCompleted:
		return v.satisfied()
	default:
		return false
	}
}

// Earned returns the earned badges in grant order.
func (e *Engine) Earned() []*gamification.EarnedBadge {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*gamification.EarnedBadge, len(e.order))
	copy(out, e.order)
	return out
}

func (e *Engine) Stats() Stats {
	return ComputeStats(e.Earned(), e.catalog)
}

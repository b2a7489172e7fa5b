package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/yungbote/cbl-backend/internal/data/repos"
	"github.com/yungbote/cbl-backend/internal/domain/errs"
	"github.com/yungbote/cbl-backend/internal/domain/gamification"
	"github.com/yungbote/cbl-backend/internal/modules/badges"
	"github.com/yungbote/cbl-backend/internal/observability"
	"github.com/yungbote/cbl-backend/internal/platform/dbctx"
	"github.com/yungbote/cbl-backend/internal/platform/logger"
)

var badgeTracer = otel.Tracer("github.com/yungbote/cbl-backend/services/badges")

type BadgeService interface {
	Catalog(filter badges.Filter) []gamification.Definition
	Definition(id string) (gamification.Definition, error)
	ListEarned(ctx context.Context) ([]*gamification.EarnedBadge, error)
	Stats(ctx context.Context) (badges.Stats, error)
	CanEarn(ctx context.Context, badgeID string) (bool, error)
	Grant(ctx context.Context, badgeID string) (*gamification.EarnedBadge, bool, error)
	CheckTrigger(ctx context.Context, name string, c badges.Context) ([]*gamification.EarnedBadge, error)
	// Evaluate runs events for userID and persists whatever they newly grant.
	Evaluate(ctx context.Context, userID uuid.UUID, events ...badges.Event) ([]*gamification.EarnedBadge, error)
	Notifications(ctx context.Context) ([]badges.Notification, error)
	Dismiss(ctx context.Context, notificationID uuid.UUID) (badges.Notification, error)
}

type badgeService struct {
	tx       repos.TxRunner
	log      *logger.Logger
	catalog  *badges.Catalog
	earned   repos.EarnedBadgeRepo
	center   *badges.Center
	notifier BadgeNotifier

	// per-user evaluation lock
	locks sync.Map
}

func NewBadgeService(
	db *gorm.DB,
	log *logger.Logger,
	catalog *badges.Catalog,
	earned repos.EarnedBadgeRepo,
	center *badges.Center,
	notifier BadgeNotifier,
) BadgeService {
	return &badgeService{
		tx:       repos.NewGormTxRunner(db),
		log:      log.With("service", "BadgeService"),
		catalog:  catalog,
		earned:   earned,
		center:   center,
		notifier: notifier,
	}
}

func (bs *badgeService) Catalog(filter badges.Filter) []gamification.Definition {
	return bs.catalog.Filter(filter)
}

func (bs *badgeService) Definition(id string) (gamification.Definition, error) {
	def, ok := bs.catalog.Lookup(strings.TrimSpace(id))
	if !ok {
		return gamification.Definition{}, errs.New(errs.CodeNotFound, "badges.definition", "unknown badge "+id)
	}
	return def, nil
}

func (bs *badgeService) ListEarned(ctx context.Context) ([]*gamification.EarnedBadge, error) {
	userID, err := requireUser(ctx, "badges.list")
	if err != nil {
		return nil, err
	}
	return bs.load(ctx, userID)
}

func (bs *badgeService) load(ctx context.Context, userID uuid.UUID) ([]*gamification.EarnedBadge, error) {
	earned, err := bs.earned.ListByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, repos.MapError("badges.load", err)
	}
	return earned, nil
}

func (bs *badgeService) Stats(ctx context.Context) (badges.Stats, error) {
	earned, err := bs.ListEarned(ctx)
	if err != nil {
		return badges.Stats{}, err
	}
	return badges.ComputeStats(earned, bs.catalog), nil
}

func (bs *badgeService) CanEarn(ctx context.Context, badgeID string) (bool, error) {
	const op = "badges.can_earn"
	userID, err := requireUser(ctx, op)
	if err != nil {
		return false, err
	}
	exists, err := bs.earned.Exists(dbctx.Context{Ctx: ctx}, userID, badgeID)
	if err != nil {
		return false, repos.MapError(op, err)
	}
	return !exists, nil
}

func (bs *badgeService) Grant(ctx context.Context, badgeID string) (*gamification.EarnedBadge, bool, error) {
	const op = "badges.grant"
	userID, err := requireUser(ctx, op)
	if err != nil {
		return nil, false, err
	}
	granted, err := bs.run(ctx, userID, "grant", func(e *badges.Engine) []*gamification.EarnedBadge {
		b, ok := e.Grant(badgeID)
		if !ok {
			return nil
		}
		return []*gamification.EarnedBadge{b}
	})
	if err != nil {
		return nil, false, err
	}
	if len(granted) == 1 {
		return granted[0], true, nil
	}
	return nil, false, nil
}

func (bs *badgeService) CheckTrigger(ctx context.Context, name string, c badges.Context) ([]*gamification.EarnedBadge, error) {
	const op = "badges.check_trigger"
	userID, err := requireUser(ctx, op)
	if err != nil {
		return nil, err
	}
	ev, ok := badges.Decode(strings.TrimSpace(name), c)
	if !ok {
		bs.log.Debug("Ignoring unknown trigger", "trigger", name)
		return []*gamification.EarnedBadge{}, nil
	}
	return bs.Evaluate(ctx, userID, ev)
}

func (bs *badgeService) Evaluate(ctx context.Context, userID uuid.UUID, events ...badges.Event) ([]*gamification.EarnedBadge, error) {
	if len(events) == 0 {
		return []*gamification.EarnedBadge{}, nil
	}
	return bs.run(ctx, userID, "evaluate", func(e *badges.Engine) []*gamification.EarnedBadge {
		return e.Evaluate(events...)
	})
}

// run seeds an engine from storage, applies fn and persists the new grants.
// Only rows actually inserted are reported and notified, so a grant raced by
// another replica is not announced twice.
func (bs *badgeService) run(ctx context.Context, userID uuid.UUID, kind string, fn func(e *badges.Engine) []*gamification.EarnedBadge) (out []*gamification.EarnedBadge, err error) {
	ctx, span := badgeTracer.Start(ctx, "badges."+kind)
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID.String()))

	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		observability.Current().ObserveBadgeEvaluation(kind, status, time.Since(start))
	}()

	mu := bs.userLock(userID)
	mu.Lock()
	defer mu.Unlock()

	earned, err := bs.load(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load earned badges")
		return nil, err
	}
	engine := badges.NewEngine(bs.catalog, bs.log, userID, earned)
	candidates := fn(engine)
	span.SetAttributes(attribute.Int("badges.candidates", len(candidates)))
	if len(candidates) == 0 {
		return []*gamification.EarnedBadge{}, nil
	}

	var inserted []*gamification.EarnedBadge
	err = bs.tx.InTx(ctx, func(dbc dbctx.Context) error {
		rows, err := bs.earned.Append(dbc, candidates)
		inserted = rows
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist badges")
		return nil, repos.MapError("badges.persist", err)
	}
	span.SetAttributes(attribute.Int("badges.granted", len(inserted)))

	queue := bs.center.Queue(userID)
	dropped := queue.Dropped()
	for _, note := range bs.center.Push(userID, inserted...) {
		bs.notifier.BadgeEarned(ctx, userID, note)
	}
	metrics := observability.Current()
	metrics.AddNotificationsDropped(queue.Dropped() - dropped)
	for _, b := range inserted {
		bs.log.Info("Badge earned", "user_id", userID, "badge_id", b.BadgeID, "xp", b.XP)
		if def, ok := bs.catalog.Lookup(b.BadgeID); ok {
			metrics.IncBadgeGrant(b.BadgeID, string(def.Rarity))
		}
	}
	if inserted == nil {
		inserted = []*gamification.EarnedBadge{}
	}
	return inserted, nil
}

func (bs *badgeService) userLock(userID uuid.UUID) *sync.Mutex {
	v, _ := bs.locks.LoadOrStore(userID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (bs *badgeService) Notifications(ctx context.Context) ([]badges.Notification, error) {
	userID, err := requireUser(ctx, "notifications.list")
	if err != nil {
		return nil, err
	}
	return bs.center.Pending(userID), nil
}

func (bs *badgeService) Dismiss(ctx context.Context, notificationID uuid.UUID) (badges.Notification, error) {
	const op = "notifications.dismiss"
	userID, err := requireUser(ctx, op)
	if err != nil {
		return badges.Notification{}, err
	}
	n, ok := bs.center.Dismiss(userID, notificationID)
	if !ok {
		return badges.Notification{}, errs.New(errs.CodeNotFound, op, "no pending notification")
	}
	bs.notifier.NotificationDismissed(ctx, userID, n)
	return n, nil
}

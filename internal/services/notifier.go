package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/cbl-backend/internal/domain/cbl"
	"github.com/yungbote/cbl-backend/internal/domain/gamification"
	"github.com/yungbote/cbl-backend/internal/modules/badges"
	cblmod "github.com/yungbote/cbl-backend/internal/modules/cbl"
	"github.com/yungbote/cbl-backend/internal/realtime"
)

// =========================
// Badge notifier
// =========================

type BadgeNotifier interface {
	BadgeEarned(ctx context.Context, userID uuid.UUID, n badges.Notification)
	NotificationDismissed(ctx context.Context, userID uuid.UUID, n badges.Notification)
}

type badgeNotifier struct {
	emit SSEEmitter
}

func NewBadgeNotifier(emit SSEEmitter) BadgeNotifier {
	return &badgeNotifier{emit: emit}
}

func (n *badgeNotifier) BadgeEarned(ctx context.Context, userID uuid.UUID, note badges.Notification) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.SSEEventBadgeEarned,
		Data: map[string]any{
			"notification_id": note.ID,
			"badge":           note.Badge,
		},
	})
}

func (n *badgeNotifier) NotificationDismissed(ctx context.Context, userID uuid.UUID, note badges.Notification) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.SSEEventNotificationDismissed,
		Data:    map[string]any{"notification_id": note.ID, "badge_id": safeBadgeID(note.Badge)},
	})
}

func safeBadgeID(b *gamification.EarnedBadge) string {
	if b == nil {
		return ""
	}
	return b.BadgeID
}

// =========================
// Project notifier
// =========================

type ProjectNotifier interface {
	ProjectUpdated(ctx context.Context, p *cbl.Project, report cblmod.Report)
	PhaseChanged(ctx context.Context, p *cbl.Project, decision cblmod.Decision)
	PhaseCompleted(ctx context.Context, p *cbl.Project, phase cbl.Phase)
}

type projectNotifier struct {
	emit SSEEmitter
}

func NewProjectNotifier(emit SSEEmitter) ProjectNotifier {
	return &projectNotifier{emit: emit}
}

func (n *projectNotifier) send(ctx context.Context, p *cbl.Project, event realtime.SSEEvent, data map[string]any) {
	if n == nil || n.emit == nil || p == nil {
		return
	}
	data["project_id"] = p.ID
	n.emit.Emit(ctx, realtime.SSEMessage{Channel: realtime.UserChannel(p.UserID), Event: event, Data: data})
	n.emit.Emit(ctx, realtime.SSEMessage{Channel: realtime.ProjectChannel(p.ID), Event: event, Data: data})
}

func (n *projectNotifier) ProjectUpdated(ctx context.Context, p *cbl.Project, report cblmod.Report) {
	n.send(ctx, p, realtime.SSEEventProjectUpdated, map[string]any{
		"updated_at": safeUpdatedAt(p),
		"progress":   report,
	})
}

func (n *projectNotifier) PhaseChanged(ctx context.Context, p *cbl.Project, decision cblmod.Decision) {
	n.send(ctx, p, realtime.SSEEventPhaseChanged, map[string]any{"decision": decision})
}

func (n *projectNotifier) PhaseCompleted(ctx context.Context, p *cbl.Project, phase cbl.Phase) {
	n.send(ctx, p, realtime.SSEEventPhaseCompleted, map[string]any{
		"phase":           phase,
		"cycle_completed": p.CycleCompleted(),
	})
}

func safeUpdatedAt(p *cbl.Project) any {
	if p == nil || p.UpdatedAt.IsZero() {
		return nil
	}
	return p.UpdatedAt
}

package realtime

import "github.com/google/uuid"

type SSEEvent string

const (
	SSEEventBadgeEarned           SSEEvent = "BadgeEarned"
	SSEEventNotificationDismissed SSEEvent = "NotificationDismissed"
	SSEEventProjectUpdated        SSEEvent = "ProjectUpdated"
	SSEEventPhaseCompleted        SSEEvent = "PhaseCompleted"
	SSEEventPhaseChanged          SSEEvent = "PhaseChanged"
	SSEEventUserNameChanged       SSEEvent = "UserNameChanged"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// UserChannel is the per-user channel every authenticated stream joins.
func UserChannel(userID uuid.UUID) string {
	return userID.String()
}

// ProjectChannel carries updates for a single project.
func ProjectChannel(projectID uuid.UUID) string {
	return "project:" + projectID.String()
}

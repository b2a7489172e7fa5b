package gamification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/cbl-backend/internal/domain/gamification"
	"github.com/yungbote/cbl-backend/internal/platform/dbctx"
	"github.com/yungbote/cbl-backend/internal/platform/logger"
)

// EarnedBadgeRepo is append-only: rows are inserted once and never updated or deleted.
type EarnedBadgeRepo interface {
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*gamification.EarnedBadge, error)
	Exists(dbc dbctx.Context, userID uuid.UUID, badgeID string) (bool, error)
	Append(dbc dbctx.Context, badges []*gamification.EarnedBadge) ([]*gamification.EarnedBadge, error)
}

type earnedBadgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEarnedBadgeRepo(db *gorm.DB, baseLog *logger.Logger) EarnedBadgeRepo {
	return &earnedBadgeRepo{db: db, log: baseLog.With("repo", "EarnedBadgeRepo")}
}

func (r *earnedBadgeRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*gamification.EarnedBadge, error) {
	var results []*gamification.EarnedBadge
	if userID == uuid.Nil {
		return results, nil
	}
	if err := dbc.Conn(r.db).
		Where("user_id = ?", userID).
		Order("earned_at ASC").
		Order("badge_id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *earnedBadgeRepo) Exists(dbc dbctx.Context, userID uuid.UUID, badgeID string) (bool, error) {
	var count int64
	if err := dbc.Conn(r.db).
		Model(&gamification.EarnedBadge{}).
		Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Append inserts badges, skipping any (user_id, badge_id) already stored, and
// returns only the rows that were actually inserted.
func (r *earnedBadgeRepo) Append(dbc dbctx.Context, badges []*gamification.EarnedBadge) ([]*gamification.EarnedBadge, error) {
	inserted := make([]*gamification.EarnedBadge, 0, len(badges))
	conn := dbc.Conn(r.db)
	for _, b := range badges {
		if b == nil || b.UserID == uuid.Nil || b.BadgeID == "" {
			continue
		}
		res := conn.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
				DoNothing: true,
			}).
			Create(b)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			inserted = append(inserted, b)
		} else {
			r.log.Debug("badge already stored", "user_id", b.UserID, "badge_id", b.BadgeID)
		}
	}
	return inserted, nil
}

package gamification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

func (r Rarity) Valid() bool {
	switch r {
	case RarityCommon, RarityRare, RarityEpic, RarityLegendary:
		return true
	}
	return false
}

type Category string

const (
	CategoryEngage      Category = "engage"
	CategoryInvestigate Category = "investigate"
	CategoryAct         Category = "act"
	CategorySpecial     Category = "special"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryEngage, CategoryInvestigate, CategoryAct, CategorySpecial:
		return true
	}
	return false
}

// Definition is one immutable catalog entry.
type Definition struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	XP          int      `yaml:"xp" json:"xp"`
	Icon        string   `yaml:"icon" json:"icon"`
	Category    Category `yaml:"category" json:"category"`
	Trigger     string   `yaml:"trigger" json:"trigger"`
	Threshold   int      `yaml:"threshold" json:"threshold,omitempty"`
	Rarity      Rarity   `yaml:"rarity" json:"rarity"`
}

// EarnedBadge is a grant of a catalog badge to one user. (user_id, badge_id) is unique.
type EarnedBadge struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_earned_badge_user_badge,priority:1" json:"user_id"`
	BadgeID     string    `gorm:"column:badge_id;not null;uniqueIndex:idx_earned_badge_user_badge,priority:2" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	XP          int       `gorm:"column:xp;not null" json:"xp"`
	Category    Category  `gorm:"not null" json:"category"`
	EarnedAt    time.Time `gorm:"column:earned_at;not null;index" json:"earned_at"`
}

func (EarnedBadge) TableName() string { return "earned_badge" }

func (b *EarnedBadge) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// NewEarnedBadge snapshots a definition into a grant for userID.
func NewEarnedBadge(userID uuid.UUID, def Definition, at time.Time) *EarnedBadge {
	return &EarnedBadge{
		ID:          uuid.New(),
		UserID:      userID,
		BadgeID:     def.ID,
		Name:        def.Title,
		Description: def.Description,
		Icon:        def.Icon,
		XP:          def.XP,
		Category:    def.Category,
		EarnedAt:    at.UTC(),
	}
}

package badges

import (
	"math"

	"github.com/yungbote/cbl-backend/internal/domain/gamification"
)

// XPPerLevel is the single level divisor used everywhere.
const XPPerLevel = 200

type Stats struct {
	TotalXP            int `json:"total_xp"`
	Level              int `json:"level"`
	XPForNextLevel     int `json:"xp_for_next_level"`
	EarnedCount        int `json:"earned_count"`
	CatalogSize        int `json:"catalog_size"`
	TotalAvailableXP   int `json:"total_available_xp"`
	ProgressPercentage int `json:"progress_percentage"`
}

func LevelFor(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP/XPPerLevel + 1
}

func ComputeStats(earned []*gamification.EarnedBadge, c *Catalog) Stats {
	s := Stats{CatalogSize: c.Size(), TotalAvailableXP: c.TotalXP()}
	for _, b := range earned {
		if b == nil {
			continue
		}
		s.TotalXP += b.XP
		s.EarnedCount++
	}
	s.Level = LevelFor(s.TotalXP)
	s.XPForNextLevel = s.Level*XPPerLevel - s.TotalXP
	if s.CatalogSize > 0 {
		s.ProgressPercentage = int(math.Round(100 * float64(s.EarnedCount) / float64(s.CatalogSize)))
		if s.ProgressPercentage > 100 {
			s.ProgressPercentage = 100
		}
	}
	return s
}

package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/cbl-backend/internal/domain/auth"
	"github.com/yungbote/cbl-backend/internal/domain/cbl"
	"github.com/yungbote/cbl-backend/internal/domain/gamification"
	"github.com/yungbote/cbl-backend/internal/domain/user"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// =========================
		// Core identity + auth
		// =========================
		&user.User{},
		&auth.UserToken{},

		// =========================
		// CBL projects
		// =========================
		&cbl.Project{},

		// =========================
		// Gamification
		// =========================
		&gamification.EarnedBadge{},
	)
}

// EnsureIndexes adds the indexes AutoMigrate cannot express. Postgres only.
func EnsureIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_user_email_active
		ON "user"(lower(email))
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_user_email_active: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_project_user_updated
		ON project(user_id, updated_at DESC)
		WHERE deleted_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_project_user_updated: %w", err)
	}
	return nil
}

package cbl

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/cbl-backend/internal/domain/cbl"
	"github.com/yungbote/cbl-backend/internal/platform/dbctx"
	"github.com/yungbote/cbl-backend/internal/platform/logger"
)

// ProjectRepo scopes every lookup and write by owner; a project owned by
// another user is reported as gorm.ErrRecordNotFound.
type ProjectRepo interface {
	Create(dbc dbctx.Context, p *cbl.Project) (*cbl.Project, error)
	GetByID(dbc dbctx.Context, userID, projectID uuid.UUID) (*cbl.Project, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*cbl.Project, error)
	UpdateColumns(dbc dbctx.Context, userID, projectID uuid.UUID, cols map[string]any) error
	SetCompleted(dbc dbctx.Context, userID, projectID uuid.UUID, phase cbl.Phase) (bool, error)
	SetCurrentPhase(dbc dbctx.Context, userID, projectID uuid.UUID, phase cbl.Phase) error
	SoftDelete(dbc dbctx.Context, userID, projectID uuid.UUID) error
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

func (r *projectRepo) Create(dbc dbctx.Context, p *cbl.Project) (*cbl.Project, error) {
	if p == nil {
		return nil, nil
	}
	if err := dbc.Conn(r.db).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *projectRepo) GetByID(dbc dbctx.Context, userID, projectID uuid.UUID) (*cbl.Project, error) {
	if userID == uuid.Nil || projectID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	var out cbl.Project
	if err := dbc.Conn(r.db).
		Where("id = ? AND user_id = ?", projectID, userID).
		First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *projectRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*cbl.Project, error) {
	var results []*cbl.Project
	if userID == uuid.Nil {
		return results, nil
	}
	if err := dbc.Conn(r.db).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *projectRepo) UpdateColumns(dbc dbctx.Context, userID, projectID uuid.UUID, cols map[string]any) error {
	if len(cols) == 0 {
		return nil
	}
	res := dbc.Conn(r.db).
		Model(&cbl.Project{}).
		Where("id = ? AND user_id = ?", projectID, userID).
		Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SetCompleted flips phase's flag from false to true. It reports false when the
// flag was already set; flags are never cleared.
func (r *projectRepo) SetCompleted(dbc dbctx.Context, userID, projectID uuid.UUID, phase cbl.Phase) (bool, error) {
	col, ok := completionColumn(phase)
	if !ok {
		return false, nil
	}
	res := dbc.Conn(r.db).
		Model(&cbl.Project{}).
		Where("id = ? AND user_id = ? AND "+col+" = ?", projectID, userID, false).
		Update(col, true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *projectRepo) SetCurrentPhase(dbc dbctx.Context, userID, projectID uuid.UUID, phase cbl.Phase) error {
	return r.UpdateColumns(dbc, userID, projectID, map[string]any{"current_phase": phase})
}

func (r *projectRepo) SoftDelete(dbc dbctx.Context, userID, projectID uuid.UUID) error {
	res := dbc.Conn(r.db).
		Where("id = ? AND user_id = ?", projectID, userID).
		Delete(&cbl.Project{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func completionColumn(phase cbl.Phase) (string, bool) {
	switch phase {
	case cbl.PhaseEngage:
		return "engage_completed", true
	case cbl.PhaseInvestigate:
		return "investigate_completed", true
	case cbl.PhaseAct:
		return "act_completed", true
	default:
		return "", false
	}
}

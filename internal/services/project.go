package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/cbl-backend/internal/data/repos"
	"github.com/yungbote/cbl-backend/internal/domain/cbl"
	"github.com/yungbote/cbl-backend/internal/domain/errs"
	"github.com/yungbote/cbl-backend/internal/domain/gamification"
	"github.com/yungbote/cbl-backend/internal/modules/badges"
	cblmod "github.com/yungbote/cbl-backend/internal/modules/cbl"
	"github.com/yungbote/cbl-backend/internal/observability"
	"github.com/yungbote/cbl-backend/internal/platform/dbctx"
	"github.com/yungbote/cbl-backend/internal/platform/logger"
)

type ProjectInput struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=4000"`
}

// ProjectResult is what every mutating project operation returns: the
// committed project, its recomputed progress and the badges it unlocked.
type ProjectResult struct {
	Project   *cbl.Project                `json:"project"`
	Progress  cblmod.Report               `json:"progress"`
	NewBadges []*gamification.EarnedBadge `json:"new_badges"`
}

type NavigationResult struct {
	Decision  cblmod.Decision             `json:"decision"`
	Project   *cbl.Project                `json:"project"`
	NewBadges []*gamification.EarnedBadge `json:"new_badges"`
}

type NudgeResult struct {
	Nudge     badges.Nudge                `json:"nudge"`
	NewBadges []*gamification.EarnedBadge `json:"new_badges"`
}

type Dashboard struct {
	Project  *cbl.Project                `json:"project"`
	Progress cblmod.Report               `json:"progress"`
	Stats    badges.Stats                `json:"stats"`
	Badges   []*gamification.EarnedBadge `json:"badges"`
}

type ProjectService interface {
	Create(ctx context.Context, in ProjectInput) (*cbl.Project, error)
	List(ctx context.Context) ([]*cbl.Project, error)
	Get(ctx context.Context, projectID uuid.UUID) (*cbl.Project, error)
	Update(ctx context.Context, projectID uuid.UUID, in ProjectInput) (*cbl.Project, error)
	Delete(ctx context.Context, projectID uuid.UUID) error

	SaveField(ctx context.Context, projectID uuid.UUID, field string, raw json.RawMessage) (*ProjectResult, error)
	AddChecklistItem(ctx context.Context, projectID uuid.UUID, text string) (*ProjectResult, error)
	ToggleChecklistItem(ctx context.Context, projectID uuid.UUID, itemID string, done *bool) (*ProjectResult, error)

	Progress(ctx context.Context, projectID uuid.UUID) (cblmod.Report, error)
	Navigate(ctx context.Context, projectID uuid.UUID, phase string) (*NavigationResult, error)
	CompletePhase(ctx context.Context, projectID uuid.UUID, phase string) (*ProjectResult, error)
	SyncBadges(ctx context.Context, projectID uuid.UUID) ([]*gamification.EarnedBadge, error)
	Nudge(ctx context.Context, projectID uuid.UUID, seed string) (*NudgeResult, error)
	Dashboard(ctx context.Context, projectID uuid.UUID) (*Dashboard, error)
}

type projectService struct {
	tx       repos.TxRunner
	log      *logger.Logger
	projects repos.ProjectRepo
	earned   repos.EarnedBadgeRepo
	badges   BadgeService
	catalog  *badges.Catalog
	notifier ProjectNotifier
}

func NewProjectService(
	db *gorm.DB,
	log *logger.Logger,
	projects repos.ProjectRepo,
	earned repos.EarnedBadgeRepo,
	badgeService BadgeService,
	catalog *badges.Catalog,
	notifier ProjectNotifier,
) ProjectService {
	return &projectService{
		tx:       repos.NewGormTxRunner(db),
		log:      log.With("service", "ProjectService"),
		projects: projects,
		earned:   earned,
		badges:   badgeService,
		catalog:  catalog,
		notifier: notifier,
	}
}

func (ps *projectService) Create(ctx context.Context, in ProjectInput) (*cbl.Project, error) {
	const op = "project.create"
	userID, err := requireUser(ctx, op)
	if err != nil {
		return nil, err
	}
	if err := validateInput(op, &in); err != nil {
		return nil, err
	}
	title := ""
	if in.Title != nil {
		title = strings.TrimSpace(*in.Title)
	}
	if title == "" {
		return nil, errs.WithDetails(errs.CodeValidation, op, "invalid input", []string{"title:required"})
	}
	desc := ""
	if in.Description != nil {
		desc = *in.Description
	}
	p := cbl.NewProject(userID, title, desc)
	if _, err := ps.projects.Create(dbctx.Context{Ctx: ctx}, p); err != nil {
		return nil, repos.MapError(op, err)
	}
	ps.log.Info("Project created", "user_id", userID, "project_id", p.ID)
	return p, nil
}

func (ps *projectService) List(ctx context.Context) ([]*cbl.Project, error) {
	const op = "project.list"
	userID, err := requireUser(ctx, op)
	if err != nil {
		return nil, err
	}
	out, err := ps.projects.ListByUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, repos.MapError(op, err)
	}
	return out, nil
}

func (ps *projectService) Get(ctx context.Context, projectID uuid.UUID) (*cbl.Project, error) {
	const op = "project.get"
	userID, err := requireUser(ctx, op)
	if err != nil {
		return nil, err
	}
	return ps.load(dbctx.Context{Ctx: ctx}, op, userID, projectID)
}

func (ps *projectService) load(dbc dbctx.Context, op string, userID, projectID uuid.UUID) (*cbl.Project, error) {
	p, err := ps.projects.GetByID(dbc, userID, projectID)
	if err != nil {
		return nil, repos.MapError(op, err)
	}
	return p, nil
}

func (ps *projectService) Update(ctx context.Context, projectID uuid.UUID, in ProjectInput) (*cbl.Project, error) {
	const op = "project.update"
	userID, err := requireUser(ctx, op)
	if err != nil {
		return nil, err
	}
	if err := validateInput(op, &in); err != nil {
		return nil, err
	}
	cols := map[string]any{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, errs.WithDetails(errs.CodeValidation, op, "invalid input", []string{"title:required"})
		}
		cols["title"] = title
	}
	if in.Description != nil {
		cols["description"] = strings.TrimSpace(*in.Description)
	}
	var out *cbl.Project
	err = ps.tx.InTx(ctx, func(dbc dbctx.Context) error {
		if len(cols) > 0 {
			if err := ps.projects.UpdateColumns(dbc, userID, projectID, cols); err != nil {
				return repos.MapError(op, err)
			}
		}
		p, err := ps.load(dbc, op, userID, projectID)
		out = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ps *projectService) Delete(ctx context.Context, projectID uuid.UUID) error {
	const op = "project.delete"
	userID, err := requireUser(ctx, op)
	if err != nil {
		return err
	}
	if err := ps.projects.SoftDelete(dbctx.Context{Ctx: ctx}, userID, projectID); err != nil {
		return repos.MapError(op, err)
	}
	ps.log.Info("Project deleted", "user_id", userID, "project_id", projectID)
	return nil
}

// mutate loads the project inside a transaction, lets fn change it and
// returns the columns to write, then reloads the committed row.
func (ps *projectService) mutate(ctx context.Context, op string, projectID uuid.UUID, fn func(p *cbl.Project) (map[string]any, error)) (uuid.UUID, *cbl.Project, error) {
	userID, err := requireUser(ctx, op)
	if err != nil {
		return uuid.Nil, nil, err
	}
	var out *cbl.Project
	err = ps.tx.InTx(ctx, func(dbc dbctx.Context) error {
		p, err := ps.load(dbc, op, userID, projectID)
		if err != nil {
			return err
		}
		cols, err := fn(p)
		if err != nil {
			return err
		}
		if err := ps.projects.UpdateColumns(dbc, userID, projectID, cols); err != nil {
			return repos.MapError(op, err)
		}
		out, err = ps.load(dbc, op, userID, projectID)
		return err
	})
	if err != nil {
		return uuid.Nil, nil, err
	}
	return userID, out, nil
}

// settle runs the badge engine over events once the write is committed and
// publishes the new project state.
func (ps *projectService) settle(ctx context.Context, userID uuid.UUID, p *cbl.Project, events []badges.Event) (*ProjectResult, error) {
	report := cblmod.ComputeProgress(p)
	earned, err := ps.badges.Evaluate(ctx, userID, events...)
	if err != nil {
		ps.log.Error("Badge evaluation failed", "project_id", p.ID, "error", err)
		return nil, err
	}
	ps.notifier.ProjectUpdated(ctx, p, report)
	return &ProjectResult{Project: p, Progress: report, NewBadges: earned}, nil
}

func (ps *projectService) SaveField(ctx context.Context, projectID uuid.UUID, field string, raw json.RawMessage) (*ProjectResult, error) {
	const op = "project.save_field"
	f, ok := cbl.ParseField(field)
	if !ok {
		return nil, errs.WithDetails(errs.CodeValidation, op, "unknown field", []string{"field:" + field})
	}
	value, err := f.Decode(raw)
	if err != nil {
		return nil, errs.Wrap(errs.CodeValidation, op, err)
	}
	if err := validateFieldValue(op, value); err != nil {
		return nil, err
	}
	userID, p, err := ps.mutate(ctx, op, projectID, func(p *cbl.Project) (map[string]any, error) {
		if err := f.Apply(p, value); err != nil {
			return nil, errs.Wrap(errs.CodeValidation, op, err)
		}
		return f.Columns(p), nil
	})
	if err != nil {
		return nil, err
	}
	ps.log.Debug("Project field saved", "project_id", projectID, "field", f)
	return ps.settle(ctx, userID, p, badges.EventsForField(p, f))
}

func validateFieldValue(op string, value any) error {
	switch v := value.(type) {
	case []cbl.ChecklistItem:
		return validateSlice(op, v)
	case []cbl.Activity:
		return validateSlice(op, v)
	case []cbl.Resource:
		return validateSlice(op, v)
	case []cbl.Prototype:
		return validateSlice(op, v)
	default:
		return nil
	}
}

func (ps *projectService) AddChecklistItem(ctx context.Context, projectID uuid.UUID, text string) (*ProjectResult, error) {
	const op = "project.checklist_add"
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errs.WithDetails(errs.CodeValidation, op, "invalid input", []string{"text:required"})
	}
	userID, p, err := ps.mutate(ctx, op, projectID, func(p *cbl.Project) (map[string]any, error) {
		items := append([]cbl.ChecklistItem{}, p.Checklist...)
		items = append(items, cbl.ChecklistItem{ID: uuid.New().String(), Text: text})
		p.Checklist = datatypes.NewJSONSlice(items)
		return cbl.FieldChecklist.Columns(p), nil
	})
	if err != nil {
		return nil, err
	}
	return ps.settle(ctx, userID, p, badges.EventsForField(p, cbl.FieldChecklist))
}

func (ps *projectService) ToggleChecklistItem(ctx context.Context, projectID uuid.UUID, itemID string, done *bool) (*ProjectResult, error) {
	const op = "project.checklist_toggle"
	userID, p, err := ps.mutate(ctx, op, projectID, func(p *cbl.Project) (map[string]any, error) {
		items := append([]cbl.ChecklistItem{}, p.Checklist...)
		for i := range items {
			if items[i].ID != itemID {
				continue
			}
			if done != nil {
				items[i].Done = *done
			} else {
				items[i].Done = !items[i].Done
			}
			p.Checklist = datatypes.NewJSONSlice(items)
			return cbl.FieldChecklist.Columns(p), nil
		}
		return nil, errs.New(errs.CodeNotFound, op, "checklist item not found")
	})
	if err != nil {
		return nil, err
	}
	return ps.settle(ctx, userID, p, badges.EventsForField(p, cbl.FieldChecklist))
}

func (ps *projectService) Progress(ctx context.Context, projectID uuid.UUID) (cblmod.Report, error) {
	p, err := ps.Get(ctx, projectID)
	if err != nil {
		return cblmod.Report{}, err
	}
	return cblmod.ComputeProgress(p), nil
}

func (ps *projectService) Navigate(ctx context.Context, projectID uuid.UUID, phase string) (*NavigationResult, error) {
	const op = "project.navigate"
	requested, ok := cbl.ParsePhase(phase)
	if !ok {
		return nil, errs.WithDetails(errs.CodeValidation, op, "unknown phase", []string{"phase:" + phase})
	}
	userID, err := requireUser(ctx, op)
	if err != nil {
		return nil, err
	}
	var (
		decision cblmod.Decision
		p        *cbl.Project
	)
	err = ps.tx.InTx(ctx, func(dbc dbctx.Context) error {
		cur, err := ps.load(dbc, op, userID, projectID)
		if err != nil {
			return err
		}
		decision = cblmod.Decide(cur, requested)
		if cur.CurrentPhase == decision.Phase {
			p = cur
			return nil
		}
		if err := ps.projects.SetCurrentPhase(dbc, userID, projectID, decision.Phase); err != nil {
			return repos.MapError(op, err)
		}
		p, err = ps.load(dbc, op, userID, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	earned, err := ps.badges.Evaluate(ctx, userID, badges.EventsForNavigation(decision.Phase)...)
	if err != nil {
		return nil, err
	}
	observability.Current().IncGateDecision(string(requested), decision.Granted)
	ps.notifier.PhaseChanged(ctx, p, decision)
	return &NavigationResult{Decision: decision, Project: p, NewBadges: earned}, nil
}

func (ps *projectService) CompletePhase(ctx context.Context, projectID uuid.UUID, phase string) (*ProjectResult, error) {
	const op = "project.complete_phase"
	ph, ok := cbl.ParsePhase(phase)
	if !ok {
		return nil, errs.WithDetails(errs.CodeValidation, op, "unknown phase", []string{"phase:" + phase})
	}
	userID, err := requireUser(ctx, op)
	if err != nil {
		return nil, err
	}

	var out *cbl.Project
	changed := false
	err = ps.tx.InTx(ctx, func(dbc dbctx.Context) error {
		p, err := ps.load(dbc, op, userID, projectID)
		if err != nil {
			return err
		}
		// A completed phase stays completed even if its fields were cleared
		// later; completing it again only re-runs the badge events.
		if p.PhaseCompleted(ph) {
			out = p
			return nil
		}
		if missing := cblmod.CompletionMissing(p, ph); len(missing) > 0 {
			return errs.WithDetails(errs.CodePreconditionFailed, op, "missing requirements", cblmod.Strings(missing))
		}
		changed, err = ps.projects.SetCompleted(dbc, userID, projectID, ph)
		if err != nil {
			return repos.MapError(op, err)
		}
		out, err = ps.load(dbc, op, userID, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if changed {
		ps.log.Info("Phase completed", "project_id", projectID, "phase", ph)
		observability.Current().IncPhaseCompleted(string(ph))
		ps.notifier.PhaseCompleted(ctx, out, ph)
	}
	return ps.settle(ctx, userID, out, badges.EventsForPhaseCompleted(out, ph))
}

func (ps *projectService) SyncBadges(ctx context.Context, projectID uuid.UUID) ([]*gamification.EarnedBadge, error) {
	const op = "project.sync_badges"
	userID, err := requireUser(ctx, op)
	if err != nil {
		return nil, err
	}
	p, err := ps.load(dbctx.Context{Ctx: ctx}, op, userID, projectID)
	if err != nil {
		return nil, err
	}
	return ps.badges.Evaluate(ctx, userID, badges.EventsForProject(p)...)
}

func (ps *projectService) Nudge(ctx context.Context, projectID uuid.UUID, seed string) (*NudgeResult, error) {
	const op = "project.nudge"
	userID, err := requireUser(ctx, op)
	if err != nil {
		return nil, err
	}
	p, err := ps.load(dbctx.Context{Ctx: ctx}, op, userID, projectID)
	if err != nil {
		return nil, err
	}
	seed = strings.TrimSpace(seed)
	if seed == "" {
		seed = strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	card, ok := ps.catalog.PickNudge(p.CurrentPhase, p.ID.String()+":"+seed)
	if !ok {
		return nil, errs.New(errs.CodeNotFound, op, "no nudge for phase "+string(p.CurrentPhase))
	}
	earned, err := ps.badges.Evaluate(ctx, userID, badges.NewSignal(badges.TriggerNudgeObtained))
	if err != nil {
		return nil, err
	}
	return &NudgeResult{Nudge: card, NewBadges: earned}, nil
}

func (ps *projectService) Dashboard(ctx context.Context, projectID uuid.UUID) (*Dashboard, error) {
	const op = "project.dashboard"
	userID, err := requireUser(ctx, op)
	if err != nil {
		return nil, err
	}
	var (
		p      *cbl.Project
		earned []*gamification.EarnedBadge
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p, err = ps.load(dbctx.Context{Ctx: gctx}, op, userID, projectID)
		return err
	})
	g.Go(func() error {
		var err error
		earned, err = ps.earned.ListByUser(dbctx.Context{Ctx: gctx}, userID)
		return repos.MapError(op, err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Dashboard{
		Project:  p,
		Progress: cblmod.ComputeProgress(p),
		Stats:    badges.ComputeStats(earned, ps.catalog),
		Badges:   earned,
	}, nil
}

package cbl

import (
	"math"

	domain "github.com/yungbote/cbl-backend/internal/domain/cbl"
)

// Unit is one scoring unit. Binary units are 0/1 or 1/1; collection units are
// done/len with an empty collection scored 0/1.
type Unit struct {
	Key       string `json:"key"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

type PhaseProgress struct {
	Phase     domain.Phase `json:"phase"`
	Completed int          `json:"completed"`
	Total     int          `json:"total"`
	Percent   int          `json:"percent"`
	Units     []Unit       `json:"units"`
}

// Sections are the per-section booleans other rules are built from.
type Sections struct {
	HasBigIdea           bool `json:"has_big_idea"`
	HasEssentialQuestion bool `json:"has_essential_question"`
	HasChallenge         bool `json:"has_challenge"`
	HasChecklist         bool `json:"has_checklist"`
	HasGuidingQuestions  bool `json:"has_guiding_questions"`
	HasAnswers           bool `json:"has_answers"`
	HasActivities        bool `json:"has_activities"`
	HasResources         bool `json:"has_resources"`
	HasSynthesis         bool `json:"has_synthesis"`
	HasSolution          bool `json:"has_solution"`
	HasImplementation    bool `json:"has_implementation"`
	HasEvaluation        bool `json:"has_evaluation"`
	HasPrototypes        bool `json:"has_prototypes"`
}

type Report struct {
	Overall  int             `json:"overall"`
	Phases   []PhaseProgress `json:"phases"`
	Sections Sections        `json:"sections"`
}

// Phase returns the progress entry for ph.
func (r Report) Phase(ph domain.Phase) PhaseProgress {
	for _, pp := range r.Phases {
		if pp.Phase == ph {
			return pp
		}
	}
	return PhaseProgress{Phase: ph}
}

// ComputeProgress is deterministic and always returns percentages in [0,100].
func ComputeProgress(p *domain.Project) Report {
	if p == nil {
		p = &domain.Project{}
	}
	phases := []PhaseProgress{
		tally(domain.PhaseEngage, engageUnits(p)),
		tally(domain.PhaseInvestigate, investigateUnits(p)),
		tally(domain.PhaseAct, actUnits(p)),
	}
	completed, total := 0, 0
	for _, pp := range phases {
		completed += pp.Completed
		total += pp.Total
	}
	return Report{
		Overall:  percent(completed, total),
		Phases:   phases,
		Sections: SectionsOf(p),
	}
}

// Overall is ComputeProgress(p).Overall.
func Overall(p *domain.Project) int { return ComputeProgress(p).Overall }

func SectionsOf(p *domain.Project) Sections {
	return Sections{
		HasBigIdea:           domain.Filled(p.BigIdea),
		HasEssentialQuestion: domain.Filled(p.EssentialQuestion),
		HasChallenge:         domain.Filled(p.Challenge),
		HasChecklist:         len(p.Checklist) > 0,
		HasGuidingQuestions:  len(p.GuidingQuestions) > 0,
		HasAnswers:           p.AnsweredCount() > 0,
		HasActivities:        len(p.Activities) > 0,
		HasResources:         len(p.Resources) > 0,
		HasSynthesis:         domain.Filled(p.Synthesis.MainFindings),
		HasSolution:          domain.Filled(p.Solution.Title) && domain.Filled(p.Solution.Description),
		HasImplementation:    domain.Filled(p.Implementation.Overview),
		HasEvaluation:        domain.Filled(p.Evaluation.Objectives),
		HasPrototypes:        len(p.Prototypes) > 0,
	}
}

func engageUnits(p *domain.Project) []Unit {
	return []Unit{
		binary("big_idea", p.BigIdea),
		binary("essential_question", p.EssentialQuestion),
		binary("challenge", p.Challenge),
		ratio("checklist", p.ChecklistDone(), len(p.Checklist)),
	}
}

func investigateUnits(p *domain.Project) []Unit {
	return []Unit{
		count("guiding_questions", len(p.GuidingQuestions)),
		ratio("answers", p.AnsweredCount(), len(p.GuidingQuestions)),
		ratio("activities", p.ActivitiesCompleted(), len(p.Activities)),
		count("resources", len(p.Resources)),
		binary("synthesis.main_findings", p.Synthesis.MainFindings),
		binary("synthesis.patterns", p.Synthesis.Patterns),
		binary("synthesis.gaps", p.Synthesis.Gaps),
		binary("synthesis.insights", p.Synthesis.Insights),
	}
}

func actUnits(p *domain.Project) []Unit {
	return []Unit{
		binary("solution.title", p.Solution.Title),
		binary("solution.description", p.Solution.Description),
		binary("implementation.overview", p.Implementation.Overview),
		binary("evaluation.objectives", p.Evaluation.Objectives),
		ratio("prototypes", p.PrototypesTested(), len(p.Prototypes)),
	}
}

func binary(key, v string) Unit {
	u := Unit{Key: key, Total: 1}
	if domain.Filled(v) {
		u.Completed = 1
	}
	return u
}

func count(key string, n int) Unit {
	u := Unit{Key: key, Total: 1}
	if n > 0 {
		u.Completed = 1
	}
	return u
}

func ratio(key string, done, n int) Unit {
	if n <= 0 {
		return Unit{Key: key, Total: 1}
	}
	if done > n {
		done = n
	}
	if done < 0 {
		done = 0
	}
	return Unit{Key: key, Completed: done, Total: n}
}

func tally(ph domain.Phase, units []Unit) PhaseProgress {
	pp := PhaseProgress{Phase: ph, Units: units}
	for _, u := range units {
		pp.Completed += u.Completed
		pp.Total += u.Total
	}
	pp.Percent = percent(pp.Completed, pp.Total)
	return pp
}

func percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	v := int(math.Round(100 * float64(completed) / float64(total)))
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

package cbl

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	domain "github.com/yungbote/cbl-backend/internal/domain/cbl"
)

func emptyProject() *domain.Project {
	return domain.NewProject(uuid.New(), "Water", "")
}

func TestComputeProgress_EmptyProjectIsLowAndFinite(t *testing.T) {
	r := ComputeProgress(emptyProject())
	if r.Overall != 0 {
		t.Fatalf("overall=%d want 0", r.Overall)
	}
	for _, pp := range r.Phases {
		if pp.Total == 0 {
			t.Fatalf("phase %s has zero denominator", pp.Phase)
		}
		if pp.Percent != 0 {
			t.Fatalf("phase %s percent=%d want 0", pp.Phase, pp.Percent)
		}
	}
	if got := Overall(nil); got != 0 {
		t.Fatalf("Overall(nil)=%d", got)
	}
}

func TestComputeProgress_WhitespaceIsIncomplete(t *testing.T) {
	p := emptyProject()
	p.BigIdea = "   "
	p.EssentialQuestion = "\t\n"
	r := ComputeProgress(p)
	if r.Sections.HasBigIdea || r.Sections.HasEssentialQuestion {
		t.Fatalf("whitespace counted as filled: %+v", r.Sections)
	}
	if r.Phase(domain.PhaseEngage).Completed != 0 {
		t.Fatalf("engage completed=%d want 0", r.Phase(domain.PhaseEngage).Completed)
	}
}

func TestComputeProgress_EngageRatios(t *testing.T) {
	p := emptyProject()
	p.BigIdea = "water"
	p.EssentialQuestion = "how?"
	p.Challenge = "reduce waste"
	p.Checklist = datatypes.NewJSONSlice([]domain.ChecklistItem{
		{ID: "a", Text: "one", Done: true},
		{ID: "b", Text: "two"},
	})
	eng := ComputeProgress(p).Phase(domain.PhaseEngage)
	if eng.Completed != 4 || eng.Total != 5 || eng.Percent != 80 {
		t.Fatalf("engage=%+v want 4/5 80%%", eng)
	}
}

func TestComputeProgress_InvestigateAndAct(t *testing.T) {
	p := emptyProject()
	p.GuidingQuestions = datatypes.NewJSONSlice([]string{"q1", "q2"})
	p.Answers = datatypes.NewJSONSlice([]domain.Answer{{Question: "q1", AnswerText: "a"}, {Question: "q2"}})
	p.Activities = datatypes.NewJSONSlice([]domain.Activity{{ID: "1", Title: "x", Status: domain.ActivityCompleted}})
	p.Resources = datatypes.NewJSONSlice([]domain.Resource{{ID: "1", Title: "r", Credibility: 3}})
	p.Synthesis.MainFindings = "f"

	inv := ComputeProgress(p).Phase(domain.PhaseInvestigate)
	// questions 1/1, answers 1/2, activities 1/1, resources 1/1, synthesis 1/4
	if inv.Completed != 5 || inv.Total != 9 || inv.Percent != 56 {
		t.Fatalf("investigate=%+v want 5/9 56%%", inv)
	}

	p.Solution = domain.Solution{Title: "t", Description: "d"}
	p.Prototypes = datatypes.NewJSONSlice([]domain.Prototype{{ID: "1", Title: "p", TestResults: "ok"}, {ID: "2", Title: "p2"}})
	act := ComputeProgress(p).Phase(domain.PhaseAct)
	if act.Completed != 3 || act.Total != 6 || act.Percent != 50 {
		t.Fatalf("act=%+v want 3/6 50%%", act)
	}
}

func TestComputeProgress_Deterministic(t *testing.T) {
	p := emptyProject()
	p.BigIdea = "x"
	p.Resources = datatypes.NewJSONSlice([]domain.Resource{{ID: "1", Title: "r", Credibility: 5}})
	first := ComputeProgress(p)
	for i := 0; i < 10; i++ {
		again := ComputeProgress(p)
		if again.Overall != first.Overall {
			t.Fatalf("run %d overall=%d want %d", i, again.Overall, first.Overall)
		}
		if again.Overall < 0 || again.Overall > 100 {
			t.Fatalf("overall out of range: %d", again.Overall)
		}
	}
}

func TestComputeProgress_FullProjectIs100(t *testing.T) {
	p := fullProject()
	if got := ComputeProgress(p).Overall; got != 100 {
		t.Fatalf("overall=%d want 100", got)
	}
}

func fullProject() *domain.Project {
	p := emptyProject()
	p.BigIdea = "water"
	p.EssentialQuestion = "how?"
	p.Challenge = "reduce waste"
	p.Checklist = datatypes.NewJSONSlice([]domain.ChecklistItem{{ID: "a", Text: "one", Done: true}})
	p.GuidingQuestions = datatypes.NewJSONSlice([]string{"q1"})
	p.Answers = datatypes.NewJSONSlice([]domain.Answer{{Question: "q1", AnswerText: "a"}})
	p.Activities = datatypes.NewJSONSlice([]domain.Activity{{ID: "1", Title: "x", Status: domain.ActivityCompleted}})
	p.Resources = datatypes.NewJSONSlice([]domain.Resource{{ID: "1", Title: "r", Credibility: 4}})
	p.Synthesis = domain.Synthesis{MainFindings: "f", Patterns: "p", Gaps: "g", Insights: "i"}
	p.Solution = domain.Solution{Title: "t", Description: "d"}
	p.Implementation.Overview = "o"
	p.Evaluation.Objectives = "obj"
	p.Prototypes = datatypes.NewJSONSlice([]domain.Prototype{{ID: "1", Title: "p", TestResults: "ok"}})
	return p
}

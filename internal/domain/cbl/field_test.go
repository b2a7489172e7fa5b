package cbl

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestParseField(t *testing.T) {
	cases := []struct {
		in   string
		want Field
		ok   bool
	}{
		{"big_idea", FieldBigIdea, true},
		{"bigIdea", FieldBigIdea, true},
		{" Essential_Question ", FieldEssentialQuestion, true},
		{"guidingQuestions", FieldGuidingQuestions, true},
		{"prototypes", FieldPrototypes, true},
		{"title", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseField(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseField(%q)=(%q,%v) want (%q,%v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestApplyTextTrims(t *testing.T) {
	p := NewProject(uuid.New(), "t", "")
	v, err := FieldBigIdea.Decode(json.RawMessage(`"  water  "`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := FieldBigIdea.Apply(p, v); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if p.BigIdea != "water" {
		t.Fatalf("BigIdea=%q", p.BigIdea)
	}
	if cols := FieldBigIdea.Columns(p); cols["big_idea"] != "water" {
		t.Fatalf("Columns=%v", cols)
	}
}

func TestGuidingQuestionsRealignAnswers(t *testing.T) {
	p := NewProject(uuid.New(), "t", "")
	if err := FieldGuidingQuestions.Apply(p, []string{"why?", " ", "how?"}); err != nil {
		t.Fatalf("Apply questions: %v", err)
	}
	if len(p.GuidingQuestions) != 2 || len(p.Answers) != 2 {
		t.Fatalf("questions=%v answers=%v", p.GuidingQuestions, p.Answers)
	}
	if err := FieldAnswers.Apply(p, []Answer{{AnswerText: "because"}, {AnswerText: " "}, {AnswerText: "extra"}}); err != nil {
		t.Fatalf("Apply answers: %v", err)
	}
	if len(p.Answers) != 2 || p.Answers[0].Question != "why?" || p.Answers[0].AnswerText != "because" {
		t.Fatalf("answers=%+v", p.Answers)
	}
	if got := p.AnsweredCount(); got != 1 {
		t.Fatalf("AnsweredCount=%d want 1", got)
	}
}

func TestApplyListsAssignIDsAndDefaults(t *testing.T) {
	p := NewProject(uuid.New(), "t", "")
	if err := FieldActivities.Apply(p, []Activity{{Title: "interview"}}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if p.Activities[0].ID == "" || p.Activities[0].Status != ActivityPlanned {
		t.Fatalf("activity=%+v", p.Activities[0])
	}
	if err := FieldPrototypes.Apply(p, []Prototype{{Title: "mock"}}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if p.Prototypes[0].Fidelity != FidelityLow {
		t.Fatalf("prototype=%+v", p.Prototypes[0])
	}
}

func TestApplyRejectsWrongType(t *testing.T) {
	p := NewProject(uuid.New(), "t", "")
	if err := FieldChecklist.Apply(p, "nope"); err == nil {
		t.Fatalf("expected type mismatch error")
	}
}

func TestPhaseHelpers(t *testing.T) {
	if prev, ok := PhaseAct.Previous(); !ok || prev != PhaseInvestigate {
		t.Fatalf("Previous(act)=%q,%v", prev, ok)
	}
	if _, ok := PhaseEngage.Previous(); ok {
		t.Fatalf("engage has no previous phase")
	}
	if _, ok := ParsePhase("review"); ok {
		t.Fatalf("unexpected phase parsed")
	}
}

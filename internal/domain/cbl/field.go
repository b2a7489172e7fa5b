package cbl

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Field names one editable section of a project.
type Field string

const (
	FieldBigIdea           Field = "big_idea"
	FieldEssentialQuestion Field = "essential_question"
	FieldChallenge         Field = "challenge"
	FieldChecklist         Field = "checklist"
	FieldGuidingQuestions  Field = "guiding_questions"
	FieldAnswers           Field = "answers"
	FieldActivities        Field = "activities"
	FieldResources         Field = "resources"
	FieldSynthesis         Field = "synthesis"
	FieldSolution          Field = "solution"
	FieldImplementation    Field = "implementation"
	FieldEvaluation        Field = "evaluation"
	FieldPrototypes        Field = "prototypes"
)

var Fields = []Field{
	FieldBigIdea, FieldEssentialQuestion, FieldChallenge, FieldChecklist,
	FieldGuidingQuestions, FieldAnswers, FieldActivities, FieldResources, FieldSynthesis,
	FieldSolution, FieldImplementation, FieldEvaluation, FieldPrototypes,
}

var fieldAliases = map[string]Field{
	"bigidea":           FieldBigIdea,
	"essentialquestion": FieldEssentialQuestion,
	"guidingquestions":  FieldGuidingQuestions,
}

// ParseField accepts snake_case names and the camelCase spelling used by clients.
func ParseField(raw string) (Field, bool) {
	name := strings.TrimSpace(raw)
	for _, f := range Fields {
		if string(f) == strings.ToLower(name) {
			return f, true
		}
	}
	if f, ok := fieldAliases[strings.ToLower(strings.ReplaceAll(name, "_", ""))]; ok {
		return f, true
	}
	return "", false
}

func (f Field) Phase() Phase {
	switch f {
	case FieldBigIdea, FieldEssentialQuestion, FieldChallenge, FieldChecklist:
		return PhaseEngage
	case FieldGuidingQuestions, FieldAnswers, FieldActivities, FieldResources, FieldSynthesis:
		return PhaseInvestigate
	default:
		return PhaseAct
	}
}

// Decode parses a JSON payload into the Go type the field stores.
func (f Field) Decode(raw json.RawMessage) (any, error) {
	switch f {
	case FieldBigIdea, FieldEssentialQuestion, FieldChallenge:
		var v string
		return decodeInto(raw, &v)
	case FieldChecklist:
		var v []ChecklistItem
		return decodeInto(raw, &v)
	case FieldGuidingQuestions:
		var v []string
		return decodeInto(raw, &v)
	case FieldAnswers:
		var v []Answer
		return decodeInto(raw, &v)
	case FieldActivities:
		var v []Activity
		return decodeInto(raw, &v)
	case FieldResources:
		var v []Resource
		return decodeInto(raw, &v)
	case FieldSynthesis:
		var v Synthesis
		return decodeInto(raw, &v)
	case FieldSolution:
		var v Solution
		return decodeInto(raw, &v)
	case FieldImplementation:
		var v Implementation
		return decodeInto(raw, &v)
	case FieldEvaluation:
		var v Evaluation
		return decodeInto(raw, &v)
	case FieldPrototypes:
		var v []Prototype
		return decodeInto(raw, &v)
	default:
		return nil, fmt.Errorf("unknown field %q", f)
	}
}

func decodeInto[T any](raw json.RawMessage, dst *T) (any, error) {
	if len(raw) == 0 {
		return *dst, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, err
	}
	return *dst, nil
}

// Apply writes a decoded value onto p, normalizing ids and whitespace.
func (f Field) Apply(p *Project, value any) error {
	mismatch := fmt.Errorf("field %s: unexpected value type %T", f, value)
	switch f {
	case FieldBigIdea, FieldEssentialQuestion, FieldChallenge:
		s, ok := value.(string)
		if !ok {
			return mismatch
		}
		s = strings.TrimSpace(s)
		switch f {
		case FieldBigIdea:
			p.BigIdea = s
		case FieldEssentialQuestion:
			p.EssentialQuestion = s
		default:
			p.Challenge = s
		}
	case FieldChecklist:
		items, ok := value.([]ChecklistItem)
		if !ok {
			return mismatch
		}
		for i := range items {
			items[i].ID = ensureID(items[i].ID)
			items[i].Text = strings.TrimSpace(items[i].Text)
		}
		p.Checklist = datatypes.NewJSONSlice(items)
	case FieldGuidingQuestions:
		qs, ok := value.([]string)
		if !ok {
			return mismatch
		}
		kept := make([]string, 0, len(qs))
		for _, q := range qs {
			if q = strings.TrimSpace(q); q != "" {
				kept = append(kept, q)
			}
		}
		p.GuidingQuestions = datatypes.NewJSONSlice(kept)
		p.Answers = datatypes.NewJSONSlice(alignAnswers(kept, p.Answers))
	case FieldAnswers:
		answers, ok := value.([]Answer)
		if !ok {
			return mismatch
		}
		p.Answers = datatypes.NewJSONSlice(alignAnswers(p.GuidingQuestions, answers))
	case FieldActivities:
		acts, ok := value.([]Activity)
		if !ok {
			return mismatch
		}
		for i := range acts {
			acts[i].ID = ensureID(acts[i].ID)
			acts[i].Title = strings.TrimSpace(acts[i].Title)
			if acts[i].Status == "" {
				acts[i].Status = ActivityPlanned
			}
		}
		p.Activities = datatypes.NewJSONSlice(acts)
	case FieldResources:
		res, ok := value.([]Resource)
		if !ok {
			return mismatch
		}
		for i := range res {
			res[i].ID = ensureID(res[i].ID)
			res[i].Title = strings.TrimSpace(res[i].Title)
			res[i].URL = strings.TrimSpace(res[i].URL)
			if res[i].Credibility == 0 {
				res[i].Credibility = DefaultCredibility
			}
		}
		p.Resources = datatypes.NewJSONSlice(res)
	case FieldSynthesis:
		v, ok := value.(Synthesis)
		if !ok {
			return mismatch
		}
		p.Synthesis = v
	case FieldSolution:
		v, ok := value.(Solution)
		if !ok {
			return mismatch
		}
		p.Solution = v
	case FieldImplementation:
		v, ok := value.(Implementation)
		if !ok {
			return mismatch
		}
		p.Implementation = v
	case FieldEvaluation:
		v, ok := value.(Evaluation)
		if !ok {
			return mismatch
		}
		p.Evaluation = v
	case FieldPrototypes:
		protos, ok := value.([]Prototype)
		if !ok {
			return mismatch
		}
		for i := range protos {
			protos[i].ID = ensureID(protos[i].ID)
			protos[i].Title = strings.TrimSpace(protos[i].Title)
			if protos[i].Fidelity == "" {
				protos[i].Fidelity = FidelityLow
			}
		}
		p.Prototypes = datatypes.NewJSONSlice(protos)
	default:
		return fmt.Errorf("unknown field %q", f)
	}
	return nil
}

// Columns returns the column updates that persist f from p.
func (f Field) Columns(p *Project) map[string]any {
	switch f {
	case FieldBigIdea:
		return map[string]any{"big_idea": p.BigIdea}
	case FieldEssentialQuestion:
		return map[string]any{"essential_question": p.EssentialQuestion}
	case FieldChallenge:
		return map[string]any{"challenge": p.Challenge}
	case FieldChecklist:
		return map[string]any{"checklist": p.Checklist}
	case FieldGuidingQuestions:
		return map[string]any{"guiding_questions": p.GuidingQuestions, "answers": p.Answers}
	case FieldAnswers:
		return map[string]any{"answers": p.Answers}
	case FieldActivities:
		return map[string]any{"activities": p.Activities}
	case FieldResources:
		return map[string]any{"resources": p.Resources}
	case FieldSynthesis:
		return map[string]any{
			"synthesis_main_findings": p.Synthesis.MainFindings,
			"synthesis_patterns":      p.Synthesis.Patterns,
			"synthesis_gaps":          p.Synthesis.Gaps,
			"synthesis_insights":      p.Synthesis.Insights,
		}
	case FieldSolution:
		return map[string]any{
			"solution_title":         p.Solution.Title,
			"solution_description":   p.Solution.Description,
			"solution_features":      p.Solution.Features,
			"solution_technology":    p.Solution.Technology,
			"solution_differentials": p.Solution.Differentials,
		}
	case FieldImplementation:
		return map[string]any{
			"implementation_overview":  p.Implementation.Overview,
			"implementation_timeline":  p.Implementation.Timeline,
			"implementation_resources": p.Implementation.Resources,
			"implementation_team":      p.Implementation.Team,
			"implementation_risks":     p.Implementation.Risks,
		}
	case FieldEvaluation:
		return map[string]any{
			"evaluation_objectives":   p.Evaluation.Objectives,
			"evaluation_metrics":      p.Evaluation.Metrics,
			"evaluation_methods":      p.Evaluation.Methods,
			"evaluation_timeline":     p.Evaluation.Timeline,
			"evaluation_stakeholders": p.Evaluation.Stakeholders,
		}
	case FieldPrototypes:
		return map[string]any{"prototypes": p.Prototypes}
	default:
		return nil
	}
}

func alignAnswers(questions []string, answers []Answer) []Answer {
	out := make([]Answer, len(questions))
	for i, q := range questions {
		out[i].Question = q
		if i < len(answers) {
			out[i].AnswerText = strings.TrimSpace(answers[i].AnswerText)
		}
	}
	return out
}

func ensureID(id string) string {
	if strings.TrimSpace(id) == "" {
		return uuid.NewString()
	}
	return id
}

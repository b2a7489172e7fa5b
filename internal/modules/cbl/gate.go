package cbl

import (
	domain "github.com/yungbote/cbl-backend/internal/domain/cbl"
)

// Requirement names one precondition of a phase entry or completion.
type Requirement string

const (
	RequireBigIdea                Requirement = "big_idea"
	RequireEssentialQuestion      Requirement = "essential_question"
	RequireChallenge              Requirement = "challenge"
	RequireGuidingQuestion        Requirement = "guiding_question"
	RequireActivity               Requirement = "activity"
	RequireResource               Requirement = "resource"
	RequireMainFindings           Requirement = "synthesis.main_findings"
	RequireSolutionTitle          Requirement = "solution.title"
	RequireSolutionDescription    Requirement = "solution.description"
	RequireImplementationOverview Requirement = "implementation.overview"
	RequirePrototype              Requirement = "prototype"
	RequireEngageCompleted        Requirement = "engage_completed"
	RequireInvestigateCompleted   Requirement = "investigate_completed"
)

var requirementMessages = map[Requirement]string{
	RequireBigIdea:                "define the big idea",
	RequireEssentialQuestion:      "write the essential question",
	RequireChallenge:              "state the challenge",
	RequireGuidingQuestion:        "add at least one guiding question",
	RequireActivity:               "plan at least one guiding activity",
	RequireResource:               "collect at least one resource",
	RequireMainFindings:           "summarize the main findings",
	RequireSolutionTitle:          "give the solution a title",
	RequireSolutionDescription:    "describe the solution",
	RequireImplementationOverview: "outline the implementation",
	RequirePrototype:              "build at least one prototype",
	RequireEngageCompleted:        "complete the engage phase",
	RequireInvestigateCompleted:   "complete the investigate phase",
}

// Message is the user-facing description of the requirement.
func (r Requirement) Message() string {
	if m, ok := requirementMessages[r]; ok {
		return m
	}
	return string(r)
}

func Strings(reqs []Requirement) []string {
	out := make([]string, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, string(r))
	}
	return out
}

func Messages(reqs []Requirement) []string {
	out := make([]string, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.Message())
	}
	return out
}

// EntryMissing lists what keeps phase from being reachable. Engage is always reachable.
func EntryMissing(p *domain.Project, phase domain.Phase) []Requirement {
	var missing []Requirement
	switch phase {
	case domain.PhaseEngage:
		return nil
	case domain.PhaseInvestigate:
		if !domain.Filled(p.BigIdea) {
			missing = append(missing, RequireBigIdea)
		}
		if !domain.Filled(p.EssentialQuestion) {
			missing = append(missing, RequireEssentialQuestion)
		}
	case domain.PhaseAct:
		missing = investigateSet(p)
	default:
		return []Requirement{Requirement("phase")}
	}
	return missing
}

func investigateSet(p *domain.Project) []Requirement {
	var missing []Requirement
	if len(p.GuidingQuestions) == 0 {
		missing = append(missing, RequireGuidingQuestion)
	}
	if len(p.Activities) == 0 {
		missing = append(missing, RequireActivity)
	}
	if len(p.Resources) == 0 {
		missing = append(missing, RequireResource)
	}
	if !domain.Filled(p.Synthesis.MainFindings) {
		missing = append(missing, RequireMainFindings)
	}
	return missing
}

// CanAccessPhase is re-evaluated against the current project state on every call.
func CanAccessPhase(p *domain.Project, phase domain.Phase) bool {
	if p == nil || !phase.Valid() {
		return false
	}
	return len(EntryMissing(p, phase)) == 0
}

// ResolvePhase returns requested when reachable, otherwise the nearest reachable earlier phase.
func ResolvePhase(p *domain.Project, requested domain.Phase) domain.Phase {
	if p == nil || !requested.Valid() {
		return domain.PhaseEngage
	}
	for ph := requested; ; {
		if CanAccessPhase(p, ph) {
			return ph
		}
		prev, ok := ph.Previous()
		if !ok {
			return domain.PhaseEngage
		}
		ph = prev
	}
}

type Decision struct {
	Requested domain.Phase `json:"requested"`
	Phase     domain.Phase `json:"phase"`
	Granted   bool         `json:"granted"`
	Missing   []string     `json:"missing,omitempty"`
}

func Decide(p *domain.Project, requested domain.Phase) Decision {
	d := Decision{Requested: requested, Phase: ResolvePhase(p, requested)}
	d.Granted = d.Phase == requested
	if !d.Granted && p != nil {
		d.Missing = Strings(EntryMissing(p, requested))
	}
	return d
}

// CompletionMissing lists what must hold before phase's completion flag may be set.
func CompletionMissing(p *domain.Project, phase domain.Phase) []Requirement {
	var missing []Requirement
	switch phase {
	case domain.PhaseEngage:
		if !domain.Filled(p.BigIdea) {
			missing = append(missing, RequireBigIdea)
		}
		if !domain.Filled(p.EssentialQuestion) {
			missing = append(missing, RequireEssentialQuestion)
		}
		if !domain.Filled(p.Challenge) {
			missing = append(missing, RequireChallenge)
		}
	case domain.PhaseInvestigate:
		if !p.EngageCompleted {
			missing = append(missing, RequireEngageCompleted)
		}
		missing = append(missing, investigateSet(p)...)
	case domain.PhaseAct:
		if !p.InvestigateCompleted {
			missing = append(missing, RequireInvestigateCompleted)
		}
		if !domain.Filled(p.Solution.Title) {
			missing = append(missing, RequireSolutionTitle)
		}
		if !domain.Filled(p.Solution.Description) {
			missing = append(missing, RequireSolutionDescription)
		}
		if !domain.Filled(p.Implementation.Overview) {
			missing = append(missing, RequireImplementationOverview)
		}
		if len(p.Prototypes) == 0 {
			missing = append(missing, RequirePrototype)
		}
	default:
		return []Requirement{Requirement("phase")}
	}
	return missing
}

// CanComplete reports whether phase's completion flag may be set now.
func CanComplete(p *domain.Project, phase domain.Phase) bool {
	return p != nil && len(CompletionMissing(p, phase)) == 0
}

package badges

import (
	"github.com/yungbote/cbl-backend/internal/domain/cbl"
)

// EventsForField derives the events a committed write of field produces.
func EventsForField(p *cbl.Project, field cbl.Field) []Event {
	if p == nil {
		return nil
	}
	var events []Event
	switch field {
	case cbl.FieldBigIdea:
		if cbl.Filled(p.BigIdea) {
			events = append(events, NewSignal(TriggerBigIdeaCreated))
		}
	case cbl.FieldEssentialQuestion:
		if cbl.Filled(p.EssentialQuestion) {
			events = append(events, NewSignal(TriggerEssentialQuestionCreated))
		}
	case cbl.FieldChallenge:
		if cbl.Filled(p.Challenge) {
			events = append(events, NewSignal(TriggerChallengeDefined))
		}
	case cbl.FieldGuidingQuestions, cbl.FieldAnswers:
		n := p.AnsweredCount()
		events = append(events,
			NewCount(TriggerQuestionsAnswered3, n),
			NewCount(TriggerQuestionsAnswered5, n),
		)
	case cbl.FieldActivities:
		if len(p.Activities) > 0 {
			events = append(events, NewSignal(TriggerActivityCreated))
		}
	case cbl.FieldResources:
		n := len(p.Resources)
		events = append(events,
			NewCount(TriggerResourcesAdded, n),
			NewCount(TriggerMultipleResourcesCollected, n),
		)
	case cbl.FieldPrototypes:
		n := len(p.Prototypes)
		if n > 0 {
			events = append(events, NewSignal(TriggerPrototypeCreated))
		}
		events = append(events, NewCount(TriggerMultiplePrototypesCreated, n))
	}
	return events
}

// EventsForPhaseCompleted derives the events of setting phase's completion flag.
// The cycle event is always included so the last phase to finish grants it.
func EventsForPhaseCompleted(p *cbl.Project, phase cbl.Phase) []Event {
	if p == nil {
		return nil
	}
	var events []Event
	switch phase {
	case cbl.PhaseEngage:
		events = append(events, engageEvent(p))
	case cbl.PhaseAct:
		events = append(events, NewSignal(TriggerActCompleted))
	}
	return append(events, cycleEvent(p))
}

// EventsForNavigation derives the events of landing on phase.
func EventsForNavigation(phase cbl.Phase) []Event {
	if phase == cbl.PhaseInvestigate {
		return []Event{NewSignal(TriggerInvestigateStarted)}
	}
	return nil
}

// EventsForProject derives every event the current project state supports.
// Used by the bulk badge check.
func EventsForProject(p *cbl.Project) []Event {
	if p == nil {
		return nil
	}
	var events []Event
	for _, f := range cbl.Fields {
		if f == cbl.FieldAnswers {
			continue
		}
		events = append(events, EventsForField(p, f)...)
	}
	if p.CurrentPhase.Index() >= cbl.PhaseInvestigate.Index() || p.InvestigateCompleted {
		events = append(events, NewSignal(TriggerInvestigateStarted))
	}
	if p.EngageCompleted {
		events = append(events, engageEvent(p))
	}
	if p.ActCompleted {
		events = append(events, NewSignal(TriggerActCompleted))
	}
	return append(events, cycleEvent(p))
}

func engageEvent(p *cbl.Project) Event {
	return EngageCompleted{
		HasBigIdea:           cbl.Filled(p.BigIdea),
		HasEssentialQuestion: cbl.Filled(p.EssentialQuestion),
		HasChallenge:         cbl.Filled(p.Challenge),
	}
}

func cycleEvent(p *cbl.Project) Event {
	return CycleCompleted{Engage: p.EngageCompleted, Investigate: p.InvestigateCompleted, Act: p.ActCompleted}
}

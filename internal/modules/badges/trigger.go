package badges

import "strings"

// Trigger is the closed set of events that can make a badge eligible.
type Trigger int

const (
	TriggerUnknown Trigger = iota
	TriggerBigIdeaCreated
	TriggerEssentialQuestionCreated
	TriggerChallengeDefined
	TriggerEngageCompleted
	TriggerInvestigateStarted
	TriggerQuestionsAnswered3
	TriggerQuestionsAnswered5
	TriggerResourcesAdded
	TriggerMultipleResourcesCollected
	TriggerActivityCreated
	TriggerPrototypeCreated
	TriggerMultiplePrototypesCreated
	TriggerActCompleted
	TriggerCycleCompleted
	TriggerNudgeObtained
	triggerCount
)

var triggerNames = [triggerCount]string{
	TriggerUnknown:                    "unknown",
	TriggerBigIdeaCreated:             "big_idea_created",
	TriggerEssentialQuestionCreated:   "essential_question_created",
	TriggerChallengeDefined:           "challenge_defined",
	TriggerEngageCompleted:            "engage_completed",
	TriggerInvestigateStarted:         "investigate_started",
	TriggerQuestionsAnswered3:         "questions_answered_3",
	TriggerQuestionsAnswered5:         "questions_answered_5",
	TriggerResourcesAdded:             "resources_added",
	TriggerMultipleResourcesCollected: "multiple_resources_collected",
	TriggerActivityCreated:            "activity_created",
	TriggerPrototypeCreated:           "prototype_created",
	TriggerMultiplePrototypesCreated:  "multiple_prototypes_created",
	TriggerActCompleted:               "act_completed",
	TriggerCycleCompleted:             "cbl_cycle_completed",
	TriggerNudgeObtained:              "nudge_obtained",
}

func (t Trigger) String() string {
	if t < 0 || t >= triggerCount {
		return triggerNames[TriggerUnknown]
	}
	return triggerNames[t]
}

// ParseTrigger maps a wire name to its Trigger. Unknown names return false.
func ParseTrigger(name string) (Trigger, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t := TriggerUnknown + 1; t < triggerCount; t++ {
		if triggerNames[t] == name {
			return t, true
		}
	}
	return TriggerUnknown, false
}

// Triggers lists every known trigger.
func Triggers() []Trigger {
	out := make([]Trigger, 0, triggerCount-1)
	for t := TriggerUnknown + 1; t < triggerCount; t++ {
		out = append(out, t)
	}
	return out
}

type payloadKind int

const (
	payloadNone payloadKind = iota
	payloadSignal
	payloadCount
	payloadEngage
	payloadCycle
)

func (t Trigger) payload() payloadKind {
	switch t {
	case TriggerBigIdeaCreated, TriggerEssentialQuestionCreated, TriggerChallengeDefined,
		TriggerInvestigateStarted, TriggerActivityCreated, TriggerPrototypeCreated,
		TriggerActCompleted, TriggerNudgeObtained:
		return payloadSignal
	case TriggerQuestionsAnswered3, TriggerQuestionsAnswered5, TriggerResourcesAdded,
		TriggerMultipleResourcesCollected, TriggerMultiplePrototypesCreated:
		return payloadCount
	case TriggerEngageCompleted:
		return payloadEngage
	case TriggerCycleCompleted:
		return payloadCycle
	default:
		return payloadNone
	}
}

// IsCount reports whether t carries a numeric threshold payload.
func (t Trigger) IsCount() bool { return t.payload() == payloadCount }

// Event is a trigger with its payload. The set of implementations is closed.
type Event interface {
	Trigger() Trigger
	isEvent()
}

// Signal is an event with no payload.
type Signal struct{ kind Trigger }

func (s Signal) Trigger() Trigger { return s.kind }
func (Signal) isEvent()           {}

// NewSignal returns nil if t carries a payload.
func NewSignal(t Trigger) Event {
	if t.payload() != payloadSignal {
		return nil
	}
	return Signal{kind: t}
}

// Count carries the current size of the counted collection.
type Count struct {
	kind Trigger
	N    int
}

func (c Count) Trigger() Trigger { return c.kind }
func (Count) isEvent()           {}

// NewCount returns nil if t is not a threshold trigger.
func NewCount(t Trigger, n int) Event {
	if t.payload() != payloadCount {
		return nil
	}
	return Count{kind: t, N: n}
}

// EngageCompleted carries the engage fields that visionario requires.
type EngageCompleted struct {
	HasBigIdea           bool
	HasEssentialQuestion bool
	HasChallenge         bool
}

func (EngageCompleted) Trigger() Trigger { return TriggerEngageCompleted }
func (EngageCompleted) isEvent()         {}

func (e EngageCompleted) satisfied() bool {
	return e.HasBigIdea && e.HasEssentialQuestion && e.HasChallenge
}

// CycleCompleted carries the three phase completion flags.
type CycleCompleted struct {
	Engage      bool
	Investigate bool
	Act         bool
}

func (CycleCompleted) Trigger() Trigger { return TriggerCycleCompleted }
func (CycleCompleted) isEvent()         {}

func (c CycleCompleted) satisfied() bool { return c.Engage && c.Investigate && c.Act }

// Context is the loosely typed payload accepted at the HTTP boundary.
type Context struct {
	QuestionsAnswered    int  `json:"questions_answered"`
	ResourcesCount       int  `json:"resources_count"`
	PrototypesCount      int  `json:"prototypes_count"`
	HasBigIdea           bool `json:"has_big_idea"`
	HasEssentialQuestion bool `json:"has_essential_question"`
	HasChallenge         bool `json:"has_challenge"`
	EngageCompleted      bool `json:"engage_completed"`
	InvestigateCompleted bool `json:"investigate_completed"`
	ActCompleted         bool `json:"act_completed"`
}

// Decode builds a typed event from a trigger name and context.
// Unknown names return false and are treated as no-ops by callers.
func Decode(name string, c Context) (Event, bool) {
	t, ok := ParseTrigger(name)
	if !ok {
		return nil, false
	}
	switch t.payload() {
	case payloadSignal:
		return Signal{kind: t}, true
	case payloadCount:
		n := 0
		switch t {
		case TriggerQuestionsAnswered3, TriggerQuestionsAnswered5:
			n = c.QuestionsAnswered
		case TriggerResourcesAdded, TriggerMultipleResourcesCollected:
			n = c.ResourcesCount
		case TriggerMultiplePrototypesCreated:
			n = c.PrototypesCount
		}
		return Count{kind: t, N: n}, true
	case payloadEngage:
		return EngageCompleted{
			HasBigIdea:           c.HasBigIdea,
			HasEssentialQuestion: c.HasEssentialQuestion,
			HasChallenge:         c.HasChallenge,
		}, true
	case payloadCycle:
		return CycleCompleted{
			Engage:      c.EngageCompleted,
			Investigate: c.InvestigateCompleted,
			Act:         c.ActCompleted,
		}, true
	default:
		return nil, false
	}
}

package cbl

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChecklistItem struct {
	ID   string `json:"id"`
	Text string `json:"text" validate:"nonblank"`
	Done bool   `json:"done"`
}

// Answer is aligned by index with Project.GuidingQuestions.
type Answer struct {
	Question   string `json:"question"`
	AnswerText string `json:"answer_text"`
}

type ActivityStatus string

const (
	ActivityPlanned    ActivityStatus = "planned"
	ActivityInProgress ActivityStatus = "in-progress"
	ActivityCompleted  ActivityStatus = "completed"
)

type Activity struct {
	ID     string         `json:"id"`
	Title  string         `json:"title" validate:"nonblank"`
	Type   string         `json:"type"`
	Status ActivityStatus `json:"status" validate:"omitempty,oneof=planned in-progress completed"`
}

// DefaultCredibility is assigned to resources saved without a rating.
const DefaultCredibility = 3

type Resource struct {
	ID          string   `json:"id"`
	Title       string   `json:"title" validate:"nonblank"`
	URL         string   `json:"url" validate:"omitempty,url"`
	Credibility int      `json:"credibility" validate:"omitempty,min=1,max=5"`
	Tags        []string `json:"tags"`
}

type Synthesis struct {
	MainFindings string `json:"main_findings"`
	Patterns     string `json:"patterns"`
	Gaps         string `json:"gaps"`
	Insights     string `json:"insights"`
}

type Solution struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Features      string `json:"features"`
	Technology    string `json:"technology"`
	Differentials string `json:"differentials"`
}

type Implementation struct {
	Overview  string `json:"overview"`
	Timeline  string `json:"timeline"`
	Resources string `json:"resources"`
	Team      string `json:"team"`
	Risks     string `json:"risks"`
}

type Evaluation struct {
	Objectives   string `json:"objectives"`
	Metrics      string `json:"metrics"`
	Methods      string `json:"methods"`
	Timeline     string `json:"timeline"`
	Stakeholders string `json:"stakeholders"`
}

type Fidelity string

const (
	FidelityLow    Fidelity = "low"
	FidelityMedium Fidelity = "medium"
	FidelityHigh   Fidelity = "high"
)

type Prototype struct {
	ID          string   `json:"id"`
	Title       string   `json:"title" validate:"nonblank"`
	Fidelity    Fidelity `json:"fidelity" validate:"omitempty,oneof=low medium high"`
	TestResults string   `json:"test_results"`
	NextSteps   string   `json:"next_steps"`
}

type Project struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	Title        string    `gorm:"not null" json:"title"`
	Description  string    `json:"description"`
	CurrentPhase Phase     `gorm:"column:current_phase;not null;default:'engage'" json:"current_phase"`

	// Engage
	BigIdea           string                             `gorm:"column:big_idea" json:"big_idea"`
	EssentialQuestion string                             `gorm:"column:essential_question" json:"essential_question"`
	Challenge         string                             `gorm:"column:challenge" json:"challenge"`
	Checklist         datatypes.JSONSlice[ChecklistItem] `gorm:"column:checklist" json:"checklist"`

	// Investigate
	GuidingQuestions datatypes.JSONSlice[string]   `gorm:"column:guiding_questions" json:"guiding_questions"`
	Answers          datatypes.JSONSlice[Answer]   `gorm:"column:answers" json:"answers"`
	Activities       datatypes.JSONSlice[Activity] `gorm:"column:activities" json:"activities"`
	Resources        datatypes.JSONSlice[Resource] `gorm:"column:resources" json:"resources"`
	Synthesis        Synthesis                     `gorm:"embedded;embeddedPrefix:synthesis_" json:"synthesis"`

	// Act
	Solution       Solution                       `gorm:"embedded;embeddedPrefix:solution_" json:"solution"`
	Implementation Implementation                 `gorm:"embedded;embeddedPrefix:implementation_" json:"implementation"`
	Evaluation     Evaluation                     `gorm:"embedded;embeddedPrefix:evaluation_" json:"evaluation"`
	Prototypes     datatypes.JSONSlice[Prototype] `gorm:"column:prototypes" json:"prototypes"`

	// Completion flags only ever move false -> true.
	EngageCompleted      bool `gorm:"column:engage_completed;not null;default:false" json:"engage_completed"`
	InvestigateCompleted bool `gorm:"column:investigate_completed;not null;default:false" json:"investigate_completed"`
	ActCompleted         bool `gorm:"column:act_completed;not null;default:false" json:"act_completed"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Project) TableName() string { return "project" }

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if !p.CurrentPhase.Valid() {
		p.CurrentPhase = PhaseEngage
	}
	return nil
}

// NewProject returns an empty project sitting at the engage phase.
func NewProject(userID uuid.UUID, title, description string) *Project {
	return &Project{
		ID:           uuid.New(),
		UserID:       userID,
		Title:        strings.TrimSpace(title),
		Description:  strings.TrimSpace(description),
		CurrentPhase: PhaseEngage,
	}
}

// PhaseCompleted reports the completion flag of a phase.
func (p *Project) PhaseCompleted(phase Phase) bool {
	switch phase {
	case PhaseEngage:
		return p.EngageCompleted
	case PhaseInvestigate:
		return p.InvestigateCompleted
	case PhaseAct:
		return p.ActCompleted
	default:
		return false
	}
}

// CycleCompleted is true once all three phases are completed.
func (p *Project) CycleCompleted() bool {
	return p.EngageCompleted && p.InvestigateCompleted && p.ActCompleted
}

// Filled reports whether s has content once surrounding whitespace is removed.
func Filled(s string) bool {
	return strings.TrimSpace(s) != ""
}

// AnsweredCount counts answers with non-empty text, bounded by the number of guiding questions.
func (p *Project) AnsweredCount() int {
	n := 0
	for i, a := range p.Answers {
		if i >= len(p.GuidingQuestions) {
			break
		}
		if Filled(a.AnswerText) {
			n++
		}
	}
	return n
}

func (p *Project) ChecklistDone() int {
	n := 0
	for _, item := range p.Checklist {
		if item.Done {
			n++
		}
	}
	return n
}

func (p *Project) ActivitiesCompleted() int {
	n := 0
	for _, a := range p.Activities {
		if a.Status == ActivityCompleted {
			n++
		}
	}
	return n
}

func (p *Project) PrototypesTested() int {
	n := 0
	for _, proto := range p.Prototypes {
		if Filled(proto.TestResults) {
			n++
		}
	}
	return n
}

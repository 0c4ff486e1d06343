package domain

import (
	"context"
	"errors"
	"time"
)

var ErrDraftNotFound = errors.New("onboarding draft not found")

// Step is one page of the onboarding wizard.
type Step string

const (
	StepPersonal       Step = "personal"
	StepResume         Step = "resume"
	StepSkills         Step = "skills"
	StepJobPreferences Step = "job_preferences"
)

// StepOrder is the fixed total order of the wizard.
var StepOrder = []Step{StepPersonal, StepResume, StepSkills, StepJobPreferences}

// Index returns the position of s in StepOrder, or -1.
func (s Step) Index() int {
	for i, step := range StepOrder {
		if step == s {
			return i
		}
	}
	return -1
}

func (s Step) IsValid() bool    { return s.Index() >= 0 }
func (s Step) IsFirst() bool    { return s == StepOrder[0] }
func (s Step) IsTerminal() bool { return s == StepOrder[len(StepOrder)-1] }

// Next returns the adjacent following step.
func (s Step) Next() (Step, bool) {
	i := s.Index()
	if i < 0 || i+1 >= len(StepOrder) {
		return s, false
	}
	return StepOrder[i+1], true
}

// Previous returns the adjacent preceding step.
func (s Step) Previous() (Step, bool) {
	i := s.Index()
	if i <= 0 {
		return s, false
	}
	return StepOrder[i-1], true
}

type Action string

const (
	ActionNext     Action = "next"
	ActionPrevious Action = "previous"
	ActionSubmit   Action = "submit"
)

// Actions lists what the user may do from s. The terminal step offers
// submit instead of next.
func (s Step) Actions() []Action {
	var actions []Action
	if !s.IsFirst() {
		actions = append(actions, ActionPrevious)
	}
	if s.IsTerminal() {
		actions = append(actions, ActionSubmit)
	} else {
		actions = append(actions, ActionNext)
	}
	return actions
}

// WizardSession is one user's wizard: the active step and the owned draft.
type WizardSession struct {
	UserID    string       `json:"user_id"`
	Step      Step         `json:"step"`
	Draft     ProfileDraft `json:"draft"`
	StartedAt time.Time    `json:"started_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type DraftView struct {
	Step           Step           `json:"step"`
	Steps          []Step         `json:"steps"`
	Actions        []Action       `json:"actions"`
	Personal       PersonalInfo   `json:"personal"`
	JobPreferences JobPreferences `json:"job_preferences"`
	Resume         *ResumeSummary `json:"resume,omitempty"`
	ResumeTips     []string       `json:"resume_tips,omitempty"`
	StartedAt      time.Time      `json:"started_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// StepResult reports a next/previous request. When Moved is false the step
// is unchanged and Errors holds what blocked it.
type StepResult struct {
	Draft  *DraftView        `json:"draft"`
	Moved  bool              `json:"moved"`
	Errors map[string]string `json:"errors,omitempty"`
}

// PersonalPatch sets the given personal fields; nil fields are left alone.
type PersonalPatch struct {
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	Degree        *string `json:"degree"`
	Course        *string `json:"course"`
	University    *string `json:"university"`
	GraduatedYear *string `json:"graduated_year"`
}

// JobPreferencesPatch covers the scalar job preference fields. Set-valued
// fields change through the tag operations.
type JobPreferencesPatch struct {
	Role              *string `json:"role"`
	CurrentLPA        *string `json:"current_lpa"`
	YearsOfExperience *string `json:"years_of_experience"`
}

type PatchResult struct {
	Draft  *DraftView        `json:"draft"`
	Errors map[string]string `json:"errors,omitempty"`
}

type TagOption struct {
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// TagFilterResult is a filtered pick list. When Options is empty and the
// field accepts free text, AddSuggestion carries the typed query.
type TagFilterResult struct {
	Field         TagField    `json:"field"`
	Query         string      `json:"query"`
	Options       []TagOption `json:"options"`
	AddSuggestion string      `json:"add_suggestion,omitempty"`
}

type TagSelection struct {
	Field    TagField `json:"field"`
	Selected []string `json:"selected"`
	Error    string   `json:"error,omitempty"`
}

type OnboardingStatus struct {
	Completed bool `json:"completed"`
	HasDraft  bool `json:"has_draft"`
	Step      Step `json:"step,omitempty"`
}

type UploadRules struct {
	MinBytes   int64    `json:"min_bytes"`
	MaxBytes   int64    `json:"max_bytes"`
	Extensions []string `json:"extensions"`
}

type Vocabulary struct {
	ExperienceLevels []string        `json:"experience_levels"`
	JobTypes         []string        `json:"job_types"`
	WorkModes        []string        `json:"work_modes"`
	Skills           []SkillCategory `json:"skills"`
	AllowCustomSkill bool            `json:"allow_custom_skills"`
	ResumeTips       []string        `json:"resume_tips"`
	Upload           UploadRules     `json:"upload"`
}

type OnboardingUsecase interface {
	Start(ctx context.Context, id Identity) (*DraftView, error)
	GetDraft(ctx context.Context, id Identity) (*DraftView, error)
	UpdatePersonal(ctx context.Context, id Identity, patch PersonalPatch) (*PatchResult, error)
	UpdateJobPreferences(ctx context.Context, id Identity, patch JobPreferencesPatch) (*PatchResult, error)
	FilterTags(ctx context.Context, id Identity, field TagField, query string) (*TagFilterResult, error)
	ToggleTag(ctx context.Context, id Identity, field TagField, value string) (*TagSelection, error)
	AddTag(ctx context.Context, id Identity, field TagField, value string) (*TagSelection, error)
	RemoveTag(ctx context.Context, id Identity, field TagField, value string) (*TagSelection, error)
	AttachResume(ctx context.Context, id Identity, filename string, data []byte) (*DraftView, error)
	RemoveResume(ctx context.Context, id Identity) (*DraftView, error)
	Next(ctx context.Context, id Identity) (*StepResult, error)
	Previous(ctx context.Context, id Identity) (*StepResult, error)
	Submit(ctx context.Context, id Identity) (*UserProfile, error)
	Status(ctx context.Context, id Identity) (*OnboardingStatus, error)
	Vocabulary() *Vocabulary
}

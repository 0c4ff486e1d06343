package wizard

import (
	"applybrain-backend/internal/domain"
	"applybrain-backend/pkg/validation"
)

type Event int

const (
	EventNext Event = iota
	EventPrevious
)

func (e Event) String() string {
	if e == EventPrevious {
		return "previous"
	}
	return "next"
}

// Guard returns the errors that keep the user on step. An empty result
// clears the step for advancing.
type Guard func(step domain.Step) map[string]string

// Outcome of a transition. Errors is set only when a Next was blocked.
type Outcome struct {
	Moved  bool
	Errors map[string]string
}

const (
	msgResumeRequired = "Upload your resume to continue."
	msgSubmitInstead  = "This is the last step. Submit to finish onboarding."
)

// Transition is the pure step function. Next moves to the adjacent step
// only when guard clears the current one; Previous is unguarded and a no-op
// on the first step.
func Transition(current domain.Step, event Event, guard Guard) (domain.Step, Outcome) {
	switch event {
	case EventPrevious:
		prev, ok := current.Previous()
		return prev, Outcome{Moved: ok}
	case EventNext:
		if current.IsTerminal() {
			return current, Outcome{Errors: map[string]string{"step": msgSubmitInstead}}
		}
		if guard != nil {
			if errs := guard(current); len(errs) > 0 {
				return current, Outcome{Errors: errs}
			}
		}
		next, ok := current.Next()
		return next, Outcome{Moved: ok}
	}
	return current, Outcome{}
}

// SectionFor maps a step to its validation section. The resume step has
// none; it is gated on the attached file instead.
func SectionFor(step domain.Step) (validation.Section, bool) {
	switch step {
	case domain.StepPersonal:
		return validation.SectionPersonal, true
	case domain.StepSkills:
		return validation.SectionSkills, true
	case domain.StepJobPreferences:
		return validation.SectionJobPreferences, true
	}
	return "", false
}

// SectionValues extracts the draft fields a section validates.
func SectionValues(draft *domain.ProfileDraft, section validation.Section) map[string]interface{} {
	switch section {
	case validation.SectionPersonal:
		return draft.Personal.Values()
	case validation.SectionSkills, validation.SectionJobPreferences:
		return draft.JobPreferences.Values()
	}
	return map[string]interface{}{}
}

// StepGuard builds the guard for a draft from the rule table.
func StepGuard(schema *validation.Schema, draft *domain.ProfileDraft) Guard {
	return func(step domain.Step) map[string]string {
		if step == domain.StepResume {
			if draft.Resume == nil {
				return map[string]string{"resume": msgResumeRequired}
			}
			return nil
		}
		section, ok := SectionFor(step)
		if !ok {
			return nil
		}
		return schema.Validate(section, SectionValues(draft, section)).Errors
	}
}

// ValidateAll runs every step guard and merges the errors.
func ValidateAll(schema *validation.Schema, draft *domain.ProfileDraft) map[string]string {
	guard := StepGuard(schema, draft)
	errs := map[string]string{}
	for _, step := range domain.StepOrder {
		for field, msg := range guard(step) {
			errs[field] = msg
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

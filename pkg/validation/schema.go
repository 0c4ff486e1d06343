package validation

import (
	"github.com/go-playground/validator/v10"
)

// Section groups the fields validated together by one wizard step.
type Section string

const (
	SectionPersonal       Section = "personal"
	SectionSkills         Section = "skills"
	SectionJobPreferences Section = "job_preferences"
)

// Mode selects when field errors are surfaced.
type Mode int

const (
	// ModeOnSubmit validates a whole section when the step is advanced or submitted.
	ModeOnSubmit Mode = iota
	// ModeOnChange additionally validates each field as it is updated.
	ModeOnChange
)

// FieldRule is one predicate on one field. Tag is a validator tag
// expression, Message is shown when it fails.
type FieldRule struct {
	Field   string
	Tag     string
	Message string
}

// Result of validating a section. Errors is keyed by field name.
type Result struct {
	Valid  bool              `json:"valid"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Schema evaluates the rule table. Rules for a field are tried in order and
// the first failure is reported.
type Schema struct {
	validate *validator.Validate
	sections map[Section][]FieldRule
	order    []Section
	mode     Mode
}

func NewSchema(v *validator.Validate, mode Mode, order []Section, rules map[Section][]FieldRule) *Schema {
	if v == nil {
		v = NewValidator()
	}
	return &Schema{validate: v, sections: rules, order: order, mode: mode}
}

// DefaultSchema returns the onboarding rule set.
func DefaultSchema(mode Mode) *Schema {
	return NewSchema(nil, mode, []Section{SectionPersonal, SectionSkills, SectionJobPreferences}, DefaultRules())
}

func DefaultRules() map[Section][]FieldRule {
	return map[Section][]FieldRule{
		SectionPersonal: {
			{"first_name", "required", "First name is required."},
			{"first_name", "min=3", "First name must be at least 3 characters long."},
			{"first_name", "valid_name", "First name can only contain letters and basic punctuation."},
			{"last_name", "required", "Last name is required."},
			{"last_name", "valid_name", "Last name can only contain letters and basic punctuation."},
			{"email", "required", "Email is required."},
			{"email", "email", "Enter a valid email address."},
			{"phone", "required", "Phone number is required."},
			{"phone", "e164_phone", "Enter a valid phone number."},
			{"address", "required", "Address is required."},
			{"address", "no_emoji", "Address cannot contain emoji."},
			{"degree", "required", "Degree is required."},
			{"course", "required", "Course is required."},
			{"university", "required", "Specify your college/school name."},
			{"graduated_year", "required", "Graduation year is required."},
			{"graduated_year", "len=4", "Year must contain 4 characters."},
			{"graduated_year", "number", "Year must be a number."},
		},
		SectionSkills: {
			{"skills", "min=1", "Specify at least one skill."},
		},
		SectionJobPreferences: {
			{"role", "required", "Role is required."},
			{"locations", "min=1", "Specify your location."},
			{"current_lpa", "required", "Describe current salary in LPA."},
			{"years_of_experience", "required", "Enter your years of work experience."},
			{"experience_level", "min=1", "Specify experience level."},
			{"experience_level", "tags_in=experience_level", "Choose experience levels from the list."},
			{"job_type", "min=1", "Specify job type."},
			{"job_type", "tags_in=job_type", "Choose job types from the list."},
			{"work_mode", "min=1", "Specify work location type."},
			{"work_mode", "tags_in=work_mode", "Choose work location types from the list."},
		},
	}
}

func (s *Schema) Mode() Mode { return s.mode }

func (s *Schema) Sections() []Section { return s.order }

func (s *Schema) HasSection(section Section) bool {
	_, ok := s.sections[section]
	return ok
}

// Fields lists the distinct fields of a section in rule order.
func (s *Schema) Fields(section Section) []string {
	seen := map[string]bool{}
	var fields []string
	for _, r := range s.sections[section] {
		if !seen[r.Field] {
			seen[r.Field] = true
			fields = append(fields, r.Field)
		}
	}
	return fields
}

// Rules exposes the rule table of a section.
func (s *Schema) Rules(section Section) []FieldRule {
	return s.sections[section]
}

// Validate checks every field of section against values. A field absent
// from values is validated as an empty string.
func (s *Schema) Validate(section Section, values map[string]interface{}) Result {
	errs := map[string]string{}
	for _, r := range s.sections[section] {
		if _, failed := errs[r.Field]; failed {
			continue
		}
		if !s.check(r, values[r.Field]) {
			errs[r.Field] = r.Message
		}
	}
	if len(errs) == 0 {
		return Result{Valid: true}
	}
	return Result{Valid: false, Errors: errs}
}

// ValidateField checks a single field and returns its first failing message.
func (s *Schema) ValidateField(section Section, field string, value interface{}) (string, bool) {
	for _, r := range s.sections[section] {
		if r.Field != field {
			continue
		}
		if !s.check(r, value) {
			return r.Message, false
		}
	}
	return "", true
}

func (s *Schema) check(r FieldRule, value interface{}) bool {
	if value == nil {
		value = ""
	}
	return s.validate.Var(value, r.Tag) == nil
}

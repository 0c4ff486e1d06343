package wizard

import (
	"applybrain-backend/internal/domain"
	"applybrain-backend/pkg/validation"
)

func init() {
	validation.RegisterVocabulary(string(domain.TagExperienceLevel), domain.ExperienceLevels)
	validation.RegisterVocabulary(string(domain.TagJobType), domain.JobTypes)
	validation.RegisterVocabulary(string(domain.TagWorkMode), domain.WorkModes)
}

// Items returns the pick list offered for a tag field.
func Items(field domain.TagField) []string {
	switch field {
	case domain.TagLocations:
		return domain.PopularLocations
	case domain.TagSkills:
		return domain.AllSkills()
	case domain.TagExperienceLevel:
		return domain.ExperienceLevels
	case domain.TagJobType:
		return domain.JobTypes
	case domain.TagWorkMode:
		return domain.WorkModes
	}
	return nil
}

// AllowsFreeText reports whether values outside Items may be added.
func AllowsFreeText(field domain.TagField, customSkills bool) bool {
	switch field {
	case domain.TagLocations:
		return true
	case domain.TagSkills:
		return customSkills
	}
	return false
}

// SelectorFor wraps the draft's current selection of field.
func SelectorFor(draft *domain.ProfileDraft, field domain.TagField, customSkills bool) *MultiSelect {
	return NewMultiSelect(Items(field), draft.JobPreferences.Tags(field), AllowsFreeText(field, customSkills))
}

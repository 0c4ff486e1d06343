package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps JSON field names to user-facing labels
var FieldLabels = map[string]string{
	// Personal info
	"first_name":     "First name",
	"last_name":      "Last name",
	"email":          "Email",
	"phone":          "Phone number",
	"address":        "Address",
	"degree":         "Degree",
	"course":         "Course",
	"university":     "University",
	"graduated_year": "Graduation year",

	// Job preferences
	"role":                "Role",
	"locations":           "Locations",
	"current_lpa":         "Current salary (LPA)",
	"years_of_experience": "Years of experience",
	"experience_level":    "Experience level",
	"job_type":            "Job type",
	"work_mode":           "Work location type",
	"skills":              "Skills",

	// Auth
	"password": "Password",
	"tag":      "Tag",
}

// FormatValidationErrors converts validator errors from request binding into
// a field -> message map.
func FormatValidationErrors(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"request": err.Error()}
	}

	messages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		if _, exists := messages[e.Field()]; exists {
			continue
		}
		messages[e.Field()] = formatSingleError(e)
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", label)
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters long.", label, param)
		}
		return fmt.Sprintf("%s must have at least %s item(s).", label, param)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters long.", label, param)
		}
		return fmt.Sprintf("%s must have at most %s item(s).", label, param)
	case "len":
		return fmt.Sprintf("%s must contain %s characters.", label, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.Join(strings.Fields(param), ", "))
	case "email":
		return "Enter a valid email address."
	case "e164_phone":
		return "Enter a valid phone number."
	case "valid_name":
		return fmt.Sprintf("%s can only contain letters and basic punctuation.", label)
	case "no_emoji":
		return fmt.Sprintf("%s cannot contain emoji.", label)
	case "tags_in":
		return fmt.Sprintf("%s contains a value outside the allowed list.", label)
	default:
		return fmt.Sprintf("%s is invalid (%s).", label, e.Tag())
	}
}

func getFieldLabel(field string) string {
	if label, ok := FieldLabels[field]; ok {
		return label
	}
	return strings.ReplaceAll(field, "_", " ")
}

package validation

import (
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

// Letters, spaces and common punctuation: . ' - ,
var nameRegex = regexp.MustCompile(`^[\p{L} .',-]+$`)

var (
	vocabMu      sync.RWMutex
	vocabularies = map[string]map[string]struct{}{}
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_name", ValidName)
	_ = v.RegisterValidation("e164_phone", ValidPhone)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("tags_in", TagsIn)
}

// NewValidator returns a validator with the custom rules registered and
// errors reported under JSON field names.
func NewValidator() *validator.Validate {
	v := validator.New()
	ConfigureEngine(v)
	return v
}

// ConfigureEngine prepares an existing validator, such as gin's binding
// engine, the same way NewValidator does.
func ConfigureEngine(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonFieldName)
	RegisterValidators(v)
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// RegisterVocabulary makes a fixed tag vocabulary available to the
// tags_in=<name> rule. Matching is case-insensitive.
func RegisterVocabulary(name string, items []string) {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = struct{}{}
	}
	vocabMu.Lock()
	vocabularies[name] = set
	vocabMu.Unlock()
}

func inVocabulary(name, value string) bool {
	vocabMu.RLock()
	set, ok := vocabularies[name]
	vocabMu.RUnlock()
	if !ok {
		return false
	}
	_, found := set[strings.ToLower(value)]
	return found
}

// ValidName validates that a string contains only valid name characters
func ValidName(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	return nameRegex.MatchString(val)
}

// ValidPhone accepts numbers in international format ("+" and country
// code) that are valid for their region.
func ValidPhone(fl validator.FieldLevel) bool {
	val := strings.TrimSpace(fl.Field().String())
	if val == "" {
		return true
	}
	return IsValidPhone(val)
}

func IsValidPhone(val string) bool {
	num, err := phonenumbers.Parse(val, "")
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, r := range val {
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

// TagsIn checks a string or every element of a string slice against the
// vocabulary named by the rule parameter.
func TagsIn(fl validator.FieldLevel) bool {
	name := fl.Param()
	field := fl.Field()

	switch field.Kind() {
	case reflect.String:
		if field.String() == "" {
			return true
		}
		return inVocabulary(name, field.String())
	case reflect.Slice, reflect.Array:
		for i := 0; i < field.Len(); i++ {
			if !inVocabulary(name, field.Index(i).String()) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

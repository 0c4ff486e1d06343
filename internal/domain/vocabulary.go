package domain

// TagField names a set-valued field edited through the multi-select control.
type TagField string

const (
	TagLocations       TagField = "locations"
	TagSkills          TagField = "skills"
	TagExperienceLevel TagField = "experience_level"
	TagJobType         TagField = "job_type"
	TagWorkMode        TagField = "work_mode"
)

var TagFields = []TagField{TagLocations, TagSkills, TagExperienceLevel, TagJobType, TagWorkMode}

func (f TagField) IsValid() bool {
	for _, field := range TagFields {
		if f == field {
			return true
		}
	}
	return false
}

// IsFixed reports whether the field only accepts values from its vocabulary.
func (f TagField) IsFixed() bool {
	return f == TagExperienceLevel || f == TagJobType || f == TagWorkMode
}

// Step is the wizard step whose section owns the field.
func (f TagField) Step() Step {
	if f == TagSkills {
		return StepSkills
	}
	return StepJobPreferences
}

var ExperienceLevels = []string{
	"Internship",
	"Entry Level",
	"Associate",
	"Mid-Senior level",
	"Director",
	"Executive",
}

var JobTypes = []string{
	"Full-time",
	"Part-time",
	"Temporary",
	"Contract",
	"Internship",
	"Volunteer",
}

var WorkModes = []string{"On-site", "Remote", "Hybrid"}

// PopularLocations seeds the location picker. Users may add any other place.
var PopularLocations = []string{
	"Bengaluru",
	"Chennai",
	"Delhi NCR",
	"Hyderabad",
	"Kolkata",
	"Mumbai",
	"Pune",
	"Remote - India",
}

// ResumeTips are shown alongside the resume step.
var ResumeTips = []string{
	"Keep your resume to 1-2 pages for best results",
	"Use clear section headings (Experience, Education, Skills)",
	"Include quantifiable achievements when possible",
	"Ensure your contact information is up-to-date",
	"Our AI will tailor your resume for each job application",
}

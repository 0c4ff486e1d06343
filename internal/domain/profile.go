package domain

import (
	"context"
	"time"
)

type PersonalInfo struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	Degree        string `json:"degree"`
	Course        string `json:"course"`
	University    string `json:"university"`
	GraduatedYear string `json:"graduated_year"`
}

// Values returns the fields keyed by their JSON names for rule evaluation.
func (p PersonalInfo) Values() map[string]interface{} {
	return map[string]interface{}{
		"first_name":     p.FirstName,
		"last_name":      p.LastName,
		"email":          p.Email,
		"phone":          p.Phone,
		"address":        p.Address,
		"degree":         p.Degree,
		"course":         p.Course,
		"university":     p.University,
		"graduated_year": p.GraduatedYear,
	}
}

type JobPreferences struct {
	Role              string   `json:"role"`
	Locations         []string `json:"locations"`
	CurrentLPA        string   `json:"current_lpa"`
	YearsOfExperience string   `json:"years_of_experience"`
	ExperienceLevel   []string `json:"experience_level"`
	JobType           []string `json:"job_type"`
	WorkMode          []string `json:"work_mode"`
	Skills            []string `json:"skills"`
}

func (j JobPreferences) Values() map[string]interface{} {
	return map[string]interface{}{
		"role":                j.Role,
		"locations":           nonNil(j.Locations),
		"current_lpa":         j.CurrentLPA,
		"years_of_experience": j.YearsOfExperience,
		"experience_level":    nonNil(j.ExperienceLevel),
		"job_type":            nonNil(j.JobType),
		"work_mode":           nonNil(j.WorkMode),
		"skills":              nonNil(j.Skills),
	}
}

// Tags returns the current selection of a set-valued field.
func (j *JobPreferences) Tags(field TagField) []string {
	switch field {
	case TagLocations:
		return j.Locations
	case TagSkills:
		return j.Skills
	case TagExperienceLevel:
		return j.ExperienceLevel
	case TagJobType:
		return j.JobType
	case TagWorkMode:
		return j.WorkMode
	}
	return nil
}

func (j *JobPreferences) SetTags(field TagField, tags []string) {
	switch field {
	case TagLocations:
		j.Locations = tags
	case TagSkills:
		j.Skills = tags
	case TagExperienceLevel:
		j.ExperienceLevel = tags
	case TagJobType:
		j.JobType = tags
	case TagWorkMode:
		j.WorkMode = tags
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ResumeFile is an uploaded document held in the draft. It is never parsed.
type ResumeFile struct {
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Content     []byte    `json:"content,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Summary drops the file bytes.
func (f *ResumeFile) Summary() *ResumeSummary {
	if f == nil {
		return nil
	}
	return &ResumeSummary{Name: f.Name, Size: f.Size, ContentType: f.ContentType, UploadedAt: f.UploadedAt}
}

type ResumeSummary struct {
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// ProfileDraft is the in-progress wizard state. Never persisted as a profile
// until submission.
type ProfileDraft struct {
	Personal       PersonalInfo   `json:"personal"`
	JobPreferences JobPreferences `json:"job_preferences"`
	Resume         *ResumeFile    `json:"resume,omitempty"`
}

// ResumeRef points at a stored resume object.
type ResumeRef struct {
	URL         string    `json:"url"`
	Name        string    `json:"name"`
	Key         string    `json:"-"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UserProfile struct {
	UserID       string `json:"user_id"`
	// AccountEmail is the sign-in email, distinct from the contact email.
	AccountEmail string `json:"-"`
	PersonalInfo
	JobPreferences
	OnboardingCompleted bool       `json:"onboarding_completed"`
	Resume              *ResumeRef `json:"resume,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

type ProfileRepository interface {
	// Upsert writes the profile keyed by user_id and the user's onboarding
	// flag in one transaction.
	Upsert(ctx context.Context, profile *UserProfile) error
	GetByUserID(ctx context.Context, userID string) (*UserProfile, error)
}

// DraftStore holds wizard sessions for the lifetime of the form.
// Get returns ErrDraftNotFound when no session exists.
type DraftStore interface {
	Get(ctx context.Context, userID string) (*WizardSession, error)
	Save(ctx context.Context, session *WizardSession) error
	Delete(ctx context.Context, userID string) error
}

// ResumeStore keeps submitted resume documents.
type ResumeStore interface {
	Save(ctx context.Context, userID string, file *ResumeFile) (*ResumeRef, error)
	Open(ctx context.Context, ref *ResumeRef) (*ResumeFile, error)
}

// Notifier is told about completed onboardings. Failures never block submission.
type Notifier interface {
	OnboardingCompleted(ctx context.Context, profile *UserProfile) error
}

type ProfileUsecase interface {
	GetProfile(ctx context.Context, id Identity) (*UserProfile, error)
	OpenResume(ctx context.Context, id Identity) (*ResumeFile, error)
}

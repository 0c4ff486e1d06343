package usecase

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"applybrain-backend/internal/domain"
	"applybrain-backend/internal/wizard"
	"applybrain-backend/pkg/apperror"
	"applybrain-backend/pkg/logger"
	"applybrain-backend/pkg/security/antivirus"
	"applybrain-backend/pkg/telemetry"
	"applybrain-backend/pkg/validation"
)

// ResumeDownloadPath is where the owner fetches the stored resume.
const ResumeDownloadPath = "/v1/profile/resume"

const notifyTimeout = 15 * time.Second

type OnboardingConfig struct {
	Schema            *validation.Schema
	Upload            wizard.UploadGate
	AllowCustomSkills bool
	// Scanner is optional. When set, a file it cannot clear is never attached.
	Scanner antivirus.Scanner
}

type onboardingUsecase struct {
	drafts   domain.DraftStore
	profiles domain.ProfileRepository
	resumes  domain.ResumeStore
	gate     domain.SessionGate
	notifier domain.Notifier
	schema   *validation.Schema
	upload   wizard.UploadGate
	scanner  antivirus.Scanner
	custom   bool
	now      func() time.Time
}

func NewOnboardingUsecase(
	drafts domain.DraftStore,
	profiles domain.ProfileRepository,
	resumes domain.ResumeStore,
	gate domain.SessionGate,
	notifier domain.Notifier,
	cfg OnboardingConfig,
) domain.OnboardingUsecase {
	if cfg.Schema == nil {
		cfg.Schema = validation.DefaultSchema(validation.ModeOnSubmit)
	}
	return &onboardingUsecase{
		drafts:   drafts,
		profiles: profiles,
		resumes:  resumes,
		gate:     gate,
		notifier: notifier,
		schema:   cfg.Schema,
		upload:   cfg.Upload,
		scanner:  cfg.Scanner,
		custom:   cfg.AllowCustomSkills,
		now:      time.Now,
	}
}

// ============================================================================
// Session
// ============================================================================

func (u *onboardingUsecase) load(ctx context.Context, id domain.Identity) (*domain.WizardSession, bool, error) {
	session, err := u.drafts.Get(ctx, id.UserID)
	if err == nil {
		return session, true, nil
	}
	if !errors.Is(err, domain.ErrDraftNotFound) {
		return nil, false, apperror.New(http.StatusInternalServerError, "Failed to load onboarding draft", err)
	}
	now := u.now()
	return &domain.WizardSession{
		UserID:    id.UserID,
		Step:      domain.StepOrder[0],
		StartedAt: now,
		UpdatedAt: now,
	}, false, nil
}

func (u *onboardingUsecase) save(ctx context.Context, session *domain.WizardSession) error {
	session.UpdatedAt = u.now()
	if err := u.drafts.Save(ctx, session); err != nil {
		return apperror.New(http.StatusInternalServerError, "Failed to save onboarding draft", err)
	}
	return nil
}

func (u *onboardingUsecase) view(session *domain.WizardSession) *domain.DraftView {
	v := &domain.DraftView{
		Step:           session.Step,
		Steps:          domain.StepOrder,
		Actions:        session.Step.Actions(),
		Personal:       session.Draft.Personal,
		JobPreferences: session.Draft.JobPreferences,
		Resume:         session.Draft.Resume.Summary(),
		StartedAt:      session.StartedAt,
		UpdatedAt:      session.UpdatedAt,
	}
	if session.Step == domain.StepResume {
		v.ResumeTips = domain.ResumeTips
	}
	return v
}

func (u *onboardingUsecase) Start(ctx context.Context, id domain.Identity) (*domain.DraftView, error) {
	session, existed, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !existed {
		if err := u.save(ctx, session); err != nil {
			return nil, err
		}
		logger.Log.Info("Onboarding started", "user_id", id.UserID)
	}
	return u.view(session), nil
}

func (u *onboardingUsecase) GetDraft(ctx context.Context, id domain.Identity) (*domain.DraftView, error) {
	session, _, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.view(session), nil
}

// ============================================================================
// Field edits
// ============================================================================

func (u *onboardingUsecase) UpdatePersonal(ctx context.Context, id domain.Identity, patch domain.PersonalPatch) (*domain.PatchResult, error) {
	session, _, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}

	p := &session.Draft.Personal
	touched := map[string]string{}
	set := func(field string, dst *string, src *string) {
		if src == nil {
			return
		}
		*dst = strings.TrimSpace(*src)
		touched[field] = *dst
	}
	set("first_name", &p.FirstName, patch.FirstName)
	set("last_name", &p.LastName, patch.LastName)
	set("email", &p.Email, patch.Email)
	set("phone", &p.Phone, patch.Phone)
	set("address", &p.Address, patch.Address)
	set("degree", &p.Degree, patch.Degree)
	set("course", &p.Course, patch.Course)
	set("university", &p.University, patch.University)
	set("graduated_year", &p.GraduatedYear, patch.GraduatedYear)

	if err := u.save(ctx, session); err != nil {
		return nil, err
	}
	return &domain.PatchResult{
		Draft:  u.view(session),
		Errors: u.fieldErrors(validation.SectionPersonal, touched),
	}, nil
}

func (u *onboardingUsecase) UpdateJobPreferences(ctx context.Context, id domain.Identity, patch domain.JobPreferencesPatch) (*domain.PatchResult, error) {
	session, _, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}

	j := &session.Draft.JobPreferences
	touched := map[string]string{}
	if patch.Role != nil {
		j.Role = strings.TrimSpace(*patch.Role)
		touched["role"] = j.Role
	}
	if patch.CurrentLPA != nil {
		j.CurrentLPA = strings.TrimSpace(*patch.CurrentLPA)
		touched["current_lpa"] = j.CurrentLPA
	}
	if patch.YearsOfExperience != nil {
		j.YearsOfExperience = strings.TrimSpace(*patch.YearsOfExperience)
		touched["years_of_experience"] = j.YearsOfExperience
	}

	if err := u.save(ctx, session); err != nil {
		return nil, err
	}
	return &domain.PatchResult{
		Draft:  u.view(session),
		Errors: u.fieldErrors(validation.SectionJobPreferences, touched),
	}, nil
}

// fieldErrors validates edited fields as they change. Submit-mode schemas
// report nothing until the step is advanced.
func (u *onboardingUsecase) fieldErrors(section validation.Section, touched map[string]string) map[string]string {
	if u.schema.Mode() != validation.ModeOnChange {
		return nil
	}
	errs := map[string]string{}
	for field, value := range touched {
		if msg, ok := u.schema.ValidateField(section, field, value); !ok {
			errs[field] = msg
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ============================================================================
// Tags
// ============================================================================

func (u *onboardingUsecase) FilterTags(ctx context.Context, id domain.Identity, field domain.TagField, query string) (*domain.TagFilterResult, error) {
	if !field.IsValid() {
		return nil, apperror.BadRequest("Unknown tag field: " + string(field))
	}
	session, _, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}

	res := wizard.SelectorFor(&session.Draft, field, u.custom).Filter(query)
	out := &domain.TagFilterResult{
		Field:         field,
		Query:         res.Query,
		Options:       make([]domain.TagOption, 0, len(res.Matches)),
		AddSuggestion: res.AddSuggestion,
	}
	for _, m := range res.Matches {
		out.Options = append(out.Options, domain.TagOption{Value: m.Value, Selected: m.Selected})
	}
	return out, nil
}

func (u *onboardingUsecase) ToggleTag(ctx context.Context, id domain.Identity, field domain.TagField, value string) (*domain.TagSelection, error) {
	return u.editTags(ctx, id, field, func(m *wizard.MultiSelect) ([]string, error) {
		return m.Toggle(value)
	})
}

func (u *onboardingUsecase) AddTag(ctx context.Context, id domain.Identity, field domain.TagField, value string) (*domain.TagSelection, error) {
	return u.editTags(ctx, id, field, func(m *wizard.MultiSelect) ([]string, error) {
		return m.Add(value)
	})
}

func (u *onboardingUsecase) RemoveTag(ctx context.Context, id domain.Identity, field domain.TagField, value string) (*domain.TagSelection, error) {
	return u.editTags(ctx, id, field, func(m *wizard.MultiSelect) ([]string, error) {
		return m.Remove(value), nil
	})
}

func (u *onboardingUsecase) editTags(ctx context.Context, id domain.Identity, field domain.TagField, edit func(*wizard.MultiSelect) ([]string, error)) (*domain.TagSelection, error) {
	if !field.IsValid() {
		return nil, apperror.BadRequest("Unknown tag field: " + string(field))
	}
	session, _, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}

	selected, err := edit(wizard.SelectorFor(&session.Draft, field, u.custom))
	switch {
	case errors.Is(err, wizard.ErrNotInVocabulary):
		msg := "Choose a value from the list."
		return nil, apperror.Unprocessable(msg, map[string]string{string(field): msg})
	case errors.Is(err, wizard.ErrEmptyTag):
		return nil, apperror.BadRequest("Value must not be empty")
	case err != nil:
		return nil, apperror.Internal(err)
	}

	session.Draft.JobPreferences.SetTags(field, selected)
	if err := u.save(ctx, session); err != nil {
		return nil, err
	}

	out := &domain.TagSelection{Field: field, Selected: selected}
	if out.Selected == nil {
		out.Selected = []string{}
	}
	if u.schema.Mode() == validation.ModeOnChange {
		if section, ok := wizard.SectionFor(field.Step()); ok {
			if msg, ok := u.schema.ValidateField(section, string(field), out.Selected); !ok {
				out.Error = msg
			}
		}
	}
	return out, nil
}

// ============================================================================
// Resume
// ============================================================================

func (u *onboardingUsecase) AttachResume(ctx context.Context, id domain.Identity, filename string, data []byte) (view *domain.DraftView, err error) {
	ctx, span := telemetry.Start(ctx, "onboarding.attach_resume",
		telemetry.String("user.id", id.UserID),
		telemetry.String("file.name", filename),
	)
	defer func() { telemetry.End(span, err) }()

	file, err := u.upload.Inspect(filename, data, u.now())
	if err != nil {
		var rej *wizard.RejectionError
		if errors.As(err, &rej) {
			return nil, rejected(rej)
		}
		return nil, apperror.Internal(err)
	}

	if u.scanner != nil {
		verdict, err := u.scanner.Scan(ctx, file.Name, file.Content)
		if err != nil {
			logger.Log.Error("Resume scan failed", "user_id", id.UserID, "scanner", u.scanner.Name(), "error", err)
			return nil, apperror.New(http.StatusServiceUnavailable, "We couldn't check your file right now. Please try again.", err)
		}
		if verdict.Infected {
			logger.Log.Warn("Resume rejected by scanner", "user_id", id.UserID, "threat", verdict.ThreatName)
			return nil, rejected(&wizard.RejectionError{Reason: wizard.ReasonInfected, Message: "This file can't be accepted. Upload a different copy."})
		}
	}

	session, _, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Draft.Resume = file
	if err := u.save(ctx, session); err != nil {
		return nil, err
	}
	return u.view(session), nil
}

// rejected keeps the draft untouched and reports the reason on the resume field.
func rejected(rej *wizard.RejectionError) error {
	code := http.StatusBadRequest
	if rej.Reason == wizard.ReasonTooLarge {
		code = http.StatusRequestEntityTooLarge
	}
	return &apperror.AppError{
		Code:    code,
		Message: rej.Message,
		Fields:  map[string]string{"resume": rej.Message},
		Err:     rej,
	}
}

func (u *onboardingUsecase) RemoveResume(ctx context.Context, id domain.Identity) (*domain.DraftView, error) {
	session, _, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Draft.Resume = nil
	if err := u.save(ctx, session); err != nil {
		return nil, err
	}
	return u.view(session), nil
}

// ============================================================================
// Navigation
// ============================================================================

func (u *onboardingUsecase) Next(ctx context.Context, id domain.Identity) (*domain.StepResult, error) {
	return u.move(ctx, id, wizard.EventNext)
}

func (u *onboardingUsecase) Previous(ctx context.Context, id domain.Identity) (*domain.StepResult, error) {
	return u.move(ctx, id, wizard.EventPrevious)
}

func (u *onboardingUsecase) move(ctx context.Context, id domain.Identity, event wizard.Event) (*domain.StepResult, error) {
	session, _, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}

	step, outcome := wizard.Transition(session.Step, event, wizard.StepGuard(u.schema, &session.Draft))
	if outcome.Moved {
		session.Step = step
		if err := u.save(ctx, session); err != nil {
			return nil, err
		}
	}
	return &domain.StepResult{
		Draft:  u.view(session),
		Moved:  outcome.Moved,
		Errors: outcome.Errors,
	}, nil
}

// ============================================================================
// Submission
// ============================================================================

// Submit validates every step, stores the resume, upserts the profile and
// flips the onboarding flag. The draft is kept on any failure so the user
// can retry.
func (u *onboardingUsecase) Submit(ctx context.Context, id domain.Identity) (profile *domain.UserProfile, err error) {
	ctx, span := telemetry.Start(ctx, "onboarding.submit", telemetry.String("user.id", id.UserID))
	defer func() { telemetry.End(span, err) }()

	session, existed, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !existed {
		return nil, apperror.NotFound("No onboarding in progress")
	}
	if !session.Step.IsTerminal() {
		return nil, apperror.Conflict("Finish the remaining steps before submitting")
	}
	if errs := wizard.ValidateAll(u.schema, &session.Draft); errs != nil {
		return nil, apperror.Unprocessable("Please fix the highlighted fields.", errs)
	}

	ref, err := u.resumes.Save(ctx, id.UserID, session.Draft.Resume)
	if err != nil {
		logger.Log.Error("Resume storage failed", "user_id", id.UserID, "error", err)
		return nil, apperror.New(http.StatusInternalServerError, "We couldn't save your profile. Please try again.", err)
	}
	ref.URL = ResumeDownloadPath

	prefs := session.Draft.JobPreferences
	for _, field := range domain.TagFields {
		prefs.SetTags(field, normalizeSet(prefs.Tags(field)))
	}

	profile = &domain.UserProfile{
		UserID:              id.UserID,
		AccountEmail:        id.Email,
		PersonalInfo:        session.Draft.Personal,
		JobPreferences:      prefs,
		OnboardingCompleted: true,
		Resume:              ref,
	}
	if err := u.profiles.Upsert(ctx, profile); err != nil {
		logger.Log.Error("Profile upsert failed", "user_id", id.UserID, "error", err)
		return nil, apperror.New(http.StatusInternalServerError, "We couldn't save your profile. Please try again.", err)
	}

	// The upsert already wrote the flag; this refreshes the cached copy.
	if err := u.gate.SetOnboardingFlag(ctx, id, true); err != nil {
		logger.Log.Warn("Onboarding flag refresh failed", "user_id", id.UserID, "error", err)
	}
	if err := u.drafts.Delete(ctx, id.UserID); err != nil {
		logger.Log.Warn("Draft cleanup failed", "user_id", id.UserID, "error", err)
	}

	logger.Log.Info("Onboarding completed", "user_id", id.UserID)

	if u.notifier != nil {
		go func(ctx context.Context, p domain.UserProfile) {
			ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
			defer cancel()
			if err := u.notifier.OnboardingCompleted(ctx, &p); err != nil {
				logger.Log.Warn("Onboarding notification failed", "user_id", p.UserID, "error", err)
			}
		}(context.WithoutCancel(ctx), *profile)
	}

	return profile, nil
}

// normalizeSet drops blanks and case-insensitive duplicates, then sorts.
func normalizeSet(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out
}

// ============================================================================
// Status
// ============================================================================

func (u *onboardingUsecase) Status(ctx context.Context, id domain.Identity) (*domain.OnboardingStatus, error) {
	completed, err := u.gate.GetOnboardingFlag(ctx, id)
	if err != nil {
		logger.Log.Warn("Onboarding flag lookup failed", "user_id", id.UserID, "error", err)
		completed = false
	}

	status := &domain.OnboardingStatus{Completed: completed}
	session, err := u.drafts.Get(ctx, id.UserID)
	switch {
	case err == nil:
		status.HasDraft = true
		status.Step = session.Step
	case !errors.Is(err, domain.ErrDraftNotFound):
		logger.Log.Warn("Draft lookup failed", "user_id", id.UserID, "error", err)
	}
	return status, nil
}

func (u *onboardingUsecase) Vocabulary() *domain.Vocabulary {
	return &domain.Vocabulary{
		ExperienceLevels: domain.ExperienceLevels,
		JobTypes:         domain.JobTypes,
		WorkModes:        domain.WorkModes,
		Skills:           domain.SkillTaxonomy(),
		AllowCustomSkill: u.custom,
		ResumeTips:       domain.ResumeTips,
		Upload:           u.upload.Rules(),
	}
}

package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"applybrain-backend/internal/domain"
	"applybrain-backend/internal/usecase"
	"applybrain-backend/internal/wizard"
	"applybrain-backend/pkg/apperror"
	"applybrain-backend/pkg/auth"
	"applybrain-backend/pkg/security"
	"applybrain-backend/pkg/security/antivirus"
	"applybrain-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock Repositories
type MockDraftStore struct {
	mock.Mock
}

func (m *MockDraftStore) Get(ctx context.Context, userID string) (*domain.WizardSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WizardSession), args.Error(1)
}
func (m *MockDraftStore) Save(ctx context.Context, s *domain.WizardSession) error {
	return m.Called(ctx, s).Error(0)
}
func (m *MockDraftStore) Delete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) Upsert(ctx context.Context, p *domain.UserProfile) error {
	return m.Called(ctx, p).Error(0)
}
func (m *MockProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserProfile), args.Error(1)
}

type MockResumeStore struct {
	mock.Mock
}

func (m *MockResumeStore) Save(ctx context.Context, userID string, f *domain.ResumeFile) (*domain.ResumeRef, error) {
	args := m.Called(ctx, userID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResumeRef), args.Error(1)
}
func (m *MockResumeStore) Open(ctx context.Context, ref *domain.ResumeRef) (*domain.ResumeFile, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResumeFile), args.Error(1)
}

type MockGate struct {
	mock.Mock
}

func (m *MockGate) CheckSession(ctx context.Context, token string) (*domain.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}
func (m *MockGate) GetOnboardingFlag(ctx context.Context, id domain.Identity) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockGate) SetOnboardingFlag(ctx context.Context, id domain.Identity, completed bool) error {
	return m.Called(ctx, id, completed).Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetOnboardingFlag(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockUserRepo) SetOnboardingFlag(ctx context.Context, id string, completed bool) error {
	return m.Called(ctx, id, completed).Error(0)
}

type MockFlagCache struct {
	mock.Mock
}

func (m *MockFlagCache) Get(ctx context.Context, userID string) (bool, bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Bool(1), args.Error(2)
}
func (m *MockFlagCache) Set(ctx context.Context, userID string, completed bool) error {
	return m.Called(ctx, userID, completed).Error(0)
}
func (m *MockFlagCache) Invalidate(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) SignIn(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthSession), args.Error(1)
}
func (m *MockProvider) SignUp(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthSession), args.Error(1)
}

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(token string) (*auth.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

var testID = domain.Identity{UserID: "user-123", Email: "priya@example.com"}

func completeDraft() domain.ProfileDraft {
	return domain.ProfileDraft{
		Personal: domain.PersonalInfo{
			FirstName:     "Priya",
			LastName:      "Sharma",
			Email:         "priya@example.com",
			Phone:         "+14155552671",
			Address:       "12 MG Road, Bengaluru",
			Degree:        "B.Tech",
			Course:        "Computer Science",
			University:    "IIT Madras",
			GraduatedYear: "2021",
		},
		JobPreferences: domain.JobPreferences{
			Role:              "Backend Engineer",
			Locations:         []string{"Pune", "bengaluru", "Bengaluru"},
			CurrentLPA:        "12",
			YearsOfExperience: "3",
			ExperienceLevel:   []string{"Associate"},
			JobType:           []string{"Full-time"},
			WorkMode:          []string{"Remote"},
			Skills:            []string{"Go", "SQL"},
		},
		Resume: &domain.ResumeFile{Name: "cv.pdf", Size: 200 * 1024, ContentType: "application/pdf", Content: []byte("%PDF-1.4")},
	}
}

func newOnboarding(drafts *MockDraftStore, profiles *MockProfileRepo, resumes *MockResumeStore, gate *MockGate) domain.OnboardingUsecase {
	return usecase.NewOnboardingUsecase(drafts, profiles, resumes, gate, nil, usecase.OnboardingConfig{
		Schema:            validation.DefaultSchema(validation.ModeOnSubmit),
		Upload:            wizard.UploadGate{MinBytes: 16, MaxBytes: 1024, Extensions: security.GetAllowedExtensions()},
		AllowCustomSkills: true,
	})
}

func assertAppError(t *testing.T, err error, code int) *apperror.AppError {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

// ============================================================================
// Step Controller
// ============================================================================

func TestOnboarding_StartCreatesDraft(t *testing.T) {
	drafts := new(MockDraftStore)
	uc := newOnboarding(drafts, nil, nil, nil)

	drafts.On("Get", mock.Anything, testID.UserID).Return(nil, domain.ErrDraftNotFound)
	drafts.On("Save", mock.Anything, mock.MatchedBy(func(s *domain.WizardSession) bool {
		return s.UserID == testID.UserID && s.Step == domain.StepPersonal
	})).Return(nil)

	view, err := uc.Start(context.Background(), testID)
	require.NoError(t, err)
	assert.Equal(t, domain.StepPersonal, view.Step)
	assert.Equal(t, []domain.Action{domain.ActionNext}, view.Actions)
	drafts.AssertExpectations(t)
}

func TestOnboarding_NextBlockedByInvalidFields(t *testing.T) {
	drafts := new(MockDraftStore)
	uc := newOnboarding(drafts, nil, nil, nil)

	draft := completeDraft()
	draft.Personal.FirstName = ""
	drafts.On("Get", mock.Anything, testID.UserID).Return(&domain.WizardSession{UserID: testID.UserID, Step: domain.StepPersonal, Draft: draft}, nil)

	res, err := uc.Next(context.Background(), testID)
	require.NoError(t, err)
	assert.False(t, res.Moved)
	assert.Equal(t, domain.StepPersonal, res.Draft.Step)
	assert.Equal(t, "First name is required.", res.Errors["first_name"])
	drafts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOnboarding_NextAdvancesAndShowsTips(t *testing.T) {
	drafts := new(MockDraftStore)
	uc := newOnboarding(drafts, nil, nil, nil)

	drafts.On("Get", mock.Anything, testID.UserID).Return(&domain.WizardSession{UserID: testID.UserID, Step: domain.StepPersonal, Draft: completeDraft()}, nil)
	drafts.On("Save", mock.Anything, mock.Anything).Return(nil)

	res, err := uc.Next(context.Background(), testID)
	require.NoError(t, err)
	assert.True(t, res.Moved)
	assert.Equal(t, domain.StepResume, res.Draft.Step)
	assert.NotEmpty(t, res.Draft.ResumeTips)
}

func TestOnboarding_ResumeStepRequiresFile(t *testing.T) {
	drafts := new(MockDraftStore)
	uc := newOnboarding(drafts, nil, nil, nil)

	draft := completeDraft()
	draft.Resume = nil
	drafts.On("Get", mock.Anything, testID.UserID).Return(&domain.WizardSession{UserID: testID.UserID, Step: domain.StepResume, Draft: draft}, nil)

	res, err := uc.Next(context.Background(), testID)
	require.NoError(t, err)
	assert.False(t, res.Moved)
	assert.Contains(t, res.Errors, "resume")
}

func TestOnboarding_PreviousOnFirstStepIsNoop(t *testing.T) {
	drafts := new(MockDraftStore)
	uc := newOnboarding(drafts, nil, nil, nil)

	drafts.On("Get", mock.Anything, testID.UserID).Return(&domain.WizardSession{UserID: testID.UserID, Step: domain.StepPersonal}, nil)

	res, err := uc.Previous(context.Background(), testID)
	require.NoError(t, err)
	assert.False(t, res.Moved)
	assert.Empty(t, res.Errors)
	drafts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

// ============================================================================
// Tags and resume
// ============================================================================

func TestOnboarding_ToggleTwiceRestoresSelection(t *testing.T) {
	drafts := new(MockDraftStore)
	uc := newOnboarding(drafts, nil, nil, nil)

	session := &domain.WizardSession{UserID: testID.UserID, Step: domain.StepJobPreferences}
	drafts.On("Get", mock.Anything, testID.UserID).Return(session, nil)
	drafts.On("Save", mock.Anything, session).Return(nil)

	sel, err := uc.ToggleTag(context.Background(), testID, domain.TagWorkMode, "remote")
	require.NoError(t, err)
	assert.Equal(t, []string{"Remote"}, sel.Selected)

	sel, err = uc.ToggleTag(context.Background(), testID, domain.TagWorkMode, "Remote")
	require.NoError(t, err)
	assert.Empty(t, sel.Selected)
}

func TestOnboarding_FixedVocabularyRejectsFreeText(t *testing.T) {
	drafts := new(MockDraftStore)
	uc := newOnboarding(drafts, nil, nil, nil)

	drafts.On("Get", mock.Anything, testID.UserID).Return(&domain.WizardSession{UserID: testID.UserID}, nil)

	_, err := uc.AddTag(context.Background(), testID, domain.TagJobType, "Underwater welding")
	appErr := assertAppError(t, err, http.StatusUnprocessableEntity)
	assert.Contains(t, appErr.Fields, "job_type")

	_, err = uc.AddTag(context.Background(), testID, domain.TagField("hobbies"), "chess")
	assertAppError(t, err, http.StatusBadRequest)
}

func TestOnboarding_AttachResume(t *testing.T) {
	pdf := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("a"), 64)...)

	t.Run("accepted file is stored on the draft", func(t *testing.T) {
		drafts := new(MockDraftStore)
		uc := newOnboarding(drafts, nil, nil, nil)
		drafts.On("Get", mock.Anything, testID.UserID).Return(&domain.WizardSession{UserID: testID.UserID, Step: domain.StepResume}, nil)
		drafts.On("Save", mock.Anything, mock.Anything).Return(nil)

		view, err := uc.AttachResume(context.Background(), testID, "../cv.pdf", pdf)
		require.NoError(t, err)
		require.NotNil(t, view.Resume)
		assert.Equal(t, "cv.pdf", view.Resume.Name)
	})

	cases := []struct {
		name string
		file string
		data []byte
		code int
	}{
		{"too small", "cv.pdf", []byte("%PDF"), http.StatusBadRequest},
		{"too large", "cv.pdf", bytes.Repeat([]byte("a"), 2048), http.StatusRequestEntityTooLarge},
		{"unsupported extension", "cv.png", pdf, http.StatusBadRequest},
		{"content mismatch", "cv.docx", pdf, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			drafts := new(MockDraftStore)
			uc := newOnboarding(drafts, nil, nil, nil)

			_, err := uc.AttachResume(context.Background(), testID, tc.file, tc.data)
			appErr := assertAppError(t, err, tc.code)
			assert.NotEmpty(t, appErr.Fields["resume"])
			drafts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

type stubScanner struct {
	verdict antivirus.Verdict
	err     error
}

func (s stubScanner) Scan(ctx context.Context, filename string, data []byte) (antivirus.Verdict, error) {
	return s.verdict, s.err
}

func (s stubScanner) Name() string { return "stub" }

func TestOnboarding_AttachResumeScanned(t *testing.T) {
	pdf := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("a"), 64)...)
	withScanner := func(drafts *MockDraftStore, sc antivirus.Scanner) domain.OnboardingUsecase {
		return usecase.NewOnboardingUsecase(drafts, nil, nil, nil, nil, usecase.OnboardingConfig{
			Upload:  wizard.UploadGate{MinBytes: 16, MaxBytes: 1024, Extensions: security.GetAllowedExtensions()},
			Scanner: sc,
		})
	}

	t.Run("infected file is rejected", func(t *testing.T) {
		drafts := new(MockDraftStore)
		uc := withScanner(drafts, stubScanner{verdict: antivirus.Verdict{Infected: true, ThreatName: "Eicar"}})

		_, err := uc.AttachResume(context.Background(), testID, "cv.pdf", pdf)
		appErr := assertAppError(t, err, http.StatusBadRequest)
		var rej *wizard.RejectionError
		require.True(t, errors.As(appErr, &rej))
		assert.Equal(t, wizard.ReasonInfected, rej.Reason)
		drafts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("scanner outage fails closed", func(t *testing.T) {
		drafts := new(MockDraftStore)
		uc := withScanner(drafts, stubScanner{err: errors.New("connection refused")})

		_, err := uc.AttachResume(context.Background(), testID, "cv.pdf", pdf)
		assertAppError(t, err, http.StatusServiceUnavailable)
		drafts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("clean file is attached", func(t *testing.T) {
		drafts := new(MockDraftStore)
		uc := withScanner(drafts, stubScanner{})
		drafts.On("Get", mock.Anything, testID.UserID).Return(&domain.WizardSession{UserID: testID.UserID, Step: domain.StepResume}, nil)
		drafts.On("Save", mock.Anything, mock.Anything).Return(nil)

		view, err := uc.AttachResume(context.Background(), testID, "cv.pdf", pdf)
		require.NoError(t, err)
		assert.NotNil(t, view.Resume)
	})
}

// ============================================================================
// Submission
// ============================================================================

func TestOnboarding_SubmitSuccess(t *testing.T) {
	drafts := new(MockDraftStore)
	profiles := new(MockProfileRepo)
	resumes := new(MockResumeStore)
	gate := new(MockGate)
	uc := newOnboarding(drafts, profiles, resumes, gate)

	draft := completeDraft()
	draft.Personal.Email = "priya.work@example.com"
	drafts.On("Get", mock.Anything, testID.UserID).Return(&domain.WizardSession{UserID: testID.UserID, Step: domain.StepJobPreferences, Draft: draft}, nil)
	resumes.On("Save", mock.Anything, testID.UserID, mock.Anything).Return(&domain.ResumeRef{Key: "resumes/user-123/abc.pdf", Name: "cv.pdf"}, nil)
	profiles.On("Upsert", mock.Anything, mock.MatchedBy(func(p *domain.UserProfile) bool {
		return p.UserID == testID.UserID && p.OnboardingCompleted && p.Resume != nil &&
			p.AccountEmail == testID.Email && p.Email == "priya.work@example.com"
	})).Return(nil)
	gate.On("SetOnboardingFlag", mock.Anything, testID, true).Return(nil)
	drafts.On("Delete", mock.Anything, testID.UserID).Return(nil)

	profile, err := uc.Submit(context.Background(), testID)
	require.NoError(t, err)
	assert.Equal(t, usecase.ResumeDownloadPath, profile.Resume.URL)
	assert.Equal(t, []string{"bengaluru", "Pune"}, profile.Locations)

	profiles.AssertExpectations(t)
	gate.AssertExpectations(t)
	drafts.AssertExpectations(t)
}

func TestOnboarding_SubmitRejectsInvalidDraft(t *testing.T) {
	drafts := new(MockDraftStore)
	profiles := new(MockProfileRepo)
	uc := newOnboarding(drafts, profiles, nil, nil)

	draft := completeDraft()
	draft.JobPreferences.Skills = nil
	drafts.On("Get", mock.Anything, testID.UserID).Return(&domain.WizardSession{UserID: testID.UserID, Step: domain.StepJobPreferences, Draft: draft}, nil)

	_, err := uc.Submit(context.Background(), testID)
	appErr := assertAppError(t, err, http.StatusUnprocessableEntity)
	assert.Equal(t, "Specify at least one skill.", appErr.Fields["skills"])
	profiles.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestOnboarding_SubmitBeforeLastStep(t *testing.T) {
	drafts := new(MockDraftStore)
	uc := newOnboarding(drafts, nil, nil, nil)

	drafts.On("Get", mock.Anything, testID.UserID).Return(&domain.WizardSession{UserID: testID.UserID, Step: domain.StepSkills, Draft: completeDraft()}, nil)

	_, err := uc.Submit(context.Background(), testID)
	assertAppError(t, err, http.StatusConflict)
}

func TestOnboarding_SubmitKeepsDraftWhenUpsertFails(t *testing.T) {
	drafts := new(MockDraftStore)
	profiles := new(MockProfileRepo)
	resumes := new(MockResumeStore)
	gate := new(MockGate)
	uc := newOnboarding(drafts, profiles, resumes, gate)

	drafts.On("Get", mock.Anything, testID.UserID).Return(&domain.WizardSession{UserID: testID.UserID, Step: domain.StepJobPreferences, Draft: completeDraft()}, nil)
	resumes.On("Save", mock.Anything, testID.UserID, mock.Anything).Return(&domain.ResumeRef{Key: "k"}, nil)
	profiles.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	_, err := uc.Submit(context.Background(), testID)
	appErr := assertAppError(t, err, http.StatusInternalServerError)
	assert.Equal(t, "We couldn't save your profile. Please try again.", appErr.Message)
	drafts.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	gate.AssertNotCalled(t, "SetOnboardingFlag", mock.Anything, mock.Anything, mock.Anything)
}

func TestOnboarding_StatusTreatsFlagErrorAsIncomplete(t *testing.T) {
	drafts := new(MockDraftStore)
	gate := new(MockGate)
	uc := newOnboarding(drafts, nil, nil, gate)

	gate.On("GetOnboardingFlag", mock.Anything, testID).Return(true, errors.New("db down"))
	drafts.On("Get", mock.Anything, testID.UserID).Return(&domain.WizardSession{Step: domain.StepSkills}, nil)

	status, err := uc.Status(context.Background(), testID)
	require.NoError(t, err)
	assert.False(t, status.Completed)
	assert.True(t, status.HasDraft)
	assert.Equal(t, domain.StepSkills, status.Step)
}

// ============================================================================
// Session gate
// ============================================================================

func TestSessionGate_CheckSessionFailsClosed(t *testing.T) {
	verifier := new(MockVerifier)
	gate := usecase.NewSessionGate(verifier, nil, nil)

	_, err := gate.CheckSession(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrNoSession)

	verifier.On("Verify", "expired").Return(nil, errors.New("token is expired"))
	_, err = gate.CheckSession(context.Background(), "expired")
	assert.ErrorIs(t, err, domain.ErrNoSession)

	verifier.On("Verify", "good").Return(&auth.Claims{Subject: testID.UserID, Email: testID.Email, ExpiresAt: time.Now().Add(time.Hour)}, nil)
	id, err := gate.CheckSession(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, testID, *id)
}

func TestSessionGate_FlagReadsThroughCache(t *testing.T) {
	users := new(MockUserRepo)
	cache := new(MockFlagCache)
	gate := usecase.NewSessionGate(nil, users, cache)

	cache.On("Get", mock.Anything, testID.UserID).Return(false, false, nil).Once()
	users.On("GetOnboardingFlag", mock.Anything, testID.UserID).Return(true, nil).Once()
	cache.On("Set", mock.Anything, testID.UserID, true).Return(nil).Once()

	completed, err := gate.GetOnboardingFlag(context.Background(), testID)
	require.NoError(t, err)
	assert.True(t, completed)

	cache.On("Get", mock.Anything, testID.UserID).Return(true, true, nil).Once()
	completed, err = gate.GetOnboardingFlag(context.Background(), testID)
	require.NoError(t, err)
	assert.True(t, completed)

	users.AssertNumberOfCalls(t, "GetOnboardingFlag", 1)
	cache.AssertExpectations(t)
}

func TestSessionGate_CacheFailureFallsBackToDatabase(t *testing.T) {
	users := new(MockUserRepo)
	cache := new(MockFlagCache)
	gate := usecase.NewSessionGate(nil, users, cache)

	cache.On("Get", mock.Anything, testID.UserID).Return(false, false, errors.New("redis down"))
	users.On("GetOnboardingFlag", mock.Anything, testID.UserID).Return(false, nil)
	cache.On("Set", mock.Anything, testID.UserID, false).Return(errors.New("redis down"))
	cache.On("Invalidate", mock.Anything, testID.UserID).Return(nil).Maybe()

	completed, err := gate.GetOnboardingFlag(context.Background(), testID)
	require.NoError(t, err)
	assert.False(t, completed)
}

// ============================================================================
// Auth
// ============================================================================

func TestAuth_LoginReportsOnboardingFlag(t *testing.T) {
	provider := new(MockProvider)
	users := new(MockUserRepo)
	gate := new(MockGate)
	uc := usecase.NewAuthUsecase(provider, users, gate)

	session := &domain.AuthSession{AccessToken: "tok", User: testID}
	provider.On("SignIn", mock.Anything, testID.Email, "secret123").Return(session, nil)
	users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
	gate.On("GetOnboardingFlag", mock.Anything, testID).Return(true, nil)

	got, completed, err := uc.Login(context.Background(), testID.Email, "secret123")
	require.NoError(t, err)
	assert.Equal(t, "tok", got.AccessToken)
	assert.True(t, completed)
}

func TestAuth_LoginMapsProviderErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{auth.ErrEmailNotConfirmed, http.StatusUnauthorized},
		{&auth.ProviderError{Status: http.StatusUnprocessableEntity, Message: "weak password"}, http.StatusBadRequest},
		{errors.New("dial tcp: timeout"), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		provider := new(MockProvider)
		uc := usecase.NewAuthUsecase(provider, nil, nil)
		provider.On("SignIn", mock.Anything, mock.Anything, mock.Anything).Return(nil, tc.err)

		_, _, err := uc.Login(context.Background(), "a@b.co", "pw")
		assertAppError(t, err, tc.code)
	}
}

func TestAuth_SignupWithoutSessionSkipsUserRow(t *testing.T) {
	provider := new(MockProvider)
	users := new(MockUserRepo)
	uc := usecase.NewAuthUsecase(provider, users, nil)

	provider.On("SignUp", mock.Anything, testID.Email, "secret123").Return(&domain.AuthSession{User: testID}, nil)

	session, err := uc.Signup(context.Background(), testID.Email, "secret123")
	require.NoError(t, err)
	assert.Empty(t, session.AccessToken)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProfile_OpenResumeWithoutFile(t *testing.T) {
	profiles := new(MockProfileRepo)
	uc := usecase.NewProfileUsecase(profiles, nil)

	profiles.On("GetByUserID", mock.Anything, testID.UserID).Return(&domain.UserProfile{UserID: testID.UserID}, nil)

	_, err := uc.OpenResume(context.Background(), testID)
	assertAppError(t, err, http.StatusNotFound)
}

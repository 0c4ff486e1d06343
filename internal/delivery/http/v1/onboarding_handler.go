package v1

import (
	"errors"
	"io"
	"net/http"

	"applybrain-backend/internal/delivery/http/middleware"
	"applybrain-backend/internal/delivery/http/response"
	"applybrain-backend/internal/domain"
	"applybrain-backend/internal/wizard"
	"applybrain-backend/pkg/apperror"
	"applybrain-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

// Multipart framing allowance on top of the largest accepted file.
const multipartOverhead = 1 << 20

type OnboardingHandler struct {
	onboardingUC domain.OnboardingUsecase
	guard        *middleware.SessionGuard
	secLog       *security.SecurityLogger
	maxUpload    int64
}

func NewOnboardingHandler(r *gin.RouterGroup, onboardingUC domain.OnboardingUsecase, guard *middleware.SessionGuard, secLog *security.SecurityLogger, uploadLimit gin.HandlerFunc) {
	handler := &OnboardingHandler{
		onboardingUC: onboardingUC,
		guard:        guard,
		secLog:       secLog,
		maxUpload:    onboardingUC.Vocabulary().Upload.MaxBytes,
	}

	onboarding := r.Group("/onboarding")
	{
		onboarding.GET("/status", handler.GetStatus)
		onboarding.GET("/vocabulary", handler.GetVocabulary)

		onboarding.POST("/draft", handler.Start)
		onboarding.GET("/draft", handler.GetDraft)
		onboarding.PATCH("/draft/:section", handler.UpdateSection)
		onboarding.POST("/draft/resume", uploadLimit, handler.UploadResume)
		onboarding.DELETE("/draft/resume", handler.RemoveResume)

		onboarding.GET("/tags/:field", handler.FilterTags)
		onboarding.POST("/tags/:field/:op", handler.EditTag)

		onboarding.POST("/next", handler.Next)
		onboarding.POST("/previous", handler.Previous)
		onboarding.POST("/submit", handler.Submit)
	}
}

type TagRequest struct {
	Value string `json:"value" binding:"required"`
}

type SubmitResponse struct {
	Profile  *domain.UserProfile `json:"profile"`
	Redirect string              `json:"redirect"`
}

// GetStatus godoc
// @Summary      Get onboarding status
// @Description  Reports whether the user finished onboarding and where an unfinished wizard stands.
// @Tags         onboarding
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.OnboardingStatus}
// @Failure      401  {object}  response.Response
// @Router       /onboarding/status [get]
// @Security     BearerAuth
func (h *OnboardingHandler) GetStatus(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	status, err := h.onboardingUC.Status(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	h.guard.SetOnboardingCookie(c, status.Completed)
	response.Success(c, http.StatusOK, "Onboarding status retrieved", status)
}

// GetVocabulary godoc
// @Summary      Wizard vocabularies
// @Description  Fixed pick lists, the skill taxonomy, resume tips and upload limits.
// @Tags         onboarding
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.Vocabulary}
// @Router       /onboarding/vocabulary [get]
// @Security     BearerAuth
func (h *OnboardingHandler) GetVocabulary(c *gin.Context) {
	response.Success(c, http.StatusOK, "Vocabulary retrieved", h.onboardingUC.Vocabulary())
}

// Start godoc
// @Summary      Start the wizard
// @Description  Returns the draft in progress, creating an empty one on the first step if none exists.
// @Tags         onboarding
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.DraftView}
// @Failure      401  {object}  response.Response
// @Router       /onboarding/draft [post]
// @Security     BearerAuth
func (h *OnboardingHandler) Start(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	view, err := h.onboardingUC.Start(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Onboarding started", view)
}

// GetDraft godoc
// @Summary      Current draft
// @Description  Draft values, the active step and the actions available from it.
// @Tags         onboarding
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.DraftView}
// @Failure      401  {object}  response.Response
// @Router       /onboarding/draft [get]
// @Security     BearerAuth
func (h *OnboardingHandler) GetDraft(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	view, err := h.onboardingUC.GetDraft(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Draft retrieved", view)
}

// UpdateSection godoc
// @Summary      Update draft fields
// @Description  Sets the given fields of the personal or job_preferences section. Omitted fields are left alone. With live checks enabled the response carries errors for the edited fields.
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        section  path      string                      true  "personal | job_preferences"
// @Param        request  body      domain.PersonalPatch        false "Personal fields"
// @Success      200      {object}  response.Response{data=domain.PatchResult}
// @Failure      400      {object}  response.Response
// @Router       /onboarding/draft/{section} [patch]
// @Security     BearerAuth
func (h *OnboardingHandler) UpdateSection(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)

	var (
		res *domain.PatchResult
		err error
	)
	switch domain.Step(c.Param("section")) {
	case domain.StepPersonal:
		var patch domain.PersonalPatch
		if !bindJSON(c, &patch) {
			return
		}
		res, err = h.onboardingUC.UpdatePersonal(c.Request.Context(), id, patch)
	case domain.StepJobPreferences:
		var patch domain.JobPreferencesPatch
		if !bindJSON(c, &patch) {
			return
		}
		res, err = h.onboardingUC.UpdateJobPreferences(c.Request.Context(), id, patch)
	default:
		c.Error(apperror.BadRequest("Unknown section: " + c.Param("section")))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Draft updated", res)
}

// UploadResume godoc
// @Summary      Attach resume
// @Description  Multipart upload (field "resume"). Rejected files leave the draft untouched.
// @Tags         onboarding
// @Accept       multipart/form-data
// @Produce      json
// @Param        resume  formData  file  true  "PDF, DOC or DOCX"
// @Success      200     {object}  response.Response{data=domain.DraftView}
// @Failure      400     {object}  response.Response
// @Failure      413     {object}  response.Response
// @Router       /onboarding/draft/resume [post]
// @Security     BearerAuth
func (h *OnboardingHandler) UploadResume(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)

	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+multipartOverhead)
	}
	fh, err := c.FormFile("resume")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logRejected(c, id, "", wizard.ReasonTooLarge, tooLarge.Limit)
			c.Error(apperror.TooLarge("File is too large."))
			return
		}
		c.Error(apperror.BadRequest("Attach your resume in the \"resume\" field."))
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	defer f.Close()

	// One byte past the ceiling is enough to reject as too large.
	var r io.Reader = f
	if h.maxUpload > 0 {
		r = io.LimitReader(f, h.maxUpload+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	view, err := h.onboardingUC.AttachResume(c.Request.Context(), id, fh.Filename, data)
	if err != nil {
		var rej *wizard.RejectionError
		if errors.As(err, &rej) {
			h.logRejected(c, id, fh.Filename, rej.Reason, fh.Size)
		}
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Resume attached", view)
}

func (h *OnboardingHandler) logRejected(c *gin.Context, id domain.Identity, filename, reason string, size int64) {
	if h.secLog == nil {
		return
	}
	if reason == wizard.ReasonInfected {
		h.secLog.LogUploadInfected(c.Request.Context(), id.UserID, filename, response.RequestID(c))
		return
	}
	h.secLog.LogUploadRejected(c.Request.Context(), id.UserID, filename, response.RequestID(c), reason, size)
}

// RemoveResume godoc
// @Summary      Detach resume
// @Tags         onboarding
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.DraftView}
// @Router       /onboarding/draft/resume [delete]
// @Security     BearerAuth
func (h *OnboardingHandler) RemoveResume(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	view, err := h.onboardingUC.RemoveResume(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Resume removed", view)
}

// FilterTags godoc
// @Summary      Filter a pick list
// @Description  Case-insensitive substring match over the field's vocabulary. When nothing matches and the field accepts free text, add_suggestion echoes the query.
// @Tags         onboarding
// @Produce      json
// @Param        field  path      string  true   "locations | skills | experience_level | job_type | work_mode"
// @Param        q      query     string  false  "Typed text"
// @Success      200    {object}  response.Response{data=domain.TagFilterResult}
// @Failure      400    {object}  response.Response
// @Router       /onboarding/tags/{field} [get]
// @Security     BearerAuth
func (h *OnboardingHandler) FilterTags(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	res, err := h.onboardingUC.FilterTags(c.Request.Context(), id, domain.TagField(c.Param("field")), c.Query("q"))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Options retrieved", res)
}

// EditTag godoc
// @Summary      Change a selection
// @Description  toggle selects or deselects a vocabulary item, add selects free text where allowed, remove deselects.
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Param        field    path      string      true  "Tag field"
// @Param        op       path      string      true  "toggle | add | remove"
// @Param        request  body      TagRequest  true  "Value"
// @Success      200      {object}  response.Response{data=domain.TagSelection}
// @Failure      400      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /onboarding/tags/{field}/{op} [post]
// @Security     BearerAuth
func (h *OnboardingHandler) EditTag(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	field := domain.TagField(c.Param("field"))

	var req TagRequest
	if !bindJSON(c, &req) {
		return
	}

	var (
		sel *domain.TagSelection
		err error
	)
	ctx := c.Request.Context()
	switch c.Param("op") {
	case "toggle":
		sel, err = h.onboardingUC.ToggleTag(ctx, id, field, req.Value)
	case "add":
		sel, err = h.onboardingUC.AddTag(ctx, id, field, req.Value)
	case "remove":
		sel, err = h.onboardingUC.RemoveTag(ctx, id, field, req.Value)
	default:
		c.Error(apperror.NotFound("Unknown tag operation"))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Selection updated", sel)
}

// Next godoc
// @Summary      Advance a step
// @Description  Moves to the next step when the current one validates. A blocked advance returns 422 with the field errors and the unchanged draft.
// @Tags         onboarding
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.StepResult}
// @Failure      422  {object}  response.Response{data=domain.DraftView}
// @Router       /onboarding/next [post]
// @Security     BearerAuth
func (h *OnboardingHandler) Next(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	res, err := h.onboardingUC.Next(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	if !res.Moved && len(res.Errors) > 0 {
		response.Invalid(c, http.StatusUnprocessableEntity, "Please fix the highlighted fields.", res.Errors, res.Draft)
		return
	}
	response.Success(c, http.StatusOK, "Step completed", res)
}

// Previous godoc
// @Summary      Go back a step
// @Description  Always allowed; a no-op on the first step.
// @Tags         onboarding
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.StepResult}
// @Router       /onboarding/previous [post]
// @Security     BearerAuth
func (h *OnboardingHandler) Previous(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	res, err := h.onboardingUC.Previous(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Moved back", res)
}

// Submit godoc
// @Summary      Finish onboarding
// @Description  Validates every step, saves the profile and resume, sets the onboarding flag and discards the draft. On failure the draft is kept for a retry.
// @Tags         onboarding
// @Produce      json
// @Success      200  {object}  response.Response{data=SubmitResponse}
// @Failure      409  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /onboarding/submit [post]
// @Security     BearerAuth
func (h *OnboardingHandler) Submit(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	profile, err := h.onboardingUC.Submit(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	if h.secLog != nil {
		h.secLog.LogOnboardingCompleted(c.Request.Context(), id.UserID, response.RequestID(c))
	}
	h.guard.SetOnboardingCookie(c, true)
	response.Success(c, http.StatusOK, "Onboarding completed successfully", SubmitResponse{Profile: profile, Redirect: domain.PathHome})
}

package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"applybrain-backend/internal/delivery/http/middleware"
	"applybrain-backend/internal/delivery/http/response"
	"applybrain-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileUC domain.ProfileUsecase
}

func NewProfileHandler(r *gin.RouterGroup, profileUC domain.ProfileUsecase) {
	handler := &ProfileHandler{profileUC: profileUC}

	profile := r.Group("/profile")
	{
		profile.GET("", handler.GetProfile)
		profile.GET("/resume", handler.DownloadResume)
	}
}

// GetProfile godoc
// @Summary      Saved profile
// @Description  The profile written when onboarding was submitted.
// @Tags         profile
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.UserProfile}
// @Failure      404  {object}  response.Response
// @Router       /profile [get]
// @Security     BearerAuth
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	profile, err := h.profileUC.GetProfile(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Profile retrieved", profile)
}

// DownloadResume godoc
// @Summary      Download resume
// @Tags         profile
// @Produce      application/octet-stream
// @Success      200
// @Failure      404  {object}  response.Response
// @Router       /profile/resume [get]
// @Security     BearerAuth
func (h *ProfileHandler) DownloadResume(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	file, err := h.profileUC.OpenResume(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", strconv.Quote(file.Name)))
	c.Data(http.StatusOK, contentType, file.Content)
}

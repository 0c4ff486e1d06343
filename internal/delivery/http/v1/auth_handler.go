package v1

import (
	"net/http"
	"strings"

	"applybrain-backend/internal/delivery/http/middleware"
	"applybrain-backend/internal/delivery/http/response"
	"applybrain-backend/internal/domain"
	"applybrain-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC   domain.AuthUsecase
	guard    *middleware.SessionGuard
	throttle *middleware.LoginThrottle
	secLog   *security.SecurityLogger
}

func NewAuthHandler(public, protected *gin.RouterGroup, authUC domain.AuthUsecase, guard *middleware.SessionGuard, throttle *middleware.LoginThrottle, secLog *security.SecurityLogger, limit gin.HandlerFunc) {
	handler := &AuthHandler{authUC: authUC, guard: guard, throttle: throttle, secLog: secLog}

	publicAuth := public.Group("/auth")
	{
		publicAuth.POST("/login", limit, handler.Login)
		publicAuth.POST("/signup", limit, handler.Signup)
		publicAuth.POST("/logout", handler.Logout)
	}

	protected.GET("/auth/me", handler.Me)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginResponse struct {
	AccessToken         string          `json:"access_token"`
	ExpiresIn           int             `json:"expires_in"`
	User                domain.Identity `json:"user"`
	OnboardingCompleted bool            `json:"onboarding_completed"`
	Redirect            string          `json:"redirect"`
}

type SignupResponse struct {
	User                 domain.Identity `json:"user"`
	ConfirmationRequired bool            `json:"confirmation_required"`
	Redirect             string          `json:"redirect,omitempty"`
}

type MeResponse struct {
	User     *domain.User `json:"user"`
	Redirect string       `json:"redirect"`
}

func landingFor(completed bool) string {
	if completed {
		return domain.PathHome
	}
	return domain.PathOnboarding
}

// Login godoc
// @Summary      Log in
// @Description  Signs in with email and password through the auth provider, sets the auth-token and onboarding_completed cookies and tells the client where to land.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login  body      LoginRequest  true  "Credentials"
// @Success      200    {object}  response.Response{data=LoginResponse}
// @Failure      401    {object}  response.Response
// @Failure      422    {object}  response.Response
// @Failure      429    {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := h.throttle.Check(c, req.Email); err != nil {
		c.Error(err)
		return
	}
	session, completed, err := h.authUC.Login(c.Request.Context(), req.Email, req.Password)
	h.throttle.Record(c, req.Email, err)
	if err != nil {
		if h.secLog != nil {
			h.secLog.LogLoginFailed(c.Request.Context(), req.Email, c.ClientIP(), c.Request.UserAgent(), response.RequestID(c), err.Error())
		}
		c.Error(err)
		return
	}
	if h.secLog != nil {
		h.secLog.LogLoginSuccess(c.Request.Context(), req.Email, c.ClientIP(), response.RequestID(c))
	}

	h.guard.SetAuthCookie(c, session.AccessToken, session.ExpiresIn)
	h.guard.SetOnboardingCookie(c, completed)

	response.Success(c, http.StatusOK, "Login successful", LoginResponse{
		AccessToken:         session.AccessToken,
		ExpiresIn:           session.ExpiresIn,
		User:                session.User,
		OnboardingCompleted: completed,
		Redirect:            landingFor(completed),
	})
}

// Signup godoc
// @Summary      Sign up
// @Description  Creates an account with the auth provider. When the provider auto-confirms, the session cookie is set and the client goes straight to onboarding.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        signup  body      SignupRequest  true  "Credentials"
// @Success      201     {object}  response.Response{data=SignupResponse}
// @Failure      400     {object}  response.Response
// @Failure      422     {object}  response.Response
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	session, err := h.authUC.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	out := SignupResponse{User: session.User, ConfirmationRequired: session.AccessToken == ""}
	if !out.ConfirmationRequired {
		h.guard.SetAuthCookie(c, session.AccessToken, session.ExpiresIn)
		h.guard.SetOnboardingCookie(c, false)
		out.Redirect = domain.PathOnboarding
	}
	response.Success(c, http.StatusCreated, "Account created", out)
}

// Logout godoc
// @Summary      Log out
// @Description  Clears the session and onboarding cookies.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.guard.ClearCookies(c)
	response.Success(c, http.StatusOK, "Logged out", gin.H{"redirect": domain.PathLanding})
}

// Me godoc
// @Summary      Current user
// @Description  Returns the signed-in user with the onboarding flag.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=MeResponse}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	user, err := h.authUC.GetCurrentUser(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	h.guard.SetOnboardingCookie(c, user.OnboardingCompleted)
	response.Success(c, http.StatusOK, "User retrieved", MeResponse{User: user, Redirect: landingFor(user.OnboardingCompleted)})
}

// Package web serves the server-rendered page shells behind the route gate.
package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"applybrain-backend/internal/delivery/http/middleware"
	"applybrain-backend/internal/delivery/http/response"
	"applybrain-backend/internal/domain"
	"applybrain-backend/pkg/apperror"
	"applybrain-backend/pkg/logger"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

var stepTitles = map[domain.Step]string{
	domain.StepPersonal:       "Personal info",
	domain.StepResume:         "Resume",
	domain.StepSkills:         "Skills",
	domain.StepJobPreferences: "Job preferences",
}

// LoadTemplates parses the embedded page templates.
func LoadTemplates() (*template.Template, error) {
	return template.New("pages").Funcs(template.FuncMap{
		"inc":       func(i int) int { return i + 1 },
		"join":      strings.Join,
		"bytes":     func(n int64) string { return humanize.IBytes(uint64(max(n, 0))) },
		"stepTitle": func(s domain.Step) string { return stepTitles[s] },
	}).ParseFS(templateFS, "templates/*.html")
}

type pageData struct {
	Title       string
	Description string
	Path        string
	Email       string
	RequestID   string
	Routes      []domain.DashboardRoute

	// auth pages
	Signup    bool
	Error     string
	FormEmail string

	// onboarding
	Step       domain.Step
	Steps      []domain.Step
	ResumeTips []string
	Upload     domain.UploadRules
}

func newPageData(c *gin.Context, title string) pageData {
	d := pageData{
		Title:     title,
		Path:      c.Request.URL.Path,
		RequestID: response.RequestID(c),
	}
	if id, ok := middleware.IdentityFrom(c); ok {
		d.Email = id.Email
		d.Routes = domain.DashboardRoutes
	}
	return d
}

type Pages struct {
	authUC       domain.AuthUsecase
	onboardingUC domain.OnboardingUsecase
	guard        *middleware.SessionGuard
	throttle     *middleware.LoginThrottle
}

// Register installs the page routes on r. Every page passes the route gate;
// the onboarding and dashboard pages also require a session.
func Register(r *gin.Engine, guard *middleware.SessionGuard, throttle *middleware.LoginThrottle, authUC domain.AuthUsecase, onboardingUC domain.OnboardingUsecase) {
	p := &Pages{authUC: authUC, onboardingUC: onboardingUC, guard: guard, throttle: throttle}

	pages := r.Group("", guard.Resolve(), guard.RouteGate())
	pages.GET(domain.PathLanding, p.Landing)
	pages.GET(domain.PathLogin, p.AuthForm(false))
	pages.POST(domain.PathLogin, p.AuthSubmit(false))
	pages.GET(domain.PathSignup, p.AuthForm(true))
	pages.POST(domain.PathSignup, p.AuthSubmit(true))

	private := pages.Group("", guard.RequireSession())
	private.GET(domain.PathOnboarding, p.Onboarding)
	for _, route := range domain.DashboardRoutes {
		private.GET(route.Href, p.Dashboard(route))
	}

	r.NoRoute(guard.Resolve(), p.NotFound)
}

func (p *Pages) Landing(c *gin.Context) {
	c.HTML(http.StatusOK, "landing.html", newPageData(c, "Welcome"))
}

func (p *Pages) AuthForm(signup bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "auth.html", authPage(c, signup))
	}
}

func authPage(c *gin.Context, signup bool) pageData {
	title := "Log in"
	if signup {
		title = "Sign up"
	}
	d := newPageData(c, title)
	d.Signup = signup
	return d
}

// AuthSubmit handles the plain HTML form. API clients use /v1/auth instead.
func (p *Pages) AuthSubmit(signup bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := strings.ToLower(strings.TrimSpace(c.PostForm("email")))
		password := c.PostForm("password")

		d := authPage(c, signup)
		d.FormEmail = email
		if email == "" || password == "" {
			d.Error = "Email and password are required."
			c.HTML(http.StatusUnprocessableEntity, "auth.html", d)
			return
		}

		var (
			session   *domain.AuthSession
			completed bool
			err       error
		)
		if signup {
			session, err = p.authUC.Signup(c.Request.Context(), email, password)
		} else if err = p.throttle.Check(c, email); err == nil {
			session, completed, err = p.authUC.Login(c.Request.Context(), email, password)
			p.throttle.Record(c, email, err)
		}
		if err != nil {
			code := http.StatusInternalServerError
			d.Error = "Something went wrong. Please try again."
			var appErr *apperror.AppError
			if errors.As(err, &appErr) {
				code, d.Error = appErr.Code, appErr.Message
			}
			c.HTML(code, "auth.html", d)
			return
		}

		if session.AccessToken == "" {
			d.Error = "Check your inbox to confirm your email, then log in."
			c.HTML(http.StatusOK, "auth.html", d)
			return
		}

		p.guard.SetAuthCookie(c, session.AccessToken, session.ExpiresIn)
		p.guard.SetOnboardingCookie(c, completed)
		target := domain.PathOnboarding
		if completed {
			target = domain.PathHome
		}
		c.Redirect(http.StatusSeeOther, target)
	}
}

func (p *Pages) Onboarding(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	d := newPageData(c, "Onboarding")
	d.Routes = nil
	d.Steps = domain.StepOrder
	d.Step = domain.StepOrder[0]

	vocab := p.onboardingUC.Vocabulary()
	d.ResumeTips = vocab.ResumeTips
	d.Upload = vocab.Upload

	if view, err := p.onboardingUC.GetDraft(c.Request.Context(), id); err == nil {
		d.Step = view.Step
	} else {
		logger.Log.Warn("Draft lookup failed for onboarding page", "user_id", id.UserID, "error", err)
	}
	c.HTML(http.StatusOK, "onboarding.html", d)
}

func (p *Pages) Dashboard(route domain.DashboardRoute) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := newPageData(c, route.Title)
		d.Description = route.Description
		c.HTML(http.StatusOK, "dashboard.html", d)
	}
}

func (p *Pages) NotFound(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/v1/") {
		response.Error(c, http.StatusNotFound, "Resource not found", nil)
		return
	}
	c.HTML(http.StatusNotFound, "not_found.html", newPageData(c, "Not found"))
}

// Recovery is the error boundary for panics: JSON for the API, the error
// page for everything else.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Log.Error("Panic recovered", "request_id", response.RequestID(c), "path", c.Request.URL.Path, "panic", recovered)
		if strings.HasPrefix(c.Request.URL.Path, "/v1/") {
			response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
			c.Abort()
			return
		}
		c.HTML(http.StatusInternalServerError, "error.html", newPageData(c, "Error"))
		c.Abort()
	})
}

package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"applybrain-backend/internal/delivery/http/middleware"
	"applybrain-backend/internal/domain"
	"applybrain-backend/pkg/apperror"
	"applybrain-backend/pkg/auth"
	"applybrain-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeGate accepts the token "valid" as user-1.
type fakeGate struct {
	completed bool
	flagErr   error
	flagCalls int
}

func (g *fakeGate) CheckSession(ctx context.Context, token string) (*domain.Identity, error) {
	if token != "valid" {
		return nil, domain.ErrNoSession
	}
	return &domain.Identity{UserID: "user-1", Email: "a@b.co"}, nil
}

func (g *fakeGate) GetOnboardingFlag(ctx context.Context, id domain.Identity) (bool, error) {
	g.flagCalls++
	return g.completed, g.flagErr
}

func (g *fakeGate) SetOnboardingFlag(ctx context.Context, id domain.Identity, completed bool) error {
	g.completed = completed
	return nil
}

func pageRouter(gate domain.SessionGate) *gin.Engine {
	guard := middleware.NewSessionGuard(gate, middleware.CookieConfig{}, nil)
	r := gin.New()
	r.Use(guard.Resolve(), guard.RouteGate())

	ok := func(c *gin.Context) { c.String(http.StatusOK, "page") }
	r.GET("/", ok)
	r.GET("/auth/login", ok)
	r.POST("/auth/login", ok)
	r.GET("/auth/signup", ok)

	private := r.Group("", guard.RequireSession())
	private.GET("/onboarding", ok)
	private.GET("/home", ok)
	private.GET("/jobs", ok)
	return r
}

func navigate(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.AuthCookieName, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouteGate_Scenarios(t *testing.T) {
	cases := []struct {
		name      string
		path      string
		token     string
		completed bool
		flagErr   error
		want      string
	}{
		{"signed in user leaves login page", "/auth/login", "valid", true, nil, domain.PathHome},
		{"signed in user leaves signup page", "/auth/signup", "valid", false, nil, domain.PathHome},
		{"incomplete onboarding is sent to wizard", "/home", "valid", false, nil, domain.PathOnboarding},
		{"completed user skips wizard", "/onboarding", "valid", true, nil, domain.PathHome},
		{"anonymous visitor of protected page", "/home", "", false, nil, domain.PathLogin},
		{"anonymous visitor of wizard", "/onboarding", "", false, nil, domain.PathLogin},
		{"invalid session fails closed", "/jobs", "forged", true, nil, domain.PathLogin},
		{"flag failure counts as incomplete", "/jobs", "valid", true, errors.New("db down"), domain.PathOnboarding},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := pageRouter(&fakeGate{completed: tc.completed, flagErr: tc.flagErr})
			w := navigate(r, tc.path, tc.token)
			assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
			assert.Equal(t, tc.want, w.Header().Get("Location"))
		})
	}
}

func TestRouteGate_FormPostRedirectsAsGet(t *testing.T) {
	r := pageRouter(&fakeGate{completed: true})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader("email=a%40b.co"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: middleware.AuthCookieName, Value: "valid"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, domain.PathHome, w.Header().Get("Location"))
}

func TestRouteGate_Serves(t *testing.T) {
	cases := []struct {
		path      string
		token     string
		completed bool
	}{
		{"/", "", false},
		{"/", "valid", false},
		{"/auth/login", "", false},
		{"/home", "valid", true},
		{"/jobs", "valid", true},
		{"/onboarding", "valid", false},
	}
	for _, tc := range cases {
		r := pageRouter(&fakeGate{completed: tc.completed})
		w := navigate(r, tc.path, tc.token)
		assert.Equal(t, http.StatusOK, w.Code, tc.path)
	}
}

func TestRouteGate_SetsMarkerCookie(t *testing.T) {
	gate := &fakeGate{completed: true}
	w := navigate(pageRouter(gate), "/home", "valid")
	require.Equal(t, http.StatusOK, w.Code)

	var marker *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.OnboardingCookieName {
			marker = c
		}
	}
	require.NotNil(t, marker)
	assert.Equal(t, "true", marker.Value)
	assert.Equal(t, 1, gate.flagCalls)
}

func TestRouteGate_PublicPageSkipsFlagLookup(t *testing.T) {
	gate := &fakeGate{}
	navigate(pageRouter(gate), "/", "valid")
	assert.Zero(t, gate.flagCalls)
}

func TestDecideRoute(t *testing.T) {
	_, redirect := middleware.DecideRoute("/pricing", middleware.SessionState{Authenticated: true})
	assert.False(t, redirect)

	target, redirect := middleware.DecideRoute("/analytics", middleware.SessionState{Authenticated: true})
	assert.True(t, redirect)
	assert.Equal(t, domain.PathOnboarding, target)

	_, redirect = middleware.DecideRoute("/auth/login", middleware.SessionState{})
	assert.False(t, redirect)
}

func TestRequireAuth_BearerHeader(t *testing.T) {
	guard := middleware.NewSessionGuard(&fakeGate{}, middleware.CookieConfig{}, nil)
	r := gin.New()
	r.Use(guard.Resolve())
	r.GET("/v1/me", guard.RequireAuth(), func(c *gin.Context) {
		id, _ := middleware.IdentityFrom(c)
		c.String(http.StatusOK, id.UserID)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer valid")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestErrorHandler_FieldErrors(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestIDMiddleware(), middleware.ErrorHandler())
	r.GET("/fail", func(c *gin.Context) {
		_ = c.Error(apperror.Unprocessable("Please fix the highlighted fields.", map[string]string{"phone": "Enter a valid phone number."}))
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("pq: connection refused"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"phone":"Enter a valid phone number."`)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "pq:")
}

func TestCSRFMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(middleware.CSRFMiddleware(false, nil))
	r.POST("/v1/onboarding/next", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.POST("/v1/auth/login", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	post := func(path string, cookie, header string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: middleware.CSRFTokenCookieName, Value: cookie})
		}
		if header != "" {
			req.Header.Set(middleware.CSRFTokenHeaderName, header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusForbidden, post("/v1/onboarding/next", "tok", ""))
	assert.Equal(t, http.StatusForbidden, post("/v1/onboarding/next", "tok", "other"))
	assert.Equal(t, http.StatusNoContent, post("/v1/onboarding/next", "tok", "tok"))
	assert.Equal(t, http.StatusNoContent, post("/v1/auth/login", "", ""))
}

func TestRateLimitMiddleware_LocalFallback(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RateLimitMiddleware(middleware.LoginRateLimitConfig(2, time.Minute), nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.NotEmpty(t, w.Header().Get("Retry-After"))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestLoginThrottle_BlocksAfterWrongPasswords(t *testing.T) {
	tracker := security.NewLoginTracker(security.LoginTrackerConfig{MaxAttempts: 2, AttemptWindow: time.Minute, BlockDuration: time.Minute}, security.NewSecurityLogger(zap.NewNop(), "test", "test"))
	throttle := middleware.NewLoginThrottle(tracker, nil)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.POST("/login", func(c *gin.Context) {
		email := c.PostForm("email")
		if err := throttle.Check(c, email); err != nil {
			c.Error(err)
			return
		}
		var err error
		if c.PostForm("password") != "secret" {
			err = apperror.New(http.StatusUnauthorized, "Wrong email or password.", auth.ErrInvalidCredentials)
		}
		throttle.Record(c, email, err)
		if err != nil {
			c.Error(err)
			return
		}
		c.Status(http.StatusOK)
	})

	attempt := func(password string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("email=throttle@example.com&password="+password))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, attempt("nope").Code)
	assert.Equal(t, http.StatusUnauthorized, attempt("nope").Code)

	w := attempt("secret")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

package middleware

import (
	"net/http"
	"strings"
	"time"

	"applybrain-backend/internal/delivery/http/response"
	"applybrain-backend/internal/domain"
	"applybrain-backend/pkg/logger"
	"applybrain-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

const (
	AuthCookieName       = "auth-token"
	OnboardingCookieName = "onboarding_completed"

	identityKey = "session_identity"
	flagKey     = "session_onboarding_completed"
)

type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

// SessionGuard resolves the caller's session and onboarding flag through a
// domain.SessionGate. A session it cannot confirm is treated as absent.
type SessionGuard struct {
	gate    domain.SessionGate
	cookies CookieConfig
	secLog  *security.SecurityLogger
}

func NewSessionGuard(gate domain.SessionGate, cookies CookieConfig, secLog *security.SecurityLogger) *SessionGuard {
	if cookies.MaxAge <= 0 {
		cookies.MaxAge = 7 * 24 * time.Hour
	}
	return &SessionGuard{gate: gate, cookies: cookies, secLog: secLog}
}

// Resolve checks the session once per request. It never rejects; the gates
// further down decide what an anonymous caller may see.
func (g *SessionGuard) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}

		id, err := g.gate.CheckSession(c.Request.Context(), token)
		if err != nil || id == nil {
			reason := "no identity"
			if err != nil {
				reason = err.Error()
			}
			if g.secLog != nil {
				g.secLog.LogSessionCheckFailed(c.Request.Context(), c.ClientIP(), c.Request.URL.Path, response.RequestID(c), reason)
			}
			c.Next()
			return
		}

		c.Set(identityKey, *id)
		c.Set(string(domain.KeyUserID), id.UserID)
		c.Set(string(domain.KeyUserEmail), id.Email)
		c.Next()
	}
}

// RequireAuth rejects API calls without a session.
func (g *SessionGuard) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := IdentityFrom(c); !ok {
			response.Error(c, http.StatusUnauthorized, "Authentication required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// OnboardingCompleted looks the flag up at most once per request and mirrors
// it into the marker cookie. A failed lookup counts as not completed.
func (g *SessionGuard) OnboardingCompleted(c *gin.Context) bool {
	if v, ok := c.Get(flagKey); ok {
		return v.(bool)
	}
	id, ok := IdentityFrom(c)
	if !ok {
		return false
	}

	completed, err := g.gate.GetOnboardingFlag(c.Request.Context(), id)
	if err != nil {
		logger.Log.Warn("Onboarding flag lookup failed", "user_id", id.UserID, "request_id", response.RequestID(c), "error", err)
		completed = false
	}
	c.Set(flagKey, completed)
	g.SetOnboardingCookie(c, completed)
	return completed
}

func (g *SessionGuard) SetAuthCookie(c *gin.Context, token string, expiresIn int) {
	maxAge := int(g.cookies.MaxAge.Seconds())
	if expiresIn > 0 {
		maxAge = expiresIn
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthCookieName, token, maxAge, "/", "", g.cookies.Secure, true)
}

func (g *SessionGuard) SetOnboardingCookie(c *gin.Context, completed bool) {
	value := "false"
	if completed {
		value = "true"
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(OnboardingCookieName, value, int(g.cookies.MaxAge.Seconds()), "/", "", g.cookies.Secure, true)
}

func (g *SessionGuard) ClearCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AuthCookieName, "", -1, "/", "", g.cookies.Secure, true)
	c.SetCookie(OnboardingCookieName, "", -1, "/", "", g.cookies.Secure, true)
}

// IdentityFrom returns the identity resolved for this request.
func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok
}

// tokenFromRequest prefers the Authorization header over the cookie.
func tokenFromRequest(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		const prefix = "bearer "
		if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
			return strings.TrimSpace(h[len(prefix):])
		}
		return ""
	}
	if cookie, err := c.Cookie(AuthCookieName); err == nil {
		return cookie
	}
	return ""
}

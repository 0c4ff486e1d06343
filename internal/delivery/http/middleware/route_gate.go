package middleware

import (
	"net/http"

	"applybrain-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

// SessionState is what the route gate knows about the caller.
type SessionState struct {
	Authenticated       bool
	OnboardingCompleted bool
}

// DecideRoute returns where to send a navigation to path, or redirect=false to
// serve it. The first matching rule wins.
func DecideRoute(path string, s SessionState) (target string, redirect bool) {
	if !s.Authenticated {
		return "", false
	}
	switch domain.ClassifyPath(path) {
	case domain.PageAuth:
		return domain.PathHome, true
	case domain.PageProtected:
		if !s.OnboardingCompleted {
			return domain.PathOnboarding, true
		}
	case domain.PageOnboarding:
		if s.OnboardingCompleted {
			return domain.PathHome, true
		}
	}
	return "", false
}

// RouteGate applies DecideRoute to every page navigation. The flag is only
// fetched for pages whose decision depends on it.
func (g *SessionGuard) RouteGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		var state SessionState
		_, state.Authenticated = IdentityFrom(c)
		if state.Authenticated {
			switch domain.ClassifyPath(path) {
			case domain.PageProtected, domain.PageOnboarding:
				state.OnboardingCompleted = g.OnboardingCompleted(c)
			}
		}

		if target, ok := DecideRoute(path, state); ok {
			c.Redirect(redirectStatus(c.Request.Method), target)
			c.Abort()
			return
		}
		c.Next()
	}
}

// A form post that gets bounced must land on the target as a GET.
func redirectStatus(method string) int {
	if method == http.MethodGet || method == http.MethodHead {
		return http.StatusTemporaryRedirect
	}
	return http.StatusSeeOther
}

// RequireSession sends anonymous visitors of a page to the login page.
func (g *SessionGuard) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := IdentityFrom(c); !ok {
			c.Redirect(http.StatusTemporaryRedirect, domain.PathLogin)
			c.Abort()
			return
		}
		c.Next()
	}
}

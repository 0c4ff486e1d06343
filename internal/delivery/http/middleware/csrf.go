package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"applybrain-backend/internal/delivery/http/response"
	"applybrain-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

const (
	CSRFTokenCookieName = "csrf_token"
	CSRFTokenHeaderName = "X-CSRF-Token"
	// 32 bytes = 64 hex chars
	CSRFTokenLength = 32
	CSRFTokenExpiry = 24 * time.Hour
)

// Callers without a session yet, and bearer-token clients.
var csrfExemptPaths = map[string]bool{
	"/v1/auth/login":  true,
	"/v1/auth/signup": true,
	"/v1/health":      true,
}

func generateCSRFToken() (string, error) {
	b := make([]byte, CSRFTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// CSRFMiddleware implements the double-submit cookie pattern: mutating
// requests must echo the csrf_token cookie in the X-CSRF-Token header.
// Requests authenticated by an Authorization header carry no ambient
// credentials and skip the check.
func CSRFMiddleware(secure bool, secLog *security.SecurityLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(CSRFTokenCookieName)
		if err != nil || cookie == "" {
			token, err := generateCSRFToken()
			if err != nil {
				response.Error(c, http.StatusInternalServerError, "Failed to generate security token", nil)
				c.Abort()
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			// HttpOnly off so the frontend can read it back.
			c.SetCookie(CSRFTokenCookieName, token, int(CSRFTokenExpiry.Seconds()), "/", "", secure, false)
			cookie = token
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if csrfExemptPaths[c.Request.URL.Path] || c.GetHeader("Authorization") != "" {
			c.Next()
			return
		}

		header := c.GetHeader(CSRFTokenHeaderName)
		msg := ""
		switch {
		case header == "":
			msg = "Missing CSRF token"
		case subtle.ConstantTimeCompare([]byte(header), []byte(cookie)) != 1:
			msg = "Invalid CSRF token"
		}
		if msg != "" {
			if secLog != nil {
				secLog.LogCSRFViolation(c.Request.Context(), c.ClientIP(), c.Request.URL.Path, response.RequestID(c))
			}
			response.Error(c, http.StatusForbidden, msg, nil)
			c.Abort()
			return
		}

		c.Next()
	}
}

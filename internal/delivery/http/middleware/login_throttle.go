package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"applybrain-backend/internal/delivery/http/response"
	"applybrain-backend/pkg/apperror"
	"applybrain-backend/pkg/auth"
	"applybrain-backend/pkg/logger"
	"applybrain-backend/pkg/security"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
)

// LoginThrottle puts the failed-attempt tracker around a sign-in. Both the
// JSON API and the HTML form go through it.
type LoginThrottle struct {
	tracker *security.LoginTracker
	secLog  *security.SecurityLogger
}

func NewLoginThrottle(tracker *security.LoginTracker, secLog *security.SecurityLogger) *LoginThrottle {
	return &LoginThrottle{tracker: tracker, secLog: secLog}
}

// Check returns a 429 AppError while email is blocked. Tracker failures
// let the attempt through.
func (t *LoginThrottle) Check(c *gin.Context, email string) error {
	if t == nil || t.tracker == nil {
		return nil
	}
	left, err := t.tracker.Blocked(c.Request.Context(), email)
	if err != nil {
		logger.Log.Warn("Login block lookup failed", "request_id", response.RequestID(c), "error", err)
		return nil
	}
	if left <= 0 {
		return nil
	}
	if t.secLog != nil {
		t.secLog.LogLoginBlocked(c.Request.Context(), email, c.ClientIP(), response.RequestID(c), left)
	}
	c.Header("Retry-After", fmt.Sprintf("%d", int(left.Seconds())+1))
	return apperror.New(http.StatusTooManyRequests,
		"Too many failed attempts. Try again "+humanize.Time(time.Now().Add(left))+".", nil)
}

// Record counts a wrong password or clears the counter after a success.
// Other failures, like an unreachable provider, are not the user's fault.
func (t *LoginThrottle) Record(c *gin.Context, email string, loginErr error) {
	if t == nil || t.tracker == nil {
		return
	}
	ctx := context.WithoutCancel(c.Request.Context())
	switch {
	case loginErr == nil:
		if err := t.tracker.Clear(ctx, email); err != nil {
			logger.Log.Warn("Clearing login attempts failed", "error", err)
		}
	case errors.Is(loginErr, auth.ErrInvalidCredentials):
		if _, err := t.tracker.RecordFailure(ctx, email, c.ClientIP(), response.RequestID(c)); err != nil {
			logger.Log.Warn("Recording failed login failed", "error", err)
		}
	}
}

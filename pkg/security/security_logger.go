package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventLoginFailed         EventType = "login_failed"
	EventLoginSuccess        EventType = "login_success"
	EventSessionCheckFailed  EventType = "session_check_failed"
	EventRateLimitTriggered  EventType = "rate_limit_triggered"
	EventUploadRejected      EventType = "upload_rejected"
	EventOnboardingCompleted EventType = "onboarding_completed"
	EventLoginBlocked        EventType = "login_blocked"
	EventBlockCreated        EventType = "block_created"
	EventCSRFViolation       EventType = "csrf_violation"
	EventUploadInfected      EventType = "upload_infected"
)

// SecurityEvent represents a security-related event to be logged
type SecurityEvent struct {
	Timestamp    time.Time              `json:"timestamp"`
	Service      string                 `json:"service"`
	Environment  string                 `json:"env"`
	Level        string                 `json:"level"`
	Event        EventType              `json:"event"`
	SubjectType  string                 `json:"subject_type,omitempty"`  // "email", "ip", "user_id"
	SubjectValue string                 `json:"subject_value,omitempty"` // Masked or hashed for PII
	IP           string                 `json:"ip,omitempty"`
	UserAgent    string                 `json:"user_agent,omitempty"`
	RequestID    string                 `json:"request_id,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// SecurityLogger provides structured logging for security events
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

var (
	defaultLogger *SecurityLogger
)

// InitSecurityLogger initializes the security logger with Zap
func InitSecurityLogger(serviceName, environment string) *SecurityLogger {
	// Create production-ready Zap config
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "level"
	config.EncoderConfig.MessageKey = "message"

	// Set output to stdout for Railway/container environments
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		// Fallback to a basic logger if config fails
		logger, _ = zap.NewProduction()
	}

	sl := &SecurityLogger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}

	defaultLogger = sl
	return sl
}

// NewSecurityLogger wraps an existing zap logger. Tests pass zap.NewNop()
// or an observer core.
func NewSecurityLogger(z *zap.Logger, serviceName, environment string) *SecurityLogger {
	return &SecurityLogger{zapLogger: z, serviceName: serviceName, environment: environment}
}

// DefaultLogger returns the default security logger instance
func DefaultLogger() *SecurityLogger {
	if defaultLogger == nil {
		// Create a basic logger if not initialized
		return InitSecurityLogger("applybrain-backend", getEnvironment())
	}
	return defaultLogger
}

// Log logs a security event
func (sl *SecurityLogger) Log(ctx context.Context, event SecurityEvent) {
	// Fill in defaults
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Service = sl.serviceName
	event.Environment = sl.environment

	severity := SeverityFor(event.Event)
	level := severity.level()
	event.Level = level.String()

	// Build Zap fields
	fields := []zap.Field{
		zap.String("service", event.Service),
		zap.String("env", event.Environment),
		zap.String("event", string(event.Event)),
		zap.String("severity", string(severity)),
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", event.SubjectValue))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		detailsJSON, _ := json.Marshal(event.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	sl.zapLogger.Log(level, string(event.Event), fields...)
}

// LogLoginFailed logs a failed login attempt
func (sl *SecurityLogger) LogLoginFailed(ctx context.Context, email, ip, userAgent, requestID, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginFailed,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]interface{}{"reason": reason},
	})
}

// LogLoginSuccess logs a successful sign-in through the auth proxy.
func (sl *SecurityLogger) LogLoginSuccess(ctx context.Context, email, ip, requestID string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginSuccess,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		IP:           ip,
		RequestID:    requestID,
	})
}

// LogRateLimitTriggered logs when rate limiting is triggered
func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, ip, userAgent, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]interface{}{"endpoint": endpoint},
	})
}

// LogSessionCheckFailed logs a rejected or unverifiable session token.
func (sl *SecurityLogger) LogSessionCheckFailed(ctx context.Context, ip, path, requestID, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventSessionCheckFailed,
		IP:        ip,
		RequestID: requestID,
		Details:   map[string]interface{}{"path": path, "reason": reason},
	})
}

// LogUploadRejected logs a resume upload refused by the upload gate.
func (sl *SecurityLogger) LogUploadRejected(ctx context.Context, userID, filename, requestID, reason string, size int64) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventUploadRejected,
		SubjectType:  "user_id",
		SubjectValue: maskValue("user_id", userID),
		RequestID:    requestID,
		Details:      map[string]interface{}{"filename": filename, "size": size, "reason": reason},
	})
}

// LogOnboardingCompleted logs a successful wizard submission.
func (sl *SecurityLogger) LogOnboardingCompleted(ctx context.Context, userID, requestID string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventOnboardingCompleted,
		SubjectType:  "user_id",
		SubjectValue: maskValue("user_id", userID),
		RequestID:    requestID,
	})
}

// LogLoginBlocked logs a sign-in refused because the email is blocked.
func (sl *SecurityLogger) LogLoginBlocked(ctx context.Context, email, ip, requestID string, remaining time.Duration) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventLoginBlocked,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]interface{}{"remaining_seconds": int(remaining.Seconds())},
	})
}

// LogBlockCreated logs a new temporary block after repeated failures.
func (sl *SecurityLogger) LogBlockCreated(ctx context.Context, email, ip, requestID string, duration time.Duration) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventBlockCreated,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]interface{}{"duration_minutes": int(duration.Minutes())},
	})
}

// LogCSRFViolation logs a state-changing request without a matching token.
func (sl *SecurityLogger) LogCSRFViolation(ctx context.Context, ip, path, requestID string) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventCSRFViolation,
		IP:        ip,
		RequestID: requestID,
		Details:   map[string]interface{}{"path": path},
	})
}

// LogUploadInfected logs a resume the malware scanner refused.
func (sl *SecurityLogger) LogUploadInfected(ctx context.Context, userID, filename, requestID string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventUploadInfected,
		SubjectType:  "user_id",
		SubjectValue: maskValue("user_id", userID),
		RequestID:    requestID,
		Details:      map[string]interface{}{"filename": filename},
	})
}

// Sync flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	return sl.zapLogger.Sync()
}

// --- Helper Functions ---

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	if len(email) < 3 {
		return "***"
	}
	atIndex := -1
	for i, c := range email {
		if c == '@' {
			atIndex = i
			break
		}
	}
	if atIndex <= 1 {
		return "***" + email[1:]
	}
	return string(email[0]) + "***" + email[atIndex:]
}

// HashValue creates a SHA256 hash of a value (for logging without PII)
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8]) // First 16 chars of hex
}

// maskValue masks a value based on its type
func maskValue(subjectType, value string) string {
	switch subjectType {
	case "email":
		return MaskEmail(value)
	case "ip":
		return value // IPs are not PII in security context
	default:
		return HashValue(value)
	}
}

// getEnvironment determines the current environment
func getEnvironment() string {
	env := os.Getenv("GIN_MODE")
	if env == "release" {
		return "production"
	}
	return "development"
}

package security

import "go.uber.org/zap/zapcore"

// Severity is derived from the event type, never taken from input.
type Severity string

const (
	SeverityINFO Severity = "INFO"
	SeverityWARN Severity = "WARN"
	SeverityHIGH Severity = "HIGH"
)

var EventSeverityMap = map[EventType]Severity{
	EventLoginSuccess:        SeverityINFO,
	EventOnboardingCompleted: SeverityINFO,

	EventLoginFailed:        SeverityWARN,
	EventRateLimitTriggered: SeverityWARN,
	EventSessionCheckFailed: SeverityWARN,
	EventUploadRejected:     SeverityWARN,

	EventLoginBlocked:   SeverityHIGH,
	EventBlockCreated:   SeverityHIGH,
	EventCSRFViolation:  SeverityHIGH,
	EventUploadInfected: SeverityHIGH,
}

// SeverityFor defaults unknown events to WARN.
func SeverityFor(event EventType) Severity {
	if s, ok := EventSeverityMap[event]; ok {
		return s
	}
	return SeverityWARN
}

func (s Severity) level() zapcore.Level {
	switch s {
	case SeverityINFO:
		return zapcore.InfoLevel
	case SeverityHIGH:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

package usecase

import (
	"context"
	"time"
)

// HealthCheck probes one dependency. A nil error means healthy.
type HealthCheck func(ctx context.Context) error

type HealthUsecase interface {
	Check(ctx context.Context) (map[string]string, bool)
}

type healthUsecase struct {
	checks map[string]HealthCheck
}

func NewHealthUsecase(checks map[string]HealthCheck) HealthUsecase {
	return &healthUsecase{checks: checks}
}

// Check runs every probe with a short deadline. Only "database" failing
// marks the service unhealthy; the rest degrade to fallbacks.
func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	healthy := true
	for name, check := range u.checks {
		if err := check(ctx); err != nil {
			status[name] = "unavailable"
			if name == "database" {
				healthy = false
				status["status"] = "degraded"
			}
			continue
		}
		status[name] = "ok"
	}
	return status, healthy
}

package usecase

import (
	"context"
	"fmt"
	"strings"

	"applybrain-backend/internal/domain"
	"applybrain-backend/pkg/auth"
	"applybrain-backend/pkg/logger"
)

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type sessionGate struct {
	verifier TokenVerifier
	users    domain.UserRepository
	cache    domain.FlagCache
}

func NewSessionGate(verifier TokenVerifier, users domain.UserRepository, cache domain.FlagCache) domain.SessionGate {
	return &sessionGate{verifier: verifier, users: users, cache: cache}
}

// CheckSession resolves a bearer token to an identity. Every failure wraps
// domain.ErrNoSession.
func (g *sessionGate) CheckSession(ctx context.Context, token string) (*domain.Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrNoSession
	}
	claims, err := g.verifier.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNoSession, err)
	}
	return &domain.Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

// GetOnboardingFlag reads through the cache. A cache failure falls back to
// the database; a database failure is returned to the caller.
func (g *sessionGate) GetOnboardingFlag(ctx context.Context, id domain.Identity) (bool, error) {
	if g.cache != nil {
		completed, found, err := g.cache.Get(ctx, id.UserID)
		if err != nil {
			logger.Log.Warn("Onboarding flag cache read failed", "user_id", id.UserID, "error", err)
		} else if found {
			return completed, nil
		}
	}

	completed, err := g.users.GetOnboardingFlag(ctx, id.UserID)
	if err != nil {
		return false, err
	}

	if g.cache != nil {
		if err := g.cache.Set(ctx, id.UserID, completed); err != nil {
			logger.Log.Warn("Onboarding flag cache write failed", "user_id", id.UserID, "error", err)
		}
	}
	return completed, nil
}

func (g *sessionGate) SetOnboardingFlag(ctx context.Context, id domain.Identity, completed bool) error {
	if err := g.users.SetOnboardingFlag(ctx, id.UserID, completed); err != nil {
		if g.cache != nil {
			_ = g.cache.Invalidate(ctx, id.UserID)
		}
		return err
	}
	if g.cache != nil {
		if err := g.cache.Set(ctx, id.UserID, completed); err != nil {
			logger.Log.Warn("Onboarding flag cache write failed", "user_id", id.UserID, "error", err)
			_ = g.cache.Invalidate(ctx, id.UserID)
		}
	}
	return nil
}

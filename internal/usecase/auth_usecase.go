package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"applybrain-backend/internal/domain"
	"applybrain-backend/pkg/apperror"
	"applybrain-backend/pkg/auth"
	"applybrain-backend/pkg/logger"
)

type authUsecase struct {
	provider domain.IdentityProvider
	userRepo domain.UserRepository
	gate     domain.SessionGate
}

func NewAuthUsecase(provider domain.IdentityProvider, userRepo domain.UserRepository, gate domain.SessionGate) domain.AuthUsecase {
	return &authUsecase{provider: provider, userRepo: userRepo, gate: gate}
}

// Login signs in through the auth provider and reports whether the user has
// finished onboarding so the client knows where to land.
func (u *authUsecase) Login(ctx context.Context, email, password string) (*domain.AuthSession, bool, error) {
	session, err := u.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, false, mapProviderError(err, "Login service unavailable")
	}

	if err := u.ensureUser(ctx, session.User); err != nil {
		return nil, false, err
	}

	completed, err := u.gate.GetOnboardingFlag(ctx, session.User)
	if err != nil {
		logger.Log.Warn("Onboarding flag lookup failed after login", "user_id", session.User.UserID, "error", err)
		completed = false
	}
	return session, completed, nil
}

// Signup registers a new account. Without auto-confirm the provider returns
// no access token and the user row is created on first login instead.
func (u *authUsecase) Signup(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	session, err := u.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, mapProviderError(err, "Registration service unavailable")
	}
	if session.AccessToken != "" {
		if err := u.ensureUser(ctx, session.User); err != nil {
			return nil, err
		}
	}
	return session, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id domain.Identity) (*domain.User, error) {
	user, err := u.userRepo.GetByID(ctx, id.UserID)
	if err != nil {
		var appErr *apperror.AppError
		if !errors.As(err, &appErr) || appErr.Code != http.StatusNotFound {
			return nil, apperror.Internal(err)
		}
		user = &domain.User{ID: id.UserID, Email: id.Email}
	}

	completed, err := u.gate.GetOnboardingFlag(ctx, id)
	if err != nil {
		logger.Log.Warn("Onboarding flag lookup failed", "user_id", id.UserID, "error", err)
	}
	user.OnboardingCompleted = completed
	return user, nil
}

func (u *authUsecase) ensureUser(ctx context.Context, id domain.Identity) error {
	now := time.Now()
	return u.userRepo.Create(ctx, &domain.User{ID: id.UserID, Email: id.Email, CreatedAt: now, UpdatedAt: now})
}

func mapProviderError(err error, unavailable string) error {
	var perr *auth.ProviderError
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return apperror.New(http.StatusUnauthorized, "Wrong email or password.", err)
	case errors.Is(err, auth.ErrEmailNotConfirmed):
		return apperror.New(http.StatusUnauthorized, "Email not confirmed", err)
	case errors.As(err, &perr) && perr.Status < http.StatusInternalServerError:
		msg := perr.Message
		if msg == "" {
			msg = "Request rejected by auth provider"
		}
		return apperror.BadRequest(msg)
	default:
		return apperror.New(http.StatusServiceUnavailable, unavailable, err)
	}
}

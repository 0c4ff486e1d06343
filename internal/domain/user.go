package domain

import (
	"context"
	"errors"
	"time"
)

var ErrNoSession = errors.New("no valid session")

type User struct {
	ID                  string    `json:"id"` // Supabase UUID
	Email               string    `json:"email"`
	OnboardingCompleted bool      `json:"onboarding_completed"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Identity is the authenticated subject behind a session token.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// AuthSession is what the hosted auth provider returns on sign-in.
// AccessToken is empty when the provider requires email confirmation first.
type AuthSession struct {
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresIn    int       `json:"expires_in,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
	User         Identity  `json:"user"`
}

type UserRepository interface {
	// Create inserts the user if absent; existing rows are left untouched.
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetOnboardingFlag(ctx context.Context, id string) (bool, error)
	SetOnboardingFlag(ctx context.Context, id string, completed bool) error
}

// FlagCache fronts the onboarding flag lookup done on every navigation.
type FlagCache interface {
	Get(ctx context.Context, userID string) (completed bool, found bool, err error)
	Set(ctx context.Context, userID string, completed bool) error
	Invalidate(ctx context.Context, userID string) error
}

// IdentityProvider is the hosted auth service (email/password accounts).
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*AuthSession, error)
	SignUp(ctx context.Context, email, password string) (*AuthSession, error)
}

// SessionGate is everything the route gate needs to know about a request.
// Any identity provider that satisfies it can be substituted.
type SessionGate interface {
	CheckSession(ctx context.Context, token string) (*Identity, error)
	GetOnboardingFlag(ctx context.Context, id Identity) (bool, error)
	SetOnboardingFlag(ctx context.Context, id Identity, completed bool) error
}

type AuthUsecase interface {
	Login(ctx context.Context, email, password string) (*AuthSession, bool, error)
	Signup(ctx context.Context, email, password string) (*AuthSession, error)
	GetCurrentUser(ctx context.Context, id Identity) (*User, error)
}

package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"applybrain-backend/internal/domain"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid login credentials")
	ErrEmailNotConfirmed  = errors.New("auth: email not confirmed")
)

// ProviderError carries the message returned by the auth service.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("auth provider: %d %s", e.Status, e.Message)
}

// GoTrueClient talks to the Supabase auth REST API for email/password
// accounts.
type GoTrueClient struct {
	baseURL     string
	apiKey      string
	redirectURL string
	client      *http.Client
}

func NewGoTrueClient(supabaseURL, apiKey, frontendURL string) *GoTrueClient {
	return &GoTrueClient{
		baseURL:     supabaseURL + "/auth/v1",
		apiKey:      apiKey,
		redirectURL: frontendURL + "/auth/callback",
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

type goTrueUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type goTrueSession struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int        `json:"expires_in"`
	ExpiresAt    int64      `json:"expires_at"`
	User         goTrueUser `json:"user"`
	// signup without auto-confirm returns the bare user
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (c *GoTrueClient) SignIn(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	return c.post(ctx, "/token?grant_type=password", map[string]interface{}{
		"email":    email,
		"password": password,
	})
}

func (c *GoTrueClient) SignUp(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	return c.post(ctx, "/signup", map[string]interface{}{
		"email":    email,
		"password": password,
		"options": map[string]interface{}{
			"emailRedirectTo": c.redirectURL,
		},
	})
}

func (c *GoTrueClient) post(ctx context.Context, path string, body map[string]interface{}) (*domain.AuthSession, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth provider unavailable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]interface{}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		return nil, providerError(resp.StatusCode, errResp)
	}

	var s goTrueSession
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}

	session := &domain.AuthSession{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresIn:    s.ExpiresIn,
		User:         domain.Identity{UserID: s.User.ID, Email: s.User.Email},
	}
	if s.ExpiresAt > 0 {
		session.ExpiresAt = time.Unix(s.ExpiresAt, 0)
	}
	if session.User.UserID == "" {
		session.User = domain.Identity{UserID: s.ID, Email: s.Email}
	}
	return session, nil
}

func providerError(status int, body map[string]interface{}) error {
	msg := ""
	for _, key := range []string{"msg", "error_description", "message"} {
		if m, ok := body[key].(string); ok && m != "" {
			msg = m
			break
		}
	}
	switch msg {
	case "Invalid login credentials":
		return ErrInvalidCredentials
	case "Email not confirmed":
		return ErrEmailNotConfirmed
	}
	return &ProviderError{Status: status, Message: msg}
}

package email

import (
	"context"
	"testing"

	"applybrain-backend/config"
	"applybrain-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWelcome(t *testing.T) {
	html, err := RenderWelcome(WelcomeEmailData{
		FirstName: "Priya",
		Role:      "Backend <Engineer>",
		Skills:    []string{"Go", "PostgreSQL"},
		HomeURL:   "https://app.example.com/home",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "You're all set, Priya!")
	assert.Contains(t, html, "Go, PostgreSQL")
	assert.Contains(t, html, "Backend &lt;Engineer&gt;")
}

func TestOnboardingCompleted(t *testing.T) {
	profile := &domain.UserProfile{UserID: "u-1"}
	profile.FirstName = "Priya"
	profile.Email = "priya@example.com"

	t.Run("skips when unconfigured", func(t *testing.T) {
		s := NewEmailService(&config.Config{})
		assert.False(t, s.IsConfigured())
		assert.NoError(t, s.OnboardingCompleted(context.Background(), profile))
	})

	t.Run("sends through configured transport", func(t *testing.T) {
		s := NewEmailService(&config.Config{SMTPHost: "smtp.example.com", SMTPUsername: "u", SMTPPassword: "p", FrontendURL: "https://app.example.com"})
		var to, subject, body string
		s.send = func(recipient, sub, html string) error {
			to, subject, body = recipient, sub, html
			return nil
		}

		require.NoError(t, s.OnboardingCompleted(context.Background(), profile))
		assert.Equal(t, "priya@example.com", to)
		assert.Equal(t, "Welcome to ApplyBrain", subject)
		assert.Contains(t, body, "https://app.example.com/home")
	})
}

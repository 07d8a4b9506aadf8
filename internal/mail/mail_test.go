package mail

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_ActivationTemplate(t *testing.T) {
	body, err := render(&Message{
		Template: "activation.html.tmpl",
		Data: map[string]any{
			"Name":           "Alice",
			"ActivationCode": "4821",
			"ExpiresIn":      5,
		},
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Hello Alice")
	assert.Contains(t, body, "4821")
	assert.Contains(t, body, "5 minutes")
}

func TestRender_ResetTemplate(t *testing.T) {
	body, err := render(&Message{
		Template: "reset_password.html.tmpl",
		Data: map[string]any{
			"ResetLink": "https://app.example.com/reset?token=abc",
			"ExpiresIn": 5,
		},
	})
	require.NoError(t, err)
	assert.Contains(t, body, "https://app.example.com/reset?token=abc")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := render(&Message{Template: "missing.html.tmpl"})
	assert.Error(t, err)
}

func TestLogSender_Send(t *testing.T) {
	s := NewLogSender(slog.Default())
	err := s.Send(context.Background(), &Message{
		To:       "alice@example.com",
		Subject:  "Activate your account",
		Template: "activation.html.tmpl",
		Data: map[string]any{
			"Name":           "Alice",
			"ActivationCode": "0042",
			"ExpiresIn":      5,
		},
	})
	assert.NoError(t, err)
}

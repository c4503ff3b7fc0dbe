package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"microcredit-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPicksProvider(t *testing.T) {
	assert.IsType(t, &DisabledSender{}, New(config.EmailConfig{Provider: "brevo"}))
	assert.IsType(t, &BrevoSender{}, New(config.EmailConfig{Provider: "brevo", APIKey: "k"}))
	assert.IsType(t, &DisabledSender{}, New(config.EmailConfig{Provider: "smtp"}))
	assert.IsType(t, &SMTPSender{}, New(config.EmailConfig{Provider: "smtp", SMTPHost: "localhost", SMTPPort: 25}))
}

func TestDisabledSenderNeverFails(t *testing.T) {
	assert.NoError(t, NewDisabledSender().Send(context.Background(), "a@b.com", "s", "<p>x</p>"))
}

func TestBrevoSenderSend(t *testing.T) {
	var got brevoRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"<m-1>"}`))
	}))
	defer srv.Close()

	sender := NewBrevoSender(config.EmailConfig{
		APIKey: "secret", FromEmail: "noreply@example.com", FromName: "Credito", BrevoURL: srv.URL,
	})
	require.NoError(t, sender.Send(context.Background(), "a@b.com", "Hola", "<p>body</p>"))

	assert.Equal(t, "noreply@example.com", got.Sender.Email)
	assert.Equal(t, "Credito", got.Sender.Name)
	require.Len(t, got.To, 1)
	assert.Equal(t, "a@b.com", got.To[0].Email)
	assert.Equal(t, "Hola", got.Subject)
	assert.Equal(t, "<p>body</p>", got.HTMLContent)
}

func TestBrevoSenderProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"unauthorized"}`))
	}))
	defer srv.Close()

	sender := NewBrevoSender(config.EmailConfig{APIKey: "bad", BrevoURL: srv.URL})
	err := sender.Send(context.Background(), "a@b.com", "Hola", "<p>body</p>")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSMTPMessageHeaders(t *testing.T) {
	sender := NewSMTPSender(config.EmailConfig{SMTPHost: "localhost", SMTPPort: 25, FromEmail: "noreply@example.com", FromName: "Credito"})
	m := sender.message("a@b.com", "Hola", "<p>x</p>")
	assert.Equal(t, []string{"a@b.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Hola"}, m.GetHeader("Subject"))
}

func TestRenderTemplates(t *testing.T) {
	html, err := RenderVerification("CreditoExpress", "123456", 10)
	require.NoError(t, err)
	assert.Contains(t, html, "123456")
	assert.Contains(t, html, "10 minutos")

	html, err = RenderApplication(ApplicationMessage{Title: "Recibida", Name: "<Ana>", ApplicationID: "id-1", Status: "pending"})
	require.NoError(t, err)
	assert.Contains(t, html, "id-1")
	assert.Contains(t, html, "&lt;Ana&gt;")
}

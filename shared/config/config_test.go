package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil), GatewayPort)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "http://localhost:3001", cfg.Services.ExecutionURL)
	assert.Equal(t, "http://localhost:3002", cfg.Services.CommunicationURL)
	assert.Equal(t, "http://localhost:3003", cfg.Services.SnippetURL)
	assert.Equal(t, "http://localhost:3004", cfg.Services.UserURL)
	assert.Equal(t, 3*time.Second, cfg.Gateway.ProbeTimeout)
	assert.Equal(t, 30*time.Second, cfg.Gateway.ProxyTimeout)
	assert.Equal(t, IdentityForwardingRaw, cfg.Gateway.IdentityForwarding)
	assert.Len(t, cfg.CORS.AllowOrigins, 5)
	assert.False(t, cfg.IsProduction())
	assert.False(t, cfg.Mail.MailEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"NODE_ENV":             "production",
		"PORT":                 "8080",
		"USER_SERVICE_URL":     "http://users:3004/",
		"HEALTH_PROBE_TIMEOUT": "250ms",
		"CORS_ORIGINS":         "https://kursor.dev, https://app.kursor.dev",
		"RESEND_API_KEY":       "re_123",
	}), UserPort)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "http://users:3004", cfg.Services.UserURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Gateway.ProbeTimeout)
	assert.Equal(t, []string{"https://kursor.dev", "https://app.kursor.dev"}, cfg.CORS.AllowOrigins)
	assert.True(t, cfg.Mail.MailEnabled())
}

func TestEnvironmentTakesPrecedenceOverNodeEnv(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"ENVIRONMENT": "staging",
		"NODE_ENV":    "production",
	}), GatewayPort)
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.Environment)
}

func TestFromEnvValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "signed forwarding without secret", env: map[string]string{"IDENTITY_FORWARDING": "signed"}},
		{name: "unknown forwarding mode", env: map[string]string{"IDENTITY_FORWARDING": "header"}},
		{name: "bad duration", env: map[string]string{"HEALTH_PROBE_TIMEOUT": "soon"}},
		{name: "non-positive probe timeout", env: map[string]string{"HEALTH_PROBE_TIMEOUT": "0s"}},
		{name: "bad smtp port", env: map[string]string{"SMTP_PORT": "smtp"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEnv(envMap(tt.env), GatewayPort)
			assert.Error(t, err)
		})
	}
}

func TestRequireHelpers(t *testing.T) {
	cfg, err := FromEnv(envMap(nil), UserPort)
	require.NoError(t, err)
	assert.Error(t, cfg.RequireDatabase())
	assert.Error(t, cfg.RequireJWT())

	cfg.Database.URL = "sqlite://:memory:"
	cfg.JWT.Secret = "secret"
	assert.NoError(t, cfg.RequireDatabase())
	assert.NoError(t, cfg.RequireJWT())
}

func TestPlaceholderMailKeyIsDemoMode(t *testing.T) {
	mail := MailConfig{APIKey: "re_your_actual_resend_api_key_here"}
	assert.False(t, mail.MailEnabled())
}

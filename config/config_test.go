package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("ORGANIZER_PASSWORD_HASH", "$2a$10$hash")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	for _, key := range []string{"SERVER_PORT", "DATA_DIR", "PARTICIPANTS_FILE", "REQUIREMENTS_FILE", "DATABASE_URL",
		"CORS_ALLOWED_ORIGINS", "R2_ACCOUNT_ID", "R2_ACCESS_KEY_ID", "R2_SECRET_ACCESS_KEY", "R2_BUCKET_NAME", "R2_PUBLIC_BASE_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "tournaments", cfg.DataDir)
	assert.Equal(t, "participants.txt", cfg.ParticipantsFile)
	assert.Equal(t, "tournament_req.txt", cfg.RequirementsFile)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.R2.IsZero())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DATA_DIR", "/var/lib/runner")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "/var/lib/runner", cfg.DataDir)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing jwt secret", env: map[string]string{"JWT_SECRET_KEY": ""}},
		{name: "missing password hash", env: map[string]string{"ORGANIZER_PASSWORD_HASH": ""}},
		{name: "bad port", env: map[string]string{"SERVER_PORT": "http"}},
		{name: "port out of range", env: map[string]string{"SERVER_PORT": "70000"}},
		{name: "partial r2", env: map[string]string{"R2_BUCKET_NAME": "reports"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv("SERVER_PORT", "")
			t.Setenv("R2_BUCKET_NAME", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://bank@localhost:5432/bank?sslmode=disable")
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("ADMIN_PASSWORD", "admin-password")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddress())
	assert.Equal(t, "bank-backend", cfg.JWTIssuer)
	assert.Equal(t, 60*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "admin", cfg.Admin.Login)
	assert.Equal(t, "admin-password", cfg.Admin.Password)
	assert.Equal(t, "0 0 * * * *", cfg.Rates.Schedule)
	assert.Equal(t, "Europe/Warsaw", cfg.Rates.Timezone)
	assert.Equal(t, 10*time.Second, cfg.Rates.Timeout)
	assert.Equal(t, 10, cfg.LoginRatePerMinute)
	assert.Equal(t, 5, cfg.LoginRateBurst)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9000")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("ADMIN_LOGIN", "root")
	t.Setenv("RATES_REFRESH_SCHEDULE", "0 */5 * * * *")
	t.Setenv("JWT_TTL", "15m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddress())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "root", cfg.Admin.Login)
	assert.Equal(t, "0 */5 * * * *", cfg.Rates.Schedule)
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		unset string
		want  string
	}{
		{"missing database url", "DATABASE_URL", "DATABASE_URL is required"},
		{"missing jwt secret", "JWT_SECRET", "JWT_SECRET is required"},
		{"missing admin password", "ADMIN_PASSWORD", "ADMIN_PASSWORD is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

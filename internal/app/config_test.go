package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dumumtergo/server/internal/auth"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join("testdata")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 9200, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)
	require.Equal(t, "dumumtergo", cfg.Database.Postgres.Database)

	require.Equal(t, "jwt-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, "staging", cfg.Auth.JWT.Issuer)
	require.Equal(t, 30*time.Minute, cfg.Auth.JWT.TTL)
	require.Equal(t, 8, cfg.Auth.OTP.Digits)
	require.Equal(t, 10*time.Minute, cfg.Auth.OTP.TTL)
	require.Equal(t, 3, cfg.Auth.OTP.MaxAttempts)
	require.True(t, cfg.Auth.Google.Enabled)
	require.Equal(t, "google-client", cfg.Auth.Google.ClientID)

	require.True(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, "smtp.example.com", cfg.Email.SMTP.Host)
	require.Equal(t, 2525, cfg.Email.SMTP.Port)
	require.Equal(t, 15*time.Second, cfg.Email.SMTP.Timeout)

	require.False(t, cfg.Monitoring.Prometheus.Enabled)
	require.True(t, cfg.Monitoring.Health.Enabled)

	require.Equal(t, 5, cfg.Maintenance.ReservationExpiryDays)
	require.Equal(t, 45, cfg.Maintenance.NotificationRetentionDays)
	require.Equal(t, "@every 30m", cfg.Maintenance.ReservationSchedule)
	// Untouched keys keep their defaults.
	require.Equal(t, "@daily", cfg.Maintenance.NotificationSchedule)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 9098, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "dumumtergo", cfg.Auth.JWT.Issuer)
	require.Equal(t, time.Hour, cfg.Auth.JWT.TTL)
	require.Equal(t, 6, cfg.Auth.OTP.Digits)
	require.Equal(t, 5*time.Minute, cfg.Auth.OTP.TTL)
	require.False(t, cfg.Email.SMTP.Enabled)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
	require.Equal(t, 3, cfg.Maintenance.ReservationExpiryDays)
	require.Equal(t, 90, cfg.Maintenance.NotificationRetentionDays)
}

func TestAuthConfigAdapters(t *testing.T) {
	cfg := Config{
		Auth: AuthConfig{
			JWT: JWTSettings{
				Secret: "secret",
				Issuer: "issuer",
				TTL:    30 * time.Minute,
			},
			OTP: OTPSettings{
				Digits:      6,
				TTL:         5 * time.Minute,
				MaxAttempts: 5,
			},
			Google: GoogleSettings{
				ClientID:     "client",
				ClientSecret: "secret",
				RedirectURL:  "https://example.com/callback",
			},
		},
	}

	jwtCfg := cfg.Auth.JWTServiceConfig()
	require.Equal(t, auth.JWTConfig{
		Secret:         "secret",
		Issuer:         "issuer",
		AccessTokenTTL: 30 * time.Minute,
	}, jwtCfg)

	otpCfg := cfg.Auth.OTPServiceConfig()
	require.Equal(t, auth.OTPConfig{
		Digits:      6,
		TTL:         5 * time.Minute,
		MaxAttempts: 5,
	}, otpCfg)

	googleCfg := cfg.Auth.GoogleVerifierConfig()
	require.Equal(t, auth.GoogleConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "https://example.com/callback",
	}, googleCfg)
}

func TestJWTServiceConfigFallsBackToDefaultTTL(t *testing.T) {
	cfg := AuthConfig{JWT: JWTSettings{Secret: "secret"}}
	require.Equal(t, auth.DefaultAccessTokenTTL, cfg.JWTServiceConfig().AccessTokenTTL)
}

func TestApplyRuntimeDefaultsGeneratesJWTSecret(t *testing.T) {
	cfg := &Config{}
	generated, err := ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	require.True(t, generated["auth.jwt.secret"])
	require.NotEmpty(t, cfg.Auth.JWT.Secret)

	// Existing secrets are preserved.
	again, err := ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	require.Empty(t, again)
}

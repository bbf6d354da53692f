package app

import (
	"github.com/dumumtergo/server/internal/auth"
	"github.com/dumumtergo/server/pkg/mail"
)

// JWTServiceConfig converts AuthConfig into the parameters expected by the JWT service.
func (c AuthConfig) JWTServiceConfig() auth.JWTConfig {
	ttl := c.JWT.TTL
	if ttl <= 0 {
		ttl = auth.DefaultAccessTokenTTL
	}

	return auth.JWTConfig{
		Secret:         c.JWT.Secret,
		Issuer:         c.JWT.Issuer,
		AccessTokenTTL: ttl,
	}
}

// OTPServiceConfig converts AuthConfig into the parameters expected by the OTP service.
func (c AuthConfig) OTPServiceConfig() auth.OTPConfig {
	return auth.OTPConfig{
		Digits:      c.OTP.Digits,
		TTL:         c.OTP.TTL,
		MaxAttempts: c.OTP.MaxAttempts,
	}
}

// GoogleVerifierConfig converts AuthConfig into Google sign-in parameters.
func (c AuthConfig) GoogleVerifierConfig() auth.GoogleConfig {
	return auth.GoogleConfig{
		ClientID:     c.Google.ClientID,
		ClientSecret: c.Google.ClientSecret,
		RedirectURL:  c.Google.RedirectURL,
	}
}

// SMTPSettings converts EmailConfig into mailer settings.
func (c EmailConfig) SMTPSettings() mail.SMTPSettings {
	return mail.SMTPSettings{
		Enabled:  c.SMTP.Enabled,
		Host:     c.SMTP.Host,
		Port:     c.SMTP.Port,
		Username: c.SMTP.Username,
		Password: c.SMTP.Password,
		From:     c.SMTP.From,
		UseTLS:   c.SMTP.UseTLS,
		Timeout:  c.SMTP.Timeout,
	}
}

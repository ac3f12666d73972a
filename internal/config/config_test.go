package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "access")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenExpiry)
	assert.Equal(t, 240*time.Hour, cfg.RefreshTokenExpiry)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, MailLog, cfg.MailTransport)
	assert.Equal(t, "email_queue", cfg.EmailQueue)
	assert.Equal(t, "/uploads", cfg.UploadBaseURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "access")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh")
	t.Setenv("APP_PORT", ":9090")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_DSN", "host=db user=chem dbname=chem")
	t.Setenv("OTP_TTL", "5m")
	t.Setenv("MAIL_TRANSPORT", "smtp")
	t.Setenv("SMTP_HOST", "mail.example.com")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, 5*time.Minute, cfg.OTPTTL)
	assert.Equal(t, "mail.example.com", cfg.SMTPHost)
	assert.Equal(t, 587, cfg.SMTPPort)
}

func TestValidate(t *testing.T) {
	valid := Config{
		DatabaseDriver:     "sqlite",
		DatabaseDSN:        ":memory:",
		AccessTokenSecret:  "a",
		RefreshTokenSecret: "r",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: time.Hour,
		OTPTTL:             time.Minute,
		MailTransport:      MailLog,
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"missing access secret", func(c *Config) { c.AccessTokenSecret = "" }, "ACCESS_TOKEN_SECRET"},
		{"missing refresh secret", func(c *Config) { c.RefreshTokenSecret = "" }, "REFRESH_TOKEN_SECRET"},
		{"unknown driver", func(c *Config) { c.DatabaseDriver = "mysql" }, "DATABASE_DRIVER"},
		{"empty dsn", func(c *Config) { c.DatabaseDSN = "" }, "DATABASE_DSN"},
		{"unknown mail transport", func(c *Config) { c.MailTransport = "carrier-pigeon" }, "MAIL_TRANSPORT"},
		{"smtp without host", func(c *Config) { c.MailTransport = MailSMTP }, "SMTP_HOST"},
		{"queue without host", func(c *Config) { c.MailTransport = MailQueue }, "SMTP_HOST"},
		{"zero otp ttl", func(c *Config) { c.OTPTTL = 0 }, "lifetimes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

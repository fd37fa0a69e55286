package tshopbe

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/taiphan74/tshop-be/mail"
)

// envSpec mirrors the environment variables the backend has always been
// deployed with.
type envSpec struct {
	JWTSecret             string `env:"JWT_SECRET"`
	JWTExpiresIn          string `env:"JWT_EXPIRES_IN" envDefault:"15m"`
	RefreshTokenSecret    string `env:"REFRESH_TOKEN_SECRET"`
	RefreshTokenExpiresIn string `env:"REFRESH_TOKEN_EXPIRES_IN" envDefault:"7d"`

	OtpExpiresInMinutes int `env:"OTP_EXPIRES_IN_MINUTES" envDefault:"5"`

	MailHost     string `env:"MAIL_HOST"`
	MailPort     string `env:"MAIL_PORT" envDefault:"587"`
	MailUser     string `env:"MAIL_USER"`
	MailPassword string `env:"MAIL_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM"`
	MailSecurity string `env:"MAIL_SECURITY" envDefault:"starttls"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	NodeEnv string `env:"NODE_ENV" envDefault:"development"`
}

// EnvBundle is everything FromEnv can derive: the engine configuration plus
// the collaborator settings the caller still has to turn into clients.
type EnvBundle struct {
	Config Config
	Mail   mail.Config

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// FromEnv loads an [EnvBundle] from the process environment. Only variables
// without a usable default are validated here; TTL strings degrade to their
// defaults through the duration grammar rather than failing startup.
func FromEnv() (EnvBundle, error) {
	var raw envSpec
	if err := env.Parse(&raw); err != nil {
		return EnvBundle{}, fmt.Errorf("parse env: %w", err)
	}

	cfg := defaultConfig()
	cfg.JWT.AccessSecret = raw.JWTSecret
	cfg.JWT.AccessTTL = raw.JWTExpiresIn
	cfg.JWT.RefreshSecret = raw.RefreshTokenSecret
	cfg.JWT.RefreshTTL = raw.RefreshTokenExpiresIn
	if raw.OtpExpiresInMinutes > 0 {
		cfg.OTP.DefaultTTLMinutes = raw.OtpExpiresInMinutes
		if cfg.OTP.MaxTTLMinutes < raw.OtpExpiresInMinutes {
			cfg.OTP.MaxTTLMinutes = raw.OtpExpiresInMinutes
		}
	}
	cfg.Security.ProductionMode = raw.NodeEnv == "production"

	return EnvBundle{
		Config: cfg,
		Mail: mail.Config{
			Host:     raw.MailHost,
			Port:     raw.MailPort,
			Username: raw.MailUser,
			Password: raw.MailPassword,
			From:     raw.MailFrom,
			Security: raw.MailSecurity,
		},
		RedisAddr:     raw.RedisAddr,
		RedisPassword: raw.RedisPassword,
		RedisDB:       raw.RedisDB,
	}, nil
}

package tshopbe

import (
	"errors"
	"time"

	"github.com/taiphan74/tshop-be/duration"
)

// JWTConfig holds the per-class token secrets and lifetimes. TTLs use the
// duration grammar ("900", "15m", "7d"); malformed values silently fall
// back to the defaults.
type JWTConfig struct {
	AccessSecret  string
	AccessTTL     string
	RefreshSecret string
	RefreshTTL    string
}

// SessionConfig tunes the Redis refresh-token store.
type SessionConfig struct {
	// RedisPrefix namespaces every key the engine touches.
	RedisPrefix string
	// FailOpenWrites controls what happens when the session write after
	// signup/signin fails: true returns the tokens anyway (the user can
	// sign in; their refresh token just won't rotate), false fails the
	// whole operation with ErrStoreUnavailable.
	FailOpenWrites bool
	// StoreTimeout bounds every Redis call made by the engine.
	StoreTimeout time.Duration
}

// OTPConfig tunes one-time-code issuance and verification.
type OTPConfig struct {
	// DefaultTTLMinutes is the code lifetime when the caller does not pick one.
	DefaultTTLMinutes int
	// MaxTTLMinutes caps caller-requested lifetimes.
	MaxTTLMinutes int
	// MaxAttempts burns a code after this many wrong guesses. Zero disables
	// the cap.
	MaxAttempts int
}

// MailConfig tunes outbound delivery.
type MailConfig struct {
	// SendTimeout bounds each Send call to the mailer.
	SendTimeout time.Duration
}

// PasswordConfig tunes the bcrypt hasher used by password reset.
type PasswordConfig struct {
	// Cost is the bcrypt cost. Zero selects password.DefaultCost.
	Cost int
}

// SecurityConfig holds deployment-environment switches.
type SecurityConfig struct {
	// ProductionMode marks the refresh cookie Secure.
	ProductionMode bool
}

// LimiterConfig tunes the Redis fixed-window throttles. A zero max disables
// the corresponding check.
type LimiterConfig struct {
	MaxLoginFailures int
	LoginCooldown    time.Duration
	MaxOTPRequests   int
	OTPCooldown      time.Duration
}

// AuditConfig tunes the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events rather than blocking callers when the buffer
	// is full.
	DropIfFull bool
}

// MetricsConfig enables the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// Config is the full engine configuration. Pass it to the builder before
// Build; the engine treats it as immutable afterwards.
type Config struct {
	JWT      JWTConfig
	Session  SessionConfig
	OTP      OTPConfig
	Mail     MailConfig
	Password PasswordConfig
	Security SecurityConfig
	Limiter  LimiterConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  "15m",
			RefreshTTL: "7d",
		},
		Session: SessionConfig{
			RedisPrefix:    "tshop",
			FailOpenWrites: true,
			StoreTimeout:   3 * time.Second,
		},
		OTP: OTPConfig{
			DefaultTTLMinutes: 5,
			MaxTTLMinutes:     15,
			MaxAttempts:       5,
		},
		Mail: MailConfig{
			SendTimeout: 10 * time.Second,
		},
		Limiter: LimiterConfig{
			MaxLoginFailures: 10,
			LoginCooldown:    15 * time.Minute,
			MaxOTPRequests:   5,
			OTPCooldown:      15 * time.Minute,
		},
		Audit: AuditConfig{
			BufferSize: 256,
			DropIfFull: true,
		},
	}
}

// Validate checks the configuration for contradictions that would produce a
// broken engine. Zero-value fields that have safe defaults are filled in by
// the builder, not rejected here.
func (c Config) Validate() error {
	if c.JWT.AccessSecret == "" {
		return errors.New("JWT.AccessSecret is required")
	}
	if c.JWT.RefreshSecret == "" {
		return errors.New("JWT.RefreshSecret is required")
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret {
		return errors.New("JWT access and refresh secrets must differ")
	}
	if c.Session.StoreTimeout < 0 {
		return errors.New("Session.StoreTimeout must be >= 0")
	}
	if c.Mail.SendTimeout < 0 {
		return errors.New("Mail.SendTimeout must be >= 0")
	}
	if c.OTP.DefaultTTLMinutes < 1 {
		return errors.New("OTP.DefaultTTLMinutes must be >= 1")
	}
	if c.OTP.MaxTTLMinutes < c.OTP.DefaultTTLMinutes {
		return errors.New("OTP.MaxTTLMinutes must be >= OTP.DefaultTTLMinutes")
	}
	if c.OTP.MaxAttempts < 0 {
		return errors.New("OTP.MaxAttempts must be >= 0")
	}
	if c.Limiter.MaxLoginFailures > 0 && c.Limiter.LoginCooldown <= 0 {
		return errors.New("Limiter.LoginCooldown required when MaxLoginFailures > 0")
	}
	if c.Limiter.MaxOTPRequests > 0 && c.Limiter.OTPCooldown <= 0 {
		return errors.New("Limiter.OTPCooldown required when MaxOTPRequests > 0")
	}
	return nil
}

// accessTTL resolves the configured access lifetime in seconds.
func (c Config) accessTTL() time.Duration {
	return time.Duration(duration.ParseDefault(c.JWT.AccessTTL, 15*60)) * time.Second
}

// refreshTTL resolves the configured refresh lifetime in seconds.
func (c Config) refreshTTL() time.Duration {
	return time.Duration(duration.Parse(c.JWT.RefreshTTL)) * time.Second
}

func cloneConfig(c Config) Config {
	// All fields are value types; a shallow copy is a deep copy.
	return c
}

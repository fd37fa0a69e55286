package tshopbe

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/taiphan74/tshop-be/internal/audit"
	"github.com/taiphan74/tshop-be/internal/rate"
	"github.com/taiphan74/tshop-be/logging"
	"github.com/taiphan74/tshop-be/mail"
	"github.com/taiphan74/tshop-be/otp"
	"github.com/taiphan74/tshop-be/password"
	"github.com/taiphan74/tshop-be/session"
	"github.com/taiphan74/tshop-be/token"
)

// Builder assembles an [Engine]. Configure it, then call Build exactly once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	users  UserDirectory
	mailer Mailer
	log    logging.Logger
	sink   AuditSink

	built bool
}

// New starts a builder with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client. Required.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserDirectory sets the account backend. Required.
func (b *Builder) WithUserDirectory(users UserDirectory) *Builder {
	b.users = users
	return b
}

// WithMailer sets the outbound mail collaborator. Required when any OTP
// flow is used; defaults to the noop mailer otherwise.
func (b *Builder) WithMailer(m Mailer) *Builder {
	b.mailer = m
	return b
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func (b *Builder) WithLogger(l logging.Logger) *Builder {
	b.log = l
	return b
}

// WithAuditSink sets the audit sink and turns auditing on.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, wires the collaborators, and returns
// the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.users == nil {
		return nil, errors.New("user directory required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	codec, err := token.NewCodec(token.Config{
		AccessSecret:  []byte(cfg.JWT.AccessSecret),
		AccessTTL:     cfg.accessTTL(),
		RefreshSecret: []byte(cfg.JWT.RefreshSecret),
		RefreshTTL:    cfg.refreshTTL(),
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(cfg.Password.Cost)
	if err != nil {
		return nil, err
	}

	mailer := b.mailer
	if mailer == nil {
		mailer = mail.NewNoop()
	}

	log := b.log
	if log == nil {
		log = logging.NewSlogLogger(nil)
	}

	engine := &Engine{
		config:   cfg,
		codec:    codec,
		sessions: session.NewStore(b.redis, cfg.Session.RedisPrefix),
		otp: otp.NewChallenge(b.redis, mailer, otp.Config{
			Prefix:      cfg.Session.RedisPrefix,
			MaxAttempts: cfg.OTP.MaxAttempts,
		}),
		limiter: rate.New(b.redis, rate.Config{
			Prefix:           cfg.Session.RedisPrefix,
			MaxLoginFailures: cfg.Limiter.MaxLoginFailures,
			LoginCooldown:    cfg.Limiter.LoginCooldown,
			MaxOTPRequests:   cfg.Limiter.MaxOTPRequests,
			OTPCooldown:      cfg.Limiter.OTPCooldown,
		}),
		hasher:  hasher,
		users:   b.users,
		metrics: NewMetrics(cfg.Metrics),
		log:     log,
	}

	engine.audit = audit.NewDispatcher(audit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.sink)

	b.built = true

	return engine, nil
}

package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRateLimited is returned when a counter exceeds its budget.
var ErrRateLimited = errors.New("rate limited")

// ErrRedisUnavailable wraps transport-level Redis failures.
var ErrRedisUnavailable = errors.New("rate limiter redis unavailable")

// Config holds limiter tuning parameters.
type Config struct {
	// Prefix namespaces the counter keys.
	Prefix string
	// MaxLoginFailures before sign-in is refused for the identifier.
	MaxLoginFailures int
	// LoginCooldown is the fixed window for login failure counting.
	LoginCooldown time.Duration
	// MaxOTPRequests per identifier within OTPCooldown.
	MaxOTPRequests int
	// OTPCooldown is the fixed window for code issuance counting.
	OTPCooldown time.Duration
}

// Limiter enforces per-identifier budgets using Redis counters. A zero max
// disables the corresponding check.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a [Limiter] backed by the given Redis client.
func New(redisClient redis.UniversalClient, cfg Config) *Limiter {
	if cfg.Prefix == "" {
		cfg.Prefix = "tshop"
	}
	return &Limiter{redis: redisClient, config: cfg}
}

// CheckLogin reports whether the identifier is within its failed-login
// budget. Limiter store failures are reported so callers can decide whether
// to fail open.
func (l *Limiter) CheckLogin(ctx context.Context, identifier string) error {
	if l == nil || l.config.MaxLoginFailures <= 0 {
		return nil
	}
	return l.check(ctx, l.loginKey(identifier), l.config.MaxLoginFailures)
}

// RecordLoginFailure counts one failed sign-in for the identifier.
func (l *Limiter) RecordLoginFailure(ctx context.Context, identifier string) error {
	if l == nil || l.config.MaxLoginFailures <= 0 {
		return nil
	}
	_, err := l.increment(ctx, l.loginKey(identifier), l.config.LoginCooldown)
	return err
}

// ResetLogin clears the failed-login counter after a successful sign-in.
func (l *Limiter) ResetLogin(ctx context.Context, identifier string) error {
	if l == nil || l.config.MaxLoginFailures <= 0 {
		return nil
	}
	if err := l.redis.Del(ctx, l.loginKey(identifier)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// AllowOTPRequest counts one code-issuance request for the identifier and
// reports whether it is within budget.
func (l *Limiter) AllowOTPRequest(ctx context.Context, identifier string) error {
	if l == nil || l.config.MaxOTPRequests <= 0 {
		return nil
	}
	count, err := l.increment(ctx, l.otpKey(identifier), l.config.OTPCooldown)
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxOTPRequests) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) loginKey(identifier string) string {
	return l.config.Prefix + ":rl:login:" + identifier
}

func (l *Limiter) otpKey(identifier string) string {
	return l.config.Prefix + ":rl:otp:" + identifier
}

func (l *Limiter) check(ctx context.Context, key string, max int) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(max) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	// Fixed-window semantics: the TTL is set only by the first hit.
	if count == 1 {
		if err := l.redis.Expire(ctx, key, window).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	return count, nil
}

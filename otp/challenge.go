package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taiphan74/tshop-be/internal"
)

// Reason scopes a code to the flow that requested it. Codes issued for one
// reason never verify under another.
type Reason string

const (
	// ReasonVerifyEmail tags codes sent to confirm ownership of an address.
	ReasonVerifyEmail Reason = "verify_email"
	// ReasonForgotPassword tags codes sent for password reset.
	ReasonForgotPassword Reason = "forgot_password"
)

// ErrRedisUnavailable wraps transport-level Redis failures. Issue treats
// them as fatal: a code that was never recorded must not be delivered.
var ErrRedisUnavailable = errors.New("otp redis unavailable")

// ErrMailUnavailable wraps delivery failures from the mail collaborator.
var ErrMailUnavailable = errors.New("otp mail delivery failed")

// Mailer is the outbound-mail collaborator consumed by [Challenge].
type Mailer interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// record is the stored challenge state.
type record struct {
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expires_at"`
	Attempts  int    `json:"attempts"`
}

// consumeLua performs GET→expiry check→compare→DEL (or attempt bump) in one
// atomic step so two concurrent verifications cannot both consume the code.
//
//	KEYS[1] = record key
//	ARGV[1] = provided code
//	ARGV[2] = current unix timestamp
//	ARGV[3] = max attempts (0 disables the cap)
var consumeLua = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
  return {err='not_found'}
end

local rec = cjson.decode(data)

if tonumber(ARGV[2]) > tonumber(rec.expires_at) then
  redis.call('DEL', KEYS[1])
  return {err='expired'}
end

if rec.code ~= ARGV[1] then
  rec.attempts = (tonumber(rec.attempts) or 0) + 1
  local max = tonumber(ARGV[3])
  if max > 0 and rec.attempts >= max then
    redis.call('DEL', KEYS[1])
    return {err='attempts_exceeded'}
  end
  local ttl = redis.call('PTTL', KEYS[1])
  if ttl <= 0 then
    redis.call('DEL', KEYS[1])
    return {err='expired'}
  end
  redis.call('SET', KEYS[1], cjson.encode(rec), 'PX', ttl)
  return {err='mismatch'}
end

redis.call('DEL', KEYS[1])
return 1
`)

// Config tunes challenge behavior.
type Config struct {
	// Prefix namespaces the Redis keys. Empty defaults to "tshop".
	Prefix string
	// MaxAttempts burns a record after this many wrong codes. Zero
	// disables the cap (retries allowed until expiry).
	MaxAttempts int
}

// Challenge generates, stores, delivers, and verifies one-time codes.
type Challenge struct {
	redis  redis.UniversalClient
	mailer Mailer
	config Config

	// now is swappable for expiry tests.
	now func() time.Time
}

// NewChallenge creates a [Challenge] backed by the given Redis client and
// mail collaborator.
func NewChallenge(redisClient redis.UniversalClient, mailer Mailer, cfg Config) *Challenge {
	if cfg.Prefix == "" {
		cfg.Prefix = "tshop"
	}
	return &Challenge{
		redis:  redisClient,
		mailer: mailer,
		config: cfg,
		now:    time.Now,
	}
}

func (c *Challenge) key(identity string, reason Reason) string {
	return c.config.Prefix + ":otp:" + string(reason) + ":" + identity
}

// Issue generates a fresh code, stores it with the given TTL (replacing any
// outstanding code for the pair), then delivers it by mail. A store failure
// aborts before delivery; an unrecorded code is useless to the recipient.
func (c *Challenge) Issue(ctx context.Context, identity string, reason Reason, ttl time.Duration) error {
	code, err := internal.NewOTPCode()
	if err != nil {
		return err
	}

	rec := record{
		Code:      code,
		ExpiresAt: c.now().Add(ttl).Unix(),
	}
	encoded, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	if err := c.redis.Set(ctx, c.key(identity, reason), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	minutes := int(ttl / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	subject, text, html := composeMail(reason, code, minutes)
	if err := c.mailer.Send(ctx, identity, subject, text, html); err != nil {
		return fmt.Errorf("%w: %v", ErrMailUnavailable, err)
	}

	return nil
}

// Verify consumes the outstanding code for (identity, reason). It returns
// true only for a correct, unexpired code, which is deleted in the same
// step. A wrong code leaves the record in place (minus one attempt);
// absence, expiry, and an exhausted attempt budget all return false.
func (c *Challenge) Verify(ctx context.Context, identity string, reason Reason, code string) (bool, error) {
	err := consumeLua.Run(ctx, c.redis,
		[]string{c.key(identity, reason)},
		code,
		c.now().Unix(),
		c.config.MaxAttempts,
	).Err()
	if err == nil {
		return true, nil
	}

	switch err.Error() {
	case "not_found", "expired", "mismatch", "attempts_exceeded":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
}

// HasActive reports whether an unexpired code is outstanding for the pair,
// without consuming it. A record past its embedded expiry is deleted.
func (c *Challenge) HasActive(ctx context.Context, identity string, reason Reason) (bool, error) {
	data, err := c.redis.Get(ctx, c.key(identity, reason)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		_ = c.redis.Del(ctx, c.key(identity, reason)).Err()
		return false, nil
	}

	if c.now().Unix() > rec.ExpiresAt {
		_ = c.redis.Del(ctx, c.key(identity, reason)).Err()
		return false, nil
	}

	return true, nil
}

// Clear removes any outstanding code for the pair.
func (c *Challenge) Clear(ctx context.Context, identity string, reason Reason) error {
	if err := c.redis.Del(ctx, c.key(identity, reason)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func composeMail(reason Reason, code string, minutes int) (subject, text, html string) {
	switch reason {
	case ReasonForgotPassword:
		subject = "Your password reset code"
	default:
		subject = "Your verification code"
	}

	text = fmt.Sprintf("Your one-time code is: %s. It expires in %d minutes.", code, minutes)
	html = fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <p>Your one-time code is:</p>
  <div style="font-size: 24px; font-weight: bold; text-align: center; padding: 16px; border: 2px solid #007bff; border-radius: 5px;">%s</div>
  <p>This code expires in <strong>%d minutes</strong>.</p>
  <p>If you did not request it, please ignore this email.</p>
</div>`, code, minutes)

	return subject, text, html
}

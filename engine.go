package tshopbe

import (
	"context"
	"errors"
	"time"

	"github.com/taiphan74/tshop-be/internal/audit"
	"github.com/taiphan74/tshop-be/internal/rate"
	"github.com/taiphan74/tshop-be/logging"
	"github.com/taiphan74/tshop-be/otp"
	"github.com/taiphan74/tshop-be/password"
	"github.com/taiphan74/tshop-be/session"
	"github.com/taiphan74/tshop-be/token"
)

// Engine is the authentication core. Construct it with the builder; all
// methods are safe for concurrent use once built.
type Engine struct {
	config Config

	codec    *token.Codec
	sessions *session.Store
	otp      *otp.Challenge
	limiter  *rate.Limiter
	hasher   *password.Hasher
	users    UserDirectory

	audit   *audit.Dispatcher
	metrics *Metrics
	log     logging.Logger
}

// Close flushes the async audit dispatcher. The engine must not be used
// afterwards.
func (e *Engine) Close() {
	e.audit.Close()
}

// Metrics returns the engine's counter set for host-side export.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// MetricsSnapshot copies all counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// VerifyAccess validates an access token and returns the identity it
// carries. Hosts call this from their route guards; an expired token is
// reported distinctly so clients know to refresh.
func (e *Engine) VerifyAccess(tokenStr string) (token.Identity, error) {
	claims, err := e.codec.VerifyAccess(tokenStr)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return token.Identity{}, ErrTokenExpired
		}
		return token.Identity{}, ErrTokenSignature
	}
	return claims.Identity(), nil
}

// RefreshTTLSeconds is the configured refresh-token lifetime in seconds,
// exposed for cookie max-age plumbing.
func (e *Engine) RefreshTTLSeconds() int64 {
	return int64(e.config.refreshTTL() / time.Second)
}

// storeCtx bounds a Redis call with the configured store timeout.
func (e *Engine) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.config.Session.StoreTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.config.Session.StoreTimeout)
}

// otpCtx bounds an Issue call by the store timeout plus the mail send
// timeout, covering both halves of code delivery.
func (e *Engine) otpCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	budget := e.config.Session.StoreTimeout + e.config.Mail.SendTimeout
	if budget <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, budget)
}

func (e *Engine) metricInc(id MetricID) {
	e.metrics.Inc(id)
}

// emitAudit queues one event. The metadata closure only runs when auditing
// is enabled.
func (e *Engine) emitAudit(ctx context.Context, eventType, userID, email string, success bool, cause error, metadata func() map[string]string) {
	if e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		Success:   success,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(ctx, event)
}

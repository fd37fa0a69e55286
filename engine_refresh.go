package tshopbe

import (
	"context"
	"errors"

	"github.com/taiphan74/tshop-be/session"
)

// Refresh rotates the presented refresh token for a fresh pair. Every
// token-related failure reports [ErrRefreshInvalid]: signature, expiry,
// no stored session, and a stale (already rotated) token are all the same
// answer, so a probing caller learns nothing about why. Infrastructure
// failures report [ErrStoreUnavailable] instead; that distinction maps to
// 401 vs 503 at the boundary, not to token state.
//
// Rotation is a store-side compare-and-set: of N concurrent refreshes with
// the same token, exactly one wins and the rest see reuse.
func (e *Engine) Refresh(ctx context.Context, presented string) (*TokenPair, error) {
	if e.codec == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.codec.VerifyRefresh(presented)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefresh, "", "", false, err, nil)
		e.log.Info(ctx, "refresh rejected", "cause", err)
		return nil, ErrRefreshInvalid
	}

	id := claims.Identity()

	accessToken, err := e.codec.SignAccess(id)
	if err != nil {
		return nil, err
	}
	nextRefresh, err := e.codec.SignRefresh(id)
	if err != nil {
		return nil, err
	}

	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	err = e.sessions.Rotate(sctx, id.Subject, presented, nextRefresh, e.config.refreshTTL())
	switch {
	case err == nil:
	case errors.Is(err, session.ErrSessionNotFound):
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefresh, id.Subject, id.Email, false, ErrTokenNotFound, nil)
		e.log.Info(ctx, "refresh rejected", "user_id", id.Subject, "cause", "no stored session")
		return nil, ErrRefreshInvalid
	case errors.Is(err, session.ErrTokenMismatch):
		e.metricInc(MetricRefreshReuseDetected)
		e.emitAudit(ctx, auditEventRefreshReuse, id.Subject, id.Email, false, ErrTokenMismatch, nil)
		e.log.Warn(ctx, "refresh token reuse detected", "user_id", id.Subject)
		return nil, ErrRefreshInvalid
	default:
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefresh, id.Subject, id.Email, true, nil, nil)

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: nextRefresh,
	}, nil
}

// Logout revokes the session named by the presented refresh token. The
// token is parsed without verification so even an expired or garbled one
// still clears what it can, and every failure is swallowed: logout must
// never strand a user in a signed-in state on screen. Callers clear the
// cookie unconditionally via [ClearRefreshCookie].
func (e *Engine) Logout(ctx context.Context, presented string) {
	e.metricInc(MetricLogout)

	claims, err := e.codec.DecodeUnverified(presented)
	if err != nil || claims.Subject == "" {
		e.emitAudit(ctx, auditEventLogout, "", "", true, nil, nil)
		return
	}

	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	if err := e.sessions.Delete(sctx, claims.Subject); err != nil {
		e.log.Warn(ctx, "logout session delete failed", "user_id", claims.Subject, "err", err)
	}
	e.emitAudit(ctx, auditEventLogout, claims.Subject, claims.Email, true, nil, nil)
}

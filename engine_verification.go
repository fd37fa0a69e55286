package tshopbe

import (
	"context"
	"errors"
	"time"

	"github.com/taiphan74/tshop-be/internal/rate"
	"github.com/taiphan74/tshop-be/otp"
)

// SendVerification emails a verification code with the default lifetime.
func (e *Engine) SendVerification(ctx context.Context, email string) error {
	return e.SendVerificationTTL(ctx, email, e.config.OTP.DefaultTTLMinutes)
}

// SendVerificationTTL emails a verification code that lives for the given
// number of minutes, clamped to [1, OTP.MaxTTLMinutes].
func (e *Engine) SendVerificationTTL(ctx context.Context, email string, minutes int) error {
	if minutes < 1 {
		minutes = e.config.OTP.DefaultTTLMinutes
	}
	if minutes > e.config.OTP.MaxTTLMinutes {
		minutes = e.config.OTP.MaxTTLMinutes
	}
	return e.issueOtp(ctx, email, OtpVerifyEmail, time.Duration(minutes)*time.Minute)
}

// ConfirmVerification consumes the outstanding verification code and, on a
// match, marks the address verified. The returned flag reports whether the
// code was consumed.
func (e *Engine) ConfirmVerification(ctx context.Context, email, code string) (bool, error) {
	ok, err := e.verifyOtp(ctx, email, OtpVerifyEmail, code)
	if err != nil || !ok {
		return ok, err
	}

	if err := e.users.SetEmailVerified(ctx, email, true); err != nil {
		return false, err
	}

	e.emitAudit(ctx, auditEventOtpVerified, "", email, true, nil, func() map[string]string {
		return map[string]string{"reason": string(OtpVerifyEmail)}
	})
	return true, nil
}

// HasActiveOtp reports whether an unexpired code is outstanding for the
// address and reason, without consuming it.
func (e *Engine) HasActiveOtp(ctx context.Context, email string, reason OtpReason) (bool, error) {
	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	active, err := e.otp.HasActive(sctx, email, reason)
	if err != nil {
		return false, errors.Join(ErrStoreUnavailable, err)
	}
	return active, nil
}

// ClearOtp drops any outstanding code for the address and reason.
func (e *Engine) ClearOtp(ctx context.Context, email string, reason OtpReason) error {
	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	if err := e.otp.Clear(sctx, email, reason); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// issueOtp throttles, generates, stores, and mails one code. Unlike session
// writes there is no fail-open option: a code that was not stored or not
// delivered helps nobody.
func (e *Engine) issueOtp(ctx context.Context, email string, reason OtpReason, ttl time.Duration) error {
	if e.otp == nil {
		return ErrEngineNotReady
	}

	sctx, cancel := e.storeCtx(ctx)
	err := e.limiter.AllowOTPRequest(sctx, email)
	cancel()
	if err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			e.metricInc(MetricOtpRateLimited)
			e.emitAudit(ctx, auditEventRateLimited, "", email, false, ErrOtpRateLimited, func() map[string]string {
				return map[string]string{"kind": "otp", "reason": string(reason)}
			})
			return ErrOtpRateLimited
		}
		e.log.Warn(ctx, "otp limiter unavailable", "email", email, "err", err)
	}

	octx, cancel := e.otpCtx(ctx)
	defer cancel()

	if err := e.otp.Issue(octx, email, reason, ttl); err != nil {
		e.emitAudit(ctx, auditEventOtpIssued, "", email, false, err, func() map[string]string {
			return map[string]string{"reason": string(reason)}
		})
		switch {
		case errors.Is(err, otp.ErrRedisUnavailable):
			return errors.Join(ErrStoreUnavailable, err)
		case errors.Is(err, otp.ErrMailUnavailable):
			return errors.Join(ErrMailUnavailable, err)
		default:
			return err
		}
	}

	e.metricInc(MetricOtpIssued)
	e.emitAudit(ctx, auditEventOtpIssued, "", email, true, nil, func() map[string]string {
		return map[string]string{"reason": string(reason)}
	})
	return nil
}

// verifyOtp consumes one code attempt. False with a nil error means the
// code did not verify; the caller does not learn whether it was absent,
// expired, wrong, or over the attempt cap.
func (e *Engine) verifyOtp(ctx context.Context, email string, reason OtpReason, code string) (bool, error) {
	if e.otp == nil {
		return false, ErrEngineNotReady
	}

	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	ok, err := e.otp.Verify(sctx, email, reason, code)
	if err != nil {
		return false, errors.Join(ErrStoreUnavailable, err)
	}
	if !ok {
		e.metricInc(MetricOtpFailed)
		e.emitAudit(ctx, auditEventOtpFailed, "", email, false, ErrOtpInvalidOrExpired, func() map[string]string {
			return map[string]string{"reason": string(reason)}
		})
		return false, nil
	}

	e.metricInc(MetricOtpVerified)
	return true, nil
}

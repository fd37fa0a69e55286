package tshopbe

import (
	"context"
	"errors"
)

// ForgotPassword emails a password-reset code. Unlike the other flows this
// one confirms account existence: an unknown address returns
// [ErrUserNotFound], matching the behavior clients already depend on.
func (e *Engine) ForgotPassword(ctx context.Context, email string) error {
	if e.users == nil {
		return ErrEngineNotReady
	}

	if _, err := e.users.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	return e.issueOtp(ctx, email, OtpForgotPassword, e.defaultOtpTTL())
}

// ResetPassword consumes the outstanding reset code and, on a match, hashes
// and stores the new password. The returned flag reports whether the code
// was consumed.
func (e *Engine) ResetPassword(ctx context.Context, email, code, newPassword string) (bool, error) {
	if e.users == nil || e.hasher == nil {
		return false, ErrEngineNotReady
	}
	if newPassword == "" {
		return false, ErrInvalidCredentials
	}

	ok, err := e.verifyOtp(ctx, email, OtpForgotPassword, code)
	if err != nil || !ok {
		return ok, err
	}

	hash, err := e.hasher.Hash(newPassword)
	if err != nil {
		return false, err
	}
	if err := e.users.SetPasswordHash(ctx, email, hash); err != nil {
		return false, err
	}

	e.emitAudit(ctx, auditEventPasswordReset, "", email, true, nil, nil)
	return true, nil
}

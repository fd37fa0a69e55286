package tshopbe

import (
	"context"
	"errors"
	"time"

	"github.com/taiphan74/tshop-be/internal/rate"
	"github.com/taiphan74/tshop-be/token"
)

// Signup creates an account and signs the user in. A verification code is
// sent to the address best-effort: a mail or store hiccup there must not
// lose an account that was already created.
func (e *Engine) Signup(ctx context.Context, email, passwordPlain string) (*SignupResult, error) {
	if e.users == nil {
		return nil, ErrEngineNotReady
	}
	if email == "" || passwordPlain == "" {
		return nil, ErrInvalidCredentials
	}

	created, err := e.users.Create(ctx, email, passwordPlain)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyRegistered) {
			e.metricInc(MetricSignupDuplicate)
			e.emitAudit(ctx, auditEventSignup, "", email, false, err, nil)
			return nil, ErrEmailAlreadyRegistered
		}
		e.emitAudit(ctx, auditEventSignup, "", email, false, err, nil)
		return nil, err
	}

	if issueErr := e.issueOtp(ctx, email, OtpVerifyEmail, e.defaultOtpTTL()); issueErr != nil {
		// The account exists; verification can be re-requested later.
		e.log.Warn(ctx, "signup verification code not sent", "email", email, "err", issueErr)
	}

	pair, err := e.issuePair(ctx, created)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricSignupSuccess)
	e.emitAudit(ctx, auditEventSignup, created.ID, created.Email, true, nil, nil)

	return &SignupResult{
		User:   created.Sanitized(),
		Tokens: *pair,
	}, nil
}

// Signin verifies the credentials and issues a token pair. Unknown email
// and wrong password are the same failure to the caller.
func (e *Engine) Signin(ctx context.Context, email, passwordPlain string) (*TokenPair, error) {
	if e.users == nil {
		return nil, ErrEngineNotReady
	}

	if err := e.checkLoginBudget(ctx, email); err != nil {
		return nil, err
	}

	user, err := e.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.recordLoginFailure(ctx, email)
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, auditEventSignin, "", email, false, ErrInvalidCredentials, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !e.users.VerifyPassword(passwordPlain, user.PasswordHash) {
		e.recordLoginFailure(ctx, email)
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventSignin, user.ID, email, false, ErrInvalidCredentials, nil)
		return nil, ErrInvalidCredentials
	}

	e.resetLoginBudget(ctx, email)

	pair, err := e.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventSignin, user.ID, email, true, nil, nil)

	return pair, nil
}

// issuePair signs a fresh access/refresh pair and records the refresh token
// as the user's single active session. The write failure policy is
// configurable: fail-open returns the pair anyway, fail-closed reports
// ErrStoreUnavailable.
func (e *Engine) issuePair(ctx context.Context, user UserRecord) (*TokenPair, error) {
	id := token.Identity{
		Subject: user.ID,
		Email:   user.Email,
		Role:    user.Role,
	}

	accessToken, err := e.codec.SignAccess(id)
	if err != nil {
		return nil, err
	}
	refreshToken, err := e.codec.SignRefresh(id)
	if err != nil {
		return nil, err
	}

	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	if err := e.sessions.Put(sctx, user.ID, refreshToken, e.config.refreshTTL()); err != nil {
		e.emitAudit(ctx, auditEventSessionWriteFailed, user.ID, user.Email, false, err, nil)
		if !e.config.Session.FailOpenWrites {
			return nil, errors.Join(ErrStoreUnavailable, err)
		}
		e.metricInc(MetricSessionFailOpen)
		e.log.Warn(ctx, "session write failed, returning tokens anyway",
			"user_id", user.ID, "err", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (e *Engine) defaultOtpTTL() time.Duration {
	return time.Duration(e.config.OTP.DefaultTTLMinutes) * time.Minute
}

// checkLoginBudget refuses the sign-in when the address has burned its
// failed-attempt budget. A limiter store outage fails open; the password
// check still stands between the caller and a session.
func (e *Engine) checkLoginBudget(ctx context.Context, email string) error {
	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	err := e.limiter.CheckLogin(sctx, email)
	if err == nil {
		return nil
	}
	if errors.Is(err, rate.ErrRateLimited) {
		e.metricInc(MetricLoginRateLimited)
		e.emitAudit(ctx, auditEventRateLimited, "", email, false, ErrLoginRateLimited, func() map[string]string {
			return map[string]string{"kind": "login"}
		})
		return ErrLoginRateLimited
	}
	e.log.Warn(ctx, "login limiter unavailable", "email", email, "err", err)
	return nil
}

func (e *Engine) recordLoginFailure(ctx context.Context, email string) {
	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	if err := e.limiter.RecordLoginFailure(sctx, email); err != nil {
		e.log.Warn(ctx, "login failure not recorded", "email", email, "err", err)
	}
}

func (e *Engine) resetLoginBudget(ctx context.Context, email string) {
	sctx, cancel := e.storeCtx(ctx)
	defer cancel()

	if err := e.limiter.ResetLogin(sctx, email); err != nil {
		e.log.Warn(ctx, "login counter not reset", "email", email, "err", err)
	}
}

package tshopbe

import "errors"

var (
	// ErrInvalidCredentials is returned by Signin for an unknown email or a
	// wrong password. The two causes are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenExpired is returned when a verified token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenSignature is returned when a token fails signature checks.
	ErrTokenSignature = errors.New("token signature invalid")
	// ErrTokenNotFound is returned when no stored refresh token exists for
	// the user.
	ErrTokenNotFound = errors.New("refresh token not found")
	// ErrTokenMismatch is returned when the presented refresh token is not
	// the stored one.
	ErrTokenMismatch = errors.New("refresh token mismatch")
	// ErrRefreshInvalid is the single outcome Refresh reports for every
	// token-related failure. The underlying cause is logged and audited but
	// never exposed to callers.
	ErrRefreshInvalid = errors.New("invalid refresh token")
	// ErrOtpInvalidOrExpired is returned when a one-time code does not
	// verify, without saying why.
	ErrOtpInvalidOrExpired = errors.New("otp invalid or expired")
	// ErrOtpRateLimited is returned when code issuance for an address
	// exceeds its budget.
	ErrOtpRateLimited = errors.New("otp requests rate limited")
	// ErrLoginRateLimited is returned when an address has accumulated too
	// many failed sign-ins within the cooldown window.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrUserNotFound is returned by ForgotPassword for an unknown email.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailAlreadyRegistered is returned by Signup for a taken email.
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	// ErrStoreUnavailable is returned when Redis cannot be reached and the
	// operation cannot proceed without it.
	ErrStoreUnavailable = errors.New("session store unavailable")
	// ErrMailUnavailable is returned when a one-time code could not be
	// delivered.
	ErrMailUnavailable = errors.New("mail delivery unavailable")
	// ErrEngineNotReady is returned when an Engine method is called before
	// Build wired the required collaborators.
	ErrEngineNotReady = errors.New("engine not initialized")
)

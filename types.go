package tshopbe

import (
	"context"
	"time"

	"github.com/taiphan74/tshop-be/otp"
)

// OtpReason scopes a one-time code to the flow that requested it.
type OtpReason = otp.Reason

const (
	// OtpVerifyEmail tags codes that confirm ownership of an address.
	OtpVerifyEmail = otp.ReasonVerifyEmail
	// OtpForgotPassword tags codes issued for password reset.
	OtpForgotPassword = otp.ReasonForgotPassword
)

// UserRecord is the engine's view of a user account. The engine never sees
// the password itself after hashing; PasswordHash is whatever the directory
// stored at creation time.
type UserRecord struct {
	ID            string
	Email         string
	Role          string
	PasswordHash  string
	EmailVerified bool
	CreatedAt     time.Time
}

// Sanitized returns a copy safe to hand to callers, with the password hash
// removed.
func (u UserRecord) Sanitized() UserRecord {
	u.PasswordHash = ""
	return u
}

// UserDirectory is the account backend the engine delegates identity and
// password storage to. Implementations decide the persistence model; the
// engine only requires the operations below.
//
// FindByEmail must return [ErrUserNotFound] for an unknown address.
// Create must return [ErrEmailAlreadyRegistered] for a taken address.
type UserDirectory interface {
	Create(ctx context.Context, email, passwordPlain string) (UserRecord, error)
	FindByEmail(ctx context.Context, email string) (UserRecord, error)
	VerifyPassword(plain, hash string) bool
	SetEmailVerified(ctx context.Context, email string, verified bool) error
	SetPasswordHash(ctx context.Context, email, newHash string) error
}

// Mailer delivers outbound mail. See the mail package for SMTP and noop
// implementations.
type Mailer interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// TokenPair is one issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SignupResult is what Signup returns: the sanitized account plus its first
// token pair.
type SignupResult struct {
	User   UserRecord
	Tokens TokenPair
}

package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrExpired is returned when a token's embedded expiry is in the past.
var ErrExpired = errors.New("token expired")

// ErrSignature is returned when a token is tampered with, signed with the
// wrong secret, or otherwise fails to parse.
var ErrSignature = errors.New("token signature invalid")

// Identity is the credential payload embedded in both token classes.
// It is immutable once signed.
type Identity struct {
	Subject string
	Email   string
	Role    string
}

// Claims is the single tagged payload structure shared by access and
// refresh tokens.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Identity rebuilds the credential payload carried by the claims.
func (c *Claims) Identity() Identity {
	return Identity{
		Subject: c.Subject,
		Email:   c.Email,
		Role:    c.Role,
	}
}

// Config holds the per-class secrets and lifetimes.
type Config struct {
	AccessSecret  []byte
	AccessTTL     time.Duration
	RefreshSecret []byte
	RefreshTTL    time.Duration
}

// Codec signs and verifies access and refresh tokens.
type Codec struct {
	config Config
}

// NewCodec validates the configuration and returns a [Codec].
func NewCodec(cfg Config) (*Codec, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, errors.New("both token secrets are required")
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must differ")
	}
	// Negative TTLs are allowed: they mint already-expired tokens, which
	// tests rely on.
	return &Codec{config: cfg}, nil
}

// SignAccess issues an access token for the identity.
func (c *Codec) SignAccess(id Identity) (string, error) {
	return c.sign(id, c.config.AccessSecret, c.config.AccessTTL)
}

// SignRefresh issues a refresh token for the identity.
func (c *Codec) SignRefresh(id Identity) (string, error) {
	return c.sign(id, c.config.RefreshSecret, c.config.RefreshTTL)
}

// VerifyAccess parses and verifies an access token.
func (c *Codec) VerifyAccess(tokenStr string) (*Claims, error) {
	return c.verify(tokenStr, c.config.AccessSecret)
}

// VerifyRefresh parses and verifies a refresh token.
func (c *Codec) VerifyRefresh(tokenStr string) (*Claims, error) {
	return c.verify(tokenStr, c.config.RefreshSecret)
}

// DecodeUnverified extracts claims without checking signature or expiry.
// Logout uses it to recover a subject from tokens that would no longer
// verify; never trust its output for authentication.
func (c *Codec) DecodeUnverified(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (c *Codec) sign(id Identity, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: id.Email,
		Role:  id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			// The timestamps truncate to whole seconds, so without a unique
			// jti two tokens signed in the same second would be identical
			// and rotation could hand back the token it was asked to
			// replace.
			ID:        uuid.NewString(),
			Subject:   id.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (c *Codec) verify(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	tok, err := parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrSignature
	}
	if !tok.Valid {
		return nil, ErrSignature
	}

	return claims, nil
}

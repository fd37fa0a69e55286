// Package token signs and verifies the two JWT classes used by the engine:
// short-lived access tokens and long-lived refresh tokens. Each class is
// bound to its own HS256 secret so possession of one secret cannot forge
// the other class.
//
// # Architecture boundaries
//
// This package owns claim layout and signature verification only. It does
// NOT decide whether a refresh token is still the current one for its
// subject (that is the session store's job), and it performs no I/O.
package token

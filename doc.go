// Package tshopbe is the authentication core of the tshop backend: account
// signup and sign-in, JWT access/refresh token issuance with single-session
// rotation and reuse detection, and one-time-code email verification and
// password reset, all backed by Redis.
//
// The package is transport-agnostic. Construct an [Engine] through the
// builder:
//
//	engine, err := tshopbe.New().
//		WithConfig(cfg).
//		WithRedis(redisClient).
//		WithUserDirectory(users).
//		WithMailer(mailer).
//		Build()
//
// and call its operations from whatever HTTP (or other) layer you run. The
// only HTTP-shaped surface is the refresh cookie helpers, which encode the
// cookie contract the backend's clients rely on.
package tshopbe

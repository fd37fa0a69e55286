// Package rate provides Redis-backed fixed-window counters used to throttle
// sign-in attempts and one-time-code issuance per identifier.
package rate

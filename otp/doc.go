// Package otp issues and verifies time-boxed, single-use six-digit codes
// for email verification and password reset. Records live in Redis under
// "<prefix>:otp:<reason>:<identity>" with a TTL matching the code lifetime;
// at most one code is outstanding per (reason, identity), and a new request
// overwrites the previous one.
//
// Verification consumes atomically through a Lua script: a correct code
// deletes the record, a wrong one increments an attempt counter in place,
// and exceeding the attempt budget burns the record. The record also
// carries its own expiry timestamp, checked independently of the store TTL.
package otp

// Package audit provides asynchronous dispatch of structured authentication
// events (sign-up, sign-in, refresh, reuse detection, OTP lifecycle) to a
// pluggable sink. Emission never blocks the hot path: the dispatcher either
// buffers or drops, by configuration.
package audit

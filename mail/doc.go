// Package mail provides outbound-mail transports for one-time-code
// delivery: an SMTP client (STARTTLS by default, implicit TLS and cleartext
// optional) and a no-op transport for environments without a mail server.
package mail

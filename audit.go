package tshopbe

import (
	"io"

	"github.com/taiphan74/tshop-be/internal/audit"
)

// AuditEvent is one emitted audit record.
type AuditEvent = audit.Event

// AuditSink receives audit events from the engine's async dispatcher.
type AuditSink = audit.Sink

// NoOpAuditSink drops every event.
type NoOpAuditSink = audit.NoOpSink

// ChannelAuditSink buffers events in a channel for the host to drain.
type ChannelAuditSink = audit.ChannelSink

// JSONWriterAuditSink writes one JSON object per line to a writer.
type JSONWriterAuditSink = audit.JSONWriterSink

// NewChannelAuditSink creates a channel-backed sink with the given buffer.
func NewChannelAuditSink(buffer int) *ChannelAuditSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONWriterAuditSink creates a line-JSON sink writing to w.
func NewJSONWriterAuditSink(w io.Writer) *JSONWriterAuditSink {
	return audit.NewJSONWriterSink(w)
}

// Audit event types emitted by the engine.
const (
	auditEventSignup             = "signup"
	auditEventSignin             = "signin"
	auditEventRefresh            = "refresh"
	auditEventRefreshReuse       = "refresh_reuse_detected"
	auditEventLogout             = "logout"
	auditEventOtpIssued          = "otp_issued"
	auditEventOtpVerified        = "otp_verified"
	auditEventOtpFailed          = "otp_failed"
	auditEventPasswordReset      = "password_reset"
	auditEventSessionWriteFailed = "session_write_failed"
	auditEventRateLimited        = "rate_limited"
)

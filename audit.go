package hireauth

import (
	"io"

	internalaudit "github.com/hiredeck/hireauth/internal/audit"
)

// AuditEvent is a structured security event emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is an [AuditSink] that forwards events to a channel, dropping
// when the channel is full.
type ChannelSink = internalaudit.ChannelSink

// NewChannelSink creates a [ChannelSink] that sends to ch.
func NewChannelSink(ch chan<- AuditEvent) *ChannelSink {
	return internalaudit.NewChannelSink(ch)
}

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events, one per
// line, to an [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// Audit event types emitted by the engine.
const (
	AuditRegister        = "register"
	AuditRegisterFailure = "register_failure"
	AuditLogin           = "login"
	AuditLoginFailure    = "login_failure"
	AuditRefresh         = "refresh"
	AuditRefreshFailure  = "refresh_failure"
	AuditLogout          = "logout"
	AuditSessionEvicted  = "session_evicted"
	AuditSessionsRevoked = "sessions_revoked"
)

// Package hireauth is the authentication and session-management subsystem of
// the HireDeck recruiting marketplace: JWT access tokens, long-lived
// registered refresh sessions, and a fixed three-role authorization model
// (developer, organization, admin).
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// hireauth is the public surface. It exposes [Engine], [Builder], [Config],
// the [AccountStore] integration interface, and value types (Account,
// Principal, AuditEvent). Token signing lives in package token, the Redis
// session registry in package session, the HTTP surface in package httpapi,
// and the client-side single-flight refresh coordinator in package client.
//
// # Session model
//
// Access tokens are stateless 15-minute claims validated by signature and
// expiry alone; no registry lookup occurs on the hot path. Refresh tokens are
// 7-day claims that must additionally be present in the server-side session
// registry, which holds at most five sessions per account and evicts the
// oldest on overflow. Revoking a refresh session does not invalidate access
// tokens already issued from it; they age out on their own expiry. This is a
// documented property of the design, not a defect.
package hireauth

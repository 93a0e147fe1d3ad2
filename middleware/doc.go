// Package middleware exposes HTTP middleware adapters for authentication and
// role enforcement built on top of hireauth.Engine validation.
//
// # Guards
//
//   - [Authenticate] — verifies the bearer access token and injects the
//     resolved principal into the request context.
//   - [RequireRole] — rejects requests whose principal does not hold the
//     exact required role. Must run after [Authenticate].
//   - [Guard] — composes the two for the common case.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.Authenticate and Engine.Authorize.
package middleware

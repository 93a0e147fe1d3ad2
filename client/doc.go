// Package client provides an HTTP client wrapper that manages the access
// token and refresh session for callers of the auth API.
//
// # Behavior
//
//   - Outgoing requests get the current access token as a bearer header.
//   - A 401 response triggers a token refresh and exactly one retry.
//   - Concurrent 401s share a single in-flight refresh: the first caller
//     performs the network round trip, the rest wait and reuse its result.
//   - When the refresh itself fails the session is over: local state is
//     cleared, OnSessionExpired fires once, and every waiting caller gets
//     [ErrSessionExpired].
//
// Requests to the auth endpoints themselves are passed through untouched so
// a failing login can never recurse into a refresh.
package client

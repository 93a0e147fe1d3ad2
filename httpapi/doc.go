// Package httpapi exposes the authentication engine over HTTP.
//
// # Endpoints
//
//   - POST /auth/register — create an account, issue tokens.
//   - POST /auth/login    — verify credentials, issue tokens.
//   - POST /auth/refresh  — mint a new access token from the refresh cookie.
//   - POST /auth/logout   — revoke the presented session, clear the cookie.
//   - GET  /auth/me       — return the authenticated account.
//
// The refresh token travels in an httpOnly cookie; the access token is
// returned in the JSON body and presented back as an Authorization bearer
// header. Engine errors are mapped to HTTP statuses in one place, errorStatus.
package httpapi

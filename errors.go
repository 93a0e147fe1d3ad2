package hireauth

import "errors"

var (
	// ErrValidation reports malformed or incomplete input.
	ErrValidation = errors.New("invalid input")
	// ErrDuplicateEmail reports a registration attempt with an email that is
	// already taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials reports a failed login. Unknown email and wrong
	// password are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingToken reports a request without a bearer token.
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidOrExpiredToken reports a token that failed signature, expiry,
	// or session-registry checks. All refresh failure modes collapse to this
	// error so account existence is never leaked.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	// ErrInsufficientRole reports an authenticated principal whose role does
	// not match the route's required role.
	ErrInsufficientRole = errors.New("insufficient role")
	// ErrAccountNotFound reports a lookup for an account that does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrRegistryUnavailable reports a session-registry backend failure. It is
	// never folded into ErrInvalidOrExpiredToken: an infrastructure outage
	// must not read as a revoked session.
	ErrRegistryUnavailable = errors.New("session registry unavailable")
	// ErrEngineNotReady is returned when an Engine is used before Build.
	ErrEngineNotReady = errors.New("engine not initialized")
)

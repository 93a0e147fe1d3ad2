package hireauth

import "context"

// Authenticate resolves a bearer access token to a [Principal]. Validation is
// stateless: signature and expiry only, no registry lookup. An access token
// therefore outlives revocation of its refresh session by up to the access
// TTL; that window is part of the design.
func (e *Engine) Authenticate(_ context.Context, accessToken string) (Principal, error) {
	if err := e.ready(); err != nil {
		return Principal{}, err
	}
	if accessToken == "" {
		return Principal{}, ErrMissingToken
	}

	claims, err := e.tokens.ParseAccess(accessToken)
	if err != nil {
		return Principal{}, ErrInvalidOrExpiredToken
	}

	role := Role(claims.Role)
	if !role.Valid() {
		return Principal{}, ErrInvalidOrExpiredToken
	}

	return Principal{AccountID: claims.AccountID(), Role: role}, nil
}

// Authorize checks the principal's role against the required role. Exact
// equality only; there is no role hierarchy.
func (e *Engine) Authorize(p Principal, required Role) error {
	if p.Role != required {
		return ErrInsufficientRole
	}
	return nil
}

// CurrentAccount returns the principal's stored account with the password
// hash scrubbed. It reads fresh state from the store rather than trusting
// token claims alone.
func (e *Engine) CurrentAccount(ctx context.Context, p Principal) (Account, error) {
	if err := e.ready(); err != nil {
		return Account{}, err
	}

	account, err := e.accounts.GetAccountByID(ctx, p.AccountID)
	if err != nil {
		return Account{}, err
	}
	return scrub(account), nil
}

package hireauth

import (
	"context"
	"fmt"
)

// Logout revokes exactly the presented refresh session. It is deliberately
// tolerant: a missing, malformed, or already-revoked token is not an error,
// so a client can always complete a logout. Only a registry outage fails.
func (e *Engine) Logout(ctx context.Context, refreshToken string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if refreshToken == "" {
		return nil
	}

	claims, err := e.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil
	}

	if err := e.registry.Revoke(ctx, claims.AccountID(), refreshToken); err != nil {
		return fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}

	e.metricInc(MetricLogout)
	e.metricInc(MetricSessionRevoked)
	e.emitAudit(ctx, AuditLogout, Account{ID: claims.AccountID(), Role: Role(claims.Role)}, true, nil, nil)

	return nil
}

// RevokeAccountSessions removes every refresh session for an account. The
// marketplace calls this when an account is deleted; leaving sessions behind
// would let a deleted account keep refreshing until natural expiry.
func (e *Engine) RevokeAccountSessions(ctx context.Context, accountID string) error {
	if err := e.ready(); err != nil {
		return err
	}

	if err := e.registry.RevokeAll(ctx, accountID); err != nil {
		return fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}

	e.metricInc(MetricSessionRevoked)
	e.emitAudit(ctx, AuditSessionsRevoked, Account{ID: accountID}, true, nil, nil)

	return nil
}

package hireauth

import (
	"context"
	"errors"
	"fmt"
)

// Refresh validates a presented refresh token and mints a new access token.
//
// The protocol is: signature and expiry under the refresh secret, then
// account lookup, then session-registry membership. All three failure modes
// collapse to [ErrInvalidOrExpiredToken] so a caller cannot probe which
// accounts exist. Registry outages surface as [ErrRegistryUnavailable]
// instead.
//
// By default the presented refresh token is not rotated: Pair.Refresh is
// empty and the same token remains valid until logout, eviction, or natural
// expiry. With [SessionConfig.RotateOnRefresh] enabled, the presented
// session is revoked and Pair.Refresh carries its registered replacement.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if err := e.ready(); err != nil {
		return TokenPair{}, err
	}

	claims, err := e.tokens.ParseRefresh(refreshToken)
	if err != nil {
		e.refreshFailed(ctx, Account{}, "bad_token")
		return TokenPair{}, ErrInvalidOrExpiredToken
	}

	account, err := e.accounts.GetAccountByID(ctx, claims.AccountID())
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.refreshFailed(ctx, Account{ID: claims.AccountID()}, "unknown_account")
			return TokenPair{}, ErrInvalidOrExpiredToken
		}
		return TokenPair{}, err
	}

	ok, err := e.registry.Contains(ctx, account.ID, refreshToken)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	if !ok {
		e.refreshFailed(ctx, account, "not_registered")
		return TokenPair{}, ErrInvalidOrExpiredToken
	}

	// Role is read from the stored account, not the old claims, so role
	// changes take effect at the next refresh.
	access, err := e.tokens.MintAccess(account.ID, string(account.Role))
	if err != nil {
		return TokenPair{}, err
	}

	pair := TokenPair{Access: access}
	if e.config.Session.RotateOnRefresh {
		rotated, err := e.rotateRefresh(ctx, account, refreshToken)
		if err != nil {
			return TokenPair{}, err
		}
		pair.Refresh = rotated
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, AuditRefresh, account, true, nil, nil)

	return pair, nil
}

func (e *Engine) rotateRefresh(ctx context.Context, account Account, presented string) (string, error) {
	next, err := e.tokens.MintRefresh(account.ID, string(account.Role))
	if err != nil {
		return "", err
	}
	if err := e.registry.Revoke(ctx, account.ID, presented); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	if _, err := e.registry.Register(ctx, account.ID, next); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return next, nil
}

func (e *Engine) refreshFailed(ctx context.Context, account Account, reason string) {
	e.metricInc(MetricRefreshFailure)
	e.emitAudit(ctx, AuditRefreshFailure, account, false, ErrInvalidOrExpiredToken, map[string]string{"reason": reason})
}

package hireauth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Register creates a marketplace account and opens its first session.
// Email comparison is case-insensitive: addresses are normalized to lower
// case before storage and lookup. The returned account has its password
// hash scrubbed.
func (e *Engine) Register(ctx context.Context, input RegisterInput) (Account, TokenPair, error) {
	if err := e.ready(); err != nil {
		return Account{}, TokenPair{}, err
	}

	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	role := input.Role
	if role == "" {
		role = e.config.Account.DefaultRole
	}

	switch {
	case name == "":
		return Account{}, TokenPair{}, fmt.Errorf("%w: name is required", ErrValidation)
	case email == "":
		return Account{}, TokenPair{}, fmt.Errorf("%w: email is required", ErrValidation)
	case !validEmail(email):
		return Account{}, TokenPair{}, fmt.Errorf("%w: malformed email", ErrValidation)
	case len(input.Password) < e.config.Account.MinPasswordLength:
		return Account{}, TokenPair{}, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, e.config.Account.MinPasswordLength)
	case !role.Valid():
		return Account{}, TokenPair{}, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	hash, err := e.hasher.Hash(input.Password)
	if err != nil {
		return Account{}, TokenPair{}, err
	}

	account, err := e.accounts.CreateAccount(ctx, Account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			e.metricInc(MetricRegisterDuplicate)
			e.emitAudit(ctx, AuditRegisterFailure, Account{Email: email}, false, err, nil)
		}
		return Account{}, TokenPair{}, err
	}

	pair, err := e.issueSession(ctx, account)
	if err != nil {
		return Account{}, TokenPair{}, err
	}

	e.metricInc(MetricRegisterSuccess)
	e.emitAudit(ctx, AuditRegister, account, true, nil, nil)

	return scrub(account), pair, nil
}

// Login authenticates credentials and opens a session. Unknown email and
// wrong password both return [ErrInvalidCredentials].
func (e *Engine) Login(ctx context.Context, email, pass string) (Account, TokenPair, error) {
	if err := e.ready(); err != nil {
		return Account{}, TokenPair{}, err
	}

	email = normalizeEmail(email)
	if email == "" || pass == "" {
		return Account{}, TokenPair{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	account, err := e.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			e.metricInc(MetricLoginFailure)
			e.emitAudit(ctx, AuditLoginFailure, Account{Email: email}, false, ErrInvalidCredentials, map[string]string{"reason": "unknown_email"})
			return Account{}, TokenPair{}, ErrInvalidCredentials
		}
		return Account{}, TokenPair{}, err
	}

	ok, err := e.hasher.Verify(pass, account.PasswordHash)
	if err != nil || !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, AuditLoginFailure, account, false, ErrInvalidCredentials, map[string]string{"reason": "password_mismatch"})
		return Account{}, TokenPair{}, ErrInvalidCredentials
	}

	pair, err := e.issueSession(ctx, account)
	if err != nil {
		return Account{}, TokenPair{}, err
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, AuditLogin, account, true, nil, nil)

	return scrub(account), pair, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// Package postgres implements account persistence over PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hiredeck/hireauth"
)

// Store is a PostgreSQL-backed [hireauth.AccountStore]. The pool is owned by
// the caller; the store never closes it.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an existing pool.
func New(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, errors.New("postgres: nil pool")
	}
	return &Store{pool: pool}, nil
}

const createAccountSQL = `
INSERT INTO accounts (id, name, email, password_hash, role, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

func (s *Store) CreateAccount(ctx context.Context, account hireauth.Account) (hireauth.Account, error) {
	_, err := s.pool.Exec(ctx, createAccountSQL,
		account.ID, account.Name, account.Email, account.PasswordHash,
		string(account.Role), account.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return hireauth.Account{}, hireauth.ErrDuplicateEmail
		}
		return hireauth.Account{}, fmt.Errorf("postgres: create account: %w", err)
	}
	return account, nil
}

const selectAccountSQL = `
SELECT id, name, email, password_hash, role, created_at
FROM accounts `

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (hireauth.Account, error) {
	return s.scanAccount(s.pool.QueryRow(ctx, selectAccountSQL+`WHERE email = lower($1)`, email))
}

func (s *Store) GetAccountByID(ctx context.Context, id string) (hireauth.Account, error) {
	return s.scanAccount(s.pool.QueryRow(ctx, selectAccountSQL+`WHERE id = $1`, id))
}

// DeleteAccount removes an account row. Session revocation is the caller's
// job, via [hireauth.Engine.RevokeAccountSessions].
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return hireauth.ErrAccountNotFound
	}
	return nil
}

func (s *Store) scanAccount(row pgx.Row) (hireauth.Account, error) {
	var account hireauth.Account
	var role string
	err := row.Scan(&account.ID, &account.Name, &account.Email,
		&account.PasswordHash, &role, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return hireauth.Account{}, hireauth.ErrAccountNotFound
		}
		return hireauth.Account{}, fmt.Errorf("postgres: scan account: %w", err)
	}
	account.Role = hireauth.Role(role)
	return account, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

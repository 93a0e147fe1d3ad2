// Package inmem provides a map-backed AccountStore for tests, examples, and
// single-process development runs.
package inmem

import (
	"context"
	"strings"
	"sync"

	"github.com/hiredeck/hireauth"
)

// Store is an in-memory [hireauth.AccountStore]. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	byID    map[string]hireauth.Account
	byEmail map[string]string
}

// New returns an empty store.
func New() *Store {
	return &Store{
		byID:    make(map[string]hireauth.Account),
		byEmail: make(map[string]string),
	}
}

func (s *Store) CreateAccount(_ context.Context, account hireauth.Account) (hireauth.Account, error) {
	key := strings.ToLower(account.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[key]; taken {
		return hireauth.Account{}, hireauth.ErrDuplicateEmail
	}

	s.byID[account.ID] = account
	s.byEmail[key] = account.ID
	return account, nil
}

func (s *Store) GetAccountByEmail(_ context.Context, email string) (hireauth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return hireauth.Account{}, hireauth.ErrAccountNotFound
	}
	return s.byID[id], nil
}

func (s *Store) GetAccountByID(_ context.Context, id string) (hireauth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.byID[id]
	if !ok {
		return hireauth.Account{}, hireauth.ErrAccountNotFound
	}
	return account, nil
}

// DeleteAccount removes an account. The caller is responsible for cascading
// session revocation through [hireauth.Engine.RevokeAccountSessions].
func (s *Store) DeleteAccount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.byID[id]
	if !ok {
		return hireauth.ErrAccountNotFound
	}
	delete(s.byID, id)
	delete(s.byEmail, strings.ToLower(account.Email))
	return nil
}

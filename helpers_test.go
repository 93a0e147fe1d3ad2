package hireauth

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// memStore is a minimal in-process AccountStore for engine tests.
type memStore struct {
	mu      sync.RWMutex
	byID    map[string]Account
	byEmail map[string]string
}

func newMemStore() *memStore {
	return &memStore{
		byID:    make(map[string]Account),
		byEmail: make(map[string]string),
	}
}

func (s *memStore) CreateAccount(_ context.Context, account Account) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(account.Email)
	if _, taken := s.byEmail[key]; taken {
		return Account{}, ErrDuplicateEmail
	}
	s.byID[account.ID] = account
	s.byEmail[key] = account.ID
	return account, nil
}

func (s *memStore) GetAccountByEmail(_ context.Context, email string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return s.byID[id], nil
}

func (s *memStore) GetAccountByID(_ context.Context, id string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.byID[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return account, nil
}

func (s *memStore) deleteAccount(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if account, ok := s.byID[id]; ok {
		delete(s.byID, id)
		delete(s.byEmail, strings.ToLower(account.Email))
	}
}

func engineTestConfig() Config {
	cfg := DefaultConfig()
	cfg.Token.AccessSecret = []byte("test-access-secret-0123456789abc")
	cfg.Token.RefreshSecret = []byte("test-refresh-secret-0123456789ab")
	cfg.Token.Leeway = 0
	// Cheap argon2 parameters keep the suite fast.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Audit.Enabled = false
	return cfg
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *memStore) {
	t.Helper()
	return newTestEngineWithSink(t, cfg, nil)
}

func newTestEngineWithSink(t *testing.T, cfg Config, sink AuditSink) (*Engine, *memStore) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := newMemStore()
	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithAccountStore(store).
		WithAuditSink(sink).
		WithWarnLogger(t.Logf).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	return engine, store
}

func registerTestAccount(t *testing.T, engine *Engine, email string, role Role) (Account, TokenPair) {
	t.Helper()

	account, pair, err := engine.Register(context.Background(), RegisterInput{
		Name:     "Test Account",
		Email:    email,
		Password: "correct-horse",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("register %s failed: %v", email, err)
	}
	return account, pair
}

func loginN(t *testing.T, engine *Engine, email string, n int) []TokenPair {
	t.Helper()

	pairs := make([]TokenPair, 0, n)
	for i := 0; i < n; i++ {
		_, pair, err := engine.Login(context.Background(), email, "correct-horse")
		if err != nil {
			t.Fatalf("login %d failed: %v", i, err)
		}
		pairs = append(pairs, pair)
	}
	return pairs
}

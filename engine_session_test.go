package hireauth

import (
	"context"
	"errors"
	"testing"
)

func TestFiveDevicesHoldIndependentSessions(t *testing.T) {
	engine, _ := newTestEngine(t, engineTestConfig())
	ctx := context.Background()

	_, first := registerTestAccount(t, engine, "ada@example.com", RoleDeveloper)
	pairs := append([]TokenPair{first}, loginN(t, engine, "ada@example.com", 4)...)

	for i, pair := range pairs {
		if _, err := engine.Refresh(ctx, pair.Refresh); err != nil {
			t.Fatalf("device %d refresh failed: %v", i+1, err)
		}
	}
}

func TestSixthLoginEvictsOldestSession(t *testing.T) {
	engine, _ := newTestEngine(t, engineTestConfig())
	ctx := context.Background()

	_, device1 := registerTestAccount(t, engine, "ada@example.com", RoleDeveloper)
	later := loginN(t, engine, "ada@example.com", 5) // devices 2-6

	if _, err := engine.Refresh(ctx, device1.Refresh); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("evicted device-1 session should fail refresh, got %v", err)
	}
	for i, pair := range later {
		if _, err := engine.Refresh(ctx, pair.Refresh); err != nil {
			t.Fatalf("device %d should have survived eviction: %v", i+2, err)
		}
	}
}

func TestLogoutRevokesExactlyPresentedSession(t *testing.T) {
	engine, _ := newTestEngine(t, engineTestConfig())
	ctx := context.Background()

	registerTestAccount(t, engine, "ada@example.com", RoleDeveloper)
	pairs := loginN(t, engine, "ada@example.com", 2)

	if err := engine.Logout(ctx, pairs[0].Refresh); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	if _, err := engine.Refresh(ctx, pairs[0].Refresh); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("logged-out session should fail refresh, got %v", err)
	}
	if _, err := engine.Refresh(ctx, pairs[1].Refresh); err != nil {
		t.Fatalf("sibling session must survive logout: %v", err)
	}
}

func TestLogoutIsTolerant(t *testing.T) {
	engine, _ := newTestEngine(t, engineTestConfig())
	ctx := context.Background()

	if err := engine.Logout(ctx, ""); err != nil {
		t.Fatalf("empty-token logout errored: %v", err)
	}
	if err := engine.Logout(ctx, "garbage"); err != nil {
		t.Fatalf("garbage-token logout errored: %v", err)
	}

	registerTestAccount(t, engine, "ada@example.com", RoleDeveloper)
	pairs := loginN(t, engine, "ada@example.com", 1)
	if err := engine.Logout(ctx, pairs[0].Refresh); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	// Double logout of the same session is a no-op.
	if err := engine.Logout(ctx, pairs[0].Refresh); err != nil {
		t.Fatalf("repeat logout errored: %v", err)
	}
}

func TestRevokeAccountSessionsCascades(t *testing.T) {
	engine, store := newTestEngine(t, engineTestConfig())
	ctx := context.Background()

	account, _ := registerTestAccount(t, engine, "ada@example.com", RoleDeveloper)
	pairs := loginN(t, engine, "ada@example.com", 3)

	// Simulates upstream account deletion: store record gone, sessions revoked.
	store.deleteAccount(account.ID)
	if err := engine.RevokeAccountSessions(ctx, account.ID); err != nil {
		t.Fatalf("cascade revoke failed: %v", err)
	}

	for i, pair := range pairs {
		if _, err := engine.Refresh(ctx, pair.Refresh); !errors.Is(err, ErrInvalidOrExpiredToken) {
			t.Fatalf("session %d survived cascade revoke: %v", i, err)
		}
	}
}

func TestRefreshDoesNotRotateByDefault(t *testing.T) {
	engine, _ := newTestEngine(t, engineTestConfig())
	ctx := context.Background()

	_, pair := registerTestAccount(t, engine, "ada@example.com", RoleDeveloper)

	out, err := engine.Refresh(ctx, pair.Refresh)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if out.Refresh != "" {
		t.Fatalf("non-rotating refresh returned a new refresh token")
	}

	// The same refresh token stays valid and reusable.
	if _, err := engine.Refresh(ctx, pair.Refresh); err != nil {
		t.Fatalf("second refresh with same token failed: %v", err)
	}
}

func TestRotateOnRefreshExtensionPoint(t *testing.T) {
	cfg := engineTestConfig()
	cfg.Session.RotateOnRefresh = true
	engine, _ := newTestEngine(t, cfg)
	ctx := context.Background()

	_, pair := registerTestAccount(t, engine, "ada@example.com", RoleDeveloper)

	out, err := engine.Refresh(ctx, pair.Refresh)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if out.Refresh == "" || out.Refresh == pair.Refresh {
		t.Fatalf("rotation did not mint a replacement token")
	}

	if _, err := engine.Refresh(ctx, pair.Refresh); !errors.Is(err, ErrInvalidOrExpiredToken) {
		t.Fatalf("rotated-out token should be revoked, got %v", err)
	}
	if _, err := engine.Refresh(ctx, out.Refresh); err != nil {
		t.Fatalf("replacement token should be valid: %v", err)
	}
}

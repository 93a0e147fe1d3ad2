package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		AccessSecret:  []byte("access-secret-0123456789abcdef01"),
		RefreshSecret: []byte("refresh-secret-0123456789abcdef0"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		Issuer:        "hireauth-test",
	}
}

func TestNewManagerRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short access secret", func(c *Config) { c.AccessSecret = []byte("short") }},
		{"short refresh secret", func(c *Config) { c.RefreshSecret = []byte("short") }},
		{"identical secrets", func(c *Config) { c.RefreshSecret = c.AccessSecret }},
		{"zero access ttl", func(c *Config) { c.AccessTTL = 0 }},
		{"negative refresh ttl", func(c *Config) { c.RefreshTTL = -time.Hour }},
		{"excessive leeway", func(c *Config) { c.Leeway = time.Hour }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			if _, err := NewManager(cfg); err == nil {
				t.Fatalf("expected NewManager to reject config")
			}
		})
	}
}

func TestMintParseRoundTrip(t *testing.T) {
	m, err := NewManager(testConfig())
	if err != nil {
		t.Fatalf("manager init failed: %v", err)
	}

	access, err := m.MintAccess("acct-1", "developer")
	if err != nil {
		t.Fatalf("mint access failed: %v", err)
	}
	refresh, err := m.MintRefresh("acct-1", "developer")
	if err != nil {
		t.Fatalf("mint refresh failed: %v", err)
	}

	if parts := strings.Split(access, "."); len(parts) != 3 {
		t.Fatalf("access token is not a compact JWT: %q", access)
	}

	ac, err := m.ParseAccess(access)
	if err != nil {
		t.Fatalf("parse access failed: %v", err)
	}
	if ac.AccountID() != "acct-1" || ac.Role != "developer" {
		t.Fatalf("access claims lost fidelity: %+v", ac)
	}

	rc, err := m.ParseRefresh(refresh)
	if err != nil {
		t.Fatalf("parse refresh failed: %v", err)
	}
	if rc.AccountID() != "acct-1" || rc.Role != "developer" {
		t.Fatalf("refresh claims lost fidelity: %+v", rc)
	}
}

func TestCrossSecretRejection(t *testing.T) {
	m, err := NewManager(testConfig())
	if err != nil {
		t.Fatalf("manager init failed: %v", err)
	}

	access, _ := m.MintAccess("acct-1", "developer")
	refresh, _ := m.MintRefresh("acct-1", "developer")

	if _, err := m.ParseRefresh(access); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("access token accepted as refresh: %v", err)
	}
	if _, err := m.ParseAccess(refresh); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("refresh token accepted as access: %v", err)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	m, err := NewManager(testConfig())
	if err != nil {
		t.Fatalf("manager init failed: %v", err)
	}

	access, _ := m.MintAccess("acct-1", "developer")
	tampered := access[:len(access)-2] + "xx"
	if _, err := m.ParseAccess(tampered); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("tampered token accepted: %v", err)
	}

	if _, err := m.ParseAccess("not-a-token"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("garbage accepted: %v", err)
	}
}

func TestExpiryIsDeterministic(t *testing.T) {
	m, err := NewManager(testConfig())
	if err != nil {
		t.Fatalf("manager init failed: %v", err)
	}

	base := time.Now()
	m.now = func() time.Time { return base }

	access, _ := m.MintAccess("acct-1", "organization")
	refresh, _ := m.MintRefresh("acct-1", "organization")

	// One second before access expiry: still valid.
	m.now = func() time.Time { return base.Add(15*time.Minute - time.Second) }
	if _, err := m.ParseAccess(access); err != nil {
		t.Fatalf("access rejected before expiry: %v", err)
	}

	// Past access expiry: rejected; refresh still valid for days.
	m.now = func() time.Time { return base.Add(16 * time.Minute) }
	if _, err := m.ParseAccess(access); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expired access accepted: %v", err)
	}
	if _, err := m.ParseRefresh(refresh); err != nil {
		t.Fatalf("refresh rejected mid-lifetime: %v", err)
	}

	// Past refresh expiry.
	m.now = func() time.Time { return base.Add(7*24*time.Hour + time.Minute) }
	if _, err := m.ParseRefresh(refresh); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expired refresh accepted: %v", err)
	}
}

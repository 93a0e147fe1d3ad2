package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/hiredeck/hireauth"
	"github.com/hiredeck/hireauth/httpapi"
	"github.com/hiredeck/hireauth/store/inmem"
)

func newAuthAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := hireauth.DefaultConfig()
	cfg.Token.AccessSecret = []byte("test-access-secret-0123456789abc")
	cfg.Token.RefreshSecret = []byte("test-refresh-secret-0123456789ab")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Audit.Enabled = false

	engine, err := hireauth.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithAccountStore(inmem.New()).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	srv := httptest.NewServer(httpapi.NewServer(engine, httpapi.Config{}).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func TestCoordinatorAgainstRealAPI(t *testing.T) {
	srv := newAuthAPI(t)
	ctx := context.Background()

	c, err := New(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}

	if err := c.Register(ctx, "Ada", "ada@example.com", "correct-horse", "developer"); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if c.AccessToken() == "" {
		t.Fatal("register did not store an access token")
	}

	// Simulate an expired access token; the refresh cookie in the jar must
	// transparently renew the session on the retried request.
	c.SetAccessToken("no-longer-valid")

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/auth/me", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("me request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after transparent refresh, got %d", resp.StatusCode)
	}
	var account hireauth.Account
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		t.Fatalf("decode me response: %v", err)
	}
	if account.Email != "ada@example.com" {
		t.Fatalf("unexpected account: %+v", account)
	}

	// Logout ends the session server-side: the next stale-token request
	// cannot refresh and fails closed.
	if err := c.Logout(ctx); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	c.SetAccessToken("no-longer-valid")

	req, err = http.NewRequest(http.MethodGet, srv.URL+"/auth/me", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if _, err := c.Do(req); err == nil {
		t.Fatal("expected session-expired failure after logout")
	}
}

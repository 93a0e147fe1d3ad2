package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrSessionExpired reports that the refresh session is gone and the caller
// must log in again.
var ErrSessionExpired = errors.New("session expired")

// authEndpoints are passed through without token attachment or retry.
var authEndpoints = map[string]struct{}{
	"/auth/register": {},
	"/auth/login":    {},
	"/auth/refresh":  {},
	"/auth/logout":   {},
}

// Config configures a [Coordinator].
type Config struct {
	// BaseURL is the auth API origin, e.g. "https://api.hiredeck.io".
	BaseURL string
	// HTTPClient defaults to a client with a fresh cookie jar. The jar is
	// required: the refresh token travels as an httpOnly cookie.
	HTTPClient *http.Client
	// RefreshTimeout bounds a single refresh round trip. Defaults to 10s.
	RefreshTimeout time.Duration
	// OnSessionExpired fires once per session death, before waiting requests
	// are failed. Optional.
	OnSessionExpired func()
}

// Coordinator owns the access token and serializes refreshes. Safe for
// concurrent use.
type Coordinator struct {
	config Config
	http   *http.Client

	mu          sync.Mutex
	accessToken string

	refreshGroup singleflight.Group
	refreshes    atomic.Uint64
}

// New creates a coordinator. BaseURL must be non-empty.
func New(cfg Config) (*Coordinator, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("client: BaseURL is required")
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = 10 * time.Second
	}

	hc := cfg.HTTPClient
	if hc == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("client: cookie jar: %w", err)
		}
		hc = &http.Client{Jar: jar, Timeout: 30 * time.Second}
	}

	return &Coordinator{config: cfg, http: hc}, nil
}

// AccessToken returns the current access token, empty when logged out.
func (c *Coordinator) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

// Refreshes returns the number of refresh round trips performed. Shared
// single-flight refreshes count once.
func (c *Coordinator) Refreshes() uint64 {
	return c.refreshes.Load()
}

// SetAccessToken seeds the token, e.g. after an out-of-band login.
func (c *Coordinator) SetAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

// Do sends the request with the current access token attached. On a 401 it
// refreshes the token and retries exactly once. Requests to auth endpoints
// bypass both steps.
func (c *Coordinator) Do(req *http.Request) (*http.Response, error) {
	if _, passthrough := authEndpoints[req.URL.Path]; passthrough {
		return c.http.Do(req)
	}

	token := c.AccessToken()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	if req.Body != nil && req.GetBody == nil {
		// The body is consumed and cannot be replayed.
		return resp, nil
	}

	drain(resp)
	fresh, err := c.refresh(req.Context(), token)
	if err != nil {
		return nil, err
	}

	retry, err := cloneRequest(req)
	if err != nil {
		return nil, err
	}
	retry.Header.Set("Authorization", "Bearer "+fresh)
	return c.http.Do(retry)
}

// refresh obtains a new access token. All concurrent callers share one
// round trip through the singleflight group; a caller whose stale token was
// already replaced gets the stored token without any network traffic.
func (c *Coordinator) refresh(ctx context.Context, staleToken string) (string, error) {
	result, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		c.mu.Lock()
		current := c.accessToken
		c.mu.Unlock()
		if current != "" && current != staleToken {
			// Another caller already renewed the session.
			return current, nil
		}

		c.refreshes.Add(1)
		token, err := c.callRefresh(ctx)
		if err != nil {
			c.expireSession()
			return "", fmt.Errorf("%w: %v", ErrSessionExpired, err)
		}

		c.mu.Lock()
		c.accessToken = token
		c.mu.Unlock()
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Coordinator) callRefresh(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.RefreshTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/auth/refresh", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("refresh rejected: %s", resp.Status)
	}

	var body struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("refresh response: %w", err)
	}
	if body.AccessToken == "" {
		return "", errors.New("refresh response missing access token")
	}
	return body.AccessToken, nil
}

func (c *Coordinator) expireSession() {
	c.mu.Lock()
	c.accessToken = ""
	c.mu.Unlock()

	if c.config.OnSessionExpired != nil {
		c.config.OnSessionExpired()
	}
}

type credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type sessionResponse struct {
	AccessToken string `json:"accessToken"`
}

// Register creates an account and starts a session.
func (c *Coordinator) Register(ctx context.Context, name, email, password, role string) error {
	return c.startSession(ctx, "/auth/register", credentials{
		Name: name, Email: email, Password: password, Role: role,
	})
}

// Login starts a session with existing credentials.
func (c *Coordinator) Login(ctx context.Context, email, password string) error {
	return c.startSession(ctx, "/auth/login", credentials{Email: email, Password: password})
}

func (c *Coordinator) startSession(ctx context.Context, path string, creds credentials) error {
	buf, err := json.Marshal(creds)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("%s rejected: %s", path, resp.Status)
	}

	var body sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("%s response: %w", path, err)
	}
	c.SetAccessToken(body.AccessToken)
	return nil
}

// Logout ends the session on both sides. Local state is cleared even when
// the server call fails.
func (c *Coordinator) Logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/auth/logout", nil)
	if err != nil {
		return err
	}

	c.SetAccessToken("")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

func cloneRequest(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	return clone, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()
}

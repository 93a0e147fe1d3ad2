package token

import (
	"bytes"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const minSecretBytes = 32

// ErrTokenInvalid reports a token that failed signature, structure, or
// time-window validation. Callers get no finer-grained reason.
var ErrTokenInvalid = errors.New("invalid token")

// Config defines manager behavior. Instances are configured during
// initialization and then treated as immutable.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

// Claims is the signed claim set shared by access and refresh tokens.
// Subject carries the account ID.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AccountID returns the account the token was minted for.
func (c *Claims) AccountID() string {
	return c.Subject
}

// Manager mints and parses both token kinds. Safe for concurrent use.
type Manager struct {
	config Config
	now    func() time.Time
}

// NewManager validates the signing configuration. Misconfigured secrets are
// a startup failure, never a runtime one.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.AccessSecret) < minSecretBytes {
		return nil, errors.New("access secret must be at least 32 bytes")
	}
	if len(cfg.RefreshSecret) < minSecretBytes {
		return nil, errors.New("refresh secret must be at least 32 bytes")
	}
	if bytes.Equal(cfg.AccessSecret, cfg.RefreshSecret) {
		return nil, errors.New("access and refresh secrets must be distinct")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	return &Manager{config: cfg, now: time.Now}, nil
}

// MintAccess signs a stateless access token for the principal.
func (m *Manager) MintAccess(accountID string, role string) (string, error) {
	return m.mint(accountID, role, m.config.AccessSecret, m.config.AccessTTL)
}

// MintRefresh signs a refresh token for the principal. The caller is
// responsible for registering it in the session registry; the crypto layer
// has no side effects.
func (m *Manager) MintRefresh(accountID string, role string) (string, error) {
	return m.mint(accountID, role, m.config.RefreshSecret, m.config.RefreshTTL)
}

// ParseAccess verifies an access token's signature and time window.
func (m *Manager) ParseAccess(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, m.config.AccessSecret)
}

// ParseRefresh verifies a refresh token's signature and time window. It says
// nothing about registry membership.
func (m *Manager) ParseRefresh(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, m.config.RefreshSecret)
}

func (m *Manager) mint(accountID, role string, secret []byte, ttl time.Duration) (string, error) {
	if accountID == "" || role == "" {
		return "", errors.New("principal must carry account id and role")
	}

	now := m.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.config.Issuer,
			ID:        uuid.NewString(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (m *Manager) parse(tokenStr string, secret []byte) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" || claims.Role == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

package hireauth

import (
	"bytes"
	"errors"
	"time"
)

// Config defines engine behavior. Instances are configured during
// initialization and treated as immutable after [Builder.Build].
type Config struct {
	Token    TokenConfig
	Session  SessionConfig
	Password PasswordConfig
	Account  AccountConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// TokenConfig controls access and refresh token minting. The two secrets must
// differ: a leaked access-signing key must not be usable to forge 7-day
// refresh sessions.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

// SessionConfig controls the server-side refresh-session registry.
type SessionConfig struct {
	// RedisPrefix namespaces registry keys.
	RedisPrefix string
	// MaxPerAccount bounds concurrent refresh sessions per account. On
	// overflow the oldest session is evicted, FIFO.
	MaxPerAccount int
	// RotateOnRefresh replaces the refresh token on every successful refresh.
	// Off by default: the shipped protocol keeps the presented token valid
	// for its full lifetime. Enabling it closes the stolen-token replay
	// window at the cost of breaking concurrent refreshes from one device.
	RotateOnRefresh bool
}

// PasswordConfig holds Argon2id parameters.
type PasswordConfig struct {
	Memory      uint32 // in KiB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// AccountConfig controls registration policy.
type AccountConfig struct {
	MinPasswordLength int
	// DefaultRole is assigned when a registration omits the role.
	DefaultRole Role
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the production defaults: 15-minute access tokens,
// 7-day refresh sessions, at most 5 sessions per account, no rotation.
// Token secrets have no default and must be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 7 * 24 * time.Hour,
			Issuer:     "hireauth",
			Leeway:     30 * time.Second,
		},
		Session: SessionConfig{
			RedisPrefix:   "hs",
			MaxPerAccount: 5,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        2,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Account: AccountConfig{
			MinPasswordLength: 6,
			DefaultRole:       RoleDeveloper,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

const minSecretBytes = 32

func validateConfig(cfg Config) error {
	if len(cfg.Token.AccessSecret) < minSecretBytes {
		return errors.New("access secret must be at least 32 bytes")
	}
	if len(cfg.Token.RefreshSecret) < minSecretBytes {
		return errors.New("refresh secret must be at least 32 bytes")
	}
	if bytes.Equal(cfg.Token.AccessSecret, cfg.Token.RefreshSecret) {
		return errors.New("access and refresh secrets must be distinct")
	}
	if cfg.Token.AccessTTL <= 0 || cfg.Token.RefreshTTL <= 0 {
		return errors.New("invalid TTL configuration")
	}
	if cfg.Token.AccessTTL >= cfg.Token.RefreshTTL {
		return errors.New("access TTL must be shorter than refresh TTL")
	}
	if cfg.Session.MaxPerAccount <= 0 {
		return errors.New("session cap must be positive")
	}
	if cfg.Account.MinPasswordLength <= 0 {
		return errors.New("minimum password length must be positive")
	}
	if !cfg.Account.DefaultRole.Valid() {
		return errors.New("invalid default role")
	}
	return nil
}

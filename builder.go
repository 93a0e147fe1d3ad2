package hireauth

import (
	"errors"
	"log"

	internalaudit "github.com/hiredeck/hireauth/internal/audit"
	"github.com/hiredeck/hireauth/password"
	"github.com/hiredeck/hireauth/session"
	"github.com/hiredeck/hireauth/token"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens before Build.
type Builder struct {
	config    Config
	redis     redis.UniversalClient
	accounts  AccountStore
	auditSink AuditSink
	warnf     func(string, ...any)

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the builder's config.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the Redis client backing the session registry.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAccountStore sets the credential store the engine integrates with.
func (b *Builder) WithAccountStore(store AccountStore) *Builder {
	b.accounts = store
	return b
}

// WithAuditSink sets the destination for audit events. Defaults to a no-op
// sink when auditing is enabled without one.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithWarnLogger sets the engine's warning logger. Defaults to log.Printf.
func (b *Builder) WithWarnLogger(warnf func(string, ...any)) *Builder {
	b.warnf = warnf
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and wires the engine. A Builder can be
// used once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.redis == nil {
		return nil, errors.New("redis client is required")
	}
	if b.accounts == nil {
		return nil, errors.New("account store is required")
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	tokens, err := token.NewManager(token.Config{
		AccessSecret:  b.config.Token.AccessSecret,
		RefreshSecret: b.config.Token.RefreshSecret,
		AccessTTL:     b.config.Token.AccessTTL,
		RefreshTTL:    b.config.Token.RefreshTTL,
		Issuer:        b.config.Token.Issuer,
		Leeway:        b.config.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(password.Config{
		Memory:      b.config.Password.Memory,
		Time:        b.config.Password.Time,
		Parallelism: b.config.Password.Parallelism,
		SaltLength:  b.config.Password.SaltLength,
		KeyLength:   b.config.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	registry := session.NewRegistry(
		b.redis,
		b.config.Session.RedisPrefix,
		b.config.Session.MaxPerAccount,
		b.config.Token.RefreshTTL,
	)

	dispatcher := internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    b.config.Audit.Enabled,
		BufferSize: b.config.Audit.BufferSize,
		DropIfFull: b.config.Audit.DropIfFull,
	}, b.auditSink)

	warnf := b.warnf
	if warnf == nil {
		warnf = log.Printf
	}

	b.built = true

	return &Engine{
		config:   b.config,
		accounts: b.accounts,
		tokens:   tokens,
		registry: registry,
		hasher:   hasher,
		audit:    dispatcher,
		metrics:  NewMetrics(b.config.Metrics),
		warnf:    warnf,
	}, nil
}

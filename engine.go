package hireauth

import (
	"context"
	"fmt"
	"time"

	internalaudit "github.com/hiredeck/hireauth/internal/audit"
	"github.com/hiredeck/hireauth/password"
	"github.com/hiredeck/hireauth/session"
	"github.com/hiredeck/hireauth/token"
)

// Engine is the authentication engine. Build one through [Builder.Build];
// after that all methods are safe for concurrent use.
type Engine struct {
	config   Config
	accounts AccountStore
	tokens   *token.Manager
	registry *session.Registry
	hasher   *password.Hasher
	audit    *internalaudit.Dispatcher
	metrics  *Metrics
	warnf    func(string, ...any)
}

// Close flushes and stops the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped returns the number of audit events dropped by a full buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a point-in-time copy of all counters.
func (e *Engine) MetricsSnapshot() map[MetricID]uint64 {
	if e == nil {
		return map[MetricID]uint64{}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) ready() error {
	if e == nil || e.accounts == nil || e.tokens == nil || e.registry == nil {
		return ErrEngineNotReady
	}
	return nil
}

func (e *Engine) metricInc(id MetricID) {
	if e != nil {
		e.metrics.Inc(id)
	}
}

func (e *Engine) emitAudit(ctx context.Context, eventType string, account Account, success bool, cause error, meta map[string]string) {
	if e == nil || e.audit == nil {
		return
	}

	event := internalaudit.Event{
		Timestamp: time.Now(),
		EventType: eventType,
		AccountID: account.ID,
		Role:      string(account.Role),
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  meta,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	e.audit.Emit(ctx, event)
}

// issueSession mints a token pair for the account and registers the refresh
// session, auditing any capacity evictions that result.
func (e *Engine) issueSession(ctx context.Context, account Account) (TokenPair, error) {
	access, err := e.tokens.MintAccess(account.ID, string(account.Role))
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := e.tokens.MintRefresh(account.ID, string(account.Role))
	if err != nil {
		return TokenPair{}, err
	}

	evicted, err := e.registry.Register(ctx, account.ID, refresh)
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	e.metricInc(MetricSessionCreated)
	for range evicted {
		e.metricInc(MetricSessionEvicted)
	}
	if len(evicted) > 0 {
		e.warnf("session cap reached for account %s, evicted %d session(s)", account.ID, len(evicted))
		e.emitAudit(ctx, AuditSessionEvicted, account, true, nil, map[string]string{
			"evicted": fmt.Sprintf("%d", len(evicted)),
		})
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

func scrub(account Account) Account {
	account.PasswordHash = ""
	return account
}

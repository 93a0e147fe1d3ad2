package hireauth

import (
	"context"
	"testing"
	"time"

	internalaudit "github.com/hiredeck/hireauth/internal/audit"
)

func nextEvent(t *testing.T, events <-chan AuditEvent) AuditEvent {
	t.Helper()
	select {
	case event := <-events:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit event")
		return AuditEvent{}
	}
}

func TestEngineEmitsLifecycleAuditEvents(t *testing.T) {
	cfg := engineTestConfig()
	cfg.Audit.Enabled = true

	events := make(chan AuditEvent, 16)
	engine, _ := newTestEngineWithSink(t, cfg, NewChannelSink(events))
	ctx := WithClientIP(context.Background(), "203.0.113.7")

	account, pair, err := engine.Register(ctx, RegisterInput{
		Name: "Ada", Email: "ada@example.com", Password: "correct-horse", Role: RoleDeveloper,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	event := nextEvent(t, events)
	if event.EventType != AuditRegister || !event.Success {
		t.Fatalf("unexpected first event: %+v", event)
	}
	if event.AccountID != account.ID || event.IP != "203.0.113.7" {
		t.Fatalf("event missing identity or IP: %+v", event)
	}

	if _, _, err := engine.Login(ctx, "ada@example.com", "wrong"); err == nil {
		t.Fatal("expected login failure")
	}
	event = nextEvent(t, events)
	if event.EventType != AuditLoginFailure || event.Success || event.Error == "" {
		t.Fatalf("unexpected failure event: %+v", event)
	}

	if err := engine.Logout(ctx, pair.Refresh); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	event = nextEvent(t, events)
	if event.EventType != AuditLogout {
		t.Fatalf("unexpected logout event: %+v", event)
	}
}

func TestDispatcherDropsWhenBufferFull(t *testing.T) {
	gate := make(chan struct{})
	blocked := internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: true,
	}, blockingSink{gate})
	t.Cleanup(func() {
		close(gate)
		blocked.Close()
	})

	for i := 0; i < 10; i++ {
		blocked.Emit(context.Background(), AuditEvent{EventType: AuditLogin})
	}

	if blocked.Dropped() == 0 {
		t.Fatal("expected drops with a full buffer and a blocked sink")
	}
}

type blockingSink struct {
	gate chan struct{}
}

func (s blockingSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func TestNilDispatcherIsSafe(t *testing.T) {
	var d *internalaudit.Dispatcher
	d.Emit(context.Background(), AuditEvent{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reported drops")
	}
}

package hireauth

import "sync/atomic"

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID uint8

const (
	// MetricRegisterSuccess counts successful registrations.
	MetricRegisterSuccess MetricID = iota
	// MetricRegisterDuplicate counts registrations rejected for a taken email.
	MetricRegisterDuplicate
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess
	// MetricLoginFailure counts failed logins.
	MetricLoginFailure
	// MetricRefreshSuccess counts successful access-token refreshes.
	MetricRefreshSuccess
	// MetricRefreshFailure counts rejected refresh attempts.
	MetricRefreshFailure
	// MetricLogout counts explicit logouts.
	MetricLogout
	// MetricSessionCreated counts refresh sessions admitted to the registry.
	MetricSessionCreated
	// MetricSessionEvicted counts sessions evicted by the per-account cap.
	MetricSessionEvicted
	// MetricSessionRevoked counts sessions removed by logout or cascade.
	MetricSessionRevoked

	metricIDCount
)

var metricNames = [metricIDCount]string{
	MetricRegisterSuccess:   "register_success",
	MetricRegisterDuplicate: "register_duplicate",
	MetricLoginSuccess:      "login_success",
	MetricLoginFailure:      "login_failure",
	MetricRefreshSuccess:    "refresh_success",
	MetricRefreshFailure:    "refresh_failure",
	MetricLogout:            "logout",
	MetricSessionCreated:    "session_created",
	MetricSessionEvicted:    "session_evicted",
	MetricSessionRevoked:    "session_revoked",
}

func (id MetricID) String() string {
	if id >= metricIDCount {
		return "unknown"
	}
	return metricNames[id]
}

// Metrics holds atomic counters. When disabled, all operations are no-ops.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

// NewMetrics creates a [Metrics] instance.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments a counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Value returns the current value of a single counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= metricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

// Snapshot returns a point-in-time copy of all counters.
func (m *Metrics) Snapshot() map[MetricID]uint64 {
	out := make(map[MetricID]uint64, metricIDCount)
	if m == nil || !m.enabled {
		return out
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		out[id] = m.counters[id].Load()
	}
	return out
}

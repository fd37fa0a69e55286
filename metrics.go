package tshopbe

import "sync/atomic"

// MetricID identifies one engine counter.
type MetricID uint16

const (
	// MetricSignupSuccess counts created accounts.
	MetricSignupSuccess MetricID = iota
	// MetricSignupDuplicate counts signups rejected for a taken email.
	MetricSignupDuplicate
	// MetricLoginSuccess counts successful sign-ins.
	MetricLoginSuccess
	// MetricLoginFailure counts sign-ins rejected for bad credentials.
	MetricLoginFailure
	// MetricLoginRateLimited counts sign-ins refused by the throttle.
	MetricLoginRateLimited
	// MetricRefreshSuccess counts completed token rotations.
	MetricRefreshSuccess
	// MetricRefreshFailure counts refresh attempts rejected as invalid.
	MetricRefreshFailure
	// MetricRefreshReuseDetected counts rotations that lost the store
	// compare-and-set, the reuse signal.
	MetricRefreshReuseDetected
	// MetricLogout counts logout calls.
	MetricLogout
	// MetricOtpIssued counts delivered one-time codes.
	MetricOtpIssued
	// MetricOtpVerified counts consumed one-time codes.
	MetricOtpVerified
	// MetricOtpFailed counts one-time codes that did not verify.
	MetricOtpFailed
	// MetricOtpRateLimited counts code requests refused by the throttle.
	MetricOtpRateLimited
	// MetricSessionFailOpen counts session writes that failed but were
	// allowed through by the fail-open policy.
	MetricSessionFailOpen
	metricIDCount
)

type paddedCounter struct {
	value uint64
	_     [56]byte
}

// Metrics holds the engine's in-process counters. All methods are safe for
// concurrent use; a nil or disabled Metrics is a no-op.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates the counter set. Counting only happens when enabled.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether counting is on.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to the counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value reads one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	if m == nil || !m.enabled {
		return s
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}

package harvest

import (
	"sync"

	"github.com/rileyhilliard/rrtop/internal/metrics"
)

// Default health policy.
const (
	DefaultDegradeAfter = 3
	DefaultMaxBackoff   = 32
)

type metricHealth struct {
	metrics.Health
	// skip is the number of upcoming cycles in which the metric is not probed.
	skip int
}

// healthTracker follows the capability and failure streak of every metric.
// Only the harvest loop mutates it; Snapshot may be called from anywhere.
type healthTracker struct {
	mu           sync.Mutex
	m            [metrics.NumMetrics]metricHealth
	degradeAfter int
	maxBackoff   int
}

func newHealthTracker(degradeAfter, maxBackoff int) *healthTracker {
	if degradeAfter <= 0 {
		degradeAfter = DefaultDegradeAfter
	}
	if maxBackoff <= 0 {
		maxBackoff = DefaultMaxBackoff
	}
	return &healthTracker{degradeAfter: degradeAfter, maxBackoff: maxBackoff}
}

func (t *healthTracker) setCapability(m metrics.Metric, c metrics.Capability) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.m[m].Capability = c
}

func (t *healthTracker) capability(m metrics.Metric) metrics.Capability {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.m[m].Capability
}

// shouldPoll reports whether m is probed this cycle and consumes one
// backoff step when it is not.
func (t *healthTracker) shouldPoll(m metrics.Metric) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := &t.m[m]
	if h.Capability == metrics.CapabilityUnsupported {
		return false
	}
	if h.skip > 0 {
		h.skip--
		return false
	}
	return true
}

func (t *healthTracker) success(m metrics.Metric) {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := &t.m[m]
	h.Capability = metrics.CapabilitySupported
	h.Failures = 0
	h.Degraded = false
	h.LastError = ""
	h.skip = 0
}

// failure records a failed or late probe. It returns true when this
// failure made the metric degraded.
func (t *healthTracker) failure(m metrics.Metric, reason string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	h := &t.m[m]
	h.Failures++
	h.LastError = reason
	if h.Failures < t.degradeAfter {
		return false
	}
	wasDegraded := h.Degraded
	h.Degraded = true
	h.skip = t.backoff(h.Failures)
	return !wasDegraded
}

// backoff doubles the number of skipped cycles for every failure past the
// degrade threshold.
func (t *healthTracker) backoff(failures int) int {
	n := failures - t.degradeAfter
	if n > 30 {
		return t.maxBackoff
	}
	skip := 1 << n
	if skip > t.maxBackoff {
		return t.maxBackoff
	}
	return skip
}

// Snapshot returns a copy of every metric's health.
func (t *healthTracker) Snapshot() [metrics.NumMetrics]metrics.Health {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out [metrics.NumMetrics]metrics.Health
	for i := range t.m {
		out[i] = t.m[i].Health
	}
	return out
}

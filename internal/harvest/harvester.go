package harvest

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rileyhilliard/rrtop/internal/errors"
	"github.com/rileyhilliard/rrtop/internal/logger"
	"github.com/rileyhilliard/rrtop/internal/metrics"
	"github.com/rileyhilliard/rrtop/internal/probe"
)

// DefaultInterval is the poll interval used when none is configured.
const DefaultInterval = time.Second

// State is the harvester's position in its cycle.
type State int32

const (
	StateIdle State = iota
	StatePolling
	StateNormalizing
	StatePublishing
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePolling:
		return "polling"
	case StateNormalizing:
		return "normalizing"
	case StatePublishing:
		return "publishing"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Options configures a Harvester.
type Options struct {
	Interval time.Duration
	// DegradeAfter is the number of consecutive failures before a metric
	// is flagged degraded.
	DegradeAfter int
	// MaxBackoff caps the number of cycles skipped between retries of a
	// degraded metric.
	MaxBackoff int
	// Disabled metrics are never probed and report as unsupported.
	Disabled []metrics.Metric
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Stats are cumulative harvester counters.
type Stats struct {
	Cycles     uint64
	Skipped    uint64
	Publishes  uint64
	LateProbes uint64
}

// Harvester polls a probe and publishes snapshots to its Slot.
type Harvester struct {
	probe    probe.Probe
	interval time.Duration
	now      func() time.Time
	log      logger.Logger

	slot     *Slot
	health   *healthTracker
	norm     *normalizer
	inflight [metrics.NumMetrics]atomic.Bool
	// mailbox holds the last finished result per metric until a cycle or
	// Detect takes it. done carries the metric of every finished probe.
	mailbox [metrics.NumMetrics]atomic.Pointer[probeResult]
	done    chan metrics.Metric

	detectOnce sync.Once
	state      atomic.Int32

	cycles     atomic.Uint64
	skipped    atomic.Uint64
	publishes  atomic.Uint64
	lateProbes atomic.Uint64
}

type probeResult struct {
	metric metrics.Metric
	value  any
	err    error
}

// New creates a harvester for p.
func New(p probe.Probe, opts Options, log logger.Logger) *Harvester {
	if log == nil {
		log = logger.NewEnvLogger("[harvest]")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	h := &Harvester{
		probe:    p,
		interval: opts.Interval,
		now:      opts.Now,
		log:      log,
		slot:     NewSlot(),
		health:   newHealthTracker(opts.DegradeAfter, opts.MaxBackoff),
		norm:     newNormalizer(),
		done:     make(chan metrics.Metric, metrics.NumMetrics),
	}
	for _, m := range opts.Disabled {
		if m >= 0 && m < metrics.NumMetrics {
			h.health.setCapability(m, metrics.CapabilityUnsupported)
		}
	}
	return h
}

// Slot returns the handoff consumers subscribe to.
func (h *Harvester) Slot() *Slot {
	return h.slot
}

// Interval returns the poll interval.
func (h *Harvester) Interval() time.Duration {
	return h.interval
}

// State returns the current cycle state.
func (h *Harvester) State() State {
	return State(h.state.Load())
}

func (h *Harvester) setState(s State) {
	h.state.Store(int32(s))
}

// Stats returns a copy of the harvester counters.
func (h *Harvester) Stats() Stats {
	return Stats{
		Cycles:     h.cycles.Load(),
		Skipped:    h.skipped.Load(),
		Publishes:  h.publishes.Load(),
		LateProbes: h.lateProbes.Load(),
	}
}

// Health returns the current per-metric health.
func (h *Harvester) Health() [metrics.NumMetrics]metrics.Health {
	return h.health.Snapshot()
}

// Detect probes every metric once to learn which ones the platform
// supports. A metric answering UNSUPPORTED is never polled again; any
// other error marks it supported but failing. Detect runs at most once.
func (h *Harvester) Detect(ctx context.Context) {
	h.detectOnce.Do(func() { h.detect(ctx) })
}

func (h *Harvester) detect(ctx context.Context) {
	timer := time.NewTimer(h.detectTimeout())
	defer timer.Stop()

	launched := make(map[metrics.Metric]bool, metrics.NumMetrics)
	for _, m := range metrics.AllMetrics() {
		if h.health.capability(m) == metrics.CapabilityUnsupported {
			continue
		}
		if h.launch(ctx, m) {
			launched[m] = true
		}
	}

	for len(launched) > 0 {
		select {
		case m := <-h.done:
			if !launched[m] {
				continue
			}
			r := h.mailbox[m].Swap(nil)
			if r == nil {
				continue
			}
			delete(launched, m)
			switch {
			case r.err == nil:
				h.health.setCapability(m, metrics.CapabilitySupported)
			case probe.IsUnsupported(r.err):
				h.health.setCapability(m, metrics.CapabilityUnsupported)
				h.log.Info("%s: not supported on this platform", m)
			default:
				h.health.setCapability(m, metrics.CapabilitySupported)
				h.health.failure(m, errors.Summary(r.err))
				h.log.Warn("%s: first read failed: %s", m, errors.Summary(r.err))
			}
		case <-timer.C:
			// Slow probes stay Unknown and are treated as supported. Their
			// results are picked up by the first cycle.
			return
		case <-ctx.Done():
			return
		}
	}
}

// detectTimeout gives startup detection a little more room than one tick,
// since the first process walk is usually the slowest.
func (h *Harvester) detectTimeout() time.Duration {
	if h.interval < 2*time.Second {
		return 2 * time.Second
	}
	return h.interval
}

// Run detects capabilities, then polls until ctx is cancelled. The first
// cycle starts immediately. Subscriber channels are closed on return.
func (h *Harvester) Run(ctx context.Context) error {
	defer h.slot.Close()
	defer h.setState(StateStopped)

	h.Detect(ctx)
	if ctx.Err() != nil {
		return nil
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		start := time.Now()
		h.cycle(ctx)
		if ctx.Err() != nil {
			return nil
		}

		// A cycle that used up its interval leaves a tick waiting. Drop it
		// so the next cycle starts on schedule instead of back to back.
		if time.Since(start) >= h.interval {
			select {
			case <-ticker.C:
				h.skipped.Add(1)
				h.log.Debug("cycle overran %s, skipping a tick", h.interval)
			default:
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Cycle runs a single poll cycle. It is exported for callers that drive
// the harvester manually, such as tests and one-shot tools.
func (h *Harvester) Cycle(ctx context.Context) *metrics.Snapshot {
	return h.cycle(ctx)
}

func (h *Harvester) cycle(ctx context.Context) *metrics.Snapshot {
	h.cycles.Add(1)
	now := h.now()

	h.setState(StatePolling)
	results := h.poll(ctx)
	if ctx.Err() != nil {
		// Shutting down: in-flight probes finish on their own, nothing is published.
		h.setState(StateIdle)
		return nil
	}

	h.setState(StateNormalizing)
	snap := h.norm.build(now, results, h.health.Snapshot())

	h.setState(StatePublishing)
	h.slot.Publish(snap)
	h.publishes.Add(1)

	h.setState(StateIdle)
	return snap
}

// collectWindow is how long a cycle waits for probes. It leaves a tenth
// of the interval to normalize and publish before the next tick.
func (h *Harvester) collectWindow() time.Duration {
	return h.interval - h.interval/10
}

// launch starts the probe for m unless one is already running. Probes get
// the run context, not a per-cycle deadline, so a slow probe can finish
// and hand its result to a later cycle through the mailbox.
func (h *Harvester) launch(ctx context.Context, m metrics.Metric) bool {
	if !h.inflight[m].CompareAndSwap(false, true) {
		return false
	}
	go func() {
		v, err := probe.Call(ctx, h.probe, m)
		h.mailbox[m].Store(&probeResult{metric: m, value: v, err: err})
		h.inflight[m].Store(false)
		select {
		case h.done <- m:
		default:
		}
	}()
	return true
}

// poll takes any results that finished since the last cycle, launches
// every due probe that is not still running, and collects what finishes
// within the collect window.
func (h *Harvester) poll(ctx context.Context) map[metrics.Metric]outcome {
	timer := time.NewTimer(h.collectWindow())
	defer timer.Stop()

	// Notifications already waiting belong to results the mailbox check
	// below picks up.
	for drained := false; !drained; {
		select {
		case <-h.done:
		default:
			drained = true
		}
	}

	out := make(map[metrics.Metric]outcome, metrics.NumMetrics)
	// waiting maps each metric still expected this cycle to the reason
	// recorded if it does not arrive in time.
	waiting := make(map[metrics.Metric]string, metrics.NumMetrics)

	for _, m := range metrics.AllMetrics() {
		if !h.health.shouldPoll(m) {
			continue
		}
		if r := h.mailbox[m].Swap(nil); r != nil {
			h.collect(out, r)
		}
		if h.launch(ctx, m) {
			waiting[m] = "probe did not finish before the next tick"
			continue
		}
		if _, ok := out[m]; !ok {
			waiting[m] = "previous probe still running"
		}
	}

	for len(waiting) > 0 {
		select {
		case m := <-h.done:
			r := h.mailbox[m].Swap(nil)
			if r == nil {
				continue
			}
			delete(waiting, m)
			h.collect(out, r)
		case <-timer.C:
			for m, reason := range waiting {
				if _, ok := out[m]; ok {
					continue
				}
				h.lateProbes.Add(1)
				h.markFailed(m, reason)
			}
			return out
		case <-ctx.Done():
			return out
		}
	}
	return out
}

// collect records a finished probe result. A newer result replaces one
// taken earlier in the same cycle.
func (h *Harvester) collect(out map[metrics.Metric]outcome, r *probeResult) {
	if r.err != nil {
		reason := errors.Summary(r.err)
		h.markFailed(r.metric, reason)
		out[r.metric] = outcome{err: reason}
		return
	}
	h.health.success(r.metric)
	out[r.metric] = outcome{value: r.value, ok: true}
}

func (h *Harvester) markFailed(m metrics.Metric, reason string) {
	if h.health.failure(m, reason) {
		h.log.Warn("%s degraded after repeated failures: %s", m, reason)
		return
	}
	h.log.Debug("%s: %s", m, reason)
}

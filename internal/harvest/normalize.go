package harvest

import (
	"time"

	"github.com/rileyhilliard/rrtop/internal/metrics"
	"github.com/rileyhilliard/rrtop/internal/probe"
)

// outcome is what one probe produced in a cycle.
type outcome struct {
	value any
	err   string
	ok    bool
}

type counterPair struct {
	a, b uint64
}

// normalizer turns raw probe results into snapshot readings. It keeps the
// previous cycle's counters to derive utilization and rates, and the
// previous snapshot to carry values forward. Not safe for concurrent use.
type normalizer struct {
	prevCPU *probe.CPUTimes

	prevNet   map[string]counterPair
	prevNetAt time.Time

	prevDisk   map[string]counterPair
	prevDiskAt time.Time

	prev *metrics.Snapshot
	seq  uint64
}

func newNormalizer() *normalizer {
	return &normalizer{}
}

// build assembles the snapshot for a cycle captured at now. results holds
// an entry for every metric that completed; metrics without one were not
// polled or did not finish in time.
func (n *normalizer) build(now time.Time, results map[metrics.Metric]outcome, health [metrics.NumMetrics]metrics.Health) *metrics.Snapshot {
	n.seq++
	snap := &metrics.Snapshot{
		Timestamp: now,
		Seq:       n.seq,
		Health:    health,
	}
	prev := n.prev
	if prev == nil {
		prev = &metrics.Snapshot{}
	}

	reason := func(m metrics.Metric) string {
		if r, ok := results[m]; ok && r.err != "" {
			return r.err
		}
		if health[m].LastError != "" {
			return health[m].LastError
		}
		return "no new data this cycle"
	}
	unsupported := func(m metrics.Metric) bool {
		return health[m].Capability == metrics.CapabilityUnsupported
	}

	// CPU
	switch r := results[metrics.MetricCPU]; {
	case r.ok:
		snap.CPU = metrics.Fresh(n.cpu(r.value.(probe.CPUTimes)), now)
	case unsupported(metrics.MetricCPU):
		snap.CPU = metrics.Unsupported[metrics.CPU]()
	default:
		snap.CPU = prev.CPU.Stale(reason(metrics.MetricCPU))
	}

	snap.Memory = carry(results, metrics.MetricMemory, now, prev.Memory, unsupported, reason)

	switch r := results[metrics.MetricNetwork]; {
	case r.ok:
		snap.Network = metrics.Fresh(n.network(now, r.value.([]metrics.NetInterface)), now)
	case unsupported(metrics.MetricNetwork):
		snap.Network = metrics.Unsupported[[]metrics.NetInterface]()
	default:
		snap.Network = prev.Network.Stale(reason(metrics.MetricNetwork))
	}

	switch r := results[metrics.MetricDisks]; {
	case r.ok:
		snap.Disks = metrics.Fresh(n.disks(now, r.value.([]metrics.Disk)), now)
	case unsupported(metrics.MetricDisks):
		snap.Disks = metrics.Unsupported[[]metrics.Disk]()
	default:
		snap.Disks = prev.Disks.Stale(reason(metrics.MetricDisks))
	}

	snap.Temperatures = carry(results, metrics.MetricTemperatures, now, prev.Temperatures, unsupported, reason)
	snap.Battery = carry(results, metrics.MetricBattery, now, prev.Battery, unsupported, reason)
	snap.Processes = carry(results, metrics.MetricProcesses, now, prev.Processes, unsupported, reason)
	snap.Host = carry(results, metrics.MetricHost, now, prev.Host, unsupported, reason)

	n.prev = snap
	return snap
}

// carry builds a reading for metrics that need no normalization.
func carry[T any](
	results map[metrics.Metric]outcome,
	m metrics.Metric,
	now time.Time,
	prev metrics.Reading[T],
	unsupported func(metrics.Metric) bool,
	reason func(metrics.Metric) string,
) metrics.Reading[T] {
	if r, ok := results[m]; ok && r.ok {
		return metrics.Fresh(r.value.(T), now)
	}
	if unsupported(m) {
		return metrics.Unsupported[T]()
	}
	return prev.Stale(reason(m))
}

// cpu converts tick counters into percentages. The first sample has
// nothing to diff against, so every value is None.
func (n *normalizer) cpu(raw probe.CPUTimes) metrics.CPU {
	out := metrics.CPU{
		Load:    raw.Load,
		Cores:   len(raw.PerCore),
		PerCore: make([]metrics.Optional[float64], len(raw.PerCore)),
	}
	if prev := n.prevCPU; prev != nil {
		out.Total = utilization(prev.Total, raw.Total)
		for i, cur := range raw.PerCore {
			if i < len(prev.PerCore) {
				out.PerCore[i] = utilization(prev.PerCore[i], cur)
			}
		}
	}
	n.prevCPU = &raw
	return out
}

// utilization is the busy share of elapsed ticks, in percent.
func utilization(prev, cur probe.CoreTimes) metrics.Optional[float64] {
	total := cur.Total - prev.Total
	if total <= 0 {
		return metrics.None[float64]()
	}
	pct := (cur.Busy - prev.Busy) / total * 100
	switch {
	case pct < 0:
		pct = 0
	case pct > 100:
		pct = 100
	}
	return metrics.Some(pct)
}

func (n *normalizer) network(now time.Time, ifaces []metrics.NetInterface) []metrics.NetInterface {
	out := make([]metrics.NetInterface, len(ifaces))
	next := make(map[string]counterPair, len(ifaces))
	elapsed := now.Sub(n.prevNetAt).Seconds()
	for i, iface := range ifaces {
		if p, ok := n.prevNet[iface.Name]; ok && elapsed > 0 {
			iface.RxRate = rate(p.a, iface.RxBytes, elapsed)
			iface.TxRate = rate(p.b, iface.TxBytes, elapsed)
		}
		next[iface.Name] = counterPair{iface.RxBytes, iface.TxBytes}
		out[i] = iface
	}
	n.prevNet = next
	n.prevNetAt = now
	return out
}

func (n *normalizer) disks(now time.Time, disks []metrics.Disk) []metrics.Disk {
	out := make([]metrics.Disk, len(disks))
	next := make(map[string]counterPair, len(disks))
	elapsed := now.Sub(n.prevDiskAt).Seconds()
	for i, d := range disks {
		rd, rok := d.ReadBytes.Get()
		wr, wok := d.WriteBytes.Get()
		if rok && wok {
			if p, ok := n.prevDisk[d.Name]; ok && elapsed > 0 {
				d.ReadRate = rate(p.a, rd, elapsed)
				d.WriteRate = rate(p.b, wr, elapsed)
			}
			next[d.Name] = counterPair{rd, wr}
		}
		out[i] = d
	}
	n.prevDisk = next
	n.prevDiskAt = now
	return out
}

// rate returns bytes per second, or None when the counter went backwards
// (wrapped or reset).
func rate(prev, cur uint64, seconds float64) metrics.Optional[float64] {
	if cur < prev {
		return metrics.None[float64]()
	}
	return metrics.Some(float64(cur-prev) / seconds)
}

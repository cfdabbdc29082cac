package proctable

import (
	"runtime"
	"time"

	"github.com/rileyhilliard/rrtop/internal/logger"
	"github.com/rileyhilliard/rrtop/internal/metrics"
)

// Options configures derived fields.
type Options struct {
	// CPUPerCore reports CPU% relative to one core (a busy 4-thread
	// process shows 400%) instead of the whole machine.
	CPUPerCore bool
}

// entry is one process plus the fields derived from the previous cycle.
type entry struct {
	metrics.ProcessSample
	cpu       metrics.Optional[float64]
	readRate  metrics.Optional[float64]
	writeRate metrics.Optional[float64]
}

// Table is the process arena, keyed by pid.
type Table struct {
	opts Options
	log  logger.Logger

	procs    map[int32]*entry
	sampled  time.Time
	memTotal uint64
	cores    int
	status   metrics.Status
	errText  string

	generation   uint64
	cache        *View
	cacheKey     cacheKey
	computations uint64
}

type cacheKey struct {
	generation uint64
	query      Query
}

// New creates an empty table.
func New(opts Options, log logger.Logger) *Table {
	if log == nil {
		log = logger.NewEnvLogger("[proctable]")
	}
	return &Table{
		opts:  opts,
		log:   log,
		procs: make(map[int32]*entry),
	}
}

// Len returns the number of processes in the table.
func (t *Table) Len() int {
	return len(t.procs)
}

// Generation increases on every Update.
func (t *Table) Generation() uint64 {
	return t.generation
}

// Computations returns how many views were built rather than reused.
func (t *Table) Computations() uint64 {
	return t.computations
}

// Update applies a snapshot. Fresh process lists replace the table,
// deriving CPU% and IO rates from the previous cycle. A stale list keeps
// the current rows and marks the table stale; an unsupported one empties it.
func (t *Table) Update(snap *metrics.Snapshot) {
	if snap == nil {
		return
	}
	t.generation++

	if mem, ok := snap.Memory.Get(); ok && mem.Total > 0 {
		t.memTotal = mem.Total
	}
	if cpu, ok := snap.CPU.Get(); ok && cpu.Cores > 0 {
		t.cores = cpu.Cores
	}

	reading := snap.Processes
	t.status = reading.Status
	t.errText = reading.Err
	switch reading.Status {
	case metrics.StatusFresh:
	case metrics.StatusUnsupported, metrics.StatusAbsent:
		t.procs = make(map[int32]*entry)
		return
	default:
		return
	}

	elapsed := reading.SampledAt.Sub(t.sampled).Seconds()
	if t.sampled.IsZero() {
		elapsed = 0
	}
	cores := t.cores
	if cores <= 0 {
		cores = runtime.NumCPU()
	}

	next := make(map[int32]*entry, len(reading.Value))
	for _, s := range reading.Value {
		e := &entry{ProcessSample: s}
		if prev, ok := t.procs[s.PID]; ok && prev.CreateTime == s.CreateTime && elapsed > 0 {
			e.cpu = cpuPercent(prev.CPUTime, s.CPUTime, elapsed, cores, t.opts.CPUPerCore)
			e.readRate = bytesRate(prev.ReadBytes, s.ReadBytes, elapsed)
			e.writeRate = bytesRate(prev.WriteBytes, s.WriteBytes, elapsed)
		}
		if _, dup := next[s.PID]; dup {
			t.log.Debug("duplicate pid %d in process list", s.PID)
		}
		next[s.PID] = e
	}

	t.log.Debug("process table: %d -> %d processes", len(t.procs), len(next))
	t.procs = next
	t.sampled = reading.SampledAt
}

// cpuPercent converts a cumulative CPU-seconds delta into a percentage of
// elapsed wall time.
func cpuPercent(prev, cur metrics.Optional[float64], elapsed float64, cores int, perCore bool) metrics.Optional[float64] {
	p, pok := prev.Get()
	c, cok := cur.Get()
	if !pok || !cok || c < p {
		return metrics.None[float64]()
	}
	pct := (c - p) / elapsed * 100
	limit := 100.0 * float64(cores)
	if !perCore {
		pct /= float64(cores)
		limit = 100
	}
	if pct > limit {
		pct = limit
	}
	return metrics.Some(pct)
}

func bytesRate(prev, cur metrics.Optional[uint64], elapsed float64) metrics.Optional[float64] {
	p, pok := prev.Get()
	c, cok := cur.Get()
	if !pok || !cok || c < p {
		return metrics.None[float64]()
	}
	return metrics.Some(float64(c-p) / elapsed)
}

// memPercent returns rss as a share of physical memory.
func (t *Table) memPercent(rss uint64) metrics.Optional[float64] {
	if t.memTotal == 0 {
		return metrics.None[float64]()
	}
	return metrics.Some(float64(rss) / float64(t.memTotal) * 100)
}

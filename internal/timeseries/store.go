package timeseries

import (
	"iter"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rileyhilliard/rrtop/internal/errors"
	"github.com/rileyhilliard/rrtop/internal/logger"
	"github.com/rileyhilliard/rrtop/internal/metrics"
)

// Store holds one series per metric key.
type Store struct {
	policy  Policy
	series  map[string]*series
	log     logger.Logger
	dropped uint64
}

// New creates an empty store.
func New(policy Policy, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewEnvLogger("[store]")
	}
	return &Store{
		policy: policy,
		series: make(map[string]*series),
		log:    log,
	}
}

// Append adds a point to key's series. A point whose time is not after the
// newest stored point is dropped, logged, and reported as OUT_OF_ORDER; the
// stored series is left untouched.
func (s *Store) Append(key string, p Point) error {
	ser, ok := s.series[key]
	if !ok {
		ser = newSeries(s.policy.For(key))
		s.series[key] = ser
	}
	if last, ok := ser.latest(); ok && !p.Time.After(last.Time) {
		s.dropped++
		s.log.Warn("dropping out-of-order sample for %s: %s is not after %s",
			key, p.Time.Format(time.RFC3339Nano), last.Time.Format(time.RFC3339Nano))
		return errors.New(errors.ErrOutOfOrder,
			"Sample for "+key+" is not newer than the latest stored point",
			"")
	}
	ser.push(p)
	return nil
}

// Window returns the points newer than d before key's newest point, oldest
// first: the range (latest-d, latest].
// The sequence is lazy and can be iterated any number of times; it covers
// the time range fixed when Window was called. An unknown key or empty
// history yields nothing. A non-positive d yields the full history.
func (s *Store) Window(key string, d time.Duration) iter.Seq[Point] {
	ser, ok := s.series[key]
	if !ok {
		return emptySeq
	}
	last, ok := ser.latest()
	if !ok {
		return emptySeq
	}
	from := time.Time{}
	if d > 0 {
		from = last.Time.Add(-d)
	}
	return ser.window(from, last.Time)
}

func emptySeq(func(Point) bool) {}

// Latest returns key's newest point.
func (s *Store) Latest(key string) (Point, bool) {
	ser, ok := s.series[key]
	if !ok {
		return Point{}, false
	}
	return ser.latest()
}

// Len returns the number of points stored for key.
func (s *Store) Len(key string) int {
	if ser, ok := s.series[key]; ok {
		return ser.count
	}
	return 0
}

// Has reports whether key has at least one point.
func (s *Store) Has(key string) bool {
	return s.Len(key) > 0
}

// Dropped returns how many out-of-order points were rejected.
func (s *Store) Dropped() uint64 {
	return s.dropped
}

// Keys returns every key with stored points in natural order.
func (s *Store) Keys() []string {
	return s.KeysWithPrefix("")
}

// KeysWithPrefix returns the keys starting with prefix in natural order,
// so cpu.core.10 sorts after cpu.core.9.
func (s *Store) KeysWithPrefix(prefix string) []string {
	var out []string
	for k, ser := range s.series {
		if ser.count > 0 && strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return naturalLess(out[i], out[j]) })
	return out
}

// naturalLess compares dot-separated keys segment by segment, numerically
// when both segments are integers.
func naturalLess(a, b string) bool {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] == bs[i] {
			continue
		}
		an, aerr := strconv.Atoi(as[i])
		bn, berr := strconv.Atoi(bs[i])
		if aerr == nil && berr == nil {
			return an < bn
		}
		return as[i] < bs[i]
	}
	return len(as) < len(bs)
}

// Ingest appends every fresh value in snap under its metric key. Stale,
// absent and unsupported readings add nothing. It returns the number of
// points stored.
func (s *Store) Ingest(snap *metrics.Snapshot) int {
	if snap == nil {
		return 0
	}
	ts := snap.Timestamp
	n := 0
	add := func(key string, v float64) {
		if s.Append(key, Point{Time: ts, Value: v}) == nil {
			n++
		}
	}
	addOpt := func(key string, v metrics.Optional[float64]) {
		if x, ok := v.Get(); ok {
			add(key, x)
		}
	}

	if snap.CPU.IsFresh() {
		cpu := snap.CPU.Value
		addOpt(metrics.KeyCPUTotal, cpu.Total)
		for i, core := range cpu.PerCore {
			addOpt(metrics.CoreKey(i), core)
		}
	}

	if snap.Memory.IsFresh() {
		mem := snap.Memory.Value
		add(metrics.KeyMemRAM, mem.UsedPercent())
		if mem.SwapTotal > 0 {
			add(metrics.KeyMemSwap, mem.SwapPercent())
		}
	}

	if snap.Network.IsFresh() {
		var rx, tx float64
		var haveRate bool
		for _, iface := range snap.Network.Value {
			addOpt(metrics.NetIfKey(iface.Name, false), iface.RxRate)
			addOpt(metrics.NetIfKey(iface.Name, true), iface.TxRate)
			if iface.Loopback {
				continue
			}
			r, rok := iface.RxRate.Get()
			t, tok := iface.TxRate.Get()
			if rok && tok {
				rx += r
				tx += t
				haveRate = true
			}
		}
		if haveRate {
			add(metrics.KeyNetRx, rx)
			add(metrics.KeyNetTx, tx)
		}
	}

	if snap.Disks.IsFresh() {
		seen := make(map[string]bool, len(snap.Disks.Value))
		for _, d := range snap.Disks.Value {
			if seen[d.Name] {
				continue
			}
			seen[d.Name] = true
			addOpt(metrics.DiskKey(d.Name, false), d.ReadRate)
			addOpt(metrics.DiskKey(d.Name, true), d.WriteRate)
		}
	}

	if snap.Temperatures.IsFresh() {
		for _, t := range snap.Temperatures.Value {
			add(metrics.TempKey(t.Sensor), t.Celsius)
		}
	}

	if snap.Battery.IsFresh() {
		add(metrics.KeyBattery, snap.Battery.Value.Percent)
	}
	return n
}

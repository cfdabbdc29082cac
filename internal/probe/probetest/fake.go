// Package probetest provides a scriptable probe for tests.
package probetest

import (
	"context"
	"sync"

	"github.com/rileyhilliard/rrtop/internal/metrics"
	"github.com/rileyhilliard/rrtop/internal/probe"
)

// Fake implements probe.Probe with per-metric functions. A nil function
// reports the metric as unsupported. Set the functions before handing the
// Fake to a harvester; they are called from several goroutines.
type Fake struct {
	CPUFunc          func(ctx context.Context) (probe.CPUTimes, error)
	MemoryFunc       func(ctx context.Context) (metrics.Memory, error)
	NetworkFunc      func(ctx context.Context) ([]metrics.NetInterface, error)
	DisksFunc        func(ctx context.Context) ([]metrics.Disk, error)
	TemperaturesFunc func(ctx context.Context) ([]metrics.Temperature, error)
	BatteryFunc      func(ctx context.Context) (metrics.Battery, error)
	ProcessesFunc    func(ctx context.Context) ([]metrics.ProcessSample, error)
	HostFunc         func(ctx context.Context) (metrics.HostInfo, error)

	mu    sync.Mutex
	calls [metrics.NumMetrics]int
}

var _ probe.Probe = (*Fake)(nil)

// Calls returns how many times the probe for m has been invoked.
func (f *Fake) Calls(m metrics.Metric) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[m]
}

func (f *Fake) record(m metrics.Metric) {
	f.mu.Lock()
	f.calls[m]++
	f.mu.Unlock()
}

func (f *Fake) CPU(ctx context.Context) (probe.CPUTimes, error) {
	f.record(metrics.MetricCPU)
	if f.CPUFunc == nil {
		return probe.CPUTimes{}, probe.Unsupported("CPU")
	}
	return f.CPUFunc(ctx)
}

func (f *Fake) Memory(ctx context.Context) (metrics.Memory, error) {
	f.record(metrics.MetricMemory)
	if f.MemoryFunc == nil {
		return metrics.Memory{}, probe.Unsupported("Memory")
	}
	return f.MemoryFunc(ctx)
}

func (f *Fake) Network(ctx context.Context) ([]metrics.NetInterface, error) {
	f.record(metrics.MetricNetwork)
	if f.NetworkFunc == nil {
		return nil, probe.Unsupported("Network")
	}
	return f.NetworkFunc(ctx)
}

func (f *Fake) Disks(ctx context.Context) ([]metrics.Disk, error) {
	f.record(metrics.MetricDisks)
	if f.DisksFunc == nil {
		return nil, probe.Unsupported("Disks")
	}
	return f.DisksFunc(ctx)
}

func (f *Fake) Temperatures(ctx context.Context) ([]metrics.Temperature, error) {
	f.record(metrics.MetricTemperatures)
	if f.TemperaturesFunc == nil {
		return nil, probe.Unsupported("Temperature sensors")
	}
	return f.TemperaturesFunc(ctx)
}

func (f *Fake) Battery(ctx context.Context) (metrics.Battery, error) {
	f.record(metrics.MetricBattery)
	if f.BatteryFunc == nil {
		return metrics.Battery{}, probe.Unsupported("Battery")
	}
	return f.BatteryFunc(ctx)
}

func (f *Fake) Processes(ctx context.Context) ([]metrics.ProcessSample, error) {
	f.record(metrics.MetricProcesses)
	if f.ProcessesFunc == nil {
		return nil, probe.Unsupported("Processes")
	}
	return f.ProcessesFunc(ctx)
}

func (f *Fake) Host(ctx context.Context) (metrics.HostInfo, error) {
	f.record(metrics.MetricHost)
	if f.HostFunc == nil {
		return metrics.HostInfo{}, probe.Unsupported("Host info")
	}
	return f.HostFunc(ctx)
}

// Static returns a function that always yields v.
func Static[T any](v T) func(context.Context) (T, error) {
	return func(context.Context) (T, error) { return v, nil }
}

// Failing returns a function that always yields err.
func Failing[T any](err error) func(context.Context) (T, error) {
	return func(context.Context) (T, error) {
		var zero T
		return zero, err
	}
}

// Sequence returns a function yielding vs in order, repeating the last one.
func Sequence[T any](vs ...T) func(context.Context) (T, error) {
	var mu sync.Mutex
	i := 0
	return func(context.Context) (T, error) {
		mu.Lock()
		defer mu.Unlock()
		v := vs[i]
		if i < len(vs)-1 {
			i++
		}
		return v, nil
	}
}

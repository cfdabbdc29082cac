// Package probe queries the operating system for raw metric values.
//
// Every operation is independent: a failure in one never affects another,
// and a metric the platform cannot report returns an error carrying the
// UNSUPPORTED code instead of a zero value. Rates and percentages derived
// from counters are not computed here; see the harvest package.
package probe

import (
	"context"

	"github.com/rileyhilliard/rrtop/internal/errors"
	"github.com/rileyhilliard/rrtop/internal/metrics"
)

// Probe is the capability set every platform variant implements.
type Probe interface {
	CPU(ctx context.Context) (CPUTimes, error)
	Memory(ctx context.Context) (metrics.Memory, error)
	Network(ctx context.Context) ([]metrics.NetInterface, error)
	Disks(ctx context.Context) ([]metrics.Disk, error)
	Temperatures(ctx context.Context) ([]metrics.Temperature, error)
	Battery(ctx context.Context) (metrics.Battery, error)
	Processes(ctx context.Context) ([]metrics.ProcessSample, error)
	Host(ctx context.Context) (metrics.HostInfo, error)
}

// CoreTimes is a pair of cumulative tick counters for one CPU (or all of them).
type CoreTimes struct {
	Busy  float64
	Total float64
}

// CPUTimes holds raw cumulative CPU counters. Utilization is the ratio of
// the Busy and Total deltas between two samples.
type CPUTimes struct {
	Total   CoreTimes
	PerCore []CoreTimes
	Load    [3]float64
}

// Unsupported returns an UNSUPPORTED error for the named metric.
func Unsupported(what string) error {
	return errors.New(errors.ErrUnsupported,
		what+" is not available on this platform",
		"")
}

// IsUnsupported reports whether err means the metric can never be read here.
func IsUnsupported(err error) bool {
	return errors.IsCode(err, errors.ErrUnsupported)
}

// Call invokes the probe operation for m and returns its raw result.
// The harvester uses it to drive every metric through one code path.
func Call(ctx context.Context, p Probe, m metrics.Metric) (any, error) {
	switch m {
	case metrics.MetricCPU:
		return p.CPU(ctx)
	case metrics.MetricMemory:
		return p.Memory(ctx)
	case metrics.MetricNetwork:
		return p.Network(ctx)
	case metrics.MetricDisks:
		return p.Disks(ctx)
	case metrics.MetricTemperatures:
		return p.Temperatures(ctx)
	case metrics.MetricBattery:
		return p.Battery(ctx)
	case metrics.MetricProcesses:
		return p.Processes(ctx)
	case metrics.MetricHost:
		return p.Host(ctx)
	}
	return nil, Unsupported(m.String())
}

package metrics

import "fmt"

// Metric identifies one probe-backed metric family.
type Metric int

const (
	MetricCPU Metric = iota
	MetricMemory
	MetricNetwork
	MetricDisks
	MetricTemperatures
	MetricBattery
	MetricProcesses
	MetricHost

	// NumMetrics is the number of Metric values.
	NumMetrics
)

var metricNames = [NumMetrics]string{
	MetricCPU:          "cpu",
	MetricMemory:       "memory",
	MetricNetwork:      "network",
	MetricDisks:        "disks",
	MetricTemperatures: "temperatures",
	MetricBattery:      "battery",
	MetricProcesses:    "processes",
	MetricHost:         "host",
}

func (m Metric) String() string {
	if m < 0 || m >= NumMetrics {
		return fmt.Sprintf("metric(%d)", int(m))
	}
	return metricNames[m]
}

// AllMetrics returns every Metric in declaration order.
func AllMetrics() []Metric {
	out := make([]Metric, NumMetrics)
	for i := range out {
		out[i] = Metric(i)
	}
	return out
}

// ParseMetric resolves a metric name as used in configuration.
func ParseMetric(name string) (Metric, bool) {
	for i, n := range metricNames {
		if n == name {
			return Metric(i), true
		}
	}
	return 0, false
}

// Capability is the result of the one-time startup detection.
type Capability int

const (
	CapabilityUnknown Capability = iota
	CapabilitySupported
	CapabilityUnsupported
)

func (c Capability) String() string {
	switch c {
	case CapabilitySupported:
		return "supported"
	case CapabilityUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Health is the harvester's view of one metric's probe.
type Health struct {
	Capability Capability
	// Failures counts consecutive failed or late cycles.
	Failures int
	// Degraded is set after sustained failure. The UI renders N/A.
	Degraded  bool
	LastError string
}

// Available reports whether the UI should expect values for the metric.
func (h Health) Available() bool {
	return h.Capability != CapabilityUnsupported && !h.Degraded
}

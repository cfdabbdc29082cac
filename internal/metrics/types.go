package metrics

import "time"

// Snapshot is one immutable bundle of all measurements taken in a poll cycle.
// Every fresh reading shares Timestamp as its SampledAt.
type Snapshot struct {
	Timestamp time.Time
	// Seq increases by one per published snapshot.
	Seq uint64

	CPU          Reading[CPU]
	Memory       Reading[Memory]
	Network      Reading[[]NetInterface]
	Disks        Reading[[]Disk]
	Temperatures Reading[[]Temperature]
	Battery      Reading[Battery]
	Processes    Reading[[]ProcessSample]
	Host         Reading[HostInfo]

	Health [NumMetrics]Health
}

// CPU holds utilization derived from counter deltas. Values are None on the
// first cycle because there is nothing to diff against.
type CPU struct {
	Total   Optional[float64]
	PerCore []Optional[float64]
	Load    [3]float64
	Cores   int
}

// Memory holds RAM and swap usage in bytes.
type Memory struct {
	Total     uint64
	Used      uint64
	Available uint64
	Cached    uint64
	SwapTotal uint64
	SwapUsed  uint64
}

// UsedPercent returns RAM usage as a percentage of Total.
func (m Memory) UsedPercent() float64 {
	return percent(m.Used, m.Total)
}

// SwapPercent returns swap usage as a percentage of SwapTotal.
func (m Memory) SwapPercent() float64 {
	return percent(m.SwapUsed, m.SwapTotal)
}

func percent(used, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total) * 100
}

// NetInterface holds cumulative counters and derived rates for one interface.
type NetInterface struct {
	Name     string
	RxBytes  uint64
	TxBytes  uint64
	Loopback bool
	RxRate   Optional[float64] // bytes/s
	TxRate   Optional[float64] // bytes/s
}

// Disk joins IO counters, filesystem usage and hardware metadata. Counters
// are None when the platform has no IO statistics for the device.
type Disk struct {
	Name       string
	Mount      string
	FSType     string
	ReadBytes  Optional[uint64]
	WriteBytes Optional[uint64]
	ReadRate   Optional[float64] // bytes/s
	WriteRate  Optional[float64] // bytes/s
	Total      uint64
	Used       uint64
	Free       uint64
	Model      string
	DriveType  string
}

// UsedPercent returns filesystem usage as a percentage of Total.
func (d Disk) UsedPercent() float64 {
	return percent(d.Used, d.Total)
}

// Temperature is a single sensor reading in degrees Celsius.
type Temperature struct {
	Sensor   string
	Celsius  float64
	High     float64
	Critical float64
}

// BatteryState is the charging state reported by the platform.
type BatteryState string

const (
	BatteryCharging    BatteryState = "charging"
	BatteryDischarging BatteryState = "discharging"
	BatteryFull        BatteryState = "full"
	BatteryUnknown     BatteryState = "unknown"
)

// Battery holds the charge of the primary battery.
type Battery struct {
	Name    string
	Percent float64
	State   BatteryState
}

// ProcessState is a coarse scheduler state.
type ProcessState string

const (
	ProcRunning  ProcessState = "running"
	ProcSleeping ProcessState = "sleeping"
	ProcZombie   ProcessState = "zombie"
	ProcStopped  ProcessState = "stopped"
	ProcUnknown  ProcessState = "unknown"
)

// ProcessSample is one process as enumerated in a cycle. CPU% is not stored
// here: it is derived by the process table from CPUTime deltas.
type ProcessSample struct {
	PID        int32
	PPID       Optional[int32]
	Name       string
	Command    string
	User       string
	CPUTime    Optional[float64] // cumulative user+system seconds
	RSS        uint64
	ReadBytes  Optional[uint64]
	WriteBytes Optional[uint64]
	State      ProcessState
	CreateTime int64 // ms since epoch, distinguishes reused pids
}

// HostInfo describes the machine being observed.
type HostInfo struct {
	Hostname  string
	OS        string
	Platform  string
	Kernel    string
	Uptime    time.Duration
	Processes uint64
}

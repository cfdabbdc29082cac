package probe

import (
	"context"
	"math"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"

	"github.com/rileyhilliard/rrtop/internal/errors"
	"github.com/rileyhilliard/rrtop/internal/logger"
	"github.com/rileyhilliard/rrtop/internal/metrics"
)

// System reads metrics from the local host through gopsutil. Methods may be
// called concurrently, but never concurrently for the same metric.
type System struct {
	log logger.Logger

	loopOnce  sync.Once
	loopbacks map[string]bool

	diskMu     sync.Mutex
	diskMeta   map[string]diskMeta
	diskMetaAt time.Time

	users *userCache
}

// New returns the probe for the current platform.
func New(log logger.Logger) *System {
	if log == nil {
		log = logger.NewEnvLogger("[probe]")
	}
	// ghw prints warnings to stderr, which would corrupt the TUI.
	if os.Getenv("GHW_DISABLE_WARNINGS") == "" {
		_ = os.Setenv("GHW_DISABLE_WARNINGS", "1")
	}
	return &System{
		log:   log,
		users: newUserCache(),
	}
}

// CPU returns aggregate and per-core tick counters plus load averages.
func (s *System) CPU(ctx context.Context) (CPUTimes, error) {
	all, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return CPUTimes{}, errors.Wrap(err, "Reading CPU times failed")
	}
	if len(all) == 0 {
		return CPUTimes{}, errors.New(errors.ErrProbe, "Reading CPU times returned no data", "")
	}

	out := CPUTimes{Total: coreTimes(all[0])}

	perCore, err := cpu.TimesWithContext(ctx, true)
	if err != nil {
		s.log.Debug("per-core CPU times: %v", err)
	}
	for _, t := range perCore {
		out.PerCore = append(out.PerCore, coreTimes(t))
	}

	// Load averages do not exist on every platform; leave them zero there.
	if avg, err := load.AvgWithContext(ctx); err == nil && avg != nil {
		out.Load = [3]float64{avg.Load1, avg.Load5, avg.Load15}
	}
	return out, nil
}

func coreTimes(t cpu.TimesStat) CoreTimes {
	total := t.User + t.System + t.Idle + t.Nice + t.Iowait + t.Irq +
		t.Softirq + t.Steal + t.Guest + t.GuestNice
	return CoreTimes{
		Busy:  total - t.Idle - t.Iowait,
		Total: total,
	}
}

// Memory returns RAM and swap usage.
func (s *System) Memory(ctx context.Context) (metrics.Memory, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return metrics.Memory{}, errors.Wrap(err, "Reading memory usage failed")
	}
	out := metrics.Memory{
		Total:     vm.Total,
		Used:      vm.Used,
		Available: vm.Available,
		Cached:    vm.Cached,
	}

	swap, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		s.log.Debug("swap usage: %v", err)
		return out, nil
	}
	out.SwapTotal = swap.Total
	out.SwapUsed = swap.Used
	return out, nil
}

// Network returns cumulative byte counters per interface.
func (s *System) Network(ctx context.Context) ([]metrics.NetInterface, error) {
	counters, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, errors.Wrap(err, "Reading network counters failed")
	}

	s.loopOnce.Do(func() { s.loopbacks = loopbackInterfaces(ctx) })

	out := make([]metrics.NetInterface, 0, len(counters))
	for _, c := range counters {
		out = append(out, metrics.NetInterface{
			Name:     c.Name,
			RxBytes:  c.BytesRecv,
			TxBytes:  c.BytesSent,
			Loopback: s.loopbacks[c.Name] || c.Name == "lo" || strings.HasPrefix(c.Name, "lo0"),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func loopbackInterfaces(ctx context.Context) map[string]bool {
	out := make(map[string]bool)
	ifaces, err := net.InterfacesWithContext(ctx)
	if err != nil {
		return out
	}
	for _, iface := range ifaces {
		for _, flag := range iface.Flags {
			if flag == "loopback" {
				out[iface.Name] = true
			}
		}
	}
	return out
}

// Temperatures returns every keyed sensor with a finite reading.
func (s *System) Temperatures(ctx context.Context) ([]metrics.Temperature, error) {
	temps, err := host.SensorsTemperaturesWithContext(ctx)
	if err != nil && len(temps) == 0 {
		if isNotImplemented(err) {
			return nil, Unsupported("Temperature sensors")
		}
		return nil, errors.Wrap(err, "Reading temperature sensors failed")
	}
	if err != nil {
		// Partial results come back with a warnings error.
		s.log.Debug("temperature sensors: %v", err)
	}

	out := temperatures(temps)
	if len(out) == 0 {
		return nil, Unsupported("Temperature sensors")
	}
	return out, nil
}

// temperatures keeps one reading per sensor key. Zero and sub-zero values
// are real readings.
func temperatures(temps []host.TemperatureStat) []metrics.Temperature {
	out := make([]metrics.Temperature, 0, len(temps))
	seen := make(map[string]bool, len(temps))
	for _, t := range temps {
		if math.IsNaN(t.Temperature) || math.IsInf(t.Temperature, 0) {
			continue
		}
		key := strings.TrimSpace(t.SensorKey)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, metrics.Temperature{
			Sensor:   key,
			Celsius:  t.Temperature,
			High:     t.High,
			Critical: t.Critical,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sensor < out[j].Sensor })
	return out
}

// Host returns static host identity plus uptime and process count.
func (s *System) Host(ctx context.Context) (metrics.HostInfo, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return metrics.HostInfo{}, errors.Wrap(err, "Reading host info failed")
	}
	out := metrics.HostInfo{
		Hostname:  info.Hostname,
		OS:        info.OS,
		Platform:  strings.TrimSpace(info.Platform + " " + info.PlatformVersion),
		Kernel:    info.KernelVersion,
		Uptime:    time.Duration(info.Uptime) * time.Second,
		Processes: info.Procs,
	}
	if uptime, procs, ok := sysinfo(); ok {
		out.Uptime = uptime
		out.Processes = procs
	}
	return out, nil
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not implemented") || strings.Contains(msg, "not supported")
}

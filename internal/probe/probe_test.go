package probe

import (
	"context"
	stderrors "errors"
	"math"
	"testing"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/stretchr/testify/assert"

	"github.com/rileyhilliard/rrtop/internal/errors"
	"github.com/rileyhilliard/rrtop/internal/metrics"
)

func TestUnsupported(t *testing.T) {
	err := Unsupported("Battery")
	assert.True(t, IsUnsupported(err))
	assert.Contains(t, err.Error(), "Battery is not available on this platform")

	wrapped := errors.WrapWithCode(err, errors.ErrProbe, "Reading battery failed", "")
	assert.True(t, IsUnsupported(wrapped))

	assert.False(t, IsUnsupported(errors.Wrap(stderrors.New("EACCES"), "Reading battery failed")))
	assert.False(t, IsUnsupported(nil))
}

func TestCoreTimes(t *testing.T) {
	ct := coreTimes(cpu.TimesStat{User: 60, System: 30, Idle: 890, Iowait: 10, Irq: 5, Softirq: 5})

	assert.InDelta(t, 1000.0, ct.Total, 0.0001)
	assert.InDelta(t, 100.0, ct.Busy, 0.0001, "idle and iowait are not busy")
}

func TestProcessState(t *testing.T) {
	tests := []struct {
		in   string
		want metrics.ProcessState
	}{
		{process.Running, metrics.ProcRunning},
		{process.Sleep, metrics.ProcSleeping},
		{process.Idle, metrics.ProcSleeping},
		{process.Zombie, metrics.ProcZombie},
		{process.Stop, metrics.ProcStopped},
		{"", metrics.ProcUnknown},
		{"weird", metrics.ProcUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, processState(tt.in))
		})
	}
}

func TestExited(t *testing.T) {
	assert.True(t, exited(process.ErrorProcessNotRunning))
	assert.False(t, exited(stderrors.New("permission denied")))
	assert.False(t, exited(nil))
}

func TestPhysicalPartition(t *testing.T) {
	tests := []struct {
		name string
		part disk.PartitionStat
		want bool
	}{
		{"root ext4", disk.PartitionStat{Device: "/dev/nvme0n1p2", Mountpoint: "/", Fstype: "ext4"}, true},
		{"tmpfs", disk.PartitionStat{Device: "tmpfs", Mountpoint: "/run", Fstype: "tmpfs"}, false},
		{"loop snap", disk.PartitionStat{Device: "/dev/loop3", Mountpoint: "/snap/core/1", Fstype: "ext4"}, false},
		{"proc subtree", disk.PartitionStat{Device: "/dev/sda1", Mountpoint: "/proc/fs", Fstype: "ext4"}, false},
		{"windows drive", disk.PartitionStat{Device: "C:", Mountpoint: "C:", Fstype: "NTFS"}, true},
		{"no mountpoint", disk.PartitionStat{Device: "/dev/sdb1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, physicalPartition(tt.part))
		})
	}
}

func TestDriveTypeLabel(t *testing.T) {
	assert.Equal(t, "NVMe", driveTypeLabel("ssd", "nvme"))
	assert.Equal(t, "SSD", driveTypeLabel("ssd", "scsi"))
	assert.Equal(t, "SCSI", driveTypeLabel("unknown", "scsi"))
	assert.Equal(t, "", driveTypeLabel("", "unknown"))
}

func TestIsNotImplemented(t *testing.T) {
	assert.True(t, isNotImplemented(stderrors.New("not implemented yet")))
	assert.True(t, isNotImplemented(stderrors.New("Operation Not Supported")))
	assert.False(t, isNotImplemented(stderrors.New("permission denied")))
	assert.False(t, isNotImplemented(nil))
}

// stubProbe records which method Call dispatched to.
type stubProbe struct {
	hit string
}

func (s *stubProbe) CPU(context.Context) (CPUTimes, error) {
	s.hit = "cpu"
	return CPUTimes{}, nil
}

func (s *stubProbe) Memory(context.Context) (metrics.Memory, error) {
	s.hit = "memory"
	return metrics.Memory{}, nil
}

func (s *stubProbe) Network(context.Context) ([]metrics.NetInterface, error) {
	s.hit = "network"
	return nil, nil
}

func (s *stubProbe) Disks(context.Context) ([]metrics.Disk, error) {
	s.hit = "disks"
	return nil, nil
}

func (s *stubProbe) Temperatures(context.Context) ([]metrics.Temperature, error) {
	s.hit = "temperatures"
	return nil, nil
}

func (s *stubProbe) Battery(context.Context) (metrics.Battery, error) {
	s.hit = "battery"
	return metrics.Battery{}, nil
}

func (s *stubProbe) Processes(context.Context) ([]metrics.ProcessSample, error) {
	s.hit = "processes"
	return nil, nil
}

func (s *stubProbe) Host(context.Context) (metrics.HostInfo, error) {
	s.hit = "host"
	return metrics.HostInfo{}, nil
}

func TestCallDispatchesEveryMetric(t *testing.T) {
	for _, m := range metrics.AllMetrics() {
		t.Run(m.String(), func(t *testing.T) {
			p := &stubProbe{}
			_, err := Call(context.Background(), p, m)
			assert.NoError(t, err)
			assert.Equal(t, m.String(), p.hit)
		})
	}

	_, err := Call(context.Background(), &stubProbe{}, metrics.NumMetrics)
	assert.True(t, IsUnsupported(err))
}

func TestTemperaturesKeepsColdReadings(t *testing.T) {
	got := temperatures([]host.TemperatureStat{
		{SensorKey: "outdoor", Temperature: -12.5},
		{SensorKey: "coolant", Temperature: 0},
		{SensorKey: "cpu", Temperature: 54, High: 80, Critical: 100},
		{SensorKey: "cpu", Temperature: 99},
		{SensorKey: " ", Temperature: 40},
		{SensorKey: "broken", Temperature: math.NaN()},
		{SensorKey: "pegged", Temperature: math.Inf(1)},
	})

	assert.Equal(t, []metrics.Temperature{
		{Sensor: "coolant", Celsius: 0},
		{Sensor: "cpu", Celsius: 54, High: 80, Critical: 100},
		{Sensor: "outdoor", Celsius: -12.5},
	}, got)
}

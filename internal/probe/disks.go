package probe

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jaypipes/ghw"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/rileyhilliard/rrtop/internal/errors"
	"github.com/rileyhilliard/rrtop/internal/metrics"
)

// diskMetaTTL bounds how often ghw walks the block devices.
const diskMetaTTL = 5 * time.Minute

type diskMeta struct {
	Model     string
	DriveType string
}

// Pseudo and virtual filesystems that never back a real disk.
var ignoredFSTypes = map[string]struct{}{
	"autofs":     {},
	"cgroup":     {},
	"cgroup2":    {},
	"configfs":   {},
	"debugfs":    {},
	"devfs":      {},
	"devpts":     {},
	"devtmpfs":   {},
	"fusectl":    {},
	"hugetlbfs":  {},
	"mqueue":     {},
	"nsfs":       {},
	"overlay":    {},
	"proc":       {},
	"pstore":     {},
	"securityfs": {},
	"squashfs":   {},
	"sysfs":      {},
	"tmpfs":      {},
	"tracefs":    {},
}

// Disks returns one row per mounted physical filesystem with its IO counters
// and usage. Devices without IO statistics keep None counters.
func (s *System) Disks(ctx context.Context) ([]metrics.Disk, error) {
	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		return nil, errors.Wrap(err, "Listing disk partitions failed")
	}

	counters, err := disk.IOCountersWithContext(ctx)
	if err != nil {
		s.log.Debug("disk IO counters: %v", err)
	}
	meta := s.diskMetadata()

	out := make([]metrics.Disk, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		if !physicalPartition(p) || seen[p.Mountpoint] {
			continue
		}
		seen[p.Mountpoint] = true

		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil || usage == nil {
			continue
		}

		name := filepath.Base(p.Device)
		row := metrics.Disk{
			Name:   name,
			Mount:  p.Mountpoint,
			FSType: p.Fstype,
			Total:  usage.Total,
			Used:   usage.Used,
			Free:   usage.Free,
		}
		if io, ok := counters[name]; ok {
			row.ReadBytes = metrics.Some(io.ReadBytes)
			row.WriteBytes = metrics.Some(io.WriteBytes)
		}
		if m, ok := meta[p.Mountpoint]; ok {
			row.Model = m.Model
			row.DriveType = m.DriveType
		}
		out = append(out, row)
	}

	if len(out) == 0 {
		return nil, errors.New(errors.ErrProbe, "No mounted disks could be read", "")
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Mount < out[j].Mount })
	return out, nil
}

func physicalPartition(p disk.PartitionStat) bool {
	if p.Mountpoint == "" {
		return false
	}
	if _, ignore := ignoredFSTypes[p.Fstype]; ignore {
		return false
	}
	mp := p.Mountpoint
	if strings.HasPrefix(mp, "/sys/") || strings.HasPrefix(mp, "/proc/") || strings.HasPrefix(mp, "/dev/") {
		return false
	}
	dev := p.Device
	if strings.Contains(dev, "loop") {
		return false
	}
	// Windows drive letters carry no /dev prefix.
	return strings.HasPrefix(dev, "/dev/") || (len(mp) >= 2 && mp[1] == ':')
}

// diskMetadata maps mountpoints to hardware model and drive type. Lookup
// failures are not fatal: rows simply lack the metadata.
func (s *System) diskMetadata() map[string]diskMeta {
	s.diskMu.Lock()
	defer s.diskMu.Unlock()

	if s.diskMeta != nil && time.Since(s.diskMetaAt) < diskMetaTTL {
		return s.diskMeta
	}

	info, err := ghw.Block()
	if err != nil {
		s.log.Debug("disk metadata: %v", err)
		if s.diskMeta == nil {
			s.diskMeta = map[string]diskMeta{}
		}
		s.diskMetaAt = time.Now()
		return s.diskMeta
	}

	meta := make(map[string]diskMeta)
	for _, d := range info.Disks {
		model := strings.Join(strings.Fields(d.Vendor+" "+d.Model), " ")
		driveType := driveTypeLabel(d.DriveType.String(), d.StorageController.String())
		for _, p := range d.Partitions {
			if p == nil || p.MountPoint == "" {
				continue
			}
			meta[p.MountPoint] = diskMeta{Model: model, DriveType: driveType}
		}
	}

	s.diskMeta = meta
	s.diskMetaAt = time.Now()
	return meta
}

func driveTypeLabel(driveType, controller string) string {
	controller = strings.TrimSpace(controller)
	if strings.EqualFold(controller, "nvme") {
		return "NVMe"
	}
	driveType = strings.TrimSpace(driveType)
	if driveType == "" || strings.EqualFold(driveType, "unknown") {
		if controller != "" && !strings.EqualFold(controller, "unknown") {
			return strings.ToUpper(controller)
		}
		return ""
	}
	return strings.ToUpper(driveType)
}

//go:build linux

package probe

import (
	"time"

	"golang.org/x/sys/unix"
)

// sysinfo reads uptime and the process count in one syscall.
func sysinfo() (time.Duration, uint64, bool) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, 0, false
	}
	return time.Duration(info.Uptime) * time.Second, uint64(info.Procs), true
}

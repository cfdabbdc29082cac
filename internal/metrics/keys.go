package metrics

import (
	"fmt"
	"strconv"
	"strings"
)

// Metric keys used by the time-series store.
const (
	KeyCPUTotal = "cpu.total"
	KeyMemRAM   = "mem.ram"
	KeyMemSwap  = "mem.swap"
	KeyNetRx    = "net.rx"
	KeyNetTx    = "net.tx"
	KeyBattery  = "battery.charge"
	keyCorePfx  = "cpu.core."
	keyNetIfPfx = "net.if."
	keyDiskPfx  = "disk."
	keyTempPfx  = "temp."
	suffixRx    = ".rx"
	suffixTx    = ".tx"
	suffixRead  = ".read"
	suffixWrite = ".write"
)

// Key prefixes for families with a variable component.
const (
	PrefixCore  = keyCorePfx
	PrefixNetIf = keyNetIfPfx
	PrefixDisk  = keyDiskPfx
	PrefixTemp  = keyTempPfx
)

// CoreKey returns the key for CPU core n.
func CoreKey(n int) string {
	return keyCorePfx + strconv.Itoa(n)
}

// NetIfKey returns the rx or tx key for an interface.
func NetIfKey(iface string, tx bool) string {
	if tx {
		return keyNetIfPfx + iface + suffixTx
	}
	return keyNetIfPfx + iface + suffixRx
}

// DiskKey returns the read or write throughput key for a disk.
func DiskKey(disk string, write bool) string {
	if write {
		return keyDiskPfx + disk + suffixWrite
	}
	return keyDiskPfx + disk + suffixRead
}

// TempKey returns the key for a temperature sensor.
func TempKey(sensor string) string {
	return keyTempPfx + sensor
}

// ValidKey reports whether key belongs to a known metric family.
func ValidKey(key string) bool {
	switch key {
	case KeyCPUTotal, KeyMemRAM, KeyMemSwap, KeyNetRx, KeyNetTx, KeyBattery:
		return true
	}
	switch {
	case strings.HasPrefix(key, keyCorePfx):
		n, err := strconv.Atoi(key[len(keyCorePfx):])
		return err == nil && n >= 0
	case strings.HasPrefix(key, keyNetIfPfx):
		rest := key[len(keyNetIfPfx):]
		return hasNamedSuffix(rest, suffixRx) || hasNamedSuffix(rest, suffixTx)
	case strings.HasPrefix(key, keyDiskPfx):
		rest := key[len(keyDiskPfx):]
		return hasNamedSuffix(rest, suffixRead) || hasNamedSuffix(rest, suffixWrite)
	case strings.HasPrefix(key, keyTempPfx):
		return len(key) > len(keyTempPfx)
	}
	return false
}

// hasNamedSuffix requires a non-empty name before the suffix.
func hasNamedSuffix(s, suffix string) bool {
	return strings.HasSuffix(s, suffix) && len(s) > len(suffix)
}

// Family returns the metric family a key belongs to, used for retention
// overrides ("cpu", "mem", "net", "disk", "temp", "battery").
func Family(key string) string {
	if i := strings.IndexByte(key, '.'); i > 0 {
		return key[:i]
	}
	return key
}

// Families returns every metric family name.
func Families() []string {
	return []string{"cpu", "mem", "net", "disk", "temp", "battery"}
}

// KeyLabel returns a short human label for a key.
func KeyLabel(key string) string {
	switch key {
	case KeyCPUTotal:
		return "CPU"
	case KeyMemRAM:
		return "RAM"
	case KeyMemSwap:
		return "Swap"
	case KeyNetRx:
		return "RX"
	case KeyNetTx:
		return "TX"
	case KeyBattery:
		return "Battery"
	}
	switch {
	case strings.HasPrefix(key, keyCorePfx):
		return "C" + key[len(keyCorePfx):]
	case strings.HasPrefix(key, keyTempPfx):
		return key[len(keyTempPfx):]
	case strings.HasPrefix(key, keyNetIfPfx):
		return splitLabel(key[len(keyNetIfPfx):])
	case strings.HasPrefix(key, keyDiskPfx):
		return splitLabel(key[len(keyDiskPfx):])
	}
	return key
}

// splitLabel turns "eth0.rx" into "eth0 rx".
func splitLabel(rest string) string {
	if i := strings.LastIndexByte(rest, '.'); i > 0 {
		return fmt.Sprintf("%s %s", rest[:i], rest[i+1:])
	}
	return rest
}

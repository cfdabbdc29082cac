package timeseries

import (
	"math"
	"strings"
	"time"
)

// DefaultMaxPoints bounds a series when no retention is configured.
const DefaultMaxPoints = 600

// Retention bounds one series. Zero MaxAge means no age limit.
type Retention struct {
	MaxAge    time.Duration
	MaxPoints int
}

func (r Retention) normalized() Retention {
	if r.MaxPoints <= 0 {
		r.MaxPoints = DefaultMaxPoints
	}
	if r.MaxAge < 0 {
		r.MaxAge = 0
	}
	return r
}

// Policy resolves the retention for a key. Overrides are matched by key
// prefix ("cpu", "net.if.eth0"); the longest matching prefix wins.
type Policy struct {
	Default   Retention
	Overrides map[string]Retention
}

// For returns the retention for key.
func (p Policy) For(key string) Retention {
	best := -1
	out := p.Default
	for prefix, r := range p.Overrides {
		if !matchesPrefix(key, prefix) || len(prefix) <= best {
			continue
		}
		best = len(prefix)
		out = r
	}
	return out.normalized()
}

// matchesPrefix matches whole dot-separated segments, so "cpu" matches
// "cpu.core.1" but "cp" does not.
func matchesPrefix(key, prefix string) bool {
	if prefix == "" || !strings.HasPrefix(key, prefix) {
		return false
	}
	return len(key) == len(prefix) || key[len(prefix)] == '.'
}

// CapacityFor returns how many points cover maxWindow at the given sample
// interval, plus a little slack so a full-width graph can scroll smoothly.
func CapacityFor(maxWindow, interval time.Duration) int {
	if maxWindow <= 0 || interval <= 0 {
		return DefaultMaxPoints
	}
	n := int(math.Ceil(float64(maxWindow) / float64(interval)))
	return n + n/10 + 2
}

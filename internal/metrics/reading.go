package metrics

import "time"

// Status describes where a Reading's value came from.
type Status int

const (
	// StatusAbsent means no value has ever been sampled.
	StatusAbsent Status = iota
	// StatusFresh means the value was sampled in this cycle.
	StatusFresh
	// StatusStale means the probe failed or ran late this cycle and the
	// last good value was carried forward.
	StatusStale
	// StatusUnsupported means the platform cannot report this metric.
	StatusUnsupported
)

func (s Status) String() string {
	switch s {
	case StatusFresh:
		return "fresh"
	case StatusStale:
		return "stale"
	case StatusUnsupported:
		return "unsupported"
	default:
		return "absent"
	}
}

// Reading wraps one metric inside a snapshot.
type Reading[T any] struct {
	Value  T
	Status Status
	// SampledAt is when Value was actually measured. For stale readings it
	// is older than the snapshot timestamp.
	SampledAt time.Time
	// Err is a one-line description of the most recent failure, if any.
	Err string
}

// Fresh returns a Reading sampled at ts.
func Fresh[T any](v T, ts time.Time) Reading[T] {
	return Reading[T]{Value: v, Status: StatusFresh, SampledAt: ts}
}

// Unsupported returns a Reading for a metric the platform cannot report.
func Unsupported[T any]() Reading[T] {
	return Reading[T]{Status: StatusUnsupported}
}

// Get returns the value when it is fresh or stale.
func (r Reading[T]) Get() (T, bool) {
	if r.Status == StatusFresh || r.Status == StatusStale {
		return r.Value, true
	}
	var zero T
	return zero, false
}

// IsFresh reports whether the value was sampled in the current cycle.
func (r Reading[T]) IsFresh() bool {
	return r.Status == StatusFresh
}

// Stale returns a copy of r marked stale with the given error text.
// An absent or unsupported reading keeps its status.
func (r Reading[T]) Stale(errText string) Reading[T] {
	out := r
	out.Err = errText
	if r.Status == StatusFresh {
		out.Status = StatusStale
	}
	return out
}

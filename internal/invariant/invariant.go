// Package invariant reports broken internal invariants.
//
// A violation is a programming error (for example the dashboard asking the
// time-series store for a metric key that no widget can produce). Builds
// tagged rrtop_debug panic so the bug surfaces immediately; release builds
// log the violation and let the caller degrade to a "no data" display.
package invariant

import (
	"fmt"

	"github.com/rileyhilliard/rrtop/internal/errors"
	"github.com/rileyhilliard/rrtop/internal/logger"
)

// Violation reports a broken invariant and returns it as a QUERY error.
// It panics when Debug is true.
func Violation(log logger.Logger, format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if Debug {
		panic("invariant violated: " + msg)
	}
	logger.OrDefault(log).Error("invariant violated: %s", msg)
	return errors.New(errors.ErrQuery, msg, "")
}

// Check calls Violation when cond is false. It returns nil when cond holds.
func Check(log logger.Logger, cond bool, format string, args ...interface{}) error {
	if cond {
		return nil
	}
	return Violation(log, format, args...)
}

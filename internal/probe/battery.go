package probe

import (
	"context"
	"fmt"

	"github.com/distatus/battery"

	"github.com/rileyhilliard/rrtop/internal/errors"
	"github.com/rileyhilliard/rrtop/internal/metrics"
)

// getBatteries is a variable so tests can substitute the platform call.
var getBatteries = battery.GetAll

// Battery reports the first battery the platform exposes. Machines without
// one report the metric as unsupported.
func (s *System) Battery(ctx context.Context) (metrics.Battery, error) {
	if err := ctx.Err(); err != nil {
		return metrics.Battery{}, errors.Wrap(err, "Reading battery cancelled")
	}
	bats, err := getBatteries()
	return primaryBattery(bats, err)
}

// primaryBattery picks the first readable battery from a GetAll result.
// Per-battery errors only matter when no battery could be read at all.
func primaryBattery(bats []*battery.Battery, err error) (metrics.Battery, error) {
	if len(bats) == 0 {
		if err != nil {
			return metrics.Battery{}, errors.Wrap(err, "Reading battery failed")
		}
		return metrics.Battery{}, Unsupported("Battery")
	}

	var perBattery battery.Errors
	errors.As(err, &perBattery)

	lastErr := err
	for i, b := range bats {
		if i < len(perBattery) && perBattery[i] != nil {
			if _, fatal := perBattery[i].(battery.ErrFatal); fatal {
				lastErr = perBattery[i]
				continue
			}
		}
		if b == nil || b.Full <= 0 {
			lastErr = fmt.Errorf("battery %d reports no full capacity", i)
			continue
		}
		return metrics.Battery{
			Name:    fmt.Sprintf("BAT%d", i),
			Percent: min(b.Current/b.Full*100, 100),
			State:   batteryState(b.State.Raw),
		}, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no readable battery")
	}
	return metrics.Battery{}, errors.Wrap(lastErr, "Reading battery capacity failed")
}

func batteryState(s battery.AgnosticState) metrics.BatteryState {
	switch s {
	case battery.Charging:
		return metrics.BatteryCharging
	case battery.Discharging, battery.Empty:
		return metrics.BatteryDischarging
	case battery.Full, battery.Idle:
		return metrics.BatteryFull
	}
	return metrics.BatteryUnknown
}

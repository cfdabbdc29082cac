package probe

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/distatus/battery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/rrtop/internal/metrics"
)

func withBatteries(t *testing.T, bats []*battery.Battery, err error) {
	t.Helper()
	old := getBatteries
	getBatteries = func() ([]*battery.Battery, error) { return bats, err }
	t.Cleanup(func() { getBatteries = old })
}

func TestBatteryReadsFirstBattery(t *testing.T) {
	withBatteries(t, []*battery.Battery{
		{State: battery.State{Raw: battery.Discharging}, Current: 43500, Full: 50000},
		{State: battery.State{Raw: battery.Charging}, Current: 1, Full: 2},
	}, nil)

	b, err := New(nil).Battery(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "BAT0", b.Name)
	assert.InDelta(t, 87.0, b.Percent, 0.001)
	assert.Equal(t, metrics.BatteryDischarging, b.State)
}

func TestBatteryNoBatteryIsUnsupported(t *testing.T) {
	withBatteries(t, nil, nil)

	_, err := New(nil).Battery(context.Background())
	assert.True(t, IsUnsupported(err))
}

func TestBatteryPlatformErrorIsTransient(t *testing.T) {
	withBatteries(t, nil, battery.ErrFatal{Err: stderrors.New("EACCES")})

	_, err := New(nil).Battery(context.Background())
	require.Error(t, err)
	assert.False(t, IsUnsupported(err), "a failing battery query is retried, not given up on")
}

func TestBatterySkipsUnreadableBatteries(t *testing.T) {
	bats := []*battery.Battery{
		nil,
		{State: battery.State{Raw: battery.Full}, Current: 120, Full: 100},
	}
	withBatteries(t, bats, battery.Errors{battery.ErrFatal{Err: stderrors.New("gone")}, nil})

	b, err := New(nil).Battery(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "BAT1", b.Name)
	assert.Equal(t, 100.0, b.Percent, "capacity above full is clamped")
	assert.Equal(t, metrics.BatteryFull, b.State)

	withBatteries(t, []*battery.Battery{{Full: 0}}, nil)
	_, err = New(nil).Battery(context.Background())
	require.Error(t, err)
	assert.False(t, IsUnsupported(err))
}

func TestBatteryHonoursCancellation(t *testing.T) {
	called := false
	old := getBatteries
	getBatteries = func() ([]*battery.Battery, error) {
		called = true
		return nil, nil
	}
	t.Cleanup(func() { getBatteries = old })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(nil).Battery(ctx)
	require.Error(t, err)
	assert.False(t, called)
}

func TestBatteryState(t *testing.T) {
	assert.Equal(t, metrics.BatteryCharging, batteryState(battery.Charging))
	assert.Equal(t, metrics.BatteryDischarging, batteryState(battery.Empty))
	assert.Equal(t, metrics.BatteryFull, batteryState(battery.Full))
	assert.Equal(t, metrics.BatteryFull, batteryState(battery.Idle), "plugged in but not charging")
	assert.Equal(t, metrics.BatteryUnknown, batteryState(battery.Unknown))
	assert.Equal(t, metrics.BatteryUnknown, batteryState(battery.Undefined))
}

package dashboard

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/rrtop/internal/app"
	"github.com/rileyhilliard/rrtop/internal/config"
	"github.com/rileyhilliard/rrtop/internal/logger"
	"github.com/rileyhilliard/rrtop/internal/metrics"
	"github.com/rileyhilliard/rrtop/internal/probe/probetest"
	"github.com/rileyhilliard/rrtop/internal/timeseries"
)

const (
	testWidth  = 120
	testHeight = 40
)

type modelHarness struct {
	c     *Components
	snaps chan *metrics.Snapshot
	log   *logger.BufferLogger
}

func newModel(t *testing.T) (Model, *modelHarness) {
	t.Helper()
	log := logger.NewBufferLogger()
	c, err := Build(config.DefaultConfig(), &probetest.Fake{}, log)
	require.NoError(t, err)

	h := &modelHarness{c: c, snaps: make(chan *metrics.Snapshot, 1), log: log}
	m := NewModel(c.State, c.Store, c.Table, h.snaps, Options{
		Now: func() time.Time { return epoch.Add(2 * time.Second) },
		Log: log,
	})
	m, _ = send(t, m, tea.WindowSizeMsg{Width: testWidth, Height: testHeight})
	return m, h
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func testSnapshot(seq uint64, ts time.Time) *metrics.Snapshot {
	snap := &metrics.Snapshot{
		Timestamp: ts,
		Seq:       seq,
		CPU: metrics.Fresh(metrics.CPU{
			Total:   metrics.Some(42.0),
			PerCore: []metrics.Optional[float64]{metrics.Some(40.0), metrics.Some(44.0)},
			Load:    [3]float64{0.5, 0.4, 0.3},
			Cores:   2,
		}, ts),
		Memory: metrics.Fresh(metrics.Memory{Total: 8 << 30, Used: 2 << 30, SwapTotal: 1 << 30}, ts),
		Network: metrics.Fresh([]metrics.NetInterface{
			{Name: "eth0", RxRate: metrics.Some(2048.0), TxRate: metrics.Some(512.0)},
		}, ts),
		Disks: metrics.Fresh([]metrics.Disk{
			{Name: "sda1", Mount: "/", Total: 100 << 30, Used: 40 << 30},
		}, ts),
		Temperatures: metrics.Unsupported[[]metrics.Temperature](),
		Battery:      metrics.Unsupported[metrics.Battery](),
		Processes: metrics.Fresh([]metrics.ProcessSample{
			{PID: 1, Name: "init", CreateTime: 1, State: metrics.ProcSleeping},
			{PID: 42, Name: "bash", CreateTime: 2, State: metrics.ProcRunning},
		}, ts),
		Host: metrics.Fresh(metrics.HostInfo{Hostname: "box", Platform: "linux", Uptime: time.Hour}, ts),
	}
	for _, m := range metrics.AllMetrics() {
		snap.Health[m].Capability = metrics.CapabilitySupported
	}
	snap.Health[metrics.MetricTemperatures].Capability = metrics.CapabilityUnsupported
	snap.Health[metrics.MetricBattery].Capability = metrics.CapabilityUnsupported
	return snap
}

func focusKind(t *testing.T, m Model, k app.Kind) Model {
	t.Helper()
	for range 16 {
		if id, ok := m.state.Focused(); ok {
			if w, ok := m.state.Widget(id); ok && w.Kind == k {
				return m
			}
		}
		m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	}
	t.Fatalf("never focused %s", k)
	return m
}

func TestModelWaitsForFirstSnapshot(t *testing.T) {
	m, _ := newModel(t)

	view := m.View()
	assert.Contains(t, view, "collecting first sample")
	assert.Contains(t, view, "rrtop")
	assert.NotNil(t, m.Init())
}

func TestModelIngestsSnapshots(t *testing.T) {
	m, h := newModel(t)

	m, cmd := send(t, m, snapshotMsg{snap: testSnapshot(1, epoch)})
	assert.NotNil(t, cmd, "keeps listening for snapshots")

	assert.True(t, h.c.Store.Has(metrics.KeyCPUTotal))
	assert.Equal(t, 2, h.c.Table.Len())
	assert.Same(t, m.state.Snapshot(), m.state.Frame().Snapshot)

	view := m.View()
	for _, title := range []string{"CPU", "Memory", "Network", "Disks", "Processes"} {
		assert.Contains(t, view, title)
	}
	assert.Contains(t, view, "box")
	assert.Contains(t, view, "bash")
	assert.Contains(t, view, notAvailable, "unsupported widgets show N/A")

	lines := strings.Split(view, "\n")
	assert.Len(t, lines, testHeight)
	for i, l := range lines {
		assert.LessOrEqual(t, lipgloss.Width(l), testWidth, "line %d", i)
	}
}

func TestModelFreezeHoldsSnapshots(t *testing.T) {
	m, h := newModel(t)
	first := testSnapshot(1, epoch)
	m, _ = send(t, m, snapshotMsg{snap: first})

	m, _ = send(t, m, runeKey('f'))
	require.True(t, m.state.Frozen())
	assert.Contains(t, m.View(), "FROZEN")

	second := testSnapshot(2, epoch.Add(time.Second))
	m, _ = send(t, m, snapshotMsg{snap: second})
	assert.Same(t, first, m.state.Snapshot())
	assert.Equal(t, 1, h.c.Store.Len(metrics.KeyCPUTotal))

	m, _ = send(t, m, runeKey('f'))
	assert.False(t, m.state.Frozen())
	assert.Same(t, second, m.state.Snapshot())
	assert.Equal(t, 2, h.c.Store.Len(metrics.KeyCPUTotal))
	assert.Nil(t, m.pending)
}

func TestModelSearchTyping(t *testing.T) {
	m, _ := newModel(t)
	m, _ = send(t, m, snapshotMsg{snap: testSnapshot(1, epoch)})
	m = focusKind(t, m, app.KindProc)

	m, _ = send(t, m, runeKey('/'))
	require.True(t, m.state.Searching())
	assert.True(t, m.search.Focused())

	// q is text while editing, not quit.
	m, _ = send(t, m, runeKey('b'))
	m, _ = send(t, m, runeKey('q'))
	assert.False(t, m.quitting)
	assert.Equal(t, "bq", m.state.Query().Search.Text)
	assert.Contains(t, m.View(), "keep filter")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Equal(t, "b", m.state.Query().Search.Text)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.state.Searching())
	assert.False(t, m.search.Focused())
	assert.Equal(t, "b", m.state.Query().Search.Text, "accept keeps the filter")

	// Reopening starts from the applied text.
	m, _ = send(t, m, runeKey('/'))
	assert.Equal(t, "b", m.search.Value())
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.state.Searching())
	assert.Empty(t, m.state.Query().Search.Text, "cancel clears the filter")
}

func TestModelQuit(t *testing.T) {
	m, _ := newModel(t)

	m, cmd := send(t, m, runeKey('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())

	m, _ = newModel(t)
	m, cmd = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
}

func TestModelHelpOverlay(t *testing.T) {
	m, _ := newModel(t)
	m, _ = send(t, m, snapshotMsg{snap: testSnapshot(1, epoch)})

	m, _ = send(t, m, runeKey('?'))
	require.True(t, m.state.Help())
	assert.Contains(t, m.View(), "Keyboard Shortcuts")

	m, _ = send(t, m, runeKey('?'))
	assert.NotContains(t, m.View(), "Keyboard Shortcuts")
}

func TestModelSlotClosed(t *testing.T) {
	m, _ := newModel(t)
	m, cmd := send(t, m, slotClosedMsg{})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "harvester stopped")
}

func TestWaitForSnapshot(t *testing.T) {
	assert.Nil(t, waitForSnapshot(nil))

	ch := make(chan *metrics.Snapshot, 1)
	snap := testSnapshot(7, epoch)
	ch <- snap
	msg := waitForSnapshot(ch)()
	assert.Equal(t, snapshotMsg{snap: snap}, msg)

	close(ch)
	assert.Equal(t, slotClosedMsg{}, waitForSnapshot(ch)())
}

func TestMouseEvent(t *testing.T) {
	ev, ok := mouseEvent(tea.MouseMsg{X: 3, Y: 4, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.True(t, ok)
	assert.Equal(t, app.Mouse{X: 3, Y: 4, Kind: app.MouseClick}, ev)

	ev, ok = mouseEvent(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	require.True(t, ok)
	assert.Equal(t, app.MouseWheelDown, ev.Kind)

	_, ok = mouseEvent(tea.MouseMsg{Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	assert.False(t, ok)
	_, ok = mouseEvent(tea.MouseMsg{Action: tea.MouseActionMotion})
	assert.False(t, ok)
}

func TestRetentionPolicy(t *testing.T) {
	cfg := config.DefaultConfig()
	p := RetentionPolicy(cfg)

	assert.Equal(t, 10*time.Minute, p.Default.MaxAge)
	assert.Equal(t, timeseries.CapacityFor(10*time.Minute, time.Second), p.Default.MaxPoints)
	assert.Empty(t, p.Overrides)

	cfg.Retention.MaxPoints = 300
	cfg.Retention.Metrics = map[string]config.RetentionOverride{
		"net": {MaxPoints: 50},
		"cpu": {MaxAge: 20 * time.Minute},
	}
	p = RetentionPolicy(cfg)
	assert.Equal(t, 300, p.Default.MaxPoints)
	assert.Equal(t, timeseries.Retention{MaxAge: 10 * time.Minute, MaxPoints: 50}, p.Overrides["net"])
	assert.Equal(t, timeseries.CapacityFor(20*time.Minute, time.Second), p.Overrides["cpu"].MaxPoints)
}

func TestHarvestAndTableOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Interval = 2 * time.Second
	cfg.Probes.Disabled = []string{"battery"}
	cfg.Processes.CPUPerCore = true

	opts := HarvestOptions(cfg)
	assert.Equal(t, 2*time.Second, opts.Interval)
	assert.Equal(t, 3, opts.DegradeAfter)
	assert.Equal(t, 32, opts.MaxBackoff)
	assert.Equal(t, []metrics.Metric{metrics.MetricBattery}, opts.Disabled)

	assert.True(t, TableOptions(cfg).CPUPerCore)
}

func TestBuildRejectsBadLayout(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Layout = [][]string{{"bogus"}}
	_, err := Build(cfg, &probetest.Fake{}, logger.NewBufferLogger())
	assert.Error(t, err)
}

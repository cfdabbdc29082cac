package dashboard

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/rrtop/internal/app"
	"github.com/rileyhilliard/rrtop/internal/metrics"
)

func TestBoxFillsRect(t *testing.T) {
	r := renderer{theme: DefaultTheme}
	wf := app.WidgetFrame{Kind: app.KindCPU, Rect: app.Rect{W: 30, H: 6}, Window: time.Minute, Mode: app.ModeZoomed}

	out := r.box(panel{title: "CPU", info: "stale", footer: "/bash"}, wf, []string{"a very long line that will be clipped to the inner width"})
	lines := strings.Split(out, "\n")

	require.Len(t, lines, 6)
	for _, l := range lines {
		assert.Equal(t, 30, lipgloss.Width(l))
	}
	assert.Contains(t, lines[0], "CPU 1m (zoom)")
	assert.Contains(t, lines[0], "stale")
	assert.Contains(t, lines[5], "/bash")
}

func TestBoxTooSmallIsBlank(t *testing.T) {
	r := renderer{theme: DefaultTheme}
	out := r.box(panel{title: "CPU"}, app.WidgetFrame{Rect: app.Rect{W: 4, H: 3}}, nil)
	assert.Equal(t, "    \n    \n    ", out)
}

func TestReadingStates(t *testing.T) {
	r := renderer{theme: DefaultTheme}
	ts := epoch

	assert.Equal(t, readingState{note: "waiting"}, r.reading(nil, metrics.MetricCPU))

	snap := &metrics.Snapshot{Timestamp: ts}
	snap.CPU = metrics.Fresh(metrics.CPU{}, ts)
	assert.Equal(t, readingState{}, r.reading(snap, metrics.MetricCPU))

	snap.Battery = metrics.Unsupported[metrics.Battery]()
	assert.Equal(t, readingState{na: true}, r.reading(snap, metrics.MetricBattery))

	snap.Memory = metrics.Fresh(metrics.Memory{}, ts).Stale("timeout")
	assert.Equal(t, readingState{note: "stale"}, r.reading(snap, metrics.MetricMemory))

	snap.Health[metrics.MetricMemory].Degraded = true
	assert.Equal(t, readingState{na: true, note: "degraded"}, r.reading(snap, metrics.MetricMemory))

	assert.Equal(t, readingState{note: "waiting"}, r.reading(snap, metrics.MetricDisks))
}

func TestModeSuffix(t *testing.T) {
	assert.Equal(t, " 1m", modeSuffix(app.WidgetFrame{Kind: app.KindMem, Window: time.Minute, Mode: app.ModeFocused}))
	assert.Equal(t, " 30s (zoom)", modeSuffix(app.WidgetFrame{Kind: app.KindNet, Window: 30 * time.Second, Mode: app.ModeZoomed}))
	assert.Empty(t, modeSuffix(app.WidgetFrame{Kind: app.KindProc}))
}

func TestSplitHeights(t *testing.T) {
	assert.Equal(t, []int{4, 3}, splitHeights(7, 2))
	assert.Equal(t, []int{1, 1, 0}, splitHeights(2, 3))
	assert.Empty(t, splitHeights(5, 0))
}

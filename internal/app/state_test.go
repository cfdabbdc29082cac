package app

import (
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/rrtop/internal/config"
	"github.com/rileyhilliard/rrtop/internal/errors"
	"github.com/rileyhilliard/rrtop/internal/invariant"
	"github.com/rileyhilliard/rrtop/internal/logger"
	"github.com/rileyhilliard/rrtop/internal/metrics"
	"github.com/rileyhilliard/rrtop/internal/proctable"
	"github.com/rileyhilliard/rrtop/internal/timeseries"
)

var epoch = time.Unix(1_700_000_000, 0)

type harness struct {
	state *State
	store *timeseries.Store
	table *proctable.Table
	log   *logger.BufferLogger
}

func newHarness(t *testing.T, rows [][]config.WidgetSpec, q proctable.Query) *harness {
	t.Helper()
	log := logger.NewBufferLogger()
	h := &harness{
		store: timeseries.New(timeseries.Policy{}, log),
		table: proctable.New(proctable.Options{}, log),
		log:   log,
	}
	st, err := New(Options{
		Rows:          rows,
		DefaultWindow: time.Minute,
		MinWindow:     10 * time.Second,
		MaxWindow:     10 * time.Minute,
		Query:         q,
	}, h.store, h.table, log)
	require.NoError(t, err)
	h.state = st
	return h
}

func defaultHarness(t *testing.T) *harness {
	t.Helper()
	rows, err := config.DefaultConfig().Rows()
	require.NoError(t, err)
	h := newHarness(t, rows, proctable.Query{})
	h.state.Handle(Resize{Width: 100, Height: 42})
	return h
}

func procOnly() [][]config.WidgetSpec {
	return [][]config.WidgetSpec{{{Kind: config.WidgetProc, Weight: 1}}}
}

// setProcs feeds one process cycle into the table.
func (h *harness) setProcs(procs ...metrics.ProcessSample) {
	ts := epoch.Add(time.Duration(h.table.Generation()) * time.Second)
	h.table.Update(&metrics.Snapshot{
		Timestamp: ts,
		Memory:    metrics.Fresh(metrics.Memory{Total: 1 << 30}, ts),
		Processes: metrics.Fresh(procs, ts),
	})
}

func sample(pid int32, rss uint64) metrics.ProcessSample {
	return metrics.ProcessSample{
		PID:        pid,
		Name:       fmt.Sprintf("p%d", pid),
		RSS:        rss,
		CreateTime: int64(pid),
	}
}

func focusedID(t *testing.T, s *State) int {
	t.Helper()
	id, ok := s.Focused()
	require.True(t, ok, "expected a focused widget")
	return id
}

func focusKind(t *testing.T, s *State, k Kind) {
	t.Helper()
	for range s.Widgets() {
		if id, ok := s.Focused(); ok && s.widgets[id].Kind == k {
			return
		}
		s.Handle(ActNextWidget)
	}
	require.Failf(t, "widget not found", "no %s widget", k)
}

func TestNewRequiresWidgets(t *testing.T) {
	_, err := New(Options{}, nil, nil, logger.NewBufferLogger())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Processes.Sort = "name"
	cfg.Processes.Descending = false
	cfg.Processes.Tree = true
	cfg.DisabledWidgets = []string{config.WidgetBattery}

	opts, err := OptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, proctable.Query{Sort: proctable.SortName, Tree: true}, opts.Query)
	assert.Equal(t, time.Minute, opts.DefaultWindow)
	assert.Len(t, opts.Rows[1], 1, "battery dropped from the memory row")
}

func TestDefaultLayoutGeometry(t *testing.T) {
	h := defaultHarness(t)
	ws := h.state.Widgets()
	require.Len(t, ws, 7)

	want := map[Kind]Rect{
		KindCPU:     {0, 1, 100, 10},
		KindMem:     {0, 11, 67, 10},
		KindBattery: {67, 11, 33, 10},
		KindNet:     {0, 21, 50, 10},
		KindTemp:    {50, 21, 50, 10},
		KindDisk:    {0, 31, 34, 10},
		KindProc:    {34, 31, 66, 10},
	}
	for _, w := range ws {
		assert.Equal(t, want[w.Kind], w.Rect, "kind %s", w.Kind)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, h.state.Order())
}

func TestSplitAlwaysSumsToTotal(t *testing.T) {
	for total := 0; total < 50; total++ {
		parts := split(total, []int{1, 2, 3})
		sum := 0
		for _, p := range parts {
			sum += p
		}
		assert.Equal(t, total, sum)
	}
}

func TestFocusOrderFollowsScreenPosition(t *testing.T) {
	log := logger.NewBufferLogger()
	rows := [][]config.WidgetSpec{
		{{Kind: config.WidgetNet, Weight: 1}, {Kind: config.WidgetCPU, Weight: 1}},
		{{Kind: config.WidgetProc, Weight: 1}},
	}
	st, err := New(Options{Rows: rows, DefaultWindow: time.Minute, MinWindow: time.Second, MaxWindow: time.Hour}, nil, nil, log)
	require.NoError(t, err)
	st.Handle(Resize{Width: 80, Height: 24})

	var kinds []Kind
	for _, id := range st.Order() {
		w, _ := st.Widget(id)
		kinds = append(kinds, w.Kind)
	}
	assert.Equal(t, []Kind{KindNet, KindCPU, KindProc}, kinds)
}

func TestCycleFocus(t *testing.T) {
	h := defaultHarness(t)
	s := h.state

	_, ok := s.Focused()
	assert.False(t, ok)

	assert.True(t, s.Handle(ActNextWidget))
	assert.Equal(t, 0, focusedID(t, s))

	assert.True(t, s.Handle(ActPrevWidget))
	assert.Equal(t, 6, focusedID(t, s), "wraps backwards")

	assert.True(t, s.Handle(ActNextWidget))
	assert.Equal(t, 0, focusedID(t, s), "wraps forwards")

	assert.True(t, s.Handle(ActBack))
	s.Handle(ActPrevWidget)
	assert.Equal(t, 6, focusedID(t, s), "backwards from nothing starts at the end")
}

func TestDirectionalFocus(t *testing.T) {
	h := defaultHarness(t)
	s := h.state
	kindOf := func() Kind { return s.widgets[focusedID(t, s)].Kind }

	focusKind(t, s, KindMem)
	require.True(t, s.Handle(Focus{Dir: Right}))
	assert.Equal(t, KindBattery, kindOf())

	require.True(t, s.Handle(Focus{Dir: Down}))
	assert.Equal(t, KindTemp, kindOf(), "only temp sits under battery")

	require.True(t, s.Handle(Focus{Dir: Down}))
	assert.Equal(t, KindProc, kindOf())

	require.True(t, s.Handle(Focus{Dir: Left}))
	assert.Equal(t, KindDisk, kindOf())

	require.True(t, s.Handle(Focus{Dir: Right}))
	require.True(t, s.Handle(Focus{Dir: Up}))
	assert.Equal(t, KindTemp, kindOf(), "closest center wins between overlapping candidates")

	focusKind(t, s, KindCPU)
	assert.False(t, s.Handle(Focus{Dir: Up}), "nothing above the top row")
	assert.Equal(t, KindCPU, kindOf())
}

func TestDirectionalFocusFromNothingFocusesFirst(t *testing.T) {
	h := defaultHarness(t)
	assert.True(t, h.state.Handle(Focus{Dir: Down}))
	assert.Equal(t, 0, focusedID(t, h.state))
}

func TestResizePreservesFocus(t *testing.T) {
	h := defaultHarness(t)
	s := h.state
	focusKind(t, s, KindProc)
	id := focusedID(t, s)
	before, _ := s.Widget(id)

	assert.True(t, s.Handle(Resize{Width: 200, Height: 62}))
	assert.False(t, s.Handle(Resize{Width: 200, Height: 62}), "same size")

	assert.Equal(t, id, focusedID(t, s))
	after, _ := s.Widget(id)
	assert.NotEqual(t, before.Rect, after.Rect)
	assert.Equal(t, Rect{67, 46, 133, 15}, after.Rect)
}

func TestExpandAndCollapse(t *testing.T) {
	h := defaultHarness(t)
	s := h.state

	assert.False(t, s.Handle(ActExpand), "nothing focused")

	s.Handle(ActNextWidget)
	require.True(t, s.Handle(ActExpand))

	f := s.Frame()
	require.Len(t, f.Widgets, 1)
	assert.True(t, f.Expanded)
	assert.Equal(t, KindCPU, f.Widgets[0].Kind)
	assert.Equal(t, Rect{0, 1, 100, 40}, f.Widgets[0].Rect)

	// Moving focus while expanded shows the newly focused widget instead.
	s.Handle(ActNextWidget)
	f = s.Frame()
	require.Len(t, f.Widgets, 1)
	assert.Equal(t, KindMem, f.Widgets[0].Kind)
	assert.False(t, s.Handle(Focus{Dir: Down}), "no geometry to move in while expanded")

	assert.True(t, s.Handle(ActBack))
	_, expanded := s.Expanded()
	assert.False(t, expanded)
	assert.Len(t, s.Frame().Widgets, 7)
	assert.Equal(t, 1, focusedID(t, s), "collapsing keeps focus")

	assert.True(t, s.Handle(ActBack))
	_, ok := s.Focused()
	assert.False(t, ok)
	assert.False(t, s.Handle(ActBack), "nothing left to close")
}

func TestZoomModes(t *testing.T) {
	h := defaultHarness(t)
	s := h.state
	focusKind(t, s, KindCPU)
	id := focusedID(t, s)
	window := func() time.Duration { w, _ := s.Widget(id); return w.Window }

	assert.Equal(t, ModeFocused, s.Mode(id))

	require.True(t, s.Handle(ActZoomIn))
	assert.Equal(t, 30*time.Second, window())
	assert.Equal(t, ModeZoomed, s.Mode(id))

	s.Handle(ActZoomIn)
	s.Handle(ActZoomIn)
	assert.Equal(t, 10*time.Second, window(), "clamped to the minimum")
	assert.False(t, s.Handle(ActZoomIn))

	for range 10 {
		s.Handle(ActZoomOut)
	}
	assert.Equal(t, 10*time.Minute, window(), "clamped to the maximum")

	require.True(t, s.Handle(ActZoomReset))
	assert.Equal(t, time.Minute, window())
	assert.Equal(t, ModeFocused, s.Mode(id))

	focusKind(t, s, KindProc)
	assert.False(t, s.Handle(ActZoomIn), "tables do not zoom")
	assert.Equal(t, ModeUnfocused, s.Mode(id))
}

func TestWidgetEventsNeedFocus(t *testing.T) {
	h := defaultHarness(t)
	s := h.state
	for _, ev := range []Event{ActDown, ActZoomIn, ActToggleTree, ActSearchStart, SortBy{Key: proctable.SortName}} {
		assert.False(t, s.Handle(ev), "%v", ev)
	}
	assert.Equal(t, proctable.Query{}, s.Query())
}

func TestSortHotkeys(t *testing.T) {
	h := defaultHarness(t)
	s := h.state
	focusKind(t, s, KindProc)

	require.True(t, s.Handle(SortBy{Key: proctable.SortName}))
	assert.Equal(t, proctable.SortName, s.Query().Sort)
	assert.False(t, s.Query().Desc)

	require.True(t, s.Handle(SortBy{Key: proctable.SortName}))
	assert.True(t, s.Query().Desc, "same column reverses")

	require.True(t, s.Handle(SortBy{Key: proctable.SortMem}))
	assert.True(t, s.Query().Desc, "resource columns start descending")

	require.True(t, s.Handle(ActReverseSort))
	assert.False(t, s.Query().Desc)

	require.True(t, s.Handle(ActToggleTree))
	require.True(t, s.Handle(ActToggleGroup))
	assert.True(t, s.Query().Tree)
	assert.True(t, s.Query().Group)

	focusKind(t, s, KindDisk)
	assert.False(t, s.Handle(SortBy{Key: proctable.SortCPU}), "only the process table sorts")
}

func TestSearchLifecycle(t *testing.T) {
	h := newHarness(t, procOnly(), proctable.Query{Sort: proctable.SortPID})
	s := h.state
	s.Handle(Resize{Width: 80, Height: 24})
	h.setProcs(
		metrics.ProcessSample{PID: 10, Name: "chrome"},
		metrics.ProcessSample{PID: 11, Name: "chromium-helper"},
		metrics.ProcessSample{PID: 12, Name: "firefox"},
	)
	s.Handle(ActNextWidget)
	id := focusedID(t, s)

	assert.False(t, s.Handle(SearchInput{Text: "x"}), "not searching yet")

	require.True(t, s.Handle(ActSearchStart))
	assert.Equal(t, ModeSearching, s.Mode(id))
	assert.False(t, s.Handle(ActSearchStart))

	require.True(t, s.Handle(SearchInput{Text: "chrom"}))
	names := func() []string {
		var out []string
		for _, r := range s.Frame().Widgets[0].Procs.Rows {
			out = append(out, r.Name)
		}
		return out
	}
	assert.Equal(t, []string{"chrome", "chromium-helper"}, names())

	require.True(t, s.Handle(ActSearchAccept))
	assert.Equal(t, ModeFocused, s.Mode(id))
	assert.Equal(t, "chrom", s.Query().Search.Text, "accept keeps the filter")

	require.True(t, s.Handle(ActSearchField))
	require.True(t, s.Handle(ActSearchCase))
	require.True(t, s.Handle(ActSearchWord))
	require.True(t, s.Handle(ActSearchRegex))
	q := s.Query().Search
	assert.Equal(t, proctable.SearchPID, q.Field)
	assert.True(t, q.CaseSensitive && q.WholeWord && q.Regex)

	require.True(t, s.Handle(ActSearchCancel))
	assert.Empty(t, s.Query().Search.Text)

	s.Handle(ActSearchStart)
	s.Handle(SearchInput{Text: "fire"})
	require.True(t, s.Handle(ActBack), "back cancels the search first")
	assert.Empty(t, s.Query().Search.Text)
	assert.Equal(t, ModeFocused, s.Mode(id))
}

func TestLeavingProcessTableStopsEditing(t *testing.T) {
	h := defaultHarness(t)
	s := h.state
	focusKind(t, s, KindProc)
	s.Handle(ActSearchStart)
	s.Handle(SearchInput{Text: "sh"})

	s.Handle(ActNextWidget)
	assert.False(t, s.Searching())
	assert.Equal(t, "sh", s.Query().Search.Text)
}

func TestSelectionFollowsPID(t *testing.T) {
	h := newHarness(t, procOnly(), proctable.Query{Sort: proctable.SortMem, Desc: true})
	s := h.state
	s.Handle(Resize{Width: 80, Height: 24})
	h.setProcs(sample(1, 100), sample(2, 500), sample(3, 300), sample(4, 200), sample(5, 400))
	s.Handle(ActNextWidget)

	require.True(t, s.Handle(ActDown))
	w, _ := s.Widget(0)
	assert.Equal(t, 1, w.Selected)
	assert.Equal(t, int32(5), h.table.View(s.Query()).Rows[w.Selected].PID)

	require.True(t, s.Handle(SortBy{Key: proctable.SortName}))
	w, _ = s.Widget(0)
	assert.Equal(t, 4, w.Selected, "pid 5 sorts last by name")

	// pid 5 exits: the selection keeps its position, clamped to the table.
	h.setProcs(sample(1, 100), sample(2, 500), sample(3, 300), sample(4, 200))
	f := s.Frame()
	assert.Equal(t, 3, f.Widgets[0].Selected)

	// A new process sorting above the selection does not move it off pid 4.
	h.setProcs(sample(0, 1), sample(1, 100), sample(2, 500), sample(3, 300), sample(4, 200))
	f = s.Frame()
	assert.Equal(t, 4, f.Widgets[0].Selected)
	assert.Equal(t, int32(4), f.Widgets[0].Procs.Rows[4].PID)
}

func TestScrollKeepsSelectionVisible(t *testing.T) {
	h := newHarness(t, procOnly(), proctable.Query{Sort: proctable.SortPID})
	s := h.state
	s.Handle(Resize{Width: 80, Height: 12})
	var procs []metrics.ProcessSample
	for pid := int32(1); pid <= 50; pid++ {
		procs = append(procs, sample(pid, 1))
	}
	h.setProcs(procs...)
	s.Handle(ActNextWidget)

	w, _ := s.Widget(0)
	require.Equal(t, 7, w.Visible())

	require.True(t, s.Handle(ActEnd))
	w, _ = s.Widget(0)
	assert.Equal(t, 49, w.Selected)
	assert.Equal(t, 43, w.Offset)

	require.True(t, s.Handle(ActHome))
	w, _ = s.Widget(0)
	assert.Equal(t, 0, w.Selected)
	assert.Equal(t, 0, w.Offset)
	assert.False(t, s.Handle(ActUp), "already at the top")

	require.True(t, s.Handle(ActPageDown))
	w, _ = s.Widget(0)
	assert.Equal(t, 7, w.Selected)
	assert.Equal(t, 1, w.Offset, "scrolls the minimum needed")

	require.True(t, s.Handle(ActPageUp))
	w, _ = s.Widget(0)
	assert.Equal(t, 0, w.Selected)
	assert.Equal(t, 0, w.Offset)
}

func TestMouse(t *testing.T) {
	h := defaultHarness(t)
	s := h.state
	var procs []metrics.ProcessSample
	for pid := int32(1); pid <= 20; pid++ {
		procs = append(procs, sample(pid, 1))
	}
	h.setProcs(procs...)

	// The process table sits at (34,31); rows start two lines below.
	require.True(t, s.Handle(Mouse{X: 40, Y: 35, Kind: MouseClick}))
	id := focusedID(t, s)
	w, _ := s.Widget(id)
	assert.Equal(t, KindProc, w.Kind)
	assert.Equal(t, 2, w.Selected)

	assert.True(t, s.Handle(Mouse{X: 40, Y: 35, Kind: MouseWheelDown}))
	w, _ = s.Widget(id)
	assert.Equal(t, 3, w.Selected)

	// The wheel zooms the graph under the cursor without taking focus.
	require.True(t, s.Handle(Mouse{X: 5, Y: 3, Kind: MouseWheelUp}))
	cpu, _ := s.Widget(0)
	assert.Equal(t, 30*time.Second, cpu.Window)
	assert.Equal(t, id, focusedID(t, s))

	assert.False(t, s.Handle(Mouse{X: 5, Y: 0, Kind: MouseClick}), "header is not a widget")
}

func TestHelpAndFreeze(t *testing.T) {
	h := defaultHarness(t)
	s := h.state

	require.True(t, s.Handle(ActToggleHelp))
	assert.True(t, s.Frame().Help)
	require.True(t, s.Handle(ActBack))
	assert.False(t, s.Help())

	require.True(t, s.Handle(ActToggleFreeze))
	assert.True(t, s.Frozen())
	assert.True(t, s.Frame().Frozen)
	s.Handle(ActToggleFreeze)
	assert.False(t, s.Frozen())
}

func TestFrameGraphSeries(t *testing.T) {
	h := defaultHarness(t)
	for i := 0; i < 120; i++ {
		ts := epoch.Add(time.Duration(i) * time.Second)
		require.NoError(t, h.store.Append(metrics.KeyCPUTotal, timeseries.Point{Time: ts, Value: float64(i)}))
		require.NoError(t, h.store.Append(metrics.CoreKey(0), timeseries.Point{Time: ts, Value: 1}))
		require.NoError(t, h.store.Append(metrics.CoreKey(1), timeseries.Point{Time: ts, Value: 2}))
	}

	f := h.state.Frame()
	var cpu WidgetFrame
	for _, w := range f.Widgets {
		if w.Kind == KindCPU {
			cpu = w
		}
	}
	require.Len(t, cpu.Series, 3)
	assert.Equal(t, metrics.KeyCPUTotal, cpu.Series[0].Key)
	assert.Equal(t, "C1", cpu.Series[2].Label)

	points := slices.Collect(cpu.Series[0].Points)
	require.Len(t, points, 60, "the last minute, excluding its start")
	assert.Equal(t, 60.0, points[0].Value)
	last, ok := cpu.Series[0].Latest.Get()
	require.True(t, ok)
	assert.Equal(t, 119.0, last)

	var mem WidgetFrame
	for _, w := range f.Widgets {
		if w.Kind == KindMem {
			mem = w
		}
	}
	require.Len(t, mem.Series, 1, "no swap series without swap")
	assert.Empty(t, slices.Collect(mem.Series[0].Points), "empty history is not an error")
	assert.False(t, mem.Series[0].Latest.Valid())
}

func TestFrameReusesProcessView(t *testing.T) {
	h := defaultHarness(t)
	h.setProcs(sample(1, 1), sample(2, 2))
	base := h.table.Computations()

	first := h.state.Frame()
	second := h.state.Frame()
	assert.Equal(t, base+1, h.table.Computations())

	var a, b *proctable.View
	for i := range first.Widgets {
		if first.Widgets[i].Kind == KindProc {
			a, b = first.Widgets[i].Procs, second.Widgets[i].Procs
		}
	}
	assert.Same(t, a, b)

	focusKind(t, h.state, KindProc)
	h.state.Handle(SortBy{Key: proctable.SortName})
	h.state.Frame()
	assert.Equal(t, base+2, h.table.Computations(), "query change recomputes")
}

func TestSnapshotTablesRowCounts(t *testing.T) {
	h := defaultHarness(t)
	s := h.state
	snap := &metrics.Snapshot{
		Timestamp:    epoch,
		Disks:        metrics.Fresh([]metrics.Disk{{Name: "sda"}, {Name: "sdb"}, {Name: "nvme0n1"}}, epoch),
		Temperatures: metrics.Unsupported[[]metrics.Temperature](),
	}
	s.Observe(snap)
	s.Observe(nil)
	assert.Same(t, snap, s.Snapshot())
	assert.Same(t, snap, s.Frame().Snapshot)

	focusKind(t, s, KindDisk)
	require.True(t, s.Handle(ActEnd))
	w, _ := s.Widget(focusedID(t, s))
	assert.Equal(t, 2, w.Selected)

	focusKind(t, s, KindTemp)
	assert.False(t, s.Handle(ActDown), "no rows when unsupported")
}

func TestSeriesRejectsUnknownKey(t *testing.T) {
	if invariant.Debug {
		t.Skip("debug builds panic on invariant violations")
	}
	h := defaultHarness(t)

	_, err := h.state.Series("gpu.total", time.Minute)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrQuery))
	assert.True(t, h.log.Contains("error", "gpu.total"))

	sw, err := h.state.Series(metrics.KeyNetRx, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, slices.Collect(sw.Points))
}

func TestModeAndActionStrings(t *testing.T) {
	assert.Equal(t, "unfocused", ModeUnfocused.String())
	assert.Equal(t, "searching", ModeSearching.String())
	assert.Equal(t, "zoomed", ModeZoomed.String())
	assert.Equal(t, "zoom-in", ActZoomIn.String())
	assert.Equal(t, "unknown", Action(999).String())
	assert.Equal(t, "left", Left.String())
	assert.Equal(t, "Processes", KindProc.Title())
	assert.True(t, KindNet.Graph())
	assert.True(t, KindTemp.Table())
	assert.False(t, KindBattery.Graph() || KindBattery.Table())
}

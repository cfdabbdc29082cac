package app

import (
	"iter"
	"time"

	"github.com/rileyhilliard/rrtop/internal/invariant"
	"github.com/rileyhilliard/rrtop/internal/metrics"
	"github.com/rileyhilliard/rrtop/internal/proctable"
	"github.com/rileyhilliard/rrtop/internal/timeseries"
)

// Frame is everything the renderer needs for one draw. It is built fresh
// each frame and must be treated as read-only.
type Frame struct {
	Width, Height int
	// Widgets holds the visible widgets in layout order.
	Widgets []WidgetFrame
	// Focused is the focused widget ID, or -1.
	Focused  int
	Expanded bool
	Help     bool
	Frozen   bool

	Query     proctable.Query
	Searching bool

	// Snapshot is the latest observed snapshot, nil before the first.
	Snapshot *metrics.Snapshot
}

// WidgetFrame is the render state of one widget.
type WidgetFrame struct {
	ID    int
	Kind  Kind
	Title string
	Rect  Rect
	Mode  Mode

	// Graphs.
	Window time.Duration
	Series []SeriesWindow

	// Process table.
	Procs *proctable.View

	// Tables.
	Selected int
	Offset   int
	Visible  int
}

// SeriesWindow is one metric's points over a graph window.
type SeriesWindow struct {
	Key    string
	Label  string
	Points iter.Seq[timeseries.Point]
	Latest metrics.Optional[float64]
}

// Frame assembles the composite for this draw. The process view is reused
// from the table unless its data or the query changed.
func (s *State) Frame() Frame {
	f := Frame{
		Width:     s.width,
		Height:    s.height,
		Focused:   s.focus,
		Expanded:  s.expanded != noFocus,
		Help:      s.help,
		Frozen:    s.frozen,
		Query:     s.query,
		Searching: s.searching,
		Snapshot:  s.snap,
	}

	for _, w := range s.widgets {
		if w.Rect.Empty() {
			continue
		}
		wf := WidgetFrame{
			ID:     w.ID,
			Kind:   w.Kind,
			Title:  w.Kind.Title(),
			Rect:   w.Rect,
			Mode:   s.Mode(w.ID),
			Window: w.Window,
		}
		if w.Kind.Table() {
			s.settle(w)
			wf.Selected, wf.Offset, wf.Visible = w.Selected, w.Offset, w.Visible()
		}
		switch w.Kind {
		case KindProc:
			wf.Procs = s.procView()
		case KindCPU, KindMem, KindNet, KindBattery:
			wf.Series = s.graphSeries(w)
		}
		f.Widgets = append(f.Widgets, wf)
	}
	return f
}

// graphKeys lists the series a widget plots.
func (s *State) graphKeys(k Kind) []string {
	switch k {
	case KindCPU:
		keys := []string{metrics.KeyCPUTotal}
		if s.series != nil {
			keys = append(keys, s.series.KeysWithPrefix(metrics.PrefixCore)...)
		}
		return keys
	case KindMem:
		keys := []string{metrics.KeyMemRAM}
		if s.series != nil && s.series.Has(metrics.KeyMemSwap) {
			keys = append(keys, metrics.KeyMemSwap)
		}
		return keys
	case KindNet:
		return []string{metrics.KeyNetRx, metrics.KeyNetTx}
	case KindBattery:
		return []string{metrics.KeyBattery}
	}
	return nil
}

func (s *State) graphSeries(w *Widget) []SeriesWindow {
	keys := s.graphKeys(w.Kind)
	out := make([]SeriesWindow, 0, len(keys))
	for _, key := range keys {
		sw, err := s.Series(key, w.Window)
		if err != nil {
			continue
		}
		out = append(out, sw)
	}
	return out
}

// Series returns the window for one metric key. A key outside the known
// metric families is a programming error: it panics in debug builds and
// returns an error in release builds, which the frame renders as no data.
// A known key with no history yet yields an empty window.
func (s *State) Series(key string, d time.Duration) (SeriesWindow, error) {
	if !metrics.ValidKey(key) {
		return SeriesWindow{}, invariant.Violation(s.log, "window requested for unknown metric key %q", key)
	}
	sw := SeriesWindow{Key: key, Label: metrics.KeyLabel(key), Points: emptyPoints}
	if s.series == nil {
		return sw, nil
	}
	sw.Points = s.series.Window(key, d)
	if p, ok := s.series.Latest(key); ok {
		sw.Latest = metrics.Some(p.Value)
	}
	return sw, nil
}

func emptyPoints(func(timeseries.Point) bool) {}

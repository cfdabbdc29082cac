package app

import (
	"time"

	"github.com/rileyhilliard/rrtop/internal/config"
)

// Kind is a widget type, named as in the layout config.
type Kind string

const (
	KindCPU     Kind = config.WidgetCPU
	KindMem     Kind = config.WidgetMem
	KindNet     Kind = config.WidgetNet
	KindDisk    Kind = config.WidgetDisk
	KindTemp    Kind = config.WidgetTemp
	KindBattery Kind = config.WidgetBattery
	KindProc    Kind = config.WidgetProc
)

// Graph reports whether the widget plots time windows and can zoom.
func (k Kind) Graph() bool {
	return k == KindCPU || k == KindMem || k == KindNet
}

// Table reports whether the widget shows selectable rows.
func (k Kind) Table() bool {
	return k == KindProc || k == KindDisk || k == KindTemp
}

// Title is the label drawn on the widget border.
func (k Kind) Title() string {
	switch k {
	case KindCPU:
		return "CPU"
	case KindMem:
		return "Memory"
	case KindNet:
		return "Network"
	case KindDisk:
		return "Disks"
	case KindTemp:
		return "Temperatures"
	case KindBattery:
		return "Battery"
	case KindProc:
		return "Processes"
	}
	return string(k)
}

// Mode is a widget's interaction state.
type Mode int

const (
	ModeUnfocused Mode = iota
	ModeFocused
	// ModeSearching is a focused process table editing its search.
	ModeSearching
	// ModeZoomed is a focused graph showing a window other than the default.
	ModeZoomed
)

func (m Mode) String() string {
	switch m {
	case ModeFocused:
		return "focused"
	case ModeSearching:
		return "searching"
	case ModeZoomed:
		return "zoomed"
	default:
		return "unfocused"
	}
}

// Table chrome: top border and column header above the first row, bottom
// border below the last.
const (
	tableRowsTop = 2
	tableChrome  = 3
)

// Widget is the state of one panel. Widgets are created from the layout
// at startup and live until shutdown; ID is the position in layout order
// and never changes.
type Widget struct {
	ID     int
	Kind   Kind
	Weight int
	// Row and Col locate the widget in the configured layout.
	Row, Col int

	// Rect is where the widget is drawn. It is empty for widgets hidden by
	// an expanded widget.
	Rect Rect
	// base is the rect in the unexpanded layout; focus order and
	// directional movement use it.
	base Rect

	// Window is the time range a graph shows.
	Window time.Duration

	// Selected is the selected row and Offset the first visible row.
	Selected int
	Offset   int

	// anchor is the pid the process selection follows across re-sorts.
	anchor    int32
	hasAnchor bool
}

// Visible returns how many table rows fit in the widget. Hidden widgets
// use their unexpanded size.
func (w *Widget) Visible() int {
	r := w.Rect
	if r.Empty() {
		r = w.base
	}
	return max(1, r.H-tableChrome)
}

// scrollTo moves Offset the least needed to show Selected, then clamps it
// to the row count.
func (w *Widget) scrollTo(n int) {
	visible := w.Visible()
	if w.Selected < w.Offset {
		w.Offset = w.Selected
	}
	if w.Selected >= w.Offset+visible {
		w.Offset = w.Selected - visible + 1
	}
	w.Offset = max(0, min(w.Offset, n-visible))
}

package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/rrtop/internal/app"
	"github.com/rileyhilliard/rrtop/internal/metrics"
	"github.com/rileyhilliard/rrtop/internal/timeseries"
)

// Per-core gauges: an entry is "C12 ▰▰▰▱▱  34%" plus a separating space.
const (
	coreEntryWidth = 15
	coreGaugeWidth = 5
	minCoresWidth  = 48
)

// seriesByKey finds one series in a widget frame.
func seriesByKey(wf app.WidgetFrame, key string) (app.SeriesWindow, bool) {
	for _, sw := range wf.Series {
		if sw.Key == key {
			return sw, true
		}
	}
	return app.SeriesWindow{}, false
}

// splitHeights divides h rows into n sections, extra rows going first.
func splitHeights(h, n int) []int {
	out := make([]int, n)
	if n == 0 {
		return out
	}
	for i := range out {
		out[i] = h / n
		if i < h%n {
			out[i]++
		}
	}
	return out
}

// graphSection is a label line over a braille graph.
func (r renderer) graphSection(label string, points []timeseries.Point, window time.Duration, w, h int, percent bool, color lipgloss.TerminalColor) []string {
	if h <= 0 {
		return nil
	}
	sc := PercentScale
	if !percent {
		sc = autoScale(values(points))
	}
	if h == 1 {
		// No room for a graph: trail the label with a sparkline.
		lw := lipgloss.Width(label)
		if sw := w - lw - 1; sw >= 4 && len(points) > 0 {
			return []string{label + " " + r.theme.Sparkline(values(points), sw, sc, color)}
		}
		return []string{fit(label, w)}
	}
	lines := []string{fit(label, w)}
	graph := r.theme.RenderGraph(points, window, w, h-1, sc, percent, color)
	return append(lines, strings.Split(graph, "\n")...)
}

func (r renderer) cpuWidget(f app.Frame, wf app.WidgetFrame) string {
	rs := r.reading(f.Snapshot, metrics.MetricCPU)
	if rs.na {
		return r.unavailable(wf, rs)
	}
	w, h := inner(wf)

	total, _ := seriesByKey(wf, metrics.KeyCPUTotal)
	var cores []app.SeriesWindow
	for _, sw := range wf.Series {
		if sw.Key != metrics.KeyCPUTotal {
			cores = append(cores, sw)
		}
	}

	coresW := 0
	if len(cores) > 0 && w >= minCoresWidth {
		perCol := max(h, 1)
		cols := (len(cores) + perCol - 1) / perCol
		coresW = min(cols, w/3/coreEntryWidth) * coreEntryWidth
	}
	graphW := w
	if coresW > 0 {
		graphW = w - coresW - 1
	}

	label := "Total " + r.percentLabel(total.Latest)
	if snap := f.Snapshot; snap != nil {
		if cpu, ok := snap.CPU.Get(); ok {
			label += r.theme.muted().Render(fmt.Sprintf("  load %.2f %.2f %.2f", cpu.Load[0], cpu.Load[1], cpu.Load[2]))
		}
	}
	lines := r.graphSection(label, collect(total.Points), wf.Window, graphW, h, true, r.theme.Graph)

	if coresW > 0 {
		gauges := r.corePanel(cores, coresW/coreEntryWidth, h)
		for i := range lines {
			lines[i] = fit(lines[i], graphW) + " " + gauges[i]
		}
	}
	return r.box(panel{title: wf.Title, info: r.noteInfo(rs)}, wf, lines)
}

// percentLabel styles an optional percentage by severity.
func (r renderer) percentLabel(v metrics.Optional[float64]) string {
	p, ok := v.Get()
	if !ok {
		return r.theme.muted().Render("-")
	}
	return r.theme.MetricStyle(p).Render(fmt.Sprintf("%.1f%%", p))
}

// corePanel lays per-core gauges out in columns of h rows.
func (r renderer) corePanel(cores []app.SeriesWindow, cols, h int) []string {
	lines := make([]string, h)
	if h <= 0 {
		return lines
	}
	for i, sw := range cores {
		col, row := i/h, i%h
		if col >= cols {
			break
		}
		entry := fit(sw.Label, 4)
		if v, ok := sw.Latest.Get(); ok {
			entry += r.theme.GaugeBar(coreGaugeWidth, v) + fitLeft(fmt.Sprintf("%.0f%%", v), 5)
		} else {
			entry += r.theme.muted().Render(strings.Repeat("▱", coreGaugeWidth) + fitLeft("-", 5))
		}
		lines[row] += fit(entry, coreEntryWidth)
	}
	return lines
}

func (r renderer) memWidget(f app.Frame, wf app.WidgetFrame) string {
	rs := r.reading(f.Snapshot, metrics.MetricMemory)
	if rs.na {
		return r.unavailable(wf, rs)
	}
	w, h := inner(wf)

	var mem metrics.Memory
	haveMem := false
	if f.Snapshot != nil {
		mem, haveMem = f.Snapshot.Memory.Get()
	}

	heights := splitHeights(h, len(wf.Series))
	var lines []string
	for i, sw := range wf.Series {
		label := sw.Label + " " + r.percentLabel(sw.Latest)
		if haveMem {
			used, total := mem.Used, mem.Total
			if sw.Key == metrics.KeyMemSwap {
				used, total = mem.SwapUsed, mem.SwapTotal
			}
			label += r.theme.muted().Render(fmt.Sprintf("  %s / %s", formatBytes(used), formatBytes(total)))
		}
		color := r.theme.Graph
		if i > 0 {
			color = r.theme.GraphAlt
		}
		lines = append(lines, r.graphSection(label, collect(sw.Points), wf.Window, w, heights[i], true, color)...)
	}
	return r.box(panel{title: wf.Title, info: r.noteInfo(rs)}, wf, lines)
}

func (r renderer) netWidget(f app.Frame, wf app.WidgetFrame) string {
	rs := r.reading(f.Snapshot, metrics.MetricNetwork)
	if rs.na {
		return r.unavailable(wf, rs)
	}
	w, h := inner(wf)

	heights := splitHeights(h, len(wf.Series))
	var lines []string
	for i, sw := range wf.Series {
		points := collect(sw.Points)
		peak := 0.0
		for _, p := range points {
			peak = max(peak, p.Value)
		}
		label := sw.Label + " " + optRate(sw.Latest) +
			r.theme.muted().Render("  peak "+FormatRate(peak))
		color := r.theme.Graph
		if i > 0 {
			color = r.theme.GraphAlt
		}
		lines = append(lines, r.graphSection(label, points, wf.Window, w, heights[i], false, color)...)
	}
	return r.box(panel{title: wf.Title, info: r.noteInfo(rs)}, wf, lines)
}

func (r renderer) batteryWidget(f app.Frame, wf app.WidgetFrame) string {
	rs := r.reading(f.Snapshot, metrics.MetricBattery)
	if rs.na {
		return r.unavailable(wf, rs)
	}
	w, h := inner(wf)

	var lines []string
	var bat metrics.Battery
	haveBat := false
	if f.Snapshot != nil {
		bat, haveBat = f.Snapshot.Battery.Get()
	}
	if haveBat {
		state := string(bat.State)
		if bat.Name != "" {
			state = bat.Name + " " + state
		}
		// Low charge is the alarming end of a battery gauge.
		color := r.theme.MetricColor(100 - bat.Percent)
		lines = append(lines,
			r.theme.fg(color).Render(fmt.Sprintf("%.0f%%", bat.Percent))+" "+r.theme.muted().Render(state),
			r.theme.gauge(w, bat.Percent, color),
		)
	}
	if sw, ok := seriesByKey(wf, metrics.KeyBattery); ok && h-len(lines) > 0 {
		points := collect(sw.Points)
		graph := r.theme.RenderGraph(points, wf.Window, w, h-len(lines), PercentScale, false, r.theme.Graph)
		lines = append(lines, strings.Split(graph, "\n")...)
	}
	return r.box(panel{title: wf.Title, info: r.noteInfo(rs)}, wf, lines)
}

package dashboard

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/rrtop/internal/app"
	"github.com/rileyhilliard/rrtop/internal/metrics"
)

// renderer draws one frame. It holds no state between frames.
type renderer struct {
	theme Theme
	now   time.Time
	// input is the rendered search input while the search is edited.
	input string
}

// body lays the widgets out. Widgets sharing a top edge form one band and
// are joined left to right; bands are stacked top to bottom.
func (r renderer) body(f app.Frame) string {
	bands := make(map[int][]app.WidgetFrame)
	var tops []int
	for _, wf := range f.Widgets {
		if _, ok := bands[wf.Rect.Y]; !ok {
			tops = append(tops, wf.Rect.Y)
		}
		bands[wf.Rect.Y] = append(bands[wf.Rect.Y], wf)
	}
	slices.Sort(tops)

	rows := make([]string, 0, len(tops))
	for _, y := range tops {
		band := bands[y]
		slices.SortFunc(band, func(a, b app.WidgetFrame) int { return a.Rect.X - b.Rect.X })
		boxes := make([]string, len(band))
		for i, wf := range band {
			boxes[i] = r.widget(f, wf)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, boxes...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// widget renders one widget into exactly its rect.
func (r renderer) widget(f app.Frame, wf app.WidgetFrame) string {
	switch wf.Kind {
	case app.KindCPU:
		return r.cpuWidget(f, wf)
	case app.KindMem:
		return r.memWidget(f, wf)
	case app.KindNet:
		return r.netWidget(f, wf)
	case app.KindBattery:
		return r.batteryWidget(f, wf)
	case app.KindDisk:
		return r.diskWidget(f, wf)
	case app.KindTemp:
		return r.tempWidget(f, wf)
	case app.KindProc:
		return r.procWidget(f, wf)
	}
	return r.box(panel{title: wf.Title}, wf, nil)
}

// panel is the chrome around a widget's content.
type panel struct {
	title string
	// info is drawn at the right of the top border.
	info string
	// footer is drawn at the left of the bottom border.
	footer string
	// invalid draws the border in the error color.
	invalid bool
}

// border picks the border color for a widget's mode.
func (r renderer) border(wf app.WidgetFrame, p panel) lipgloss.TerminalColor {
	switch {
	case p.invalid:
		return r.theme.BorderError
	case wf.Mode != app.ModeUnfocused:
		return r.theme.BorderFocus
	}
	return r.theme.Border
}

// box frames content lines in a rounded border of the widget's rect.
// Content is clipped to the inner area.
//
//	╭─ Title ──────────── info ╮
//	│ content                  │
//	╰─ footer ─────────────────╯
func (r renderer) box(p panel, wf app.WidgetFrame, lines []string) string {
	w, h := wf.Rect.W, wf.Rect.H
	if w < 6 || h < 2 {
		return blank(w, h)
	}
	bs := lipgloss.NewStyle().Foreground(r.border(wf, p))
	if wf.Mode != app.ModeUnfocused {
		bs = bs.Bold(true)
		if r.theme.mono() {
			bs = bs.Reverse(true)
		}
	}

	title := r.theme.title().Render(ellipsize(p.title+modeSuffix(wf), w-6))
	top := bs.Render("╭─ ") + title + bs.Render(" ")
	right := bs.Render("╮")
	if p.info != "" {
		info := " " + p.info + " "
		if lipgloss.Width(top)+lipgloss.Width(info)+2 <= w {
			right = info + bs.Render("─╮")
		}
	}
	fill := w - lipgloss.Width(top) - lipgloss.Width(right)
	top = top + bs.Render(strings.Repeat("─", max(fill, 0))) + right

	bottom := bs.Render("╰" + strings.Repeat("─", w-2) + "╯")
	if p.footer != "" {
		footer := p.footer
		if lipgloss.Width(footer) > w-5 {
			footer = lipgloss.NewStyle().MaxWidth(w - 5).Render(footer)
		}
		bottom = bs.Render("╰─ ") + footer + bs.Render(" "+strings.Repeat("─", max(w-5-lipgloss.Width(footer), 0))+"╯")
	}

	out := make([]string, 0, h)
	out = append(out, fit(top, w))
	inner := w - 4
	for i := range h - 2 {
		line := ""
		if i < len(lines) {
			line = lines[i]
		}
		out = append(out, bs.Render("│")+" "+fit(line, inner)+" "+bs.Render("│"))
	}
	out = append(out, fit(bottom, w))
	return strings.Join(out, "\n")
}

// modeSuffix adds a graph's window to its title.
func modeSuffix(wf app.WidgetFrame) string {
	if wf.Kind.Graph() && wf.Window > 0 {
		s := " " + formatWindow(wf.Window)
		if wf.Mode == app.ModeZoomed {
			s += " (zoom)"
		}
		return s
	}
	return ""
}

// inner returns the content area of a widget's box.
func inner(wf app.WidgetFrame) (w, h int) {
	return max(wf.Rect.W-4, 0), max(wf.Rect.H-2, 0)
}

func blank(w, h int) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	line := strings.Repeat(" ", w)
	lines := make([]string, h)
	for i := range lines {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// centered places a one-line message in the middle of a content area.
func centered(msg string, w, h int) []string {
	lines := make([]string, h)
	if h == 0 {
		return lines
	}
	lines[h/2] = lipgloss.PlaceHorizontal(w, lipgloss.Center, msg)
	return lines
}

// readingState summarizes how a metric should be drawn this frame.
type readingState struct {
	// na means there is nothing to show: unsupported or degraded.
	na bool
	// note is a short marker for the border: "stale", "waiting".
	note string
}

func statusOf(snap *metrics.Snapshot, m metrics.Metric) (metrics.Status, string) {
	if snap == nil {
		return metrics.StatusAbsent, ""
	}
	switch m {
	case metrics.MetricCPU:
		return snap.CPU.Status, snap.CPU.Err
	case metrics.MetricMemory:
		return snap.Memory.Status, snap.Memory.Err
	case metrics.MetricNetwork:
		return snap.Network.Status, snap.Network.Err
	case metrics.MetricDisks:
		return snap.Disks.Status, snap.Disks.Err
	case metrics.MetricTemperatures:
		return snap.Temperatures.Status, snap.Temperatures.Err
	case metrics.MetricBattery:
		return snap.Battery.Status, snap.Battery.Err
	case metrics.MetricProcesses:
		return snap.Processes.Status, snap.Processes.Err
	case metrics.MetricHost:
		return snap.Host.Status, snap.Host.Err
	}
	return metrics.StatusAbsent, ""
}

func (r renderer) reading(snap *metrics.Snapshot, m metrics.Metric) readingState {
	if snap == nil {
		return readingState{note: "waiting"}
	}
	st, _ := statusOf(snap, m)
	h := snap.Health[m]
	switch {
	case st == metrics.StatusUnsupported || h.Capability == metrics.CapabilityUnsupported:
		return readingState{na: true}
	case h.Degraded && st != metrics.StatusFresh:
		return readingState{na: true, note: "degraded"}
	case st == metrics.StatusStale:
		return readingState{note: "stale"}
	case st == metrics.StatusAbsent:
		return readingState{note: "waiting"}
	}
	return readingState{}
}

// noteInfo styles a reading note for the top border.
func (r renderer) noteInfo(rs readingState) string {
	if rs.note == "" {
		return ""
	}
	return r.theme.fg(r.theme.Warning).Render(rs.note)
}

// unavailable renders a widget that has nothing to show.
func (r renderer) unavailable(wf app.WidgetFrame, rs readingState) string {
	w, h := inner(wf)
	msg := r.theme.muted().Render(notAvailable)
	return r.box(panel{title: wf.Title, info: r.noteInfo(rs)}, wf, centered(msg, w, h))
}

// header renders the top status line.
func (r renderer) header(f app.Frame) string {
	parts := []string{r.theme.title().Render("rrtop")}
	if snap := f.Snapshot; snap != nil {
		if host, ok := snap.Host.Get(); ok {
			if host.Hostname != "" {
				parts = append(parts, host.Hostname)
			}
			if platform := strings.TrimSpace(host.Platform + " " + host.Kernel); platform != "" {
				parts = append(parts, platform)
			}
			if host.Uptime > 0 {
				parts = append(parts, "up "+formatUptime(host.Uptime))
			}
		}
		if procs, ok := snap.Processes.Get(); ok {
			parts = append(parts, fmt.Sprintf("%d procs", len(procs)))
		}
		parts = append(parts, "updated "+formatAge(r.now.Sub(snap.Timestamp)))
	} else {
		parts = append(parts, "collecting")
	}
	if f.Frozen {
		parts = append(parts, r.theme.fg(r.theme.Warning).Bold(true).Render("FROZEN"))
	}
	return fit(r.theme.header().Render(" "+strings.Join(parts, " │ ")+" "), f.Width)
}

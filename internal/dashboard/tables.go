package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/rrtop/internal/app"
	"github.com/rileyhilliard/rrtop/internal/metrics"
	"github.com/rileyhilliard/rrtop/internal/proctable"
)

// minFlexWidth is the narrowest a flexible column gets before optional
// columns are dropped.
const minFlexWidth = 8

// column describes one table column.
type column struct {
	title string
	// width is fixed; zero makes the column take the remaining space.
	width int
	right bool
	// drop orders optional columns: the highest is hidden first when the
	// table is too narrow. Zero is never hidden.
	drop int

	sortable bool
	sort     proctable.SortKey
}

// cell is one table value with an optional color.
type cell struct {
	text  string
	style *lipgloss.Style
}

func plain(s string) cell { return cell{text: s} }

func styled(s string, st lipgloss.Style) cell { return cell{text: s, style: &st} }

// fitColumns decides which columns are shown and how wide the flexible
// one is. It returns the index of each shown column and its width.
func fitColumns(cols []column, width int) (shown []int, widths []int) {
	hidden := make([]bool, len(cols))
	for {
		need, n := 0, 0
		for i, c := range cols {
			if hidden[i] {
				continue
			}
			n++
			if c.width == 0 {
				need += minFlexWidth
			} else {
				need += c.width
			}
		}
		need += max(n-1, 0)
		if need <= width {
			break
		}
		worst := -1
		for i, c := range cols {
			if !hidden[i] && c.drop > 0 && (worst < 0 || c.drop > cols[worst].drop) {
				worst = i
			}
		}
		if worst < 0 {
			break
		}
		hidden[worst] = true
	}

	used := 0
	for i, c := range cols {
		if hidden[i] {
			continue
		}
		shown = append(shown, i)
		widths = append(widths, c.width)
		used += c.width
	}
	used += max(len(shown)-1, 0)
	for j, i := range shown {
		if cols[i].width == 0 {
			widths[j] = max(width-used, 1)
		}
	}
	return shown, widths
}

// table renders a header and the visible rows of a table widget. The
// selected row is highlighted; cell colors are dropped on it so the
// highlight reads as one bar.
func (r renderer) table(wf app.WidgetFrame, cols []column, rows [][]cell, sort *proctable.Query, w int) []string {
	shown, widths := fitColumns(cols, w)
	focused := wf.Mode != app.ModeUnfocused

	header := make([]string, len(shown))
	for j, i := range shown {
		title := cols[i].title
		if sort != nil && cols[i].sortable && cols[i].sort == sort.Sort {
			if sort.Desc {
				title += "▼"
			} else {
				title += "▲"
			}
		}
		header[j] = align(title, widths[j], cols[i].right)
	}
	lines := []string{r.theme.muted().Bold(true).Render(strings.Join(header, " "))}

	end := min(wf.Offset+wf.Visible, len(rows))
	for ri := wf.Offset; ri < end; ri++ {
		row := rows[ri]
		parts := make([]string, len(shown))
		selected := ri == wf.Selected
		for j, i := range shown {
			var c cell
			if i < len(row) {
				c = row[i]
			}
			text := align(ellipsize(c.text, widths[j]), widths[j], cols[i].right)
			if c.style != nil && !selected {
				text = c.style.Render(text)
			}
			parts[j] = text
		}
		line := strings.Join(parts, " ")
		if selected {
			line = r.theme.selected(focused).Render(fit(line, w))
		}
		lines = append(lines, line)
	}
	return lines
}

func align(s string, width int, right bool) string {
	if right {
		return fitLeft(s, width)
	}
	return fit(s, width)
}

func (r renderer) diskWidget(f app.Frame, wf app.WidgetFrame) string {
	rs := r.reading(f.Snapshot, metrics.MetricDisks)
	if rs.na {
		return r.unavailable(wf, rs)
	}
	w, h := inner(wf)

	var disks []metrics.Disk
	if f.Snapshot != nil {
		disks, _ = f.Snapshot.Disks.Get()
	}
	cols := []column{
		{title: "Disk"},
		{title: "Mount", width: 12, drop: 2},
		{title: "Used", width: 6, right: true},
		{title: "Size", width: 9, right: true, drop: 3},
		{title: "Read/s", width: 10, right: true, drop: 1},
		{title: "Write/s", width: 10, right: true, drop: 1},
		{title: "Type", width: 5, drop: 4},
	}
	rows := make([][]cell, len(disks))
	for i, d := range disks {
		used := d.UsedPercent()
		rows[i] = []cell{
			plain(d.Name),
			plain(d.Mount),
			styled(fmt.Sprintf("%.0f%%", used), r.theme.MetricStyle(used)),
			plain(formatBytes(d.Total)),
			plain(optRate(d.ReadRate)),
			plain(optRate(d.WriteRate)),
			plain(d.DriveType),
		}
	}

	var lines []string
	if len(rows) == 0 {
		lines = centered(r.theme.muted().Render("no disks"), w, h)
	} else {
		lines = r.table(wf, cols, rows, nil, w)
	}
	return r.box(panel{title: wf.Title, info: r.noteInfo(rs)}, wf, lines)
}

func (r renderer) tempWidget(f app.Frame, wf app.WidgetFrame) string {
	rs := r.reading(f.Snapshot, metrics.MetricTemperatures)
	if rs.na {
		return r.unavailable(wf, rs)
	}
	w, h := inner(wf)

	var temps []metrics.Temperature
	if f.Snapshot != nil {
		temps, _ = f.Snapshot.Temperatures.Get()
	}
	cols := []column{
		{title: "Sensor"},
		{title: "Temp", width: 7, right: true},
		{title: "High", width: 7, right: true, drop: 2},
		{title: "Crit", width: 7, right: true, drop: 1},
	}
	rows := make([][]cell, len(temps))
	for i, t := range temps {
		rows[i] = []cell{
			plain(t.Sensor),
			styled(fmt.Sprintf("%.1f°C", t.Celsius), r.theme.MetricStyle(tempSeverity(t))),
			plain(celsius(t.High)),
			plain(celsius(t.Critical)),
		}
	}

	var lines []string
	if len(rows) == 0 {
		lines = centered(r.theme.muted().Render("no sensors"), w, h)
	} else {
		lines = r.table(wf, cols, rows, nil, w)
	}
	return r.box(panel{title: wf.Title, info: r.noteInfo(rs)}, wf, lines)
}

// tempSeverity maps a reading onto the percentage thresholds: the high
// mark counts as the warning level and critical as the critical level.
// Sensors without thresholds are judged against 100°C.
func tempSeverity(t metrics.Temperature) float64 {
	switch {
	case t.Critical > 0 && t.Celsius >= t.Critical:
		return CriticalThreshold
	case t.High > 0 && t.Celsius >= t.High:
		return WarningThreshold
	case t.High > 0:
		return t.Celsius / t.High * WarningThreshold
	}
	return t.Celsius
}

func celsius(v float64) string {
	if v <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f°C", v)
}

// procColumns returns the process table columns for a query.
func procColumns(q proctable.Query) []column {
	first := column{title: "PID", width: 7, right: true, sortable: true, sort: proctable.SortPID}
	if q.Grouped() {
		first.title = "Count"
	}
	return []column{
		first,
		{title: "Name", sortable: true, sort: proctable.SortName},
		{title: "CPU%", width: 7, right: true, sortable: true, sort: proctable.SortCPU},
		{title: "Mem%", width: 6, right: true, sortable: true, sort: proctable.SortMem},
		{title: "Read/s", width: 10, right: true, drop: 2, sortable: true, sort: proctable.SortRead},
		{title: "Write/s", width: 10, right: true, drop: 2, sortable: true, sort: proctable.SortWrite},
		{title: "User", width: 10, drop: 3},
		{title: "State", width: 8, drop: 4},
	}
}

func (r renderer) procRow(row proctable.Row, q proctable.Query) []cell {
	first := fmt.Sprint(row.PID)
	if q.Grouped() {
		first = fmt.Sprint(row.Count)
	}
	name := row.Name
	if q.Tree {
		name = row.Prefix + row.Name
	}
	cpu := plain(optPercent(row.CPU))
	if v, ok := row.CPU.Get(); ok {
		cpu = styled(cpu.text, r.theme.MetricStyle(v))
	}
	state := string(row.State)
	if row.State == metrics.ProcUnknown {
		state = ""
	}
	return []cell{
		plain(first),
		plain(name),
		cpu,
		plain(optPercent(row.Mem)),
		plain(optRate(row.ReadRate)),
		plain(optRate(row.WriteRate)),
		plain(row.User),
		plain(state),
	}
}

func (r renderer) procWidget(f app.Frame, wf app.WidgetFrame) string {
	rs := r.reading(f.Snapshot, metrics.MetricProcesses)
	if rs.na {
		return r.unavailable(wf, rs)
	}
	w, h := inner(wf)
	q := f.Query
	view := wf.Procs

	p := panel{title: wf.Title, footer: r.searchBar(f, view)}
	var info []string
	if q.Tree {
		info = append(info, "tree")
	} else if q.Grouped() {
		info = append(info, "grouped")
	}
	if view != nil {
		info = append(info, fmt.Sprintf("%d/%d", len(view.Rows), view.Total))
		p.invalid = view.InvalidSearch
	}
	if note := r.noteInfo(rs); note != "" {
		info = append(info, note)
	}
	p.info = strings.Join(info, " ")

	var lines []string
	switch {
	case view == nil || (len(view.Rows) == 0 && view.Total == 0):
		lines = centered(r.theme.muted().Render("no processes"), w, h)
	case len(view.Rows) == 0:
		lines = r.table(wf, procColumns(q), nil, &q, w)
		lines = append(lines, centered(r.theme.muted().Render("no matches"), w, h-1)...)
	default:
		rows := make([][]cell, len(view.Rows))
		for i, row := range view.Rows {
			rows[i] = r.procRow(row, q)
		}
		lines = r.table(wf, procColumns(q), rows, &q, w)
	}
	return r.box(p, wf, lines)
}

// searchBar renders the filter in the bottom border: the live input while
// editing, otherwise the applied text. Option toggles follow it.
func (r renderer) searchBar(f app.Frame, view *proctable.View) string {
	s := f.Query.Search
	if !f.Searching && !s.Active() {
		return ""
	}
	var b strings.Builder
	if f.Searching && r.input != "" {
		b.WriteString(r.input)
	} else {
		b.WriteString("/" + s.Text)
	}
	b.WriteString(" ")
	b.WriteString(r.toggle(s.Field.String(), true))
	b.WriteString(r.toggle("Aa", s.CaseSensitive))
	b.WriteString(r.toggle("W", s.WholeWord))
	b.WriteString(r.toggle(".*", s.Regex))
	if view != nil && view.InvalidSearch {
		b.WriteString(" " + r.theme.fg(r.theme.Critical).Render(view.SearchErr))
	}
	return b.String()
}

func (r renderer) toggle(label string, on bool) string {
	if on {
		return r.theme.fg(r.theme.Accent).Bold(true).Render("[" + label + "]")
	}
	return r.theme.muted().Render("[" + label + "]")
}

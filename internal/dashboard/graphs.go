package dashboard

import (
	"iter"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/rrtop/internal/timeseries"
)

// Braille patterns use a 2x4 dot matrix per character:
//
//	        Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 and sets one bit per dot.
const brailleBase = '⠀'

// brailleDots maps [row][col] inside one cell to the pattern bit.
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// sparklineBlocks are the eight levels of a one-row sparkline.
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Scale is the value range a graph maps onto its height.
type Scale struct {
	Min, Max float64
}

// PercentScale is the fixed range for percentages.
var PercentScale = Scale{Min: 0, Max: 100}

// normalize maps v into 0..1.
func (s Scale) normalize(v float64) float64 {
	if s.Max <= s.Min {
		return 0.5
	}
	return max(0, min((v-s.Min)/(s.Max-s.Min), 1))
}

// autoScale spans zero to the largest value, so rates keep a stable
// baseline. An all-zero window still gets a usable range.
func autoScale(values []float64) Scale {
	hi := 0.0
	for _, v := range values {
		hi = max(hi, v)
	}
	if hi <= 0 {
		hi = 1
	}
	return Scale{Min: 0, Max: hi}
}

// collect drains a window into a slice.
func collect(points iter.Seq[timeseries.Point]) []timeseries.Point {
	var out []timeseries.Point
	if points == nil {
		return out
	}
	for p := range points {
		out = append(out, p)
	}
	return out
}

// values returns the point values in order.
func values(points []timeseries.Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

// brailleGrid plots points on a time axis ending at the newest point and
// spanning window. Each character holds two dot columns; a dot column
// shows the largest value that falls into it, so short spikes survive
// compression. Columns with no samples stay blank. colMax is the largest
// value per character column, or -1 where nothing was drawn.
func brailleGrid(points []timeseries.Point, window time.Duration, width, height int, sc Scale) (grid [][]rune, colMax []float64) {
	grid = make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(string(brailleBase), width))
	}
	colMax = make([]float64, width)
	for i := range colMax {
		colMax[i] = -1
	}
	if len(points) == 0 || width <= 0 || height <= 0 || window <= 0 {
		return grid, colMax
	}

	dotCols := width * 2
	end := points[len(points)-1].Time
	start := end.Add(-window)

	peak := make([]float64, dotCols)
	seen := make([]bool, dotCols)
	for _, p := range points {
		if p.Time.Before(start) {
			continue
		}
		frac := float64(p.Time.Sub(start)) / float64(window)
		col := min(int(frac*float64(dotCols-1)+0.5), dotCols-1)
		if !seen[col] || p.Value > peak[col] {
			peak[col] = p.Value
		}
		seen[col] = true
	}

	totalDots := height * 4
	for col := range dotCols {
		if !seen[col] {
			continue
		}
		v := peak[col]
		cell := col / 2
		colMax[cell] = max(colMax[cell], v)

		dots := int(sc.normalize(v)*float64(totalDots) + 0.5)
		// A non-zero sample always shows at least one dot.
		if dots == 0 && v > sc.Min {
			dots = 1
		}
		for dot := range dots {
			row := height - 1 - dot/4
			sub := 3 - dot%4
			grid[row][cell] |= rune(1 << brailleDots[sub][col%2])
		}
	}
	return grid, colMax
}

// RenderGraph draws a braille graph. Percent graphs color each column by
// severity; other graphs use color.
func (t Theme) RenderGraph(points []timeseries.Point, window time.Duration, width, height int, sc Scale, percent bool, color lipgloss.TerminalColor) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	grid, colMax := brailleGrid(points, window, width, height, sc)

	lines := make([]string, height)
	base := lipgloss.NewStyle().Foreground(color)
	for r, row := range grid {
		var b strings.Builder
		for c, ch := range row {
			style := base
			if percent && colMax[c] >= 0 {
				style = t.MetricStyle(colMax[c])
			}
			b.WriteString(style.Render(string(ch)))
		}
		lines[r] = b.String()
	}
	return strings.Join(lines, "\n")
}

// Sparkline renders a one-row sparkline of the most recent values.
func (t Theme) Sparkline(data []float64, width int, sc Scale, color lipgloss.TerminalColor) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = resample(data, width)
	}

	var b strings.Builder
	for _, v := range data {
		idx := int(sc.normalize(v) * float64(len(sparklineBlocks)-1))
		b.WriteRune(sparklineBlocks[idx])
	}
	out := lipgloss.NewStyle().Foreground(color).Render(b.String())
	// Short histories are right-aligned so the newest value is at the edge.
	return strings.Repeat(" ", width-len(data)) + out
}

// resample compresses data to size buckets, keeping the peak of each.
func resample(data []float64, size int) []float64 {
	if len(data) == 0 || size <= 0 {
		return nil
	}
	if len(data) <= size {
		return data
	}
	out := make([]float64, size)
	bucket := float64(len(data)) / float64(size)
	for i := range size {
		start := int(float64(i) * bucket)
		end := min(int(float64(i+1)*bucket), len(data))
		if start >= end {
			start = end - 1
		}
		peak := data[start]
		for _, v := range data[start+1 : end] {
			peak = max(peak, v)
		}
		out[i] = peak
	}
	return out
}

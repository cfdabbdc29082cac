package app

import "github.com/rileyhilliard/rrtop/internal/config"

// Screen rows reserved above and below the widget body.
const (
	HeaderHeight = 1
	FooterHeight = 1
)

// Rect is a screen region in terminal cells.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether r covers no cells.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Contains reports whether the cell (x, y) is inside r.
func (r Rect) Contains(x, y int) bool {
	return !r.Empty() && x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// body returns the region widgets are laid out in.
func body(width, height int) Rect {
	h := height - HeaderHeight - FooterHeight
	if h < 0 {
		h = 0
	}
	if width < 0 {
		width = 0
	}
	return Rect{X: 0, Y: HeaderHeight, W: width, H: h}
}

// layout assigns a rect to every widget spec. Rows split the body height
// evenly; widgets in a row split its width by weight. Leftover cells go to
// the first rows and columns.
func layout(rows [][]config.WidgetSpec, area Rect) [][]Rect {
	heights := split(area.H, ones(len(rows)))
	out := make([][]Rect, len(rows))
	y := area.Y
	for i, row := range rows {
		weights := make([]int, len(row))
		for j, spec := range row {
			weights[j] = spec.Weight
		}
		widths := split(area.W, weights)
		x := area.X
		out[i] = make([]Rect, len(row))
		for j := range row {
			out[i][j] = Rect{X: x, Y: y, W: widths[j], H: heights[i]}
			x += widths[j]
		}
		y += heights[i]
	}
	return out
}

// split divides total proportionally to weights. The parts always sum to
// total.
func split(total int, weights []int) []int {
	parts := make([]int, len(weights))
	if len(weights) == 0 || total <= 0 {
		return parts
	}
	sum := 0
	for _, w := range weights {
		sum += max(w, 1)
	}
	used := 0
	for i, w := range weights {
		parts[i] = total * max(w, 1) / sum
		used += parts[i]
	}
	for i := 0; used < total; i = (i + 1) % len(parts) {
		parts[i]++
		used++
	}
	return parts
}

func ones(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

// Direction is a focus movement on screen.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	default:
		return "down"
	}
}

// neighbor picks the rect in rects nearest to from in direction d.
// Candidates must lie entirely past from's edge. Candidates that overlap
// from on the other axis win; ties go to the smaller gap, then the closer
// center. Returns -1 when nothing lies that way.
func neighbor(from Rect, rects []Rect, d Direction) int {
	best := -1
	var bestOverlap bool
	var bestGap, bestCenter int

	for i, r := range rects {
		if r.Empty() || r == from {
			continue
		}
		var gap, overlapLen, center int
		switch d {
		case Left:
			gap = from.X - (r.X + r.W)
			overlapLen = overlap(from.Y, from.H, r.Y, r.H)
			center = abs(midY(from) - midY(r))
		case Right:
			gap = r.X - (from.X + from.W)
			overlapLen = overlap(from.Y, from.H, r.Y, r.H)
			center = abs(midY(from) - midY(r))
		case Up:
			gap = from.Y - (r.Y + r.H)
			overlapLen = overlap(from.X, from.W, r.X, r.W)
			center = abs(midX(from) - midX(r))
		case Down:
			gap = r.Y - (from.Y + from.H)
			overlapLen = overlap(from.X, from.W, r.X, r.W)
			center = abs(midX(from) - midX(r))
		}
		if gap < 0 {
			continue
		}
		overlaps := overlapLen > 0

		better := best < 0
		if !better {
			switch {
			case overlaps != bestOverlap:
				better = overlaps
			case gap != bestGap:
				better = gap < bestGap
			default:
				better = center < bestCenter
			}
		}
		if better {
			best, bestOverlap, bestGap, bestCenter = i, overlaps, gap, center
		}
	}
	return best
}

func overlap(a, alen, b, blen int) int {
	return min(a+alen, b+blen) - max(a, b)
}

func midX(r Rect) int { return r.X*2 + r.W }
func midY(r Rect) int { return r.Y*2 + r.H }

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

package timeseries

import (
	"iter"
	"sort"
	"time"
)

// Point is one sample.
type Point struct {
	Time  time.Time
	Value float64
}

// series is a fixed-capacity ring of points ordered by time.
type series struct {
	points []Point
	start  int
	count  int
	maxAge time.Duration
}

func newSeries(r Retention) *series {
	return &series{
		points: make([]Point, r.MaxPoints),
		maxAge: r.MaxAge,
	}
}

// at returns the i-th point, oldest first.
func (s *series) at(i int) Point {
	return s.points[(s.start+i)%len(s.points)]
}

func (s *series) latest() (Point, bool) {
	if s.count == 0 {
		return Point{}, false
	}
	return s.at(s.count - 1), true
}

// push appends p. The caller has checked ordering.
func (s *series) push(p Point) {
	size := len(s.points)
	if s.count == size {
		// Full: overwrite the oldest.
		s.points[s.start] = p
		s.start = (s.start + 1) % size
	} else {
		s.points[(s.start+s.count)%size] = p
		s.count++
	}
	if s.maxAge > 0 {
		s.evictBefore(p.Time.Add(-s.maxAge))
	}
}

// evictBefore drops points strictly older than cutoff.
func (s *series) evictBefore(cutoff time.Time) {
	for s.count > 0 && s.at(0).Time.Before(cutoff) {
		s.points[s.start] = Point{}
		s.start = (s.start + 1) % len(s.points)
		s.count--
	}
}

// searchAfter returns the index of the first point strictly after t.
func (s *series) searchAfter(t time.Time) int {
	return sort.Search(s.count, func(i int) bool {
		return s.at(i).Time.After(t)
	})
}

// window yields the points in (from, to] without copying. It locates the
// start with a binary search each time it is iterated.
func (s *series) window(from, to time.Time) iter.Seq[Point] {
	return func(yield func(Point) bool) {
		for i := s.searchAfter(from); i < s.count; i++ {
			p := s.at(i)
			if p.Time.After(to) {
				return
			}
			if !yield(p) {
				return
			}
		}
	}
}

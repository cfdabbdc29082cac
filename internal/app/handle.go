package app

import (
	"github.com/rileyhilliard/rrtop/internal/proctable"
)

// Handle applies one input event and reports whether it changed anything.
// Widget-local events only reach the focused widget; events that do not
// apply in the current mode are ignored.
func (s *State) Handle(ev Event) bool {
	switch e := ev.(type) {
	case Action:
		return s.action(e)
	case Focus:
		return s.focusDir(e.Dir)
	case SortBy:
		return s.sortBy(e.Key)
	case SearchInput:
		if !s.searching || s.query.Search.Text == e.Text {
			return false
		}
		s.query.Search.Text = e.Text
		s.settleProcs()
		return true
	case Resize:
		if e.Width == s.width && e.Height == s.height {
			return false
		}
		s.width, s.height = max(e.Width, 0), max(e.Height, 0)
		s.relayout()
		return true
	case Mouse:
		return s.mouse(e)
	}
	return false
}

func (s *State) action(a Action) bool {
	switch a {
	case ActToggleHelp:
		s.help = !s.help
		return true
	case ActToggleFreeze:
		s.frozen = !s.frozen
		return true
	case ActBack:
		return s.back()
	case ActNextWidget:
		return s.cycle(1)
	case ActPrevWidget:
		return s.cycle(-1)
	case ActExpand:
		return s.toggleExpand()
	}

	w := s.focused()
	if w == nil {
		return false
	}
	switch a {
	case ActUp:
		return s.move(w, -1)
	case ActDown:
		return s.move(w, 1)
	case ActPageUp:
		return s.move(w, -w.Visible())
	case ActPageDown:
		return s.move(w, w.Visible())
	case ActHome:
		return s.moveTo(w, 0)
	case ActEnd:
		return s.moveTo(w, s.rowCount(w)-1)
	case ActZoomIn:
		return s.zoom(w, 1)
	case ActZoomOut:
		return s.zoom(w, -1)
	case ActZoomReset:
		return s.zoom(w, 0)
	}

	if w.Kind != KindProc {
		return false
	}
	q := &s.query
	switch a {
	case ActReverseSort:
		q.Desc = !q.Desc
	case ActToggleTree:
		q.Tree = !q.Tree
	case ActToggleGroup:
		q.Group = !q.Group
	case ActSearchStart:
		if s.searching {
			return false
		}
		s.searching = true
	case ActSearchAccept:
		if !s.searching {
			return false
		}
		s.searching = false
	case ActSearchCancel:
		if !s.searching && !q.Search.Active() {
			return false
		}
		s.searching = false
		q.Search.Text = ""
	case ActSearchField:
		if q.Search.Field == proctable.SearchName {
			q.Search.Field = proctable.SearchPID
		} else {
			q.Search.Field = proctable.SearchName
		}
	case ActSearchCase:
		q.Search.CaseSensitive = !q.Search.CaseSensitive
	case ActSearchWord:
		q.Search.WholeWord = !q.Search.WholeWord
	case ActSearchRegex:
		q.Search.Regex = !q.Search.Regex
	default:
		return false
	}
	s.settle(w)
	return true
}

// back closes the innermost thing open: help, then the search editor, then
// the expanded widget, then focus.
func (s *State) back() bool {
	switch {
	case s.help:
		s.help = false
	case s.searching:
		s.searching = false
		s.query.Search.Text = ""
		s.settleProcs()
	case s.expanded != noFocus:
		s.expanded = noFocus
		s.relayout()
	case s.focus != noFocus:
		s.setFocus(noFocus)
	default:
		return false
	}
	return true
}

// setFocus moves focus. Leaving the process table keeps its search text
// but stops editing it.
func (s *State) setFocus(id int) {
	if id == s.focus {
		return
	}
	if s.searching {
		s.searching = false
	}
	s.focus = id
	if s.expanded != noFocus && id != noFocus {
		s.expanded = id
		s.relayout()
	}
}

// cycle moves focus through the traversal order. From no focus, forward
// starts at the first widget and backward at the last.
func (s *State) cycle(step int) bool {
	n := len(s.order)
	pos := -1
	for i, id := range s.order {
		if id == s.focus {
			pos = i
			break
		}
	}
	switch {
	case pos < 0 && step > 0:
		pos = 0
	case pos < 0:
		pos = n - 1
	default:
		pos = ((pos+step)%n + n) % n
	}
	if s.order[pos] == s.focus {
		return false
	}
	s.setFocus(s.order[pos])
	return true
}

// focusDir moves focus to the nearest widget on screen in a direction.
func (s *State) focusDir(d Direction) bool {
	if s.expanded != noFocus {
		return false
	}
	w := s.focused()
	if w == nil {
		return s.cycle(1)
	}
	rects := make([]Rect, len(s.widgets))
	for i, o := range s.widgets {
		rects[i] = o.base
	}
	rects[w.ID] = Rect{}
	next := neighbor(w.base, rects, d)
	if next < 0 {
		return false
	}
	s.setFocus(next)
	return true
}

func (s *State) toggleExpand() bool {
	if s.focus == noFocus {
		return false
	}
	if s.expanded == s.focus {
		s.expanded = noFocus
	} else {
		s.expanded = s.focus
	}
	s.relayout()
	return true
}

// zoom narrows (dir > 0) or widens (dir < 0) a graph's window by a factor
// of two within the configured bounds. Zero resets to the default.
func (s *State) zoom(w *Widget, dir int) bool {
	if !w.Kind.Graph() {
		return false
	}
	next := s.opts.DefaultWindow
	switch {
	case dir > 0:
		next = max(w.Window/2, s.opts.MinWindow)
	case dir < 0:
		next = min(w.Window*2, s.opts.MaxWindow)
	}
	if next == w.Window {
		return false
	}
	w.Window = next
	return true
}

// sortBy picks the process sort column. Re-selecting the active column
// reverses it; a new column starts in its natural direction.
func (s *State) sortBy(key proctable.SortKey) bool {
	w := s.focused()
	if w == nil || w.Kind != KindProc {
		return false
	}
	if s.query.Sort == key {
		s.query.Desc = !s.query.Desc
	} else {
		s.query.Sort = key
		s.query.Desc = defaultDesc(key)
	}
	s.settle(w)
	return true
}

// defaultDesc puts the heaviest consumers first for resource columns.
func defaultDesc(key proctable.SortKey) bool {
	switch key {
	case proctable.SortCPU, proctable.SortMem, proctable.SortRead, proctable.SortWrite:
		return true
	}
	return false
}

// mouse handles clicks and the wheel. A click focuses the widget under
// the cursor and selects the clicked row. The wheel acts on the widget
// under the cursor without moving focus: tables scroll, graphs zoom.
func (s *State) mouse(e Mouse) bool {
	w := s.widgetAt(e.X, e.Y)
	if w == nil {
		return false
	}
	switch e.Kind {
	case MouseClick:
		changed := w.ID != s.focus
		s.setFocus(w.ID)
		if w.Kind.Table() {
			row := e.Y - (w.Rect.Y + tableRowsTop)
			if row >= 0 && row < w.Visible() && w.Offset+row < s.rowCount(w) {
				changed = s.moveTo(w, w.Offset+row) || changed
			}
		}
		return changed
	case MouseWheelUp:
		if w.Kind.Graph() {
			return s.zoom(w, 1)
		}
		return s.move(w, -1)
	case MouseWheelDown:
		if w.Kind.Graph() {
			return s.zoom(w, -1)
		}
		return s.move(w, 1)
	}
	return false
}

func (s *State) widgetAt(x, y int) *Widget {
	for _, w := range s.widgets {
		if w.Rect.Contains(x, y) {
			return w
		}
	}
	return nil
}

package app

import "github.com/rileyhilliard/rrtop/internal/proctable"

// procView returns the process view for the current query. The table
// reuses its last view while neither its data nor the query changed.
func (s *State) procView() *proctable.View {
	if s.procs == nil {
		return nil
	}
	return s.procs.View(s.query)
}

// rowCount returns the number of rows a table widget shows.
func (s *State) rowCount(w *Widget) int {
	switch w.Kind {
	case KindProc:
		if v := s.procView(); v != nil {
			return len(v.Rows)
		}
	case KindDisk:
		if s.snap != nil {
			if disks, ok := s.snap.Disks.Get(); ok {
				return len(disks)
			}
		}
	case KindTemp:
		if s.snap != nil {
			if temps, ok := s.snap.Temperatures.Get(); ok {
				return len(temps)
			}
		}
	}
	return 0
}

func (s *State) move(w *Widget, delta int) bool {
	if !w.Kind.Table() {
		return false
	}
	s.settle(w)
	return s.moveTo(w, w.Selected+delta)
}

// moveTo selects row i, clamped to the table, and anchors process
// selection to the pid on that row.
func (s *State) moveTo(w *Widget, i int) bool {
	if !w.Kind.Table() {
		return false
	}
	n := s.rowCount(w)
	i = max(0, min(i, n-1))
	before, offset := w.Selected, w.Offset
	w.Selected = i
	if w.Kind == KindProc {
		w.hasAnchor = false
		if v := s.procView(); v != nil && i < len(v.Rows) {
			w.anchor, w.hasAnchor = v.Rows[i].PID, true
		}
	}
	w.scrollTo(n)
	return w.Selected != before || w.Offset != offset
}

// settle re-resolves a table's selection after its rows changed. A process
// selection follows its pid to wherever the pid now sorts; if the pid is
// gone or filtered out, the selection stays at the same position and
// anchors to whatever is there.
func (s *State) settle(w *Widget) {
	n := s.rowCount(w)
	if w.Kind == KindProc && w.hasAnchor {
		if v := s.procView(); v != nil {
			if i := v.Index(w.anchor); i >= 0 {
				w.Selected = i
			}
		}
	}
	w.Selected = max(0, min(w.Selected, n-1))
	if w.Kind == KindProc {
		if v := s.procView(); v != nil && w.Selected < len(v.Rows) {
			if v.Index(w.anchor) != w.Selected || !w.hasAnchor {
				w.anchor, w.hasAnchor = v.Rows[w.Selected].PID, true
			}
		} else {
			w.hasAnchor = false
		}
	}
	w.scrollTo(n)
}

func (s *State) settleProcs() {
	for _, w := range s.widgets {
		if w.Kind == KindProc {
			s.settle(w)
		}
	}
}

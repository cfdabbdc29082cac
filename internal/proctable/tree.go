package proctable

import (
	"cmp"
	"slices"
)

// Tree glyphs drawn in front of the process name.
const (
	glyphBranch = "├─ "
	glyphLast   = "└─ "
	glyphPipe   = "│  "
	glyphSpace  = "   "
)

// treeRows flattens the process forest depth-first. A filter keeps every
// match plus its ancestors. Children are ordered by the query like flat
// rows; roots are processes without a parent and orphans whose parent has
// exited.
func (t *Table) treeRows(q Query, match func(*entry) bool) []Row {
	keep := make(map[int32]bool, len(t.procs))
	for pid, e := range t.procs {
		if !match(e) {
			continue
		}
		// Walk up until the root or an already kept ancestor.
		seen := make(map[int32]bool)
		for cur := pid; !keep[cur] && !seen[cur]; {
			seen[cur] = true
			keep[cur] = true
			parent, ok := t.parentOf(cur)
			if !ok {
				break
			}
			cur = parent
		}
	}

	children := make(map[int32][]Row)
	var roots []Row
	for pid := range keep {
		e := t.procs[pid]
		r := t.row(e)
		parent, ok := t.parentOf(pid)
		switch {
		case ok && keep[parent]:
			children[parent] = append(children[parent], r)
		default:
			r.Orphaned = r.HasParent && !ok
			roots = append(roots, r)
		}
	}

	ordered := func(rows []Row) []Row {
		sortRows(sortByPID(rows), q, false)
		return rows
	}

	out := make([]Row, 0, len(keep))
	visited := make(map[int32]bool, len(keep))
	var walk func(r Row, depth int, indent string, last bool)
	walk = func(r Row, depth int, indent string, last bool) {
		if visited[r.PID] {
			return
		}
		visited[r.PID] = true

		r.Depth = depth
		kids := children[r.PID]
		r.HasChildren = len(kids) > 0
		childIndent := indent
		if depth > 0 {
			if last {
				r.Prefix = indent + glyphLast
				childIndent = indent + glyphSpace
			} else {
				r.Prefix = indent + glyphBranch
				childIndent = indent + glyphPipe
			}
		}
		out = append(out, r)

		kids = ordered(kids)
		for i, kid := range kids {
			walk(kid, depth+1, childIndent, i == len(kids)-1)
		}
	}

	for _, r := range ordered(roots) {
		walk(r, 0, "", false)
	}

	// Parent links that loop back on themselves never reach a root. Show
	// whatever is left as roots so no kept process disappears.
	if len(visited) < len(keep) {
		var rest []Row
		for pid := range keep {
			if !visited[pid] {
				r := t.row(t.procs[pid])
				r.Orphaned = true
				rest = append(rest, r)
			}
		}
		for _, r := range ordered(rest) {
			walk(r, 0, "", false)
		}
	}
	return out
}

// parentOf returns pid's parent when that parent is in the table.
func (t *Table) parentOf(pid int32) (int32, bool) {
	e, ok := t.procs[pid]
	if !ok {
		return 0, false
	}
	ppid, ok := e.PPID.Get()
	if !ok {
		return 0, false
	}
	if _, ok := t.procs[ppid]; !ok {
		return 0, false
	}
	return ppid, true
}

// sortByPID puts rows in ascending pid order, the base order views start from.
func sortByPID(rows []Row) []Row {
	slices.SortFunc(rows, func(a, b Row) int { return cmp.Compare(a.PID, b.PID) })
	return rows
}

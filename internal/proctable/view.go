package proctable

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/rileyhilliard/rrtop/internal/metrics"
)

// Row is one line of a process view. In grouped views a row aggregates
// every process sharing Name: PID is the lowest member pid, Count and PIDs
// describe the members, and resource fields are sums.
type Row struct {
	PID       int32
	PPID      int32
	HasParent bool
	Name      string
	Command   string
	User      string
	State     metrics.ProcessState

	CPU        metrics.Optional[float64]
	Mem        metrics.Optional[float64]
	RSS        uint64
	ReadBytes  metrics.Optional[uint64]
	WriteBytes metrics.Optional[uint64]
	ReadRate   metrics.Optional[float64]
	WriteRate  metrics.Optional[float64]

	// Tree mode only.
	Depth       int
	Prefix      string
	HasChildren bool
	// Orphaned marks a root whose parent pid is known but no longer exists.
	Orphaned bool

	// Grouped mode only.
	Count int
	PIDs  []int32
}

// View is a read-only projection of the table. It stays valid until the
// next Update; callers must not modify Rows.
type View struct {
	Rows  []Row
	Query Query
	// Total is the number of processes before filtering.
	Total int
	// InvalidSearch is set when the search is a regex that does not
	// compile. No filter is applied in that case.
	InvalidSearch bool
	SearchErr     string
	Status        metrics.Status
	Err           string
	Generation    uint64
}

// Index returns the position of pid in the view, or -1. Grouped rows match
// any member pid.
func (v *View) Index(pid int32) int {
	if v == nil {
		return -1
	}
	for i := range v.Rows {
		if v.Rows[i].PID == pid {
			return i
		}
		if v.Query.Grouped() && slices.Contains(v.Rows[i].PIDs, pid) {
			return i
		}
	}
	return -1
}

// View returns the projection for q. The previous view is reused when
// neither the table nor the query changed since it was built.
func (t *Table) View(q Query) *View {
	key := cacheKey{generation: t.generation, query: q}
	if t.cache != nil && t.cacheKey == key {
		return t.cache
	}

	t.computations++
	v := t.build(q)
	t.cache = v
	t.cacheKey = key
	return v
}

func (t *Table) build(q Query) *View {
	v := &View{
		Query:      q,
		Total:      len(t.procs),
		Status:     t.status,
		Err:        t.errText,
		Generation: t.generation,
	}

	match := func(*entry) bool { return true }
	if q.Search.Active() {
		re, err := q.Search.compile()
		if err != nil {
			v.InvalidSearch = true
			v.SearchErr = err.Error()
		} else if q.Search.Field == SearchPID {
			match = func(e *entry) bool { return re.MatchString(strconv.Itoa(int(e.PID))) }
		} else {
			match = func(e *entry) bool { return re.MatchString(e.Name) || re.MatchString(e.Command) }
		}
	}

	switch {
	case q.Tree:
		v.Rows = t.treeRows(q, match)
	case q.Group:
		v.Rows = t.groupRows(q, match)
	default:
		v.Rows = t.flatRows(q, match)
	}
	return v
}

func (t *Table) row(e *entry) Row {
	r := Row{
		PID:        e.PID,
		Name:       e.Name,
		Command:    e.Command,
		User:       e.User,
		State:      e.State,
		CPU:        e.cpu,
		Mem:        t.memPercent(e.RSS),
		RSS:        e.RSS,
		ReadBytes:  e.ReadBytes,
		WriteBytes: e.WriteBytes,
		ReadRate:   e.readRate,
		WriteRate:  e.writeRate,
	}
	if ppid, ok := e.PPID.Get(); ok {
		r.PPID = ppid
		r.HasParent = true
	}
	return r
}

// sortedPIDs returns the table's pids in ascending order, the base order
// every view starts from.
func (t *Table) sortedPIDs() []int32 {
	pids := make([]int32, 0, len(t.procs))
	for pid := range t.procs {
		pids = append(pids, pid)
	}
	slices.Sort(pids)
	return pids
}

func (t *Table) flatRows(q Query, match func(*entry) bool) []Row {
	rows := make([]Row, 0, len(t.procs))
	for _, pid := range t.sortedPIDs() {
		if e := t.procs[pid]; match(e) {
			rows = append(rows, t.row(e))
		}
	}
	sortRows(rows, q, false)
	return rows
}

func (t *Table) groupRows(q Query, match func(*entry) bool) []Row {
	byName := make(map[string]int)
	var rows []Row
	for _, pid := range t.sortedPIDs() {
		e := t.procs[pid]
		if !match(e) {
			continue
		}
		r := t.row(e)
		i, ok := byName[e.Name]
		if !ok {
			r.Count = 1
			r.PIDs = []int32{e.PID}
			byName[e.Name] = len(rows)
			rows = append(rows, r)
			continue
		}
		g := &rows[i]
		g.Count++
		g.PIDs = append(g.PIDs, e.PID)
		g.CPU = sumFloat(g.CPU, r.CPU)
		g.Mem = sumFloat(g.Mem, r.Mem)
		g.RSS += r.RSS
		g.ReadBytes = sumUint(g.ReadBytes, r.ReadBytes)
		g.WriteBytes = sumUint(g.WriteBytes, r.WriteBytes)
		g.ReadRate = sumFloat(g.ReadRate, r.ReadRate)
		g.WriteRate = sumFloat(g.WriteRate, r.WriteRate)
		if g.User != r.User {
			g.User = ""
		}
		g.HasParent = false
		g.PPID = 0
	}
	sortRows(rows, q, true)
	return rows
}

// sumFloat adds the present values; the sum is None only if both are.
func sumFloat(a, b metrics.Optional[float64]) metrics.Optional[float64] {
	av, aok := a.Get()
	bv, bok := b.Get()
	if !aok && !bok {
		return metrics.None[float64]()
	}
	return metrics.Some(av + bv)
}

func sumUint(a, b metrics.Optional[uint64]) metrics.Optional[uint64] {
	av, aok := a.Get()
	bv, bok := b.Get()
	if !aok && !bok {
		return metrics.None[uint64]()
	}
	return metrics.Some(av + bv)
}

// sortRows orders rows by the query key. Ties fall back to ascending pid,
// or to name for grouped rows, regardless of direction. Unavailable values
// sort below every real value.
func sortRows(rows []Row, q Query, grouped bool) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		c := compareKey(a, b, q.Sort, grouped)
		if q.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
		if grouped {
			return cmp.Compare(a.Name, b.Name)
		}
		return cmp.Compare(a.PID, b.PID)
	})
}

func compareKey(a, b Row, key SortKey, grouped bool) int {
	switch key {
	case SortCPU:
		return compareOpt(a.CPU, b.CPU)
	case SortMem:
		return cmp.Compare(a.RSS, b.RSS)
	case SortName:
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case SortRead:
		return compareOpt(a.ReadRate, b.ReadRate)
	case SortWrite:
		return compareOpt(a.WriteRate, b.WriteRate)
	case SortPID:
		if grouped {
			return cmp.Compare(a.Count, b.Count)
		}
		return cmp.Compare(a.PID, b.PID)
	}
	return 0
}

func compareOpt(a, b metrics.Optional[float64]) int {
	av, aok := a.Get()
	bv, bok := b.Get()
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}
	return cmp.Compare(av, bv)
}

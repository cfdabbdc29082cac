package proctable

import (
	"regexp"
	"strings"
)

// SortKey selects the column a view is ordered by.
type SortKey int

const (
	SortCPU SortKey = iota
	SortMem
	SortPID
	SortName
	SortRead
	SortWrite
)

var sortKeyNames = map[SortKey]string{
	SortCPU:   "cpu",
	SortMem:   "mem",
	SortPID:   "pid",
	SortName:  "name",
	SortRead:  "read",
	SortWrite: "write",
}

func (k SortKey) String() string {
	if s, ok := sortKeyNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseSortKey resolves a configured sort key name.
func ParseSortKey(s string) (SortKey, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range sortKeyNames {
		if name == s {
			return k, true
		}
	}
	return SortCPU, false
}

// SortKeys returns every sort key in column order.
func SortKeys() []SortKey {
	return []SortKey{SortPID, SortName, SortCPU, SortMem, SortRead, SortWrite}
}

// SearchField selects what the search text is matched against.
type SearchField int

const (
	// SearchName matches the process name or command line.
	SearchName SearchField = iota
	// SearchPID matches the decimal pid.
	SearchPID
)

func (f SearchField) String() string {
	if f == SearchPID {
		return "pid"
	}
	return "name"
}

// Search describes a process filter.
type Search struct {
	Text          string
	Field         SearchField
	CaseSensitive bool
	WholeWord     bool
	Regex         bool
}

// Active reports whether the search filters anything.
func (s Search) Active() bool {
	return s.Text != ""
}

// compile turns the search into a regular expression. Plain text is
// quoted, so "a.b" matches literally unless Regex is set.
func (s Search) compile() (*regexp.Regexp, error) {
	pattern := s.Text
	if !s.Regex {
		pattern = regexp.QuoteMeta(pattern)
	}
	if s.WholeWord {
		if s.Field == SearchPID {
			pattern = `^(?:` + pattern + `)$`
		} else {
			pattern = `\b(?:` + pattern + `)\b`
		}
	}
	if !s.CaseSensitive {
		pattern = `(?i)` + pattern
	}
	return regexp.Compile(pattern)
}

// Query is everything that shapes a view. It is comparable, so views can
// be cached by query.
type Query struct {
	Sort   SortKey
	Desc   bool
	Search Search
	Tree   bool
	Group  bool
}

// Grouped reports whether rows aggregate identical names. Tree mode wins.
func (q Query) Grouped() bool {
	return q.Group && !q.Tree
}

package app

import "github.com/rileyhilliard/rrtop/internal/proctable"

// Event is one discrete input. The renderer translates terminal input into
// events and the State consumes them in arrival order.
type Event interface {
	isEvent()
}

// Action is an input with no payload.
type Action int

const (
	// Global actions.
	ActNextWidget Action = iota
	ActPrevWidget
	ActExpand
	ActBack
	ActToggleHelp
	ActToggleFreeze

	// Row movement in tables.
	ActUp
	ActDown
	ActPageUp
	ActPageDown
	ActHome
	ActEnd

	// Graph zoom.
	ActZoomIn
	ActZoomOut
	ActZoomReset

	// Process table.
	ActReverseSort
	ActToggleTree
	ActToggleGroup
	ActSearchStart
	ActSearchAccept
	ActSearchCancel
	ActSearchField
	ActSearchCase
	ActSearchWord
	ActSearchRegex
)

var actionNames = map[Action]string{
	ActNextWidget:   "next-widget",
	ActPrevWidget:   "prev-widget",
	ActExpand:       "expand",
	ActBack:         "back",
	ActToggleHelp:   "help",
	ActToggleFreeze: "freeze",
	ActUp:           "up",
	ActDown:         "down",
	ActPageUp:       "page-up",
	ActPageDown:     "page-down",
	ActHome:         "home",
	ActEnd:          "end",
	ActZoomIn:       "zoom-in",
	ActZoomOut:      "zoom-out",
	ActZoomReset:    "zoom-reset",
	ActReverseSort:  "reverse-sort",
	ActToggleTree:   "tree",
	ActToggleGroup:  "group",
	ActSearchStart:  "search",
	ActSearchAccept: "search-accept",
	ActSearchCancel: "search-cancel",
	ActSearchField:  "search-field",
	ActSearchCase:   "search-case",
	ActSearchWord:   "search-word",
	ActSearchRegex:  "search-regex",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unknown"
}

// Focus moves focus to the adjacent widget in a direction.
type Focus struct {
	Dir Direction
}

// SortBy selects a process sort column. Choosing the active column again
// reverses it.
type SortBy struct {
	Key proctable.SortKey
}

// SearchInput replaces the search text while searching.
type SearchInput struct {
	Text string
}

// Resize reports the new terminal size.
type Resize struct {
	Width, Height int
}

// MouseKind is the mouse input type.
type MouseKind int

const (
	MouseClick MouseKind = iota
	MouseWheelUp
	MouseWheelDown
)

// Mouse is a mouse input at a terminal cell.
type Mouse struct {
	X, Y int
	Kind MouseKind
}

func (Action) isEvent()      {}
func (Focus) isEvent()       {}
func (SortBy) isEvent()      {}
func (SearchInput) isEvent() {}
func (Resize) isEvent()      {}
func (Mouse) isEvent()       {}

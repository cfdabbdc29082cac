package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/rrtop/internal/app"
	"github.com/rileyhilliard/rrtop/internal/proctable"
)

// KeyMap defines every keyboard shortcut.
type KeyMap struct {
	Quit   key.Binding
	Help   key.Binding
	Freeze key.Binding

	// Widget focus.
	Next       key.Binding
	Prev       key.Binding
	FocusLeft  key.Binding
	FocusDown  key.Binding
	FocusUp    key.Binding
	FocusRight key.Binding
	Expand     key.Binding
	Back       key.Binding

	// Tables.
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Graphs.
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	ZoomReset key.Binding

	// Process table.
	SortCPU   key.Binding
	SortMem   key.Binding
	SortPID   key.Binding
	SortName  key.Binding
	SortRead  key.Binding
	SortWrite key.Binding
	Reverse   key.Binding
	Tree      key.Binding
	Group     key.Binding
	Search    key.Binding

	// While editing the search.
	SearchAccept key.Binding
	SearchCancel key.Binding
	SearchField  key.Binding
	SearchCase   key.Binding
	SearchWord   key.Binding
	SearchRegex  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Freeze: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "freeze")),

		Next:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next widget")),
		Prev:       key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev widget")),
		FocusLeft:  key.NewBinding(key.WithKeys("ctrl+h", "shift+left"), key.WithHelp("ctrl+h", "focus left")),
		FocusDown:  key.NewBinding(key.WithKeys("ctrl+j", "shift+down"), key.WithHelp("ctrl+j", "focus down")),
		FocusUp:    key.NewBinding(key.WithKeys("ctrl+k", "shift+up"), key.WithHelp("ctrl+k", "focus up")),
		FocusRight: key.NewBinding(key.WithKeys("ctrl+l", "shift+right"), key.WithHelp("ctrl+l", "focus right")),
		Expand:     key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "expand")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),

		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Home:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first row")),
		End:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last row")),

		ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		ZoomReset: key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "reset zoom")),

		SortCPU:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "sort cpu")),
		SortMem:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "sort mem")),
		SortPID:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "sort pid")),
		SortName:  key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "sort name")),
		SortRead:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "sort read")),
		SortWrite: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "sort write")),
		Reverse:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reverse")),
		Tree:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tree")),
		Group:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "group by name")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),

		SearchAccept: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "keep filter")),
		SearchCancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear filter")),
		SearchField:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "name/pid")),
		SearchCase:   key.NewBinding(key.WithKeys("alt+c"), key.WithHelp("alt+c", "match case")),
		SearchWord:   key.NewBinding(key.WithKeys("alt+w"), key.WithHelp("alt+w", "whole word")),
		SearchRegex:  key.NewBinding(key.WithKeys("alt+r"), key.WithHelp("alt+r", "regex")),
	}
}

// ShortHelp returns the footer bindings.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Expand, k.Search, k.Freeze, k.Help, k.Quit}
}

// FullHelp returns every binding, one column per group.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.FocusLeft, k.FocusDown, k.FocusUp, k.FocusRight, k.Expand, k.Back},
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		{k.ZoomIn, k.ZoomOut, k.ZoomReset, k.Freeze, k.Help, k.Quit},
		{k.SortCPU, k.SortMem, k.SortPID, k.SortName, k.SortRead, k.SortWrite, k.Reverse},
		{k.Tree, k.Group, k.Search, k.SearchField, k.SearchCase, k.SearchWord, k.SearchRegex},
	}
}

// searchHelp is the footer while the search is being edited.
type searchHelp KeyMap

func (k searchHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.SearchAccept, k.SearchCancel, k.SearchField, k.SearchCase, k.SearchWord, k.SearchRegex}
}

func (k searchHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// searchEvent maps a key pressed while editing the search to a state
// event. Keys that are not search commands return nil and are typed into
// the input.
func (k KeyMap) searchEvent(msg tea.KeyMsg) app.Event {
	switch {
	case key.Matches(msg, k.SearchAccept):
		return app.ActSearchAccept
	case key.Matches(msg, k.SearchCancel):
		return app.ActSearchCancel
	case key.Matches(msg, k.SearchField):
		return app.ActSearchField
	case key.Matches(msg, k.SearchCase):
		return app.ActSearchCase
	case key.Matches(msg, k.SearchWord):
		return app.ActSearchWord
	case key.Matches(msg, k.SearchRegex):
		return app.ActSearchRegex
	}
	return nil
}

// event maps a key to a state event, or nil when the key is unbound.
// Quit is handled by the model before this is consulted.
func (k KeyMap) event(msg tea.KeyMsg) app.Event {
	switch {
	case key.Matches(msg, k.Help):
		return app.ActToggleHelp
	case key.Matches(msg, k.Freeze):
		return app.ActToggleFreeze
	case key.Matches(msg, k.Next):
		return app.ActNextWidget
	case key.Matches(msg, k.Prev):
		return app.ActPrevWidget
	case key.Matches(msg, k.FocusLeft):
		return app.Focus{Dir: app.Left}
	case key.Matches(msg, k.FocusDown):
		return app.Focus{Dir: app.Down}
	case key.Matches(msg, k.FocusUp):
		return app.Focus{Dir: app.Up}
	case key.Matches(msg, k.FocusRight):
		return app.Focus{Dir: app.Right}
	case key.Matches(msg, k.Expand):
		return app.ActExpand
	case key.Matches(msg, k.Back):
		return app.ActBack
	case key.Matches(msg, k.Up):
		return app.ActUp
	case key.Matches(msg, k.Down):
		return app.ActDown
	case key.Matches(msg, k.PageUp):
		return app.ActPageUp
	case key.Matches(msg, k.PageDown):
		return app.ActPageDown
	case key.Matches(msg, k.Home):
		return app.ActHome
	case key.Matches(msg, k.End):
		return app.ActEnd
	case key.Matches(msg, k.ZoomIn):
		return app.ActZoomIn
	case key.Matches(msg, k.ZoomOut):
		return app.ActZoomOut
	case key.Matches(msg, k.ZoomReset):
		return app.ActZoomReset
	case key.Matches(msg, k.SortCPU):
		return app.SortBy{Key: proctable.SortCPU}
	case key.Matches(msg, k.SortMem):
		return app.SortBy{Key: proctable.SortMem}
	case key.Matches(msg, k.SortPID):
		return app.SortBy{Key: proctable.SortPID}
	case key.Matches(msg, k.SortName):
		return app.SortBy{Key: proctable.SortName}
	case key.Matches(msg, k.SortRead):
		return app.SortBy{Key: proctable.SortRead}
	case key.Matches(msg, k.SortWrite):
		return app.SortBy{Key: proctable.SortWrite}
	case key.Matches(msg, k.Reverse):
		return app.ActReverseSort
	case key.Matches(msg, k.Tree):
		return app.ActToggleTree
	case key.Matches(msg, k.Group):
		return app.ActToggleGroup
	case key.Matches(msg, k.Search):
		return app.ActSearchStart
	}
	return nil
}

package dashboard

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/rrtop/internal/app"
	"github.com/rileyhilliard/rrtop/internal/logger"
	"github.com/rileyhilliard/rrtop/internal/metrics"
	"github.com/rileyhilliard/rrtop/internal/proctable"
	"github.com/rileyhilliard/rrtop/internal/timeseries"
)

// spinnerFrames animates the placeholder shown until the first snapshot.
var spinnerFrames = spinner.Spinner{
	Frames: []string{"◐", "◓", "◑", "◒"},
	FPS:    time.Second / 10,
}

// snapshotMsg carries a snapshot taken from the harvester's slot.
type snapshotMsg struct {
	snap *metrics.Snapshot
}

// slotClosedMsg reports that the harvester stopped publishing.
type slotClosedMsg struct{}

// waitForSnapshot blocks on the subscription until the next snapshot.
func waitForSnapshot(ch <-chan *metrics.Snapshot) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return slotClosedMsg{}
		}
		return snapshotMsg{snap: snap}
	}
}

// Options configures a Model.
type Options struct {
	Theme Theme
	Keys  *KeyMap
	// Now overrides the clock used for "updated" ages, for tests.
	Now func() time.Time
	Log logger.Logger
}

// Model is the Bubble Tea model for the dashboard. It owns the store and
// process table; snapshots are ingested on the UI goroutine.
type Model struct {
	state *app.State
	store *timeseries.Store
	table *proctable.Table
	snaps <-chan *metrics.Snapshot

	// pending is the newest snapshot received while frozen.
	pending *metrics.Snapshot

	keys    KeyMap
	help    help.Model
	search  textinput.Model
	spinner spinner.Model
	theme   Theme
	now     func() time.Time
	log     logger.Logger

	closed   bool
	quitting bool
}

// NewModel creates a dashboard model reading snapshots from snaps.
func NewModel(state *app.State, store *timeseries.Store, table *proctable.Table, snaps <-chan *metrics.Snapshot, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = logger.NewEnvLogger("[dashboard]")
	}
	if opts.Theme.Name == "" {
		opts.Theme = DefaultTheme
	}
	keys := DefaultKeyMap()
	if opts.Keys != nil {
		keys = *opts.Keys
	}

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "name or pid"
	search.PromptStyle = opts.Theme.fg(opts.Theme.Accent)
	search.TextStyle = opts.Theme.fg(opts.Theme.Text)
	search.CharLimit = 128

	sp := spinner.New(spinner.WithSpinner(spinnerFrames))
	sp.Style = opts.Theme.fg(opts.Theme.Accent)

	return Model{
		state:   state,
		store:   store,
		table:   table,
		snaps:   snaps,
		keys:    keys,
		help:    newHelp(opts.Theme),
		search:  search,
		spinner: sp,
		theme:   opts.Theme,
		now:     opts.Now,
		log:     opts.Log,
	}
}

// Init starts listening for snapshots and animates the placeholder.
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForSnapshot(m.snaps), m.spinner.Tick)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		m.state.Handle(app.Resize{Width: msg.Width, Height: msg.Height})

	case tea.MouseMsg:
		if ev, ok := mouseEvent(msg); ok {
			m.apply(ev)
		}

	case snapshotMsg:
		if m.state.Frozen() {
			m.pending = msg.snap
		} else {
			m.ingest(msg.snap)
		}
		return m, waitForSnapshot(m.snaps)

	case slotClosedMsg:
		m.closed = true
		m.log.Debug("harvester stopped publishing")

	case spinner.TickMsg:
		if m.state.Snapshot() != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKey routes a key press. While the search is edited, keys that are
// not search commands are typed into the input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.quitting = true
		return m, tea.Quit
	}

	if m.state.Searching() {
		if ev := m.keys.searchEvent(msg); ev != nil {
			m.apply(ev)
			return m, nil
		}
		before := m.search.Value()
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if v := m.search.Value(); v != before {
			m.apply(app.SearchInput{Text: v})
		}
		return m, cmd
	}

	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	ev := m.keys.event(msg)
	if ev == nil {
		return m, nil
	}
	m.apply(ev)
	if ev == app.ActSearchStart && m.state.Searching() {
		m.search.SetValue(m.state.Query().Search.Text)
		m.search.CursorEnd()
		return m, m.search.Focus()
	}
	return m, nil
}

// apply hands an event to the state machine and catches up on anything
// the event changed outside it.
func (m *Model) apply(ev app.Event) {
	frozen := m.state.Frozen()
	m.state.Handle(ev)
	if frozen && !m.state.Frozen() && m.pending != nil {
		m.ingest(m.pending)
		m.pending = nil
	}
	if !m.state.Searching() && m.search.Focused() {
		m.search.Blur()
	}
}

// ingest records a snapshot in the store and process table and hands it
// to the state machine.
func (m *Model) ingest(snap *metrics.Snapshot) {
	if snap == nil {
		return
	}
	if n := m.store.Ingest(snap); n == 0 {
		m.log.Debug("snapshot %d added no points", snap.Seq)
	}
	m.table.Update(snap)
	m.state.Observe(snap)
}

// mouseEvent translates a terminal mouse message. Only presses are used.
func mouseEvent(msg tea.MouseMsg) (app.Mouse, bool) {
	if msg.Action != tea.MouseActionPress {
		return app.Mouse{}, false
	}
	switch msg.Button {
	case tea.MouseButtonLeft:
		return app.Mouse{X: msg.X, Y: msg.Y, Kind: app.MouseClick}, true
	case tea.MouseButtonWheelUp:
		return app.Mouse{X: msg.X, Y: msg.Y, Kind: app.MouseWheelUp}, true
	case tea.MouseButtonWheelDown:
		return app.Mouse{X: msg.X, Y: msg.Y, Kind: app.MouseWheelDown}, true
	}
	return app.Mouse{}, false
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	f := m.state.Frame()
	if f.Width <= 0 || f.Height <= 0 {
		return ""
	}

	r := renderer{theme: m.theme, now: m.now()}
	if f.Searching {
		r.input = m.search.View()
	}

	bodyH := max(f.Height-app.HeaderHeight-app.FooterHeight, 0)
	var body string
	switch {
	case f.Help:
		body = r.helpOverlay(m.help, m.keys, f.Width, bodyH)
	case f.Snapshot == nil:
		msg := m.spinner.View() + " " + m.theme.muted().Render("collecting first sample")
		if m.closed {
			msg = m.theme.fg(m.theme.Critical).Render("harvester stopped")
		}
		body = lipgloss.Place(f.Width, bodyH, lipgloss.Center, lipgloss.Center, msg)
	default:
		body = lipgloss.Place(f.Width, bodyH, lipgloss.Left, lipgloss.Top, r.body(f))
	}

	return strings.Join([]string{r.header(f), body, m.footer(f)}, "\n")
}

// footer shows the short help for the current mode.
func (m Model) footer(f app.Frame) string {
	h := m.help
	h.Width = f.Width
	var line string
	if f.Searching {
		line = h.View(searchHelp(m.keys))
	} else {
		line = h.View(m.keys)
	}
	return fit(" "+line, f.Width)
}

package app

import (
	"iter"
	"slices"
	"time"

	"github.com/rileyhilliard/rrtop/internal/config"
	"github.com/rileyhilliard/rrtop/internal/errors"
	"github.com/rileyhilliard/rrtop/internal/logger"
	"github.com/rileyhilliard/rrtop/internal/metrics"
	"github.com/rileyhilliard/rrtop/internal/proctable"
	"github.com/rileyhilliard/rrtop/internal/timeseries"
)

// SeriesSource answers time-window queries. *timeseries.Store implements it.
type SeriesSource interface {
	Window(key string, d time.Duration) iter.Seq[timeseries.Point]
	Latest(key string) (timeseries.Point, bool)
	Has(key string) bool
	KeysWithPrefix(prefix string) []string
}

// ProcessSource answers process view queries. *proctable.Table implements it.
type ProcessSource interface {
	View(q proctable.Query) *proctable.View
}

// Options configures a State.
type Options struct {
	Rows [][]config.WidgetSpec

	DefaultWindow time.Duration
	MinWindow     time.Duration
	MaxWindow     time.Duration

	// Query is the initial process query.
	Query proctable.Query
}

// OptionsFromConfig builds Options from a validated config.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	rows, err := cfg.Rows()
	if err != nil {
		return Options{}, errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'layout' setting.")
	}
	return Options{
		Rows:          rows,
		DefaultWindow: cfg.Graph.DefaultWindow,
		MinWindow:     cfg.Graph.MinWindow,
		MaxWindow:     cfg.Graph.MaxWindow,
		Query: proctable.Query{
			Sort:  cfg.SortKey(),
			Desc:  cfg.Processes.Descending,
			Tree:  cfg.Processes.Tree,
			Group: cfg.Processes.Group,
		},
	}, nil
}

// noFocus marks the absence of a focused or expanded widget.
const noFocus = -1

// State is the application state machine.
type State struct {
	opts   Options
	series SeriesSource
	procs  ProcessSource
	log    logger.Logger

	widgets []*Widget
	// order is the focus traversal order: widget IDs by screen position.
	order []int

	focus    int
	expanded int

	width, height int

	query     proctable.Query
	searching bool
	help      bool
	frozen    bool

	snap *metrics.Snapshot
}

// New creates a State with one widget per layout entry.
func New(opts Options, series SeriesSource, procs ProcessSource, log logger.Logger) (*State, error) {
	if log == nil {
		log = logger.NewEnvLogger("[app]")
	}
	if opts.MinWindow <= 0 {
		opts.MinWindow = 10 * time.Second
	}
	if opts.MaxWindow < opts.MinWindow {
		opts.MaxWindow = opts.MinWindow
	}
	if opts.DefaultWindow < opts.MinWindow || opts.DefaultWindow > opts.MaxWindow {
		opts.DefaultWindow = opts.MinWindow
	}

	s := &State{
		opts:     opts,
		series:   series,
		procs:    procs,
		log:      log,
		focus:    noFocus,
		expanded: noFocus,
		query:    opts.Query,
	}
	for r, row := range opts.Rows {
		for c, spec := range row {
			s.widgets = append(s.widgets, &Widget{
				ID:     len(s.widgets),
				Kind:   Kind(spec.Kind),
				Weight: spec.Weight,
				Row:    r,
				Col:    c,
				Window: opts.DefaultWindow,
			})
		}
	}
	if len(s.widgets) == 0 {
		return nil, errors.New(errors.ErrConfig,
			"No widgets to show",
			"Add at least one widget to the layout, or remove it from disabled_widgets.")
	}
	s.relayout()
	return s, nil
}

// Observe records the latest snapshot the dashboard ingested.
func (s *State) Observe(snap *metrics.Snapshot) {
	if snap != nil {
		s.snap = snap
	}
}

// Snapshot returns the latest observed snapshot, or nil.
func (s *State) Snapshot() *metrics.Snapshot {
	return s.snap
}

// Widgets returns copies of every widget in layout order.
func (s *State) Widgets() []Widget {
	out := make([]Widget, len(s.widgets))
	for i, w := range s.widgets {
		out[i] = *w
	}
	return out
}

// Widget returns a copy of the widget with the given ID.
func (s *State) Widget(id int) (Widget, bool) {
	if id < 0 || id >= len(s.widgets) {
		return Widget{}, false
	}
	return *s.widgets[id], true
}

// Order returns widget IDs in focus traversal order.
func (s *State) Order() []int {
	return slices.Clone(s.order)
}

// Focused returns the focused widget ID.
func (s *State) Focused() (int, bool) {
	return s.focus, s.focus != noFocus
}

// Expanded returns the expanded widget ID.
func (s *State) Expanded() (int, bool) {
	return s.expanded, s.expanded != noFocus
}

// Mode returns the interaction state of a widget.
func (s *State) Mode(id int) Mode {
	if id != s.focus || id < 0 || id >= len(s.widgets) {
		return ModeUnfocused
	}
	w := s.widgets[id]
	switch {
	case w.Kind == KindProc && s.searching:
		return ModeSearching
	case w.Kind.Graph() && w.Window != s.opts.DefaultWindow:
		return ModeZoomed
	}
	return ModeFocused
}

// Query returns the current process query.
func (s *State) Query() proctable.Query {
	return s.query
}

// Searching reports whether the process search is being edited.
func (s *State) Searching() bool {
	return s.searching
}

// Help reports whether the help overlay is shown.
func (s *State) Help() bool {
	return s.help
}

// Frozen reports whether new snapshots should be held back.
func (s *State) Frozen() bool {
	return s.frozen
}

// Size returns the terminal size last reported.
func (s *State) Size() (int, int) {
	return s.width, s.height
}

func (s *State) focused() *Widget {
	if s.focus == noFocus {
		return nil
	}
	return s.widgets[s.focus]
}

// relayout recomputes geometry for the current size. Focus is stored by
// widget ID, so it survives any change of coordinates.
func (s *State) relayout() {
	area := body(s.width, s.height)
	rects := layout(s.opts.Rows, area)
	for _, w := range s.widgets {
		w.base = rects[w.Row][w.Col]
		w.Rect = w.base
		if s.expanded != noFocus {
			w.Rect = Rect{}
			if w.ID == s.expanded {
				w.Rect = area
			}
		}
	}

	s.order = s.order[:0]
	for _, w := range s.widgets {
		s.order = append(s.order, w.ID)
	}
	slices.SortStableFunc(s.order, func(a, b int) int {
		ra, rb := s.widgets[a].base, s.widgets[b].base
		if ra.Y != rb.Y {
			return ra.Y - rb.Y
		}
		return ra.X - rb.X
	})

	for _, w := range s.widgets {
		if w.Kind.Table() {
			s.settle(w)
		}
	}
}

package dashboard

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Thresholds for metric severity levels.
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

// Theme is a color palette. Colors are lipgloss.TerminalColor so the mono
// theme can use lipgloss.NoColor throughout.
type Theme struct {
	Name string

	Surface lipgloss.TerminalColor
	Border  lipgloss.TerminalColor
	// BorderFocus marks the focused widget.
	BorderFocus lipgloss.TerminalColor
	// BorderError marks a process table with an invalid search.
	BorderError lipgloss.TerminalColor

	Text      lipgloss.TerminalColor
	TextMuted lipgloss.TerminalColor
	Accent    lipgloss.TerminalColor
	Graph     lipgloss.TerminalColor
	GraphAlt  lipgloss.TerminalColor

	Healthy  lipgloss.TerminalColor
	Warning  lipgloss.TerminalColor
	Critical lipgloss.TerminalColor

	SelectFg lipgloss.TerminalColor
	SelectBg lipgloss.TerminalColor
}

// DefaultTheme is the neon palette.
var DefaultTheme = Theme{
	Name:        "default",
	Surface:     lipgloss.Color("#12121A"),
	Border:      lipgloss.Color("#2A2A4A"),
	BorderFocus: lipgloss.Color("#FF2E97"),
	BorderError: lipgloss.Color("#FF0055"),
	Text:        lipgloss.Color("#FFFFFF"),
	TextMuted:   lipgloss.Color("#6B6B8D"),
	Accent:      lipgloss.Color("#FF2E97"),
	Graph:       lipgloss.Color("#00FFFF"),
	GraphAlt:    lipgloss.Color("#BF40FF"),
	Healthy:     lipgloss.Color("#39FF14"),
	Warning:     lipgloss.Color("#FFAA00"),
	Critical:    lipgloss.Color("#FF0055"),
	SelectFg:    lipgloss.Color("#0A0A0F"),
	SelectBg:    lipgloss.Color("#00FFFF"),
}

// GruvboxTheme uses the gruvbox dark palette.
var GruvboxTheme = Theme{
	Name:        "gruvbox",
	Surface:     lipgloss.Color("#282828"),
	Border:      lipgloss.Color("#504945"),
	BorderFocus: lipgloss.Color("#FABD2F"),
	BorderError: lipgloss.Color("#FB4934"),
	Text:        lipgloss.Color("#EBDBB2"),
	TextMuted:   lipgloss.Color("#928374"),
	Accent:      lipgloss.Color("#FE8019"),
	Graph:       lipgloss.Color("#83A598"),
	GraphAlt:    lipgloss.Color("#D3869B"),
	Healthy:     lipgloss.Color("#B8BB26"),
	Warning:     lipgloss.Color("#FABD2F"),
	Critical:    lipgloss.Color("#FB4934"),
	SelectFg:    lipgloss.Color("#282828"),
	SelectBg:    lipgloss.Color("#83A598"),
}

// MonoTheme draws without color. Focus and selection rely on reverse video.
var MonoTheme = Theme{
	Name:        "mono",
	Surface:     lipgloss.NoColor{},
	Border:      lipgloss.NoColor{},
	BorderFocus: lipgloss.NoColor{},
	BorderError: lipgloss.NoColor{},
	Text:        lipgloss.NoColor{},
	TextMuted:   lipgloss.NoColor{},
	Accent:      lipgloss.NoColor{},
	Graph:       lipgloss.NoColor{},
	GraphAlt:    lipgloss.NoColor{},
	Healthy:     lipgloss.NoColor{},
	Warning:     lipgloss.NoColor{},
	Critical:    lipgloss.NoColor{},
	SelectFg:    lipgloss.NoColor{},
	SelectBg:    lipgloss.NoColor{},
}

// ResolveTheme returns the palette for a configured theme name. "auto"
// picks mono on terminals without color and gruvbox on light backgrounds.
func ResolveTheme(name string, profile termenv.Profile, darkBackground bool) Theme {
	switch name {
	case "gruvbox":
		return GruvboxTheme
	case "mono":
		return MonoTheme
	case "auto":
		switch {
		case profile == termenv.Ascii:
			return MonoTheme
		case !darkBackground:
			return GruvboxTheme
		}
		return DefaultTheme
	}
	return DefaultTheme
}

// DetectTheme resolves name against the terminal on stdout.
func DetectTheme(name string) Theme {
	if name != "auto" {
		return ResolveTheme(name, termenv.TrueColor, true)
	}
	out := termenv.NewOutput(os.Stdout)
	return ResolveTheme(name, out.EnvColorProfile(), out.HasDarkBackground())
}

// mono reports whether the theme has no colors to distinguish state.
func (t Theme) mono() bool {
	return t.Name == MonoTheme.Name
}

// MetricColor returns the severity color for a percentage.
func (t Theme) MetricColor(percent float64) lipgloss.TerminalColor {
	switch {
	case percent >= CriticalThreshold:
		return t.Critical
	case percent >= WarningThreshold:
		return t.Warning
	default:
		return t.Healthy
	}
}

// MetricStyle returns a foreground style for a percentage.
func (t Theme) MetricStyle(percent float64) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.MetricColor(percent))
}

func (t Theme) fg(c lipgloss.TerminalColor) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func (t Theme) muted() lipgloss.Style {
	return t.fg(t.TextMuted)
}

func (t Theme) title() lipgloss.Style {
	return t.fg(t.Accent).Bold(true)
}

func (t Theme) header() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(t.Text).
		Background(t.Surface).
		Bold(true)
}

// selected styles the selected table row. Unfocused tables keep the
// selection visible but dim.
func (t Theme) selected(focused bool) lipgloss.Style {
	if t.mono() {
		return lipgloss.NewStyle().Reverse(focused).Underline(!focused)
	}
	if !focused {
		return lipgloss.NewStyle().Foreground(t.Text).Background(t.Border)
	}
	return lipgloss.NewStyle().Foreground(t.SelectFg).Background(t.SelectBg).Bold(true)
}

// GaugeBar renders a horizontal bar colored by severity.
func (t Theme) GaugeBar(width int, percent float64) string {
	return t.gauge(width, percent, t.MetricColor(percent))
}

func (t Theme) gauge(width int, percent float64, color lipgloss.TerminalColor) string {
	if width < 1 {
		width = 1
	}
	percent = max(0, min(percent, 100))
	filled := min(int(percent/100*float64(width)), width)
	return t.fg(color).Render(strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled))
}

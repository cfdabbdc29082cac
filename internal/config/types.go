package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Widget kinds accepted in layout rows and disabled_widgets.
const (
	WidgetCPU     = "cpu"
	WidgetMem     = "mem"
	WidgetNet     = "net"
	WidgetDisk    = "disk"
	WidgetTemp    = "temp"
	WidgetBattery = "battery"
	WidgetProc    = "proc"
)

// WidgetKinds lists every widget kind in help order.
var WidgetKinds = []string{WidgetCPU, WidgetMem, WidgetNet, WidgetDisk, WidgetTemp, WidgetBattery, WidgetProc}

// Themes lists the accepted color themes. "auto" picks one from the
// terminal's color profile.
var Themes = []string{"default", "gruvbox", "mono", "auto"}

// Config is the resolved configuration. It is read once at startup and
// never re-read while the dashboard runs.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// Interval is the time between harvest cycles.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	Retention RetentionConfig `yaml:"retention" mapstructure:"retention"`
	Graph     GraphConfig     `yaml:"graph" mapstructure:"graph"`

	// Layout is a list of rows, top to bottom. Each entry is a widget kind
	// with an optional width weight: "mem:2".
	Layout          [][]string `yaml:"layout" mapstructure:"layout"`
	DisabledWidgets []string   `yaml:"disabled_widgets" mapstructure:"disabled_widgets"`

	Processes ProcessConfig `yaml:"processes" mapstructure:"processes"`
	Probes    ProbeConfig   `yaml:"probes" mapstructure:"probes"`

	// Theme is one of Themes.
	Theme string `yaml:"theme" mapstructure:"theme"`
}

// RetentionConfig bounds the history kept per metric.
type RetentionConfig struct {
	// MaxAge drops points older than this. Zero keeps points until
	// MaxPoints pushes them out.
	MaxAge time.Duration `yaml:"max_age" mapstructure:"max_age"`

	// MaxPoints caps each series. Zero sizes series to the widest graph
	// window at the configured interval.
	MaxPoints int `yaml:"max_points" mapstructure:"max_points"`

	// Metrics overrides the limits for one metric family ("cpu", "net", ...).
	Metrics map[string]RetentionOverride `yaml:"metrics,omitempty" mapstructure:"metrics"`
}

// RetentionOverride replaces the default limits for one family.
type RetentionOverride struct {
	MaxAge    time.Duration `yaml:"max_age" mapstructure:"max_age"`
	MaxPoints int           `yaml:"max_points" mapstructure:"max_points"`
}

// GraphConfig controls the time window graphs show and how far zoom goes.
type GraphConfig struct {
	DefaultWindow time.Duration `yaml:"default_window" mapstructure:"default_window"`
	MinWindow     time.Duration `yaml:"min_window" mapstructure:"min_window"`
	MaxWindow     time.Duration `yaml:"max_window" mapstructure:"max_window"`
}

// ProcessConfig sets the initial state of the process table.
type ProcessConfig struct {
	// Sort is one of cpu, mem, pid, name, read, write.
	Sort       string `yaml:"sort" mapstructure:"sort"`
	Descending bool   `yaml:"descending" mapstructure:"descending"`
	Tree       bool   `yaml:"tree" mapstructure:"tree"`
	Group      bool   `yaml:"group" mapstructure:"group"`

	// CPUPerCore shows CPU% relative to one core, so a process using
	// two full cores reads 200%.
	CPUPerCore bool `yaml:"cpu_per_core" mapstructure:"cpu_per_core"`
}

// ProbeConfig tunes how failing metrics are handled.
type ProbeConfig struct {
	// DegradeAfter is how many consecutive failures mark a metric degraded.
	DegradeAfter int `yaml:"degrade_after" mapstructure:"degrade_after"`

	// MaxBackoff caps how many cycles a degraded metric is skipped between
	// retries.
	MaxBackoff int `yaml:"max_backoff" mapstructure:"max_backoff"`

	// Disabled metrics are never probed (cpu, memory, network, disks,
	// temperatures, battery, processes, host).
	Disabled []string `yaml:"disabled" mapstructure:"disabled"`
}

// DefaultLayout is the layout used when none is configured.
func DefaultLayout() [][]string {
	return [][]string{
		{WidgetCPU},
		{WidgetMem + ":2", WidgetBattery + ":1"},
		{WidgetNet, WidgetTemp},
		{WidgetDisk + ":1", WidgetProc + ":2"},
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:  CurrentConfigVersion,
		Interval: time.Second,
		Retention: RetentionConfig{
			MaxAge: 10 * time.Minute,
		},
		Graph: GraphConfig{
			DefaultWindow: time.Minute,
			MinWindow:     10 * time.Second,
			MaxWindow:     10 * time.Minute,
		},
		Layout:          DefaultLayout(),
		DisabledWidgets: []string{},
		Processes: ProcessConfig{
			Sort:       "cpu",
			Descending: true,
		},
		Probes: ProbeConfig{
			DegradeAfter: 3,
			MaxBackoff:   32,
			Disabled:     []string{},
		},
		Theme: "default",
	}
}

// WidgetEnabled reports whether kind is not listed in DisabledWidgets.
func (c *Config) WidgetEnabled(kind string) bool {
	for _, d := range c.DisabledWidgets {
		if d == kind {
			return false
		}
	}
	return true
}

package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rileyhilliard/rrtop/internal/errors"
	"github.com/rileyhilliard/rrtop/internal/metrics"
	"github.com/rileyhilliard/rrtop/internal/proctable"
)

// Interval bounds. Faster polling mostly measures the probes themselves.
const (
	MinInterval = 100 * time.Millisecond
	MaxInterval = time.Minute
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try running the command again.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but rrtop only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Grab the latest rrtop, or lower the version field.")
	}

	checks := []struct {
		section string
		check   func(*Config) error
	}{
		{"interval", validateInterval},
		{"retention", validateRetention},
		{"graph", validateGraph},
		{"layout", validateLayout},
		{"processes", validateProcesses},
		{"probes", validateProbes},
		{"theme", validateTheme},
	}
	for _, c := range checks {
		if err := c.check(cfg); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
				fmt.Sprintf("Check the '%s' setting in your config file or RRTOP_* environment.", c.section))
		}
	}
	return nil
}

func validateInterval(cfg *Config) error {
	if cfg.Interval < MinInterval || cfg.Interval > MaxInterval {
		return fmt.Errorf("interval %s is out of range - use something between %s and %s, like '1s' or '2s'",
			cfg.Interval, MinInterval, MaxInterval)
	}
	return nil
}

func validateRetention(cfg *Config) error {
	if err := validateLimits("retention", cfg.Retention.MaxAge, cfg.Retention.MaxPoints); err != nil {
		return err
	}
	for family, o := range cfg.Retention.Metrics {
		if !slices.Contains(metrics.Families(), family) {
			return fmt.Errorf("retention.metrics has unknown family '%s' - pick one of %s",
				family, strings.Join(metrics.Families(), ", "))
		}
		if err := validateLimits("retention.metrics."+family, o.MaxAge, o.MaxPoints); err != nil {
			return err
		}
	}
	return nil
}

func validateLimits(where string, maxAge time.Duration, maxPoints int) error {
	if maxAge < 0 {
		return fmt.Errorf("%s.max_age can't be negative", where)
	}
	if maxPoints < 0 {
		return fmt.Errorf("%s.max_points can't be negative", where)
	}
	return nil
}

func validateGraph(cfg *Config) error {
	g := cfg.Graph
	if g.MinWindow <= 0 {
		return fmt.Errorf("graph.min_window must be positive")
	}
	if g.MinWindow > g.MaxWindow {
		return fmt.Errorf("graph.min_window (%s) is larger than graph.max_window (%s)", g.MinWindow, g.MaxWindow)
	}
	if g.DefaultWindow < g.MinWindow || g.DefaultWindow > g.MaxWindow {
		return fmt.Errorf("graph.default_window (%s) must be between min_window (%s) and max_window (%s)",
			g.DefaultWindow, g.MinWindow, g.MaxWindow)
	}
	if cfg.Retention.MaxAge > 0 && cfg.Retention.MaxAge < g.MaxWindow {
		return fmt.Errorf("retention.max_age (%s) is shorter than graph.max_window (%s), so zoomed out graphs would be cut off",
			cfg.Retention.MaxAge, g.MaxWindow)
	}
	return nil
}

func validateLayout(cfg *Config) error {
	if len(cfg.Layout) == 0 {
		return fmt.Errorf("layout is empty - add at least one row like [cpu]")
	}
	seen := make(map[string]bool)
	for i, row := range cfg.Layout {
		if len(row) == 0 {
			return fmt.Errorf("layout row %d is empty", i+1)
		}
		for _, entry := range row {
			spec, err := ParseWidget(entry)
			if err != nil {
				return err
			}
			if seen[spec.Kind] {
				return fmt.Errorf("widget '%s' appears more than once in the layout", spec.Kind)
			}
			seen[spec.Kind] = true
		}
	}
	for _, d := range cfg.DisabledWidgets {
		if !slices.Contains(WidgetKinds, d) {
			return fmt.Errorf("disabled_widgets has unknown widget '%s' - pick one of %s", d, strings.Join(WidgetKinds, ", "))
		}
	}

	rows, err := cfg.Rows()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("every widget in the layout is disabled")
	}
	return nil
}

func validateProcesses(cfg *Config) error {
	if _, ok := proctable.ParseSortKey(cfg.Processes.Sort); !ok {
		names := make([]string, 0, len(proctable.SortKeys()))
		for _, k := range proctable.SortKeys() {
			names = append(names, k.String())
		}
		return fmt.Errorf("processes.sort '%s' isn't a column - pick one of %s", cfg.Processes.Sort, strings.Join(names, ", "))
	}
	return nil
}

func validateProbes(cfg *Config) error {
	if cfg.Probes.DegradeAfter < 1 {
		return fmt.Errorf("probes.degrade_after must be at least 1")
	}
	if cfg.Probes.MaxBackoff < 1 {
		return fmt.Errorf("probes.max_backoff must be at least 1")
	}
	for _, name := range cfg.Probes.Disabled {
		if _, ok := metrics.ParseMetric(name); !ok {
			return fmt.Errorf("probes.disabled has unknown metric '%s'", name)
		}
	}
	return nil
}

func validateTheme(cfg *Config) error {
	if !slices.Contains(Themes, cfg.Theme) {
		return fmt.Errorf("theme '%s' isn't available - pick one of %s", cfg.Theme, strings.Join(Themes, ", "))
	}
	return nil
}

// DisabledMetrics resolves probes.disabled. Call after Validate.
func (c *Config) DisabledMetrics() []metrics.Metric {
	var out []metrics.Metric
	for _, name := range c.Probes.Disabled {
		if m, ok := metrics.ParseMetric(name); ok {
			out = append(out, m)
		}
	}
	return out
}

// SortKey resolves processes.sort, falling back to CPU.
func (c *Config) SortKey() proctable.SortKey {
	k, _ := proctable.ParseSortKey(c.Processes.Sort)
	return k
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/rrtop/internal/errors"
	"github.com/rileyhilliard/rrtop/internal/metrics"
	"github.com/rileyhilliard/rrtop/internal/proctable"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, time.Second, cfg.Interval)
	assert.Equal(t, 10*time.Minute, cfg.Retention.MaxAge)
	assert.Zero(t, cfg.Retention.MaxPoints)
	assert.Equal(t, time.Minute, cfg.Graph.DefaultWindow)
	assert.Equal(t, "cpu", cfg.Processes.Sort)
	assert.True(t, cfg.Processes.Descending)
	assert.Equal(t, 3, cfg.Probes.DegradeAfter)
	assert.Equal(t, 32, cfg.Probes.MaxBackoff)
	assert.Equal(t, "default", cfg.Theme)
	assert.NoError(t, Validate(cfg))

	rows, err := cfg.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []WidgetSpec{{WidgetCPU, 1}}, rows[0])
	assert.Equal(t, []WidgetSpec{{WidgetMem, 2}, {WidgetBattery, 1}}, rows[1])
	assert.Equal(t, []WidgetSpec{{WidgetNet, 1}, {WidgetTemp, 1}}, rows[2])
	assert.Equal(t, []WidgetSpec{{WidgetDisk, 1}, {WidgetProc, 2}}, rows[3])
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".rrtop.yaml")

	content := `
version: 1
interval: 2s
retention:
  max_age: 30m
  max_points: 900
  metrics:
    cpu:
      max_points: 120
graph:
  default_window: 2m
  min_window: 30s
  max_window: 30m
layout:
  - [cpu, "mem:3"]
  - ["proc:2"]
disabled_widgets: [Battery]
processes:
  sort: MEM
  descending: false
  tree: true
  cpu_per_core: true
probes:
  degrade_after: 5
  disabled: [temperatures]
theme: Gruvbox
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	assert.Equal(t, 2*time.Second, cfg.Interval)
	assert.Equal(t, 30*time.Minute, cfg.Retention.MaxAge)
	assert.Equal(t, 900, cfg.Retention.MaxPoints)
	assert.Equal(t, 120, cfg.Retention.Metrics["cpu"].MaxPoints)
	assert.Equal(t, 2*time.Minute, cfg.Graph.DefaultWindow)
	assert.Equal(t, [][]string{{"cpu", "mem:3"}, {"proc:2"}}, cfg.Layout)
	assert.Equal(t, []string{"battery"}, cfg.DisabledWidgets)
	assert.Equal(t, "mem", cfg.Processes.Sort)
	assert.Equal(t, proctable.SortMem, cfg.SortKey())
	assert.False(t, cfg.Processes.Descending)
	assert.True(t, cfg.Processes.Tree)
	assert.True(t, cfg.Processes.CPUPerCore)
	assert.Equal(t, 5, cfg.Probes.DegradeAfter)
	assert.Equal(t, 32, cfg.Probes.MaxBackoff, "unset keys keep defaults")
	assert.Equal(t, []metrics.Metric{metrics.MetricTemperatures}, cfg.DisabledMetrics())
	assert.Equal(t, "gruvbox", cfg.Theme)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Interval, cfg.Interval)
	assert.Equal(t, DefaultLayout(), cfg.Layout)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RRTOP_INTERVAL", "3s")
	t.Setenv("RRTOP_PROCESSES_SORT", "Name")
	t.Setenv("RRTOP_THEME", "mono")
	t.Setenv("RRTOP_PROBES_DEGRADE_AFTER", "7")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Interval)
	assert.Equal(t, "name", cfg.Processes.Sort)
	assert.Equal(t, "mono", cfg.Theme)
	assert.Equal(t, 7, cfg.Probes.DegradeAfter)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("interval: [1s\n"), 0644))
	_, err = Load(bad)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFind(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	work := t.TempDir()
	t.Chdir(work)

	path, err := Find("")
	require.NoError(t, err)
	assert.Empty(t, path, "nothing to find yet")

	global := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(global), 0755))
	require.NoError(t, os.WriteFile(global, []byte("theme: mono\n"), 0644))
	path, err = Find("")
	require.NoError(t, err)
	assert.Equal(t, global, path)

	local := filepath.Join(work, ConfigFileName)
	require.NoError(t, os.WriteFile(local, []byte("theme: gruvbox\n"), 0644))
	path, err = Find("")
	require.NoError(t, err)
	assert.Equal(t, local, path, "local config wins over global")

	path, err = Find(global)
	require.NoError(t, err)
	assert.Equal(t, global, path, "explicit path wins")

	_, err = Find(filepath.Join(work, "nope.yaml"))
	assert.True(t, errors.IsCode(err, errors.ErrConfig))

	cfg, from, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, local, from)
	assert.Equal(t, "gruvbox", cfg.Theme)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"future version", func(c *Config) { c.Version = 99 }, "from the future"},
		{"interval too short", func(c *Config) { c.Interval = time.Millisecond }, "interval"},
		{"interval too long", func(c *Config) { c.Interval = time.Hour }, "interval"},
		{"negative max age", func(c *Config) { c.Retention.MaxAge = -time.Second }, "max_age"},
		{"negative max points", func(c *Config) { c.Retention.MaxPoints = -1 }, "max_points"},
		{"unknown retention family", func(c *Config) {
			c.Retention.Metrics = map[string]RetentionOverride{"gpu": {MaxPoints: 10}}
		}, "unknown family 'gpu'"},
		{"bad override", func(c *Config) {
			c.Retention.Metrics = map[string]RetentionOverride{"net": {MaxPoints: -4}}
		}, "retention.metrics.net.max_points"},
		{"min window zero", func(c *Config) { c.Graph.MinWindow = 0 }, "min_window must be positive"},
		{"min above max", func(c *Config) { c.Graph.MinWindow = time.Hour }, "larger than"},
		{"default outside range", func(c *Config) { c.Graph.DefaultWindow = time.Second }, "default_window"},
		{"retention shorter than graph", func(c *Config) { c.Retention.MaxAge = time.Minute }, "cut off"},
		{"no age limit is fine", func(c *Config) { c.Retention.MaxAge = 0 }, ""},
		{"empty layout", func(c *Config) { c.Layout = nil }, "layout is empty"},
		{"empty row", func(c *Config) { c.Layout = [][]string{{"cpu"}, {}} }, "row 2 is empty"},
		{"unknown widget", func(c *Config) { c.Layout = [][]string{{"gpu"}} }, "unknown widget 'gpu'"},
		{"duplicate widget", func(c *Config) { c.Layout = [][]string{{"cpu"}, {"cpu:2"}} }, "more than once"},
		{"bad weight", func(c *Config) { c.Layout = [][]string{{"cpu:0"}} }, "weight"},
		{"unknown disabled widget", func(c *Config) { c.DisabledWidgets = []string{"gpu"} }, "disabled_widgets"},
		{"all disabled", func(c *Config) {
			c.Layout = [][]string{{"cpu"}}
			c.DisabledWidgets = []string{"cpu"}
		}, "every widget"},
		{"bad sort", func(c *Config) { c.Processes.Sort = "gpu" }, "processes.sort"},
		{"degrade after zero", func(c *Config) { c.Probes.DegradeAfter = 0 }, "degrade_after"},
		{"max backoff zero", func(c *Config) { c.Probes.MaxBackoff = 0 }, "max_backoff"},
		{"unknown probe", func(c *Config) { c.Probes.Disabled = []string{"gpu"} }, "unknown metric 'gpu'"},
		{"bad theme", func(c *Config) { c.Theme = "neon" }, "theme 'neon'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	assert.Error(t, Validate(nil))
}

func TestParseWidget(t *testing.T) {
	tests := []struct {
		in      string
		want    WidgetSpec
		wantErr bool
	}{
		{"cpu", WidgetSpec{"cpu", 1}, false},
		{" PROC:3 ", WidgetSpec{"proc", 3}, false},
		{"mem:12", WidgetSpec{"mem", 12}, false},
		{"mem:13", WidgetSpec{}, true},
		{"mem:x", WidgetSpec{}, true},
		{"gpu", WidgetSpec{}, true},
		{"", WidgetSpec{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseWidget(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRowsDropDisabledWidgets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DisabledWidgets = []string{WidgetCPU, WidgetBattery}

	rows, err := cfg.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 3, "the cpu row disappears")
	assert.Equal(t, []WidgetSpec{{WidgetMem, 2}}, rows[0])
	assert.False(t, cfg.WidgetEnabled(WidgetCPU))
	assert.True(t, cfg.WidgetEnabled(WidgetProc))
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Interval = 1500 * time.Millisecond
	cfg.Theme = "gruvbox"
	cfg.Processes.Tree = true

	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "interval: 1.5s")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Interval, loaded.Interval)
	assert.Equal(t, cfg.Theme, loaded.Theme)
	assert.Equal(t, cfg.Layout, loaded.Layout)
	assert.Equal(t, cfg.Graph, loaded.Graph)
	assert.True(t, loaded.Processes.Tree)
	assert.NoError(t, Validate(loaded))
}

package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/rrtop/internal/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the config file looked up in the current directory.
	ConfigFileName = ".rrtop.yaml"
	// GlobalConfigDir is the directory for the per-user config.
	GlobalConfigDir = ".config/rrtop"
	// GlobalConfigFile is the per-user config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. RRTOP_INTERVAL=2s.
	EnvPrefix = "RRTOP"
)

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .rrtop.yaml in current directory
// 3. ~/.config/rrtop/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct, or run 'rrtop config init' to create one")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, ConfigFileName)
		if _, err := os.Stat(local); err == nil {
			return local, nil
		}
	}

	if global := GlobalPath(); global != "" {
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// GlobalPath returns ~/.config/rrtop/config.yaml, or "" without a home dir.
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}

// Load reads config from path with defaults and RRTOP_* environment
// overrides merged in. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Config file not found",
					"Run 'rrtop config init' to create a config file, or specify one with --config")
			}
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the file exists and is valid YAML")
		}
	}

	return parseConfig(v, path)
}

// Resolve finds and loads the config, returning the path it came from.
func Resolve(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// newViper returns a viper instance with every default registered, so
// AutomaticEnv can override any key.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("version", d.Version)
	v.SetDefault("interval", d.Interval)
	v.SetDefault("retention.max_age", d.Retention.MaxAge)
	v.SetDefault("retention.max_points", d.Retention.MaxPoints)
	v.SetDefault("graph.default_window", d.Graph.DefaultWindow)
	v.SetDefault("graph.min_window", d.Graph.MinWindow)
	v.SetDefault("graph.max_window", d.Graph.MaxWindow)
	v.SetDefault("layout", d.Layout)
	v.SetDefault("disabled_widgets", d.DisabledWidgets)
	v.SetDefault("processes.sort", d.Processes.Sort)
	v.SetDefault("processes.descending", d.Processes.Descending)
	v.SetDefault("processes.tree", d.Processes.Tree)
	v.SetDefault("processes.group", d.Processes.Group)
	v.SetDefault("processes.cpu_per_core", d.Processes.CPUPerCore)
	v.SetDefault("probes.degrade_after", d.Probes.DegradeAfter)
	v.SetDefault("probes.max_backoff", d.Probes.MaxBackoff)
	v.SetDefault("probes.disabled", d.Probes.Disabled)
	v.SetDefault("theme", d.Theme)
	return v
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		where := "your environment overrides"
		if path != "" {
			where = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+where)
	}

	normalize(cfg)
	return cfg, nil
}

// normalize lowercases the free-form names so validation and lookups can
// compare them directly.
func normalize(cfg *Config) {
	cfg.Theme = strings.ToLower(strings.TrimSpace(cfg.Theme))
	cfg.Processes.Sort = strings.ToLower(strings.TrimSpace(cfg.Processes.Sort))
	for i, w := range cfg.DisabledWidgets {
		cfg.DisabledWidgets[i] = strings.ToLower(strings.TrimSpace(w))
	}
	for i, m := range cfg.Probes.Disabled {
		cfg.Probes.Disabled[i] = strings.ToLower(strings.TrimSpace(m))
	}
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Save writes cfg to path, creating parent directories as needed.
func Save(path string, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot create config directory",
			"Check permissions on "+filepath.Dir(path))
	}

	content := append([]byte("# rrtop configuration. See 'rrtop config show' for the resolved values.\n"), data...)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file",
			"Check permissions on "+path)
	}
	return nil
}

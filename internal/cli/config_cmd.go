package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/rrtop/internal/config"
	"github.com/rileyhilliard/rrtop/internal/errors"
	"github.com/rileyhilliard/rrtop/internal/proctable"
)

var (
	successMark = lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF9F")).Render("✓")
	pathStyle   = lipgloss.NewStyle().Bold(true)
)

// InitOptions holds options for config init.
type InitOptions struct {
	// Path is where the file is written. Empty means ./.rrtop.yaml.
	Path           string
	Overwrite      bool
	NonInteractive bool
	Out            io.Writer
}

// initAnswers are the values the init form asks for.
type initAnswers struct {
	Interval string
	Theme    string
	Sort     string
	Tree     bool
}

// InitConfig writes a new config file, asking for the common settings
// unless running non-interactively.
func InitConfig(opts InitOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	path := opts.Path
	if path == "" {
		path = filepath.Join(".", config.ConfigFileName)
	}

	if _, err := os.Stat(path); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				"Config file already exists: "+path,
				"Use --force to overwrite")
		}
		var overwrite bool
		form := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("'%s' already exists. Overwrite?", path)).
				Value(&overwrite),
		))
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(opts.Out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	if !opts.NonInteractive {
		answers := initAnswers{
			Interval: cfg.Interval.String(),
			Theme:    cfg.Theme,
			Sort:     cfg.Processes.Sort,
			Tree:     cfg.Processes.Tree,
		}
		if err := initForm(&answers).Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Check terminal compatibility or use --non-interactive")
		}
		if err := answers.apply(cfg); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(opts.Out, "%s Created %s\n", successMark, pathStyle.Render(path))
	return nil
}

// initForm asks for the settings people change most.
func initForm(a *initAnswers) *huh.Form {
	sorts := make([]string, 0, len(proctable.SortKeys()))
	for _, k := range proctable.SortKeys() {
		sorts = append(sorts, k.String())
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Sample interval").
				Description("How often to poll, e.g. 1s or 500ms").
				Value(&a.Interval).
				Validate(validateInterval),
			huh.NewSelect[string]().
				Title("Theme").
				Options(huh.NewOptions(config.Themes...)...).
				Value(&a.Theme),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Sort processes by").
				Options(huh.NewOptions(sorts...)...).
				Value(&a.Sort),
			huh.NewConfirm().
				Title("Start the process table as a tree?").
				Value(&a.Tree),
		),
	)
}

func validateInterval(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("'%s' isn't a duration - try 1s or 500ms", s)
	}
	if d < config.MinInterval || d > config.MaxInterval {
		return fmt.Errorf("use something between %s and %s", config.MinInterval, config.MaxInterval)
	}
	return nil
}

func (a initAnswers) apply(cfg *config.Config) error {
	if err := validateInterval(a.Interval); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "")
	}
	cfg.Interval, _ = time.ParseDuration(a.Interval)
	cfg.Theme = a.Theme
	cfg.Processes.Sort = a.Sort
	cfg.Processes.Tree = a.Tree
	return nil
}

// showConfig prints the resolved config and where it came from.
func showConfig(out io.Writer) error {
	cfg, path, err := config.Resolve(cfgFile)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
	}
	source := path
	if source == "" {
		source = "defaults"
	}
	fmt.Fprintf(out, "# source: %s\n%s", source, data)
	return nil
}

// configPath prints the config file that would be used.
func configPath(out io.Writer) error {
	path, err := config.Find(cfgFile)
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Fprintf(out, "no config file found; defaults apply (create one with 'rrtop config init')\n")
		return nil
	}
	fmt.Fprintln(out, path)
	return nil
}

var (
	initForce          bool
	initGlobal         bool
	initNonInteractive bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the rrtop config file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved config",
	Long: `Print the config rrtop would run with: the file found by the usual search
with RRTOP_* environment overrides and defaults merged in.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return showConfig(cmd.OutOrStdout())
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configPath(cmd.OutOrStdout())
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config for errors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := config.Resolve(cfgFile)
		if err != nil {
			return err
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}
		if path == "" {
			path = "defaults"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s is valid\n", successMark, path)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file",
	Long: `Create a config file with the common settings filled in.

Examples:
  rrtop config init
  rrtop config init --global
  rrtop config init --non-interactive --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := InitOptions{
			Overwrite:      initForce,
			NonInteractive: initNonInteractive,
			Out:            cmd.OutOrStdout(),
		}
		if initGlobal {
			opts.Path = config.GlobalPath()
			if opts.Path == "" {
				return errors.New(errors.ErrConfig,
					"Cannot find your home directory",
					"Set HOME or write a local config without --global")
			}
		}
		return InitConfig(opts)
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config")
	configInitCmd.Flags().BoolVar(&initGlobal, "global", false, "write ~/.config/rrtop/config.yaml instead of ./.rrtop.yaml")
	configInitCmd.Flags().BoolVar(&initNonInteractive, "non-interactive", false, "skip prompts and write the defaults")

	configCmd.AddCommand(configShowCmd, configPathCmd, configValidateCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

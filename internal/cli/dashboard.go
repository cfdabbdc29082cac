package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/rrtop/internal/config"
	"github.com/rileyhilliard/rrtop/internal/dashboard"
	"github.com/rileyhilliard/rrtop/internal/errors"
	"github.com/rileyhilliard/rrtop/internal/probe"
)

// LogFileEnv names a log file when --log-file is not given.
const LogFileEnv = "RRTOP_LOG_FILE"

// dashboardFlags are the command line overrides for the dashboard.
type dashboardFlags struct {
	Interval string
	Sort     string
	Theme    string
	Tree     bool
	Group    bool
	LogFile  string
}

// applyFlags overrides cfg with the flags the user set.
func applyFlags(cmd *cobra.Command, cfg *config.Config, f dashboardFlags) error {
	if f.Interval != "" {
		d, err := time.ParseDuration(f.Interval)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("'%s' doesn't look like a valid interval", f.Interval),
				"Try something like 1s, 2s, or 500ms.")
		}
		cfg.Interval = d
	}
	if f.Sort != "" {
		cfg.Processes.Sort = strings.ToLower(f.Sort)
	}
	if f.Theme != "" {
		cfg.Theme = strings.ToLower(f.Theme)
	}
	if cmd.Flags().Changed("tree") {
		cfg.Processes.Tree = f.Tree
	}
	if cmd.Flags().Changed("group") {
		cfg.Processes.Group = f.Group
	}
	return nil
}

// loadConfig resolves the config file and validates it with the flag
// overrides applied.
func loadConfig(cmd *cobra.Command, f dashboardFlags) (*config.Config, error) {
	cfg, _, err := config.Resolve(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, cfg, f); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// dashboardCommand loads the config and runs the dashboard until the user
// quits or the process is signalled.
func dashboardCommand(cmd *cobra.Command, f dashboardFlags) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}

	// The dashboard owns the terminal: logs go to a file or nowhere.
	if f.LogFile == "" {
		f.LogFile = os.Getenv(LogFileEnv)
	}
	if f.LogFile != "" {
		file, err := tea.LogToFile(f.LogFile, "rrtop")
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot open log file: "+f.LogFile,
				"Check the directory exists and is writable")
		}
		defer file.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return dashboard.Run(ctx, cfg, probe.New(nil), nil)
}

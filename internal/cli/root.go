package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/rrtop/internal/logger"
)

// Global flags
var (
	cfgFile   string
	debugFlag bool
)

// Dashboard flags. Unset flags leave the configured value alone.
var (
	intervalFlag string
	sortFlag     string
	themeFlag    string
	treeFlag     bool
	groupFlag    bool
	logFileFlag  string
)

// rootCmd runs the dashboard when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "rrtop",
	Short: "A terminal dashboard for CPU, memory, network, disks and processes",
	Long: `rrtop polls the local machine on a fixed interval and draws live graphs
and tables for CPU, memory, network, disks, temperatures, battery and
processes.

Config is read from --config, ./.rrtop.yaml or ~/.config/rrtop/config.yaml,
and any setting can be overridden with RRTOP_* environment variables.

Examples:
  rrtop
  rrtop --interval 2s --sort mem
  rrtop --tree --theme gruvbox`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugFlag {
			logger.EnableDebug(true)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return dashboardCommand(cmd, dashboardFlags{
			Interval: intervalFlag,
			Sort:     sortFlag,
			Theme:    themeFlag,
			Tree:     treeFlag,
			Group:    groupFlag,
			LogFile:  logFileFlag,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./.rrtop.yaml or ~/.config/rrtop/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	rootCmd.Flags().StringVarP(&intervalFlag, "interval", "i", "", "time between samples (e.g., 1s, 500ms)")
	rootCmd.Flags().StringVarP(&sortFlag, "sort", "s", "", "initial process sort: cpu, mem, pid, name, read, write")
	rootCmd.Flags().StringVar(&themeFlag, "theme", "", "color theme: default, gruvbox, mono, auto")
	rootCmd.Flags().BoolVarP(&treeFlag, "tree", "t", false, "start the process table in tree mode")
	rootCmd.Flags().BoolVarP(&groupFlag, "group", "g", false, "start with processes grouped by name")
	rootCmd.Flags().StringVar(&logFileFlag, "log-file", "", "write logs to this file while the dashboard runs")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if isUnknownCommandError(err) {
			if name := extractUnknownCommand(err); name != "" {
				fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\nRun 'rrtop --help' to see the available commands.\n", name)
				os.Exit(1)
			}
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// isUnknownCommandError reports whether cobra rejected the command line
// itself rather than the command failing.
func isUnknownCommandError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") || strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}

// extractUnknownCommand pulls the command name out of cobra's
// `unknown command "foo" for "rrtop"` error.
func extractUnknownCommand(err error) string {
	msg := err.Error()
	start := strings.Index(msg, `"`)
	if start < 0 {
		return ""
	}
	end := strings.Index(msg[start+1:], `"`)
	if end < 0 {
		return ""
	}
	return msg[start+1 : start+1+end]
}

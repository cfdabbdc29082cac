// Package cli implements the rrtop command-line interface.
//
// The root command runs the dashboard. Subcommands cover the config file
// and housekeeping:
//
//	rrtop                    - Run the dashboard
//	rrtop config show        - Print the resolved config
//	rrtop config path        - Print the config file in use
//	rrtop config validate    - Check the config for errors
//	rrtop config init        - Create a config file
//	rrtop version            - Print version information
//	rrtop completion <shell> - Generate shell completions
//
// # Flag Handling
//
// Global flags (--config, --debug) are defined on the root command and
// available to all subcommands. Dashboard flags (--interval, --sort,
// --theme, --tree, --group, --log-file) override the config file for one
// run; flags left unset keep the configured value.
//
// While the dashboard runs it owns the terminal, so log output goes to
// --log-file or is discarded.
package cli

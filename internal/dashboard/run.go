package dashboard

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/rileyhilliard/rrtop/internal/config"
	"github.com/rileyhilliard/rrtop/internal/errors"
	"github.com/rileyhilliard/rrtop/internal/logger"
	"github.com/rileyhilliard/rrtop/internal/probe"
)

// Run starts the harvester in the background and runs the dashboard until
// the user quits or ctx is cancelled. It returns once the harvester has
// finished its current cycle.
func Run(ctx context.Context, cfg *config.Config, p probe.Probe, log logger.Logger) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrTerminal,
			"rrtop needs an interactive terminal",
			"Run it directly in a terminal instead of piping its output.")
	}

	c, err := Build(cfg, p, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	snaps, unsubscribe := c.Harvester.Slot().Subscribe()
	defer unsubscribe()

	done := make(chan error, 1)
	go func() {
		done <- c.Harvester.Run(ctx)
	}()

	model := NewModel(c.State, c.Store, c.Table, snaps, Options{
		Theme: DetectTheme(cfg.Theme),
		Log:   log,
	})
	program := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	_, runErr := program.Run()
	cancel()
	harvestErr := <-done

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return errors.WrapWithCode(runErr, errors.ErrTerminal, "dashboard failed", "")
	}
	return harvestErr
}

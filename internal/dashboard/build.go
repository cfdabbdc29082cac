package dashboard

import (
	"time"

	"github.com/rileyhilliard/rrtop/internal/app"
	"github.com/rileyhilliard/rrtop/internal/config"
	"github.com/rileyhilliard/rrtop/internal/harvest"
	"github.com/rileyhilliard/rrtop/internal/logger"
	"github.com/rileyhilliard/rrtop/internal/probe"
	"github.com/rileyhilliard/rrtop/internal/proctable"
	"github.com/rileyhilliard/rrtop/internal/timeseries"
)

// RetentionPolicy builds the store's retention from the config. A zero
// point cap is sized to cover the widest window the store has to answer.
func RetentionPolicy(cfg *config.Config) timeseries.Policy {
	capacity := func(maxAge time.Duration, maxPoints int) int {
		if maxPoints > 0 {
			return maxPoints
		}
		return timeseries.CapacityFor(max(cfg.Graph.MaxWindow, maxAge), cfg.Interval)
	}

	p := timeseries.Policy{
		Default: timeseries.Retention{
			MaxAge:    cfg.Retention.MaxAge,
			MaxPoints: capacity(cfg.Retention.MaxAge, cfg.Retention.MaxPoints),
		},
	}
	if len(cfg.Retention.Metrics) > 0 {
		p.Overrides = make(map[string]timeseries.Retention, len(cfg.Retention.Metrics))
		for family, o := range cfg.Retention.Metrics {
			age := o.MaxAge
			if age == 0 {
				age = cfg.Retention.MaxAge
			}
			p.Overrides[family] = timeseries.Retention{
				MaxAge:    age,
				MaxPoints: capacity(age, o.MaxPoints),
			}
		}
	}
	return p
}

// HarvestOptions builds harvester options from the config.
func HarvestOptions(cfg *config.Config) harvest.Options {
	return harvest.Options{
		Interval:     cfg.Interval,
		DegradeAfter: cfg.Probes.DegradeAfter,
		MaxBackoff:   cfg.Probes.MaxBackoff,
		Disabled:     cfg.DisabledMetrics(),
	}
}

// TableOptions builds process table options from the config.
func TableOptions(cfg *config.Config) proctable.Options {
	return proctable.Options{CPUPerCore: cfg.Processes.CPUPerCore}
}

// Components are the pieces of a running dashboard.
type Components struct {
	Harvester *harvest.Harvester
	Store     *timeseries.Store
	Table     *proctable.Table
	State     *app.State
}

// Build wires the components for cfg around a probe. A nil log gives each
// component its own prefixed logger.
func Build(cfg *config.Config, p probe.Probe, log logger.Logger) (*Components, error) {
	opts, err := app.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	store := timeseries.New(RetentionPolicy(cfg), log)
	table := proctable.New(TableOptions(cfg), log)
	state, err := app.New(opts, store, table, log)
	if err != nil {
		return nil, err
	}
	return &Components{
		Harvester: harvest.New(p, HarvestOptions(cfg), log),
		Store:     store,
		Table:     table,
		State:     state,
	}, nil
}

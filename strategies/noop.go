package strategies

import (
	"github.com/rustyeddy/autosim/backtest"
	"github.com/rustyeddy/autosim/config"
	"github.com/rustyeddy/autosim/sim"
)

func init() {
	Register("noop", func(config.StrategyConfig) backtest.Strategy {
		return Noop{}
	})
}

// Noop never trades. Useful as a baseline and in feed tests.
type Noop struct{}

func (Noop) Name() string { return "noop" }
func (Noop) Reset()       {}

func (Noop) OnBar(*backtest.Context) ([]sim.OrderIntent, error) {
	return nil, nil
}

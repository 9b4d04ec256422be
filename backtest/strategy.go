package backtest

import (
	"time"

	"github.com/rustyeddy/autosim/market"
	"github.com/rustyeddy/autosim/sim"
)

// Strategy is called once per bar of its instrument. It observes only the
// causal bar history (never a bar beyond the current timestamp) and the
// instrument's open positions, and returns zero or more order intents.
//
// Strategies must not mutate simulation state; intents are their only
// output. An error return is fatal: the run stops and returns whatever
// trade log and equity curve exist so far, flagged as partial.
type Strategy interface {
	Name() string
	Reset()
	OnBar(ctx *Context) ([]sim.OrderIntent, error)
}

// Context is the per-bar view handed to a strategy.
type Context struct {
	Instrument string
	Index      int       // index of the current bar within the series
	Time       time.Time // current bar's timestamp (the simulation clock)

	// History holds bars [0..Index] of this instrument. It shares backing
	// storage with the series and must be treated as read-only.
	History []market.Bar

	// Open holds copies of the instrument's open positions, FIFO by entry
	// time.
	Open []sim.Position
}

// Bar returns the current bar.
func (c *Context) Bar() market.Bar {
	return c.History[c.Index]
}

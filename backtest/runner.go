package backtest

import (
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/autosim/market"
	"github.com/rustyeddy/autosim/risk"
	"github.com/rustyeddy/autosim/sim"
)

// ErrConfig marks an invalid runner configuration (watchlist/data mismatch,
// bad account parameters). Raised before any simulation work.
var ErrConfig = errors.New("invalid backtest configuration")

// Config wires a runner: which instruments, their validated bar series, the
// virtual account, and a factory producing one strategy instance per
// instrument (strategies carry per-bar indicator state and must not be
// shared).
type Config struct {
	Watchlist   []string
	Series      map[string]*market.Series
	Account     sim.AccountConfig
	NewStrategy func() Strategy
}

// Result is what a run produces. Aborted runs still carry every trade,
// equity sample and position record accumulated for fully processed bars;
// nothing is rolled back.
type Result struct {
	Summary   Summary
	Trades    []sim.Trade
	Equity    []sim.EquitySample
	Positions []sim.Position

	Aborted bool
	Reason  string
}

func (r Result) Completed() bool { return !r.Aborted }

// Runner merges the per-instrument bar sequences into one global
// time-ordered event stream and drives the simulation. Ties between
// instruments at the same timestamp break by watchlist order; that fixed
// order is what makes runs reproducible, because the shared account means
// interleaving changes margin and therefore fills.
type Runner struct {
	watchlist []string
	series    []*market.Series // parallel to watchlist
	strats    []Strategy       // parallel to watchlist
	broker    *sim.Broker
}

func New(cfg Config) (*Runner, error) {
	if len(cfg.Watchlist) == 0 {
		return nil, fmt.Errorf("%w: empty watchlist", ErrConfig)
	}
	if cfg.NewStrategy == nil {
		return nil, fmt.Errorf("%w: no strategy factory", ErrConfig)
	}

	acct, err := sim.NewAccount(cfg.Account)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	r := &Runner{
		watchlist: cfg.Watchlist,
		broker:    sim.NewBroker(acct),
	}

	seen := make(map[string]bool)
	for _, instr := range cfg.Watchlist {
		if seen[instr] {
			return nil, fmt.Errorf("%w: duplicate watchlist instrument %q", ErrConfig, instr)
		}
		seen[instr] = true

		s, ok := cfg.Series[instr]
		if !ok || s == nil || s.Len() == 0 {
			return nil, fmt.Errorf("%w: no data for watchlist instrument %q", ErrConfig, instr)
		}
		r.series = append(r.series, s)

		strat := cfg.NewStrategy()
		strat.Reset()
		r.strats = append(r.strats, strat)
	}

	return r, nil
}

// Broker exposes the engine, mainly for tests and journaling.
func (r *Runner) Broker() *sim.Broker { return r.broker }

// Run replays every bar in global time order. Per event: the strategy sees
// the causal history and submits intents, intents are sized and become
// pending orders, the engine fills orders from earlier bars and evaluates
// exits, and one equity sample is appended.
//
// A strategy error aborts the run with partial results. An engine error
// (internal invariant failure) is returned as err.
func (r *Runner) Run() (Result, error) {
	cursor := make([]int, len(r.watchlist))

	for {
		sel := -1
		var selTime time.Time
		for wi := range r.watchlist {
			if cursor[wi] >= r.series[wi].Len() {
				continue
			}
			bt := r.series[wi].Bars[cursor[wi]].Time
			// Strict Before: on equal timestamps the earlier watchlist
			// entry wins.
			if sel == -1 || bt.Before(selTime) {
				sel, selTime = wi, bt
			}
		}
		if sel == -1 {
			break
		}

		instr := r.watchlist[sel]
		i := cursor[sel]
		cursor[sel]++
		bar := r.series[sel].Bars[i]

		ctx := &Context{
			Instrument: instr,
			Index:      i,
			Time:       bar.Time,
			History:    r.series[sel].Slice(i),
			Open:       r.broker.OpenPositions(instr),
		}

		intents, err := r.strats[sel].OnBar(ctx)
		if err != nil {
			reason := fmt.Sprintf("strategy %s failed on %s at %s: %v",
				r.strats[sel].Name(), instr, bar.Time.Format(time.RFC3339), err)
			return r.finish(true, reason), nil
		}

		for _, intent := range intents {
			r.submit(intent, instr, bar)
		}

		if err := r.broker.ProcessBar(bar); err != nil {
			return Result{}, err
		}
		if _, err := r.broker.SampleEquity(bar.Time); err != nil {
			return Result{}, err
		}
	}

	return r.finish(false, ""), nil
}

// submit sizes one intent and hands it to the engine. Sizing failures are
// recorded as REJECTED positions, never escalated.
func (r *Runner) submit(intent sim.OrderIntent, instr string, bar market.Bar) {
	if intent.Instrument == "" {
		intent.Instrument = instr
	}

	meta := market.Meta(intent.Instrument)
	acct := r.broker.Account()

	rate, err := market.QuoteToAccountRate(meta, acct.Currency, bar.Close)
	if err != nil {
		r.broker.Reject(intent, bar.Time, err.Error())
		return
	}

	order, err := risk.Size(intent, acct.Balance, meta, rate)
	if err != nil {
		r.broker.Reject(intent, bar.Time, err.Error())
		return
	}

	r.broker.Submit(order, bar.Time)
}

func (r *Runner) finish(aborted bool, reason string) Result {
	cancelReason := "end of data"
	if aborted {
		cancelReason = "run aborted"
	}
	r.broker.CancelPending(cancelReason)

	trades := r.broker.Trades()
	equity := r.broker.Equity()
	positions := r.broker.Positions()

	return Result{
		Summary:   Summarize(r.broker.Account(), trades, equity, positions),
		Trades:    trades,
		Equity:    equity,
		Positions: positions,
		Aborted:   aborted,
		Reason:    reason,
	}
}

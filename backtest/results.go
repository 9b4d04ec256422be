package backtest

import "github.com/rustyeddy/autosim/sim"

// DirectionSummary aggregates one side's closed trades.
type DirectionSummary struct {
	NoTrades     int
	Wins         int
	Losses       int
	WinRate      float64 // wins / trades, 0 when no trades
	RealizedPL   float64
	Commission   float64
	AvgRMultiple float64
}

// Summary is the run's aggregate view. Derived entirely from the trade log,
// equity curve and position records; computing it has no side effects and
// it stays valid after a partial run.
type Summary struct {
	NoTrades      int
	EndingBalance float64

	LongTrades  DirectionSummary
	ShortTrades DirectionSummary

	WinRate         float64
	AvgRMultiple    float64
	RealizedPL      float64
	TotalCommission float64
	MaxDrawdown     float64 // fractional peak-to-trough on equity

	NoRejected  int
	NoCancelled int
	NoOpen      int
}

// Summarize folds the run state into a Summary.
func Summarize(acct sim.Account, trades []sim.Trade, equity []sim.EquitySample, positions []sim.Position) Summary {
	s := Summary{
		NoTrades:      len(trades),
		EndingBalance: acct.Balance,
		MaxDrawdown:   maxDrawdown(equity),
	}

	var rSum float64
	for _, t := range trades {
		d := &s.LongTrades
		if t.Side == sim.Short {
			d = &s.ShortTrades
		}
		d.NoTrades++
		d.RealizedPL += t.RealizedPL
		d.Commission += t.Commission
		d.AvgRMultiple += t.RMultiple()
		if t.RealizedPL > 0 {
			d.Wins++
		} else if t.RealizedPL < 0 {
			d.Losses++
		}

		s.RealizedPL += t.RealizedPL
		s.TotalCommission += t.Commission
		rSum += t.RMultiple()
	}

	finalizeDirection(&s.LongTrades)
	finalizeDirection(&s.ShortTrades)

	wins := s.LongTrades.Wins + s.ShortTrades.Wins
	if s.NoTrades > 0 {
		s.WinRate = float64(wins) / float64(s.NoTrades)
		s.AvgRMultiple = rSum / float64(s.NoTrades)
	}

	for _, p := range positions {
		switch p.State {
		case sim.Rejected:
			s.NoRejected++
		case sim.Cancelled:
			s.NoCancelled++
		case sim.Open:
			s.NoOpen++
		}
	}

	return s
}

func finalizeDirection(d *DirectionSummary) {
	if d.NoTrades == 0 {
		return
	}
	d.WinRate = float64(d.Wins) / float64(d.NoTrades)
	d.AvgRMultiple /= float64(d.NoTrades)
}

func maxDrawdown(equity []sim.EquitySample) float64 {
	var peak, dd float64
	for _, e := range equity {
		eq := e.Equity()
		if eq > peak {
			peak = eq
		}
		if peak > 0 {
			if d := (peak - eq) / peak; d > dd {
				dd = d
			}
		}
	}
	return dd
}

package journal

import (
	"fmt"
	"time"

	"github.com/rustyeddy/autosim/backtest"
	"github.com/rustyeddy/autosim/internal/id"
)

// WriteResult persists a finished (or aborted) run: every position record,
// every trade, the full equity curve and the run summary row. It returns
// the generated run id.
func WriteResult(j Journal, strategy string, res backtest.Result) (string, error) {
	runID := id.New()

	for _, p := range res.Positions {
		rec := OrderRecord{
			RunID:      runID,
			PositionID: p.ID,
			Instrument: p.Instrument,
			Side:       p.Side.String(),
			State:      p.State.String(),
			Size:       p.Size,
			SubmitTime: p.SubmitTime,
			Reason:     p.Reason,
		}
		if err := j.RecordOrder(rec); err != nil {
			return runID, fmt.Errorf("record order %d: %w", p.ID, err)
		}
	}

	for _, t := range res.Trades {
		rec := TradeRecord{
			RecordID:   id.New(),
			RunID:      runID,
			PositionID: t.PositionID,
			Instrument: t.Instrument,
			Side:       t.Side.String(),
			Size:       t.Size,
			EntryPrice: t.EntryPrice,
			ExitPrice:  t.ExitPrice,
			EntryTime:  t.EntryTime,
			ExitTime:   t.ExitTime,
			RealizedPL: t.RealizedPL,
			Commission: t.Commission,
			Reason:     t.Reason,
		}
		if err := j.RecordTrade(rec); err != nil {
			return runID, fmt.Errorf("record trade %d: %w", t.PositionID, err)
		}
	}

	for _, e := range res.Equity {
		rec := EquityRecord{
			RunID:        runID,
			Time:         e.Time,
			Balance:      e.Balance,
			UnrealizedPL: e.UnrealizedPL,
			Equity:       e.Equity(),
		}
		if err := j.RecordEquity(rec); err != nil {
			return runID, fmt.Errorf("record equity at %s: %w", e.Time, err)
		}
	}

	var start, end time.Time
	if len(res.Equity) > 0 {
		start = res.Equity[0].Time
		end = res.Equity[len(res.Equity)-1].Time
	}
	if err := j.RecordRun(RunRecord{
		RunID:         runID,
		Strategy:      strategy,
		Start:         start,
		End:           end,
		Trades:        res.Summary.NoTrades,
		EndingBalance: res.Summary.EndingBalance,
		Aborted:       res.Aborted,
		Reason:        res.Reason,
	}); err != nil {
		return runID, fmt.Errorf("record run: %w", err)
	}

	return runID, nil
}

// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSV writes trades, orders and equity samples to three CSV files, one row
// per record, flushed eagerly. Run summary rows are a database concern and
// are skipped here.
type CSV struct {
	trades *csv.Writer
	orders *csv.Writer
	equity *csv.Writer
	files  []*os.File
}

func NewCSV(tradesPath, ordersPath, equityPath string) (*CSV, error) {
	j := &CSV{}

	open := func(path string, header []string) (*csv.Writer, error) {
		f, err := os.Create(path)
		if err != nil {
			return nil, err
		}
		j.files = append(j.files, f)
		w := csv.NewWriter(f)
		if err := w.Write(header); err != nil {
			return nil, err
		}
		w.Flush()
		return w, w.Error()
	}

	var err error
	if j.trades, err = open(tradesPath, []string{
		"record_id", "run_id", "position_id", "instrument", "side", "size",
		"entry_price", "exit_price", "entry_time", "exit_time",
		"realized_pl", "commission", "reason",
	}); err != nil {
		j.Close()
		return nil, err
	}
	if j.orders, err = open(ordersPath, []string{
		"run_id", "position_id", "instrument", "side", "state", "size",
		"submit_time", "reason",
	}); err != nil {
		j.Close()
		return nil, err
	}
	if j.equity, err = open(equityPath, []string{
		"run_id", "time", "balance", "unrealized_pl", "equity",
	}); err != nil {
		j.Close()
		return nil, err
	}

	return j, nil
}

func (j *CSV) RecordRun(RunRecord) error {
	// Run summaries are a database concern; the CSV journal only carries
	// the raw series.
	return nil
}

func (j *CSV) RecordOrder(o OrderRecord) error {
	if err := j.orders.Write([]string{
		o.RunID,
		strconv.Itoa(o.PositionID),
		o.Instrument,
		o.Side,
		o.State,
		f(o.Size),
		o.SubmitTime.Format(time.RFC3339),
		o.Reason,
	}); err != nil {
		return err
	}
	j.orders.Flush()
	return j.orders.Error()
}

func (j *CSV) RecordTrade(t TradeRecord) error {
	if err := j.trades.Write([]string{
		t.RecordID,
		t.RunID,
		strconv.Itoa(t.PositionID),
		t.Instrument,
		t.Side,
		f(t.Size),
		f(t.EntryPrice),
		f(t.ExitPrice),
		t.EntryTime.Format(time.RFC3339),
		t.ExitTime.Format(time.RFC3339),
		f(t.RealizedPL),
		f(t.Commission),
		t.Reason,
	}); err != nil {
		return err
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSV) RecordEquity(e EquityRecord) error {
	if err := j.equity.Write([]string{
		e.RunID,
		e.Time.Format(time.RFC3339),
		f(e.Balance),
		f(e.UnrealizedPL),
		f(e.Equity),
	}); err != nil {
		return err
	}
	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSV) Close() error {
	var first error
	for _, f := range j.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Package journal persists backtest output: every order record (including
// rejected and cancelled ones), every closed trade, the equity curve and a
// per-run summary row. CSV and SQLite backends are provided.
package journal

import "time"

// RunRecord is one backtest run's summary row.
type RunRecord struct {
	RunID         string
	Strategy      string
	Start         time.Time
	End           time.Time
	Trades        int
	EndingBalance float64
	Aborted       bool
	Reason        string
}

// OrderRecord is the terminal state of one position record. Rejected and
// cancelled orders are recorded individually; nothing is dropped silently.
type OrderRecord struct {
	RunID      string
	PositionID int
	Instrument string
	Side       string
	State      string
	Size       float64
	SubmitTime time.Time
	Reason     string
}

// TradeRecord is one closed trade.
type TradeRecord struct {
	RecordID   string // ULID, time-sortable
	RunID      string
	PositionID int
	Instrument string
	Side       string
	Size       float64
	EntryPrice float64
	ExitPrice  float64
	EntryTime  time.Time
	ExitTime   time.Time
	RealizedPL float64
	Commission float64
	Reason     string
}

// EquityRecord is one equity-curve sample.
type EquityRecord struct {
	RunID        string
	Time         time.Time
	Balance      float64
	UnrealizedPL float64
	Equity       float64
}

type Journal interface {
	RecordRun(RunRecord) error
	RecordOrder(OrderRecord) error
	RecordTrade(TradeRecord) error
	RecordEquity(EquityRecord) error
	Close() error
}

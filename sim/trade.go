package sim

import "time"

// Trade is the immutable record of a closed position, created exactly once
// when a position transitions to CLOSED.
type Trade struct {
	PositionID int
	Instrument string
	Side       Side
	Size       float64
	EntryPrice float64
	EntryTime  time.Time
	ExitPrice  float64
	ExitTime   time.Time
	Stop       float64 // stop level at entry, for R-multiple reporting
	RealizedPL float64 // account currency
	Commission float64 // account currency, charged at close
	Reason     string
}

// RMultiple is the realized profit expressed in units of the risk taken at
// entry (distance to the stop). Zero when the stop distance is degenerate.
func (t Trade) RMultiple() float64 {
	risk := (t.EntryPrice - t.Stop) * float64(t.Side)
	if risk <= 0 {
		return 0
	}
	return (t.ExitPrice - t.EntryPrice) * float64(t.Side) / risk
}

// EquitySample is one point of the equity curve, appended once per
// processed bar.
type EquitySample struct {
	Time         time.Time
	Balance      float64
	UnrealizedPL float64
}

func (e EquitySample) Equity() float64 {
	return e.Balance + e.UnrealizedPL
}

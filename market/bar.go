package market

import "time"

// Bar is one OHLCV sample for an instrument over a fixed interval.
// Bars are immutable once ingested.
type Bar struct {
	Instrument string
	Time       time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     float64
}

func (b Bar) Mid() float64 {
	return (b.High + b.Low) / 2
}

// Window bounds a simulation to [Start, End). A zero Start or End leaves
// that side unbounded.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && !t.Before(w.End) {
		return false
	}
	return true
}

package market

import (
	"errors"
	"fmt"
)

// ErrData marks a bar series that failed validation (out of order,
// duplicate timestamps, mismatched instrument). Callers branch with
// errors.Is; the run never starts on a bad series.
var ErrData = errors.New("invalid bar data")

// Series is a chronologically ordered, validated bar sequence for a single
// instrument. Construct with NewSeries; the slice must not be mutated after.
type Series struct {
	Instrument string
	Bars       []Bar
}

// NewSeries validates that bars are strictly increasing in time with no
// duplicates and that every bar belongs to instrument.
func NewSeries(instrument string, bars []Bar) (*Series, error) {
	if instrument == "" {
		return nil, fmt.Errorf("%w: empty instrument", ErrData)
	}
	for i, b := range bars {
		if b.Instrument != "" && b.Instrument != instrument {
			return nil, fmt.Errorf("%w: bar %d belongs to %q, series is %q",
				ErrData, i, b.Instrument, instrument)
		}
		if b.Time.IsZero() {
			return nil, fmt.Errorf("%w: bar %d has zero timestamp", ErrData, i)
		}
		if i > 0 && !bars[i-1].Time.Before(b.Time) {
			return nil, fmt.Errorf("%w: %s bar %d (%s) not after bar %d (%s)",
				ErrData, instrument, i, b.Time.Format("2006-01-02T15:04:05Z"),
				i-1, bars[i-1].Time.Format("2006-01-02T15:04:05Z"))
		}
		bars[i].Instrument = instrument
	}
	return &Series{Instrument: instrument, Bars: bars}, nil
}

func (s *Series) Len() int { return len(s.Bars) }

// Slice returns the causal history through index i: bars [0, i].
// The returned slice shares backing storage and must be treated as read-only.
func (s *Series) Slice(i int) []Bar {
	return s.Bars[:i+1]
}

// Window returns a new Series restricted to w.
func (s *Series) Window(w Window) *Series {
	lo, hi := 0, len(s.Bars)
	for lo < hi && !w.Contains(s.Bars[lo].Time) {
		lo++
	}
	for hi > lo && !w.Contains(s.Bars[hi-1].Time) {
		hi--
	}
	return &Series{Instrument: s.Instrument, Bars: s.Bars[lo:hi]}
}

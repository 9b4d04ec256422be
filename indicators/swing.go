package indicators

import "github.com/rustyeddy/autosim/market"

// Swing tracks the lowest low and highest high over a rolling window of
// bars, used to place protective stops behind recent structure.
type Swing struct {
	period int
	lows   []float64
	highs  []float64
}

func NewSwing(period int) *Swing {
	return &Swing{period: period}
}

func (s *Swing) Warmup() int {
	return s.period
}

func (s *Swing) Reset() {
	s.lows = s.lows[:0]
	s.highs = s.highs[:0]
}

func (s *Swing) Update(b market.Bar) {
	s.lows = append(s.lows, b.Low)
	s.highs = append(s.highs, b.High)
	if len(s.lows) > s.period {
		s.lows = s.lows[1:]
		s.highs = s.highs[1:]
	}
}

func (s *Swing) Ready() bool {
	return len(s.lows) >= s.period
}

// Low returns the lowest low in the window.
func (s *Swing) Low() float64 {
	low := s.lows[0]
	for _, v := range s.lows[1:] {
		if v < low {
			low = v
		}
	}
	return low
}

// High returns the highest high in the window.
func (s *Swing) High() float64 {
	high := s.highs[0]
	for _, v := range s.highs[1:] {
		if v > high {
			high = v
		}
	}
	return high
}

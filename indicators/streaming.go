// Package indicators provides streaming indicators: each is advanced once
// per bar and never recomputed from scratch, which keeps replay O(n) and
// guarantees a value only ever depends on bars already seen.
package indicators

import "fmt"

// EMA is a streaming Exponential Moving Average over a value series
// (typically bar closes). The first value is seeded with an SMA over the
// warmup window.
type EMA struct {
	period     int
	multiplier float64
	ema        float64
	count      int
	warmupSum  float64
}

func NewEMA(period int) *EMA {
	return &EMA{
		period:     period,
		multiplier: 2.0 / float64(period+1),
	}
}

func (e *EMA) Name() string {
	return fmt.Sprintf("EMA(%d)", e.period)
}

func (e *EMA) Warmup() int {
	return e.period
}

func (e *EMA) Reset() {
	e.ema = 0
	e.count = 0
	e.warmupSum = 0
}

func (e *EMA) Update(v float64) {
	if e.count < e.period {
		e.warmupSum += v
		e.count++
		if e.count == e.period {
			e.ema = e.warmupSum / float64(e.period)
		}
		return
	}
	e.ema = (v-e.ema)*e.multiplier + e.ema
}

func (e *EMA) Ready() bool {
	return e.count >= e.period
}

func (e *EMA) Value() float64 {
	if !e.Ready() {
		return 0
	}
	return e.ema
}

// MACD is a streaming Moving Average Convergence Divergence: fast EMA minus
// slow EMA, with a signal EMA over the MACD line.
type MACD struct {
	fast   *EMA
	slow   *EMA
	signal *EMA
	macd   float64
}

func NewMACD(fast, slow, smoothing int) *MACD {
	return &MACD{
		fast:   NewEMA(fast),
		slow:   NewEMA(slow),
		signal: NewEMA(smoothing),
	}
}

func (m *MACD) Name() string {
	return fmt.Sprintf("MACD(%d,%d,%d)", m.fast.period, m.slow.period, m.signal.period)
}

func (m *MACD) Reset() {
	m.fast.Reset()
	m.slow.Reset()
	m.signal.Reset()
	m.macd = 0
}

func (m *MACD) Update(v float64) {
	m.fast.Update(v)
	m.slow.Update(v)
	if m.fast.Ready() && m.slow.Ready() {
		m.macd = m.fast.Value() - m.slow.Value()
		m.signal.Update(m.macd)
	}
}

func (m *MACD) Ready() bool {
	return m.slow.Ready() && m.signal.Ready()
}

// Value returns the MACD line.
func (m *MACD) Value() float64 {
	if !m.Ready() {
		return 0
	}
	return m.macd
}

// Signal returns the signal line.
func (m *MACD) Signal() float64 {
	if !m.Ready() {
		return 0
	}
	return m.signal.Value()
}

// Histogram returns MACD minus signal.
func (m *MACD) Histogram() float64 {
	if !m.Ready() {
		return 0
	}
	return m.macd - m.signal.Value()
}

package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/autosim/market"
)

func tm(i int) time.Time {
	return time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * 4 * time.Hour)
}

func bar(i int, o, h, l, c float64) market.Bar {
	return market.Bar{Instrument: "EUR_USD", Time: tm(i), Open: o, High: h, Low: l, Close: c}
}

func newTestBroker(t *testing.T, cfg AccountConfig) *Broker {
	t.Helper()
	if cfg.InitialBalance == 0 {
		cfg.InitialBalance = 1000
	}
	if cfg.Leverage == 0 {
		cfg.Leverage = 30
	}
	acct, err := NewAccount(cfg)
	require.NoError(t, err)
	return NewBroker(acct)
}

func order(side Side, size float64) Order {
	return Order{
		Instrument:     "EUR_USD",
		Side:           side,
		Size:           size,
		StopDistance:   0.0500,
		TargetDistance: 0.0750,
	}
}

func TestFillHappensOnNextBarOpen(t *testing.T) {
	br := newTestBroker(t, AccountConfig{})

	id := br.Submit(order(Long, 1000), tm(1))

	// The submit bar itself must not fill the order.
	require.NoError(t, br.ProcessBar(bar(1, 1.2000, 1.2010, 1.1990, 1.2005)))
	assert.Equal(t, Pending, br.Positions()[id].State)

	require.NoError(t, br.ProcessBar(bar(2, 1.2020, 1.2030, 1.2010, 1.2025)))
	p := br.Positions()[id]
	assert.Equal(t, Open, p.State)
	assert.InDelta(t, 1.2020, p.EntryPrice, 1e-12)
	assert.Equal(t, tm(2), p.EntryTime)

	// margin_used = notional / leverage at the fill price.
	assert.InDelta(t, 1000*1.2020/30, br.Account().MarginUsed, 1e-9)
}

func TestSpreadAppliedPerSide(t *testing.T) {
	br := newTestBroker(t, AccountConfig{Spread: 0.0001})

	long := br.Submit(order(Long, 1000), tm(1))
	short := br.Submit(order(Short, 1000), tm(1))
	require.NoError(t, br.ProcessBar(bar(2, 1.2000, 1.2010, 1.1990, 1.2005)))

	ps := br.Positions()
	assert.InDelta(t, 1.20005, ps[long].EntryPrice, 1e-12)
	assert.InDelta(t, 1.19995, ps[short].EntryPrice, 1e-12)
}

func TestInsufficientMarginRejects(t *testing.T) {
	// free margin = 1000 * 30 = 30000; 1M units at ~1.20 needs ~40000.
	br := newTestBroker(t, AccountConfig{})

	id := br.Submit(order(Long, 1_000_000), tm(1))
	require.NoError(t, br.ProcessBar(bar(2, 1.2000, 1.2010, 1.1990, 1.2005)))

	p := br.Positions()[id]
	assert.Equal(t, Rejected, p.State)
	assert.Contains(t, p.Reason, "insufficient margin")
	assert.Equal(t, 0.0, br.Account().MarginUsed)
	assert.Empty(t, br.Trades())
}

func TestStopAndTargetSameBarClosesAtStop(t *testing.T) {
	br := newTestBroker(t, AccountConfig{})

	id := br.Submit(Order{
		Instrument:     "EUR_USD",
		Side:           Long,
		Size:           1000,
		StopDistance:   0.0100,
		TargetDistance: 0.0100,
	}, tm(1))

	require.NoError(t, br.ProcessBar(bar(2, 1.2000, 1.2010, 1.1995, 1.2005)))
	require.Equal(t, Open, br.Positions()[id].State)

	// Range spans stop (1.19) and target (1.21).
	require.NoError(t, br.ProcessBar(bar(3, 1.2005, 1.2150, 1.1850, 1.2000)))

	p := br.Positions()[id]
	assert.Equal(t, Closed, p.State)

	trades := br.Trades()
	require.Len(t, trades, 1)
	assert.Equal(t, "StopLoss", trades[0].Reason)
	assert.InDelta(t, p.Stop, trades[0].ExitPrice, 1e-12)
	assert.InDelta(t, -10.0, trades[0].RealizedPL, 1e-9)
	assert.InDelta(t, 990.0, br.Account().Balance, 1e-9)
	assert.Equal(t, 0.0, br.Account().MarginUsed)
}

func TestCommissionChargedOnClose(t *testing.T) {
	br := newTestBroker(t, AccountConfig{CommissionRate: 0.5})

	br.Submit(Order{
		Instrument:     "EUR_USD",
		Side:           Long,
		Size:           1000,
		StopDistance:   0.0100,
		TargetDistance: 0.0100,
	}, tm(1))
	require.NoError(t, br.ProcessBar(bar(2, 1.2000, 1.2010, 1.1995, 1.2005)))

	// Balance untouched while the position is merely open.
	assert.InDelta(t, 1000.0, br.Account().Balance, 1e-12)

	require.NoError(t, br.ProcessBar(bar(3, 1.2005, 1.2150, 1.2005, 1.2100)))

	trades := br.Trades()
	require.Len(t, trades, 1)
	tr := trades[0]
	assert.Equal(t, "TakeProfit", tr.Reason)

	wantCommission := 0.5 / 100 * 1000 * tr.ExitPrice
	assert.InDelta(t, wantCommission, tr.Commission, 1e-9)
	assert.InDelta(t, 1000+tr.RealizedPL-tr.Commission, br.Account().Balance, 1e-9)
}

func TestHedgingOpensIndependentPositions(t *testing.T) {
	br := newTestBroker(t, AccountConfig{Hedging: true})

	long := br.Submit(order(Long, 1000), tm(1))
	short := br.Submit(order(Short, 1000), tm(1))
	require.NoError(t, br.ProcessBar(bar(2, 1.2000, 1.2010, 1.1990, 1.2005)))

	ps := br.Positions()
	assert.Equal(t, Open, ps[long].State)
	assert.Equal(t, Open, ps[short].State)
	assert.Len(t, br.OpenPositions("EUR_USD"), 2)
	assert.Empty(t, br.Trades())
}

func TestNettingClosesFIFOThenReduces(t *testing.T) {
	br := newTestBroker(t, AccountConfig{Hedging: false})

	first := br.Submit(order(Long, 1000), tm(1))
	require.NoError(t, br.ProcessBar(bar(2, 1.2000, 1.2010, 1.1990, 1.2005)))
	second := br.Submit(order(Long, 500), tm(2))
	require.NoError(t, br.ProcessBar(bar(3, 1.2010, 1.2020, 1.2000, 1.2015)))

	require.Len(t, br.OpenPositions("EUR_USD"), 2)

	// Opposite fill of 1200: fully closes the first (1000), reduces the
	// second by 200, nothing left to open.
	netted := br.Submit(order(Short, 1200), tm(3))
	require.NoError(t, br.ProcessBar(bar(4, 1.2020, 1.2030, 1.2010, 1.2025)))

	ps := br.Positions()
	assert.Equal(t, Closed, ps[first].State)
	assert.Equal(t, Open, ps[second].State)
	assert.InDelta(t, 300, ps[second].Size, 1e-12)
	assert.Equal(t, Cancelled, ps[netted].State)
	assert.Contains(t, ps[netted].Reason, "netted")

	trades := br.Trades()
	require.Len(t, trades, 2)
	assert.Equal(t, first, trades[0].PositionID)
	assert.InDelta(t, 1000, trades[0].Size, 1e-12)
	assert.Equal(t, "Netted", trades[0].Reason)
	assert.Equal(t, second, trades[1].PositionID)
	assert.InDelta(t, 200, trades[1].Size, 1e-12)

	open := br.OpenPositions("EUR_USD")
	require.Len(t, open, 1)
	assert.InDelta(t, 300, open[0].Size, 1e-12)

	// Margin reflects only the surviving exposure.
	wantMargin := 300.0 * ps[second].EntryPrice / 30
	assert.InDelta(t, wantMargin, br.Account().MarginUsed, 1e-9)
}

func TestNettingResidualOpensOpposite(t *testing.T) {
	br := newTestBroker(t, AccountConfig{Hedging: false})

	long := br.Submit(order(Long, 500), tm(1))
	require.NoError(t, br.ProcessBar(bar(2, 1.2000, 1.2010, 1.1990, 1.2005)))

	short := br.Submit(order(Short, 800), tm(2))
	require.NoError(t, br.ProcessBar(bar(3, 1.2010, 1.2020, 1.2000, 1.2015)))

	ps := br.Positions()
	assert.Equal(t, Closed, ps[long].State)
	assert.Equal(t, Open, ps[short].State)
	assert.Equal(t, Short, ps[short].Side)
	assert.InDelta(t, 300, ps[short].Size, 1e-12)

	require.Len(t, br.Trades(), 1)
	assert.InDelta(t, 500, br.Trades()[0].Size, 1e-12)
}

func TestEquitySampleIdentity(t *testing.T) {
	br := newTestBroker(t, AccountConfig{})

	br.Submit(order(Long, 1000), tm(1))
	require.NoError(t, br.ProcessBar(bar(2, 1.2000, 1.2010, 1.1990, 1.2005)))

	s, err := br.SampleEquity(tm(2))
	require.NoError(t, err)

	open := br.OpenPositions("EUR_USD")
	require.Len(t, open, 1)
	want := (1.2005 - open[0].EntryPrice) * open[0].Size
	assert.InDelta(t, want, s.UnrealizedPL, 1e-9)
	assert.InDelta(t, br.Account().Balance+want, s.Equity(), 1e-9)

	// A flat account samples zero unrealized.
	br2 := newTestBroker(t, AccountConfig{})
	s2, err := br2.SampleEquity(tm(1))
	require.NoError(t, err)
	assert.Equal(t, 0.0, s2.UnrealizedPL)
	assert.InDelta(t, 1000.0, s2.Balance, 1e-12)
}

func TestCancelPending(t *testing.T) {
	br := newTestBroker(t, AccountConfig{})

	id := br.Submit(order(Long, 1000), tm(1))
	br.CancelPending("end of data")

	p := br.Positions()[id]
	assert.Equal(t, Cancelled, p.State)
	assert.Equal(t, "end of data", p.Reason)

	// A cancelled order never fills.
	require.NoError(t, br.ProcessBar(bar(2, 1.2000, 1.2010, 1.1990, 1.2005)))
	assert.Equal(t, Cancelled, br.Positions()[id].State)
}

func TestRejectRecordsIntent(t *testing.T) {
	br := newTestBroker(t, AccountConfig{})

	id := br.Reject(OrderIntent{Instrument: "EUR_USD", Side: Short}, tm(1), "stop distance -1 must be positive")
	p := br.Positions()[id]
	assert.Equal(t, Rejected, p.State)
	assert.Equal(t, Short, p.Side)
	assert.Contains(t, p.Reason, "stop distance")
}

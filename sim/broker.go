package sim

import (
	"fmt"
	"time"

	"github.com/rustyeddy/autosim/market"
)

// Broker is the order & position engine plus the virtual account it guards.
// It turns submitted orders into simulated fills on the next bar's open,
// manages stop/target exits, and keeps the trade log and equity curve.
//
// The simulation is strictly sequential: a single goroutine drives the
// Broker through the scheduler, and all ordered traversals use slices, never
// map iteration, so identical inputs produce identical output.
type Broker struct {
	acct *Account

	positions []*Position      // arena: index == Position.ID
	pending   map[string][]int // per instrument, submit order
	open      map[string][]int // per instrument, FIFO by entry time
	lastBar   map[string]market.Bar

	trades []Trade
	equity []EquitySample
}

func NewBroker(acct *Account) *Broker {
	return &Broker{
		acct:    acct,
		pending: make(map[string][]int),
		open:    make(map[string][]int),
		lastBar: make(map[string]market.Bar),
	}
}

// Submit registers a sized order as a PENDING position. It fills on the
// first bar of its instrument that opens after submitTime.
func (br *Broker) Submit(o Order, submitTime time.Time) int {
	p := &Position{
		ID:             len(br.positions),
		Instrument:     o.Instrument,
		Side:           o.Side,
		Size:           o.Size,
		SubmitTime:     submitTime,
		StopDistance:   o.StopDistance,
		TargetDistance: o.TargetDistance,
		State:          Pending,
	}
	br.positions = append(br.positions, p)
	br.pending[o.Instrument] = append(br.pending[o.Instrument], p.ID)
	return p.ID
}

// Reject records an order that never became submittable (bad stop distance,
// size rounded to zero). The record is kept so no order disappears silently.
func (br *Broker) Reject(intent OrderIntent, t time.Time, reason string) int {
	p := &Position{
		ID:         len(br.positions),
		Instrument: intent.Instrument,
		Side:       intent.Side,
		SubmitTime: t,
		State:      Pending,
		Reason:     reason,
	}
	// Pending -> Rejected is always legal; ignore the error.
	_ = p.transition(Rejected)
	br.positions = append(br.positions, p)
	return p.ID
}

// ProcessBar advances the engine by one bar: fill pending orders submitted
// on earlier bars at this bar's open, then evaluate stop/target exits
// against the bar's range. A position filled on this bar can be stopped out
// by the same bar.
func (br *Broker) ProcessBar(b market.Bar) error {
	instr := b.Instrument

	var still []int
	for _, id := range br.pending[instr] {
		p := br.positions[id]
		if !p.SubmitTime.Before(b.Time) {
			still = append(still, id)
			continue
		}
		if err := br.fill(p, b); err != nil {
			return err
		}
	}
	br.pending[instr] = still

	// Snapshot the open set: closing mutates it.
	openIDs := append([]int(nil), br.open[instr]...)
	for _, id := range openIDs {
		p := br.positions[id]
		if p.State != Open {
			continue
		}
		if price, reason, hit := p.checkExit(b); hit {
			if err := br.closePosition(p, price, b.Time, reason); err != nil {
				return err
			}
		}
	}

	br.lastBar[instr] = b
	return nil
}

func (br *Broker) fill(p *Position, b market.Bar) error {
	price := br.acct.FillPrice(p.Side, b.Open)

	// Netting: without hedging, an opposite-direction fill first reduces
	// existing positions FIFO; only the residual opens as new exposure.
	if !br.acct.Hedging {
		remaining, err := br.net(p, price, b.Time)
		if err != nil {
			return err
		}
		if remaining <= 0 {
			p.Reason = "fully netted against open positions"
			return p.transition(Cancelled)
		}
		p.Size = remaining
	}

	rate, err := br.rate(p.Instrument, price)
	if err != nil {
		return err
	}
	notional := p.Size * price * rate

	if !br.acct.CanOpen(notional) {
		p.Reason = fmt.Sprintf("insufficient margin: need %.2f, free %.2f",
			notional/br.acct.Leverage, br.acct.FreeMargin())
		return p.transition(Rejected)
	}

	p.marginHeld = br.acct.ReserveMargin(notional)
	if err := p.fill(price, b.Time); err != nil {
		return err
	}
	br.open[p.Instrument] = append(br.open[p.Instrument], p.ID)
	return nil
}

// net closes opposing open positions FIFO by entry time at price and
// returns the order size left to open.
func (br *Broker) net(p *Position, price float64, t time.Time) (float64, error) {
	remaining := p.Size
	openIDs := append([]int(nil), br.open[p.Instrument]...)
	for _, id := range openIDs {
		if remaining <= 0 {
			break
		}
		other := br.positions[id]
		if other.State != Open || other.Side == p.Side {
			continue
		}
		if other.Size <= remaining {
			remaining -= other.Size
			if err := br.closePosition(other, price, t, "Netted"); err != nil {
				return 0, err
			}
		} else {
			if err := br.reducePosition(other, remaining, price, t, "Netted"); err != nil {
				return 0, err
			}
			remaining = 0
		}
	}
	return remaining, nil
}

// closePosition realizes the full position: balance, commission and margin
// move atomically with the CLOSED transition, and exactly one Trade is
// emitted.
func (br *Broker) closePosition(p *Position, price float64, t time.Time, reason string) error {
	rate, err := br.rate(p.Instrument, price)
	if err != nil {
		return err
	}

	if err := p.transition(Closed); err != nil {
		return err
	}
	p.Reason = reason

	pl := p.UnrealizedPL(price) * rate
	commission := br.acct.ApplyCommission(p.Size * price * rate)
	br.acct.Realize(pl)
	br.acct.ReleaseMargin(p.marginHeld)
	p.marginHeld = 0

	br.open[p.Instrument] = remove(br.open[p.Instrument], p.ID)

	br.trades = append(br.trades, Trade{
		PositionID: p.ID,
		Instrument: p.Instrument,
		Side:       p.Side,
		Size:       p.Size,
		EntryPrice: p.EntryPrice,
		EntryTime:  p.EntryTime,
		ExitPrice:  price,
		ExitTime:   t,
		Stop:       p.Stop,
		RealizedPL: pl,
		Commission: commission,
		Reason:     reason,
	})
	return nil
}

// reducePosition closes part of a position, emitting a Trade for the closed
// units and shrinking the remainder in place. The position stays OPEN.
func (br *Broker) reducePosition(p *Position, units, price float64, t time.Time, reason string) error {
	rate, err := br.rate(p.Instrument, price)
	if err != nil {
		return err
	}

	pl := (price - p.EntryPrice) * units * float64(p.Side) * rate
	commission := br.acct.ApplyCommission(units * price * rate)
	br.acct.Realize(pl)

	held := p.marginHeld * units / p.Size
	br.acct.ReleaseMargin(held)
	p.marginHeld -= held
	p.Size -= units

	br.trades = append(br.trades, Trade{
		PositionID: p.ID,
		Instrument: p.Instrument,
		Side:       p.Side,
		Size:       units,
		EntryPrice: p.EntryPrice,
		EntryTime:  p.EntryTime,
		ExitPrice:  price,
		ExitTime:   t,
		Stop:       p.Stop,
		RealizedPL: pl,
		Commission: commission,
		Reason:     reason,
	})
	return nil
}

// SampleEquity appends one equity-curve point, marking every open position
// at the close of its instrument's latest processed bar.
func (br *Broker) SampleEquity(t time.Time) (EquitySample, error) {
	var unrealized float64
	for _, p := range br.positions {
		if p.State != Open {
			continue
		}
		last, ok := br.lastBar[p.Instrument]
		if !ok {
			return EquitySample{}, fmt.Errorf("sim: open position %d on %s with no processed bar", p.ID, p.Instrument)
		}
		rate, err := br.rate(p.Instrument, last.Close)
		if err != nil {
			return EquitySample{}, err
		}
		unrealized += p.UnrealizedPL(last.Close) * rate
	}

	s := EquitySample{Time: t, Balance: br.acct.Balance, UnrealizedPL: unrealized}
	br.equity = append(br.equity, s)
	return s, nil
}

// CancelPending cancels every still-PENDING order, recording why. Open
// positions are left open; the ending balance excludes their unrealized P/L.
func (br *Broker) CancelPending(reason string) {
	for _, p := range br.positions {
		if p.State != Pending {
			continue
		}
		p.Reason = reason
		_ = p.transition(Cancelled)
	}
	for instr := range br.pending {
		br.pending[instr] = nil
	}
}

func (br *Broker) rate(instrument string, mark float64) (float64, error) {
	return market.QuoteToAccountRate(market.Meta(instrument), br.acct.Currency, mark)
}

// Account returns a snapshot of the virtual account.
func (br *Broker) Account() Account { return *br.acct }

// Trades returns the append-only trade log. Callers must not mutate it.
func (br *Broker) Trades() []Trade { return br.trades }

// Equity returns the equity-curve samples. Callers must not mutate it.
func (br *Broker) Equity() []EquitySample { return br.equity }

// Positions returns copies of every position record, in creation order.
func (br *Broker) Positions() []Position {
	out := make([]Position, len(br.positions))
	for i, p := range br.positions {
		out[i] = *p
	}
	return out
}

// OpenPositions returns copies of the instrument's open positions, FIFO by
// entry time. This is what strategies observe.
func (br *Broker) OpenPositions(instrument string) []Position {
	var out []Position
	for _, id := range br.open[instrument] {
		p := br.positions[id]
		if p.State == Open {
			out = append(out, *p)
		}
	}
	return out
}

func remove(ids []int, id int) []int {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

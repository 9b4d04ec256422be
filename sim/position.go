package sim

import (
	"fmt"
	"time"

	"github.com/rustyeddy/autosim/market"
)

// Side: +1 long, -1 short
type Side int8

const (
	Long  Side = +1
	Short Side = -1
)

func (s Side) String() string {
	if s == Long {
		return "long"
	}
	return "short"
}

type State uint8

const (
	Pending State = iota
	Open
	Closed
	Rejected
	Cancelled
)

func (s State) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Open:
		return "OPEN"
	case Closed:
		return "CLOSED"
	case Rejected:
		return "REJECTED"
	case Cancelled:
		return "CANCELLED"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// transitions lists the legal state machine edges. Everything else is a
// programming error; states are never revisited.
var transitions = map[State][]State{
	Pending: {Open, Rejected, Cancelled},
	Open:    {Closed, Cancelled},
}

// Position is a simulated order and, once filled, an open position. Owned
// exclusively by the Broker; everything else refers to positions by ID.
type Position struct {
	ID         int
	Instrument string
	Side       Side
	Size       float64 // base units, always positive

	// Set at submit.
	SubmitTime     time.Time
	StopDistance   float64 // quote currency
	TargetDistance float64

	// Set at fill.
	EntryPrice float64
	EntryTime  time.Time
	Stop       float64
	Target     float64

	State  State
	Reason string // rejection / cancellation detail

	marginHeld float64
}

func (p *Position) transition(to State) error {
	for _, next := range transitions[p.State] {
		if next == to {
			p.State = to
			return nil
		}
	}
	return fmt.Errorf("position %d: illegal transition %s -> %s", p.ID, p.State, to)
}

// fill moves the position to OPEN at price, deriving stop/target levels from
// the distances captured at submit.
func (p *Position) fill(price float64, t time.Time) error {
	if err := p.transition(Open); err != nil {
		return err
	}
	p.EntryPrice = price
	p.EntryTime = t
	d := float64(p.Side)
	p.Stop = price - d*p.StopDistance
	p.Target = price + d*p.TargetDistance
	return nil
}

// checkExit evaluates stop/target levels against a bar's range. When the
// bar spans both levels the stop wins: assuming the worse exit keeps
// backtested results from overstating profitability.
func (p *Position) checkExit(b market.Bar) (price float64, reason string, hit bool) {
	if p.State != Open {
		return 0, "", false
	}

	var stopHit, takeHit bool
	if p.Side == Long {
		stopHit = b.Low <= p.Stop
		takeHit = b.High >= p.Target
	} else {
		stopHit = b.High >= p.Stop
		takeHit = b.Low <= p.Target
	}

	switch {
	case stopHit:
		return p.Stop, "StopLoss", true
	case takeHit:
		return p.Target, "TakeProfit", true
	}
	return 0, "", false
}

// UnrealizedPL marks the position to market in quote-currency terms.
func (p *Position) UnrealizedPL(mark float64) float64 {
	return (mark - p.EntryPrice) * p.Size * float64(p.Side)
}

// Package risk converts order intents into sized, submittable orders.
package risk

import (
	"errors"
	"fmt"
	"math"

	"github.com/rustyeddy/autosim/market"
	"github.com/rustyeddy/autosim/sim"
)

// ErrRejected marks an intent that cannot become an order (bad stop
// distance, size rounding to zero). Rejections are absorbed into the
// simulation as REJECTED records, never treated as fatal.
var ErrRejected = errors.New("order rejected")

// Size converts an intent into an order.
//
// Risk mode: units = (balance * risk_pc/100) / stop distance in account
// currency, rounded down to the instrument's minimum trade size. Fixed mode
// uses the intent's size verbatim (also floored to the minimum unit). Both
// modes require a positive stop distance: the engine only models
// market-entry-with-stop/target.
func Size(intent sim.OrderIntent, balance float64, meta market.InstrumentMeta, quoteToAccount float64) (sim.Order, error) {
	if intent.StopDistance <= 0 {
		return sim.Order{}, fmt.Errorf("%w: stop distance %v must be positive", ErrRejected, intent.StopDistance)
	}
	if intent.RewardRisk <= 0 {
		return sim.Order{}, fmt.Errorf("%w: reward:risk %v must be positive", ErrRejected, intent.RewardRisk)
	}

	var units float64
	switch intent.Mode {
	case sim.SizeFixed:
		units = intent.Size

	case sim.SizeRisk:
		if intent.RiskPC <= 0 {
			return sim.Order{}, fmt.Errorf("%w: risk percent %v must be positive", ErrRejected, intent.RiskPC)
		}
		stopAccount := intent.StopDistance * quoteToAccount
		if stopAccount <= 0 {
			return sim.Order{}, fmt.Errorf("%w: stop distance converts to %v in account currency", ErrRejected, stopAccount)
		}
		riskAmount := balance * intent.RiskPC / 100
		units = riskAmount / stopAccount

	default:
		return sim.Order{}, fmt.Errorf("%w: unknown sizing mode %d", ErrRejected, intent.Mode)
	}

	units = floorToUnit(units, meta.MinimumTradeSize)
	if units <= 0 {
		return sim.Order{}, fmt.Errorf("%w: size rounds to zero units", ErrRejected)
	}

	return sim.Order{
		Instrument:     intent.Instrument,
		Side:           intent.Side,
		Size:           units,
		StopDistance:   intent.StopDistance,
		TargetDistance: intent.StopDistance * intent.RewardRisk,
	}, nil
}

func floorToUnit(units, minUnit float64) float64 {
	if minUnit <= 0 {
		minUnit = 1
	}
	return math.Floor(units/minUnit) * minUnit
}

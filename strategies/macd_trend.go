package strategies

import (
	"github.com/rustyeddy/autosim/backtest"
	"github.com/rustyeddy/autosim/config"
	"github.com/rustyeddy/autosim/indicators"
	"github.com/rustyeddy/autosim/sim"
)

func init() {
	Register("macd-trend", func(cfg config.StrategyConfig) backtest.Strategy {
		return NewMACDTrend(cfg)
	})
}

// MACDTrend trades MACD signal-line crossovers in the direction of a long
// EMA trend filter:
//   - long on a cross up below the zero line while price is above the EMA
//   - short on a cross down above the zero line while price is below the EMA
//
// Stops go behind the most recent swing low/high; the target is the stop
// distance times the configured reward:risk.
type MACDTrend struct {
	cfg config.StrategyConfig

	ema   *indicators.EMA
	macd  *indicators.MACD
	swing *indicators.Swing

	lastHist float64
	haveHist bool
}

func NewMACDTrend(cfg config.StrategyConfig) *MACDTrend {
	return &MACDTrend{
		cfg:   cfg,
		ema:   indicators.NewEMA(int(cfg.Param("ema_period", 200))),
		macd: indicators.NewMACD(
			int(cfg.Param("macd_fast", 5)),
			int(cfg.Param("macd_slow", 19)),
			int(cfg.Param("macd_smoothing", 9)),
		),
		swing: indicators.NewSwing(int(cfg.Param("swing_period", 10))),
	}
}

func (s *MACDTrend) Name() string { return "macd-trend" }

func (s *MACDTrend) Reset() {
	s.ema.Reset()
	s.macd.Reset()
	s.swing.Reset()
	s.lastHist = 0
	s.haveHist = false
}

func (s *MACDTrend) OnBar(ctx *backtest.Context) ([]sim.OrderIntent, error) {
	bar := ctx.Bar()

	s.ema.Update(bar.Close)
	s.macd.Update(bar.Close)
	s.swing.Update(bar)

	if !s.ema.Ready() || !s.macd.Ready() || !s.swing.Ready() {
		return nil, nil
	}

	hist := s.macd.Histogram()
	if !s.haveHist {
		s.lastHist = hist
		s.haveHist = true
		return nil, nil
	}
	crossUp := hist > 0 && s.lastHist <= 0
	crossDown := hist < 0 && s.lastHist >= 0
	s.lastHist = hist

	var side sim.Side
	var stopDistance float64
	switch {
	case crossUp && s.macd.Value() < 0 && bar.Close > s.ema.Value():
		side = sim.Long
		stopDistance = bar.Close - s.swing.Low()
	case crossDown && s.macd.Value() > 0 && bar.Close < s.ema.Value():
		side = sim.Short
		stopDistance = s.swing.High() - bar.Close
	default:
		return nil, nil
	}

	// A degenerate swing can produce a non-positive stop distance; the
	// intent is still emitted and sizing records the rejection.
	return []sim.OrderIntent{{
		Instrument:   ctx.Instrument,
		Side:         side,
		Mode:         s.cfg.SizingMode(),
		RiskPC:       s.cfg.RiskPC,
		StopDistance: stopDistance,
		RewardRisk:   s.cfg.RewardRisk,
		Size:         s.cfg.Size,
	}}, nil
}

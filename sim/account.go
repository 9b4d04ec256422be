package sim

import "fmt"

// AccountConfig is the virtual account's immutable configuration.
// CommissionRate is a percentage of closing notional, charged once per trade
// at close. Spread is the full bid/ask spread in quote-currency terms; fills
// pay half of it per side.
type AccountConfig struct {
	Currency       string
	InitialBalance float64
	Leverage       float64
	Spread         float64
	CommissionRate float64
	Hedging        bool
}

func (c AccountConfig) validate() error {
	if c.InitialBalance <= 0 {
		return fmt.Errorf("account: initial balance must be positive, got %v", c.InitialBalance)
	}
	if c.Leverage <= 0 {
		return fmt.Errorf("account: leverage must be positive, got %v", c.Leverage)
	}
	if c.Spread < 0 {
		return fmt.Errorf("account: spread must be non-negative, got %v", c.Spread)
	}
	if c.CommissionRate < 0 {
		return fmt.Errorf("account: commission rate must be non-negative, got %v", c.CommissionRate)
	}
	return nil
}

// Account owns balance, leverage and running margin. All mutation is
// serialized through the Broker's transition logic; balance only moves when a
// position closes.
type Account struct {
	AccountConfig

	Balance    float64
	MarginUsed float64
}

func NewAccount(cfg AccountConfig) (*Account, error) {
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Account{
		AccountConfig: cfg,
		Balance:       cfg.InitialBalance,
	}, nil
}

// FreeMargin is the margin still available for new exposure.
func (a *Account) FreeMargin() float64 {
	return a.Balance*a.Leverage - a.MarginUsed
}

// CanOpen reports whether notional (account currency) fits in free margin.
func (a *Account) CanOpen(notional float64) bool {
	return notional/a.Leverage <= a.FreeMargin()
}

// ReserveMargin reserves margin for notional and returns the amount held,
// so the exact reservation can be released on close.
func (a *Account) ReserveMargin(notional float64) float64 {
	m := notional / a.Leverage
	a.MarginUsed += m
	return m
}

func (a *Account) ReleaseMargin(held float64) {
	a.MarginUsed -= held
	if a.MarginUsed < 0 {
		a.MarginUsed = 0
	}
}

// ApplyCommission charges the configured rate on notional and returns the
// amount charged.
func (a *Account) ApplyCommission(notional float64) float64 {
	c := a.CommissionRate / 100 * notional
	a.Balance -= c
	return c
}

func (a *Account) Realize(pnl float64) {
	a.Balance += pnl
}

// FillPrice applies the entry cost model to a bar's open: longs pay the ask
// (open + spread/2), shorts receive the bid (open - spread/2).
func (a *Account) FillPrice(side Side, open float64) float64 {
	if side == Long {
		return open + a.Spread/2
	}
	return open - a.Spread/2
}

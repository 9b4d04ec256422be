package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/autosim/market"
	"github.com/rustyeddy/autosim/sim"
)

// ErrInvalid marks configuration rejected before any simulation work.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete backtest run configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Window   WindowConfig   `json:"window" yaml:"window"`
}

// AccountConfig configures the virtual account.
type AccountConfig struct {
	Currency       string  `json:"currency" yaml:"currency"`
	InitialBalance float64 `json:"initial_balance" yaml:"initial_balance"`
	Leverage       float64 `json:"leverage" yaml:"leverage"`
	Spread         float64 `json:"spread" yaml:"spread"`
	Commission     float64 `json:"commission" yaml:"commission"` // percent of closing notional
	Hedging        bool    `json:"hedging" yaml:"hedging"`
}

// Sim converts to the simulator's account configuration.
func (a AccountConfig) Sim() sim.AccountConfig {
	return sim.AccountConfig{
		Currency:       a.Currency,
		InitialBalance: a.InitialBalance,
		Leverage:       a.Leverage,
		Spread:         a.Spread,
		CommissionRate: a.Commission,
		Hedging:        a.Hedging,
	}
}

// StrategyConfig names a registered strategy and its parameters.
type StrategyConfig struct {
	Name       string             `json:"name" yaml:"name"`
	Sizing     string             `json:"sizing" yaml:"sizing"` // "risk" or "fixed"
	RiskPC     float64            `json:"risk_pc" yaml:"risk_pc"`
	Size       float64            `json:"size,omitempty" yaml:"size,omitempty"`
	RewardRisk float64            `json:"reward_risk" yaml:"reward_risk"`
	Parameters map[string]float64 `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Watchlist  []string           `json:"watchlist" yaml:"watchlist"`
}

// Param returns a named strategy parameter or def when absent.
func (s StrategyConfig) Param(name string, def float64) float64 {
	if v, ok := s.Parameters[name]; ok {
		return v
	}
	return def
}

// SizingMode maps the configured sizing string onto the simulator's mode.
func (s StrategyConfig) SizingMode() sim.SizingMode {
	if strings.EqualFold(s.Sizing, "fixed") {
		return sim.SizeFixed
	}
	return sim.SizeRisk
}

// DataConfig maps watchlist instruments to bar files.
type DataConfig struct {
	Directory string            `json:"directory" yaml:"directory"`
	Files     map[string]string `json:"files" yaml:"files"` // instrument -> file
}

// WindowConfig bounds the simulation window, dates as YYYY-MM-DD.
type WindowConfig struct {
	Start string `json:"start,omitempty" yaml:"start,omitempty"`
	End   string `json:"end,omitempty" yaml:"end,omitempty"`
}

const dateLayout = "2006-01-02"

func (w WindowConfig) Parse() (market.Window, error) {
	var win market.Window
	var err error
	if w.Start != "" {
		win.Start, err = time.Parse(dateLayout, w.Start)
		if err != nil {
			return market.Window{}, fmt.Errorf("%w: window.start %q: %v", ErrInvalid, w.Start, err)
		}
	}
	if w.End != "" {
		win.End, err = time.Parse(dateLayout, w.End)
		if err != nil {
			return market.Window{}, fmt.Errorf("%w: window.end %q: %v", ErrInvalid, w.End, err)
		}
	}
	if !win.Start.IsZero() && !win.End.IsZero() && !win.Start.Before(win.End) {
		return market.Window{}, fmt.Errorf("%w: window start %s not before end %s", ErrInvalid, w.Start, w.End)
	}
	return win, nil
}

// LoadFromFile loads configuration from a YAML or JSON file and validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if yerr := yaml.Unmarshal(data, cfg); yerr != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("%w: parse %s (tried YAML and JSON): %v", ErrInvalid, path, yerr)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveToFile writes the configuration, format chosen by extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate rejects malformed configuration before a run is attempted.
func (c *Config) Validate() error {
	if c.Account.InitialBalance <= 0 {
		return fmt.Errorf("%w: account.initial_balance must be positive", ErrInvalid)
	}
	if c.Account.Leverage <= 0 {
		return fmt.Errorf("%w: account.leverage must be positive", ErrInvalid)
	}
	if c.Account.Spread < 0 {
		return fmt.Errorf("%w: account.spread must be non-negative", ErrInvalid)
	}
	if c.Account.Commission < 0 {
		return fmt.Errorf("%w: account.commission must be non-negative", ErrInvalid)
	}

	if c.Strategy.Name == "" {
		return fmt.Errorf("%w: strategy.name is required", ErrInvalid)
	}
	switch strings.ToLower(c.Strategy.Sizing) {
	case "", "risk":
		if c.Strategy.RiskPC <= 0 || c.Strategy.RiskPC > 100 {
			return fmt.Errorf("%w: strategy.risk_pc must be in (0, 100]", ErrInvalid)
		}
	case "fixed":
		if c.Strategy.Size <= 0 {
			return fmt.Errorf("%w: strategy.size must be positive for fixed sizing", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: strategy.sizing must be \"risk\" or \"fixed\", got %q", ErrInvalid, c.Strategy.Sizing)
	}
	if c.Strategy.RewardRisk <= 0 {
		return fmt.Errorf("%w: strategy.reward_risk must be positive", ErrInvalid)
	}
	if len(c.Strategy.Watchlist) == 0 {
		return fmt.Errorf("%w: strategy.watchlist is empty", ErrInvalid)
	}

	seen := make(map[string]bool)
	for _, instr := range c.Strategy.Watchlist {
		if seen[instr] {
			return fmt.Errorf("%w: duplicate watchlist instrument %q", ErrInvalid, instr)
		}
		seen[instr] = true
		if _, ok := c.Data.Files[instr]; !ok {
			return fmt.Errorf("%w: watchlist instrument %q has no data file", ErrInvalid, instr)
		}
	}

	if _, err := c.Window.Parse(); err != nil {
		return err
	}
	return nil
}

// Default returns a runnable starting configuration.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			Currency:       "USD",
			InitialBalance: 1000,
			Leverage:       30,
			Spread:         0.00005,
			Commission:     0.5,
			Hedging:        true,
		},
		Strategy: StrategyConfig{
			Name:       "macd-trend",
			Sizing:     "risk",
			RiskPC:     1.5,
			RewardRisk: 1.5,
			Parameters: map[string]float64{
				"ema_period":     200,
				"macd_fast":      5,
				"macd_slow":      19,
				"macd_smoothing": 9,
				"swing_period":   10,
			},
			Watchlist: []string{"EUR_USD"},
		},
		Data: DataConfig{
			Directory: "./data",
			Files:     map[string]string{"EUR_USD": "EUR_USD_H4.csv"},
		},
		Window: WindowConfig{Start: "2021-01-01", End: "2022-01-01"},
	}
}

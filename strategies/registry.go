// Package strategies holds the built-in strategies and the registry that
// maps configured strategy names onto factories. Strategies keep per-bar
// indicator state, so the registry hands out factories rather than shared
// instances: the runner builds one instance per instrument.
package strategies

import (
	"fmt"
	"sort"

	"github.com/rustyeddy/autosim/backtest"
	"github.com/rustyeddy/autosim/config"
)

// Factory builds a strategy instance from its configuration.
type Factory func(cfg config.StrategyConfig) backtest.Strategy

var registry = make(map[string]Factory)

func Register(name string, f Factory) {
	registry[name] = f
}

// Lookup resolves a configured strategy name. Unknown names are a
// configuration error surfaced before the run starts.
func Lookup(name string) (Factory, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown strategy %q (available: %v)",
			config.ErrInvalid, name, Names())
	}
	return f, nil
}

// Names lists registered strategies, sorted for stable output.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

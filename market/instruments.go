// market/instruments.go
package market

import "fmt"

type InstrumentMeta struct {
	Name                string
	BaseCurrency        string
	QuoteCurrency       string
	PipLocation         int
	TradeUnitsPrecision int
	MinimumTradeSize    float64
}

var Instruments = map[string]InstrumentMeta{
	"EUR_USD": {
		Name:             "EUR_USD",
		BaseCurrency:     "EUR",
		QuoteCurrency:    "USD",
		PipLocation:      -4,
		MinimumTradeSize: 1,
	},
	"GBP_USD": {
		Name:             "GBP_USD",
		BaseCurrency:     "GBP",
		QuoteCurrency:    "USD",
		PipLocation:      -4,
		MinimumTradeSize: 1,
	},
	"USD_JPY": {
		Name:             "USD_JPY",
		BaseCurrency:     "USD",
		QuoteCurrency:    "JPY",
		PipLocation:      -2,
		MinimumTradeSize: 1,
	},
}

// Meta looks up instrument metadata. Unknown instruments fall back to a
// generic spot contract so synthetic test instruments (EUR_USD2 etc.) work
// without registration; the quote currency is assumed to match the account.
func Meta(instrument string) InstrumentMeta {
	if m, ok := Instruments[instrument]; ok {
		return m
	}
	return InstrumentMeta{
		Name:             instrument,
		PipLocation:      -4,
		MinimumTradeSize: 1,
	}
}

// QuoteToAccountRate converts one unit of the instrument's quote currency
// into the account currency, marked at mid.
func QuoteToAccountRate(meta InstrumentMeta, accountCurrency string, mid float64) (float64, error) {
	// Generic instruments quote in the account currency.
	if meta.QuoteCurrency == "" || meta.QuoteCurrency == accountCurrency {
		return 1.0, nil
	}

	// Account currency is the base (USD_JPY with a USD account):
	// mid gives quote per base, we want base per quote.
	if meta.BaseCurrency == accountCurrency {
		if mid <= 0 {
			return 0, fmt.Errorf("conversion: non-positive mid %v for %s", mid, meta.Name)
		}
		return 1.0 / mid, nil
	}

	return 0, fmt.Errorf(
		"conversion: cross rate %s -> %s not implemented",
		meta.QuoteCurrency, accountCurrency,
	)
}

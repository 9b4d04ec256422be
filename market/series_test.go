package market

import (
	"errors"
	"testing"
	"time"
)

func hour(i int) time.Time {
	return time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour)
}

func mkBars(n int) []Bar {
	bars := make([]Bar, n)
	for i := range bars {
		bars[i] = Bar{Time: hour(i), Open: 1.10, High: 1.11, Low: 1.09, Close: 1.105}
	}
	return bars
}

func TestNewSeriesValidates(t *testing.T) {
	if _, err := NewSeries("", mkBars(2)); !errors.Is(err, ErrData) {
		t.Fatalf("empty instrument: got %v", err)
	}

	dup := mkBars(3)
	dup[2].Time = dup[1].Time
	if _, err := NewSeries("EUR_USD", dup); !errors.Is(err, ErrData) {
		t.Fatalf("duplicate timestamp: got %v", err)
	}

	ooo := mkBars(3)
	ooo[1], ooo[2] = ooo[2], ooo[1]
	if _, err := NewSeries("EUR_USD", ooo); !errors.Is(err, ErrData) {
		t.Fatalf("out of order: got %v", err)
	}

	wrong := mkBars(2)
	wrong[1].Instrument = "GBP_USD"
	if _, err := NewSeries("EUR_USD", wrong); !errors.Is(err, ErrData) {
		t.Fatalf("mismatched instrument: got %v", err)
	}

	zero := mkBars(2)
	zero[0].Time = time.Time{}
	if _, err := NewSeries("EUR_USD", zero); !errors.Is(err, ErrData) {
		t.Fatalf("zero timestamp: got %v", err)
	}
}

func TestNewSeriesStampsInstrument(t *testing.T) {
	s, err := NewSeries("EUR_USD", mkBars(3))
	if err != nil {
		t.Fatal(err)
	}
	for i, b := range s.Bars {
		if b.Instrument != "EUR_USD" {
			t.Fatalf("bar %d instrument %q", i, b.Instrument)
		}
	}
}

func TestSeriesSliceIsCausal(t *testing.T) {
	s, err := NewSeries("EUR_USD", mkBars(5))
	if err != nil {
		t.Fatal(err)
	}
	h := s.Slice(2)
	if len(h) != 3 {
		t.Fatalf("slice(2) len %d", len(h))
	}
	if !h[len(h)-1].Time.Equal(hour(2)) {
		t.Fatalf("last bar at %v", h[len(h)-1].Time)
	}
}

func TestSeriesWindow(t *testing.T) {
	s, err := NewSeries("EUR_USD", mkBars(10))
	if err != nil {
		t.Fatal(err)
	}

	w := s.Window(Window{Start: hour(2), End: hour(7)})
	if w.Len() != 5 {
		t.Fatalf("window len %d", w.Len())
	}
	if !w.Bars[0].Time.Equal(hour(2)) || !w.Bars[4].Time.Equal(hour(6)) {
		t.Fatalf("window bounds %v..%v", w.Bars[0].Time, w.Bars[4].Time)
	}

	// Zero sides are unbounded.
	if s.Window(Window{}).Len() != 10 {
		t.Fatal("open window should keep everything")
	}
	if got := s.Window(Window{End: hour(3)}).Len(); got != 3 {
		t.Fatalf("end-only window len %d", got)
	}
}

func TestWindowContains(t *testing.T) {
	w := Window{Start: hour(1), End: hour(3)}
	if w.Contains(hour(0)) {
		t.Fatal("before start")
	}
	if !w.Contains(hour(1)) {
		t.Fatal("start is inclusive")
	}
	if w.Contains(hour(3)) {
		t.Fatal("end is exclusive")
	}
}

func TestQuoteToAccountRate(t *testing.T) {
	usd := Meta("EUR_USD")
	r, err := QuoteToAccountRate(usd, "USD", 1.20)
	if err != nil || r != 1.0 {
		t.Fatalf("quote==account: %v %v", r, err)
	}

	jpy := Meta("USD_JPY")
	r, err = QuoteToAccountRate(jpy, "USD", 110.0)
	if err != nil {
		t.Fatal(err)
	}
	if got := 1.0 / 110.0; r != got {
		t.Fatalf("base==account: got %v want %v", r, got)
	}

	if _, err = QuoteToAccountRate(jpy, "EUR", 110.0); err == nil {
		t.Fatal("cross rate should error")
	}
	if _, err = QuoteToAccountRate(jpy, "USD", 0); err == nil {
		t.Fatal("zero mid should error")
	}

	// Unknown instruments quote in the account currency.
	r, err = QuoteToAccountRate(Meta("EUR_USD2"), "USD", 1.0)
	if err != nil || r != 1.0 {
		t.Fatalf("generic meta: %v %v", r, err)
	}
}

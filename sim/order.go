package sim

// SizingMode selects how an order intent is converted into units.
type SizingMode uint8

const (
	// SizeRisk derives units from a percentage of balance risked against the
	// stop distance.
	SizeRisk SizingMode = iota
	// SizeFixed uses the intent's explicit size verbatim.
	SizeFixed
)

func (m SizingMode) String() string {
	if m == SizeFixed {
		return "fixed"
	}
	return "risk"
}

// OrderIntent is what a strategy emits: a request to enter the market with a
// protective stop and a reward:risk-derived target. Intents are produced
// fresh each bar and never persisted.
type OrderIntent struct {
	Instrument string
	Side       Side
	Mode       SizingMode

	RiskPC       float64 // percent of balance risked (risk mode)
	StopDistance float64 // quote currency, > 0
	RewardRisk   float64 // target distance = stop distance * RewardRisk
	Size         float64 // fixed mode only
}

// Order is a sized, submittable order. Produced by the sizing layer.
type Order struct {
	Instrument     string
	Side           Side
	Size           float64
	StopDistance   float64
	TargetDistance float64
}

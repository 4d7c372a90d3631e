// Package transport estimates intercity transport costs from distance.
//
// Two independent tier tables are maintained: a reference-currency
// table used by the recommendation ranking engine, and a detailed
// local table (durations, display names, availability) used for
// trip-cost display. Their band boundaries and rates differ and are
// deliberately not unified.
package transport

import "math"

// Mode names shared by the reference table.
const (
	ModeBus            = "bus"
	ModeTrain          = "train"
	ModeTaxi           = "taxi"
	ModeBudgetFlight   = "budget_flight"
	ModeStandardFlight = "standard_flight"
	ModePremiumFlight  = "premium_flight"
	ModeBusinessFlight = "business_flight"
)

// Estimate is a one-way transport cost estimate in reference currency
// units. Round-trip doubling is the caller's responsibility.
type Estimate struct {
	Options     map[string]float64 `json:"options"`
	Recommended string             `json:"recommended"`
}

// RecommendedCost returns the cost of the recommended mode.
func (e Estimate) RecommendedCost() float64 {
	return e.Options[e.Recommended]
}

// band is one entry of an ordered tier table. Bands are half-open
// [lower, upper): a distance belongs to the first band whose upper
// bound exceeds it.
type band[T any] struct {
	upper float64
	build func(d float64) T
}

func lookup[T any](bands []band[T], d float64) T {
	for _, b := range bands {
		if d < b.upper {
			return b.build(d)
		}
	}
	// Unreachable: the last band's upper bound is +Inf.
	return bands[len(bands)-1].build(d)
}

var referenceBands = []band[Estimate]{
	{upper: 50, build: func(d float64) Estimate {
		return Estimate{
			Options: map[string]float64{
				ModeBus:  round2(d * 0.50),
				ModeTaxi: round2(d * 1.50),
			},
			Recommended: ModeBus,
		}
	}},
	{upper: 300, build: func(d float64) Estimate {
		return Estimate{
			Options: map[string]float64{
				ModeBus:   round2(50 + (d-50)*0.15),
				ModeTrain: round2(40 + (d-50)*0.20),
				ModeTaxi:  round2(d * 1.20),
			},
			Recommended: ModeBus,
		}
	}},
	{upper: 1000, build: func(d float64) Estimate {
		return Estimate{
			Options: map[string]float64{
				ModeTrain:          round2(80 + (d-300)*0.12),
				ModeBudgetFlight:   round2(100 + (d-300)*0.25),
				ModeStandardFlight: round2(150 + (d-300)*0.35),
			},
			Recommended: ModeBudgetFlight,
		}
	}},
	{upper: 3000, build: func(d float64) Estimate {
		return Estimate{
			Options: map[string]float64{
				ModeBudgetFlight:   round2(250 + (d-1000)*0.15),
				ModeStandardFlight: round2(400 + (d-1000)*0.20),
				ModePremiumFlight:  round2(800 + (d-1000)*0.30),
			},
			Recommended: ModeBudgetFlight,
		}
	}},
	{upper: math.Inf(1), build: func(d float64) Estimate {
		return Estimate{
			Options: map[string]float64{
				ModeBudgetFlight:   round2(550 + (d-3000)*0.08),
				ModeStandardFlight: round2(900 + (d-3000)*0.12),
				ModeBusinessFlight: round2(2000 + (d-3000)*0.25),
			},
			Recommended: ModeBudgetFlight,
		}
	}},
}

// EstimateCost returns the reference-currency tier estimate for a
// one-way trip of d kilometers.
func EstimateCost(d float64) Estimate {
	return lookup(referenceBands, d)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

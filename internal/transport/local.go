package transport

import (
	"fmt"
	"math"
)

// LocalOption is one transport mode in the detailed local tier table.
// Costs are whole local currency units; durations are door-to-door
// estimates including boarding overhead where relevant.
type LocalOption struct {
	Mode            string  `json:"mode"`
	Name            string  `json:"name"`
	Icon            string  `json:"icon"`
	Cost            float64 `json:"cost"`
	DurationMinutes int     `json:"duration_minutes"`
	Available       bool    `json:"available"`
}

// Duration returns the duration formatted as "2h 5m" or "45m".
func (o LocalOption) Duration() string {
	h := o.DurationMinutes / 60
	m := o.DurationMinutes % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// LocalEstimate is a one-way estimate from the detailed local table.
type LocalEstimate struct {
	Options     []LocalOption `json:"options"`
	Recommended string        `json:"recommended"`
}

// RecommendedCost returns the cost of the recommended mode, or 0 if
// the recommended mode is somehow absent from the options.
func (e LocalEstimate) RecommendedCost() float64 {
	for _, o := range e.Options {
		if o.Mode == e.Recommended {
			return o.Cost
		}
	}
	return 0
}

const (
	localModeAuto   = "auto"
	localModeBus    = "bus"
	localModeTrain  = "train"
	localModeCab    = "cab"
	localModeFlight = "flight"
)

var localBands = []band[LocalEstimate]{
	// Intracity.
	{upper: 20, build: func(d float64) LocalEstimate {
		return LocalEstimate{
			Options: []LocalOption{
				{Mode: localModeAuto, Name: "Auto/Rickshaw", Icon: "🛺",
					Cost: math.Round(math.Max(50, d*15)), DurationMinutes: int(d * 3), Available: true},
				{Mode: localModeCab, Name: "Cab/Taxi", Icon: "🚕",
					Cost: math.Round(math.Max(80, d*18)), DurationMinutes: int(d * 2.5), Available: true},
				{Mode: localModeBus, Name: "Local Bus", Icon: "🚌",
					Cost: math.Round(math.Max(20, d*2)), DurationMinutes: int(d * 4), Available: true},
			},
			Recommended: localModeAuto,
		}
	}},
	// Intercity.
	{upper: 100, build: func(d float64) LocalEstimate {
		return LocalEstimate{
			Options: []LocalOption{
				{Mode: localModeBus, Name: "AC Bus", Icon: "🚌",
					Cost: math.Round(math.Max(100, d*1.5)), DurationMinutes: int(d * 1.5), Available: true},
				{Mode: localModeTrain, Name: "Train (2nd AC)", Icon: "🚆",
					Cost: math.Round(math.Max(150, d*2)), DurationMinutes: int(d * 1.2), Available: true},
				{Mode: localModeCab, Name: "Cab/Taxi", Icon: "🚕",
					Cost: math.Round(math.Max(500, d*12)), DurationMinutes: int(d * 1.2), Available: true},
			},
			Recommended: localModeTrain,
		}
	}},
	// Interstate. Flights only operate above 300 km in this band.
	{upper: 500, build: func(d float64) LocalEstimate {
		return LocalEstimate{
			Options: []LocalOption{
				{Mode: localModeBus, Name: "AC Sleeper Bus", Icon: "🚌",
					Cost: math.Round(math.Max(400, d*1.2)), DurationMinutes: int(d * 1.5), Available: true},
				{Mode: localModeTrain, Name: "Train (2AC/3AC)", Icon: "🚆",
					Cost: math.Round(math.Max(600, d*1.8)), DurationMinutes: int(d), Available: true},
				{Mode: localModeFlight, Name: "Flight (Economy)", Icon: "✈️",
					Cost: math.Round(math.Max(2500, math.Min(8000, d*5))), DurationMinutes: int(d*0.5) + 120, Available: d > 300},
				{Mode: localModeCab, Name: "Cab/Taxi", Icon: "🚕",
					Cost: math.Round(math.Max(3000, d*10)), DurationMinutes: int(d * 1.2), Available: true},
			},
			Recommended: localModeTrain,
		}
	}},
	// Cross-country.
	{upper: 1500, build: func(d float64) LocalEstimate {
		return LocalEstimate{
			Options: []LocalOption{
				{Mode: localModeTrain, Name: "Train (AC/Sleeper)", Icon: "🚆",
					Cost: math.Round(math.Max(1200, d*1.5)), DurationMinutes: int(d * 0.8), Available: true},
				{Mode: localModeFlight, Name: "Flight (Economy)", Icon: "✈️",
					Cost: math.Round(math.Max(3500, math.Min(12000, d*4))), DurationMinutes: int(d*0.4) + 150, Available: true},
				{Mode: localModeBus, Name: "AC Sleeper Bus", Icon: "🚌",
					Cost: math.Round(math.Max(1000, d)), DurationMinutes: int(d * 1.5), Available: true},
			},
			Recommended: localModeFlight,
		}
	}},
	// International. Trains drop out beyond 3000 km.
	{upper: math.Inf(1), build: func(d float64) LocalEstimate {
		return LocalEstimate{
			Options: []LocalOption{
				{Mode: localModeFlight, Name: "Flight (Economy)", Icon: "✈️",
					Cost: math.Round(math.Min(50000, math.Max(5000, d*3.5))), DurationMinutes: int(d*0.35) + 180, Available: true},
				{Mode: localModeTrain, Name: "Train (AC)", Icon: "🚆",
					Cost: math.Round(math.Max(2000, d*1.2)), DurationMinutes: int(d * 0.8), Available: d < 3000},
			},
			Recommended: localModeFlight,
		}
	}},
}

// EstimateLocal returns the detailed local tier estimate for a one-way
// trip of d kilometers.
func EstimateLocal(d float64) LocalEstimate {
	return lookup(localBands, d)
}

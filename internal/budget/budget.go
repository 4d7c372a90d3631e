// Package budget turns distance, duration, and destination cost data
// into trip cost estimates. Two calculation paths exist: Synthesize,
// the full nine-component breakdown used by the recommendation
// ranker, and TripCost, a simpler cost-of-living-indexed path used by
// the trip-plan display. Their category splits and surcharges differ
// and must not be merged.
package budget

import (
	"fmt"
	"math"

	"github.com/roamio/tripscout/internal/transport"
)

// Tier selects the cost multipliers applied to a trip.
type Tier string

const (
	TierBudget   Tier = "budget"
	TierMidRange Tier = "mid-range"
	TierLuxury   Tier = "luxury"
)

// ParseTier validates a tier string from an API caller. Unknown tiers
// are rejected; the empty string maps to the documented mid-range
// default.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierBudget, TierMidRange, TierLuxury:
		return Tier(s), nil
	case "":
		return TierMidRange, nil
	}
	return "", fmt.Errorf("unknown budget tier %q (want budget, mid-range, or luxury)", s)
}

// accommodationMultiplier also scales local transport at the
// destination; food has its own scale.
func (t Tier) accommodationMultiplier() float64 {
	switch t {
	case TierBudget:
		return 0.6
	case TierLuxury:
		return 2.5
	}
	return 1.0
}

func (t Tier) foodMultiplier() float64 {
	switch t {
	case TierBudget:
		return 0.7
	case TierLuxury:
		return 2.0
	}
	return 1.0
}

// Breakdown is a fully derived trip budget. It is a computed value,
// re-derived per request and never persisted. All monetary fields are
// rounded to 2 decimals.
type Breakdown struct {
	Transportation        float64            `json:"transportation"`
	TransportationOptions transport.Estimate `json:"transportation_options"`
	Accommodation         float64            `json:"accommodation"`
	AccommodationPerNight float64            `json:"accommodation_per_night"`
	Food                  float64            `json:"food"`
	FoodPerDay            float64            `json:"food_per_day"`
	LocalTransport        float64            `json:"local_transport"`
	Activities            float64            `json:"activities"`
	Miscellaneous         float64            `json:"miscellaneous"`
	Insurance             float64            `json:"insurance"`
	Contingency           float64            `json:"contingency"`
	Subtotal              float64            `json:"subtotal"`
	Total                 float64            `json:"total"`
	PerDayAverage         float64            `json:"per_day_average"`
}

// Synthesize computes the comprehensive budget for a trip of
// durationDays to a destination distanceKm away whose average daily
// spend is dailyCost. Unknown tiers fall back to mid-range
// multipliers; callers wanting strict validation use ParseTier first.
// durationDays <= 0 yields a zero per-day average rather than an
// error.
func Synthesize(distanceKm float64, durationDays int, dailyCost float64, tier Tier) Breakdown {
	est := transport.EstimateCost(distanceKm)
	transportTotal := est.RecommendedCost() * 2 // round trip

	accomMult := tier.accommodationMultiplier()
	accomPerNight := dailyCost * 0.4 * accomMult
	accommodation := accomPerNight * float64(durationDays)

	foodPerDay := dailyCost * 0.35 * tier.foodMultiplier()
	food := foodPerDay * float64(durationDays)

	localTransport := dailyCost * 0.15 * accomMult * float64(durationDays)
	activities := dailyCost * 0.10 * float64(durationDays)
	misc := (food + activities) * 0.15

	subtotal := transportTotal + accommodation + food + localTransport + activities + misc
	insurance := subtotal * 0.05
	contingency := (subtotal + insurance) * 0.10
	total := subtotal + insurance + contingency

	perDay := 0.0
	if durationDays > 0 {
		perDay = total / float64(durationDays)
	}

	return Breakdown{
		Transportation:        round2(transportTotal),
		TransportationOptions: est,
		Accommodation:         round2(accommodation),
		AccommodationPerNight: round2(accomPerNight),
		Food:                  round2(food),
		FoodPerDay:            round2(foodPerDay),
		LocalTransport:        round2(localTransport),
		Activities:            round2(activities),
		Miscellaneous:         round2(misc),
		Insurance:             round2(insurance),
		Contingency:           round2(contingency),
		Subtotal:              round2(subtotal),
		Total:                 round2(total),
		PerDayAverage:         round2(perDay),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

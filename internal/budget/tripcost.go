package budget

import (
	"math"
	"strings"

	"github.com/roamio/tripscout/internal/geo"
	"github.com/roamio/tripscout/internal/transport"
)

// Base daily costs in INR for a mid-range traveler at cost index 1.0
// (Mumbai baseline).
var baseDailyCosts = map[string]float64{
	"accommodation":   2000,
	"food":            800,
	"local_transport": 400,
	"activities":      500,
}

// costOfLivingIndex is normalized so Mumbai = 100.
var costOfLivingIndex = map[string]float64{
	// India
	"mumbai": 100, "delhi": 95, "bangalore": 98, "bengaluru": 98,
	"chennai": 85, "kolkata": 80, "hyderabad": 90, "pune": 92,
	"ahmedabad": 80, "jaipur": 75, "goa": 110, "kerala": 85,

	// Asia
	"bangkok": 85, "tokyo": 180, "singapore": 165, "hong kong": 170,
	"seoul": 150, "beijing": 120, "shanghai": 130, "kuala lumpur": 75,
	"bali": 70, "phuket": 80, "hanoi": 65, "ho chi minh": 70,
	"dubai": 140, "istanbul": 90, "manila": 70,

	// Europe
	"london": 190, "paris": 180, "rome": 160, "barcelona": 155,
	"amsterdam": 175, "berlin": 165, "vienna": 160, "prague": 120,
	"budapest": 100, "madrid": 150, "lisbon": 130, "athens": 120,

	// Americas
	"new york": 200, "los angeles": 185, "san francisco": 195,
	"chicago": 170, "miami": 165, "toronto": 170, "vancouver": 175,
	"mexico city": 85, "cancun": 95, "rio de janeiro": 90,
	"buenos aires": 80, "lima": 75,

	// Oceania
	"sydney": 180, "melbourne": 175, "auckland": 170,

	// Africa
	"cape town": 95, "cairo": 70, "marrakech": 75, "nairobi": 80,
}

func (t Tier) budgetMultiplier() float64 {
	switch t {
	case TierBudget:
		return 0.6
	case TierLuxury:
		return 2.5
	}
	return 1.0
}

// CostIndex returns the cost-of-living index for a destination as a
// multiplier (Mumbai = 1.0). Unlisted destinations default to 1.0;
// partial name matches are accepted in either direction.
func CostIndex(destination string) float64 {
	name := strings.ToLower(strings.TrimSpace(destination))

	if idx, ok := costOfLivingIndex[name]; ok {
		return idx / 100.0
	}
	for city, idx := range costOfLivingIndex {
		if strings.Contains(name, city) || strings.Contains(city, name) {
			return idx / 100.0
		}
	}
	return 1.0
}

// DailyCosts holds per-category daily rates for a destination,
// rounded to whole currency units.
type DailyCosts struct {
	Accommodation  float64 `json:"accommodation"`
	Food           float64 `json:"food"`
	LocalTransport float64 `json:"local_transport"`
	Activities     float64 `json:"activities"`
	Total          float64 `json:"total"`
}

// DailyCostsFor scales the base category rates by the destination's
// cost index and the tier multiplier.
func DailyCostsFor(destination string, tier Tier) DailyCosts {
	scale := CostIndex(destination) * tier.budgetMultiplier()

	d := DailyCosts{
		Accommodation:  math.Round(baseDailyCosts["accommodation"] * scale),
		Food:           math.Round(baseDailyCosts["food"] * scale),
		LocalTransport: math.Round(baseDailyCosts["local_transport"] * scale),
		Activities:     math.Round(baseDailyCosts["activities"] * scale),
	}
	d.Total = d.Accommodation + d.Food + d.LocalTransport + d.Activities
	return d
}

// TripCostParams are the inputs to the display-oriented trip cost
// path. Origin and Destination coordinates are optional; without both
// the estimate omits intercity transport.
type TripCostParams struct {
	Destination  string
	DurationDays int
	Tier         Tier
	Travelers    int
	Origin       *geo.Coordinate
	DestCoord    *geo.Coordinate
}

// TransportModeDetail is one mode of the local tier table expanded
// with round-trip pricing for the whole party.
type TransportModeDetail struct {
	Name            string  `json:"name"`
	Icon            string  `json:"icon"`
	OneWayCost      float64 `json:"one_way_cost"`
	RoundTripCost   float64 `json:"round_trip_cost"`
	Duration        string  `json:"duration"`
	DurationMinutes int     `json:"duration_minutes"`
	Available       bool    `json:"available"`
}

// TransportDetails describes the intercity leg of a trip estimate.
type TransportDetails struct {
	DistanceKm            float64                        `json:"distance_km"`
	RecommendedMode       string                         `json:"recommended_mode"`
	RecommendedCostOneWay float64                        `json:"recommended_cost_one_way"`
	RecommendedCostRound  float64                        `json:"recommended_cost_round_trip"`
	AllOptions            map[string]TransportModeDetail `json:"all_options"`
}

// TripCostBreakdown is the category split of the simpler budget path.
// Unlike Breakdown there is no insurance or contingency layer; a flat
// 10% miscellaneous surcharge covers both.
type TripCostBreakdown struct {
	Accommodation   float64 `json:"accommodation"`
	Food            float64 `json:"food"`
	LocalTransport  float64 `json:"transportation_local"`
	TransportToDest float64 `json:"transportation_to_destination"`
	Activities      float64 `json:"activities"`
	Miscellaneous   float64 `json:"miscellaneous"`
	Total           float64 `json:"total"`
}

// TripCostEstimate is the full result of the display-oriented path.
type TripCostEstimate struct {
	Destination   string            `json:"destination"`
	DurationDays  int               `json:"duration_days"`
	Tier          Tier              `json:"budget_category"`
	Travelers     int               `json:"travelers"`
	Currency      string            `json:"currency"`
	Breakdown     TripCostBreakdown `json:"cost_breakdown"`
	PerPersonCost float64           `json:"per_person_cost"`
	Daily         DailyCosts        `json:"daily_breakdown"`
	CostIndex     float64           `json:"cost_index"`
	DistanceKm    *float64          `json:"distance_km,omitempty"`
	Transport     *TransportDetails `json:"transportation_details,omitempty"`
}

// TripCost estimates a trip using fixed category base rates scaled by
// cost of living and tier. Accommodation is billed per night
// (max(1, days-1)); food, local transport, and activities per day;
// everything multiplied by the traveler count.
func TripCost(p TripCostParams) TripCostEstimate {
	if p.Travelers < 1 {
		p.Travelers = 1
	}
	daily := DailyCostsFor(p.Destination, p.Tier)

	nights := p.DurationDays - 1
	if nights < 1 {
		nights = 1
	}

	travelers := float64(p.Travelers)
	days := float64(p.DurationDays)

	accommodation := daily.Accommodation * float64(nights) * travelers
	food := daily.Food * days * travelers
	localTransport := daily.LocalTransport * days * travelers
	activities := daily.Activities * days * travelers

	var (
		transportToDest float64
		details         *TransportDetails
		distanceKm      *float64
	)
	if p.Origin != nil && p.DestCoord != nil {
		d := geo.DistanceKm(*p.Origin, *p.DestCoord)
		est := transport.EstimateLocal(d)
		transportToDest = math.Round(est.RecommendedCost() * 2 * travelers)

		modes := make(map[string]TransportModeDetail, len(est.Options))
		for _, o := range est.Options {
			modes[o.Mode] = TransportModeDetail{
				Name:            o.Name,
				Icon:            o.Icon,
				OneWayCost:      o.Cost,
				RoundTripCost:   o.Cost * 2 * travelers,
				Duration:        o.Duration(),
				DurationMinutes: o.DurationMinutes,
				Available:       o.Available,
			}
		}

		rounded := math.Round(d*10) / 10
		distanceKm = &rounded
		details = &TransportDetails{
			DistanceKm:            rounded,
			RecommendedMode:       est.Recommended,
			RecommendedCostOneWay: math.Round(est.RecommendedCost()),
			RecommendedCostRound:  transportToDest,
			AllOptions:            modes,
		}
	}

	misc := math.Round((accommodation + food + localTransport + activities) * 0.1)
	total := accommodation + food + localTransport + activities + transportToDest + misc

	return TripCostEstimate{
		Destination:  p.Destination,
		DurationDays: p.DurationDays,
		Tier:         p.Tier,
		Travelers:    p.Travelers,
		Currency:     "INR",
		Breakdown: TripCostBreakdown{
			Accommodation:   math.Round(accommodation),
			Food:            math.Round(food),
			LocalTransport:  math.Round(localTransport),
			TransportToDest: math.Round(transportToDest),
			Activities:      math.Round(activities),
			Miscellaneous:   misc,
			Total:           math.Round(total),
		},
		PerPersonCost: math.Round(total / travelers),
		Daily:         daily,
		CostIndex:     CostIndex(p.Destination),
		DistanceKm:    distanceKm,
		Transport:     details,
	}
}

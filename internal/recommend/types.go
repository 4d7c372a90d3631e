// Package recommend scores and ranks candidate destinations for a
// user's filter criteria. Ranking is a pure function over the
// candidate snapshot it is given: no I/O, no shared state, safe to
// run concurrently across requests.
package recommend

import (
	"fmt"
	"strings"
	"time"

	"github.com/roamio/tripscout/internal/budget"
	"github.com/roamio/tripscout/internal/geo"
	"github.com/roamio/tripscout/internal/transport"
)

// Destination is a stored destination record. Fields the source data
// may omit are pointers so "or default" fallbacks in scoring stay
// explicit.
type Destination struct {
	ID                     int64
	Title                  string
	Description            string
	Category               string
	BudgetTier             budget.Tier
	Latitude               *float64
	Longitude              *float64
	Website                string
	Country                string
	City                   string
	AverageCostPerDay      *float64
	BestTimeToVisit        string
	Rating                 *float64
	ReviewCount            int
	PopularityScore        float64
	Tags                   string // comma-delimited, as stored
	EstimatedDurationHours *float64
	CreatedAt              time.Time
}

// Coordinate returns the destination's location, or false when either
// component is missing.
func (d Destination) Coordinate() (geo.Coordinate, bool) {
	if d.Latitude == nil || d.Longitude == nil {
		return geo.Coordinate{}, false
	}
	return geo.Coordinate{Lat: *d.Latitude, Lon: *d.Longitude}, true
}

// TagList splits the stored comma-delimited tag string.
func (d Destination) TagList() []string {
	if d.Tags == "" {
		return []string{}
	}
	return strings.Split(d.Tags, ",")
}

// SortOrder selects how ranked results are ordered.
type SortOrder string

const (
	SortPopularity SortOrder = "popularity"
	SortRating     SortOrder = "rating"
	SortCost       SortOrder = "cost"
	SortDistance   SortOrder = "distance"
)

// ParseSort validates a sort key from an API caller. The empty string
// maps to the popularity default.
func ParseSort(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case SortPopularity, SortRating, SortCost, SortDistance:
		return SortOrder(s), nil
	case "":
		return SortPopularity, nil
	}
	return "", fmt.Errorf("unknown sort order %q (want popularity, rating, cost, or distance)", s)
}

// Request carries a user's ranking criteria. All filters are optional
// and AND-combined. Nil pointer means "not set".
type Request struct {
	UserLocation  *geo.Coordinate
	BudgetMin     *float64
	BudgetMax     *float64
	Categories    []string
	Tags          []string
	MinRating     *float64
	MaxDistanceKm *float64
	DurationDays  int
	SortBy        SortOrder
	Limit         int
	Currency      string // pass-through label, never converted
}

const (
	defaultLimit        = 10
	defaultDurationDays = 3
	defaultCurrency     = "USD"
)

// withDefaults fills in documented defaults for unset fields.
func (r Request) withDefaults() Request {
	if r.Limit <= 0 {
		r.Limit = defaultLimit
	}
	if r.DurationDays <= 0 {
		r.DurationDays = defaultDurationDays
	}
	if r.SortBy == "" {
		r.SortBy = SortPopularity
	}
	if r.Currency == "" {
		r.Currency = defaultCurrency
	}
	return r
}

// Recommendation is a request-scoped output record: constructed,
// scored, sorted, returned — never persisted.
type Recommendation struct {
	ID                     int64               `json:"id"`
	Title                  string              `json:"title"`
	Description            string              `json:"description"`
	Category               string              `json:"category"`
	BudgetTier             budget.Tier         `json:"budget_tier"`
	Latitude               *float64            `json:"latitude"`
	Longitude              *float64            `json:"longitude"`
	Website                string              `json:"website,omitempty"`
	Country                string              `json:"country"`
	City                   string              `json:"city"`
	AverageCostPerDay      *float64            `json:"average_cost_per_day"`
	BestTimeToVisit        string              `json:"best_time_to_visit,omitempty"`
	Rating                 *float64            `json:"rating"`
	ReviewCount            int                 `json:"review_count"`
	PopularityScore        float64             `json:"popularity_score"`
	Tags                   []string            `json:"tags"`
	EstimatedDurationHours *float64            `json:"estimated_duration_hours,omitempty"`
	DistanceKm             *float64            `json:"distance_km"`
	TripDurationDays       int                 `json:"trip_duration_days"`
	Currency               string              `json:"currency"`
	Score                  float64             `json:"recommendation_score"`
	CreatedAt              time.Time           `json:"created_at"`
	Budget                 *budget.Breakdown   `json:"budget_breakdown"`
	TransportOptions       *transport.Estimate `json:"transportation_options"`
	TotalTripCost          *float64            `json:"total_trip_cost"`
	EstimatedCostPerDay    *float64            `json:"estimated_cost_per_day"`
}

package recommend

import (
	"context"
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/roamio/tripscout/internal/budget"
	"github.com/roamio/tripscout/internal/geo"
)

// Composite score weights. Popularity, rating, review volume,
// affordability, and proximity sum to 1.0 when all components apply.
const (
	weightPopularity    = 0.4
	weightRating        = 0.3
	weightReviews       = 0.01
	weightAffordability = 0.2
	weightDistance      = 0.1

	defaultRating = 3.0

	// expensiveTripReference anchors the affordability normalization:
	// a trip at or above this total scores zero affordability.
	expensiveTripReference = 5000.0
)

// Rank filters, scores, sorts, and truncates the candidate set.
// Candidates are a materialized read-only snapshot; Rank never
// refetches or mutates. Per-candidate scoring runs in parallel, with
// results written to an index-addressed slice so input order (and the
// stable sort built on it) stays deterministic.
func Rank(ctx context.Context, candidates []Destination, req Request) ([]Recommendation, error) {
	req = req.withDefaults()

	scored := make([]*Recommendation, len(candidates))

	g, gCtx := errgroup.WithContext(ctx)
	for i, dest := range candidates {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			scored[i] = scoreCandidate(dest, req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	recs := make([]Recommendation, 0, len(candidates))
	for _, r := range scored {
		if r != nil {
			recs = append(recs, *r)
		}
	}

	sortRecommendations(recs, req)

	if len(recs) > req.Limit {
		recs = recs[:req.Limit]
	}
	return recs, nil
}

// scoreCandidate applies filters and computes the composite score for
// one destination. Returns nil when the destination is filtered out.
func scoreCandidate(dest Destination, req Request) *Recommendation {
	if !matchesFilters(dest, req) {
		return nil
	}

	var distance *float64
	if req.UserLocation != nil {
		if loc, ok := dest.Coordinate(); ok {
			d := geo.DistanceKm(*req.UserLocation, loc)
			distance = &d
		}
	}

	// A max-distance filter requires a known distance: destinations
	// missing coordinates are excluded, never scored at distance zero.
	if req.MaxDistanceKm != nil {
		if distance == nil || *distance > *req.MaxDistanceKm {
			return nil
		}
	}

	var (
		breakdown     *budget.Breakdown
		totalTripCost *float64
	)
	if distance != nil && dest.AverageCostPerDay != nil && *dest.AverageCostPerDay > 0 {
		tier := dest.BudgetTier
		if tier == "" {
			tier = budget.TierMidRange
		}
		b := budget.Synthesize(*distance, req.DurationDays, *dest.AverageCostPerDay, tier)
		breakdown = &b
		totalTripCost = &b.Total
	}

	score := dest.PopularityScore * weightPopularity
	score += ratingOrDefault(dest.Rating) * weightRating
	score += float64(dest.ReviewCount) * weightReviews

	if totalTripCost != nil {
		affordability := math.Max(0, (expensiveTripReference-*totalTripCost)/expensiveTripReference) * 5
		score += affordability * weightAffordability
	} else {
		avg := 100.0
		if dest.AverageCostPerDay != nil {
			avg = *dest.AverageCostPerDay
		}
		score += (5.0 - avg/50) * weightAffordability
	}

	if distance != nil && req.MaxDistanceKm != nil {
		proximity := math.Max(0, (*req.MaxDistanceKm-*distance) / *req.MaxDistanceKm)
		score += proximity * weightDistance
	}

	rec := Recommendation{
		ID:                     dest.ID,
		Title:                  dest.Title,
		Description:            dest.Description,
		Category:               dest.Category,
		BudgetTier:             dest.BudgetTier,
		Latitude:               dest.Latitude,
		Longitude:              dest.Longitude,
		Website:                dest.Website,
		Country:                dest.Country,
		City:                   dest.City,
		AverageCostPerDay:      dest.AverageCostPerDay,
		BestTimeToVisit:        dest.BestTimeToVisit,
		Rating:                 dest.Rating,
		ReviewCount:            dest.ReviewCount,
		PopularityScore:        dest.PopularityScore,
		Tags:                   dest.TagList(),
		EstimatedDurationHours: dest.EstimatedDurationHours,
		TripDurationDays:       req.DurationDays,
		Currency:               req.Currency,
		Score:                  round2(score),
		CreatedAt:              dest.CreatedAt,
		Budget:                 breakdown,
		TotalTripCost:          totalTripCost,
	}
	if distance != nil {
		rounded := math.Round(*distance*10) / 10
		rec.DistanceKm = &rounded
	}
	if breakdown != nil {
		rec.TransportOptions = &breakdown.TransportationOptions
		rec.EstimatedCostPerDay = &breakdown.PerDayAverage
	}
	return &rec
}

// matchesFilters applies the AND-combined budget, category, rating,
// and tag filters. Destinations missing a filtered field are
// excluded, matching SQL predicate semantics on nullable columns.
func matchesFilters(dest Destination, req Request) bool {
	if req.BudgetMin != nil {
		if dest.AverageCostPerDay == nil || *dest.AverageCostPerDay < *req.BudgetMin {
			return false
		}
	}
	if req.BudgetMax != nil {
		if dest.AverageCostPerDay == nil || *dest.AverageCostPerDay > *req.BudgetMax {
			return false
		}
	}
	if len(req.Categories) > 0 && !containsString(req.Categories, dest.Category) {
		return false
	}
	if req.MinRating != nil {
		if dest.Rating == nil || *dest.Rating < *req.MinRating {
			return false
		}
	}
	if len(req.Tags) > 0 && !matchesTags(dest.Tags, req.Tags) {
		return false
	}
	return true
}

// matchesTags reports whether any requested tag appears as a
// substring of the stored comma-delimited tag string. Known
// imprecision kept for compatibility with the stored format: a filter
// tag "art" also matches a stored tag "party".
func matchesTags(stored string, tags []string) bool {
	for _, tag := range tags {
		if tag != "" && strings.Contains(stored, tag) {
			return true
		}
	}
	return false
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func ratingOrDefault(r *float64) float64 {
	if r == nil {
		return defaultRating
	}
	return *r
}

// sortRecommendations orders recs in place. Sorting is stable so ties
// preserve candidate input order. A distance sort without a user
// location degrades to the popularity default, since no distances
// exist to order by.
func sortRecommendations(recs []Recommendation, req Request) {
	switch {
	case req.SortBy == SortDistance && req.UserLocation != nil:
		sort.SliceStable(recs, func(i, j int) bool {
			return distanceOrInf(recs[i]) < distanceOrInf(recs[j])
		})
	case req.SortBy == SortRating:
		sort.SliceStable(recs, func(i, j int) bool {
			return ratingOrZero(recs[i]) > ratingOrZero(recs[j])
		})
	case req.SortBy == SortCost:
		sort.SliceStable(recs, func(i, j int) bool {
			return costOrInf(recs[i]) < costOrInf(recs[j])
		})
	default:
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].Score > recs[j].Score
		})
	}
}

func distanceOrInf(r Recommendation) float64 {
	if r.DistanceKm == nil {
		return math.Inf(1)
	}
	return *r.DistanceKm
}

func ratingOrZero(r Recommendation) float64 {
	if r.Rating == nil {
		return 0
	}
	return *r.Rating
}

func costOrInf(r Recommendation) float64 {
	if r.AverageCostPerDay == nil {
		return math.Inf(1)
	}
	return *r.AverageCostPerDay
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

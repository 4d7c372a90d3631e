package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

// Popularity recalculation weights: rating, capped review volume, and
// a flat recency term.
const (
	popularityRatingWeight  = 0.5
	popularityReviewsWeight = 0.3
	popularityRecencyTerm   = 0.2

	reviewCountCap = 100.0
)

// PopularityStore is the storage surface needed by the popularity
// batch job.
type PopularityStore interface {
	ListAll(ctx context.Context) ([]Destination, error)
	UpdatePopularityScore(ctx context.Context, id int64, score float64) error
}

// PopularityScore derives a destination's popularity from its rating
// and review volume. Reviews saturate at 100.
func PopularityScore(d Destination) float64 {
	reviews := math.Min(float64(d.ReviewCount)/reviewCountCap, 1.0)
	return ratingOrDefault(d.Rating)*popularityRatingWeight +
		reviews*popularityReviewsWeight +
		popularityRecencyTerm
}

// RecalculatePopularity recomputes and persists the popularity score
// of every destination. The pass is a full recalculation from current
// ratings and review counts, so repeated runs are idempotent. Returns
// the number of destinations updated.
func RecalculatePopularity(ctx context.Context, store PopularityStore, log *slog.Logger) (int, error) {
	dests, err := store.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing destinations for popularity recalculation: %w", err)
	}

	updated := 0
	for _, d := range dests {
		score := PopularityScore(d)
		if err := store.UpdatePopularityScore(ctx, d.ID, score); err != nil {
			return updated, fmt.Errorf("updating popularity for destination %d: %w", d.ID, err)
		}
		updated++
	}

	log.Info("popularity scores recalculated", "destinations", updated)
	return updated, nil
}

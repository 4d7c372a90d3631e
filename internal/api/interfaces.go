package api

import (
	"context"

	"github.com/roamio/tripscout/internal/recommend"
	"github.com/roamio/tripscout/internal/storage"
)

// DestinationRepo defines the storage operations needed by handlers.
type DestinationRepo interface {
	ListDestinations(ctx context.Context, f storage.Filter) ([]recommend.Destination, error)
	GetDestination(ctx context.Context, id int64) (*recommend.Destination, error)
	ListSimilar(ctx context.Context, d recommend.Destination, limit int) ([]recommend.Destination, error)
	ListTrending(ctx context.Context, limit int) ([]recommend.Destination, error)
	recommend.PopularityStore
}

// RecommendationCache defines the fingerprint-keyed result cache
// operations needed by handlers.
type RecommendationCache interface {
	Get(ctx context.Context, key string) ([]recommend.Recommendation, error)
	Set(ctx context.Context, key string, recs []recommend.Recommendation) error
	Invalidate(ctx context.Context) error
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roamio/tripscout/internal/budget"
	"github.com/roamio/tripscout/internal/recommend"
)

// Querier abstracts the subset of pgxpool.Pool used by Repository.
// This allows injection of a mock in tests.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository provides database access for destination records.
type Repository struct {
	q Querier
}

// NewRepository constructs a Repository backed by the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{q: pool}
}

// NewRepositoryWithQuerier constructs a Repository with a custom Querier (for tests).
func NewRepositoryWithQuerier(q Querier) *Repository {
	return &Repository{q: q}
}

const destinationColumns = `id, title, description, category, budget_tier,
	latitude, longitude, website, country, city, average_cost_per_day,
	best_time_to_visit, rating, review_count, popularity_score, tags,
	estimated_duration_hours, created_at`

// Filter narrows a destination listing. Nil pointers and empty slices
// mean "no constraint". Tag matching uses LIKE against the stored
// comma-delimited tag string, so it shares the ranker's substring
// semantics.
type Filter struct {
	BudgetMin  *float64
	BudgetMax  *float64
	Categories []string
	MinRating  *float64
	Tags       []string
}

// ListDestinations returns a fully materialized snapshot of
// destinations matching the filter. Ranking runs over this snapshot;
// no incremental queries follow.
func (r *Repository) ListDestinations(ctx context.Context, f Filter) ([]recommend.Destination, error) {
	var (
		sb   strings.Builder
		args []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	sb.WriteString("SELECT " + destinationColumns + " FROM destinations")

	var conds []string
	if f.BudgetMin != nil {
		conds = append(conds, "average_cost_per_day >= "+arg(*f.BudgetMin))
	}
	if f.BudgetMax != nil {
		conds = append(conds, "average_cost_per_day <= "+arg(*f.BudgetMax))
	}
	if len(f.Categories) > 0 {
		conds = append(conds, "category = ANY("+arg(f.Categories)+")")
	}
	if f.MinRating != nil {
		conds = append(conds, "rating >= "+arg(*f.MinRating))
	}
	if len(f.Tags) > 0 {
		var tagConds []string
		for _, tag := range f.Tags {
			tagConds = append(tagConds, "tags LIKE "+arg("%"+tag+"%"))
		}
		conds = append(conds, "("+strings.Join(tagConds, " OR ")+")")
	}

	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY id")

	return r.queryDestinations(ctx, sb.String(), args...)
}

// ListAll returns every destination, used by the popularity batch job.
func (r *Repository) ListAll(ctx context.Context) ([]recommend.Destination, error) {
	return r.queryDestinations(ctx, "SELECT "+destinationColumns+" FROM destinations ORDER BY id")
}

// GetDestination retrieves a destination by id.
// Returns nil, nil when not found.
func (r *Repository) GetDestination(ctx context.Context, id int64) (*recommend.Destination, error) {
	q := "SELECT " + destinationColumns + " FROM destinations WHERE id = $1"

	d, err := scanDestination(r.q.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying destination %d: %w", id, err)
	}
	return &d, nil
}

// ListSimilar returns destinations sharing the given destination's
// category or any of its tags, excluding the destination itself.
func (r *Repository) ListSimilar(ctx context.Context, d recommend.Destination, limit int) ([]recommend.Destination, error) {
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	q := "SELECT " + destinationColumns + " FROM destinations WHERE id != " + arg(d.ID)

	var conds []string
	if d.Category != "" {
		conds = append(conds, "category = "+arg(d.Category))
	}
	for _, tag := range d.TagList() {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			conds = append(conds, "tags LIKE "+arg("%"+tag+"%"))
		}
	}
	if len(conds) > 0 {
		q += " AND (" + strings.Join(conds, " OR ") + ")"
	}
	q += " ORDER BY id LIMIT " + arg(limit)

	return r.queryDestinations(ctx, q, args...)
}

// ListTrending returns destinations with a positive popularity score,
// most popular first.
func (r *Repository) ListTrending(ctx context.Context, limit int) ([]recommend.Destination, error) {
	q := "SELECT " + destinationColumns + ` FROM destinations
		WHERE popularity_score > 0
		ORDER BY popularity_score DESC
		LIMIT $1`
	return r.queryDestinations(ctx, q, limit)
}

// UpdatePopularityScore persists a recomputed popularity score.
func (r *Repository) UpdatePopularityScore(ctx context.Context, id int64, score float64) error {
	const q = `UPDATE destinations SET popularity_score = $2, updated_at = NOW() WHERE id = $1`

	if _, err := r.q.Exec(ctx, q, id, score); err != nil {
		return fmt.Errorf("updating popularity score for destination %d: %w", id, err)
	}
	return nil
}

func (r *Repository) queryDestinations(ctx context.Context, q string, args ...any) ([]recommend.Destination, error) {
	rows, err := r.q.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying destinations: %w", err)
	}
	defer rows.Close()

	var results []recommend.Destination
	for rows.Next() {
		d, err := scanDestination(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning destination row: %w", err)
		}
		results = append(results, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating destination rows: %w", err)
	}
	return results, nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDestination(row rowScanner) (recommend.Destination, error) {
	var (
		d           recommend.Destination
		description *string
		category    *string
		tier        *string
		website     *string
		country     *string
		city        *string
		bestTime    *string
		reviewCount *int
		popularity  *float64
		tags        *string
	)

	err := row.Scan(
		&d.ID,
		&d.Title,
		&description,
		&category,
		&tier,
		&d.Latitude,
		&d.Longitude,
		&website,
		&country,
		&city,
		&d.AverageCostPerDay,
		&bestTime,
		&d.Rating,
		&reviewCount,
		&popularity,
		&tags,
		&d.EstimatedDurationHours,
		&d.CreatedAt,
	)
	if err != nil {
		return recommend.Destination{}, err
	}

	d.Description = deref(description)
	d.Category = deref(category)
	d.Website = deref(website)
	d.Country = deref(country)
	d.City = deref(city)
	d.BestTimeToVisit = deref(bestTime)
	d.Tags = deref(tags)

	// Missing tier defaults to mid-range at the read boundary so the
	// core never sees an empty tier.
	d.BudgetTier = budget.TierMidRange
	if tier != nil && *tier != "" {
		d.BudgetTier = budget.Tier(*tier)
	}

	if reviewCount != nil {
		d.ReviewCount = *reviewCount
	}
	if popularity != nil {
		d.PopularityScore = *popularity
	}
	return d, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

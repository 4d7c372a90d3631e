package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/roamio/tripscout/internal/budget"
	"github.com/roamio/tripscout/internal/cache"
	"github.com/roamio/tripscout/internal/geo"
	"github.com/roamio/tripscout/internal/recommend"
	"github.com/roamio/tripscout/internal/storage"
	"github.com/roamio/tripscout/internal/transport"
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	repo  DestinationRepo
	cache RecommendationCache
	log   *slog.Logger
}

// NewHandlers constructs Handlers with all required dependencies.
func NewHandlers(repo DestinationRepo, cache RecommendationCache, log *slog.Logger) *Handlers {
	return &Handlers{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---- query parsing helpers ----

func parseOptionalFloat(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, badParamError{name}
	}
	return &v, nil
}

func parseOptionalInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, badParamError{name}
	}
	return &v, nil
}

func parseCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type badParamError struct{ name string }

func (e badParamError) Error() string { return "invalid value for parameter " + e.name }

// parseUserLocation reads an optional lat/lon pair. Supplying only
// one half, or out-of-range values, is a caller error.
func parseUserLocation(r *http.Request, latName, lonName string) (*geo.Coordinate, error) {
	lat, err := parseOptionalFloat(r, latName)
	if err != nil {
		return nil, err
	}
	lon, err := parseOptionalFloat(r, lonName)
	if err != nil {
		return nil, err
	}
	if lat == nil && lon == nil {
		return nil, nil
	}
	if lat == nil || lon == nil {
		return nil, badParamError{latName + "/" + lonName + " must be supplied together"}
	}
	c, err := geo.NewCoordinate(*lat, *lon)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ---- GET /api/v1/recommendations ----

type recommendationsResponse struct {
	Count           int                        `json:"count"`
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// GetRecommendations ranks stored destinations against the caller's
// filters. Results are memoized in the fingerprint cache.
func (h *Handlers) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	req, err := parseRankingRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key, err := cache.Fingerprint(req)
	if err != nil {
		h.log.Error("fingerprint failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if cached, err := h.cache.Get(r.Context(), key); err != nil {
		h.log.Error("cache get failed", "key", key, "err", err)
	} else if cached != nil {
		writeJSON(w, http.StatusOK, recommendationsResponse{Count: len(cached), Recommendations: cached})
		return
	}

	// Storage failures are hard failures: no retry, no degraded scoring.
	candidates, err := h.repo.ListDestinations(r.Context(), storage.Filter{
		BudgetMin:  req.BudgetMin,
		BudgetMax:  req.BudgetMax,
		Categories: req.Categories,
		MinRating:  req.MinRating,
		Tags:       req.Tags,
	})
	if err != nil {
		h.log.Error("listing destinations failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	recs, err := recommend.Rank(r.Context(), candidates, req)
	if err != nil {
		h.log.Error("ranking failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.cache.Set(r.Context(), key, recs); err != nil {
		h.log.Warn("cache set failed", "key", key, "err", err)
	}

	writeJSON(w, http.StatusOK, recommendationsResponse{Count: len(recs), Recommendations: recs})
}

func parseRankingRequest(r *http.Request) (recommend.Request, error) {
	var req recommend.Request

	loc, err := parseUserLocation(r, "lat", "lon")
	if err != nil {
		return req, err
	}
	req.UserLocation = loc

	if req.BudgetMin, err = parseOptionalFloat(r, "budget_min"); err != nil {
		return req, err
	}
	if req.BudgetMax, err = parseOptionalFloat(r, "budget_max"); err != nil {
		return req, err
	}
	if req.MinRating, err = parseOptionalFloat(r, "min_rating"); err != nil {
		return req, err
	}
	if req.MaxDistanceKm, err = parseOptionalFloat(r, "max_distance_km"); err != nil {
		return req, err
	}
	if req.MaxDistanceKm != nil && *req.MaxDistanceKm <= 0 {
		return req, badParamError{"max_distance_km must be positive"}
	}

	duration, err := parseOptionalInt(r, "duration_days")
	if err != nil {
		return req, err
	}
	if duration != nil {
		if *duration < 0 {
			return req, badParamError{"duration_days must not be negative"}
		}
		req.DurationDays = *duration
	}

	limit, err := parseOptionalInt(r, "limit")
	if err != nil {
		return req, err
	}
	if limit != nil {
		req.Limit = *limit
	}

	req.SortBy, err = recommend.ParseSort(r.URL.Query().Get("sort_by"))
	if err != nil {
		return req, err
	}

	req.Categories = parseCSV(r.URL.Query().Get("categories"))
	req.Tags = parseCSV(r.URL.Query().Get("tags"))
	req.Currency = r.URL.Query().Get("currency")

	return req, nil
}

// ---- GET /api/v1/recommendations/similar/{id} ----

type briefDestination struct {
	ID                int64    `json:"id"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Category          string   `json:"category"`
	Rating            *float64 `json:"rating"`
	ReviewCount       int      `json:"review_count"`
	PopularityScore   float64  `json:"popularity_score"`
	AverageCostPerDay *float64 `json:"average_cost_per_day"`
	Tags              []string `json:"tags"`
}

func brief(d recommend.Destination) briefDestination {
	return briefDestination{
		ID:                d.ID,
		Title:             d.Title,
		Description:       d.Description,
		Category:          d.Category,
		Rating:            d.Rating,
		ReviewCount:       d.ReviewCount,
		PopularityScore:   d.PopularityScore,
		AverageCostPerDay: d.AverageCostPerDay,
		Tags:              d.TagList(),
	}
}

// GetSimilar returns destinations sharing the category or tags of the
// given destination.
func (h *Handlers) GetSimilar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid destination id")
		return
	}

	dest, err := h.repo.GetDestination(r.Context(), id)
	if err != nil {
		h.log.Error("get destination failed", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if dest == nil {
		writeError(w, http.StatusNotFound, "destination not found")
		return
	}

	limit := 5
	if l, err := parseOptionalInt(r, "limit"); err == nil && l != nil && *l > 0 {
		limit = *l
	}

	similar, err := h.repo.ListSimilar(r.Context(), *dest, limit)
	if err != nil {
		h.log.Error("list similar failed", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]briefDestination, 0, len(similar))
	for _, d := range similar {
		out = append(out, brief(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "destinations": out})
}

// ---- GET /api/v1/recommendations/trending ----

// GetTrending returns the most popular destinations.
func (h *Handlers) GetTrending(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if l, err := parseOptionalInt(r, "limit"); err == nil && l != nil && *l > 0 {
		limit = *l
	}

	dests, err := h.repo.ListTrending(r.Context(), limit)
	if err != nil {
		h.log.Error("list trending failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]briefDestination, 0, len(dests))
	for _, d := range dests {
		out = append(out, brief(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "destinations": out})
}

// ---- GET /api/v1/transport ----

// GetTransport returns a standalone transport estimate for a distance
// or a coordinate pair. detailed=true selects the local tier table
// with durations and availability.
func (h *Handlers) GetTransport(w http.ResponseWriter, r *http.Request) {
	distance, err := parseOptionalFloat(r, "distance_km")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if distance == nil {
		from, err := parseUserLocation(r, "from_lat", "from_lon")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		to, err := parseUserLocation(r, "to_lat", "to_lon")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if from == nil || to == nil {
			writeError(w, http.StatusBadRequest, "supply distance_km or both coordinate pairs")
			return
		}
		d := geo.DistanceKm(*from, *to)
		distance = &d
	}
	if *distance < 0 {
		writeError(w, http.StatusBadRequest, "distance_km must not be negative")
		return
	}

	resp := map[string]any{"distance_km": *distance}
	if r.URL.Query().Get("detailed") == "true" {
		resp["estimate"] = transport.EstimateLocal(*distance)
	} else {
		resp["estimate"] = transport.EstimateCost(*distance)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ---- GET /api/v1/budget ----

// GetBudget exposes the nine-component budget synthesis standalone,
// used by the trip-plan feature to attach costs to itineraries.
func (h *Handlers) GetBudget(w http.ResponseWriter, r *http.Request) {
	distance, err := parseOptionalFloat(r, "distance_km")
	if err != nil || distance == nil || *distance < 0 {
		writeError(w, http.StatusBadRequest, "distance_km is required and must not be negative")
		return
	}

	dailyCost, err := parseOptionalFloat(r, "daily_cost")
	if err != nil || dailyCost == nil || *dailyCost <= 0 {
		writeError(w, http.StatusBadRequest, "daily_cost is required and must be positive")
		return
	}

	duration, err := parseOptionalInt(r, "duration_days")
	if err != nil || duration == nil || *duration < 0 {
		writeError(w, http.StatusBadRequest, "duration_days is required and must not be negative")
		return
	}

	tier, err := budget.ParseTier(r.URL.Query().Get("tier"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, budget.Synthesize(*distance, *duration, *dailyCost, tier))
}

// ---- GET /api/v1/trip-cost ----

// GetTripCost exposes the simpler display-oriented budget path.
// Destination coordinates come from explicit params or the offline
// gazetteer.
func (h *Handlers) GetTripCost(w http.ResponseWriter, r *http.Request) {
	destination := strings.TrimSpace(r.URL.Query().Get("destination"))
	if destination == "" {
		writeError(w, http.StatusBadRequest, "destination is required")
		return
	}

	duration, err := parseOptionalInt(r, "duration_days")
	if err != nil || duration == nil || *duration <= 0 {
		writeError(w, http.StatusBadRequest, "duration_days is required and must be positive")
		return
	}

	tier, err := budget.ParseTier(r.URL.Query().Get("budget"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	travelers := 1
	if tr, err := parseOptionalInt(r, "travelers"); err != nil || (tr != nil && *tr < 1) {
		writeError(w, http.StatusBadRequest, "travelers must be a positive integer")
		return
	} else if tr != nil {
		travelers = *tr
	}

	origin, err := parseUserLocation(r, "lat", "lon")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	destCoord, err := parseUserLocation(r, "dest_lat", "dest_lon")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if destCoord == nil {
		if c, ok := budget.Geocode(destination); ok {
			destCoord = &c
		}
	}

	est := budget.TripCost(budget.TripCostParams{
		Destination:  destination,
		DurationDays: *duration,
		Tier:         tier,
		Travelers:    travelers,
		Origin:       origin,
		DestCoord:    destCoord,
	})
	writeJSON(w, http.StatusOK, est)
}

// ---- POST /api/v1/admin/popularity/recalculate ----

// RecalculatePopularity runs the full popularity recomputation and
// flushes the recommendation cache, since cached scores are stale
// afterwards.
func (h *Handlers) RecalculatePopularity(w http.ResponseWriter, r *http.Request) {
	updated, err := recommend.RecalculatePopularity(r.Context(), h.repo, h.log)
	if err != nil {
		h.log.Error("popularity recalculation failed", "err", err)
		writeError(w, http.StatusInternalServerError, "popularity recalculation failed")
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.log.Warn("cache invalidation failed after recalculation", "err", err)
	}

	writeJSON(w, http.StatusOK, map[string]int{"updated": updated})
}

// ---- GET /api/v1/health ----

type dbPinger interface {
	Ping(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlerFunc returns an http.HandlerFunc that checks db and
// redis connectivity. Returns 200 if both ok, 503 otherwise.
func HealthHandlerFunc(db dbPinger, redis redisPinger, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		dbStatus := "ok"
		redisStatus := "ok"

		if err := db.Ping(ctx); err != nil {
			log.Error("health check: db ping failed", "err", err)
			dbStatus = "error"
			status = http.StatusServiceUnavailable
		}

		if err := redis.Ping(ctx); err != nil {
			log.Error("health check: redis ping failed", "err", err)
			redisStatus = "error"
			status = http.StatusServiceUnavailable
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		writeJSON(w, status, map[string]string{
			"status": overall,
			"db":     dbStatus,
			"redis":  redisStatus,
		})
	}
}

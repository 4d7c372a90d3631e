package api_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamio/tripscout/internal/api"
	"github.com/roamio/tripscout/internal/recommend"
	"github.com/roamio/tripscout/internal/storage"
)

// ---- mock implementations ----

type mockRepo struct {
	listFn        func(ctx context.Context, f storage.Filter) ([]recommend.Destination, error)
	getFn         func(ctx context.Context, id int64) (*recommend.Destination, error)
	similarFn     func(ctx context.Context, d recommend.Destination, limit int) ([]recommend.Destination, error)
	trendingFn    func(ctx context.Context, limit int) ([]recommend.Destination, error)
	listAllFn     func(ctx context.Context) ([]recommend.Destination, error)
	updateScoreFn func(ctx context.Context, id int64, score float64) error
}

func (m *mockRepo) ListDestinations(ctx context.Context, f storage.Filter) ([]recommend.Destination, error) {
	return m.listFn(ctx, f)
}
func (m *mockRepo) GetDestination(ctx context.Context, id int64) (*recommend.Destination, error) {
	return m.getFn(ctx, id)
}
func (m *mockRepo) ListSimilar(ctx context.Context, d recommend.Destination, limit int) ([]recommend.Destination, error) {
	return m.similarFn(ctx, d, limit)
}
func (m *mockRepo) ListTrending(ctx context.Context, limit int) ([]recommend.Destination, error) {
	return m.trendingFn(ctx, limit)
}
func (m *mockRepo) ListAll(ctx context.Context) ([]recommend.Destination, error) {
	return m.listAllFn(ctx)
}
func (m *mockRepo) UpdatePopularityScore(ctx context.Context, id int64, score float64) error {
	return m.updateScoreFn(ctx, id, score)
}

type mockCache struct {
	getFn        func(ctx context.Context, key string) ([]recommend.Recommendation, error)
	setFn        func(ctx context.Context, key string, recs []recommend.Recommendation) error
	invalidateFn func(ctx context.Context) error
}

func (m *mockCache) Get(ctx context.Context, key string) ([]recommend.Recommendation, error) {
	if m.getFn == nil {
		return nil, nil
	}
	return m.getFn(ctx, key)
}
func (m *mockCache) Set(ctx context.Context, key string, recs []recommend.Recommendation) error {
	if m.setFn == nil {
		return nil
	}
	return m.setFn(ctx, key, recs)
}
func (m *mockCache) Invalidate(ctx context.Context) error {
	if m.invalidateFn == nil {
		return nil
	}
	return m.invalidateFn(ctx)
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// ---- helpers ----

func ptr[T any](v T) *T { return &v }

const testToken = "secret-token"

func buildRouter(repo api.DestinationRepo, c api.RecommendationCache, db, redis *mockPinger) http.Handler {
	if db == nil {
		db = &mockPinger{}
	}
	if redis == nil {
		redis = &mockPinger{}
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handlers := api.NewHandlers(repo, c, log)
	return api.NewRouter(handlers, testToken, db, redis, log)
}

func doGet(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sampleDestinations() []recommend.Destination {
	return []recommend.Destination{
		{ID: 1, Title: "Goa Beaches", Category: "beach", PopularityScore: 10,
			Rating: ptr(4.0), ReviewCount: 50, Tags: "beach,nightlife"},
		{ID: 2, Title: "Jaipur Forts", Category: "culture", PopularityScore: 5,
			Rating: ptr(5.0), ReviewCount: 200},
	}
}

// ---- auth ----

func TestAuth_MissingToken(t *testing.T) {
	router := buildRouter(&mockRepo{}, &mockCache{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_WrongToken(t *testing.T) {
	router := buildRouter(&mockRepo{}, &mockCache{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ---- GET /api/v1/recommendations ----

func TestGetRecommendations_RanksAndReturns(t *testing.T) {
	repo := &mockRepo{
		listFn: func(_ context.Context, _ storage.Filter) ([]recommend.Destination, error) {
			return sampleDestinations(), nil
		},
	}
	router := buildRouter(repo, &mockCache{}, nil, nil)

	w := doGet(t, router, "/api/v1/recommendations?limit=1")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count           int                        `json:"count"`
		Recommendations []recommend.Recommendation `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, int64(1), resp.Recommendations[0].ID, "highest composite score first")
	assert.Greater(t, resp.Recommendations[0].Score, 0.0)
}

func TestGetRecommendations_FilterForwardedToStorage(t *testing.T) {
	var gotFilter storage.Filter
	repo := &mockRepo{
		listFn: func(_ context.Context, f storage.Filter) ([]recommend.Destination, error) {
			gotFilter = f
			return nil, nil
		},
	}
	router := buildRouter(repo, &mockCache{}, nil, nil)

	w := doGet(t, router, "/api/v1/recommendations?budget_min=20&budget_max=150&categories=beach&tags=surf,food&min_rating=4")
	require.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, gotFilter.BudgetMin)
	assert.Equal(t, 20.0, *gotFilter.BudgetMin)
	require.NotNil(t, gotFilter.BudgetMax)
	assert.Equal(t, 150.0, *gotFilter.BudgetMax)
	assert.Equal(t, []string{"beach"}, gotFilter.Categories)
	assert.Equal(t, []string{"surf", "food"}, gotFilter.Tags)
	require.NotNil(t, gotFilter.MinRating)
	assert.Equal(t, 4.0, *gotFilter.MinRating)
}

func TestGetRecommendations_CacheHitSkipsStorage(t *testing.T) {
	repo := &mockRepo{
		listFn: func(_ context.Context, _ storage.Filter) ([]recommend.Destination, error) {
			t.Fatal("storage should not be called on cache hit")
			return nil, nil
		},
	}
	c := &mockCache{
		getFn: func(_ context.Context, _ string) ([]recommend.Recommendation, error) {
			return []recommend.Recommendation{{ID: 9, Title: "Cached"}}, nil
		},
	}
	router := buildRouter(repo, c, nil, nil)

	w := doGet(t, router, "/api/v1/recommendations")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Cached")
}

func TestGetRecommendations_ResultStoredInCache(t *testing.T) {
	repo := &mockRepo{
		listFn: func(_ context.Context, _ storage.Filter) ([]recommend.Destination, error) {
			return sampleDestinations(), nil
		},
	}
	var setKey string
	var setRecs []recommend.Recommendation
	c := &mockCache{
		setFn: func(_ context.Context, key string, recs []recommend.Recommendation) error {
			setKey = key
			setRecs = recs
			return nil
		},
	}
	router := buildRouter(repo, c, nil, nil)

	w := doGet(t, router, "/api/v1/recommendations")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, setKey)
	assert.Len(t, setRecs, 2)
}

func TestGetRecommendations_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"latitude out of range", "/api/v1/recommendations?lat=91&lon=0"},
		{"longitude out of range", "/api/v1/recommendations?lat=0&lon=-200"},
		{"lat without lon", "/api/v1/recommendations?lat=10"},
		{"unknown sort", "/api/v1/recommendations?sort_by=alphabetical"},
		{"negative duration", "/api/v1/recommendations?duration_days=-1"},
		{"malformed budget", "/api/v1/recommendations?budget_min=abc"},
		{"zero max distance", "/api/v1/recommendations?max_distance_km=0"},
	}

	router := buildRouter(&mockRepo{}, &mockCache{}, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(t, router, tt.path)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetRecommendations_StorageFailureIsHard(t *testing.T) {
	repo := &mockRepo{
		listFn: func(_ context.Context, _ storage.Filter) ([]recommend.Destination, error) {
			return nil, context.DeadlineExceeded
		},
	}
	router := buildRouter(repo, &mockCache{}, nil, nil)

	w := doGet(t, router, "/api/v1/recommendations")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ---- GET /api/v1/transport ----

func TestGetTransport_ByDistance(t *testing.T) {
	router := buildRouter(&mockRepo{}, &mockCache{}, nil, nil)

	w := doGet(t, router, "/api/v1/transport?distance_km=100")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		DistanceKm float64 `json:"distance_km"`
		Estimate   struct {
			Options     map[string]float64 `json:"options"`
			Recommended string             `json:"recommended"`
		} `json:"estimate"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 100.0, resp.DistanceKm)
	assert.Equal(t, "bus", resp.Estimate.Recommended)
	assert.Equal(t, 50.0, resp.Estimate.Options["train"])
}

func TestGetTransport_ByCoordinates(t *testing.T) {
	router := buildRouter(&mockRepo{}, &mockCache{}, nil, nil)

	w := doGet(t, router, "/api/v1/transport?from_lat=19.0760&from_lon=72.8777&to_lat=28.7041&to_lon=77.1025")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		DistanceKm float64 `json:"distance_km"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.InDelta(t, 1162, resp.DistanceKm, 15)
}

func TestGetTransport_Detailed(t *testing.T) {
	router := buildRouter(&mockRepo{}, &mockCache{}, nil, nil)

	w := doGet(t, router, "/api/v1/transport?distance_km=10&detailed=true")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Estimate struct {
			Recommended string `json:"recommended"`
			Options     []struct {
				Mode            string `json:"mode"`
				DurationMinutes int    `json:"duration_minutes"`
				Available       bool   `json:"available"`
			} `json:"options"`
		} `json:"estimate"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "auto", resp.Estimate.Recommended)
	assert.Len(t, resp.Estimate.Options, 3)
}

func TestGetTransport_MissingInputs(t *testing.T) {
	router := buildRouter(&mockRepo{}, &mockCache{}, nil, nil)

	w := doGet(t, router, "/api/v1/transport")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ---- GET /api/v1/budget ----

func TestGetBudget_HappyPath(t *testing.T) {
	router := buildRouter(&mockRepo{}, &mockCache{}, nil, nil)

	w := doGet(t, router, "/api/v1/budget?distance_km=0&duration_days=3&daily_cost=100&tier=mid-range")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Total         float64 `json:"total"`
		PerDayAverage float64 `json:"per_day_average"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 369.89, resp.Total)
	assert.Equal(t, 123.3, resp.PerDayAverage)
}

func TestGetBudget_InvalidInput(t *testing.T) {
	tests := []string{
		"/api/v1/budget?duration_days=3&daily_cost=100",              // missing distance
		"/api/v1/budget?distance_km=10&daily_cost=100",               // missing duration
		"/api/v1/budget?distance_km=10&duration_days=3",              // missing daily cost
		"/api/v1/budget?distance_km=10&duration_days=-3&daily_cost=5", // negative duration
		"/api/v1/budget?distance_km=10&duration_days=3&daily_cost=100&tier=platinum",
	}

	router := buildRouter(&mockRepo{}, &mockCache{}, nil, nil)
	for _, path := range tests {
		w := doGet(t, router, path)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

// ---- GET /api/v1/trip-cost ----

func TestGetTripCost_GeocodesKnownDestination(t *testing.T) {
	router := buildRouter(&mockRepo{}, &mockCache{}, nil, nil)

	w := doGet(t, router, "/api/v1/trip-cost?destination=delhi&duration_days=3&budget=mid-range&lat=19.0760&lon=72.8777")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Destination string   `json:"destination"`
		Currency    string   `json:"currency"`
		DistanceKm  *float64 `json:"distance_km"`
		Breakdown   struct {
			Total float64 `json:"total"`
		} `json:"cost_breakdown"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "delhi", resp.Destination)
	assert.Equal(t, "INR", resp.Currency)
	require.NotNil(t, resp.DistanceKm)
	assert.InDelta(t, 1162, *resp.DistanceKm, 15)
	assert.Greater(t, resp.Breakdown.Total, 0.0)
}

func TestGetTripCost_UnknownDestinationStillEstimates(t *testing.T) {
	router := buildRouter(&mockRepo{}, &mockCache{}, nil, nil)

	w := doGet(t, router, "/api/v1/trip-cost?destination=atlantis&duration_days=2&budget=budget")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		DistanceKm *float64 `json:"distance_km"`
		Breakdown  struct {
			Total float64 `json:"total"`
		} `json:"cost_breakdown"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Nil(t, resp.DistanceKm, "ungecodable destination omits the transport leg")
	assert.Greater(t, resp.Breakdown.Total, 0.0)
}

func TestGetTripCost_InvalidInput(t *testing.T) {
	tests := []string{
		"/api/v1/trip-cost?duration_days=3",                            // missing destination
		"/api/v1/trip-cost?destination=goa",                            // missing duration
		"/api/v1/trip-cost?destination=goa&duration_days=0",            // non-positive duration
		"/api/v1/trip-cost?destination=goa&duration_days=3&budget=vip", // unknown tier
		"/api/v1/trip-cost?destination=goa&duration_days=3&travelers=0",
	}

	router := buildRouter(&mockRepo{}, &mockCache{}, nil, nil)
	for _, path := range tests {
		w := doGet(t, router, path)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

// ---- GET /api/v1/recommendations/similar/{id} ----

func TestGetSimilar_NotFound(t *testing.T) {
	repo := &mockRepo{
		getFn: func(_ context.Context, _ int64) (*recommend.Destination, error) {
			return nil, nil
		},
	}
	router := buildRouter(repo, &mockCache{}, nil, nil)

	w := doGet(t, router, "/api/v1/recommendations/similar/42")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSimilar_ReturnsMatches(t *testing.T) {
	repo := &mockRepo{
		getFn: func(_ context.Context, id int64) (*recommend.Destination, error) {
			return &recommend.Destination{ID: id, Category: "beach", Tags: "surf"}, nil
		},
		similarFn: func(_ context.Context, d recommend.Destination, limit int) ([]recommend.Destination, error) {
			assert.Equal(t, int64(1), d.ID)
			assert.Equal(t, 5, limit)
			return sampleDestinations(), nil
		},
	}
	router := buildRouter(repo, &mockCache{}, nil, nil)

	w := doGet(t, router, "/api/v1/recommendations/similar/1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Goa Beaches")
}

// ---- GET /api/v1/recommendations/trending ----

func TestGetTrending(t *testing.T) {
	repo := &mockRepo{
		trendingFn: func(_ context.Context, limit int) ([]recommend.Destination, error) {
			assert.Equal(t, 10, limit)
			return sampleDestinations(), nil
		},
	}
	router := buildRouter(repo, &mockCache{}, nil, nil)

	w := doGet(t, router, "/api/v1/recommendations/trending")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
}

// ---- POST /api/v1/admin/popularity/recalculate ----

func TestRecalculatePopularity(t *testing.T) {
	scores := map[int64]float64{}
	repo := &mockRepo{
		listAllFn: func(_ context.Context) ([]recommend.Destination, error) {
			return sampleDestinations(), nil
		},
		updateScoreFn: func(_ context.Context, id int64, score float64) error {
			scores[id] = score
			return nil
		},
	}
	invalidated := false
	c := &mockCache{
		invalidateFn: func(_ context.Context) error {
			invalidated = true
			return nil
		},
	}
	router := buildRouter(repo, c, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/popularity/recalculate", nil)
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"updated":2`)
	assert.Len(t, scores, 2)
	assert.True(t, invalidated, "stale recommendation cache must be flushed")
}

// ---- GET /api/v1/health ----

func TestHealth_AllOK(t *testing.T) {
	router := buildRouter(&mockRepo{}, &mockCache{}, &mockPinger{}, &mockPinger{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestHealth_DegradedWhenDBDown(t *testing.T) {
	router := buildRouter(&mockRepo{}, &mockCache{},
		&mockPinger{err: context.DeadlineExceeded}, &mockPinger{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"db":"error"`)
}

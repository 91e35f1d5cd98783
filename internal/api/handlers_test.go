package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"streaming-analytics/internal/models"
)

type fakeStore struct {
	pingErr  error
	counts   map[string]int64
	aggRows  map[string][]bson.M
	findRows map[string][]interface{}

	lastFindOpts *options.FindOptions
	aggCalls     map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		counts:   map[string]int64{},
		aggRows:  map[string][]bson.M{},
		findRows: map[string][]interface{}{},
		aggCalls: map[string]int{},
	}
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeStore) Count(ctx context.Context, collection string, filter interface{}) (int64, error) {
	return f.counts[collection], nil
}

// decodeRows round-trips canned documents through bson so the fake
// exercises the same decode path as the real store.
func decodeRows(rows []interface{}, out interface{}) error {
	slice := reflect.ValueOf(out).Elem()
	elemType := slice.Type().Elem()
	for _, row := range rows {
		raw, err := bson.Marshal(row)
		if err != nil {
			return err
		}
		elem := reflect.New(elemType)
		if err := bson.Unmarshal(raw, elem.Interface()); err != nil {
			return err
		}
		slice.Set(reflect.Append(slice, elem.Elem()))
	}
	return nil
}

func (f *fakeStore) Aggregate(ctx context.Context, collection string, pipeline mongo.Pipeline, out interface{}) error {
	f.aggCalls[collection]++
	rows := make([]interface{}, len(f.aggRows[collection]))
	for i, r := range f.aggRows[collection] {
		rows[i] = r
	}
	return decodeRows(rows, out)
}

func (f *fakeStore) Find(ctx context.Context, collection string, filter interface{}, opts *options.FindOptions, out interface{}) error {
	f.lastFindOpts = opts
	return decodeRows(f.findRows[collection], out)
}

func serve(t *testing.T, store Store, runETL func(ctx context.Context) error, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewServer(store, runETL).Router("*")
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleRoot(t *testing.T) {
	rec := serve(t, newFakeStore(), nil, http.MethodGet, "/api/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "operational", body["status"])
}

func TestHandleHealth(t *testing.T) {
	rec := serve(t, newFakeStore(), nil, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	down := newFakeStore()
	down.pingErr = errors.New("no reachable servers")
	rec = serve(t, down, nil, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleDashboardMetrics(t *testing.T) {
	store := newFakeStore()
	store.counts[models.CollUsers] = 100
	store.counts[models.CollMovies] = 20
	store.counts[models.CollSessions] = 400
	store.aggRows[models.CollSessions] = []bson.M{
		{"total_watch_time": int64(1230), "avg_completion": 0.6543},
	}

	rec := serve(t, store, nil, http.MethodGet, "/api/dashboard/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var metrics models.DashboardMetrics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
	assert.Equal(t, int64(100), metrics.TotalUsers)
	assert.Equal(t, int64(400), metrics.TotalViews)
	assert.Equal(t, 20.5, metrics.TotalWatchTimeHours)
	assert.Equal(t, 0.65, metrics.AvgCompletionRate)
}

func TestHandleGenresServedFromMaterializedView(t *testing.T) {
	store := newFakeStore()
	store.findRows[models.CollGenre] = []interface{}{
		models.GenreRollup{ID: "Drama", Genre: "Drama", TotalViews: 10, UniqueUsers: 4},
	}

	rec := serve(t, store, nil, http.MethodGet, "/api/analytics/genres", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rollups []models.GenreRollup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rollups))
	require.Len(t, rollups, 1)
	assert.Equal(t, "Drama", rollups[0].Genre)
	assert.Zero(t, store.aggCalls[models.CollSessions], "populated view must not trigger the fallback")
}

func TestHandleGenresFallsBackWhenViewEmpty(t *testing.T) {
	store := newFakeStore()
	store.aggRows[models.CollSessions] = []bson.M{
		{"_id": "Action", "total_views": int64(7), "avg_watch_time": 55.556, "avg_completion_rate": 0.789, "unique_users": int64(3)},
	}

	rec := serve(t, store, nil, http.MethodGet, "/api/analytics/genres", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var rollups []models.GenreRollup
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rollups))
	require.Len(t, rollups, 1)
	assert.Equal(t, "Action", rollups[0].Genre)
	assert.Equal(t, 55.56, rollups[0].AvgWatchTime)
	assert.Equal(t, 0.79, rollups[0].AvgCompletionRate)
	assert.Equal(t, 1, store.aggCalls[models.CollSessions])
}

func TestHandleDailyTrendsLimit(t *testing.T) {
	store := newFakeStore()
	store.findRows[models.CollDaily] = []interface{}{
		models.DailyRollup{ID: "2024-01-02", Date: "2024-01-02", TotalViews: 5},
		models.DailyRollup{ID: "2024-01-01", Date: "2024-01-01", TotalViews: 3},
	}

	rec := serve(t, store, nil, http.MethodGet, "/api/analytics/daily-trends", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, store.lastFindOpts)
	assert.Equal(t, int64(30), *store.lastFindOpts.Limit)

	serve(t, store, nil, http.MethodGet, "/api/analytics/daily-trends?days=500", nil)
	assert.Equal(t, int64(90), *store.lastFindOpts.Limit, "days parameter is capped")
}

func TestHandleDevices(t *testing.T) {
	store := newFakeStore()
	store.aggRows[models.CollSessions] = []bson.M{
		{"_id": "Mobile", "session_count": int64(12), "avg_completion_rate": 0.556},
	}

	rec := serve(t, store, nil, http.MethodGet, "/api/analytics/devices", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var devices []models.DeviceAnalytics
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &devices))
	require.Len(t, devices, 1)
	assert.Equal(t, "Mobile", devices[0].DeviceType)
	assert.Equal(t, 0.56, devices[0].AvgCompletionRate)
}

func TestRunETLRequiresAdmin(t *testing.T) {
	var triggered bool
	runETL := func(ctx context.Context) error {
		triggered = true
		return nil
	}

	rec := serve(t, newFakeStore(), runETL, http.MethodPost, "/api/admin/run-etl", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, triggered)

	rec = serve(t, newFakeStore(), runETL, http.MethodPost, "/api/admin/run-etl",
		map[string]string{"Authorization": "Bearer admin"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, triggered)
}

func TestRunETLPropagatesFailure(t *testing.T) {
	runETL := func(ctx context.Context) error { return errors.New("LOADING phase: connection reset") }
	rec := serve(t, newFakeStore(), runETL, http.MethodPost, "/api/admin/run-etl",
		map[string]string{"Authorization": "Bearer admin"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

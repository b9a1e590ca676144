package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jordanlanch/clientintel/pkg/cache"
	"github.com/jordanlanch/clientintel/pkg/dailyplan"
	"github.com/jordanlanch/clientintel/pkg/database"
	"github.com/jordanlanch/clientintel/pkg/export"
	"github.com/jordanlanch/clientintel/pkg/intelligence"
	"github.com/jordanlanch/clientintel/pkg/jobs"
	"github.com/jordanlanch/clientintel/pkg/metrics"
	"github.com/jordanlanch/clientintel/pkg/models"
	"github.com/jordanlanch/clientintel/pkg/store"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := now.AddDate(0, 0, -n)
	return &t
}

// testEnv wires the API over in-memory SQLite and miniredis with a fixed clock.
type testEnv struct {
	e         *echo.Echo
	store     *store.Store
	snapshots *cache.AnalysisCache
	metrics   *metrics.Metrics
	redis     *miniredis.Miniredis
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewClient(database.DriverSQLite, ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	redisClient, err := cache.NewClient("redis://"+mr.Addr(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { redisClient.Close() })

	engine, err := intelligence.NewService(intelligence.DefaultConfig(), nil)
	require.NoError(t, err)
	engine.SetClock(func() time.Time { return now })

	planner, err := dailyplan.NewService(engine, dailyplan.DefaultConfig(), nil)
	require.NoError(t, err)

	snapshots := cache.NewAnalysisCache(redisClient, time.Hour)
	snapshots.SetClock(func() time.Time { return now })

	st := store.New(db)
	m := metrics.New(prometheus.NewRegistry())
	recomputer := jobs.NewRecomputer(st, engine, snapshots, m, nil)

	h := &Handlers{
		Health:       NewHealthHandler(db, redisClient, m),
		Intelligence: NewIntelligenceHandler(st, engine, snapshots, recomputer, m, nil),
		DailyPlan:    NewDailyPlanHandler(st, planner, export.NewService(), m),
		Suggestions:  NewSuggestionsHandler(st, engine, snapshots, m, nil),
		Interactions: NewInteractionHandler(st, engine, snapshots, m, nil),
	}

	e := echo.New()
	h.Register(e)

	return &testEnv{e: e, store: st, snapshots: snapshots, metrics: m, redis: mr}
}

func (env *testEnv) createClient(t *testing.T, c models.Client) *models.Client {
	t.Helper()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = *daysAgo(30)
	}
	require.NoError(t, env.store.CreateClient(context.Background(), &c))
	return &c
}

func (env *testEnv) logInteraction(t *testing.T, c *models.Client, outcome models.Outcome, at time.Time) {
	t.Helper()
	_, err := env.store.LogInteraction(context.Background(), store.LogInteractionParams{
		ClientID:       c.ID,
		Type:           "WhatsApp",
		Content:        "seguimiento",
		Outcome:        outcome,
		PreviousStatus: c.Status,
		NextContact:    c.NextContactAt,
		At:             at,
	})
	require.NoError(t, err)
}

func (env *testEnv) do(t *testing.T, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) postJSON(t *testing.T, target, body string) *httptest.ResponseRecorder {
	return env.do(t, http.MethodPost, target, strings.NewReader(body))
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

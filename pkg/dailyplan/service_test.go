package dailyplan

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/jordanlanch/clientintel/pkg/intelligence"
	"github.com/jordanlanch/clientintel/pkg/models"
	"github.com/jordanlanch/clientintel/pkg/testdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

func daysAgo(n int) *time.Time {
	t := now.AddDate(0, 0, -n)
	return &t
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	engine, err := intelligence.NewService(intelligence.DefaultConfig(), nil)
	require.NoError(t, err)
	engine.SetClock(func() time.Time { return now })

	svc, err := NewService(engine, DefaultConfig(), nil)
	require.NoError(t, err)
	return svc
}

// clientsIn returns n clients in status with no history, so they classify by
// status alone.
func clientsIn(status models.Status, firstID, n int) []models.Client {
	out := make([]models.Client, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Client{
			ID:        firstID + i,
			Name:      fmt.Sprintf("Cliente %d", firstID+i),
			Company:   "Gasolinera",
			Status:    status,
			CreatedAt: *daysAgo(5 + i),
		})
	}
	return out
}

func TestBuildPlan_Quotas(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var clients []models.Client
	clients = append(clients, clientsIn(models.StatusNegotiating, 1, 10)...)
	clients = append(clients, clientsIn(models.StatusInterested, 100, 10)...)
	clients = append(clients, clientsIn(models.StatusContacted, 200, 10)...)

	t.Run("limit 20 splits 8/6/6", func(t *testing.T) {
		plan, err := svc.BuildPlan(ctx, clients, 20)
		require.NoError(t, err)
		require.Len(t, plan.Entries, 20)
		assert.Equal(t, 8, plan.Summary.ByStatus[models.StatusNegotiating])
		assert.Equal(t, 6, plan.Summary.ByStatus[models.StatusInterested])
		assert.Equal(t, 6, plan.Summary.ByStatus[models.StatusContacted])
	})

	t.Run("limit 5 splits 2/1/2", func(t *testing.T) {
		plan, err := svc.BuildPlan(ctx, clients, 5)
		require.NoError(t, err)
		require.Len(t, plan.Entries, 5)
		assert.Equal(t, 2, plan.Summary.ByStatus[models.StatusNegotiating])
		assert.Equal(t, 1, plan.Summary.ByStatus[models.StatusInterested])
		assert.Equal(t, 2, plan.Summary.ByStatus[models.StatusContacted])
	})
}

func TestBuildPlan_Overflow(t *testing.T) {
	svc := newTestService(t)

	var clients []models.Client
	clients = append(clients, clientsIn(models.StatusNegotiating, 1, 2)...)
	clients = append(clients, clientsIn(models.StatusContacted, 100, 10)...)

	plan, err := svc.BuildPlan(context.Background(), clients, 10)
	require.NoError(t, err)

	require.Len(t, plan.Entries, 10)
	assert.Equal(t, 2, plan.Summary.ByStatus[models.StatusNegotiating])
	assert.Equal(t, 8, plan.Summary.ByStatus[models.StatusContacted])
}

func TestBuildPlan_FewerClientsThanLimit(t *testing.T) {
	svc := newTestService(t)
	clients := clientsIn(models.StatusNew, 1, 3)

	plan, err := svc.BuildPlan(context.Background(), clients, 20)
	require.NoError(t, err)

	assert.Equal(t, "2025-06-02", plan.Date)
	assert.Equal(t, 20, plan.Capacity)
	assert.Equal(t, 3, plan.TotalPending)
	require.Len(t, plan.Entries, 3)
	for i, e := range plan.Entries {
		assert.Equal(t, i+1, e.Position)
	}
	assert.Equal(t, 3, plan.Summary.ByDisposition[models.DispositionUnknown])
	assert.Equal(t, 3, plan.Summary.ByAction[models.ActionContactToday])
}

func TestBuildPlan_Empty(t *testing.T) {
	svc := newTestService(t)

	plan, err := svc.BuildPlan(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, plan.Capacity)
	assert.Equal(t, 0, plan.TotalPending)
	assert.Empty(t, plan.Entries)
}

func TestBuildPlan_Capacity(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for requested, want := range map[int]int{0: 20, -3: 5, -100: 5, 1: 5, 5: 5, 33: 33, 50: 50, 100: 50} {
		plan, err := svc.BuildPlan(ctx, nil, requested)
		require.NoError(t, err)
		assert.Equal(t, want, plan.Capacity, "requested=%d", requested)
	}
}

func TestBuildPlan_TieBreaks(t *testing.T) {
	svc := newTestService(t)
	last := daysAgo(2)

	older := models.Client{ID: 1, Name: "Antiguo", Company: "A", Status: models.StatusContacted, CreatedAt: *daysAgo(20), LastContactAt: last}
	newer := models.Client{ID: 2, Name: "Reciente", Company: "B", Status: models.StatusContacted, CreatedAt: *daysAgo(10), LastContactAt: last}

	plan, err := svc.BuildPlan(context.Background(), []models.Client{older, newer}, 5)
	require.NoError(t, err)
	require.Len(t, plan.Entries, 2)
	assert.Equal(t, plan.Entries[0].CompositeScore, plan.Entries[1].CompositeScore)
	assert.Equal(t, 2, plan.Entries[0].ClientID, "more recently created first")
}

func TestRanksBefore(t *testing.T) {
	base := func(id int) scored {
		return scored{Entry: Entry{ClientID: id, CompositeScore: 50}, stageValue: 50, createdAt: *daysAgo(10)}
	}

	a, b := base(1), base(2)
	a.CompositeScore = 50.1
	assert.True(t, ranksBefore(&a, &b))
	assert.False(t, ranksBefore(&b, &a))

	a, b = base(1), base(2)
	a.stageValue = 85
	assert.True(t, ranksBefore(&a, &b), "higher stage value first")

	a, b = base(1), base(2)
	b.DaysOverdue = 4
	assert.True(t, ranksBefore(&b, &a), "more overdue first")

	a, b = base(1), base(2)
	a.createdAt = *daysAgo(1)
	assert.True(t, ranksBefore(&a, &b), "more recently created first")

	a, b = base(1), base(2)
	assert.False(t, ranksBefore(&a, &b))
	assert.False(t, ranksBefore(&b, &a))
}

func TestBuildPlan_SkipsInvalidClient(t *testing.T) {
	svc := newTestService(t)
	clients := []models.Client{
		{ID: 1, Name: "Válido", Status: models.StatusNew, CreatedAt: *daysAgo(10)},
		{ID: 2, Name: "Heredado", Status: models.Status("cerrado"), CreatedAt: *daysAgo(10)},
	}

	plan, err := svc.BuildPlan(context.Background(), clients, 10)
	require.NoError(t, err)
	require.Len(t, plan.Entries, 1)
	assert.Equal(t, 1, plan.Entries[0].ClientID)
	assert.Equal(t, 1, plan.Entries[0].Position)
	assert.Equal(t, 1, plan.TotalPending)
}

func TestBuildPlan_Canceled(t *testing.T) {
	svc := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	plan, err := svc.BuildPlan(ctx, []models.Client{{ID: 1, Status: models.StatusNew}}, 10)
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, plan)
}

func TestBuildPlan_RandomClients(t *testing.T) {
	svc := newTestService(t)
	cfg := testdata.DefaultClientGeneratorConfig()
	cfg.Count = 80
	clients := testdata.NewClientGenerator(7, cfg).GenerateClients(now)

	plan, err := svc.BuildPlan(context.Background(), clients, 20)
	require.NoError(t, err)
	require.Len(t, plan.Entries, 20)

	seen := map[int]bool{}
	for i, e := range plan.Entries {
		assert.Equal(t, i+1, e.Position)
		assert.False(t, seen[e.ClientID], "client %d listed twice", e.ClientID)
		seen[e.ClientID] = true
		assert.LessOrEqual(t, e.ActionabilityScore, 100)
		if i > 0 {
			assert.GreaterOrEqual(t, plan.Entries[i-1].CompositeScore, e.CompositeScore)
		}
	}

	again, err := svc.BuildPlan(context.Background(), clients, 20)
	require.NoError(t, err)
	assert.Equal(t, plan, again)
}

func TestEntryJSON_NeverContacted(t *testing.T) {
	data, err := json.Marshal(Entry{Position: 1, ClientID: 7, DaysSinceContact: models.NeverDays, DaysOverdue: 2})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"diasSinContacto":null`)
	assert.Contains(t, string(data), `"diasVencido":2`)

	var back Entry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, models.NeverDays, back.DaysSinceContact)
	assert.Equal(t, 7, back.ClientID)

	data, err = json.Marshal(Entry{DaysSinceContact: 3})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"diasSinContacto":3`)
}

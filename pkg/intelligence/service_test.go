package intelligence

import (
	"testing"
	"time"

	"github.com/jordanlanch/clientintel/pkg/domain"
	"github.com/jordanlanch/clientintel/pkg/followup"
	"github.com/jordanlanch/clientintel/pkg/logger"
	"github.com/jordanlanch/clientintel/pkg/models"
	"github.com/jordanlanch/clientintel/pkg/testdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(DefaultConfig(), logger.Discard())
	require.NoError(t, err)
	svc.SetClock(func() time.Time { return now })
	return svc
}

func TestNewService_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Priority.Weights.StageValue = 0.5

	svc, err := NewService(cfg, nil)
	assert.Error(t, err)
	assert.Nil(t, svc)
}

func TestAnalyze_InvalidInput(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name   string
		client *models.Client
	}{
		{"nil client", nil},
		{"missing id", &models.Client{Status: models.StatusNew}},
		{"unknown status", &models.Client{ID: 3, Status: models.Status("Prospecto")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := svc.Analyze(tt.client)
			require.Error(t, err)
			assert.Nil(t, a)
			assert.True(t, domain.IsInvalidInput(err))
		})
	}
}

func TestAnalyze_Scenarios(t *testing.T) {
	svc := newTestService(t)

	t.Run("negotiation without interactions is unknown", func(t *testing.T) {
		client := &models.Client{ID: 1, Status: models.StatusNegotiating, Company: "Gas Express", CreatedAt: *daysAgo(2)}
		a, err := svc.Analyze(client)
		require.NoError(t, err)
		assert.Equal(t, models.DispositionUnknown, a.Disposition.Category)
	})

	t.Run("interested with high response rate is receptive", func(t *testing.T) {
		outcomes := append(repeat(models.OutcomeResponse, 8), repeat(models.OutcomeSilence, 2)...)
		client := &models.Client{
			ID:            2,
			Status:        models.StatusInterested,
			Email:         "compras@transportes.mx",
			CreatedAt:     *daysAgo(60),
			LastContactAt: daysAgo(2),
			Interactions:  history("WhatsApp", outcomes...),
		}

		a, err := svc.Analyze(client)
		require.NoError(t, err)
		assert.Equal(t, 0.8, a.Metrics.ResponseRate)
		assert.Equal(t, models.DispositionReceptive, a.Disposition.Category)
		assert.Equal(t, 100, a.Priority.Factors.Receptivity)
		assert.Equal(t, 85, a.Priority.Factors.StageValue)
		assert.Equal(t, followup.TemperatureHot, a.Temperature)
		require.NotNil(t, a.TopRecommendation())
		assert.Equal(t, models.ActionContactToday, a.TopRecommendation().Action)
	})

	t.Run("five days overdue caps urgency", func(t *testing.T) {
		client := &models.Client{ID: 3, Status: models.StatusNew, CreatedAt: *daysAgo(10), NextContactAt: daysAgo(5)}
		a, err := svc.Analyze(client)
		require.NoError(t, err)
		assert.Equal(t, 100, a.Priority.Factors.Urgency)
	})
}

func TestAnalyze_Deterministic(t *testing.T) {
	svc := newTestService(t)
	client := &models.Client{
		ID:            4,
		Status:        models.StatusContacted,
		CreatedAt:     *daysAgo(30),
		LastContactAt: daysAgo(12),
		Interactions:  history("llamada", models.OutcomeResponse, models.OutcomeSilence, models.OutcomeAdvance),
	}

	first, err := svc.Analyze(client)
	require.NoError(t, err)
	second, err := svc.Analyze(client)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, now, first.ComputedAt)
}

func TestAnalyze_LegacyFields(t *testing.T) {
	svc := newTestService(t)

	t.Run("suggestions mirror recommendations", func(t *testing.T) {
		client := &models.Client{ID: 5, Status: models.StatusNew, CreatedAt: *daysAgo(1)}
		a, err := svc.Analyze(client)
		require.NoError(t, err)

		assert.Equal(t, followup.TemperatureWarm, a.Temperature)
		require.Len(t, a.Suggestions, 2)
		assert.Equal(t, followup.SuggestionFollowUp, a.Suggestions[0].Type)
		assert.Equal(t, followup.LevelMedium, a.Suggestions[0].Priority)
		assert.Equal(t, a.Recommendations[0].Reasoning, a.Suggestions[0].Message)
		assert.Equal(t, followup.SuggestionIncompleteData, a.Suggestions[1].Type)
		assert.Equal(t, followup.LevelLow, a.Suggestions[1].Priority)
	})

	t.Run("terminal statuses are inactive", func(t *testing.T) {
		client := &models.Client{ID: 6, Status: models.StatusLost, Company: "X", CreatedAt: *daysAgo(1)}
		a, err := svc.Analyze(client)
		require.NoError(t, err)
		assert.Equal(t, followup.TemperatureInactive, a.Temperature)
	})
}

func TestAnalyze_RandomClients(t *testing.T) {
	svc := newTestService(t)
	cfg := testdata.DefaultClientGeneratorConfig()
	cfg.Count = 200
	clients := testdata.NewClientGenerator(42, cfg).GenerateClients(now)

	for i := range clients {
		c := &clients[i]
		a, err := svc.Analyze(c)
		require.NoError(t, err)

		assert.True(t, a.Disposition.Category.IsValid())
		assert.Contains(t, DispositionRuleOrder(), a.Disposition.Rule)
		assert.GreaterOrEqual(t, a.Priority.Score, 0)
		assert.LessOrEqual(t, a.Priority.Score, 100)
		assert.GreaterOrEqual(t, a.Disposition.Confidence, 0.0)
		assert.LessOrEqual(t, a.Disposition.Confidence, 1.0)

		require.NotEmpty(t, a.Recommendations)
		for j := 1; j < len(a.Recommendations); j++ {
			assert.GreaterOrEqual(t, a.Recommendations[j-1].Priority, a.Recommendations[j].Priority)
		}
		assert.Equal(t, c.MissingContactData(), containsAction(a.Recommendations, models.ActionCompleteData))
	}
}

func containsAction(recs []Recommendation, action models.Action) bool {
	for _, r := range recs {
		if r.Action == action {
			return true
		}
	}
	return false
}

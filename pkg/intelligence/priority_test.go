package intelligence

import (
	"math/rand"
	"testing"
	"time"

	"github.com/jordanlanch/clientintel/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestPriorityWeightsSum(t *testing.T) {
	assert.InDelta(t, 1.0, DefaultConfig().Priority.Weights.Sum(), 1e-9)
}

func TestComputePriority_Urgency(t *testing.T) {
	cfg := DefaultConfig().Priority
	m := &Metrics{DaysSinceContact: 1}
	d := Disposition{Category: models.DispositionDoubtful}

	halfDayAgo := now.Add(-12 * time.Hour)
	tomorrow := now.AddDate(0, 0, 1)

	tests := []struct {
		name string
		next *time.Time
		want int
	}{
		{"no next contact", nil, 0},
		{"scheduled in the future", &tomorrow, 0},
		{"overdue less than a day", &halfDayAgo, 0},
		{"overdue one day", daysAgo(1), 33},
		{"overdue two days", daysAgo(2), 67},
		{"overdue three days caps", daysAgo(3), 100},
		{"overdue five days caps", daysAgo(5), 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &models.Client{ID: 1, Status: models.StatusNew, NextContactAt: tt.next}
			p := ComputePriority(cfg, client, m, d, now)
			assert.Equal(t, tt.want, p.Factors.Urgency)
		})
	}
}

func TestComputePriority_Factors(t *testing.T) {
	cfg := DefaultConfig().Priority

	t.Run("momentum scales with activity", func(t *testing.T) {
		client := &models.Client{ID: 1, Status: models.StatusContacted}
		p := ComputePriority(cfg, client, &Metrics{ResponseRate: 0.8, ContactFrequency30d: 5}, Disposition{}, now)
		assert.Equal(t, 40, p.Factors.Momentum)

		p = ComputePriority(cfg, client, &Metrics{ResponseRate: 0.8, ContactFrequency30d: 20}, Disposition{}, now)
		assert.Equal(t, 80, p.Factors.Momentum)
	})

	t.Run("freshness decays over the window", func(t *testing.T) {
		client := &models.Client{ID: 1, Status: models.StatusContacted}
		for days, want := range map[int]int{0: 100, 3: 90, 15: 50, 30: 0, 90: 0, models.NeverDays: 0} {
			p := ComputePriority(cfg, client, &Metrics{DaysSinceContact: days}, Disposition{}, now)
			assert.Equal(t, want, p.Factors.Freshness, "days=%d", days)
		}
	})

	t.Run("unmapped lookups use defaults", func(t *testing.T) {
		client := &models.Client{ID: 1, Status: models.StatusClosed}
		p := ComputePriority(cfg, client, &Metrics{}, Disposition{Category: models.Disposition("otro")}, now)
		assert.Equal(t, 30, p.Factors.StageValue)
		assert.Equal(t, 40, p.Factors.Receptivity)
	})
}

func TestComputePriority_Score(t *testing.T) {
	cfg := DefaultConfig().Priority
	client := &models.Client{ID: 1, Status: models.StatusInterested}
	m := &Metrics{ResponseRate: 0.8, ContactFrequency30d: 10, DaysSinceContact: 2}

	p := ComputePriority(cfg, client, m, Disposition{Category: models.DispositionReceptive}, now)

	assert.Equal(t, PriorityFactors{
		Urgency:     0,
		Receptivity: 100,
		Momentum:    80,
		StageValue:  85,
		Freshness:   93,
	}, p.Factors)
	// 20 + 12 + 29.75 + 13.95
	assert.Equal(t, 76, p.Score)
}

func TestComputePriority_Bounds(t *testing.T) {
	cfg := DefaultConfig().Priority
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 500; i++ {
		next := now.Add(time.Duration(r.Intn(30*24)-15*24) * time.Hour)
		client := &models.Client{
			ID:            i + 1,
			Status:        models.AllStatuses[r.Intn(len(models.AllStatuses))],
			NextContactAt: &next,
		}
		m := &Metrics{
			ResponseRate:        r.Float64(),
			ContactFrequency30d: r.Intn(40),
			DaysSinceContact:    r.Intn(120),
		}
		d := Disposition{Category: models.AllDispositions[r.Intn(len(models.AllDispositions))]}

		p := ComputePriority(cfg, client, m, d, now)

		assert.GreaterOrEqual(t, p.Score, 0)
		assert.LessOrEqual(t, p.Score, 100)
		for _, f := range []int{p.Factors.Urgency, p.Factors.Receptivity, p.Factors.Momentum, p.Factors.StageValue, p.Factors.Freshness} {
			assert.GreaterOrEqual(t, f, 0)
			assert.LessOrEqual(t, f, 100)
		}
	}
}

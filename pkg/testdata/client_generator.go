package testdata

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jordanlanch/clientintel/pkg/models"
)

// ClientGeneratorConfig configures client generation parameters
type ClientGeneratorConfig struct {
	Count           int
	Statuses        []models.Status
	MaxInteractions int
	HistoryDays     int     // interactions and creation dates fall within this many days
	EmailChance     float64 // 0.0-1.0 (probability of having email)
	CompanyChance   float64
	ContactedChance float64 // probability of a last-contact date
	ScheduledChance float64 // probability of a next-contact date
	OutcomeChance   float64 // probability an interaction records an outcome
}

// DefaultClientGeneratorConfig returns a mix close to a real sales pipeline.
func DefaultClientGeneratorConfig() ClientGeneratorConfig {
	return ClientGeneratorConfig{
		Count:           50,
		Statuses:        models.AllStatuses,
		MaxInteractions: 15,
		HistoryDays:     90,
		EmailChance:     0.7,
		CompanyChance:   0.8,
		ContactedChance: 0.8,
		ScheduledChance: 0.7,
		OutcomeChance:   0.8,
	}
}

// Channels are the interaction types used by generated data.
var Channels = []string{"WhatsApp", "llamada", "email", "visita"}

var outcomes = []models.Outcome{
	models.OutcomeResponse,
	models.OutcomeSilence,
	models.OutcomeAdvance,
	models.OutcomeRejection,
}

// Industrial equipment buyers: gas stations, fleets, plants.
var companySuffixes = []string{"Gasolinera", "Transportes", "Gas", "Estaciones", "Logística", "Combustibles"}

// ClientGenerator builds reproducible random clients from a seed.
type ClientGenerator struct {
	faker  *gofakeit.Faker
	config ClientGeneratorConfig
	nextID int
}

// NewClientGenerator creates a generator; equal seeds produce equal clients.
func NewClientGenerator(seed int64, config ClientGeneratorConfig) *ClientGenerator {
	return &ClientGenerator{
		faker:  gofakeit.New(seed),
		config: config,
		nextID: 1,
	}
}

// GenerateClient creates one client, with interactions, relative to now
func (g *ClientGenerator) GenerateClient(now time.Time) models.Client {
	f := g.faker
	cfg := g.config

	id := g.nextID
	g.nextID++

	created := now.Add(-time.Duration(f.IntRange(1, cfg.HistoryDays*24)) * time.Hour)
	c := models.Client{
		ID:        id,
		Name:      f.Name(),
		Phone:     f.Phone(),
		Status:    cfg.Statuses[f.IntRange(0, len(cfg.Statuses)-1)],
		CreatedAt: created,
	}

	if f.Rand.Float64() < cfg.EmailChance {
		c.Email = f.Email()
	}
	if f.Rand.Float64() < cfg.CompanyChance {
		c.Company = f.RandomString(companySuffixes) + " " + f.LastName()
	}

	n := f.IntRange(0, cfg.MaxInteractions)
	c.Interactions = make([]models.Interaction, 0, n)
	for i := 0; i < n; i++ {
		span := int(now.Sub(created) / time.Hour)
		if span < 1 {
			span = 1
		}
		in := models.Interaction{
			ID:        id*1000 + i,
			ClientID:  id,
			Type:      f.RandomString(Channels),
			Content:   f.Sentence(8),
			CreatedAt: created.Add(time.Duration(f.IntRange(0, span)) * time.Hour),
		}
		if f.Rand.Float64() < cfg.OutcomeChance {
			in.Outcome = outcomes[f.IntRange(0, len(outcomes)-1)]
		}
		c.Interactions = append(c.Interactions, in)
	}

	if f.Rand.Float64() < cfg.ContactedChance {
		last := now.Add(-time.Duration(f.IntRange(0, cfg.HistoryDays*24)) * time.Hour)
		c.LastContactAt = &last
	}
	if f.Rand.Float64() < cfg.ScheduledChance {
		next := now.Add(time.Duration(f.IntRange(-14*24, 7*24)) * time.Hour)
		c.NextContactAt = &next
	}

	return c
}

// GenerateClients creates config.Count clients
func (g *ClientGenerator) GenerateClients(now time.Time) []models.Client {
	clients := make([]models.Client, 0, g.config.Count)
	for i := 0; i < g.config.Count; i++ {
		clients = append(clients, g.GenerateClient(now))
	}
	return clients
}

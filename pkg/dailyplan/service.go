package dailyplan

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/jordanlanch/clientintel/pkg/domain"
	"github.com/jordanlanch/clientintel/pkg/intelligence"
	"github.com/jordanlanch/clientintel/pkg/logger"
	"github.com/jordanlanch/clientintel/pkg/models"
	"golang.org/x/sync/errgroup"
)

// Entry is one client on the daily list.
type Entry struct {
	Position           int                `json:"posicion"`
	ClientID           int                `json:"clientId"`
	Name               string             `json:"nombre"`
	Company            string             `json:"empresa,omitempty"`
	Status             models.Status      `json:"estatus"`
	Phone              string             `json:"telefono,omitempty"`
	CompositeScore     float64            `json:"scoreCompuesto"`
	PriorityScore      int                `json:"priorityScore"`
	ActionabilityScore int                `json:"actionabilityScore"`
	Disposition        models.Disposition `json:"disposicion"`
	RecommendedAction  models.Action      `json:"accionRecomendada,omitempty"`
	Approach           models.Approach    `json:"approach,omitempty"`
	Channel            string             `json:"canal,omitempty"`
	SelectionReason    string             `json:"razonSeleccion"`
	DaysSinceContact   int                `json:"diasSinContacto"`
	DaysOverdue        int                `json:"diasVencido"`
}

// MarshalJSON writes diasSinContacto as null for clients never contacted.
func (e Entry) MarshalJSON() ([]byte, error) {
	type plain Entry
	return json.Marshal(struct {
		plain
		DaysSinceContact *int `json:"diasSinContacto"`
	}{plain(e), models.NullableDays(e.DaysSinceContact)})
}

// UnmarshalJSON reverses MarshalJSON.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	aux := struct {
		*plain
		DaysSinceContact *int `json:"diasSinContacto"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.DaysSinceContact = models.DaysOrNever(aux.DaysSinceContact)
	return nil
}

// Summary counts the selected entries.
type Summary struct {
	ByStatus      map[models.Status]int      `json:"porEstatus"`
	ByDisposition map[models.Disposition]int `json:"porDisposicion"`
	ByAction      map[models.Action]int      `json:"porAccion"`
}

// Plan is the ordered contact list for one day.
type Plan struct {
	Date         string  `json:"fecha"`
	Capacity     int     `json:"capacidad"`
	TotalPending int     `json:"totalPendientes"`
	Entries      []Entry `json:"listaDelDia"`
	Summary      Summary `json:"resumen"`
}

// scored is an entry plus the fields used only during allocation.
type scored struct {
	Entry
	category   Category
	stageValue int
	createdAt  time.Time
	skip       bool // client could not be analyzed
}

// Service builds daily plans on top of the intelligence engine.
type Service struct {
	engine *intelligence.Service
	cfg    Config
	logger logger.Logger
}

// NewService creates a daily plan service.
func NewService(engine *intelligence.Service, cfg Config, log logger.Logger) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Service{engine: engine, cfg: cfg, logger: log}, nil
}

// Config returns the allocator configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// Now returns the engine's current instant; plans are dated by it.
func (s *Service) Now() time.Time {
	return s.engine.Now()
}

// BuildPlan scores every candidate, reserves slots per category and returns
// the ordered list truncated to the clamped limit.
func (s *Service) BuildPlan(ctx context.Context, clients []models.Client, requestedLimit int) (*Plan, error) {
	limit := s.cfg.ClampLimit(requestedLimit)
	now := s.engine.Now()

	pool, err := s.score(ctx, clients, now)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(pool, func(i, j int) bool { return ranksBefore(&pool[i], &pool[j]) })

	selected := s.allocate(pool, limit)

	entries := make([]Entry, len(selected))
	for i := range selected {
		entries[i] = selected[i].Entry
		entries[i].Position = i + 1
	}

	s.logger.Info("daily plan built",
		"candidates", len(clients),
		"skipped", len(clients)-len(pool),
		"capacity", limit,
		"selected", len(entries),
	)

	return &Plan{
		Date:         now.UTC().Format("2006-01-02"),
		Capacity:     limit,
		TotalPending: len(pool),
		Entries:      entries,
		Summary:      summarize(entries),
	}, nil
}

// score analyzes clients concurrently. Results land in index-addressed slots,
// so the output order matches the input order regardless of scheduling.
func (s *Service) score(ctx context.Context, clients []models.Client, now time.Time) ([]scored, error) {
	out := make([]scored, len(clients))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for i := range clients {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c := &clients[i]
			a, err := s.engine.AnalyzeAt(c, now)
			if domain.IsInvalidInput(err) {
				s.logger.Warn("skipping client in daily plan", "client_id", c.ID, "error", err)
				out[i].skip = true
				return nil
			}
			if err != nil {
				return fmt.Errorf("analyze client %d: %w", c.ID, err)
			}
			out[i] = s.entryFor(c, a, now)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	pool := out[:0]
	for _, sc := range out {
		if !sc.skip {
			pool = append(pool, sc)
		}
	}
	return pool, nil
}

func (s *Service) entryFor(c *models.Client, a *intelligence.Analysis, now time.Time) scored {
	actionability := s.cfg.actionabilityScore(c, a, now)

	e := Entry{
		ClientID:           c.ID,
		Name:               c.Name,
		Company:            c.Company,
		Status:             c.Status,
		Phone:              c.Phone,
		CompositeScore:     s.cfg.compositeScore(a.Priority.Score, actionability),
		PriorityScore:      a.Priority.Score,
		ActionabilityScore: actionability,
		Disposition:        a.Disposition.Category,
		SelectionReason:    selectionReason(c, a, now),
		DaysSinceContact:   a.Metrics.DaysSinceContact,
		DaysOverdue:        c.DaysOverdue(now),
	}
	if top := a.TopRecommendation(); top != nil {
		e.RecommendedAction = top.Action
		e.Approach = top.Approach
		e.Channel = top.Channel
	}

	return scored{
		Entry:      e,
		category:   classify(c, a.Disposition.Category),
		stageValue: s.engine.Config().Priority.StageValue(c.Status),
		createdAt:  c.CreatedAt,
	}
}

// ranksBefore orders by composite score, then stage value, then days overdue,
// then most recently created, all descending.
func ranksBefore(a, b *scored) bool {
	if a.CompositeScore != b.CompositeScore {
		return a.CompositeScore > b.CompositeScore
	}
	if a.stageValue != b.stageValue {
		return a.stageValue > b.stageValue
	}
	if a.DaysOverdue != b.DaysOverdue {
		return a.DaysOverdue > b.DaysOverdue
	}
	return a.createdAt.After(b.createdAt)
}

// allocate fills each category up to its quota from the ranked pool, tops up
// from the whole pool, then re-sorts and truncates to limit.
func (s *Service) allocate(pool []scored, limit int) []scored {
	must, high, maintenance := s.cfg.Quotas(limit)
	quotas := map[Category]int{
		CategoryMustContact: must,
		CategoryHighValue:   high,
		CategoryMaintenance: maintenance,
	}

	taken := make(map[int]bool, limit)
	result := make([]scored, 0, limit)

	for _, cat := range []Category{CategoryMustContact, CategoryHighValue, CategoryMaintenance} {
		count := 0
		for i := range pool {
			if count >= quotas[cat] {
				break
			}
			c := &pool[i]
			if c.category != cat || taken[c.ClientID] {
				continue
			}
			taken[c.ClientID] = true
			result = append(result, *c)
			count++
		}
	}

	for i := range pool {
		if len(result) >= limit {
			break
		}
		c := &pool[i]
		if taken[c.ClientID] {
			continue
		}
		taken[c.ClientID] = true
		result = append(result, *c)
	}

	sort.SliceStable(result, func(i, j int) bool { return ranksBefore(&result[i], &result[j]) })

	if len(result) > limit {
		result = result[:limit]
	}
	return result
}

func summarize(entries []Entry) Summary {
	sum := Summary{
		ByStatus:      make(map[models.Status]int),
		ByDisposition: make(map[models.Disposition]int),
		ByAction:      make(map[models.Action]int),
	}
	for _, e := range entries {
		sum.ByStatus[e.Status]++
		if e.Disposition != "" {
			sum.ByDisposition[e.Disposition]++
		}
		if e.RecommendedAction != "" {
			sum.ByAction[e.RecommendedAction]++
		}
	}
	return sum
}

package intelligence

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/jordanlanch/clientintel/pkg/models"
)

// Metrics are the behavioral statistics derived from a client's history.
// They are recomputed on demand and never authoritative.
type Metrics struct {
	TotalInteractions   int              `json:"totalInteractions"`
	ShortWindow         int              `json:"ultimos7"`
	LongWindow          int              `json:"ultimos30"`
	Responses           int              `json:"respuestas"`
	Silences            int              `json:"silencios"`
	Advances            int              `json:"avances"`
	Rejections          int              `json:"rechazos"`
	ResponseRate        float64          `json:"responseRate"`
	ChannelUsage        map[string]int   `json:"channelUsage"`
	ChannelSuccess      map[string]int   `json:"channelSuccess"`
	PreferredChannel    string           `json:"canalPreferido,omitempty"`
	DaysSinceContact    int              `json:"diasSinContacto"`
	DaysSinceCreation   int              `json:"diasDesdeCreacion"`
	DaysInCurrentStatus int              `json:"diasEnEstatusActual"`
	StatusChanges       int              `json:"cambiosEstatus"`
	ContactFrequency30d int              `json:"frecuenciaUltimos30"`
	RecentOutcomes      []models.Outcome `json:"ultimosOutcomes"`
}

// NeverContacted reports whether there is no reference date for the last contact.
func (m *Metrics) NeverContacted() bool {
	return m.DaysSinceContact == models.NeverDays
}

// MarshalJSON writes day counts that have no reference date as null.
func (m Metrics) MarshalJSON() ([]byte, error) {
	type plain Metrics
	return json.Marshal(struct {
		plain
		DaysSinceContact    *int `json:"diasSinContacto"`
		DaysSinceCreation   *int `json:"diasDesdeCreacion"`
		DaysInCurrentStatus *int `json:"diasEnEstatusActual"`
	}{
		plain:               plain(m),
		DaysSinceContact:    models.NullableDays(m.DaysSinceContact),
		DaysSinceCreation:   models.NullableDays(m.DaysSinceCreation),
		DaysInCurrentStatus: models.NullableDays(m.DaysInCurrentStatus),
	})
}

// UnmarshalJSON restores null or missing day counts to models.NeverDays.
func (m *Metrics) UnmarshalJSON(data []byte) error {
	type plain Metrics
	aux := struct {
		*plain
		DaysSinceContact    *int `json:"diasSinContacto"`
		DaysSinceCreation   *int `json:"diasDesdeCreacion"`
		DaysInCurrentStatus *int `json:"diasEnEstatusActual"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.DaysSinceContact = models.DaysOrNever(aux.DaysSinceContact)
	m.DaysSinceCreation = models.DaysOrNever(aux.DaysSinceCreation)
	m.DaysInCurrentStatus = models.DaysOrNever(aux.DaysInCurrentStatus)
	return nil
}

// ComputeMetrics aggregates interactions into Metrics relative to now.
// Interactions are read most recent first; the input slice is not modified.
func ComputeMetrics(cfg MetricsConfig, client *models.Client, interactions []models.Interaction, now time.Time) Metrics {
	ordered := make([]models.Interaction, len(interactions))
	copy(ordered, interactions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.After(ordered[j].CreatedAt)
	})

	shortFrom := now.AddDate(0, 0, -cfg.ShortWindowDays)
	longFrom := now.AddDate(0, 0, -cfg.LongWindowDays)

	m := Metrics{
		TotalInteractions: len(ordered),
		ChannelUsage:      make(map[string]int),
		ChannelSuccess:    make(map[string]int),
		RecentOutcomes:    make([]models.Outcome, 0, cfg.RecentOutcomeWindow),
	}

	// channels in first-seen order; map iteration order is not stable
	channels := make([]string, 0, 4)

	for _, in := range ordered {
		if !in.CreatedAt.Before(shortFrom) {
			m.ShortWindow++
		}
		if !in.CreatedAt.Before(longFrom) {
			m.LongWindow++
		}

		switch in.Outcome {
		case models.OutcomeResponse:
			m.Responses++
		case models.OutcomeSilence:
			m.Silences++
		case models.OutcomeAdvance:
			m.Advances++
		case models.OutcomeRejection:
			m.Rejections++
		}

		ch := in.Type
		if ch == "" {
			ch = cfg.DefaultChannel
		}
		if _, seen := m.ChannelUsage[ch]; !seen {
			channels = append(channels, ch)
		}
		m.ChannelUsage[ch]++
		if in.Outcome.IsSuccess() {
			m.ChannelSuccess[ch]++
		}
	}

	if base := m.Responses + m.Silences; base > 0 {
		m.ResponseRate = float64(m.Responses) / float64(base)
	}

	m.PreferredChannel = preferredChannel(channels, m.ChannelUsage, m.ChannelSuccess)

	lastTouch := client.LastTouch()
	m.DaysSinceContact = models.DaysSince(lastTouch, now)
	m.DaysSinceCreation = models.DaysSince(&client.CreatedAt, now)
	m.DaysInCurrentStatus = m.DaysSinceContact
	m.StatusChanges = len(client.StatusChanges)
	m.ContactFrequency30d = m.LongWindow

	window := cfg.RecentOutcomeWindow
	if window > len(ordered) {
		window = len(ordered)
	}
	for _, in := range ordered[:window] {
		if in.Outcome != "" {
			m.RecentOutcomes = append(m.RecentOutcomes, in.Outcome)
		}
	}

	return m
}

// preferredChannel picks the channel with the best success rate among those
// with at least one success, falling back to the most used one.
func preferredChannel(channels []string, usage, success map[string]int) string {
	if len(channels) == 0 {
		return ""
	}

	best := ""
	bestRate := -1.0
	for _, ch := range channels {
		wins := success[ch]
		if wins == 0 {
			continue
		}
		if rate := float64(wins) / float64(usage[ch]); rate > bestRate {
			bestRate = rate
			best = ch
		}
	}
	if best != "" {
		return best
	}

	byUse := make([]string, len(channels))
	copy(byUse, channels)
	sort.SliceStable(byUse, func(i, j int) bool {
		return usage[byUse[i]] > usage[byUse[j]]
	})
	return byUse[0]
}

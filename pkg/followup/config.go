package followup

import "github.com/jordanlanch/clientintel/pkg/models"

// Config holds the follow-up calendar and the recency windows used by the
// temperature and suggestion rules. These windows are independent of the
// disposition thresholds even where the numbers coincide.
type Config struct {
	// IntervalDays is the gap until the next contact after entering a status.
	// Statuses without an entry are not scheduled.
	IntervalDays map[models.Status]int `yaml:"interval_days" validate:"dive,gte=0"`

	HotMaxDays            int `yaml:"hot_max_days" validate:"gte=0"`
	WarmMaxDays           int `yaml:"warm_max_days" validate:"gte=0"`
	ColdMinDays           int `yaml:"cold_min_days" validate:"gte=0"`
	NewUncontactedDays    int `yaml:"new_uncontacted_days" validate:"gte=0"`
	NoContactDays         int `yaml:"no_contact_days" validate:"gte=0"`
	ArchiveDays           int `yaml:"archive_days" validate:"gte=0"`
	NegotiationActiveDays int `yaml:"negotiation_active_days" validate:"gte=0"`
	AfterSaleDays         int `yaml:"after_sale_days" validate:"gte=0"`
}

// DefaultConfig returns the calendar tuned for long B2B sales cycles.
func DefaultConfig() Config {
	return Config{
		IntervalDays: map[models.Status]int{
			models.StatusNew:         3,
			models.StatusContacted:   5,
			models.StatusNoResponse:  7,
			models.StatusInterested:  3,
			models.StatusNegotiating: 2,
			models.StatusReactivate:  7,
			models.StatusClosed:      90,
		},
		HotMaxDays:            7,
		WarmMaxDays:           14,
		ColdMinDays:           30,
		NewUncontactedDays:    3,
		NoContactDays:         14,
		ArchiveDays:           45,
		NegotiationActiveDays: 7,
		AfterSaleDays:         80,
	}
}

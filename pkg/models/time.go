package models

import (
	"math"
	"time"
)

// NeverDays stands in for "no reference date": it compares greater than any
// real day count.
const NeverDays = math.MaxInt32

// DaysSince returns whole days elapsed from t to now, floored and never
// negative. A nil or zero t yields NeverDays.
func DaysSince(t *time.Time, now time.Time) int {
	if t == nil || t.IsZero() {
		return NeverDays
	}
	d := now.Sub(*t)
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// LastTouch returns the last contact date, falling back to the creation date.
func (c *Client) LastTouch() *time.Time {
	if c.LastContactAt != nil && !c.LastContactAt.IsZero() {
		return c.LastContactAt
	}
	if c.CreatedAt.IsZero() {
		return nil
	}
	created := c.CreatedAt
	return &created
}

// DaysOverdue returns how many whole days the next contact date is past due,
// or 0 when there is no date or it has not passed yet.
func (c *Client) DaysOverdue(now time.Time) int {
	if !c.IsOverdue(now) {
		return 0
	}
	return DaysSince(c.NextContactAt, now)
}

// IsOverdue reports whether the next contact date lies strictly before now.
func (c *Client) IsOverdue(now time.Time) bool {
	return c.NextContactAt != nil && !c.NextContactAt.IsZero() && c.NextContactAt.Before(now)
}

// NullableDays renders a day count for JSON: NeverDays becomes nil so the
// sentinel never reaches clients as a number.
func NullableDays(days int) *int {
	if days == NeverDays {
		return nil
	}
	return &days
}

// DaysOrNever reverses NullableDays.
func DaysOrNever(days *int) int {
	if days == nil {
		return NeverDays
	}
	return *days
}

package dailyplan

import (
	"strconv"
	"strings"

	"github.com/jordanlanch/clientintel/pkg/domain"
)

// ParseLimit parses a requested plan size. An empty value means the default
// (returned as 0); anything that is not an integer is a validation error.
func ParseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError("limit must be an integer")
	}
	return n, nil
}

// ClampLimit maps a requested size into [MinLimit, MaxLimit]. Zero (no
// request) gets DefaultLimit; negative sizes clamp to MinLimit.
func (c Config) ClampLimit(requested int) int {
	limit := requested
	if limit == 0 {
		limit = c.DefaultLimit
	}
	if limit > c.MaxLimit {
		limit = c.MaxLimit
	}
	if limit < c.MinLimit {
		limit = c.MinLimit
	}
	return limit
}

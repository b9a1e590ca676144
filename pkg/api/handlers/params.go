package handlers

import (
	"strconv"
	"time"

	"github.com/jordanlanch/clientintel/pkg/domain"
	"github.com/labstack/echo/v4"
)

// parseClientID reads the :id path parameter.
func parseClientID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, domain.NewInvalidInputError("client id must be a positive integer")
	}
	return id, nil
}

// endOfDay returns the last instant of t's calendar day in t's location.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

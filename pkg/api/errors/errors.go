package errors

import (
	stderrors "errors"
	"log"
	"net/http"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/jordanlanch/clientintel/pkg/domain"
	"github.com/jordanlanch/clientintel/pkg/models"
	"github.com/labstack/echo/v4"
)

// ValidationError returns a 400. Messages from domain errors are written for
// the user and are exposed; anything else gets a generic message.
func ValidationError(c echo.Context, err error) error {
	log.Printf("[VALIDATION ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)

	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "validation_error",
		Message: safeMessage(err, "Datos inválidos. Revisa la información enviada."),
	})
}

// InvalidInputError returns a 400 for malformed identifiers or bodies.
func InvalidInputError(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid_input",
		Message: safeMessage(err, "Solicitud inválida."),
	})
}

// DatabaseError returns a generic database error without exposing internal details
func DatabaseError(c echo.Context, err error) error {
	log.Printf("[DATABASE ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)
	capture(c, err)

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "database_error",
		Message: "Ocurrió un error de base de datos. Intenta más tarde.",
	})
}

// InternalError returns a generic internal server error
func InternalError(c echo.Context, err error) error {
	log.Printf("[INTERNAL ERROR] Path: %s, Error: %v", c.Request().URL.Path, err)
	capture(c, err)

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: "Ocurrió un error interno. Intenta más tarde.",
	})
}

// NotFoundError returns a generic not found error
func NotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, models.ErrorResponse{
		Error:   "not_found",
		Message: "El recurso solicitado no existe.",
	})
}

// FromDomain maps err to the matching response: not found, validation and
// invalid input keep their status, everything else is a 500.
func FromDomain(c echo.Context, err error) error {
	switch {
	case domain.IsNotFound(err):
		return NotFoundError(c, "")
	case domain.IsValidation(err):
		return ValidationError(c, err)
	case domain.IsInvalidInput(err):
		return InvalidInputError(c, err)
	}
	return InternalError(c, err)
}

func safeMessage(err error, fallback string) string {
	var de *domain.DomainError
	if stderrors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return fallback
}

// capture reports err through the request's Sentry hub, if any.
func capture(c echo.Context, err error) {
	if hub := sentryecho.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
}

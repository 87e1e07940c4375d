package utils

import (
	"errors"
	"net/http"

	"home-kitchen-market/internal/models"

	"github.com/labstack/echo/v4"
)

// RespondWithJSON writes a JSON body with the given status code.
func RespondWithJSON(c echo.Context, status int, payload interface{}) error {
	return c.JSON(status, payload)
}

// RespondWithError writes a uniform error body.
func RespondWithError(c echo.Context, status int, message string) error {
	return c.JSON(status, models.ErrorResponse{Message: message})
}

// HandleServiceError maps the service layer's sentinel errors onto HTTP
// status codes. Every state-changing operation fails with one of these
// kinds; anything unrecognized is a 500 and gets logged server-side.
func HandleServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidInput):
		return RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrInvalidState),
		errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrNotEligible),
		errors.Is(err, models.ErrAlreadyReviewed):
		return RespondWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrGatewayUnavailable):
		return RespondWithError(c, http.StatusBadGateway, err.Error())
	default:
		c.Logger().Errorf("unhandled service error: %v", err)
		return RespondWithError(c, http.StatusInternalServerError, "internal server error")
	}
}

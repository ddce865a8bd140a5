package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "nexusaquarium/internal/errors"
)

// respondError converts err into an echo.HTTPError carrying an ErrorResponse.
// Unmapped errors are logged and reported as a generic 500.
func respondError(c echo.Context, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.StatusCode == http.StatusInternalServerError {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func badRequest(message string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
		Error: message,
		Code:  "INVALID_REQUEST",
	})
}

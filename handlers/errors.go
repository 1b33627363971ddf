package handlers

import (
	"errors"
	"net/http"

	"pems_api_go/models"

	"github.com/labstack/echo/v4"
)

// respondError maps domain errors onto their HTTP statuses. Anything
// unrecognized is already masked as an internal error by the service layer.
func respondError(c echo.Context, err error) error {
	status := http.StatusInternalServerError

	var (
		notFound   *models.NotFoundError
		validation *models.ValidationError
		auth       *models.AuthError
		conflict   *models.ConflictError
	)
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	case errors.As(err, &auth):
		status = http.StatusUnauthorized
	case errors.As(err, &conflict):
		status = http.StatusConflict
	}

	return c.JSON(status, map[string]string{"message": err.Error()})
}

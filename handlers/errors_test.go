package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"pems_api_go/models"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{models.NewNotFound("Charge ID", 9999), http.StatusNotFound},
		{models.NewValidation("only XML files are allowed"), http.StatusBadRequest},
		{models.NewAuth("Invalid JWT"), http.StatusUnauthorized},
		{models.NewConflict("duplicate agency"), http.StatusConflict},
		{models.ErrInternal, http.StatusInternalServerError},
	}

	e := echo.New()
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, respondError(c, tc.err))
		assert.Equal(t, tc.status, rec.Code)
		assert.Contains(t, rec.Body.String(), "message")
	}
}

func TestRespondErrorBody(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, respondError(c, models.NewNotFound("Case", "C-77")))
	assert.JSONEq(t, `{"message": "Case C-77 not found."}`, rec.Body.String())
}

package handlers

import (
	"net/http"

	"pems_api_go/middleware"
	"pems_api_go/models"
	"pems_api_go/services"

	"github.com/labstack/echo/v4"
)

// UploadDocuments ingests a multipart batch of citation XML files. The
// response always carries the per-file failure list; a fully failed batch is
// still a 200 with success 0.
func UploadDocuments(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return respondError(c, models.NewValidation("invalid multipart payload"))
	}
	files := form.File["files"]

	actor := ""
	if user := middleware.UserFromContext(c); user != nil {
		actor = user.UserName
	}

	result := services.UploadCitationDocuments(
		c.Request().Context(), middleware.TenantFromContext(c), actor, files)
	return c.JSON(http.StatusOK, result)
}

// ListDocuments returns the tenant's stored citation documents with signed
// download URLs
func ListDocuments(c echo.Context) error {
	documents, err := services.ListCitationDocuments(
		c.Request().Context(), middleware.TenantFromContext(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, documents)
}

// ParseCitation extracts the create-ready payload from a stored citation
// document identified by its storage key
func ParseCitation(c echo.Context) error {
	key := c.QueryParam("key")
	if key == "" {
		return respondError(c, models.NewValidation("key query parameter is required"))
	}

	citation, err := services.ParseCitationDocument(c.Request().Context(), key)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, citation)
}

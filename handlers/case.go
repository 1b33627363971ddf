package handlers

import (
	"net/http"

	"pems_api_go/db"
	"pems_api_go/middleware"
	"pems_api_go/models"
	"pems_api_go/services"

	"github.com/labstack/echo/v4"
)

// SearchCases runs the filtered, paginated case listing
func SearchCases(c echo.Context) error {
	var query services.CaseSearchQuery
	if err := c.Bind(&query); err != nil {
		return respondError(c, models.NewValidation("invalid search payload"))
	}

	var response *services.CaseSearchResponse
	err := db.WithTenant(c.Request().Context(), middleware.TenantFromContext(c), func(s *db.TenantSession) error {
		var err error
		response, err = services.SearchCaseRecords(s, &query)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, response)
}

// CreateCase inserts a case record with its defendant, contacts and charges
func CreateCase(c echo.Context) error {
	var input services.CaseRecordInput
	if err := c.Bind(&input); err != nil {
		return respondError(c, models.NewValidation("invalid case payload"))
	}
	if input.CaseNumber == "" {
		return respondError(c, models.NewValidation("case_number is required"))
	}

	err := db.WithTenant(c.Request().Context(), middleware.TenantFromContext(c), func(s *db.TenantSession) error {
		return services.CreateCaseRecord(s, &input)
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"message": "Case record created successfully",
	})
}

// UpdateCase rewrites a case record located by its case number
func UpdateCase(c echo.Context) error {
	caseNumber := c.Param("case_number")

	var input services.CaseRecordInput
	if err := c.Bind(&input); err != nil {
		return respondError(c, models.NewValidation("invalid case payload"))
	}

	err := db.WithTenant(c.Request().Context(), middleware.TenantFromContext(c), func(s *db.TenantSession) error {
		return services.UpdateCaseRecord(s, caseNumber, &input)
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Case record updated successfully",
	})
}

// GetCase fetches one case record with its defendant and charge ids
func GetCase(c echo.Context) error {
	caseNumber := c.Param("case_number")

	var detail *services.CaseRecordDetail
	err := db.WithTenant(c.Request().Context(), middleware.TenantFromContext(c), func(s *db.TenantSession) error {
		var err error
		detail, err = services.FetchCaseRecord(s, caseNumber)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// ListDefendants returns every defendant in the tenant
func ListDefendants(c echo.Context) error {
	var defendants []models.Defendant
	err := db.WithTenant(c.Request().Context(), middleware.TenantFromContext(c), func(s *db.TenantSession) error {
		var err error
		defendants, err = services.ListDefendants(s)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, defendants)
}

// ListCharges returns the tenant's charge table
func ListCharges(c echo.Context) error {
	var charges []models.Charge
	err := db.WithTenant(c.Request().Context(), middleware.TenantFromContext(c), func(s *db.TenantSession) error {
		var err error
		charges, err = services.ListCharges(s)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, charges)
}

package handlers

import (
	"net/http"
	"strconv"

	"pems_api_go/middleware"
	"pems_api_go/models"
	"pems_api_go/services"

	"github.com/labstack/echo/v4"
)

// ListAgencies returns the tenant directory
func ListAgencies(c echo.Context) error {
	agencies, err := services.ListAgencies(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, agencies)
}

// CreateAgency registers a new tenant in the directory
func CreateAgency(c echo.Context) error {
	var agency models.Agency
	if err := c.Bind(&agency); err != nil {
		return respondError(c, models.NewValidation("invalid agency payload"))
	}
	if agency.Name == "" {
		return respondError(c, models.NewValidation("name is required"))
	}

	if err := services.CreateAgency(c.Request().Context(), &agency); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, agency)
}

// GetRolePermissions returns the grants for one role in the current tenant
func GetRolePermissions(c echo.Context) error {
	role := c.Param("role")
	permissions, err := services.GetRolePermissions(
		c.Request().Context(), middleware.TenantFromContext(c), role)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, permissions)
}

// GrantPermission adds one grant to a role
func GrantPermission(c echo.Context) error {
	var permission models.Permission
	if err := c.Bind(&permission); err != nil {
		return respondError(c, models.NewValidation("invalid permission payload"))
	}
	if permission.UserRole == "" || permission.PermissionAction == "" || permission.Module == "" {
		return respondError(c, models.NewValidation("user_role, permission_action and module are required"))
	}

	if err := services.GrantPermission(
		c.Request().Context(), middleware.TenantFromContext(c), &permission); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, permission)
}

// RevokePermission removes one grant from a role
func RevokePermission(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return respondError(c, models.NewValidation("invalid permission id"))
	}
	role := c.QueryParam("role")
	if role == "" {
		return respondError(c, models.NewValidation("role query parameter is required"))
	}

	if err := services.RevokePermission(
		c.Request().Context(), middleware.TenantFromContext(c), uint(id), role); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetClientConfig returns the tenant's configuration grouped by section
func GetClientConfig(c echo.Context) error {
	sections, err := services.GetClientConfig(
		c.Request().Context(), middleware.TenantFromContext(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, sections)
}

// SetClientConfig upserts one configuration entry
func SetClientConfig(c echo.Context) error {
	var entry models.ClientConfig
	if err := c.Bind(&entry); err != nil {
		return respondError(c, models.NewValidation("invalid config payload"))
	}
	if entry.Section == "" || entry.Name == "" {
		return respondError(c, models.NewValidation("section and name are required"))
	}

	if err := services.SetClientConfig(
		c.Request().Context(), middleware.TenantFromContext(c), &entry); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, entry)
}

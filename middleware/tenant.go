package middleware

import (
	"net/http"

	"pems_api_go/models"
	"pems_api_go/services"

	"github.com/labstack/echo/v4"
)

const (
	// HeaderClient carries the tenant identifier on every request
	HeaderClient = "Client"
	// ContextKeyTenant is the context key for the resolved tenant schema
	ContextKeyTenant = "tenant"
)

// ResolveTenant extracts the Client header, resolves it against the tenant
// directory, and stores the schema name in the request context. Requests
// without a resolvable tenant never reach a handler.
func ResolveTenant() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			name := c.Request().Header.Get(HeaderClient)
			if name == "" {
				return c.JSON(http.StatusBadRequest, map[string]string{
					"message": "Client header is required",
				})
			}

			schema, err := services.ResolveAgency(c.Request().Context(), name)
			if err != nil {
				if models.IsNotFound(err) {
					return c.JSON(http.StatusNotFound, map[string]string{
						"message": err.Error(),
					})
				}
				return c.JSON(http.StatusInternalServerError, map[string]string{
					"message": "internal server error",
				})
			}

			c.Set(ContextKeyTenant, schema)
			return next(c)
		}
	}
}

// TenantFromContext returns the tenant schema resolved for this request
func TenantFromContext(c echo.Context) string {
	if tenant, ok := c.Get(ContextKeyTenant).(string); ok {
		return tenant
	}
	return ""
}

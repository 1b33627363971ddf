package middleware

import (
	"net/http"
	"strings"

	"pems_api_go/models"
	"pems_api_go/services"

	"github.com/labstack/echo/v4"
)

// ContextKeyUser is the context key for the authenticated user
const ContextKeyUser = "user"

// RequireAuth validates the bearer token against the identity provider and
// binds the resulting user to the request's tenant. The actor name is also
// threaded into the request context so audit hooks see it.
func RequireAuth(idp services.IdentityProvider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"message": "Not Authenticated",
				})
			}

			if err := services.CheckTokenExpiry(token); err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"message": err.Error(),
				})
			}

			profile, err := idp.Authenticate(c.Request().Context(), token)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"message": err.Error(),
				})
			}

			user := services.ResolveUser(profile, TenantFromContext(c))
			c.Set(ContextKeyUser, user)

			ctx := models.ContextWithActor(c.Request().Context(), user.UserName)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// RequirePermission rejects requests whose user lacks the (action, module)
// grant in the current tenant. Runs after RequireAuth.
func RequirePermission(action, module string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := UserFromContext(c)
			if user == nil {
				return c.JSON(http.StatusForbidden, map[string]string{
					"message": "No permissions found",
				})
			}

			granted, err := services.GetUserPermissions(
				c.Request().Context(), TenantFromContext(c), user.Roles)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]string{
					"message": "internal server error",
				})
			}

			if !granted[[2]string{action, module}] {
				return c.JSON(http.StatusForbidden, map[string]string{
					"message": "Permission denied",
				})
			}
			return next(c)
		}
	}
}

// UserFromContext returns the authenticated user for this request
func UserFromContext(c echo.Context) *services.AuthenticatedUser {
	if user, ok := c.Get(ContextKeyUser).(*services.AuthenticatedUser); ok {
		return user
	}
	return nil
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

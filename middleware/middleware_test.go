package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"pems_api_go/config"
	"pems_api_go/db"
	"pems_api_go/models"
	"pems_api_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupDirectory wires a sqlite engine with a control schema holding the
// given agencies and one schema per agency carrying the permission table.
func setupDirectory(t *testing.T, agencies ...string) {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{
		DBDriver:      "sqlite",
		DBName:        filepath.Join(dir, "main.db"),
		ControlSchema: "control",
		Environment:   "production",
	}
	require.NoError(t, db.Initialize(cfg))

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	db.ResetSessions()
	services.ResetCaches()

	attach(t, dir, "control", &models.Agency{})
	for _, agency := range agencies {
		attach(t, dir, agency, &models.Permission{})
		require.NoError(t, db.WithTenant(context.Background(), "control", func(s *db.TenantSession) error {
			return s.Create(&models.Agency{Name: agency}).Error
		}))
	}

	t.Cleanup(func() {
		db.ResetSessions()
		services.ResetCaches()
		db.Close()
		db.DB = nil
	})
}

func attach(t *testing.T, dir, schema string, schemaModels ...interface{}) {
	t.Helper()
	path := filepath.Join(dir, schema+".db")

	seed, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	require.NoError(t, seed.AutoMigrate(schemaModels...))
	seedDB, err := seed.DB()
	require.NoError(t, err)
	require.NoError(t, seedDB.Close())

	require.NoError(t, db.DB.Exec(fmt.Sprintf("ATTACH DATABASE '%s' AS %s", path, schema)).Error)
}

func runRequest(handler echo.HandlerFunc, mws []echo.MiddlewareFunc, mutate func(*http.Request)) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if mutate != nil {
		mutate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	wrapped := handler
	for i := len(mws) - 1; i >= 0; i-- {
		wrapped = mws[i](wrapped)
	}
	if err := wrapped(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

type stubIdentityProvider struct {
	profile *services.UserProfile
	err     error
}

func (s *stubIdentityProvider) Authenticate(ctx context.Context, accessToken string) (*services.UserProfile, error) {
	return s.profile, s.err
}

func TestResolveTenantMissingHeader(t *testing.T) {
	setupDirectory(t)

	rec := runRequest(okHandler, []echo.MiddlewareFunc{ResolveTenant()}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Client header is required")
}

func TestResolveTenantUnknownAgency(t *testing.T) {
	setupDirectory(t)

	rec := runRequest(okHandler, []echo.MiddlewareFunc{ResolveTenant()}, func(req *http.Request) {
		req.Header.Set(HeaderClient, "agency_ghost")
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "agency_ghost")
}

func TestResolveTenantKnownAgency(t *testing.T) {
	setupDirectory(t, "agency_a")

	handler := func(c echo.Context) error {
		assert.Equal(t, "agency_a", TenantFromContext(c))
		return okHandler(c)
	}
	rec := runRequest(handler, []echo.MiddlewareFunc{ResolveTenant()}, func(req *http.Request) {
		req.Header.Set(HeaderClient, "agency_a")
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthMissingToken(t *testing.T) {
	idp := &stubIdentityProvider{}

	rec := runRequest(okHandler, []echo.MiddlewareFunc{RequireAuth(idp)}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not Authenticated")
}

func TestRequireAuthRejectedToken(t *testing.T) {
	idp := &stubIdentityProvider{err: models.NewAuth("Invalid JWT")}

	rec := runRequest(okHandler, []echo.MiddlewareFunc{RequireAuth(idp)}, func(req *http.Request) {
		// Not even a JWT: rejected before the provider is consulted
		req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-token")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequirePermission(t *testing.T) {
	setupDirectory(t, "agency_a")
	require.NoError(t, services.GrantPermission(context.Background(), "agency_a", &models.Permission{
		UserRole: "officer", PermissionAction: "read", Module: "case_management"}))

	user := &services.AuthenticatedUser{UserName: "m.reyes", Roles: []string{"officer"}}
	seedContext := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(ContextKeyTenant, "agency_a")
			c.Set(ContextKeyUser, user)
			return next(c)
		}
	}

	rec := runRequest(okHandler, []echo.MiddlewareFunc{
		seedContext, RequirePermission("read", "case_management")}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = runRequest(okHandler, []echo.MiddlewareFunc{
		seedContext, RequirePermission("delete", "case_management")}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Permission denied")
}

func TestRequirePermissionNoUser(t *testing.T) {
	rec := runRequest(okHandler, []echo.MiddlewareFunc{
		RequirePermission("read", "case_management")}, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "No permissions found")
}

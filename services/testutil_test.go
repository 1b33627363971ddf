package services

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"testing"

	"pems_api_go/config"
	"pems_api_go/db"
	"pems_api_go/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func tenantModels() []interface{} {
	return []interface{}{
		&models.Defendant{},
		&models.DefendantContact{},
		&models.Charge{},
		&models.CaseRecord{},
		&models.CaseChargeAssociation{},
		&models.Permission{},
		&models.ClientConfig{},
		&models.Category{},
		&models.ProductInventory{},
	}
}

// setupTenantDB wires the shared pool onto a temp sqlite file and attaches
// one schema file per tenant. sqlite cannot create an index through a
// schema-qualified table name, so each schema file is migrated on its own
// connection before attaching.
func setupTenantDB(t *testing.T, tenants ...string) {
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
	ResetCaches()

	attachSchema(t, dir, "control", &models.Agency{})
	for _, tenant := range tenants {
		attachSchema(t, dir, tenant, tenantModels()...)
	}

	t.Cleanup(func() {
		db.ResetSessions()
		ResetCaches()
		db.Close()
		db.DB = nil
	})
}

func attachSchema(t *testing.T, dir, schema string, schemaModels ...interface{}) {
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

// makeFileHeader builds a multipart file header the way an HTTP upload would
func makeFileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("files", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })

	files := form.File["files"]
	require.Len(t, files, 1)
	return files[0]
}

package db

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"pems_api_go/config"
	"pems_api_go/models"

	"github.com/stretchr/testify/assert"
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

// setupTestEngine wires the shared pool onto a temp sqlite file and attaches
// one schema file per tenant. sqlite cannot create an index through a
// schema-qualified table name, so each schema file is migrated on its own
// connection before attaching.
func setupTestEngine(t *testing.T, tenants ...string) {
	t.Helper()
	dir := t.TempDir()

	cfg := &config.Config{
		DBDriver:      "sqlite",
		DBName:        filepath.Join(dir, "main.db"),
		ControlSchema: "control",
		Environment:   "production",
	}
	require.NoError(t, Initialize(cfg))

	sqlDB, err := DB.DB()
	require.NoError(t, err)
	// One connection keeps every attached schema visible to all sessions
	sqlDB.SetMaxOpenConns(1)
	ResetSessions()

	attachSchema(t, dir, "control", &models.Agency{})
	for _, tenant := range tenants {
		attachSchema(t, dir, tenant, tenantModels()...)
	}

	t.Cleanup(func() {
		ResetSessions()
		Close()
		DB = nil
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

	require.NoError(t, DB.Exec(fmt.Sprintf("ATTACH DATABASE '%s' AS %s", path, schema)).Error)
}

func TestSessionSchemaIsolation(t *testing.T) {
	setupTestEngine(t, "agency_a", "agency_b")
	ctx := context.Background()

	err := WithTenant(ctx, "agency_a", func(s *TenantSession) error {
		return s.Create(&models.Charge{ChargeCode: "SPD-01", ChargeDescription: "Speeding"}).Error
	})
	require.NoError(t, err)

	var countA, countB int64
	require.NoError(t, WithTenant(ctx, "agency_a", func(s *TenantSession) error {
		return s.Model(&models.Charge{}).Count(&countA).Error
	}))
	require.NoError(t, WithTenant(ctx, "agency_b", func(s *TenantSession) error {
		return s.Model(&models.Charge{}).Count(&countB).Error
	}))

	assert.Equal(t, int64(1), countA)
	assert.Equal(t, int64(0), countB)
}

func TestWithTenantRollsBackOnError(t *testing.T) {
	setupTestEngine(t, "agency_a")
	ctx := context.Background()

	err := WithTenant(ctx, "agency_a", func(s *TenantSession) error {
		if err := s.Create(&models.Charge{ChargeCode: "DUI-01"}).Error; err != nil {
			return err
		}
		return errors.New("downstream failure")
	})
	assert.ErrorIs(t, err, models.ErrInternal)

	var count int64
	require.NoError(t, WithTenant(ctx, "agency_a", func(s *TenantSession) error {
		return s.Model(&models.Charge{}).Count(&count).Error
	}))
	assert.Equal(t, int64(0), count)
}

func TestWithTenantDomainErrorPassesThrough(t *testing.T) {
	setupTestEngine(t, "agency_a")

	wantErr := models.NewNotFound("Charge ID", 9999)
	err := WithTenant(context.Background(), "agency_a", func(s *TenantSession) error {
		return wantErr
	})
	assert.Equal(t, wantErr, err)
	assert.True(t, models.IsNotFound(err))
	assert.Equal(t, "Charge ID 9999 not found.", err.Error())
}

func TestWithTenantCommits(t *testing.T) {
	setupTestEngine(t, "agency_a")
	ctx := context.Background()

	require.NoError(t, WithTenant(ctx, "agency_a", func(s *TenantSession) error {
		return s.Create(&models.Charge{ChargeCode: "PRK-01"}).Error
	}))

	var charge models.Charge
	require.NoError(t, WithTenant(ctx, "agency_a", func(s *TenantSession) error {
		return s.Where("charge_code = ?", "PRK-01").First(&charge).Error
	}))
	assert.NotZero(t, charge.ID)
	assert.True(t, charge.IsActive)
	assert.False(t, charge.CreatedOn.IsZero())
}

func TestWithTenantRequiresTenant(t *testing.T) {
	setupTestEngine(t)

	err := WithTenant(context.Background(), "", func(s *TenantSession) error {
		return nil
	})
	assert.Error(t, err)
}

func TestQualified(t *testing.T) {
	s := &TenantSession{Schema: "agency_a"}
	assert.Equal(t, "agency_a.defendants", s.Qualified("defendants"))
}

func TestAuditFieldsCarryActor(t *testing.T) {
	setupTestEngine(t, "agency_a")
	ctx := models.ContextWithActor(context.Background(), "officer.daniels")

	require.NoError(t, WithTenant(ctx, "agency_a", func(s *TenantSession) error {
		return s.Create(&models.Charge{ChargeCode: "REG-07"}).Error
	}))

	var charge models.Charge
	require.NoError(t, WithTenant(ctx, "agency_a", func(s *TenantSession) error {
		return s.Where("charge_code = ?", "REG-07").First(&charge).Error
	}))
	assert.Equal(t, "officer.daniels", charge.CreatedBy)
	assert.Equal(t, "officer.daniels", charge.ModifiedBy)
}

package services

import (
	"context"
	"errors"
	"fmt"

	"pems_api_go/db"
	"pems_api_go/models"

	"gorm.io/gorm"
)

// ResolveAgency maps a tenant identifier from request metadata to its schema
// name in the directory, with a cached fast path. Unknown tenants return a
// not-found error so the request can be rejected before any session opens.
func ResolveAgency(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", models.NewValidation("Client header is required")
	}
	if schema, ok := agencyCache.Get(name); ok {
		return schema, nil
	}

	var agency models.Agency
	err := db.WithTenant(ctx, db.ControlSchema(), func(s *db.TenantSession) error {
		if err := s.Where("name = ?", name).First(&agency).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFound("Agency", name)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	agencyCache.Add(name, agency.Name)
	return agency.Name, nil
}

// ListAgencies returns the full tenant directory
func ListAgencies(ctx context.Context) ([]models.Agency, error) {
	var agencies []models.Agency
	err := db.WithTenant(ctx, db.ControlSchema(), func(s *db.TenantSession) error {
		return s.Find(&agencies).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list agencies: %w", err)
	}
	return agencies, nil
}

// CreateAgency registers a new tenant in the directory. The tenant's schema
// itself is provisioned out of band.
func CreateAgency(ctx context.Context, agency *models.Agency) error {
	err := db.WithTenant(ctx, db.ControlSchema(), func(s *db.TenantSession) error {
		if err := s.Create(agency).Error; err != nil {
			return translateWriteError(err, "agency")
		}
		return nil
	})
	if err != nil {
		return err
	}
	InvalidateAgency(agency.Name)
	return nil
}

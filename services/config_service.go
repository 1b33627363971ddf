package services

import (
	"context"
	"errors"
	"fmt"

	"pems_api_go/db"
	"pems_api_go/models"

	"gorm.io/gorm"
)

// GetClientConfig returns the tenant's configuration grouped by section,
// served from cache when warm. An unknown section is simply an empty map
// entry, not an error.
func GetClientConfig(ctx context.Context, tenant string) (map[string]map[string]string, error) {
	entries, ok := configCache.Get(tenant)
	if !ok {
		err := db.WithTenant(ctx, tenant, func(s *db.TenantSession) error {
			return s.Find(&entries).Error
		})
		if err != nil {
			return nil, err
		}
		configCache.Add(tenant, entries)
	}

	sections := map[string]map[string]string{}
	for _, entry := range entries {
		if sections[entry.Section] == nil {
			sections[entry.Section] = map[string]string{}
		}
		sections[entry.Section][entry.Name] = entry.Value
	}
	return sections, nil
}

// GetClientConfigSection returns one section of the tenant's configuration
func GetClientConfigSection(ctx context.Context, tenant, section string) (map[string]string, error) {
	sections, err := GetClientConfig(ctx, tenant)
	if err != nil {
		return nil, err
	}
	values, ok := sections[section]
	if !ok {
		return map[string]string{}, nil
	}
	return values, nil
}

// SetClientConfig upserts one configuration entry and drops the tenant's
// cached config
func SetClientConfig(ctx context.Context, tenant string, entry *models.ClientConfig) error {
	err := db.WithTenant(ctx, tenant, func(s *db.TenantSession) error {
		var existing models.ClientConfig
		err := s.Where("section = ? AND name = ?", entry.Section, entry.Name).
			First(&existing).Error
		switch {
		case err == nil:
			existing.Value = entry.Value
			if err := s.Save(&existing).Error; err != nil {
				return translateWriteError(err, "client config")
			}
			*entry = existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := s.Create(entry).Error; err != nil {
				return translateWriteError(err, "client config")
			}
			return nil
		default:
			return fmt.Errorf("failed to look up client config: %w", err)
		}
	})
	if err != nil {
		return err
	}
	InvalidateConfig(tenant)
	return nil
}

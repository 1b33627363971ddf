package services

import (
	"context"
	"fmt"

	"pems_api_go/db"
	"pems_api_go/models"
)

// GetRolePermissions returns the (action, module) grants for one role in a
// tenant, served from cache when warm
func GetRolePermissions(ctx context.Context, tenant, role string) ([]models.Permission, error) {
	key := permissionCacheKey(tenant, role)
	if cached, ok := permissionCache.Get(key); ok {
		return cached, nil
	}

	var permissions []models.Permission
	err := db.WithTenant(ctx, tenant, func(s *db.TenantSession) error {
		return s.Where("user_role = ?", role).Find(&permissions).Error
	})
	if err != nil {
		return nil, err
	}

	permissionCache.Add(key, permissions)
	return permissions, nil
}

// GetUserPermissions merges the grants of every role the user holds in the
// tenant into a deduplicated set
func GetUserPermissions(ctx context.Context, tenant string, roles []string) (map[[2]string]bool, error) {
	granted := map[[2]string]bool{}
	for _, role := range roles {
		permissions, err := GetRolePermissions(ctx, tenant, role)
		if err != nil {
			return nil, fmt.Errorf("failed to load permissions for role %s: %w", role, err)
		}
		for _, p := range permissions {
			granted[[2]string{p.PermissionAction, p.Module}] = true
		}
	}
	return granted, nil
}

// GrantPermission adds one (action, module) grant to a role and drops the
// role's cached set
func GrantPermission(ctx context.Context, tenant string, permission *models.Permission) error {
	err := db.WithTenant(ctx, tenant, func(s *db.TenantSession) error {
		if err := s.Create(permission).Error; err != nil {
			return translateWriteError(err, "permission")
		}
		return nil
	})
	if err != nil {
		return err
	}
	InvalidatePermissions(tenant, permission.UserRole)
	return nil
}

// RevokePermission removes one grant and drops the role's cached set
func RevokePermission(ctx context.Context, tenant string, permissionID uint, role string) error {
	err := db.WithTenant(ctx, tenant, func(s *db.TenantSession) error {
		result := s.Where("id = ? AND user_role = ?", permissionID, role).
			Delete(&models.Permission{})
		if result.Error != nil {
			return fmt.Errorf("failed to revoke permission: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return models.NewNotFound("Permission", permissionID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	InvalidatePermissions(tenant, role)
	return nil
}

package services

import (
	"time"

	"pems_api_go/models"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cached lookups are bounded and expire on their own; write paths call the
// Invalidate functions synchronously after commit so stale reads last at
// most one round trip, not the full TTL.
const (
	cacheSize = 128
	cacheTTL  = 10 * time.Minute
)

var (
	agencyCache     = expirable.NewLRU[string, string](cacheSize, nil, cacheTTL)
	permissionCache = expirable.NewLRU[string, []models.Permission](cacheSize, nil, cacheTTL)
	configCache     = expirable.NewLRU[string, []models.ClientConfig](cacheSize, nil, cacheTTL)
)

func permissionCacheKey(tenant, role string) string {
	return tenant + "/" + role
}

// InvalidatePermissions drops the cached permission set for one tenant role
func InvalidatePermissions(tenant, role string) {
	permissionCache.Remove(permissionCacheKey(tenant, role))
}

// InvalidateConfig drops every cached config section for the tenant
func InvalidateConfig(tenant string) {
	configCache.Remove(tenant)
}

// InvalidateAgency drops a cached tenant directory entry
func InvalidateAgency(name string) {
	agencyCache.Remove(name)
}

// ResetCaches clears all caches; used by tests
func ResetCaches() {
	agencyCache.Purge()
	permissionCache.Purge()
	configCache.Purge()
}

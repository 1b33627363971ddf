package db

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"pems_api_go/models"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// TenantSession is a transactional session bound to one tenant's schema.
// Model queries made through it resolve unqualified table references against
// that schema and no other; Qualified is for raw SQL fragments (joins) that
// GORM's naming strategy cannot rewrite.
type TenantSession struct {
	*gorm.DB
	Schema string
}

// Qualified prefixes a table name with the session's schema
func (s *TenantSession) Qualified(table string) string {
	return s.Schema + "." + table
}

// schemaNamer prefixes table names with the tenant schema while keeping
// index and constraint names schema-free: both Postgres and sqlite create
// those in the table's schema and reject qualified names.
type schemaNamer struct {
	schema.NamingStrategy
}

func (n schemaNamer) IndexName(table, column string) string {
	return n.NamingStrategy.IndexName(unqualify(table), column)
}

func (n schemaNamer) UniqueName(table, column string) string {
	return n.NamingStrategy.UniqueName(unqualify(table), column)
}

func (n schemaNamer) CheckerName(table, column string) string {
	return n.NamingStrategy.CheckerName(unqualify(table), column)
}

func unqualify(table string) string {
	if i := strings.LastIndex(table, "."); i >= 0 {
		return table[i+1:]
	}
	return table
}

var (
	sessionMu sync.RWMutex
	sessions  = map[string]*gorm.DB{}
)

// SessionFor returns a GORM handle whose default schema is remapped to the
// given tenant, sharing the engine's connection pool. Handles are cached per
// tenant; they carry no per-request state.
func SessionFor(tenant string) (*gorm.DB, error) {
	if tenant == "" {
		return nil, fmt.Errorf("tenant identifier is required")
	}

	sessionMu.RLock()
	cached, ok := sessions[tenant]
	sessionMu.RUnlock()
	if ok {
		return cached, nil
	}

	conn, err := pool()
	if err != nil {
		return nil, err
	}

	handle, err := gorm.Open(dialectorFor(conn), &gorm.Config{
		Logger:         DB.Config.Logger,
		TranslateError: true,
		NamingStrategy: schemaNamer{schema.NamingStrategy{
			TablePrefix: tenant + ".",
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session for tenant %s: %w", tenant, err)
	}

	sessionMu.Lock()
	sessions[tenant] = handle
	sessionMu.Unlock()

	return handle, nil
}

// ResetSessions drops all cached tenant handles (used when tests swap engines)
func ResetSessions() {
	sessionMu.Lock()
	sessions = map[string]*gorm.DB{}
	sessionMu.Unlock()
}

// WithTenant runs one unit of work inside a transaction on a tenant-scoped
// session. The transaction commits only if fn returns nil. On any error the
// transaction rolls back; domain errors propagate unchanged, unexpected
// errors are logged with tenant context and masked as ErrInternal.
func WithTenant(ctx context.Context, tenant string, fn func(s *TenantSession) error) error {
	handle, err := SessionFor(tenant)
	if err != nil {
		return err
	}

	tx := handle.WithContext(ctx).Begin()
	if tx.Error != nil {
		log.Printf("[ERROR] failed to begin transaction for tenant %s: %v", tenant, tx.Error)
		return models.ErrInternal
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(&TenantSession{DB: tx, Schema: tenant}); err != nil {
		tx.Rollback()
		if models.IsDomainError(err) {
			return err
		}
		log.Printf("[ERROR] transaction failed for tenant %s: %v", tenant, err)
		return models.ErrInternal
	}

	if err := tx.Commit().Error; err != nil {
		log.Printf("[ERROR] commit failed for tenant %s: %v", tenant, err)
		return models.ErrInternal
	}
	return nil
}

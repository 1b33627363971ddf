package models

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type contextKey string

const actorContextKey contextKey = "actor"

// ContextWithActor stores the acting username on the context; audit hooks
// pick it up on every write inside the request's unit of work
func ContextWithActor(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, actorContextKey, username)
}

// ActorFromContext returns the acting username, or "" when no actor was set
func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	actor, _ := ctx.Value(actorContextKey).(string)
	return actor
}

// AuditFields are carried by every mutable entity and are populated by hooks,
// never from client payloads.
type AuditFields struct {
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedBy  string    `gorm:"size:64" json:"created_by"`
	CreatedOn  time.Time `gorm:"not null" json:"created_on"`
	ModifiedBy string    `gorm:"size:64" json:"modified_by"`
	ModifiedOn time.Time `gorm:"not null" json:"modified_on"`
}

// BeforeCreate populates the audit trail from the request actor
func (a *AuditFields) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().UTC()
	actor := ActorFromContext(tx.Statement.Context)
	a.IsActive = true
	a.CreatedOn = now
	a.ModifiedOn = now
	a.CreatedBy = actor
	a.ModifiedBy = actor
	return nil
}

// BeforeUpdate refreshes the modification trail
func (a *AuditFields) BeforeUpdate(tx *gorm.DB) error {
	a.ModifiedOn = time.Now().UTC()
	if actor := ActorFromContext(tx.Statement.Context); actor != "" {
		a.ModifiedBy = actor
	}
	return nil
}

// UTC normalizes a timestamp to timezone-aware UTC; naive local times are
// reinterpreted rather than shifted
func UTC(t time.Time) time.Time {
	return t.UTC()
}

// UTCPtr normalizes an optional timestamp to UTC
func UTCPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

package service

import (
	"context"
	"log"

	"github.com/brightline/agency-server/internal/model"
	"github.com/brightline/agency-server/internal/store"
)

// AuditService appends accountability records for mutating actions.
type AuditService struct {
	store store.Store
}

// NewAuditService returns an AuditService over the given store.
func NewAuditService(s store.Store) *AuditService { return &AuditService{store: s} }

// Log appends one audit entry. A failed write degrades to a logged
// warning: the audit trail must never abort the primary operation.
func (a *AuditService) Log(ctx context.Context, actorID uint64, action, entityType string, entityID uint64) {
	e := &model.AuditLog{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if err := a.store.AppendAudit(ctx, e); err != nil {
		log.Printf("audit: append failed (action=%s %s/%d): %v", action, entityType, entityID, err)
	}
}

// List returns the newest entries first, capped at limit.
func (a *AuditService) List(ctx context.Context, limit int) ([]model.AuditLog, error) {
	return a.store.ListAudit(ctx, limit)
}

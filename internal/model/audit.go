package model

import "time"

// AuditLog is one append-only record of who did what. Entries are
// never updated or deleted.
type AuditLog struct {
	ID         uint64    `json:"id"`          // audit_logs.id
	ActorID    uint64    `json:"actor_id"`    // audit_logs.actor_id
	Action     string    `json:"action"`      // audit_logs.action (e.g. "order.status")
	EntityType string    `json:"entity_type"` // audit_logs.entity_type
	EntityID   uint64    `json:"entity_id"`   // audit_logs.entity_id
	CreatedAt  time.Time `json:"created_at"`  // audit_logs.created_at
}

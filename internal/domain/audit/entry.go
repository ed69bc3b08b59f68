// Package audit records who did what to batches, invoices and billing
// configuration.
package audit

import (
	"context"

	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Action identifies what happened
type Action string

const (
	ActionBatchCreated    Action = "BATCH_CREATED"
	ActionBatchUpdated    Action = "BATCH_UPDATED"
	ActionBatchDeleted    Action = "BATCH_DELETED"
	ActionBatchValidated  Action = "BATCH_VALIDATED"
	ActionProfileUpdated  Action = "PROFILE_UPDATED"
	ActionSettingsUpdated Action = "SETTINGS_UPDATED"
)

// IsValid checks if the action is a known audit action
func (a Action) IsValid() bool {
	switch a {
	case ActionBatchCreated, ActionBatchUpdated, ActionBatchDeleted,
		ActionBatchValidated, ActionProfileUpdated, ActionSettingsUpdated:
		return true
	}
	return false
}

// Entry represents one audit log record. Entries written during the
// validation transaction commit or roll back together with the invoice.
type Entry struct {
	shared.BaseEntity
	Action     Action         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id"`
	ActorID    *uuid.UUID     `json:"actor_id,omitempty"`
	Detail     map[string]any `json:"detail,omitempty"`
	IPAddress  string         `json:"ip_address,omitempty"`
}

// NewEntry creates a new audit entry
func NewEntry(action Action, entityType string, entityID uuid.UUID, actorID *uuid.UUID, detail map[string]any) (*Entry, error) {
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACTION", "Invalid audit action")
	}
	if entityType == "" {
		return nil, shared.NewDomainError("INVALID_ENTITY_TYPE", "Entity type cannot be empty")
	}
	if entityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENTITY", "Entity ID cannot be empty")
	}

	return &Entry{
		BaseEntity: shared.NewBaseEntity(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		Detail:     detail,
	}, nil
}

// Repository defines the interface for audit log persistence
type Repository interface {
	// Record appends an entry to the log
	Record(ctx context.Context, entry *Entry) error

	// FindByEntity lists entries for one entity, newest first
	FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID, filter shared.Filter) ([]Entry, error)
}

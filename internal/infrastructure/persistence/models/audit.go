package models

import (
	"encoding/json"

	"github.com/ecobat/backend/internal/domain/audit"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// logger for model conversion errors (silent failures are logged for debugging)
var auditModelLogger = zap.L().Named("audit.models")

// AuditEntryModel is the persistence model for the audit Entry record.
// Entries are append-only.
type AuditEntryModel struct {
	BaseModel
	Action     audit.Action `gorm:"type:varchar(30);not null;index"`
	EntityType string       `gorm:"type:varchar(50);not null;index:idx_audit_entity,priority:1"`
	EntityID   uuid.UUID    `gorm:"type:uuid;not null;index:idx_audit_entity,priority:2"`
	ActorID    *uuid.UUID   `gorm:"type:uuid;index"`
	DetailJSON string       `gorm:"column:detail;type:jsonb;default:'{}'"`
	IPAddress  string       `gorm:"type:varchar(45)"`
}

// TableName returns the table name for GORM
func (AuditEntryModel) TableName() string {
	return "audit_entries"
}

// ToDomain converts the persistence model to a domain audit Entry.
func (m *AuditEntryModel) ToDomain() *audit.Entry {
	entry := &audit.Entry{
		BaseEntity: m.BaseModel.ToDomain(),
		Action:     m.Action,
		EntityType: m.EntityType,
		EntityID:   m.EntityID,
		ActorID:    m.ActorID,
		IPAddress:  m.IPAddress,
	}

	if m.DetailJSON != "" && m.DetailJSON != "{}" {
		var detail map[string]any
		if err := json.Unmarshal([]byte(m.DetailJSON), &detail); err != nil {
			auditModelLogger.Warn("failed to parse detail JSON",
				zap.String("entry_id", m.ID.String()),
				zap.Error(err))
		} else {
			entry.Detail = detail
		}
	}

	return entry
}

// FromDomain populates the persistence model from a domain audit Entry.
func (m *AuditEntryModel) FromDomain(e *audit.Entry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.Action = e.Action
	m.EntityType = e.EntityType
	m.EntityID = e.EntityID
	m.ActorID = e.ActorID
	m.IPAddress = e.IPAddress

	m.DetailJSON = "{}"
	if len(e.Detail) > 0 {
		raw, err := json.Marshal(e.Detail)
		if err != nil {
			auditModelLogger.Warn("failed to serialize detail JSON",
				zap.String("entry_id", e.ID.String()),
				zap.Error(err))
		} else {
			m.DetailJSON = string(raw)
		}
	}
}

// AuditEntryModelFromDomain creates a new persistence model from a domain audit Entry.
func AuditEntryModelFromDomain(e *audit.Entry) *AuditEntryModel {
	m := &AuditEntryModel{}
	m.FromDomain(e)
	return m
}

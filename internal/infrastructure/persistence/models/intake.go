package models

import (
	"time"

	"github.com/ecobat/backend/internal/domain/intake"
	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/ecobat/backend/internal/domain/valuation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchModel is the persistence model for the Batch aggregate root.
// The manifest is stored as a JSONB document keyed by category.
type BatchModel struct {
	AggregateModel
	Kind          intake.BatchKind   `gorm:"type:varchar(20);not null;index"`
	Status        intake.BatchStatus `gorm:"type:varchar(20);not null;index"`
	CompanyID     uuid.UUID          `gorm:"type:uuid;not null;index"`
	CompanyName   string             `gorm:"type:varchar(200);not null"`
	Manifest      valuation.Manifest `gorm:"type:jsonb;not null"`
	TotalWeightKg decimal.Decimal    `gorm:"type:decimal(14,3);not null;default:0"`
	TotalValueRON decimal.Decimal    `gorm:"type:decimal(14,2);not null;default:0"`
	TableVersion  string             `gorm:"type:varchar(20);not null"`
	PickupDate    time.Time          `gorm:"type:date;not null"`
	Notes         string             `gorm:"type:text"`
	InvoiceID     *uuid.UUID         `gorm:"type:uuid;uniqueIndex"`
	ValidatedAt   *time.Time
}

// TableName returns the table name for GORM
func (BatchModel) TableName() string {
	return "batches"
}

// ToDomain converts the persistence model to a domain Batch aggregate.
func (m *BatchModel) ToDomain() *intake.Batch {
	batch := &intake.Batch{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Kind:          m.Kind,
		Status:        m.Status,
		CompanyID:     m.CompanyID,
		CompanyName:   m.CompanyName,
		Manifest:      m.Manifest,
		TotalWeightKg: m.TotalWeightKg,
		TotalValueRON: m.TotalValueRON,
		TableVersion:  m.TableVersion,
		PickupDate:    m.PickupDate,
		Notes:         m.Notes,
		InvoiceID:     m.InvoiceID,
		ValidatedAt:   m.ValidatedAt,
	}
	return batch
}

// FromDomain populates the persistence model from a domain Batch aggregate.
func (m *BatchModel) FromDomain(b *intake.Batch) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.Kind = b.Kind
	m.Status = b.Status
	m.CompanyID = b.CompanyID
	m.CompanyName = b.CompanyName
	m.Manifest = b.Manifest
	m.TotalWeightKg = b.TotalWeightKg
	m.TotalValueRON = b.TotalValueRON
	m.TableVersion = b.TableVersion
	m.PickupDate = b.PickupDate
	m.Notes = b.Notes
	m.InvoiceID = b.InvoiceID
	m.ValidatedAt = b.ValidatedAt
}

// BatchModelFromDomain creates a new persistence model from a domain Batch aggregate.
func BatchModelFromDomain(b *intake.Batch) *BatchModel {
	m := &BatchModel{}
	m.FromDomain(b)
	return m
}

package intake

import (
	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeBatch = "Batch"

// Event type constants
const (
	EventTypeBatchCreated   = "BatchCreated"
	EventTypeBatchValidated = "BatchValidated"
)

// BatchCreatedEvent is raised when a new batch is registered
type BatchCreatedEvent struct {
	shared.BaseDomainEvent
	BatchID       uuid.UUID       `json:"batch_id"`
	Kind          BatchKind       `json:"kind"`
	CompanyID     uuid.UUID       `json:"company_id"`
	TotalWeightKg decimal.Decimal `json:"total_weight_kg"`
	TotalValueRON decimal.Decimal `json:"total_value_ron"`
}

// NewBatchCreatedEvent creates a new BatchCreatedEvent
func NewBatchCreatedEvent(batch *Batch) *BatchCreatedEvent {
	return &BatchCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchCreated, batch.ID, AggregateTypeBatch),
		BatchID:         batch.ID,
		Kind:            batch.Kind,
		CompanyID:       batch.CompanyID,
		TotalWeightKg:   batch.TotalWeightKg,
		TotalValueRON:   batch.TotalValueRON,
	}
}

// BatchValidatedEvent is raised when a batch is converted into an invoice
type BatchValidatedEvent struct {
	shared.BaseDomainEvent
	BatchID   uuid.UUID `json:"batch_id"`
	CompanyID uuid.UUID `json:"company_id"`
	InvoiceID uuid.UUID `json:"invoice_id"`
}

// NewBatchValidatedEvent creates a new BatchValidatedEvent
func NewBatchValidatedEvent(batch *Batch) *BatchValidatedEvent {
	event := &BatchValidatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBatchValidated, batch.ID, AggregateTypeBatch),
		BatchID:         batch.ID,
		CompanyID:       batch.CompanyID,
	}
	if batch.InvoiceID != nil {
		event.InvoiceID = *batch.InvoiceID
	}
	return event
}

package intake

import (
	"time"

	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/ecobat/backend/internal/domain/valuation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchKind represents the kind of battery batch
type BatchKind string

const (
	// BatchKindCollection is a pickup from a collection point, priced
	// from the tariff table.
	BatchKindCollection BatchKind = "COLLECTION"
	// BatchKindPackage is a package handed over with declared weight
	// and value.
	BatchKindPackage BatchKind = "PACKAGE"
	// BatchKindRecycling is a direct recycling delivery with declared
	// weight and value.
	BatchKindRecycling BatchKind = "RECYCLING"
)

// IsValid checks if the kind is a valid BatchKind
func (k BatchKind) IsValid() bool {
	switch k {
	case BatchKindCollection, BatchKindPackage, BatchKindRecycling:
		return true
	}
	return false
}

// String returns the string representation of BatchKind
func (k BatchKind) String() string {
	return string(k)
}

// ValuationMode returns how manifests of this kind are priced: collection
// batches against the tariff table, package and recycling batches from
// counterparty-declared values.
func (k BatchKind) ValuationMode() valuation.Mode {
	if k == BatchKindCollection {
		return valuation.ModeTariff
	}
	return valuation.ModeDeclared
}

// BatchStatus represents the billing status of a batch
type BatchStatus string

const (
	BatchStatusPending   BatchStatus = "PENDING"
	BatchStatusValidated BatchStatus = "VALIDATED"
)

// IsValid checks if the status is a valid BatchStatus
func (s BatchStatus) IsValid() bool {
	return s == BatchStatusPending || s == BatchStatusValidated
}

// String returns the string representation of BatchStatus
func (s BatchStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s BatchStatus) CanTransitionTo(target BatchStatus) bool {
	// VALIDATED is terminal
	return s == BatchStatusPending && target == BatchStatusValidated
}

// Batch represents a battery batch aggregate root. A batch records what a
// counterparty handed over (the manifest) and tracks whether it has been
// converted into an invoice. A batch is invoiced at most once.
type Batch struct {
	shared.BaseAggregateRoot
	Kind          BatchKind
	Status        BatchStatus
	CompanyID     uuid.UUID
	CompanyName   string
	Manifest      valuation.Manifest
	TotalWeightKg decimal.Decimal
	TotalValueRON decimal.Decimal
	TableVersion  string
	PickupDate    time.Time
	Notes         string
	InvoiceID     *uuid.UUID
	ValidatedAt   *time.Time
}

// NewBatch creates a new pending batch. The manifest is validated against
// the published category keys and the cached totals are computed with the
// given engine.
func NewBatch(kind BatchKind, companyID uuid.UUID, companyName string, pickupDate time.Time, manifest valuation.Manifest, engine *valuation.Engine) (*Batch, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_BATCH_KIND", "Unknown batch kind")
	}
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	if companyName == "" {
		return nil, shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot be empty")
	}

	manifest = manifest.Clean()
	if manifest.IsEmpty() {
		return nil, shared.NewDomainError("INVALID_MANIFEST", "Batch manifest cannot be empty")
	}

	result, err := engine.Valuate(manifest, kind.ValuationMode())
	if err != nil {
		return nil, err
	}

	batch := &Batch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Kind:              kind,
		Status:            BatchStatusPending,
		CompanyID:         companyID,
		CompanyName:       companyName,
		Manifest:          manifest,
		TotalWeightKg:     result.TotalWeightKg,
		TotalValueRON:     result.TotalValueRON,
		TableVersion:      result.TableVersion,
		PickupDate:        pickupDate,
	}

	batch.AddDomainEvent(NewBatchCreatedEvent(batch))

	return batch, nil
}

// UpdateManifest replaces the manifest of a pending batch and recomputes
// the cached totals. Validated batches are frozen.
func (b *Batch) UpdateManifest(manifest valuation.Manifest, engine *valuation.Engine) error {
	if b.Status != BatchStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify a validated batch")
	}

	manifest = manifest.Clean()
	if manifest.IsEmpty() {
		return shared.NewDomainError("INVALID_MANIFEST", "Batch manifest cannot be empty")
	}

	result, err := engine.Valuate(manifest, b.Kind.ValuationMode())
	if err != nil {
		return err
	}

	b.Manifest = manifest
	b.TotalWeightKg = result.TotalWeightKg
	b.TotalValueRON = result.TotalValueRON
	b.TableVersion = result.TableVersion
	b.UpdatedAt = time.Now()

	return nil
}

// SetNotes sets free-form notes on the batch
func (b *Batch) SetNotes(notes string) error {
	if b.Status != BatchStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot modify a validated batch")
	}
	b.Notes = notes
	b.UpdatedAt = time.Now()
	return nil
}

// MarkValidated flips the batch to VALIDATED and binds it to the invoice
// that covers it. The transition happens exactly once: a batch that
// already carries an invoice cannot be validated again.
func (b *Batch) MarkValidated(invoiceID uuid.UUID) error {
	if invoiceID == uuid.Nil {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if !b.Status.CanTransitionTo(BatchStatusValidated) {
		return shared.NewDomainError("ALREADY_VALIDATED", "Batch has already been validated")
	}

	now := time.Now()
	b.Status = BatchStatusValidated
	b.InvoiceID = &invoiceID
	b.ValidatedAt = &now
	b.UpdatedAt = now

	b.AddDomainEvent(NewBatchValidatedEvent(b))

	return nil
}

// IsValidated returns true once the batch has been converted to an invoice
func (b *Batch) IsValidated() bool {
	return b.Status == BatchStatusValidated
}

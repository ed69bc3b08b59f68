package intake

import (
	"context"

	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BatchRepository defines the interface for batch persistence
type BatchRepository interface {
	// FindByID finds a batch by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)

	// FindByIDForUpdate finds a batch by ID holding a row lock for the
	// rest of the transaction. Concurrent validations of the same batch
	// serialize on this lock.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Batch, error)

	// FindAll finds batches with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Batch, error)

	// FindByStatus finds batches by billing status
	FindByStatus(ctx context.Context, status BatchStatus, filter shared.Filter) ([]Batch, error)

	// FindByCompany finds batches for a counterparty company
	FindByCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]Batch, error)

	// Save creates or updates a batch
	Save(ctx context.Context, batch *Batch) error

	// Delete deletes a pending batch
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts batches matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts batches by billing status
	CountByStatus(ctx context.Context, status BatchStatus) (int64, error)
}

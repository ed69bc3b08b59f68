package invoicing

import (
	"context"

	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice with its items by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an invoice by its full invoice number
	FindByNumber(ctx context.Context, number string) (*Invoice, error)

	// FindByBatch finds the invoice covering a batch, nil when the batch
	// has not been invoiced yet
	FindByBatch(ctx context.Context, batchID uuid.UUID) (*Invoice, error)

	// FindByCompany finds invoices issued by a company
	FindByCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]Invoice, error)

	// FindAll finds invoices with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)

	// Save persists an invoice with its items
	Save(ctx context.Context, invoice *Invoice) error

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

package invoicing

import (
	"context"

	"github.com/ecobat/backend/internal/domain/invoicing"
	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvoiceService answers read queries over issued invoices
type InvoiceService struct {
	invoiceRepo invoicing.InvoiceRepository
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo invoicing.InvoiceRepository) *InvoiceService {
	return &InvoiceService{invoiceRepo: invoiceRepo}
}

// GetInvoice returns an invoice with its items
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// GetInvoiceForBatch returns the invoice covering a batch
func (s *InvoiceService) GetInvoiceForBatch(ctx context.Context, batchID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// ListInvoices returns a page of invoices
func (s *InvoiceService) ListInvoices(ctx context.Context, filter InvoiceListFilter) (*shared.Paginated[InvoiceListItemResponse], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Search:   filter.Search,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	}

	var (
		invoices []invoicing.Invoice
		err      error
	)
	if filter.CompanyID != nil {
		invoices, err = s.invoiceRepo.FindByCompany(ctx, *filter.CompanyID, domainFilter)
	} else {
		invoices, err = s.invoiceRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, err
	}

	total, err := s.invoiceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]InvoiceListItemResponse, 0, len(invoices))
	for idx := range invoices {
		items = append(items, ToInvoiceListItemResponse(&invoices[idx]))
	}

	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetPDFPath returns the stored document path of an invoice
func (s *InvoiceService) GetPDFPath(ctx context.Context, id uuid.UUID) (string, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !invoice.HasPDF() {
		return "", shared.NewDomainError("PDF_NOT_READY", "Invoice document has not been rendered yet")
	}
	return invoice.PDFPath, nil
}

package invoicing

import (
	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeInvoice = "Invoice"

// Event type constants
const (
	EventTypeInvoiceIssued = "InvoiceIssued"
)

// InvoiceIssuedEvent is raised when a batch is converted into an invoice
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceID             uuid.UUID       `json:"invoice_id"`
	Number                string          `json:"number"`
	IssuerCompanyID       uuid.UUID       `json:"issuer_company_id"`
	CounterpartyCompanyID uuid.UUID       `json:"counterparty_company_id"`
	BatchID               uuid.UUID       `json:"batch_id"`
	Total                 decimal.Decimal `json:"total"`
}

// NewInvoiceIssuedEvent creates a new InvoiceIssuedEvent
func NewInvoiceIssuedEvent(invoice *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent:       shared.NewBaseDomainEvent(EventTypeInvoiceIssued, invoice.ID, AggregateTypeInvoice),
		InvoiceID:             invoice.ID,
		Number:                invoice.Number,
		IssuerCompanyID:       invoice.IssuerCompanyID,
		CounterpartyCompanyID: invoice.CounterpartyCompanyID,
		BatchID:               invoice.BatchID,
		Total:                 invoice.Total,
	}
}

package invoicing

import (
	"time"

	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/ecobat/backend/internal/domain/valuation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceItem represents one line of an issued invoice. Line numbers are
// dense and 1-based in the order the lines were assembled.
type InvoiceItem struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	LineNo      int
	CategoryKey valuation.CategoryKey
	Description string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	CreatedAt   time.Time
}

// IssuerSnapshot freezes the billing profile fields the invoice was issued
// under. Later profile edits never rewrite an issued document.
type IssuerSnapshot struct {
	LegalName     string
	TaxID         string
	TradeRegistry string
	Address       string
	City          string
	County        string
	IBAN          string
	BankName      string
}

// Invoice represents an issued invoice aggregate root. The issuer is the
// operator company whose series and number sequence the document belongs
// to; the counterparty is the company that registered the batch. Invoices
// are immutable once created: the number, the item lines and the totals
// are fixed at issuance and only the rendered document path is attached
// afterwards.
type Invoice struct {
	shared.BaseAggregateRoot
	Number                string
	SequenceNumber        int64
	SeriesCode            string
	Year                  int
	IssuerCompanyID       uuid.UUID
	CounterpartyCompanyID uuid.UUID
	BatchID               uuid.UUID
	Issuer                IssuerSnapshot
	Items                 []InvoiceItem
	Subtotal              decimal.Decimal
	VATRate               decimal.Decimal
	VATAmount             decimal.Decimal
	Total                 decimal.Decimal
	TotalWeightKg         decimal.Decimal
	TableVersion          string
	IssueDate             time.Time
	DueDate               time.Time
	PDFPath               string
}

// AttachPDF records where the rendered document was stored. Rendering
// happens after the issuing transaction commits, so a missing path never
// means a missing invoice.
func (i *Invoice) AttachPDF(path string) error {
	if path == "" {
		return shared.NewDomainError("INVALID_PDF_PATH", "PDF path cannot be empty")
	}
	i.PDFPath = path
	i.UpdatedAt = time.Now()
	return nil
}

// HasPDF reports whether a rendered document is attached
func (i *Invoice) HasPDF() bool {
	return i.PDFPath != ""
}

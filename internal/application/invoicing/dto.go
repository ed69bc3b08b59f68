package invoicing

import (
	"time"

	"github.com/ecobat/backend/internal/domain/invoicing"
	"github.com/ecobat/backend/internal/domain/valuation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceItemResponse represents one invoice line in API responses
type InvoiceItemResponse struct {
	LineNo      int                   `json:"line_no"`
	CategoryKey valuation.CategoryKey `json:"category_key,omitempty"`
	Description string                `json:"description"`
	Quantity    decimal.Decimal       `json:"quantity"`
	Unit        string                `json:"unit"`
	UnitPrice   decimal.Decimal       `json:"unit_price"`
	LineTotal   decimal.Decimal       `json:"line_total"`
}

// InvoiceIssuerResponse represents the issuer snapshot in API responses
type InvoiceIssuerResponse struct {
	LegalName     string `json:"legal_name"`
	TaxID         string `json:"tax_id"`
	TradeRegistry string `json:"trade_registry,omitempty"`
	Address       string `json:"address,omitempty"`
	City          string `json:"city,omitempty"`
	County        string `json:"county,omitempty"`
	IBAN          string `json:"iban,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID                    uuid.UUID             `json:"id"`
	Number                string                `json:"number"`
	SequenceNumber        int64                 `json:"sequence_number"`
	SeriesCode            string                `json:"series_code"`
	Year                  int                   `json:"year"`
	IssuerCompanyID       uuid.UUID             `json:"issuer_company_id"`
	CounterpartyCompanyID uuid.UUID             `json:"counterparty_company_id"`
	BatchID               uuid.UUID             `json:"batch_id"`
	Issuer                InvoiceIssuerResponse `json:"issuer"`
	Items                 []InvoiceItemResponse `json:"items"`
	Subtotal              decimal.Decimal       `json:"subtotal"`
	VATRate               decimal.Decimal       `json:"vat_rate"`
	VATAmount             decimal.Decimal       `json:"vat_amount"`
	Total                 decimal.Decimal       `json:"total"`
	TotalWeightKg         decimal.Decimal       `json:"total_weight_kg"`
	TableVersion          string                `json:"table_version"`
	IssueDate             time.Time             `json:"issue_date"`
	DueDate               time.Time             `json:"due_date"`
	HasPDF                bool                  `json:"has_pdf"`
	CreatedAt             time.Time             `json:"created_at"`
}

// InvoiceListItemResponse represents an invoice in list responses
type InvoiceListItemResponse struct {
	ID                    uuid.UUID       `json:"id"`
	Number                string          `json:"number"`
	IssuerCompanyID       uuid.UUID       `json:"issuer_company_id"`
	CounterpartyCompanyID uuid.UUID       `json:"counterparty_company_id"`
	BatchID               uuid.UUID       `json:"batch_id"`
	Total                 decimal.Decimal `json:"total"`
	TotalWeightKg         decimal.Decimal `json:"total_weight_kg"`
	IssueDate             time.Time       `json:"issue_date"`
	DueDate               time.Time       `json:"due_date"`
	HasPDF                bool            `json:"has_pdf"`
}

// ValidationResponse is the result of validating a batch. AlreadyValidated
// is true when the batch had been converted before and the existing
// invoice is returned unchanged.
type ValidationResponse struct {
	Invoice          InvoiceResponse `json:"invoice"`
	AlreadyValidated bool            `json:"already_validated"`
}

// InvoiceListFilter represents filter options for invoice lists
type InvoiceListFilter struct {
	CompanyID *uuid.UUID `form:"company_id"`
	Year      *int       `form:"year"`
	Search    string     `form:"search"`
	Page      int        `form:"page" binding:"min=1"`
	PageSize  int        `form:"page_size" binding:"min=1,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToInvoiceResponse converts an invoice domain object to a response DTO
func ToInvoiceResponse(invoice *invoicing.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		items = append(items, InvoiceItemResponse{
			LineNo:      item.LineNo,
			CategoryKey: item.CategoryKey,
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}

	return InvoiceResponse{
		ID:                    invoice.ID,
		Number:                invoice.Number,
		SequenceNumber:        invoice.SequenceNumber,
		SeriesCode:            invoice.SeriesCode,
		Year:                  invoice.Year,
		IssuerCompanyID:       invoice.IssuerCompanyID,
		CounterpartyCompanyID: invoice.CounterpartyCompanyID,
		BatchID:               invoice.BatchID,
		Issuer: InvoiceIssuerResponse{
			LegalName:     invoice.Issuer.LegalName,
			TaxID:         invoice.Issuer.TaxID,
			TradeRegistry: invoice.Issuer.TradeRegistry,
			Address:       invoice.Issuer.Address,
			City:          invoice.Issuer.City,
			County:        invoice.Issuer.County,
			IBAN:          invoice.Issuer.IBAN,
			BankName:      invoice.Issuer.BankName,
		},
		Items:         items,
		Subtotal:      invoice.Subtotal,
		VATRate:       invoice.VATRate,
		VATAmount:     invoice.VATAmount,
		Total:         invoice.Total,
		TotalWeightKg: invoice.TotalWeightKg,
		TableVersion:  invoice.TableVersion,
		IssueDate:     invoice.IssueDate,
		DueDate:       invoice.DueDate,
		HasPDF:        invoice.HasPDF(),
		CreatedAt:     invoice.CreatedAt,
	}
}

// ToInvoiceListItemResponse converts an invoice to a list item DTO
func ToInvoiceListItemResponse(invoice *invoicing.Invoice) InvoiceListItemResponse {
	return InvoiceListItemResponse{
		ID:                    invoice.ID,
		Number:                invoice.Number,
		IssuerCompanyID:       invoice.IssuerCompanyID,
		CounterpartyCompanyID: invoice.CounterpartyCompanyID,
		BatchID:               invoice.BatchID,
		Total:                 invoice.Total,
		TotalWeightKg:         invoice.TotalWeightKg,
		IssueDate:             invoice.IssueDate,
		DueDate:               invoice.DueDate,
		HasPDF:                invoice.HasPDF(),
	}
}

// Package invoicing turns validated batches into immutable, sequentially
// numbered invoices.
package invoicing

import (
	"time"

	"github.com/ecobat/backend/internal/domain/billing"
	"github.com/ecobat/backend/internal/domain/intake"
	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/ecobat/backend/internal/domain/valuation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	unitPieces    = "buc"
	unitKilograms = "kg"

	// declaredLineDescription labels the single aggregate line of a
	// declared-value invoice.
	declaredLineDescription = "Deseuri de baterii si acumulatori predate"
)

var oneHundred = decimal.NewFromInt(100)

// Assembler builds invoices from batches and their authoritative valuation
// result. It is pure: number allocation and persistence are the caller's
// concern, the assembler only derives the document content.
type Assembler struct {
	table *valuation.RateTable
}

// NewAssembler creates an assembler bound to the published rate table
func NewAssembler(table *valuation.RateTable) *Assembler {
	return &Assembler{table: table}
}

// NumberedSequence carries the number allocated for one invoice
type NumberedSequence struct {
	Number         string
	SequenceNumber int64
	SeriesCode     string
	Year           int
}

// Assemble builds the invoice an issuer raises for a batch. The profile
// and settings belong to the issuing company, the batch names the
// counterparty. Tariff-priced batches get one line per manifest category
// in the published key order; declared-value batches get a single
// aggregate line. VAT is computed on the rounded subtotal and rounded to
// 2 decimals.
func (a *Assembler) Assemble(batch *intake.Batch, result *valuation.Result, profile *billing.BillingProfile, settings *billing.InvoiceSettings, seq NumberedSequence, issueDate time.Time) (*Invoice, error) {
	if batch == nil || result == nil || profile == nil || settings == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Assembler requires batch, valuation result, profile and settings")
	}
	if seq.Number == "" || seq.SequenceNumber < 1 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number has not been allocated")
	}

	invoice := &Invoice{
		BaseAggregateRoot:     shared.NewBaseAggregateRoot(),
		Number:                seq.Number,
		SequenceNumber:        seq.SequenceNumber,
		SeriesCode:            seq.SeriesCode,
		Year:                  seq.Year,
		IssuerCompanyID:       profile.CompanyID,
		CounterpartyCompanyID: batch.CompanyID,
		BatchID:               batch.ID,
		Issuer: IssuerSnapshot{
			LegalName:     profile.LegalName,
			TaxID:         profile.TaxID,
			TradeRegistry: profile.TradeRegistry,
			Address:       profile.Address,
			City:          profile.City,
			County:        profile.County,
			IBAN:          profile.IBAN,
			BankName:      profile.BankName,
		},
		VATRate:       settings.DefaultVATRate,
		TotalWeightKg: result.TotalWeightKg,
		TableVersion:  result.TableVersion,
		IssueDate:     issueDate,
		DueDate:       issueDate.AddDate(0, 0, settings.DueDays),
	}

	if batch.Kind.ValuationMode() == valuation.ModeTariff {
		invoice.Items = a.tariffItems(invoice.ID, batch.Manifest, result)
	} else {
		invoice.Items = a.declaredItems(invoice.ID, result)
	}

	if len(invoice.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_MANIFEST", "Invoice would have no lines")
	}

	subtotal := decimal.Zero
	for _, item := range invoice.Items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	invoice.Subtotal = subtotal
	invoice.VATAmount = subtotal.Mul(invoice.VATRate).Div(oneHundred).Round(2)
	invoice.Total = subtotal.Add(invoice.VATAmount)

	invoice.AddDomainEvent(NewInvoiceIssuedEvent(invoice))

	return invoice, nil
}

// tariffItems builds one line per manifest category, in the published key
// order so equal manifests always produce identical documents.
func (a *Assembler) tariffItems(invoiceID uuid.UUID, manifest valuation.Manifest, result *valuation.Result) []InvoiceItem {
	now := time.Now()
	items := make([]InvoiceItem, 0, len(result.LineTotals))

	for _, key := range valuation.AllKeys {
		lineTotal, ok := result.LineTotals[key]
		if !ok {
			continue
		}
		line := manifest[key]
		entry := a.table.Entry(key)

		item := InvoiceItem{
			ID:          uuid.New(),
			InvoiceID:   invoiceID,
			LineNo:      len(items) + 1,
			CategoryKey: key,
			Description: key.Label(),
			UnitPrice:   entry.RatePerUnit,
			LineTotal:   lineTotal,
			CreatedAt:   now,
		}
		if key.IsPieceRated() {
			item.Quantity = decimal.NewFromInt(line.Pieces)
			item.Unit = unitPieces
		} else {
			item.Quantity = line.WeightKg
			item.Unit = unitKilograms
		}

		items = append(items, item)
	}

	return items
}

// declaredItems builds the single aggregate line of a declared-value
// invoice: total weight at the counterparty-declared total value.
func (a *Assembler) declaredItems(invoiceID uuid.UUID, result *valuation.Result) []InvoiceItem {
	unitPrice := decimal.Zero
	if result.TotalWeightKg.IsPositive() {
		unitPrice = result.TotalValueRON.Div(result.TotalWeightKg).Round(4)
	}

	return []InvoiceItem{{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		LineNo:      1,
		Description: declaredLineDescription,
		Quantity:    result.TotalWeightKg,
		Unit:        unitKilograms,
		UnitPrice:   unitPrice,
		LineTotal:   result.TotalValueRON,
		CreatedAt:   time.Now(),
	}}
}

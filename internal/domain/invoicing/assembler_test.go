package invoicing

import (
	"testing"
	"time"

	"github.com/ecobat/backend/internal/domain/billing"
	"github.com/ecobat/backend/internal/domain/intake"
	"github.com/ecobat/backend/internal/domain/valuation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFixtures(t *testing.T, kind intake.BatchKind, manifest valuation.Manifest) (*intake.Batch, *valuation.Result, *billing.BillingProfile, *billing.InvoiceSettings) {
	t.Helper()

	engine := valuation.NewEngine(valuation.DefaultRateTable())
	counterpartyID := uuid.New()
	issuerID := uuid.New()

	batch, err := intake.NewBatch(kind, counterpartyID, "SC Acumulatorul SRL", time.Now(), manifest, engine)
	require.NoError(t, err)

	result, err := engine.Valuate(batch.Manifest, kind.ValuationMode())
	require.NoError(t, err)

	// profile and settings belong to the issuing operator, not the batch company
	profile, err := billing.NewBillingProfile(issuerID)
	require.NoError(t, err)
	profile.UpdateLegalInfo("EcoBat Operator SRL", "RO1234567", "J40/123/2020", "Str. Uzinei 1", "Bucuresti", "Bucuresti")
	profile.UpdateBankInfo("RO49AAAA1B31007593840000", "Banca Transilvania")
	_, err = profile.AddContact("Maria Pop", "facturi@ecobat.ro", "", true)
	require.NoError(t, err)

	settings, err := billing.NewInvoiceSettings(issuerID)
	require.NoError(t, err)

	return batch, result, profile, settings
}

func testSequence() NumberedSequence {
	return NumberedSequence{Number: "INV-2026-0001", SequenceNumber: 1, SeriesCode: "INV", Year: 2026}
}

func TestAssembler_Assemble_Tariff(t *testing.T) {
	batch, result, profile, settings := testFixtures(t, intake.BatchKindCollection, valuation.Manifest{
		valuation.Portable0to50: {Pieces: 100},
		valuation.Auto3a:        {WeightKg: decimal.RequireFromString("10")},
	})
	issueDate := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	assembler := NewAssembler(valuation.DefaultRateTable())
	invoice, err := assembler.Assemble(batch, result, profile, settings, testSequence(), issueDate)
	require.NoError(t, err)

	assert.Equal(t, "INV-2026-0001", invoice.Number)
	assert.Equal(t, int64(1), invoice.SequenceNumber)
	assert.Equal(t, batch.ID, invoice.BatchID)
	assert.Equal(t, profile.CompanyID, invoice.IssuerCompanyID)
	assert.Equal(t, batch.CompanyID, invoice.CounterpartyCompanyID)
	assert.NotEqual(t, invoice.IssuerCompanyID, invoice.CounterpartyCompanyID)
	assert.Equal(t, "EcoBat Operator SRL", invoice.Issuer.LegalName)
	assert.Equal(t, "RO1234567", invoice.Issuer.TaxID)

	// one line per manifest category, dense 1-based numbering in key order
	require.Len(t, invoice.Items, 2)
	assert.Equal(t, 1, invoice.Items[0].LineNo)
	assert.Equal(t, valuation.Portable0to50, invoice.Items[0].CategoryKey)
	assert.Equal(t, "buc", invoice.Items[0].Unit)
	assert.Equal(t, "100", invoice.Items[0].Quantity.String())
	assert.Equal(t, "4.00", invoice.Items[0].LineTotal.StringFixed(2))

	assert.Equal(t, 2, invoice.Items[1].LineNo)
	assert.Equal(t, valuation.Auto3a, invoice.Items[1].CategoryKey)
	assert.Equal(t, "kg", invoice.Items[1].Unit)
	assert.Equal(t, "3.50", invoice.Items[1].LineTotal.StringFixed(2))

	// subtotal 7.50, VAT 19% = 1.425 -> 1.43
	assert.Equal(t, "7.50", invoice.Subtotal.StringFixed(2))
	assert.Equal(t, "1.43", invoice.VATAmount.StringFixed(2))
	assert.Equal(t, "8.93", invoice.Total.StringFixed(2))

	assert.Equal(t, issueDate.AddDate(0, 0, settings.DueDays), invoice.DueDate)
	assert.Equal(t, valuation.DefaultTableVersion, invoice.TableVersion)
}

func TestAssembler_Assemble_Declared(t *testing.T) {
	batch, result, profile, settings := testFixtures(t, intake.BatchKindPackage, valuation.Manifest{
		valuation.Auto3a: {WeightKg: decimal.RequireFromString("20"), ValueRON: decimal.RequireFromString("50.00")},
	})

	assembler := NewAssembler(valuation.DefaultRateTable())
	invoice, err := assembler.Assemble(batch, result, profile, settings, testSequence(), time.Now())
	require.NoError(t, err)

	require.Len(t, invoice.Items, 1)
	item := invoice.Items[0]
	assert.Equal(t, 1, item.LineNo)
	assert.Equal(t, "kg", item.Unit)
	assert.Equal(t, "20.00", item.Quantity.StringFixed(2))
	assert.Equal(t, "2.5000", item.UnitPrice.StringFixed(4))
	assert.Equal(t, "50.00", item.LineTotal.StringFixed(2))

	assert.Equal(t, "50.00", invoice.Subtotal.StringFixed(2))
	assert.Equal(t, "9.50", invoice.VATAmount.StringFixed(2))
	assert.Equal(t, "59.50", invoice.Total.StringFixed(2))
}

func TestAssembler_Assemble_Deterministic(t *testing.T) {
	manifest := valuation.Manifest{
		valuation.PortablePastila: {Pieces: 10},
		valuation.Portable0to50:   {Pieces: 100},
		valuation.Auto3b:          {WeightKg: decimal.RequireFromString("5")},
		valuation.Industrial4a:    {WeightKg: decimal.RequireFromString("3")},
	}
	batch, result, profile, settings := testFixtures(t, intake.BatchKindCollection, manifest)
	assembler := NewAssembler(valuation.DefaultRateTable())

	first, err := assembler.Assemble(batch, result, profile, settings, testSequence(), time.Now())
	require.NoError(t, err)
	second, err := assembler.Assemble(batch, result, profile, settings, testSequence(), time.Now())
	require.NoError(t, err)

	require.Equal(t, len(first.Items), len(second.Items))
	for idx := range first.Items {
		assert.Equal(t, first.Items[idx].CategoryKey, second.Items[idx].CategoryKey)
		assert.Equal(t, first.Items[idx].LineNo, second.Items[idx].LineNo)
		assert.True(t, first.Items[idx].LineTotal.Equal(second.Items[idx].LineTotal))
	}
	assert.True(t, first.Total.Equal(second.Total))
}

func TestAssembler_Assemble_Rejections(t *testing.T) {
	batch, result, profile, settings := testFixtures(t, intake.BatchKindCollection, valuation.Manifest{
		valuation.Portable0to50: {Pieces: 1},
	})
	assembler := NewAssembler(valuation.DefaultRateTable())

	t.Run("missing inputs", func(t *testing.T) {
		_, err := assembler.Assemble(nil, result, profile, settings, testSequence(), time.Now())
		assert.Error(t, err)
		_, err = assembler.Assemble(batch, nil, profile, settings, testSequence(), time.Now())
		assert.Error(t, err)
	})

	t.Run("unallocated number", func(t *testing.T) {
		_, err := assembler.Assemble(batch, result, profile, settings, NumberedSequence{}, time.Now())
		assert.Error(t, err)
	})
}

func TestInvoice_AttachPDF(t *testing.T) {
	batch, result, profile, settings := testFixtures(t, intake.BatchKindCollection, valuation.Manifest{
		valuation.Portable0to50: {Pieces: 1},
	})
	assembler := NewAssembler(valuation.DefaultRateTable())
	invoice, err := assembler.Assemble(batch, result, profile, settings, testSequence(), time.Now())
	require.NoError(t, err)

	assert.False(t, invoice.HasPDF())
	assert.Error(t, invoice.AttachPDF(""))
	require.NoError(t, invoice.AttachPDF("invoices/INV-2026-0001.pdf"))
	assert.True(t, invoice.HasPDF())
}

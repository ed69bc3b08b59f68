package models

import (
	"time"

	"github.com/ecobat/backend/internal/domain/invoicing"
	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/ecobat/backend/internal/domain/valuation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// The issuer snapshot is flattened into issuer_* columns so an issued
// document never changes when the billing profile does. The batch ID
// carries a unique index: the database itself refuses a second invoice
// for the same batch.
type InvoiceModel struct {
	AggregateModel
	Number                string          `gorm:"type:varchar(30);not null;uniqueIndex:idx_invoice_issuer_number,priority:2"`
	SequenceNumber        int64           `gorm:"not null"`
	SeriesCode            string          `gorm:"type:varchar(10);not null"`
	Year                  int             `gorm:"not null;index"`
	IssuerCompanyID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_issuer_number,priority:1"`
	CounterpartyCompanyID uuid.UUID       `gorm:"type:uuid;not null;index"`
	BatchID               uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	IssuerLegal           string          `gorm:"column:issuer_legal_name;type:varchar(200);not null"`
	IssuerTaxID           string          `gorm:"column:issuer_tax_id;type:varchar(20);not null"`
	IssuerRegistry        string          `gorm:"column:issuer_trade_registry;type:varchar(30)"`
	IssuerAddress         string          `gorm:"column:issuer_address;type:varchar(300)"`
	IssuerCity            string          `gorm:"column:issuer_city;type:varchar(100)"`
	IssuerCounty          string          `gorm:"column:issuer_county;type:varchar(100)"`
	IssuerIBAN            string          `gorm:"column:issuer_iban;type:varchar(34)"`
	IssuerBank            string          `gorm:"column:issuer_bank_name;type:varchar(100)"`
	Subtotal              decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	VATRate               decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	VATAmount             decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Total                 decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TotalWeightKg         decimal.Decimal `gorm:"type:decimal(14,3);not null"`
	TableVersion          string          `gorm:"type:varchar(20);not null"`
	IssueDate             time.Time       `gorm:"type:date;not null;index"`
	DueDate               time.Time       `gorm:"type:date;not null"`
	PDFPath               string          `gorm:"type:varchar(500)"`
	// Associations
	Items []InvoiceItemModel `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice aggregate.
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	invoice := &invoicing.Invoice{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Number:                m.Number,
		SequenceNumber:        m.SequenceNumber,
		SeriesCode:            m.SeriesCode,
		Year:                  m.Year,
		IssuerCompanyID:       m.IssuerCompanyID,
		CounterpartyCompanyID: m.CounterpartyCompanyID,
		BatchID:               m.BatchID,
		Issuer: invoicing.IssuerSnapshot{
			LegalName:     m.IssuerLegal,
			TaxID:         m.IssuerTaxID,
			TradeRegistry: m.IssuerRegistry,
			Address:       m.IssuerAddress,
			City:          m.IssuerCity,
			County:        m.IssuerCounty,
			IBAN:          m.IssuerIBAN,
			BankName:      m.IssuerBank,
		},
		Items:         make([]invoicing.InvoiceItem, len(m.Items)),
		Subtotal:      m.Subtotal,
		VATRate:       m.VATRate,
		VATAmount:     m.VATAmount,
		Total:         m.Total,
		TotalWeightKg: m.TotalWeightKg,
		TableVersion:  m.TableVersion,
		IssueDate:     m.IssueDate,
		DueDate:       m.DueDate,
		PDFPath:       m.PDFPath,
	}
	for i, item := range m.Items {
		invoice.Items[i] = *item.ToDomain()
	}
	return invoice
}

// FromDomain populates the persistence model from a domain Invoice aggregate.
func (m *InvoiceModel) FromDomain(i *invoicing.Invoice) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.Number = i.Number
	m.SequenceNumber = i.SequenceNumber
	m.SeriesCode = i.SeriesCode
	m.Year = i.Year
	m.IssuerCompanyID = i.IssuerCompanyID
	m.CounterpartyCompanyID = i.CounterpartyCompanyID
	m.BatchID = i.BatchID
	m.IssuerLegal = i.Issuer.LegalName
	m.IssuerTaxID = i.Issuer.TaxID
	m.IssuerRegistry = i.Issuer.TradeRegistry
	m.IssuerAddress = i.Issuer.Address
	m.IssuerCity = i.Issuer.City
	m.IssuerCounty = i.Issuer.County
	m.IssuerIBAN = i.Issuer.IBAN
	m.IssuerBank = i.Issuer.BankName
	m.Subtotal = i.Subtotal
	m.VATRate = i.VATRate
	m.VATAmount = i.VATAmount
	m.Total = i.Total
	m.TotalWeightKg = i.TotalWeightKg
	m.TableVersion = i.TableVersion
	m.IssueDate = i.IssueDate
	m.DueDate = i.DueDate
	m.PDFPath = i.PDFPath
	m.Items = make([]InvoiceItemModel, len(i.Items))
	for idx := range i.Items {
		m.Items[idx] = *InvoiceItemModelFromDomain(&i.Items[idx])
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice aggregate.
func InvoiceModelFromDomain(i *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(i)
	return m
}

// InvoiceItemModel is the persistence model for the InvoiceItem entity.
type InvoiceItemModel struct {
	ID          uuid.UUID             `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID             `gorm:"type:uuid;not null;index"`
	LineNo      int                   `gorm:"not null"`
	CategoryKey valuation.CategoryKey `gorm:"type:varchar(40)"`
	Description string                `gorm:"type:varchar(300);not null"`
	Quantity    decimal.Decimal       `gorm:"type:decimal(14,3);not null"`
	Unit        string                `gorm:"type:varchar(10);not null"`
	UnitPrice   decimal.Decimal       `gorm:"type:decimal(14,4);not null"`
	LineTotal   decimal.Decimal       `gorm:"type:decimal(14,2);not null"`
	CreatedAt   time.Time             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem entity.
func (m *InvoiceItemModel) ToDomain() *invoicing.InvoiceItem {
	return &invoicing.InvoiceItem{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		LineNo:      m.LineNo,
		CategoryKey: m.CategoryKey,
		Description: m.Description,
		Quantity:    m.Quantity,
		Unit:        m.Unit,
		UnitPrice:   m.UnitPrice,
		LineTotal:   m.LineTotal,
		CreatedAt:   m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain InvoiceItem entity.
func (m *InvoiceItemModel) FromDomain(i *invoicing.InvoiceItem) {
	m.ID = i.ID
	m.InvoiceID = i.InvoiceID
	m.LineNo = i.LineNo
	m.CategoryKey = i.CategoryKey
	m.Description = i.Description
	m.Quantity = i.Quantity
	m.Unit = i.Unit
	m.UnitPrice = i.UnitPrice
	m.LineTotal = i.LineTotal
	m.CreatedAt = i.CreatedAt
}

// InvoiceItemModelFromDomain creates a new persistence model from a domain InvoiceItem entity.
func InvoiceItemModelFromDomain(i *invoicing.InvoiceItem) *InvoiceItemModel {
	m := &InvoiceItemModel{}
	m.FromDomain(i)
	return m
}

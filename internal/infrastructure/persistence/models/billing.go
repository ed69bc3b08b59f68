package models

import (
	"github.com/ecobat/backend/internal/domain/billing"
	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillingProfileModel is the persistence model for the BillingProfile
// aggregate root. Contacts are stored in their own table and loaded as
// an association.
type BillingProfileModel struct {
	AggregateModel
	CompanyID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	LegalName     string    `gorm:"type:varchar(200)"`
	TaxID         string    `gorm:"type:varchar(20)"`
	TradeRegistry string    `gorm:"type:varchar(30)"`
	Address       string    `gorm:"type:varchar(300)"`
	City          string    `gorm:"type:varchar(100)"`
	County        string    `gorm:"type:varchar(100)"`
	IBAN          string    `gorm:"type:varchar(34)"`
	BankName      string    `gorm:"type:varchar(100)"`
	// Associations
	Contacts []BillingContactModel `gorm:"foreignKey:ProfileID;references:ID"`
}

// TableName returns the table name for GORM
func (BillingProfileModel) TableName() string {
	return "billing_profiles"
}

// ToDomain converts the persistence model to a domain BillingProfile aggregate.
func (m *BillingProfileModel) ToDomain() *billing.BillingProfile {
	profile := &billing.BillingProfile{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		CompanyID:     m.CompanyID,
		LegalName:     m.LegalName,
		TaxID:         m.TaxID,
		TradeRegistry: m.TradeRegistry,
		Address:       m.Address,
		City:          m.City,
		County:        m.County,
		IBAN:          m.IBAN,
		BankName:      m.BankName,
		Contacts:      make([]billing.BillingContact, len(m.Contacts)),
	}
	for i, contact := range m.Contacts {
		profile.Contacts[i] = *contact.ToDomain()
	}
	return profile
}

// FromDomain populates the persistence model from a domain BillingProfile aggregate.
func (m *BillingProfileModel) FromDomain(p *billing.BillingProfile) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.CompanyID = p.CompanyID
	m.LegalName = p.LegalName
	m.TaxID = p.TaxID
	m.TradeRegistry = p.TradeRegistry
	m.Address = p.Address
	m.City = p.City
	m.County = p.County
	m.IBAN = p.IBAN
	m.BankName = p.BankName
	m.Contacts = make([]BillingContactModel, len(p.Contacts))
	for i := range p.Contacts {
		m.Contacts[i] = *BillingContactModelFromDomain(&p.Contacts[i])
	}
}

// BillingProfileModelFromDomain creates a new persistence model from a domain BillingProfile aggregate.
func BillingProfileModelFromDomain(p *billing.BillingProfile) *BillingProfileModel {
	m := &BillingProfileModel{}
	m.FromDomain(p)
	return m
}

// BillingContactModel is the persistence model for the BillingContact entity.
type BillingContactModel struct {
	BaseModel
	ProfileID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(200);not null"`
	Email     string    `gorm:"type:varchar(200)"`
	Phone     string    `gorm:"type:varchar(30)"`
	IsBilling bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (BillingContactModel) TableName() string {
	return "billing_contacts"
}

// ToDomain converts the persistence model to a domain BillingContact entity.
func (m *BillingContactModel) ToDomain() *billing.BillingContact {
	return &billing.BillingContact{
		ID:        m.ID,
		ProfileID: m.ProfileID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		IsBilling: m.IsBilling,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain BillingContact entity.
func (m *BillingContactModel) FromDomain(c *billing.BillingContact) {
	m.ID = c.ID
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt
	m.ProfileID = c.ProfileID
	m.Name = c.Name
	m.Email = c.Email
	m.Phone = c.Phone
	m.IsBilling = c.IsBilling
}

// BillingContactModelFromDomain creates a new persistence model from a domain BillingContact entity.
func BillingContactModelFromDomain(c *billing.BillingContact) *BillingContactModel {
	m := &BillingContactModel{}
	m.FromDomain(c)
	return m
}

// InvoiceSettingsModel is the persistence model for the InvoiceSettings
// aggregate root. Number allocation takes a row lock on this table, so
// there is exactly one row per company.
type InvoiceSettingsModel struct {
	AggregateModel
	CompanyID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	SeriesCode     string          `gorm:"type:varchar(10);not null"`
	NextNumber     int64           `gorm:"not null;default:1"`
	YearReset      bool            `gorm:"not null;default:true"`
	CounterYear    int             `gorm:"not null"`
	DueDays        int             `gorm:"not null;default:15"`
	DefaultVATRate decimal.Decimal `gorm:"type:decimal(5,2);not null"`
}

// TableName returns the table name for GORM
func (InvoiceSettingsModel) TableName() string {
	return "invoice_settings"
}

// ToDomain converts the persistence model to a domain InvoiceSettings aggregate.
func (m *InvoiceSettingsModel) ToDomain() *billing.InvoiceSettings {
	return &billing.InvoiceSettings{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		CompanyID:      m.CompanyID,
		SeriesCode:     m.SeriesCode,
		NextNumber:     m.NextNumber,
		YearReset:      m.YearReset,
		CounterYear:    m.CounterYear,
		DueDays:        m.DueDays,
		DefaultVATRate: m.DefaultVATRate,
	}
}

// FromDomain populates the persistence model from a domain InvoiceSettings aggregate.
func (m *InvoiceSettingsModel) FromDomain(s *billing.InvoiceSettings) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.CompanyID = s.CompanyID
	m.SeriesCode = s.SeriesCode
	m.NextNumber = s.NextNumber
	m.YearReset = s.YearReset
	m.CounterYear = s.CounterYear
	m.DueDays = s.DueDays
	m.DefaultVATRate = s.DefaultVATRate
}

// InvoiceSettingsModelFromDomain creates a new persistence model from a domain InvoiceSettings aggregate.
func InvoiceSettingsModelFromDomain(s *billing.InvoiceSettings) *InvoiceSettingsModel {
	m := &InvoiceSettingsModel{}
	m.FromDomain(s)
	return m
}

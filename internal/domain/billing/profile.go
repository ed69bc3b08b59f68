// Package billing holds the counterparty billing configuration: the legal
// profile invoices are issued under, and the invoice series settings that
// drive sequential numbering.
package billing

import (
	"strings"
	"time"

	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BillingContact is a person attached to a company profile. Contacts
// flagged as billing contacts receive issued invoices.
type BillingContact struct {
	ID        uuid.UUID
	ProfileID uuid.UUID
	Name      string
	Email     string
	Phone     string
	IsBilling bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBillingContact creates a new contact for a profile
func NewBillingContact(profileID uuid.UUID, name, email, phone string, isBilling bool) (*BillingContact, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot be empty")
	}
	if isBilling && email == "" {
		return nil, shared.NewDomainError("INVALID_CONTACT_EMAIL", "Billing contacts must have an email address")
	}

	now := time.Now()
	return &BillingContact{
		ID:        uuid.New(),
		ProfileID: profileID,
		Name:      name,
		Email:     email,
		Phone:     phone,
		IsBilling: isBilling,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// BillingProfile represents the legal identity a company issues invoices
// under. Invoice validation requires the profile to be complete; until
// then batches stay pending.
type BillingProfile struct {
	shared.BaseAggregateRoot
	CompanyID      uuid.UUID
	LegalName      string
	TaxID          string // CUI
	TradeRegistry  string // Reg. Com. number
	Address        string
	City           string
	County         string
	IBAN           string
	BankName       string
	Contacts       []BillingContact
}

// NewBillingProfile creates a profile shell for a company. Fields may be
// filled in later; completeness is checked at validation time, not here.
func NewBillingProfile(companyID uuid.UUID) (*BillingProfile, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	return &BillingProfile{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CompanyID:         companyID,
		Contacts:          make([]BillingContact, 0),
	}, nil
}

// UpdateLegalInfo replaces the legal identity fields
func (p *BillingProfile) UpdateLegalInfo(legalName, taxID, tradeRegistry, address, city, county string) {
	p.LegalName = strings.TrimSpace(legalName)
	p.TaxID = strings.TrimSpace(taxID)
	p.TradeRegistry = strings.TrimSpace(tradeRegistry)
	p.Address = strings.TrimSpace(address)
	p.City = strings.TrimSpace(city)
	p.County = strings.TrimSpace(county)
	p.UpdatedAt = time.Now()
}

// UpdateBankInfo replaces the payment coordinates
func (p *BillingProfile) UpdateBankInfo(iban, bankName string) {
	p.IBAN = strings.TrimSpace(iban)
	p.BankName = strings.TrimSpace(bankName)
	p.UpdatedAt = time.Now()
}

// AddContact attaches a contact to the profile
func (p *BillingProfile) AddContact(name, email, phone string, isBilling bool) (*BillingContact, error) {
	contact, err := NewBillingContact(p.ID, name, email, phone, isBilling)
	if err != nil {
		return nil, err
	}
	p.Contacts = append(p.Contacts, *contact)
	p.UpdatedAt = time.Now()
	return contact, nil
}

// RemoveContact removes a contact from the profile
func (p *BillingProfile) RemoveContact(contactID uuid.UUID) error {
	for idx, contact := range p.Contacts {
		if contact.ID == contactID {
			p.Contacts = append(p.Contacts[:idx], p.Contacts[idx+1:]...)
			p.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.NewDomainError("CONTACT_NOT_FOUND", "Contact not found on profile")
}

// HasBillingContact reports whether at least one contact is flagged as a
// billing contact
func (p *BillingProfile) HasBillingContact() bool {
	for _, contact := range p.Contacts {
		if contact.IsBilling {
			return true
		}
	}
	return false
}

// MissingFields returns the profile fields still required before invoices
// can be issued. An empty result means the profile is complete.
func (p *BillingProfile) MissingFields() []string {
	var missing []string
	if p.LegalName == "" {
		missing = append(missing, "legal_name")
	}
	if p.TaxID == "" {
		missing = append(missing, "tax_id")
	}
	if !p.HasBillingContact() {
		missing = append(missing, "billing_contact")
	}
	return missing
}

// IsComplete reports whether every required billing field is present
func (p *BillingProfile) IsComplete() bool {
	return len(p.MissingFields()) == 0
}

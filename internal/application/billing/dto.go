package billing

import (
	"time"

	"github.com/ecobat/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContactRequest represents a contact in profile update requests
type ContactRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"omitempty,email"`
	Phone     string `json:"phone"`
	IsBilling bool   `json:"is_billing"`
}

// UpdateProfileRequest represents a request to update the billing profile
type UpdateProfileRequest struct {
	LegalName     string           `json:"legal_name"`
	TaxID         string           `json:"tax_id"`
	TradeRegistry string           `json:"trade_registry"`
	Address       string           `json:"address"`
	City          string           `json:"city"`
	County        string           `json:"county"`
	IBAN          string           `json:"iban"`
	BankName      string           `json:"bank_name"`
	Contacts      []ContactRequest `json:"contacts"`
}

// ContactResponse represents a contact in API responses
type ContactResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	IsBilling bool      `json:"is_billing"`
}

// ProfileResponse represents the billing profile in API responses
type ProfileResponse struct {
	ID            uuid.UUID         `json:"id"`
	CompanyID     uuid.UUID         `json:"company_id"`
	LegalName     string            `json:"legal_name"`
	TaxID         string            `json:"tax_id"`
	TradeRegistry string            `json:"trade_registry,omitempty"`
	Address       string            `json:"address,omitempty"`
	City          string            `json:"city,omitempty"`
	County        string            `json:"county,omitempty"`
	IBAN          string            `json:"iban,omitempty"`
	BankName      string            `json:"bank_name,omitempty"`
	Contacts      []ContactResponse `json:"contacts"`
	IsComplete    bool              `json:"is_complete"`
	MissingFields []string          `json:"missing_fields,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// UpdateSettingsRequest represents a request to change invoice settings.
// Omitted fields keep their current value.
type UpdateSettingsRequest struct {
	SeriesCode     *string          `json:"series_code"`
	NextNumber     *int64           `json:"next_number"`
	YearReset      *bool            `json:"year_reset"`
	DueDays        *int             `json:"due_days"`
	DefaultVATRate *decimal.Decimal `json:"default_vat_rate"`
}

// SettingsResponse represents invoice settings in API responses
type SettingsResponse struct {
	CompanyID      uuid.UUID       `json:"company_id"`
	SeriesCode     string          `json:"series_code"`
	NextNumber     int64           `json:"next_number"`
	YearReset      bool            `json:"year_reset"`
	DueDays        int             `json:"due_days"`
	DefaultVATRate decimal.Decimal `json:"default_vat_rate"`
	NextInvoice    string          `json:"next_invoice"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToProfileResponse converts a profile domain object to a response DTO
func ToProfileResponse(profile *billing.BillingProfile) ProfileResponse {
	contacts := make([]ContactResponse, 0, len(profile.Contacts))
	for _, contact := range profile.Contacts {
		contacts = append(contacts, ContactResponse{
			ID:        contact.ID,
			Name:      contact.Name,
			Email:     contact.Email,
			Phone:     contact.Phone,
			IsBilling: contact.IsBilling,
		})
	}

	return ProfileResponse{
		ID:            profile.ID,
		CompanyID:     profile.CompanyID,
		LegalName:     profile.LegalName,
		TaxID:         profile.TaxID,
		TradeRegistry: profile.TradeRegistry,
		Address:       profile.Address,
		City:          profile.City,
		County:        profile.County,
		IBAN:          profile.IBAN,
		BankName:      profile.BankName,
		Contacts:      contacts,
		IsComplete:    profile.IsComplete(),
		MissingFields: profile.MissingFields(),
		UpdatedAt:     profile.UpdatedAt,
	}
}

// ToSettingsResponse converts settings to a response DTO. NextInvoice
// previews the number the next validation will take.
func ToSettingsResponse(settings *billing.InvoiceSettings, year int) SettingsResponse {
	next := settings.NextNumber
	if settings.YearReset && year != settings.CounterYear {
		next = 1
	}

	return SettingsResponse{
		CompanyID:      settings.CompanyID,
		SeriesCode:     settings.SeriesCode,
		NextNumber:     settings.NextNumber,
		YearReset:      settings.YearReset,
		DueDays:        settings.DueDays,
		DefaultVATRate: settings.DefaultVATRate,
		NextInvoice:    settings.FormatNumber(next, year),
		UpdatedAt:      settings.UpdatedAt,
	}
}

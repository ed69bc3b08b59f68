package billing

import (
	"context"

	"github.com/google/uuid"
)

// BillingProfileRepository defines the interface for profile persistence
type BillingProfileRepository interface {
	// FindByID finds a profile by ID
	FindByID(ctx context.Context, id uuid.UUID) (*BillingProfile, error)

	// FindByCompany finds the profile of a company
	FindByCompany(ctx context.Context, companyID uuid.UUID) (*BillingProfile, error)

	// Save creates or updates a profile with its contacts
	Save(ctx context.Context, profile *BillingProfile) error
}

// InvoiceSettingsRepository defines the interface for settings persistence
type InvoiceSettingsRepository interface {
	// FindByCompany finds the settings of a company
	FindByCompany(ctx context.Context, companyID uuid.UUID) (*InvoiceSettings, error)

	// FindByCompanyForUpdate finds the settings holding a row lock for
	// the rest of the transaction. Number allocation serializes on this
	// lock, one validation at a time per company.
	FindByCompanyForUpdate(ctx context.Context, companyID uuid.UUID) (*InvoiceSettings, error)

	// Save creates or updates settings
	Save(ctx context.Context, settings *InvoiceSettings) error
}

package billing

import (
	"github.com/ecobat/backend/internal/domain/shared"
)

// ReadinessGate checks whether an issuing company may issue invoices. It
// is a pure domain service: the same profile and settings always produce
// the same answer, so a rejected validation can be retried after the
// profile is completed without any cleanup.
type ReadinessGate struct{}

// NewReadinessGate creates a readiness gate
func NewReadinessGate() *ReadinessGate {
	return &ReadinessGate{}
}

// Check returns nil when the company is ready to issue invoices, or a
// PreconditionError listing every missing field. The whole list is
// reported at once so the operator can fix the profile in one pass.
// A usable settings row has a series code, a positive payment term and a
// non-negative VAT rate.
func (g *ReadinessGate) Check(profile *BillingProfile, settings *InvoiceSettings) error {
	missing := issuerMissing(profile, settings)
	if len(missing) > 0 {
		return shared.NewPreconditionError(missing)
	}
	return nil
}

// CheckIssuance gates one issuance: the issuer must be fully ready and the
// counterparty must at least have a billing profile on record, so the
// issued document names a real legal entity on both sides.
func (g *ReadinessGate) CheckIssuance(issuer *BillingProfile, settings *InvoiceSettings, counterparty *BillingProfile) error {
	missing := issuerMissing(issuer, settings)
	if counterparty == nil {
		missing = append(missing, "counterparty_billing_profile")
	}
	if len(missing) > 0 {
		return shared.NewPreconditionError(missing)
	}
	return nil
}

func issuerMissing(profile *BillingProfile, settings *InvoiceSettings) []string {
	var missing []string

	if profile == nil {
		missing = append(missing, "billing_profile")
	} else {
		missing = append(missing, profile.MissingFields()...)
	}

	if settings == nil {
		missing = append(missing, "invoice_settings")
	} else {
		if settings.SeriesCode == "" {
			missing = append(missing, "series_code")
		}
		if settings.DueDays <= 0 {
			missing = append(missing, "due_days")
		}
		if settings.DefaultVATRate.IsNegative() {
			missing = append(missing, "default_vat_rate")
		}
	}

	return missing
}

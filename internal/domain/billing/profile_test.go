package billing

import (
	"testing"

	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompleteProfile(t *testing.T) *BillingProfile {
	t.Helper()

	profile, err := NewBillingProfile(uuid.New())
	require.NoError(t, err)

	profile.UpdateLegalInfo("SC Acumulatorul SRL", "RO1234567", "J40/123/2020", "Str. Uzinei 1", "Bucuresti", "Bucuresti")
	profile.UpdateBankInfo("RO49AAAA1B31007593840000", "Banca Transilvania")
	_, err = profile.AddContact("Maria Pop", "facturi@acumulatorul.ro", "0722000000", true)
	require.NoError(t, err)

	return profile
}

func TestBillingProfile_Completeness(t *testing.T) {
	t.Run("complete profile", func(t *testing.T) {
		profile := newCompleteProfile(t)
		assert.True(t, profile.IsComplete())
		assert.Empty(t, profile.MissingFields())
	})

	t.Run("fresh profile reports every missing field", func(t *testing.T) {
		profile, err := NewBillingProfile(uuid.New())
		require.NoError(t, err)

		assert.False(t, profile.IsComplete())
		assert.ElementsMatch(t, []string{"legal_name", "tax_id", "billing_contact"}, profile.MissingFields())
	})

	t.Run("non-billing contact does not satisfy the gate", func(t *testing.T) {
		profile, err := NewBillingProfile(uuid.New())
		require.NoError(t, err)
		profile.UpdateLegalInfo("SC Test SRL", "RO99", "", "", "", "")

		_, err = profile.AddContact("Ion", "", "0733", false)
		require.NoError(t, err)

		assert.False(t, profile.HasBillingContact())
		assert.Equal(t, []string{"billing_contact"}, profile.MissingFields())
	})
}

func TestBillingProfile_Contacts(t *testing.T) {
	profile := newCompleteProfile(t)

	t.Run("billing contact requires an email", func(t *testing.T) {
		_, err := profile.AddContact("Vasile", "", "0744", true)
		assert.Error(t, err)
	})

	t.Run("empty name rejected", func(t *testing.T) {
		_, err := profile.AddContact("", "a@b.ro", "", false)
		assert.Error(t, err)
	})

	t.Run("remove contact", func(t *testing.T) {
		contact, err := profile.AddContact("Temporar", "t@t.ro", "", false)
		require.NoError(t, err)

		require.NoError(t, profile.RemoveContact(contact.ID))
		assert.Error(t, profile.RemoveContact(contact.ID))
	})
}

func TestReadinessGate_Check(t *testing.T) {
	gate := NewReadinessGate()

	t.Run("ready", func(t *testing.T) {
		profile := newCompleteProfile(t)
		settings, err := NewInvoiceSettings(profile.CompanyID)
		require.NoError(t, err)

		assert.NoError(t, gate.Check(profile, settings))
	})

	t.Run("incomplete profile lists every missing field at once", func(t *testing.T) {
		profile, err := NewBillingProfile(uuid.New())
		require.NoError(t, err)
		settings, err := NewInvoiceSettings(profile.CompanyID)
		require.NoError(t, err)

		err = gate.Check(profile, settings)
		require.Error(t, err)

		var precondition *shared.PreconditionError
		require.ErrorAs(t, err, &precondition)
		assert.Equal(t, "PRECONDITION_INCOMPLETE", precondition.Code)
		assert.ElementsMatch(t, []string{"legal_name", "tax_id", "billing_contact"}, precondition.Missing)
	})

	t.Run("missing rows", func(t *testing.T) {
		err := gate.Check(nil, nil)
		require.Error(t, err)

		var precondition *shared.PreconditionError
		require.ErrorAs(t, err, &precondition)
		assert.ElementsMatch(t, []string{"billing_profile", "invoice_settings"}, precondition.Missing)
	})

	t.Run("zero due days block issuance", func(t *testing.T) {
		profile := newCompleteProfile(t)
		settings, err := NewInvoiceSettings(profile.CompanyID)
		require.NoError(t, err)
		settings.DueDays = 0

		err = gate.Check(profile, settings)
		require.Error(t, err)

		var precondition *shared.PreconditionError
		require.ErrorAs(t, err, &precondition)
		assert.Equal(t, []string{"due_days"}, precondition.Missing)
	})

	t.Run("negative VAT rate blocks issuance", func(t *testing.T) {
		profile := newCompleteProfile(t)
		settings, err := NewInvoiceSettings(profile.CompanyID)
		require.NoError(t, err)
		settings.DefaultVATRate = decimal.NewFromInt(-1)

		err = gate.Check(profile, settings)
		require.Error(t, err)

		var precondition *shared.PreconditionError
		require.ErrorAs(t, err, &precondition)
		assert.Equal(t, []string{"default_vat_rate"}, precondition.Missing)
	})
}

func TestReadinessGate_CheckIssuance(t *testing.T) {
	gate := NewReadinessGate()

	issuer := newCompleteProfile(t)
	settings, err := NewInvoiceSettings(issuer.CompanyID)
	require.NoError(t, err)

	t.Run("counterparty profile required", func(t *testing.T) {
		err := gate.CheckIssuance(issuer, settings, nil)
		require.Error(t, err)

		var precondition *shared.PreconditionError
		require.ErrorAs(t, err, &precondition)
		assert.Equal(t, []string{"counterparty_billing_profile"}, precondition.Missing)
	})

	t.Run("counterparty profile need not be complete", func(t *testing.T) {
		counterparty, err := NewBillingProfile(uuid.New())
		require.NoError(t, err)

		assert.NoError(t, gate.CheckIssuance(issuer, settings, counterparty))
	})

	t.Run("issuer gaps and missing counterparty reported together", func(t *testing.T) {
		err := gate.CheckIssuance(nil, nil, nil)
		require.Error(t, err)

		var precondition *shared.PreconditionError
		require.ErrorAs(t, err, &precondition)
		assert.ElementsMatch(t,
			[]string{"billing_profile", "invoice_settings", "counterparty_billing_profile"},
			precondition.Missing)
	})
}

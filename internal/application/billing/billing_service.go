package billing

import (
	"context"
	"errors"
	"time"

	appinvoicing "github.com/ecobat/backend/internal/application/invoicing"
	"github.com/ecobat/backend/internal/domain/audit"
	"github.com/ecobat/backend/internal/domain/billing"
	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BillingService manages company billing profiles and invoice settings.
// Settings writes go through the same transaction scope the validation
// flow uses, so they contend on the row lock with number allocation.
type BillingService struct {
	profileRepo  billing.BillingProfileRepository
	settingsRepo billing.InvoiceSettingsRepository
	auditRepo    audit.Repository
	scope        appinvoicing.TransactionScope
	now          func() time.Time
}

// NewBillingService creates a new BillingService
func NewBillingService(profileRepo billing.BillingProfileRepository, settingsRepo billing.InvoiceSettingsRepository, auditRepo audit.Repository, scope appinvoicing.TransactionScope) *BillingService {
	return &BillingService{
		profileRepo:  profileRepo,
		settingsRepo: settingsRepo,
		auditRepo:    auditRepo,
		scope:        scope,
		now:          time.Now,
	}
}

// GetProfile returns the billing profile of a company, creating an empty
// one on first access so the client always has something to edit.
func (s *BillingService) GetProfile(ctx context.Context, companyID uuid.UUID) (*ProfileResponse, error) {
	profile, err := s.getOrCreateProfile(ctx, companyID)
	if err != nil {
		return nil, err
	}
	response := ToProfileResponse(profile)
	return &response, nil
}

// UpdateProfile replaces the billing profile of a company. The contact
// list is replaced wholesale: the submitted contacts are the new truth.
func (s *BillingService) UpdateProfile(ctx context.Context, companyID uuid.UUID, req UpdateProfileRequest, actorID *uuid.UUID) (*ProfileResponse, error) {
	profile, err := s.getOrCreateProfile(ctx, companyID)
	if err != nil {
		return nil, err
	}

	profile.UpdateLegalInfo(req.LegalName, req.TaxID, req.TradeRegistry, req.Address, req.City, req.County)
	profile.UpdateBankInfo(req.IBAN, req.BankName)

	profile.Contacts = profile.Contacts[:0]
	for _, contact := range req.Contacts {
		if _, err := profile.AddContact(contact.Name, contact.Email, contact.Phone, contact.IsBilling); err != nil {
			return nil, err
		}
	}

	if err := s.profileRepo.Save(ctx, profile); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, audit.ActionProfileUpdated, profile.ID, actorID)

	response := ToProfileResponse(profile)
	return &response, nil
}

// GetSettings returns the invoice settings of a company, creating defaults
// on first access.
func (s *BillingService) GetSettings(ctx context.Context, companyID uuid.UUID) (*SettingsResponse, error) {
	settings, err := s.getOrCreateSettings(ctx, companyID)
	if err != nil {
		return nil, err
	}
	response := ToSettingsResponse(settings, s.now().Year())
	return &response, nil
}

// UpdateSettings applies a partial settings update. Lowering the number
// counter is rejected by the domain rule. The read-modify-write runs under
// the settings row lock so a validation allocating the next number in
// parallel can never be overwritten by a stale copy of the row.
func (s *BillingService) UpdateSettings(ctx context.Context, companyID uuid.UUID, req UpdateSettingsRequest, actorID *uuid.UUID) (*SettingsResponse, error) {
	var settings *billing.InvoiceSettings

	err := s.scope.Execute(ctx, func(repos appinvoicing.TransactionalRepositories) error {
		var err error
		settings, err = repos.SettingsRepo().FindByCompanyForUpdate(ctx, companyID)
		if err != nil {
			if !isNotFound(err) {
				return err
			}
			settings, err = billing.NewInvoiceSettings(companyID)
			if err != nil {
				return err
			}
		}

		err = settings.ApplyUpdate(billing.SettingsUpdate{
			SeriesCode:     req.SeriesCode,
			NextNumber:     req.NextNumber,
			YearReset:      req.YearReset,
			DueDays:        req.DueDays,
			DefaultVATRate: req.DefaultVATRate,
		})
		if err != nil {
			return err
		}

		return repos.SettingsRepo().Save(ctx, settings)
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, audit.ActionSettingsUpdated, settings.ID, actorID)

	response := ToSettingsResponse(settings, s.now().Year())
	return &response, nil
}

// CheckReadiness reports whether the company may issue invoices
func (s *BillingService) CheckReadiness(ctx context.Context, companyID uuid.UUID) []string {
	profile, err := s.profileRepo.FindByCompany(ctx, companyID)
	if err != nil {
		profile = nil
	}
	settings, err := s.settingsRepo.FindByCompany(ctx, companyID)
	if err != nil {
		settings = nil
	}

	gateErr := billing.NewReadinessGate().Check(profile, settings)
	if gateErr == nil {
		return nil
	}

	var precondition *shared.PreconditionError
	if errors.As(gateErr, &precondition) {
		return precondition.Missing
	}
	return []string{"billing_profile"}
}

func (s *BillingService) getOrCreateProfile(ctx context.Context, companyID uuid.UUID) (*billing.BillingProfile, error) {
	profile, err := s.profileRepo.FindByCompany(ctx, companyID)
	if err == nil {
		return profile, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	profile, err = billing.NewBillingProfile(companyID)
	if err != nil {
		return nil, err
	}
	if err := s.profileRepo.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *BillingService) getOrCreateSettings(ctx context.Context, companyID uuid.UUID) (*billing.InvoiceSettings, error) {
	settings, err := s.settingsRepo.FindByCompany(ctx, companyID)
	if err == nil {
		return settings, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	settings, err = billing.NewInvoiceSettings(companyID)
	if err != nil {
		return nil, err
	}
	if err := s.settingsRepo.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *BillingService) recordAudit(ctx context.Context, action audit.Action, entityID uuid.UUID, actorID *uuid.UUID) {
	if s.auditRepo == nil {
		return
	}
	entityType := "BillingProfile"
	if action == audit.ActionSettingsUpdated {
		entityType = "InvoiceSettings"
	}
	entry, err := audit.NewEntry(action, entityType, entityID, actorID, nil)
	if err != nil {
		return
	}
	_ = s.auditRepo.Record(ctx, entry)
}

func isNotFound(err error) bool {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == shared.ErrNotFound.Code
	}
	return false
}

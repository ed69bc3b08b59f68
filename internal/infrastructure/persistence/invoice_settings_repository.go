package persistence

import (
	"context"
	"errors"

	"github.com/ecobat/backend/internal/domain/billing"
	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/ecobat/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceSettingsRepository implements InvoiceSettingsRepository using GORM
type GormInvoiceSettingsRepository struct {
	db *gorm.DB
}

// NewGormInvoiceSettingsRepository creates a new GormInvoiceSettingsRepository
func NewGormInvoiceSettingsRepository(db *gorm.DB) *GormInvoiceSettingsRepository {
	return &GormInvoiceSettingsRepository{db: db}
}

// FindByCompany finds the settings of a company
func (r *GormInvoiceSettingsRepository) FindByCompany(ctx context.Context, companyID uuid.UUID) (*billing.InvoiceSettings, error) {
	var model models.InvoiceSettingsModel
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCompanyForUpdate finds the settings and takes a row lock on them.
// Invoice number allocation serializes on this lock: while one validation
// holds it, every other validation for the same company waits, so each
// allocated number is handed out exactly once.
func (r *GormInvoiceSettingsRepository) FindByCompanyForUpdate(ctx context.Context, companyID uuid.UUID) (*billing.InvoiceSettings, error) {
	var model models.InvoiceSettingsModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("company_id = ?", companyID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, mapLockError(err)
	}
	return model.ToDomain(), nil
}

// Save creates or updates settings
func (r *GormInvoiceSettingsRepository) Save(ctx context.Context, settings *billing.InvoiceSettings) error {
	model := models.InvoiceSettingsModelFromDomain(settings)
	return r.db.WithContext(ctx).Save(model).Error
}

// Ensure GormInvoiceSettingsRepository implements InvoiceSettingsRepository
var _ billing.InvoiceSettingsRepository = (*GormInvoiceSettingsRepository)(nil)

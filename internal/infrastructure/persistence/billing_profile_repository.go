package persistence

import (
	"context"
	"errors"

	"github.com/ecobat/backend/internal/domain/billing"
	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/ecobat/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBillingProfileRepository implements BillingProfileRepository using GORM
type GormBillingProfileRepository struct {
	db *gorm.DB
}

// NewGormBillingProfileRepository creates a new GormBillingProfileRepository
func NewGormBillingProfileRepository(db *gorm.DB) *GormBillingProfileRepository {
	return &GormBillingProfileRepository{db: db}
}

// FindByID finds a profile with its contacts by ID
func (r *GormBillingProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.BillingProfile, error) {
	var model models.BillingProfileModel
	if err := r.db.WithContext(ctx).
		Preload("Contacts").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCompany finds the profile of a company
func (r *GormBillingProfileRepository) FindByCompany(ctx context.Context, companyID uuid.UUID) (*billing.BillingProfile, error) {
	var model models.BillingProfileModel
	if err := r.db.WithContext(ctx).
		Preload("Contacts").
		Where("company_id = ?", companyID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a profile with its contacts. Contacts removed
// from the profile are deleted.
func (r *GormBillingProfileRepository) Save(ctx context.Context, profile *billing.BillingProfile) error {
	model := models.BillingProfileModelFromDomain(profile)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Contacts").Save(&model).Error; err != nil {
			return err
		}

		currentIDs := make([]uuid.UUID, len(model.Contacts))
		for i, contact := range model.Contacts {
			currentIDs[i] = contact.ID
		}

		if len(currentIDs) > 0 {
			if err := tx.Where("profile_id = ? AND id NOT IN ?", model.ID, currentIDs).
				Delete(&models.BillingContactModel{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("profile_id = ?", model.ID).
				Delete(&models.BillingContactModel{}).Error; err != nil {
				return err
			}
		}

		for i := range model.Contacts {
			model.Contacts[i].ProfileID = model.ID
			if err := tx.Save(&model.Contacts[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Ensure GormBillingProfileRepository implements BillingProfileRepository
var _ billing.BillingProfileRepository = (*GormBillingProfileRepository)(nil)

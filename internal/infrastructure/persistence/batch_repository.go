package persistence

import (
	"context"
	"errors"

	"github.com/ecobat/backend/internal/domain/intake"
	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/ecobat/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBatchRepository implements BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID finds a batch by its ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*intake.Batch, error) {
	var model models.BatchModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a batch by ID and takes a row lock on it.
// The lock is held until the surrounding transaction ends, so concurrent
// validations of the same batch queue up here.
func (r *GormBatchRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*intake.Batch, error) {
	var model models.BatchModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, mapLockError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds batches with filtering
func (r *GormBatchRepository) FindAll(ctx context.Context, filter shared.Filter) ([]intake.Batch, error) {
	var batchModels []models.BatchModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.BatchModel{}), filter)

	if err := query.Find(&batchModels).Error; err != nil {
		return nil, err
	}
	return toDomainBatches(batchModels), nil
}

// FindByStatus finds batches by billing status
func (r *GormBatchRepository) FindByStatus(ctx context.Context, status intake.BatchStatus, filter shared.Filter) ([]intake.Batch, error) {
	var batchModels []models.BatchModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.BatchModel{}).Where("status = ?", status),
		filter,
	)

	if err := query.Find(&batchModels).Error; err != nil {
		return nil, err
	}
	return toDomainBatches(batchModels), nil
}

// FindByCompany finds batches for a counterparty company
func (r *GormBatchRepository) FindByCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]intake.Batch, error) {
	var batchModels []models.BatchModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.BatchModel{}).Where("company_id = ?", companyID),
		filter,
	)

	if err := query.Find(&batchModels).Error; err != nil {
		return nil, err
	}
	return toDomainBatches(batchModels), nil
}

// Save creates or updates a batch
func (r *GormBatchRepository) Save(ctx context.Context, batch *intake.Batch) error {
	model := models.BatchModelFromDomain(batch)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete deletes a batch. Validated batches are refused: an invoiced
// batch is part of the billing record.
func (r *GormBatchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("status = ?", intake.BatchStatusPending).
		Delete(&models.BatchModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts batches matching the filter
func (r *GormBatchRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySearch(r.db.WithContext(ctx).Model(&models.BatchModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts batches by billing status
func (r *GormBatchRepository) CountByStatus(ctx context.Context, status intake.BatchStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BatchModel{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies search, pagination and ordering to the query
func (r *GormBatchRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applySearch(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		field := ValidateSortField(filter.OrderBy, BatchSortFields, "created_at")
		query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applySearch applies the search term to the query
func (r *GormBatchRepository) applySearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("company_name ILIKE ?", pattern)
	}
	return query
}

func toDomainBatches(batchModels []models.BatchModel) []intake.Batch {
	batches := make([]intake.Batch, len(batchModels))
	for i := range batchModels {
		batches[i] = *batchModels[i].ToDomain()
	}
	return batches
}

// Ensure GormBatchRepository implements BatchRepository
var _ intake.BatchRepository = (*GormBatchRepository)(nil)

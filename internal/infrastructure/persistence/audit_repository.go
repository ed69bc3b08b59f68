package persistence

import (
	"context"

	"github.com/ecobat/backend/internal/domain/audit"
	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/ecobat/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAuditRepository implements the audit Repository using GORM
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Record appends an entry to the log
func (r *GormAuditRepository) Record(ctx context.Context, entry *audit.Entry) error {
	model := models.AuditEntryModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByEntity lists entries for one entity, newest first
func (r *GormAuditRepository) FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID, filter shared.Filter) ([]audit.Entry, error) {
	var entryModels []models.AuditEntryModel
	query := r.db.WithContext(ctx).
		Model(&models.AuditEntryModel{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]audit.Entry, len(entryModels))
	for i := range entryModels {
		entries[i] = *entryModels[i].ToDomain()
	}
	return entries, nil
}

// Ensure GormAuditRepository implements audit.Repository
var _ audit.Repository = (*GormAuditRepository)(nil)

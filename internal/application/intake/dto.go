package intake

import (
	"time"

	"github.com/ecobat/backend/internal/domain/intake"
	"github.com/ecobat/backend/internal/domain/valuation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ManifestLineRequest is one manifest line as submitted by a client
type ManifestLineRequest struct {
	Pieces   int64           `json:"pieces"`
	WeightKg decimal.Decimal `json:"weight_kg"`
	ValueRON decimal.Decimal `json:"value_ron"`
}

// CreateBatchRequest represents a request to register a batch
type CreateBatchRequest struct {
	Kind        intake.BatchKind                              `json:"kind" binding:"required,batchkind"`
	CompanyID   uuid.UUID                                     `json:"company_id" binding:"required"`
	CompanyName string                                        `json:"company_name" binding:"required"`
	PickupDate  time.Time                                     `json:"pickup_date"`
	Manifest    map[valuation.CategoryKey]ManifestLineRequest `json:"manifest" binding:"required"`
	Notes       string                                        `json:"notes"`
}

// UpdateBatchRequest represents a request to change a pending batch
type UpdateBatchRequest struct {
	Manifest map[valuation.CategoryKey]ManifestLineRequest `json:"manifest"`
	Notes    *string                                       `json:"notes"`
}

// BatchListFilter represents filter options for batch lists
type BatchListFilter struct {
	Status    *intake.BatchStatus `form:"status"`
	CompanyID *uuid.UUID          `form:"company_id"`
	Page      int                 `form:"page" binding:"min=1"`
	PageSize  int                 `form:"page_size" binding:"min=1,max=100"`
	OrderBy   string              `form:"order_by"`
	OrderDir  string              `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// BatchResponse represents a batch in API responses
type BatchResponse struct {
	ID            uuid.UUID          `json:"id"`
	Kind          intake.BatchKind   `json:"kind"`
	Status        intake.BatchStatus `json:"status"`
	CompanyID     uuid.UUID          `json:"company_id"`
	CompanyName   string             `json:"company_name"`
	Manifest      valuation.Manifest `json:"manifest"`
	TotalWeightKg decimal.Decimal    `json:"total_weight_kg"`
	TotalValueRON decimal.Decimal    `json:"total_value_ron"`
	TableVersion  string             `json:"table_version"`
	PickupDate    time.Time          `json:"pickup_date"`
	Notes         string             `json:"notes,omitempty"`
	InvoiceID     *uuid.UUID         `json:"invoice_id,omitempty"`
	ValidatedAt   *time.Time         `json:"validated_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// ToManifest converts submitted manifest lines to the domain manifest
func ToManifest(lines map[valuation.CategoryKey]ManifestLineRequest) valuation.Manifest {
	manifest := make(valuation.Manifest, len(lines))
	for key, line := range lines {
		manifest[key] = valuation.BatteryLine{
			Pieces:   line.Pieces,
			WeightKg: line.WeightKg,
			ValueRON: line.ValueRON,
		}
	}
	return manifest
}

// ToBatchResponse converts a batch domain object to a response DTO
func ToBatchResponse(batch *intake.Batch) BatchResponse {
	return BatchResponse{
		ID:            batch.ID,
		Kind:          batch.Kind,
		Status:        batch.Status,
		CompanyID:     batch.CompanyID,
		CompanyName:   batch.CompanyName,
		Manifest:      batch.Manifest,
		TotalWeightKg: batch.TotalWeightKg,
		TotalValueRON: batch.TotalValueRON,
		TableVersion:  batch.TableVersion,
		PickupDate:    batch.PickupDate,
		Notes:         batch.Notes,
		InvoiceID:     batch.InvoiceID,
		ValidatedAt:   batch.ValidatedAt,
		CreatedAt:     batch.CreatedAt,
		UpdatedAt:     batch.UpdatedAt,
	}
}

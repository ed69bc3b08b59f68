package intake

import (
	"context"
	"time"

	"github.com/ecobat/backend/internal/domain/audit"
	"github.com/ecobat/backend/internal/domain/intake"
	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/ecobat/backend/internal/domain/valuation"
	"github.com/google/uuid"
)

// BatchService handles batch registration and maintenance. Validation into
// an invoice is a separate flow owned by the invoicing service.
type BatchService struct {
	batchRepo intake.BatchRepository
	auditRepo audit.Repository
	engine    *valuation.Engine
}

// NewBatchService creates a new BatchService
func NewBatchService(batchRepo intake.BatchRepository, auditRepo audit.Repository, engine *valuation.Engine) *BatchService {
	return &BatchService{
		batchRepo: batchRepo,
		auditRepo: auditRepo,
		engine:    engine,
	}
}

// CreateBatch registers a new pending batch
func (s *BatchService) CreateBatch(ctx context.Context, req CreateBatchRequest, actorID *uuid.UUID) (*BatchResponse, error) {
	pickupDate := req.PickupDate
	if pickupDate.IsZero() {
		pickupDate = time.Now()
	}

	batch, err := intake.NewBatch(req.Kind, req.CompanyID, req.CompanyName, pickupDate, ToManifest(req.Manifest), s.engine)
	if err != nil {
		return nil, err
	}
	if req.Notes != "" {
		if err := batch.SetNotes(req.Notes); err != nil {
			return nil, err
		}
	}

	if err := s.batchRepo.Save(ctx, batch); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, audit.ActionBatchCreated, batch.ID, actorID, map[string]any{
		"kind":  batch.Kind.String(),
		"total": batch.TotalValueRON.String(),
	})

	response := ToBatchResponse(batch)
	return &response, nil
}

// GetBatch returns a batch by ID
func (s *BatchService) GetBatch(ctx context.Context, id uuid.UUID) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToBatchResponse(batch)
	return &response, nil
}

// UpdateBatch changes the manifest or notes of a pending batch
func (s *BatchService) UpdateBatch(ctx context.Context, id uuid.UUID, req UpdateBatchRequest, actorID *uuid.UUID) (*BatchResponse, error) {
	batch, err := s.batchRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Manifest != nil {
		if err := batch.UpdateManifest(ToManifest(req.Manifest), s.engine); err != nil {
			return nil, err
		}
	}
	if req.Notes != nil {
		if err := batch.SetNotes(*req.Notes); err != nil {
			return nil, err
		}
	}

	if err := s.batchRepo.Save(ctx, batch); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, audit.ActionBatchUpdated, batch.ID, actorID, nil)

	response := ToBatchResponse(batch)
	return &response, nil
}

// DeleteBatch removes a pending batch. Validated batches are kept forever,
// their invoice refers to them.
func (s *BatchService) DeleteBatch(ctx context.Context, id uuid.UUID, actorID *uuid.UUID) error {
	batch, err := s.batchRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if batch.IsValidated() {
		return shared.NewDomainError("INVALID_STATE", "Cannot delete a validated batch")
	}

	if err := s.batchRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, audit.ActionBatchDeleted, id, actorID, nil)
	return nil
}

// ListBatches returns a page of batches
func (s *BatchService) ListBatches(ctx context.Context, filter BatchListFilter) (*shared.Paginated[BatchResponse], error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	}

	var (
		batches []intake.Batch
		err     error
	)
	switch {
	case filter.Status != nil:
		batches, err = s.batchRepo.FindByStatus(ctx, *filter.Status, domainFilter)
	case filter.CompanyID != nil:
		batches, err = s.batchRepo.FindByCompany(ctx, *filter.CompanyID, domainFilter)
	default:
		batches, err = s.batchRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return nil, err
	}

	total, err := s.batchRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]BatchResponse, 0, len(batches))
	for idx := range batches {
		items = append(items, ToBatchResponse(&batches[idx]))
	}

	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// recordAudit writes a best-effort audit entry. Batch maintenance is not
// transactional with the audit log the way validation is.
func (s *BatchService) recordAudit(ctx context.Context, action audit.Action, batchID uuid.UUID, actorID *uuid.UUID, detail map[string]any) {
	if s.auditRepo == nil {
		return
	}
	entry, err := audit.NewEntry(action, intake.AggregateTypeBatch, batchID, actorID, detail)
	if err != nil {
		return
	}
	_ = s.auditRepo.Record(ctx, entry)
}

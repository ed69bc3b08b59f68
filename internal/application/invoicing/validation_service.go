package invoicing

import (
	"context"
	"errors"
	"time"

	"github.com/ecobat/backend/internal/domain/audit"
	"github.com/ecobat/backend/internal/domain/billing"
	"github.com/ecobat/backend/internal/domain/intake"
	"github.com/ecobat/backend/internal/domain/invoicing"
	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/ecobat/backend/internal/domain/valuation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceRenderer renders an invoice to a stored PDF document and returns
// the storage path.
type InvoiceRenderer interface {
	Render(ctx context.Context, invoice *invoicing.Invoice) (string, error)
}

// ValidationService converts pending batches into issued invoices. The
// conversion is the one write path that touches the number counter, so
// everything it does happens inside a single transaction scope.
type ValidationService struct {
	scope     TransactionScope
	engine    *valuation.Engine
	assembler *invoicing.Assembler
	gate      *billing.ReadinessGate
	renderer  InvoiceRenderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewValidationService creates a new ValidationService
func NewValidationService(scope TransactionScope, engine *valuation.Engine, assembler *invoicing.Assembler, gate *billing.ReadinessGate, logger *zap.Logger) *ValidationService {
	return &ValidationService{
		scope:     scope,
		engine:    engine,
		assembler: assembler,
		gate:      gate,
		logger:    logger,
		now:       time.Now,
	}
}

// SetRenderer sets the PDF renderer. Rendering is optional: validation
// succeeds without one, the document can be produced later.
func (s *ValidationService) SetRenderer(renderer InvoiceRenderer) {
	s.renderer = renderer
}

// SetClock overrides the time source, used by tests
func (s *ValidationService) SetClock(now func() time.Time) {
	s.now = now
}

// Validate converts a pending batch into an invoice issued by the given
// operator company. The issuer's billing profile and number sequence back
// the document; the batch's company is the counterparty on it.
//
// The flow inside one transaction: lock the batch row, return the existing
// invoice if the batch was already validated, check billing readiness of
// both parties, re-run the valuation on the stored manifest, allocate the
// next invoice number under the issuer's settings row lock, persist the
// invoice, flip the batch to VALIDATED and write the audit entry. Any
// failure rolls everything back, including the allocated number, so the
// sequence stays gap-free.
//
// The PDF is rendered after the transaction commits. A rendering failure
// is logged and the invoice stays issued without a document.
func (s *ValidationService) Validate(ctx context.Context, batchID, issuerCompanyID uuid.UUID, actorID *uuid.UUID) (*ValidationResponse, error) {
	if batchID == uuid.Nil || issuerCompanyID == uuid.Nil {
		return nil, shared.ErrInvalidInput
	}

	var (
		issued           *invoicing.Invoice
		alreadyValidated bool
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		batch, err := repos.BatchRepo().FindByIDForUpdate(ctx, batchID)
		if err != nil {
			return err
		}

		// Idempotent revalidation: the batch already carries its invoice.
		if batch.IsValidated() {
			if batch.InvoiceID == nil {
				return shared.NewDomainError("INVALID_STATE", "Validated batch has no invoice attached")
			}
			existing, err := repos.InvoiceRepo().FindByID(ctx, *batch.InvoiceID)
			if err != nil {
				return err
			}
			issued = existing
			alreadyValidated = true
			return nil
		}

		profile, err := repos.ProfileRepo().FindByCompany(ctx, issuerCompanyID)
		if err != nil && !isNotFound(err) {
			return err
		}
		settings, err := repos.SettingsRepo().FindByCompanyForUpdate(ctx, issuerCompanyID)
		if err != nil && !isNotFound(err) {
			return err
		}
		counterparty, err := repos.ProfileRepo().FindByCompany(ctx, batch.CompanyID)
		if err != nil && !isNotFound(err) {
			return err
		}

		if err := s.gate.CheckIssuance(profile, settings, counterparty); err != nil {
			return err
		}

		// The stored manifest is the authority: totals cached on the
		// batch are display values, the invoice is built from a fresh
		// valuation run.
		result, err := s.engine.Valuate(batch.Manifest, batch.Kind.ValuationMode())
		if err != nil {
			return err
		}

		issueDate := s.now()
		number, formatted := settings.AllocateNext(issueDate.Year())
		if err := repos.SettingsRepo().Save(ctx, settings); err != nil {
			return err
		}

		invoice, err := s.assembler.Assemble(batch, result, profile, settings, invoicing.NumberedSequence{
			Number:         formatted,
			SequenceNumber: number,
			SeriesCode:     settings.SeriesCode,
			Year:           issueDate.Year(),
		}, issueDate)
		if err != nil {
			return err
		}
		if err := repos.InvoiceRepo().Save(ctx, invoice); err != nil {
			return err
		}

		if err := batch.MarkValidated(invoice.ID); err != nil {
			return err
		}
		if err := repos.BatchRepo().Save(ctx, batch); err != nil {
			return err
		}

		entry, err := audit.NewEntry(audit.ActionBatchValidated, intake.AggregateTypeBatch, batch.ID, actorID, map[string]any{
			"invoice_id":        invoice.ID.String(),
			"invoice_number":    invoice.Number,
			"issuer_company_id": invoice.IssuerCompanyID.String(),
			"total":             invoice.Total.String(),
		})
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Record(ctx, entry); err != nil {
			return err
		}

		issued = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !alreadyValidated {
		s.renderPDF(ctx, issued)
	}

	return &ValidationResponse{
		Invoice:          ToInvoiceResponse(issued),
		AlreadyValidated: alreadyValidated,
	}, nil
}

// renderPDF renders and attaches the invoice document after the issuing
// transaction has committed. Failures never undo the validation.
func (s *ValidationService) renderPDF(ctx context.Context, invoice *invoicing.Invoice) {
	if s.renderer == nil {
		return
	}

	path, err := s.renderer.Render(ctx, invoice)
	if err != nil {
		s.logger.Error("invoice PDF rendering failed",
			zap.String("invoice_id", invoice.ID.String()),
			zap.String("number", invoice.Number),
			zap.Error(err))
		return
	}
	if err := invoice.AttachPDF(path); err != nil {
		s.logger.Error("invoice PDF attach failed",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err))
		return
	}

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.InvoiceRepo().Save(ctx, invoice)
	})
	if err != nil {
		s.logger.Error("invoice PDF path persist failed",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err))
	}
}

func isNotFound(err error) bool {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == shared.ErrNotFound.Code
	}
	return false
}

package invoicing

import (
	"context"

	"github.com/ecobat/backend/internal/domain/audit"
	"github.com/ecobat/backend/internal/domain/billing"
	"github.com/ecobat/backend/internal/domain/intake"
	"github.com/ecobat/backend/internal/domain/invoicing"
)

// TransactionScope provides transactional access to the repositories the
// validation flow touches. Everything executed inside one scope commits or
// rolls back atomically: the locked batch, the advanced number counter,
// the invoice with its items and the audit entry are one unit of work.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories within a
// transaction. All repositories returned share the same underlying
// database transaction.
type TransactionalRepositories interface {
	// BatchRepo returns the batch repository scoped to the current transaction
	BatchRepo() intake.BatchRepository
	// ProfileRepo returns the billing profile repository scoped to the current transaction
	ProfileRepo() billing.BillingProfileRepository
	// SettingsRepo returns the invoice settings repository scoped to the current transaction
	SettingsRepo() billing.InvoiceSettingsRepository
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() invoicing.InvoiceRepository
	// AuditRepo returns the audit log repository scoped to the current transaction
	AuditRepo() audit.Repository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. This is useful for testing or when transaction support is
// not required.
type NoOpTransactionScope struct {
	batchRepo    intake.BatchRepository
	profileRepo  billing.BillingProfileRepository
	settingsRepo billing.InvoiceSettingsRepository
	invoiceRepo  invoicing.InvoiceRepository
	auditRepo    audit.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	batchRepo intake.BatchRepository,
	profileRepo billing.BillingProfileRepository,
	settingsRepo billing.InvoiceSettingsRepository,
	invoiceRepo invoicing.InvoiceRepository,
	auditRepo audit.Repository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		batchRepo:    batchRepo,
		profileRepo:  profileRepo,
		settingsRepo: settingsRepo,
		invoiceRepo:  invoiceRepo,
		auditRepo:    auditRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// BatchRepo returns the batch repository.
func (s *NoOpTransactionScope) BatchRepo() intake.BatchRepository {
	return s.batchRepo
}

// ProfileRepo returns the billing profile repository.
func (s *NoOpTransactionScope) ProfileRepo() billing.BillingProfileRepository {
	return s.profileRepo
}

// SettingsRepo returns the invoice settings repository.
func (s *NoOpTransactionScope) SettingsRepo() billing.InvoiceSettingsRepository {
	return s.settingsRepo
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() invoicing.InvoiceRepository {
	return s.invoiceRepo
}

// AuditRepo returns the audit log repository.
func (s *NoOpTransactionScope) AuditRepo() audit.Repository {
	return s.auditRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)

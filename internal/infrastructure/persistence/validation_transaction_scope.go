package persistence

import (
	"context"
	"fmt"
	"time"

	appinvoicing "github.com/ecobat/backend/internal/application/invoicing"
	"github.com/ecobat/backend/internal/domain/audit"
	"github.com/ecobat/backend/internal/domain/billing"
	"github.com/ecobat/backend/internal/domain/intake"
	"github.com/ecobat/backend/internal/domain/invoicing"
	"gorm.io/gorm"
)

// GormValidationScope implements TransactionScope using GORM transactions.
// One Execute call is one batch validation: the batch row lock, the
// settings row lock, the invoice insert and the audit entry all commit
// or roll back together.
type GormValidationScope struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormValidationScope creates a new GormValidationScope. lockTimeout
// bounds how long a validation waits on another validation's row locks
// before giving up with a retryable concurrency error.
func NewGormValidationScope(db *gorm.DB, lockTimeout time.Duration) *GormValidationScope {
	return &GormValidationScope{db: db, lockTimeout: lockTimeout}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormValidationScope) Execute(ctx context.Context, fn func(repos appinvoicing.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if s.lockTimeout > 0 && tx.Dialector.Name() == "postgres" {
			// SET LOCAL scopes the timeout to this transaction. The value
			// cannot be bound as a parameter.
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}
		repos := &gormValidationRepositories{tx: tx}
		return fn(repos)
	})
	return mapLockError(err)
}

// gormValidationRepositories provides access to all repositories within a transaction.
type gormValidationRepositories struct {
	tx *gorm.DB
}

// BatchRepo returns the batch repository scoped to the current transaction.
func (r *gormValidationRepositories) BatchRepo() intake.BatchRepository {
	return NewGormBatchRepository(r.tx)
}

// ProfileRepo returns the billing profile repository scoped to the current transaction.
func (r *gormValidationRepositories) ProfileRepo() billing.BillingProfileRepository {
	return NewGormBillingProfileRepository(r.tx)
}

// SettingsRepo returns the invoice settings repository scoped to the current transaction.
func (r *gormValidationRepositories) SettingsRepo() billing.InvoiceSettingsRepository {
	return NewGormInvoiceSettingsRepository(r.tx)
}

// InvoiceRepo returns the invoice repository scoped to the current transaction.
func (r *gormValidationRepositories) InvoiceRepo() invoicing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

// AuditRepo returns the audit repository scoped to the current transaction.
func (r *gormValidationRepositories) AuditRepo() audit.Repository {
	return NewGormAuditRepository(r.tx)
}

// Ensure GormValidationScope implements TransactionScope
var _ appinvoicing.TransactionScope = (*GormValidationScope)(nil)

// Ensure gormValidationRepositories implements TransactionalRepositories
var _ appinvoicing.TransactionalRepositories = (*gormValidationRepositories)(nil)

package persistence

import (
	"context"
	"testing"

	"github.com/ecobat/backend/internal/domain/audit"
	"github.com/ecobat/backend/internal/domain/intake"
	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/ecobat/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuditTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.AuditEntryModel{})
	require.NoError(t, err)

	return db
}

func TestGormAuditRepository_RecordAndFind(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewGormAuditRepository(db)
	ctx := context.Background()

	batchID := uuid.New()
	actorID := uuid.New()

	entry, err := audit.NewEntry(audit.ActionBatchValidated, intake.AggregateTypeBatch, batchID, &actorID, map[string]any{
		"invoice_number": "INV-2026-0001",
	})
	require.NoError(t, err)
	require.NoError(t, repo.Record(ctx, entry))

	entries, err := repo.FindByEntity(ctx, intake.AggregateTypeBatch, batchID, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, audit.ActionBatchValidated, entries[0].Action)
	assert.Equal(t, batchID, entries[0].EntityID)
	require.NotNil(t, entries[0].ActorID)
	assert.Equal(t, actorID, *entries[0].ActorID)
	assert.Equal(t, "INV-2026-0001", entries[0].Detail["invoice_number"])
}

func TestGormAuditRepository_FindByEntity_NewestFirst(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewGormAuditRepository(db)
	ctx := context.Background()

	batchID := uuid.New()
	actions := []audit.Action{audit.ActionBatchCreated, audit.ActionBatchUpdated, audit.ActionBatchValidated}
	for _, action := range actions {
		entry, err := audit.NewEntry(action, intake.AggregateTypeBatch, batchID, nil, nil)
		require.NoError(t, err)
		require.NoError(t, repo.Record(ctx, entry))
	}

	entries, err := repo.FindByEntity(ctx, intake.AggregateTypeBatch, batchID, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Entries for another batch stay invisible
	other, err := repo.FindByEntity(ctx, intake.AggregateTypeBatch, uuid.New(), shared.Filter{})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestGormAuditRepository_EmptyDetail(t *testing.T) {
	db := setupAuditTestDB(t)
	repo := NewGormAuditRepository(db)
	ctx := context.Background()

	entityID := uuid.New()
	entry, err := audit.NewEntry(audit.ActionSettingsUpdated, "InvoiceSettings", entityID, nil, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Record(ctx, entry))

	entries, err := repo.FindByEntity(ctx, "InvoiceSettings", entityID, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].Detail)
	assert.Nil(t, entries[0].ActorID)
}

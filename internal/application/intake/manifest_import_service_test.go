package intake

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecobat/backend/internal/domain/intake"
	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/ecobat/backend/internal/domain/valuation"
)

// stubBatchRepo records saved batches, list operations are unused by the
// import flow.
type stubBatchRepo struct {
	saved []*intake.Batch
}

func (r *stubBatchRepo) FindByID(_ context.Context, _ uuid.UUID) (*intake.Batch, error) {
	return nil, shared.ErrNotFound
}

func (r *stubBatchRepo) FindByIDForUpdate(_ context.Context, _ uuid.UUID) (*intake.Batch, error) {
	return nil, shared.ErrNotFound
}

func (r *stubBatchRepo) FindAll(_ context.Context, _ shared.Filter) ([]intake.Batch, error) {
	return nil, nil
}

func (r *stubBatchRepo) FindByStatus(_ context.Context, _ intake.BatchStatus, _ shared.Filter) ([]intake.Batch, error) {
	return nil, nil
}

func (r *stubBatchRepo) FindByCompany(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]intake.Batch, error) {
	return nil, nil
}

func (r *stubBatchRepo) Save(_ context.Context, batch *intake.Batch) error {
	r.saved = append(r.saved, batch)
	return nil
}

func (r *stubBatchRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (r *stubBatchRepo) Count(_ context.Context, _ shared.Filter) (int64, error) { return 0, nil }

func (r *stubBatchRepo) CountByStatus(_ context.Context, _ intake.BatchStatus) (int64, error) {
	return 0, nil
}

func newImportFixture() (*ManifestImportService, *stubBatchRepo) {
	repo := &stubBatchRepo{}
	engine := valuation.NewEngine(valuation.DefaultRateTable())
	return NewManifestImportService(NewBatchService(repo, nil, engine)), repo
}

func importRequest() ManifestImportRequest {
	return ManifestImportRequest{
		Kind:        intake.BatchKindCollection,
		CompanyID:   uuid.New(),
		CompanyName: "Recimob SRL",
	}
}

func TestImportManifest(t *testing.T) {
	svc, repo := newImportFixture()

	csv := strings.Join([]string{
		"category_key,pieces,weight_kg",
		"portable_0_50,120,",
		"portable_51_150,40,",
		"auto_3a,,430.5",
	}, "\n")

	resp, err := svc.ImportManifest(context.Background(), strings.NewReader(csv), importRequest(), nil)
	require.NoError(t, err)
	require.Empty(t, resp.Errors)
	require.NotNil(t, resp.Batch)

	assert.Equal(t, 3, resp.RowCount)
	assert.Equal(t, intake.BatchStatusPending, resp.Batch.Status)
	assert.Len(t, resp.Batch.Manifest, 3)
	assert.True(t, resp.Batch.TotalValueRON.IsPositive())
	require.Len(t, repo.saved, 1)
	assert.EqualValues(t, 120, repo.saved[0].Manifest["portable_0_50"].Pieces)
}

func TestImportManifest_UnknownCategory(t *testing.T) {
	svc, repo := newImportFixture()

	csv := "category_key,pieces,weight_kg\nlead_ingots,10,\n"

	resp, err := svc.ImportManifest(context.Background(), strings.NewReader(csv), importRequest(), nil)
	require.NoError(t, err)
	require.Nil(t, resp.Batch)
	require.Len(t, resp.Errors, 1)

	assert.Equal(t, "category_key", resp.Errors[0].Column)
	assert.Contains(t, resp.Errors[0].Message, "lead_ingots")
	assert.Empty(t, repo.saved)
}

func TestImportManifest_DuplicateCategory(t *testing.T) {
	svc, _ := newImportFixture()

	csv := strings.Join([]string{
		"category_key,pieces,weight_kg",
		"portable_0_50,120,",
		"portable_0_50,80,",
	}, "\n")

	resp, err := svc.ImportManifest(context.Background(), strings.NewReader(csv), importRequest(), nil)
	require.NoError(t, err)
	require.Nil(t, resp.Batch)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Message, "duplicate")
}

func TestImportManifest_NegativePieces(t *testing.T) {
	svc, _ := newImportFixture()

	csv := "category_key,pieces,weight_kg\nportable_0_50,-5,\n"

	resp, err := svc.ImportManifest(context.Background(), strings.NewReader(csv), importRequest(), nil)
	require.NoError(t, err)
	require.Nil(t, resp.Batch)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "pieces", resp.Errors[0].Column)
}

func TestImportManifest_RowWithoutQuantity(t *testing.T) {
	svc, _ := newImportFixture()

	csv := "category_key,pieces,weight_kg\nportable_0_50,,\n"

	resp, err := svc.ImportManifest(context.Background(), strings.NewReader(csv), importRequest(), nil)
	require.NoError(t, err)
	require.Nil(t, resp.Batch)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Message, "no positive quantity")
}

func TestImportManifest_MissingCategoryColumn(t *testing.T) {
	svc, _ := newImportFixture()

	csv := "battery_type,pieces\nportable_0_50,120\n"

	_, err := svc.ImportManifest(context.Background(), strings.NewReader(csv), importRequest(), nil)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_MANIFEST", domainErr.Code)
	assert.Contains(t, domainErr.Message, "category_key")
}

func TestImportManifest_NoDataRows(t *testing.T) {
	svc, _ := newImportFixture()

	csv := "category_key,pieces,weight_kg\n"

	_, err := svc.ImportManifest(context.Background(), strings.NewReader(csv), importRequest(), nil)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_MANIFEST", domainErr.Code)
}

package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appintake "github.com/ecobat/backend/internal/application/intake"
	appinvoicing "github.com/ecobat/backend/internal/application/invoicing"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
}

func TestBatchHandler_CreateBatch(t *testing.T) {
	api := setupTestAPI(t)
	token := api.companyToken(t)

	id := api.createBatch(t, token)

	rec := api.request(t, http.MethodGet, "/api/v1/batches/"+id.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var batch appintake.BatchResponse
	decodeData(t, rec, &batch)
	assert.Equal(t, "PENDING", string(batch.Status))
	assert.Equal(t, api.companyID, batch.CompanyID)
	assert.True(t, batch.TotalValueRON.IsPositive())
}

func TestBatchHandler_CreateBatch_InvalidManifest(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.request(t, http.MethodPost, "/api/v1/batches", api.companyToken(t), map[string]any{
		"kind":         "COLLECTION",
		"company_id":   api.companyID.String(),
		"company_name": "Recimob SRL",
		"manifest": map[string]map[string]any{
			"portable_0_50": {"pieces": -5},
		},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_MANIFEST")
}

func TestBatchHandler_CreateBatch_RequiresAuth(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.request(t, http.MethodPost, "/api/v1/batches", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBatchHandler_CreateBatch_CompanyScopeOverridesBody(t *testing.T) {
	api := setupTestAPI(t)
	token := api.companyToken(t)

	// A company token cannot register batches under another company
	rec := api.request(t, http.MethodPost, "/api/v1/batches", token, map[string]any{
		"kind":         "COLLECTION",
		"company_id":   uuid.NewString(),
		"company_name": "Recimob SRL",
		"manifest": map[string]map[string]any{
			"portable_0_50": {"pieces": 10},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var batch appintake.BatchResponse
	decodeData(t, rec, &batch)
	assert.Equal(t, api.companyID, batch.CompanyID)
}

func TestBatchHandler_ListBatches_ScopedToCompany(t *testing.T) {
	api := setupTestAPI(t)
	token := api.companyToken(t)
	api.createBatch(t, token)
	api.createBatch(t, token)

	// Another company's batch must not appear in the listing
	otherID := uuid.New()
	otherToken := api.token(t, "company", otherID)
	rec := api.request(t, http.MethodPost, "/api/v1/batches", otherToken, map[string]any{
		"kind":         "COLLECTION",
		"company_id":   otherID.String(),
		"company_name": "Alt Colector SRL",
		"manifest": map[string]map[string]any{
			"portable_0_50": {"pieces": 10},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.request(t, http.MethodGet, "/api/v1/batches", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var batches []appintake.BatchResponse
	decodeData(t, rec, &batches)
	require.Len(t, batches, 2)
	for _, batch := range batches {
		assert.Equal(t, api.companyID, batch.CompanyID)
	}
}

func TestBatchHandler_GetBatch_OtherCompanyHidden(t *testing.T) {
	api := setupTestAPI(t)
	id := api.createBatch(t, api.companyToken(t))

	otherToken := api.token(t, "company", uuid.New())
	rec := api.request(t, http.MethodGet, "/api/v1/batches/"+id.String(), otherToken, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBatchHandler_GetBatch_AdminSeesAll(t *testing.T) {
	api := setupTestAPI(t)
	id := api.createBatch(t, api.companyToken(t))

	rec := api.request(t, http.MethodGet, "/api/v1/batches/"+id.String(), api.adminToken(t), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBatchHandler_GetBatch_InvalidID(t *testing.T) {
	api := setupTestAPI(t)

	rec := api.request(t, http.MethodGet, "/api/v1/batches/not-a-uuid", api.companyToken(t), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchHandler_UpdateBatch(t *testing.T) {
	api := setupTestAPI(t)
	token := api.companyToken(t)
	id := api.createBatch(t, token)

	rec := api.request(t, http.MethodPut, "/api/v1/batches/"+id.String(), token, map[string]any{
		"manifest": map[string]map[string]any{
			"portable_0_50": {"pieces": 500},
		},
		"notes": "recount after weighing",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var batch appintake.BatchResponse
	decodeData(t, rec, &batch)
	assert.Equal(t, "recount after weighing", batch.Notes)
	line := batch.Manifest["portable_0_50"]
	assert.Equal(t, int64(500), line.Pieces)
}

func TestBatchHandler_DeleteBatch(t *testing.T) {
	api := setupTestAPI(t)
	token := api.companyToken(t)
	id := api.createBatch(t, token)

	rec := api.request(t, http.MethodDelete, "/api/v1/batches/"+id.String(), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.request(t, http.MethodGet, "/api/v1/batches/"+id.String(), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBatchHandler_ValidateBatch(t *testing.T) {
	api := setupTestAPI(t)
	api.validationService.SetClock(fixedClock)
	api.seedBilling(t)

	token := api.companyToken(t)
	id := api.createBatch(t, token)

	rec := api.request(t, http.MethodPost, "/api/v1/batches/"+id.String()+"/validate", api.adminToken(t), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var result appinvoicing.ValidationResponse
	decodeData(t, rec, &result)
	assert.False(t, result.AlreadyValidated)
	assert.Equal(t, "INV-2026-0001", result.Invoice.Number)
	assert.Equal(t, id, result.Invoice.BatchID)
	assert.Equal(t, api.issuerID, result.Invoice.IssuerCompanyID)
	assert.Equal(t, api.companyID, result.Invoice.CounterpartyCompanyID)
	assert.True(t, result.Invoice.Total.IsPositive())

	// The batch now carries its invoice reference
	rec = api.request(t, http.MethodGet, "/api/v1/batches/"+id.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var batch appintake.BatchResponse
	decodeData(t, rec, &batch)
	assert.Equal(t, "VALIDATED", string(batch.Status))
	require.NotNil(t, batch.InvoiceID)
	assert.Equal(t, result.Invoice.ID, *batch.InvoiceID)
}

func TestBatchHandler_ValidateBatch_Idempotent(t *testing.T) {
	api := setupTestAPI(t)
	api.validationService.SetClock(fixedClock)
	api.seedBilling(t)

	token := api.adminToken(t)
	id := api.createBatch(t, api.companyToken(t))

	rec := api.request(t, http.MethodPost, "/api/v1/batches/"+id.String()+"/validate", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var first appinvoicing.ValidationResponse
	decodeData(t, rec, &first)

	// Revalidation returns the same invoice without allocating a number
	rec = api.request(t, http.MethodPost, "/api/v1/batches/"+id.String()+"/validate", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var second appinvoicing.ValidationResponse
	decodeData(t, rec, &second)

	assert.True(t, second.AlreadyValidated)
	assert.Equal(t, first.Invoice.ID, second.Invoice.ID)
	assert.Equal(t, first.Invoice.Number, second.Invoice.Number)
}

func TestBatchHandler_ValidateBatch_IncompleteBilling(t *testing.T) {
	api := setupTestAPI(t)
	id := api.createBatch(t, api.companyToken(t))

	rec := api.request(t, http.MethodPost, "/api/v1/batches/"+id.String()+"/validate", api.adminToken(t), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "PRECONDITION_INCOMPLETE")
	assert.Contains(t, rec.Body.String(), "billing_profile")
}

func TestBatchHandler_ValidateBatch_CompanyForbidden(t *testing.T) {
	api := setupTestAPI(t)
	api.seedBilling(t)

	token := api.companyToken(t)
	id := api.createBatch(t, token)

	// Only operator users issue invoices, even for their own batches
	rec := api.request(t, http.MethodPost, "/api/v1/batches/"+id.String()+"/validate", token, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.request(t, http.MethodGet, "/api/v1/batches/"+id.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var batch appintake.BatchResponse
	decodeData(t, rec, &batch)
	assert.Equal(t, "PENDING", string(batch.Status))
}

func TestBatchHandler_GetBatchInvoice(t *testing.T) {
	api := setupTestAPI(t)
	api.validationService.SetClock(fixedClock)
	api.seedBilling(t)

	token := api.companyToken(t)
	id := api.createBatch(t, token)

	rec := api.request(t, http.MethodGet, "/api/v1/batches/"+id.String()+"/invoice", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.request(t, http.MethodPost, "/api/v1/batches/"+id.String()+"/validate", api.adminToken(t), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.request(t, http.MethodGet, "/api/v1/batches/"+id.String()+"/invoice", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var invoice appinvoicing.InvoiceResponse
	decodeData(t, rec, &invoice)
	assert.Equal(t, id, invoice.BatchID)
	assert.NotEmpty(t, invoice.Items)
}

func TestBatchHandler_DeleteValidatedBatchRejected(t *testing.T) {
	api := setupTestAPI(t)
	api.validationService.SetClock(fixedClock)
	api.seedBilling(t)

	token := api.companyToken(t)
	id := api.createBatch(t, token)

	rec := api.request(t, http.MethodPost, "/api/v1/batches/"+id.String()+"/validate", api.adminToken(t), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.request(t, http.MethodDelete, "/api/v1/batches/"+id.String(), token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_STATE")
}

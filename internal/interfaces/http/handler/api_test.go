package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	appbilling "github.com/ecobat/backend/internal/application/billing"
	appintake "github.com/ecobat/backend/internal/application/intake"
	appinvoicing "github.com/ecobat/backend/internal/application/invoicing"
	appvaluation "github.com/ecobat/backend/internal/application/valuation"
	"github.com/ecobat/backend/internal/domain/billing"
	"github.com/ecobat/backend/internal/domain/invoicing"
	"github.com/ecobat/backend/internal/domain/valuation"
	"github.com/ecobat/backend/internal/infrastructure/auth"
	"github.com/ecobat/backend/internal/infrastructure/config"
	"github.com/ecobat/backend/internal/infrastructure/persistence"
	"github.com/ecobat/backend/internal/infrastructure/persistence/models"
	"github.com/ecobat/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// testAPI wires the full HTTP stack against an in-memory database, so
// handler tests cover routing, auth scoping and persistence together.
type testAPI struct {
	engine            *gin.Engine
	db                *gorm.DB
	jwtService        *auth.JWTService
	validationService *appinvoicing.ValidationService
	issuerID          uuid.UUID
	companyID         uuid.UUID
	userID            uuid.UUID
}

func setupTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.BatchModel{},
		&models.InvoiceModel{},
		&models.InvoiceItemModel{},
		&models.BillingProfileModel{},
		&models.BillingContactModel{},
		&models.InvoiceSettingsModel{},
		&models.AuditEntryModel{},
	))

	batchRepo := persistence.NewGormBatchRepository(db)
	invoiceRepo := persistence.NewGormInvoiceRepository(db)
	profileRepo := persistence.NewGormBillingProfileRepository(db)
	settingsRepo := persistence.NewGormInvoiceSettingsRepository(db)
	auditRepo := persistence.NewGormAuditRepository(db)

	table := valuation.DefaultRateTable()
	engine := valuation.NewEngine(table)

	batchService := appintake.NewBatchService(batchRepo, auditRepo, engine)
	importService := appintake.NewManifestImportService(batchService)
	scope := persistence.NewGormValidationScope(db, 5*time.Second)
	validationService := appinvoicing.NewValidationService(scope, engine,
		invoicing.NewAssembler(table), billing.NewReadinessGate(), zap.NewNop())
	invoiceService := appinvoicing.NewInvoiceService(invoiceRepo)
	billingService := appbilling.NewBillingService(profileRepo, settingsRepo, auditRepo, scope)
	previewService := appvaluation.NewPreviewService(engine)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-for-handlers",
		Expiration: 15 * time.Minute,
		Issuer:     "ecobat-portal",
	})

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.JWTAuthMiddleware(jwtService))

	api := r.Group("/api/v1")
	NewBatchHandler(batchService, importService, validationService, invoiceService).RegisterRoutes(api)
	NewInvoiceHandler(invoiceService).RegisterRoutes(api)
	NewBillingHandler(billingService).RegisterRoutes(api)
	NewValuationHandler(previewService).RegisterRoutes(api)
	NewSystemHandler(nil).RegisterRoutes(api)

	return &testAPI{
		engine:            r,
		db:                db,
		jwtService:        jwtService,
		validationService: validationService,
		issuerID:          uuid.New(),
		companyID:         uuid.New(),
		userID:            uuid.New(),
	}
}

func (a *testAPI) token(t *testing.T, role string, companyID uuid.UUID) string {
	t.Helper()

	token, _, err := a.jwtService.GenerateToken(auth.GenerateTokenInput{
		CompanyID: companyID,
		UserID:    a.userID,
		Email:     "operator@recimob.ro",
		Role:      role,
	})
	require.NoError(t, err)
	return token
}

func (a *testAPI) companyToken(t *testing.T) string {
	return a.token(t, auth.RoleCompany, a.companyID)
}

// adminToken issues an operator token bound to the fixture's issuing
// company, the one whose series backs validated invoices.
func (a *testAPI) adminToken(t *testing.T) string {
	return a.token(t, auth.RoleAdmin, a.issuerID)
}

func (a *testAPI) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

// seedBilling completes the billing of both parties: the issuing operator
// gets a full profile and settings, the fixture company gets the registered
// profile validation requires of a counterparty.
func (a *testAPI) seedBilling(t *testing.T) {
	t.Helper()

	operator := a.adminToken(t)

	rec := a.request(t, http.MethodPut, "/api/v1/billing/profile", operator, map[string]any{
		"legal_name":     "EcoBat Operator SRL",
		"tax_id":         "RO1122334",
		"trade_registry": "J40/987/2018",
		"address":        "Bd. Industriilor 9",
		"city":           "Bucuresti",
		"county":         "Bucuresti",
		"iban":           "RO49AAAA1B31007593840000",
		"bank_name":      "Banca Transilvania",
		"contacts": []map[string]any{
			{"name": "Ana Ionescu", "email": "facturi@ecobat.ro", "is_billing": true},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.request(t, http.MethodGet, "/api/v1/billing/settings", operator, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.request(t, http.MethodPut, "/api/v1/billing/profile", a.companyToken(t), map[string]any{
		"legal_name": "Recimob SRL",
		"tax_id":     "RO9876543",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

// createBatch registers a collection batch through the API and returns its ID
func (a *testAPI) createBatch(t *testing.T, token string) uuid.UUID {
	t.Helper()

	rec := a.request(t, http.MethodPost, "/api/v1/batches", token, map[string]any{
		"kind":         "COLLECTION",
		"company_id":   a.companyID.String(),
		"company_name": "Recimob SRL",
		"manifest": map[string]map[string]any{
			"portable_0_50":   {"pieces": 200},
			"portable_51_150": {"pieces": 50},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		Data struct {
			ID uuid.UUID `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEqual(t, uuid.Nil, body.Data.ID)
	return body.Data.ID
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, rec.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

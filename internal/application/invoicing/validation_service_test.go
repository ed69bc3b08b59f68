package invoicing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ecobat/backend/internal/domain/audit"
	"github.com/ecobat/backend/internal/domain/billing"
	"github.com/ecobat/backend/internal/domain/intake"
	"github.com/ecobat/backend/internal/domain/invoicing"
	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/ecobat/backend/internal/domain/valuation"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is the in-memory backing state shared by the fake repositories
type memStore struct {
	batches  map[uuid.UUID]*intake.Batch
	profiles map[uuid.UUID]*billing.BillingProfile  // keyed by company ID
	settings map[uuid.UUID]*billing.InvoiceSettings // keyed by company ID
	invoices map[uuid.UUID]*invoicing.Invoice
	audits   []audit.Entry
}

func newMemStore() *memStore {
	return &memStore{
		batches:  make(map[uuid.UUID]*intake.Batch),
		profiles: make(map[uuid.UUID]*billing.BillingProfile),
		settings: make(map[uuid.UUID]*billing.InvoiceSettings),
		invoices: make(map[uuid.UUID]*invoicing.Invoice),
	}
}

func copyBatch(b *intake.Batch) *intake.Batch {
	out := *b
	out.Manifest = make(valuation.Manifest, len(b.Manifest))
	for key, line := range b.Manifest {
		out.Manifest[key] = line
	}
	return &out
}

func copyProfile(p *billing.BillingProfile) *billing.BillingProfile {
	out := *p
	out.Contacts = append([]billing.BillingContact(nil), p.Contacts...)
	return &out
}

func copySettings(s *billing.InvoiceSettings) *billing.InvoiceSettings {
	out := *s
	return &out
}

func copyInvoice(i *invoicing.Invoice) *invoicing.Invoice {
	out := *i
	out.Items = append([]invoicing.InvoiceItem(nil), i.Items...)
	return &out
}

func (s *memStore) clone() *memStore {
	out := newMemStore()
	for id, b := range s.batches {
		out.batches[id] = copyBatch(b)
	}
	for id, p := range s.profiles {
		out.profiles[id] = copyProfile(p)
	}
	for id, st := range s.settings {
		out.settings[id] = copySettings(st)
	}
	for id, inv := range s.invoices {
		out.invoices[id] = copyInvoice(inv)
	}
	out.audits = append([]audit.Entry(nil), s.audits...)
	return out
}

// memRepos implements every repository over one memStore snapshot
type memRepos struct {
	store           *memStore
	failInvoiceSave error
}

func (r *memRepos) BatchRepo() intake.BatchRepository               { return (*memBatchRepo)(r) }
func (r *memRepos) ProfileRepo() billing.BillingProfileRepository   { return (*memProfileRepo)(r) }
func (r *memRepos) SettingsRepo() billing.InvoiceSettingsRepository { return (*memSettingsRepo)(r) }
func (r *memRepos) InvoiceRepo() invoicing.InvoiceRepository        { return (*memInvoiceRepo)(r) }
func (r *memRepos) AuditRepo() audit.Repository                     { return (*memAuditRepo)(r) }

type memBatchRepo memRepos

func (r *memBatchRepo) FindByID(_ context.Context, id uuid.UUID) (*intake.Batch, error) {
	if b, ok := r.store.batches[id]; ok {
		return copyBatch(b), nil
	}
	return nil, shared.ErrNotFound
}

func (r *memBatchRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*intake.Batch, error) {
	return r.FindByID(ctx, id)
}

func (r *memBatchRepo) FindAll(_ context.Context, _ shared.Filter) ([]intake.Batch, error) {
	return nil, nil
}

func (r *memBatchRepo) FindByStatus(_ context.Context, _ intake.BatchStatus, _ shared.Filter) ([]intake.Batch, error) {
	return nil, nil
}

func (r *memBatchRepo) FindByCompany(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]intake.Batch, error) {
	return nil, nil
}

func (r *memBatchRepo) Save(_ context.Context, batch *intake.Batch) error {
	r.store.batches[batch.ID] = copyBatch(batch)
	return nil
}

func (r *memBatchRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.store.batches, id)
	return nil
}

func (r *memBatchRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.store.batches)), nil
}

func (r *memBatchRepo) CountByStatus(_ context.Context, _ intake.BatchStatus) (int64, error) {
	return 0, nil
}

type memProfileRepo memRepos

func (r *memProfileRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.BillingProfile, error) {
	for _, p := range r.store.profiles {
		if p.ID == id {
			return copyProfile(p), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProfileRepo) FindByCompany(_ context.Context, companyID uuid.UUID) (*billing.BillingProfile, error) {
	if p, ok := r.store.profiles[companyID]; ok {
		return copyProfile(p), nil
	}
	return nil, shared.ErrNotFound
}

func (r *memProfileRepo) Save(_ context.Context, profile *billing.BillingProfile) error {
	r.store.profiles[profile.CompanyID] = copyProfile(profile)
	return nil
}

type memSettingsRepo memRepos

func (r *memSettingsRepo) FindByCompany(_ context.Context, companyID uuid.UUID) (*billing.InvoiceSettings, error) {
	if s, ok := r.store.settings[companyID]; ok {
		return copySettings(s), nil
	}
	return nil, shared.ErrNotFound
}

func (r *memSettingsRepo) FindByCompanyForUpdate(ctx context.Context, companyID uuid.UUID) (*billing.InvoiceSettings, error) {
	return r.FindByCompany(ctx, companyID)
}

func (r *memSettingsRepo) Save(_ context.Context, settings *billing.InvoiceSettings) error {
	r.store.settings[settings.CompanyID] = copySettings(settings)
	return nil
}

type memInvoiceRepo memRepos

func (r *memInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	if inv, ok := r.store.invoices[id]; ok {
		return copyInvoice(inv), nil
	}
	return nil, shared.ErrNotFound
}

func (r *memInvoiceRepo) FindByNumber(_ context.Context, number string) (*invoicing.Invoice, error) {
	for _, inv := range r.store.invoices {
		if inv.Number == number {
			return copyInvoice(inv), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memInvoiceRepo) FindByBatch(_ context.Context, batchID uuid.UUID) (*invoicing.Invoice, error) {
	for _, inv := range r.store.invoices {
		if inv.BatchID == batchID {
			return copyInvoice(inv), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memInvoiceRepo) FindByCompany(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]invoicing.Invoice, error) {
	return nil, nil
}

func (r *memInvoiceRepo) FindAll(_ context.Context, _ shared.Filter) ([]invoicing.Invoice, error) {
	return nil, nil
}

func (r *memInvoiceRepo) Save(_ context.Context, invoice *invoicing.Invoice) error {
	if r.failInvoiceSave != nil {
		return r.failInvoiceSave
	}
	r.store.invoices[invoice.ID] = copyInvoice(invoice)
	return nil
}

func (r *memInvoiceRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.store.invoices)), nil
}

type memAuditRepo memRepos

func (r *memAuditRepo) Record(_ context.Context, entry *audit.Entry) error {
	r.store.audits = append(r.store.audits, *entry)
	return nil
}

func (r *memAuditRepo) FindByEntity(_ context.Context, _ string, _ uuid.UUID, _ shared.Filter) ([]audit.Entry, error) {
	return append([]audit.Entry(nil), r.store.audits...), nil
}

// memScope serializes transactions on a mutex and commits a staged copy of
// the store only when the function succeeds, mirroring how the row locks
// and the rollback behave against the real database.
type memScope struct {
	mu              sync.Mutex
	store           *memStore
	failInvoiceSave error
}

func (s *memScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.store.clone()
	if err := fn(&memRepos{store: staged, failInvoiceSave: s.failInvoiceSave}); err != nil {
		return err
	}
	s.store = staged
	return nil
}

var _ TransactionScope = (*memScope)(nil)

type validationFixture struct {
	scope     *memScope
	service   *ValidationService
	issuerID  uuid.UUID
	companyID uuid.UUID
}

func newValidationFixture(t *testing.T) *validationFixture {
	t.Helper()

	issuerID := uuid.New()
	companyID := uuid.New()

	// the issuing operator carries the complete profile and the counter
	profile, err := billing.NewBillingProfile(issuerID)
	require.NoError(t, err)
	profile.UpdateLegalInfo("EcoBat Operator SRL", "RO9876543", "J40/987/2018", "Bd. Industriilor 9", "Bucuresti", "Bucuresti")
	_, err = profile.AddContact("Ana Ionescu", "facturi@ecobat.ro", "", true)
	require.NoError(t, err)

	settings, err := billing.NewInvoiceSettings(issuerID)
	require.NoError(t, err)
	settings.CounterYear = 2026

	// the counterparty only needs a registered profile
	counterparty, err := billing.NewBillingProfile(companyID)
	require.NoError(t, err)

	store := newMemStore()
	store.profiles[issuerID] = profile
	store.settings[issuerID] = settings
	store.profiles[companyID] = counterparty

	scope := &memScope{store: store}
	table := valuation.DefaultRateTable()
	service := NewValidationService(scope,
		valuation.NewEngine(table),
		invoicing.NewAssembler(table),
		billing.NewReadinessGate(),
		zap.NewNop())
	service.SetClock(func() time.Time {
		return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	})

	return &validationFixture{scope: scope, service: service, issuerID: issuerID, companyID: companyID}
}

func (f *validationFixture) addBatch(t *testing.T, pieces int64) uuid.UUID {
	t.Helper()

	batch, err := intake.NewBatch(intake.BatchKindCollection, f.companyID, "SC Acumulatorul SRL", time.Now(),
		valuation.Manifest{valuation.Portable0to50: {Pieces: pieces}},
		valuation.NewEngine(valuation.DefaultRateTable()))
	require.NoError(t, err)

	f.scope.store.batches[batch.ID] = batch
	return batch.ID
}

func TestValidationService_Validate(t *testing.T) {
	fixture := newValidationFixture(t)
	batchID := fixture.addBatch(t, 100)
	actorID := uuid.New()

	response, err := fixture.service.Validate(context.Background(), batchID, fixture.issuerID, &actorID)
	require.NoError(t, err)

	assert.False(t, response.AlreadyValidated)
	assert.Equal(t, "INV-2026-0001", response.Invoice.Number)
	assert.Equal(t, int64(1), response.Invoice.SequenceNumber)
	assert.Equal(t, fixture.issuerID, response.Invoice.IssuerCompanyID)
	assert.Equal(t, fixture.companyID, response.Invoice.CounterpartyCompanyID)
	assert.Equal(t, "4.00", response.Invoice.Subtotal.StringFixed(2))
	assert.Equal(t, "4.76", response.Invoice.Total.StringFixed(2))

	store := fixture.scope.store
	batch := store.batches[batchID]
	assert.Equal(t, intake.BatchStatusValidated, batch.Status)
	require.NotNil(t, batch.InvoiceID)
	assert.Equal(t, response.Invoice.ID, *batch.InvoiceID)

	assert.Equal(t, int64(2), store.settings[fixture.issuerID].NextNumber)
	assert.Len(t, store.invoices, 1)

	require.Len(t, store.audits, 1)
	assert.Equal(t, audit.ActionBatchValidated, store.audits[0].Action)
	assert.Equal(t, batchID, store.audits[0].EntityID)
}

func TestValidationService_Validate_Idempotent(t *testing.T) {
	fixture := newValidationFixture(t)
	batchID := fixture.addBatch(t, 100)

	first, err := fixture.service.Validate(context.Background(), batchID, fixture.issuerID, nil)
	require.NoError(t, err)

	second, err := fixture.service.Validate(context.Background(), batchID, fixture.issuerID, nil)
	require.NoError(t, err)

	assert.True(t, second.AlreadyValidated)
	assert.Equal(t, first.Invoice.ID, second.Invoice.ID)
	assert.Equal(t, first.Invoice.Number, second.Invoice.Number)

	// the counter did not move and no second invoice exists
	assert.Equal(t, int64(2), fixture.scope.store.settings[fixture.issuerID].NextNumber)
	assert.Len(t, fixture.scope.store.invoices, 1)
}

func TestValidationService_Validate_PreconditionIncomplete(t *testing.T) {
	t.Run("incomplete issuer profile", func(t *testing.T) {
		fixture := newValidationFixture(t)
		batchID := fixture.addBatch(t, 10)

		// strip the issuer profile down to an unusable shell
		profile, err := billing.NewBillingProfile(fixture.issuerID)
		require.NoError(t, err)
		fixture.scope.store.profiles[fixture.issuerID] = profile

		_, err = fixture.service.Validate(context.Background(), batchID, fixture.issuerID, nil)
		require.Error(t, err)

		var precondition *shared.PreconditionError
		require.ErrorAs(t, err, &precondition)
		assert.ElementsMatch(t, []string{"legal_name", "tax_id", "billing_contact"}, precondition.Missing)

		// nothing changed: batch still pending, counter untouched
		assert.Equal(t, intake.BatchStatusPending, fixture.scope.store.batches[batchID].Status)
		assert.Equal(t, int64(1), fixture.scope.store.settings[fixture.issuerID].NextNumber)
		assert.Empty(t, fixture.scope.store.invoices)
	})

	t.Run("counterparty without billing profile", func(t *testing.T) {
		fixture := newValidationFixture(t)
		batchID := fixture.addBatch(t, 10)

		delete(fixture.scope.store.profiles, fixture.companyID)

		_, err := fixture.service.Validate(context.Background(), batchID, fixture.issuerID, nil)
		require.Error(t, err)

		var precondition *shared.PreconditionError
		require.ErrorAs(t, err, &precondition)
		assert.Equal(t, []string{"counterparty_billing_profile"}, precondition.Missing)
		assert.Empty(t, fixture.scope.store.invoices)
	})
}

func TestValidationService_Validate_FailureLeavesNoGap(t *testing.T) {
	fixture := newValidationFixture(t)
	batchID := fixture.addBatch(t, 10)

	fixture.scope.failInvoiceSave = errors.New("disk full")
	_, err := fixture.service.Validate(context.Background(), batchID, fixture.issuerID, nil)
	require.Error(t, err)

	// the rolled back attempt returned its number to the pool
	assert.Equal(t, int64(1), fixture.scope.store.settings[fixture.issuerID].NextNumber)
	assert.Equal(t, intake.BatchStatusPending, fixture.scope.store.batches[batchID].Status)

	fixture.scope.failInvoiceSave = nil
	response, err := fixture.service.Validate(context.Background(), batchID, fixture.issuerID, nil)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-0001", response.Invoice.Number)
}

func TestValidationService_Validate_YearReset(t *testing.T) {
	fixture := newValidationFixture(t)
	batchID := fixture.addBatch(t, 10)

	settings := fixture.scope.store.settings[fixture.issuerID]
	settings.CounterYear = 2025
	settings.NextNumber = 42

	response, err := fixture.service.Validate(context.Background(), batchID, fixture.issuerID, nil)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-0001", response.Invoice.Number)
}

func TestValidationService_Validate_ConcurrentSameBatch(t *testing.T) {
	fixture := newValidationFixture(t)
	batchID := fixture.addBatch(t, 100)

	const attempts = 8
	responses := make([]*ValidationResponse, attempts)
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			responses[idx], errs[idx] = fixture.service.Validate(context.Background(), batchID, fixture.issuerID, nil)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	// exactly one invoice was issued, every caller saw the same number
	assert.Len(t, fixture.scope.store.invoices, 1)
	issued := 0
	for _, response := range responses {
		assert.Equal(t, "INV-2026-0001", response.Invoice.Number)
		if !response.AlreadyValidated {
			issued++
		}
	}
	assert.Equal(t, 1, issued)
	assert.Equal(t, int64(2), fixture.scope.store.settings[fixture.issuerID].NextNumber)
}

func TestValidationService_Validate_ConcurrentManyBatches(t *testing.T) {
	fixture := newValidationFixture(t)

	const batchCount = 20
	batchIDs := make([]uuid.UUID, batchCount)
	for i := range batchCount {
		batchIDs[i] = fixture.addBatch(t, int64(i+1))
	}

	var wg sync.WaitGroup
	numbers := make([]string, batchCount)
	errs := make([]error, batchCount)
	for i, id := range batchIDs {
		wg.Add(1)
		go func(idx int, batchID uuid.UUID) {
			defer wg.Done()
			response, err := fixture.service.Validate(context.Background(), batchID, fixture.issuerID, nil)
			errs[idx] = err
			if err == nil {
				numbers[idx] = response.Invoice.Number
			}
		}(i, id)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	// the sequence is dense: every number from 1 to batchCount was used once
	seen := make(map[string]bool, batchCount)
	for _, number := range numbers {
		assert.False(t, seen[number], "number %s issued twice", number)
		seen[number] = true
	}
	for i := 1; i <= batchCount; i++ {
		assert.True(t, seen[fmt.Sprintf("INV-2026-%04d", i)], "missing number %d", i)
	}
	assert.Equal(t, int64(batchCount+1), fixture.scope.store.settings[fixture.issuerID].NextNumber)
}

// stubRenderer renders to a predictable path or fails on demand
type stubRenderer struct {
	err error
}

func (r *stubRenderer) Render(_ context.Context, invoice *invoicing.Invoice) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "invoices/" + invoice.Number + ".pdf", nil
}

func TestValidationService_Validate_PDFRendering(t *testing.T) {
	t.Run("rendered document is attached", func(t *testing.T) {
		fixture := newValidationFixture(t)
		batchID := fixture.addBatch(t, 10)
		fixture.service.SetRenderer(&stubRenderer{})

		response, err := fixture.service.Validate(context.Background(), batchID, fixture.issuerID, nil)
		require.NoError(t, err)

		stored := fixture.scope.store.invoices[response.Invoice.ID]
		assert.Equal(t, "invoices/INV-2026-0001.pdf", stored.PDFPath)
	})

	t.Run("rendering failure does not undo validation", func(t *testing.T) {
		fixture := newValidationFixture(t)
		batchID := fixture.addBatch(t, 10)
		fixture.service.SetRenderer(&stubRenderer{err: errors.New("chrome crashed")})

		response, err := fixture.service.Validate(context.Background(), batchID, fixture.issuerID, nil)
		require.NoError(t, err)

		assert.Equal(t, intake.BatchStatusValidated, fixture.scope.store.batches[batchID].Status)
		stored := fixture.scope.store.invoices[response.Invoice.ID]
		assert.False(t, stored.HasPDF())
	})
}

func TestValidationService_Validate_UnknownBatch(t *testing.T) {
	fixture := newValidationFixture(t)

	_, err := fixture.service.Validate(context.Background(), uuid.New(), fixture.issuerID, nil)
	assert.Error(t, err)

	_, err = fixture.service.Validate(context.Background(), uuid.Nil, fixture.issuerID, nil)
	assert.Error(t, err)
}

func TestValidationService_Validate_MissingIssuer(t *testing.T) {
	fixture := newValidationFixture(t)
	batchID := fixture.addBatch(t, 10)

	_, err := fixture.service.Validate(context.Background(), batchID, uuid.Nil, nil)
	assert.Error(t, err)
	assert.Empty(t, fixture.scope.store.invoices)
}

package billing

import (
	"fmt"
	"regexp"
	"time"

	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Defaults applied when a company gets its first settings row.
const (
	DefaultSeriesCode = "INV"
	DefaultNextNumber = 1
	DefaultDueDays    = 15
)

// DefaultVATRate is the standard VAT percentage applied to invoices
var DefaultVATRate = decimal.NewFromInt(19)

var seriesCodePattern = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)

// InvoiceSettings holds the invoice series configuration and the numbering
// counter for one company. NextNumber is the number the NEXT invoice will
// take; allocation reads it and increments it inside the validation
// transaction, which is what keeps the sequence gap-free.
type InvoiceSettings struct {
	shared.BaseAggregateRoot
	CompanyID      uuid.UUID
	SeriesCode     string
	NextNumber     int64
	YearReset      bool
	CounterYear    int
	DueDays        int
	DefaultVATRate decimal.Decimal
}

// NewInvoiceSettings creates settings with the portal defaults
func NewInvoiceSettings(companyID uuid.UUID) (*InvoiceSettings, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY", "Company ID cannot be empty")
	}
	return &InvoiceSettings{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CompanyID:         companyID,
		SeriesCode:        DefaultSeriesCode,
		NextNumber:        DefaultNextNumber,
		YearReset:         true,
		CounterYear:       time.Now().Year(),
		DueDays:           DefaultDueDays,
		DefaultVATRate:    DefaultVATRate,
	}, nil
}

// FormatNumber renders a sequence number as a full invoice number, for
// example INV-2026-0001 with yearly reset or INV-0001 without.
func (s *InvoiceSettings) FormatNumber(number int64, year int) string {
	if s.YearReset {
		return fmt.Sprintf("%s-%d-%04d", s.SeriesCode, year, number)
	}
	return fmt.Sprintf("%s-%04d", s.SeriesCode, number)
}

// AllocateNext hands out the next invoice number for the given year and
// advances the counter. With yearly reset enabled the counter restarts at
// 1 on the first allocation of a new year. The caller must hold the
// settings row under a lock and persist the mutated settings in the same
// transaction as the invoice, so the returned number is used exactly once.
func (s *InvoiceSettings) AllocateNext(year int) (int64, string) {
	if s.YearReset && year != s.CounterYear {
		s.CounterYear = year
		s.NextNumber = 1
	}

	number := s.NextNumber
	s.NextNumber++
	s.UpdatedAt = time.Now()

	return number, s.FormatNumber(number, year)
}

// SettingsUpdate carries the changeable settings fields. Nil pointers mean
// keep the current value.
type SettingsUpdate struct {
	SeriesCode     *string
	NextNumber     *int64
	YearReset      *bool
	DueDays        *int
	DefaultVATRate *decimal.Decimal
}

// ApplyUpdate mutates the settings from a partial update. The numbering
// counter only moves forward: lowering NextNumber below its current value
// would let an already-issued number be handed out again, so it is
// rejected.
func (s *InvoiceSettings) ApplyUpdate(update SettingsUpdate) error {
	if update.SeriesCode != nil && !seriesCodePattern.MatchString(*update.SeriesCode) {
		return shared.NewDomainError("INVALID_SERIES", "Series code must be 1-10 uppercase letters or digits")
	}
	if update.NextNumber != nil && *update.NextNumber < s.NextNumber {
		return shared.NewDomainError("INVALID_NEXT_NUMBER",
			fmt.Sprintf("Next number cannot decrease below the current value %d", s.NextNumber))
	}
	if update.DueDays != nil && *update.DueDays < 0 {
		return shared.NewDomainError("INVALID_DUE_DAYS", "Due days cannot be negative")
	}
	if update.DefaultVATRate != nil && update.DefaultVATRate.IsNegative() {
		return shared.NewDomainError("INVALID_VAT_RATE", "VAT rate cannot be negative")
	}

	if update.SeriesCode != nil {
		s.SeriesCode = *update.SeriesCode
	}
	if update.NextNumber != nil {
		s.NextNumber = *update.NextNumber
	}
	if update.YearReset != nil {
		s.YearReset = *update.YearReset
	}
	if update.DueDays != nil {
		s.DueDays = *update.DueDays
	}
	if update.DefaultVATRate != nil {
		s.DefaultVATRate = *update.DefaultVATRate
	}

	s.UpdatedAt = time.Now()
	return nil
}

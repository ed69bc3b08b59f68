package valuation

import (
	"fmt"

	"github.com/ecobat/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// RateUnit distinguishes piece-rated from kilogram-rated categories
type RateUnit string

const (
	UnitPiece    RateUnit = "piece"
	UnitKilogram RateUnit = "kilogram"
)

// RateEntry holds the tariff for one battery category. Piece-rated entries
// also carry a nominal per-piece weight used to derive batch weight from a
// declared piece count.
type RateEntry struct {
	Key             CategoryKey
	RatePerUnit     decimal.Decimal
	Unit            RateUnit
	NominalWeightKg decimal.Decimal
}

// RateTable is a fixed mapping from category key to tariff. It is an
// explicitly versioned injected value, not ambient state: valuation is
// reproducible given (manifest, table version).
type RateTable struct {
	version string
	entries map[CategoryKey]RateEntry
}

// NewRateTable builds a rate table from entries
func NewRateTable(version string, entries []RateEntry) *RateTable {
	m := make(map[CategoryKey]RateEntry, len(entries))
	for _, e := range entries {
		m[e.Key] = e
	}
	return &RateTable{version: version, entries: m}
}

// Version returns the table version identifier
func (t *RateTable) Version() string {
	return t.version
}

// Has reports whether the table contains the given category
func (t *RateTable) Has(key CategoryKey) bool {
	_, ok := t.entries[key]
	return ok
}

// Entry returns the tariff entry for a category. Looking up a key that is
// not in the table is a programmer error: callers must pre-validate
// manifests against the published keys.
func (t *RateTable) Entry(key CategoryKey) RateEntry {
	e, ok := t.entries[key]
	if !ok {
		panic(fmt.Sprintf("valuation: unknown category key %q in rate table %s", key, t.version))
	}
	return e
}

// ValuePieces returns the monetary value of a declared piece count
func (t *RateTable) ValuePieces(key CategoryKey, pieces int64) valueobject.Money {
	e := t.Entry(key)
	return valueobject.NewMoneyRON(e.RatePerUnit.Mul(decimal.NewFromInt(pieces)))
}

// ValueWeight returns the monetary value of a declared weight in kilograms
func (t *RateTable) ValueWeight(key CategoryKey, kilograms decimal.Decimal) valueobject.Money {
	e := t.Entry(key)
	return valueobject.NewMoneyRON(e.RatePerUnit.Mul(kilograms))
}

// NominalWeight returns the per-piece nominal weight in kilograms
func (t *RateTable) NominalWeight(key CategoryKey) decimal.Decimal {
	return t.Entry(key).NominalWeightKg
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func pieceEntry(key CategoryKey, rate, nominalKg string) RateEntry {
	return RateEntry{Key: key, RatePerUnit: dec(rate), Unit: UnitPiece, NominalWeightKg: dec(nominalKg)}
}

func weightEntry(key CategoryKey, rate string) RateEntry {
	return RateEntry{Key: key, RatePerUnit: dec(rate), Unit: UnitKilogram}
}

// DefaultTableVersion identifies the currently published tariff
const DefaultTableVersion = "2024-01"

// DefaultRateTable returns the published regulatory tariff: RON/piece for
// portable categories (with nominal per-piece weights) and RON/kg for
// automotive and industrial categories.
func DefaultRateTable() *RateTable {
	return NewRateTable(DefaultTableVersion, []RateEntry{
		pieceEntry(PortablePastila, "0.01", "0.010"),
		pieceEntry(Portable0to50, "0.04", "0.050"),
		pieceEntry(Portable51to150, "0.11", "0.150"),
		pieceEntry(Portable151to250, "0.38", "0.250"),
		pieceEntry(Portable251to500, "0.80", "0.500"),
		pieceEntry(Portable501to750, "0.98", "0.750"),
		pieceEntry(Portable751to1k, "1.20", "1.000"),
		pieceEntry(PortableOver1k, "1.38", "1.000"),

		weightEntry(Auto3a, "0.35"),
		weightEntry(Auto3b, "1.38"),
		weightEntry(Auto3c, "1.38"),
		weightEntry(Industrial4a, "0.35"),
		weightEntry(Industrial4b, "1.38"),
		weightEntry(Industrial4c, "1.38"),
	})
}

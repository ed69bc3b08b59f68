package valuation

import (
	"github.com/shopspring/decimal"
)

// Mode selects how manifest lines are priced
type Mode string

const (
	// ModeTariff values lines from the rate table: piece counts for
	// portable categories, declared weight for kilogram-rated ones.
	ModeTariff Mode = "TARIFF"
	// ModeDeclared sums counterparty-declared weight and value directly;
	// the server never prices the lines itself.
	ModeDeclared Mode = "DECLARED"
)

// IsValid checks if the mode is a known valuation mode
func (m Mode) IsValid() bool {
	return m == ModeTariff || m == ModeDeclared
}

// Result is the outcome of valuing a manifest. All amounts are rounded to
// 2 decimals at the line level before summation, so preview and
// authoritative runs agree to the cent.
type Result struct {
	LineTotals    map[CategoryKey]decimal.Decimal `json:"line_totals"`
	TotalWeightKg decimal.Decimal                 `json:"total_weight_kg"`
	TotalValueRON decimal.Decimal                 `json:"total_value_ron"`
	TableVersion  string                          `json:"table_version"`
}

// Engine values battery manifests against a fixed rate table. It is a pure
// function of its inputs: no state, no side effects, identical totals for
// identical manifests.
type Engine struct {
	table *RateTable
}

// NewEngine creates an engine bound to one rate table version
func NewEngine(table *RateTable) *Engine {
	return &Engine{table: table}
}

// Table returns the rate table the engine prices against
func (e *Engine) Table() *RateTable {
	return e.table
}

// Valuate computes per-line and total value and weight for a manifest.
// Lines are processed in the published key order and each line total is
// rounded to 2 decimals before summation (round-then-sum). Missing keys
// count as zero; negative or unknown entries are rejected up front.
func (e *Engine) Valuate(manifest Manifest, mode Mode) (*Result, error) {
	if err := manifest.Validate(e.table); err != nil {
		return nil, err
	}

	result := &Result{
		LineTotals:    make(map[CategoryKey]decimal.Decimal),
		TotalWeightKg: decimal.Zero,
		TotalValueRON: decimal.Zero,
		TableVersion:  e.table.Version(),
	}

	for _, key := range AllKeys {
		line, ok := manifest[key]
		if !ok || line.IsEmpty() {
			continue
		}

		lineValue, lineWeight := e.valueLine(key, line, mode)
		lineValue = lineValue.Round(2)
		lineWeight = lineWeight.Round(2)

		result.LineTotals[key] = lineValue
		result.TotalValueRON = result.TotalValueRON.Add(lineValue)
		result.TotalWeightKg = result.TotalWeightKg.Add(lineWeight)
	}

	return result, nil
}

func (e *Engine) valueLine(key CategoryKey, line BatteryLine, mode Mode) (value, weight decimal.Decimal) {
	if mode == ModeDeclared {
		return line.ValueRON, line.WeightKg
	}

	if key.IsPieceRated() {
		value = e.table.ValuePieces(key, line.Pieces).Amount()
		weight = e.table.NominalWeight(key).Mul(decimal.NewFromInt(line.Pieces))
		return value, weight
	}

	value = e.table.ValueWeight(key, line.WeightKg).Amount()
	return value, line.WeightKg
}

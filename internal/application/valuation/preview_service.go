// Package valuation exposes the rate table and non-binding manifest
// previews to the API layer.
package valuation

import (
	"github.com/ecobat/backend/internal/domain/intake"
	"github.com/ecobat/backend/internal/domain/valuation"
	"github.com/shopspring/decimal"
)

// PreviewRequest represents a manifest to price without touching any batch
type PreviewRequest struct {
	Kind     intake.BatchKind                    `json:"kind" binding:"required"`
	Manifest map[valuation.CategoryKey]LineInput `json:"manifest" binding:"required"`
}

// LineInput is one submitted manifest line
type LineInput struct {
	Pieces   int64           `json:"pieces"`
	WeightKg decimal.Decimal `json:"weight_kg"`
	ValueRON decimal.Decimal `json:"value_ron"`
}

// LineResult is one priced line of a preview
type LineResult struct {
	CategoryKey valuation.CategoryKey `json:"category_key"`
	Label       string                `json:"label"`
	LineTotal   decimal.Decimal       `json:"line_total"`
}

// PreviewResponse carries the priced manifest. The same engine prices
// previews and invoices, so a preview always matches the invoice the
// batch would produce.
type PreviewResponse struct {
	Lines         []LineResult    `json:"lines"`
	TotalWeightKg decimal.Decimal `json:"total_weight_kg"`
	TotalValueRON decimal.Decimal `json:"total_value_ron"`
	TableVersion  string          `json:"table_version"`
}

// RateEntryResponse represents one rate table entry in API responses
type RateEntryResponse struct {
	CategoryKey     valuation.CategoryKey `json:"category_key"`
	Label           string                `json:"label"`
	RatePerUnit     decimal.Decimal       `json:"rate_per_unit"`
	Unit            valuation.RateUnit    `json:"unit"`
	NominalWeightKg decimal.Decimal       `json:"nominal_weight_kg,omitempty"`
}

// RateTableResponse represents the published rate table
type RateTableResponse struct {
	Version string              `json:"version"`
	Entries []RateEntryResponse `json:"entries"`
}

// PreviewService prices manifests without persisting anything
type PreviewService struct {
	engine *valuation.Engine
}

// NewPreviewService creates a new PreviewService
func NewPreviewService(engine *valuation.Engine) *PreviewService {
	return &PreviewService{engine: engine}
}

// Preview values a manifest the way validation would, without allocating
// a number or writing anything.
func (s *PreviewService) Preview(req PreviewRequest) (*PreviewResponse, error) {
	manifest := make(valuation.Manifest, len(req.Manifest))
	for key, line := range req.Manifest {
		manifest[key] = valuation.BatteryLine{
			Pieces:   line.Pieces,
			WeightKg: line.WeightKg,
			ValueRON: line.ValueRON,
		}
	}

	result, err := s.engine.Valuate(manifest, req.Kind.ValuationMode())
	if err != nil {
		return nil, err
	}

	lines := make([]LineResult, 0, len(result.LineTotals))
	for _, key := range valuation.AllKeys {
		total, ok := result.LineTotals[key]
		if !ok {
			continue
		}
		lines = append(lines, LineResult{
			CategoryKey: key,
			Label:       key.Label(),
			LineTotal:   total,
		})
	}

	return &PreviewResponse{
		Lines:         lines,
		TotalWeightKg: result.TotalWeightKg,
		TotalValueRON: result.TotalValueRON,
		TableVersion:  result.TableVersion,
	}, nil
}

// RateTable returns the published tariff in display order
func (s *PreviewService) RateTable() RateTableResponse {
	table := s.engine.Table()

	entries := make([]RateEntryResponse, 0, len(valuation.AllKeys))
	for _, key := range valuation.AllKeys {
		entry := table.Entry(key)
		entries = append(entries, RateEntryResponse{
			CategoryKey:     key,
			Label:           key.Label(),
			RatePerUnit:     entry.RatePerUnit,
			Unit:            entry.Unit,
			NominalWeightKg: entry.NominalWeightKg,
		})
	}

	return RateTableResponse{
		Version: table.Version(),
		Entries: entries,
	}
}

package intake

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ecobat/backend/internal/domain/intake"
	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/ecobat/backend/internal/domain/valuation"
	csvimport "github.com/ecobat/backend/internal/infrastructure/import"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Manifest CSV column names
const (
	columnCategoryKey = "category_key"
	columnPieces      = "pieces"
	columnWeightKg    = "weight_kg"
	columnValueRON    = "value_ron"
)

// importMaxErrors caps the number of row errors reported for one file
const importMaxErrors = 50

// ManifestImportRequest carries the batch attributes for a CSV manifest
// upload. The manifest lines themselves come from the file.
type ManifestImportRequest struct {
	Kind        intake.BatchKind
	CompanyID   uuid.UUID
	CompanyName string
	PickupDate  time.Time
	Notes       string
}

// ManifestImportResponse is the outcome of a manifest file import. When
// the file has row errors no batch is created and Errors lists them.
type ManifestImportResponse struct {
	Batch    *BatchResponse       `json:"batch,omitempty"`
	RowCount int                  `json:"row_count"`
	Errors   []csvimport.RowError `json:"errors,omitempty"`
}

// ManifestImportService registers batches from uploaded CSV manifests.
// Expected columns: category_key plus pieces, weight_kg or value_ron
// depending on how the category is rated.
type ManifestImportService struct {
	batchService *BatchService
}

// NewManifestImportService creates a new ManifestImportService
func NewManifestImportService(batchService *BatchService) *ManifestImportService {
	return &ManifestImportService{batchService: batchService}
}

// ImportManifest parses and validates a CSV manifest and registers a
// pending batch from it. Structural problems with the file are returned
// as an error; per-row problems are collected into the response and no
// batch is created.
func (s *ManifestImportService) ImportManifest(ctx context.Context, r io.Reader, req ManifestImportRequest, actorID *uuid.UUID) (*ManifestImportResponse, error) {
	parser, err := csvimport.NewParser(r)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_MANIFEST", "Manifest file could not be read: "+err.Error())
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, shared.NewDomainError("INVALID_MANIFEST", "Manifest file has no valid header row")
	}
	if missing := parser.MissingColumns(columnCategoryKey); len(missing) > 0 {
		return nil, shared.NewDomainError("INVALID_MANIFEST",
			fmt.Sprintf("Manifest file is missing required columns: %s", strings.Join(missing, ", ")))
	}

	rows, err := parser.ReadAll()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_MANIFEST", "Manifest file could not be parsed: "+err.Error())
	}
	if len(rows) == 0 {
		return nil, shared.NewDomainError("INVALID_MANIFEST", "Manifest file contains no data rows")
	}

	validator := csvimport.NewFieldValidator(manifestFieldRules(), importMaxErrors)
	errors := csvimport.NewErrorCollection(importMaxErrors)
	manifest := make(valuation.Manifest, len(rows))

	for _, row := range rows {
		if !validator.ValidateRow(row) {
			continue
		}

		line := valuation.BatteryLine{
			Pieces:   parseInt(row.Get(columnPieces)),
			WeightKg: parseDecimal(row.Get(columnWeightKg)),
			ValueRON: parseDecimal(row.Get(columnValueRON)),
		}
		if line.IsEmpty() {
			errors.AddValidationError(row.Line, columnCategoryKey,
				csvimport.ErrCodeImportValidation, "row declares no positive quantity")
			continue
		}
		manifest[valuation.CategoryKey(row.Get(columnCategoryKey))] = line
	}

	allErrors := append(validator.Errors().Errors(), errors.Errors()...)
	if len(allErrors) > 0 {
		return &ManifestImportResponse{
			RowCount: len(rows),
			Errors:   allErrors,
		}, nil
	}

	lines := make(map[valuation.CategoryKey]ManifestLineRequest, len(manifest))
	for key, line := range manifest {
		lines[key] = ManifestLineRequest{
			Pieces:   line.Pieces,
			WeightKg: line.WeightKg,
			ValueRON: line.ValueRON,
		}
	}

	batch, err := s.batchService.CreateBatch(ctx, CreateBatchRequest{
		Kind:        req.Kind,
		CompanyID:   req.CompanyID,
		CompanyName: req.CompanyName,
		PickupDate:  req.PickupDate,
		Manifest:    lines,
		Notes:       req.Notes,
	}, actorID)
	if err != nil {
		return nil, err
	}

	return &ManifestImportResponse{
		Batch:    batch,
		RowCount: len(rows),
	}, nil
}

// manifestFieldRules builds the per-column validation rules for a
// manifest CSV. Category keys must match the published rate table and
// may appear at most once per file.
func manifestFieldRules() []csvimport.FieldRule {
	zero := decimal.Zero
	return []csvimport.FieldRule{
		csvimport.Field(columnCategoryKey).Required().String().Unique().Custom(validateCategoryKey).Build(),
		csvimport.Field(columnPieces).Int().MinValue(zero).Build(),
		csvimport.Field(columnWeightKg).Decimal().MinValue(zero).Build(),
		csvimport.Field(columnValueRON).Decimal().MinValue(zero).Build(),
	}
}

func validateCategoryKey(value string) error {
	if !valuation.CategoryKey(value).IsValid() {
		return fmt.Errorf("unknown battery category %q", value)
	}
	return nil
}

// parseInt and parseDecimal run after field validation, a parse failure
// at this point means an empty optional cell.

func parseInt(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

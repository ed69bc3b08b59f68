package valuation

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ecobat/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BatteryLine is one battery category's declared quantity within a batch
// manifest. Pieces apply to piece-rated categories, weight to kilogram-rated
// ones, and value carries a counterparty-declared price for declared-value
// batches.
type BatteryLine struct {
	Pieces   int64           `json:"pieces,omitempty"`
	WeightKg decimal.Decimal `json:"weight_kg,omitempty"`
	ValueRON decimal.Decimal `json:"value_ron,omitempty"`
}

// IsEmpty returns true when no field of the line is meaningfully positive
func (l BatteryLine) IsEmpty() bool {
	return l.Pieces <= 0 && !l.WeightKg.IsPositive() && !l.ValueRON.IsPositive()
}

// Manifest maps battery categories to declared quantities. It is stored as
// a JSONB column on the batch row.
type Manifest map[CategoryKey]BatteryLine

// Value implements driver.Valuer for GORM to store as JSONB
func (m Manifest) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for GORM to read from JSONB
func (m *Manifest) Scan(value interface{}) error {
	if value == nil {
		*m = Manifest{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan Manifest: unsupported type")
	}

	if len(bytes) == 0 {
		*m = Manifest{}
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// Validate checks every line against the published table. Unknown category
// keys and negative quantities are rejected before any totals are computed.
func (m Manifest) Validate(table *RateTable) error {
	for key, line := range m {
		if !table.Has(key) {
			return shared.NewDomainError("INVALID_MANIFEST", fmt.Sprintf("unknown battery category %q", key))
		}
		if line.Pieces < 0 {
			return shared.NewDomainError("INVALID_MANIFEST", fmt.Sprintf("category %q: pieces must not be negative", key))
		}
		if line.WeightKg.IsNegative() {
			return shared.NewDomainError("INVALID_MANIFEST", fmt.Sprintf("category %q: weight_kg must not be negative", key))
		}
		if line.ValueRON.IsNegative() {
			return shared.NewDomainError("INVALID_MANIFEST", fmt.Sprintf("category %q: value_ron must not be negative", key))
		}
	}
	return nil
}

// Clean returns a copy of the manifest without empty lines
func (m Manifest) Clean() Manifest {
	out := make(Manifest, len(m))
	for key, line := range m {
		if !line.IsEmpty() {
			out[key] = line
		}
	}
	return out
}

// IsEmpty returns true when no line carries a positive quantity
func (m Manifest) IsEmpty() bool {
	for _, line := range m {
		if !line.IsEmpty() {
			return false
		}
	}
	return true
}

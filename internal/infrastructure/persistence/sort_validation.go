package persistence

import (
	"strings"
)

// Client-supplied ordering is never concatenated into SQL as-is: the field
// must come out of a per-entity whitelist and the direction out of the two
// valid keywords. Anything else falls back to the entity default.

// BatchSortFields contains the allowed sort fields for batch listings
var BatchSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"status":          true,
	"kind":            true,
	"company_name":    true,
	"pickup_date":     true,
	"total_value_ron": true,
	"total_weight_kg": true,
}

// InvoiceSortFields contains the allowed sort fields for invoice listings
var InvoiceSortFields = map[string]bool{
	"created_at":        true,
	"number":            true,
	"year":              true,
	"sequence_number":   true,
	"issue_date":        true,
	"due_date":          true,
	"subtotal":          true,
	"total":             true,
	"issuer_legal_name": true,
}

// ValidateSortField resolves a requested sort field against a whitelist.
// Unknown, empty or malformed input resolves to the default field.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ValidateSortOrder normalizes the sort direction to ASC or DESC, with
// ASC as the default for anything unrecognized.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "DESC") {
		return "DESC"
	}
	return "ASC"
}

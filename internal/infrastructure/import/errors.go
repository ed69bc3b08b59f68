package csvimport

import (
	"errors"
	"fmt"
)

// Row error codes carried to the API client
const (
	ErrCodeImportValidation      = "ERR_IMPORT_VALIDATION"
	ErrCodeImportRequiredField   = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeImportInvalidType     = "ERR_IMPORT_INVALID_TYPE"
	ErrCodeImportInvalidRange    = "ERR_IMPORT_INVALID_RANGE"
	ErrCodeImportDuplicateInFile = "ERR_IMPORT_DUPLICATE_IN_FILE"
)

// File-level failures that abort the import before any row is looked at
var (
	ErrEmptyFile       = errors.New("manifest file is empty")
	ErrInvalidEncoding = errors.New("manifest file is not valid UTF-8")
	ErrMissingHeader   = errors.New("manifest file has no header row")
)

// RowError describes one rejected manifest line
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column %q: %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// ErrorCollection accumulates row errors up to a cap, so a file with
// thousands of broken lines still produces a bounded response.
type ErrorCollection struct {
	errors []RowError
	limit  int
	total  int
}

// NewErrorCollection creates a collection that keeps at most limit errors
func NewErrorCollection(limit int) *ErrorCollection {
	if limit <= 0 {
		limit = 100
	}
	return &ErrorCollection{limit: limit}
}

// Add records a row error, dropping it silently once the cap is reached
func (c *ErrorCollection) Add(err RowError) {
	c.total++
	if len(c.errors) < c.limit {
		c.errors = append(c.errors, err)
	}
}

// AddValidationError records an error with an explicit code and message
func (c *ErrorCollection) AddValidationError(row int, column, code, message string) {
	c.Add(RowError{Row: row, Column: column, Code: code, Message: message})
}

func (c *ErrorCollection) addRequired(row int, column string) {
	c.Add(RowError{Row: row, Column: column, Code: ErrCodeImportRequiredField,
		Message: fmt.Sprintf("column %q is required", column)})
}

func (c *ErrorCollection) addType(row int, column, wantType, value string) {
	c.Add(RowError{Row: row, Column: column, Code: ErrCodeImportInvalidType,
		Message: "expected " + wantType, Value: value})
}

func (c *ErrorCollection) addDuplicate(row int, column, value string, firstRow int) {
	c.Add(RowError{Row: row, Column: column, Code: ErrCodeImportDuplicateInFile,
		Message: fmt.Sprintf("duplicate value %q, first seen on row %d", value, firstRow), Value: value})
}

// Errors returns the kept errors
func (c *ErrorCollection) Errors() []RowError {
	return c.errors
}

// Count returns how many errors were kept
func (c *ErrorCollection) Count() int {
	return len(c.errors)
}

// TotalCount returns how many errors occurred, kept or not
func (c *ErrorCollection) TotalCount() int {
	return c.total
}

// HasErrors reports whether anything was recorded
func (c *ErrorCollection) HasErrors() bool {
	return c.total > 0
}

// IsTruncated reports whether the cap dropped some errors
func (c *ErrorCollection) IsTruncated() bool {
	return c.total > c.limit
}

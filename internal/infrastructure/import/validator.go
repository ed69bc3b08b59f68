package csvimport

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Field value types understood by the validator
const (
	FieldString  = "string"
	FieldInt     = "int"
	FieldDecimal = "decimal"
)

// FieldRule is the validation contract for one CSV column
type FieldRule struct {
	Column     string
	Type       string
	Required   bool
	Unique     bool
	MinValue   *decimal.Decimal
	MaxValue   *decimal.Decimal
	CustomFunc func(value string) error
}

// FieldRuleBuilder assembles a FieldRule fluently
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field starts a rule for the named column
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{rule: FieldRule{Column: column, Type: FieldString}}
}

// Required marks the column as mandatory on every row
func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

// String declares a free-text column
func (b *FieldRuleBuilder) String() *FieldRuleBuilder {
	b.rule.Type = FieldString
	return b
}

// Int declares an integer column
func (b *FieldRuleBuilder) Int() *FieldRuleBuilder {
	b.rule.Type = FieldInt
	return b
}

// Decimal declares a decimal column
func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder {
	b.rule.Type = FieldDecimal
	return b
}

// MinValue sets the inclusive lower bound for numeric columns
func (b *FieldRuleBuilder) MinValue(min decimal.Decimal) *FieldRuleBuilder {
	b.rule.MinValue = &min
	return b
}

// MaxValue sets the inclusive upper bound for numeric columns
func (b *FieldRuleBuilder) MaxValue(max decimal.Decimal) *FieldRuleBuilder {
	b.rule.MaxValue = &max
	return b
}

// Unique rejects values already seen in an earlier row of the same file
func (b *FieldRuleBuilder) Unique() *FieldRuleBuilder {
	b.rule.Unique = true
	return b
}

// Custom attaches a domain check run after the structural ones pass
func (b *FieldRuleBuilder) Custom(fn func(value string) error) *FieldRuleBuilder {
	b.rule.CustomFunc = fn
	return b
}

// Build returns the assembled rule
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// FieldValidator applies a fixed set of column rules to manifest rows.
// Rules run in declaration order so error output is deterministic.
type FieldValidator struct {
	rules  []FieldRule
	errors *ErrorCollection
	seen   map[string]map[string]int
}

// NewFieldValidator creates a validator that records at most maxErrors
func NewFieldValidator(rules []FieldRule, maxErrors int) *FieldValidator {
	seen := make(map[string]map[string]int)
	for _, rule := range rules {
		if rule.Unique {
			seen[rule.Column] = make(map[string]int)
		}
	}
	return &FieldValidator{
		rules:  rules,
		errors: NewErrorCollection(maxErrors),
		seen:   seen,
	}
}

// ValidateRow checks one row against every rule and reports whether it
// passed. Failures are accumulated in Errors.
func (v *FieldValidator) ValidateRow(row *Row) bool {
	ok := true
	for _, rule := range v.rules {
		if !v.validateField(row, rule) {
			ok = false
		}
	}
	return ok
}

// Errors returns the accumulated row errors
func (v *FieldValidator) Errors() *ErrorCollection {
	return v.errors
}

func (v *FieldValidator) validateField(row *Row, rule FieldRule) bool {
	value := row.Get(rule.Column)

	if value == "" {
		if rule.Required {
			v.errors.addRequired(row.Line, rule.Column)
			return false
		}
		return true
	}

	num, ok := v.parseTyped(row, rule, value)
	if !ok {
		return false
	}
	if num != nil {
		if rule.MinValue != nil && num.LessThan(*rule.MinValue) {
			v.errors.AddValidationError(row.Line, rule.Column, ErrCodeImportInvalidRange,
				"value must be at least "+rule.MinValue.String())
			return false
		}
		if rule.MaxValue != nil && num.GreaterThan(*rule.MaxValue) {
			v.errors.AddValidationError(row.Line, rule.Column, ErrCodeImportInvalidRange,
				"value must be at most "+rule.MaxValue.String())
			return false
		}
	}

	if rule.Unique {
		if firstRow, dup := v.seen[rule.Column][value]; dup {
			v.errors.addDuplicate(row.Line, rule.Column, value, firstRow)
			return false
		}
		v.seen[rule.Column][value] = row.Line
	}

	if rule.CustomFunc != nil {
		if err := rule.CustomFunc(value); err != nil {
			v.errors.AddValidationError(row.Line, rule.Column, ErrCodeImportValidation, err.Error())
			return false
		}
	}
	return true
}

// parseTyped converts the cell per the rule type. The returned decimal
// is nil for string columns.
func (v *FieldValidator) parseTyped(row *Row, rule FieldRule, value string) (*decimal.Decimal, bool) {
	switch rule.Type {
	case FieldInt:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			v.errors.addType(row.Line, rule.Column, "a whole number", value)
			return nil, false
		}
		d := decimal.NewFromInt(n)
		return &d, true
	case FieldDecimal:
		d, err := decimal.NewFromString(value)
		if err != nil {
			v.errors.addType(row.Line, rule.Column, "a number", value)
			return nil, false
		}
		return &d, true
	default:
		return nil, true
	}
}

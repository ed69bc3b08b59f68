package shared

import "strings"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrConcurrencyBusy     = NewDomainError("CONCURRENCY_BUSY", "Resource is locked by another request, retry later")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrInvalidManifest     = NewDomainError("INVALID_MANIFEST", "Battery manifest contains invalid lines")
)

// PreconditionError is a domain error that carries the list of missing
// billing fields, so callers can surface actionable remediation instead of
// a generic failure.
type PreconditionError struct {
	DomainError
	Missing []string `json:"missing"`
}

// NewPreconditionError creates a PreconditionError from the missing-field list
func NewPreconditionError(missing []string) *PreconditionError {
	return &PreconditionError{
		DomainError: DomainError{
			Code:    "PRECONDITION_INCOMPLETE",
			Message: "Billing configuration incomplete: " + strings.Join(missing, ", "),
		},
		Missing: missing,
	}
}

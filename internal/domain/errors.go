package domain

import "fmt"

// Resource names used in not-found error messages.
const (
	ResourceBook      = "Library Book"
	ResourceBorrower  = "Borrower"
	ResourceBorrowing = "Borrowing"

	FieldID = "id"
)

// NotFoundError signals that a requested record is absent.
type NotFoundError struct {
	Resource string
	Field    string
	Value    int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with %s: '%d'", e.Resource, e.Field, e.Value)
}

// NewNotFoundError builds a NotFoundError keyed by record id.
func NewNotFoundError(resource string, id int64) *NotFoundError {
	return &NotFoundError{Resource: resource, Field: FieldID, Value: id}
}

// InvalidBookError signals a violated book-registration rule.
type InvalidBookError struct {
	Reason string
}

func (e *InvalidBookError) Error() string { return e.Reason }

// InvalidBorrowerError signals a violated borrower-registration rule.
type InvalidBorrowerError struct {
	Reason string
}

func (e *InvalidBorrowerError) Error() string { return e.Reason }

// BusinessRuleError signals a violated lending rule. The operation that
// raised it performed no mutation.
type BusinessRuleError struct {
	Reason string
}

func (e *BusinessRuleError) Error() string { return e.Reason }

// Lending rule violations surfaced by the borrowing repository.
var (
	ErrAlreadyBorrowed = &BusinessRuleError{Reason: "library book is already borrowed by someone"}
	ErrAlreadyReturned = &BusinessRuleError{Reason: "library book already returned by borrower"}
)

// ValidationError carries one message per offending request field. It is
// produced before any store mutation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

package invoicer

import (
	"errors"
	"fmt"

	"github.com/xraph/invoicer/currency"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("invoicer: not found")
	ErrAlreadyExists = errors.New("invoicer: already exists")
	ErrInvalidInput  = errors.New("invoicer: invalid input")

	// Invoice errors
	ErrInvoiceNotFound      = fmt.Errorf("%w: invoice", ErrNotFound)
	ErrDuplicateOrderNumber = fmt.Errorf("%w: duplicate order number", ErrAlreadyExists)
	ErrUnsupportedCurrency  = currency.ErrUnsupported

	// Settings errors
	ErrSettingsNotFound = fmt.Errorf("%w: company settings", ErrNotFound)

	// Store errors
	ErrStoreClosed = errors.New("invoicer: store is closed")
)

// ValidationError reports a caller input that was rejected before any side
// effect took place.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invoicer: validation failed for %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match any validation failure.
func (e ValidationError) Unwrap() error { return ErrInvalidInput }

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "invoicer: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("invoicer: %d errors occurred (first: %v)", len(e.Errors), e.Errors[0])
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e MultiError) Unwrap() []error { return e.Errors }

// PersistenceError reports a store that could not be read or written.
// Op names the step that failed, e.g. "allocate" or "insert".
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("invoicer: persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// RenderError reports a document that could not be produced. The order
// number it names is spent and will not be reissued.
type RenderError struct {
	OrderNumber string
	Err         error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("invoicer: render %s: %v", e.OrderNumber, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// UnrecordedFileError reports that the document was written to Path but its
// record could not be stored. The file is left in place.
type UnrecordedFileError struct {
	OrderNumber string
	Path        string
	Err         error
}

func (e *UnrecordedFileError) Error() string {
	return fmt.Sprintf("invoicer: %s rendered to %s but not recorded: %v", e.OrderNumber, e.Path, e.Err)
}

func (e *UnrecordedFileError) Unwrap() error { return e.Err }

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation returns true if the error came from input validation.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// IsUnrecorded returns true if a document exists on disk without a record.
func IsUnrecorded(err error) bool {
	var ue *UnrecordedFileError
	return errors.As(err, &ue)
}

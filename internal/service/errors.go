package service

import (
	"errors"
	"fmt"

	"trainingforms/internal/form"
)

var (
	// ErrFormNotFound covers lookups by id that match nothing visible to
	// the caller.
	ErrFormNotFound = errors.New("training form not found")

	// ErrNeedsChanges blocks approval while the form still carries
	// placeholder values flagged for review.
	ErrNeedsChanges = errors.New("form has fields needing changes and cannot be approved")

	// ErrNotAllowed is returned when the caller is neither the submitter
	// nor an admin for an action that requires one of the two.
	ErrNotAllowed = errors.New("not allowed to perform this action")

	// ErrNoMatchingForms is returned by the export when the requested
	// window contains no approved forms.
	ErrNoMatchingForms = errors.New("no matching records found")

	// ErrAdminExists is returned when granting admin rights to an email
	// that already has them.
	ErrAdminExists = errors.New("admin already exists")

	// ErrAdminNotFound covers preference updates for an unknown admin.
	ErrAdminNotFound = errors.New("admin not found")
)

// ValidationError carries every field violation found in a submitted draft.
type ValidationError struct {
	Result form.ValidationResult
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("draft failed validation with %d field error(s)", len(e.Result.Errors))
}

// AsValidationError unwraps err into a *ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

package ops

import (
	"errors"
	"fmt"
)

// ErrorCode enumerates the reasons an edit can be rejected. Every
// rejection carries a specific code; callers never see a generic
// failure for a foreseeable condition.
type ErrorCode string

// Operational error codes.
const (
	ErrElementNotFound         ErrorCode = "element-not-found"
	ErrSliceNotFound           ErrorCode = "slice-not-found"
	ErrExtensionNotFound       ErrorCode = "extension-not-found"
	ErrInvariantNotFound       ErrorCode = "invariant-not-found"
	ErrInvalidCardinality      ErrorCode = "invalid-cardinality"
	ErrCardinalityExceedsBase  ErrorCode = "cardinality-exceeds-base"
	ErrInvalidTypeConstraint   ErrorCode = "invalid-type-constraint"
	ErrTypeNotAllowed          ErrorCode = "type-not-allowed"
	ErrBindingStrengthWeakened ErrorCode = "binding-strength-weakened"
	ErrInvalidValueSetURL      ErrorCode = "invalid-valueset-url"
	ErrInvalidDiscriminator    ErrorCode = "invalid-discriminator"
	ErrInvalidSliceName        ErrorCode = "invalid-slice-name"
	ErrInvalidCanonicalURL     ErrorCode = "invalid-canonical-url"
	ErrSlicingAlreadyDefined   ErrorCode = "slicing-already-defined"
	ErrSlicingNotDefined       ErrorCode = "slicing-not-defined"
	ErrDuplicateSlice          ErrorCode = "duplicate-slice"
	ErrDuplicateExtension      ErrorCode = "duplicate-extension"
	ErrDuplicateInvariantKey   ErrorCode = "duplicate-invariant-key"
	ErrInvalidFHIRPath         ErrorCode = "invalid-fhirpath"
	ErrValueTypeMismatch       ErrorCode = "value-type-mismatch"
	ErrDocumentReadOnly        ErrorCode = "document-read-only"
	ErrNothingToUndo           ErrorCode = "nothing-to-undo"
	ErrInternal                ErrorCode = "internal"
)

// OperationError is the typed rejection of an edit. No partial mutation
// is observable when one is returned.
type OperationError struct {
	// Code is the stable machine-readable reason.
	Code ErrorCode

	// Message is the human-readable detail.
	Message string

	// Path optionally locates the offending element.
	Path string
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Code, e.Message, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errorf creates an OperationError with a formatted message.
func Errorf(code ErrorCode, path, format string, args ...any) *OperationError {
	return &OperationError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Path:    path,
	}
}

// CodeOf extracts the ErrorCode from err, or ErrInternal if err is not
// an OperationError.
func CodeOf(err error) ErrorCode {
	var oe *OperationError
	if errors.As(err, &oe) {
		return oe.Code
	}
	return ErrInternal
}

package query

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes query validation errors.
type ErrorCode string

const (
	// ErrCodeUnknownPath indicates a path with no index accessor in the schema.
	ErrCodeUnknownPath ErrorCode = "UNKNOWN_PATH"

	// ErrCodeEmptyPath indicates a comparison or sort without a path.
	ErrCodeEmptyPath ErrorCode = "EMPTY_PATH"

	// ErrCodeNilValue indicates a comparison against nil.
	ErrCodeNilValue ErrorCode = "NIL_VALUE"

	// ErrCodeInvalidValue indicates a comparison value that cannot be
	// converted to the stored form of the member's type class.
	ErrCodeInvalidValue ErrorCode = "INVALID_VALUE"

	// ErrCodeInvalidOperator indicates an unknown operator, or like on a
	// member that is not stored as text.
	ErrCodeInvalidOperator ErrorCode = "INVALID_OPERATOR"

	// ErrCodeEmptyConnective indicates an And or Or without operands.
	ErrCodeEmptyConnective ErrorCode = "EMPTY_CONNECTIVE"

	// ErrCodeInvalidDirection indicates a sort direction other than Asc or Desc.
	ErrCodeInvalidDirection ErrorCode = "INVALID_DIRECTION"

	// ErrCodeDuplicateSort indicates the same path sorted twice.
	ErrCodeDuplicateSort ErrorCode = "DUPLICATE_SORT"

	// ErrCodeInvalidPaging indicates a negative take or offset.
	ErrCodeInvalidPaging ErrorCode = "INVALID_PAGING"

	// ErrCodeOffsetWithoutSort indicates an offset on an unordered query.
	ErrCodeOffsetWithoutSort ErrorCode = "OFFSET_WITHOUT_SORT"
)

// ValidationError reports why a query cannot be compiled against a schema.
type ValidationError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Structure is the structure set the query was validated against.
	Structure string

	// Path is the offending member path, if any.
	Path string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (structure=%s, path=%s)", e.Code, e.Message, e.Structure, e.Path)
	}
	return fmt.Sprintf("%s: %s (structure=%s)", e.Code, e.Message, e.Structure)
}

// IsValidationError returns true if err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsUnknownPathError returns true if err reports a path absent from the schema.
// Uses errors.As to handle wrapped errors.
func IsUnknownPathError(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code == ErrCodeUnknownPath
	}
	return false
}

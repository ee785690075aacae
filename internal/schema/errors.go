package schema

import (
	"errors"
	"fmt"
)

// ValidationError reports a precondition failure when constructing a schema.
type ValidationError struct {
	Field   string
	Message string
	Index   int // position in indexAccessors, when Field is "indexAccessors"
}

func (e *ValidationError) Error() string {
	if e.Field == "indexAccessors" {
		return fmt.Sprintf("structure schema: %s[%d]: %s", e.Field, e.Index, e.Message)
	}
	return fmt.Sprintf("structure schema: %s %s", e.Field, e.Message)
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

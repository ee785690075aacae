package definition

import (
	"fmt"

	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// DefinitionError reports an invalid structure definition with its source
// position.
type DefinitionError struct {
	Field   string
	Message string
	Pos     token.Pos
	Err     error
}

func (e *DefinitionError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *DefinitionError) Unwrap() error { return e.Err }

// formatCUEError keeps the first CUE error and its position, if any.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	defErr := &DefinitionError{Field: "cue", Message: err.Error(), Err: err}
	if errs := errors.Errors(err); len(errs) > 0 {
		defErr.Message = errs[0].Error()
		if positions := errors.Positions(errs[0]); len(positions) > 0 {
			defErr.Pos = positions[0]
		}
	}
	return defErr
}

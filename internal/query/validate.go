package query

import (
	"fmt"

	"github.com/roach88/structdb/internal/schema"
)

// Validate checks q against s and returns the first violation as a
// *ValidationError.
//
// Every comparison and sort path must name an index accessor of s. Offsets
// require a sort, because an unordered window is not stable.
//
// Validate is a pure function with no side effects.
func Validate(q Query, s *schema.StructureSchema) error {
	v := &validator{schema: s}

	if q.Where != nil {
		if err := v.validatePredicate(q.Where); err != nil {
			return err
		}
	}

	sorted := make(map[string]bool, len(q.Sort))
	for _, sb := range q.Sort {
		if _, err := v.accessor(sb.Path); err != nil {
			return err
		}
		if sb.Direction != Asc && sb.Direction != Desc {
			return v.fail(ErrCodeInvalidDirection, sb.Path, "direction %q is not Asc or Desc", sb.Direction)
		}
		if sorted[sb.Path] {
			return v.fail(ErrCodeDuplicateSort, sb.Path, "path is sorted more than once")
		}
		sorted[sb.Path] = true
	}

	if q.Paging.Take < 0 || q.Paging.Offset < 0 {
		return v.fail(ErrCodeInvalidPaging, "", "take %d and offset %d must not be negative", q.Paging.Take, q.Paging.Offset)
	}
	if q.Paging.Offset > 0 && len(q.Sort) == 0 {
		return v.fail(ErrCodeOffsetWithoutSort, "", "offset requires a sort")
	}

	return nil
}

type validator struct {
	schema *schema.StructureSchema
}

func (v *validator) fail(code ErrorCode, path, format string, args ...any) *ValidationError {
	return &ValidationError{
		Code:      code,
		Structure: v.schema.Name(),
		Path:      path,
		Message:   fmt.Sprintf(format, args...),
	}
}

func (v *validator) accessor(path string) (schema.IndexAccessor, error) {
	if path == "" {
		return nil, v.fail(ErrCodeEmptyPath, "", "member path is empty")
	}
	a, ok := v.schema.IndexAccessor(path)
	if !ok {
		return nil, v.fail(ErrCodeUnknownPath, path, "no index accessor for path")
	}
	return a, nil
}

func (v *validator) validatePredicate(p Predicate) error {
	switch pred := p.(type) {
	case Comparison:
		return v.validateComparison(pred)
	case *Comparison:
		if pred == nil {
			return v.fail(ErrCodeEmptyConnective, "", "nil comparison")
		}
		return v.validateComparison(*pred)
	case And:
		return v.validateConnective("and", pred.Predicates)
	case *And:
		if pred == nil {
			return v.fail(ErrCodeEmptyConnective, "", "nil and")
		}
		return v.validateConnective("and", pred.Predicates)
	case Or:
		return v.validateConnective("or", pred.Predicates)
	case *Or:
		if pred == nil {
			return v.fail(ErrCodeEmptyConnective, "", "nil or")
		}
		return v.validateConnective("or", pred.Predicates)
	case Not:
		return v.validateNot(pred)
	case *Not:
		if pred == nil {
			return v.fail(ErrCodeEmptyConnective, "", "nil not")
		}
		return v.validateNot(*pred)
	default:
		return fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (v *validator) validateComparison(c Comparison) error {
	a, err := v.accessor(c.Path)
	if err != nil {
		return err
	}
	if !c.Op.Valid() {
		return v.fail(ErrCodeInvalidOperator, c.Path, "unknown operator %q", c.Op)
	}
	if c.Op == OpLike && !a.TypeClass().IsStringLike() {
		return v.fail(ErrCodeInvalidOperator, c.Path, "like is not supported on %s members", a.TypeClass())
	}
	if c.Value == nil {
		return v.fail(ErrCodeNilValue, c.Path, "comparison value is nil")
	}
	return nil
}

func (v *validator) validateConnective(name string, preds []Predicate) error {
	if len(preds) == 0 {
		return v.fail(ErrCodeEmptyConnective, "", "%s has no operands", name)
	}
	for _, sub := range preds {
		if sub == nil {
			return v.fail(ErrCodeEmptyConnective, "", "%s has a nil operand", name)
		}
		if err := v.validatePredicate(sub); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) validateNot(n Not) error {
	if n.Predicate == nil {
		return v.fail(ErrCodeEmptyConnective, "", "not has no operand")
	}
	return v.validatePredicate(n.Predicate)
}

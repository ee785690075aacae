package query

import (
	"github.com/roach88/structdb/internal/accessor"
	"github.com/roach88/structdb/internal/schema"
	"github.com/roach88/structdb/internal/value"
)

// Normalize validates q against s and returns a copy whose comparison values
// are in the form the index table stores for each member's type class:
// UTC time.Time for DateTime, uuid.UUID for Guid, int64 for Integer and
// float64 for Fractal. Members without a typed column are compared as text,
// so their values are rendered with conv (value.CanonicalConverter if nil),
// the converter that filled the StringValue column. Like patterns are left
// untouched.
//
// A value that cannot be converted fails with ErrCodeInvalidValue. Pointer
// predicates are replaced by their value forms.
func Normalize(q Query, s *schema.StructureSchema, conv value.StringConverter) (Query, error) {
	if err := Validate(q, s); err != nil {
		return Query{}, err
	}
	if q.Where == nil {
		return q, nil
	}
	if conv == nil {
		conv = value.CanonicalConverter{}
	}

	n := &normalizer{validator: validator{schema: s}, conv: conv}
	where, err := n.predicate(q.Where)
	if err != nil {
		return Query{}, err
	}
	q.Where = where
	return q, nil
}

type normalizer struct {
	validator
	conv value.StringConverter
}

func (n *normalizer) predicate(p Predicate) (Predicate, error) {
	switch pred := p.(type) {
	case Comparison:
		return n.comparison(pred)
	case *Comparison:
		return n.comparison(*pred)
	case And:
		preds, err := n.all(pred.Predicates)
		if err != nil {
			return nil, err
		}
		return And{Predicates: preds}, nil
	case *And:
		return n.predicate(*pred)
	case Or:
		preds, err := n.all(pred.Predicates)
		if err != nil {
			return nil, err
		}
		return Or{Predicates: preds}, nil
	case *Or:
		return n.predicate(*pred)
	case Not:
		inner, err := n.predicate(pred.Predicate)
		if err != nil {
			return nil, err
		}
		return Not{Predicate: inner}, nil
	case *Not:
		return n.predicate(*pred)
	}
	return p, nil
}

func (n *normalizer) all(preds []Predicate) ([]Predicate, error) {
	out := make([]Predicate, 0, len(preds))
	for _, sub := range preds {
		p, err := n.predicate(sub)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (n *normalizer) comparison(c Comparison) (Predicate, error) {
	if c.Op == OpLike {
		return c, nil
	}
	a, err := n.accessor(c.Path)
	if err != nil {
		return nil, err
	}

	tc := a.TypeClass()
	if tc == schema.TypeClassOther {
		s, err := n.conv.AsString(c.Value)
		if err != nil {
			return nil, n.fail(ErrCodeInvalidValue, c.Path, "%v", err)
		}
		c.Value = s
		return c, nil
	}

	v, err := accessor.Coerce(tc, c.Value)
	if err != nil {
		return nil, n.fail(ErrCodeInvalidValue, c.Path, "%v", err)
	}
	c.Value = v
	return c, nil
}

package query

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/structdb/internal/accessor"
	"github.com/roach88/structdb/internal/schema"
)

// File is the YAML form of a query:
//
//	structure: Order
//	where:
//	  and:
//	    - {path: Total, op: ">", value: 100}
//	    - not: {path: OrderNo, op: like, value: "TMP%"}
//	sort:
//	  - {path: Total, direction: desc}
//	take: 10
//	offset: 20
type File struct {
	Structure string         `yaml:"structure"`
	Where     *PredicateSpec `yaml:"where,omitempty"`
	Sort      []SortSpec     `yaml:"sort,omitempty"`
	Take      int            `yaml:"take,omitempty"`
	Offset    int            `yaml:"offset,omitempty"`
}

// PredicateSpec is either a comparison (path, op, value) or exactly one of
// and, or, not.
type PredicateSpec struct {
	Path  string          `yaml:"path,omitempty"`
	Op    string          `yaml:"op,omitempty"` // defaults to "="
	Value any             `yaml:"value,omitempty"`
	And   []PredicateSpec `yaml:"and,omitempty"`
	Or    []PredicateSpec `yaml:"or,omitempty"`
	Not   *PredicateSpec  `yaml:"not,omitempty"`
}

// SortSpec orders by one member path.
type SortSpec struct {
	Path      string `yaml:"path"`
	Direction string `yaml:"direction,omitempty"` // asc (default) | desc
}

// ParseFile decodes a YAML query, rejecting unknown fields.
func ParseFile(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if f.Structure == "" {
		return nil, fmt.Errorf("invalid query: structure is required")
	}
	return &f, nil
}

// Build converts f into a query against s. Comparison values are coerced to
// the type class of the member they compare against; paths s does not index
// are left for query validation to reject.
func (f *File) Build(s *schema.StructureSchema) (Query, error) {
	q := Query{Paging: Paging{Take: f.Take, Offset: f.Offset}}

	if f.Where != nil {
		p, err := f.Where.predicate(s, "where")
		if err != nil {
			return Query{}, err
		}
		q.Where = p
	}

	for i, by := range f.Sort {
		var dir Direction
		switch strings.ToLower(by.Direction) {
		case "", "asc":
			dir = Asc
		case "desc":
			dir = Desc
		default:
			return Query{}, fmt.Errorf("sort[%d]: invalid direction %q", i, by.Direction)
		}
		q.Sort = append(q.Sort, SortBy{Path: by.Path, Direction: dir})
	}

	return q, nil
}

func (p *PredicateSpec) predicate(s *schema.StructureSchema, at string) (Predicate, error) {
	set := 0
	if p.Path != "" {
		set++
	}
	if p.And != nil {
		set++
	}
	if p.Or != nil {
		set++
	}
	if p.Not != nil {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("%s: expected exactly one of path, and, or, not", at)
	}

	switch {
	case p.And != nil:
		preds, err := predicates(s, at+".and", p.And)
		if err != nil {
			return nil, err
		}
		return AllOf(preds...), nil
	case p.Or != nil:
		preds, err := predicates(s, at+".or", p.Or)
		if err != nil {
			return nil, err
		}
		return AnyOf(preds...), nil
	case p.Not != nil:
		inner, err := p.Not.predicate(s, at+".not")
		if err != nil {
			return nil, err
		}
		return Not{Predicate: inner}, nil
	}

	op := Operator(p.Op)
	if op == "" {
		op = OpEq
	}
	v := p.Value
	if a, ok := s.IndexAccessor(p.Path); ok && v != nil && op != OpLike {
		coerced, err := accessor.Coerce(a.TypeClass(), v)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", at, p.Path, err)
		}
		v = coerced
	}
	return Comparison{Path: p.Path, Op: op, Value: v}, nil
}

func predicates(s *schema.StructureSchema, at string, specs []PredicateSpec) ([]Predicate, error) {
	preds := make([]Predicate, 0, len(specs))
	for i := range specs {
		p, err := specs[i].predicate(s, fmt.Sprintf("%s[%d]", at, i))
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

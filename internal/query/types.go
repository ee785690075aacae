package query

// Query is an abstract filter, sort and paging specification.
//
// The zero Query selects every structure in a set.
type Query struct {
	Where  Predicate // nil = no filter
	Sort   []SortBy
	Paging Paging
}

// Predicate is a boolean condition over member paths.
//
// This is a sealed interface; only types in this package implement it.
type Predicate interface {
	predicateNode()
}

// Operator is a comparison operator. Its value is the SQL token.
type Operator string

const (
	OpEq   Operator = "="
	OpNeq  Operator = "<>"
	OpLt   Operator = "<"
	OpLte  Operator = "<="
	OpGt   Operator = ">"
	OpGte  Operator = ">="
	OpLike Operator = "like"
)

// Valid reports whether op is one of the declared operators.
func (op Operator) Valid() bool {
	switch op {
	case OpEq, OpNeq, OpLt, OpLte, OpGt, OpGte, OpLike:
		return true
	default:
		return false
	}
}

// Comparison compares the value stored at Path with a literal.
//
// Value is passed to the database as a parameter, never interpolated.
type Comparison struct {
	Path  string
	Op    Operator
	Value any
}

func (Comparison) predicateNode() {}

// And is true when every predicate is true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Or is true when any predicate is true.
type Or struct {
	Predicates []Predicate
}

func (Or) predicateNode() {}

// Not negates a predicate.
type Not struct {
	Predicate Predicate
}

func (Not) predicateNode() {}

// Direction is a sort direction. Its value is the SQL token.
type Direction string

const (
	Asc  Direction = "Asc"
	Desc Direction = "Desc"
)

// SortBy orders results by the value stored at Path.
type SortBy struct {
	Path      string
	Direction Direction
}

// Paging limits the result window. Zero fields are unset.
type Paging struct {
	Take   int
	Offset int
}

// IsZero reports whether no paging was requested.
func (p Paging) IsZero() bool {
	return p.Take == 0 && p.Offset == 0
}

// Eq returns path = v.
func Eq(path string, v any) Comparison { return Comparison{Path: path, Op: OpEq, Value: v} }

// Neq returns path <> v.
func Neq(path string, v any) Comparison { return Comparison{Path: path, Op: OpNeq, Value: v} }

// Lt returns path < v.
func Lt(path string, v any) Comparison { return Comparison{Path: path, Op: OpLt, Value: v} }

// Lte returns path <= v.
func Lte(path string, v any) Comparison { return Comparison{Path: path, Op: OpLte, Value: v} }

// Gt returns path > v.
func Gt(path string, v any) Comparison { return Comparison{Path: path, Op: OpGt, Value: v} }

// Gte returns path >= v.
func Gte(path string, v any) Comparison { return Comparison{Path: path, Op: OpGte, Value: v} }

// Like returns path like pattern.
func Like(path, pattern string) Comparison {
	return Comparison{Path: path, Op: OpLike, Value: pattern}
}

// AllOf is a convenience constructor for And.
func AllOf(preds ...Predicate) And { return And{Predicates: preds} }

// AnyOf is a convenience constructor for Or.
func AnyOf(preds ...Predicate) Or { return Or{Predicates: preds} }

// Ascending sorts by path in ascending order.
func Ascending(path string) SortBy { return SortBy{Path: path, Direction: Asc} }

// Descending sorts by path in descending order.
func Descending(path string) SortBy { return SortBy{Path: path, Direction: Desc} }

// Walk visits every comparison under p from left to right.
// Pointer forms of the predicate types are accepted; nil pointers are
// skipped.
func Walk(p Predicate, fn func(Comparison)) {
	switch pred := p.(type) {
	case nil:
	case Comparison:
		fn(pred)
	case *Comparison:
		if pred != nil {
			fn(*pred)
		}
	case And:
		for _, sub := range pred.Predicates {
			Walk(sub, fn)
		}
	case *And:
		if pred != nil {
			Walk(*pred, fn)
		}
	case Or:
		for _, sub := range pred.Predicates {
			Walk(sub, fn)
		}
	case *Or:
		if pred != nil {
			Walk(*pred, fn)
		}
	case Not:
		Walk(pred.Predicate, fn)
	case *Not:
		if pred != nil {
			Walk(*pred, fn)
		}
	}
}

// Paths returns the distinct member paths referenced by q in first-use
// order: predicate paths left to right, then sort paths.
func Paths(q Query) []string {
	var paths []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	}
	Walk(q.Where, func(c Comparison) { add(c.Path) })
	for _, s := range q.Sort {
		add(s.Path)
	}
	return paths
}

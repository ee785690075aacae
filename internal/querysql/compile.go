package querysql

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/roach88/structdb/internal/index"
	"github.com/roach88/structdb/internal/query"
	"github.com/roach88/structdb/internal/schema"
)

// Parameter is one named query parameter.
type Parameter struct {
	Name  string `json:"name"` // without the @ prefix
	Value any    `json:"value"`
}

// SQLQuery is compiled query text plus its parameters in binding order.
type SQLQuery struct {
	SQL        string
	Parameters []Parameter
}

// Args returns the parameters as sql.Named arguments.
func (q SQLQuery) Args() []any {
	args := make([]any, len(q.Parameters))
	for i, p := range q.Parameters {
		args[i] = sql.Named(p.Name, p.Value)
	}
	return args
}

// Compiler compiles abstract queries to SQL.
//
// A Compiler holds no mutable state and is safe for concurrent use.
type Compiler struct {
	dialect Dialect
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithDialect selects the SQL dialect. The default is SQLServer.
func WithDialect(d Dialect) Option {
	return func(c *Compiler) {
		c.dialect = d
	}
}

// NewCompiler creates a Compiler.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{dialect: SQLServer}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dialect returns the compiler's dialect.
func (c *Compiler) Dialect() Dialect {
	return c.dialect
}

// Compile validates q against s and renders it as SQL.
//
// Returns a *query.ValidationError if q references a path s does not index.
func (c *Compiler) Compile(s *schema.StructureSchema, q query.Query) (SQLQuery, error) {
	if err := query.Validate(q, s); err != nil {
		return SQLQuery{}, fmt.Errorf("compile %s query: %w", s.Name(), err)
	}

	b := &builder{
		dialect: c.dialect,
		schema:  s,
		aliases: make(map[string]string),
	}
	for i, path := range query.Paths(q) {
		b.aliases[path] = fmt.Sprintf("mem%d", i)
		b.joinOrder = append(b.joinOrder, path)
	}

	return b.build(q)
}

// builder accumulates the text and parameters of one compilation.
type builder struct {
	dialect   Dialect
	schema    *schema.StructureSchema
	aliases   map[string]string
	joinOrder []string

	sb     strings.Builder
	params []Parameter
}

func (b *builder) build(q query.Query) (SQLQuery, error) {
	d := b.dialect
	structureTable := d.QuoteIdent(b.schema.StructureTableName())
	indexesTable := d.QuoteIdent(b.schema.IndexesTableName())
	structureID := d.QuoteIdent(index.Columns[index.ColStructureID])
	memberPath := d.QuoteIdent(index.Columns[index.ColMemberPath])

	sorted := len(q.Sort) > 0
	take := q.Paging.Take > 0
	offset := q.Paging.Offset > 0

	b.sb.WriteString("select ")
	if take && !sorted {
		b.sb.WriteString(d.Top(q.Paging.Take))
	}
	fmt.Fprintf(&b.sb, "min(s.%s) %s", d.QuoteIdent("Json"), d.QuoteIdent("Json"))
	for _, by := range q.Sort {
		alias := b.aliases[by.Path]
		fmt.Fprintf(&b.sb, ", min(%s.%s) %s", alias, b.column(by.Path), alias)
	}

	fmt.Fprintf(&b.sb, " from %s s inner join %s si on si.%s = s.%s",
		structureTable, indexesTable, structureID, structureID)
	for _, path := range b.joinOrder {
		alias := b.aliases[path]
		fmt.Fprintf(&b.sb, " inner join %s %s on %s.%s = s.%s and %s.%s = %s",
			indexesTable, alias, alias, structureID, structureID, alias, memberPath, StringLiteral(path))
	}

	if q.Where != nil {
		b.sb.WriteString(" where ")
		if err := b.predicate(q.Where); err != nil {
			return SQLQuery{}, err
		}
	}

	if len(b.joinOrder) > 0 || d.GroupAlways() {
		fmt.Fprintf(&b.sb, " group by s.%s", structureID)
	}

	if sorted {
		b.sb.WriteString(" order by ")
		for i, by := range q.Sort {
			if i > 0 {
				b.sb.WriteString(", ")
			}
			fmt.Fprintf(&b.sb, "%s %s", b.aliases[by.Path], by.Direction)
		}
		if take || offset {
			b.sb.WriteString(d.Page(take))
			b.params = append(b.params, Parameter{Name: OffsetRowsParam, Value: q.Paging.Offset})
			if take {
				b.params = append(b.params, Parameter{Name: TakeRowsParam, Value: q.Paging.Take})
			}
		}
	} else if take {
		b.sb.WriteString(d.Limit(q.Paging.Take))
	}

	b.sb.WriteString(";")

	return SQLQuery{SQL: b.sb.String(), Parameters: b.params}, nil
}

// column returns the quoted typed column holding values of path.
func (b *builder) column(path string) string {
	a, _ := b.schema.IndexAccessor(path)
	return b.dialect.QuoteIdent(index.Columns[index.ValueColumn(a.TypeClass())])
}

func (b *builder) predicate(p query.Predicate) error {
	switch pred := p.(type) {
	case query.Comparison:
		b.comparison(pred)
	case *query.Comparison:
		b.comparison(*pred)
	case query.And:
		return b.connective("and", pred.Predicates)
	case *query.And:
		return b.connective("and", pred.Predicates)
	case query.Or:
		return b.connective("or", pred.Predicates)
	case *query.Or:
		return b.connective("or", pred.Predicates)
	case query.Not:
		return b.not(pred)
	case *query.Not:
		return b.not(*pred)
	default:
		return fmt.Errorf("unsupported predicate type: %T", p)
	}
	return nil
}

// comparison renders "(memN.[Column] op @pK)".
func (b *builder) comparison(c query.Comparison) {
	name := fmt.Sprintf("p%d", len(b.params))
	b.params = append(b.params, Parameter{Name: name, Value: c.Value})
	fmt.Fprintf(&b.sb, "(%s.%s %s @%s)", b.aliases[c.Path], b.column(c.Path), c.Op, name)
}

// connective renders "(a and b ...)". A single operand is rendered alone.
func (b *builder) connective(op string, preds []query.Predicate) error {
	if len(preds) == 1 {
		return b.predicate(preds[0])
	}
	b.sb.WriteString("(")
	for i, sub := range preds {
		if i > 0 {
			fmt.Fprintf(&b.sb, " %s ", op)
		}
		if err := b.predicate(sub); err != nil {
			return err
		}
	}
	b.sb.WriteString(")")
	return nil
}

func (b *builder) not(n query.Not) error {
	b.sb.WriteString("(not ")
	if err := b.predicate(n.Predicate); err != nil {
		return err
	}
	b.sb.WriteString(")")
	return nil
}

package querysql

import (
	"fmt"
	"strings"
)

// Parameter names used for paging.
const (
	OffsetRowsParam = "offsetRows"
	TakeRowsParam   = "takeRows"
)

// Dialect renders the parts of a query that differ between engines.
type Dialect interface {
	// Name identifies the dialect, e.g. "sqlserver".
	Name() string

	// QuoteIdent delimits a table or column name.
	QuoteIdent(name string) string

	// Top renders the row cap placed right after "select" for a take
	// without sort, including a trailing space. Empty if unsupported.
	Top(take int) string

	// Limit renders the row cap placed at the end of a query for a take
	// without sort, including a leading space. Empty if unsupported.
	Limit(take int) string

	// Page renders the window clause that follows order by, including a
	// leading space. take reports whether @takeRows is bound.
	Page(take bool) string

	// GroupAlways reports whether results are grouped by structure id even
	// when no member is joined.
	GroupAlways() bool
}

type sqlServer struct{}

// SQLServer is the reference dialect: top(n) for unordered takes and
// offset/fetch for ordered windows.
var SQLServer Dialect = sqlServer{}

func (sqlServer) Name() string                  { return "sqlserver" }
func (sqlServer) QuoteIdent(name string) string { return bracket(name) }
func (sqlServer) Top(take int) string           { return fmt.Sprintf("top(%d) ", take) }
func (sqlServer) Limit(int) string              { return "" }
func (sqlServer) GroupAlways() bool             { return false }

func (sqlServer) Page(take bool) string {
	if take {
		return " offset @" + OffsetRowsParam + " rows fetch next @" + TakeRowsParam + " rows only"
	}
	return " offset @" + OffsetRowsParam + " rows"
}

type sqlite struct{}

// SQLite renders limit/offset paging and always groups by structure id,
// so every stored structure yields exactly one row.
var SQLite Dialect = sqlite{}

func (sqlite) Name() string                  { return "sqlite" }
func (sqlite) QuoteIdent(name string) string { return bracket(name) }
func (sqlite) Top(int) string                { return "" }
func (sqlite) Limit(take int) string         { return fmt.Sprintf(" limit %d", take) }
func (sqlite) GroupAlways() bool             { return true }

func (sqlite) Page(take bool) string {
	if take {
		return " limit @" + TakeRowsParam + " offset @" + OffsetRowsParam
	}
	return " limit -1 offset @" + OffsetRowsParam
}

// DialectByName returns the dialect registered under name.
func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "sqlserver", "mssql":
		return SQLServer, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return nil, fmt.Errorf("unknown SQL dialect %q", name)
	}
}

func bracket(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// StringLiteral renders s as a single-quoted SQL string literal.
func StringLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/structdb/internal/query"
	"github.com/roach88/structdb/internal/querysql"
	"github.com/roach88/structdb/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	StoreOptions
	Dialect string
	SQLOnly bool
}

// CompiledQuery is the --sql-only output.
type CompiledQuery struct {
	Dialect    string               `json:"dialect"`
	SQL        string               `json:"sql"`
	Parameters []querysql.Parameter `json:"parameters"`
}

// QueryResult is the output of an executed query. Items are the stored
// documents in result order.
type QueryResult struct {
	Structure string            `json:"structure"`
	Count     int               `json:"count"`
	Items     []json.RawMessage `json:"items"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{StoreOptions: StoreOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "query <file>",
		Short: "Run a YAML query against a structure set",
		Long: `Compile a YAML query and run it, printing matching documents in order.

With --sql-only the query is compiled but not executed, and --dialect selects
the SQL dialect to print (sqlite or sqlserver). Queries are executed with the
sqlite dialect. Use "-" to read the query from standard input.

Examples:
  structdb query ./big-orders.yaml --db ./data.db --defs ./structures
  structdb query ./big-orders.yaml --defs ./structures --sql-only --dialect sqlserver`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required unless --sql-only)")
	cmd.Flags().StringVar(&opts.Defs, "defs", "", "directory of CUE structure definitions (required)")
	_ = cmd.MarkFlagRequired("defs")
	cmd.Flags().StringVar(&opts.Dialect, "dialect", "sqlite", "SQL dialect for --sql-only (sqlite|sqlserver)")
	cmd.Flags().BoolVar(&opts.SQLOnly, "sql-only", false, "print the compiled SQL without executing it")

	return cmd
}

func runQuery(opts *QueryOptions, file string, cmd *cobra.Command) error {
	ctx := context.Background()
	out := newFormatter(opts.RootOptions, cmd)

	dialect, err := querysql.DialectByName(opts.Dialect)
	if err != nil {
		return out.Fail(WrapExitError(ExitCommandError, ErrCodeGeneric, "invalid --dialect", err))
	}
	if !opts.SQLOnly {
		if opts.Database == "" {
			return out.Fail(NewExitError(ExitCommandError, "--db is required unless --sql-only is set"))
		}
		if dialect != querysql.SQLite {
			return out.Fail(NewExitError(ExitCommandError,
				fmt.Sprintf("queries can only be executed with the sqlite dialect, not %s", dialect.Name())))
		}
	}

	data, err := readInput(cmd, file)
	if err != nil {
		return out.Fail(err)
	}
	qf, err := query.ParseFile(data)
	if err != nil {
		return out.Fail(WrapExitError(ExitCommandError, ErrCodeInput, fmt.Sprintf("invalid query file %s", file), err))
	}

	s, err := opts.lookup(qf.Structure)
	if err != nil {
		return out.Fail(err)
	}
	q, err := qf.Build(s)
	if err != nil {
		return out.Fail(WrapExitError(ExitFailure, ErrCodeQuery, "invalid query", err))
	}

	if opts.SQLOnly {
		compiled, err := querysql.NewCompiler(querysql.WithDialect(dialect)).Compile(s, q)
		if err != nil {
			return out.Fail(queryError(err))
		}
		return out.Success(CompiledQuery{
			Dialect:    dialect.Name(),
			SQL:        compiled.SQL,
			Parameters: compiled.Parameters,
		}, formatCompiled(compiled))
	}

	st, err := opts.openStore(cmd)
	if err != nil {
		return out.Fail(err)
	}
	defer st.Close()

	result := QueryResult{Structure: s.Name(), Items: []json.RawMessage{}}
	err = st.WithTx(ctx, func(tx *store.Tx) error {
		if err := requireSynced(ctx, tx, s); err != nil {
			return err
		}
		batch, err := store.QueryAs[json.RawMessage](ctx, tx, s, q)
		if err != nil {
			return queryError(err)
		}
		items, err := batch.Collect()
		if err != nil {
			return WrapExitError(ExitCommandError, ErrCodeDatabase, "query failed", err)
		}
		for i, item := range items {
			if item == nil {
				out.VerboseLog("skipping malformed document at position %d", i)
				continue
			}
			result.Items = append(result.Items, *item)
		}
		return nil
	})
	if err != nil {
		return out.Fail(err)
	}
	result.Count = len(result.Items)

	var b strings.Builder
	for _, item := range result.Items {
		b.Write(item)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "(%d structure(s))", result.Count)
	return out.Success(result, b.String())
}

func queryError(err error) error {
	if query.IsValidationError(err) {
		return WrapExitError(ExitFailure, ErrCodeQuery, "invalid query", err)
	}
	return WrapExitError(ExitCommandError, ErrCodeDatabase, "query failed", err)
}

func formatCompiled(q querysql.SQLQuery) string {
	var b strings.Builder
	b.WriteString(q.SQL)
	for _, p := range q.Parameters {
		fmt.Fprintf(&b, "\n-- @%s = %v", p.Name, p.Value)
	}
	return b.String()
}

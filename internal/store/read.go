package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/structdb/internal/query"
	"github.com/roach88/structdb/internal/querysql"
	"github.com/roach88/structdb/internal/schema"
	"github.com/roach88/structdb/internal/serialization"
)

// GetByID returns the JSON payload of a structure, or ErrNotFound.
func (t *Tx) GetByID(ctx context.Context, s *schema.StructureSchema, id schema.StructureID) (string, error) {
	var payload string
	err := t.tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT [Json] FROM %s WHERE [StructureId] = ?", ident(s.StructureTableName())),
		id.String()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("get %s %s: %w", s.Name(), id, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("get %s %s: %w", s.Name(), id, err)
	}
	return payload, nil
}

// GetAs returns a structure decoded into T, or ErrNotFound.
func GetAs[T any](ctx context.Context, t *Tx, s *schema.StructureSchema, id schema.StructureID) (*T, error) {
	payload, err := t.GetByID(ctx, s, id)
	if err != nil {
		return nil, err
	}
	v := new(T)
	if err := (serialization.JSON{}).Deserialize(payload, v); err != nil {
		return nil, fmt.Errorf("get %s %s: decode: %w", s.Name(), id, err)
	}
	return v, nil
}

// Query compiles q with the SQLite dialect, runs it and returns a source of
// the matching JSON payloads in result order.
//
// Comparison values are normalized to the stored form of their member's
// type class first, so a DateTime in any zone or a Guid in any case matches
// the indexed value.
//
// The statement is executed before Query returns, so compile and execution
// errors surface here; the rows are read when the source is enumerated.
func (t *Tx) Query(ctx context.Context, s *schema.StructureSchema, q query.Query) (serialization.Source, error) {
	q, err := query.Normalize(q, s, t.store.converter)
	if err != nil {
		return nil, err
	}
	compiled, err := querysql.NewCompiler(querysql.WithDialect(querysql.SQLite)).Compile(s, q)
	if err != nil {
		return nil, err
	}

	t.store.logger.Debug("query", "structure_set", s.Name(), "sql", compiled.SQL, "params", len(compiled.Parameters))
	rows, err := t.tx.QueryContext(ctx, compiled.SQL, compiled.Args()...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.Name(), err)
	}

	return rowsSource(rows), nil
}

// QueryAs runs q and returns an ordered batch of items decoded into T.
// Close the batch before committing the transaction.
func QueryAs[T any](ctx context.Context, t *Tx, s *schema.StructureSchema, q query.Query, opts ...serialization.Option) (*serialization.Batch[T], error) {
	src, err := t.Query(ctx, s, q)
	if err != nil {
		return nil, err
	}
	opts = append([]serialization.Option{serialization.WithLogger(t.store.logger)}, opts...)
	return serialization.Deserialize[T](ctx, src, serialization.JSON{}, opts...), nil
}

// rowsSource yields the first column of each row. Sort key columns that
// follow it are discarded. The rows are closed when enumeration ends.
func rowsSource(rows *sql.Rows) serialization.Source {
	return func(ctx context.Context, yield func(string) bool) error {
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			return fmt.Errorf("columns: %w", err)
		}
		var payload string
		dest := make([]any, len(cols))
		dest[0] = &payload
		for i := 1; i < len(dest); i++ {
			dest[i] = new(any)
		}

		for rows.Next() {
			if err := rows.Scan(dest...); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			if !yield(payload) {
				return nil
			}
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate rows: %w", err)
		}
		return nil
	}
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/structdb/internal/index"
	"github.com/roach88/structdb/internal/schema"
	"github.com/roach88/structdb/internal/uniques"
)

// Insert stores doc as a structure of s and returns its id.
//
// If the id accessor finds no id, one is generated and assigned to doc,
// which requires the accessor to implement schema.IDAssigner. The JSON
// payload, the index rows and the unique records are written in the
// transaction. A duplicate unique value across structures fails with an
// error for which IsUniqueViolation is true.
func (t *Tx) Insert(ctx context.Context, s *schema.StructureSchema, doc any) (schema.StructureID, error) {
	id, err := t.resolveID(s, doc)
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", s.Name(), err)
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("insert %s %s: marshal: %w", s.Name(), id, err)
	}

	_, err = t.tx.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s ([StructureId], [Json]) VALUES (?, ?)", ident(s.StructureTableName())),
		id.String(), string(payload))
	if err != nil {
		return "", fmt.Errorf("insert %s %s: %w", s.Name(), id, err)
	}

	entries, err := index.Extract(s, id, doc)
	if err != nil {
		return "", fmt.Errorf("insert %s %s: %w", s.Name(), id, err)
	}
	rows, err := t.bulkLoadIndexes(ctx, s, index.NewReader(slices.Values(entries), t.store.converter))
	if err != nil {
		return "", fmt.Errorf("insert %s %s: %w", s.Name(), id, err)
	}

	records, err := uniques.Build(s, id, doc, t.store.converter)
	if err != nil {
		return "", fmt.Errorf("insert %s %s: %w", s.Name(), id, err)
	}
	if err := t.insertUniques(ctx, s, records); err != nil {
		return "", fmt.Errorf("insert %s %s: %w", s.Name(), id, err)
	}

	t.store.logger.Debug("structure inserted",
		"structure_set", s.Name(),
		"id", id,
		"index_rows", rows,
		"unique_rows", len(records),
	)
	return id, nil
}

func (t *Tx) resolveID(s *schema.StructureSchema, doc any) (schema.StructureID, error) {
	id, err := s.IdAccessor().ID(doc)
	if err != nil {
		return "", err
	}
	if !id.IsEmpty() {
		return id, nil
	}

	assigner, ok := s.IdAccessor().(schema.IDAssigner)
	if !ok {
		return "", fmt.Errorf("structure has no id and %T cannot assign one", s.IdAccessor())
	}
	id = t.store.ids.Generate()
	if err := assigner.AssignID(doc, id); err != nil {
		return "", err
	}
	return id, nil
}

// bulkLoadIndexes pulls rows from r column by column into one prepared
// insert and returns the number of rows written.
func (t *Tx) bulkLoadIndexes(ctx context.Context, s *schema.StructureSchema, r *index.Reader) (int, error) {
	defer r.Close()

	cols := make([]string, r.FieldCount())
	marks := make([]string, r.FieldCount())
	for i := range cols {
		cols[i] = ident(index.Columns[i])
		marks[i] = "?"
	}
	stmt, err := t.tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		ident(s.IndexesTableName()), strings.Join(cols, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return 0, fmt.Errorf("prepare index insert: %w", err)
	}
	defer stmt.Close()

	var n int
	for r.Next() {
		row, err := r.Values()
		if err != nil {
			return n, err
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return n, fmt.Errorf("insert index row: %w", err)
		}
		n++
	}
	if err := r.Err(); err != nil {
		return n, err
	}
	return n, nil
}

func (t *Tx) insertUniques(ctx context.Context, s *schema.StructureSchema, records []uniques.Record) error {
	if len(records) == 0 {
		return nil
	}

	stmt, err := t.tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s ([StructureId], [UqStructureId], [UqMemberPath], [UqValue]) VALUES (?, ?, ?, ?)",
		ident(s.UniquesTableName())))
	if err != nil {
		return fmt.Errorf("prepare unique insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var uqID any
		if !rec.IsPerType() {
			uqID = rec.UqStructureID.String()
		}
		if _, err := stmt.ExecContext(ctx, rec.StructureID.String(), uqID, rec.MemberPath, rec.Value); err != nil {
			return fmt.Errorf("insert unique %s=%q: %w", rec.MemberPath, rec.Value, err)
		}
	}
	return nil
}

// DeleteByID deletes a structure. Its index and unique rows are removed
// by cascade. Returns ErrNotFound if no structure has the id.
func (t *Tx) DeleteByID(ctx context.Context, s *schema.StructureSchema, id schema.StructureID) error {
	res, err := t.tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE [StructureId] = ?", ident(s.StructureTableName())),
		id.String())
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", s.Name(), id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", s.Name(), id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s %s: %w", s.Name(), id, ErrNotFound)
	}
	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/structdb/internal/querysql"
	"github.com/roach88/structdb/internal/schema"
	"github.com/roach88/structdb/internal/uniques"
)

// StructureSet is the stored metadata of one structure set.
type StructureSet struct {
	Name    string
	Hash    string
	IDPath  string
	Version int64 // incremented on every hash change
}

// UpsertResult reports what UpsertStructureSet changed.
type UpsertResult struct {
	Created bool
	Updated bool // stored hash differed and was replaced
	Sync    uniques.SyncResult
}

// UpsertStructureSet provisions the tables of s and records its hash.
//
// When the stored hash differs from s.Hash(), unique records for member
// paths no longer indexed by s are removed in the same transaction.
func (t *Tx) UpsertStructureSet(ctx context.Context, s *schema.StructureSchema) (UpsertResult, error) {
	for _, stmt := range structureSetDDL(s) {
		if _, err := t.tx.ExecContext(ctx, stmt); err != nil {
			return UpsertResult{}, fmt.Errorf("upsert structure set %s: %w", s.Name(), err)
		}
	}

	stored, err := t.StructureSet(ctx, s.Name())
	switch {
	case errors.Is(err, ErrNotFound):
		_, err = t.tx.ExecContext(ctx, `
			INSERT INTO structdb_structure_sets (name, hash, id_path, version)
			VALUES (?, ?, ?, 1)
		`, s.Name(), s.Hash(), s.IdAccessor().Path())
		if err != nil {
			return UpsertResult{}, fmt.Errorf("upsert structure set %s: %w", s.Name(), err)
		}
		t.store.logger.Info("structure set created", "structure_set", s.Name(), "hash", s.Hash())
		return UpsertResult{Created: true}, nil
	case err != nil:
		return UpsertResult{}, fmt.Errorf("upsert structure set %s: %w", s.Name(), err)
	}

	if stored.Hash == s.Hash() {
		return UpsertResult{}, nil
	}

	syncer := uniques.NewSynchronizer(t, uniques.WithLogger(t.store.logger))
	res, err := syncer.Synchronize(ctx, s)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("upsert structure set %s: %w", s.Name(), err)
	}

	_, err = t.tx.ExecContext(ctx, `
		UPDATE structdb_structure_sets
		SET hash = ?, id_path = ?, version = version + 1
		WHERE name = ?
	`, s.Hash(), s.IdAccessor().Path(), s.Name())
	if err != nil {
		return UpsertResult{}, fmt.Errorf("upsert structure set %s: %w", s.Name(), err)
	}

	t.store.logger.Info("structure set schema changed",
		"structure_set", s.Name(),
		"old_hash", stored.Hash,
		"new_hash", s.Hash(),
	)
	return UpsertResult{Updated: true, Sync: res}, nil
}

// StructureSet returns the stored metadata for name, or ErrNotFound.
func (t *Tx) StructureSet(ctx context.Context, name string) (StructureSet, error) {
	var set StructureSet
	err := t.tx.QueryRowContext(ctx, `
		SELECT name, hash, id_path, version
		FROM structdb_structure_sets
		WHERE name = ?
	`, name).Scan(&set.Name, &set.Hash, &set.IDPath, &set.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return StructureSet{}, fmt.Errorf("structure set %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return StructureSet{}, fmt.Errorf("read structure set %s: %w", name, err)
	}
	return set, nil
}

// StructureSets lists stored structure sets ordered by name.
func (t *Tx) StructureSets(ctx context.Context) ([]StructureSet, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT name, hash, id_path, version
		FROM structdb_structure_sets
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query structure sets: %w", err)
	}
	defer rows.Close()

	sets := []StructureSet{}
	for rows.Next() {
		var set StructureSet
		if err := rows.Scan(&set.Name, &set.Hash, &set.IDPath, &set.Version); err != nil {
			return nil, fmt.Errorf("scan structure set: %w", err)
		}
		sets = append(sets, set)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate structure sets: %w", err)
	}
	return sets, nil
}

// DropStructureSet drops the tables and metadata of s.
func (t *Tx) DropStructureSet(ctx context.Context, s *schema.StructureSchema) error {
	stmts := []string{
		"DROP TABLE IF EXISTS " + ident(s.UniquesTableName()),
		"DROP TABLE IF EXISTS " + ident(s.IndexesTableName()),
		"DROP TABLE IF EXISTS " + ident(s.StructureTableName()),
	}
	for _, stmt := range stmts {
		if _, err := t.tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("drop structure set %s: %w", s.Name(), err)
		}
	}
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM structdb_structure_sets WHERE name = ?`, s.Name()); err != nil {
		return fmt.Errorf("drop structure set %s: %w", s.Name(), err)
	}
	t.store.logger.Info("structure set dropped", "structure_set", s.Name())
	return nil
}

// ForEachUniqueMemberPath implements uniques.Store.
func (t *Tx) ForEachUniqueMemberPath(ctx context.Context, s *schema.StructureSchema, fn func(path string) error) error {
	rows, err := t.tx.QueryContext(ctx, fmt.Sprintf(
		"SELECT DISTINCT [UqMemberPath] FROM %s", ident(s.UniquesTableName())))
	if err != nil {
		return fmt.Errorf("query unique member paths: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return fmt.Errorf("scan unique member path: %w", err)
		}
		if err := fn(path); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate unique member paths: %w", err)
	}
	return nil
}

// DeleteUniquesByMemberPaths implements uniques.Store. The paths are
// rendered as a literal IN list.
func (t *Tx) DeleteUniquesByMemberPaths(ctx context.Context, s *schema.StructureSchema, paths []string) (int64, error) {
	if len(paths) == 0 {
		return 0, nil
	}

	literals := make([]string, len(paths))
	for i, p := range paths {
		literals[i] = querysql.StringLiteral(p)
	}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE [UqMemberPath] IN (%s)",
		ident(s.UniquesTableName()), strings.Join(literals, ", "))

	t.store.logger.Debug("deleting unique records", "structure_set", s.Name(), "sql", stmt)
	res, err := t.tx.ExecContext(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("delete unique records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete unique records: %w", err)
	}
	return n, nil
}

// structureSetDDL returns the idempotent DDL for the three tables of s.
func structureSetDDL(s *schema.StructureSchema) []string {
	structure := ident(s.StructureTableName())
	indexes := ident(s.IndexesTableName())
	uqs := ident(s.UniquesTableName())

	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			[StructureId] TEXT PRIMARY KEY COLLATE BINARY,
			[Json] TEXT NOT NULL
		)`, structure),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			[StructureId] TEXT NOT NULL REFERENCES %s([StructureId]) ON DELETE CASCADE,
			[MemberPath] TEXT NOT NULL,
			[StringValue] TEXT,
			[IntegerValue] INTEGER,
			[FractalValue] REAL,
			[DateTimeValue] DATETIME,
			[BoolValue] BOOLEAN,
			[GuidValue] TEXT
		)`, indexes, structure),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s([MemberPath], [StructureId])`,
			ident("IX_"+s.IndexesTableName()+"_MemberPath"), indexes),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s([StructureId])`,
			ident("IX_"+s.IndexesTableName()+"_StructureId"), indexes),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			[StructureId] TEXT NOT NULL REFERENCES %s([StructureId]) ON DELETE CASCADE,
			[UqStructureId] TEXT,
			[UqMemberPath] TEXT NOT NULL,
			[UqValue] TEXT NOT NULL
		)`, uqs, structure),
		fmt.Sprintf(`CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s([UqMemberPath], [UqValue])`,
			ident("UQ_"+s.UniquesTableName()), uqs),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s([StructureId])`,
			ident("IX_"+s.UniquesTableName()+"_StructureId"), uqs),
	}
}

var _ uniques.Store = (*Tx)(nil)

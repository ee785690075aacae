package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/structdb/internal/accessor"
	"github.com/roach88/structdb/internal/schema"
	"github.com/roach88/structdb/internal/store"
)

// InsertResult lists the ids of inserted structures in input order.
type InsertResult struct {
	Structure string   `json:"structure"`
	IDs       []string `json:"ids"`
}

// NewInsertCommand creates the insert command.
func NewInsertCommand(rootOpts *RootOptions) *cobra.Command {
	return newInsertCommand(&StoreOptions{RootOptions: rootOpts})
}

func newInsertCommand(opts *StoreOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insert <structure> <file>...",
		Short: "Insert JSON documents into a structure set",
		Long: `Insert JSON documents into a structure set.

Each file holds one or more JSON objects, or a JSON array of objects. Use "-"
to read standard input. Documents without an id are assigned a generated one.
All documents are inserted in one transaction; a unique violation rolls back
the whole batch.

Examples:
  structdb insert Order ./orders.json --db ./data.db --defs ./structures
  cat order.json | structdb insert Order - --db ./data.db --defs ./structures`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsert(opts, args[0], args[1:], cmd)
		},
	}
	opts.bind(cmd, true)

	return cmd
}

func runInsert(opts *StoreOptions, name string, files []string, cmd *cobra.Command) error {
	ctx := context.Background()
	out := newFormatter(opts.RootOptions, cmd)

	s, err := opts.lookup(name)
	if err != nil {
		return out.Fail(err)
	}

	var docs []accessor.Document
	for _, file := range files {
		data, err := readInput(cmd, file)
		if err != nil {
			return out.Fail(err)
		}
		decoded, err := accessor.DecodeDocuments(data)
		if err != nil {
			return out.Fail(WrapExitError(ExitCommandError, ErrCodeInput, fmt.Sprintf("invalid JSON in %s", file), err))
		}
		docs = append(docs, decoded...)
	}

	st, err := opts.openStore(cmd)
	if err != nil {
		return out.Fail(err)
	}
	defer st.Close()

	result := InsertResult{Structure: name, IDs: make([]string, 0, len(docs))}
	err = st.WithTx(ctx, func(tx *store.Tx) error {
		if err := requireSynced(ctx, tx, s); err != nil {
			return err
		}
		for _, doc := range docs {
			id, err := tx.Insert(ctx, s, doc)
			if err != nil {
				return insertError(s, err)
			}
			result.IDs = append(result.IDs, id.String())
			out.VerboseLog("inserted %s %s", name, id)
		}
		return nil
	})
	if err != nil {
		return out.Fail(err)
	}

	return out.Success(result, fmt.Sprintf("✓ Inserted %d %s structure(s)", len(result.IDs), name))
}

func insertError(s *schema.StructureSchema, err error) error {
	switch {
	case store.IsUniqueViolation(err):
		return WrapExitError(ExitFailure, ErrCodeUnique, fmt.Sprintf("unique constraint violated in %s", s.Name()), err)
	default:
		return WrapExitError(ExitCommandError, ErrCodeDatabase, "insert failed", err)
	}
}

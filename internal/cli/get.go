package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/structdb/internal/schema"
	"github.com/roach88/structdb/internal/store"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get <structure> <id>",
		Short: "Print a stored document by id",
		Long: `Print the JSON document stored under an id.

Exits with code 1 when no such structure exists.

Example:
  structdb get Order 0190c3a4-0000-7000-8000-000000000001 --db ./data.db --defs ./structures`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(opts, args[0], schema.StructureID(args[1]), cmd)
		},
	}
	opts.bind(cmd, true)

	return cmd
}

func runGet(opts *StoreOptions, name string, id schema.StructureID, cmd *cobra.Command) error {
	ctx := context.Background()
	out := newFormatter(opts.RootOptions, cmd)

	s, err := opts.lookup(name)
	if err != nil {
		return out.Fail(err)
	}

	st, err := opts.openStore(cmd)
	if err != nil {
		return out.Fail(err)
	}
	defer st.Close()

	var payload string
	err = st.WithTx(ctx, func(tx *store.Tx) error {
		if err := requireSynced(ctx, tx, s); err != nil {
			return err
		}
		payload, err = tx.GetByID(ctx, s, id)
		return err
	})
	if err != nil {
		return out.Fail(lookupError(err, name, id))
	}

	return out.Success(json.RawMessage(payload), payload)
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <structure> <id>",
		Short: "Delete a stored document by id",
		Long: `Delete a structure together with its index rows and unique values.

Example:
  structdb delete Order 0190c3a4-0000-7000-8000-000000000001 --db ./data.db --defs ./structures`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(opts, args[0], schema.StructureID(args[1]), cmd)
		},
	}
	opts.bind(cmd, true)

	return cmd
}

func runDelete(opts *StoreOptions, name string, id schema.StructureID, cmd *cobra.Command) error {
	ctx := context.Background()
	out := newFormatter(opts.RootOptions, cmd)

	s, err := opts.lookup(name)
	if err != nil {
		return out.Fail(err)
	}

	st, err := opts.openStore(cmd)
	if err != nil {
		return out.Fail(err)
	}
	defer st.Close()

	err = st.WithTx(ctx, func(tx *store.Tx) error {
		if err := requireSynced(ctx, tx, s); err != nil {
			return err
		}
		return tx.DeleteByID(ctx, s, id)
	})
	if err != nil {
		return out.Fail(lookupError(err, name, id))
	}

	return out.Success(map[string]string{"structure": name, "id": id.String()},
		fmt.Sprintf("✓ Deleted %s %s", name, id))
}

// lookupError keeps an ExitError, reports a missing structure as a failure
// and anything else as a database error.
func lookupError(err error, name string, id schema.StructureID) error {
	var exitErr *ExitError
	switch {
	case errors.As(err, &exitErr):
		return err
	case errors.Is(err, store.ErrNotFound):
		return WrapExitError(ExitFailure, ErrCodeNotFound, fmt.Sprintf("%s %s not found", name, id), err)
	default:
		return WrapExitError(ExitCommandError, ErrCodeDatabase, "database error", err)
	}
}

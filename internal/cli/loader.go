package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/structdb/internal/definition"
	"github.com/roach88/structdb/internal/schema"
	"github.com/roach88/structdb/internal/store"
)

// StoreOptions are the flags shared by commands that open a database.
type StoreOptions struct {
	*RootOptions
	Database string
	Defs     string

	// IDGenerator overrides structure id generation (for testing).
	IDGenerator store.IDGenerator
}

func (o *StoreOptions) bind(cmd *cobra.Command, needDefs bool) {
	cmd.Flags().StringVar(&o.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	if needDefs {
		cmd.Flags().StringVar(&o.Defs, "defs", "", "directory of CUE structure definitions (required)")
		_ = cmd.MarkFlagRequired("defs")
	}
}

// logger writes to the command's stderr; debug level when verbose.
func (o *StoreOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func (o *StoreOptions) openStore(cmd *cobra.Command) (*store.Store, error) {
	storeOpts := []store.Option{store.WithLogger(o.logger(cmd))}
	if o.IDGenerator != nil {
		storeOpts = append(storeOpts, store.WithIDGenerator(o.IDGenerator))
	}
	st, err := store.Open(o.Database, storeOpts...)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	return st, nil
}

// loadRegistry compiles the definitions directory into a registry.
func (o *StoreOptions) loadRegistry() (*schema.Registry, error) {
	schemas, err := definition.LoadDir(o.Defs)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeDefinitions, "failed to load definitions", err)
	}
	return schema.NewRegistry(schemas...), nil
}

// lookup resolves a structure name against the definitions.
func (o *StoreOptions) lookup(name string) (*schema.StructureSchema, error) {
	reg, err := o.loadRegistry()
	if err != nil {
		return nil, err
	}
	s, err := reg.Get(name)
	if err != nil {
		return nil, WrapExitError(ExitFailure, ErrCodeNotFound,
			fmt.Sprintf("structure %s is not defined in %s", name, o.Defs), err)
	}
	return s, nil
}

// readInput reads path, or the command's stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, ErrCodeInput, fmt.Sprintf("failed to read %s", path), err)
	}
	return data, nil
}

// requireSynced fails unless the stored structure set of s exists and was
// provisioned from the same definition.
func requireSynced(ctx context.Context, tx *store.Tx, s *schema.StructureSchema) error {
	set, err := tx.StructureSet(ctx, s.Name())
	if errors.Is(err, store.ErrNotFound) {
		return WrapExitError(ExitFailure, ErrCodeNotFound,
			fmt.Sprintf("structure set %s does not exist; run sync first", s.Name()), err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeDatabase, "failed to read structure set", err)
	}
	if set.Hash != s.Hash() {
		return NewExitError(ExitFailure,
			fmt.Sprintf("structure set %s was synced from a different definition; run sync first", s.Name()))
	}
	return nil
}

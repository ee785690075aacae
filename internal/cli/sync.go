package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/structdb/internal/store"
)

// SyncResult reports the provisioning outcome of one structure set.
type SyncResult struct {
	Name         string   `json:"name"`
	Hash         string   `json:"hash"`
	Status       string   `json:"status"` // "created" | "updated" | "unchanged"
	DroppedPaths []string `json:"dropped_paths,omitempty"`
	DeletedRows  int64    `json:"deleted_rows,omitempty"`
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Provision structure sets from CUE definitions",
		Long: `Create the tables of every defined structure and record its schema hash.

When a definition changed since the last sync, unique values stored for
member paths that are no longer indexed are deleted. All structure sets are
synced in one transaction.

Example:
  structdb sync --db ./data.db --defs ./structures`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(opts, cmd)
		},
	}
	opts.bind(cmd, true)

	return cmd
}

func runSync(opts *StoreOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	out := newFormatter(opts.RootOptions, cmd)

	reg, err := opts.loadRegistry()
	if err != nil {
		return out.Fail(err)
	}

	st, err := opts.openStore(cmd)
	if err != nil {
		return out.Fail(err)
	}
	defer st.Close()

	results := make([]SyncResult, 0, len(reg.Names()))
	err = st.WithTx(ctx, func(tx *store.Tx) error {
		for _, name := range reg.Names() {
			s, err := reg.Get(name)
			if err != nil {
				return err
			}
			res, err := tx.UpsertStructureSet(ctx, s)
			if err != nil {
				return err
			}

			r := SyncResult{Name: name, Hash: s.Hash(), Status: "unchanged"}
			switch {
			case res.Created:
				r.Status = "created"
			case res.Updated:
				r.Status = "updated"
				r.DroppedPaths = res.Sync.DroppedPaths
				r.DeletedRows = res.Sync.DeletedRows
			}
			results = append(results, r)
			out.VerboseLog("%s: %s (%s)", name, r.Status, s.Hash())
		}
		return nil
	})
	if err != nil {
		return out.Fail(WrapExitError(ExitCommandError, ErrCodeDatabase, "sync failed", err))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✓ Synced %d structure set(s)", len(results))
	for _, r := range results {
		fmt.Fprintf(&b, "\n  %s: %s", r.Name, r.Status)
		if len(r.DroppedPaths) > 0 {
			fmt.Fprintf(&b, ", dropped uniques for %s (%d rows)", strings.Join(r.DroppedPaths, ", "), r.DeletedRows)
		}
	}
	return out.Success(results, b.String())
}

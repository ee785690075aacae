package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/structdb/internal/schema"
	"github.com/roach88/structdb/internal/store"
)

// SetInfo describes one stored structure set.
type SetInfo struct {
	Name    string `json:"name"`
	Hash    string `json:"hash"`
	IDPath  string `json:"id_path"`
	Version int64  `json:"version"`
	State   string `json:"state,omitempty"` // "current" | "stale" | "undefined", with --defs
}

// NewSetsCommand creates the sets command.
func NewSetsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sets",
		Short: "List stored structure sets",
		Long: `List the structure sets recorded in the database.

With --defs, each set is compared against the definitions: "stale" sets were
synced from a different definition and "undefined" sets have none.

Examples:
  structdb sets --db ./data.db
  structdb sets --db ./data.db --defs ./structures --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSets(opts, cmd)
		},
	}
	opts.bind(cmd, false)
	cmd.Flags().StringVar(&opts.Defs, "defs", "", "directory of CUE structure definitions")

	return cmd
}

func runSets(opts *StoreOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	out := newFormatter(opts.RootOptions, cmd)

	var reg *schema.Registry
	if opts.Defs != "" {
		var err error
		if reg, err = opts.loadRegistry(); err != nil {
			return out.Fail(err)
		}
	}

	st, err := opts.openStore(cmd)
	if err != nil {
		return out.Fail(err)
	}
	defer st.Close()

	var sets []store.StructureSet
	err = st.WithTx(ctx, func(tx *store.Tx) error {
		sets, err = tx.StructureSets(ctx)
		return err
	})
	if err != nil {
		return out.Fail(WrapExitError(ExitCommandError, ErrCodeDatabase, "failed to list structure sets", err))
	}

	infos := make([]SetInfo, 0, len(sets))
	for _, set := range sets {
		info := SetInfo{Name: set.Name, Hash: set.Hash, IDPath: set.IDPath, Version: set.Version}
		if reg != nil {
			info.State = "current"
			if s, err := reg.Get(set.Name); err != nil {
				info.State = "undefined"
			} else if s.Hash() != set.Hash {
				info.State = "stale"
			}
		}
		infos = append(infos, info)
	}

	if len(infos) == 0 {
		return out.Success(infos, "No structure sets found.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d structure set(s)", len(infos))
	for _, info := range infos {
		fmt.Fprintf(&b, "\n  %s  v%d  id=%s  %s", info.Name, info.Version, info.IDPath, info.Hash[:12])
		if info.State != "" {
			fmt.Fprintf(&b, "  %s", info.State)
		}
	}
	return out.Success(infos, b.String())
}

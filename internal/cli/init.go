package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty structdb database",
		Long: `Create a SQLite database with the structdb metadata table.

Running init against an existing database is a no-op.

Example:
  structdb init --db ./data.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}
	opts.bind(cmd, false)

	return cmd
}

func runInit(opts *StoreOptions, cmd *cobra.Command) error {
	out := newFormatter(opts.RootOptions, cmd)

	st, err := opts.openStore(cmd)
	if err != nil {
		return out.Fail(err)
	}
	if err := st.Close(); err != nil {
		return out.Fail(WrapExitError(ExitCommandError, ErrCodeDatabase, "failed to close database", err))
	}

	return out.Success(map[string]string{"database": opts.Database},
		fmt.Sprintf("✓ Initialized %s", opts.Database))
}

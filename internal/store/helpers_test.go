package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/structdb/internal/accessor"
	"github.com/roach88/structdb/internal/schema"
	"github.com/roach88/structdb/internal/testutil"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	opts = append([]Option{WithLogger(testutil.DiscardLogger())}, opts...)
	s, err := Open(path, opts...)
	require.NoError(t, err, "Open() failed")
	t.Cleanup(func() { s.Close() })
	return s
}

// provision creates the tables of each schema in its own transaction.
func provision(t *testing.T, st *Store, schemas ...*schema.StructureSchema) {
	t.Helper()
	err := st.WithTx(context.Background(), func(tx *Tx) error {
		for _, s := range schemas {
			if _, err := tx.UpsertStructureSet(context.Background(), s); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func doc(t *testing.T, src string) accessor.Document {
	t.Helper()
	d, err := accessor.DecodeDocument([]byte(src))
	require.NoError(t, err)
	return d
}

func insert(t *testing.T, st *Store, s *schema.StructureSchema, src string) schema.StructureID {
	t.Helper()
	var id schema.StructureID
	err := st.WithTx(context.Background(), func(tx *Tx) error {
		var err error
		id, err = tx.Insert(context.Background(), s, doc(t, src))
		return err
	})
	require.NoError(t, err)
	return id
}

func countRows(t *testing.T, st *Store, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, st.DB().QueryRow(query, args...).Scan(&n))
	return n
}

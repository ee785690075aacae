package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/structdb/internal/testutil"
	"github.com/roach88/structdb/internal/uniques"
)

func TestUpsertStructureSet_CreatesTablesAndMetadata(t *testing.T) {
	st := createTestStore(t)
	ctx := context.Background()
	s := testutil.UniqueOrderSchema()

	err := st.WithTx(ctx, func(tx *Tx) error {
		res, err := tx.UpsertStructureSet(ctx, s)
		require.NoError(t, err)
		assert.True(t, res.Created)
		assert.False(t, res.Updated)

		set, err := tx.StructureSet(ctx, "UniqueOrder")
		require.NoError(t, err)
		assert.Equal(t, StructureSet{Name: "UniqueOrder", Hash: s.Hash(), IDPath: "StructureId", Version: 1}, set)
		return nil
	})
	require.NoError(t, err)

	for _, table := range []string{"UniqueOrderStructure", "UniqueOrderIndexes", "UniqueOrderUniques"} {
		assert.Equal(t, 1, countRows(t, st,
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table), table)
	}
}

func TestUpsertStructureSet_UnchangedHashIsNoop(t *testing.T) {
	st := createTestStore(t)
	ctx := context.Background()
	provision(t, st, testutil.UniqueOrderSchema())

	err := st.WithTx(ctx, func(tx *Tx) error {
		res, err := tx.UpsertStructureSet(ctx, testutil.UniqueOrderSchema())
		require.NoError(t, err)
		assert.Equal(t, UpsertResult{}, res)
		return nil
	})
	require.NoError(t, err)
}

func TestUpsertStructureSet_SchemaDriftDropsOrphanedUniques(t *testing.T) {
	st := createTestStore(t)
	ctx := context.Background()
	provision(t, st, testutil.UniqueOrderSchema())

	insert(t, st, testutil.UniqueOrderSchema(),
		`{"StructureId":"o1","OrderNo":"O1","Lines":[{"ProductNo":"P1"},{"ProductNo":"P2"}]}`)
	insert(t, st, testutil.UniqueOrderSchema(),
		`{"StructureId":"o2","OrderNo":"O2","Lines":[{"ProductNo":"P3"}]}`)
	require.Equal(t, 5, countRows(t, st, "SELECT COUNT(*) FROM [UniqueOrderUniques]"))

	err := st.WithTx(ctx, func(tx *Tx) error {
		res, err := tx.UpsertStructureSet(ctx, testutil.UniqueOrderSchemaWithoutLines())
		require.NoError(t, err)
		assert.True(t, res.Updated)
		assert.Equal(t, uniques.SyncResult{DroppedPaths: []string{"Lines.ProductNo"}, DeletedRows: 3}, res.Sync)

		set, err := tx.StructureSet(ctx, "UniqueOrder")
		require.NoError(t, err)
		assert.Equal(t, testutil.UniqueOrderSchemaWithoutLines().Hash(), set.Hash)
		assert.Equal(t, int64(2), set.Version)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 0, countRows(t, st,
		"SELECT COUNT(*) FROM [UniqueOrderUniques] WHERE [UqMemberPath] = 'Lines.ProductNo'"))
	assert.Equal(t, 2, countRows(t, st,
		"SELECT COUNT(*) FROM [UniqueOrderUniques] WHERE [UqMemberPath] = 'OrderNo'"))

	// Same schema again: nothing left to drop.
	err = st.WithTx(ctx, func(tx *Tx) error {
		res, err := tx.UpsertStructureSet(ctx, testutil.UniqueOrderSchemaWithoutLines())
		require.NoError(t, err)
		assert.False(t, res.Updated)
		return nil
	})
	require.NoError(t, err)
}

func TestSynchronize_AgainstStoreIsIdempotent(t *testing.T) {
	st := createTestStore(t)
	ctx := context.Background()
	provision(t, st, testutil.UniqueOrderSchema())
	insert(t, st, testutil.UniqueOrderSchema(),
		`{"StructureId":"o1","OrderNo":"O1","Lines":[{"ProductNo":"P123"}]}`)

	current := testutil.UniqueOrderSchemaWithoutLines()
	err := st.WithTx(ctx, func(tx *Tx) error {
		syncer := uniques.NewSynchronizer(tx, uniques.WithLogger(testutil.DiscardLogger()))

		first, err := syncer.Synchronize(ctx, current)
		require.NoError(t, err)
		assert.Equal(t, []string{"Lines.ProductNo"}, first.DroppedPaths)
		assert.Equal(t, int64(1), first.DeletedRows)

		second, err := syncer.Synchronize(ctx, current)
		require.NoError(t, err)
		assert.Zero(t, second.DeletedRows)
		assert.Empty(t, second.DroppedPaths)
		return nil
	})
	require.NoError(t, err)
}

func TestDeleteUniquesByMemberPaths_EscapesLiterals(t *testing.T) {
	st := createTestStore(t)
	ctx := context.Background()
	s := testutil.UniqueOrderSchema()
	provision(t, st, s)

	err := st.WithTx(ctx, func(tx *Tx) error {
		n, err := tx.DeleteUniquesByMemberPaths(ctx, s, []string{"it's", "Lines.ProductNo"})
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = tx.DeleteUniquesByMemberPaths(ctx, s, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
		return nil
	})
	require.NoError(t, err)
}

func TestDropStructureSet(t *testing.T) {
	st := createTestStore(t)
	ctx := context.Background()
	s := testutil.UniqueOrderSchema()
	provision(t, st, s, testutil.MyClassSchema())
	insert(t, st, s, `{"StructureId":"o1","OrderNo":"O1"}`)

	err := st.WithTx(ctx, func(tx *Tx) error {
		require.NoError(t, tx.DropStructureSet(ctx, s))

		_, err := tx.StructureSet(ctx, "UniqueOrder")
		assert.ErrorIs(t, err, ErrNotFound)

		sets, err := tx.StructureSets(ctx)
		require.NoError(t, err)
		require.Len(t, sets, 1)
		assert.Equal(t, "MyClass", sets[0].Name)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, 0, countRows(t, st,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name LIKE 'UniqueOrder%'"))
}

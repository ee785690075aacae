package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/structdb/internal/accessor"
	"github.com/roach88/structdb/internal/schema"
	"github.com/roach88/structdb/internal/testutil"
)

func TestNewStructureSchema_Preconditions(t *testing.T) {
	id := accessor.NewID("StructureId")

	testCases := []struct {
		name  string
		sName string
		hash  string
		id    schema.IdAccessor
		field string
	}{
		{"blank name", "  ", "h", id, "name"},
		{"empty name", "", "h", id, "name"},
		{"blank hash", "Order", "", id, "hash"},
		{"nil id accessor", "Order", "h", nil, "idAccessor"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := schema.NewStructureSchema(tc.sName, tc.hash, tc.id)
			require.Error(t, err)
			require.True(t, schema.IsValidationError(err))

			var ve *schema.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.field, ve.Field)
		})
	}
}

func TestNewStructureSchema_DefaultsToNoAccessors(t *testing.T) {
	s, err := schema.NewStructureSchema("Order", "h", accessor.NewID("StructureId"))
	require.NoError(t, err)

	assert.Empty(t, s.IndexAccessors())
	assert.Empty(t, s.UniqueIndexAccessors())
	assert.Equal(t, "Order", s.Name())
	assert.Equal(t, "h", s.Hash())
	assert.Equal(t, "StructureId", s.IdAccessor().Path())
}

func TestNewStructureSchema_UniqueSubset(t *testing.T) {
	s := testutil.NewSchema("UniqueOrder",
		accessor.NewIndex("OrderNo", schema.TypeClassString, schema.UniqueModePerType),
		accessor.NewIndex("Total", schema.TypeClassFractal, schema.UniqueModeNone),
		accessor.NewIndex("Lines.ProductNo", schema.TypeClassString, schema.UniqueModePerInstance),
	)

	assert.Equal(t, []string{"OrderNo", "Total", "Lines.ProductNo"}, s.IndexPaths())

	uniques := s.UniqueIndexAccessors()
	require.Len(t, uniques, 2)
	assert.Equal(t, "OrderNo", uniques[0].Path())
	assert.Equal(t, "Lines.ProductNo", uniques[1].Path())

	for _, u := range uniques {
		a, ok := s.IndexAccessor(u.Path())
		require.True(t, ok, "unique accessor %s must be an index accessor", u.Path())
		assert.Same(t, u, a)
	}
}

func TestStructureSchema_ReadOnly(t *testing.T) {
	s := testutil.UniqueOrderSchema()

	accessors := s.IndexAccessors()
	accessors[0] = nil
	assert.NotNil(t, s.IndexAccessors()[0], "returned slices are copies")
}

func TestNewStructureSchema_RejectsDuplicatePaths(t *testing.T) {
	_, err := schema.NewStructureSchema("Order", "h", accessor.NewID("StructureId"),
		accessor.NewIndex("OrderNo", schema.TypeClassString, schema.UniqueModeNone),
		accessor.NewIndex("OrderNo", schema.TypeClassInteger, schema.UniqueModeNone),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "indexAccessors[1]")
}

func TestStructureSchema_TableNames(t *testing.T) {
	s := testutil.MyClassSchema()
	assert.Equal(t, "MyClassStructure", s.StructureTableName())
	assert.Equal(t, "MyClassIndexes", s.IndexesTableName())
	assert.Equal(t, "MyClassUniques", s.UniquesTableName())
}

func TestComputeHash(t *testing.T) {
	a := accessor.NewIndex("A", schema.TypeClassString, schema.UniqueModeNone)
	b := accessor.NewIndex("B", schema.TypeClassInteger, schema.UniqueModePerType)

	h1 := schema.ComputeHash("T", "Id", []schema.IndexAccessor{a, b})
	h2 := schema.ComputeHash("T", "Id", []schema.IndexAccessor{b, a})
	assert.Equal(t, h1, h2, "accessor order does not matter")
	assert.Len(t, h1, 64)

	changedMode := accessor.NewIndex("B", schema.TypeClassInteger, schema.UniqueModeNone)
	assert.NotEqual(t, h1, schema.ComputeHash("T", "Id", []schema.IndexAccessor{a, changedMode}))
	assert.NotEqual(t, h1, schema.ComputeHash("T", "Id", []schema.IndexAccessor{a}))
	assert.NotEqual(t, h1, schema.ComputeHash("U", "Id", []schema.IndexAccessor{a, b}))
}

func TestParseTypeClassAndUniqueMode(t *testing.T) {
	for _, tc := range []schema.TypeClass{
		schema.TypeClassString, schema.TypeClassEnum, schema.TypeClassInteger, schema.TypeClassFractal,
		schema.TypeClassDateTime, schema.TypeClassBool, schema.TypeClassGuid, schema.TypeClassOther,
	} {
		parsed, err := schema.ParseTypeClass(tc.String())
		require.NoError(t, err)
		assert.Equal(t, tc, parsed)
	}
	_, err := schema.ParseTypeClass("float")
	assert.Error(t, err)

	for _, m := range []schema.UniqueMode{schema.UniqueModeNone, schema.UniqueModePerType, schema.UniqueModePerInstance} {
		parsed, err := schema.ParseUniqueMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
	_, err = schema.ParseUniqueMode("global")
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := schema.NewRegistry(testutil.MyClassSchema())

	prev := r.Register(testutil.UniqueOrderSchema())
	assert.Nil(t, prev)

	prev = r.Register(testutil.UniqueOrderSchemaWithoutLines())
	require.NotNil(t, prev)
	assert.NotEqual(t, prev.Hash(), testutil.UniqueOrderSchemaWithoutLines().Hash())

	s, err := r.Get("UniqueOrder")
	require.NoError(t, err)
	assert.Len(t, s.IndexAccessors(), 1)

	_, err = r.Get("Missing")
	assert.Error(t, err)

	assert.Equal(t, []string{"MyClass", "UniqueOrder"}, r.Names())
}

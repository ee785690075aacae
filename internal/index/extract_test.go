package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/structdb/internal/accessor"
	"github.com/roach88/structdb/internal/schema"
	"github.com/roach88/structdb/internal/testutil"
)

func TestExtract(t *testing.T) {
	doc, err := accessor.DecodeDocument([]byte(`{"Int1": 42, "String1": "A", "Tags": ["x", "y"], "Bool1": null}`))
	require.NoError(t, err)

	entries, err := Extract(testutil.MyClassSchema(), "s1", doc)
	require.NoError(t, err)

	assert.Equal(t, []Entry{
		{StructureID: "s1", Path: "Int1", Value: int64(42), TypeClass: schema.TypeClassInteger},
		{StructureID: "s1", Path: "String1", Value: "A", TypeClass: schema.TypeClassString},
		{StructureID: "s1", Path: "Tags", Value: "x", TypeClass: schema.TypeClassString},
		{StructureID: "s1", Path: "Tags", Value: "y", TypeClass: schema.TypeClassString},
	}, entries)
}

func TestExtract_AccessorError(t *testing.T) {
	doc, err := accessor.DecodeDocument([]byte(`{"Int1": "not a number"}`))
	require.NoError(t, err)

	_, err = Extract(testutil.MyClassSchema(), "s1", doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MyClass.Int1")
}

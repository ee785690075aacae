package testutil

import (
	"io"
	"log/slog"

	"github.com/roach88/structdb/internal/accessor"
	"github.com/roach88/structdb/internal/schema"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewSchema builds a schema with a computed hash and a JSON id accessor
// on "StructureId".
func NewSchema(name string, accessors ...schema.IndexAccessor) *schema.StructureSchema {
	id := accessor.NewID("StructureId")
	return schema.MustStructureSchema(name, schema.ComputeHash(name, id.Path(), accessors), id, accessors...)
}

// MyClassSchema is the schema used by the query compiler golden tests:
// tables MyClassStructure / MyClassIndexes.
func MyClassSchema() *schema.StructureSchema {
	return NewSchema("MyClass",
		accessor.NewIndex("Int1", schema.TypeClassInteger, schema.UniqueModeNone),
		accessor.NewIndex("Int2", schema.TypeClassInteger, schema.UniqueModeNone),
		accessor.NewIndex("String1", schema.TypeClassString, schema.UniqueModeNone),
		accessor.NewIndex("Decimal1", schema.TypeClassFractal, schema.UniqueModeNone),
		accessor.NewIndex("DateTime1", schema.TypeClassDateTime, schema.UniqueModeNone),
		accessor.NewIndex("Bool1", schema.TypeClassBool, schema.UniqueModeNone),
		accessor.NewIndex("Guid1", schema.TypeClassGuid, schema.UniqueModeNone),
		accessor.NewIndex("Tags", schema.TypeClassString, schema.UniqueModeNone),
	)
}

// UniqueOrderSchema has a PerType OrderNo and a PerInstance Lines.ProductNo.
func UniqueOrderSchema() *schema.StructureSchema {
	return NewSchema("UniqueOrder",
		accessor.NewIndex("OrderNo", schema.TypeClassString, schema.UniqueModePerType),
		accessor.NewIndex("Lines.ProductNo", schema.TypeClassString, schema.UniqueModePerInstance),
	)
}

// UniqueOrderSchemaWithoutLines is UniqueOrderSchema after the Lines member
// was removed from the type.
func UniqueOrderSchemaWithoutLines() *schema.StructureSchema {
	return NewSchema("UniqueOrder",
		accessor.NewIndex("OrderNo", schema.TypeClassString, schema.UniqueModePerType),
	)
}

// StringIndex is a non-unique string accessor on path.
func StringIndex(path string) schema.IndexAccessor {
	return accessor.NewIndex(path, schema.TypeClassString, schema.UniqueModeNone)
}

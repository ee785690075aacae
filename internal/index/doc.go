// Package index turns documents into rows of the entity-attribute-value
// index table.
//
// Extract applies a schema's index accessors to one document and yields
// Entries. Reader materializes a stream of Entries as fixed-shape rows for
// a forward-only bulk-load sink that pulls values column by column:
//
//	r := index.NewReader(slices.Values(entries), nil)
//	defer r.Close()
//	for r.Next() {
//	    row, err := r.Values()
//	    ...
//	}
//
// A typed value is written to its typed column only. StringValue carries a
// text rendering just for classes without a typed column, so every row
// populates exactly one value column.
//
// Type-class dispatch is an exhaustive switch over schema.TypeClass; there
// is no unsupported-type failure, only the string-conversion error of a
// value that has no text form.
package index

// Package schema describes how a document type maps onto the relational
// substrate.
//
// A StructureSchema pairs a type name and structural hash with the
// capabilities that read a document: one IdAccessor and an ordered list of
// IndexAccessors. The subset of index accessors carrying a UniqueMode is
// derived once at construction; nothing is mutated afterwards.
//
// Accessors are interfaces. How they are derived from a document type is
// left to the caller; internal/accessor provides a JSON implementation.
package schema

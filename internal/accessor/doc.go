// Package accessor implements the schema accessor capabilities over
// decoded JSON documents.
//
// Member paths are dot-delimited object keys. Arrays met along the way are
// flattened, so "Lines.ProductNo" yields the ProductNo of every element of
// Lines. Leaf values are coerced to the Go type of the accessor's type class.
package accessor

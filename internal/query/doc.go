// Package query defines the abstract query model compiled by querysql.
//
// A Query is a predicate tree over member paths, an ordered sort list and a
// paging window. Paths are the member paths of a schema's index accessors;
// Validate checks a query against a schema before compilation.
//
// Predicate is a sealed interface using the marker method pattern, so the
// compiler's type switches are exhaustive:
//
//	switch p := pred.(type) {
//	case Comparison:
//	case And:
//	case Or:
//	case Not:
//	}
//
// Example:
//
//	q := query.Query{
//	    Where:  query.Eq("Int1", 42),
//	    Sort:   []query.SortBy{query.Ascending("Int1")},
//	    Paging: query.Paging{Take: 10},
//	}
package query

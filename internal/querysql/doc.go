// Package querysql compiles abstract queries to parameterized SQL over the
// structure and index tables of a structure set.
//
// Every member path the query references gets its own self-join of the
// index table, aliased mem0, mem1, ... in first-use order (predicate paths
// before sort paths). Comparison literals become @p0, @p1, ... parameters;
// paging uses @offsetRows and @takeRows. Values are never interpolated.
//
// A member path can hold several values per structure, so any query that
// joins a member groups by structure id and aggregates with min(). When a
// multi-valued member is filtered or sorted on, the least matching row of
// each structure decides its sort key.
//
// The SQLServer dialect is the reference wire format. The SQLite dialect
// renders the same query with limit/offset paging so it runs on the
// embedded store.
package querysql

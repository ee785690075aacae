// Package harness runs conformance scenarios against a structdb store.
//
// A scenario provisions structure sets from inline CUE definitions, runs a
// sequence of steps against a fresh in-memory store and checks each step's
// outcome, then evaluates assertions over the trace and the stored tables.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: order_uniques
//	description: "Unique order numbers are enforced per type"
//	definitions: |
//	  structure: Order: {
//	    id: "Id"
//	    index: {
//	      OrderNo: {type: "string", unique: "perType"}
//	      Total: {type: "fractal"}
//	    }
//	  }
//	ids: [o1, o2]
//	steps:
//	  - insert: Order
//	    documents:
//	      - {OrderNo: "A-1", Total: 10.5}
//	    expect: {ids: [o1]}
//	  - insert: Order
//	    documents:
//	      - {OrderNo: "A-1", Total: 3}
//	    expect: {error: unique}
//	  - query:
//	      structure: Order
//	      where: {path: Total, op: ">", value: 5}
//	    expect: {ids: [o1]}
//	assertions:
//	  - type: structure_count
//	    structure: Order
//	    count: 1
//	  - type: unique_values
//	    structure: Order
//	    path: OrderNo
//	    values: ["A-1"]
//
// Step kinds are define (sync and register more definitions), insert, get,
// delete and query. A step without an expect clause must succeed.
//
// # Assertion Types
//
//   - step_count: the trace has exactly N events of a step kind
//   - structure_count: a structure table has exactly N rows
//   - index_count: a structure has N index rows, optionally for one path
//   - unique_values: the unique values stored for a path, sorted
//
// # Deterministic Testing
//
// Every scenario runs on its own in-memory SQLite database with a fixed id
// generator (scenario ids, or gen-1, gen-2, ...), so traces are identical
// across runs and can be compared with golden files.
package harness

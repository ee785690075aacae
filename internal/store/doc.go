// Package store provides SQLite-backed storage for structure sets.
//
// Each structure set owns three tables:
//   - <Name>Structure: one JSON row per structure, keyed by StructureId
//   - <Name>Indexes: one row per (structure, member path, value), with the
//     value in exactly one typed column
//   - <Name>Uniques: one row per unique value, with a unique index on
//     (UqMemberPath, UqValue)
//
// Index and unique rows reference their structure with ON DELETE CASCADE.
// The structdb_structure_sets table records the schema hash each set was
// last provisioned with; a changed hash triggers unique synchronization
// inside the same transaction.
//
// All work happens in an explicit Tx. A Tx is not safe for concurrent use.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store

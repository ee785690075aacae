// Package uniques builds unique records for stored structures and keeps the
// stored records consistent with an evolving schema.
//
// Uniqueness itself is enforced by the store's unique constraint over
// (MemberPath, Value); this package only decides which records to write
// and which to drop.
package uniques

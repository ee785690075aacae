// Package value provides the canonical string-conversion service.
//
// Every index value has a text form: it fills the StringValue column of
// rows whose type class has its own typed column, and it is the stored
// value of unique records. The encoding is deterministic so equal values
// always collide in unique tables.
package value

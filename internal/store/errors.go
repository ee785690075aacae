package store

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a structure id does not exist.
var ErrNotFound = errors.New("structure not found")

// IsUniqueViolation reports whether err is a unique or primary key
// constraint failure, such as a duplicate unique value across structures.
func IsUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
		se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

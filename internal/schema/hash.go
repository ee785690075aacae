package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strings"
)

// DomainSchema prefixes schema hashes so they cannot collide with other
// content-addressed values. The version suffix allows the algorithm to change.
const DomainSchema = "structdb/schema/v1"

// ComputeHash derives a structural hash from the schema name, id path and
// the (path, type class, unique mode) of every index accessor. Accessor
// order does not affect the result.
func ComputeHash(name, idPath string, accessors []IndexAccessor) string {
	lines := make([]string, 0, len(accessors))
	for _, a := range accessors {
		lines = append(lines, strings.Join([]string{a.Path(), a.TypeClass().String(), a.UniqueMode().String()}, "\x1f"))
	}
	slices.Sort(lines)

	h := sha256.New()
	h.Write([]byte(DomainSchema))
	h.Write([]byte{0x00})
	h.Write([]byte(name))
	h.Write([]byte{0x00})
	h.Write([]byte(idPath))
	for _, line := range lines {
		h.Write([]byte{0x00})
		h.Write([]byte(line))
	}
	return hex.EncodeToString(h.Sum(nil))
}

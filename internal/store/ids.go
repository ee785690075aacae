package store

import (
	"github.com/google/uuid"

	"github.com/roach88/structdb/internal/schema"
)

// IDGenerator produces ids for structures inserted without one.
type IDGenerator interface {
	Generate() schema.StructureID
}

// UUIDv7Generator generates time-sortable UUIDv7 structure ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, so ids sort by
// creation time and index inserts stay append-mostly.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 in hyphenated form.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() schema.StructureID {
	return schema.StructureID(uuid.Must(uuid.NewV7()).String())
}

package testutil

import (
	"fmt"
	"sync"

	"github.com/roach88/structdb/internal/schema"
)

// FixedIDGenerator returns predetermined structure ids in order.
//
// This keeps stored documents and golden output deterministic.
//
// Thread-safety: safe for concurrent use via internal mutex.
type FixedIDGenerator struct {
	mu  sync.Mutex
	ids []schema.StructureID
	idx int
}

// NewFixedIDGenerator creates a generator that returns ids in order.
func NewFixedIDGenerator(ids ...string) *FixedIDGenerator {
	g := &FixedIDGenerator{}
	for _, id := range ids {
		g.ids = append(g.ids, schema.StructureID(id))
	}
	return g
}

// SequentialIDGenerator returns a generator producing "prefix-1", "prefix-2", ...
// up to n ids.
func SequentialIDGenerator(prefix string, n int) *FixedIDGenerator {
	g := &FixedIDGenerator{}
	for i := 1; i <= n; i++ {
		g.ids = append(g.ids, schema.StructureID(fmt.Sprintf("%s-%d", prefix, i)))
	}
	return g
}

// Generate returns the next predetermined id.
//
// Panics if all ids have been consumed, which means the test inserted more
// structures than it declared.
func (g *FixedIDGenerator) Generate() schema.StructureID {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedIDGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

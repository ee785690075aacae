package index

import (
	"fmt"

	"github.com/roach88/structdb/internal/schema"
)

// Extract reads every index accessor of s against doc and returns one entry
// per value found. Nil values are not indexed.
func Extract(s *schema.StructureSchema, id schema.StructureID, doc any) ([]Entry, error) {
	var entries []Entry
	for _, a := range s.IndexAccessors() {
		values, err := a.Values(doc)
		if err != nil {
			return nil, fmt.Errorf("extract %s.%s: %w", s.Name(), a.Path(), err)
		}
		for _, v := range values {
			if v == nil {
				continue
			}
			entries = append(entries, Entry{
				StructureID: id,
				Path:        a.Path(),
				Value:       v,
				TypeClass:   a.TypeClass(),
			})
		}
	}
	return entries, nil
}

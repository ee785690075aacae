package uniques

import (
	"fmt"

	"github.com/roach88/structdb/internal/schema"
	"github.com/roach88/structdb/internal/value"
)

// Record is one stored unique value.
type Record struct {
	// StructureID is the root structure the record was produced from.
	// Deleting the structure deletes its records.
	StructureID schema.StructureID
	// UqStructureID is empty for PerType records and holds the root
	// structure id for PerInstance records.
	UqStructureID schema.StructureID
	MemberPath    string
	Value         string
}

// IsPerType reports whether the record enforces type-wide uniqueness.
func (r Record) IsPerType() bool {
	return r.UqStructureID.IsEmpty()
}

// Build produces the unique records of one root structure.
//
// PerInstance values repeated inside the structure collapse to a single
// record. PerType values are not de-duplicated: a repeat is a constraint
// violation for the store to report.
func Build(s *schema.StructureSchema, id schema.StructureID, doc any, conv value.StringConverter) ([]Record, error) {
	if conv == nil {
		conv = value.CanonicalConverter{}
	}

	var records []Record
	for _, a := range s.UniqueIndexAccessors() {
		values, err := a.Values(doc)
		if err != nil {
			return nil, fmt.Errorf("uniques %s.%s: %w", s.Name(), a.Path(), err)
		}

		seen := make(map[string]struct{}, len(values))
		for _, v := range values {
			if v == nil {
				continue
			}
			text, err := conv.AsString(v)
			if err != nil {
				return nil, fmt.Errorf("uniques %s.%s: %w", s.Name(), a.Path(), err)
			}

			rec := Record{StructureID: id, MemberPath: a.Path(), Value: text}
			if a.UniqueMode() == schema.UniqueModePerInstance {
				if _, dup := seen[text]; dup {
					continue
				}
				seen[text] = struct{}{}
				rec.UqStructureID = id
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

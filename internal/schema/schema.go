package schema

import (
	"slices"
	"strings"
)

// Table name suffixes for the three tables backing one structure set.
const (
	StructureTableSuffix = "Structure"
	IndexesTableSuffix   = "Indexes"
	UniquesTableSuffix   = "Uniques"
)

// StructureSchema describes how one document type is stored and indexed.
//
// A StructureSchema is immutable after construction; accessor slices
// returned by its methods are copies.
type StructureSchema struct {
	name            string
	hash            string
	idAccessor      IdAccessor
	indexAccessors  []IndexAccessor
	uniqueAccessors []IndexAccessor
	byPath          map[string]IndexAccessor
}

// NewStructureSchema validates its inputs and derives the unique subset of
// the index accessors.
//
// Returns a *ValidationError if name or hash is blank or idAccessor is nil.
func NewStructureSchema(name, hash string, idAccessor IdAccessor, indexAccessors ...IndexAccessor) (*StructureSchema, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Message: "must not be blank"}
	}
	if strings.TrimSpace(hash) == "" {
		return nil, &ValidationError{Field: "hash", Message: "must not be blank"}
	}
	if idAccessor == nil {
		return nil, &ValidationError{Field: "idAccessor", Message: "must not be nil"}
	}

	s := &StructureSchema{
		name:           name,
		hash:           hash,
		idAccessor:     idAccessor,
		indexAccessors: make([]IndexAccessor, 0, len(indexAccessors)),
		byPath:         make(map[string]IndexAccessor, len(indexAccessors)),
	}
	for i, a := range indexAccessors {
		if a == nil {
			return nil, &ValidationError{Field: "indexAccessors", Message: "nil accessor", Index: i}
		}
		if _, dup := s.byPath[a.Path()]; dup {
			return nil, &ValidationError{Field: "indexAccessors", Message: "duplicate path " + a.Path(), Index: i}
		}
		s.byPath[a.Path()] = a
		s.indexAccessors = append(s.indexAccessors, a)
		if IsUnique(a) {
			s.uniqueAccessors = append(s.uniqueAccessors, a)
		}
	}

	return s, nil
}

// MustStructureSchema is like NewStructureSchema but panics on error.
// Use only in tests or with static input.
func MustStructureSchema(name, hash string, idAccessor IdAccessor, indexAccessors ...IndexAccessor) *StructureSchema {
	s, err := NewStructureSchema(name, hash, idAccessor, indexAccessors...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name is the structure set name, e.g. "Order".
func (s *StructureSchema) Name() string { return s.name }

// Hash identifies the shape of the schema. A changed hash means the
// stored metadata may have drifted.
func (s *StructureSchema) Hash() string { return s.hash }

// IdAccessor returns the id accessor.
func (s *StructureSchema) IdAccessor() IdAccessor { return s.idAccessor }

// IndexAccessors returns all index accessors in declaration order.
func (s *StructureSchema) IndexAccessors() []IndexAccessor {
	return slices.Clone(s.indexAccessors)
}

// UniqueIndexAccessors returns the accessors carrying a unique mode.
func (s *StructureSchema) UniqueIndexAccessors() []IndexAccessor {
	return slices.Clone(s.uniqueAccessors)
}

// IndexAccessor looks up an accessor by member path.
func (s *StructureSchema) IndexAccessor(path string) (IndexAccessor, bool) {
	a, ok := s.byPath[path]
	return a, ok
}

// IndexPaths returns the member paths of all index accessors.
func (s *StructureSchema) IndexPaths() []string {
	paths := make([]string, len(s.indexAccessors))
	for i, a := range s.indexAccessors {
		paths[i] = a.Path()
	}
	return paths
}

// StructureTableName is the table holding one JSON row per structure.
func (s *StructureSchema) StructureTableName() string { return s.name + StructureTableSuffix }

// IndexesTableName is the entity-attribute-value table of index rows.
func (s *StructureSchema) IndexesTableName() string { return s.name + IndexesTableSuffix }

// UniquesTableName is the table of unique records.
func (s *StructureSchema) UniquesTableName() string { return s.name + UniquesTableSuffix }

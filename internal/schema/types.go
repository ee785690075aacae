package schema

import "fmt"

// StructureID identifies one stored structure. It is opaque to the core;
// the default generator produces hyphenated UUIDv7 strings.
type StructureID string

// String returns the id as a plain string.
func (id StructureID) String() string {
	return string(id)
}

// IsEmpty reports whether the id has not been assigned.
func (id StructureID) IsEmpty() bool {
	return id == ""
}

// TypeClass is the closed set of value classifications attached to every
// index entry. It selects the typed column a value is stored in and the
// column a compiled query compares against.
type TypeClass int

const (
	// TypeClassString stores values in the StringValue column.
	TypeClassString TypeClass = iota + 1
	// TypeClassEnum stores the enum's name in the StringValue column.
	TypeClassEnum
	// TypeClassInteger stores values in the IntegerValue column.
	TypeClassInteger
	// TypeClassFractal stores values in the FractalValue column.
	TypeClassFractal
	// TypeClassDateTime stores values in the DateTimeValue column.
	TypeClassDateTime
	// TypeClassBool stores values in the BoolValue column.
	TypeClassBool
	// TypeClassGuid stores values in the GuidValue column.
	TypeClassGuid
	// TypeClassOther has no typed column; values are stored in
	// StringValue using the canonical string encoding.
	TypeClassOther
)

var typeClassNames = map[TypeClass]string{
	TypeClassString:   "string",
	TypeClassEnum:     "enum",
	TypeClassInteger:  "integer",
	TypeClassFractal:  "fractal",
	TypeClassDateTime: "datetime",
	TypeClassBool:     "bool",
	TypeClassGuid:     "guid",
	TypeClassOther:    "other",
}

// String returns the lower-case name used in definitions and query files.
func (tc TypeClass) String() string {
	if name, ok := typeClassNames[tc]; ok {
		return name
	}
	return fmt.Sprintf("TypeClass(%d)", int(tc))
}

// IsStringLike reports whether values of this class claim the StringValue
// column directly (as opposed to via the fallback encoding).
func (tc TypeClass) IsStringLike() bool {
	return tc == TypeClassString || tc == TypeClassEnum
}

// ParseTypeClass maps a definition name to a TypeClass.
func ParseTypeClass(name string) (TypeClass, error) {
	for tc, n := range typeClassNames {
		if n == name {
			return tc, nil
		}
	}
	return 0, fmt.Errorf("unknown type class %q", name)
}

// UniqueMode describes the uniqueness constraint carried by an index accessor.
type UniqueMode int

const (
	// UniqueModeNone means the member is indexed but not constrained.
	UniqueModeNone UniqueMode = iota
	// UniqueModePerType requires the value to be unique across all
	// structures of the type.
	UniqueModePerType
	// UniqueModePerInstance requires the value to be unique across root
	// structures; duplicates inside one root graph collapse to one record.
	UniqueModePerInstance
)

// String returns the definition name of the mode.
func (m UniqueMode) String() string {
	switch m {
	case UniqueModeNone:
		return "none"
	case UniqueModePerType:
		return "perType"
	case UniqueModePerInstance:
		return "perInstance"
	default:
		return fmt.Sprintf("UniqueMode(%d)", int(m))
	}
}

// ParseUniqueMode maps a definition name to a UniqueMode. The empty string
// is UniqueModeNone.
func ParseUniqueMode(name string) (UniqueMode, error) {
	switch name {
	case "", "none":
		return UniqueModeNone, nil
	case "perType":
		return UniqueModePerType, nil
	case "perInstance":
		return UniqueModePerInstance, nil
	default:
		return 0, fmt.Errorf("unknown unique mode %q", name)
	}
}

// IdAccessor extracts the structure id from a document.
//
// Implementations are supplied by the layer that knows the document type
// (see internal/accessor for the JSON implementation).
type IdAccessor interface {
	// Path is the member route of the id, e.g. "StructureId".
	Path() string
	// ID returns the document's id, or an empty id when unassigned.
	ID(doc any) (StructureID, error)
}

// IDAssigner is implemented by id accessors that can write a generated id
// back into a document before it is stored.
type IDAssigner interface {
	AssignID(doc any, id StructureID) error
}

// IndexAccessor extracts the values of one indexed member from a document.
type IndexAccessor interface {
	// Path is the dot-delimited member route; it is the stable key used
	// by index rows, unique records and queries.
	Path() string
	// TypeClass classifies the member's values.
	TypeClass() TypeClass
	// UniqueMode is UniqueModeNone for unconstrained members.
	UniqueMode() UniqueMode
	// Values returns every value found at Path. Multi-valued members
	// (paths crossing a collection) return one value per element.
	Values(doc any) ([]any, error)
}

// IsUnique reports whether the accessor carries a uniqueness constraint.
func IsUnique(a IndexAccessor) bool {
	return a.UniqueMode() != UniqueModeNone
}

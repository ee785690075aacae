package definition

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/structdb/internal/accessor"
	"github.com/roach88/structdb/internal/schema"
)

// DefaultIDPath is the id member of structures that do not declare one.
const DefaultIDPath = "Id"

//go:embed schema.cue
var schemaSource string

// Compile validates the structure field of root and compiles every entry
// into a StructureSchema, in declaration order.
func Compile(root cue.Value) ([]*schema.StructureSchema, error) {
	if err := root.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	structures := root.LookupPath(cue.ParsePath("structure"))
	if !structures.Exists() {
		return nil, &DefinitionError{
			Field:   "structure",
			Message: "no structures defined",
			Pos:     root.Pos(),
		}
	}

	def := root.Context().CompileString(schemaSource, cue.Filename("structdb.cue"))
	if err := def.Err(); err != nil {
		return nil, fmt.Errorf("definition schema: %w", err)
	}
	structures = structures.Unify(def.LookupPath(cue.ParsePath("#Structures")))
	if err := structures.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	iter, err := structures.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var schemas []*schema.StructureSchema
	for iter.Next() {
		s, err := CompileStructure(iter.Selector().Unquoted(), iter.Value())
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, s)
	}
	return schemas, nil
}

// CompileStructure compiles a single structure definition. The schema hash
// is derived from the compiled accessors.
func CompileStructure(name string, v cue.Value) (*schema.StructureSchema, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	idPath := DefaultIDPath
	if idVal := v.LookupPath(cue.ParsePath("id")); idVal.Exists() {
		s, err := idVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		idPath = s
	}

	accessors, err := parseIndexes(name, v)
	if err != nil {
		return nil, err
	}

	hash := schema.ComputeHash(name, idPath, accessors)
	s, err := schema.NewStructureSchema(name, hash, accessor.NewID(idPath), accessors...)
	if err != nil {
		return nil, &DefinitionError{
			Field:   "structure." + name,
			Message: err.Error(),
			Pos:     v.Pos(),
			Err:     err,
		}
	}
	return s, nil
}

func parseIndexes(name string, v cue.Value) ([]schema.IndexAccessor, error) {
	indexVal := v.LookupPath(cue.ParsePath("index"))
	if !indexVal.Exists() {
		return nil, nil
	}

	iter, err := indexVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var accessors []schema.IndexAccessor
	for iter.Next() {
		path := iter.Selector().Unquoted()
		field := fmt.Sprintf("structure.%s.index.%s", name, path)
		entry := iter.Value()

		typeVal := entry.LookupPath(cue.ParsePath("type"))
		if !typeVal.Exists() {
			return nil, &DefinitionError{Field: field, Message: "type is required", Pos: entry.Pos()}
		}
		typeName, err := typeVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		tc, err := schema.ParseTypeClass(typeName)
		if err != nil {
			return nil, &DefinitionError{Field: field + ".type", Message: err.Error(), Pos: typeVal.Pos(), Err: err}
		}

		mode := schema.UniqueModeNone
		if uniqueVal := entry.LookupPath(cue.ParsePath("unique")); uniqueVal.Exists() {
			modeName, err := uniqueVal.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			mode, err = schema.ParseUniqueMode(modeName)
			if err != nil {
				return nil, &DefinitionError{Field: field + ".unique", Message: err.Error(), Pos: uniqueVal.Pos(), Err: err}
			}
		}

		accessors = append(accessors, accessor.NewIndex(path, tc, mode))
	}
	return accessors, nil
}

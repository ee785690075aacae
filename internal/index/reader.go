package index

import (
	"fmt"
	"iter"

	"github.com/roach88/structdb/internal/schema"
	"github.com/roach88/structdb/internal/value"
)

// Column ordinals of a materialized index row. The bulk-load sink requests
// them in this order for every row.
const (
	ColStructureID = iota
	ColMemberPath
	ColStringValue
	ColIntegerValue
	ColFractalValue
	ColDateTimeValue
	ColBoolValue
	ColGuidValue
)

// Columns names the index table columns, indexed by ordinal.
var Columns = []string{
	"StructureId",
	"MemberPath",
	"StringValue",
	"IntegerValue",
	"FractalValue",
	"DateTimeValue",
	"BoolValue",
	"GuidValue",
}

// Entry is one (structure, path, value) fact extracted from a document.
type Entry struct {
	StructureID schema.StructureID
	Path        string
	Value       any
	TypeClass   schema.TypeClass
}

// Reader presents a sequence of entries as fixed-shape rows for a
// forward-only bulk-load sink.
//
// Exactly one of the six value columns is populated per row. A column that
// claims the entry's value marks the row consumed, and every later column
// request for the row resolves to nil. Entries classed as Other have no
// typed column: StringValue resolves to the canonical text of the value
// without marking the row consumed.
//
// A Reader holds only the current entry. It is not safe for concurrent use.
type Reader struct {
	next      func() (Entry, bool)
	stop      func()
	converter value.StringConverter

	current  Entry
	consumed bool
	valid    bool
	err      error
}

// NewReader creates a Reader over entries. If converter is nil the
// canonical converter is used. Call Close to release the sequence.
func NewReader(entries iter.Seq[Entry], converter value.StringConverter) *Reader {
	if converter == nil {
		converter = value.CanonicalConverter{}
	}
	next, stop := iter.Pull(entries)
	return &Reader{next: next, stop: stop, converter: converter}
}

// FieldCount is the number of columns per row.
func (r *Reader) FieldCount() int {
	return len(Columns)
}

// Next advances to the next entry and resets the consumed flag.
// Returns false when the sequence is exhausted or a conversion failed.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	r.consumed = false
	r.current, r.valid = r.next()
	return r.valid
}

// Value resolves the column at ordinal for the current row. A nil result
// means the column is absent (NULL), which is distinct from a zero value.
func (r *Reader) Value(ordinal int) (any, error) {
	if !r.valid {
		return nil, fmt.Errorf("index reader: no current row")
	}
	if ordinal < 0 || ordinal >= len(Columns) {
		return nil, fmt.Errorf("index reader: ordinal %d out of range", ordinal)
	}

	switch ordinal {
	case ColStructureID:
		return r.current.StructureID.String(), nil
	case ColMemberPath:
		return r.current.Path, nil
	}

	if r.consumed {
		return nil, nil
	}

	tc := r.current.TypeClass
	switch ordinal {
	case ColStringValue:
		if tc.IsStringLike() {
			return r.claim(), nil
		}
		if hasTypedColumn(tc) {
			return nil, nil
		}
		s, err := r.converter.AsString(r.current.Value)
		if err != nil {
			r.err = fmt.Errorf("index reader: %s: %w", r.current.Path, err)
			return nil, r.err
		}
		return s, nil
	case ColIntegerValue:
		if tc == schema.TypeClassInteger {
			return r.claim(), nil
		}
	case ColFractalValue:
		if tc == schema.TypeClassFractal {
			return r.claim(), nil
		}
	case ColDateTimeValue:
		if tc == schema.TypeClassDateTime {
			return r.claim(), nil
		}
	case ColBoolValue:
		if tc == schema.TypeClassBool {
			return r.claim(), nil
		}
	case ColGuidValue:
		if tc == schema.TypeClassGuid {
			return r.claim(), nil
		}
	}

	return nil, nil
}

// Values resolves every column of the current row in ordinal order.
func (r *Reader) Values() ([]any, error) {
	row := make([]any, len(Columns))
	for i := range row {
		v, err := r.Value(i)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}

// ValueColumn returns the ordinal of the column that stores values of tc.
// Classes without a typed column are stored as text in StringValue.
func ValueColumn(tc schema.TypeClass) int {
	switch tc {
	case schema.TypeClassInteger:
		return ColIntegerValue
	case schema.TypeClassFractal:
		return ColFractalValue
	case schema.TypeClassDateTime:
		return ColDateTimeValue
	case schema.TypeClassBool:
		return ColBoolValue
	case schema.TypeClassGuid:
		return ColGuidValue
	default:
		return ColStringValue
	}
}

// hasTypedColumn reports whether tc is stored in a column other than
// StringValue.
func hasTypedColumn(tc schema.TypeClass) bool {
	return ValueColumn(tc) != ColStringValue
}

func (r *Reader) claim() any {
	r.consumed = true
	return r.current.Value
}

// Err returns the first conversion error, if any.
func (r *Reader) Err() error {
	return r.err
}

// Close stops the underlying sequence.
func (r *Reader) Close() error {
	r.stop()
	r.valid = false
	return nil
}

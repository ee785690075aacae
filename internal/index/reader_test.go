package index

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/structdb/internal/schema"
)

var valueColumns = []int{ColStringValue, ColIntegerValue, ColFractalValue, ColDateTimeValue, ColBoolValue, ColGuidValue}

func readAll(t *testing.T, entries ...Entry) [][]any {
	t.Helper()
	r := NewReader(slices.Values(entries), nil)
	defer r.Close()

	var rows [][]any
	for r.Next() {
		row, err := r.Values()
		require.NoError(t, err)
		rows = append(rows, row)
	}
	require.NoError(t, r.Err())
	return rows
}

func TestReader_OneColumnPerTypeClass(t *testing.T) {
	when := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	guid := uuid.MustParse("bdac94c3-7fb4-4781-9612-5753dd9f9330")

	testCases := []struct {
		name    string
		entry   Entry
		column  int
		wantVal any
	}{
		{"string", Entry{"s1", "Name", "Ann", schema.TypeClassString}, ColStringValue, "Ann"},
		{"enum", Entry{"s1", "Colour", "Red", schema.TypeClassEnum}, ColStringValue, "Red"},
		{"integer", Entry{"s1", "Int1", int64(42), schema.TypeClassInteger}, ColIntegerValue, int64(42)},
		{"integer zero", Entry{"s1", "Int1", int64(0), schema.TypeClassInteger}, ColIntegerValue, int64(0)},
		{"fractal", Entry{"s1", "Total", 1.5, schema.TypeClassFractal}, ColFractalValue, 1.5},
		{"datetime", Entry{"s1", "Placed", when, schema.TypeClassDateTime}, ColDateTimeValue, when},
		{"bool false", Entry{"s1", "Paid", false, schema.TypeClassBool}, ColBoolValue, false},
		{"guid", Entry{"s1", "Ref", guid, schema.TypeClassGuid}, ColGuidValue, guid},
		{"other falls back to text", Entry{"s1", "Blob", map[string]any{"k": 1}, schema.TypeClassOther}, ColStringValue, `{"k":1}`},
		{"unset class falls back to text", Entry{"s1", "X", 7, 0}, ColStringValue, "7"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rows := readAll(t, tc.entry)
			require.Len(t, rows, 1)
			row := rows[0]

			assert.Equal(t, "s1", row[ColStructureID])
			assert.Equal(t, tc.entry.Path, row[ColMemberPath])

			populated := 0
			for _, col := range valueColumns {
				if row[col] != nil {
					populated++
				}
			}
			assert.Equal(t, 1, populated, "exactly one value column populated: %v", row)
			assert.Equal(t, tc.wantVal, row[tc.column])
		})
	}
}

func TestReader_ConsumedResetsPerRow(t *testing.T) {
	rows := readAll(t,
		Entry{"s1", "Name", "Ann", schema.TypeClassString},
		Entry{"s1", "Int1", int64(1), schema.TypeClassInteger},
		Entry{"s2", "Name", "Bob", schema.TypeClassString},
	)
	require.Len(t, rows, 3)

	assert.Equal(t, []any{"s1", "Name", "Ann", nil, nil, nil, nil, nil}, rows[0])
	assert.Equal(t, []any{"s1", "Int1", nil, int64(1), nil, nil, nil, nil}, rows[1])
	assert.Equal(t, []any{"s2", "Name", "Bob", nil, nil, nil, nil, nil}, rows[2])
}

func TestReader_ColumnsQueriedIndependently(t *testing.T) {
	r := NewReader(slices.Values([]Entry{{"s1", "Int1", int64(5), schema.TypeClassInteger}}), nil)
	defer r.Close()
	require.True(t, r.Next())

	// Out-of-order requests still see one populated column.
	v, err := r.Value(ColBoolValue)
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = r.Value(ColIntegerValue)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v)

	v, err = r.Value(ColStringValue)
	require.NoError(t, err)
	assert.Nil(t, v, "consumed row resolves later columns to absent")

	v, err = r.Value(ColMemberPath)
	require.NoError(t, err)
	assert.Equal(t, "Int1", v, "identity columns are never consumed")

	assert.False(t, r.Next())
}

func TestReader_OtherDoesNotConsume(t *testing.T) {
	r := NewReader(slices.Values([]Entry{{"s1", "Blob", "x", schema.TypeClassOther}}), nil)
	defer r.Close()
	require.True(t, r.Next())

	v, err := r.Value(ColStringValue)
	require.NoError(t, err)
	assert.Equal(t, "x", v)

	// Asking again still returns the fallback text.
	v, err = r.Value(ColStringValue)
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}

type failingConverter struct{}

func (failingConverter) AsString(any) (string, error) { return "", errors.New("no text form") }

func TestReader_ConversionErrorStopsReader(t *testing.T) {
	r := NewReader(slices.Values([]Entry{
		{"s1", "Blob", struct{}{}, schema.TypeClassOther},
		{"s1", "Name", "Ann", schema.TypeClassString},
	}), failingConverter{})
	defer r.Close()

	require.True(t, r.Next())
	_, err := r.Values()
	require.Error(t, err)
	assert.False(t, r.Next())
	assert.ErrorContains(t, r.Err(), "Blob")
}

func TestReader_ValueWithoutRow(t *testing.T) {
	r := NewReader(slices.Values([]Entry{}), nil)
	defer r.Close()

	_, err := r.Value(ColStructureID)
	assert.Error(t, err)
	assert.False(t, r.Next())
	assert.Equal(t, len(Columns), r.FieldCount())
}

func TestReader_OrdinalOutOfRange(t *testing.T) {
	r := NewReader(slices.Values([]Entry{{"s1", "Name", "Ann", schema.TypeClassString}}), nil)
	defer r.Close()
	require.True(t, r.Next())

	_, err := r.Value(len(Columns))
	assert.Error(t, err)
}

func TestValueColumn(t *testing.T) {
	testCases := []struct {
		tc   schema.TypeClass
		want string
	}{
		{schema.TypeClassString, "StringValue"},
		{schema.TypeClassEnum, "StringValue"},
		{schema.TypeClassInteger, "IntegerValue"},
		{schema.TypeClassFractal, "FractalValue"},
		{schema.TypeClassDateTime, "DateTimeValue"},
		{schema.TypeClassBool, "BoolValue"},
		{schema.TypeClassGuid, "GuidValue"},
		{schema.TypeClassOther, "StringValue"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, Columns[ValueColumn(tc.tc)], tc.tc.String())
	}
}

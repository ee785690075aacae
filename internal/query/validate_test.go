package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/structdb/internal/query"
	"github.com/roach88/structdb/internal/testutil"
)

func TestValidate_Valid(t *testing.T) {
	s := testutil.MyClassSchema()

	testCases := []struct {
		name string
		q    query.Query
	}{
		{"select all", query.Query{}},
		{"equality", query.Query{Where: query.Eq("Int1", 42)}},
		{"pointer predicate", query.Query{Where: &query.Comparison{Path: "Int1", Op: query.OpGt, Value: 1}}},
		{"nested", query.Query{Where: query.AllOf(
			query.Gte("Int1", 1),
			query.AnyOf(query.Eq("String1", "A"), query.Not{Predicate: query.Like("Tags", "x%")}),
		)}},
		{"take without sort", query.Query{Paging: query.Paging{Take: 11}}},
		{"offset with sort", query.Query{Sort: []query.SortBy{query.Descending("Int2")}, Paging: query.Paging{Offset: 5}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NoError(t, query.Validate(tc.q, s))
		})
	}
}

func TestValidate_Errors(t *testing.T) {
	s := testutil.MyClassSchema()

	testCases := []struct {
		name string
		q    query.Query
		code query.ErrorCode
		path string
	}{
		{"unknown filter path", query.Query{Where: query.Eq("Missing", 1)}, query.ErrCodeUnknownPath, "Missing"},
		{"unknown sort path", query.Query{Sort: []query.SortBy{query.Ascending("Missing")}}, query.ErrCodeUnknownPath, "Missing"},
		{"empty path", query.Query{Where: query.Eq("", 1)}, query.ErrCodeEmptyPath, ""},
		{"nil value", query.Query{Where: query.Eq("Int1", nil)}, query.ErrCodeNilValue, "Int1"},
		{"unknown operator", query.Query{Where: query.Comparison{Path: "Int1", Op: "~", Value: 1}}, query.ErrCodeInvalidOperator, "Int1"},
		{"like on integer", query.Query{Where: query.Comparison{Path: "Int1", Op: query.OpLike, Value: "4%"}}, query.ErrCodeInvalidOperator, "Int1"},
		{"empty and", query.Query{Where: query.And{}}, query.ErrCodeEmptyConnective, ""},
		{"empty not", query.Query{Where: query.Not{}}, query.ErrCodeEmptyConnective, ""},
		{"nil comparison pointer operand", query.Query{Where: query.AllOf(query.Eq("Int1", 1), (*query.Comparison)(nil))}, query.ErrCodeEmptyConnective, ""},
		{"nil and pointer operand", query.Query{Where: query.AnyOf(query.Eq("Int1", 1), (*query.And)(nil))}, query.ErrCodeEmptyConnective, ""},
		{"nil or pointer", query.Query{Where: (*query.Or)(nil)}, query.ErrCodeEmptyConnective, ""},
		{"nil not pointer operand", query.Query{Where: query.Not{Predicate: (*query.Not)(nil)}}, query.ErrCodeEmptyConnective, ""},
		{"bad direction", query.Query{Sort: []query.SortBy{{Path: "Int1", Direction: "up"}}}, query.ErrCodeInvalidDirection, "Int1"},
		{"duplicate sort", query.Query{Sort: []query.SortBy{query.Ascending("Int1"), query.Descending("Int1")}}, query.ErrCodeDuplicateSort, "Int1"},
		{"negative take", query.Query{Paging: query.Paging{Take: -1}}, query.ErrCodeInvalidPaging, ""},
		{"offset without sort", query.Query{Paging: query.Paging{Take: 10, Offset: 10}}, query.ErrCodeOffsetWithoutSort, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := query.Validate(tc.q, s)
			require.Error(t, err)

			var ve *query.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tc.code, ve.Code)
			assert.Equal(t, tc.path, ve.Path)
			assert.Equal(t, "MyClass", ve.Structure)
		})
	}
}

func TestIsUnknownPathError(t *testing.T) {
	s := testutil.MyClassSchema()

	err := query.Validate(query.Query{Where: query.Eq("Nope", 1)}, s)
	assert.True(t, query.IsUnknownPathError(err))
	assert.True(t, query.IsValidationError(err))

	err = query.Validate(query.Query{Where: query.Eq("Int1", nil)}, s)
	assert.False(t, query.IsUnknownPathError(err))
	assert.True(t, query.IsValidationError(err))

	assert.False(t, query.IsUnknownPathError(nil))
}

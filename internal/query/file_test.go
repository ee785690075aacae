package query_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/structdb/internal/query"
	"github.com/roach88/structdb/internal/testutil"
)

func TestParseFile(t *testing.T) {
	qf, err := query.ParseFile([]byte(`
structure: MyClass
where:
  and:
    - {path: Int1, op: ">=", value: 10}
    - or:
        - {path: String1, value: A}
        - not: {path: String1, op: like, value: "B%"}
sort:
  - {path: Int1, direction: desc}
  - path: String1
take: 5
offset: 10
`))
	require.NoError(t, err)
	assert.Equal(t, "MyClass", qf.Structure)
	assert.Equal(t, 5, qf.Take)
	assert.Equal(t, 10, qf.Offset)
	require.NotNil(t, qf.Where)
	assert.Len(t, qf.Where.And, 2)

	q, err := qf.Build(testutil.MyClassSchema())
	require.NoError(t, err)

	want := query.Query{
		Where: query.AllOf(
			query.Gte("Int1", int64(10)),
			query.AnyOf(
				query.Eq("String1", "A"),
				query.Not{Predicate: query.Like("String1", "B%")},
			),
		),
		Sort:   []query.SortBy{query.Descending("Int1"), query.Ascending("String1")},
		Paging: query.Paging{Take: 5, Offset: 10},
	}
	assert.Equal(t, want, q)
}

func TestFileCoercesValues(t *testing.T) {
	s := testutil.MyClassSchema()
	guid := uuid.MustParse("0190c3a4-0000-7000-8000-000000000001")

	tests := []struct {
		name  string
		yaml  string
		value any
	}{
		{"integer", "{path: Int1, value: 42}", int64(42)},
		{"fractal from int", "{path: Decimal1, value: 2}", float64(2)},
		{"fractal", "{path: Decimal1, value: 2.5}", 2.5},
		{"bool", "{path: Bool1, value: true}", true},
		{"guid", "{path: Guid1, value: 0190c3a4-0000-7000-8000-000000000001}", guid},
		{"datetime", `{path: DateTime1, value: "2024-03-01T10:30:00+01:00"}`, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)},
		{"unknown path kept", "{path: Int9, value: 1}", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qf, err := query.ParseFile([]byte("structure: MyClass\nwhere: " + tt.yaml))
			require.NoError(t, err)

			q, err := qf.Build(s)
			require.NoError(t, err)

			cmp, ok := q.Where.(query.Comparison)
			require.True(t, ok, "where is %T", q.Where)
			assert.Equal(t, query.OpEq, cmp.Op)
			assert.Equal(t, tt.value, cmp.Value)
		})
	}
}

func TestFileErrors(t *testing.T) {
	s := testutil.MyClassSchema()

	t.Run("unknown field", func(t *testing.T) {
		_, err := query.ParseFile([]byte("structure: MyClass\nlimit: 3\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse YAML")
	})

	t.Run("missing structure", func(t *testing.T) {
		_, err := query.ParseFile([]byte("take: 3\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "structure is required")
	})

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"two kinds", "where: {path: Int1, value: 1, not: {path: Int2, value: 2}}", "where: expected exactly one of path, and, or, not"},
		{"empty predicate", "where: {}", "where: expected exactly one"},
		{"nested position", "where: {or: [{path: Int1, value: 1}, {value: 2}]}", "where.or[1]: expected exactly one"},
		{"bad value", "where: {path: Int1, value: abc}", "where: Int1: cannot use string as integer"},
		{"bad direction", "sort: [{path: Int1, direction: up}]", `sort[0]: invalid direction "up"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qf, err := query.ParseFile([]byte("structure: MyClass\n" + tt.yaml))
			require.NoError(t, err)

			_, err = qf.Build(s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

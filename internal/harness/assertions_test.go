package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/structdb/internal/accessor"
	"github.com/roach88/structdb/internal/schema"
	"github.com/roach88/structdb/internal/store"
	"github.com/roach88/structdb/internal/testutil"
)

func seededContext(t *testing.T) *AssertionContext {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(":memory:", store.WithLogger(testutil.DiscardLogger()))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	s := testutil.UniqueOrderSchema()
	err = st.WithTx(ctx, func(tx *store.Tx) error {
		if _, err := tx.UpsertStructureSet(ctx, s); err != nil {
			return err
		}
		for _, src := range []string{
			`{"StructureId": "u1", "OrderNo": "N2", "Lines": [{"ProductNo": "P1"}]}`,
			`{"StructureId": "u2", "OrderNo": "N1", "Lines": []}`,
		} {
			doc, err := accessor.DecodeDocument([]byte(src))
			if err != nil {
				return err
			}
			if _, err := tx.Insert(ctx, s, doc); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	return &AssertionContext{Store: st, Registry: schema.NewRegistry(s), Ctx: ctx}
}

func TestAssertStepCount(t *testing.T) {
	trace := []TraceEvent{
		{Seq: 1, Step: StepDefine},
		{Seq: 2, Step: StepInsert, Structure: "Order"},
		{Seq: 3, Step: StepInsert, Structure: "Order"},
	}

	assert.NoError(t, assertStepCount(trace, Assertion{Type: AssertStepCount, Step: StepInsert, Count: 2}))
	assert.NoError(t, assertStepCount(trace, Assertion{Type: AssertStepCount, Step: StepQuery, Count: 0}))

	err := assertStepCount(trace, Assertion{Type: AssertStepCount, Step: StepInsert, Count: 1})
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "1 insert steps", ae.Expected)
	assert.Equal(t, "2 insert steps", ae.Actual)
	assert.Contains(t, err.Error(), "Full trace:")
	assert.Contains(t, err.Error(), "[2] insert Order")
}

func TestTableAssertions(t *testing.T) {
	actx := seededContext(t)
	name := testutil.UniqueOrderSchema().Name()

	tests := []struct {
		name      string
		assertion Assertion
		wantErr   string
	}{
		{
			name:      "structure count",
			assertion: Assertion{Type: AssertStructureCount, Structure: name, Count: 2},
		},
		{
			name:      "structure count mismatch",
			assertion: Assertion{Type: AssertStructureCount, Structure: name, Count: 3},
			wantErr:   "2 structures",
		},
		{
			name:      "index count for path",
			assertion: Assertion{Type: AssertIndexCount, Structure: name, Path: "OrderNo", Count: 2},
		},
		{
			name:      "index count for path mismatch",
			assertion: Assertion{Type: AssertIndexCount, Structure: name, Path: "OrderNo", Count: 5},
			wantErr:   "2 index rows for OrderNo",
		},
		{
			name:      "unique values sorted",
			assertion: Assertion{Type: AssertUniqueValues, Structure: name, Path: "OrderNo", Values: []string{"N1", "N2"}},
		},
		{
			name:      "unique values mismatch",
			assertion: Assertion{Type: AssertUniqueValues, Structure: name, Path: "OrderNo", Values: []string{"N2"}},
			wantErr:   "[N1 N2]",
		},
		{
			name:      "no unique values",
			assertion: Assertion{Type: AssertUniqueValues, Structure: name, Path: "Missing"},
		},
		{
			name:      "undefined structure",
			assertion: Assertion{Type: AssertStructureCount, Structure: "Customer"},
			wantErr:   `no structure schema registered for "Customer"`,
		},
		{
			name:      "invalid structure name",
			assertion: Assertion{Type: AssertStructureCount, Structure: "Order; DROP TABLE x"},
			wantErr:   "invalid structure name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(NewResult(), []Assertion{tt.assertion}, actx)
			if tt.wantErr == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.wantErr)
		})
	}
}

func TestEvaluateAssertions_RequiresDatabase(t *testing.T) {
	errs := EvaluateAssertions(NewResult(), []Assertion{
		{Type: AssertStructureCount, Structure: "Order"},
		{Type: "final_state"},
	}, nil)

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "requires database context")
	assert.Contains(t, errs[1], `unknown assertion type "final_state"`)
}

func TestMatchArgs(t *testing.T) {
	actual := map[string]any{"OrderNo": "A1", "Total": 50.0, "Lines": []any{}}

	assert.True(t, matchArgs(actual, nil))
	assert.True(t, matchArgs(actual, map[string]any{"OrderNo": "A1"}))
	assert.True(t, matchArgs(actual, map[string]any{"Total": 50.0, "Lines": []any{}}))
	assert.False(t, matchArgs(actual, map[string]any{"OrderNo": "A2"}))
	assert.False(t, matchArgs(actual, map[string]any{"Missing": "x"}))
	assert.False(t, matchArgs("not a map", map[string]any{"OrderNo": "A1"}))
}

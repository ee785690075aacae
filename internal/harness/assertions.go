package harness

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/roach88/structdb/internal/querysql"
	"github.com/roach88/structdb/internal/schema"
	"github.com/roach88/structdb/internal/store"
)

// validIdentifier matches structure names that can be turned into table
// names. Only allows alphanumeric and underscore, must start with letter or
// underscore.
var validIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s %v", event.Seq, event.Step, event.Structure, event.IDs)
			if event.Error != "" {
				fmt.Fprintf(&buf, " error=%s", event.Error)
			}
			buf.WriteByte('\n')
		}
	}

	return buf.String()
}

// assertStepCount checks that the trace has exactly Count events of Step.
func assertStepCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Step == assertion.Step {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertStepCount,
			Expected: fmt.Sprintf("%d %s steps", assertion.Count, assertion.Step),
			Actual:   fmt.Sprintf("%d %s steps", count, assertion.Step),
			Trace:    trace,
		}
	}
	return nil
}

// assertStructureCount counts the rows of a structure table.
func assertStructureCount(ctx context.Context, st *store.Store, s *schema.StructureSchema, assertion Assertion) error {
	var count int
	err := st.DB().QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s", querysql.SQLite.QuoteIdent(s.StructureTableName()))).Scan(&count)
	if err != nil {
		return fmt.Errorf("count %s: %w", s.StructureTableName(), err)
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertStructureCount,
			Expected: fmt.Sprintf("%d %s structures", assertion.Count, s.Name()),
			Actual:   fmt.Sprintf("%d structures", count),
		}
	}
	return nil
}

// assertIndexCount counts index rows, optionally for one member path.
func assertIndexCount(ctx context.Context, st *store.Store, s *schema.StructureSchema, assertion Assertion) error {
	q := fmt.Sprintf("SELECT COUNT(*) FROM %s", querysql.SQLite.QuoteIdent(s.IndexesTableName()))
	var args []any
	if assertion.Path != "" {
		q += " WHERE [MemberPath] = ?"
		args = append(args, assertion.Path)
	}

	var count int
	if err := st.DB().QueryRowContext(ctx, q, args...).Scan(&count); err != nil {
		return fmt.Errorf("count %s: %w", s.IndexesTableName(), err)
	}

	if count != assertion.Count {
		what := "index rows"
		if assertion.Path != "" {
			what = fmt.Sprintf("index rows for %s", assertion.Path)
		}
		return &AssertionError{
			Type:     AssertIndexCount,
			Expected: fmt.Sprintf("%d %s", assertion.Count, what),
			Actual:   fmt.Sprintf("%d %s", count, what),
		}
	}
	return nil
}

// assertUniqueValues compares the sorted unique values stored for a member
// path.
func assertUniqueValues(ctx context.Context, st *store.Store, s *schema.StructureSchema, assertion Assertion) error {
	rows, err := st.DB().QueryContext(ctx,
		fmt.Sprintf("SELECT [UqValue] FROM %s WHERE [UqMemberPath] = ? ORDER BY [UqValue]",
			querysql.SQLite.QuoteIdent(s.UniquesTableName())),
		assertion.Path)
	if err != nil {
		return fmt.Errorf("query %s: %w", s.UniquesTableName(), err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return fmt.Errorf("scan %s: %w", s.UniquesTableName(), err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("query %s: %w", s.UniquesTableName(), err)
	}

	expected := assertion.Values
	if expected == nil {
		expected = []string{}
	}
	if !stringsEqual(values, expected) {
		return &AssertionError{
			Type:     AssertUniqueValues,
			Expected: fmt.Sprintf("unique values %v for %s.%s", expected, s.Name(), assertion.Path),
			Actual:   fmt.Sprintf("%v", values),
		}
	}
	return nil
}

// matchArgs checks if actual contains all expected keys with equal values
// (subset match). Extra keys in actual are ignored.
func matchArgs(actual any, expected map[string]any) bool {
	if len(expected) == 0 {
		return true
	}

	actualMap, ok := actual.(map[string]any)
	if !ok {
		return false
	}

	for key, expectedVal := range expected {
		actualVal, exists := actualMap[key]
		if !exists {
			return false
		}
		if !reflect.DeepEqual(actualVal, expectedVal) {
			return false
		}
	}
	return true
}

// AssertionContext provides context for evaluating assertions.
type AssertionContext struct {
	Store    *store.Store
	Registry *schema.Registry
	Ctx      context.Context
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides database access for table assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertStepCount:
			err = assertStepCount(result.Trace, assertion)
		case AssertStructureCount, AssertIndexCount, AssertUniqueValues:
			err = evaluateTableAssertion(i, assertion, actx)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func evaluateTableAssertion(index int, assertion Assertion, actx *AssertionContext) error {
	if actx == nil || actx.Store == nil || actx.Registry == nil {
		return fmt.Errorf("assertion[%d]: %s requires database context", index, assertion.Type)
	}
	if !validIdentifier.MatchString(assertion.Structure) {
		return fmt.Errorf("assertion[%d]: invalid structure name %q: must match pattern %s",
			index, assertion.Structure, validIdentifier.String())
	}
	s, err := actx.Registry.Get(assertion.Structure)
	if err != nil {
		return fmt.Errorf("assertion[%d]: %w", index, err)
	}

	ctx := actx.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	switch assertion.Type {
	case AssertStructureCount:
		return assertStructureCount(ctx, actx.Store, s, assertion)
	case AssertIndexCount:
		return assertIndexCount(ctx, actx.Store, s, assertion)
	default:
		return assertUniqueValues(ctx, actx.Store, s, assertion)
	}
}

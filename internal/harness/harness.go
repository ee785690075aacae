package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/structdb/internal/accessor"
	"github.com/roach88/structdb/internal/definition"
	"github.com/roach88/structdb/internal/query"
	"github.com/roach88/structdb/internal/schema"
	"github.com/roach88/structdb/internal/store"
	"github.com/roach88/structdb/internal/testutil"
)

// maxGeneratedIDs bounds the default id generator of a scenario.
const maxGeneratedIDs = 1024

// Harness is the scenario execution engine.
// It owns a fresh in-memory store and the registry of every structure set
// defined so far.
type Harness struct {
	store    *store.Store
	registry *schema.Registry
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, with a
// fixed id generator so traces are reproducible.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Compile and sync the scenario definitions
// 3. Execute steps, validating expect clauses
// 4. Evaluate assertions against the trace and tables
//
// A non-nil error means the scenario could not be executed at all; step
// and assertion failures are reported in the result.
func Run(scenario *Scenario) (*Result, error) {
	ids := testutil.NewFixedIDGenerator(scenario.IDs...)
	if len(scenario.IDs) == 0 {
		ids = testutil.SequentialIDGenerator("gen", maxGeneratedIDs)
	}

	logger := testutil.DiscardLogger()
	st, err := store.Open(":memory:", store.WithLogger(logger), store.WithIDGenerator(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:    st,
		registry: schema.NewRegistry(),
		logger:   logger,
	}

	ctx := context.Background()
	result := NewResult()

	if err := h.define(ctx, scenario.Name+".cue", scenario.Definitions, nil, result); err != nil {
		return nil, fmt.Errorf("failed to sync definitions: %w", err)
	}

	for i := range scenario.Steps {
		if err := h.executeStep(ctx, i, &scenario.Steps[i], result); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	actx := &AssertionContext{
		Store:    st,
		Registry: h.registry,
		Ctx:      ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// executeStep runs one step in its own transaction and checks its expect
// clause. The returned error is reserved for definitions that cannot be
// compiled; store errors are classified and compared with the expectation.
func (h *Harness) executeStep(ctx context.Context, index int, step *Step, result *Result) error {
	at := fmt.Sprintf("steps[%d]", index)

	if step.Kind() == StepDefine {
		return h.define(ctx, fmt.Sprintf("%s.cue", at), step.Define, step.Expect, result)
	}

	var (
		ev  TraceEvent
		err error
	)
	switch step.Kind() {
	case StepInsert:
		ev, err = h.insert(ctx, step)
	case StepGet:
		ev, err = h.get(ctx, step, at, result)
	case StepDelete:
		ev, err = h.delete(ctx, step)
	case StepQuery:
		ev, err = h.query(ctx, step)
	default:
		return fmt.Errorf("no operation set")
	}

	if err != nil {
		ev.Error = classifyError(err)
	}
	result.AddTrace(ev)
	h.checkOutcome(at, step.Expect, ev, err, result)

	h.logger.Info("step completed",
		"step", index,
		"kind", ev.Step,
		"structure", ev.Structure,
		"error", ev.Error,
	)
	return nil
}

// define compiles src, syncs every structure set in one transaction and
// registers the compiled schemas. Sets that src does not mention stay
// registered.
func (h *Harness) define(ctx context.Context, filename, src string, expect *ExpectClause, result *Result) error {
	schemas, err := definition.LoadString(filename, src)
	if err != nil {
		return err
	}
	reg := schema.NewRegistry(schemas...)

	ev := TraceEvent{Step: StepDefine}
	err = h.store.WithTx(ctx, func(tx *store.Tx) error {
		for _, name := range reg.Names() {
			s, err := reg.Get(name)
			if err != nil {
				return err
			}
			res, err := tx.UpsertStructureSet(ctx, s)
			if err != nil {
				return err
			}

			out := SyncOutcome{Name: name, Status: "unchanged"}
			switch {
			case res.Created:
				out.Status = "created"
			case res.Updated:
				out.Status = "updated"
				out.Dropped = res.Sync.DroppedPaths
				out.DeletedRows = res.Sync.DeletedRows
			}
			ev.Synced = append(ev.Synced, out)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, name := range reg.Names() {
		s, _ := reg.Get(name)
		if previous := h.registry.Register(s); previous != nil && previous.Hash() != s.Hash() {
			h.logger.Debug("schema replaced", "structure_set", name, "previous_hash", previous.Hash(), "hash", s.Hash())
		}
	}
	result.AddTrace(ev)

	if expect != nil {
		for name, want := range expect.Status {
			got := "undefined"
			for _, out := range ev.Synced {
				if out.Name == name {
					got = out.Status
				}
			}
			if got != want {
				result.AddError(fmt.Sprintf("%s: expected %s to be %s, got %s", filename, name, want, got))
			}
		}
		if expect.Dropped != nil {
			var dropped []string
			for _, out := range ev.Synced {
				dropped = append(dropped, out.Dropped...)
			}
			if !stringsEqual(dropped, expect.Dropped) {
				result.AddError(fmt.Sprintf("%s: expected dropped %v, got %v", filename, expect.Dropped, dropped))
			}
		}
	}
	return nil
}

func (h *Harness) insert(ctx context.Context, step *Step) (TraceEvent, error) {
	ev := TraceEvent{Step: StepInsert, Structure: step.Insert}
	s, err := h.registry.Get(step.Insert)
	if err != nil {
		return ev, err
	}

	docs := make([]accessor.Document, 0, len(step.Documents))
	for i, raw := range step.Documents {
		doc, err := toDocument(raw)
		if err != nil {
			return ev, fmt.Errorf("documents[%d]: %w", i, err)
		}
		docs = append(docs, doc)
	}

	var ids []string
	err = h.store.WithTx(ctx, func(tx *store.Tx) error {
		for _, doc := range docs {
			id, err := tx.Insert(ctx, s, doc)
			if err != nil {
				return err
			}
			ids = append(ids, id.String())
		}
		return nil
	})
	if err != nil {
		return ev, err
	}
	ev.IDs = ids
	return ev, nil
}

func (h *Harness) get(ctx context.Context, step *Step, at string, result *Result) (TraceEvent, error) {
	ev := TraceEvent{Step: StepGet, Structure: step.Get.Structure, IDs: []string{step.Get.ID}}
	s, err := h.registry.Get(step.Get.Structure)
	if err != nil {
		return ev, err
	}

	var payload string
	err = h.store.WithTx(ctx, func(tx *store.Tx) error {
		payload, err = tx.GetByID(ctx, s, schema.StructureID(step.Get.ID))
		return err
	})
	if err != nil {
		return ev, err
	}

	if step.Expect != nil && step.Expect.Document != nil {
		var actual map[string]any
		if err := json.Unmarshal([]byte(payload), &actual); err != nil {
			return ev, fmt.Errorf("decode %s %s: %w", s.Name(), step.Get.ID, err)
		}
		expected, err := normalize(step.Expect.Document)
		if err != nil {
			return ev, err
		}
		if !matchArgs(actual, expected) {
			result.AddError(fmt.Sprintf("%s: expected document to contain %v, got %s", at, step.Expect.Document, payload))
		}
	}
	return ev, nil
}

func (h *Harness) delete(ctx context.Context, step *Step) (TraceEvent, error) {
	ev := TraceEvent{Step: StepDelete, Structure: step.Delete.Structure, IDs: []string{step.Delete.ID}}
	s, err := h.registry.Get(step.Delete.Structure)
	if err != nil {
		return ev, err
	}
	err = h.store.WithTx(ctx, func(tx *store.Tx) error {
		return tx.DeleteByID(ctx, s, schema.StructureID(step.Delete.ID))
	})
	return ev, err
}

func (h *Harness) query(ctx context.Context, step *Step) (TraceEvent, error) {
	ev := TraceEvent{Step: StepQuery, Structure: step.Query.Structure}
	s, err := h.registry.Get(step.Query.Structure)
	if err != nil {
		return ev, err
	}
	q, err := step.Query.Build(s)
	if err != nil {
		return ev, &invalidQueryError{err: err}
	}

	var items []*accessor.Document
	err = h.store.WithTx(ctx, func(tx *store.Tx) error {
		batch, err := store.QueryAs[accessor.Document](ctx, tx, s, q)
		if err != nil {
			return err
		}
		items, err = batch.Collect()
		return err
	})
	if err != nil {
		return ev, err
	}

	ids := make([]string, 0, len(items))
	for i, item := range items {
		if item == nil {
			return ev, fmt.Errorf("result %d: malformed document", i)
		}
		id, err := s.IdAccessor().ID(*item)
		if err != nil {
			return ev, fmt.Errorf("result %d: %w", i, err)
		}
		ids = append(ids, id.String())
	}
	count := len(ids)
	ev.IDs = ids
	ev.Count = &count
	return ev, nil
}

// checkOutcome compares a step outcome with its expect clause.
func (h *Harness) checkOutcome(at string, expect *ExpectClause, ev TraceEvent, err error, result *Result) {
	want := ""
	if expect != nil {
		want = expect.Error
	}

	switch {
	case err != nil && ev.Error == ErrorOther:
		result.AddError(fmt.Sprintf("%s: %s failed: %v", at, ev.Step, err))
		return
	case err != nil && want == "":
		result.AddError(fmt.Sprintf("%s: expected success, got %s error: %v", at, ev.Error, err))
		return
	case err != nil && want != ev.Error:
		result.AddError(fmt.Sprintf("%s: expected %s error, got %s error: %v", at, want, ev.Error, err))
		return
	case err == nil && want != "":
		result.AddError(fmt.Sprintf("%s: expected %s error, got success", at, want))
		return
	case err != nil:
		return
	}

	if expect != nil && expect.IDs != nil && !stringsEqual(ev.IDs, expect.IDs) {
		result.AddError(fmt.Sprintf("%s: expected ids %v, got %v", at, expect.IDs, ev.IDs))
	}
}

// invalidQueryError marks a query file that could not be built into a
// query.
type invalidQueryError struct{ err error }

func (e *invalidQueryError) Error() string { return e.err.Error() }
func (e *invalidQueryError) Unwrap() error { return e.err }

// classifyError maps a step error to its error kind.
func classifyError(err error) string {
	var iq *invalidQueryError
	switch {
	case store.IsUniqueViolation(err):
		return ErrorUnique
	case errors.Is(err, store.ErrNotFound):
		return ErrorNotFound
	case errors.As(err, &iq), query.IsValidationError(err):
		return ErrorInvalidQuery
	default:
		return ErrorOther
	}
}

// toDocument converts a YAML-decoded document into the form accessors
// read: a JSON object with numbers kept as json.Number.
func toDocument(raw map[string]any) (accessor.Document, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return accessor.DecodeDocument(data)
}

// normalize round-trips a YAML-decoded map through JSON so it compares
// equal to a document decoded from a stored payload.
func normalize(raw map[string]any) (map[string]any, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode expected document: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode expected document: %w", err)
	}
	return out, nil
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

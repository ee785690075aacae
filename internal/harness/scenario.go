package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/structdb/internal/query"
)

// Scenario defines a conformance test scenario.
// A scenario provisions structure sets from inline CUE definitions, runs a
// sequence of steps against a fresh store and asserts on the resulting trace
// and tables.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Definitions is CUE source with a top-level "structure" field. It is
	// synced before the first step.
	Definitions string `yaml:"definitions"`

	// IDs are handed out in order to inserted documents without an id.
	// If empty, ids are "gen-1", "gen-2", ...
	IDs []string `yaml:"ids,omitempty"`

	// Steps run in order, each in its own transaction.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and tables.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one operation against the store. Exactly one of Define, Insert,
// Get, Delete and Query is set.
type Step struct {
	// Define syncs the structure sets of new CUE source and registers them.
	// Sets defined earlier stay available.
	Define string `yaml:"define,omitempty"`

	// Insert names the structure that Documents are inserted into.
	Insert    string           `yaml:"insert,omitempty"`
	Documents []map[string]any `yaml:"documents,omitempty"`

	Get    *Ref        `yaml:"get,omitempty"`
	Delete *Ref        `yaml:"delete,omitempty"`
	Query  *query.File `yaml:"query,omitempty"`

	// Expect validates the step outcome. If nil, the step must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// Kind returns the step kind, or "" if the step sets no operation.
func (s *Step) Kind() string {
	switch {
	case s.Define != "":
		return StepDefine
	case s.Insert != "":
		return StepInsert
	case s.Get != nil:
		return StepGet
	case s.Delete != nil:
		return StepDelete
	case s.Query != nil:
		return StepQuery
	}
	return ""
}

func (s *Step) operationCount() int {
	n := 0
	for _, set := range []bool{s.Define != "", s.Insert != "", s.Get != nil, s.Delete != nil, s.Query != nil} {
		if set {
			n++
		}
	}
	return n
}

// Ref addresses one structure by id.
type Ref struct {
	Structure string `yaml:"structure"`
	ID        string `yaml:"id"`
}

// ExpectClause specifies the expected step outcome.
type ExpectClause struct {
	// Error is the expected error kind: unique, not_found or invalid_query.
	Error string `yaml:"error,omitempty"`

	// IDs are the inserted ids (insert) or the returned ids in order (query).
	IDs []string `yaml:"ids,omitempty"`

	// Status maps structure names to created, updated or unchanged (define).
	Status map[string]string `yaml:"status,omitempty"`

	// Dropped lists the unique member paths removed by a define step.
	Dropped []string `yaml:"dropped,omitempty"`

	// Document is a subset of the fetched document (get).
	Document map[string]any `yaml:"document,omitempty"`
}

// Assertion validates the trace or the final tables.
type Assertion struct {
	// Type specifies the assertion type:
	// - "step_count": the trace has Count events of Step
	// - "structure_count": the structure table of Structure has Count rows
	// - "index_count": Structure has Count index rows, for Path if set
	// - "unique_values": the unique values stored for Path are exactly Values
	Type string `yaml:"type"`

	Step      string   `yaml:"step,omitempty"`
	Structure string   `yaml:"structure,omitempty"`
	Path      string   `yaml:"path,omitempty"`
	Count     int      `yaml:"count,omitempty"`
	Values    []string `yaml:"values,omitempty"`
}

// Assertion type constants.
const (
	AssertStepCount      = "step_count"
	AssertStructureCount = "structure_count"
	AssertIndexCount     = "index_count"
	AssertUniqueValues   = "unique_values"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // catches typos like "assertion:" vs "assertions:"
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Definitions == "" {
		return fmt.Errorf("definitions is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i := range s.Steps {
		if err := validateStep(i, &s.Steps[i]); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, s *Step) error {
	if s.operationCount() != 1 {
		return fmt.Errorf("steps[%d]: expected exactly one of define, insert, get, delete, query", index)
	}

	switch s.Kind() {
	case StepInsert:
		if len(s.Documents) == 0 {
			return fmt.Errorf("steps[%d]: documents are required for insert", index)
		}
	case StepGet, StepDelete:
		ref := s.Get
		if ref == nil {
			ref = s.Delete
		}
		if ref.Structure == "" || ref.ID == "" {
			return fmt.Errorf("steps[%d]: %s requires structure and id", index, s.Kind())
		}
	case StepQuery:
		if s.Query.Structure == "" {
			return fmt.Errorf("steps[%d]: query structure is required", index)
		}
	}
	if s.Kind() != StepInsert && len(s.Documents) > 0 {
		return fmt.Errorf("steps[%d]: documents are only valid for insert", index)
	}

	if s.Expect != nil {
		switch s.Expect.Error {
		case "", ErrorUnique, ErrorNotFound, ErrorInvalidQuery:
		default:
			return fmt.Errorf("steps[%d].expect: unknown error kind %q", index, s.Expect.Error)
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertStepCount:
		if a.Step == "" {
			return fmt.Errorf("assertions[%d]: step is required for step_count", index)
		}
	case AssertStructureCount, AssertIndexCount:
		if a.Structure == "" {
			return fmt.Errorf("assertions[%d]: structure is required for %s", index, a.Type)
		}
	case AssertUniqueValues:
		if a.Structure == "" || a.Path == "" {
			return fmt.Errorf("assertions[%d]: structure and path are required for unique_values", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	if a.Count < 0 {
		return fmt.Errorf("assertions[%d]: count must be non-negative", index)
	}

	return nil
}

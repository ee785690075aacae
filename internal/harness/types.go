package harness

// Step kinds as they appear in the trace.
const (
	StepDefine = "define"
	StepInsert = "insert"
	StepGet    = "get"
	StepDelete = "delete"
	StepQuery  = "query"
)

// Error kinds a step can fail with. Anything else is reported as ErrorOther
// and always fails the scenario.
const (
	ErrorUnique       = "unique"
	ErrorNotFound     = "not_found"
	ErrorInvalidQuery = "invalid_query"
	ErrorOther        = "error"
)

// SyncOutcome is the provisioning result of one structure set in a define
// step.
type SyncOutcome struct {
	Name        string   `json:"name"`
	Status      string   `json:"status"` // "created" | "updated" | "unchanged"
	Dropped     []string `json:"dropped,omitempty"`
	DeletedRows int64    `json:"deleted_rows,omitempty"`
}

// TraceEvent records what one step did. Only the fields relevant to the
// step kind are set.
type TraceEvent struct {
	Seq       int           `json:"seq"`
	Step      string        `json:"step"`
	Structure string        `json:"structure,omitempty"`
	IDs       []string      `json:"ids,omitempty"`
	Synced    []SyncOutcome `json:"synced,omitempty"`
	Count     *int          `json:"count,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace has one event per executed step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors describes each failed expectation. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends ev with the next sequence number.
func (r *Result) AddTrace(ev TraceEvent) {
	ev.Seq = len(r.Trace) + 1
	r.Trace = append(r.Trace, ev)
}

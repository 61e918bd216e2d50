package harness

// TraceEvent records one vocabulary edit and its outcome.
type TraceEvent struct {
	Step      int    `json:"step"`
	Op        string `json:"op"`
	Element   string `json:"element"`
	ElementID int64  `json:"element_id,omitempty"`
	Outcome   string `json:"outcome"`           // "ok" or the error code
	Updated   int    `json:"updated,omitempty"` // instances whose string changed
	LastID    int64  `json:"last_id"`
}

// Outcome values besides error codes.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error" // failure without a model error code
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every step met its expectation and
	// every assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Instances holds the final display string of each instance.
	Instances map[string]string `json:"instances"`

	// Elements holds the final DB string of each element, by name.
	Elements map[string]string `json:"elements"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Trace:     []TraceEvent{},
		Errors:    []string{},
		Instances: make(map[string]string),
		Elements:  make(map[string]string),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an edit event.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}

package harness

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/google/go-cmp/cmp"

	"github.com/roach88/codebook/internal/ir"
	"github.com/roach88/codebook/internal/model"
	"github.com/roach88/codebook/internal/store"
)

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
		fmt.Fprintf(&buf, "\nEdits:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s: %s\n", ev.Step, ev.Op, ev.Element, ev.Outcome)
		}
	}
	return buf.String()
}

// AssertionContext holds what assertions inspect besides the Result.
type AssertionContext struct {
	Ctx       context.Context
	Store     *store.Store
	DB        *model.Database
	Instances map[string]instance
}

// EvaluateAssertions runs every assertion and returns the failure
// messages, empty when all hold.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertInstanceString:
			err = assertInstanceString(result, a, actx)
		case AssertInstanceDBString:
			err = assertInstanceDBString(result, a, actx)
		case AssertElementArgs:
			err = assertElementArgs(result, a, actx)
		case AssertElementExists:
			err = assertElementPresence(result, a, actx, true)
		case AssertElementAbsent:
			err = assertElementPresence(result, a, actx, false)
		case AssertStats:
			err = assertStats(result, a, actx)
		case AssertReplayMatches:
			err = assertReplayMatches(result, actx)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func lookupInstance(a Assertion, actx *AssertionContext) (instance, error) {
	inst, ok := actx.Instances[a.Instance]
	if !ok {
		return nil, fmt.Errorf("unknown instance %q", a.Instance)
	}
	return inst, nil
}

// assertInstanceString checks the instance's display string exactly.
func assertInstanceString(result *Result, a Assertion, actx *AssertionContext) error {
	inst, err := lookupInstance(a, actx)
	if err != nil {
		return err
	}
	if got := inst.String(); got != a.Expect {
		return &AssertionError{
			Type:     AssertInstanceString,
			Expected: fmt.Sprintf("%s = %s", a.Instance, a.Expect),
			Actual:   got,
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertInstanceDBString checks the instance's DB string contains Expect.
func assertInstanceDBString(result *Result, a Assertion, actx *AssertionContext) error {
	inst, err := lookupInstance(a, actx)
	if err != nil {
		return err
	}
	if got := inst.DBString(); !strings.Contains(got, a.Expect) {
		return &AssertionError{
			Type:     AssertInstanceDBString,
			Expected: fmt.Sprintf("%s DB string containing %s", a.Instance, a.Expect),
			Actual:   got,
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertElementArgs checks the element's argument names, in order.
func assertElementArgs(result *Result, a Assertion, actx *AssertionContext) error {
	ve, err := actx.DB.Vocab().VocabElementByName(a.Element)
	if err != nil {
		return &AssertionError{
			Type:     AssertElementArgs,
			Expected: fmt.Sprintf("element %s with args %v", a.Element, a.Args),
			Actual:   err.Error(),
			Trace:    result.Trace,
		}
	}
	var names []string
	for _, fa := range ve.FormalArgs() {
		names = append(names, fa.Name())
	}
	if !slices.Equal(names, a.Args) {
		return &AssertionError{
			Type:     AssertElementArgs,
			Expected: fmt.Sprintf("%s args %v", a.Element, a.Args),
			Actual:   fmt.Sprintf("%v", names),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertElementPresence(result *Result, a Assertion, actx *AssertionContext, want bool) error {
	got, err := actx.DB.Vocab().InVocabListByName(a.Element)
	if err != nil {
		return err
	}
	if got == want {
		return nil
	}
	typ, expected, actual := AssertElementExists, "registered", "absent"
	if !want {
		typ, expected, actual = AssertElementAbsent, "absent", "registered"
	}
	return &AssertionError{
		Type:     typ,
		Expected: fmt.Sprintf("element %s %s", a.Element, expected),
		Actual:   actual,
		Trace:    result.Trace,
	}
}

// assertStats compares the listed Stats fields.
func assertStats(result *Result, a Assertion, actx *AssertionContext) error {
	s := actx.DB.Stats()
	actual := map[string]int{
		"predicates":    s.Predicates,
		"matrices":      s.Matrices,
		"system":        s.System,
		"index_entries": s.IndexEntries,
		"dependents":    s.Dependents,
	}

	var diffs []string
	for _, k := range slices.Sorted(maps.Keys(a.Counts)) {
		if actual[k] != a.Counts[k] {
			diffs = append(diffs, fmt.Sprintf("%s=%d (want %d)", k, actual[k], a.Counts[k]))
		}
	}
	if len(diffs) > 0 {
		return &AssertionError{
			Type:     AssertStats,
			Expected: fmt.Sprintf("%v", a.Counts),
			Actual:   strings.Join(diffs, ", "),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertReplayMatches replays the journal into a fresh database and
// compares the vocabularies, IDs included.
func assertReplayMatches(result *Result, actx *AssertionContext) error {
	replayed, err := actx.Store.Replay(actx.Ctx, actx.DB.Token(), model.WithLogger(actx.DB.Logger()))
	if err != nil {
		return &AssertionError{
			Type:     AssertReplayMatches,
			Expected: "journal replays cleanly",
			Actual:   err.Error(),
			Trace:    result.Trace,
		}
	}
	want, err := ir.FromDatabase(actx.DB)
	if err != nil {
		return err
	}
	got, err := ir.FromDatabase(replayed)
	if err != nil {
		return err
	}
	if diff := cmp.Diff(want, got); diff != "" {
		return &AssertionError{
			Type:     AssertReplayMatches,
			Expected: "replayed vocabulary equal to the live one",
			Actual:   "diff (-live +replayed):\n" + diff,
			Trace:    result.Trace,
		}
	}
	return nil
}

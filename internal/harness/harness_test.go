package harness

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/codebook/internal/metric"
)

func TestRun_PredicateEdits(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "predicate_edits.yaml"))
	require.NoError(t, err)

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)

	require.Len(t, result.Trace, 8)
	assert.Equal(t, OutcomeOK, result.Trace[0].Outcome)
	assert.Equal(t, 2, result.Trace[0].Updated, "rename reaches the instance and the nested predicate")
	assert.Equal(t, "NOT_FOUND", result.Trace[6].Outcome)
	assert.Equal(t, "DUPLICATE", result.Trace[7].Outcome)

	assert.Equal(t, "()", result.Instances["s1"])
	assert.Contains(t, result.Elements, "glances")
	assert.NotContains(t, result.Elements, "says")
}

func matrixScenario(vocab string) *Scenario {
	at := 0
	return &Scenario{
		Name:        "matrix_edits",
		Description: "Predicate edits reach the predicate nested in a matrix row",
		Vocab:       []string{vocab},
		Instances: []InstanceStep{
			{Name: "p1", Element: "looks", Args: map[string]any{"<who>": "child"}},
			{Name: "row", Element: "events", Args: map[string]any{
				"<act>":   map[string]any{"instance": "p1"},
				"<score>": 2,
			}},
		},
		Steps: []EditStep{
			{Op: OpAddElement, Element: "nods", Kind: "predicate", Args: []ArgDecl{{Name: "<how>", Type: "quote_string"}}},
			{Op: OpSetApproved, Element: "events", Arg: "<act>", Approved: []string{"looks", "nods"}},
			{Op: OpMoveArg, Element: "looks", Arg: "<at>", At: &at},
			{Op: OpDeleteArg, Element: "looks", Arg: "<at>"},
			{Op: OpSetRange, Element: "events", Arg: "<score>", Range: []any{0, 1}},
		},
		Assertions: []Assertion{
			{Type: AssertInstanceString, Instance: "p1", Expect: "looks(child)"},
			{Type: AssertInstanceString, Instance: "row", Expect: "events(0, 00:00:00:000, 00:00:00:000, looks(child), 1.0)"},
			{Type: AssertInstanceDBString, Instance: "p1", Expect: "(predName looks)"},
			{Type: AssertElementArgs, Element: "looks", Args: []string{"<who>"}},
			{Type: AssertElementArgs, Element: "events", Args: []string{"<act>", "<score>"}},
			{Type: AssertElementExists, Element: "nods"},
			{Type: AssertStats, Counts: map[string]int{"predicates": 2, "matrices": 1, "system": 0}},
			{Type: AssertReplayMatches},
		},
	}
}

func TestRun_MatrixEdits(t *testing.T) {
	vocab := createTestVocab(t, t.TempDir())

	result, err := Run(context.Background(), matrixScenario(vocab))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Trace, 5)
	added := result.Trace[0]
	assert.Equal(t, OpAddElement, added.Op)
	assert.Equal(t, int64(12), added.ElementID, "after looks (1-3) and events (4-11)")
	assert.Equal(t, int64(13), added.LastID)

	var updated []int
	for _, ev := range result.Trace {
		updated = append(updated, ev.Updated)
	}
	assert.Equal(t, []int{0, 0, 2, 2, 1}, updated)
	assert.Equal(t, "events(0, 00:00:00:000, 00:00:00:000, looks(child), 1.0)", result.Instances["row"])
}

func TestRun_UnexpectedError(t *testing.T) {
	vocab := createTestVocab(t, t.TempDir())
	scenario := &Scenario{
		Name:        "unexpected",
		Description: "Removing an unknown element fails",
		Vocab:       []string{vocab},
		Steps:       []EditStep{{Op: OpRemoveElement, Element: "missing"}},
		Assertions:  []Assertion{{Type: AssertStats, Counts: map[string]int{"predicates": 1}}},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "steps[0] remove_element missing")
	assert.Equal(t, "NOT_FOUND", result.Trace[0].Outcome)
	assert.Zero(t, result.Trace[0].ElementID)
}

func TestRun_ExpectedErrorNotRaised(t *testing.T) {
	vocab := createTestVocab(t, t.TempDir())
	scenario := &Scenario{
		Name:        "missing_failure",
		Description: "A valid rename does not fail",
		Vocab:       []string{vocab},
		Steps:       []EditStep{{Op: OpRenameElement, Element: "looks", To: "sees", ExpectError: "DUPLICATE"}},
		Assertions:  []Assertion{{Type: AssertElementExists, Element: "sees"}},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "expected error DUPLICATE, got ok")
}

func TestRun_FailedAssertion(t *testing.T) {
	vocab := createTestVocab(t, t.TempDir())
	scenario := &Scenario{
		Name:        "wrong_args",
		Description: "Assertion on the wrong argument order",
		Vocab:       []string{vocab},
		Assertions: []Assertion{
			{Type: AssertElementArgs, Element: "looks", Args: []string{"<at>", "<who>"}},
			{Type: AssertElementAbsent, Element: "looks"},
		},
	}

	result, err := Run(context.Background(), scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "assertions[0]")
	assert.Contains(t, result.Errors[0], "[<who> <at>]")
	assert.Contains(t, result.Errors[1], "element looks absent")
}

func TestRun_SetupErrors(t *testing.T) {
	dir := t.TempDir()
	vocab := createTestVocab(t, dir)

	_, err := Run(context.Background(), &Scenario{
		Name:      "bad_instance",
		Vocab:     []string{vocab},
		Instances: []InstanceStep{{Name: "x", Element: "nothing"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instance 0 (x)")

	_, err = Run(context.Background(), &Scenario{
		Name:      "bad_value",
		Vocab:     []string{vocab},
		Instances: []InstanceStep{{Name: "p", Element: "looks", Args: map[string]any{"<at>": 5}}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want a time stamp")

	bad := writeFile(t, dir, "bad.cue", `matrix: m: {type: "matrix", args: [{name: "<p>", type: "predicate", approved: ["ghost"]}]}`)
	_, err = Run(context.Background(), &Scenario{Name: "bad_vocab", Vocab: []string{bad}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid vocab")
}

func TestRun_Cancelled(t *testing.T) {
	vocab := createTestVocab(t, t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, matrixScenario(vocab))
	assert.Error(t, err)
}

func TestRun_WithLoggerAndMetrics(t *testing.T) {
	vocab := createTestVocab(t, t.TempDir())
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	reg := prometheus.NewRegistry()
	m, err := metric.New(reg)
	require.NoError(t, err)

	result, err := Run(context.Background(), matrixScenario(vocab), WithLogger(logger), WithMetrics(m))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)

	assert.Contains(t, buf.String(), `"msg":"step applied"`)
	assert.Contains(t, buf.String(), `"msg":"cascade applied"`)
	n, err := testutil.GatherAndCount(reg, "codebook_journal_writes_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "every journal write succeeded")
	n, err = testutil.GatherAndCount(reg, "codebook_cascade_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestEditSpec_MoveClampsPosition(t *testing.T) {
	at := 9
	assert.Equal(t, 2, position(&at, 2))
	at = -1
	assert.Equal(t, 0, position(&at, 2))
	assert.Equal(t, 2, position(nil, 2))
}

func TestBoundTexts(t *testing.T) {
	got, err := boundTexts([]any{0, 2.5})
	require.NoError(t, err)
	assert.Equal(t, [2]string{"0", "2.5"}, got)

	got, err = boundTexts([]any{"(60,00:00:00:000)", "(60,00:01:00:000)"})
	require.NoError(t, err)
	assert.Equal(t, "(60,00:01:00:000)", got[1])

	_, err = boundTexts([]any{1})
	assert.Error(t, err)
	_, err = boundTexts([]any{true, 1})
	assert.Error(t, err)
}

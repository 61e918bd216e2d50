package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_PredicateEdits(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "predicate_edits.yaml"))
	require.NoError(t, err)

	// To regenerate:
	//   go test ./internal/harness -run TestRunWithGolden_PredicateEdits -update
	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestMarshalSnapshot_Deterministic(t *testing.T) {
	result := NewResult()
	result.AddTrace(TraceEvent{Step: 0, Op: OpRenameElement, Element: "looks", ElementID: 1, Outcome: OutcomeOK, Updated: 1, LastID: 3})
	result.AddTrace(TraceEvent{Step: 1, Op: OpDeleteArg, Element: "looks", ElementID: 1, Outcome: "NOT_FOUND", LastID: 3})
	result.Instances["p1"] = "sees(child)"
	result.Instances["a"] = "()"

	data, err := MarshalSnapshot("snap", "", result)
	require.NoError(t, err)

	want := `{"instances":{"a":"()","p1":"sees(child)"},"scenario_name":"snap","token":"test-db-default","trace":[` +
		`{"element":"looks","element_id":1,"last_id":3,"op":"rename_element","outcome":"ok","step":0,"updated":1},` +
		`{"element":"looks","element_id":1,"last_id":3,"op":"delete_arg","outcome":"NOT_FOUND","step":1}]}`
	assert.Equal(t, want, string(data))

	again, err := MarshalSnapshot("snap", "", result)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestMarshalSnapshot_KeepsToken(t *testing.T) {
	data, err := MarshalSnapshot("snap", "tok-1", NewResult())
	require.NoError(t, err)
	assert.Equal(t, `{"instances":{},"scenario_name":"snap","token":"tok-1","trace":[]}`, string(data))
}

package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/codebook/internal/ir"
)

// Snapshot captures what a scenario produced: the edit trace and the final
// display string of every instance.
// Serialized as canonical JSON for deterministic comparison.
type Snapshot struct {
	ScenarioName string            `json:"scenario_name"`
	Token        string            `json:"token"`
	Trace        []TraceEvent      `json:"trace"`
	Instances    map[string]string `json:"instances"`
}

// MarshalSnapshot renders the snapshot of result as canonical JSON.
func MarshalSnapshot(scenarioName, token string, result *Result) ([]byte, error) {
	if token == "" {
		token = "test-db-default"
	}
	return ir.MarshalCanonical(Snapshot{
		ScenarioName: scenarioName,
		Token:        token,
		Trace:        result.Trace,
		Instances:    result.Instances,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, scenario.Token, result)
}

// AssertGolden compares an existing result's snapshot against a golden
// file without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName, token string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, token, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}

package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ScenarioNotFoundError is returned when a scenario path doesn't exist.
type ScenarioNotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *ScenarioNotFoundError) Error() string {
	return fmt.Sprintf("scenario path %q does not exist", e.Path)
}

// FindScenarios resolves path to scenario files: path itself when it is a
// file, or every .yaml/.yml file directly inside it when it is a
// directory, sorted by name.
func FindScenarios(path string) ([]string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &ScenarioNotFoundError{Path: path}
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	files := []string{}
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	slices.Sort(files)
	return files, nil
}

// SuiteResult summarizes a scenario run.
type SuiteResult struct {
	TotalScenarios int               `json:"total_scenarios"`
	Passed         int               `json:"passed"`
	Failed         int               `json:"failed"`
	Failures       []ScenarioFailure `json:"failures,omitempty"`
}

// ScenarioFailure represents a scenario that failed to load, run or pass.
type ScenarioFailure struct {
	ScenarioPath string `json:"scenario_path"`
	Name         string `json:"name,omitempty"`
	Error        string `json:"error"`
}

// RunSuite loads and runs every scenario FindScenarios returns for path.
//
// For each scenario file:
//  1. Load it, resolving vocab paths from its directory
//  2. Run it via Run
//  3. Collect and report results
func RunSuite(ctx context.Context, path string, opts ...Option) (*SuiteResult, error) {
	files, err := FindScenarios(path)
	if err != nil {
		return nil, err
	}

	result := &SuiteResult{}
	fail := func(file, name, format string, args ...any) {
		result.Failed++
		result.Failures = append(result.Failures, ScenarioFailure{
			ScenarioPath: file,
			Name:         name,
			Error:        fmt.Sprintf(format, args...),
		})
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.TotalScenarios++

		scenario, err := LoadScenario(file)
		if err != nil {
			fail(file, "", "failed to load scenario: %v", err)
			continue
		}

		runResult, err := Run(ctx, scenario, opts...)
		if err != nil {
			fail(file, scenario.Name, "scenario execution failed: %v", err)
			continue
		}
		if !runResult.Pass {
			fail(file, scenario.Name, "scenario assertions failed: %s", strings.Join(runResult.Errors, "; "))
			continue
		}
		result.Passed++
	}
	return result, nil
}

package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a vocabulary editing scenario.
// Scenarios build a vocabulary, create instances of its elements, apply a
// sequence of edits and assert on the instances and vocabulary afterwards.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Vocab lists CUE files declaring the starting vocabulary.
	// Paths are relative to the scenario file location.
	Vocab []string `yaml:"vocab"`

	// Token is an optional fixed database token for deterministic tests.
	// If empty, defaults to "test-db-default".
	Token string `yaml:"token,omitempty"`

	// TicksPerSecond sets the database tick rate. Zero means the default.
	TicksPerSecond int64 `yaml:"ticks_per_second,omitempty"`

	// Instances are predicates and column predicates created after the
	// vocabulary is built. Each is tracked, so edits cascade into it.
	Instances []InstanceStep `yaml:"instances,omitempty"`

	// Steps are the vocabulary edits, applied in order.
	Steps []EditStep `yaml:"steps"`

	// Assertions validate the final instances and vocabulary.
	Assertions []Assertion `yaml:"assertions"`
}

// InstanceStep creates a named predicate or column predicate.
type InstanceStep struct {
	// Name identifies the instance in later args and assertions.
	Name string `yaml:"name"`

	// Element is the predicate or matrix element to instantiate.
	Element string `yaml:"element"`

	// Args sets argument values by argument name. Unset arguments keep
	// their default. A value of the form {instance: name} refers to an
	// earlier instance.
	Args map[string]any `yaml:"args,omitempty"`
}

// EditStep is one vocabulary edit.
type EditStep struct {
	// Op is the edit to apply. See the Op* constants.
	Op string `yaml:"op"`

	// Element names the element to edit (or create, for add_element).
	Element string `yaml:"element"`

	// Kind is "predicate" or "matrix" (add_element).
	Kind string `yaml:"kind,omitempty"`

	// Type is the matrix type (add_element) or the new argument type
	// (retype_arg).
	Type string `yaml:"type,omitempty"`

	// Arg names the argument to edit (argument ops), or declares the new
	// argument (add_arg) in its Decl form.
	Arg string `yaml:"arg,omitempty"`

	// Decl declares the argument added by add_arg.
	Decl *ArgDecl `yaml:"decl,omitempty"`

	// Args declares the arguments of a new element (add_element).
	Args []ArgDecl `yaml:"args,omitempty"`

	// To is the new name (rename_element, rename_arg).
	To string `yaml:"to,omitempty"`

	// At is the target position (add_arg, move_arg). Nil appends.
	At *int `yaml:"at,omitempty"`

	// VarLen is the new variable-length flag (set_var_len).
	VarLen bool `yaml:"var_len,omitempty"`

	// Range is the new [min, max] (set_range). Empty clears the sub-range.
	Range []any `yaml:"range,omitempty"`

	// Approved is the new approved list (set_approved). Empty clears the
	// sub-range.
	Approved []string `yaml:"approved,omitempty"`

	// ExpectError, when set, is the error code the edit must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// ArgDecl declares a formal argument, as in the CUE vocabulary.
type ArgDecl struct {
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	Hidden   bool     `yaml:"hidden,omitempty"`
	Range    []any    `yaml:"range,omitempty"`
	Approved []string `yaml:"approved,omitempty"`
}

// Edit operations.
const (
	OpAddElement    = "add_element"
	OpRemoveElement = "remove_element"
	OpRenameElement = "rename_element"
	OpSetVarLen     = "set_var_len"
	OpAddArg        = "add_arg"
	OpDeleteArg     = "delete_arg"
	OpRenameArg     = "rename_arg"
	OpRetypeArg     = "retype_arg"
	OpMoveArg       = "move_arg"
	OpSetRange      = "set_range"
	OpSetApproved   = "set_approved"
)

// Assertion validates instances or vocabulary after all steps.
type Assertion struct {
	// Type specifies the assertion type:
	// - "instance_string": instance display string equals Expect
	// - "instance_db_string": instance DB string contains Expect
	// - "element_args": element argument names equal Args, in order
	// - "element_exists": element is registered
	// - "element_absent": element is not registered
	// - "stats": database counts match Counts
	// - "replay_matches": replaying the journal reproduces the vocabulary
	Type string `yaml:"type"`

	// Instance names the instance (instance_string, instance_db_string).
	Instance string `yaml:"instance,omitempty"`

	// Element names the element (element_args, element_exists, element_absent).
	Element string `yaml:"element,omitempty"`

	// Expect is the expected string (instance_string, instance_db_string).
	Expect string `yaml:"expect,omitempty"`

	// Args are the expected argument names (element_args).
	Args []string `yaml:"args,omitempty"`

	// Counts are the expected Stats fields (stats). Keys: predicates,
	// matrices, system, index_entries, dependents.
	Counts map[string]int `yaml:"counts,omitempty"`
}

// Assertion type constants.
const (
	AssertInstanceString   = "instance_string"
	AssertInstanceDBString = "instance_db_string"
	AssertElementArgs      = "element_args"
	AssertElementExists    = "element_exists"
	AssertElementAbsent    = "element_absent"
	AssertStats            = "stats"
	AssertReplayMatches    = "replay_matches"
)

// LoadScenario reads and parses a scenario YAML file, resolving vocab
// paths relative to the file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving vocab paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, vocabPath := range scenario.Vocab {
		if !filepath.IsAbs(vocabPath) && basePath != "" {
			scenario.Vocab[i] = filepath.Join(basePath, vocabPath)
		}
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
	if len(s.Vocab) == 0 {
		return fmt.Errorf("vocab list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for _, vocabPath := range s.Vocab {
		if _, err := os.Stat(vocabPath); os.IsNotExist(err) {
			return fmt.Errorf("vocab file not found: %s", vocabPath)
		}
	}

	names := make(map[string]bool)
	for i, inst := range s.Instances {
		if inst.Name == "" {
			return fmt.Errorf("instances[%d]: name is required", i)
		}
		if names[inst.Name] {
			return fmt.Errorf("instances[%d]: duplicate instance name %q", i, inst.Name)
		}
		names[inst.Name] = true
		if inst.Element == "" {
			return fmt.Errorf("instances[%d]: element is required", i)
		}
	}

	for i := range s.Steps {
		if err := validateStep(i, &s.Steps[i]); err != nil {
			return err
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i], names); err != nil {
			return err
		}
	}
	return nil
}

// validateStep checks the fields each op needs.
func validateStep(index int, st *EditStep) error {
	if st.Element == "" {
		return fmt.Errorf("steps[%d]: element is required", index)
	}

	needArg := func() error {
		if st.Arg == "" {
			return fmt.Errorf("steps[%d]: arg is required for %s", index, st.Op)
		}
		return nil
	}

	switch st.Op {
	case OpAddElement:
		if st.Kind != "predicate" && st.Kind != "matrix" {
			return fmt.Errorf("steps[%d]: kind must be predicate or matrix for add_element", index)
		}
		if st.Kind == "matrix" && st.Type == "" {
			return fmt.Errorf("steps[%d]: type is required for a matrix", index)
		}
		if len(st.Args) == 0 {
			return fmt.Errorf("steps[%d]: args is required for add_element", index)
		}
	case OpRemoveElement, OpSetVarLen:
	case OpRenameElement:
		if st.To == "" {
			return fmt.Errorf("steps[%d]: to is required for rename_element", index)
		}
	case OpAddArg:
		if st.Decl == nil || st.Decl.Name == "" || st.Decl.Type == "" {
			return fmt.Errorf("steps[%d]: decl with name and type is required for add_arg", index)
		}
	case OpDeleteArg, OpSetRange, OpSetApproved:
		return needArg()
	case OpRenameArg:
		if st.To == "" {
			return fmt.Errorf("steps[%d]: to is required for rename_arg", index)
		}
		return needArg()
	case OpRetypeArg:
		if st.Type == "" {
			return fmt.Errorf("steps[%d]: type is required for retype_arg", index)
		}
		return needArg()
	case OpMoveArg:
		if st.At == nil {
			return fmt.Errorf("steps[%d]: at is required for move_arg", index)
		}
		return needArg()
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, st.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, instances map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertInstanceString, AssertInstanceDBString:
		if !instances[a.Instance] {
			return fmt.Errorf("assertions[%d]: unknown instance %q for %s", index, a.Instance, a.Type)
		}
	case AssertElementArgs:
		if a.Element == "" {
			return fmt.Errorf("assertions[%d]: element is required for element_args", index)
		}
		if len(a.Args) == 0 {
			return fmt.Errorf("assertions[%d]: args is required for element_args", index)
		}
	case AssertElementExists, AssertElementAbsent:
		if a.Element == "" {
			return fmt.Errorf("assertions[%d]: element is required for %s", index, a.Type)
		}
	case AssertStats:
		if len(a.Counts) == 0 {
			return fmt.Errorf("assertions[%d]: counts is required for stats", index)
		}
		for k := range a.Counts {
			if !statsKeys[k] {
				return fmt.Errorf("assertions[%d]: unknown stats key %q", index, k)
			}
		}
	case AssertReplayMatches:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

var statsKeys = map[string]bool{
	"predicates":    true,
	"matrices":      true,
	"system":        true,
	"index_entries": true,
	"dependents":    true,
}

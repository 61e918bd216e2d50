package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/codebook/internal/compiler"
	"github.com/roach88/codebook/internal/ir"
)

// ValidationResult holds validation results. Approval cycles are legal
// and do not make the vocabulary invalid.
type ValidationResult struct {
	Valid      bool                       `json:"valid"`
	Predicates int                        `json:"predicates"`
	Matrices   int                        `json:"matrices"`
	Errors     []compiler.ValidationError `json:"errors,omitempty"`
	Cycles     []compiler.ApprovalCycle   `json:"cycles,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <vocab-dir>",
		Short: "Validate a vocabulary without compiling it",
		Long: `Validate a CUE vocabulary against the naming, typing and range rules
of the data model, and report predicate approval cycles.

All validation errors are reported, not only the first.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, vocabDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loaded, err := LoadVocab(vocabDir)
	if err != nil {
		code, msg := loadErrorParts(err)
		return formatter.fail(ExitCommandError, code, msg, nil)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, vocabDir)

	result := ValidateVocab(loaded.Vocab)
	for _, c := range result.Cycles {
		formatter.VerboseLog("Approval cycle: %s", c.Message)
	}

	if formatter.JSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{Code: result.Errors[0].Code, Message: result.Errors[0].Message}
		}
		if err := formatter.Encode(resp); err != nil {
			return err
		}
	} else {
		outputValidateText(formatter, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}
	return nil
}

// ValidateVocab validates a compiled vocabulary and analyzes its approvals.
func ValidateVocab(spec *ir.VocabSpec) ValidationResult {
	errs := compiler.Validate(spec)
	return ValidationResult{
		Valid:      len(errs) == 0,
		Predicates: len(spec.Predicates),
		Matrices:   len(spec.Matrices),
		Errors:     errs,
		Cycles:     compiler.AnalyzeApprovals(spec),
	}
}

func outputValidateText(formatter *OutputFormatter, result ValidationResult) {
	w := formatter.Writer
	if !result.Valid {
		fmt.Fprintln(w, "✗ Validation failed")
		fmt.Fprintln(w)
		for _, e := range result.Errors {
			fmt.Fprintf(w, "%s\n  %s: %s\n\n", e.Field, e.Code, e.Message)
		}
		return
	}

	fmt.Fprintf(w, "✓ Vocabulary valid: %d predicate(s), %d matrix(es)\n", result.Predicates, result.Matrices)
	if len(result.Cycles) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Approval cycles:")
		for _, c := range result.Cycles {
			fmt.Fprintf(w, "  %s\n", c.Message)
		}
	}
}

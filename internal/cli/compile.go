package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/codebook/internal/compiler"
	"github.com/roach88/codebook/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult is the compiled vocabulary and its content hash.
type CompilationResult struct {
	Vocab *ir.VocabSpec `json:"vocab"`
	Hash  string        `json:"hash"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <vocab-dir>",
		Short: "Compile a CUE vocabulary to canonical IR",
		Long: `Compile the predicate and matrix declarations of a CUE vocabulary
to canonical JSON.

The vocabulary is validated first; compile fails on any validation error.
The output file holds canonical JSON, so equal vocabularies produce equal
bytes and the same hash.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, vocabDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loaded, err := LoadVocab(vocabDir)
	if err != nil {
		code, msg := loadErrorParts(err)
		return formatter.fail(ExitCommandError, code, msg, nil)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, vocabDir)

	if errs := compiler.Validate(loaded.Vocab); len(errs) > 0 {
		_ = formatter.Error(errs[0].Code, fmt.Sprintf("%s: %s", errs[0].Field, errs[0].Message), errs)
		if !formatter.JSON() {
			for _, e := range errs[1:] {
				fmt.Fprintf(formatter.Writer, "Error [%s]: %s: %s\n", e.Code, e.Field, e.Message)
			}
		}
		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	hash, err := ir.VocabHash(*loaded.Vocab)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("hashing vocabulary: %v", err), nil)
	}
	result := &CompilationResult{Vocab: loaded.Vocab, Hash: hash}

	if opts.Output != "" {
		if err := writeIRToFile(loaded.Vocab, opts.Output); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
		formatter.VerboseLog("Wrote %s", opts.Output)
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d predicate(s), %d matrix(es)\n\n",
		len(result.Vocab.Predicates), len(result.Vocab.Matrices))

	for _, s := range result.Vocab.Elements() {
		fmt.Fprintf(w, "  %s %s\n", s.Kind, signature(s))
	}
	fmt.Fprintf(w, "\nHash: %s\n", result.Hash)

	if outputFile != "" {
		fmt.Fprintf(w, "Wrote canonical IR to %s\n", outputFile)
	}
	return nil
}

// signature renders an element as name(<arg>:TYPE, ...).
func signature(s ir.ElementSpec) string {
	args := make([]string, len(s.Args))
	for i, a := range s.Args {
		args[i] = a.Name + ":" + a.Type
	}
	return fmt.Sprintf("%s(%s)", s.Name, strings.Join(args, ", "))
}

// writeIRToFile writes the vocabulary as canonical JSON.
func writeIRToFile(spec *ir.VocabSpec, filename string) error {
	data, err := ir.MarshalCanonical(spec)
	if err != nil {
		return fmt.Errorf("marshaling IR: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

package cli

import (
	"context"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/roach88/codebook/internal/ir"
	"github.com/roach88/codebook/internal/model"
	"github.com/roach88/codebook/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Token    string // optional - specific database only
}

// ReplayDatabaseResult holds the replay result for one journaled database.
type ReplayDatabaseResult struct {
	Token         string `json:"token"`
	Name          string `json:"name"`
	Edits         int    `json:"edits"`
	Elements      int    `json:"elements"`
	LastID        int64  `json:"last_id"`
	Verified      bool   `json:"verified"`
	Deterministic bool   `json:"deterministic"`
	Error         string `json:"error,omitempty"`
	Diff          string `json:"diff,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Databases      []ReplayDatabaseResult `json:"databases"`
	TotalDatabases int                    `json:"total_databases"`
	AllVerified    bool                   `json:"all_verified"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay vocabulary journals and verify them",
		Long: `Rebuild every journaled database from its edits and verify it.

Each edit is applied to a fresh database; the element's DB string and the
last allocated ID must match what was recorded. The journal is replayed
twice and both results must be identical.

Exit codes:
  0 - All journals verified
  1 - Verification failed (mismatch or non-deterministic replay)
  2 - Command error (database not found, etc.)

Examples:
  codebook replay --db ./codebook.db
  codebook replay --db ./codebook.db --token 0190f5c2-...
  codebook replay --db ./codebook.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Token, "token", "", "replay one database only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	st, err := openJournal(formatter, opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	var tokens []string
	if opts.Token != "" {
		if _, err := st.ReadDatabase(ctx, opts.Token); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeNotFound, err.Error(), nil)
		}
		tokens = []string{opts.Token}
	} else {
		recs, err := st.ListDatabases(ctx)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
		}
		for _, rec := range recs {
			tokens = append(tokens, rec.Token)
		}
	}

	result := ReplayResult{
		Databases:      make([]ReplayDatabaseResult, 0, len(tokens)),
		TotalDatabases: len(tokens),
		AllVerified:    true,
	}
	for _, token := range tokens {
		formatter.VerboseLog("Replaying %s", token)
		r, err := replayAndVerify(ctx, st, token)
		if err != nil {
			return formatter.fail(ExitCommandError, ErrCodeStoreFailed, fmt.Sprintf("failed to replay %s: %v", token, err), nil)
		}
		result.Databases = append(result.Databases, r)
		if !r.Verified || !r.Deterministic {
			result.AllVerified = false
		}
	}

	if formatter.JSON() {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(formatter, result)
}

// replayAndVerify replays token twice. A replay that stops on a mismatch
// is reported in the result; the error is for journal read failures.
func replayAndVerify(ctx context.Context, st *store.Store, token string) (ReplayDatabaseResult, error) {
	rec, err := st.ReadDatabase(ctx, token)
	if err != nil {
		return ReplayDatabaseResult{}, err
	}
	edits, err := st.ReadEdits(ctx, token)
	if err != nil {
		return ReplayDatabaseResult{}, err
	}
	r := ReplayDatabaseResult{Token: token, Name: rec.Name, Edits: len(edits)}

	first, err := st.Replay(ctx, token, model.WithLogger(quietLogger()))
	if err != nil {
		r.Error = err.Error()
		return r, nil
	}
	second, err := st.Replay(ctx, token, model.WithLogger(quietLogger()))
	if err != nil {
		r.Error = err.Error()
		return r, nil
	}
	r.Verified = true

	a, err := ir.FromDatabase(first)
	if err != nil {
		return r, err
	}
	b, err := ir.FromDatabase(second)
	if err != nil {
		return r, err
	}
	r.Diff = cmp.Diff(a, b)
	r.Deterministic = r.Diff == ""

	stats := first.Stats()
	r.Elements = stats.Predicates + stats.Matrices + stats.System
	r.LastID = int64(stats.LastID)
	return r, nil
}

func outputReplayJSON(formatter *OutputFormatter, result ReplayResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if !result.AllVerified {
		response.Status = "error"
		response.Error = &CLIError{Code: "E_REPLAY", Message: "journal verification failed"}
	}
	if err := formatter.Encode(response); err != nil {
		return err
	}
	if !result.AllVerified {
		return NewExitError(ExitFailure, "journal verification failed")
	}
	return nil
}

func outputReplayText(formatter *OutputFormatter, result ReplayResult) error {
	w := formatter.Writer

	if result.TotalDatabases == 0 {
		fmt.Fprintln(w, "No databases found in journal.")
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d database(s)\n\n", result.TotalDatabases)
	for _, r := range result.Databases {
		status := "✓"
		if !r.Verified || !r.Deterministic {
			status = "✗"
		}
		fmt.Fprintf(w, "%s %s (%s)\n", status, r.Token, r.Name)
		fmt.Fprintf(w, "  Edits: %d, elements: %d, last id: %d\n", r.Edits, r.Elements, r.LastID)
		if r.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", r.Error)
		}
		if r.Verified && !r.Deterministic {
			fmt.Fprintln(w, "  Warning: Non-deterministic replay detected!")
			if formatter.Verbose {
				fmt.Fprintln(w, r.Diff)
			}
		}
		fmt.Fprintln(w)
	}

	if result.AllVerified {
		fmt.Fprintln(w, "✓ All journals verified")
		return nil
	}
	fmt.Fprintln(w, "✗ Journal verification failed")
	return NewExitError(ExitFailure, "journal verification failed")
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/codebook/internal/model"
	"github.com/roach88/codebook/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Token    string
	Element  int64 // optional - filter to one element ID
}

// HistoryEvent is one journal row in the timeline.
type HistoryEvent struct {
	Seq         int64  `json:"seq"`
	Op          string `json:"op"`
	ElementID   int64  `json:"element_id"`
	ElementName string `json:"element_name"`
	SpecHash    string `json:"spec_hash"`
	DBString    string `json:"db_string,omitempty"`
	LastID      int64  `json:"last_id"`
}

// HistoryStats counts the timeline's edits by op.
type HistoryStats struct {
	TotalEdits int `json:"total_edits"`
	Adds       int `json:"adds"`
	Replaces   int `json:"replaces"`
	Removes    int `json:"removes"`
}

// HistoryResult holds the complete history output.
type HistoryResult struct {
	Token    string         `json:"token"`
	Name     string         `json:"name"`
	Element  int64          `json:"element,omitempty"`
	Timeline []HistoryEvent `json:"timeline"`
	Stats    HistoryStats   `json:"stats"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the edit history of a journaled database",
		Long: `Show the journaled vocabulary edits of one database in order.

Each row shows the journal sequence number, the edit (add, replace or
remove), the element it touched and the last allocated ID once the edit
completed. With --verbose the element's DB string is shown too.

Examples:
  codebook history --db ./codebook.db --token 0190f5c2-...
  codebook history --db ./codebook.db --token 0190f5c2-... --element 4
  codebook history --db ./codebook.db --token 0190f5c2-... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Token, "token", "", "database token (required)")
	_ = cmd.MarkFlagRequired("token")
	cmd.Flags().Int64Var(&opts.Element, "element", 0, "filter to one element ID")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
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

	rec, err := st.ReadDatabase(ctx, opts.Token)
	if errors.Is(err, store.ErrUnknownDatabase) {
		return formatter.fail(ExitCommandError, ErrCodeNotFound, err.Error(), nil)
	}
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
	}

	var edits []store.Edit
	if opts.Element != 0 {
		edits, err = st.ReadElementHistory(ctx, opts.Token, model.ID(opts.Element))
	} else {
		edits, err = st.ReadEdits(ctx, opts.Token)
	}
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
	}

	result := buildHistory(rec, opts.Element, edits)
	if formatter.JSON() {
		return formatter.Success(result)
	}
	outputHistoryText(formatter.Writer, result, formatter.Verbose)
	return nil
}

func buildHistory(rec store.DatabaseRecord, element int64, edits []store.Edit) HistoryResult {
	result := HistoryResult{
		Token:    rec.Token,
		Name:     rec.Name,
		Element:  element,
		Timeline: make([]HistoryEvent, 0, len(edits)),
	}
	for _, e := range edits {
		result.Timeline = append(result.Timeline, HistoryEvent{
			Seq:         e.Seq,
			Op:          string(e.Op),
			ElementID:   int64(e.ElementID),
			ElementName: e.ElementName,
			SpecHash:    e.SpecHash,
			DBString:    e.DBString,
			LastID:      int64(e.LastID),
		})
		switch e.Op {
		case store.OpAdd:
			result.Stats.Adds++
		case store.OpReplace:
			result.Stats.Replaces++
		case store.OpRemove:
			result.Stats.Removes++
		}
	}
	result.Stats.TotalEdits = len(edits)
	return result
}

func outputHistoryText(w io.Writer, result HistoryResult, verbose bool) {
	fmt.Fprintf(w, "History for Database: %s (%s)\n", result.Token, result.Name)
	if result.Element != 0 {
		fmt.Fprintf(w, "Element: %d\n", result.Element)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no edits)")
	}
	for _, ev := range result.Timeline {
		fmt.Fprintf(w, "  [%d] %-7s %d %s (last id %d)\n", ev.Seq, ev.Op, ev.ElementID, ev.ElementName, ev.LastID)
		if verbose {
			fmt.Fprintf(w, "       Hash: %s\n", truncateHash(ev.SpecHash))
			if ev.DBString != "" {
				fmt.Fprintf(w, "       DB:   %s\n", ev.DBString)
			}
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Total Edits: %d\n", result.Stats.TotalEdits)
	fmt.Fprintf(w, "  Adds:        %d\n", result.Stats.Adds)
	fmt.Fprintf(w, "  Replaces:    %d\n", result.Stats.Replaces)
	fmt.Fprintf(w, "  Removes:     %d\n", result.Stats.Removes)
}

// truncateHash shortens a hash for display.
func truncateHash(h string) string {
	if len(h) <= 16 {
		return h
	}
	return h[:8] + "..." + h[len(h)-8:]
}

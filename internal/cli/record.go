package cli

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/codebook/internal/compiler"
	"github.com/roach88/codebook/internal/metric"
	"github.com/roach88/codebook/internal/model"
	"github.com/roach88/codebook/internal/store"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	Database       string
	Name           string
	Token          string // optional; a UUIDv7 otherwise
	TicksPerSecond int64
	MetricsFile    string // optional Prometheus textfile output

	// Logger overrides the stderr logger (for testing).
	Logger *slog.Logger
}

// RecordResult describes the journaled database.
type RecordResult struct {
	Token    string            `json:"token"`
	Name     string            `json:"name"`
	Elements []RecordedElement `json:"elements"`
	Stats    model.Stats       `json:"stats"`
}

// RecordedElement is one registered element and its ID.
type RecordedElement struct {
	Name string   `json:"name"`
	ID   model.ID `json:"id"`
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record <vocab-dir>",
		Short: "Register a vocabulary in a new journaled database",
		Long: `Validate a CUE vocabulary, register it in a new database and journal
every registration to SQLite.

The journal can be replayed with "codebook replay" and inspected with
"codebook history".

Example:
  codebook record --db ./codebook.db ./vocab
  codebook record --db ./codebook.db --name gaze --tps 30 ./vocab`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Name, "name", "codebook", "database name")
	cmd.Flags().StringVar(&opts.Token, "token", "", "database token (default: a new UUIDv7)")
	cmd.Flags().Int64Var(&opts.TicksPerSecond, "tps", model.DefaultTPS, "ticks per second for time stamps")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics", "", "write Prometheus metrics to this file")

	return cmd
}

func runRecord(opts *RecordOptions, vocabDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: opts.logLevel()}))
	}

	loaded, err := LoadVocab(vocabDir)
	if err != nil {
		code, msg := loadErrorParts(err)
		return formatter.fail(ExitCommandError, code, msg, nil)
	}
	if errs := compiler.Validate(loaded.Vocab); len(errs) > 0 {
		return formatter.fail(ExitFailure, errs[0].Code, fmt.Sprintf("%s: %s", errs[0].Field, errs[0].Message), errs)
	}
	logger.Info("vocabulary compiled", "dir", vocabDir,
		"predicates", len(loaded.Vocab.Predicates), "matrices", len(loaded.Vocab.Matrices))

	reg := prometheus.NewRegistry()
	var metrics *metric.Metrics
	if opts.MetricsFile != "" {
		if metrics, err = metric.New(reg); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("metrics: %v", err), nil)
		}
	}

	dbOpts := []model.Option{
		model.WithLogger(logger),
		model.WithTicksPerSecond(opts.TicksPerSecond),
		model.WithMetrics(metrics),
	}
	if opts.Token != "" {
		dbOpts = append(dbOpts, model.WithToken(opts.Token))
	}
	db, err := model.New(opts.Name, dbOpts...)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStoreFailed, fmt.Sprintf("failed to open database: %v", err), nil)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec, err := store.NewRecorder(ctx, st, db,
		store.WithRecorderLogger(logger),
		store.WithRecorderMetrics(metrics),
	)
	if err != nil {
		return formatter.fail(ExitCommandError, ErrCodeStoreFailed, err.Error(), nil)
	}

	ids, err := compiler.Build(ctx, rec, loaded.Vocab)
	if err != nil {
		return formatter.fail(ExitFailure, ErrCodeRegisterFailed, err.Error(), nil)
	}
	logger.Info("vocabulary recorded", "token", db.Token(), "elements", len(ids), "last_id", db.Clock().Current())

	if opts.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.MetricsFile, reg); err != nil {
			return formatter.fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing metrics: %v", err), nil)
		}
	}

	result := RecordResult{Token: db.Token(), Name: db.Name(), Stats: db.Stats()}
	for _, name := range slices.SortedFunc(maps.Keys(ids), func(a, b string) int {
		return cmp.Compare(ids[a], ids[b])
	}) {
		result.Elements = append(result.Elements, RecordedElement{Name: name, ID: ids[name]})
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	w := formatter.Writer
	fmt.Fprintf(w, "✓ Recorded %d element(s)\n\n", len(result.Elements))
	fmt.Fprintf(w, "Token: %s\n", result.Token)
	for _, e := range result.Elements {
		fmt.Fprintf(w, "  %4d  %s\n", e.ID, e.Name)
	}
	fmt.Fprintf(w, "\nLast ID: %d\n", result.Stats.LastID)
	return nil
}

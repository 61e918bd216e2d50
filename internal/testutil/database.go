package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/roach88/codebook/internal/model"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewDatabase creates an empty database named "test" with token
// "test-db-default" and a discarding logger. opts apply after those
// defaults, so they can override any of them.
func NewDatabase(tb testing.TB, opts ...model.Option) *model.Database {
	tb.Helper()
	base := []model.Option{
		model.WithLogger(DiscardLogger()),
		model.WithTokenGenerator(NewFixedTokenGenerator("")),
	}
	db, err := model.New("test", append(base, opts...)...)
	if err != nil {
		tb.Fatalf("model.New() failed: %v", err)
	}
	return db
}

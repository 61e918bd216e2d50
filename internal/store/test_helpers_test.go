package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/roach88/codebook/internal/ir"
	"github.com/roach88/codebook/internal/model"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func writeTestDatabase(t *testing.T, s *Store, token string) {
	t.Helper()
	err := s.WriteDatabase(context.Background(), DatabaseRecord{
		Token:          token,
		Name:           "test",
		TicksPerSecond: 60,
		IRVersion:      ir.IRVersion,
		ToolVersion:    ir.ToolVersion,
	})
	if err != nil {
		t.Fatalf("WriteDatabase() failed: %v", err)
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixedToken string

func (f fixedToken) Generate() string { return string(f) }

// newTestDatabase creates an empty model database with a fixed token.
func newTestDatabase(t *testing.T, token string) *model.Database {
	t.Helper()
	db, err := model.New("test",
		model.WithLogger(quietLogger()),
		model.WithTokenGenerator(fixedToken(token)),
	)
	if err != nil {
		t.Fatalf("model.New() failed: %v", err)
	}
	return db
}

func mustBuild(t *testing.T, db *model.Database, s ir.ElementSpec) model.VocabElement {
	t.Helper()
	ve, err := ir.Build(db, s)
	if err != nil {
		t.Fatalf("ir.Build(%s) failed: %v", s.Name, err)
	}
	return ve
}

func predSpec(name string, args ...ir.ArgSpec) ir.ElementSpec {
	return ir.ElementSpec{Kind: ir.KindPredicate, Name: name, Args: args}
}

func matrixSpec(name, mtype string, args ...ir.ArgSpec) ir.ElementSpec {
	return ir.ElementSpec{Kind: ir.KindMatrix, Name: name, Type: mtype, Args: args}
}

func arg(name, ftype string) ir.ArgSpec {
	return ir.ArgSpec{Name: name, Type: ftype}
}

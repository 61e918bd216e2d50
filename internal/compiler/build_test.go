package compiler

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/codebook/internal/ir"
	"github.com/roach88/codebook/internal/model"
	"github.com/roach88/codebook/internal/store"
	"github.com/roach88/codebook/internal/testutil"
)

// nestedVocab has a self-approving predicate and a matrix approving both
// predicates.
func nestedVocab() *ir.VocabSpec {
	return &ir.VocabSpec{
		Predicates: []ir.ElementSpec{
			pred("tree", arg("<label>", "NOMINAL"), approves("<left>", "tree")),
			pred("says", arg("<what>", "QUOTE_STRING")),
		},
		Matrices: []ir.ElementSpec{
			matrix("events", "MATRIX", approves("<act>", "tree", "says"), arg("<n>", "INTEGER")),
		},
	}
}

func approvedIDs(t *testing.T, db *model.Database, name string, pos int) []model.ID {
	t.Helper()
	ve, err := db.Vocab().VocabElementByName(name)
	require.NoError(t, err)
	fa, err := ve.FormalArg(pos)
	require.NoError(t, err)
	pfa, ok := fa.(*model.PredFormalArg)
	require.True(t, ok, "argument %d of %s is %T", pos, name, fa)
	ids, err := pfa.ApprovedList()
	require.NoError(t, err)
	return ids
}

func TestBuild_Direct(t *testing.T) {
	db := testutil.NewDatabase(t)
	spec := nestedVocab()
	require.Empty(t, Validate(spec))

	ids, err := Build(context.Background(), Direct(db), spec)
	require.NoError(t, err)

	assert.Equal(t, map[string]model.ID{"tree": 1, "says": 4, "events": 6}, ids)
	assert.Equal(t, []model.ID{1}, approvedIDs(t, db, "tree", 1))
	assert.Equal(t, []model.ID{1, 4}, approvedIDs(t, db, "events", 0))

	got, err := ir.FromDatabase(db)
	require.NoError(t, err)
	require.Len(t, got.Predicates, 2)
	assert.Equal(t, []string{"tree"}, got.Predicates[0].Args[1].Approved)
}

func TestBuild_DependencyOrder(t *testing.T) {
	db := testutil.NewDatabase(t)
	spec := &ir.VocabSpec{
		Predicates: []ir.ElementSpec{
			pred("outer", approves("<inner>", "inner")),
			pred("inner", arg("<n>", "FLOAT")),
		},
	}

	ids, err := Build(context.Background(), Direct(db), spec)
	require.NoError(t, err)
	assert.Less(t, ids["inner"], ids["outer"], "approved predicates register first")
	assert.Equal(t, []model.ID{ids["inner"]}, approvedIDs(t, db, "outer", 0))
}

func TestBuild_MutualApproval(t *testing.T) {
	db := testutil.NewDatabase(t)
	spec := &ir.VocabSpec{
		Predicates: []ir.ElementSpec{
			pred("ask", approves("<reply>", "answer")),
			pred("answer", approves("<followup>", "ask", "answer")),
		},
	}

	ids, err := Build(context.Background(), Direct(db), spec)
	require.NoError(t, err)
	assert.Equal(t, []model.ID{ids["answer"]}, approvedIDs(t, db, "ask", 0))
	assert.ElementsMatch(t, []model.ID{ids["ask"], ids["answer"]}, approvedIDs(t, db, "answer", 0))
}

func TestBuild_StopsAtFirstFailure(t *testing.T) {
	db := testutil.NewDatabase(t)
	spec := &ir.VocabSpec{
		Predicates: []ir.ElementSpec{
			pred("ok", arg("<a>", "UNTYPED")),
			pred("broken", approves("<a>", "ghost")),
		},
	}

	ids, err := Build(context.Background(), Direct(db), spec)
	var be *BuildError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "broken", be.Element)
	assert.Contains(t, ids, "ok")
	assert.NotContains(t, ids, "broken")
}

func TestBuild_Cancelled(t *testing.T) {
	db := testutil.NewDatabase(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ids, err := Build(ctx, Direct(db), nestedVocab())
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ids)
	assert.Equal(t, 0, db.Vocab().Len())
}

func TestBuild_Recorded(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	db := testutil.NewDatabase(t)
	rec, err := store.NewRecorder(ctx, s, db)
	require.NoError(t, err)

	_, err = Build(ctx, rec, nestedVocab())
	require.NoError(t, err)

	edits, err := s.ReadEdits(ctx, db.Token())
	require.NoError(t, err)
	var ops []store.Op
	for _, e := range edits {
		ops = append(ops, e.Op)
	}
	assert.Equal(t, []store.Op{store.OpAdd, store.OpReplace, store.OpAdd, store.OpAdd}, ops)

	replayed, err := s.Replay(ctx, db.Token(), model.WithLogger(db.Logger()))
	require.NoError(t, err)
	want, err := ir.FromDatabase(db)
	require.NoError(t, err)
	got, err := ir.FromDatabase(replayed)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

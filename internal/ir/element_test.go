package ir

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/codebook/internal/model"
)

func newDB(t *testing.T) *model.Database {
	t.Helper()
	db, err := model.New("ir", model.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	return db
}

func add(t *testing.T, db *model.Database, s ElementSpec) model.ID {
	t.Helper()
	ve, err := Build(db, s)
	require.NoError(t, err)
	id, err := db.Vocab().AddElement(ve)
	require.NoError(t, err)
	return id
}

func capture(t *testing.T, db *model.Database, id model.ID) ElementSpec {
	t.Helper()
	ve, err := db.Vocab().VocabElement(id)
	require.NoError(t, err)
	s, err := FromElement(ve)
	require.NoError(t, err)
	return s
}

// withoutIDs clears what the vocabulary list assigns.
func withoutIDs(s ElementSpec) ElementSpec {
	s.ID = model.InvalidID
	s.CPArgIDs = nil
	args := make([]ArgSpec, len(s.Args))
	for i, a := range s.Args {
		a.ID = model.InvalidID
		args[i] = a
	}
	s.Args = args
	return s
}

func TestBuildAndCapture(t *testing.T) {
	db := newDB(t)
	ts := model.TimeStamp{TPS: 60, Ticks: 3600}

	pred := ElementSpec{
		Kind: KindPredicate,
		Name: "p",
		Args: []ArgSpec{
			{Name: "<i>", Type: "INTEGER", SubRange: true, Min: "-5", Max: "5"},
			{Name: "<f>", Type: "FLOAT", SubRange: true, Min: "0.5", Max: "99.9999"},
			{Name: "<n>", Type: "NOMINAL", SubRange: true, Approved: []string{"a", "b c"}},
			{Name: "<t>", Type: "TIME_STAMP", SubRange: true, Min: "(60,00:00:00:000)", Max: ts.DBString()},
			{Name: "<q>", Type: "QUOTE_STRING", Hidden: true},
			{Name: "<u>", Type: "UNTYPED"},
		},
	}
	pid := add(t, db, pred)
	assert.Equal(t, model.ID(1), pid)

	got := capture(t, db, pid)
	assert.Equal(t, pid, got.ID)
	for i, a := range got.Args {
		assert.Equal(t, model.ID(2+i), a.ID, a.Name)
	}
	if diff := cmp.Diff(pred, withoutIDs(got)); diff != "" {
		t.Errorf("captured predicate mismatch (-want +got):\n%s", diff)
	}

	mat := ElementSpec{
		Kind:   KindMatrix,
		Name:   "events",
		Type:   "MATRIX",
		VarLen: true,
		Args: []ArgSpec{
			{Name: "<what>", Type: "PREDICATE", SubRange: true, Approved: []string{"p"}},
			{Name: "<count>", Type: "INTEGER"},
		},
	}
	mid := add(t, db, mat)
	got = capture(t, db, mid)
	if diff := cmp.Diff(mat, withoutIDs(got)); diff != "" {
		t.Errorf("captured matrix mismatch (-want +got):\n%s", diff)
	}
	// <ord>, <onset>, <offset> come after the literals, then the mirrors.
	assert.Equal(t, []model.ID{mid + 3, mid + 4, mid + 5, mid + 6, mid + 7}, got.CPArgIDs)
}

func TestBuild_Errors(t *testing.T) {
	db := newDB(t)

	tests := []struct {
		name string
		spec ElementSpec
	}{
		{"unknown kind", ElementSpec{Kind: "table", Name: "p", Args: []ArgSpec{{Name: "<a>", Type: "INTEGER"}}}},
		{"unknown matrix type", ElementSpec{Kind: KindMatrix, Name: "m", Type: "matrix", Args: []ArgSpec{{Name: "<a>", Type: "INTEGER"}}}},
		{"unknown arg type", ElementSpec{Kind: KindPredicate, Name: "p", Args: []ArgSpec{{Name: "<a>", Type: "DATE"}}}},
		{"undefined arg type", ElementSpec{Kind: KindPredicate, Name: "p", Args: []ArgSpec{{Name: "<a>", Type: "UNDEFINED"}}}},
		{"bad arg name", ElementSpec{Kind: KindPredicate, Name: "p", Args: []ArgSpec{{Name: "a", Type: "INTEGER"}}}},
		{"bad bound", ElementSpec{Kind: KindPredicate, Name: "p", Args: []ArgSpec{{Name: "<a>", Type: "INTEGER", SubRange: true, Min: "1.5"}}}},
		{"inverted range", ElementSpec{Kind: KindPredicate, Name: "p", Args: []ArgSpec{{Name: "<a>", Type: "FLOAT", SubRange: true, Min: "2", Max: "1"}}}},
		{"range on string", ElementSpec{Kind: KindPredicate, Name: "p", Args: []ArgSpec{{Name: "<a>", Type: "QUOTE_STRING", SubRange: true}}}},
		{"unknown approved predicate", ElementSpec{Kind: KindPredicate, Name: "p", Args: []ArgSpec{{Name: "<a>", Type: "PREDICATE", SubRange: true, Approved: []string{"nope"}}}}},
		{"duplicate arg", ElementSpec{Kind: KindPredicate, Name: "p", Args: []ArgSpec{{Name: "<a>", Type: "INTEGER"}, {Name: "<a>", Type: "FLOAT"}}}},
		{"wrong kind for matrix type", ElementSpec{Kind: KindMatrix, Name: "m", Type: "NOMINAL", Args: []ArgSpec{{Name: "<a>", Type: "FLOAT"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(db, tt.spec)
			assert.Error(t, err)
		})
	}
}

func TestApplyTo_EditsInPlace(t *testing.T) {
	db := newDB(t)
	pid := add(t, db, ElementSpec{Kind: KindPredicate, Name: "p", Args: []ArgSpec{
		{Name: "<a>", Type: "INTEGER"},
		{Name: "<b>", Type: "NOMINAL"},
		{Name: "<c>", Type: "FLOAT"},
	}})
	cur := capture(t, db, pid)

	// Swap the names of <a> and <b>, retype <c>, drop nothing, add <d>.
	want := cur
	want.Args = []ArgSpec{
		{ID: cur.Args[1].ID, Name: "<a>", Type: "NOMINAL", SubRange: true, Approved: []string{"x"}},
		{ID: cur.Args[0].ID, Name: "<b>", Type: "INTEGER", SubRange: true, Min: "1", Max: "3"},
		{ID: cur.Args[2].ID, Name: "<c>", Type: "QUOTE_STRING"},
		{Name: "<d>", Type: "UNTYPED"},
	}

	ve, err := db.Vocab().VocabElement(pid)
	require.NoError(t, err)
	edited, err := ApplyTo(ve, want)
	require.NoError(t, err)
	require.NoError(t, db.Vocab().ReplaceVocabElement(edited))

	got := capture(t, db, pid)
	want.Args[3].ID = got.Args[3].ID
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("edited element mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, model.ID(5), got.Args[3].ID, "new argument takes the next ID")
}

func TestApplyTo_DeletesMissingArgs(t *testing.T) {
	db := newDB(t)
	pid := add(t, db, ElementSpec{Kind: KindPredicate, Name: "p", Args: []ArgSpec{
		{Name: "<a>", Type: "INTEGER"},
		{Name: "<b>", Type: "INTEGER"},
	}})
	cur := capture(t, db, pid)

	want := cur
	want.Name = "q"
	want.VarLen = true
	want.Args = cur.Args[1:]

	ve, err := db.Vocab().VocabElement(pid)
	require.NoError(t, err)
	edited, err := ApplyTo(ve, want)
	require.NoError(t, err)
	require.NoError(t, db.Vocab().ReplaceVocabElement(edited))

	got := capture(t, db, pid)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("edited element mismatch (-want +got):\n%s", diff)
	}
	_, err = db.Index().Get(cur.Args[0].ID)
	assert.Error(t, err, "deleted argument leaves the index")
}

// A recorded edit applied to an identical vocabulary must allocate the same
// IDs, mirrors included. A moved argument keeps its mirror.
func TestApplyTo_ReproducesMirrorIDs(t *testing.T) {
	matrix := ElementSpec{Kind: KindMatrix, Name: "m", Type: "MATRIX", Args: []ArgSpec{
		{Name: "<a>", Type: "INTEGER"},
		{Name: "<b>", Type: "INTEGER"},
	}}

	live := newDB(t)
	mid := add(t, live, matrix)

	// Move <b> to the front by hand and append <c>.
	cur, err := live.Vocab().VocabElement(mid)
	require.NoError(t, err)
	edit := cur.Clone()
	b, err := edit.FormalArg(1)
	require.NoError(t, err)
	require.NoError(t, edit.DeleteFormalArg(1))
	require.NoError(t, edit.InsertFormalArg(b, 0))
	c, err := model.NewIntFormalArg(live, "<c>")
	require.NoError(t, err)
	require.NoError(t, edit.AppendFormalArg(c))
	require.NoError(t, live.Vocab().ReplaceVocabElement(edit))
	recorded := capture(t, live, mid)

	assert.Equal(t, []model.ID{3, 2, 9}, []model.ID{recorded.Args[0].ID, recorded.Args[1].ID, recorded.Args[2].ID})
	assert.Equal(t, []model.ID{4, 5, 6, 8, 7, 10}, recorded.CPArgIDs)

	replay := newDB(t)
	require.Equal(t, mid, add(t, replay, matrix))
	ve, err := replay.Vocab().VocabElement(mid)
	require.NoError(t, err)
	edited, err := ApplyTo(ve, recorded)
	require.NoError(t, err)
	require.NoError(t, replay.Vocab().ReplaceVocabElement(edited))

	if diff := cmp.Diff(recorded, capture(t, replay, mid)); diff != "" {
		t.Errorf("replayed element mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyTo_RejectsMirrorMismatch(t *testing.T) {
	db := newDB(t)
	mid := add(t, db, ElementSpec{Kind: KindMatrix, Name: "m", Type: "MATRIX", Args: []ArgSpec{
		{Name: "<a>", Type: "INTEGER"},
		{Name: "<b>", Type: "INTEGER"},
	}})
	s := capture(t, db, mid)
	s.CPArgIDs[3], s.CPArgIDs[4] = s.CPArgIDs[4], s.CPArgIDs[3]

	ve, err := db.Vocab().VocabElement(mid)
	require.NoError(t, err)
	_, err = ApplyTo(ve, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "column predicate arg 3 has id 7, recorded 8")

	s.CPArgIDs = s.CPArgIDs[:4]
	_, err = ApplyTo(ve, s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "4 column predicate args recorded, have 5")
}

func TestFromDatabase(t *testing.T) {
	db := newDB(t)
	add(t, db, ElementSpec{Kind: KindMatrix, Name: "m", Type: "FLOAT", Args: []ArgSpec{{Name: "<v>", Type: "FLOAT"}}})
	add(t, db, ElementSpec{Kind: KindPredicate, Name: "p", Args: []ArgSpec{{Name: "<a>", Type: "UNTYPED"}}})

	v, err := FromDatabase(db)
	require.NoError(t, err)
	require.Len(t, v.Predicates, 1)
	require.Len(t, v.Matrices, 1)
	assert.Equal(t, "p", v.Predicates[0].Name)
	assert.Equal(t, "m", v.Matrices[0].Name)
	assert.Equal(t, []string{"p", "m"}, []string{v.Elements()[0].Name, v.Elements()[1].Name})
}

package model

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVocabList_AddElementIndexesEverything(t *testing.T) {
	db := newTestDB(t)
	id := addMatrix(t, db, "m", MatrixMatrix, intArg(t, db, "<a>"), nominalArg(t, db, "<b>"))

	// Element, two literal arguments, three fixed and two mirrored
	// column-predicate arguments.
	if diff := cmp.Diff([]ID{1, 2, 3, 4, 5, 6, 7, 8}, db.Index().IDs()); diff != "" {
		t.Errorf("index ids mismatch (-want +got):\n%s", diff)
	}
	for _, eid := range db.Index().IDs() {
		e, err := db.Index().Get(eid)
		require.NoError(t, err)
		assert.Equal(t, eid, e.ID())
		if fa, ok := e.(FormalArgument); ok {
			assert.Equal(t, id, fa.ItsVocabElementID())
		}
	}

	require.NoError(t, db.Vocab().RemoveVocabElement(id))
	assert.Equal(t, 0, db.Index().Len())
	for eid := ID(1); eid <= 8; eid++ {
		assert.False(t, db.Index().Exists(eid))
	}
	assert.Equal(t, 0, db.Vocab().Len())
}

func TestVocabList_AddElementRejectsDuplicateName(t *testing.T) {
	db := newTestDB(t)
	addPred(t, db, "p3", intArg(t, db, "<a>"))
	indexLen, vocabLen := db.Index().Len(), db.Vocab().Len()

	dup, err := NewPredicateVocabElement(db, "p3")
	require.NoError(t, err)
	require.NoError(t, dup.AppendFormalArg(intArg(t, db, "<b>")))

	_, err = db.Vocab().AddElement(dup)
	require.Error(t, err)
	assert.True(t, IsConsistencyError(err))
	assert.True(t, HasCode(err, ErrCodeDuplicate))

	assert.Equal(t, indexLen, db.Index().Len())
	assert.Equal(t, vocabLen, db.Vocab().Len())
	assert.Equal(t, InvalidID, dup.ID())
}

func TestVocabList_AddElementPreconditions(t *testing.T) {
	db := newTestDB(t)
	id := addPred(t, db, "p", intArg(t, db, "<a>"))

	_, err := db.Vocab().AddElement(nil)
	assert.True(t, HasCode(err, ErrCodeNilArgument))

	_, err = db.Vocab().AddElement(editable(t, db, id))
	assert.True(t, HasCode(err, ErrCodeAlreadyIndexed))

	other := newTestDB(t)
	foreign, err := NewPredicateVocabElement(other, "f")
	require.NoError(t, err)
	require.NoError(t, foreign.AppendFormalArg(intArg(t, other, "<a>")))
	_, err = db.Vocab().AddElement(foreign)
	assert.True(t, HasCode(err, ErrCodeDBMismatch))

	empty, err := NewPredicateVocabElement(db, "empty")
	require.NoError(t, err)
	_, err = db.Vocab().AddElement(empty)
	assert.True(t, HasCode(err, ErrCodeIllFormed))

	// Predicates and matrices share one namespace.
	mve, err := NewMatrixVocabElement(db, "p", MatrixInteger)
	require.NoError(t, err)
	require.NoError(t, mve.AppendFormalArg(intArg(t, db, "<i>")))
	_, err = db.Vocab().AddElement(mve)
	assert.True(t, HasCode(err, ErrCodeDuplicate))
}

func TestVocabList_Lookups(t *testing.T) {
	db := newTestDB(t)
	pID := addPred(t, db, "p", intArg(t, db, "<a>"))
	mID := addMatrix(t, db, "my col", MatrixFloat, floatArg(t, db, "<f>"))

	sys, err := NewPredicateVocabElement(db, "sys")
	require.NoError(t, err)
	require.NoError(t, sys.AppendFormalArg(intArg(t, db, "<a>")))
	sys.SetSystem()
	_, err = db.Vocab().AddElement(sys)
	require.NoError(t, err)

	ok, err := db.Vocab().InVocabList(pID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = db.Vocab().InVocabList(999)
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = db.Vocab().InVocabList(InvalidID)
	assert.True(t, HasCode(err, ErrCodeInvalidID))

	ok, err = db.Vocab().PredInVocabList("p")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = db.Vocab().PredInVocabList("my col")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = db.Vocab().MatrixInVocabList("my col")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = db.Vocab().InVocabListByName("")
	assert.True(t, HasCode(err, ErrCodeNilArgument))
	_, err = db.Vocab().InVocabListByName("a,b")
	assert.True(t, HasCode(err, ErrCodeMalformedName))

	ve, err := db.Vocab().VocabElementByName("my col")
	require.NoError(t, err)
	assert.Equal(t, mID, ve.ID())
	_, err = db.Vocab().VocabElementByName("nope")
	assert.True(t, HasCode(err, ErrCodeNotFound))

	preds := db.Vocab().Preds()
	require.Len(t, preds, 1, "system elements are excluded")
	assert.Equal(t, "p", preds[0].Name())
	require.Len(t, db.Vocab().Matricies(), 1)

	empty := newTestDB(t)
	assert.Nil(t, empty.Vocab().Preds())
	assert.Nil(t, empty.Vocab().Matricies())
}

func TestVocabList_VocabElementReturnsCopy(t *testing.T) {
	db := newTestDB(t)
	id := addPred(t, db, "p", intArg(t, db, "<a>"))

	ve := editable(t, db, id)
	require.NoError(t, ve.SetName("renamed"))

	again := editable(t, db, id)
	assert.Equal(t, "p", again.Name(), "edits to a copy do not leak into the registry")
}

func TestVocabList_ReplaceKeepsUntouchedIDs(t *testing.T) {
	db := newTestDB(t)
	id := addMatrix(t, db, "m", MatrixMatrix, intArg(t, db, "<a>"), nominalArg(t, db, "<b>"))
	// m=1, <a>=2, <b>=3, <ord>=4, <onset>=5, <offset>=6, mirrors 7, 8.

	ve := editable(t, db, id)
	require.NoError(t, ve.InsertFormalArg(floatArg(t, db, "<c>"), 0))
	require.NoError(t, db.Vocab().ReplaceVocabElement(ve))

	mve := editable(t, db, id).(*MatrixVocabElement)
	var lit, cp []ID
	for _, fa := range mve.FormalArgs() {
		lit = append(lit, fa.ID())
	}
	for _, fa := range mve.CPFormalArgs() {
		cp = append(cp, fa.ID())
	}
	assert.Equal(t, []ID{9, 2, 3}, lit)
	assert.Equal(t, []ID{4, 5, 6, 10, 7, 8}, cp)
	assert.Equal(t, 10, db.Index().Len())

	// Deleting frees exactly the argument and its mirror.
	ve = editable(t, db, id)
	require.NoError(t, ve.DeleteFormalArg(1))
	require.NoError(t, db.Vocab().ReplaceVocabElement(ve))
	assert.False(t, db.Index().Exists(2))
	assert.False(t, db.Index().Exists(7))
	assert.Equal(t, 8, db.Index().Len())
}

func TestVocabList_ReplacePreconditions(t *testing.T) {
	db := newTestDB(t)
	pID := addPred(t, db, "p", intArg(t, db, "<a>"))
	addPred(t, db, "q", intArg(t, db, "<a>"))

	vl := db.Vocab()
	assert.True(t, HasCode(vl.ReplaceVocabElement(nil), ErrCodeNilArgument))

	fresh, err := NewPredicateVocabElement(db, "fresh")
	require.NoError(t, err)
	require.NoError(t, fresh.AppendFormalArg(intArg(t, db, "<a>")))
	assert.True(t, HasCode(vl.ReplaceVocabElement(fresh), ErrCodeInvalidID))

	renamed := editable(t, db, pID)
	require.NoError(t, renamed.SetName("q"))
	assert.True(t, HasCode(vl.ReplaceVocabElement(renamed), ErrCodeDuplicate))

	mve, err := NewMatrixVocabElement(db, "p", MatrixInteger)
	require.NoError(t, err)
	require.NoError(t, mve.AppendFormalArg(intArg(t, db, "<i>")))
	mve.setID(pID)
	assert.True(t, HasCode(vl.ReplaceVocabElement(mve), ErrCodeKindMismatch))

	live := vl.byID[pID]
	assert.True(t, HasCode(vl.ReplaceVocabElement(live), ErrCodeIllFormed))

	// A failed replace leaves the element untouched.
	assert.Equal(t, "p", editable(t, db, pID).Name())
}

func TestVocabList_ReplaceRenamesElement(t *testing.T) {
	db := newTestDB(t)
	pID := addPred(t, db, "p", intArg(t, db, "<a>"))

	ve := editable(t, db, pID)
	require.NoError(t, ve.SetName("renamed"))
	require.NoError(t, db.Vocab().ReplaceVocabElement(ve))

	ok, err := db.Vocab().InVocabListByName("p")
	require.NoError(t, err)
	assert.False(t, ok)
	got, err := db.Vocab().VocabElementByName("renamed")
	require.NoError(t, err)
	assert.Equal(t, pID, got.ID())
}

func TestVocabList_RemoveVocabElementPreconditions(t *testing.T) {
	db := newTestDB(t)
	assert.True(t, HasCode(db.Vocab().RemoveVocabElement(InvalidID), ErrCodeInvalidID))
	assert.True(t, HasCode(db.Vocab().RemoveVocabElement(42), ErrCodeNotFound))
}

package model

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDB(t *testing.T, opts ...Option) *Database {
	t.Helper()
	base := []Option{WithLogger(discardLogger()), WithToken("test-db")}
	db, err := New("test", append(base, opts...)...)
	require.NoError(t, err)
	return db
}

// addPred registers a predicate with the given arguments and returns its ID.
func addPred(t *testing.T, db *Database, name string, fargs ...FormalArgument) ID {
	t.Helper()
	pve, err := NewPredicateVocabElement(db, name)
	require.NoError(t, err)
	for _, fa := range fargs {
		require.NoError(t, pve.AppendFormalArg(fa))
	}
	id, err := db.Vocab().AddElement(pve)
	require.NoError(t, err)
	return id
}

// addMatrix registers a matrix with the given arguments and returns its ID.
func addMatrix(t *testing.T, db *Database, name string, mtype MatrixType, fargs ...FormalArgument) ID {
	t.Helper()
	mve, err := NewMatrixVocabElement(db, name, mtype)
	require.NoError(t, err)
	for _, fa := range fargs {
		require.NoError(t, mve.AppendFormalArg(fa))
	}
	id, err := db.Vocab().AddElement(mve)
	require.NoError(t, err)
	return id
}

func intArg(t *testing.T, db *Database, name string) *IntFormalArg {
	t.Helper()
	fa, err := NewIntFormalArg(db, name)
	require.NoError(t, err)
	return fa
}

func floatArg(t *testing.T, db *Database, name string) *FloatFormalArg {
	t.Helper()
	fa, err := NewFloatFormalArg(db, name)
	require.NoError(t, err)
	return fa
}

func nominalArg(t *testing.T, db *Database, name string) *NominalFormalArg {
	t.Helper()
	fa, err := NewNominalFormalArg(db, name)
	require.NoError(t, err)
	return fa
}

func predArg(t *testing.T, db *Database, name string) *PredFormalArg {
	t.Helper()
	fa, err := NewPredFormalArg(db, name)
	require.NoError(t, err)
	return fa
}

func untypedArg(t *testing.T, db *Database, name string) *UnTypedFormalArg {
	t.Helper()
	fa, err := NewUnTypedFormalArg(db, name)
	require.NoError(t, err)
	return fa
}

// editable returns a detached copy of a registered element.
func editable(t *testing.T, db *Database, id ID) VocabElement {
	t.Helper()
	ve, err := db.Vocab().VocabElement(id)
	require.NoError(t, err)
	return ve
}

// argID returns the ID of the registered element's argument at pos.
func argID(t *testing.T, db *Database, veID ID, pos int) ID {
	t.Helper()
	fa, err := editable(t, db, veID).FormalArg(pos)
	require.NoError(t, err)
	return fa.ID()
}

func quoteArg(t *testing.T, db *Database, name string) *QuoteStringFormalArg {
	t.Helper()
	fa, err := NewQuoteStringFormalArg(db, name)
	require.NoError(t, err)
	return fa
}

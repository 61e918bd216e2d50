package model

import "fmt"

// ColPredicate is an instance of a matrix element's column predicate:
// <ord>, <onset> and <offset> followed by one value per matrix argument.
type ColPredicate struct {
	instance
}

func emptyColPredicate(db *Database) *ColPredicate {
	return &ColPredicate{instance{db: db}}
}

// NewColPredicate creates a column predicate of the matrix mveID with every
// argument at its default value, and registers it with db. InvalidID yields
// the empty column predicate.
func NewColPredicate(db *Database, mveID ID) (*ColPredicate, error) {
	const op = "NewColPredicate"
	if db == nil {
		return nil, newError(ErrCodeNilArgument, op, "database is nil")
	}
	cp := emptyColPredicate(db)
	if mveID != InvalidID {
		mve, err := db.vocab.matrixElement(op, mveID)
		if err != nil {
			return nil, err
		}
		cp.veID = mveID
		cp.build(mve.cpArgs)
	}
	db.track(cp)
	return cp, nil
}

// MVEID returns the matrix element's ID, InvalidID when empty.
func (cp *ColPredicate) MVEID() ID {
	return cp.veID
}

func (cp *ColPredicate) element() *MatrixVocabElement {
	if !cp.veID.Valid() {
		return nil
	}
	mve, _ := cp.db.vocab.byID[cp.veID].(*MatrixVocabElement)
	return mve
}

// Name returns the matrix's current name, "" when empty.
func (cp *ColPredicate) Name() string {
	if mve := cp.element(); mve != nil {
		return mve.name
	}
	return ""
}

// VarLen reports whether the matrix takes a variable-length argument list.
func (cp *ColPredicate) VarLen() bool {
	if mve := cp.element(); mve != nil {
		return mve.varLen
	}
	return false
}

// SetArg stores a copy of dv at pos. dv must be bound to the matrix's
// column-predicate argument at pos.
func (cp *ColPredicate) SetArg(pos int, dv *DataValue) error {
	const op = "ColPredicate.SetArg"
	mve := cp.element()
	if mve == nil {
		return newError(ErrCodeOutOfRange, op, "empty column predicate has no arguments")
	}
	if err := cp.setArg(op, pos, dv, mve.cpArgs); err != nil {
		return err
	}
	cp.db.deps.reindex(cp)
	return nil
}

// Clone returns a deep copy. The copy is not registered with the database.
func (cp *ColPredicate) Clone() *ColPredicate {
	return &ColPredicate{cp.clone()}
}

// String returns name(ord, onset, offset, arg, ...), or "()" when empty.
func (cp *ColPredicate) String() string {
	if cp.IsEmpty() {
		return "()"
	}
	return cp.Name() + cp.argString()
}

// DBString returns
// (colPred (id N) (mveID N) (mveName n) (varLen b) (argList (...))).
func (cp *ColPredicate) DBString() string {
	return fmt.Sprintf("(colPred (id %d) (mveID %d) (mveName %s) (varLen %t) %s)",
		cp.id, cp.veID, cp.Name(), cp.VarLen(), cp.argDBString())
}

// Validate checks the value list matches the matrix's current
// column-predicate arguments.
func (cp *ColPredicate) Validate() error {
	const op = "ColPredicate.Validate"
	var fargs []FormalArgument
	if cp.veID.Valid() {
		mve := cp.element()
		if mve == nil {
			return newIDError(ErrCodeNotFound, op, cp.veID, "matrix element not in vocab list")
		}
		fargs = mve.cpArgs
	}
	return cp.validateArgs(op, fargs)
}

func (cp *ColPredicate) applyChange(c *vocabChange) {
	if c.veID != cp.veID || !cp.veID.Valid() {
		cp.forward(c)
		return
	}
	if c.removed() {
		cp.veID = InvalidID
		cp.args = nil
		return
	}
	cp.resync(c, c.newVE.(*MatrixVocabElement).cpArgs)
}

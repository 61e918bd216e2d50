package model

import (
	"fmt"
	"slices"
)

// Names of the fixed column-predicate arguments.
const (
	OrdArgName    = "<ord>"
	OnsetArgName  = "<onset>"
	OffsetArgName = "<offset>"
)

// numFixedCPArgs is the number of column-predicate arguments preceding the
// mirrored literal arguments.
const numFixedCPArgs = 3

// MatrixVocabElement defines the column type of a spreadsheet variable.
//
// Besides its literal argument list it owns a derived column-predicate
// argument list: <ord> (Int), <onset> and <offset> (TimeStamp), followed by
// one mirror per literal argument. Every structural edit of the literal list
// performs the same edit on the mirror, so mirrors of untouched arguments
// keep their IDs.
type MatrixVocabElement struct {
	veBase
	mtype  MatrixType
	cpArgs []FormalArgument

	// retired maps a literal argument ID taken out of this copy to its
	// mirror's ID, so putting the literal back restores the same mirror.
	retired map[ID]ID
}

// NewMatrixVocabElement creates an unattached matrix element of the given
// type. The name must satisfy IsValidSVarName.
func NewMatrixVocabElement(db *Database, name string, mtype MatrixType) (*MatrixVocabElement, error) {
	const op = "NewMatrixVocabElement"
	if db == nil {
		return nil, newError(ErrCodeNilArgument, op, "database is nil")
	}
	if !IsValidSVarName(name) {
		return nil, newError(ErrCodeMalformedName, op, "invalid matrix name %q", name)
	}
	if mtype == MatrixUndefined {
		return nil, newError(ErrCodeInvalidValue, op, "matrix type is undefined")
	}

	mve := &MatrixVocabElement{veBase: veBase{db: db, name: name}, mtype: mtype}
	ord, _ := NewIntFormalArg(db, OrdArgName)
	onset, _ := NewTimeStampFormalArg(db, OnsetArgName)
	offset, _ := NewTimeStampFormalArg(db, OffsetArgName)
	for _, fa := range []FormalArgument{ord, onset, offset} {
		fa.SetHidden(true)
		mve.cpArgs = append(mve.cpArgs, fa)
	}
	return mve, nil
}

// Type returns the column type. It is fixed once the element is registered.
func (mve *MatrixVocabElement) Type() MatrixType {
	return mve.mtype
}

func (mve *MatrixVocabElement) SetName(name string) error {
	if !IsValidSVarName(name) {
		return newIDError(ErrCodeMalformedName, "MatrixVocabElement.SetName", mve.id, "invalid matrix name %q", name)
	}
	mve.name = name
	return nil
}

// NumCPFormalArgs returns the length of the column-predicate argument list.
func (mve *MatrixVocabElement) NumCPFormalArgs() int {
	return len(mve.cpArgs)
}

// CPFormalArg returns a copy of the column-predicate argument at pos.
func (mve *MatrixVocabElement) CPFormalArg(pos int) (FormalArgument, error) {
	if pos < 0 || pos >= len(mve.cpArgs) {
		return nil, newIDError(ErrCodeOutOfRange, "MatrixVocabElement.CPFormalArg", mve.id, "position %d outside [0, %d)", pos, len(mve.cpArgs))
	}
	return mve.cpArgs[pos].Clone(), nil
}

// CPFormalArgs returns copies of the column-predicate arguments in order.
func (mve *MatrixVocabElement) CPFormalArgs() []FormalArgument {
	return cloneArgs(mve.cpArgs)
}

func (mve *MatrixVocabElement) checkKind(op string, fa FormalArgument) error {
	if fa == nil {
		return nil
	}
	switch fa.Name() {
	case OrdArgName, OnsetArgName, OffsetArgName:
		return newIDError(ErrCodeDuplicate, op, mve.id, "%s is reserved for column predicates", fa.Name())
	}
	if want, single := mve.mtype.argKind(); single && fa.Type() != want {
		return newIDError(ErrCodeKindMismatch, op, mve.id, "%s matrix needs a %s argument, got %s", mve.mtype, want, fa.Type())
	}
	if mve.mtype == MatrixMatrix && fa.Type() == FargText {
		return newIDError(ErrCodeKindMismatch, op, mve.id, "text string argument in matrix")
	}
	return nil
}

// mirror copies a literal argument for the column-predicate list.
func (mve *MatrixVocabElement) mirror(fa FormalArgument, id ID) FormalArgument {
	c := fa.Clone()
	c.setID(id)
	c.base().veID = mve.id
	return c
}

func (mve *MatrixVocabElement) AppendFormalArg(fa FormalArgument) error {
	return mve.InsertFormalArg(fa, len(mve.fargs))
}

func (mve *MatrixVocabElement) InsertFormalArg(fa FormalArgument, pos int) error {
	const op = "MatrixVocabElement.InsertFormalArg"
	if err := mve.checkKind(op, fa); err != nil {
		return err
	}
	if err := mve.insertArg(op, fa, pos); err != nil {
		return err
	}
	mve.cpArgs = slices.Insert(mve.cpArgs, pos+numFixedCPArgs, mve.mirror(fa, mve.restoreMirror(fa.ID())))
	return nil
}

// retire remembers m as the mirror of literal lit, which is leaving the
// list.
func (mve *MatrixVocabElement) retire(lit, m ID) {
	if !lit.Valid() || !m.Valid() {
		return
	}
	if mve.retired == nil {
		mve.retired = make(map[ID]ID)
	}
	mve.retired[lit] = m
}

// restoreMirror returns the mirror ID retired with literal id, InvalidID
// if there is none. An ID is restored at most once.
func (mve *MatrixVocabElement) restoreMirror(id ID) ID {
	m, ok := mve.retired[id]
	if !ok {
		return InvalidID
	}
	delete(mve.retired, id)
	return m
}

func (mve *MatrixVocabElement) ReplaceFormalArg(fa FormalArgument, pos int) error {
	const op = "MatrixVocabElement.ReplaceFormalArg"
	if err := mve.checkKind(op, fa); err != nil {
		return err
	}
	var oldID, oldMirror ID
	if pos >= 0 && pos < len(mve.fargs) {
		oldID = mve.fargs[pos].ID()
		oldMirror = mve.cpArgs[pos+numFixedCPArgs].ID()
	}
	if err := mve.replaceArg(op, fa, pos); err != nil {
		return err
	}
	if fa.ID() != oldID {
		mve.retire(oldID, oldMirror)
	}
	mve.remirror(pos, oldID)
	return nil
}

func (mve *MatrixVocabElement) RetypeFormalArg(fa FormalArgument, pos int) error {
	const op = "MatrixVocabElement.RetypeFormalArg"
	if err := mve.checkKind(op, fa); err != nil {
		return err
	}
	if err := mve.retypeArg(op, fa, pos); err != nil {
		return err
	}
	mve.remirror(pos, fa.ID())
	return nil
}

// remirror refreshes the mirror of the literal at pos. The mirror keeps its
// ID when the literal kept oldID, takes back the mirror retired with the
// literal's own ID, and gets a fresh one otherwise.
func (mve *MatrixVocabElement) remirror(pos int, oldID ID) {
	fa := mve.fargs[pos]
	var id ID
	if oldID.Valid() && fa.ID() == oldID {
		id = mve.cpArgs[pos+numFixedCPArgs].ID()
	} else {
		id = mve.restoreMirror(fa.ID())
	}
	mve.cpArgs[pos+numFixedCPArgs] = mve.mirror(fa, id)
}

func (mve *MatrixVocabElement) DeleteFormalArg(pos int) error {
	if pos >= 0 && pos < len(mve.fargs) {
		mve.retire(mve.fargs[pos].ID(), mve.cpArgs[pos+numFixedCPArgs].ID())
	}
	if err := mve.deleteArg("MatrixVocabElement.DeleteFormalArg", pos); err != nil {
		return err
	}
	mve.cpArgs = slices.Delete(mve.cpArgs, pos+numFixedCPArgs, pos+numFixedCPArgs+1)
	return nil
}

func (mve *MatrixVocabElement) IsWellFormed(newElement bool) (bool, error) {
	const op = "MatrixVocabElement.IsWellFormed"
	if !mve.registration(newElement) {
		return false, nil
	}
	if !IsValidSVarName(mve.name) {
		return false, newIDError(ErrCodeMalformedName, op, mve.id, "invalid matrix name %q", mve.name)
	}
	if !newElement {
		old, ok := mve.db.vocab.byID[mve.id].(*MatrixVocabElement)
		if !ok || old.mtype != mve.mtype {
			return false, nil
		}
	}

	switch mve.mtype {
	case MatrixFloat, MatrixInteger, MatrixNominal, MatrixPredicate, MatrixText:
		want, _ := mve.mtype.argKind()
		if len(mve.fargs) != 1 || mve.fargs[0].Type() != want {
			return false, nil
		}
	case MatrixMatrix:
		if err := mve.wellFormedArgs(op); err != nil {
			return false, err
		}
	default:
		return false, newIDError(ErrCodeIllFormed, op, mve.id, "unknown matrix type %s", mve.mtype)
	}

	if err := mve.checkCPArgs(op); err != nil {
		return false, err
	}
	return true, nil
}

// checkCPArgs verifies the column-predicate list matches the literal list.
func (mve *MatrixVocabElement) checkCPArgs(op string) error {
	if len(mve.cpArgs) != len(mve.fargs)+numFixedCPArgs {
		return newIDError(ErrCodeIllFormed, op, mve.id, "column predicate list has %d args, want %d", len(mve.cpArgs), len(mve.fargs)+numFixedCPArgs)
	}
	fixed := []struct {
		name string
		kind FargType
	}{
		{OrdArgName, FargInteger},
		{OnsetArgName, FargTimeStamp},
		{OffsetArgName, FargTimeStamp},
	}
	for i, f := range fixed {
		if mve.cpArgs[i].Name() != f.name || mve.cpArgs[i].Type() != f.kind {
			return newIDError(ErrCodeIllFormed, op, mve.id, "column predicate arg %d is not %s", i, f.name)
		}
	}
	for i, fa := range mve.fargs {
		if !sameShape(fa, mve.cpArgs[i+numFixedCPArgs]) {
			return newIDError(ErrCodeIllFormed, op, mve.id, "column predicate arg %d does not mirror %s", i+numFixedCPArgs, fa.Name())
		}
	}
	return nil
}

func (mve *MatrixVocabElement) DBString() string {
	return fmt.Sprintf("((MatrixVocabElement: %d %s) (system: %t) (type: %s) (varLen: %t) (fArgList: %s))",
		mve.id, mve.name, mve.system, mve.mtype, mve.varLen, mve.argListDBString())
}

// Clone returns a deep copy with the same IDs, for editing.
func (mve *MatrixVocabElement) Clone() VocabElement {
	c := *mve
	c.fargs = cloneArgs(mve.fargs)
	c.cpArgs = cloneArgs(mve.cpArgs)
	c.retired = nil
	return &c
}

func (mve *MatrixVocabElement) Validate() error {
	const op = "MatrixVocabElement.Validate"
	if err := mve.validate(op, IsValidSVarName); err != nil {
		return err
	}
	return mve.checkCPArgs(op)
}

func (mve *MatrixVocabElement) indexedArgs() []FormalArgument {
	out := make([]FormalArgument, 0, len(mve.fargs)+len(mve.cpArgs))
	out = append(out, mve.fargs...)
	return append(out, mve.cpArgs...)
}

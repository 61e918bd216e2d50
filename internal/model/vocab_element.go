package model

import (
	"fmt"
	"slices"
	"strings"
)

// VocabElement is a named schema entry built from formal arguments: a
// PredicateVocabElement or a MatrixVocabElement.
//
// Elements are created unattached and registered with VocabList.AddElement.
// A registered element is never edited in place: callers edit a Clone and
// hand it back through VocabList.ReplaceVocabElement. FormalArg and
// FormalArgs return copies for the same reason.
type VocabElement interface {
	Entity

	Name() string
	SetName(name string) error

	// System elements are created by the application, not the user, and are
	// excluded from VocabList.Preds and VocabList.Matricies.
	System() bool
	SetSystem()

	VarLen() bool
	SetVarLen(varLen bool)

	NumFormalArgs() int
	FormalArg(pos int) (FormalArgument, error)
	FormalArgs() []FormalArgument

	AppendFormalArg(fa FormalArgument) error
	InsertFormalArg(fa FormalArgument, pos int) error

	// ReplaceFormalArg puts fa at pos. fa either carries no ID (a new
	// argument replacing the old one) or the ID of the argument it replaces
	// (an edit of that argument).
	ReplaceFormalArg(fa FormalArgument, pos int) error

	// RetypeFormalArg replaces the argument at pos with fa, a different kind,
	// keeping the old argument's ID so dependents see a type change rather
	// than a deletion.
	RetypeFormalArg(fa FormalArgument, pos int) error

	DeleteFormalArg(pos int) error

	// IsWellFormed checks the element for registration (newElement) or for
	// replacing its registered incumbent. Structural violations that can only
	// come from programmer error are returned as errors.
	IsWellFormed(newElement bool) (bool, error)

	DBString() string
	Clone() VocabElement
	Validate() error

	elementBase() *veBase

	// indexedArgs returns every argument the element keeps in the Index:
	// literal arguments, then any synthesized ones.
	indexedArgs() []FormalArgument
}

type veBase struct {
	db     *Database
	id     ID
	name   string
	system bool
	varLen bool
	fargs  []FormalArgument
}

func (b *veBase) ID() ID                 { return b.id }
func (b *veBase) setID(id ID)            { b.id = id }
func (b *veBase) DB() *Database          { return b.db }
func (b *veBase) Name() string           { return b.name }
func (b *veBase) System() bool           { return b.system }
func (b *veBase) SetSystem()             { b.system = true }
func (b *veBase) VarLen() bool           { return b.varLen }
func (b *veBase) SetVarLen(varLen bool)  { b.varLen = varLen }
func (b *veBase) NumFormalArgs() int     { return len(b.fargs) }
func (b *veBase) elementBase() *veBase   { return b }

// FormalArg returns a copy of the argument at pos.
func (b *veBase) FormalArg(pos int) (FormalArgument, error) {
	if pos < 0 || pos >= len(b.fargs) {
		return nil, newIDError(ErrCodeOutOfRange, "VocabElement.FormalArg", b.id, "position %d outside [0, %d)", pos, len(b.fargs))
	}
	return b.fargs[pos].Clone(), nil
}

// FormalArgs returns copies of all arguments in order.
func (b *veBase) FormalArgs() []FormalArgument {
	return cloneArgs(b.fargs)
}

// argByID returns the live argument with the given ID.
func (b *veBase) argByID(id ID) (FormalArgument, int) {
	for i, fa := range b.fargs {
		if fa.ID() == id {
			return fa, i
		}
	}
	return nil, -1
}

func (b *veBase) checkNewArg(op string, fa FormalArgument, skip int) error {
	if fa == nil {
		return newIDError(ErrCodeNilArgument, op, b.id, "formal argument is nil")
	}
	if fa.DB() != b.db {
		return newIDError(ErrCodeDBMismatch, op, b.id, "formal argument belongs to another database")
	}
	if owner := fa.ItsVocabElementID(); owner.Valid() && owner != b.id {
		return newIDError(ErrCodeInvalidID, op, b.id, "formal argument %s is owned by element %d", fa.Name(), owner)
	}
	for i, other := range b.fargs {
		if i == skip {
			continue
		}
		if other == fa {
			return newIDError(ErrCodeDuplicate, op, b.id, "formal argument %s already in list", fa.Name())
		}
		if other.Name() == fa.Name() {
			return newIDError(ErrCodeDuplicate, op, b.id, "duplicate formal argument name %s", fa.Name())
		}
		if fa.ID().Valid() && other.ID() == fa.ID() {
			return newIDError(ErrCodeDuplicate, op, b.id, "duplicate formal argument id %d", fa.ID())
		}
	}
	return nil
}

func (b *veBase) insertArg(op string, fa FormalArgument, pos int) error {
	if pos < 0 || pos > len(b.fargs) {
		return newIDError(ErrCodeOutOfRange, op, b.id, "position %d outside [0, %d]", pos, len(b.fargs))
	}
	if err := b.checkNewArg(op, fa, -1); err != nil {
		return err
	}
	fa.base().veID = b.id
	b.fargs = slices.Insert(b.fargs, pos, fa)
	return nil
}

func (b *veBase) replaceArg(op string, fa FormalArgument, pos int) error {
	if pos < 0 || pos >= len(b.fargs) {
		return newIDError(ErrCodeOutOfRange, op, b.id, "position %d outside [0, %d)", pos, len(b.fargs))
	}
	if err := b.checkNewArg(op, fa, pos); err != nil {
		return err
	}
	if old := b.fargs[pos]; fa.ID() != InvalidID && fa.ID() != old.ID() {
		return newIDError(ErrCodeInvalidID, op, b.id, "replacement carries id %d, slot holds %d", fa.ID(), old.ID())
	}
	fa.base().veID = b.id
	b.fargs[pos] = fa
	return nil
}

func (b *veBase) retypeArg(op string, fa FormalArgument, pos int) error {
	if pos < 0 || pos >= len(b.fargs) {
		return newIDError(ErrCodeOutOfRange, op, b.id, "position %d outside [0, %d)", pos, len(b.fargs))
	}
	if fa == nil {
		return newIDError(ErrCodeNilArgument, op, b.id, "formal argument is nil")
	}
	if fa.ID() != InvalidID {
		return newIDError(ErrCodeAlreadyIndexed, op, b.id, "retyped argument must not carry an id")
	}
	old := b.fargs[pos]
	if old.Type() == fa.Type() {
		return newIDError(ErrCodeKindMismatch, op, b.id, "argument %s is already %s", old.Name(), old.Type())
	}
	if err := b.checkNewArg(op, fa, pos); err != nil {
		return err
	}
	fa.setID(old.ID())
	fa.base().veID = b.id
	b.fargs[pos] = fa
	return nil
}

func (b *veBase) deleteArg(op string, pos int) error {
	if pos < 0 || pos >= len(b.fargs) {
		return newIDError(ErrCodeOutOfRange, op, b.id, "position %d outside [0, %d)", pos, len(b.fargs))
	}
	b.fargs = slices.Delete(b.fargs, pos, pos+1)
	return nil
}

// wellFormedArgs checks argument names are unique and no argument is a
// text string.
func (b *veBase) wellFormedArgs(op string) error {
	seen := make(map[string]bool, len(b.fargs))
	for _, fa := range b.fargs {
		if seen[fa.Name()] {
			return newIDError(ErrCodeDuplicate, op, b.id, "non unique formal argument name %s", fa.Name())
		}
		seen[fa.Name()] = true
		if fa.Type() == FargText {
			return newIDError(ErrCodeIllFormed, op, b.id, "text string argument %s not allowed here", fa.Name())
		}
	}
	return nil
}

// registration checks the parts of IsWellFormed every element shares.
func (b *veBase) registration(newElement bool) bool {
	switch {
	case b.name == "" || b.db == nil || len(b.fargs) == 0:
		return false
	case newElement:
		return !b.db.vocab.hasName(b.name)
	default:
		return b.id.Valid() && b.db.vocab.has(b.id)
	}
}

func (b *veBase) validate(op string, validName func(string) bool) error {
	if b.db == nil {
		return newIDError(ErrCodeIllFormed, op, b.id, "no database")
	}
	if !validName(b.name) {
		return newIDError(ErrCodeMalformedName, op, b.id, "invalid element name %q", b.name)
	}
	ids := make(map[ID]bool, len(b.fargs))
	for _, fa := range b.fargs {
		if err := fa.Validate(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if fa.DB() != b.db {
			return newIDError(ErrCodeDBMismatch, op, b.id, "argument %s belongs to another database", fa.Name())
		}
		if fa.ID().Valid() {
			if ids[fa.ID()] {
				return newIDError(ErrCodeDuplicate, op, b.id, "duplicate argument id %d", fa.ID())
			}
			ids[fa.ID()] = true
		}
	}
	return nil
}

func (b *veBase) argListDBString() string {
	items := make([]string, len(b.fargs))
	for i, fa := range b.fargs {
		items[i] = fa.DBString()
	}
	return joinStrings(items)
}

// signature renders name(<a>, <b>) for logs and CLI output.
func (b *veBase) signature() string {
	names := make([]string, len(b.fargs))
	for i, fa := range b.fargs {
		names[i] = fa.Name()
	}
	return b.name + "(" + strings.Join(names, ", ") + ")"
}

func cloneArgs(fargs []FormalArgument) []FormalArgument {
	if fargs == nil {
		return nil
	}
	out := make([]FormalArgument, len(fargs))
	for i, fa := range fargs {
		out[i] = fa.Clone()
	}
	return out
}

// PredicateVocabElement defines a predicate: a name and an argument list.
type PredicateVocabElement struct {
	veBase
}

// NewPredicateVocabElement creates an unattached predicate element with no
// arguments. The name must satisfy IsValidPredName.
func NewPredicateVocabElement(db *Database, name string) (*PredicateVocabElement, error) {
	const op = "NewPredicateVocabElement"
	if db == nil {
		return nil, newError(ErrCodeNilArgument, op, "database is nil")
	}
	if !IsValidPredName(name) {
		return nil, newError(ErrCodeMalformedName, op, "invalid predicate name %q", name)
	}
	return &PredicateVocabElement{veBase: veBase{db: db, name: name}}, nil
}

func (pve *PredicateVocabElement) SetName(name string) error {
	if !IsValidPredName(name) {
		return newIDError(ErrCodeMalformedName, "PredicateVocabElement.SetName", pve.id, "invalid predicate name %q", name)
	}
	pve.name = name
	return nil
}

func (pve *PredicateVocabElement) checkKind(op string, fa FormalArgument) error {
	if fa != nil && fa.Type() == FargText {
		return newIDError(ErrCodeKindMismatch, op, pve.id, "predicates cannot take text string arguments")
	}
	return nil
}

func (pve *PredicateVocabElement) AppendFormalArg(fa FormalArgument) error {
	return pve.InsertFormalArg(fa, len(pve.fargs))
}

func (pve *PredicateVocabElement) InsertFormalArg(fa FormalArgument, pos int) error {
	const op = "PredicateVocabElement.InsertFormalArg"
	if err := pve.checkKind(op, fa); err != nil {
		return err
	}
	return pve.insertArg(op, fa, pos)
}

func (pve *PredicateVocabElement) ReplaceFormalArg(fa FormalArgument, pos int) error {
	const op = "PredicateVocabElement.ReplaceFormalArg"
	if err := pve.checkKind(op, fa); err != nil {
		return err
	}
	return pve.replaceArg(op, fa, pos)
}

func (pve *PredicateVocabElement) RetypeFormalArg(fa FormalArgument, pos int) error {
	const op = "PredicateVocabElement.RetypeFormalArg"
	if err := pve.checkKind(op, fa); err != nil {
		return err
	}
	return pve.retypeArg(op, fa, pos)
}

func (pve *PredicateVocabElement) DeleteFormalArg(pos int) error {
	return pve.deleteArg("PredicateVocabElement.DeleteFormalArg", pos)
}

func (pve *PredicateVocabElement) IsWellFormed(newElement bool) (bool, error) {
	const op = "PredicateVocabElement.IsWellFormed"
	if !pve.registration(newElement) {
		return false, nil
	}
	if !IsValidPredName(pve.name) {
		return false, newIDError(ErrCodeMalformedName, op, pve.id, "invalid predicate name %q", pve.name)
	}
	if !newElement {
		if _, ok := pve.db.vocab.byID[pve.id].(*PredicateVocabElement); !ok {
			return false, nil
		}
	}
	if err := pve.wellFormedArgs(op); err != nil {
		return false, err
	}
	return true, nil
}

func (pve *PredicateVocabElement) DBString() string {
	return fmt.Sprintf("((PredicateVocabElement: %d %s) (system: %t) (varLen: %t) (fArgList: %s))",
		pve.id, pve.name, pve.system, pve.varLen, pve.argListDBString())
}

// Clone returns a deep copy with the same IDs, for editing.
func (pve *PredicateVocabElement) Clone() VocabElement {
	c := *pve
	c.fargs = cloneArgs(pve.fargs)
	return &c
}

func (pve *PredicateVocabElement) Validate() error {
	return pve.validate("PredicateVocabElement.Validate", IsValidPredName)
}

func (pve *PredicateVocabElement) indexedArgs() []FormalArgument {
	return pve.fargs
}

package model

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// VocabList is the registry of vocabulary elements, keyed by ID and by
// name. Predicates and matrices share one case-sensitive namespace.
//
// The list orchestrates structural edits: it validates them, allocates IDs
// through the Index for every argument an element owns, runs the cascade on
// dependents and only then commits the new shape to the Index.
type VocabList struct {
	db     *Database
	byID   map[ID]VocabElement
	byName map[string]ID
}

func newVocabList(db *Database) *VocabList {
	return &VocabList{
		db:     db,
		byID:   make(map[ID]VocabElement),
		byName: make(map[string]ID),
	}
}

func (vl *VocabList) has(id ID) bool {
	_, ok := vl.byID[id]
	return ok
}

func (vl *VocabList) hasName(name string) bool {
	_, ok := vl.byName[name]
	return ok
}

// element returns the live registered element.
func (vl *VocabList) element(op string, id ID) (VocabElement, error) {
	if !id.Valid() {
		return nil, newError(ErrCodeInvalidID, op, "invalid vocab element id")
	}
	ve, ok := vl.byID[id]
	if !ok {
		return nil, newIDError(ErrCodeNotFound, op, id, "vocab element not found")
	}
	return ve, nil
}

func (vl *VocabList) predicateElement(op string, id ID) (*PredicateVocabElement, error) {
	ve, err := vl.element(op, id)
	if err != nil {
		return nil, err
	}
	pve, ok := ve.(*PredicateVocabElement)
	if !ok {
		return nil, newIDError(ErrCodeKindMismatch, op, id, "%s is not a predicate", ve.Name())
	}
	return pve, nil
}

func (vl *VocabList) matrixElement(op string, id ID) (*MatrixVocabElement, error) {
	ve, err := vl.element(op, id)
	if err != nil {
		return nil, err
	}
	mve, ok := ve.(*MatrixVocabElement)
	if !ok {
		return nil, newIDError(ErrCodeKindMismatch, op, id, "%s is not a matrix", ve.Name())
	}
	return mve, nil
}

// AddElement registers ve and indexes it together with every argument it
// owns, column-predicate arguments included. The list owns ve afterwards.
//
// Fails if ve already carries an ID, belongs to another database, reuses a
// registered name, or is not well formed. A failed call changes nothing.
func (vl *VocabList) AddElement(ve VocabElement) (ID, error) {
	const op = "VocabList.AddElement"
	if ve == nil || isNil(ve) {
		return InvalidID, newError(ErrCodeNilArgument, op, "vocab element is nil")
	}
	if ve.ID() != InvalidID {
		return InvalidID, newIDError(ErrCodeAlreadyIndexed, op, ve.ID(), "vocab element already has an ID")
	}
	if ve.DB() != vl.db {
		return InvalidID, newError(ErrCodeDBMismatch, op, "vocab element belongs to another database")
	}
	if vl.hasName(ve.Name()) {
		return InvalidID, newError(ErrCodeDuplicate, op, "name %q already in vocab list", ve.Name())
	}
	if err := ve.Validate(); err != nil {
		return InvalidID, fmt.Errorf("%s: %w", op, err)
	}
	ok, err := ve.IsWellFormed(true)
	if err != nil {
		return InvalidID, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return InvalidID, newError(ErrCodeIllFormed, op, "vocab element %s is not well formed", ve.Name())
	}
	for _, fa := range ve.indexedArgs() {
		if fa.ID() != InvalidID {
			return InvalidID, newIDError(ErrCodeAlreadyIndexed, op, fa.ID(), "argument %s already has an ID", fa.Name())
		}
	}

	id, err := vl.db.index.Insert(ve)
	if err != nil {
		return InvalidID, fmt.Errorf("%s: %w", op, err)
	}
	for _, fa := range ve.indexedArgs() {
		if _, err := vl.db.index.Insert(fa); err != nil {
			return InvalidID, fmt.Errorf("%s: %w", op, err)
		}
		fa.base().veID = id
	}
	vl.byID[id] = ve
	vl.byName[ve.Name()] = id

	vl.db.logger.Info("vocab element added",
		"id", id,
		"name", ve.Name(),
		"signature", ve.elementBase().signature(),
	)
	vl.db.metrics.RecordEdit("add")
	vl.db.metrics.SetVocabSize(len(vl.byID))
	return id, nil
}

// RemoveVocabElement unregisters the element and removes it and all its
// arguments from the Index.
//
// Dependents are updated first: data values bound to its arguments become
// Undefined and unbound, its predicate instances become empty, and
// predicate arguments elsewhere stop approving it.
func (vl *VocabList) RemoveVocabElement(id ID) error {
	const op = "VocabList.RemoveVocabElement"
	ve, err := vl.element(op, id)
	if err != nil {
		return err
	}

	if _, ok := ve.(*PredicateVocabElement); ok {
		if err := vl.dropApprovals(id); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	c := &vocabChange{veID: id, deltas: make(map[ID]*fargDelta)}
	for _, fa := range ve.indexedArgs() {
		c.deltas[fa.ID()] = &fargDelta{old: fa}
	}
	n := vl.db.cascade(c)

	for _, fa := range ve.indexedArgs() {
		if err := vl.db.index.Remove(fa.ID()); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	if err := vl.db.index.Remove(id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	delete(vl.byID, id)
	delete(vl.byName, ve.Name())

	vl.db.logger.Info("vocab element removed", "id", id, "name", ve.Name(), "dependents", n)
	vl.db.metrics.RecordEdit("remove")
	vl.db.metrics.SetVocabSize(len(vl.byID))
	return nil
}

// dropApprovals removes pveID from every predicate argument approving it,
// replacing the affected elements so their dependents are re-coerced.
func (vl *VocabList) dropApprovals(pveID ID) error {
	for _, id := range slices.Sorted(maps.Keys(vl.byID)) {
		if id == pveID {
			continue
		}
		ve := vl.byID[id]
		var edited VocabElement
		for pos, fa := range ve.elementBase().fargs {
			pfa, ok := fa.(*PredFormalArg)
			if !ok || !pfa.subRange {
				continue
			}
			if _, approved := pfa.approved[pveID]; !approved {
				continue
			}
			if edited == nil {
				edited = ve.Clone()
			}
			c := edited.elementBase().fargs[pos].(*PredFormalArg)
			if err := c.DeleteApproved(pveID); err != nil {
				return err
			}
			if err := edited.ReplaceFormalArg(c, pos); err != nil {
				return err
			}
		}
		if edited != nil {
			if err := vl.ReplaceVocabElement(edited); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReplaceVocabElement reinstates an edited copy of a registered element.
//
// Arguments are matched to the incumbent's by ID: an argument without an ID
// is new, an incumbent argument missing from ve was deleted, and a matched
// argument may have been renamed, re-ranged, had its approved set changed or
// been retyped. Every dependent referring to the element or to a changed
// argument is updated before the Index sees the new shape.
//
// Fails if ve is nil, belongs to another database, carries an invalid or
// unknown ID, is a different kind of element than the incumbent, is not
// well formed, takes a name already in use, or carries argument IDs the
// incumbent does not own. A failed call changes nothing.
func (vl *VocabList) ReplaceVocabElement(ve VocabElement) error {
	const op = "VocabList.ReplaceVocabElement"
	if ve == nil || isNil(ve) {
		return newError(ErrCodeNilArgument, op, "vocab element is nil")
	}
	if ve.DB() != vl.db {
		return newError(ErrCodeDBMismatch, op, "vocab element belongs to another database")
	}
	id := ve.ID()
	old, err := vl.element(op, id)
	if err != nil {
		return err
	}
	if old == ve {
		return newIDError(ErrCodeIllFormed, op, id, "replacement must be a copy, not the registered element")
	}
	if reflect.TypeOf(old) != reflect.TypeOf(ve) {
		return newIDError(ErrCodeKindMismatch, op, id, "cannot replace %s with %s", kindName(old), kindName(ve))
	}
	if err := ve.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	ok, err := ve.IsWellFormed(false)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return newIDError(ErrCodeIllFormed, op, id, "vocab element %s is not well formed", ve.Name())
	}
	if ve.Name() != old.Name() && vl.hasName(ve.Name()) {
		return newIDError(ErrCodeDuplicate, op, id, "name %q already in vocab list", ve.Name())
	}

	oldArgs := make(map[ID]FormalArgument)
	oldLiteral := make(map[ID]bool)
	for _, fa := range old.indexedArgs() {
		oldArgs[fa.ID()] = fa
	}
	for _, fa := range old.elementBase().fargs {
		oldLiteral[fa.ID()] = true
	}
	newArgs := make(map[ID]FormalArgument)
	numLiteral := ve.NumFormalArgs()
	for i, fa := range ve.indexedArgs() {
		if !fa.ID().Valid() {
			continue
		}
		if _, dup := newArgs[fa.ID()]; dup {
			return newIDError(ErrCodeDuplicate, op, id, "argument id %d appears twice", fa.ID())
		}
		if _, known := oldArgs[fa.ID()]; !known {
			return newIDError(ErrCodeNotFound, op, id, "argument id %d does not belong to %s", fa.ID(), old.Name())
		}
		if literal := i < numLiteral; literal != oldLiteral[fa.ID()] {
			return newIDError(ErrCodeIllFormed, op, id, "argument id %d moved between literal and column predicate lists", fa.ID())
		}
		newArgs[fa.ID()] = fa
	}

	c := &vocabChange{veID: id, newVE: ve, deltas: make(map[ID]*fargDelta)}
	for oid, ofa := range oldArgs {
		if d := diffFormalArg(ofa, newArgs[oid]); d.changed() {
			c.deltas[oid] = d
		}
	}

	// New arguments get their IDs first so rebuilt instances can bind to them.
	for _, fa := range ve.indexedArgs() {
		if !fa.ID().Valid() {
			if _, err := vl.db.index.Insert(fa); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
		fa.base().veID = id
	}

	n := vl.db.cascade(c)

	for oid, fa := range newArgs {
		if oldArgs[oid].Type() == fa.Type() {
			err = vl.db.index.Replace(oid, fa)
		} else {
			err = vl.db.index.reinstate(fa)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	for oid := range oldArgs {
		if _, kept := newArgs[oid]; !kept {
			if err := vl.db.index.Remove(oid); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
	}
	if err := vl.db.index.Replace(id, ve); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	vl.byID[id] = ve
	if ve.Name() != old.Name() {
		delete(vl.byName, old.Name())
		vl.byName[ve.Name()] = id
	}

	vl.db.logger.Info("vocab element replaced",
		"id", id,
		"name", ve.Name(),
		"signature", ve.elementBase().signature(),
		"changed_args", len(c.deltas),
		"dependents", n,
	)
	vl.db.metrics.RecordEdit("replace")
	return nil
}

// VocabElement returns a copy of the element with the given ID.
func (vl *VocabList) VocabElement(id ID) (VocabElement, error) {
	ve, err := vl.element("VocabList.VocabElement", id)
	if err != nil {
		return nil, err
	}
	return ve.Clone(), nil
}

// VocabElementByName returns a copy of the element with the given name.
func (vl *VocabList) VocabElementByName(name string) (VocabElement, error) {
	const op = "VocabList.VocabElementByName"
	if err := checkLookupName(op, name); err != nil {
		return nil, err
	}
	id, ok := vl.byName[name]
	if !ok {
		return nil, newError(ErrCodeNotFound, op, "no vocab element named %q", name)
	}
	return vl.byID[id].Clone(), nil
}

// InVocabList reports whether an element with the given ID is registered.
func (vl *VocabList) InVocabList(id ID) (bool, error) {
	if !id.Valid() {
		return false, newError(ErrCodeInvalidID, "VocabList.InVocabList", "invalid vocab element id")
	}
	return vl.has(id), nil
}

// InVocabListByName reports whether an element with the given name is registered.
func (vl *VocabList) InVocabListByName(name string) (bool, error) {
	if err := checkLookupName("VocabList.InVocabListByName", name); err != nil {
		return false, err
	}
	return vl.hasName(name), nil
}

// MatrixInVocabList reports whether name is registered as a matrix.
func (vl *VocabList) MatrixInVocabList(name string) (bool, error) {
	if err := checkLookupName("VocabList.MatrixInVocabList", name); err != nil {
		return false, err
	}
	id, ok := vl.byName[name]
	if !ok {
		return false, nil
	}
	_, isMatrix := vl.byID[id].(*MatrixVocabElement)
	return isMatrix, nil
}

// PredInVocabList reports whether name is registered as a predicate.
func (vl *VocabList) PredInVocabList(name string) (bool, error) {
	if err := checkLookupName("VocabList.PredInVocabList", name); err != nil {
		return false, err
	}
	id, ok := vl.byName[name]
	if !ok {
		return false, nil
	}
	_, isPred := vl.byID[id].(*PredicateVocabElement)
	return isPred, nil
}

// Preds returns copies of the non-system predicates in ID order, nil when
// there are none.
func (vl *VocabList) Preds() []*PredicateVocabElement {
	var out []*PredicateVocabElement
	for _, id := range vl.IDs() {
		if pve, ok := vl.byID[id].(*PredicateVocabElement); ok && !pve.system {
			out = append(out, pve.Clone().(*PredicateVocabElement))
		}
	}
	return out
}

// Matricies returns copies of the non-system matrices in ID order, nil when
// there are none.
func (vl *VocabList) Matricies() []*MatrixVocabElement {
	var out []*MatrixVocabElement
	for _, id := range vl.IDs() {
		if mve, ok := vl.byID[id].(*MatrixVocabElement); ok && !mve.system {
			out = append(out, mve.Clone().(*MatrixVocabElement))
		}
	}
	return out
}

// Len returns the number of registered elements.
func (vl *VocabList) Len() int {
	return len(vl.byID)
}

// IDs returns the registered element IDs in ascending order.
func (vl *VocabList) IDs() []ID {
	return slices.Sorted(maps.Keys(vl.byID))
}

func checkLookupName(op, name string) error {
	if name == "" {
		return newError(ErrCodeNilArgument, op, "name is empty")
	}
	if !IsValidSVarName(name) {
		return newError(ErrCodeMalformedName, op, "invalid vocab element name %q", name)
	}
	return nil
}

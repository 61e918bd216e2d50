package model

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// NominalFormalArg accepts nominals, optionally restricted to an approved set.
type NominalFormalArg struct {
	fargBase
	subRange bool
	approved map[string]struct{}
}

// NewNominalFormalArg creates an unattached nominal argument.
func NewNominalFormalArg(db *Database, name string) (*NominalFormalArg, error) {
	b, err := newFargBase("NewNominalFormalArg", db, name)
	if err != nil {
		return nil, err
	}
	return &NominalFormalArg{fargBase: b}, nil
}

func (fa *NominalFormalArg) Type() FargType { return FargNominal }
func (fa *NominalFormalArg) SubRange() bool { return fa.subRange }

// SetSubRange toggles the approved-set constraint. Enabling from off starts
// with an empty set; disabling discards the set.
func (fa *NominalFormalArg) SetSubRange(on bool) error {
	switch {
	case on && !fa.subRange:
		fa.approved = make(map[string]struct{})
	case !on:
		fa.approved = nil
	}
	fa.subRange = on
	return nil
}

// AddApproved adds s to the approved set.
func (fa *NominalFormalArg) AddApproved(s string) error {
	const op = "NominalFormalArg.AddApproved"
	if !fa.subRange {
		return newIDError(ErrCodeSubRangeDisabled, op, fa.id, "sub-range is off")
	}
	if !validNominal(s) {
		return newIDError(ErrCodeInvalidValue, op, fa.id, "invalid nominal %q", s)
	}
	if _, ok := fa.approved[s]; ok {
		return newIDError(ErrCodeDuplicate, op, fa.id, "%q already approved", s)
	}
	fa.approved[s] = struct{}{}
	return nil
}

// DeleteApproved removes s from the approved set.
func (fa *NominalFormalArg) DeleteApproved(s string) error {
	const op = "NominalFormalArg.DeleteApproved"
	if !fa.subRange {
		return newIDError(ErrCodeSubRangeDisabled, op, fa.id, "sub-range is off")
	}
	if _, ok := fa.approved[s]; !ok {
		return newIDError(ErrCodeNotFound, op, fa.id, "%q not approved", s)
	}
	delete(fa.approved, s)
	return nil
}

// Approved reports whether s is in the approved set.
func (fa *NominalFormalArg) Approved(s string) (bool, error) {
	if !fa.subRange {
		return false, newIDError(ErrCodeSubRangeDisabled, "NominalFormalArg.Approved", fa.id, "sub-range is off")
	}
	_, ok := fa.approved[s]
	return ok, nil
}

// ApprovedList returns the approved set in ascending order, nil when empty.
func (fa *NominalFormalArg) ApprovedList() ([]string, error) {
	if !fa.subRange {
		return nil, newIDError(ErrCodeSubRangeDisabled, "NominalFormalArg.ApprovedList", fa.id, "sub-range is off")
	}
	if len(fa.approved) == 0 {
		return nil, nil
	}
	return slices.Sorted(maps.Keys(fa.approved)), nil
}

func (fa *NominalFormalArg) approvedItems() []string {
	return slices.Sorted(maps.Keys(fa.approved))
}

// CoerceToRange returns (s, true) if s is a nominal the argument accepts,
// and ("", false) otherwise.
func (fa *NominalFormalArg) CoerceToRange(s string) (string, bool) {
	if !validNominal(s) {
		return "", false
	}
	if fa.subRange {
		if _, ok := fa.approved[s]; !ok {
			return "", false
		}
	}
	return s, true
}

func (fa *NominalFormalArg) IsValidValue(v any) (bool, error) {
	ok, err := IsValidNominal(v)
	if err != nil || !ok {
		return false, err
	}
	_, ok = fa.CoerceToRange(v.(string))
	return ok, nil
}

func (fa *NominalFormalArg) DBString() string {
	return fmt.Sprintf("(NominalFormalArg %d %s %t %s)", fa.id, fa.name, fa.subRange, joinStrings(fa.approvedItems()))
}

func (fa *NominalFormalArg) Clone() FormalArgument {
	c := *fa
	if fa.approved != nil {
		c.approved = maps.Clone(fa.approved)
	}
	return &c
}

func (fa *NominalFormalArg) Validate() error {
	const op = "NominalFormalArg.Validate"
	if err := fa.validate(op); err != nil {
		return err
	}
	if !fa.subRange && len(fa.approved) > 0 {
		return newIDError(ErrCodeIllFormed, op, fa.id, "approved set without sub-range")
	}
	for s := range fa.approved {
		if !validNominal(s) {
			return newIDError(ErrCodeIllFormed, op, fa.id, "invalid approved nominal %q", s)
		}
	}
	return nil
}

// PredFormalArg accepts predicates, optionally restricted to an approved set
// of predicate vocabulary element IDs.
type PredFormalArg struct {
	fargBase
	subRange bool
	approved map[ID]struct{}
}

// NewPredFormalArg creates an unattached predicate argument.
func NewPredFormalArg(db *Database, name string) (*PredFormalArg, error) {
	b, err := newFargBase("NewPredFormalArg", db, name)
	if err != nil {
		return nil, err
	}
	return &PredFormalArg{fargBase: b}, nil
}

func (fa *PredFormalArg) Type() FargType { return FargPredicate }
func (fa *PredFormalArg) SubRange() bool { return fa.subRange }

// SetSubRange toggles the approved-set constraint. Enabling from off starts
// with an empty set; disabling discards the set.
func (fa *PredFormalArg) SetSubRange(on bool) error {
	switch {
	case on && !fa.subRange:
		fa.approved = make(map[ID]struct{})
	case !on:
		fa.approved = nil
	}
	fa.subRange = on
	return nil
}

// AddApproved adds the predicate vocabulary element id to the approved set.
// id must name a predicate element registered in the same database.
func (fa *PredFormalArg) AddApproved(id ID) error {
	const op = "PredFormalArg.AddApproved"
	if !fa.subRange {
		return newIDError(ErrCodeSubRangeDisabled, op, fa.id, "sub-range is off")
	}
	if !id.Valid() {
		return newIDError(ErrCodeInvalidID, op, fa.id, "invalid predicate id")
	}
	if _, err := fa.db.vocab.predicateElement(op, id); err != nil {
		return err
	}
	if _, ok := fa.approved[id]; ok {
		return newIDError(ErrCodeDuplicate, op, fa.id, "predicate %d already approved", id)
	}
	fa.approved[id] = struct{}{}
	return nil
}

// DeleteApproved removes id from the approved set.
func (fa *PredFormalArg) DeleteApproved(id ID) error {
	const op = "PredFormalArg.DeleteApproved"
	if !fa.subRange {
		return newIDError(ErrCodeSubRangeDisabled, op, fa.id, "sub-range is off")
	}
	if _, ok := fa.approved[id]; !ok {
		return newIDError(ErrCodeNotFound, op, fa.id, "predicate %d not approved", id)
	}
	delete(fa.approved, id)
	return nil
}

// Approved reports whether id is in the approved set.
func (fa *PredFormalArg) Approved(id ID) (bool, error) {
	if !fa.subRange {
		return false, newIDError(ErrCodeSubRangeDisabled, "PredFormalArg.Approved", fa.id, "sub-range is off")
	}
	_, ok := fa.approved[id]
	return ok, nil
}

// ApprovedList returns the approved IDs in ascending order, nil when empty.
func (fa *PredFormalArg) ApprovedList() ([]ID, error) {
	if !fa.subRange {
		return nil, newIDError(ErrCodeSubRangeDisabled, "PredFormalArg.ApprovedList", fa.id, "sub-range is off")
	}
	if len(fa.approved) == 0 {
		return nil, nil
	}
	return slices.Sorted(maps.Keys(fa.approved)), nil
}

func (fa *PredFormalArg) approvedItems() []string {
	ids := slices.Sorted(maps.Keys(fa.approved))
	items := make([]string, len(ids))
	for i, id := range ids {
		items[i] = strconv.FormatInt(int64(id), 10)
	}
	return items
}

// CoerceToRange returns (p, true) if p is acceptable, and (nil, false) when
// the sub-range is on and p's element is not approved. An empty predicate
// is always acceptable.
func (fa *PredFormalArg) CoerceToRange(p *Predicate) (*Predicate, bool) {
	if p == nil || p.db != fa.db {
		return nil, false
	}
	if fa.subRange && p.veID.Valid() {
		if _, ok := fa.approved[p.veID]; !ok {
			return nil, false
		}
	}
	return p, true
}

// IsValidValue accepts a *Predicate of the same database whose element is
// approved (or any element when the sub-range is off).
func (fa *PredFormalArg) IsValidValue(v any) (bool, error) {
	if v == nil {
		return false, newIDError(ErrCodeNilArgument, "PredFormalArg.IsValidValue", fa.id, "value is nil")
	}
	p, ok := v.(*Predicate)
	if !ok || p == nil {
		return false, nil
	}
	_, ok = fa.CoerceToRange(p)
	return ok, nil
}

func (fa *PredFormalArg) DBString() string {
	return fmt.Sprintf("(PredFormalArg %d %s %t %s)", fa.id, fa.name, fa.subRange, joinStrings(fa.approvedItems()))
}

func (fa *PredFormalArg) Clone() FormalArgument {
	c := *fa
	if fa.approved != nil {
		c.approved = maps.Clone(fa.approved)
	}
	return &c
}

func (fa *PredFormalArg) Validate() error {
	const op = "PredFormalArg.Validate"
	if err := fa.validate(op); err != nil {
		return err
	}
	if !fa.subRange && len(fa.approved) > 0 {
		return newIDError(ErrCodeIllFormed, op, fa.id, "approved set without sub-range")
	}
	for id := range fa.approved {
		if !id.Valid() {
			return newIDError(ErrCodeIllFormed, op, fa.id, "invalid approved id")
		}
	}
	return nil
}

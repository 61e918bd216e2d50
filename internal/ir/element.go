package ir

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/roach88/codebook/internal/model"
)

// FromElement captures a registered element, IDs included.
func FromElement(ve model.VocabElement) (ElementSpec, error) {
	s := ElementSpec{
		ID:     ve.ID(),
		Name:   ve.Name(),
		System: ve.System(),
		VarLen: ve.VarLen(),
	}
	switch e := ve.(type) {
	case *model.PredicateVocabElement:
		s.Kind = KindPredicate
	case *model.MatrixVocabElement:
		s.Kind = KindMatrix
		s.Type = e.Type().String()
		for _, fa := range e.CPFormalArgs() {
			s.CPArgIDs = append(s.CPArgIDs, fa.ID())
		}
	default:
		return ElementSpec{}, fmt.Errorf("from element: unsupported element %T", ve)
	}

	s.Args = make([]ArgSpec, 0, ve.NumFormalArgs())
	for _, fa := range ve.FormalArgs() {
		as, err := fromFormalArg(fa)
		if err != nil {
			return ElementSpec{}, fmt.Errorf("from element %s: %w", ve.Name(), err)
		}
		s.Args = append(s.Args, as)
	}
	return s, nil
}

func fromFormalArg(fa model.FormalArgument) (ArgSpec, error) {
	as := ArgSpec{
		ID:       fa.ID(),
		Name:     fa.Name(),
		Type:     fa.Type().String(),
		Hidden:   fa.Hidden(),
		SubRange: model.SubRangeOf(fa),
	}
	if !as.SubRange {
		return as, nil
	}

	switch a := fa.(type) {
	case *model.FloatFormalArg:
		as.Min = strconv.FormatFloat(a.Min(), 'g', -1, 64)
		as.Max = strconv.FormatFloat(a.Max(), 'g', -1, 64)
	case *model.IntFormalArg:
		as.Min = strconv.FormatInt(a.Min(), 10)
		as.Max = strconv.FormatInt(a.Max(), 10)
	case *model.TimeStampFormalArg:
		as.Min = a.Min().DBString()
		as.Max = a.Max().DBString()
	case *model.NominalFormalArg:
		approved, err := a.ApprovedList()
		if err != nil {
			return ArgSpec{}, err
		}
		as.Approved = approved
	case *model.PredFormalArg:
		ids, err := a.ApprovedList()
		if err != nil {
			return ArgSpec{}, err
		}
		for _, id := range ids {
			pve, err := fa.DB().Vocab().VocabElement(id)
			if err != nil {
				return ArgSpec{}, fmt.Errorf("approved predicate %d: %w", id, err)
			}
			as.Approved = append(as.Approved, pve.Name())
		}
	}
	return as, nil
}

// FromDatabase captures every registered element in ID order.
func FromDatabase(db *model.Database) (VocabSpec, error) {
	var v VocabSpec
	for _, id := range db.Vocab().IDs() {
		ve, err := db.Vocab().VocabElement(id)
		if err != nil {
			return VocabSpec{}, err
		}
		s, err := FromElement(ve)
		if err != nil {
			return VocabSpec{}, err
		}
		if s.IsPredicate() {
			v.Predicates = append(v.Predicates, s)
		} else {
			v.Matrices = append(v.Matrices, s)
		}
	}
	return v, nil
}

// Build creates an unattached element from s. IDs in s are ignored; the
// element gets fresh ones when it is added to the vocabulary list.
// Predicate approvals resolve against db's current vocabulary.
func Build(db *model.Database, s ElementSpec) (model.VocabElement, error) {
	var ve model.VocabElement
	switch s.Kind {
	case KindPredicate:
		pve, err := model.NewPredicateVocabElement(db, s.Name)
		if err != nil {
			return nil, err
		}
		ve = pve
	case KindMatrix:
		mtype, err := model.ParseMatrixType(s.Type)
		if err != nil {
			return nil, err
		}
		mve, err := model.NewMatrixVocabElement(db, s.Name, mtype)
		if err != nil {
			return nil, err
		}
		ve = mve
	default:
		return nil, fmt.Errorf("build %s: unknown element kind %q", s.Name, s.Kind)
	}

	ve.SetVarLen(s.VarLen)
	if s.System {
		ve.SetSystem()
	}
	for _, as := range s.Args {
		as.ID = model.InvalidID
		fa, err := NewFormalArg(db, as)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", s.Name, err)
		}
		if err := ve.AppendFormalArg(fa); err != nil {
			return nil, fmt.Errorf("build %s: %w", s.Name, err)
		}
	}
	return ve, nil
}

// NewFormalArg creates an unattached argument from as.
func NewFormalArg(db *model.Database, as ArgSpec) (model.FormalArgument, error) {
	t, err := model.ParseFargType(as.Type)
	if err != nil {
		return nil, err
	}

	var fa model.FormalArgument
	switch t {
	case model.FargFloat:
		fa, err = model.NewFloatFormalArg(db, as.Name)
	case model.FargInteger:
		fa, err = model.NewIntFormalArg(db, as.Name)
	case model.FargTimeStamp:
		fa, err = model.NewTimeStampFormalArg(db, as.Name)
	case model.FargNominal:
		fa, err = model.NewNominalFormalArg(db, as.Name)
	case model.FargPredicate:
		fa, err = model.NewPredFormalArg(db, as.Name)
	case model.FargQuoteString:
		fa, err = model.NewQuoteStringFormalArg(db, as.Name)
	case model.FargText:
		fa, err = model.NewTextStringFormalArg(db, as.Name)
	case model.FargUntyped:
		fa, err = model.NewUnTypedFormalArg(db, as.Name)
	case model.FargColPredicate:
		fa, err = model.NewColPredFormalArg(db, as.Name)
	default:
		return nil, fmt.Errorf("arg %s: type %s cannot be declared", as.Name, as.Type)
	}
	if err != nil {
		return nil, err
	}
	if err := applyArg(fa, as); err != nil {
		return nil, err
	}
	return fa, nil
}

// applyArg sets every attribute of as on fa except its ID and type.
func applyArg(fa model.FormalArgument, as ArgSpec) error {
	if fa.Name() != as.Name {
		if err := fa.SetName(as.Name); err != nil {
			return err
		}
	}
	fa.SetHidden(as.Hidden)

	switch a := fa.(type) {
	case *model.FloatFormalArg:
		if err := a.SetSubRange(as.SubRange); err != nil {
			return err
		}
		if !as.SubRange || (as.Min == "" && as.Max == "") {
			return nil
		}
		lo, hi := a.Min(), a.Max()
		if err := parseBound(as.Min, &lo, parseFloat); err != nil {
			return fmt.Errorf("arg %s min: %w", as.Name, err)
		}
		if err := parseBound(as.Max, &hi, parseFloat); err != nil {
			return fmt.Errorf("arg %s max: %w", as.Name, err)
		}
		return a.SetRange(lo, hi)

	case *model.IntFormalArg:
		if err := a.SetSubRange(as.SubRange); err != nil {
			return err
		}
		if !as.SubRange || (as.Min == "" && as.Max == "") {
			return nil
		}
		lo, hi := a.Min(), a.Max()
		if err := parseBound(as.Min, &lo, parseInt); err != nil {
			return fmt.Errorf("arg %s min: %w", as.Name, err)
		}
		if err := parseBound(as.Max, &hi, parseInt); err != nil {
			return fmt.Errorf("arg %s max: %w", as.Name, err)
		}
		return a.SetRange(lo, hi)

	case *model.TimeStampFormalArg:
		if err := a.SetSubRange(as.SubRange); err != nil {
			return err
		}
		if !as.SubRange || (as.Min == "" && as.Max == "") {
			return nil
		}
		lo, hi := a.Min(), a.Max()
		if err := parseBound(as.Min, &lo, model.ParseTimeStamp); err != nil {
			return fmt.Errorf("arg %s min: %w", as.Name, err)
		}
		if err := parseBound(as.Max, &hi, model.ParseTimeStamp); err != nil {
			return fmt.Errorf("arg %s max: %w", as.Name, err)
		}
		return a.SetRange(lo, hi)

	case *model.NominalFormalArg:
		if err := a.SetSubRange(as.SubRange); err != nil || !as.SubRange {
			return err
		}
		have, err := a.ApprovedList()
		if err != nil {
			return err
		}
		return syncApproved(have, as.Approved, a.AddApproved, a.DeleteApproved)

	case *model.PredFormalArg:
		if err := a.SetSubRange(as.SubRange); err != nil || !as.SubRange {
			return err
		}
		want := make([]model.ID, 0, len(as.Approved))
		for _, name := range as.Approved {
			pve, err := fa.DB().Vocab().VocabElementByName(name)
			if err != nil {
				return fmt.Errorf("arg %s approves %q: %w", as.Name, name, err)
			}
			want = append(want, pve.ID())
		}
		have, err := a.ApprovedList()
		if err != nil {
			return err
		}
		return syncApproved(have, want, a.AddApproved, a.DeleteApproved)
	}

	if as.SubRange || as.Min != "" || as.Max != "" || len(as.Approved) > 0 {
		return fmt.Errorf("arg %s: %s arguments take no range", as.Name, as.Type)
	}
	return nil
}

func parseBound[T any](text string, dst *T, parse func(string) (T, error)) error {
	if text == "" {
		return nil
	}
	v, err := parse(text)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func parseFloat(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
func parseInt(s string) (int64, error)     { return strconv.ParseInt(s, 10, 64) }

// syncApproved edits an approved set from have to want.
func syncApproved[T comparable](have, want []T, add, del func(T) error) error {
	for _, v := range have {
		if !slices.Contains(want, v) {
			if err := del(v); err != nil {
				return err
			}
		}
	}
	for _, v := range want {
		if !slices.Contains(have, v) {
			if err := add(v); err != nil {
				return err
			}
		}
	}
	return nil
}

// ApplyTo returns an edited copy of the registered element cur shaped like
// s, ready for VocabList.ReplaceVocabElement.
//
// Arguments of s carrying one of cur's argument IDs edit that argument in
// place (renamed, re-ranged, retyped or moved); the others are new. cur's
// arguments missing from s are deleted. Matrix mirrors follow their
// literal arguments; when s records CPArgIDs, the mirrors kept must carry
// those IDs.
func ApplyTo(cur model.VocabElement, s ElementSpec) (model.VocabElement, error) {
	db := cur.DB()
	ve := cur.Clone()
	if s.Name != ve.Name() {
		if err := ve.SetName(s.Name); err != nil {
			return nil, err
		}
	}
	ve.SetVarLen(s.VarLen)
	if s.System && !ve.System() {
		ve.SetSystem()
	}

	want := make(map[model.ID]bool, len(s.Args))
	for _, as := range s.Args {
		if as.ID.Valid() {
			want[as.ID] = true
		}
	}

	// Drop what s no longer has and park the rest under unique names so
	// renames cannot collide mid-edit.
	for i := ve.NumFormalArgs() - 1; i >= 0; i-- {
		fa, err := ve.FormalArg(i)
		if err != nil {
			return nil, err
		}
		if !want[fa.ID()] {
			if err := ve.DeleteFormalArg(i); err != nil {
				return nil, err
			}
			continue
		}
		if err := fa.SetName(parkedName(fa.ID())); err != nil {
			return nil, err
		}
		if err := ve.ReplaceFormalArg(fa, i); err != nil {
			return nil, err
		}
	}

	for i, as := range s.Args {
		j := argPosition(ve, as.ID)
		switch {
		case j >= 0 && j != i:
			fa, err := ve.FormalArg(j)
			if err != nil {
				return nil, err
			}
			if err := ve.DeleteFormalArg(j); err != nil {
				return nil, err
			}
			if err := ve.InsertFormalArg(fa, i); err != nil {
				return nil, err
			}
		case j < 0:
			as.ID = model.InvalidID
			fa, err := NewFormalArg(db, as)
			if err != nil {
				return nil, err
			}
			if err := ve.InsertFormalArg(fa, i); err != nil {
				return nil, err
			}
			continue
		}

		fa, err := ve.FormalArg(i)
		if err != nil {
			return nil, err
		}
		if fa.Type().String() != as.Type {
			retyped := as
			retyped.ID = model.InvalidID
			nfa, err := NewFormalArg(db, retyped)
			if err != nil {
				return nil, err
			}
			if err := ve.RetypeFormalArg(nfa, i); err != nil {
				return nil, err
			}
			continue
		}
		if err := applyArg(fa, as); err != nil {
			return nil, err
		}
		if err := ve.ReplaceFormalArg(fa, i); err != nil {
			return nil, err
		}
	}
	if err := checkMirrors(ve, s); err != nil {
		return nil, err
	}
	return ve, nil
}

func parkedName(id model.ID) string {
	return fmt.Sprintf("<~%d~>", id)
}

func argPosition(ve model.VocabElement, id model.ID) int {
	if !id.Valid() {
		return -1
	}
	for i, fa := range ve.FormalArgs() {
		if fa.ID() == id {
			return i
		}
	}
	return -1
}

// checkMirrors compares the mirror IDs ve already holds with the ones s
// records. Mirrors of new arguments get their IDs on registration and are
// not compared.
func checkMirrors(ve model.VocabElement, s ElementSpec) error {
	mve, ok := ve.(*model.MatrixVocabElement)
	if !ok || len(s.CPArgIDs) == 0 {
		return nil
	}
	if len(s.CPArgIDs) != mve.NumCPFormalArgs() {
		return fmt.Errorf("matrix %s: %d column predicate args recorded, have %d", s.Name, len(s.CPArgIDs), mve.NumCPFormalArgs())
	}
	for i, fa := range mve.CPFormalArgs() {
		if fa.ID().Valid() && fa.ID() != s.CPArgIDs[i] {
			return fmt.Errorf("matrix %s: column predicate arg %d has id %d, recorded %d", s.Name, i, fa.ID(), s.CPArgIDs[i])
		}
	}
	return nil
}

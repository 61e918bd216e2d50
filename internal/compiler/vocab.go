package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/codebook/internal/ir"
)

// CompileVocab parses a CUE value into a VocabSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The value holds optional predicate and matrix structs, keyed by element
// name:
//
//	predicate: looks: {
//		args: [{name: "<who>", type: "nominal"}, {name: "<at>", type: "time_stamp"}]
//	}
//	matrix: "gaze events": {
//		type: "matrix"
//		args: [{name: "<what>", type: "predicate", approved: ["looks"]}]
//	}
//
// Types are case-insensitive FargType and MatrixType names. range is
// [min, max]; approved lists nominals or predicate names. Either implies
// the sub-range. Names are NFC normalized. Elements keep declaration order.
func CompileVocab(v cue.Value) (*ir.VocabSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.VocabSpec{}
	var err error
	spec.Predicates, err = parseElements(v, "predicate", ir.KindPredicate)
	if err != nil {
		return nil, err
	}
	spec.Matrices, err = parseElements(v, "matrix", ir.KindMatrix)
	if err != nil {
		return nil, err
	}
	if len(spec.Predicates)+len(spec.Matrices) == 0 {
		return nil, &CompileError{
			Field:   "vocab",
			Message: "at least one predicate or matrix is required",
			Pos:     v.Pos(),
		}
	}
	return spec, nil
}

func parseElements(v cue.Value, field, kind string) ([]ir.ElementSpec, error) {
	val := v.LookupPath(cue.MakePath(cue.Str(field)))
	if !val.Exists() {
		return nil, nil
	}

	iter, err := val.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []ir.ElementSpec
	for iter.Next() {
		s, err := parseElement(iter.Value(), iter.Selector().Unquoted(), kind)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

func parseElement(v cue.Value, name, kind string) (ir.ElementSpec, error) {
	s := ir.ElementSpec{Kind: kind, Name: norm.NFC.String(name)}

	var err error
	if s.VarLen, err = optionalBool(v, "varLen"); err != nil {
		return s, err
	}
	if s.System, err = optionalBool(v, "system"); err != nil {
		return s, err
	}

	if kind == ir.KindMatrix {
		typeVal := v.LookupPath(cue.ParsePath("type"))
		if !typeVal.Exists() {
			return s, &CompileError{Field: name + ".type", Message: "matrix type is required", Pos: v.Pos()}
		}
		t, err := typeVal.String()
		if err != nil {
			return s, formatCUEError(err)
		}
		s.Type = strings.ToUpper(t)
	}

	argsVal := v.LookupPath(cue.ParsePath("args"))
	if !argsVal.Exists() {
		return s, &CompileError{Field: name + ".args", Message: "args is required", Pos: v.Pos()}
	}
	iter, err := argsVal.List()
	if err != nil {
		return s, formatCUEError(err)
	}
	s.Args = []ir.ArgSpec{}
	for iter.Next() {
		a, err := parseArg(iter.Value())
		if err != nil {
			return s, err
		}
		s.Args = append(s.Args, a)
	}
	return s, nil
}

func parseArg(v cue.Value) (ir.ArgSpec, error) {
	var a ir.ArgSpec

	name, err := requiredString(v, "name")
	if err != nil {
		return a, err
	}
	a.Name = norm.NFC.String(name)

	t, err := requiredString(v, "type")
	if err != nil {
		return a, err
	}
	a.Type = strings.ToUpper(t)

	if a.Hidden, err = optionalBool(v, "hidden"); err != nil {
		return a, err
	}

	if rv := v.LookupPath(cue.ParsePath("range")); rv.Exists() {
		bounds, err := rv.List()
		if err != nil {
			return a, formatCUEError(err)
		}
		var texts []string
		for bounds.Next() {
			text, err := boundText(bounds.Value())
			if err != nil {
				return a, err
			}
			texts = append(texts, text)
		}
		if len(texts) != 2 {
			return a, &CompileError{Field: a.Name + ".range", Message: "range must be [min, max]", Pos: rv.Pos()}
		}
		a.SubRange = true
		a.Min, a.Max = texts[0], texts[1]
	}

	if av := v.LookupPath(cue.ParsePath("approved")); av.Exists() {
		items, err := av.List()
		if err != nil {
			return a, formatCUEError(err)
		}
		a.SubRange = true
		for items.Next() {
			item, err := items.Value().String()
			if err != nil {
				return a, formatCUEError(err)
			}
			a.Approved = append(a.Approved, norm.NFC.String(item))
		}
	}
	return a, nil
}

// boundText renders a range bound as ArgSpec text: numbers in decimal,
// time stamps as given.
func boundText(v cue.Value) (string, error) {
	switch v.IncompleteKind() {
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return "", formatCUEError(err)
		}
		return strconv.FormatInt(n, 10), nil
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return "", formatCUEError(err)
		}
		return strconv.FormatFloat(f, 'g', -1, 64), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return "", formatCUEError(err)
		}
		return s, nil
	default:
		return "", &CompileError{
			Field:   "range",
			Message: fmt.Sprintf("unsupported bound kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalBool(v cue.Value, field string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

package compiler

import (
	"fmt"
	"strconv"

	"github.com/roach88/codebook/internal/ir"
	"github.com/roach88/codebook/internal/model"
)

// Validation error codes (E120-E129)
const (
	ErrElementName      = "E120" // element name fails the predicate or matrix name rules
	ErrDuplicateElement = "E121" // element name declared twice
	ErrNoArgs           = "E122" // element has no arguments
	ErrArgName          = "E123" // argument name is not <name>
	ErrDuplicateArg     = "E124" // argument name repeated in one element
	ErrArgType          = "E125" // unknown or undeclarable argument type
	ErrMatrixType       = "E126" // unknown matrix type or arguments that do not fit it
	ErrRange            = "E127" // bad range: wrong kind, unparsable or empty
	ErrApproved         = "E128" // bad approved list: wrong kind, invalid item or unknown predicate
	ErrReservedArg      = "E129" // matrix argument uses a column-predicate name
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled vocabulary against the model's rules before
// anything is registered. Returns all errors found (does not fail-fast).
func Validate(spec *ir.VocabSpec) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Code: code})
	}

	preds := make(map[string]bool, len(spec.Predicates))
	for _, s := range spec.Predicates {
		preds[s.Name] = true
	}

	seen := make(map[string]bool)
	for _, s := range spec.Elements() {
		field := s.Kind + "." + s.Name

		if seen[s.Name] {
			add(field, ErrDuplicateElement, "element %q declared more than once", s.Name)
		}
		seen[s.Name] = true

		if s.IsPredicate() && !model.IsValidPredName(s.Name) {
			add(field, ErrElementName, "invalid predicate name %q", s.Name)
		}
		if !s.IsPredicate() && !model.IsValidSVarName(s.Name) {
			add(field, ErrElementName, "invalid matrix name %q", s.Name)
		}
		if len(s.Args) == 0 {
			add(field+".args", ErrNoArgs, "at least one argument is required")
		}

		if !s.IsPredicate() {
			validateMatrixType(s, field, add)
		}

		argNames := make(map[string]bool)
		for i, a := range s.Args {
			afield := fmt.Sprintf("%s.args[%d]", field, i)
			if !model.IsValidFargName(a.Name) {
				add(afield+".name", ErrArgName, "invalid argument name %q", a.Name)
			}
			if argNames[a.Name] {
				add(afield+".name", ErrDuplicateArg, "duplicate argument name %q", a.Name)
			}
			argNames[a.Name] = true

			if !s.IsPredicate() {
				switch a.Name {
				case model.OrdArgName, model.OnsetArgName, model.OffsetArgName:
					add(afield+".name", ErrReservedArg, "%s is reserved for column predicates", a.Name)
				}
			}

			t, err := model.ParseFargType(a.Type)
			if err != nil || t == model.FargUndefined {
				add(afield+".type", ErrArgType, "unknown argument type %q", a.Type)
				continue
			}
			if t == model.FargText && s.Type != model.MatrixText.String() {
				add(afield+".type", ErrArgType, "text arguments only appear in TEXT matrices")
			}
			validateRange(t, a, afield, add)
			validateApproved(t, a, afield, preds, add)
		}
	}
	return errs
}

type addFunc func(field, code, format string, args ...any)

func validateMatrixType(s ir.ElementSpec, field string, add addFunc) {
	mt, err := model.ParseMatrixType(s.Type)
	if err != nil || mt == model.MatrixUndefined {
		add(field+".type", ErrMatrixType, "unknown matrix type %q", s.Type)
		return
	}
	if mt == model.MatrixMatrix {
		return
	}
	// Single-column types take one argument of the same kind.
	if len(s.Args) != 1 {
		add(field+".args", ErrMatrixType, "%s matrix takes exactly one argument, got %d", mt, len(s.Args))
		return
	}
	if s.Args[0].Type != mt.String() {
		add(field+".args[0].type", ErrMatrixType, "%s matrix needs a %s argument, got %s", mt, mt, s.Args[0].Type)
	}
}

func validateRange(t model.FargType, a ir.ArgSpec, field string, add addFunc) {
	if a.Min == "" && a.Max == "" {
		return
	}
	field += ".range"

	var ordered bool
	var err error
	switch t {
	case model.FargInteger:
		var lo, hi int64
		if lo, err = strconv.ParseInt(a.Min, 10, 64); err == nil {
			hi, err = strconv.ParseInt(a.Max, 10, 64)
		}
		ordered = lo < hi
	case model.FargFloat:
		var lo, hi float64
		if lo, err = strconv.ParseFloat(a.Min, 64); err == nil {
			hi, err = strconv.ParseFloat(a.Max, 64)
		}
		ordered = lo < hi
	case model.FargTimeStamp:
		var lo, hi model.TimeStamp
		if lo, err = model.ParseTimeStamp(a.Min); err == nil {
			hi, err = model.ParseTimeStamp(a.Max)
		}
		ordered = lo.Compare(hi) < 0
	default:
		add(field, ErrRange, "%s arguments take no range", t)
		return
	}
	if err != nil {
		add(field, ErrRange, "unparsable bound: %v", err)
		return
	}
	if !ordered {
		add(field, ErrRange, "min %s must be below max %s", a.Min, a.Max)
	}
}

func validateApproved(t model.FargType, a ir.ArgSpec, field string, preds map[string]bool, add addFunc) {
	if len(a.Approved) == 0 {
		return
	}
	field += ".approved"

	seen := make(map[string]bool, len(a.Approved))
	for _, item := range a.Approved {
		if seen[item] {
			add(field, ErrApproved, "%q listed twice", item)
		}
		seen[item] = true

		switch t {
		case model.FargNominal:
			if ok, _ := model.IsValidNominal(item); !ok {
				add(field, ErrApproved, "invalid nominal %q", item)
			}
		case model.FargPredicate:
			if !preds[item] {
				add(field, ErrApproved, "unknown predicate %q", item)
			}
		default:
			add(field, ErrApproved, "%s arguments take no approved list", t)
			return
		}
	}
}

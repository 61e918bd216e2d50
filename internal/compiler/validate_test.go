package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/codebook/internal/ir"
)

func pred(name string, args ...ir.ArgSpec) ir.ElementSpec {
	return ir.ElementSpec{Kind: ir.KindPredicate, Name: name, Args: args}
}

func matrix(name, mtype string, args ...ir.ArgSpec) ir.ElementSpec {
	return ir.ElementSpec{Kind: ir.KindMatrix, Name: name, Type: mtype, Args: args}
}

func arg(name, typ string) ir.ArgSpec {
	return ir.ArgSpec{Name: name, Type: typ}
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateValid(t *testing.T) {
	spec := &ir.VocabSpec{
		Predicates: []ir.ElementSpec{
			pred("looks", arg("<who>", "NOMINAL"), arg("<at>", "TIME_STAMP")),
		},
		Matrices: []ir.ElementSpec{
			matrix("gaze events", "MATRIX",
				ir.ArgSpec{Name: "<what>", Type: "PREDICATE", SubRange: true, Approved: []string{"looks"}},
				ir.ArgSpec{Name: "<score>", Type: "FLOAT", SubRange: true, Min: "0", Max: "1.5"},
			),
			matrix("counts", "INTEGER", arg("<n>", "INTEGER")),
			matrix("notes", "TEXT", arg("<note>", "TEXT")),
		},
	}
	assert.Empty(t, Validate(spec))
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name  string
		spec  ir.VocabSpec
		code  string
		field string
	}{
		{
			name:  "predicate name with space",
			spec:  ir.VocabSpec{Predicates: []ir.ElementSpec{pred("two words", arg("<a>", "UNTYPED"))}},
			code:  ErrElementName,
			field: "predicate.two words",
		},
		{
			name:  "matrix name with trailing blank",
			spec:  ir.VocabSpec{Matrices: []ir.ElementSpec{matrix("m ", "MATRIX", arg("<a>", "UNTYPED"))}},
			code:  ErrElementName,
			field: "matrix.m ",
		},
		{
			name: "duplicate across kinds",
			spec: ir.VocabSpec{
				Predicates: []ir.ElementSpec{pred("x", arg("<a>", "UNTYPED"))},
				Matrices:   []ir.ElementSpec{matrix("x", "MATRIX", arg("<a>", "UNTYPED"))},
			},
			code:  ErrDuplicateElement,
			field: "matrix.x",
		},
		{
			name:  "no args",
			spec:  ir.VocabSpec{Predicates: []ir.ElementSpec{pred("p")}},
			code:  ErrNoArgs,
			field: "predicate.p.args",
		},
		{
			name:  "bad arg name",
			spec:  ir.VocabSpec{Predicates: []ir.ElementSpec{pred("p", arg("a", "UNTYPED"))}},
			code:  ErrArgName,
			field: "predicate.p.args[0].name",
		},
		{
			name:  "duplicate arg",
			spec:  ir.VocabSpec{Predicates: []ir.ElementSpec{pred("p", arg("<a>", "UNTYPED"), arg("<a>", "FLOAT"))}},
			code:  ErrDuplicateArg,
			field: "predicate.p.args[1].name",
		},
		{
			name:  "unknown arg type",
			spec:  ir.VocabSpec{Predicates: []ir.ElementSpec{pred("p", arg("<a>", "STRING"))}},
			code:  ErrArgType,
			field: "predicate.p.args[0].type",
		},
		{
			name:  "undefined arg type",
			spec:  ir.VocabSpec{Predicates: []ir.ElementSpec{pred("p", arg("<a>", "UNDEFINED"))}},
			code:  ErrArgType,
			field: "predicate.p.args[0].type",
		},
		{
			name:  "text outside text matrix",
			spec:  ir.VocabSpec{Predicates: []ir.ElementSpec{pred("p", arg("<a>", "TEXT"))}},
			code:  ErrArgType,
			field: "predicate.p.args[0].type",
		},
		{
			name:  "unknown matrix type",
			spec:  ir.VocabSpec{Matrices: []ir.ElementSpec{matrix("m", "TABLE", arg("<a>", "UNTYPED"))}},
			code:  ErrMatrixType,
			field: "matrix.m.type",
		},
		{
			name:  "single-column matrix with two args",
			spec:  ir.VocabSpec{Matrices: []ir.ElementSpec{matrix("m", "FLOAT", arg("<a>", "FLOAT"), arg("<b>", "FLOAT"))}},
			code:  ErrMatrixType,
			field: "matrix.m.args",
		},
		{
			name:  "wrong kind for matrix type",
			spec:  ir.VocabSpec{Matrices: []ir.ElementSpec{matrix("m", "NOMINAL", arg("<a>", "INTEGER"))}},
			code:  ErrMatrixType,
			field: "matrix.m.args[0].type",
		},
		{
			name:  "reserved arg name",
			spec:  ir.VocabSpec{Matrices: []ir.ElementSpec{matrix("m", "MATRIX", arg("<onset>", "UNTYPED"))}},
			code:  ErrReservedArg,
			field: "matrix.m.args[0].name",
		},
		{
			name: "range on nominal",
			spec: ir.VocabSpec{Predicates: []ir.ElementSpec{pred("p",
				ir.ArgSpec{Name: "<a>", Type: "NOMINAL", SubRange: true, Min: "1", Max: "2"})}},
			code:  ErrRange,
			field: "predicate.p.args[0].range",
		},
		{
			name: "unparsable bound",
			spec: ir.VocabSpec{Predicates: []ir.ElementSpec{pred("p",
				ir.ArgSpec{Name: "<a>", Type: "INTEGER", SubRange: true, Min: "1.5", Max: "2"})}},
			code:  ErrRange,
			field: "predicate.p.args[0].range",
		},
		{
			name: "empty range",
			spec: ir.VocabSpec{Predicates: []ir.ElementSpec{pred("p",
				ir.ArgSpec{Name: "<a>", Type: "FLOAT", SubRange: true, Min: "2", Max: "2"})}},
			code:  ErrRange,
			field: "predicate.p.args[0].range",
		},
		{
			name: "inverted time stamp range",
			spec: ir.VocabSpec{Predicates: []ir.ElementSpec{pred("p",
				ir.ArgSpec{Name: "<a>", Type: "TIME_STAMP", SubRange: true, Min: "(60,00:00:01:000)", Max: "(60,00:00:00:000)"})}},
			code:  ErrRange,
			field: "predicate.p.args[0].range",
		},
		{
			name: "approved on integer",
			spec: ir.VocabSpec{Predicates: []ir.ElementSpec{pred("p",
				ir.ArgSpec{Name: "<a>", Type: "INTEGER", SubRange: true, Approved: []string{"1"}})}},
			code:  ErrApproved,
			field: "predicate.p.args[0].approved",
		},
		{
			name: "invalid nominal",
			spec: ir.VocabSpec{Predicates: []ir.ElementSpec{pred("p",
				ir.ArgSpec{Name: "<a>", Type: "NOMINAL", SubRange: true, Approved: []string{"a,b"}})}},
			code:  ErrApproved,
			field: "predicate.p.args[0].approved",
		},
		{
			name: "duplicate nominal",
			spec: ir.VocabSpec{Predicates: []ir.ElementSpec{pred("p",
				ir.ArgSpec{Name: "<a>", Type: "NOMINAL", SubRange: true, Approved: []string{"x", "x"}})}},
			code:  ErrApproved,
			field: "predicate.p.args[0].approved",
		},
		{
			name: "approves a matrix",
			spec: ir.VocabSpec{
				Predicates: []ir.ElementSpec{pred("p",
					ir.ArgSpec{Name: "<a>", Type: "PREDICATE", SubRange: true, Approved: []string{"m"}})},
				Matrices: []ir.ElementSpec{matrix("m", "MATRIX", arg("<a>", "UNTYPED"))},
			},
			code:  ErrApproved,
			field: "predicate.p.args[0].approved",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&tt.spec)
			require.Len(t, errs, 1, "got %v", errs)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	spec := &ir.VocabSpec{
		Predicates: []ir.ElementSpec{
			pred("bad name", arg("x", "BOGUS")),
			pred("q"),
		},
	}
	errs := Validate(spec)
	assert.Equal(t, []string{ErrElementName, ErrArgName, ErrArgType, ErrNoArgs}, codes(errs))
}

func TestValidationErrorFormat(t *testing.T) {
	err := ValidationError{Field: "predicate.p", Message: "invalid predicate name", Code: ErrElementName}
	assert.Equal(t, "[E120] predicate.p: invalid predicate name", err.Error())
}

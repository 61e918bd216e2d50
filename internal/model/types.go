package model

import "fmt"

// FargType tags the kind of a formal argument. Data values cache the tag of
// the argument they are bound to to detect type drift.
type FargType int

const (
	FargUndefined FargType = iota
	FargColPredicate
	FargInteger
	FargFloat
	FargNominal
	FargPredicate
	FargQuoteString
	FargTimeStamp
	FargText
	FargUntyped
)

var fargTypeNames = [...]string{
	FargUndefined:    "UNDEFINED",
	FargColPredicate: "COL_PREDICATE",
	FargInteger:      "INTEGER",
	FargFloat:        "FLOAT",
	FargNominal:      "NOMINAL",
	FargPredicate:    "PREDICATE",
	FargQuoteString:  "QUOTE_STRING",
	FargTimeStamp:    "TIME_STAMP",
	FargText:         "TEXT",
	FargUntyped:      "UNTYPED",
}

func (t FargType) String() string {
	if t < 0 || int(t) >= len(fargTypeNames) {
		return fmt.Sprintf("FargType(%d)", int(t))
	}
	return fargTypeNames[t]
}

// ParseFargType maps a canonical tag back to its FargType.
func ParseFargType(s string) (FargType, error) {
	for i, name := range fargTypeNames {
		if name == s {
			return FargType(i), nil
		}
	}
	return FargUndefined, newError(ErrCodeInvalidValue, "ParseFargType", "unknown farg type %q", s)
}

// MatrixType is the column type of a matrix vocabulary element.
type MatrixType int

const (
	MatrixUndefined MatrixType = iota
	MatrixFloat
	MatrixInteger
	MatrixNominal
	MatrixPredicate
	MatrixText
	MatrixMatrix
)

var matrixTypeNames = [...]string{
	MatrixUndefined: "UNDEFINED",
	MatrixFloat:     "FLOAT",
	MatrixInteger:   "INTEGER",
	MatrixNominal:   "NOMINAL",
	MatrixPredicate: "PREDICATE",
	MatrixText:      "TEXT",
	MatrixMatrix:    "MATRIX",
}

func (t MatrixType) String() string {
	if t < 0 || int(t) >= len(matrixTypeNames) {
		return fmt.Sprintf("MatrixType(%d)", int(t))
	}
	return matrixTypeNames[t]
}

// ParseMatrixType maps a canonical tag back to its MatrixType.
func ParseMatrixType(s string) (MatrixType, error) {
	for i, name := range matrixTypeNames {
		if name == s {
			return MatrixType(i), nil
		}
	}
	return MatrixUndefined, newError(ErrCodeInvalidValue, "ParseMatrixType", "unknown matrix type %q", s)
}

// argKind is the single formal-argument kind a non-MATRIX column requires.
func (t MatrixType) argKind() (FargType, bool) {
	switch t {
	case MatrixFloat:
		return FargFloat, true
	case MatrixInteger:
		return FargInteger, true
	case MatrixNominal:
		return FargNominal, true
	case MatrixPredicate:
		return FargPredicate, true
	case MatrixText:
		return FargText, true
	}
	return FargUndefined, false
}
